package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/louisbranch/lottery/internal/services/lottery/domain/draw"
	"github.com/louisbranch/lottery/internal/services/lottery/domain/wager"
	"github.com/louisbranch/lottery/internal/services/lottery/storage"
	"github.com/shopspring/decimal"
)

var testGameID = uuid.MustParse("6f1c1f3e-9a4f-4f57-8f4e-0c7d7c3b9d21")

func openTempStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "lottery.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})
	return store
}

func insertDraw(t *testing.T, store *Store, status draw.Status, openAt, closeAt, drawAt time.Time) draw.Draw {
	t.Helper()
	d := draw.New(testGameID, openAt, closeAt, drawAt, openAt)
	d.Status = status
	id, err := store.InsertDraw(context.Background(), d)
	if err != nil {
		t.Fatalf("insert draw: %v", err)
	}
	d.ID = id
	return d
}

func drawIDs(draws []draw.Draw) []int64 {
	ids := make([]int64, 0, len(draws))
	for _, d := range draws {
		ids = append(ids, d.ID)
	}
	return ids
}

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()

	if _, err := Open(""); err == nil {
		t.Fatal("expected empty path error")
	}
}

func TestInsertAndGetDraw(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	drawAt := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)
	d := insertDraw(t, store, draw.StatusCreated, now, drawAt.Add(-500*time.Second), drawAt)
	if d.ID <= 0 {
		t.Fatalf("expected positive id, got %d", d.ID)
	}

	got, err := store.GetDraw(context.Background(), d.ID)
	if err != nil {
		t.Fatalf("get draw: %v", err)
	}
	if got.GameID != testGameID || got.Status != draw.StatusCreated {
		t.Fatalf("draw = %+v", got)
	}
	if !got.OpenTime.Equal(now) || !got.CloseTime.Equal(drawAt.Add(-500*time.Second)) {
		t.Fatalf("window = %v..%v", got.OpenTime, got.CloseTime)
	}
	if got.DrawTime == nil || !got.DrawTime.Equal(drawAt) {
		t.Fatalf("draw time = %v", got.DrawTime)
	}
	if got.WinsetCalculatedAt != nil || got.WinsetConfirmedAt != nil {
		t.Fatal("expected winset timestamps unset")
	}
}

func TestGetDrawNotFound(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	if _, err := store.GetDraw(context.Background(), 999); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDrawQueries(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	readyCreated := insertDraw(t, store, draw.StatusCreated, now.Add(-time.Minute), now.Add(time.Hour), now.Add(2*time.Hour))
	futureCreated := insertDraw(t, store, draw.StatusCreated, now.Add(time.Minute), now.Add(time.Hour), now.Add(2*time.Hour))
	openActive := insertDraw(t, store, draw.StatusOpen, now.Add(-time.Hour), now.Add(time.Hour), now.Add(2*time.Hour))
	openExpired := insertDraw(t, store, draw.StatusOpen, now.Add(-2*time.Hour), now.Add(-time.Minute), now.Add(time.Hour))
	closedDue := insertDraw(t, store, draw.StatusClosed, now.Add(-3*time.Hour), now.Add(-2*time.Hour), now.Add(-time.Minute))
	closedLater := insertDraw(t, store, draw.StatusClosed, now.Add(-3*time.Hour), now.Add(-2*time.Hour), now.Add(time.Hour))
	insertDraw(t, store, draw.StatusFinalized, now.Add(-5*time.Hour), now.Add(-4*time.Hour), now.Add(-3*time.Hour))

	other := draw.New(uuid.New(), now.Add(-time.Hour), now.Add(time.Hour), now.Add(2*time.Hour), now)
	other.Status = draw.StatusOpen
	otherID, err := store.InsertDraw(ctx, other)
	if err != nil {
		t.Fatalf("insert other game draw: %v", err)
	}

	active, err := store.ActiveDraws(ctx, testGameID)
	if err != nil {
		t.Fatalf("active draws: %v", err)
	}
	if want := []int64{readyCreated.ID, futureCreated.ID, openActive.ID, openExpired.ID}; !reflect.DeepEqual(drawIDs(active), want) {
		t.Fatalf("active = %v, want %v", drawIDs(active), want)
	}

	ready, err := store.DrawsReadyToOpen(ctx, testGameID, now)
	if err != nil {
		t.Fatalf("ready to open: %v", err)
	}
	if want := []int64{readyCreated.ID}; !reflect.DeepEqual(drawIDs(ready), want) {
		t.Fatalf("ready = %v, want %v", drawIDs(ready), want)
	}

	dueClose, err := store.DrawsDueToClose(ctx, testGameID, now)
	if err != nil {
		t.Fatalf("due to close: %v", err)
	}
	if want := []int64{openExpired.ID}; !reflect.DeepEqual(drawIDs(dueClose), want) {
		t.Fatalf("due to close = %v, want %v", drawIDs(dueClose), want)
	}

	dueDraw, err := store.DrawsDueToDraw(ctx, testGameID, now)
	if err != nil {
		t.Fatalf("due to draw: %v", err)
	}
	if want := []int64{closedDue.ID}; !reflect.DeepEqual(drawIDs(dueDraw), want) {
		t.Fatalf("due to draw = %v, want %v", drawIDs(dueDraw), want)
	}

	pending, err := store.PendingDraws(ctx, testGameID)
	if err != nil {
		t.Fatalf("pending draws: %v", err)
	}
	if want := []int64{closedDue.ID, closedLater.ID}; !reflect.DeepEqual(drawIDs(pending), want) {
		t.Fatalf("pending = %v, want %v", drawIDs(pending), want)
	}

	open, err := store.OpenDraws(ctx, testGameID)
	if err != nil {
		t.Fatalf("open draws: %v", err)
	}
	if want := []int64{openActive.ID, openExpired.ID}; !reflect.DeepEqual(drawIDs(open), want) {
		t.Fatalf("open = %v, want %v", drawIDs(open), want)
	}

	all, err := store.OpenDraws(ctx, uuid.Nil)
	if err != nil {
		t.Fatalf("open draws all games: %v", err)
	}
	if want := []int64{openActive.ID, openExpired.ID, otherID}; !reflect.DeepEqual(drawIDs(all), want) {
		t.Fatalf("all open = %v, want %v", drawIDs(all), want)
	}
}

func TestUpdateDrawStatus(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	d := insertDraw(t, store, draw.StatusCreated, now, now.Add(time.Hour), now.Add(2*time.Hour))

	if err := draw.Transition(&d, draw.StatusOpen, now.Add(time.Minute)); err != nil {
		t.Fatalf("transition: %v", err)
	}
	if err := store.UpdateDrawStatus(ctx, d); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := store.GetDraw(ctx, d.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != draw.StatusOpen || !got.ModifiedAt.Equal(now.Add(time.Minute)) {
		t.Fatalf("draw = %+v", got)
	}

	missing := d
	missing.ID = 12345
	if err := store.UpdateDrawStatus(ctx, missing); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRecordDrawResult(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	d := insertDraw(t, store, draw.StatusClosed, now.Add(-time.Hour), now.Add(-time.Minute), now)

	levelA, levelB := uuid.New(), uuid.New()
	d.WinningNumbers = []draw.WinningNumbers{
		{DrawLevelID: levelA, Numbers: []int{3, 9, 12, 20, 33, 40}},
		{DrawLevelID: levelB, Numbers: []int{7}},
	}
	if err := draw.Transition(&d, draw.StatusDrawn, now.Add(time.Second)); err != nil {
		t.Fatalf("transition: %v", err)
	}
	if err := store.RecordDrawResult(ctx, d, make([]byte, 64)); err != nil {
		t.Fatalf("record result: %v", err)
	}

	got, err := store.GetDraw(ctx, d.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != draw.StatusDrawn {
		t.Fatalf("status = %s", got.Status)
	}
	if got.DrawTime == nil || !got.DrawTime.Equal(now.Add(time.Second)) {
		t.Fatalf("draw time = %v", got.DrawTime)
	}
	if !reflect.DeepEqual(got.WinningNumbers, d.WinningNumbers) {
		t.Fatalf("winning numbers = %+v", got.WinningNumbers)
	}
}

func testWager(draws ...draw.Draw) wager.Wager {
	wagerID := uuid.New()
	return wager.Wager{
		ID:     wagerID,
		UserID: uuid.New(),
		Draws:  draws,
		Boards: []wager.Board{
			{
				ID: uuid.New(), WagerID: wagerID, GameType: wager.GameTypeNormal,
				Selections: []wager.Selection{{ID: uuid.New(), Name: "primary", Values: []int{1, 2, 3, 4, 5, 6}}},
			},
			{
				ID: uuid.New(), WagerID: wagerID, GameType: wager.GameTypeSystem,
				Selections: []wager.Selection{
					{ID: uuid.New(), Name: "primary", Values: []int{1, 2, 3, 4, 5, 6, 7, 8}},
					{ID: uuid.New(), Name: "secondary", Values: []int{9}},
				},
			},
		},
		Stake:     decimal.RequireFromString("1.50"),
		Price:     decimal.RequireFromString("3.00"),
		CreatedAt: time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC),
	}
}

func TestInsertAndGetWagerRoundTrip(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	first := insertDraw(t, store, draw.StatusOpen, now, now.Add(time.Hour), now.Add(2*time.Hour))
	second := insertDraw(t, store, draw.StatusOpen, now, now.Add(25*time.Hour), now.Add(26*time.Hour))

	w := testWager(second, first)
	if err := store.InsertWager(ctx, w, w.DrawIDs()); err != nil {
		t.Fatalf("insert wager: %v", err)
	}

	got, err := store.GetWager(ctx, w.ID)
	if err != nil {
		t.Fatalf("get wager: %v", err)
	}
	if got.UserID != w.UserID || !got.Stake.Equal(w.Stake) || !got.Price.Equal(w.Price) {
		t.Fatalf("wager = %+v", got)
	}
	if !got.CreatedAt.Equal(w.CreatedAt) {
		t.Fatalf("created at = %v", got.CreatedAt)
	}
	if want := []int64{second.ID, first.ID}; !reflect.DeepEqual(got.DrawIDs(), want) {
		t.Fatalf("draw ids = %v, want %v", got.DrawIDs(), want)
	}
	if !reflect.DeepEqual(got.Boards, w.Boards) {
		t.Fatalf("boards = %+v, want %+v", got.Boards, w.Boards)
	}

	if err := store.InsertWager(ctx, w, w.DrawIDs()); !errors.Is(err, storage.ErrAlreadyExists) {
		t.Fatalf("expected duplicate wager error, got %v", err)
	}
}

func TestInsertWagerRollsBackOnFailure(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	d := insertDraw(t, store, draw.StatusOpen, now, now.Add(time.Hour), now.Add(2*time.Hour))

	w := testWager(d)
	// Reusing a board id violates the board primary key after the wager row
	// is already written.
	w.Boards[1].ID = w.Boards[0].ID
	if err := store.InsertWager(ctx, w, w.DrawIDs()); err == nil {
		t.Fatal("expected insert failure")
	}
	if _, err := store.GetWager(ctx, w.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected rolled back wager, got %v", err)
	}
}

func TestInTxRollsBack(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	boom := errors.New("boom")

	var insertedID int64
	err := store.InTx(ctx, func(ctx context.Context, tx storage.Store) error {
		id, err := tx.InsertDraw(ctx, draw.New(testGameID, now, now.Add(time.Hour), now.Add(2*time.Hour), now))
		if err != nil {
			return err
		}
		insertedID = id
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if _, err := store.GetDraw(ctx, insertedID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected draw rolled back, got %v", err)
	}
}

func TestCatalogAndAudit(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()

	if err := store.UpsertOperator(ctx, storage.Operator{ID: 1, Name: "Northern"}); err != nil {
		t.Fatalf("upsert operator: %v", err)
	}
	if err := store.UpsertOperator(ctx, storage.Operator{ID: 1, Name: "Northern Lotteries"}); err != nil {
		t.Fatalf("rename operator: %v", err)
	}
	if err := store.UpsertGame(ctx, storage.Game{ID: testGameID, OperatorID: 1, Name: "Lotto"}); err != nil {
		t.Fatalf("upsert game: %v", err)
	}
	if err := store.UpsertOperator(ctx, storage.Operator{ID: 2}); err == nil {
		t.Fatal("expected missing name error")
	}

	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, action := range []string{"draw.created", "draw.opened"} {
		entry := storage.AuditEntry{
			EntityType: "draw",
			EntityID:   "7",
			Action:     action,
			Data:       []byte(`{"status":"x"}`),
			CreatedAt:  created.Add(time.Duration(i) * time.Second),
		}
		if err := store.RecordAuditEntry(ctx, entry); err != nil {
			t.Fatalf("record audit: %v", err)
		}
	}
	entries, err := store.ListAuditEntries(ctx, "draw", "7")
	if err != nil {
		t.Fatalf("list audit: %v", err)
	}
	if len(entries) != 2 || entries[0].Action != "draw.created" || entries[1].Action != "draw.opened" {
		t.Fatalf("entries = %+v", entries)
	}
	if entries[0].ID == uuid.Nil {
		t.Fatal("expected generated audit id")
	}
}
