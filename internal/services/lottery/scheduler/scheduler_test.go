package scheduler

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/louisbranch/lottery/internal/random"
	"github.com/louisbranch/lottery/internal/services/lottery/domain/draw"
	"github.com/louisbranch/lottery/internal/services/lottery/events"
	"github.com/louisbranch/lottery/internal/services/lottery/game"
	"github.com/louisbranch/lottery/internal/services/lottery/storage"
	"github.com/louisbranch/lottery/internal/services/lottery/storage/sqlite"
)

var errInjected = errors.New("injected failure")

type faultyStore struct {
	storage.TxStore
	failInsert  bool
	failGetDraw map[int64]bool
	// movedTo overrides the status read inside the transaction, as if
	// another writer had already moved the draw.
	movedTo map[int64]draw.Status
}

func (f *faultyStore) InTx(ctx context.Context, fn func(ctx context.Context, store storage.Store) error) error {
	return f.TxStore.InTx(ctx, func(ctx context.Context, tx storage.Store) error {
		return fn(ctx, &faultyTx{Store: tx, parent: f})
	})
}

type faultyTx struct {
	storage.Store
	parent *faultyStore
}

func (t *faultyTx) InsertDraw(ctx context.Context, d draw.Draw) (int64, error) {
	if t.parent.failInsert {
		return 0, errInjected
	}
	return t.Store.InsertDraw(ctx, d)
}

func (t *faultyTx) GetDraw(ctx context.Context, id int64) (draw.Draw, error) {
	if t.parent.failGetDraw[id] {
		return draw.Draw{}, errInjected
	}
	d, err := t.Store.GetDraw(ctx, id)
	if err != nil {
		return d, err
	}
	if status, ok := t.parent.movedTo[id]; ok {
		d.Status = status
	}
	return d, nil
}

type recordingPublisher struct {
	types []string
}

func (p *recordingPublisher) Publish(_ context.Context, event events.Event) error {
	p.types = append(p.types, event.Type)
	return nil
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func loadGame(t *testing.T) game.Game {
	t.Helper()
	cfg, err := game.Load(filepath.Join("..", "game", "testdata", "game.yaml"))
	if err != nil {
		t.Fatalf("load game: %v", err)
	}
	return cfg.Game
}

func openStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "lottery.db"))
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

func sequentialSeed() random.Seed {
	var seed random.Seed
	for i := range seed {
		seed[i] = byte(i)
	}
	return seed
}

func TestNewValidatesInputs(t *testing.T) {
	g := loadGame(t)
	store := openStore(t)

	if _, err := New(nil, g); err == nil {
		t.Fatal("expected store error")
	}
	noSchedule := g
	noSchedule.Schedule = nil
	if _, err := New(store, noSchedule); err == nil {
		t.Fatal("expected schedule error")
	}
	noTarget := g
	noTarget.OpenDraws = 0
	if _, err := New(store, noTarget); err == nil {
		t.Fatal("expected target error")
	}
}

func TestTickConvergesToOpenDrawsTarget(t *testing.T) {
	g := loadGame(t)
	store := openStore(t)
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	s, err := New(store, g, WithClock(clock.Now))
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}

	report := s.Tick(context.Background())
	if report.Created != 5 || report.Failed != 0 {
		t.Fatalf("report = %+v, want 5 created", report)
	}

	active, err := store.ActiveDraws(context.Background(), g.ID)
	if err != nil {
		t.Fatalf("active draws: %v", err)
	}
	if len(active) != 5 {
		t.Fatalf("active = %d, want 5", len(active))
	}
	for i, d := range active {
		want := time.Date(2026, 3, 1+i, 18, 0, 0, 0, time.UTC)
		if d.Status != draw.StatusCreated {
			t.Fatalf("draw %d status = %s, want created", d.ID, d.Status)
		}
		if d.DrawTime == nil || !d.DrawTime.Equal(want) {
			t.Fatalf("draw %d time = %v, want %v", d.ID, d.DrawTime, want)
		}
		if !d.OpenTime.Equal(clock.now) {
			t.Fatalf("draw %d open time = %v, want %v", d.ID, d.OpenTime, clock.now)
		}
		if !d.CloseTime.Equal(want.Add(-500 * time.Second)) {
			t.Fatalf("draw %d close time = %v", d.ID, d.CloseTime)
		}
	}

	again := s.Tick(context.Background())
	if again.Created != 0 || again.Opened != 5 {
		t.Fatalf("second tick = %+v, want 5 opened and none created", again)
	}
	open, err := store.OpenDraws(context.Background(), g.ID)
	if err != nil {
		t.Fatalf("open draws: %v", err)
	}
	if len(open) != 5 {
		t.Fatalf("open = %d, want 5", len(open))
	}
}

func TestTickClampsCloseTimeForImminentDraw(t *testing.T) {
	g := loadGame(t)
	g.OpenDraws = 1
	store := openStore(t)
	now := time.Date(2026, 3, 1, 17, 58, 0, 0, time.UTC)
	s, err := New(store, g, WithClock(func() time.Time { return now }))
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}
	s.Tick(context.Background())

	active, err := store.ActiveDraws(context.Background(), g.ID)
	if err != nil {
		t.Fatalf("active draws: %v", err)
	}
	if len(active) != 1 {
		t.Fatalf("active = %d, want 1", len(active))
	}
	if !active[0].CloseTime.Equal(now) || !active[0].OpenTime.Equal(now) {
		t.Fatalf("window = %v..%v, want clamped to %v", active[0].OpenTime, active[0].CloseTime, now)
	}
}

func TestTickIntervalSchedule(t *testing.T) {
	g := loadGame(t)
	g.OpenDraws = 3
	g.Schedule = draw.Interval{Every: 30 * time.Minute}
	store := openStore(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s, err := New(store, g, WithClock(func() time.Time { return now }))
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}
	s.Tick(context.Background())

	active, err := store.ActiveDraws(context.Background(), g.ID)
	if err != nil {
		t.Fatalf("active draws: %v", err)
	}
	var got []time.Time
	for _, d := range active {
		got = append(got, d.ScheduledAt())
	}
	want := []time.Time{now.Add(30 * time.Minute), now.Add(time.Hour), now.Add(90 * time.Minute)}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("draw times = %v, want %v", got, want)
	}
}

func TestTickAdvancesAndDrawsDueDraws(t *testing.T) {
	g := loadGame(t)
	store := openStore(t)
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	publisher := &recordingPublisher{}
	s, err := New(store, g,
		WithClock(clock.Now),
		WithSeedSource(random.Fixed(sequentialSeed())),
		WithPublisher(publisher),
	)
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}
	s.Tick(context.Background())
	active, err := store.ActiveDraws(context.Background(), g.ID)
	if err != nil {
		t.Fatalf("active draws: %v", err)
	}
	first := active[0].ID

	clock.now = time.Date(2026, 3, 1, 17, 55, 0, 0, time.UTC)
	report := s.Tick(context.Background())
	if report.Opened != 5 || report.Closed != 1 || report.Drawn != 0 || report.Created != 1 {
		t.Fatalf("closing tick = %+v", report)
	}

	pending, err := store.PendingDraws(context.Background(), g.ID)
	if err != nil {
		t.Fatalf("pending draws: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != first {
		t.Fatalf("pending = %+v, want draw %d", pending, first)
	}
	active, err = store.ActiveDraws(context.Background(), g.ID)
	if err != nil {
		t.Fatalf("active draws: %v", err)
	}
	latest, _ := draw.LatestScheduled(active)
	if want := time.Date(2026, 3, 6, 18, 0, 0, 0, time.UTC); !latest.Equal(want) {
		t.Fatalf("latest draw time = %v, want %v", latest, want)
	}

	clock.now = time.Date(2026, 3, 1, 18, 0, 30, 0, time.UTC)
	report = s.Tick(context.Background())
	if report.Drawn != 1 || report.Failed != 0 {
		t.Fatalf("drawing tick = %+v", report)
	}

	drawn, err := store.GetDraw(context.Background(), first)
	if err != nil {
		t.Fatalf("get draw: %v", err)
	}
	if drawn.Status != draw.StatusDrawn {
		t.Fatalf("status = %s, want drawn", drawn.Status)
	}
	if drawn.DrawTime == nil || !drawn.DrawTime.Equal(clock.now) {
		t.Fatalf("draw time = %v, want %v", drawn.DrawTime, clock.now)
	}
	wantNumbers := []draw.WinningNumbers{
		{DrawLevelID: game.LevelID(g.ID, "primary"), Numbers: []int{6, 8, 10, 14, 37, 39}},
		{DrawLevelID: game.LevelID(g.ID, "secondary"), Numbers: []int{26}},
	}
	if !reflect.DeepEqual(drawn.WinningNumbers, wantNumbers) {
		t.Fatalf("winning numbers = %+v, want %+v", drawn.WinningNumbers, wantNumbers)
	}

	counts := map[string]int{}
	for _, typ := range publisher.types {
		counts[typ]++
	}
	want := map[string]int{
		events.TypeDrawCreated: 6,
		events.TypeDrawOpened:  6,
		events.TypeDrawClosed:  1,
		events.TypeDrawDrawn:   1,
	}
	if !reflect.DeepEqual(counts, want) {
		t.Fatalf("events = %v, want %v", counts, want)
	}
}

func TestTickWithoutAutoAdvanceKeepsDrawsOpen(t *testing.T) {
	g := loadGame(t)
	store := openStore(t)
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	s, err := New(store, g, WithClock(clock.Now), WithAutoAdvance(false))
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}
	s.Tick(context.Background())

	clock.now = time.Date(2026, 3, 1, 19, 0, 0, 0, time.UTC)
	report := s.Tick(context.Background())
	if report.Closed != 0 || report.Drawn != 0 {
		t.Fatalf("report = %+v, want no auto-advance", report)
	}
	open, err := store.OpenDraws(context.Background(), g.ID)
	if err != nil {
		t.Fatalf("open draws: %v", err)
	}
	if len(open) != 5 {
		t.Fatalf("open = %d, want 5", len(open))
	}
}

func TestTickInsertFailureEndsCreation(t *testing.T) {
	g := loadGame(t)
	store := &faultyStore{TxStore: openStore(t), failInsert: true}
	s, err := New(store, g, WithClock(func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }))
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}

	report := s.Tick(context.Background())
	if report.Created != 0 || report.Failed != 1 {
		t.Fatalf("report = %+v, want one failure and no draws", report)
	}

	store.failInsert = false
	report = s.Tick(context.Background())
	if report.Created != 5 {
		t.Fatalf("retry tick = %+v, want 5 created", report)
	}
}

func TestTickSkipsFailingDraw(t *testing.T) {
	g := loadGame(t)
	inner := openStore(t)
	store := &faultyStore{TxStore: inner, failGetDraw: map[int64]bool{}}
	s, err := New(store, g, WithClock(func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }))
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}
	s.Tick(context.Background())

	active, err := inner.ActiveDraws(context.Background(), g.ID)
	if err != nil {
		t.Fatalf("active draws: %v", err)
	}
	store.failGetDraw[active[0].ID] = true

	report := s.Tick(context.Background())
	if report.Opened != 4 || report.Failed != 1 {
		t.Fatalf("report = %+v, want 4 opened and 1 failure", report)
	}
	stuck, err := inner.GetDraw(context.Background(), active[0].ID)
	if err != nil {
		t.Fatalf("get draw: %v", err)
	}
	if stuck.Status != draw.StatusCreated {
		t.Fatalf("status = %s, want created", stuck.Status)
	}
}

func TestTickRejectsStepForDrawMovedConcurrently(t *testing.T) {
	g := loadGame(t)
	inner := openStore(t)
	store := &faultyStore{TxStore: inner, movedTo: map[int64]draw.Status{}}
	publisher := &recordingPublisher{}
	s, err := New(store, g,
		WithClock(func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }),
		WithPublisher(publisher),
	)
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}
	s.Tick(context.Background())

	active, err := inner.ActiveDraws(context.Background(), g.ID)
	if err != nil {
		t.Fatalf("active draws: %v", err)
	}
	store.movedTo[active[0].ID] = draw.StatusCancelled
	publisher.types = nil

	report := s.Tick(context.Background())
	if report.Opened != 4 || report.Failed != 1 {
		t.Fatalf("report = %+v, want 4 opened and 1 rejected", report)
	}
	if len(publisher.types) != 4 {
		t.Fatalf("events = %v, want only the 4 opened draws", publisher.types)
	}
	kept, err := inner.GetDraw(context.Background(), active[0].ID)
	if err != nil {
		t.Fatalf("get draw: %v", err)
	}
	if kept.Status != draw.StatusCreated {
		t.Fatalf("status = %s, want created", kept.Status)
	}
}

func TestRunTicksImmediatelyAndStopsOnCancel(t *testing.T) {
	g := loadGame(t)
	store := openStore(t)
	s, err := New(store, g,
		WithClock(func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }),
		WithInterval(time.Hour),
	)
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	deadline := time.Now().Add(5 * time.Second)
	for {
		active, err := store.ActiveDraws(context.Background(), g.ID)
		if err == nil && len(active) == 5 {
			break
		}
		if time.Now().After(deadline) {
			cancel()
			t.Fatal("scheduler did not tick at startup")
		}
		time.Sleep(10 * time.Millisecond)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}
