package app

import (
	"context"
	"encoding/json"
	"net/http"
	"path/filepath"
	"strings"
	"testing"
	"time"

	lotteryv1 "github.com/louisbranch/lottery/api/lottery/v1"
	platformgrpc "github.com/louisbranch/lottery/internal/platform/grpc"
	"github.com/louisbranch/lottery/internal/services/lottery/events"
	"go.uber.org/zap/zaptest"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const testUserID = "2c1b0a09-8f7e-4d6c-9b5a-493827161504"

func testConfig(t *testing.T) Config {
	t.Helper()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return Config{
		GRPCAddr:          "127.0.0.1:0",
		HTTPAddr:          "127.0.0.1:0",
		StorageDriver:     DriverSQLite,
		DBPath:            filepath.Join(t.TempDir(), "lottery.db"),
		GameConfigPath:    filepath.Join("..", "game", "testdata", "game.yaml"),
		SchedulerInterval: time.Hour,
		AutoAdvance:       true,
		Logger:            zaptest.NewLogger(t),
		Clock:             func() time.Time { return now },
	}
}

func TestNewRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name string
		mut  func(*Config)
		want string
	}{
		{name: "missing game config", mut: func(c *Config) { c.GameConfigPath = filepath.Join(t.TempDir(), "none.yaml") }, want: "game"},
		{name: "unknown driver", mut: func(c *Config) { c.StorageDriver = "mongo" }, want: "unknown storage driver"},
		{name: "postgres without url", mut: func(c *Config) { c.StorageDriver = DriverPostgres }, want: "database url is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			tt.mut(&cfg)
			_, err := New(context.Background(), cfg)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestServerRoundTrip(t *testing.T) {
	cfg := testConfig(t)
	srv, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	served := make(chan error, 1)
	go func() { served <- srv.Serve(ctx) }()

	conn, err := platformgrpc.Connect(ctx, platformgrpc.ClientConfig{
		Addr:     srv.GRPCAddr(),
		Services: []string{lotteryv1.DrawServiceName, lotteryv1.WageringServiceName, lotteryv1.AdminServiceName},
		Timeout:  5 * time.Second,
		Logger:   cfg.Logger,
	})
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	drawsClient := lotteryv1.NewDrawServiceClient(conn)
	adminClient := lotteryv1.NewAdminServiceClient(conn)
	wagerClient := lotteryv1.NewWageringServiceClient(conn)

	// The first scheduler tick runs in the background and fills the calendar.
	deadline := time.Now().Add(5 * time.Second)
	for {
		_, err := drawsClient.GetDraw(ctx, &lotteryv1.GetDrawRequest{DrawID: 5})
		if err == nil {
			break
		}
		if status.Code(err) != codes.NotFound || time.Now().After(deadline) {
			t.Fatalf("wait for calendar: %v", err)
		}
		time.Sleep(20 * time.Millisecond)
	}

	opened, err := adminClient.TransitionDraw(ctx, &lotteryv1.TransitionDrawRequest{DrawID: 1, Status: lotteryv1.DrawStatusOpen})
	if err != nil {
		t.Fatalf("open draw: %v", err)
	}
	if opened.Draw.Status != lotteryv1.DrawStatusOpen {
		t.Fatalf("status = %s", opened.Draw.Status)
	}

	placed, err := wagerClient.PlaceWager(ctx, &lotteryv1.PlaceWagerRequest{
		UserID:  testUserID,
		DrawIDs: []int64{1},
		Boards:  []lotteryv1.Board{{GameType: "normal", Selections: []lotteryv1.Selection{{Name: "primary", Values: []int{1, 2, 3, 4, 5, 6}}}}},
	})
	if err != nil {
		t.Fatalf("place wager: %v", err)
	}
	if placed.Wager.Price != "1.00" || len(placed.Wager.Draws) != 1 {
		t.Fatalf("wager = %+v", placed.Wager)
	}

	resp, err := http.Get("http://" + srv.HTTPAddr() + "/v1/wagers/" + placed.Wager.ID)
	if err != nil {
		t.Fatalf("http get wager: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("http status = %d", resp.StatusCode)
	}
	var got lotteryv1.GetWagerResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Wager.ID != placed.Wager.ID || len(got.Wager.Boards) != 1 {
		t.Fatalf("http wager = %+v", got.Wager)
	}

	audit, err := srv.store.ListAuditEntries(ctx, events.EntityWager, placed.Wager.ID)
	if err != nil {
		t.Fatalf("list audit: %v", err)
	}
	if len(audit) != 1 || audit[0].Action != events.TypeWagerPlaced {
		t.Fatalf("audit = %+v", audit)
	}

	cancel()
	select {
	case err := <-served:
		if err != nil {
			t.Fatalf("serve: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("server did not stop")
	}
}
