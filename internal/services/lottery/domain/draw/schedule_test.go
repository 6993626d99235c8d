package draw

import (
	"testing"
	"time"
)

func TestDailyNext(t *testing.T) {
	schedule, err := Daily("18:00", time.UTC)
	if err != nil {
		t.Fatalf("daily: %v", err)
	}
	cases := []struct {
		anchor time.Time
		want   time.Time
	}{
		{time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)},
		{time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC), time.Date(2026, 3, 2, 18, 0, 0, 0, time.UTC)},
		{time.Date(2026, 3, 1, 20, 30, 0, 0, time.UTC), time.Date(2026, 3, 2, 18, 0, 0, 0, time.UTC)},
		{time.Date(2026, 12, 31, 19, 0, 0, 0, time.UTC), time.Date(2027, 1, 1, 18, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		if got := schedule.Next(tc.anchor); !got.Equal(tc.want) {
			t.Fatalf("Next(%v) = %v, want %v", tc.anchor, got, tc.want)
		}
	}
}

func TestDailyNextInLocation(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	schedule, err := Daily("18:00", loc)
	if err != nil {
		t.Fatalf("daily: %v", err)
	}
	anchor := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	want := time.Date(2026, 3, 1, 16, 0, 0, 0, time.UTC)
	if got := schedule.Next(anchor); !got.Equal(want) {
		t.Fatalf("Next = %v, want %v", got, want)
	}
}

func TestWeeklyNext(t *testing.T) {
	schedule, err := Weekly([]time.Weekday{time.Wednesday, time.Saturday}, "20:00", time.UTC)
	if err != nil {
		t.Fatalf("weekly: %v", err)
	}
	// 2026-03-02 is a Monday.
	anchor := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	first := schedule.Next(anchor)
	if want := time.Date(2026, 3, 4, 20, 0, 0, 0, time.UTC); !first.Equal(want) {
		t.Fatalf("first = %v, want %v", first, want)
	}
	second := schedule.Next(first)
	if want := time.Date(2026, 3, 7, 20, 0, 0, 0, time.UTC); !second.Equal(want) {
		t.Fatalf("second = %v, want %v", second, want)
	}
}

func TestWeeklyRejectsEmptyDays(t *testing.T) {
	if _, err := Weekly(nil, "20:00", time.UTC); err == nil {
		t.Fatal("expected error for empty days")
	}
}

func TestIntervalNext(t *testing.T) {
	anchor := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	got := Interval{Every: 15 * time.Minute}.Next(anchor)
	if !got.Equal(anchor.Add(15 * time.Minute)) {
		t.Fatalf("Next = %v", got)
	}
}

func TestParseClock(t *testing.T) {
	hour, minute, err := ParseClock("07:05")
	if err != nil || hour != 7 || minute != 5 {
		t.Fatalf("ParseClock = %d, %d, %v", hour, minute, err)
	}
	for _, bad := range []string{"", "7", "24:00", "12:60", "ab:cd", "1:2:3"} {
		if _, _, err := ParseClock(bad); err == nil {
			t.Fatalf("expected %q to fail", bad)
		}
	}
}

func TestParseWeekday(t *testing.T) {
	cases := map[string]time.Weekday{
		"monday": time.Monday,
		"Sat":    time.Saturday,
		" SUN ":  time.Sunday,
	}
	for input, want := range cases {
		got, err := ParseWeekday(input)
		if err != nil || got != want {
			t.Fatalf("ParseWeekday(%q) = %v, %v", input, got, err)
		}
	}
	if _, err := ParseWeekday("funday"); err == nil {
		t.Fatal("expected unknown weekday error")
	}
}

func TestNextWindow(t *testing.T) {
	schedule, err := Daily("18:00", time.UTC)
	if err != nil {
		t.Fatalf("daily: %v", err)
	}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	openAt, closeAt, drawAt := NextWindow(schedule, now, now, 500*time.Second)
	if !openAt.Equal(now) {
		t.Fatalf("open = %v", openAt)
	}
	if want := time.Date(2026, 3, 1, 17, 51, 40, 0, time.UTC); !closeAt.Equal(want) {
		t.Fatalf("close = %v, want %v", closeAt, want)
	}
	if want := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC); !drawAt.Equal(want) {
		t.Fatalf("draw = %v, want %v", drawAt, want)
	}

	late := time.Date(2026, 3, 1, 17, 58, 0, 0, time.UTC)
	openAt, closeAt, _ = NextWindow(schedule, late, late, 500*time.Second)
	if !closeAt.Equal(openAt) {
		t.Fatalf("expected close clamped to open, got %v and %v", openAt, closeAt)
	}
}
