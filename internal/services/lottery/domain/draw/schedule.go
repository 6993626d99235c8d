package draw

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// Schedule computes the next draw instant strictly after an anchor.
type Schedule interface {
	Next(anchor time.Time) time.Time
}

// cronSchedule resolves wall-clock schedules through a standard cron
// expression evaluated in loc.
type cronSchedule struct {
	spec     cron.Schedule
	loc      *time.Location
	describe string
}

func (s cronSchedule) Next(anchor time.Time) time.Time {
	return s.spec.Next(anchor.In(s.loc)).UTC()
}

func (s cronSchedule) String() string {
	return s.describe
}

// Daily draws once a day at hh:mm in loc.
func Daily(clock string, loc *time.Location) (Schedule, error) {
	hour, minute, err := ParseClock(clock)
	if err != nil {
		return nil, err
	}
	return newCronSchedule(fmt.Sprintf("%d %d * * *", minute, hour), loc, "daily "+clock)
}

// Weekly draws at hh:mm in loc on each listed weekday.
func Weekly(days []time.Weekday, clock string, loc *time.Location) (Schedule, error) {
	if len(days) == 0 {
		return nil, fmt.Errorf("weekly schedule needs at least one day")
	}
	hour, minute, err := ParseClock(clock)
	if err != nil {
		return nil, err
	}
	fields := make([]string, 0, len(days))
	for _, day := range days {
		if day < time.Sunday || day > time.Saturday {
			return nil, fmt.Errorf("invalid weekday %d", day)
		}
		fields = append(fields, strconv.Itoa(int(day)))
	}
	expr := fmt.Sprintf("%d %d * * %s", minute, hour, strings.Join(fields, ","))
	return newCronSchedule(expr, loc, "weekly "+clock)
}

func newCronSchedule(expr string, loc *time.Location, describe string) (Schedule, error) {
	if loc == nil {
		loc = time.UTC
	}
	spec, err := cron.ParseStandard(expr)
	if err != nil {
		return nil, fmt.Errorf("parse schedule %q: %w", expr, err)
	}
	return cronSchedule{spec: spec, loc: loc, describe: describe}, nil
}

// Interval draws a fixed duration after the previous draw.
type Interval struct {
	Every time.Duration
}

// Next implements Schedule.
func (i Interval) Next(anchor time.Time) time.Time {
	return anchor.Add(i.Every).UTC()
}

// ParseClock parses "HH:MM" in 24-hour form.
func ParseClock(value string) (hour, minute int, err error) {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("time %q must be HH:MM", value)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("time %q has invalid hour", value)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("time %q has invalid minute", value)
	}
	return hour, minute, nil
}

// ParseWeekday accepts full or three-letter English day names.
func ParseWeekday(value string) (time.Weekday, error) {
	name := strings.ToLower(strings.TrimSpace(value))
	for day := time.Sunday; day <= time.Saturday; day++ {
		full := strings.ToLower(day.String())
		if name == full || name == full[:3] {
			return day, nil
		}
	}
	return time.Sunday, fmt.Errorf("unknown weekday %q", value)
}

// NextWindow returns the open, close and draw times of the next draw after
// anchor. closedFor is how long before the draw wagering closes; the close
// time never precedes now, which is used as the open time.
func NextWindow(schedule Schedule, anchor, now time.Time, closedFor time.Duration) (openTime, closeTime, drawTime time.Time) {
	drawTime = schedule.Next(anchor)
	closeTime = drawTime.Add(-closedFor)
	openTime = now.UTC()
	if closeTime.Before(openTime) {
		closeTime = openTime
	}
	return openTime, closeTime.UTC(), drawTime
}
