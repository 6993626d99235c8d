// Package draw models the lottery draw lifecycle, draw schedules and the
// seeded winning number generator.
package draw

import (
	"time"

	"github.com/google/uuid"
	apperrors "github.com/louisbranch/lottery/internal/platform/errors"
)

// Draw is one scheduled drawing of a game.
type Draw struct {
	ID         int64
	GameID     uuid.UUID
	Status     Status
	CreatedAt  time.Time
	ModifiedAt time.Time
	OpenTime   time.Time
	CloseTime  time.Time
	// DrawTime holds the scheduled draw instant until the draw happens, then
	// the actual instant it was drawn.
	DrawTime           *time.Time
	WinsetCalculatedAt *time.Time
	WinsetConfirmedAt  *time.Time
	WinningNumbers     []WinningNumbers
}

// Level is one independently drawn set of numbers within a game.
type Level struct {
	ID                 uuid.UUID
	GameID             uuid.UUID
	Name               string
	NumberOfSelections int
	MinValue           int
	MaxValue           int
	DependentOn        string
}

// Span returns how many distinct values the level can produce.
func (l Level) Span() int {
	return l.MaxValue - l.MinValue + 1
}

// WinningNumbers are the drawn values of one level, sorted ascending.
type WinningNumbers struct {
	DrawLevelID uuid.UUID
	Numbers     []int
}

// New builds a draw in Created status. A close time before the open time is
// clamped to the open time.
func New(gameID uuid.UUID, openTime, closeTime, drawTime, now time.Time) Draw {
	if closeTime.Before(openTime) {
		closeTime = openTime
	}
	scheduled := drawTime.UTC()
	return Draw{
		GameID:     gameID,
		Status:     StatusCreated,
		CreatedAt:  now.UTC(),
		ModifiedAt: now.UTC(),
		OpenTime:   openTime.UTC(),
		CloseTime:  closeTime.UTC(),
		DrawTime:   &scheduled,
	}
}

// Transition moves d to target, stamping the timestamps the edge owns. On a
// disallowed edge d is left untouched.
func Transition(d *Draw, target Status, now time.Time) error {
	if d == nil {
		return apperrors.New(apperrors.CodeDrawInvalidStatusTransition, "draw is required")
	}
	if !CanTransition(d.Status, target) {
		return TransitionError(d.Status, target)
	}
	now = now.UTC()
	switch target {
	case StatusDrawn:
		d.DrawTime = &now
	case StatusWinsetCalculated:
		d.WinsetCalculatedAt = &now
	case StatusWinsetConfirmed:
		d.WinsetConfirmedAt = &now
	}
	d.Status = target
	d.ModifiedAt = now
	return nil
}

// Apply resolves event against the draw's status and transitions to the result.
func Apply(d *Draw, event Event, now time.Time) error {
	if d == nil {
		return apperrors.New(apperrors.CodeDrawInvalidStatusTransition, "draw is required")
	}
	to, ok := Next(d.Status, event)
	if !ok {
		return apperrors.WithMetadata(
			apperrors.CodeDrawEventNotAllowed,
			"event "+string(event)+" not allowed from "+string(d.Status),
			map[string]string{"FromStatus": string(d.Status), "Event": string(event)},
		)
	}
	return Transition(d, to, now)
}

// TransitionError reports a rejected lifecycle edge.
func TransitionError(from, to Status) error {
	return apperrors.WithMetadata(
		apperrors.CodeDrawInvalidStatusTransition,
		"invalid draw status transition from "+string(from)+" to "+string(to),
		map[string]string{"FromStatus": string(from), "ToStatus": string(to)},
	)
}

// IsOpenForWagering reports whether wagers may be placed on d at now. The
// window includes the open time and excludes the close time.
func IsOpenForWagering(d Draw, now time.Time) bool {
	return d.Status == StatusOpen && !now.Before(d.OpenTime) && now.Before(d.CloseTime)
}

// ScheduledAt returns the draw instant, or the zero time when unset.
func (d Draw) ScheduledAt() time.Time {
	if d.DrawTime == nil {
		return time.Time{}
	}
	return *d.DrawTime
}

// LatestScheduled returns the greatest draw time across draws and whether
// any draw carried one.
func LatestScheduled(draws []Draw) (time.Time, bool) {
	var latest time.Time
	found := false
	for _, d := range draws {
		at := d.ScheduledAt()
		if at.IsZero() {
			continue
		}
		if !found || at.After(latest) {
			latest = at
			found = true
		}
	}
	return latest, found
}
