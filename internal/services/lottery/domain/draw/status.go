package draw

import "strings"

// Status describes where a draw is in its lifecycle.
type Status string

const (
	StatusUnspecified      Status = ""
	StatusCreated          Status = "created"
	StatusOpen             Status = "open"
	StatusClosed           Status = "closed"
	StatusDrawn            Status = "drawn"
	StatusWinsetCalculated Status = "winset_calculated"
	StatusWinsetConfirmed  Status = "winset_confirmed"
	StatusFinalized        Status = "finalized"
	StatusCancelled        Status = "cancelled"
)

// Event names a lifecycle step.
type Event string

const (
	EventOpen            Event = "open"
	EventClose           Event = "close"
	EventDraw            Event = "draw"
	EventCalculateWinset Event = "calculate_winset"
	EventConfirmWinset   Event = "confirm_winset"
	EventFinalize        Event = "finalize"
	EventCancel          Event = "cancel"
)

// transitions is the full lifecycle table. Cancel edges are added for every
// non-terminal status in init.
var transitions = map[Status]map[Event]Status{
	StatusCreated:          {EventOpen: StatusOpen},
	StatusOpen:             {EventClose: StatusClosed},
	StatusClosed:           {EventDraw: StatusDrawn},
	StatusDrawn:            {EventCalculateWinset: StatusWinsetCalculated},
	StatusWinsetCalculated: {EventConfirmWinset: StatusWinsetConfirmed},
	StatusWinsetConfirmed:  {EventFinalize: StatusFinalized},
	StatusFinalized:        {},
	StatusCancelled:        {},
}

func init() {
	for from, edges := range transitions {
		if !from.IsTerminal() {
			edges[EventCancel] = StatusCancelled
		}
	}
}

// AllStatuses lists every known status in lifecycle order.
func AllStatuses() []Status {
	return []Status{
		StatusCreated,
		StatusOpen,
		StatusClosed,
		StatusDrawn,
		StatusWinsetCalculated,
		StatusWinsetConfirmed,
		StatusFinalized,
		StatusCancelled,
	}
}

// ParseStatus canonicalizes a status label.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if _, ok := transitions[normalized]; !ok {
		return StatusUnspecified, false
	}
	return normalized, true
}

// IsTerminal reports whether no further transitions leave s.
func (s Status) IsTerminal() bool {
	return s == StatusFinalized || s == StatusCancelled
}

// IsActive reports whether s counts toward the scheduler's open-draw target.
func (s Status) IsActive() bool {
	return s == StatusCreated || s == StatusOpen
}

// Next applies event to from.
func Next(from Status, event Event) (Status, bool) {
	to, ok := transitions[from][event]
	return to, ok
}

// CanTransition reports whether from may move directly to to.
func CanTransition(from, to Status) bool {
	_, ok := eventFor(from, to)
	return ok
}

func eventFor(from, to Status) (Event, bool) {
	for event, target := range transitions[from] {
		if target == to {
			return event, true
		}
	}
	return "", false
}
