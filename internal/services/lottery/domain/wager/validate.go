package wager

import (
	"fmt"
	"strconv"

	apperrors "github.com/louisbranch/lottery/internal/platform/errors"
	"github.com/louisbranch/lottery/internal/services/lottery/domain/draw"
)

// DefaultSystemSelection names the selection that sizes system boards.
const DefaultSystemSelection = "primary"

// Validator checks boards against the game's wager classes and draw levels.
// It holds no mutable state and is safe for concurrent use.
type Validator struct {
	classes         map[ClassKey]Class
	levels          map[string]draw.Level
	systemSelection string
}

// NewValidator indexes classes by key. Two classes with the same key are a
// configuration error.
func NewValidator(classes []Class, levels []draw.Level, systemSelection string) (*Validator, error) {
	if systemSelection == "" {
		systemSelection = DefaultSystemSelection
	}
	v := &Validator{
		classes:         make(map[ClassKey]Class, len(classes)),
		levels:          make(map[string]draw.Level, len(levels)),
		systemSelection: systemSelection,
	}
	for _, class := range classes {
		if _, dup := v.classes[class.Key]; dup {
			return nil, fmt.Errorf("duplicate wager class %s", class.Key)
		}
		v.classes[class.Key] = class
	}
	for _, level := range levels {
		v.levels[level.Name] = level
	}
	return v, nil
}

// ClassFor returns the class a board plays under.
func (v *Validator) ClassFor(board Board) (Class, bool) {
	class, ok := v.classes[KeyFor(board, v.systemSelection)]
	return class, ok
}

// ValidateBoards validates every board in order and stops at the first
// failing one.
func (v *Validator) ValidateBoards(boards []Board) error {
	if len(boards) == 0 {
		return apperrors.New(apperrors.CodeWagerNoBoards, "wager has no boards")
	}
	for i, board := range boards {
		if err := v.ValidateBoard(i, board); err != nil {
			return err
		}
	}
	return nil
}

// ValidateBoard checks a single board; index is reported in error metadata.
func (v *Validator) ValidateBoard(index int, board Board) error {
	boardLabel := strconv.Itoa(index)
	fail := func(code apperrors.Code, msg string, extra map[string]string) error {
		meta := map[string]string{"Board": boardLabel}
		for k, val := range extra {
			meta[k] = val
		}
		return apperrors.WithMetadata(code, fmt.Sprintf("board %d: %s", index, msg), meta)
	}

	if board.GameType != GameTypeNormal && board.GameType != GameTypeSystem {
		return fail(apperrors.CodeWagerInvalidGameType, "invalid game type "+strconv.Quote(string(board.GameType)), nil)
	}

	key := KeyFor(board, v.systemSelection)
	class, ok := v.classes[key]
	if !ok {
		return fail(apperrors.CodeWagerUnknownClass, "no wager class "+key.String(), map[string]string{"Class": key.String()})
	}

	played := make(map[string]Selection, len(board.Selections))
	for _, sel := range board.Selections {
		if _, dup := played[sel.Name]; dup {
			return fail(apperrors.CodeWagerDuplicateSelection, "selection "+sel.Name+" repeated", map[string]string{"Selection": sel.Name})
		}
		played[sel.Name] = sel
	}

	expected := class.Expected()
	for i, name := range class.Selections {
		if i >= len(class.NumberOfSelections) {
			break
		}
		want := class.NumberOfSelections[i]
		sel, ok := played[name]
		if !ok {
			return fail(apperrors.CodeWagerMissingSelection, "missing selection "+name, map[string]string{"Selection": name})
		}
		if got := len(sel.Values); got != want {
			return fail(apperrors.CodeWagerSelectionCountMismatch,
				fmt.Sprintf("selection %s needs %d values, got %d", name, want, got),
				map[string]string{"Selection": name, "Want": strconv.Itoa(want), "Got": strconv.Itoa(got)})
		}
	}

	for _, sel := range board.Selections {
		if _, ok := expected[sel.Name]; !ok {
			return fail(apperrors.CodeWagerUnexpectedSelection, "unexpected selection "+sel.Name, map[string]string{"Selection": sel.Name})
		}
	}

	for _, sel := range board.Selections {
		level, hasLevel := v.levels[sel.Name]
		seen := make(map[int]struct{}, len(sel.Values))
		for _, value := range sel.Values {
			if hasLevel && (value < level.MinValue || value > level.MaxValue) {
				return fail(apperrors.CodeWagerSelectionOutOfRange,
					fmt.Sprintf("selection %s value %d outside %d..%d", sel.Name, value, level.MinValue, level.MaxValue),
					map[string]string{
						"Selection": sel.Name,
						"Value":     strconv.Itoa(value),
						"Min":       strconv.Itoa(level.MinValue),
						"Max":       strconv.Itoa(level.MaxValue),
					})
			}
			if _, dup := seen[value]; dup {
				return fail(apperrors.CodeWagerDuplicateSelectionValue,
					fmt.Sprintf("selection %s repeats value %d", sel.Name, value),
					map[string]string{"Selection": sel.Name, "Value": strconv.Itoa(value)})
			}
			seen[value] = struct{}{}
		}
	}
	return nil
}
