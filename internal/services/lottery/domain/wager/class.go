package wager

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ClassKey identifies a wager class. Normal boards use Count 0; system
// boards use the number of values in the game's system selection.
type ClassKey struct {
	GameType GameType
	Count    int
}

// String renders the key in its configuration form ("normal", "system7").
func (k ClassKey) String() string {
	if k.GameType == GameTypeSystem {
		return "system" + strconv.Itoa(k.Count)
	}
	return string(k.GameType)
}

// ParseClassKey parses a configured class name.
func ParseClassKey(name string) (ClassKey, error) {
	value := strings.ToLower(strings.TrimSpace(name))
	if value == "normal" {
		return ClassKey{GameType: GameTypeNormal}, nil
	}
	if rest, ok := strings.CutPrefix(value, "system"); ok {
		count, err := strconv.Atoi(rest)
		if err != nil || count <= 0 {
			return ClassKey{}, fmt.Errorf("wager class %q needs a positive system size", name)
		}
		return ClassKey{GameType: GameTypeSystem, Count: count}, nil
	}
	return ClassKey{}, fmt.Errorf("unknown wager class %q", name)
}

// Class is one playable combination of selections and the stakes it accepts.
type Class struct {
	Name string
	Key  ClassKey
	// Selections and NumberOfSelections are parallel: Selections[i] must be
	// played with exactly NumberOfSelections[i] values.
	Selections         []string
	NumberOfSelections []int
	StakeMin           decimal.Decimal
	StakeMax           decimal.Decimal
	StakeIncrement     decimal.Decimal
}

// Expected returns the declared selection counts keyed by name.
func (c Class) Expected() map[string]int {
	expected := make(map[string]int, len(c.Selections))
	for i, name := range c.Selections {
		if i < len(c.NumberOfSelections) {
			expected[name] = c.NumberOfSelections[i]
		}
	}
	return expected
}

// KeyFor derives the class key of a board. systemSelection names the
// selection whose size picks the system class.
func KeyFor(board Board, systemSelection string) ClassKey {
	if board.GameType != GameTypeSystem {
		return ClassKey{GameType: board.GameType}
	}
	count := 0
	for _, sel := range board.Selections {
		if sel.Name == systemSelection {
			count = len(sel.Values)
			break
		}
	}
	return ClassKey{GameType: GameTypeSystem, Count: count}
}
