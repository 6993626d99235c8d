package draw

import (
	"fmt"
	"slices"
	"strconv"

	apperrors "github.com/louisbranch/lottery/internal/platform/errors"
	"github.com/louisbranch/lottery/internal/random"
)

// GenerateWinningNumbers draws every level in order from a single random
// stream seeded with seed. The same seed and levels always give the same
// result.
func GenerateWinningNumbers(levels []Level, seed random.Seed) ([]WinningNumbers, error) {
	for _, level := range levels {
		if err := checkLevel(level); err != nil {
			return nil, err
		}
	}

	rng := newXoshiro512(seed)
	result := make([]WinningNumbers, 0, len(levels))
	for _, level := range levels {
		span := uint64(level.Span())
		seen := make(map[int]struct{}, level.NumberOfSelections)
		numbers := make([]int, 0, level.NumberOfSelections)
		for len(numbers) < level.NumberOfSelections {
			n := int(rng.Uint64()%span) + level.MinValue
			if _, dup := seen[n]; dup {
				continue
			}
			seen[n] = struct{}{}
			numbers = append(numbers, n)
		}
		slices.Sort(numbers)
		result = append(result, WinningNumbers{DrawLevelID: level.ID, Numbers: numbers})
	}
	return result, nil
}

// ValidateWinningNumbers checks externally supplied winning numbers against
// the game's levels and returns them normalized (level order, sorted).
func ValidateWinningNumbers(levels []Level, winsets []WinningNumbers) ([]WinningNumbers, error) {
	if len(winsets) != len(levels) {
		return nil, apperrors.New(
			apperrors.CodeDrawLevelMismatch,
			fmt.Sprintf("expected %d winning number sets, got %d", len(levels), len(winsets)),
		)
	}
	byLevel := make(map[string]WinningNumbers, len(winsets))
	for _, ws := range winsets {
		key := ws.DrawLevelID.String()
		if _, dup := byLevel[key]; dup {
			return nil, apperrors.New(apperrors.CodeDrawLevelMismatch, "duplicate winning numbers for level "+key)
		}
		byLevel[key] = ws
	}

	result := make([]WinningNumbers, 0, len(levels))
	for _, level := range levels {
		ws, ok := byLevel[level.ID.String()]
		if !ok {
			return nil, apperrors.New(apperrors.CodeDrawLevelMismatch, "missing winning numbers for level "+level.Name)
		}
		invalid := func(reason string) error {
			return apperrors.WithMetadata(
				apperrors.CodeDrawInvalidWinningNumbers,
				fmt.Sprintf("level %s: %s", level.Name, reason),
				map[string]string{"DrawLevel": level.Name},
			)
		}
		if len(ws.Numbers) != level.NumberOfSelections {
			return nil, invalid("expected " + strconv.Itoa(level.NumberOfSelections) + " numbers")
		}
		numbers := slices.Clone(ws.Numbers)
		slices.Sort(numbers)
		for i, n := range numbers {
			if n < level.MinValue || n > level.MaxValue {
				return nil, invalid("value " + strconv.Itoa(n) + " out of range")
			}
			if i > 0 && numbers[i-1] == n {
				return nil, invalid("duplicate value " + strconv.Itoa(n))
			}
		}
		result = append(result, WinningNumbers{DrawLevelID: level.ID, Numbers: numbers})
	}
	return result, nil
}

func checkLevel(level Level) error {
	if level.NumberOfSelections < 0 || level.MaxValue < level.MinValue || level.NumberOfSelections > level.Span() {
		return apperrors.WithMetadata(
			apperrors.CodeDrawInvalidWinningNumbers,
			fmt.Sprintf("level %s cannot supply %d distinct values from %d..%d",
				level.Name, level.NumberOfSelections, level.MinValue, level.MaxValue),
			map[string]string{"DrawLevel": level.Name},
		)
	}
	return nil
}
