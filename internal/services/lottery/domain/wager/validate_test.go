package wager

import (
	"testing"

	"github.com/google/uuid"
	apperrors "github.com/louisbranch/lottery/internal/platform/errors"
	"github.com/louisbranch/lottery/internal/services/lottery/domain/draw"
	"github.com/shopspring/decimal"
)

func testClasses() []Class {
	return []Class{
		{
			Name: "normal", Key: ClassKey{GameType: GameTypeNormal},
			Selections: []string{"primary"}, NumberOfSelections: []int{6},
			StakeMin: decimal.NewFromInt(1), StakeMax: decimal.NewFromInt(10), StakeIncrement: decimal.NewFromInt(1),
		},
		{
			Name: "system7", Key: ClassKey{GameType: GameTypeSystem, Count: 7},
			Selections: []string{"primary"}, NumberOfSelections: []int{7},
			StakeMin: decimal.NewFromInt(7), StakeMax: decimal.NewFromInt(70), StakeIncrement: decimal.NewFromInt(7),
		},
		{
			Name: "system8", Key: ClassKey{GameType: GameTypeSystem, Count: 8},
			Selections: []string{"primary", "secondary"}, NumberOfSelections: []int{8, 1},
		},
	}
}

func testLevels() []draw.Level {
	return []draw.Level{
		{Name: "primary", NumberOfSelections: 6, MinValue: 1, MaxValue: 40},
		{Name: "secondary", NumberOfSelections: 1, MinValue: 1, MaxValue: 40, DependentOn: "primary"},
	}
}

func newTestValidator(t *testing.T) *Validator {
	t.Helper()
	v, err := NewValidator(testClasses(), testLevels(), "")
	if err != nil {
		t.Fatalf("new validator: %v", err)
	}
	return v
}

func board(gameType GameType, selections ...Selection) Board {
	return Board{ID: uuid.New(), GameType: gameType, Selections: selections}
}

func sel(name string, values ...int) Selection {
	return Selection{ID: uuid.New(), Name: name, Values: values}
}

func TestValidateBoardAcceptsExactMatch(t *testing.T) {
	v := newTestValidator(t)
	cases := []Board{
		board(GameTypeNormal, sel("primary", 1, 2, 3, 4, 5, 6)),
		board(GameTypeSystem, sel("primary", 1, 2, 3, 4, 5, 6, 7)),
		board(GameTypeSystem, sel("secondary", 9), sel("primary", 1, 2, 3, 4, 5, 6, 7, 40)),
	}
	for i, b := range cases {
		if err := v.ValidateBoard(i, b); err != nil {
			t.Fatalf("board %d: %v", i, err)
		}
	}
}

func TestValidateBoardErrors(t *testing.T) {
	v := newTestValidator(t)
	cases := []struct {
		name      string
		board     Board
		code      apperrors.Code
		selection string
	}{
		{"invalid game type", board("lucky", sel("primary", 1, 2, 3, 4, 5, 6)), apperrors.CodeWagerInvalidGameType, ""},
		{"unknown system size", board(GameTypeSystem, sel("primary", 1, 2, 3, 4, 5, 6, 7, 8, 9)), apperrors.CodeWagerUnknownClass, ""},
		{"system without primary", board(GameTypeSystem, sel("secondary", 1)), apperrors.CodeWagerUnknownClass, ""},
		{"duplicate selection", board(GameTypeNormal, sel("primary", 1, 2, 3, 4, 5, 6), sel("primary", 7, 8, 9, 10, 11, 12)), apperrors.CodeWagerDuplicateSelection, "primary"},
		{"missing selection", board(GameTypeNormal, sel("secondary", 1)), apperrors.CodeWagerMissingSelection, "primary"},
		{"missing secondary", board(GameTypeSystem, sel("primary", 1, 2, 3, 4, 5, 6, 7, 8)), apperrors.CodeWagerMissingSelection, "secondary"},
		{"count mismatch", board(GameTypeNormal, sel("primary", 1, 2, 3, 4, 5)), apperrors.CodeWagerSelectionCountMismatch, "primary"},
		{"unexpected selection", board(GameTypeNormal, sel("primary", 1, 2, 3, 4, 5, 6), sel("secondary", 1)), apperrors.CodeWagerUnexpectedSelection, "secondary"},
		{"out of range", board(GameTypeNormal, sel("primary", 0, 2, 3, 4, 5, 6)), apperrors.CodeWagerSelectionOutOfRange, "primary"},
		{"duplicate value", board(GameTypeNormal, sel("primary", 1, 1, 3, 4, 5, 6)), apperrors.CodeWagerDuplicateSelectionValue, "primary"},
	}
	for _, tc := range cases {
		err := v.ValidateBoard(3, tc.board)
		if !apperrors.IsCode(err, tc.code) {
			t.Fatalf("%s: expected %s, got %v", tc.name, tc.code, err)
		}
		meta := apperrors.GetMetadata(err)
		if meta["Board"] != "3" {
			t.Fatalf("%s: board metadata = %q", tc.name, meta["Board"])
		}
		if tc.selection != "" && meta["Selection"] != tc.selection {
			t.Fatalf("%s: selection metadata = %q, want %q", tc.name, meta["Selection"], tc.selection)
		}
	}
}

func TestValidateBoardsStopsAtFirstFailure(t *testing.T) {
	v := newTestValidator(t)
	boards := []Board{
		board(GameTypeNormal, sel("primary", 1, 2, 3, 4, 5, 6)),
		board(GameTypeNormal, sel("primary", 1, 2, 3)),
		board("bogus"),
	}
	err := v.ValidateBoards(boards)
	if !apperrors.IsCode(err, apperrors.CodeWagerSelectionCountMismatch) {
		t.Fatalf("expected count mismatch, got %v", err)
	}
	if apperrors.GetMetadata(err)["Board"] != "1" {
		t.Fatalf("expected board 1 in metadata, got %v", apperrors.GetMetadata(err))
	}
}

func TestValidateBoardsRejectsEmpty(t *testing.T) {
	v := newTestValidator(t)
	if err := v.ValidateBoards(nil); !apperrors.IsCode(err, apperrors.CodeWagerNoBoards) {
		t.Fatalf("expected no boards error, got %v", err)
	}
}

func TestNewValidatorRejectsDuplicateKeys(t *testing.T) {
	classes := append(testClasses(), Class{Name: "NORMAL", Key: ClassKey{GameType: GameTypeNormal}})
	if _, err := NewValidator(classes, testLevels(), ""); err == nil {
		t.Fatal("expected duplicate class error")
	}
}

func TestClassFor(t *testing.T) {
	v := newTestValidator(t)
	class, ok := v.ClassFor(board(GameTypeSystem, sel("primary", 1, 2, 3, 4, 5, 6, 7)))
	if !ok || class.Name != "system7" {
		t.Fatalf("ClassFor = %+v, %v", class, ok)
	}
}
