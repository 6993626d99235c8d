package wager

import (
	"testing"

	apperrors "github.com/louisbranch/lottery/internal/platform/errors"
	"github.com/shopspring/decimal"
)

func TestPrice(t *testing.T) {
	got := Price(decimal.RequireFromString("2.50"), 3)
	if !got.Equal(decimal.RequireFromString("7.5")) {
		t.Fatalf("price = %s", got)
	}
	if !Price(decimal.NewFromInt(1), 0).IsZero() {
		t.Fatal("expected zero price for zero draws")
	}
}

func TestValidateStake(t *testing.T) {
	class := Class{
		Key:            ClassKey{GameType: GameTypeSystem, Count: 7},
		StakeMin:       decimal.NewFromInt(7),
		StakeMax:       decimal.NewFromInt(70),
		StakeIncrement: decimal.NewFromInt(7),
	}
	for _, ok := range []string{"7", "14", "70"} {
		if err := ValidateStake(class, decimal.RequireFromString(ok)); err != nil {
			t.Fatalf("stake %s: %v", ok, err)
		}
	}
	for _, bad := range []string{"0", "-7", "6", "77", "10"} {
		err := ValidateStake(class, decimal.RequireFromString(bad))
		if !apperrors.IsCode(err, apperrors.CodeWagerInvalidStake) {
			t.Fatalf("stake %s: expected invalid stake, got %v", bad, err)
		}
	}
}

func TestValidateStakeWithoutBounds(t *testing.T) {
	class := Class{Key: ClassKey{GameType: GameTypeNormal}}
	if err := ValidateStake(class, decimal.RequireFromString("0.33")); err != nil {
		t.Fatalf("unbounded class: %v", err)
	}
}
