package wager

import (
	"fmt"

	apperrors "github.com/louisbranch/lottery/internal/platform/errors"
	"github.com/shopspring/decimal"
)

// Price is the cost of a wager: the stake paid once per participating draw.
func Price(stake decimal.Decimal, drawCount int) decimal.Decimal {
	return stake.Mul(decimal.NewFromInt(int64(drawCount)))
}

// ValidateStake checks stake against the class bounds. A zero increment or
// zero max disables that check.
func ValidateStake(class Class, stake decimal.Decimal) error {
	invalid := func(reason string) error {
		return apperrors.WithMetadata(
			apperrors.CodeWagerInvalidStake,
			fmt.Sprintf("stake %s for class %s: %s", stake.String(), class.Key, reason),
			map[string]string{"Stake": stake.String(), "Class": class.Key.String()},
		)
	}
	if !stake.IsPositive() {
		return invalid("must be positive")
	}
	if stake.LessThan(class.StakeMin) {
		return invalid("below minimum " + class.StakeMin.String())
	}
	if class.StakeMax.IsPositive() && stake.GreaterThan(class.StakeMax) {
		return invalid("above maximum " + class.StakeMax.String())
	}
	if class.StakeIncrement.IsPositive() {
		offset := stake.Sub(class.StakeMin)
		if !offset.Mod(class.StakeIncrement).IsZero() {
			return invalid("not a multiple of " + class.StakeIncrement.String())
		}
	}
	return nil
}
