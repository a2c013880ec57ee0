package domain

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/sebuszqo/FinMind/internal/finance/errors"
)

// Money columns are NUMERIC(14, 2) and the alert threshold is NUMERIC(5, 2).
const moneyScale = 2

var (
	maxMoney          = decimal.New(1, 12)
	maxAlertThreshold = decimal.New(1, 3)
)

// checkScaled rejects values the store would round or could not hold.
func checkScaled(field string, value, limit decimal.Decimal) error {
	if !value.Equal(value.Truncate(moneyScale)) {
		return errors.NewValidationError(fmt.Sprintf("%s must have at most %d decimal places", field, moneyScale))
	}
	if value.Abs().GreaterThanOrEqual(limit) {
		return errors.NewValidationError(fmt.Sprintf("%s must be less than %s", field, limit.String()))
	}
	return nil
}

// CheckMoney validates an amount against the money column.
func CheckMoney(field string, value decimal.Decimal) error {
	return checkScaled(field, value, maxMoney)
}
