package application

import (
	"context"

	financeErrors "github.com/sebuszqo/FinMind/internal/finance/errors"
	"github.com/sebuszqo/FinMind/internal/log"
)

// isDomainError reports errors that describe the request rather than a
// failing store.
func isDomainError(err error) bool {
	return financeErrors.IsValidationError(err) ||
		financeErrors.IsValidationErrors(err) ||
		financeErrors.IsNotFoundError(err) ||
		financeErrors.IsInvalidStateError(err)
}

// logFailure logs store failures and returns err unchanged.
func logFailure(ctx context.Context, logger *log.Logger, op, userID string, err error) error {
	if err != nil && !isDomainError(err) {
		logger.OperationError(ctx, op, userID, err)
	}
	return err
}
