package main

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/sebuszqo/FinMind/internal/log"
)

// budgetChecker is satisfied by *application.AlertService.
type budgetChecker interface {
	CheckBudgets(ctx context.Context) (int, error)
}

const alertSweepTimeout = 2 * time.Minute

// startAlertScheduler runs the budget alert sweep on schedule. Overlapping
// runs are skipped. The returned cron must be stopped on shutdown.
func startAlertScheduler(schedule string, checker budgetChecker, logger *log.Logger) (*cron.Cron, error) {
	logger = logger.WithComponent(log.ComponentScheduler)
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))

	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), alertSweepTimeout)
		defer cancel()

		sent, err := checker.CheckBudgets(ctx)
		if err != nil {
			logger.Error("budget alert sweep failed", log.FieldError, err.Error(), log.FieldCount, sent)
			return
		}
		logger.Info("budget alert sweep finished", log.FieldCount, sent)
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}
