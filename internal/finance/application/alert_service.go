package application

import (
	"context"
	"time"

	"github.com/sebuszqo/FinMind/internal/amqp"
	"github.com/sebuszqo/FinMind/internal/finance/domain"
	"github.com/sebuszqo/FinMind/internal/log"
)

// AlertPublisher delivers budget alerts. *amqp.Client implements it.
type AlertPublisher interface {
	PublishBudgetAlert(ctx context.Context, msg *amqp.BudgetAlertMessage) error
}

// LogPublisher writes alerts to the log when no broker is configured.
type LogPublisher struct {
	logger *log.Logger
}

func NewLogPublisher(logger *log.Logger) *LogPublisher {
	return &LogPublisher{logger: logger.WithComponent(log.ComponentAlerts)}
}

func (p *LogPublisher) PublishBudgetAlert(ctx context.Context, msg *amqp.BudgetAlertMessage) error {
	p.logger.InfoContext(ctx, "budget alert",
		log.FieldBudgetID, msg.BudgetID,
		log.FieldUserID, msg.UserID,
		"category", msg.Category,
		"usage", msg.UsagePercentage.String(),
		"over_budget", msg.OverBudget)
	return nil
}

// AlertService sweeps active budgets of all users and notifies once per
// budget when spending reaches the alert threshold.
type AlertService struct {
	budgets     domain.BudgetRepository
	evaluator   budgetEvaluator
	publisher   AlertPublisher
	invalidator CacheInvalidator
	logger      *log.Logger
	now         func() time.Time
}

func NewAlertService(
	budgets domain.BudgetRepository,
	categories domain.CategoryRepository,
	transactions domain.TransactionRepository,
	publisher AlertPublisher,
	invalidator CacheInvalidator,
	logger *log.Logger,
) *AlertService {
	if invalidator == nil {
		invalidator = noopInvalidator{}
	}
	return &AlertService{
		budgets:     budgets,
		evaluator:   budgetEvaluator{transactions: transactions, categories: categories},
		publisher:   publisher,
		invalidator: invalidator,
		logger:      logger.WithComponent(log.ComponentAlerts),
		now:         time.Now,
	}
}

// CheckBudgets returns the number of alerts sent. A budget whose alert could
// not be published stays pending for the next sweep.
func (s *AlertService) CheckBudgets(ctx context.Context) (int, error) {
	now := s.now().UTC()
	pending, err := s.budgets.FindPendingAlerts(ctx, now)
	if err != nil {
		return 0, logFailure(ctx, s.logger, "check_budgets", "", err)
	}

	sent := 0
	for _, budget := range pending {
		if err := ctx.Err(); err != nil {
			return sent, err
		}

		evaluation, err := s.evaluator.evaluate(ctx, budget)
		if err != nil {
			return sent, logFailure(ctx, s.logger, "check_budgets", budget.UserID, err)
		}
		status := evaluation.status
		if !status.IsOverBudget && !status.IsNearLimit {
			continue
		}

		msg := &amqp.BudgetAlertMessage{
			BudgetID:        budget.ID,
			UserID:          budget.UserID,
			Category:        status.Category,
			UsagePercentage: status.UsagePercentage,
			Threshold:       budget.Alerts.Threshold,
			OverBudget:      status.IsOverBudget,
			At:              now,
		}
		if err := s.publisher.PublishBudgetAlert(ctx, msg); err != nil {
			s.logger.WarnContext(ctx, "budget alert not delivered",
				log.FieldBudgetID, budget.ID,
				log.FieldUserID, budget.UserID,
				log.FieldError, err.Error())
			continue
		}
		if err := s.budgets.MarkNotified(ctx, budget.ID); err != nil {
			return sent, logFailure(ctx, s.logger, "check_budgets", budget.UserID, err)
		}
		s.invalidator.InvalidateUser(ctx, budget.UserID)
		sent++
	}

	s.logger.InfoContext(ctx, "budget alert sweep finished", "pending", len(pending), log.FieldCount, sent)
	return sent, nil
}
