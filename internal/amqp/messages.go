package amqp

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// BudgetAlertMessage is published once per budget when its usage crosses the
// alert threshold or the budget amount.
type BudgetAlertMessage struct {
	BudgetID        string          `json:"budgetId"`
	UserID          string          `json:"userId"`
	Category        string          `json:"category"`
	UsagePercentage decimal.Decimal `json:"usagePercentage"`
	Threshold       decimal.Decimal `json:"threshold"`
	OverBudget      bool            `json:"overBudget"`
	At              time.Time       `json:"at"`
}

func (m *BudgetAlertMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func BudgetAlertMessageFromJSON(data []byte) (*BudgetAlertMessage, error) {
	var msg BudgetAlertMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
