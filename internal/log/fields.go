package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldUserID     = "user_id"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldBudgetID   = "budget_id"
	FieldCount      = "count"
)

const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentStorage   = "storage"
	ComponentAuth      = "auth"
	ComponentDashboard = "dashboard"
	ComponentFinance   = "finance"
	ComponentAlerts    = "alerts"
	ComponentAMQP      = "amqp"
	ComponentCache     = "cache"
	ComponentScheduler = "scheduler"
)
