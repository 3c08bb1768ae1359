package domain

import (
	"time"

	"github.com/google/uuid"
)

// Condition operators understood by the rule evaluator.
const (
	OpEquals      = "equals"
	OpNotEquals   = "not_equals"
	OpGreaterThan = "greater_than"
	OpLessThan    = "less_than"
	OpContains    = "contains"
	OpIn          = "in"
)

type Condition struct {
	Operator string `json:"operator"`
	Value    any    `json:"value"`
}

// ConditionConfig maps a context field name to the condition it must satisfy.
type ConditionConfig map[string]Condition

type ActionType string

const (
	ActionCreateTask         ActionType = "create_task"
	ActionSendWhatsApp       ActionType = "send_whatsapp"
	ActionSendEmail          ActionType = "send_email"
	ActionChangeClientStatus ActionType = "change_status"
	ActionAssignManager      ActionType = "assign_manager"
	ActionWebhook            ActionType = "webhook"
	ActionCreateNotification ActionType = "create_notification"
)

type AutomationRule struct {
	ID              uuid.UUID
	OrganizationID  uuid.UUID
	Name            string
	TriggerType     string
	ConditionConfig ConditionConfig
	ActionType      ActionType
	ActionConfig    map[string]any
	IsActive        bool
	ExecutionCount  int
	LastExecutedAt  *time.Time
	CreatedAt       time.Time
}
