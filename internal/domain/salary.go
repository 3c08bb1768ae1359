package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type KPIUnit string

const (
	KPIUnitTask KPIUnit = "task"
	KPIUnitHour KPIUnit = "hour"
)

// KPIRule pays Rate per completed unit of TaskType.
type KPIRule struct {
	TaskType string          `json:"taskType" validate:"required"`
	Rate     decimal.Decimal `json:"rate"`
	Unit     KPIUnit         `json:"unit,omitempty" validate:"omitempty,oneof=task hour"`
}

// Matches compares task type labels ignoring case and surrounding whitespace.
func (r KPIRule) Matches(taskType string) bool {
	return strings.EqualFold(strings.TrimSpace(r.TaskType), strings.TrimSpace(taskType))
}

// SalaryScheme targets either a job title or a single user, never both.
type SalaryScheme struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	JobTitle       *string
	UserID         *uuid.UUID
	BaseSalary     decimal.Decimal
	KPIRules       []KPIRule
	PMBonusPercent *decimal.Decimal
	CreatedAt      time.Time
}

func (s *SalaryScheme) ValidTarget() bool {
	hasTitle := s.JobTitle != nil && strings.TrimSpace(*s.JobTitle) != ""
	return hasTitle != (s.UserID != nil)
}

// RuleFor returns the first KPI rule matching taskType.
func (s *SalaryScheme) RuleFor(taskType string) (KPIRule, bool) {
	for _, r := range s.KPIRules {
		if r.Matches(taskType) {
			return r, true
		}
	}
	return KPIRule{}, false
}
