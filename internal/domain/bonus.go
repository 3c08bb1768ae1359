package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type BonusConditionType string

const (
	BonusConditionThreshold BonusConditionType = "threshold"
	BonusConditionTiered    BonusConditionType = "tiered"
)

type BonusRewardType string

const (
	BonusRewardFixed   BonusRewardType = "fixed"
	BonusRewardPercent BonusRewardType = "percent"
)

type BonusPeriod string

const (
	BonusPeriodMonthly   BonusPeriod = "monthly"
	BonusPeriodQuarterly BonusPeriod = "quarterly"
)

// Metric sources a bonus rule can read.
const (
	MetricCompletedTasks   = "completed_tasks"
	MetricKPIEarned        = "kpi_earned"
	MetricContentPublished = "content_published"
	MetricBaseSalary       = "base_salary"
	MetricTaskHours        = "task_hours"
)

type BonusTier struct {
	Threshold decimal.Decimal `json:"threshold"`
	Reward    decimal.Decimal `json:"reward"`
}

type BonusRule struct {
	ID                uuid.UUID
	OrganizationID    uuid.UUID
	Name              string
	OwnerJobTitle     *string
	OwnerUserID       *uuid.UUID
	MetricSource      string
	ConditionType     BonusConditionType
	ThresholdOperator string
	ThresholdValue    decimal.Decimal
	TieredConfig      []BonusTier
	RewardType        BonusRewardType
	RewardValue       decimal.Decimal
	AppliesToBase     bool
	Period            BonusPeriod
	IsActive          bool
	CreatedAt         time.Time
}
