package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Month is a calendar month; payroll windows run from its first to its last day inclusive.
type Month struct {
	Year  int
	Month time.Month
}

func ParseMonth(s string) (Month, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Month{}, fmt.Errorf("%w: %q", ErrInvalidMonth, s)
	}
	return Month{Year: t.Year(), Month: t.Month()}, nil
}

func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

func (m Month) Start() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

// End returns the first instant after the month.
func (m Month) End() time.Time {
	return m.Start().AddDate(0, 1, 0)
}

// Contains reports whether t falls on a UTC calendar day of the month.
func (m Month) Contains(t time.Time) bool {
	y, mo, _ := t.UTC().Date()
	return y == m.Year && mo == m.Month
}

func (m Month) IsQuarterEnd() bool {
	return m.Month%3 == 0
}

type PayrollDetailKind string

const (
	DetailTaskKPI PayrollDetailKind = "task_kpi"
	DetailContent PayrollDetailKind = "content"
	DetailBonus   PayrollDetailKind = "bonus"
)

// PayrollDetail is one line of the earnings breakdown.
type PayrollDetail struct {
	Kind      PayrollDetailKind `json:"kind"`
	Label     string            `json:"label"`
	ProjectID *uuid.UUID        `json:"projectId,omitempty"`
	Quantity  decimal.Decimal   `json:"quantity"`
	Rate      decimal.Decimal   `json:"rate"`
	Amount    decimal.Decimal   `json:"amount"`
}

type PayrollResult struct {
	UserID        uuid.UUID       `json:"userId"`
	Month         string          `json:"month"`
	BaseSalary    decimal.Decimal `json:"baseSalary"`
	KPIEarned     decimal.Decimal `json:"kpiEarned"`
	BonusesEarned decimal.Decimal `json:"bonusesEarned"`
	Details       []PayrollDetail `json:"details"`
	TotalEarnings decimal.Decimal `json:"totalEarnings"`
}

type PayrollStatus string

const (
	PayrollStatusDraft PayrollStatus = "draft"
	PayrollStatusPaid  PayrollStatus = "paid"
)

// PayrollRecord is the persisted (user, month) snapshot.
type PayrollRecord struct {
	ID              uuid.UUID
	OrganizationID  uuid.UUID
	UserID          uuid.UUID
	Month           Month
	FixedSalary     decimal.Decimal
	CalculatedKPI   decimal.Decimal
	CalculatedBonus decimal.Decimal
	ManualBonus     decimal.Decimal
	ManualPenalty   decimal.Decimal
	Advance         decimal.Decimal
	Balance         decimal.Decimal
	Status          PayrollStatus
	TaskPayments    []PayrollDetail
	UpdatedAt       time.Time
}

// RecomputeBalance sets Balance from the calculated and manual components.
func (r *PayrollRecord) RecomputeBalance() {
	r.Balance = r.FixedSalary.
		Add(r.CalculatedKPI).
		Add(r.CalculatedBonus).
		Add(r.ManualBonus).
		Sub(r.ManualPenalty).
		Sub(r.Advance)
}
