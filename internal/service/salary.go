package service

import (
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/OlegSmmDrug/agencycore.asia-sub007/internal/domain"
)

// ResolveScheme picks the user's own scheme, then a scheme for the user's job title.
// It returns nil when neither exists.
func ResolveScheme(user *domain.User, schemes []domain.SalaryScheme) *domain.SalaryScheme {
	var byTitle *domain.SalaryScheme
	title := strings.TrimSpace(user.JobTitle)
	for i := range schemes {
		s := &schemes[i]
		if s.UserID != nil && *s.UserID == user.ID {
			return s
		}
		if byTitle == nil && s.JobTitle != nil && title != "" && strings.EqualFold(strings.TrimSpace(*s.JobTitle), title) {
			byTitle = s
		}
	}
	return byTitle
}

// BaseSalary is the scheme's base salary, or the user's own salary field without a scheme.
func BaseSalary(user *domain.User, scheme *domain.SalaryScheme) decimal.Decimal {
	if scheme != nil {
		return scheme.BaseSalary
	}
	return user.Salary
}

type TaskKPIResult struct {
	Total          decimal.Decimal
	Details        []domain.PayrollDetail
	CompletedTasks int
	Hours          decimal.Decimal
}

// CalculateTaskKPI pays the scheme's KPI rules for the user's tasks completed in month.
// Task types without a rule earn nothing and produce no detail line.
func CalculateTaskKPI(user *domain.User, scheme *domain.SalaryScheme, tasks []domain.Task, month domain.Month) TaskKPIResult {
	res := TaskKPIResult{Total: decimal.Zero, Hours: decimal.Zero}

	type group struct {
		label string
		count int
		hours decimal.Decimal
	}
	groups := make(map[string]*group)
	for i := range tasks {
		t := &tasks[i]
		if !completedInMonth(t, user.ID, month) {
			continue
		}
		res.CompletedTasks++
		res.Hours = res.Hours.Add(t.EstimatedHours)

		label := strings.TrimSpace(t.Type)
		key := strings.ToLower(label)
		g, ok := groups[key]
		if !ok {
			g = &group{label: label, hours: decimal.Zero}
			groups[key] = g
		}
		g.count++
		g.hours = g.hours.Add(t.EstimatedHours)
	}

	if scheme == nil {
		return res
	}

	types := make([]string, 0, len(groups))
	for k := range groups {
		types = append(types, k)
	}
	sort.Strings(types)

	for _, key := range types {
		g := groups[key]
		rule, ok := scheme.RuleFor(g.label)
		if !ok {
			continue
		}
		qty := decimal.NewFromInt(int64(g.count))
		if rule.Unit == domain.KPIUnitHour {
			qty = g.hours
		}
		amount := qty.Mul(rule.Rate).Round(2)
		res.Total = res.Total.Add(amount)
		res.Details = append(res.Details, domain.PayrollDetail{
			Kind:     domain.DetailTaskKPI,
			Label:    g.label,
			Quantity: qty,
			Rate:     rule.Rate,
			Amount:   amount,
		})
	}
	return res
}

func completedInMonth(t *domain.Task, userID uuid.UUID, month domain.Month) bool {
	if t.AssigneeID == nil || *t.AssigneeID != userID {
		return false
	}
	if t.Status != domain.TaskStatusDone {
		return false
	}
	when := t.CompletionDate()
	return when != nil && month.Contains(*when)
}
