package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/OlegSmmDrug/agencycore.asia-sub007/internal/domain"
)

type BonusStore interface {
	ListActiveBonusRulesForOwner(ctx context.Context, orgID, userID uuid.UUID, jobTitle string) ([]domain.BonusRule, error)
	CreateBonusRule(ctx context.Context, r domain.BonusRule) (domain.BonusRule, error)
}

type BonusInput struct {
	User       *domain.User
	Month      domain.Month
	BaseSalary decimal.Decimal
	KPIEarned  decimal.Decimal
	Metrics    map[string]any
}

type BonusService struct {
	store BonusStore
}

func NewBonusService(store BonusStore) *BonusService {
	return &BonusService{store: store}
}

// Calculate sums the rewards of every active rule the user qualifies for in the month.
func (s *BonusService) Calculate(ctx context.Context, in BonusInput) (decimal.Decimal, []domain.PayrollDetail, error) {
	rules, err := s.store.ListActiveBonusRulesForOwner(ctx, in.User.OrganizationID, in.User.ID, strings.TrimSpace(in.User.JobTitle))
	if err != nil {
		return decimal.Zero, nil, fmt.Errorf("list bonus rules: %w", err)
	}

	total := decimal.Zero
	var details []domain.PayrollDetail
	for _, rule := range rules {
		if rule.Period == domain.BonusPeriodQuarterly && !in.Month.IsQuarterEnd() {
			continue
		}
		metric, ok := in.Metrics[rule.MetricSource]
		if !ok {
			slog.Warn("bonus rule reads unknown metric", "rule_id", rule.ID, "metric", rule.MetricSource)
			continue
		}

		value, ok := rewardValue(rule, metric)
		if !ok {
			continue
		}
		amount := rewardAmount(rule, value, in)
		if amount.IsZero() {
			continue
		}
		total = total.Add(amount)
		details = append(details, domain.PayrollDetail{
			Kind:     domain.DetailBonus,
			Label:    rule.Name,
			Quantity: decimal.NewFromInt(1),
			Rate:     value,
			Amount:   amount,
		})
	}
	return total, details, nil
}

// rewardValue reports the rule's reward value when the metric qualifies.
func rewardValue(rule domain.BonusRule, metric any) (decimal.Decimal, bool) {
	switch rule.ConditionType {
	case domain.BonusConditionThreshold:
		cond := domain.ConditionConfig{rule.MetricSource: {Operator: rule.ThresholdOperator, Value: rule.ThresholdValue}}
		if !EvaluateConditions(cond, map[string]any{rule.MetricSource: metric}) {
			return decimal.Zero, false
		}
		return rule.RewardValue, true
	case domain.BonusConditionTiered:
		m, ok := toFloat(metric)
		if !ok {
			return decimal.Zero, false
		}
		mv := decimal.NewFromFloat(m)
		var best *domain.BonusTier
		for i := range rule.TieredConfig {
			t := &rule.TieredConfig[i]
			if t.Threshold.GreaterThan(mv) {
				continue
			}
			if best == nil || t.Threshold.GreaterThan(best.Threshold) {
				best = t
			}
		}
		if best == nil {
			return decimal.Zero, false
		}
		return best.Reward, true
	default:
		slog.Warn("unknown bonus condition type", "rule_id", rule.ID, "condition_type", rule.ConditionType)
		return decimal.Zero, false
	}
}

func rewardAmount(rule domain.BonusRule, value decimal.Decimal, in BonusInput) decimal.Decimal {
	if rule.RewardType != domain.BonusRewardPercent {
		return value
	}
	base := in.KPIEarned
	if rule.AppliesToBase {
		base = in.BaseSalary
	}
	return base.Mul(value).Div(decimal.NewFromInt(100)).Round(2)
}

// CreateRule validates and stores a bonus rule.
func (s *BonusService) CreateRule(ctx context.Context, r domain.BonusRule) (domain.BonusRule, error) {
	if err := validateBonusRule(&r); err != nil {
		return domain.BonusRule{}, err
	}
	created, err := s.store.CreateBonusRule(ctx, r)
	if err != nil {
		return domain.BonusRule{}, fmt.Errorf("create bonus rule: %w", err)
	}
	return created, nil
}

func validateBonusRule(r *domain.BonusRule) error {
	hasTitle := r.OwnerJobTitle != nil && strings.TrimSpace(*r.OwnerJobTitle) != ""
	if hasTitle == (r.OwnerUserID != nil) {
		return fmt.Errorf("%w: exactly one of job title or user is required", domain.ErrBonusRuleInvalid)
	}
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("%w: name is required", domain.ErrBonusRuleInvalid)
	}
	switch r.MetricSource {
	case domain.MetricCompletedTasks, domain.MetricKPIEarned, domain.MetricContentPublished,
		domain.MetricBaseSalary, domain.MetricTaskHours:
	default:
		return fmt.Errorf("%w: unknown metric %q", domain.ErrBonusRuleInvalid, r.MetricSource)
	}
	switch r.ConditionType {
	case domain.BonusConditionThreshold:
		switch r.ThresholdOperator {
		case domain.OpEquals, domain.OpNotEquals, domain.OpGreaterThan, domain.OpLessThan:
		default:
			return fmt.Errorf("%w: unsupported threshold operator %q", domain.ErrBonusRuleInvalid, r.ThresholdOperator)
		}
	case domain.BonusConditionTiered:
		if len(r.TieredConfig) == 0 {
			return fmt.Errorf("%w: tiered rule needs at least one tier", domain.ErrBonusRuleInvalid)
		}
	default:
		return fmt.Errorf("%w: unknown condition type %q", domain.ErrBonusRuleInvalid, r.ConditionType)
	}
	if r.RewardType != domain.BonusRewardFixed && r.RewardType != domain.BonusRewardPercent {
		return fmt.Errorf("%w: unknown reward type %q", domain.ErrBonusRuleInvalid, r.RewardType)
	}
	if r.Period == "" {
		r.Period = domain.BonusPeriodMonthly
	}
	if r.Period != domain.BonusPeriodMonthly && r.Period != domain.BonusPeriodQuarterly {
		return fmt.Errorf("%w: unknown period %q", domain.ErrBonusRuleInvalid, r.Period)
	}
	return nil
}
