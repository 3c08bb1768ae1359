package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/OlegSmmDrug/agencycore.asia-sub007/internal/domain"
)

type AutomationStore interface {
	ListActiveAutomationRules(ctx context.Context, orgID uuid.UUID, triggerType string) ([]domain.AutomationRule, error)
	RecordAutomationExecution(ctx context.Context, id uuid.UUID) error
}

// RuleDispatcher executes the action attached to a rule.
type RuleDispatcher interface {
	Dispatch(ctx context.Context, orgID uuid.UUID, actionType domain.ActionType, config map[string]any, vars map[string]any) (ActionResult, error)
}

type AutomationService struct {
	store      AutomationStore
	dispatcher RuleDispatcher
}

func NewAutomationService(store AutomationStore, dispatcher RuleDispatcher) *AutomationService {
	return &AutomationService{store: store, dispatcher: dispatcher}
}

type RuleOutcome struct {
	RuleID  uuid.UUID     `json:"ruleId"`
	Matched bool          `json:"matched"`
	Result  *ActionResult `json:"result,omitempty"`
	Error   string        `json:"error,omitempty"`
}

// Fire evaluates one rule against vars and, when its conditions hold, runs its action.
// A successfully executed action bumps the rule's execution counter.
func (s *AutomationService) Fire(ctx context.Context, rule domain.AutomationRule, vars map[string]any) (RuleOutcome, error) {
	out := RuleOutcome{RuleID: rule.ID}
	if !EvaluateConditions(rule.ConditionConfig, vars) {
		return out, nil
	}
	out.Matched = true

	res, err := s.dispatcher.Dispatch(ctx, rule.OrganizationID, rule.ActionType, rule.ActionConfig, vars)
	if err != nil {
		return out, fmt.Errorf("rule %s: %w", rule.ID, err)
	}
	out.Result = &res

	if res.Status == ActionDone {
		if err := s.store.RecordAutomationExecution(ctx, rule.ID); err != nil {
			slog.Error("failed to record automation execution", "error", err, "rule_id", rule.ID)
		}
	}
	return out, nil
}

// Trigger fires every active rule registered for triggerType. A failing rule is
// logged and does not stop the others.
func (s *AutomationService) Trigger(ctx context.Context, orgID uuid.UUID, triggerType string, vars map[string]any) ([]RuleOutcome, error) {
	rules, err := s.store.ListActiveAutomationRules(ctx, orgID, triggerType)
	if err != nil {
		return nil, fmt.Errorf("list automation rules: %w", err)
	}

	outcomes := make([]RuleOutcome, 0, len(rules))
	for _, rule := range rules {
		out, err := s.Fire(ctx, rule, vars)
		if err != nil {
			slog.Error("automation rule failed", "error", err, "rule_id", rule.ID, "trigger", triggerType)
			out.Error = err.Error()
		}
		outcomes = append(outcomes, out)
	}
	return outcomes, nil
}
