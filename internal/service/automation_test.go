package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OlegSmmDrug/agencycore.asia-sub007/internal/domain"
)

type MockAutomationStore struct {
	Rules    []domain.AutomationRule
	Recorded []uuid.UUID
	ListErr  error
}

func (m *MockAutomationStore) ListActiveAutomationRules(_ context.Context, orgID uuid.UUID, triggerType string) ([]domain.AutomationRule, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	var out []domain.AutomationRule
	for _, r := range m.Rules {
		if r.OrganizationID == orgID && r.TriggerType == triggerType && r.IsActive {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *MockAutomationStore) RecordAutomationExecution(_ context.Context, id uuid.UUID) error {
	m.Recorded = append(m.Recorded, id)
	return nil
}

func TestFire_ConditionsNotMet(t *testing.T) {
	d, deps := newTestDispatcher()
	store := &MockAutomationStore{}
	svc := NewAutomationService(store, d)

	rule := domain.AutomationRule{
		ID:              uuid.New(),
		ConditionConfig: domain.ConditionConfig{"budget": {Operator: domain.OpGreaterThan, Value: 10}},
		ActionType:      domain.ActionCreateNotification,
		ActionConfig:    map[string]any{"title": "Big deal"},
	}

	out, err := svc.Fire(context.Background(), rule, map[string]any{"budget": 5, "user_id": uuid.New()})
	require.NoError(t, err)
	assert.False(t, out.Matched)
	assert.Empty(t, deps.notifier.Sent)
	assert.Empty(t, store.Recorded)
}

func TestFire_RecordsExecution(t *testing.T) {
	d, deps := newTestDispatcher()
	store := &MockAutomationStore{}
	svc := NewAutomationService(store, d)

	rule := domain.AutomationRule{
		ID:              uuid.New(),
		ConditionConfig: domain.ConditionConfig{"budget": {Operator: domain.OpGreaterThan, Value: 10}},
		ActionType:      domain.ActionCreateNotification,
		ActionConfig:    map[string]any{"title": "Big deal"},
	}

	out, err := svc.Fire(context.Background(), rule, map[string]any{"budget": 15, "user_id": uuid.New()})
	require.NoError(t, err)
	assert.True(t, out.Matched)
	require.NotNil(t, out.Result)
	assert.Equal(t, ActionDone, out.Result.Status)
	assert.Len(t, deps.notifier.Sent, 1)
	assert.Equal(t, []uuid.UUID{rule.ID}, store.Recorded)
}

func TestFire_EmailActionRecorded(t *testing.T) {
	d, _ := newTestDispatcher()
	store := &MockAutomationStore{}
	svc := NewAutomationService(store, d)

	rule := domain.AutomationRule{
		ID:           uuid.New(),
		ActionType:   domain.ActionSendEmail,
		ActionConfig: map[string]any{"to": "{{email}}", "subject": "Welcome"},
	}

	out, err := svc.Fire(context.Background(), rule, map[string]any{"email": "lead@example.com"})
	require.NoError(t, err)
	assert.True(t, out.Matched)
	require.NotNil(t, out.Result)
	assert.Equal(t, ActionDone, out.Result.Status)
	assert.Equal(t, []uuid.UUID{rule.ID}, store.Recorded)
}

func TestFire_SkippedActionNotRecorded(t *testing.T) {
	d, _ := newTestDispatcher()
	store := &MockAutomationStore{}
	svc := NewAutomationService(store, d)

	rule := domain.AutomationRule{ID: uuid.New(), ActionType: "send_pigeon"}

	out, err := svc.Fire(context.Background(), rule, nil)
	require.NoError(t, err)
	assert.True(t, out.Matched)
	assert.Equal(t, ActionSkipped, out.Result.Status)
	assert.Empty(t, store.Recorded)
}

func TestTrigger_FailingRuleDoesNotStopOthers(t *testing.T) {
	d, deps := newTestDispatcher()
	orgID := uuid.New()
	failing := domain.AutomationRule{
		ID:             uuid.New(),
		OrganizationID: orgID,
		TriggerType:    "deal_won",
		IsActive:       true,
		ActionType:     domain.ActionChangeClientStatus,
		ActionConfig:   map[string]any{"status": "won"},
	}
	working := domain.AutomationRule{
		ID:             uuid.New(),
		OrganizationID: orgID,
		TriggerType:    "deal_won",
		IsActive:       true,
		ActionType:     domain.ActionCreateNotification,
		ActionConfig:   map[string]any{"title": "Won"},
	}
	other := domain.AutomationRule{
		ID:             uuid.New(),
		OrganizationID: orgID,
		TriggerType:    "deal_lost",
		IsActive:       true,
		ActionType:     domain.ActionCreateNotification,
		ActionConfig:   map[string]any{"title": "Lost"},
	}
	store := &MockAutomationStore{Rules: []domain.AutomationRule{failing, working, other}}
	svc := NewAutomationService(store, d)

	outcomes, err := svc.Trigger(context.Background(), orgID, "deal_won", map[string]any{"user_id": uuid.New()})
	require.NoError(t, err)
	require.Len(t, outcomes, 2)
	assert.NotEmpty(t, outcomes[0].Error)
	assert.Empty(t, outcomes[1].Error)
	assert.Len(t, deps.notifier.Sent, 1)
	assert.Equal(t, []uuid.UUID{working.ID}, store.Recorded)
}

func TestTrigger_ListError(t *testing.T) {
	d, _ := newTestDispatcher()
	svc := NewAutomationService(&MockAutomationStore{ListErr: ErrMockStore}, d)

	_, err := svc.Trigger(context.Background(), uuid.New(), "deal_won", nil)
	require.ErrorIs(t, err, ErrMockStore)
}
