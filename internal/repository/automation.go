package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/OlegSmmDrug/agencycore.asia-sub007/internal/domain"
)

const automationColumns = `id, organization_id, name, trigger_type, condition_config, action_type,
	action_config, is_active, execution_count, last_executed_at, created_at`

func scanAutomationRule(row pgx.Row) (domain.AutomationRule, error) {
	var r domain.AutomationRule
	var conditions, action []byte
	var actionType string
	var lastExecutedAt, createdAt pgtype.Timestamptz
	if err := row.Scan(&r.ID, &r.OrganizationID, &r.Name, &r.TriggerType, &conditions, &actionType,
		&action, &r.IsActive, &r.ExecutionCount, &lastExecutedAt, &createdAt); err != nil {
		return r, err
	}
	r.ActionType = domain.ActionType(actionType)
	r.LastExecutedAt = timestamptzToTimePtr(lastExecutedAt)
	r.CreatedAt = timestamptzToTime(createdAt)
	if err := unmarshalJSON(conditions, &r.ConditionConfig); err != nil {
		return r, err
	}
	return r, unmarshalJSON(action, &r.ActionConfig)
}

func (q *Queries) ListActiveAutomationRules(ctx context.Context, orgID uuid.UUID, triggerType string) ([]domain.AutomationRule, error) {
	rows, err := q.db.Query(ctx,
		`SELECT `+automationColumns+` FROM automation_rules
		 WHERE organization_id = $1 AND trigger_type = $2 AND is_active
		 ORDER BY created_at`, orgID, triggerType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.AutomationRule
	for rows.Next() {
		r, err := scanAutomationRule(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// RecordAutomationExecution bumps the execution counter in place.
func (q *Queries) RecordAutomationExecution(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.Exec(ctx,
		`UPDATE automation_rules
		 SET execution_count = execution_count + 1, last_executed_at = now()
		 WHERE id = $1`, id)
	return err
}
