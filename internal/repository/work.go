package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/OlegSmmDrug/agencycore.asia-sub007/internal/domain"
)

const taskColumns = `id, organization_id, project_id, client_id, assignee_id, title, description,
	type, status, estimated_hours, deadline, completed_at, created_at`

func scanTask(row pgx.Row) (domain.Task, error) {
	var t domain.Task
	var deadline, completedAt, createdAt pgtype.Timestamptz
	err := row.Scan(&t.ID, &t.OrganizationID, &t.ProjectID, &t.ClientID, &t.AssigneeID,
		&t.Title, &t.Description, &t.Type, &t.Status, &t.EstimatedHours,
		&deadline, &completedAt, &createdAt)
	t.Deadline = timestamptzToTimePtr(deadline)
	t.CompletedAt = timestamptzToTimePtr(completedAt)
	t.CreatedAt = timestamptzToTime(createdAt)
	return t, err
}

// ListCompletedTasksByAssignee returns done tasks whose completion or deadline
// touches the [from, to) window; month filtering happens in the service.
func (q *Queries) ListCompletedTasksByAssignee(ctx context.Context, assigneeID uuid.UUID, from, to time.Time) ([]domain.Task, error) {
	rows, err := q.db.Query(ctx,
		`SELECT `+taskColumns+` FROM tasks
		 WHERE assignee_id = $1 AND status = 'done'
		   AND COALESCE(completed_at, deadline) >= $2
		   AND COALESCE(completed_at, deadline) <  $3`,
		assigneeID, from.AddDate(0, 0, -1), to.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

type CreateTaskParams struct {
	OrganizationID uuid.UUID
	ProjectID      *uuid.UUID
	ClientID       *uuid.UUID
	AssigneeID     *uuid.UUID
	Title          string
	Description    string
	Type           string
	EstimatedHours decimal.Decimal
	Deadline       *time.Time
}

func (q *Queries) CreateTask(ctx context.Context, arg CreateTaskParams) (domain.Task, error) {
	return scanTask(q.db.QueryRow(ctx,
		`INSERT INTO tasks (organization_id, project_id, client_id, assignee_id, title, description,
		                    type, estimated_hours, deadline)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING `+taskColumns,
		arg.OrganizationID, arg.ProjectID, arg.ClientID, arg.AssigneeID, arg.Title, arg.Description,
		arg.Type, arg.EstimatedHours, timePtrToTimestamptz(arg.Deadline)))
}

func (q *Queries) ListProjectsByMember(ctx context.Context, userID uuid.UUID) ([]domain.Project, error) {
	rows, err := q.db.Query(ctx,
		`SELECT id, organization_id, client_id, name, team_ids, created_at FROM projects
		 WHERE $1 = ANY(team_ids)`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Project
	for rows.Next() {
		var p domain.Project
		var team []pgtype.UUID
		var createdAt pgtype.Timestamptz
		if err := rows.Scan(&p.ID, &p.OrganizationID, &p.ClientID, &p.Name, &team, &createdAt); err != nil {
			return nil, err
		}
		p.TeamIDs = pgUUIDsToUUIDs(team)
		p.CreatedAt = timestamptzToTime(createdAt)
		out = append(out, p)
	}
	return out, rows.Err()
}

func (q *Queries) ListProjectContentMetrics(ctx context.Context, projectIDs []uuid.UUID, month domain.Month) ([]domain.ProjectContentMetrics, error) {
	rows, err := q.db.Query(ctx,
		`SELECT project_id, plan, fact FROM project_content_metrics
		 WHERE project_id = ANY($1) AND month = $2`, projectIDs, month.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ProjectContentMetrics
	for rows.Next() {
		m := domain.ProjectContentMetrics{Month: month}
		var plan, fact []byte
		if err := rows.Scan(&m.ProjectID, &plan, &fact); err != nil {
			return nil, err
		}
		if err := unmarshalJSON(plan, &m.Plan); err != nil {
			return nil, err
		}
		if err := unmarshalJSON(fact, &m.Fact); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (q *Queries) ListPublicationsByUser(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]domain.ContentPublication, error) {
	rows, err := q.db.Query(ctx,
		`SELECT id, organization_id, project_id, assigned_user_id, content_type, published_at
		 FROM content_publications
		 WHERE assigned_user_id = $1 AND published_at >= $2 AND published_at < $3
		 ORDER BY published_at`, userID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ContentPublication
	for rows.Next() {
		var p domain.ContentPublication
		var publishedAt pgtype.Timestamptz
		if err := rows.Scan(&p.ID, &p.OrganizationID, &p.ProjectID, &p.AssignedUserID, &p.ContentType, &publishedAt); err != nil {
			return nil, err
		}
		p.PublishedAt = timestamptzToTime(publishedAt)
		out = append(out, p)
	}
	return out, rows.Err()
}
