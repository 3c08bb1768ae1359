package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/OlegSmmDrug/agencycore.asia-sub007/internal/domain"
)

const userColumns = `id, organization_id, name, job_title, salary, telegram_id, created_at`

func scanUser(row pgx.Row) (domain.User, error) {
	var u domain.User
	var telegramID pgtype.Int8
	var createdAt pgtype.Timestamptz
	err := row.Scan(&u.ID, &u.OrganizationID, &u.Name, &u.JobTitle, &u.Salary, &telegramID, &createdAt)
	u.TelegramID = int64PtrFromPg(telegramID)
	u.CreatedAt = timestamptzToTime(createdAt)
	return u, err
}

func (q *Queries) GetUserByID(ctx context.Context, id uuid.UUID) (domain.User, error) {
	return scanUser(q.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (q *Queries) GetUserByTelegramID(ctx context.Context, telegramID int64) (domain.User, error) {
	return scanUser(q.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE telegram_id = $1`, telegramID))
}

func (q *Queries) ListUsersByOrganization(ctx context.Context, orgID uuid.UUID) ([]domain.User, error) {
	rows, err := q.db.Query(ctx, `SELECT `+userColumns+` FROM users WHERE organization_id = $1 ORDER BY name`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (q *Queries) UpdateClientStatus(ctx context.Context, orgID, clientID uuid.UUID, status string) (int64, error) {
	tag, err := q.db.Exec(ctx,
		`UPDATE clients SET status = $3 WHERE id = $1 AND organization_id = $2`, clientID, orgID, status)
	return tag.RowsAffected(), err
}

func (q *Queries) UpdateClientManager(ctx context.Context, orgID, clientID, managerID uuid.UUID) (int64, error) {
	tag, err := q.db.Exec(ctx,
		`UPDATE clients SET manager_id = $3 WHERE id = $1 AND organization_id = $2`, clientID, orgID, managerID)
	return tag.RowsAffected(), err
}

type CreateNotificationParams struct {
	UserID  uuid.UUID
	Title   string
	Message string
	Type    string
}

func (q *Queries) CreateNotification(ctx context.Context, arg CreateNotificationParams) (domain.Notification, error) {
	var n domain.Notification
	var createdAt pgtype.Timestamptz
	err := q.db.QueryRow(ctx,
		`INSERT INTO notifications (user_id, title, message, type)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, user_id, title, message, type, is_read, created_at`,
		arg.UserID, arg.Title, arg.Message, arg.Type).
		Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.Type, &n.IsRead, &createdAt)
	n.CreatedAt = timestamptzToTime(createdAt)
	return n, err
}

func (q *Queries) ListCategories(ctx context.Context, orgID uuid.UUID) ([]domain.Category, error) {
	rows, err := q.db.Query(ctx,
		`SELECT id, organization_id, name, kind, created_at FROM categories
		 WHERE organization_id = $1 ORDER BY kind, name`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Category
	for rows.Next() {
		var c domain.Category
		var createdAt pgtype.Timestamptz
		if err := rows.Scan(&c.ID, &c.OrganizationID, &c.Name, &c.Kind, &createdAt); err != nil {
			return nil, err
		}
		c.CreatedAt = timestamptzToTime(createdAt)
		out = append(out, c)
	}
	return out, rows.Err()
}

func (q *Queries) CreateCategory(ctx context.Context, orgID uuid.UUID, name, kind string) (domain.Category, error) {
	var c domain.Category
	var createdAt pgtype.Timestamptz
	err := q.db.QueryRow(ctx,
		`INSERT INTO categories (organization_id, name, kind) VALUES ($1, $2, $3)
		 RETURNING id, organization_id, name, kind, created_at`, orgID, name, kind).
		Scan(&c.ID, &c.OrganizationID, &c.Name, &c.Kind, &createdAt)
	c.CreatedAt = timestamptzToTime(createdAt)
	return c, err
}

func (q *Queries) DeleteCategory(ctx context.Context, orgID, id uuid.UUID) (int64, error) {
	tag, err := q.db.Exec(ctx, `DELETE FROM categories WHERE id = $1 AND organization_id = $2`, id, orgID)
	return tag.RowsAffected(), err
}
