package repository

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	agencyroot "github.com/OlegSmmDrug/agencycore.asia-sub007"
	"github.com/OlegSmmDrug/agencycore.asia-sub007/internal/domain"
)

// connectTestPostgres migrates the database named by DATABASE_URL and opens a
// transaction that is rolled back when the test ends. Tests skip without a database.
func connectTestPostgres(ctx context.Context, t *testing.T) pgx.Tx {
	t.Helper()
	if testing.Short() {
		t.Skip("short")
	}
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL is not set")
	}

	migrationsFS, err := fs.Sub(agencyroot.MigrationsFS, "migrations")
	require.NoError(t, err)
	require.NoError(t, RunMigrations(dsn, migrationsFS))

	conn, err := pgx.Connect(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close(context.Background()) })

	tx, err := conn.Begin(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = tx.Rollback(context.Background()) })
	return tx
}

func TestPayrollRecordDB_UpsertAndAdjust(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	t.Cleanup(cancel)

	tx := connectTestPostgres(ctx, t)
	q := New(tx)

	var orgID, userID uuid.UUID
	require.NoError(t, tx.QueryRow(ctx,
		`INSERT INTO organizations (name) VALUES ('Payroll Test Agency') RETURNING id`).Scan(&orgID))
	require.NoError(t, tx.QueryRow(ctx,
		`INSERT INTO users (organization_id, name, job_title, salary) VALUES ($1, 'Dana', 'Designer', 500) RETURNING id`,
		orgID).Scan(&userID))

	month := domain.Month{Year: 2025, Month: time.January}
	details := []domain.PayrollDetail{{
		Kind:     domain.DetailTaskKPI,
		Label:    "Design",
		Quantity: decimal.NewFromInt(3),
		Rate:     decimal.NewFromInt(50),
		Amount:   decimal.NewFromInt(150),
	}}

	rec, err := q.UpsertPayrollRecord(ctx, domain.PayrollRecord{
		OrganizationID: orgID,
		UserID:         userID,
		Month:          month,
		FixedSalary:    decimal.NewFromInt(500),
		CalculatedKPI:  decimal.NewFromInt(150),
		TaskPayments:   details,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.PayrollStatusDraft, rec.Status)
	assert.True(t, rec.Balance.Equal(decimal.NewFromInt(650)), rec.Balance.String())
	require.Len(t, rec.TaskPayments, 1)
	assert.Equal(t, "Design", rec.TaskPayments[0].Label)

	rec, err = q.AdjustPayrollRecord(ctx, AdjustPayrollParams{
		OrganizationID: orgID,
		UserID:         userID,
		Month:          month,
		ManualBonus:    decimal.NewFromInt(100),
		ManualPenalty:  decimal.NewFromInt(30),
		Advance:        decimal.NewFromInt(200),
	})
	require.NoError(t, err)
	assert.True(t, rec.Balance.Equal(decimal.NewFromInt(520)), rec.Balance.String())

	again, err := q.UpsertPayrollRecord(ctx, domain.PayrollRecord{
		OrganizationID: orgID,
		UserID:         userID,
		Month:          month,
		FixedSalary:    decimal.NewFromInt(500),
		CalculatedKPI:  decimal.NewFromInt(50),
	})
	require.NoError(t, err)
	assert.Equal(t, rec.ID, again.ID)
	assert.True(t, again.ManualBonus.Equal(decimal.NewFromInt(100)))
	assert.True(t, again.Balance.Equal(decimal.NewFromInt(420)), again.Balance.String())

	stored, err := q.GetPayrollRecord(ctx, userID, month)
	require.NoError(t, err)
	assert.True(t, stored.Balance.Equal(decimal.NewFromInt(420)))

	_, err = q.AdjustPayrollRecord(ctx, AdjustPayrollParams{
		OrganizationID: orgID,
		UserID:         userID,
		Month:          domain.Month{Year: 2025, Month: time.February},
	})
	assert.True(t, errors.Is(err, pgx.ErrNoRows), "adjusting a missing month: %v", err)
}
