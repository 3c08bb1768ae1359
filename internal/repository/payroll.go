package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/OlegSmmDrug/agencycore.asia-sub007/internal/domain"
)

const schemeColumns = `id, organization_id, job_title, user_id, base_salary, kpi_rules, pm_bonus_percent, created_at`

func scanScheme(row pgx.Row) (domain.SalaryScheme, error) {
	var s domain.SalaryScheme
	var rules []byte
	var pmBonus decimal.NullDecimal
	var createdAt pgtype.Timestamptz
	if err := row.Scan(&s.ID, &s.OrganizationID, &s.JobTitle, &s.UserID, &s.BaseSalary, &rules, &pmBonus, &createdAt); err != nil {
		return s, err
	}
	if pmBonus.Valid {
		s.PMBonusPercent = &pmBonus.Decimal
	}
	s.CreatedAt = timestamptzToTime(createdAt)
	return s, unmarshalJSON(rules, &s.KPIRules)
}

func (q *Queries) ListSalarySchemes(ctx context.Context, orgID uuid.UUID) ([]domain.SalaryScheme, error) {
	rows, err := q.db.Query(ctx,
		`SELECT `+schemeColumns+` FROM salary_schemes WHERE organization_id = $1 ORDER BY created_at`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.SalaryScheme
	for rows.Next() {
		s, err := scanScheme(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (q *Queries) CreateSalaryScheme(ctx context.Context, s domain.SalaryScheme) (domain.SalaryScheme, error) {
	rules, err := marshalJSON(s.KPIRules)
	if err != nil {
		return domain.SalaryScheme{}, err
	}
	var pmBonus decimal.NullDecimal
	if s.PMBonusPercent != nil {
		pmBonus = decimal.NewNullDecimal(*s.PMBonusPercent)
	}
	return scanScheme(q.db.QueryRow(ctx,
		`INSERT INTO salary_schemes (organization_id, job_title, user_id, base_salary, kpi_rules, pm_bonus_percent)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+schemeColumns,
		s.OrganizationID, s.JobTitle, s.UserID, s.BaseSalary, rules, pmBonus))
}

const bonusRuleColumns = `id, organization_id, name, owner_job_title, owner_user_id, metric_source,
	condition_type, threshold_operator, threshold_value, tiered_config, reward_type, reward_value,
	applies_to_base, calculation_period, is_active, created_at`

func scanBonusRule(row pgx.Row) (domain.BonusRule, error) {
	var r domain.BonusRule
	var condType, rewardType, period string
	var tiers []byte
	var createdAt pgtype.Timestamptz
	if err := row.Scan(&r.ID, &r.OrganizationID, &r.Name, &r.OwnerJobTitle, &r.OwnerUserID, &r.MetricSource,
		&condType, &r.ThresholdOperator, &r.ThresholdValue, &tiers, &rewardType, &r.RewardValue,
		&r.AppliesToBase, &period, &r.IsActive, &createdAt); err != nil {
		return r, err
	}
	r.ConditionType = domain.BonusConditionType(condType)
	r.RewardType = domain.BonusRewardType(rewardType)
	r.Period = domain.BonusPeriod(period)
	r.CreatedAt = timestamptzToTime(createdAt)
	return r, unmarshalJSON(tiers, &r.TieredConfig)
}

// ListActiveBonusRulesForOwner returns active rules owned by the user or by the job title.
func (q *Queries) ListActiveBonusRulesForOwner(ctx context.Context, orgID, userID uuid.UUID, jobTitle string) ([]domain.BonusRule, error) {
	rows, err := q.db.Query(ctx,
		`SELECT `+bonusRuleColumns+` FROM bonus_rules
		 WHERE organization_id = $1 AND is_active
		   AND (owner_user_id = $2 OR (owner_job_title IS NOT NULL AND lower(owner_job_title) = lower($3)))
		 ORDER BY created_at`, orgID, userID, jobTitle)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.BonusRule
	for rows.Next() {
		r, err := scanBonusRule(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (q *Queries) CreateBonusRule(ctx context.Context, r domain.BonusRule) (domain.BonusRule, error) {
	tiers, err := marshalJSON(r.TieredConfig)
	if err != nil {
		return domain.BonusRule{}, err
	}
	return scanBonusRule(q.db.QueryRow(ctx,
		`INSERT INTO bonus_rules (organization_id, name, owner_job_title, owner_user_id, metric_source,
		   condition_type, threshold_operator, threshold_value, tiered_config, reward_type, reward_value,
		   applies_to_base, calculation_period, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		 RETURNING `+bonusRuleColumns,
		r.OrganizationID, r.Name, r.OwnerJobTitle, r.OwnerUserID, r.MetricSource,
		string(r.ConditionType), r.ThresholdOperator, r.ThresholdValue, tiers, string(r.RewardType), r.RewardValue,
		r.AppliesToBase, string(r.Period), r.IsActive))
}

const payrollColumns = `id, organization_id, user_id, month, fixed_salary, calculated_kpi, calculated_bonus,
	manual_bonus, manual_penalty, advance, balance, status, task_payments, updated_at`

func scanPayrollRecord(row pgx.Row) (domain.PayrollRecord, error) {
	var r domain.PayrollRecord
	var month, status string
	var payments []byte
	var updatedAt pgtype.Timestamptz
	if err := row.Scan(&r.ID, &r.OrganizationID, &r.UserID, &month, &r.FixedSalary, &r.CalculatedKPI,
		&r.CalculatedBonus, &r.ManualBonus, &r.ManualPenalty, &r.Advance, &r.Balance, &status,
		&payments, &updatedAt); err != nil {
		return r, err
	}
	m, err := domain.ParseMonth(month)
	if err != nil {
		return r, err
	}
	r.Month = m
	r.Status = domain.PayrollStatus(status)
	r.UpdatedAt = timestamptzToTime(updatedAt)
	return r, unmarshalJSON(payments, &r.TaskPayments)
}

func (q *Queries) GetPayrollRecord(ctx context.Context, userID uuid.UUID, month domain.Month) (domain.PayrollRecord, error) {
	return scanPayrollRecord(q.db.QueryRow(ctx,
		`SELECT `+payrollColumns+` FROM payroll_records WHERE user_id = $1 AND month = $2`,
		userID, month.String()))
}

// UpsertPayrollRecord writes the calculated columns and leaves manual adjustments
// of an existing row untouched; balance is recomputed in SQL from the merged row.
func (q *Queries) UpsertPayrollRecord(ctx context.Context, r domain.PayrollRecord) (domain.PayrollRecord, error) {
	payments, err := marshalJSON(r.TaskPayments)
	if err != nil {
		return domain.PayrollRecord{}, err
	}
	return scanPayrollRecord(q.db.QueryRow(ctx,
		`INSERT INTO payroll_records (organization_id, user_id, month, fixed_salary, calculated_kpi,
		   calculated_bonus, balance, status, task_payments)
		 VALUES ($1, $2, $3, $4, $5, $6, $4::numeric + $5::numeric + $6::numeric, 'draft', $7)
		 ON CONFLICT (user_id, month) DO UPDATE SET
		   fixed_salary     = EXCLUDED.fixed_salary,
		   calculated_kpi   = EXCLUDED.calculated_kpi,
		   calculated_bonus = EXCLUDED.calculated_bonus,
		   task_payments    = EXCLUDED.task_payments,
		   balance = EXCLUDED.fixed_salary + EXCLUDED.calculated_kpi + EXCLUDED.calculated_bonus
		           + payroll_records.manual_bonus - payroll_records.manual_penalty - payroll_records.advance,
		   updated_at = now()
		 RETURNING `+payrollColumns,
		r.OrganizationID, r.UserID, r.Month.String(), r.FixedSalary, r.CalculatedKPI, r.CalculatedBonus, payments))
}

type AdjustPayrollParams struct {
	OrganizationID uuid.UUID
	UserID         uuid.UUID
	Month          domain.Month
	ManualBonus    decimal.Decimal
	ManualPenalty  decimal.Decimal
	Advance        decimal.Decimal
}

func (q *Queries) AdjustPayrollRecord(ctx context.Context, arg AdjustPayrollParams) (domain.PayrollRecord, error) {
	return scanPayrollRecord(q.db.QueryRow(ctx,
		`UPDATE payroll_records SET
		   manual_bonus = $4, manual_penalty = $5, advance = $6,
		   balance = fixed_salary + calculated_kpi + calculated_bonus + $4::numeric - $5::numeric - $6::numeric,
		   updated_at = now()
		 WHERE organization_id = $1 AND user_id = $2 AND month = $3
		 RETURNING `+payrollColumns,
		arg.OrganizationID, arg.UserID, arg.Month.String(), arg.ManualBonus, arg.ManualPenalty, arg.Advance))
}
