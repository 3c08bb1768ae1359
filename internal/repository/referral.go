package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/OlegSmmDrug/agencycore.asia-sub007/internal/domain"
)

const uniqueViolation = "23505"

// IsUniqueViolation reports whether err is a Postgres unique constraint violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

const promoCodeColumns = `id, code, organization_id, user_id, registrations_count, payments_count, is_active, created_at`

func scanPromoCode(row pgx.Row) (domain.PromoCode, error) {
	var p domain.PromoCode
	var createdAt pgtype.Timestamptz
	err := row.Scan(&p.ID, &p.Code, &p.OrganizationID, &p.UserID,
		&p.RegistrationsCount, &p.PaymentsCount, &p.IsActive, &createdAt)
	p.CreatedAt = timestamptzToTime(createdAt)
	return p, err
}

func (q *Queries) GetActivePromoCodeByCode(ctx context.Context, code string) (domain.PromoCode, error) {
	return scanPromoCode(q.db.QueryRow(ctx,
		`SELECT `+promoCodeColumns+` FROM promo_codes WHERE code = $1 AND is_active`, code))
}

func (q *Queries) GetPromoCodeByUser(ctx context.Context, orgID, userID uuid.UUID) (domain.PromoCode, error) {
	return scanPromoCode(q.db.QueryRow(ctx,
		`SELECT `+promoCodeColumns+` FROM promo_codes
		 WHERE organization_id = $1 AND user_id = $2 AND is_active
		 ORDER BY created_at LIMIT 1`, orgID, userID))
}

type CreatePromoCodeParams struct {
	Code           string
	OrganizationID uuid.UUID
	UserID         uuid.UUID
}

func (q *Queries) CreatePromoCode(ctx context.Context, arg CreatePromoCodeParams) (domain.PromoCode, error) {
	return scanPromoCode(q.db.QueryRow(ctx,
		`INSERT INTO promo_codes (code, organization_id, user_id)
		 VALUES ($1, $2, $3)
		 RETURNING `+promoCodeColumns, arg.Code, arg.OrganizationID, arg.UserID))
}

func (q *Queries) DeactivatePromoCode(ctx context.Context, orgID, id uuid.UUID) (int64, error) {
	tag, err := q.db.Exec(ctx,
		`UPDATE promo_codes SET is_active = false WHERE id = $1 AND organization_id = $2`, id, orgID)
	return tag.RowsAffected(), err
}

func (q *Queries) IncrementPromoRegistrations(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.Exec(ctx,
		`UPDATE promo_codes SET registrations_count = registrations_count + 1 WHERE id = $1`, id)
	return err
}

func (q *Queries) IncrementPromoPayments(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.Exec(ctx,
		`UPDATE promo_codes SET payments_count = payments_count + 1 WHERE id = $1`, id)
	return err
}

const registrationColumns = `id, promo_code_id, referrer_organization_id, referrer_user_id,
	referred_organization_id, level, is_active, created_at`

func scanRegistration(row pgx.Row) (domain.ReferralRegistration, error) {
	var r domain.ReferralRegistration
	var level int16
	var createdAt pgtype.Timestamptz
	err := row.Scan(&r.ID, &r.PromoCodeID, &r.ReferrerOrganizationID, &r.ReferrerUserID,
		&r.ReferredOrganizationID, &level, &r.IsActive, &createdAt)
	r.Level = int(level)
	r.CreatedAt = timestamptzToTime(createdAt)
	return r, err
}

type CreateReferralRegistrationParams struct {
	PromoCodeID            uuid.UUID
	ReferrerOrganizationID uuid.UUID
	ReferrerUserID         uuid.UUID
	ReferredOrganizationID uuid.UUID
	Level                  int
}

func (q *Queries) CreateReferralRegistration(ctx context.Context, arg CreateReferralRegistrationParams) (domain.ReferralRegistration, error) {
	return scanRegistration(q.db.QueryRow(ctx,
		`INSERT INTO referral_registrations
		 (promo_code_id, referrer_organization_id, referrer_user_id, referred_organization_id, level)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+registrationColumns,
		arg.PromoCodeID, arg.ReferrerOrganizationID, arg.ReferrerUserID, arg.ReferredOrganizationID, int16(arg.Level)))
}

// GetDirectReferrer returns the earliest level-1 edge that brought referredOrgID in.
func (q *Queries) GetDirectReferrer(ctx context.Context, referredOrgID uuid.UUID) (domain.ReferralRegistration, error) {
	return scanRegistration(q.db.QueryRow(ctx,
		`SELECT `+registrationColumns+` FROM referral_registrations
		 WHERE referred_organization_id = $1 AND level = 1
		 ORDER BY created_at LIMIT 1`, referredOrgID))
}

func (q *Queries) ListRegistrationsByReferred(ctx context.Context, referredOrgID uuid.UUID) ([]domain.ReferralRegistration, error) {
	rows, err := q.db.Query(ctx,
		`SELECT `+registrationColumns+` FROM referral_registrations
		 WHERE referred_organization_id = $1
		 ORDER BY level, created_at`, referredOrgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ReferralRegistration
	for rows.Next() {
		r, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (q *Queries) SetReferralActive(ctx context.Context, referrerOrgID, referredOrgID uuid.UUID, active bool) (int64, error) {
	tag, err := q.db.Exec(ctx,
		`UPDATE referral_registrations SET is_active = $3
		 WHERE referrer_organization_id = $1 AND referred_organization_id = $2 AND level = 1`,
		referrerOrgID, referredOrgID, active)
	return tag.RowsAffected(), err
}

type ReferralCounts struct {
	Total  int
	Active int
}

func (q *Queries) CountDirectReferrals(ctx context.Context, referrerOrgID uuid.UUID) (ReferralCounts, error) {
	var c ReferralCounts
	err := q.db.QueryRow(ctx,
		`SELECT count(DISTINCT referred_organization_id),
		        count(DISTINCT referred_organization_id) FILTER (WHERE is_active)
		 FROM referral_registrations
		 WHERE referrer_organization_id = $1 AND level = 1`, referrerOrgID).Scan(&c.Total, &c.Active)
	return c, err
}

type CommissionTotals struct {
	Pending decimal.Decimal
	Ready   decimal.Decimal
	Paid    decimal.Decimal
}

func (q *Queries) SumCommissions(ctx context.Context, referrerOrgID, referrerUserID uuid.UUID) (CommissionTotals, error) {
	var t CommissionTotals
	err := q.db.QueryRow(ctx,
		`SELECT COALESCE(sum(commission_amount) FILTER (WHERE status = 'pending'), 0),
		        COALESCE(sum(commission_amount) FILTER (WHERE status = 'ready'), 0),
		        COALESCE(sum(commission_amount) FILTER (WHERE status = 'paid'), 0)
		 FROM referral_transactions
		 WHERE referrer_organization_id = $1 AND referrer_user_id = $2`,
		referrerOrgID, referrerUserID).Scan(&t.Pending, &t.Ready, &t.Paid)
	return t, err
}

const transactionColumns = `id, registration_id, referrer_organization_id, referrer_user_id,
	referred_organization_id, level, payment_amount, commission_percent, commission_amount,
	status, created_at, ready_at, paid_at`

func scanTransaction(row pgx.Row) (domain.ReferralTransaction, error) {
	var t domain.ReferralTransaction
	var level int16
	var status string
	var createdAt, readyAt, paidAt pgtype.Timestamptz
	err := row.Scan(&t.ID, &t.RegistrationID, &t.ReferrerOrganizationID, &t.ReferrerUserID,
		&t.ReferredOrganizationID, &level, &t.PaymentAmount, &t.CommissionPercent, &t.CommissionAmount,
		&status, &createdAt, &readyAt, &paidAt)
	t.Level = int(level)
	t.Status = domain.ReferralTxStatus(status)
	t.CreatedAt = timestamptzToTime(createdAt)
	t.ReadyAt = timestamptzToTimePtr(readyAt)
	t.PaidAt = timestamptzToTimePtr(paidAt)
	return t, err
}

type CreateReferralTransactionParams struct {
	Registration      domain.ReferralRegistration
	PaymentAmount     decimal.Decimal
	CommissionPercent decimal.Decimal
	CommissionAmount  decimal.Decimal
}

func (q *Queries) CreateReferralTransaction(ctx context.Context, arg CreateReferralTransactionParams) (domain.ReferralTransaction, error) {
	r := arg.Registration
	return scanTransaction(q.db.QueryRow(ctx,
		`INSERT INTO referral_transactions
		 (registration_id, referrer_organization_id, referrer_user_id, referred_organization_id,
		  level, payment_amount, commission_percent, commission_amount)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING `+transactionColumns,
		r.ID, r.ReferrerOrganizationID, r.ReferrerUserID, r.ReferredOrganizationID,
		int16(r.Level), arg.PaymentAmount, arg.CommissionPercent, arg.CommissionAmount))
}

// AdvanceReferralTransaction moves a transaction from one status to the next.
// It returns pgx.ErrNoRows when the row is missing or not in status from.
func (q *Queries) AdvanceReferralTransaction(ctx context.Context, orgID, id uuid.UUID, from, to domain.ReferralTxStatus) (domain.ReferralTransaction, error) {
	return scanTransaction(q.db.QueryRow(ctx,
		`UPDATE referral_transactions SET
		   status = $4,
		   ready_at = CASE WHEN $4 = 'ready' THEN now() ELSE ready_at END,
		   paid_at  = CASE WHEN $4 = 'paid'  THEN now() ELSE paid_at END
		 WHERE id = $1 AND referrer_organization_id = $2 AND status = $3
		 RETURNING `+transactionColumns, id, orgID, string(from), string(to)))
}

func (q *Queries) GetReferralTransaction(ctx context.Context, orgID, id uuid.UUID) (domain.ReferralTransaction, error) {
	return scanTransaction(q.db.QueryRow(ctx,
		`SELECT `+transactionColumns+` FROM referral_transactions
		 WHERE id = $1 AND referrer_organization_id = $2`, id, orgID))
}
