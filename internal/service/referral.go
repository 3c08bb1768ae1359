package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/OlegSmmDrug/agencycore.asia-sub007/internal/config"
	"github.com/OlegSmmDrug/agencycore.asia-sub007/internal/domain"
	"github.com/OlegSmmDrug/agencycore.asia-sub007/internal/repository"
)

// ReferralStore is the persistence surface of the referral engine.
type ReferralStore interface {
	GetActivePromoCodeByCode(ctx context.Context, code string) (domain.PromoCode, error)
	GetPromoCodeByUser(ctx context.Context, orgID, userID uuid.UUID) (domain.PromoCode, error)
	CreatePromoCode(ctx context.Context, arg repository.CreatePromoCodeParams) (domain.PromoCode, error)
	DeactivatePromoCode(ctx context.Context, orgID, id uuid.UUID) (int64, error)
	IncrementPromoRegistrations(ctx context.Context, id uuid.UUID) error
	IncrementPromoPayments(ctx context.Context, id uuid.UUID) error

	CreateReferralRegistration(ctx context.Context, arg repository.CreateReferralRegistrationParams) (domain.ReferralRegistration, error)
	GetDirectReferrer(ctx context.Context, referredOrgID uuid.UUID) (domain.ReferralRegistration, error)
	ListRegistrationsByReferred(ctx context.Context, referredOrgID uuid.UUID) ([]domain.ReferralRegistration, error)
	SetReferralActive(ctx context.Context, referrerOrgID, referredOrgID uuid.UUID, active bool) (int64, error)
	CountDirectReferrals(ctx context.Context, referrerOrgID uuid.UUID) (repository.ReferralCounts, error)

	SumCommissions(ctx context.Context, referrerOrgID, referrerUserID uuid.UUID) (repository.CommissionTotals, error)
	CreateReferralTransaction(ctx context.Context, arg repository.CreateReferralTransactionParams) (domain.ReferralTransaction, error)
	GetReferralTransaction(ctx context.Context, orgID, id uuid.UUID) (domain.ReferralTransaction, error)
	AdvanceReferralTransaction(ctx context.Context, orgID, id uuid.UUID, from, to domain.ReferralTxStatus) (domain.ReferralTransaction, error)
}

type ReferralService struct {
	store         ReferralStore
	level2Percent decimal.Decimal
	level3Percent decimal.Decimal
}

func NewReferralService(store ReferralStore, cfg *config.Config) *ReferralService {
	return &ReferralService{
		store:         store,
		level2Percent: decimal.NewFromFloat(cfg.ReferralLevel2Percent),
		level3Percent: decimal.NewFromFloat(cfg.ReferralLevel3Percent),
	}
}

// Register attributes referredOrgID to the owner of code. It returns false without
// an error when the code is unknown, inactive or owned by referredOrgID itself.
//
// The level-1 edge is written first; level-2 and level-3 edges are derived from the
// code owner's own level-1 referrer and are best effort. Nothing is rolled back.
func (s *ReferralService) Register(ctx context.Context, code string, referredOrgID uuid.UUID) (bool, error) {
	code = domain.NormalizePromoCode(code)
	if code == "" {
		return false, nil
	}

	promo, err := s.store.GetActivePromoCodeByCode(ctx, code)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("get promo code: %w", err)
	}

	if promo.OrganizationID == referredOrgID {
		slog.Info("self referral rejected", "code", code, "organization_id", referredOrgID)
		return false, nil
	}

	if _, err := s.store.CreateReferralRegistration(ctx, repository.CreateReferralRegistrationParams{
		PromoCodeID:            promo.ID,
		ReferrerOrganizationID: promo.OrganizationID,
		ReferrerUserID:         promo.UserID,
		ReferredOrganizationID: referredOrgID,
		Level:                  1,
	}); err != nil {
		return false, fmt.Errorf("create level 1 registration: %w", err)
	}

	s.extendChain(ctx, promo, referredOrgID)

	if err := s.store.IncrementPromoRegistrations(ctx, promo.ID); err != nil {
		slog.Error("failed to increment promo registrations", "error", err, "promo_code_id", promo.ID)
	}

	return true, nil
}

// extendChain walks up to two ancestors of the promo owner and writes one edge per level.
func (s *ReferralService) extendChain(ctx context.Context, promo domain.PromoCode, referredOrgID uuid.UUID) {
	upstreamOrg := promo.OrganizationID
	for level := 2; level <= config.MaxReferralLevel; level++ {
		parent, err := s.store.GetDirectReferrer(ctx, upstreamOrg)
		if err != nil {
			if !errors.Is(err, pgx.ErrNoRows) {
				slog.Error("failed to look up upstream referrer", "error", err, "organization_id", upstreamOrg, "level", level)
			}
			return
		}

		if parent.ReferrerOrganizationID == referredOrgID {
			slog.Warn("referral chain loops back to referred organization", "organization_id", referredOrgID, "level", level)
			return
		}

		if _, err := s.store.CreateReferralRegistration(ctx, repository.CreateReferralRegistrationParams{
			PromoCodeID:            promo.ID,
			ReferrerOrganizationID: parent.ReferrerOrganizationID,
			ReferrerUserID:         parent.ReferrerUserID,
			ReferredOrganizationID: referredOrgID,
			Level:                  level,
		}); err != nil {
			slog.Error("failed to create upstream registration", "error", err, "level", level, "referred_organization_id", referredOrgID)
			return
		}

		upstreamOrg = parent.ReferrerOrganizationID
	}
}

// Stats aggregates commissions and referral counts for an affiliate. Nothing is cached.
func (s *ReferralService) Stats(ctx context.Context, orgID, userID uuid.UUID) (*domain.AffiliateStats, error) {
	totals, err := s.store.SumCommissions(ctx, orgID, userID)
	if err != nil {
		return nil, fmt.Errorf("sum commissions: %w", err)
	}

	counts, err := s.store.CountDirectReferrals(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("count referrals: %w", err)
	}

	percent, index := LookupTier(counts.Active)
	return &domain.AffiliateStats{
		ReadyToPay:    totals.Ready,
		Pending:       totals.Pending,
		TotalPaid:     totals.Paid,
		TotalReferred: counts.Total,
		ActiveClients: counts.Active,
		TierPercent:   percent,
		TierIndex:     index,
	}, nil
}

func (s *ReferralService) SetReferralActive(ctx context.Context, referrerOrgID, referredOrgID uuid.UUID, active bool) error {
	n, err := s.store.SetReferralActive(ctx, referrerOrgID, referredOrgID, active)
	if err != nil {
		return fmt.Errorf("set referral active: %w", err)
	}
	if n == 0 {
		return domain.ErrReferralNotFound
	}
	return nil
}

// RecordPayment creates one pending commission per registration edge of the paying
// organization. Level 1 earns the referrer's current tier percent, levels 2 and 3 the
// configured percents. Rows written before a failure stay written.
func (s *ReferralService) RecordPayment(ctx context.Context, payingOrgID uuid.UUID, amount decimal.Decimal) ([]domain.ReferralTransaction, error) {
	if !amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}

	regs, err := s.store.ListRegistrationsByReferred(ctx, payingOrgID)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}

	var created []domain.ReferralTransaction
	for _, reg := range regs {
		percent, err := s.commissionPercent(ctx, reg)
		if err != nil {
			return created, err
		}

		tx, err := s.store.CreateReferralTransaction(ctx, repository.CreateReferralTransactionParams{
			Registration:      reg,
			PaymentAmount:     amount,
			CommissionPercent: percent,
			CommissionAmount:  amount.Mul(percent).Div(decimal.NewFromInt(100)).Round(2),
		})
		if err != nil {
			return created, fmt.Errorf("create level %d transaction: %w", reg.Level, err)
		}
		created = append(created, tx)

		if reg.Level == 1 {
			if err := s.store.IncrementPromoPayments(ctx, reg.PromoCodeID); err != nil {
				slog.Error("failed to increment promo payments", "error", err, "promo_code_id", reg.PromoCodeID)
			}
		}
	}
	return created, nil
}

func (s *ReferralService) commissionPercent(ctx context.Context, reg domain.ReferralRegistration) (decimal.Decimal, error) {
	switch reg.Level {
	case 1:
		counts, err := s.store.CountDirectReferrals(ctx, reg.ReferrerOrganizationID)
		if err != nil {
			return decimal.Zero, fmt.Errorf("count referrals: %w", err)
		}
		percent, _ := LookupTier(counts.Active)
		return decimal.NewFromInt(int64(percent)), nil
	case 2:
		return s.level2Percent, nil
	default:
		return s.level3Percent, nil
	}
}

// AdvanceTransaction moves a commission one step along pending -> ready -> paid.
func (s *ReferralService) AdvanceTransaction(ctx context.Context, orgID, id uuid.UUID, to domain.ReferralTxStatus) (*domain.ReferralTransaction, error) {
	current, err := s.store.GetReferralTransaction(ctx, orgID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("get transaction: %w", err)
	}

	next, ok := current.Status.Next()
	if !ok || next != to {
		return nil, domain.ErrInvalidTransition
	}

	updated, err := s.store.AdvanceReferralTransaction(ctx, orgID, id, current.Status, next)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrInvalidTransition
		}
		return nil, fmt.Errorf("advance transaction: %w", err)
	}
	return &updated, nil
}
