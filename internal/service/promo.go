package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"regexp"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/OlegSmmDrug/agencycore.asia-sub007/internal/config"
	"github.com/OlegSmmDrug/agencycore.asia-sub007/internal/domain"
	"github.com/OlegSmmDrug/agencycore.asia-sub007/internal/repository"
)

const promoCodeCharset = "abcdefghjkmnpqrstuvwxyz23456789"

var promoCodePattern = regexp.MustCompile(`^[\p{L}\p{N}_-]{3,32}$`)

// CreatePromoCode registers a promo code for the user's organization. An empty
// code asks for a generated one.
func (s *ReferralService) CreatePromoCode(ctx context.Context, orgID, userID uuid.UUID, code string) (*domain.PromoCode, error) {
	if code == "" {
		return s.createGeneratedPromoCode(ctx, orgID, userID)
	}

	code = domain.NormalizePromoCode(code)
	if !promoCodePattern.MatchString(code) {
		return nil, domain.ErrPromoCodeInvalid
	}

	promo, err := s.store.CreatePromoCode(ctx, repository.CreatePromoCodeParams{
		Code:           code,
		OrganizationID: orgID,
		UserID:         userID,
	})
	if err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, domain.ErrPromoCodeTaken
		}
		return nil, fmt.Errorf("create promo code: %w", err)
	}
	return &promo, nil
}

func (s *ReferralService) createGeneratedPromoCode(ctx context.Context, orgID, userID uuid.UUID) (*domain.PromoCode, error) {
	for i := 0; i < 10; i++ {
		code, err := generatePromoCode()
		if err != nil {
			return nil, fmt.Errorf("generate promo code: %w", err)
		}
		promo, err := s.store.CreatePromoCode(ctx, repository.CreatePromoCodeParams{
			Code:           code,
			OrganizationID: orgID,
			UserID:         userID,
		})
		if err == nil {
			return &promo, nil
		}
		if !repository.IsUniqueViolation(err) {
			return nil, fmt.Errorf("create promo code: %w", err)
		}
	}
	return nil, fmt.Errorf("failed to generate unique promo code after 10 attempts")
}

// PromoCodeForUser returns the user's active promo code, or nil when there is none.
func (s *ReferralService) PromoCodeForUser(ctx context.Context, orgID, userID uuid.UUID) (*domain.PromoCode, error) {
	promo, err := s.store.GetPromoCodeByUser(ctx, orgID, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get promo code: %w", err)
	}
	return &promo, nil
}

func (s *ReferralService) DeactivatePromoCode(ctx context.Context, orgID, id uuid.UUID) error {
	n, err := s.store.DeactivatePromoCode(ctx, orgID, id)
	if err != nil {
		return fmt.Errorf("deactivate promo code: %w", err)
	}
	if n == 0 {
		return domain.ErrPromoNotFound
	}
	return nil
}

func generatePromoCode() (string, error) {
	code := make([]byte, config.PromoCodeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(promoCodeCharset))))
		if err != nil {
			return "", fmt.Errorf("random int: %w", err)
		}
		code[i] = promoCodeCharset[n.Int64()]
	}
	return string(code), nil
}
