package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReferralRegistration is a directed edge: Referrer brought ReferredOrganization in at Level.
type ReferralRegistration struct {
	ID                     uuid.UUID
	PromoCodeID            uuid.UUID
	ReferrerOrganizationID uuid.UUID
	ReferrerUserID         uuid.UUID
	ReferredOrganizationID uuid.UUID
	Level                  int
	IsActive               bool
	CreatedAt              time.Time
}

type ReferralTxStatus string

const (
	ReferralTxPending ReferralTxStatus = "pending"
	ReferralTxReady   ReferralTxStatus = "ready"
	ReferralTxPaid    ReferralTxStatus = "paid"
)

// Next returns the only status this one may advance to.
func (s ReferralTxStatus) Next() (ReferralTxStatus, bool) {
	switch s {
	case ReferralTxPending:
		return ReferralTxReady, true
	case ReferralTxReady:
		return ReferralTxPaid, true
	default:
		return "", false
	}
}

type ReferralTransaction struct {
	ID                     uuid.UUID
	RegistrationID         uuid.UUID
	ReferrerOrganizationID uuid.UUID
	ReferrerUserID         uuid.UUID
	ReferredOrganizationID uuid.UUID
	Level                  int
	PaymentAmount          decimal.Decimal
	CommissionPercent      decimal.Decimal
	CommissionAmount       decimal.Decimal
	Status                 ReferralTxStatus
	CreatedAt              time.Time
	ReadyAt                *time.Time
	PaidAt                 *time.Time
}

type RewardTier struct {
	MinActiveClients int
	MaxActiveClients int // -1 means unbounded
	Percent          int
}

type AffiliateStats struct {
	ReadyToPay    decimal.Decimal `json:"readyToPay"`
	Pending       decimal.Decimal `json:"pending"`
	TotalPaid     decimal.Decimal `json:"totalPaid"`
	TotalReferred int             `json:"totalReferred"`
	ActiveClients int             `json:"activeClients"`
	TierPercent   int             `json:"tierPercent"`
	TierIndex     int             `json:"tierIndex"`
}
