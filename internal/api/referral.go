package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/OlegSmmDrug/agencycore.asia-sub007/internal/domain"
	"github.com/OlegSmmDrug/agencycore.asia-sub007/internal/service"
	"github.com/OlegSmmDrug/agencycore.asia-sub007/internal/telegram"
)

type ReferralController struct {
	referrals *service.ReferralService
	tgLogger  *telegram.TelegramLogger
}

func NewReferralController(referrals *service.ReferralService, tgLogger *telegram.TelegramLogger) *ReferralController {
	return &ReferralController{referrals: referrals, tgLogger: tgLogger}
}

type promoCodeView struct {
	ID                 uuid.UUID `json:"id"`
	Code               string    `json:"code"`
	OrganizationID     uuid.UUID `json:"organizationId"`
	UserID             uuid.UUID `json:"userId"`
	RegistrationsCount int       `json:"registrationsCount"`
	PaymentsCount      int       `json:"paymentsCount"`
	IsActive           bool      `json:"isActive"`
	CreatedAt          time.Time `json:"createdAt"`
}

func newPromoCodeView(p *domain.PromoCode) promoCodeView {
	return promoCodeView{
		ID:                 p.ID,
		Code:               p.Code,
		OrganizationID:     p.OrganizationID,
		UserID:             p.UserID,
		RegistrationsCount: p.RegistrationsCount,
		PaymentsCount:      p.PaymentsCount,
		IsActive:           p.IsActive,
		CreatedAt:          p.CreatedAt,
	}
}

type transactionView struct {
	ID                     uuid.UUID       `json:"id"`
	ReferrerOrganizationID uuid.UUID       `json:"referrerOrganizationId"`
	ReferredOrganizationID uuid.UUID       `json:"referredOrganizationId"`
	Level                  int             `json:"level"`
	PaymentAmount          decimal.Decimal `json:"paymentAmount"`
	CommissionPercent      decimal.Decimal `json:"commissionPercent"`
	CommissionAmount       decimal.Decimal `json:"commissionAmount"`
	Status                 string          `json:"status"`
	CreatedAt              time.Time       `json:"createdAt"`
	ReadyAt                *time.Time      `json:"readyAt,omitempty"`
	PaidAt                 *time.Time      `json:"paidAt,omitempty"`
}

func newTransactionView(tx *domain.ReferralTransaction) transactionView {
	return transactionView{
		ID:                     tx.ID,
		ReferrerOrganizationID: tx.ReferrerOrganizationID,
		ReferredOrganizationID: tx.ReferredOrganizationID,
		Level:                  tx.Level,
		PaymentAmount:          tx.PaymentAmount,
		CommissionPercent:      tx.CommissionPercent,
		CommissionAmount:       tx.CommissionAmount,
		Status:                 string(tx.Status),
		CreatedAt:              tx.CreatedAt,
		ReadyAt:                tx.ReadyAt,
		PaidAt:                 tx.PaidAt,
	}
}

// getRewardTier answers GET /reward-tiers?active_clients=N.
func getRewardTier(c echo.Context) error {
	n, err := strconv.Atoi(c.QueryParam("active_clients"))
	if err != nil || n < 0 {
		return fail(c, http.StatusBadRequest, "active_clients must be a non-negative integer")
	}
	percent, index := service.LookupTier(n)
	return ok(c, http.StatusOK, "Reward tier", map[string]int{
		"activeClients": n,
		"percent":       percent,
		"tierIndex":     index,
	})
}

type createPromoCodeRequest struct {
	UserID string `json:"userId" validate:"required,uuid"`
	Code   string `json:"code" validate:"omitempty,max=32"`
}

func (rc *ReferralController) CreatePromoCode(c echo.Context) error {
	var req createPromoCodeRequest
	if err := bindAndValidate(c, &req); err != nil {
		return fail(c, http.StatusBadRequest, err.Error())
	}
	orgID := organizationID(c)
	userID := uuid.MustParse(req.UserID)

	promo, err := rc.referrals.CreatePromoCode(c.Request().Context(), orgID, userID, req.Code)
	if err != nil {
		return serviceError(c, err, "create promo code")
	}
	rc.tgLogger.LogPromoCreate(promo.Code, orgID, userID)
	return ok(c, http.StatusCreated, "Promo code created", newPromoCodeView(promo))
}

func (rc *ReferralController) DeactivatePromoCode(c echo.Context) error {
	id, err := pathUUID(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, err.Error())
	}
	if err := rc.referrals.DeactivatePromoCode(c.Request().Context(), organizationID(c), id); err != nil {
		return serviceError(c, err, "deactivate promo code")
	}
	return ok(c, http.StatusOK, "Promo code deactivated", nil)
}

type registerReferralRequest struct {
	Code           string `json:"code" validate:"required"`
	OrganizationID string `json:"organizationId" validate:"required,uuid"`
}

// Register attributes a newly signed-up organization to a promo code. An unknown
// code or a self-referral is not an error: the answer carries registered=false.
func (rc *ReferralController) Register(c echo.Context) error {
	var req registerReferralRequest
	if err := bindAndValidate(c, &req); err != nil {
		return fail(c, http.StatusBadRequest, err.Error())
	}
	referredOrg := uuid.MustParse(req.OrganizationID)

	registered, err := rc.referrals.Register(c.Request().Context(), req.Code, referredOrg)
	if err != nil {
		return serviceError(c, err, "register referral")
	}
	if registered {
		rc.tgLogger.LogReferral(domain.NormalizePromoCode(req.Code), referredOrg)
	}
	return ok(c, http.StatusOK, "Referral processed", map[string]bool{"registered": registered})
}

type setActiveRequest struct {
	Active *bool `json:"active" validate:"required"`
}

func (rc *ReferralController) SetActive(c echo.Context) error {
	referredOrg, err := pathUUID(c, "orgId")
	if err != nil {
		return fail(c, http.StatusBadRequest, err.Error())
	}
	var req setActiveRequest
	if err := bindAndValidate(c, &req); err != nil {
		return fail(c, http.StatusBadRequest, err.Error())
	}
	if err := rc.referrals.SetReferralActive(c.Request().Context(), organizationID(c), referredOrg, *req.Active); err != nil {
		return serviceError(c, err, "set referral active")
	}
	return ok(c, http.StatusOK, "Referral updated", nil)
}

func (rc *ReferralController) Stats(c echo.Context) error {
	userID, err := uuid.Parse(c.QueryParam("user_id"))
	if err != nil {
		return fail(c, http.StatusBadRequest, "Invalid user_id")
	}
	stats, err := rc.referrals.Stats(c.Request().Context(), organizationID(c), userID)
	if err != nil {
		return serviceError(c, err, "affiliate stats")
	}
	return ok(c, http.StatusOK, "Affiliate stats", stats)
}

type recordPaymentRequest struct {
	OrganizationID string          `json:"organizationId" validate:"required,uuid"`
	Amount         decimal.Decimal `json:"amount"`
}

func (rc *ReferralController) RecordPayment(c echo.Context) error {
	var req recordPaymentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return fail(c, http.StatusBadRequest, err.Error())
	}

	txs, err := rc.referrals.RecordPayment(c.Request().Context(), uuid.MustParse(req.OrganizationID), req.Amount)
	if err != nil {
		return serviceError(c, err, "record referral payment")
	}
	views := make([]transactionView, 0, len(txs))
	for i := range txs {
		views = append(views, newTransactionView(&txs[i]))
	}
	return ok(c, http.StatusCreated, "Commissions recorded", views)
}

type advanceTransactionRequest struct {
	Status string `json:"status" validate:"required,oneof=ready paid"`
}

func (rc *ReferralController) AdvanceTransaction(c echo.Context) error {
	id, err := pathUUID(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, err.Error())
	}
	var req advanceTransactionRequest
	if err := bindAndValidate(c, &req); err != nil {
		return fail(c, http.StatusBadRequest, err.Error())
	}

	tx, err := rc.referrals.AdvanceTransaction(c.Request().Context(), organizationID(c), id, domain.ReferralTxStatus(req.Status))
	if err != nil {
		return serviceError(c, err, "advance referral transaction")
	}
	return ok(c, http.StatusOK, "Transaction updated", newTransactionView(tx))
}
