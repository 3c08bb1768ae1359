package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/OlegSmmDrug/agencycore.asia-sub007/internal/domain"
	"github.com/OlegSmmDrug/agencycore.asia-sub007/internal/service"
	"github.com/OlegSmmDrug/agencycore.asia-sub007/internal/telegram"
)

type PayrollController struct {
	payroll  *service.PayrollService
	bonuses  *service.BonusService
	tgLogger *telegram.TelegramLogger
}

func NewPayrollController(payroll *service.PayrollService, bonuses *service.BonusService, tgLogger *telegram.TelegramLogger) *PayrollController {
	return &PayrollController{payroll: payroll, bonuses: bonuses, tgLogger: tgLogger}
}

type payrollRecordView struct {
	ID              uuid.UUID              `json:"id"`
	UserID          uuid.UUID              `json:"userId"`
	Month           string                 `json:"month"`
	FixedSalary     decimal.Decimal        `json:"fixedSalary"`
	CalculatedKPI   decimal.Decimal        `json:"calculatedKpi"`
	CalculatedBonus decimal.Decimal        `json:"calculatedBonus"`
	ManualBonus     decimal.Decimal        `json:"manualBonus"`
	ManualPenalty   decimal.Decimal        `json:"manualPenalty"`
	Advance         decimal.Decimal        `json:"advance"`
	Balance         decimal.Decimal        `json:"balance"`
	Status          string                 `json:"status"`
	TaskPayments    []domain.PayrollDetail `json:"taskPayments"`
	UpdatedAt       time.Time              `json:"updatedAt"`
}

func newPayrollRecordView(r *domain.PayrollRecord) payrollRecordView {
	return payrollRecordView{
		ID:              r.ID,
		UserID:          r.UserID,
		Month:           r.Month.String(),
		FixedSalary:     r.FixedSalary,
		CalculatedKPI:   r.CalculatedKPI,
		CalculatedBonus: r.CalculatedBonus,
		ManualBonus:     r.ManualBonus,
		ManualPenalty:   r.ManualPenalty,
		Advance:         r.Advance,
		Balance:         r.Balance,
		Status:          string(r.Status),
		TaskPayments:    r.TaskPayments,
		UpdatedAt:       r.UpdatedAt,
	}
}

type createSchemeRequest struct {
	JobTitle       *string          `json:"jobTitle"`
	UserID         *string          `json:"userId" validate:"omitempty,uuid"`
	BaseSalary     decimal.Decimal  `json:"baseSalary"`
	KPIRules       []domain.KPIRule `json:"kpiRules" validate:"dive"`
	PMBonusPercent *decimal.Decimal `json:"pmBonusPercent"`
}

func (pc *PayrollController) CreateScheme(c echo.Context) error {
	var req createSchemeRequest
	if err := bindAndValidate(c, &req); err != nil {
		return fail(c, http.StatusBadRequest, err.Error())
	}

	scheme := domain.SalaryScheme{
		OrganizationID: organizationID(c),
		JobTitle:       req.JobTitle,
		BaseSalary:     req.BaseSalary,
		KPIRules:       req.KPIRules,
		PMBonusPercent: req.PMBonusPercent,
	}
	if req.UserID != nil {
		id := uuid.MustParse(*req.UserID)
		scheme.UserID = &id
	}

	created, err := pc.payroll.CreateScheme(c.Request().Context(), scheme)
	if err != nil {
		return serviceError(c, err, "create salary scheme")
	}
	return ok(c, http.StatusCreated, "Salary scheme created", map[string]interface{}{
		"id":             created.ID,
		"jobTitle":       created.JobTitle,
		"userId":         created.UserID,
		"baseSalary":     created.BaseSalary,
		"kpiRules":       created.KPIRules,
		"pmBonusPercent": created.PMBonusPercent,
	})
}

type createBonusRuleRequest struct {
	Name              string             `json:"name" validate:"required,max=200"`
	OwnerJobTitle     *string            `json:"ownerJobTitle"`
	OwnerUserID       *string            `json:"ownerUserId" validate:"omitempty,uuid"`
	MetricSource      string             `json:"metricSource" validate:"required"`
	ConditionType     string             `json:"conditionType" validate:"required,oneof=threshold tiered"`
	ThresholdOperator string             `json:"thresholdOperator"`
	ThresholdValue    decimal.Decimal    `json:"thresholdValue"`
	TieredConfig      []domain.BonusTier `json:"tieredConfig"`
	RewardType        string             `json:"rewardType" validate:"required,oneof=fixed percent"`
	RewardValue       decimal.Decimal    `json:"rewardValue"`
	AppliesToBase     bool               `json:"appliesToBase"`
	Period            string             `json:"period" validate:"omitempty,oneof=monthly quarterly"`
}

func (pc *PayrollController) CreateBonusRule(c echo.Context) error {
	var req createBonusRuleRequest
	if err := bindAndValidate(c, &req); err != nil {
		return fail(c, http.StatusBadRequest, err.Error())
	}

	rule := domain.BonusRule{
		OrganizationID:    organizationID(c),
		Name:              req.Name,
		OwnerJobTitle:     req.OwnerJobTitle,
		MetricSource:      req.MetricSource,
		ConditionType:     domain.BonusConditionType(req.ConditionType),
		ThresholdOperator: req.ThresholdOperator,
		ThresholdValue:    req.ThresholdValue,
		TieredConfig:      req.TieredConfig,
		RewardType:        domain.BonusRewardType(req.RewardType),
		RewardValue:       req.RewardValue,
		AppliesToBase:     req.AppliesToBase,
		Period:            domain.BonusPeriod(req.Period),
		IsActive:          true,
	}
	if req.OwnerUserID != nil {
		id := uuid.MustParse(*req.OwnerUserID)
		rule.OwnerUserID = &id
	}

	created, err := pc.bonuses.CreateRule(c.Request().Context(), rule)
	if err != nil {
		return serviceError(c, err, "create bonus rule")
	}
	return ok(c, http.StatusCreated, "Bonus rule created", map[string]interface{}{
		"id":     created.ID,
		"name":   created.Name,
		"period": created.Period,
	})
}

// Get computes the user's payroll for ?month=YYYY-MM (current month by default)
// without persisting it.
func (pc *PayrollController) Get(c echo.Context) error {
	userID, err := pathUUID(c, "userId")
	if err != nil {
		return fail(c, http.StatusBadRequest, err.Error())
	}
	month, err := queryMonth(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, err.Error())
	}

	res, err := pc.payroll.CalculateForUser(c.Request().Context(), organizationID(c), userID, month)
	if err != nil {
		return serviceError(c, err, "calculate payroll")
	}
	return ok(c, http.StatusOK, "Payroll calculated", res)
}

func (pc *PayrollController) Record(c echo.Context) error {
	userID, err := pathUUID(c, "userId")
	if err != nil {
		return fail(c, http.StatusBadRequest, err.Error())
	}
	month, err := queryMonth(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, err.Error())
	}

	rec, err := pc.payroll.Record(c.Request().Context(), organizationID(c), userID, month)
	if err != nil {
		return serviceError(c, err, "get payroll record")
	}
	return ok(c, http.StatusOK, "Payroll record", newPayrollRecordView(rec))
}

func (pc *PayrollController) Snapshot(c echo.Context) error {
	userID, err := pathUUID(c, "userId")
	if err != nil {
		return fail(c, http.StatusBadRequest, err.Error())
	}
	month, err := queryMonth(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, err.Error())
	}

	rec, err := pc.payroll.Snapshot(c.Request().Context(), organizationID(c), userID, month)
	if err != nil {
		return serviceError(c, err, "payroll snapshot")
	}
	pc.tgLogger.LogPayrollSnapshot(userID, month.String(), rec.Balance)
	return ok(c, http.StatusOK, "Payroll record saved", newPayrollRecordView(rec))
}

type adjustPayrollRequest struct {
	ManualBonus   decimal.Decimal `json:"manualBonus"`
	ManualPenalty decimal.Decimal `json:"manualPenalty"`
	Advance       decimal.Decimal `json:"advance"`
}

func (pc *PayrollController) Adjust(c echo.Context) error {
	userID, err := pathUUID(c, "userId")
	if err != nil {
		return fail(c, http.StatusBadRequest, err.Error())
	}
	month, err := queryMonth(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, err.Error())
	}
	var req adjustPayrollRequest
	if err := bindAndValidate(c, &req); err != nil {
		return fail(c, http.StatusBadRequest, err.Error())
	}

	rec, err := pc.payroll.Adjust(c.Request().Context(), organizationID(c), userID, month, service.PayrollAdjustment{
		ManualBonus:   req.ManualBonus,
		ManualPenalty: req.ManualPenalty,
		Advance:       req.Advance,
	})
	if err != nil {
		return serviceError(c, err, "adjust payroll")
	}
	return ok(c, http.StatusOK, "Payroll record adjusted", newPayrollRecordView(rec))
}
