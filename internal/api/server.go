package api

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/OlegSmmDrug/agencycore.asia-sub007/internal/service"
	"github.com/OlegSmmDrug/agencycore.asia-sub007/internal/telegram"
)

// CustomValidator plugs go-playground/validator into echo's Bind/Validate flow.
type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// Deps lists the services exposed over HTTP. Nil services leave their routes unregistered.
type Deps struct {
	Referrals  *service.ReferralService
	Payroll    *service.PayrollService
	Bonuses    *service.BonusService
	Automation *service.AutomationService
	Categories *service.CategoryService
	TgLogger   *telegram.TelegramLogger
}

// NewServer builds the echo instance with middleware and all /api/v1 routes.
func NewServer(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = &CustomValidator{validator: validator.New()}

	e.Use(echoMiddleware.Recover())
	e.Use(requestLogger())
	e.Use(echoMiddleware.CORSWithConfig(echoMiddleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, HeaderOrganizationID},
	}))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, Response{Status: http.StatusOK, Message: "ok"})
	})

	v1 := e.Group("/api/v1")
	v1.GET("/reward-tiers", getRewardTier)

	scoped := v1.Group("", OrganizationScope())

	if deps.Referrals != nil {
		rc := NewReferralController(deps.Referrals, deps.TgLogger)
		scoped.POST("/promo-codes", rc.CreatePromoCode)
		scoped.DELETE("/promo-codes/:id", rc.DeactivatePromoCode)
		v1.POST("/referrals", rc.Register)
		scoped.PUT("/referrals/:orgId/active", rc.SetActive)
		scoped.GET("/affiliate/stats", rc.Stats)
		v1.POST("/referral-payments", rc.RecordPayment)
		scoped.POST("/referral-transactions/:id/advance", rc.AdvanceTransaction)
	}

	if deps.Payroll != nil {
		pc := NewPayrollController(deps.Payroll, deps.Bonuses, deps.TgLogger)
		scoped.POST("/salary-schemes", pc.CreateScheme)
		if deps.Bonuses != nil {
			scoped.POST("/bonus-rules", pc.CreateBonusRule)
		}
		scoped.GET("/payroll/:userId", pc.Get)
		scoped.GET("/payroll/:userId/record", pc.Record)
		scoped.POST("/payroll/:userId/snapshot", pc.Snapshot)
		scoped.PATCH("/payroll/:userId/adjustments", pc.Adjust)
	}

	if deps.Automation != nil {
		ac := NewAutomationController(deps.Automation, deps.TgLogger)
		scoped.POST("/automation/trigger", ac.Trigger)
	}

	if deps.Categories != nil {
		cc := NewCategoryController(deps.Categories)
		scoped.GET("/categories", cc.List)
		scoped.POST("/categories", cc.Create)
		scoped.DELETE("/categories/:id", cc.Delete)
	}

	return e
}

func requestLogger() echo.MiddlewareFunc {
	return echoMiddleware.RequestLoggerWithConfig(echoMiddleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v echoMiddleware.RequestLoggerValues) error {
			attrs := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency_ms", v.Latency.Milliseconds(),
			}
			if v.Error != nil {
				slog.Error("http request", append(attrs, "error", v.Error)...)
				return nil
			}
			slog.Info("http request", attrs...)
			return nil
		},
	})
}
