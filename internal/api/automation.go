package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/OlegSmmDrug/agencycore.asia-sub007/internal/service"
	"github.com/OlegSmmDrug/agencycore.asia-sub007/internal/telegram"
)

type AutomationController struct {
	automation *service.AutomationService
	tgLogger   *telegram.TelegramLogger
}

func NewAutomationController(automation *service.AutomationService, tgLogger *telegram.TelegramLogger) *AutomationController {
	return &AutomationController{automation: automation, tgLogger: tgLogger}
}

type triggerRequest struct {
	TriggerType string                 `json:"triggerType" validate:"required,max=100"`
	Context     map[string]interface{} `json:"context"`
}

// Trigger fires every active rule of the organization registered for the trigger type.
// Per-rule failures are reported in the outcome list, not as an HTTP error.
func (ac *AutomationController) Trigger(c echo.Context) error {
	var req triggerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return fail(c, http.StatusBadRequest, err.Error())
	}
	if req.Context == nil {
		req.Context = map[string]interface{}{}
	}

	outcomes, err := ac.automation.Trigger(c.Request().Context(), organizationID(c), req.TriggerType, req.Context)
	if err != nil {
		return serviceError(c, err, "automation trigger")
	}
	for _, out := range outcomes {
		if out.Error != "" {
			ac.tgLogger.LogAutomationFailure(out.RuleID, req.TriggerType, out.Error)
		}
	}
	return ok(c, http.StatusOK, "Trigger processed", outcomes)
}
