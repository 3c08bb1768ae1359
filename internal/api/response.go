package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/OlegSmmDrug/agencycore.asia-sub007/internal/domain"
)

// Response is the envelope every endpoint answers with.
type Response struct {
	Status  int         `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func ok(c echo.Context, status int, message string, data interface{}) error {
	return c.JSON(status, Response{Status: status, Message: message, Data: data})
}

func fail(c echo.Context, status int, message string) error {
	return c.JSON(status, Response{Status: status, Message: message})
}

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrPromoNotFound),
		errors.Is(err, domain.ErrReferralNotFound),
		errors.Is(err, domain.ErrTransactionNotFound),
		errors.Is(err, domain.ErrCategoryNotFound),
		errors.Is(err, domain.ErrRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrPromoCodeTaken),
		errors.Is(err, domain.ErrCategoryExists),
		errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, domain.ErrPromoCodeInvalid),
		errors.Is(err, domain.ErrSelfReferral),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrSchemeTargetInvalid),
		errors.Is(err, domain.ErrBonusRuleInvalid),
		errors.Is(err, domain.ErrInvalidMonth),
		errors.Is(err, domain.ErrCategoryNameEmpty):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// serviceError writes err with its mapped status. Internal errors are logged and
// answered with a generic message.
func serviceError(c echo.Context, err error, op string) error {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		slog.Error(op, "error", err, "path", c.Path())
		return fail(c, status, "Internal server error")
	}
	return fail(c, status, err.Error())
}

var errInvalidBody = errors.New("invalid request body")

// bindAndValidate decodes the request body into req and runs its validate tags.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return errInvalidBody
	}
	return c.Validate(req)
}

func pathUUID(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s", name)
	}
	return id, nil
}

func queryMonth(c echo.Context) (domain.Month, error) {
	raw := c.QueryParam("month")
	if raw == "" {
		return domain.MonthOf(time.Now().UTC()), nil
	}
	return domain.ParseMonth(raw)
}
