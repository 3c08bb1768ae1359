package api

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// HeaderOrganizationID carries the tenant every scoped request acts on.
const HeaderOrganizationID = "X-Organization-ID"

const orgContextKey = "organization_id"

// OrganizationScope rejects requests without a valid organization header and
// stores the parsed id on the context.
func OrganizationScope() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			orgID, err := uuid.Parse(c.Request().Header.Get(HeaderOrganizationID))
			if err != nil {
				return fail(c, http.StatusBadRequest, "Missing or invalid "+HeaderOrganizationID+" header")
			}
			c.Set(orgContextKey, orgID)
			return next(c)
		}
	}
}

func organizationID(c echo.Context) uuid.UUID {
	id, _ := c.Get(orgContextKey).(uuid.UUID)
	return id
}
