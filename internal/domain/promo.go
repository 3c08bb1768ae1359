package domain

import (
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
)

type PromoCode struct {
	ID                 uuid.UUID
	Code               string
	OrganizationID     uuid.UUID
	UserID             uuid.UUID
	RegistrationsCount int
	PaymentsCount      int
	IsActive           bool
	CreatedAt          time.Time
}

// NormalizePromoCode lowercases the code and strips all whitespace.
func NormalizePromoCode(code string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, code)
}
