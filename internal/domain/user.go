package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Organization struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
}

type User struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	Name           string
	JobTitle       string
	Salary         decimal.Decimal
	TelegramID     *int64
	CreatedAt      time.Time
}

// IsSMM reports whether the job title belongs to the content (SMM) team.
// The match is a case-insensitive substring on "smm" or "контент".
func (u *User) IsSMM() bool {
	return IsSMMTitle(u.JobTitle)
}

func IsSMMTitle(title string) bool {
	t := strings.ToLower(title)
	return strings.Contains(t, "smm") || strings.Contains(t, "контент")
}

type Client struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	Name           string
	Phone          string
	Status         string
	ManagerID      *uuid.UUID
	CreatedAt      time.Time
}

type Notification struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Title     string
	Message   string
	Type      string
	IsRead    bool
	CreatedAt time.Time
}

type Category struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	Name           string
	Kind           string
	CreatedAt      time.Time
}
