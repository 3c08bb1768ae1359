package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const TaskStatusDone = "done"

type Task struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	ProjectID      *uuid.UUID
	ClientID       *uuid.UUID
	AssigneeID     *uuid.UUID
	Title          string
	Description    string
	Type           string
	Status         string
	EstimatedHours decimal.Decimal
	Deadline       *time.Time
	CompletedAt    *time.Time
	CreatedAt      time.Time
}

// CompletionDate prefers CompletedAt and falls back to Deadline.
func (t *Task) CompletionDate() *time.Time {
	if t.CompletedAt != nil {
		return t.CompletedAt
	}
	return t.Deadline
}

type Project struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	ClientID       *uuid.UUID
	Name           string
	TeamIDs        []uuid.UUID
	CreatedAt      time.Time
}

func (p *Project) HasMember(userID uuid.UUID) bool {
	for _, id := range p.TeamIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// ProjectContentMetrics holds planned and delivered content counts for one month,
// keyed by free-text metric names such as "posts" or "reels_count".
type ProjectContentMetrics struct {
	ProjectID uuid.UUID
	Month     Month
	Plan      map[string]int
	Fact      map[string]int
}

func (m *ProjectContentMetrics) HasPlan() bool {
	for _, v := range m.Plan {
		if v > 0 {
			return true
		}
	}
	return false
}

type ContentPublication struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	ProjectID      uuid.UUID
	AssignedUserID uuid.UUID
	ContentType    string
	PublishedAt    time.Time
}
