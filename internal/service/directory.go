package service

import (
	"github.com/google/uuid"

	"github.com/OlegSmmDrug/agencycore.asia-sub007/internal/domain"
)

// UserDirectory is an organization's member list loaded once per payroll run.
type UserDirectory struct {
	users map[uuid.UUID]domain.User
}

func NewUserDirectory(users []domain.User) *UserDirectory {
	d := &UserDirectory{users: make(map[uuid.UUID]domain.User, len(users))}
	for _, u := range users {
		d.users[u.ID] = u
	}
	return d
}

func (d *UserDirectory) Get(id uuid.UUID) (domain.User, bool) {
	if d == nil {
		return domain.User{}, false
	}
	u, ok := d.users[id]
	return u, ok
}

// CountSMM counts the ids that belong to SMM members.
func (d *UserDirectory) CountSMM(ids []uuid.UUID) int {
	n := 0
	for _, id := range ids {
		if u, ok := d.Get(id); ok && u.IsSMM() {
			n++
		}
	}
	return n
}
