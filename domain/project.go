package domain

import (
	"strings"
	"time"
)

// Project groups tasks and the users allowed to work on them.
type Project struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatorID   string    `json:"creator_id"`
	Members     []UserRef `json:"members"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (p *Project) Validate() error {
	if p == nil || strings.TrimSpace(p.Name) == "" {
		return NewError(ErrCodeInvalid, "project name is required")
	}
	return nil
}

// AddMember appends the user unless already a member.
func (p *Project) AddMember(user UserRef) bool {
	if p.HasMember(user.ID) {
		return false
	}
	p.Members = append(p.Members, user)
	return true
}

func (p *Project) RemoveMember(userID string) bool {
	for i, m := range p.Members {
		if m.ID == userID {
			p.Members = append(p.Members[:i], p.Members[i+1:]...)
			return true
		}
	}
	return false
}

func (p *Project) HasMember(userID string) bool {
	for _, m := range p.Members {
		if m.ID == userID {
			return true
		}
	}
	return false
}
