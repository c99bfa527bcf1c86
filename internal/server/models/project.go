package models

import (
	"slices"
	"time"
)

type Project struct {
	ID          string
	Name        string
	Description string
	MemberIDs   []string
	Deleted     bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// HasMember reports whether userID is in the project's member set.
func (p *Project) HasMember(userID string) bool {
	return slices.Contains(p.MemberIDs, userID)
}

// ProjectFilter narrows project listings. MemberID restricts results to
// projects containing that user; the caller's own membership is always enforced.
type ProjectFilter struct {
	Name        string
	Description string
	MemberID    string
	Page        Page
}

type Step struct {
	ID        string
	Name      string
	ProjectID string
	Deleted   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

type StepFilter struct {
	Name string
	Page Page
}
