package repository

import (
	"context"

	"github.com/fastygo/tracker/domain"
)

type ProjectFilter struct {
	CreatorID string
	MemberID  string
	Limit     int
	Offset    int
}

// ProjectRepository persists projects and their member set.
type ProjectRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	List(ctx context.Context, filter ProjectFilter) ([]domain.Project, error)
	Save(ctx context.Context, project *domain.Project) error
	Delete(ctx context.Context, id string) error
	AddMember(ctx context.Context, projectID, userID string) error
	RemoveMember(ctx context.Context, projectID, userID string) error
}
