package project

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fastygo/tracker/domain"
	"github.com/fastygo/tracker/repository"
	"github.com/fastygo/tracker/usecase"
)

type UseCase struct {
	projects  repository.ProjectRepository
	users     repository.UserRepository
	publisher usecase.EventPublisher
	buffer    usecase.OperationBuffer
	logger    *zap.Logger
}

func New(
	projects repository.ProjectRepository,
	users repository.UserRepository,
	publisher usecase.EventPublisher,
	buffer usecase.OperationBuffer,
	logger *zap.Logger,
) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		projects:  projects,
		users:     users,
		publisher: usecase.PublisherOrNoop(publisher),
		buffer:    buffer,
		logger:    logger,
	}
}

type CreateProjectInput struct {
	Name         string
	Description  string
	CreatorID    string
	MemberEmails []string
}

type UpdateProjectInput struct {
	Name        *string
	Description *string
}

// CreateProject stores the project with its creator as first member, then invites MemberEmails.
func (uc *UseCase) CreateProject(ctx context.Context, in CreateProjectInput) (*domain.Project, error) {
	project := &domain.Project{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		CreatorID:   in.CreatorID,
	}
	if err := project.Validate(); err != nil {
		return nil, err
	}

	creator, err := uc.users.GetByID(ctx, in.CreatorID)
	if err != nil {
		return nil, err
	}

	if err := uc.projects.Save(ctx, project); err != nil {
		return nil, err
	}
	if err := uc.projects.AddMember(ctx, project.ID, creator.ID); err != nil {
		return nil, err
	}
	project.AddMember(creator.Ref())

	if len(in.MemberEmails) > 0 {
		if _, err := uc.InviteMembers(ctx, project.ID, in.MemberEmails); err != nil {
			return nil, err
		}
		return uc.projects.GetByID(ctx, project.ID)
	}
	return project, nil
}

// InviteMembers adds every email that belongs to a known user to the project and
// publishes one project_invitation listing only those emails. Unknown emails are
// dropped; nothing is published when none resolve.
func (uc *UseCase) InviteMembers(ctx context.Context, projectID string, emails []string) ([]string, error) {
	if _, err := uc.projects.GetByID(ctx, projectID); err != nil {
		return nil, err
	}

	invited := make([]string, 0, len(emails))
	seen := make(map[string]struct{}, len(emails))
	for _, raw := range emails {
		email := strings.TrimSpace(raw)
		key := strings.ToLower(email)
		if email == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		if uc.addMemberByEmail(ctx, projectID, email) {
			invited = append(invited, email)
		}
	}

	if len(invited) > 0 {
		uc.publisher.Publish(ctx, domain.ProjectInvitation{
			Emails:    invited,
			ProjectID: projectID,
		})
	}
	return invited, nil
}

func (uc *UseCase) addMemberByEmail(ctx context.Context, projectID, email string) bool {
	log := uc.logger.With(zap.String("project_id", projectID), zap.String("email", email))

	exists, err := uc.users.Exists(ctx, email)
	if err != nil {
		log.Warn("user lookup failed", zap.Error(err))
		return false
	}
	if !exists {
		log.Debug("skipping unknown invitee")
		return false
	}
	user, err := uc.users.GetByEmail(ctx, email)
	if err != nil {
		log.Warn("user lookup failed", zap.Error(err))
		return false
	}
	if err := uc.projects.AddMember(ctx, projectID, user.ID); err != nil {
		log.Warn("failed to add project member", zap.Error(err))
		return false
	}
	return true
}

func (uc *UseCase) GetProject(ctx context.Context, id string) (*domain.Project, error) {
	return uc.projects.GetByID(ctx, id)
}

func (uc *UseCase) ListProjects(ctx context.Context, filter repository.ProjectFilter) ([]domain.Project, error) {
	return uc.projects.List(ctx, filter)
}

func (uc *UseCase) UpdateProject(ctx context.Context, id string, in UpdateProjectInput) (*domain.Project, error) {
	project, err := uc.projects.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		project.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		project.Description = *in.Description
	}
	if err := project.Validate(); err != nil {
		return nil, err
	}

	if err := uc.projects.Save(ctx, project); err != nil {
		if uc.shouldBuffer(ctx, usecase.OperationUpdate, project) {
			return project, nil
		}
		return nil, err
	}
	return project, nil
}

func (uc *UseCase) DeleteProject(ctx context.Context, id string) error {
	if err := uc.projects.Delete(ctx, id); err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return err
		}
		if uc.shouldBuffer(ctx, usecase.OperationDelete, &domain.Project{ID: id}) {
			return nil
		}
		return err
	}
	return nil
}

func (uc *UseCase) RemoveMember(ctx context.Context, projectID, userID string) (*domain.Project, error) {
	project, err := uc.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !project.RemoveMember(userID) {
		return project, nil
	}
	if err := uc.projects.RemoveMember(ctx, projectID, userID); err != nil {
		return nil, err
	}
	return project, nil
}

func (uc *UseCase) shouldBuffer(ctx context.Context, operation string, project *domain.Project) bool {
	if uc.buffer == nil {
		return false
	}
	if err := uc.buffer.BufferProject(ctx, operation, project); err != nil {
		uc.logger.Error("failed to buffer project operation", zap.String("operation", operation), zap.Error(err))
		return false
	}
	uc.logger.Warn("project operation buffered", zap.String("operation", operation), zap.String("project_id", project.ID))
	return true
}
