package task

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fastygo/tracker/domain"
	"github.com/fastygo/tracker/repository"
	"github.com/fastygo/tracker/usecase"
)

// FileStore writes attachment bytes and returns the public path of the stored file.
type FileStore interface {
	Save(ctx context.Context, fileName, contentType string, data []byte) (string, error)
}

// Deps groups the collaborators of the task use case.
type Deps struct {
	Tasks       repository.TaskRepository
	Subtasks    repository.SubtaskRepository
	Comments    repository.CommentRepository
	Attachments repository.AttachmentRepository
	Projects    repository.ProjectRepository
	Users       repository.UserRepository
	Files       FileStore
	Resolver    *domain.StatusResolver
	Publisher   usecase.EventPublisher
	Buffer      usecase.OperationBuffer
}

type UseCase struct {
	tasks       repository.TaskRepository
	subtasks    repository.SubtaskRepository
	comments    repository.CommentRepository
	attachments repository.AttachmentRepository
	projects    repository.ProjectRepository
	users       repository.UserRepository
	files       FileStore
	resolver    *domain.StatusResolver
	publisher   usecase.EventPublisher
	buffer      usecase.OperationBuffer
	logger      *zap.Logger
	now         func() time.Time
}

func New(deps Deps, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	resolver := deps.Resolver
	if resolver == nil {
		resolver = domain.NewStatusResolver(nil)
	}
	return &UseCase{
		tasks:       deps.Tasks,
		subtasks:    deps.Subtasks,
		comments:    deps.Comments,
		attachments: deps.Attachments,
		projects:    deps.Projects,
		users:       deps.Users,
		files:       deps.Files,
		resolver:    resolver,
		publisher:   usecase.PublisherOrNoop(deps.Publisher),
		buffer:      deps.Buffer,
		logger:      logger,
		now:         time.Now,
	}
}

type CreateTaskInput struct {
	ProjectID   string
	Title       string
	Description string
	Deadline    *time.Time
	AssigneeIDs []string
}

type UpdateTaskInput struct {
	Title         *string
	Description   *string
	Deadline      *time.Time
	ClearDeadline bool
	Status        *domain.Status
}

func (uc *UseCase) ListTasks(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	return uc.tasks.List(ctx, filter)
}

func (uc *UseCase) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	return uc.tasks.GetByID(ctx, id)
}

// CreateTask stores a new pending task. Assignee ids that do not resolve to a user
// are skipped; task_assigned is published only when at least one assignee was attached.
func (uc *UseCase) CreateTask(ctx context.Context, in CreateTaskInput) (*domain.Task, error) {
	task := domain.NewTask(uuid.NewString(), in.ProjectID, in.Title, in.Description)
	if err := task.Validate(); err != nil {
		return nil, err
	}
	if _, err := uc.projects.GetByID(ctx, in.ProjectID); err != nil {
		return nil, err
	}
	if in.Deadline != nil {
		task.SetDeadline(*in.Deadline)
	}

	for _, id := range in.AssigneeIDs {
		user, err := uc.users.GetByID(ctx, strings.TrimSpace(id))
		if err != nil {
			if domain.IsDomainError(err, domain.ErrCodeNotFound) {
				uc.logger.Debug("skipping unknown assignee", zap.String("user_id", id))
				continue
			}
			return nil, err
		}
		task.AddAssignee(user.Ref())
	}

	if err := uc.tasks.Save(ctx, task); err != nil {
		return nil, err
	}

	assigned := make([]domain.UserRef, 0, len(task.Assignees))
	for _, a := range task.Assignees {
		if err := uc.tasks.AddAssignment(ctx, task.ID, a.ID); err != nil {
			uc.logger.Warn("failed to store assignment",
				zap.String("task_id", task.ID),
				zap.String("user_id", a.ID),
				zap.Error(err))
			continue
		}
		assigned = append(assigned, a)
	}
	task.Assignees = assigned

	if len(assigned) > 0 {
		uc.publisher.Publish(ctx, domain.TaskAssigned{Task: domain.AssignedTask{
			ID:        task.ID,
			Title:     task.Title,
			Assignees: assigned,
		}})
	}
	return task, nil
}

// UpdateProgress clamps value to [0,100], derives the status with the active policy,
// persists the task and publishes task_updated.
func (uc *UseCase) UpdateProgress(ctx context.Context, id string, value int) (*domain.Task, error) {
	task, err := uc.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	task.ApplyProgress(value, uc.resolver, uc.now())

	if err := uc.save(ctx, usecase.OperationUpdate, task); err != nil {
		return nil, err
	}
	uc.publishUpdated(ctx, task)
	return task, nil
}

// UpdateTask edits task fields. An explicit status overrides the progress-derived one.
func (uc *UseCase) UpdateTask(ctx context.Context, id string, in UpdateTaskInput) (*domain.Task, error) {
	task, err := uc.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		task.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		task.Description = *in.Description
	}
	switch {
	case in.ClearDeadline:
		task.Deadline = nil
	case in.Deadline != nil:
		task.SetDeadline(*in.Deadline)
	}
	if in.Status != nil {
		if err := task.ChangeStatus(*in.Status); err != nil {
			return nil, err
		}
	}
	if err := task.Validate(); err != nil {
		return nil, err
	}

	if err := uc.save(ctx, usecase.OperationUpdate, task); err != nil {
		return nil, err
	}
	uc.publishUpdated(ctx, task)
	return task, nil
}

func (uc *UseCase) DeleteTask(ctx context.Context, id string) error {
	if err := uc.tasks.Delete(ctx, id); err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return err
		}
		task := &domain.Task{ID: id}
		if uc.shouldBuffer(ctx, usecase.OperationDelete, task) {
			return nil
		}
		return err
	}
	return nil
}

// AssignUser attaches one existing user to the task and notifies them.
func (uc *UseCase) AssignUser(ctx context.Context, taskID, userID string) (*domain.Task, error) {
	task, err := uc.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !task.AddAssignee(user.Ref()) {
		return task, nil
	}
	if err := uc.tasks.AddAssignment(ctx, task.ID, user.ID); err != nil {
		return nil, err
	}
	uc.publisher.Publish(ctx, domain.TaskAssigned{Task: domain.AssignedTask{
		ID:        task.ID,
		Title:     task.Title,
		Assignees: []domain.UserRef{user.Ref()},
	}})
	return task, nil
}

func (uc *UseCase) UnassignUser(ctx context.Context, taskID, userID string) (*domain.Task, error) {
	task, err := uc.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !task.RemoveAssignee(userID) {
		return task, nil
	}
	if err := uc.tasks.RemoveAssignment(ctx, taskID, userID); err != nil {
		return nil, err
	}
	return task, nil
}

// StatusPolicy names the policy used for subsequent progress updates.
func (uc *UseCase) StatusPolicy() string {
	return uc.resolver.Policy().Name()
}

// SetStatusPolicy swaps the active policy. Existing task statuses are not recomputed.
func (uc *UseCase) SetStatusPolicy(name string) (string, error) {
	policy, ok := domain.LookupPolicy(name)
	if !ok {
		return "", domain.Invalidf("unknown status policy %q", name)
	}
	uc.resolver.SetPolicy(policy)
	uc.logger.Info("status policy changed", zap.String("policy", policy.Name()))
	return policy.Name(), nil
}

func (uc *UseCase) publishUpdated(ctx context.Context, task *domain.Task) {
	uc.publisher.Publish(ctx, domain.TaskUpdated{Task: domain.UpdatedTask{
		ID:       task.ID,
		Title:    task.Title,
		Progress: task.Progress,
		Status:   task.Status,
	}})
}

// save persists task, falling back to the offline buffer when the store is unavailable.
func (uc *UseCase) save(ctx context.Context, operation string, task *domain.Task) error {
	if err := uc.tasks.Save(ctx, task); err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) || domain.IsDomainError(err, domain.ErrCodeInvalid) {
			return err
		}
		if uc.shouldBuffer(ctx, operation, task) {
			return nil
		}
		return err
	}
	return nil
}

func (uc *UseCase) shouldBuffer(ctx context.Context, operation string, task *domain.Task) bool {
	if uc.buffer == nil {
		return false
	}
	if err := uc.buffer.BufferTask(ctx, operation, task); err != nil {
		uc.logger.Error("failed to buffer task operation", zap.String("operation", operation), zap.Error(err))
		return false
	}
	uc.logger.Warn("task operation buffered", zap.String("operation", operation), zap.String("task_id", task.ID))
	return true
}
