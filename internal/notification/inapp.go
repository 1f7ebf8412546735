package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/tracker/domain"
	"github.com/fastygo/tracker/repository"
)

// InAppSubscriber turns events into inbox entries for the users they concern.
// Project invitations are left to email.
type InAppSubscriber struct {
	inbox  repository.NotificationRepository
	tasks  repository.TaskRepository
	logger *zap.Logger
	now    func() time.Time
}

func NewInAppSubscriber(inbox repository.NotificationRepository, tasks repository.TaskRepository, logger *zap.Logger) *InAppSubscriber {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InAppSubscriber{
		inbox:  inbox,
		tasks:  tasks,
		logger: logger,
		now:    time.Now,
	}
}

func (s *InAppSubscriber) Receive(ctx context.Context, event domain.NotificationEvent) error {
	switch e := event.(type) {
	case domain.TaskAssigned:
		msg := fmt.Sprintf("You have been assigned to: %s", e.Task.Title)
		return s.fanOut(ctx, e.Type(), e.Task.ID, userIDs(e.Task.Assignees), msg)
	case domain.TaskUpdated:
		recipients, err := s.assigneesOf(ctx, e.Task.ID)
		if err != nil {
			return err
		}
		msg := fmt.Sprintf("%s is now %s (%d%%)", e.Task.Title, e.Task.Status, e.Task.Progress)
		return s.fanOut(ctx, e.Type(), e.Task.ID, recipients, msg)
	case domain.CommentAdded:
		recipients, err := s.assigneesOf(ctx, e.Comment.TaskID)
		if err != nil {
			return err
		}
		// the author does not need to hear about their own comment
		recipients = without(recipients, e.Comment.UserID)
		return s.fanOut(ctx, e.Type(), e.Comment.TaskID, recipients, "New comment: "+e.Comment.Content)
	default:
		return nil
	}
}

func (s *InAppSubscriber) fanOut(ctx context.Context, eventType domain.EventType, taskID string, recipients []string, message string) error {
	var errs []error
	for _, userID := range recipients {
		n := &domain.Notification{
			UserID:    userID,
			Type:      eventType,
			TaskID:    taskID,
			Message:   message,
			CreatedAt: s.now().UTC(),
		}
		if err := s.inbox.Push(ctx, n); err != nil {
			errs = append(errs, fmt.Errorf("push notification for %s: %w", userID, err))
		}
	}
	if len(recipients) > 0 {
		s.logger.Debug("in-app notifications stored",
			zap.String("event", string(eventType)),
			zap.String("task_id", taskID),
			zap.Int("recipients", len(recipients)))
	}
	return errors.Join(errs...)
}

func (s *InAppSubscriber) assigneesOf(ctx context.Context, taskID string) ([]string, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	return userIDs(task.Assignees), nil
}

func userIDs(refs []domain.UserRef) []string {
	ids := make([]string, 0, len(refs))
	for _, r := range refs {
		ids = append(ids, r.ID)
	}
	return ids
}

func without(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

var _ Subscriber = (*InAppSubscriber)(nil)
