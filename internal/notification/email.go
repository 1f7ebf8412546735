package notification

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/fastygo/tracker/domain"
)

// Message is a plain-text email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Mailer sends a single message.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// EmailSubscriber mails assignees and project invitees.
type EmailSubscriber struct {
	mailer Mailer
	logger *zap.Logger
}

func NewEmailSubscriber(mailer Mailer, logger *zap.Logger) *EmailSubscriber {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmailSubscriber{mailer: mailer, logger: logger}
}

func (s *EmailSubscriber) Receive(ctx context.Context, event domain.NotificationEvent) error {
	switch e := event.(type) {
	case domain.TaskAssigned:
		return s.notifyAssignees(ctx, e.Task)
	case domain.ProjectInvitation:
		return s.sendInvitations(ctx, e)
	default:
		return nil
	}
}

func (s *EmailSubscriber) notifyAssignees(ctx context.Context, task domain.AssignedTask) error {
	var errs []error
	for _, a := range task.Assignees {
		if a.Email == "" {
			continue
		}
		err := s.mailer.Send(ctx, Message{
			To:      a.Email,
			Subject: "New Task Assignment",
			Body:    fmt.Sprintf("You have been assigned to task: %s", task.Title),
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("mail %s: %w", a.Email, err))
		}
	}
	return errors.Join(errs...)
}

func (s *EmailSubscriber) sendInvitations(ctx context.Context, e domain.ProjectInvitation) error {
	s.logger.Debug("sending project invitations",
		zap.String("project_id", e.ProjectID),
		zap.Int("recipients", len(e.Emails)))

	var errs []error
	for _, email := range e.Emails {
		err := s.mailer.Send(ctx, Message{
			To:      email,
			Subject: "Project Invitation",
			Body:    "You have been invited to join a project",
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("mail %s: %w", email, err))
		}
	}
	return errors.Join(errs...)
}

var _ Subscriber = (*EmailSubscriber)(nil)
