package notification

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/tracker/domain"
	"github.com/fastygo/tracker/repository/memory"
)

type fakeMailer struct {
	sent    []Message
	failFor string
}

func (m *fakeMailer) Send(_ context.Context, msg Message) error {
	if msg.To == m.failFor {
		return errors.New("mailbox unavailable")
	}
	m.sent = append(m.sent, msg)
	return nil
}

func TestEmailSubscriberMailsAssignees(t *testing.T) {
	mailer := &fakeMailer{}
	s := NewEmailSubscriber(mailer, nil)

	err := s.Receive(context.Background(), domain.TaskAssigned{Task: domain.AssignedTask{
		ID:    "t1",
		Title: "Ship release",
		Assignees: []domain.UserRef{
			{ID: "u1", Email: "a@x.com", Name: "A"},
			{ID: "u2", Email: "b@x.com", Name: "B"},
		},
	}})

	require.NoError(t, err)
	require.Len(t, mailer.sent, 2)
	assert.Equal(t, "a@x.com", mailer.sent[0].To)
	assert.Equal(t, "New Task Assignment", mailer.sent[0].Subject)
	assert.Contains(t, mailer.sent[0].Body, "Ship release")
}

func TestEmailSubscriberSendsInvitations(t *testing.T) {
	mailer := &fakeMailer{failFor: "b@x.com"}
	s := NewEmailSubscriber(mailer, nil)

	err := s.Receive(context.Background(), domain.ProjectInvitation{
		Emails:    []string{"a@x.com", "b@x.com", "c@x.com"},
		ProjectID: "p1",
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "b@x.com")
	require.Len(t, mailer.sent, 2)
	assert.Equal(t, "Project Invitation", mailer.sent[1].Subject)
	assert.Equal(t, "c@x.com", mailer.sent[1].To)
}

func TestEmailSubscriberIgnoresOtherEvents(t *testing.T) {
	mailer := &fakeMailer{}
	s := NewEmailSubscriber(mailer, nil)

	require.NoError(t, s.Receive(context.Background(), updatedEvent()))
	require.NoError(t, s.Receive(context.Background(), domain.CommentAdded{Comment: domain.Comment{ID: "c1"}}))
	assert.Empty(t, mailer.sent)
}

func seedTask(t *testing.T, store *memory.Store, assignees ...string) {
	t.Helper()
	ctx := context.Background()
	for _, id := range assignees {
		require.NoError(t, store.Users().Upsert(ctx, &domain.User{ID: id, Email: id + "@x.com", Name: id}))
	}
	require.NoError(t, store.Projects().Save(ctx, &domain.Project{ID: "p1", Name: "Tracker"}))
	require.NoError(t, store.Tasks().Save(ctx, domain.NewTask("t1", "p1", "Write docs", "")))
	for _, id := range assignees {
		require.NoError(t, store.Tasks().AddAssignment(ctx, "t1", id))
	}
}

func TestInAppSubscriberStoresAssignmentNotifications(t *testing.T) {
	store := memory.NewStore()
	seedTask(t, store, "u1", "u2")
	s := NewInAppSubscriber(store.Notifications(), store.Tasks(), nil)
	ctx := context.Background()

	err := s.Receive(ctx, domain.TaskAssigned{Task: domain.AssignedTask{
		ID:        "t1",
		Title:     "Write docs",
		Assignees: []domain.UserRef{{ID: "u1"}, {ID: "u2"}},
	}})
	require.NoError(t, err)

	for _, id := range []string{"u1", "u2"} {
		inbox, err := store.Notifications().List(ctx, id, 10)
		require.NoError(t, err)
		require.Len(t, inbox, 1)
		assert.Equal(t, domain.EventTaskAssigned, inbox[0].Type)
		assert.Equal(t, "t1", inbox[0].TaskID)
		assert.Equal(t, "You have been assigned to: Write docs", inbox[0].Message)
	}
}

func TestInAppSubscriberNotifiesAssigneesOnUpdateAndComment(t *testing.T) {
	store := memory.NewStore()
	seedTask(t, store, "u1", "u2")
	s := NewInAppSubscriber(store.Notifications(), store.Tasks(), nil)
	ctx := context.Background()

	require.NoError(t, s.Receive(ctx, updatedEvent()))
	require.NoError(t, s.Receive(ctx, domain.CommentAdded{Comment: domain.Comment{ID: "c1", TaskID: "t1", UserID: "u1", Content: "done?"}}))

	u1, err := store.Notifications().List(ctx, "u1", 0)
	require.NoError(t, err)
	require.Len(t, u1, 1)
	assert.Equal(t, domain.EventTaskUpdated, u1[0].Type)
	assert.Equal(t, "Write docs is now In Progress (40%)", u1[0].Message)

	u2, err := store.Notifications().List(ctx, "u2", 0)
	require.NoError(t, err)
	require.Len(t, u2, 2)
	assert.Equal(t, domain.EventCommentAdded, u2[0].Type)
}

func TestInAppSubscriberIgnoresInvitations(t *testing.T) {
	store := memory.NewStore()
	s := NewInAppSubscriber(store.Notifications(), store.Tasks(), nil)

	require.NoError(t, s.Receive(context.Background(), domain.ProjectInvitation{Emails: []string{"a@x.com"}, ProjectID: "p1"}))
}

func TestInAppSubscriberUnknownTask(t *testing.T) {
	store := memory.NewStore()
	s := NewInAppSubscriber(store.Notifications(), store.Tasks(), nil)

	err := s.Receive(context.Background(), updatedEvent())
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeNotFound))
}
