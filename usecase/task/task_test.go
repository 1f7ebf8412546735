package task

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/tracker/domain"
	"github.com/fastygo/tracker/repository"
	"github.com/fastygo/tracker/repository/memory"
)

type recordingPublisher struct {
	events []domain.NotificationEvent
}

func (p *recordingPublisher) Publish(_ context.Context, event domain.NotificationEvent) {
	p.events = append(p.events, event)
}

type recordingBuffer struct {
	tasks []string
	err   error
}

func (b *recordingBuffer) BufferTask(_ context.Context, operation string, task *domain.Task) error {
	if b.err != nil {
		return b.err
	}
	b.tasks = append(b.tasks, operation+":"+task.ID)
	return nil
}

func (b *recordingBuffer) BufferProject(context.Context, string, *domain.Project) error {
	return nil
}

type memFiles struct {
	saved map[string][]byte
}

func (f *memFiles) Save(_ context.Context, fileName, _ string, data []byte) (string, error) {
	if f.saved == nil {
		f.saved = make(map[string][]byte)
	}
	f.saved[fileName] = data
	return "/uploads/" + fileName, nil
}

type fixture struct {
	store *memory.Store
	pub   *recordingPublisher
	uc    *UseCase
	now   time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	pub := &recordingPublisher{}
	uc := New(Deps{
		Tasks:       store.Tasks(),
		Subtasks:    store.Subtasks(),
		Comments:    store.Comments(),
		Attachments: store.Attachments(),
		Projects:    store.Projects(),
		Users:       store.Users(),
		Files:       &memFiles{},
		Publisher:   pub,
	}, nil)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	uc.now = func() time.Time { return now }

	ctx := context.Background()
	require.NoError(t, store.Projects().Save(ctx, &domain.Project{ID: "p1", Name: "Tracker"}))
	for _, id := range []string{"u1", "u2"} {
		require.NoError(t, store.Users().Upsert(ctx, &domain.User{ID: id, Email: id + "@x.com", Name: id}))
	}
	return &fixture{store: store, pub: pub, uc: uc, now: now}
}

func (f *fixture) createTask(t *testing.T, assignees ...string) *domain.Task {
	t.Helper()
	task, err := f.uc.CreateTask(context.Background(), CreateTaskInput{
		ProjectID:   "p1",
		Title:       "Write docs",
		AssigneeIDs: assignees,
	})
	require.NoError(t, err)
	f.pub.events = nil
	return task
}

func TestCreateTaskPublishesAssignment(t *testing.T) {
	f := newFixture(t)

	task, err := f.uc.CreateTask(context.Background(), CreateTaskInput{
		ProjectID:   "p1",
		Title:       "  Write docs ",
		AssigneeIDs: []string{"u1", "ghost", "u2"},
	})
	require.NoError(t, err)

	assert.Equal(t, "Write docs", task.Title)
	assert.Equal(t, domain.StatusPending, task.Status)
	assert.Zero(t, task.Progress)
	require.Len(t, task.Assignees, 2)

	require.Len(t, f.pub.events, 1)
	assigned, ok := f.pub.events[0].(domain.TaskAssigned)
	require.True(t, ok)
	assert.Equal(t, task.ID, assigned.Task.ID)
	assert.Equal(t, "u1@x.com", assigned.Task.Assignees[0].Email)

	stored, err := f.store.Tasks().GetByID(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Assignees, 2)
}

func TestCreateTaskWithoutAssigneesPublishesNothing(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.CreateTask(context.Background(), CreateTaskInput{ProjectID: "p1", Title: "Solo"})
	require.NoError(t, err)
	assert.Empty(t, f.pub.events)
}

func TestCreateTaskValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.uc.CreateTask(ctx, CreateTaskInput{ProjectID: "p1", Title: " "})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	_, err = f.uc.CreateTask(ctx, CreateTaskInput{ProjectID: "missing", Title: "x"})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeNotFound))
}

func TestUpdateProgressClampsAndCompletes(t *testing.T) {
	f := newFixture(t)
	task := f.createTask(t, "u1")

	updated, err := f.uc.UpdateProgress(context.Background(), task.ID, 150)
	require.NoError(t, err)

	assert.Equal(t, 100, updated.Progress)
	assert.Equal(t, domain.StatusCompleted, updated.Status)

	require.Len(t, f.pub.events, 1)
	event, ok := f.pub.events[0].(domain.TaskUpdated)
	require.True(t, ok)
	assert.Equal(t, 100, event.Task.Progress)
	assert.Equal(t, domain.StatusCompleted, event.Task.Status)

	stored, err := f.store.Tasks().GetByID(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, stored.Progress)
}

func TestUpdateProgressUsesActivePolicy(t *testing.T) {
	f := newFixture(t)
	task := f.createTask(t)

	f.uc.resolver.SetPolicy(domain.AggressivePolicy{})
	updated, err := f.uc.UpdateProgress(context.Background(), task.ID, 89)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, updated.Status)
	updated, err = f.uc.UpdateProgress(context.Background(), task.ID, 90)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, updated.Status)
	assert.Equal(t, 90, updated.Progress)
	require.Len(t, f.pub.events, 2)
	assert.Equal(t, domain.StatusCompleted, f.pub.events[1].(domain.TaskUpdated).Task.Status)

	f.uc.resolver.SetPolicy(domain.DeadlineAwarePolicy{})
	_, err = f.uc.UpdateTask(context.Background(), task.ID, UpdateTaskInput{Deadline: ptr(f.now.Add(-time.Hour))})
	require.NoError(t, err)
	updated, err = f.uc.UpdateProgress(context.Background(), task.ID, 30)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusOverdue, updated.Status)
}

func TestSetStatusPolicy(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, domain.PolicyDefault, f.uc.StatusPolicy())

	name, err := f.uc.SetStatusPolicy("Conservative")
	require.NoError(t, err)
	assert.Equal(t, domain.PolicyConservative, name)
	assert.Equal(t, domain.PolicyConservative, f.uc.StatusPolicy())

	_, err = f.uc.SetStatusPolicy("optimistic")
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
	assert.Equal(t, domain.PolicyConservative, f.uc.StatusPolicy())
}

func TestUpdateProgressUnknownTask(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.UpdateProgress(context.Background(), "missing", 10)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeNotFound))
	assert.Empty(t, f.pub.events)
}

func TestUpdateTaskOverridesStatus(t *testing.T) {
	f := newFixture(t)
	task := f.createTask(t)

	status := domain.StatusCompleted
	updated, err := f.uc.UpdateTask(context.Background(), task.ID, UpdateTaskInput{
		Title:  ptr("Rewrite docs"),
		Status: &status,
	})
	require.NoError(t, err)
	assert.Equal(t, "Rewrite docs", updated.Title)
	assert.Equal(t, domain.StatusCompleted, updated.Status)
	assert.Len(t, f.pub.events, 1)

	bad := domain.Status("Archived")
	_, err = f.uc.UpdateTask(context.Background(), task.ID, UpdateTaskInput{Status: &bad})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
}

func TestAssignAndUnassign(t *testing.T) {
	f := newFixture(t)
	task := f.createTask(t, "u1")
	ctx := context.Background()

	updated, err := f.uc.AssignUser(ctx, task.ID, "u2")
	require.NoError(t, err)
	assert.True(t, updated.HasAssignee("u2"))
	require.Len(t, f.pub.events, 1)
	assigned := f.pub.events[0].(domain.TaskAssigned)
	require.Len(t, assigned.Task.Assignees, 1)
	assert.Equal(t, "u2", assigned.Task.Assignees[0].ID)

	_, err = f.uc.AssignUser(ctx, task.ID, "u2")
	require.NoError(t, err)
	assert.Len(t, f.pub.events, 1)

	_, err = f.uc.AssignUser(ctx, task.ID, "ghost")
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeNotFound))

	updated, err = f.uc.UnassignUser(ctx, task.ID, "u1")
	require.NoError(t, err)
	assert.False(t, updated.HasAssignee("u1"))

	stored, err := f.store.Tasks().GetByID(ctx, task.ID)
	require.NoError(t, err)
	require.Len(t, stored.Assignees, 1)
	assert.Equal(t, "u2", stored.Assignees[0].ID)
}

func TestDeleteTask(t *testing.T) {
	f := newFixture(t)
	task := f.createTask(t)
	ctx := context.Background()

	require.NoError(t, f.uc.DeleteTask(ctx, task.ID))
	_, err := f.uc.GetTask(ctx, task.ID)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeNotFound))

	err = f.uc.DeleteTask(ctx, task.ID)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeNotFound))
}

type unavailableTasks struct {
	*memory.TaskRepository
}

func (unavailableTasks) Save(context.Context, *domain.Task) error {
	return errors.New("connection refused")
}

func TestUpdateProgressBuffersWhenStoreUnavailable(t *testing.T) {
	f := newFixture(t)
	task := f.createTask(t)
	buffer := &recordingBuffer{}
	f.uc.tasks = unavailableTasks{f.store.Tasks()}
	f.uc.buffer = buffer

	updated, err := f.uc.UpdateProgress(context.Background(), task.ID, 50)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, updated.Status)
	assert.Equal(t, []string{"update:" + task.ID}, buffer.tasks)
	assert.Len(t, f.pub.events, 1)

	buffer.err = errors.New("disk full")
	_, err = f.uc.UpdateProgress(context.Background(), task.ID, 60)
	assert.EqualError(t, err, "connection refused")
}

func TestListTasksFilters(t *testing.T) {
	f := newFixture(t)
	f.createTask(t, "u1")
	f.createTask(t, "u2")

	tasks, err := f.uc.ListTasks(context.Background(), repository.TaskFilter{ProjectID: "p1", AssigneeID: "u2"})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "u2", tasks[0].Assignees[0].ID)
}

func ptr[T any](v T) *T { return &v }
