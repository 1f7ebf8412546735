package project

import (
	"context"
	"errors"
	"testing"

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

func setup(t *testing.T) (*UseCase, *memory.Store, *recordingPublisher) {
	t.Helper()
	store := memory.NewStore()
	pub := &recordingPublisher{}
	ctx := context.Background()
	require.NoError(t, store.Users().Upsert(ctx, &domain.User{ID: "owner", Email: "owner@x.com", Name: "Owner"}))
	require.NoError(t, store.Users().Upsert(ctx, &domain.User{ID: "a", Email: "a@x.com", Name: "A"}))
	require.NoError(t, store.Users().Upsert(ctx, &domain.User{ID: "b", Email: "b@x.com", Name: "B"}))
	return New(store.Projects(), store.Users(), pub, nil, nil), store, pub
}

func TestCreateProjectAddsCreator(t *testing.T) {
	uc, _, pub := setup(t)

	project, err := uc.CreateProject(context.Background(), CreateProjectInput{Name: " Tracker ", CreatorID: "owner"})
	require.NoError(t, err)

	assert.Equal(t, "Tracker", project.Name)
	require.Len(t, project.Members, 1)
	assert.Equal(t, "owner", project.Members[0].ID)
	assert.Empty(t, pub.events)
}

func TestCreateProjectInvitesInitialMembers(t *testing.T) {
	uc, _, pub := setup(t)

	project, err := uc.CreateProject(context.Background(), CreateProjectInput{
		Name:         "Tracker",
		CreatorID:    "owner",
		MemberEmails: []string{"b@x.com", "nobody@x.com"},
	})
	require.NoError(t, err)

	assert.True(t, project.HasMember("owner"))
	assert.True(t, project.HasMember("b"))
	assert.Len(t, project.Members, 2)
	require.Len(t, pub.events, 1)
	assert.Equal(t, []string{"b@x.com"}, pub.events[0].(domain.ProjectInvitation).Emails)
}

func TestCreateProjectValidation(t *testing.T) {
	uc, _, _ := setup(t)
	ctx := context.Background()

	_, err := uc.CreateProject(ctx, CreateProjectInput{Name: "", CreatorID: "owner"})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	_, err = uc.CreateProject(ctx, CreateProjectInput{Name: "X", CreatorID: "ghost"})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeNotFound))
}

func TestInviteMembersSkipsUnknownEmails(t *testing.T) {
	uc, store, pub := setup(t)
	ctx := context.Background()
	project, err := uc.CreateProject(ctx, CreateProjectInput{Name: "Tracker", CreatorID: "owner"})
	require.NoError(t, err)

	invited, err := uc.InviteMembers(ctx, project.ID, []string{"a@x.com", "bogus@x.com"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a@x.com"}, invited)

	stored, err := store.Projects().GetByID(ctx, project.ID)
	require.NoError(t, err)
	assert.True(t, stored.HasMember("a"))
	assert.Len(t, stored.Members, 2)

	require.Len(t, pub.events, 1)
	event, ok := pub.events[0].(domain.ProjectInvitation)
	require.True(t, ok)
	assert.Equal(t, []string{"a@x.com"}, event.Emails)
	assert.Equal(t, project.ID, event.ProjectID)
}

func TestInviteMembersDeduplicates(t *testing.T) {
	uc, _, pub := setup(t)
	ctx := context.Background()
	project, err := uc.CreateProject(ctx, CreateProjectInput{Name: "Tracker", CreatorID: "owner"})
	require.NoError(t, err)

	invited, err := uc.InviteMembers(ctx, project.ID, []string{"a@x.com", "A@x.com ", "", "b@x.com"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a@x.com", "b@x.com"}, invited)
	assert.Len(t, pub.events, 1)
}

func TestInviteMembersNoneResolved(t *testing.T) {
	uc, _, pub := setup(t)
	ctx := context.Background()
	project, err := uc.CreateProject(ctx, CreateProjectInput{Name: "Tracker", CreatorID: "owner"})
	require.NoError(t, err)

	invited, err := uc.InviteMembers(ctx, project.ID, []string{"bogus@x.com"})
	require.NoError(t, err)
	assert.Empty(t, invited)
	assert.Empty(t, pub.events)
}

func TestInviteMembersUnknownProject(t *testing.T) {
	uc, _, pub := setup(t)

	_, err := uc.InviteMembers(context.Background(), "missing", []string{"a@x.com"})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeNotFound))
	assert.Empty(t, pub.events)
}

func TestUpdateListRemoveDelete(t *testing.T) {
	uc, _, _ := setup(t)
	ctx := context.Background()
	project, err := uc.CreateProject(ctx, CreateProjectInput{Name: "Tracker", CreatorID: "owner", MemberEmails: []string{"a@x.com"}})
	require.NoError(t, err)

	name := "Tracker v2"
	updated, err := uc.UpdateProject(ctx, project.ID, UpdateProjectInput{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, name, updated.Name)

	empty := " "
	_, err = uc.UpdateProject(ctx, project.ID, UpdateProjectInput{Name: &empty})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	list, err := uc.ListProjects(ctx, repository.ProjectFilter{MemberID: "a"})
	require.NoError(t, err)
	require.Len(t, list, 1)

	updated, err = uc.RemoveMember(ctx, project.ID, "a")
	require.NoError(t, err)
	assert.False(t, updated.HasMember("a"))

	list, err = uc.ListProjects(ctx, repository.ProjectFilter{MemberID: "a"})
	require.NoError(t, err)
	assert.Empty(t, list)

	require.NoError(t, uc.DeleteProject(ctx, project.ID))
	_, err = uc.GetProject(ctx, project.ID)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeNotFound))
}

type unavailableProjects struct {
	*memory.ProjectRepository
}

func (unavailableProjects) Delete(context.Context, string) error {
	return errors.New("connection refused")
}

type recordingBuffer struct {
	ops []string
}

func (b *recordingBuffer) BufferTask(context.Context, string, *domain.Task) error { return nil }

func (b *recordingBuffer) BufferProject(_ context.Context, operation string, project *domain.Project) error {
	b.ops = append(b.ops, operation+":"+project.ID)
	return nil
}

func TestDeleteProjectBuffersWhenStoreUnavailable(t *testing.T) {
	store := memory.NewStore()
	buffer := &recordingBuffer{}
	uc := New(unavailableProjects{store.Projects()}, store.Users(), nil, buffer, nil)

	require.NoError(t, uc.DeleteProject(context.Background(), "p1"))
	assert.Equal(t, []string{"delete:p1"}, buffer.ops)
}
