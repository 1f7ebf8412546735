package task

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/tracker/domain"
)

func TestAddCommentPublishesEvent(t *testing.T) {
	f := newFixture(t)
	task := f.createTask(t, "u1")
	ctx := context.Background()

	comment, err := f.uc.AddComment(ctx, task.ID, "u2", " looks good ")
	require.NoError(t, err)
	assert.Equal(t, "looks good", comment.Content)
	assert.Equal(t, f.now, comment.CreatedAt)

	require.Len(t, f.pub.events, 1)
	added, ok := f.pub.events[0].(domain.CommentAdded)
	require.True(t, ok)
	assert.Equal(t, comment.ID, added.Comment.ID)

	comments, err := f.uc.ListComments(ctx, task.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
}

func TestAddCommentRejectsBadInput(t *testing.T) {
	f := newFixture(t)
	task := f.createTask(t)
	ctx := context.Background()

	_, err := f.uc.AddComment(ctx, task.ID, "u1", "   ")
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	_, err = f.uc.AddComment(ctx, "missing", "u1", "hi")
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeNotFound))

	_, err = f.uc.AddComment(ctx, task.ID, "ghost", "hi")
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeNotFound))
	assert.Empty(t, f.pub.events)
}

func TestAttachFile(t *testing.T) {
	f := newFixture(t)
	task := f.createTask(t)
	ctx := context.Background()

	attachment, err := f.uc.AttachFile(ctx, AttachFileInput{
		TaskID:      task.ID,
		UserID:      "u1",
		FileName:    "spec.pdf",
		ContentType: "application/pdf",
		Data:        []byte("%PDF-1.4"),
	})
	require.NoError(t, err)
	assert.Equal(t, "/uploads/spec.pdf", attachment.Path)
	assert.Equal(t, int64(8), attachment.Size)

	list, err := f.uc.ListAttachments(ctx, task.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, attachment.ID, list[0].ID)

	_, err = f.uc.AttachFile(ctx, AttachFileInput{TaskID: task.ID, FileName: "empty.txt"})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	f.uc.files = nil
	_, err = f.uc.AttachFile(ctx, AttachFileInput{TaskID: task.ID, FileName: "a.txt", Data: []byte("a")})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInternal))
}

func TestSubtaskLifecycle(t *testing.T) {
	f := newFixture(t)
	task := f.createTask(t)
	ctx := context.Background()

	_, err := f.uc.AddSubtask(ctx, task.ID, "  ")
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	_, err = f.uc.AddSubtask(ctx, "missing", "Outline")
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeNotFound))

	sub, err := f.uc.AddSubtask(ctx, task.ID, "Outline")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, sub.Status)

	sub, err = f.uc.UpdateSubtaskProgress(ctx, sub.ID, -20)
	require.NoError(t, err)
	assert.Zero(t, sub.Progress)
	assert.Equal(t, domain.StatusPending, sub.Status)

	sub, err = f.uc.CompleteSubtask(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, sub.Progress)
	assert.Equal(t, domain.StatusCompleted, sub.Status)

	list, err := f.uc.ListSubtasks(ctx, task.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, f.uc.DeleteSubtask(ctx, sub.ID))
	list, err = f.uc.ListSubtasks(ctx, task.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}
