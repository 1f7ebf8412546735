package task

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fastygo/tracker/domain"
)

// AddComment stores a comment from an existing user and publishes comment_added.
func (uc *UseCase) AddComment(ctx context.Context, taskID, userID, content string) (*domain.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, domain.NewError(domain.ErrCodeInvalid, "comment content is required")
	}
	if _, err := uc.tasks.GetByID(ctx, taskID); err != nil {
		return nil, err
	}
	if _, err := uc.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	comment := &domain.Comment{
		ID:        uuid.NewString(),
		TaskID:    taskID,
		UserID:    userID,
		Content:   content,
		CreatedAt: uc.now().UTC(),
	}
	if err := uc.comments.Create(ctx, comment); err != nil {
		return nil, err
	}

	uc.publisher.Publish(ctx, domain.CommentAdded{Comment: *comment})
	return comment, nil
}

func (uc *UseCase) ListComments(ctx context.Context, taskID string) ([]domain.Comment, error) {
	return uc.comments.ListByTask(ctx, taskID)
}

type AttachFileInput struct {
	TaskID      string
	UserID      string
	FileName    string
	ContentType string
	Data        []byte
}

// AttachFile writes the file through the FileStore and records its metadata.
func (uc *UseCase) AttachFile(ctx context.Context, in AttachFileInput) (*domain.FileAttachment, error) {
	if strings.TrimSpace(in.FileName) == "" || len(in.Data) == 0 {
		return nil, domain.NewError(domain.ErrCodeInvalid, "file name and content are required")
	}
	if uc.files == nil {
		return nil, domain.NewError(domain.ErrCodeInternal, "file storage not configured")
	}
	if _, err := uc.tasks.GetByID(ctx, in.TaskID); err != nil {
		return nil, err
	}

	path, err := uc.files.Save(ctx, in.FileName, in.ContentType, in.Data)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "store file", err)
	}

	attachment := &domain.FileAttachment{
		ID:          uuid.NewString(),
		TaskID:      in.TaskID,
		UserID:      in.UserID,
		FileName:    in.FileName,
		ContentType: in.ContentType,
		Size:        int64(len(in.Data)),
		Path:        path,
		UploadedAt:  uc.now().UTC(),
	}
	if err := uc.attachments.Create(ctx, attachment); err != nil {
		return nil, err
	}
	uc.logger.Info("file attached",
		zap.String("task_id", in.TaskID),
		zap.String("path", path),
		zap.Int64("size", attachment.Size))
	return attachment, nil
}

func (uc *UseCase) ListAttachments(ctx context.Context, taskID string) ([]domain.FileAttachment, error) {
	return uc.attachments.ListByTask(ctx, taskID)
}
