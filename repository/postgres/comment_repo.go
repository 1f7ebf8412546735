package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/tracker/domain"
	"github.com/fastygo/tracker/repository"
)

type commentRepository struct {
	pool *pgxpool.Pool
}

func NewCommentRepository(pool *pgxpool.Pool) repository.CommentRepository {
	return &commentRepository{pool: pool}
}

func (r *commentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	if comment == nil {
		return domain.ErrInvalidPayload
	}
	if comment.ID == "" {
		comment.ID = uuid.NewString()
	}
	const query = `
	INSERT INTO comments (id, task_id, user_id, content, created_at)
	VALUES ($1, $2, $3, $4, COALESCE($5, NOW()))
	RETURNING created_at
	`
	err := r.pool.QueryRow(ctx, query,
		comment.ID,
		comment.TaskID,
		comment.UserID,
		comment.Content,
		nullTime(comment.CreatedAt),
	).Scan(&comment.CreatedAt)
	return translate(err, domain.ErrTaskNotFound)
}

func (r *commentRepository) ListByTask(ctx context.Context, taskID string) ([]domain.Comment, error) {
	const query = `
	SELECT id, task_id, user_id, content, created_at
	FROM comments
	WHERE task_id = $1
	ORDER BY created_at, id
	`
	rows, err := r.pool.Query(ctx, query, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []domain.Comment
	for rows.Next() {
		var c domain.Comment
		if err := rows.Scan(&c.ID, &c.TaskID, &c.UserID, &c.Content, &c.CreatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

type attachmentRepository struct {
	pool *pgxpool.Pool
}

func NewAttachmentRepository(pool *pgxpool.Pool) repository.AttachmentRepository {
	return &attachmentRepository{pool: pool}
}

func (r *attachmentRepository) Create(ctx context.Context, a *domain.FileAttachment) error {
	if a == nil {
		return domain.ErrInvalidPayload
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	const query = `
	INSERT INTO attachments (id, task_id, user_id, file_name, content_type, size, path, uploaded_at)
	VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, COALESCE($8, NOW()))
	RETURNING uploaded_at
	`
	err := r.pool.QueryRow(ctx, query,
		a.ID,
		a.TaskID,
		a.UserID,
		a.FileName,
		a.ContentType,
		a.Size,
		a.Path,
		nullTime(a.UploadedAt),
	).Scan(&a.UploadedAt)
	return translate(err, domain.ErrTaskNotFound)
}

func (r *attachmentRepository) ListByTask(ctx context.Context, taskID string) ([]domain.FileAttachment, error) {
	const query = `
	SELECT id, task_id, COALESCE(user_id, ''), file_name, content_type, size, path, uploaded_at
	FROM attachments
	WHERE task_id = $1
	ORDER BY uploaded_at, id
	`
	rows, err := r.pool.Query(ctx, query, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.FileAttachment
	for rows.Next() {
		var a domain.FileAttachment
		if err := rows.Scan(&a.ID, &a.TaskID, &a.UserID, &a.FileName, &a.ContentType, &a.Size, &a.Path, &a.UploadedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
