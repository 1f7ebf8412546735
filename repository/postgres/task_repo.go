package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/tracker/domain"
	"github.com/fastygo/tracker/repository"
)

type taskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository returns a Postgres-backed implementation of TaskRepository.
func NewTaskRepository(pool *pgxpool.Pool) repository.TaskRepository {
	return &taskRepository{pool: pool}
}

const (
	taskColumns = `id, project_id, title, description, deadline, progress, status, created_at, updated_at`

	assigneesQuery = `
	SELECT a.task_id, u.id, u.email, u.name
	FROM task_assignees a
	JOIN users u ON u.id = a.user_id
	WHERE a.task_id = ANY($1)
	ORDER BY a.assigned_at, u.id
	`
)

func (r *taskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	task, err := scanTask(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}

	refs, err := loadRefs(ctx, r.pool, assigneesQuery, []string{task.ID})
	if err != nil {
		return nil, err
	}
	task.Assignees = nonNilRefs(refs[task.ID])
	return task, nil
}

func (r *taskRepository) List(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	query := `
	SELECT ` + taskColumns + `
	FROM tasks t
	WHERE ($1 = '' OR t.project_id = $1)
	  AND ($2 = '' OR t.status = $2)
	  AND ($3 = '' OR EXISTS (
		SELECT 1 FROM task_assignees a WHERE a.task_id = t.id AND a.user_id = $3
	  ))
	ORDER BY t.created_at DESC, t.id
	LIMIT $4 OFFSET $5
	`
	rows, err := r.pool.Query(ctx, query,
		filter.ProjectID,
		filter.Status,
		filter.AssigneeID,
		clampLimit(filter.Limit),
		filter.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var (
		tasks []domain.Task
		ids   []string
	)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
		ids = append(ids, task.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	refs, err := loadRefs(ctx, r.pool, assigneesQuery, ids)
	if err != nil {
		return nil, err
	}
	for i := range tasks {
		tasks[i].Assignees = nonNilRefs(refs[tasks[i].ID])
	}
	return tasks, nil
}

func (r *taskRepository) Save(ctx context.Context, task *domain.Task) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}
	if task.ID == "" {
		task.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO tasks (id, project_id, title, description, deadline, progress, status, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, COALESCE($8, NOW()), NOW())
	ON CONFLICT (id) DO UPDATE
	SET title = EXCLUDED.title,
		description = EXCLUDED.description,
		deadline = EXCLUDED.deadline,
		progress = EXCLUDED.progress,
		status = EXCLUDED.status,
		updated_at = NOW()
	RETURNING created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		task.ID,
		task.ProjectID,
		task.Title,
		task.Description,
		nullTimePtr(task.Deadline),
		task.Progress,
		task.Status,
		nullTime(task.CreatedAt),
	).Scan(&task.CreatedAt, &task.UpdatedAt)
	return translate(err, domain.ErrProjectNotFound)
}

func (r *taskRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM tasks WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (r *taskRepository) AddAssignment(ctx context.Context, taskID, userID string) error {
	const query = `
	INSERT INTO task_assignees (task_id, user_id)
	VALUES ($1, $2)
	ON CONFLICT (task_id, user_id) DO NOTHING
	`
	_, err := r.pool.Exec(ctx, query, taskID, userID)
	return translate(err, domain.ErrTaskNotFound)
}

func (r *taskRepository) RemoveAssignment(ctx context.Context, taskID, userID string) error {
	const query = `DELETE FROM task_assignees WHERE task_id = $1 AND user_id = $2`
	_, err := r.pool.Exec(ctx, query, taskID, userID)
	return err
}

func scanTask(row scanner) (*domain.Task, error) {
	var task domain.Task
	if err := row.Scan(
		&task.ID,
		&task.ProjectID,
		&task.Title,
		&task.Description,
		&task.Deadline,
		&task.Progress,
		&task.Status,
		&task.CreatedAt,
		&task.UpdatedAt,
	); err != nil {
		return nil, translate(err, domain.ErrTaskNotFound)
	}
	return &task, nil
}

func nonNilRefs(refs []domain.UserRef) []domain.UserRef {
	if refs == nil {
		return []domain.UserRef{}
	}
	return refs
}

type subtaskRepository struct {
	pool *pgxpool.Pool
}

func NewSubtaskRepository(pool *pgxpool.Pool) repository.SubtaskRepository {
	return &subtaskRepository{pool: pool}
}

const subtaskColumns = `id, task_id, title, progress, status, created_at, updated_at`

func (r *subtaskRepository) GetByID(ctx context.Context, id string) (*domain.Subtask, error) {
	query := `SELECT ` + subtaskColumns + ` FROM subtasks WHERE id = $1`
	return scanSubtask(r.pool.QueryRow(ctx, query, id))
}

func (r *subtaskRepository) ListByTask(ctx context.Context, taskID string) ([]domain.Subtask, error) {
	query := `SELECT ` + subtaskColumns + ` FROM subtasks WHERE task_id = $1 ORDER BY created_at, id`
	rows, err := r.pool.Query(ctx, query, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subtasks []domain.Subtask
	for rows.Next() {
		subtask, err := scanSubtask(rows)
		if err != nil {
			return nil, err
		}
		subtasks = append(subtasks, *subtask)
	}
	return subtasks, rows.Err()
}

func (r *subtaskRepository) Save(ctx context.Context, subtask *domain.Subtask) error {
	if subtask == nil {
		return domain.ErrInvalidPayload
	}
	if subtask.ID == "" {
		subtask.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO subtasks (id, task_id, title, progress, status, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, COALESCE($6, NOW()), NOW())
	ON CONFLICT (id) DO UPDATE
	SET title = EXCLUDED.title,
		progress = EXCLUDED.progress,
		status = EXCLUDED.status,
		updated_at = NOW()
	RETURNING created_at, updated_at
	`
	err := r.pool.QueryRow(ctx, query,
		subtask.ID,
		subtask.TaskID,
		subtask.Title,
		subtask.Progress,
		subtask.Status,
		nullTime(subtask.CreatedAt),
	).Scan(&subtask.CreatedAt, &subtask.UpdatedAt)
	return translate(err, domain.ErrTaskNotFound)
}

func (r *subtaskRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM subtasks WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSubtaskNotFound
	}
	return nil
}

func scanSubtask(row scanner) (*domain.Subtask, error) {
	var subtask domain.Subtask
	if err := row.Scan(
		&subtask.ID,
		&subtask.TaskID,
		&subtask.Title,
		&subtask.Progress,
		&subtask.Status,
		&subtask.CreatedAt,
		&subtask.UpdatedAt,
	); err != nil {
		return nil, translate(err, domain.ErrSubtaskNotFound)
	}
	return &subtask, nil
}
