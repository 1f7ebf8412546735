package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/tracker/domain"
	"github.com/fastygo/tracker/repository"
)

type projectRepository struct {
	pool *pgxpool.Pool
}

// NewProjectRepository returns a Postgres-backed ProjectRepository.
func NewProjectRepository(pool *pgxpool.Pool) repository.ProjectRepository {
	return &projectRepository{pool: pool}
}

const (
	projectColumns = `id, name, description, COALESCE(creator_id, ''), created_at, updated_at`

	membersQuery = `
	SELECT m.project_id, u.id, u.email, u.name
	FROM project_members m
	JOIN users u ON u.id = m.user_id
	WHERE m.project_id = ANY($1)
	ORDER BY m.joined_at, u.id
	`
)

func (r *projectRepository) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1`
	project, err := scanProject(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}
	refs, err := loadRefs(ctx, r.pool, membersQuery, []string{project.ID})
	if err != nil {
		return nil, err
	}
	project.Members = nonNilRefs(refs[project.ID])
	return project, nil
}

func (r *projectRepository) List(ctx context.Context, filter repository.ProjectFilter) ([]domain.Project, error) {
	query := `
	SELECT ` + projectColumns + `
	FROM projects p
	WHERE ($1 = '' OR p.creator_id = $1)
	  AND ($2 = '' OR EXISTS (
		SELECT 1 FROM project_members m WHERE m.project_id = p.id AND m.user_id = $2
	  ))
	ORDER BY p.created_at DESC, p.id
	LIMIT $3 OFFSET $4
	`
	rows, err := r.pool.Query(ctx, query, filter.CreatorID, filter.MemberID, clampLimit(filter.Limit), filter.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var (
		projects []domain.Project
		ids      []string
	)
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, *project)
		ids = append(ids, project.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	refs, err := loadRefs(ctx, r.pool, membersQuery, ids)
	if err != nil {
		return nil, err
	}
	for i := range projects {
		projects[i].Members = nonNilRefs(refs[projects[i].ID])
	}
	return projects, nil
}

func (r *projectRepository) Save(ctx context.Context, project *domain.Project) error {
	if project == nil {
		return domain.ErrInvalidPayload
	}
	if project.ID == "" {
		project.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO projects (id, name, description, creator_id, created_at, updated_at)
	VALUES ($1, $2, $3, NULLIF($4, ''), COALESCE($5, NOW()), NOW())
	ON CONFLICT (id) DO UPDATE
	SET name = EXCLUDED.name,
		description = EXCLUDED.description,
		updated_at = NOW()
	RETURNING created_at, updated_at
	`
	err := r.pool.QueryRow(ctx, query,
		project.ID,
		project.Name,
		project.Description,
		project.CreatorID,
		nullTime(project.CreatedAt),
	).Scan(&project.CreatedAt, &project.UpdatedAt)
	return translate(err, domain.ErrUserNotFound)
}

func (r *projectRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProjectNotFound
	}
	return nil
}

func (r *projectRepository) AddMember(ctx context.Context, projectID, userID string) error {
	const query = `
	INSERT INTO project_members (project_id, user_id)
	VALUES ($1, $2)
	ON CONFLICT (project_id, user_id) DO NOTHING
	`
	_, err := r.pool.Exec(ctx, query, projectID, userID)
	return translate(err, domain.ErrProjectNotFound)
}

func (r *projectRepository) RemoveMember(ctx context.Context, projectID, userID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM project_members WHERE project_id = $1 AND user_id = $2`, projectID, userID)
	return err
}

func scanProject(row scanner) (*domain.Project, error) {
	var project domain.Project
	if err := row.Scan(
		&project.ID,
		&project.Name,
		&project.Description,
		&project.CreatorID,
		&project.CreatedAt,
		&project.UpdatedAt,
	); err != nil {
		return nil, translate(err, domain.ErrProjectNotFound)
	}
	return &project, nil
}
