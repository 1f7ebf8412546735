package memory

import (
	"context"
	"time"

	"github.com/fastygo/tracker/domain"
	"github.com/fastygo/tracker/repository"
)

var (
	_ repository.UserRepository         = (*UserRepository)(nil)
	_ repository.TaskRepository         = (*TaskRepository)(nil)
	_ repository.SubtaskRepository      = (*SubtaskRepository)(nil)
	_ repository.ProjectRepository      = (*ProjectRepository)(nil)
	_ repository.CommentRepository      = (*CommentRepository)(nil)
	_ repository.AttachmentRepository   = (*AttachmentRepository)(nil)
	_ repository.NotificationRepository = (*NotificationRepository)(nil)
	_ repository.SessionRepository      = (*SessionRepository)(nil)
)

type UserRepository struct{ s *Store }

func (r *UserRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	email = normalizeEmail(email)
	for _, u := range r.s.users {
		if normalizeEmail(u.Email) == email {
			found := u
			return &found, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *UserRepository) Exists(ctx context.Context, email string) (bool, error) {
	if _, err := r.GetByEmail(ctx, email); err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *UserRepository) List(_ context.Context, limit, offset int) ([]domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	users := make([]domain.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		users = append(users, u)
	}
	newestFirst(users, func(u domain.User) time.Time { return u.CreatedAt }, func(u domain.User) string { return u.ID })
	return page(users, limit, offset), nil
}

func (r *UserRepository) Upsert(_ context.Context, user *domain.User) error {
	if user == nil {
		return domain.ErrInvalidPayload
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ensureID(&user.ID)
	for id, u := range r.s.users {
		if id != user.ID && normalizeEmail(u.Email) == normalizeEmail(user.Email) {
			return domain.ErrEmailTaken
		}
	}
	if existing, ok := r.s.users[user.ID]; ok && user.CreatedAt.IsZero() {
		user.CreatedAt = existing.CreatedAt
	}
	r.s.touch(&user.CreatedAt, &user.UpdatedAt)
	r.s.users[user.ID] = *user
	return nil
}

type TaskRepository struct{ s *Store }

func (r *TaskRepository) GetByID(_ context.Context, id string) (*domain.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	t, ok := r.s.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	t.Assignees = r.s.refs(r.s.assignments[id])
	return &t, nil
}

func (r *TaskRepository) List(_ context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var tasks []domain.Task
	for id, t := range r.s.tasks {
		if filter.ProjectID != "" && t.ProjectID != filter.ProjectID {
			continue
		}
		if filter.Status != "" && string(t.Status) != filter.Status {
			continue
		}
		if filter.AssigneeID != "" && !contains(r.s.assignments[id], filter.AssigneeID) {
			continue
		}
		t.Assignees = r.s.refs(r.s.assignments[id])
		tasks = append(tasks, t)
	}
	newestFirst(tasks, func(t domain.Task) time.Time { return t.CreatedAt }, func(t domain.Task) string { return t.ID })
	return page(tasks, filter.Limit, filter.Offset), nil
}

func (r *TaskRepository) Save(_ context.Context, task *domain.Task) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ensureID(&task.ID)
	if existing, ok := r.s.tasks[task.ID]; ok && task.CreatedAt.IsZero() {
		task.CreatedAt = existing.CreatedAt
	}
	r.s.touch(&task.CreatedAt, &task.UpdatedAt)
	stored := *task
	stored.Assignees = nil
	r.s.tasks[task.ID] = stored
	return nil
}

func (r *TaskRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tasks[id]; !ok {
		return domain.ErrTaskNotFound
	}
	delete(r.s.tasks, id)
	delete(r.s.assignments, id)
	for sid, st := range r.s.subtasks {
		if st.TaskID == id {
			delete(r.s.subtasks, sid)
		}
	}
	return nil
}

func (r *TaskRepository) AddAssignment(_ context.Context, taskID, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tasks[taskID]; !ok {
		return domain.ErrTaskNotFound
	}
	if _, ok := r.s.users[userID]; !ok {
		return domain.ErrUserNotFound
	}
	r.s.assignments[taskID] = appendUnique(r.s.assignments[taskID], userID)
	return nil
}

func (r *TaskRepository) RemoveAssignment(_ context.Context, taskID, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.assignments[taskID] = removeID(r.s.assignments[taskID], userID)
	return nil
}

type SubtaskRepository struct{ s *Store }

func (r *SubtaskRepository) GetByID(_ context.Context, id string) (*domain.Subtask, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	st, ok := r.s.subtasks[id]
	if !ok {
		return nil, domain.ErrSubtaskNotFound
	}
	return &st, nil
}

func (r *SubtaskRepository) ListByTask(_ context.Context, taskID string) ([]domain.Subtask, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []domain.Subtask
	for _, st := range r.s.subtasks {
		if st.TaskID == taskID {
			out = append(out, st)
		}
	}
	// oldest first, the order they were added in
	newestFirst(out, func(st domain.Subtask) time.Time { return st.CreatedAt }, func(st domain.Subtask) string { return st.ID })
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

func (r *SubtaskRepository) Save(_ context.Context, subtask *domain.Subtask) error {
	if subtask == nil {
		return domain.ErrInvalidPayload
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tasks[subtask.TaskID]; !ok {
		return domain.ErrTaskNotFound
	}
	ensureID(&subtask.ID)
	if existing, ok := r.s.subtasks[subtask.ID]; ok && subtask.CreatedAt.IsZero() {
		subtask.CreatedAt = existing.CreatedAt
	}
	r.s.touch(&subtask.CreatedAt, &subtask.UpdatedAt)
	r.s.subtasks[subtask.ID] = *subtask
	return nil
}

func (r *SubtaskRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.subtasks[id]; !ok {
		return domain.ErrSubtaskNotFound
	}
	delete(r.s.subtasks, id)
	return nil
}

type ProjectRepository struct{ s *Store }

func (r *ProjectRepository) GetByID(_ context.Context, id string) (*domain.Project, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.projects[id]
	if !ok {
		return nil, domain.ErrProjectNotFound
	}
	p.Members = r.s.refs(r.s.members[id])
	return &p, nil
}

func (r *ProjectRepository) List(_ context.Context, filter repository.ProjectFilter) ([]domain.Project, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var projects []domain.Project
	for id, p := range r.s.projects {
		if filter.CreatorID != "" && p.CreatorID != filter.CreatorID {
			continue
		}
		if filter.MemberID != "" && !contains(r.s.members[id], filter.MemberID) {
			continue
		}
		p.Members = r.s.refs(r.s.members[id])
		projects = append(projects, p)
	}
	newestFirst(projects, func(p domain.Project) time.Time { return p.CreatedAt }, func(p domain.Project) string { return p.ID })
	return page(projects, filter.Limit, filter.Offset), nil
}

func (r *ProjectRepository) Save(_ context.Context, project *domain.Project) error {
	if project == nil {
		return domain.ErrInvalidPayload
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ensureID(&project.ID)
	if existing, ok := r.s.projects[project.ID]; ok && project.CreatedAt.IsZero() {
		project.CreatedAt = existing.CreatedAt
	}
	r.s.touch(&project.CreatedAt, &project.UpdatedAt)
	stored := *project
	stored.Members = nil
	r.s.projects[project.ID] = stored
	return nil
}

func (r *ProjectRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.projects[id]; !ok {
		return domain.ErrProjectNotFound
	}
	delete(r.s.projects, id)
	delete(r.s.members, id)
	return nil
}

func (r *ProjectRepository) AddMember(_ context.Context, projectID, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.projects[projectID]; !ok {
		return domain.ErrProjectNotFound
	}
	if _, ok := r.s.users[userID]; !ok {
		return domain.ErrUserNotFound
	}
	r.s.members[projectID] = appendUnique(r.s.members[projectID], userID)
	return nil
}

func (r *ProjectRepository) RemoveMember(_ context.Context, projectID, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.members[projectID] = removeID(r.s.members[projectID], userID)
	return nil
}

type CommentRepository struct{ s *Store }

func (r *CommentRepository) Create(_ context.Context, comment *domain.Comment) error {
	if comment == nil {
		return domain.ErrInvalidPayload
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ensureID(&comment.ID)
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = r.s.now()
	}
	r.s.comments = append(r.s.comments, *comment)
	return nil
}

func (r *CommentRepository) ListByTask(_ context.Context, taskID string) ([]domain.Comment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []domain.Comment
	for _, c := range r.s.comments {
		if c.TaskID == taskID {
			out = append(out, c)
		}
	}
	return out, nil
}

type AttachmentRepository struct{ s *Store }

func (r *AttachmentRepository) Create(_ context.Context, attachment *domain.FileAttachment) error {
	if attachment == nil {
		return domain.ErrInvalidPayload
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ensureID(&attachment.ID)
	if attachment.UploadedAt.IsZero() {
		attachment.UploadedAt = r.s.now()
	}
	r.s.attachments = append(r.s.attachments, *attachment)
	return nil
}

func (r *AttachmentRepository) ListByTask(_ context.Context, taskID string) ([]domain.FileAttachment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []domain.FileAttachment
	for _, a := range r.s.attachments {
		if a.TaskID == taskID {
			out = append(out, a)
		}
	}
	return out, nil
}

type NotificationRepository struct{ s *Store }

func (r *NotificationRepository) Push(_ context.Context, n *domain.Notification) error {
	if n == nil || n.UserID == "" {
		return domain.ErrInvalidPayload
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ensureID(&n.ID)
	if n.CreatedAt.IsZero() {
		n.CreatedAt = r.s.now()
	}
	inbox := append([]domain.Notification{*n}, r.s.notifications[n.UserID]...)
	if len(inbox) > r.s.inboxSize {
		inbox = inbox[:r.s.inboxSize]
	}
	r.s.notifications[n.UserID] = inbox
	return nil
}

func (r *NotificationRepository) List(_ context.Context, userID string, limit int) ([]domain.Notification, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	inbox := r.s.notifications[userID]
	if limit <= 0 || limit > len(inbox) {
		limit = len(inbox)
	}
	out := make([]domain.Notification, limit)
	copy(out, inbox[:limit])
	return out, nil
}

func (r *NotificationRepository) MarkRead(_ context.Context, userID, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	inbox := r.s.notifications[userID]
	for i := range inbox {
		if inbox[i].ID == id {
			inbox[i].Read = true
			return nil
		}
	}
	return domain.ErrNotificationNotFound
}

type SessionRepository struct{ s *Store }

// Get treats expired sessions as missing, like a Redis key past its TTL.
func (r *SessionRepository) Get(_ context.Context, id string) (*domain.Session, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	session, ok := r.s.sessions[id]
	if !ok || session.IsExpired(r.s.now()) {
		return nil, domain.ErrSessionNotFound
	}
	return &session, nil
}

func (r *SessionRepository) Save(_ context.Context, session *domain.Session) error {
	if session == nil || session.ID == "" {
		return domain.ErrInvalidPayload
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.sessions[session.ID] = *session
	return nil
}

func (r *SessionRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.sessions, id)
	return nil
}

func (r *SessionRepository) Extend(_ context.Context, id string, ttlSeconds int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	session, ok := r.s.sessions[id]
	if !ok {
		return domain.ErrSessionNotFound
	}
	session.ExpiresAt = r.s.now().Add(time.Duration(ttlSeconds) * time.Second)
	r.s.sessions[id] = session
	return nil
}

func contains(ids []string, id string) bool {
	for _, existing := range ids {
		if existing == id {
			return true
		}
	}
	return false
}
