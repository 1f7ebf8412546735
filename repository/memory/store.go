// Package memory implements the repository interfaces on top of process memory.
// It backs the "memory" storage driver and the use case tests.
package memory

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fastygo/tracker/domain"
)

// Store holds every entity behind a single lock so joins (assignees, members) stay consistent.
type Store struct {
	mu sync.RWMutex

	users         map[string]domain.User
	tasks         map[string]domain.Task
	assignments   map[string][]string
	subtasks      map[string]domain.Subtask
	projects      map[string]domain.Project
	members       map[string][]string
	comments      []domain.Comment
	attachments   []domain.FileAttachment
	notifications map[string][]domain.Notification
	sessions      map[string]domain.Session
	inboxSize     int

	now func() time.Time
}

func NewStore() *Store {
	return &Store{
		users:         make(map[string]domain.User),
		tasks:         make(map[string]domain.Task),
		assignments:   make(map[string][]string),
		subtasks:      make(map[string]domain.Subtask),
		projects:      make(map[string]domain.Project),
		members:       make(map[string][]string),
		notifications: make(map[string][]domain.Notification),
		sessions:      make(map[string]domain.Session),
		inboxSize:     100,
		now:           time.Now,
	}
}

func (s *Store) Users() *UserRepository                 { return &UserRepository{s} }
func (s *Store) Tasks() *TaskRepository                 { return &TaskRepository{s} }
func (s *Store) Subtasks() *SubtaskRepository           { return &SubtaskRepository{s} }
func (s *Store) Projects() *ProjectRepository           { return &ProjectRepository{s} }
func (s *Store) Comments() *CommentRepository           { return &CommentRepository{s} }
func (s *Store) Attachments() *AttachmentRepository     { return &AttachmentRepository{s} }
func (s *Store) Notifications() *NotificationRepository { return &NotificationRepository{s} }
func (s *Store) Sessions() *SessionRepository           { return &SessionRepository{s} }

// SetInboxSize caps the number of notifications kept per user.
func (s *Store) SetInboxSize(size int) {
	if size <= 0 {
		return
	}
	s.mu.Lock()
	s.inboxSize = size
	s.mu.Unlock()
}

func (s *Store) refs(ids []string) []domain.UserRef {
	refs := make([]domain.UserRef, 0, len(ids))
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			refs = append(refs, u.Ref())
		}
	}
	return refs
}

func (s *Store) touch(created *time.Time, updated *time.Time) {
	now := s.now()
	if created.IsZero() {
		*created = now
	}
	*updated = now
}

func appendUnique(ids []string, id string) []string {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}

func removeID(ids []string, id string) []string {
	out := ids[:0]
	for _, existing := range ids {
		if existing != id {
			out = append(out, existing)
		}
	}
	return out
}

func newestFirst[T any](items []T, created func(T) time.Time, id func(T) string) {
	sort.SliceStable(items, func(i, j int) bool {
		ci, cj := created(items[i]), created(items[j])
		if ci.Equal(cj) {
			return id(items[i]) < id(items[j])
		}
		return ci.After(cj)
	})
}

func page[T any](items []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

func ensureID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
