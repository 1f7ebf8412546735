package transport

import "time"

type RegisterRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type ProfileUpdateRequest struct {
	Name  *string           `json:"name"`
	Email *string           `json:"email"`
	Meta  map[string]string `json:"metadata"`
}

type CreateTaskRequest struct {
	ProjectID   string     `json:"project_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Deadline    *time.Time `json:"deadline"`
	AssigneeIDs []string   `json:"assignee_ids"`
}

// UpdateTaskRequest is a partial update. ClearDeadline removes the deadline.
type UpdateTaskRequest struct {
	Title         *string    `json:"title"`
	Description   *string    `json:"description"`
	Deadline      *time.Time `json:"deadline"`
	ClearDeadline bool       `json:"clear_deadline"`
	Status        *string    `json:"status"`
}

type ProgressRequest struct {
	Progress *int `json:"progress"`
}

type SubtaskRequest struct {
	Title string `json:"title"`
}

type CommentRequest struct {
	Content string `json:"content"`
}

type CreateProjectRequest struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	MemberEmails []string `json:"member_emails"`
}

type UpdateProjectRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

type InviteRequest struct {
	Emails []string `json:"emails"`
}

type InviteResponse struct {
	Invited []string `json:"invited"`
}

type AuthLoginRequest struct {
	UserID string `json:"user_id"`
	TTL    int    `json:"ttl_seconds"`
}

type RefreshRequest struct {
	SessionID string `json:"session_id"`
	TTL       int    `json:"ttl_seconds"`
}

type StatusPolicyRequest struct {
	Policy string `json:"policy"`
}

type StatusPolicyResponse struct {
	Policy string `json:"policy"`
}
