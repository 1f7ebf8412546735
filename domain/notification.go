package domain

import (
	"encoding/json"
	"time"
)

// EventType tags a NotificationEvent on the wire.
type EventType string

const (
	EventTaskAssigned      EventType = "task_assigned"
	EventTaskUpdated       EventType = "task_updated"
	EventProjectInvitation EventType = "project_invitation"
	EventCommentAdded      EventType = "comment_added"
)

// NotificationEvent is a closed set of events published after domain mutations.
// Subscribers switch on the concrete type.
type NotificationEvent interface {
	Type() EventType
	notificationEvent()
}

type AssignedTask struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Assignees []UserRef `json:"assignees"`
}

type TaskAssigned struct {
	Task AssignedTask `json:"task"`
}

type UpdatedTask struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Progress int    `json:"progress"`
	Status   Status `json:"status"`
}

type TaskUpdated struct {
	Task UpdatedTask `json:"task"`
}

type ProjectInvitation struct {
	Emails    []string `json:"emails"`
	ProjectID string   `json:"projectId"`
}

type CommentAdded struct {
	Comment Comment `json:"comment"`
}

func (TaskAssigned) Type() EventType      { return EventTaskAssigned }
func (TaskUpdated) Type() EventType       { return EventTaskUpdated }
func (ProjectInvitation) Type() EventType { return EventProjectInvitation }
func (CommentAdded) Type() EventType      { return EventCommentAdded }

func (TaskAssigned) notificationEvent()      {}
func (TaskUpdated) notificationEvent()       {}
func (ProjectInvitation) notificationEvent() {}
func (CommentAdded) notificationEvent()      {}

func (e TaskAssigned) MarshalJSON() ([]byte, error) {
	type alias TaskAssigned
	return marshalTagged(e.Type(), alias(e))
}

func (e TaskUpdated) MarshalJSON() ([]byte, error) {
	type alias TaskUpdated
	return marshalTagged(e.Type(), alias(e))
}

func (e ProjectInvitation) MarshalJSON() ([]byte, error) {
	type alias ProjectInvitation
	return marshalTagged(e.Type(), alias(e))
}

func (e CommentAdded) MarshalJSON() ([]byte, error) {
	type alias CommentAdded
	return marshalTagged(e.Type(), alias(e))
}

// marshalTagged flattens payload next to a "type" discriminator.
func marshalTagged(eventType EventType, payload interface{}) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, err
	}
	tag, _ := json.Marshal(eventType)
	fields["type"] = tag
	return json.Marshal(fields)
}

// Notification is an in-app inbox entry derived from a NotificationEvent.
type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Type      EventType `json:"type"`
	TaskID    string    `json:"task_id,omitempty"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}
