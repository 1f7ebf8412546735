package buffer

import (
	"time"

	"github.com/google/uuid"
)

const (
	EntityTask    = "task"
	EntityProject = "project"

	OperationCreate = "create"
	OperationUpdate = "update"
	OperationDelete = "delete"
)

// Item represents a write that should be replayed once primary storage is reachable again.
type Item struct {
	ID        string    `json:"id"`
	EntityID  string    `json:"entity_id"`
	Entity    string    `json:"entity"`
	Operation string    `json:"operation"`
	Data      []byte    `json:"data"`
	Priority  int       `json:"priority"`
	Retries   int       `json:"retries"`
	Timestamp time.Time `json:"timestamp"`

	bucketKey []byte
}

func (i *Item) normalize() {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	if i.Priority <= 0 || i.Priority > 5 {
		i.Priority = 3
	}
	if i.Timestamp.IsZero() {
		i.Timestamp = time.Now()
	}
}
