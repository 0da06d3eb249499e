package models

import (
	"time"

	"github.com/adanyl0v/go-tasks-admin/internal/payload"
)

type Task struct {
	ID        string
	Completed bool
	Payload   payload.Value
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewTask returns a task that is not completed and carries an empty
// object as its payload.
func NewTask() *Task {
	return &Task{
		Completed: false,
		Payload:   payload.EmptyObject(),
	}
}
