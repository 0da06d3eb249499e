// Package resources adapts the services to admin.Resource so that they can
// be registered with the admin interface.
package resources

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/adanyl0v/go-tasks-admin/internal/admin"
	"github.com/adanyl0v/go-tasks-admin/internal/models"
	"github.com/adanyl0v/go-tasks-admin/internal/payload"
	"github.com/adanyl0v/go-tasks-admin/internal/services"
)

const TaskResourceName = "task"

type taskResource struct {
	tasks services.TaskService
}

func NewTaskResource(tasks services.TaskService) admin.Resource {
	return &taskResource{tasks: tasks}
}

type taskRecord struct {
	ID        string        `json:"id"`
	Completed bool          `json:"completed"`
	Payload   payload.Value `json:"payload"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

func newTaskRecord(task *models.Task) taskRecord {
	return taskRecord{
		ID:        task.ID,
		Completed: task.Completed,
		Payload:   task.Payload,
		CreatedAt: task.CreatedAt,
		UpdatedAt: task.UpdatedAt,
	}
}

// taskInput is the writable part of a task. Absent fields are nil.
type taskInput struct {
	Completed *bool          `json:"completed"`
	Payload   *payload.Value `json:"payload"`
}

func (*taskResource) Name() string {
	return TaskResourceName
}

func (*taskResource) Fields() []admin.Field {
	return []admin.Field{
		{Name: "id", Kind: admin.FieldKindID, ReadOnly: true},
		{Name: "completed", Kind: admin.FieldKindBool, Default: false},
		{Name: "payload", Kind: admin.FieldKindJSON, Default: map[string]any{}},
		{Name: "created_at", Kind: admin.FieldKindDateTime, ReadOnly: true},
		{Name: "updated_at", Kind: admin.FieldKindDateTime, ReadOnly: true},
	}
}

func (r *taskResource) List(ctx context.Context, page admin.Page) ([]any, error) {
	tasks, err := r.tasks.GetTasks(ctx, services.ListTasksParams{
		Offset: page.Offset,
		Limit:  page.Limit,
	})
	if err != nil {
		return nil, err
	}

	records := make([]any, len(tasks))
	for i, task := range tasks {
		records[i] = newTaskRecord(task)
	}
	return records, nil
}

func (r *taskResource) Count(ctx context.Context) (int64, error) {
	return r.tasks.CountTasks(ctx)
}

func (r *taskResource) Get(ctx context.Context, id string) (any, error) {
	task, err := r.tasks.GetTaskByID(ctx, id)
	if err != nil {
		return nil, mapTaskError(err)
	}
	return newTaskRecord(task), nil
}

func (r *taskResource) Create(ctx context.Context, body []byte) (any, error) {
	in, err := decodeTaskInput(body)
	if err != nil {
		return nil, err
	}

	task, err := r.tasks.CreateTask(ctx, services.CreateTaskParams{
		Completed: in.Completed,
		Payload:   in.Payload,
	})
	if err != nil {
		return nil, mapTaskError(err)
	}
	return newTaskRecord(task), nil
}

func (r *taskResource) Update(ctx context.Context, id string, body []byte) (any, error) {
	in, err := decodeTaskInput(body)
	if err != nil {
		return nil, err
	}

	task, err := r.tasks.UpdateTask(ctx, services.UpdateTaskParams{
		ID:        id,
		Completed: in.Completed,
		Payload:   in.Payload,
	})
	if err != nil {
		return nil, mapTaskError(err)
	}
	return newTaskRecord(task), nil
}

func (r *taskResource) Delete(ctx context.Context, id string) error {
	return mapTaskError(r.tasks.DeleteTask(ctx, id))
}

// decodeTaskInput decodes a JSON object with the writable task fields.
// An empty body is an empty object.
func decodeTaskInput(body []byte) (taskInput, error) {
	var in taskInput
	if len(bytes.TrimSpace(body)) == 0 {
		return in, nil
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()

	err := dec.Decode(&in)
	if err != nil {
		return taskInput{}, fmt.Errorf("%w: %w", admin.ErrInvalidRecord, err)
	}
	if _, err = dec.Token(); !errors.Is(err, io.EOF) {
		return taskInput{}, fmt.Errorf("%w: trailing data after object", admin.ErrInvalidRecord)
	}
	return in, nil
}

func mapTaskError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, services.ErrTaskNotFound):
		return fmt.Errorf("%w: %w", admin.ErrRecordNotFound, err)
	case errors.Is(err, services.ErrTaskAlreadyExists),
		errors.Is(err, services.ErrInvalidTaskPayload):
		return fmt.Errorf("%w: %w", admin.ErrInvalidRecord, err)
	default:
		return err
	}
}
