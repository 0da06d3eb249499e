package services

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-tasks-admin/internal/models"
)

type memoryTaskServiceImpl struct {
	logger zerolog.Logger

	mu    sync.RWMutex
	tasks map[string]*models.Task
	// order holds task ids in insertion order.
	order []string
}

// NewMemoryTaskService returns a TaskService that keeps tasks in process
// memory. Tasks are lost on restart.
func NewMemoryTaskService(logger zerolog.Logger) TaskService {
	return &memoryTaskServiceImpl{
		logger: logger,
		tasks:  make(map[string]*models.Task),
	}
}

func (s *memoryTaskServiceImpl) CreateTask(_ context.Context, params CreateTaskParams) (*models.Task, error) {
	err := validatePayload(params.Payload)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("invalid task payload")
		return nil, err
	}
	task := newTaskFromParams(params)

	taskUUID, err := uuid.NewV7()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to generate task uuid")
		return nil, err
	}
	task.ID = taskUUID.String()

	now := timestampNow()
	task.CreatedAt = now
	task.UpdatedAt = now

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tasks[task.ID]; exists {
		s.logger.Error().
			Str("task_id", task.ID).
			Msg("task already exists")
		return nil, ErrTaskAlreadyExists
	}
	s.tasks[task.ID] = cloneTask(task)
	s.order = append(s.order, task.ID)

	s.logger.Info().
		Str("task_id", task.ID).
		Msg("created task")
	return task, nil
}

func (s *memoryTaskServiceImpl) GetTaskByID(_ context.Context, taskID string) (*models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	task, ok := s.tasks[taskID]
	if !ok {
		s.logger.Error().
			Str("task_id", taskID).
			Msg("task not found")
		return nil, ErrTaskNotFound
	}
	return cloneTask(task), nil
}

func (s *memoryTaskServiceImpl) GetTasks(_ context.Context, params ListTasksParams) ([]*models.Task, error) {
	limit := int(normalizeLimit(params.Limit))
	offset := int(params.Offset)

	s.mu.RLock()
	defer s.mu.RUnlock()

	if offset >= len(s.order) {
		return []*models.Task{}, nil
	}

	// Newest first.
	end := min(offset+limit, len(s.order))
	tasks := make([]*models.Task, 0, end-offset)
	for i := offset; i < end; i++ {
		id := s.order[len(s.order)-1-i]
		tasks = append(tasks, cloneTask(s.tasks[id]))
	}
	s.logger.Debug().
		Int("count", len(tasks)).
		Int("offset", offset).
		Int("limit", limit).
		Msg("selected tasks")

	return tasks, nil
}

func (s *memoryTaskServiceImpl) CountTasks(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.tasks)), nil
}

func (s *memoryTaskServiceImpl) UpdateTask(_ context.Context, params UpdateTaskParams) (*models.Task, error) {
	err := validatePayload(params.Payload)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("task_id", params.ID).
			Msg("invalid task payload")
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[params.ID]
	if !ok {
		s.logger.Error().
			Str("task_id", params.ID).
			Msg("task not found")
		return nil, ErrTaskNotFound
	}

	if params.Completed != nil {
		task.Completed = *params.Completed
	}
	if params.Payload != nil && !params.Payload.IsNull() {
		task.Payload = params.Payload.Clone()
	}
	task.UpdatedAt = timestampNow()

	s.logger.Info().
		Str("task_id", task.ID).
		Msg("updated task")
	return cloneTask(task), nil
}

func (s *memoryTaskServiceImpl) DeleteTask(_ context.Context, taskID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[taskID]; !ok {
		s.logger.Error().
			Str("task_id", taskID).
			Msg("task not found")
		return ErrTaskNotFound
	}
	delete(s.tasks, taskID)

	for i, id := range s.order {
		if id == taskID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}

	s.logger.Info().
		Str("task_id", taskID).
		Msg("deleted task")
	return nil
}

func cloneTask(task *models.Task) *models.Task {
	clone := *task
	clone.Payload = task.Payload.Clone()
	return &clone
}
