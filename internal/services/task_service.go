package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-tasks-admin/internal/models"
	"github.com/adanyl0v/go-tasks-admin/internal/payload"
)

type taskServiceImpl struct {
	logger zerolog.Logger
	pgPool *pgxpool.Pool
}

// NewTaskService returns a TaskService backed by the tasks table.
func NewTaskService(
	logger zerolog.Logger,
	pgPool *pgxpool.Pool,
) TaskService {
	return &taskServiceImpl{
		logger: logger,
		pgPool: pgPool,
	}
}

func (s *taskServiceImpl) CreateTask(ctx context.Context, params CreateTaskParams) (*models.Task, error) {
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

	payloadJSON, err := json.Marshal(task.Payload)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to marshal task payload")
		return nil, err
	}

	const insertTaskQuery = `
INSERT INTO tasks (id,
                   completed,
                   payload,
                   created_at,
                   updated_at)
VALUES ($1, $2, $3, $4, $5)
`
	_, err = s.pgPool.Exec(
		ctx,
		insertTaskQuery,
		task.ID,
		task.Completed,
		payloadJSON,
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		if isPgError(err, pgerrcode.UniqueViolation) {
			s.logger.Error().
				Str("task_id", task.ID).
				Msg("task already exists")
			return nil, ErrTaskAlreadyExists
		}
		if isInvalidPayloadError(err) {
			s.logger.Error().
				Err(err).
				Str("task_id", task.ID).
				Msg("postgres rejected task payload")
			return nil, fmt.Errorf("%w: %w", ErrInvalidTaskPayload, err)
		}

		s.logger.Error().
			Err(err).
			Msg("failed to insert task")
		return nil, err
	}
	s.logger.Debug().
		Str("task_id", task.ID).
		Int("payload_size", len(payloadJSON)).
		Msg("inserted task")

	s.logger.Info().
		Str("task_id", task.ID).
		Msg("created task")
	return task, nil
}

func (s *taskServiceImpl) GetTaskByID(ctx context.Context, taskID string) (*models.Task, error) {
	if _, err := uuid.Parse(taskID); err != nil {
		s.logger.Error().
			Str("task_id", taskID).
			Msg("malformed task id")
		return nil, ErrTaskNotFound
	}

	task := &models.Task{ID: taskID}

	const selectTaskByIDQuery = `
SELECT completed,
       payload,
       created_at,
       updated_at
FROM tasks
WHERE id = $1
`
	var payloadJSON []byte
	err := s.pgPool.QueryRow(
		ctx,
		selectTaskByIDQuery,
		task.ID,
	).Scan(
		&task.Completed,
		&payloadJSON,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isPgError(err, pgerrcode.InvalidTextRepresentation) {
			s.logger.Error().
				Str("task_id", task.ID).
				Msg("task not found")
			return nil, ErrTaskNotFound
		}

		s.logger.Error().
			Err(err).
			Str("task_id", task.ID).
			Msg("failed to select task by id")
		return nil, err
	}

	task.Payload, err = payload.Parse(payloadJSON)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("task_id", task.ID).
			Msg("failed to parse task payload")
		return nil, err
	}
	s.logger.Debug().
		Str("task_id", task.ID).
		Msg("selected task by id")

	return task, nil
}

func (s *taskServiceImpl) GetTasks(ctx context.Context, params ListTasksParams) ([]*models.Task, error) {
	limit := normalizeLimit(params.Limit)

	const selectTasksQuery = `
SELECT id,
       completed,
       payload,
       created_at,
       updated_at
FROM tasks
ORDER BY created_at DESC, id DESC
LIMIT $1 OFFSET $2
`
	rows, err := s.pgPool.Query(
		ctx,
		selectTasksQuery,
		limit,
		params.Offset,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to select tasks")
		return nil, err
	}
	defer rows.Close()

	tasks := make([]*models.Task, 0, limit)
	for rows.Next() {
		task := &models.Task{}
		var payloadJSON []byte
		err = rows.Scan(
			&task.ID,
			&task.Completed,
			&payloadJSON,
			&task.CreatedAt,
			&task.UpdatedAt,
		)
		if err != nil {
			s.logger.Error().
				Err(err).
				Msg("failed to scan task")
			return nil, err
		}

		task.Payload, err = payload.Parse(payloadJSON)
		if err != nil {
			s.logger.Error().
				Err(err).
				Str("task_id", task.ID).
				Msg("failed to parse task payload")
			return nil, err
		}
		tasks = append(tasks, task)
	}

	err = rows.Err()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to iterate over rows")
		return nil, err
	}
	s.logger.Debug().
		Int("count", len(tasks)).
		Uint32("offset", params.Offset).
		Uint32("limit", limit).
		Msg("selected tasks")

	return tasks, nil
}

func (s *taskServiceImpl) CountTasks(ctx context.Context) (int64, error) {
	const countTasksQuery = `
SELECT count(*) FROM tasks
`
	var count int64
	err := s.pgPool.QueryRow(ctx, countTasksQuery).Scan(&count)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to count tasks")
		return 0, err
	}
	return count, nil
}

func (s *taskServiceImpl) UpdateTask(ctx context.Context, params UpdateTaskParams) (*models.Task, error) {
	if _, err := uuid.Parse(params.ID); err != nil {
		s.logger.Error().
			Str("task_id", params.ID).
			Msg("malformed task id")
		return nil, ErrTaskNotFound
	}

	err := validatePayload(params.Payload)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("task_id", params.ID).
			Msg("invalid task payload")
		return nil, err
	}

	task := &models.Task{
		ID:        params.ID,
		UpdatedAt: timestampNow(),
	}

	// A nil parameter keeps the stored column value.
	var payloadParam any
	if params.Payload != nil && !params.Payload.IsNull() {
		payloadJSON, err := json.Marshal(*params.Payload)
		if err != nil {
			s.logger.Error().
				Err(err).
				Msg("failed to marshal task payload")
			return nil, err
		}
		payloadParam = payloadJSON
	}

	const updateTaskQuery = `
UPDATE tasks
SET completed = COALESCE($1, completed),
    payload = COALESCE($2, payload),
    updated_at = $3
WHERE id = $4
RETURNING completed, payload, created_at
`
	var payloadJSON []byte
	err = s.pgPool.QueryRow(
		ctx,
		updateTaskQuery,
		params.Completed,
		payloadParam,
		task.UpdatedAt,
		task.ID,
	).Scan(
		&task.Completed,
		&payloadJSON,
		&task.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.logger.Error().
				Str("task_id", task.ID).
				Msg("task not found")
			return nil, ErrTaskNotFound
		}
		if isInvalidPayloadError(err) {
			s.logger.Error().
				Err(err).
				Str("task_id", task.ID).
				Msg("postgres rejected task payload")
			return nil, fmt.Errorf("%w: %w", ErrInvalidTaskPayload, err)
		}

		s.logger.Error().
			Err(err).
			Str("task_id", task.ID).
			Msg("failed to update task")
		return nil, err
	}

	task.Payload, err = payload.Parse(payloadJSON)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("task_id", task.ID).
			Msg("failed to parse task payload")
		return nil, err
	}
	s.logger.Debug().
		Str("task_id", task.ID).
		Bool("completed", task.Completed).
		Msg("updated task")

	s.logger.Info().
		Str("task_id", task.ID).
		Msg("updated task")
	return task, nil
}

func (s *taskServiceImpl) DeleteTask(ctx context.Context, taskID string) error {
	if _, err := uuid.Parse(taskID); err != nil {
		s.logger.Error().
			Str("task_id", taskID).
			Msg("malformed task id")
		return ErrTaskNotFound
	}

	const deleteTaskQuery = `
DELETE FROM tasks
WHERE id = $1
`
	tag, err := s.pgPool.Exec(
		ctx,
		deleteTaskQuery,
		taskID,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Msg("failed to delete task")
		return err
	}
	if tag.RowsAffected() == 0 {
		s.logger.Error().
			Str("task_id", taskID).
			Msg("task not found")
		return ErrTaskNotFound
	}
	s.logger.Debug().
		Str("task_id", taskID).
		Msg("deleted task")

	s.logger.Info().
		Str("task_id", taskID).
		Msg("deleted task")
	return nil
}

func isPgError(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}

// isInvalidPayloadError reports whether postgres refused a jsonb value.
func isInvalidPayloadError(err error) bool {
	return isPgError(err, pgerrcode.UntranslatableCharacter) ||
		isPgError(err, pgerrcode.NumericValueOutOfRange) ||
		isPgError(err, pgerrcode.InvalidTextRepresentation)
}
