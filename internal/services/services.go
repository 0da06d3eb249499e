package services

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/adanyl0v/go-tasks-admin/internal/models"
	"github.com/adanyl0v/go-tasks-admin/internal/payload"
)

var (
	ErrTaskNotFound       = errors.New("task not found")
	ErrTaskAlreadyExists  = errors.New("task already exists")
	ErrInvalidTaskPayload = errors.New("invalid task payload")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
)

// DefaultPageSize is used when a list request doesn't set a limit.
const DefaultPageSize = 32

type TaskService interface {
	// CreateTask stores a new task and assigns its ID and timestamps.
	//
	// Unset params fall back to the task defaults: not completed and
	// an empty object as the payload. A null payload is treated as unset.
	// A payload that can't be stored returns ErrInvalidTaskPayload.
	CreateTask(ctx context.Context, params CreateTaskParams) (*models.Task, error)

	// GetTaskByID returns ErrTaskNotFound if there is no task
	// with the given ID, including when the ID is malformed.
	GetTaskByID(ctx context.Context, taskID string) (*models.Task, error)

	// GetTasks returns a page of tasks, newest first. An empty page
	// is not an error.
	GetTasks(ctx context.Context, params ListTasksParams) ([]*models.Task, error)

	CountTasks(ctx context.Context) (int64, error)

	// UpdateTask sets the completion flag and/or replaces the payload.
	// Unset params keep their stored values.
	//
	// It returns ErrTaskNotFound if the task doesn't exist.
	UpdateTask(ctx context.Context, params UpdateTaskParams) (*models.Task, error)

	// DeleteTask returns ErrTaskNotFound if the task doesn't exist.
	DeleteTask(ctx context.Context, taskID string) error
}

type AuthService interface {
	// Login checks the admin credentials and issues a fresh access token.
	//
	// It returns ErrInvalidCredentials if either the username
	// or the password doesn't match.
	Login(ctx context.Context, params LoginParams) (*LoginResult, error)

	// ParseJWTToken parses the given JWT token and returns the registered
	// claims or jwt.ErrTokenExpired if the token is expired.
	ParseJWTToken(token string) (*jwt.RegisteredClaims, error)
}

type CreateTaskParams struct {
	Completed *bool
	Payload   *payload.Value
}

type UpdateTaskParams struct {
	ID        string
	Completed *bool
	Payload   *payload.Value
}

type ListTasksParams struct {
	Offset uint32
	Limit  uint32
}

type LoginParams struct {
	Username string
	Password string
}

type LoginResult struct {
	Username             string
	AccessToken          string
	AccessTokenExpiresAt time.Time
}

// newTaskFromParams applies the task defaults to params.
func newTaskFromParams(params CreateTaskParams) *models.Task {
	task := models.NewTask()
	if params.Completed != nil {
		task.Completed = *params.Completed
	}
	if params.Payload != nil && !params.Payload.IsNull() {
		task.Payload = params.Payload.Clone()
	}
	return task
}

func normalizeLimit(limit uint32) uint32 {
	if limit == 0 {
		return DefaultPageSize
	}
	return limit
}

// Numbers are stored as postgres numeric.
const (
	maxPayloadWholeDigits    = 131072
	maxPayloadFractionDigits = 16383
)

var (
	maxWholeDigits    = big.NewInt(maxPayloadWholeDigits)
	maxFractionDigits = big.NewInt(maxPayloadFractionDigits)
)

// validatePayload rejects payloads that jsonb can't hold: strings or keys
// with a NUL character and numbers beyond the numeric range. Both storage
// backends apply it so that they accept the same payloads.
func validatePayload(p *payload.Value) error {
	if p == nil {
		return nil
	}
	return validatePayloadValue(*p)
}

func validatePayloadValue(v payload.Value) error {
	switch v.Kind() {
	case payload.KindString:
		s, _ := v.AsString()
		if strings.ContainsRune(s, 0) {
			return fmt.Errorf("%w: string contains a NUL character", ErrInvalidTaskPayload)
		}
	case payload.KindNumber:
		whole, fraction, _ := v.Scale()
		if whole.Cmp(maxWholeDigits) > 0 || fraction.Cmp(maxFractionDigits) > 0 {
			n, _ := v.AsNumber()
			return fmt.Errorf("%w: number %.32s is out of range", ErrInvalidTaskPayload, n)
		}
	case payload.KindList:
		for _, item := range v.Items() {
			if err := validatePayloadValue(item); err != nil {
				return err
			}
		}
	case payload.KindObject:
		for _, m := range v.Members() {
			if strings.ContainsRune(m.Key, 0) {
				return fmt.Errorf("%w: key contains a NUL character", ErrInvalidTaskPayload)
			}
			if err := validatePayloadValue(m.Value); err != nil {
				return err
			}
		}
	}
	return nil
}

// timestampNow matches the microsecond precision of postgres timestamps,
// so a task returned on write equals the one read back later.
func timestampNow() time.Time {
	return time.Now().Truncate(time.Microsecond)
}
