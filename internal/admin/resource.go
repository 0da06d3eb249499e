// Package admin holds the registration table of the admin interface: which
// record types it exposes and how each one is presented.
package admin

import (
	"context"
	"errors"
)

var (
	ErrAlreadyRegistered = errors.New("resource already registered")
	ErrRegistrySealed    = errors.New("registry is sealed")
	ErrInvalidName       = errors.New("invalid resource name")
	ErrUnknownField      = errors.New("unknown field")

	// ErrRecordNotFound and ErrInvalidRecord classify the errors
	// returned by Resource implementations.
	ErrRecordNotFound = errors.New("record not found")
	ErrInvalidRecord  = errors.New("invalid record")
)

type FieldKind string

const (
	FieldKindID       FieldKind = "id"
	FieldKindBool     FieldKind = "bool"
	FieldKindJSON     FieldKind = "json"
	FieldKindDateTime FieldKind = "datetime"
)

// Field describes one column of a record type.
type Field struct {
	Name     string    `json:"name"`
	Kind     FieldKind `json:"kind"`
	ReadOnly bool      `json:"read_only"`
	Default  any       `json:"default,omitempty"`
}

type Page struct {
	Offset uint32
	Limit  uint32
}

// Resource is a record type that can be managed through the admin
// interface. Records are returned as JSON-encodable values.
//
// Implementations wrap their errors with ErrRecordNotFound or
// ErrInvalidRecord so the interface can tell them apart.
type Resource interface {
	// Name identifies the resource in the registry and in URLs.
	Name() string
	Fields() []Field

	List(ctx context.Context, page Page) ([]any, error)
	Count(ctx context.Context) (int64, error)
	Get(ctx context.Context, id string) (any, error)
	Create(ctx context.Context, body []byte) (any, error)
	Update(ctx context.Context, id string, body []byte) (any, error)
	Delete(ctx context.Context, id string) error
}
