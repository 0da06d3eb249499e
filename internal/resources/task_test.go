package resources_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adanyl0v/go-tasks-admin/internal/admin"
	"github.com/adanyl0v/go-tasks-admin/internal/resources"
	"github.com/adanyl0v/go-tasks-admin/internal/services"
)

func newTaskResource() admin.Resource {
	return resources.NewTaskResource(services.NewMemoryTaskService(zerolog.Nop()))
}

// encode turns a record into a generic JSON value for assertions.
func encode(t *testing.T, record any) map[string]any {
	t.Helper()
	data, err := json.Marshal(record)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func TestTaskResourceCreateDefaults(t *testing.T) {
	res := newTaskResource()

	for _, body := range []string{``, `{}`, `{"payload":null}`, `null`} {
		record, err := res.Create(context.Background(), []byte(body))
		require.NoError(t, err, body)

		got := encode(t, record)
		assert.Equal(t, false, got["completed"], body)
		assert.Equal(t, map[string]any{}, got["payload"], body)
		assert.NotEmpty(t, got["id"], body)
	}
}

func TestTaskResourceCreateInvalid(t *testing.T) {
	res := newTaskResource()

	bodies := []string{
		`{"completed":"yes"}`,
		`{"completed":1}`,
		`{"unknown":true}`,
		`{"id":"x"}`,
		`[]`,
		`{"payload":{}`,
		`{} {}`,
		`{"completed":true}}`,
		`{"completed":true}]`,
		`{"payload":"a\u0000b"}`,
		`{"payload":{"n":1e1000000}}`,
	}
	for _, body := range bodies {
		_, err := res.Create(context.Background(), []byte(body))
		assert.ErrorIs(t, err, admin.ErrInvalidRecord, body)
	}

	count, err := res.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestTaskResourceUpdateKeepsAbsentFields(t *testing.T) {
	res := newTaskResource()
	ctx := context.Background()

	record, err := res.Create(ctx, []byte(`{"payload":{"a":1,"b":[2,3]}}`))
	require.NoError(t, err)
	id := encode(t, record)["id"].(string)

	_, err = res.Update(ctx, id, []byte(`{"completed":true}`))
	require.NoError(t, err)

	record, err = res.Get(ctx, id)
	require.NoError(t, err)
	got := encode(t, record)
	assert.Equal(t, true, got["completed"])
	assert.Equal(t, map[string]any{"a": float64(1), "b": []any{float64(2), float64(3)}}, got["payload"])

	_, err = res.Update(ctx, id, []byte(`{"payload":["replaced"]}`))
	require.NoError(t, err)

	record, err = res.Get(ctx, id)
	require.NoError(t, err)
	got = encode(t, record)
	assert.Equal(t, true, got["completed"])
	assert.Equal(t, []any{"replaced"}, got["payload"])
}

func TestTaskResourceNotFound(t *testing.T) {
	res := newTaskResource()
	ctx := context.Background()

	_, err := res.Get(ctx, "missing")
	assert.ErrorIs(t, err, admin.ErrRecordNotFound)

	_, err = res.Update(ctx, "missing", []byte(`{}`))
	assert.ErrorIs(t, err, admin.ErrRecordNotFound)

	err = res.Delete(ctx, "missing")
	assert.ErrorIs(t, err, admin.ErrRecordNotFound)
}

func TestTaskResourceList(t *testing.T) {
	res := newTaskResource()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := res.Create(ctx, nil)
		require.NoError(t, err)
	}

	records, err := res.List(ctx, admin.Page{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestTaskResourceFields(t *testing.T) {
	res := newTaskResource()

	var names []string
	for _, f := range res.Fields() {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"id", "completed", "payload", "created_at", "updated_at"}, names)
}
