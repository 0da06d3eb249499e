package migrations_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adanyl0v/go-tasks-admin/internal/migrations"
)

func TestScriptsCreateTasksTable(t *testing.T) {
	names, err := migrations.Names()
	require.NoError(t, err)
	require.Equal(t, []string{"0001_create_tasks.sql"}, names)

	sql, err := migrations.Script(names[0])
	require.NoError(t, err)
	assert.Contains(t, sql, "CREATE TABLE IF NOT EXISTS tasks")
	assert.Contains(t, sql, "payload    JSONB")
}

func TestScriptUnknownName(t *testing.T) {
	_, err := migrations.Script("9999_missing.sql")
	assert.Error(t, err)
}
