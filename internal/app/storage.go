package app

import (
	"github.com/adanyl0v/go-tasks-admin/internal/config"
	"github.com/adanyl0v/go-tasks-admin/internal/services"
)

var globalTaskService services.TaskService

// MustInitStorage connects the configured storage backend and prepares
// its schema.
func MustInitStorage() {
	switch driver := config.Global().StorageDriver; driver {
	case config.StorageDriverPostgres:
		MustConnectPostgres()
		MustMigratePostgres()
		globalTaskService = services.NewTaskService(
			componentLogger("task_service"),
			globalPostgresPool,
		)
	case config.StorageDriverMemory:
		globalTaskService = services.NewMemoryTaskService(
			componentLogger("task_service"),
		)
		globalLogger.Warn().Msg("using in-memory storage, tasks are lost on restart")
	default:
		globalLogger.Error().
			Str("storage_driver", driver).
			Msg("unknown storage driver")
		panic(config.ErrUnknownStorageDriver)
	}
}

func CloseStorage() {
	if globalPostgresPool != nil {
		DisconnectPostgres()
	}
}
