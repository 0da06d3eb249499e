package app

import (
	"github.com/adanyl0v/go-tasks-admin/internal/admin"
	"github.com/adanyl0v/go-tasks-admin/internal/resources"
	"github.com/adanyl0v/go-tasks-admin/internal/services"
)

// mustBuildAdminRegistry registers every resource exposed by the admin
// interface. New record types are added to the list here.
func mustBuildAdminRegistry(tasks services.TaskService) *admin.Registry {
	registry := admin.NewRegistry()

	err := admin.RegisterAll(registry,
		resources.NewTaskResource(tasks),
	)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to register admin resources")
		panic(err)
	}
	registry.Seal()

	for _, reg := range registry.All() {
		globalLogger.Debug().
			Str("resource", reg.Resource.Name()).
			Strs("list_display", reg.Options.ListDisplay).
			Msg("registered admin resource")
	}
	globalLogger.Info().
		Int("count", registry.Len()).
		Msg("built admin registry")
	return registry
}
