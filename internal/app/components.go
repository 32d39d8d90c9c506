package app

import (
	"github.com/stacklok/registry-console/internal/editor"
	"github.com/stacklok/registry-console/internal/filtering"
	"github.com/stacklok/registry-console/internal/mirror"
	"github.com/stacklok/registry-console/internal/notify"
	"github.com/stacklok/registry-console/internal/registry"
	"github.com/stacklok/registry-console/internal/status"
	pkgsync "github.com/stacklok/registry-console/internal/sync"
	"github.com/stacklok/registry-console/internal/sync/coordinator"
)

// AppComponents groups all application components
//
//nolint:revive // This name is fine
type AppComponents struct {
	// Client talks to the registry API
	Client registry.Client

	// Store is the local mirror of registered instances
	Store *mirror.Store

	// View filters the mirror for display
	View *filtering.View

	// Queue holds the displayed notification
	Queue *notify.Queue

	// Editor holds the editing surfaces
	Editor *editor.Editor

	// Tracker records refresh outcomes
	Tracker *status.Tracker

	// SyncManager runs registry operations
	SyncManager pkgsync.Manager

	// Scheduler triggers silent refreshes
	Scheduler coordinator.Coordinator
}
