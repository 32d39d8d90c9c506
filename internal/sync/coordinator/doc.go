// Package coordinator provides the auto-refresh scheduler of the console.
//
// The scheduler has two states, Stopped (initial) and Running, and is driven
// by Start and Stop:
//
//	scheduler := coordinator.New(syncManager, &cfg.Refresh)
//
//	scheduler.Start(ctx) // silent refresh now, then one per interval
//	...
//	scheduler.Stop()     // returns once the loop has exited
//
// Start while running and Stop while stopped are no-ops, so at most one
// ticker is live at any time. After Stop returns no further refresh runs.
// Refreshes started by the scheduler are silent: they raise no
// notifications and report failures through logs and the sync status
// tracker.
//
// The loop context is detached from the caller's cancellation. Only Stop ends
// the loop, and it also cancels a refresh that is still in flight.
package coordinator
