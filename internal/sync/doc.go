// Package sync runs the registry operations of the console and keeps the
// local mirror in step with the registry.
//
// Every Manager operation follows the same shape: validate the input, emit an
// in-progress notification, call the registry API, then either mutate the
// mirror and emit a success notification or classify the failure and emit it
// with warning (validation) or error severity. Operations are traced and
// their durations recorded with the outcome kind.
//
// Refresh has a silent variant used by the scheduler in the coordinator
// subpackage. Silent refreshes emit no notifications at all; their failures
// are logged and recorded in the sync status tracker instead.
//
// The mirror has no transaction discipline. Concurrent operations apply in
// completion order, so a refresh that started before an optimistic update
// can overwrite it when it completes.
package sync
