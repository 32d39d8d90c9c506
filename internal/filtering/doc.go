// Package filtering computes the subset of mirrored service instances shown
// to the user.
//
// # Match rule
//
// An instance is shown when all of the following hold:
//
//   - the search query is a case-insensitive substring of its service name
//     (an empty query matches every name)
//   - the status filter is "all" (or empty) or equals its status exactly
//   - its service name passes the optional include/exclude glob patterns
//
// Name patterns use gobwas/glob, so '*' also matches across '/' and '.'.
// Exclude patterns take precedence over include patterns:
//
//   - "order-*" matches "order-service", "order-api"
//   - "*-v?" matches "pay-v1", "pay-v2"
//
// Filtering never reorders: the result keeps mirror order.
//
// # Usage Example
//
//	view := filtering.NewView(store)
//	view.SetQuery("order")
//	view.SetStatus("UP")
//	shown := view.Services()
package filtering
