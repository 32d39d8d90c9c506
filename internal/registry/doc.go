// Package registry defines the service registry data model and the client
// used to talk to the registry REST API.
//
// # Client
//
// Client wraps the six registry endpoints:
//
//	POST   /api/services                               Register
//	GET    /api/services                               List
//	DELETE /api/services/{id}                          Deregister
//	PUT    /api/services/{id}/heartbeat                Heartbeat
//	PUT    /api/rate-limit/{id}                        SetRateLimit
//	PUT    /api/services/{id}/virtual-domain?virtualDomain=  SetVirtualDomain
//
// Every error returned by a Client method is an *Error whose Kind tells
// validation, conflict, not found, connectivity and server failures apart.
// UserMessage picks the text shown to users for each kind.
//
// # Timestamps
//
// The backend serializes local date-times without a zone. Timestamp accepts
// both that form and RFC 3339.
package registry
