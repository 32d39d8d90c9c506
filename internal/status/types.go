package status

import "time"

// SyncPhase represents the current phase of a mirror refresh
type SyncPhase string

const (
	// SyncPhaseSyncing means a refresh is in progress
	SyncPhaseSyncing SyncPhase = "Syncing"

	// SyncPhaseComplete means the last refresh succeeded
	SyncPhaseComplete SyncPhase = "Complete"

	// SyncPhaseFailed means the last refresh failed
	SyncPhaseFailed SyncPhase = "Failed"
)

// SyncStatus is the state of mirror refreshes against the registry
type SyncStatus struct {
	// Phase represents the current refresh phase; empty before the first refresh
	Phase SyncPhase `json:"phase,omitempty"`

	// Message provides additional information about the status
	Message string `json:"message,omitempty"`

	// LastAttempt is the time the last refresh started
	LastAttempt *time.Time `json:"lastAttempt,omitempty"`

	// AttemptCount is the number of refresh attempts since the last success
	AttemptCount int `json:"attemptCount,omitempty"`

	// LastSyncTime is the time of the last successful refresh
	LastSyncTime *time.Time `json:"lastSyncTime,omitempty"`

	// InstanceCount is the number of instances returned by the last successful refresh
	InstanceCount int `json:"instanceCount,omitempty"`
}

// Healthy reports whether the last refresh did not fail
func (s SyncStatus) Healthy() bool {
	return s.Phase != SyncPhaseFailed
}
