package sync

// User-facing notification texts. Texts with a %s take the service name.
const (
	MessageRefreshing    = "Refreshing service status..."
	MessageRefreshed     = "Service status refreshed successfully"
	MessageRefreshFailed = "Failed to refresh service status, please retry"

	MessageRegistering    = "Registering service..."
	MessageRegistered     = "Service \"%s\" registered successfully"
	MessageRegisterFailed = "Failed to register service, please retry"

	PromptDeregister        = "Are you sure you want to deregister service \"%s\"?"
	MessageDeregistering    = "Deregistering service \"%s\"..."
	MessageDeregistered     = "Service \"%s\" deregistered successfully"
	MessageDeregisterFailed = "Failed to deregister service, please retry"

	MessageSendingHeartbeat = "Sending heartbeat to service \"%s\"..."
	MessageHeartbeatSent    = "Heartbeat of service \"%s\" updated successfully"
	MessageHeartbeatFailed  = "Failed to send heartbeat, please retry"

	MessageSavingRateLimit = "Saving rate limit configuration..."
	MessageRateLimitSaved  = "Rate limit configuration saved successfully"
	MessageRateLimitFailed = "Failed to save rate limit configuration, please retry"

	MessageInvalidService       = "Invalid service information"
	MessageVirtualDomainSaved   = "Virtual domain set successfully"
	MessageVirtualDomainFailed  = "Failed to set virtual domain"
	MessageVirtualDomainNetwork = "Network error, failed to set virtual domain"
)
