package models

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

const (
	// NotifyQueueSize bounds the pending notification dispatch queue.
	NotifyQueueSize = 256

	// RateLimitRequests per-user requests allowed within the window
	RateLimitRequests = 30

	// RateLimitWindow rate limit window in seconds
	RateLimitWindow = 60

	// DefaultMaxBookingDays how far ahead a slot may be requested
	DefaultMaxBookingDays = 90
)
