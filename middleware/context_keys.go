package middleware

// Keys used to pass request-scoped values through the gin context.
const (
	// UserIDKey holds the authenticated user's ID (string).
	UserIDKey = "user_id"
	// RequestIDKey holds the per-request correlation ID.
	RequestIDKey = "request_id"
)
