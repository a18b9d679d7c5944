// Package contextkeys holds the typed keys the portal stores in a
// request's context.Context.
package contextkeys

type contextKey string

func (c contextKey) String() string {
	return "job-portal/" + string(c)
}

const (
	// UserEmailKey holds the email claim of the authenticated session.
	UserEmailKey = contextKey("user_email")
	// RequestIDKey holds the X-Request-ID of the current request.
	RequestIDKey = contextKey("request_id")
	// OperationKey names the portal operation in progress, e.g. "submit_application".
	OperationKey = contextKey("operation")
)
