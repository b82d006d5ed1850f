package globals

type contextKey string

const (
	// UserKey holds the authenticated *models.User.
	UserKey      contextKey = "user"
	RequestIDKey contextKey = "requestId"
)
