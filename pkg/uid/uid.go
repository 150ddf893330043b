package uid

import "github.com/google/uuid"

// New generates a new unique identifier, used for request tracing.
func New() string {
	return uuid.New().String()
}
