package store

import "fmt"

// NotFoundError represents a 404 Not Found error for comment lookups.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

func notFound(id int64) error {
	return &NotFoundError{Message: fmt.Sprintf("comment %d not found", id)}
}
