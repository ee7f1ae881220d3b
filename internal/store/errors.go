package store

import "fmt"

// ConnectionError indicates the remote store could not be reached or
// queried. The synchronizer treats it as "remote unavailable", not fatal.
type ConnectionError struct {
	Message string
	Cause   error
}

func (e *ConnectionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("remote store: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("remote store: %s", e.Message)
}

func (e *ConnectionError) Unwrap() error {
	return e.Cause
}
