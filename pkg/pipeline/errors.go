package pipeline

import "fmt"

// PersistenceError is a parsed vote the store refused. It is recorded on the
// run outcome and joined into the run's returned error.
type PersistenceError struct {
	RollID string
	Err    error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist %s: %v", e.RollID, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
