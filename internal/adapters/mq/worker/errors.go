package worker

import "errors"

// ErrStopped is returned for a batch interrupted by shutdown.
var ErrStopped = errors.New("worker stopped")
