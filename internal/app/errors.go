package service

import "errors"

// Sentinel errors returned by the service. Store and domain errors are
// wrapped with the matching kind so callers only need errors.Is.
var (
	ErrBadRequest = errors.New("bad request")
	ErrNotFound   = errors.New("not found")
	ErrQueueFull  = errors.New("analysis queue is full")
	ErrNotStarted = errors.New("service not started")
)
