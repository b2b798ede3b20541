package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound = errors.New("batch not found")
	ErrExists   = errors.New("batch already exists")
)
