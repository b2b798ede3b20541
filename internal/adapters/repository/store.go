// Package repository persists analysis batches.
package repository

import (
	"context"
	"time"

	"github.com/okian/eeat/internal/domain/model"
)

// Summary is the listing row of a batch.
type Summary struct {
	ID        string               `json:"id"`
	Host      string               `json:"host"`
	CreatedAt time.Time            `json:"created_at"`
	Total     int                  `json:"total"`
	Counts    map[model.Status]int `json:"counts"`
	Done      bool                 `json:"done"`
}

// Summarize builds the listing row of b.
func Summarize(b *model.Batch) Summary {
	return Summary{
		ID:        b.ID,
		Host:      b.Host,
		CreatedAt: b.CreatedAt,
		Total:     len(b.Pages),
		Counts:    b.Counts(),
		Done:      b.Done(),
	}
}

// Store provides read/write access to batches. Implementations hand out
// copies: mutating a returned batch never changes the stored one.
type Store interface {
	// Create stores a new batch. Returns ErrExists if the id is taken.
	Create(ctx context.Context, b *model.Batch) error

	// Get returns a copy of the batch or ErrNotFound.
	Get(ctx context.Context, id string) (*model.Batch, error)

	// List returns batch summaries, newest first.
	List(ctx context.Context) ([]Summary, error)

	// Update applies fn to the stored batch atomically. When fn returns an
	// error nothing is written and the error is returned.
	Update(ctx context.Context, id string, fn func(*model.Batch) error) error

	// Close releases resources held by the store.
	Close() error
}
