package pagequery

import "context"

// Repository is the storage collaborator used by entity services: it executes list
// queries and persists records.
type Repository[T any] interface {
	Executor[T]
	Get(ctx context.Context, id string) (*T, error)
	Create(ctx context.Context, record *T) error
	Save(ctx context.Context, record *T) error
}
