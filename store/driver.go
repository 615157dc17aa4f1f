package store

import (
	"context"
	"database/sql"
)

// Driver is an interface for store driver.
// It contains all methods that store database driver should implement.
type Driver interface {
	GetDB() *sql.DB
	Close() error

	IsInitialized(ctx context.Context) (bool, error)
	Exec(ctx context.Context, stmt string) error

	// Movie cache snapshot related methods.
	UpsertMovieRecord(ctx context.Context, record *MovieRecord) error
	ListMovieRecords(ctx context.Context) ([]*MovieRecord, error)
	DeleteAllMovieRecords(ctx context.Context) error

	// Network record related methods.
	UpsertNetworkRecord(ctx context.Context, record *NetworkRecord) error
	GetNetworkRecord(ctx context.Context, id string) (*NetworkRecord, error)
	ListNetworkRecords(ctx context.Context) ([]*NetworkRecord, error)
	DeleteNetworkRecord(ctx context.Context, id string) (bool, error)
}
