package domain

import "context"

// Database is the lifecycle surface of the backing store. The store owns its
// schema and migrations; callers only migrate on startup and close on exit.
type Database interface {
	Migrate(ctx context.Context) error
	Close() error
}
