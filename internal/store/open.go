package store

import (
	"context"

	"github.com/rotisserie/eris"
)

// Open constructs a backend by driver name. Path serves the file and
// sqlite drivers; databaseURL serves postgres.
func Open(ctx context.Context, driver, path, databaseURL string) (Store, error) {
	switch driver {
	case "memory":
		return NewMemory(), nil
	case "file":
		return NewFile(path)
	case "sqlite":
		return NewSQLite(ctx, path)
	case "postgres":
		return NewPostgres(ctx, databaseURL)
	default:
		return nil, eris.Errorf("store: unknown driver %q", driver)
	}
}
