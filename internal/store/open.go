package store

import (
	"context"
	"fmt"

	"github.com/nhle/taskflow/internal/model"
)

// Open returns the Store selected by cfg.Driver.
func Open(ctx context.Context, cfg model.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case model.DriverSQLite:
		return NewSQLiteStore(cfg.DSN)
	case model.DriverPostgres:
		return NewPostgresStore(cfg.DSN)
	case model.DriverMongo:
		return NewMongoStore(ctx, cfg.DSN, cfg.Database)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

var (
	_ Store = (*SQLStore)(nil)
	_ Store = (*MongoStore)(nil)
)
