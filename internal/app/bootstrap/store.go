package bootstrap

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	appconfig "github.com/wolfman30/doctors-portal/internal/config"
	"github.com/wolfman30/doctors-portal/internal/store"
	"github.com/wolfman30/doctors-portal/pkg/logging"
)

// BuildStore opens the collection store selected by STORE_DRIVER. The
// connection is made once and shared for the life of the process.
func BuildStore(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (store.Store, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}

	switch cfg.StoreDriver {
	case "", "memory":
		logger.Warn("using in-memory store; data is lost on restart")
		return store.NewMemoryStore(), nil
	case "mongo":
		uri := cfg.MongoConnectionURI()
		if uri == "" {
			return nil, fmt.Errorf("bootstrap: mongo store needs MONGO_URI or DB_USER/DB_PASS/DB_CLUSTER")
		}
		s, err := store.ConnectMongo(ctx, uri, cfg.DBName)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: connect mongo: %w", err)
		}
		logger.Info("connected to mongo", "database", cfg.DBName)
		return s, nil
	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("bootstrap: postgres store needs DATABASE_URL")
		}
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: open postgres pool: %w", err)
		}
		s := store.NewPostgresStore(pool)
		if err := s.Ping(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("bootstrap: ping postgres: %w", err)
		}
		logger.Info("connected to postgres")
		return s, nil
	default:
		return nil, fmt.Errorf("bootstrap: unknown store driver %q", cfg.StoreDriver)
	}
}
