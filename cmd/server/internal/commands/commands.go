package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/victoai/platform/internal/server"
	memorystore "github.com/victoai/platform/internal/store/memory"
	postgresstore "github.com/victoai/platform/internal/store/postgres"
)

type Globals struct {
	Debug   bool
	Version string
}

// PostgresStoreFlags configures the shared pgx connection pool.
type PostgresStoreFlags struct {
	ConnString string `help:"PostgreSQL connection string" env:"POSTGRES_CONNECTION_STRING"`

	MaxConns        int32 `help:"maximum number of connections in pool" default:"20"`
	MinConns        int32 `help:"minimum number of connections in pool" default:"5"`
	MaxConnLifetime int32 `help:"maximum connection lifetime in seconds" default:"3600"`
	MaxConnIdleTime int32 `help:"maximum connection idle time in seconds" default:"1800"`

	AutoMigrate bool `help:"run database migrations on startup" default:"false" env:"VICTOAI_POSTGRES_AUTO_MIGRATE"`
}

func (s *PostgresStoreFlags) poolConfig() *postgresstore.PoolConfig {
	return &postgresstore.PoolConfig{
		ConnString:      s.ConnString,
		MaxConns:        s.MaxConns,
		MinConns:        s.MinConns,
		MaxConnLifetime: s.MaxConnLifetime,
		MaxConnIdleTime: s.MaxConnIdleTime,
	}
}

// buildStores creates the store set for the chosen backend. The returned
// cleanup closes the connection pool for postgres and is a no-op for memory.
func buildStores(ctx context.Context, storeType string, pg PostgresStoreFlags) (server.Stores, func(), error) {
	switch storeType {
	case "postgres":
		if pg.ConnString == "" {
			return server.Stores{}, nil, errors.New("PostgreSQL connection string is required (--postgres-conn-string or POSTGRES_CONNECTION_STRING)")
		}
		pool, err := postgresstore.NewPool(ctx, pg.poolConfig())
		if err != nil {
			return server.Stores{}, nil, fmt.Errorf("failed to create connection pool: %w", err)
		}
		if pg.AutoMigrate {
			if err := postgresstore.RunMigrations(ctx, pool); err != nil {
				pool.Close()
				return server.Stores{}, nil, fmt.Errorf("failed to run migrations: %w", err)
			}
		}
		return server.Stores{
			Organizations: postgresstore.NewOrganizationStore(pool),
			Principals:    postgresstore.NewPrincipalStore(pool),
			Models:        postgresstore.NewModelStore(pool),
			Scans:         postgresstore.NewScanStore(pool),
			Incidents:     postgresstore.NewIncidentStore(pool),
			Audit:         postgresstore.NewAuditStore(pool),
			Categories:    postgresstore.NewCategoryStore(pool),
			Tags:          postgresstore.NewTagStore(pool),
			Clients:       postgresstore.NewClientStore(pool),
			BlogPosts:     postgresstore.NewBlogPostStore(pool),
			CaseStudies:   postgresstore.NewCaseStudyStore(pool),
			Comments:      postgresstore.NewCommentStore(pool),
			Contact:       postgresstore.NewContactStore(pool),
		}, pool.Close, nil

	default:
		return server.Stores{
			Organizations: memorystore.NewOrganizationStore(),
			Principals:    memorystore.NewPrincipalStore(),
			Models:        memorystore.NewModelStore(),
			Scans:         memorystore.NewScanStore(),
			Incidents:     memorystore.NewIncidentStore(),
			Audit:         memorystore.NewAuditStore(),
			Categories:    memorystore.NewCategoryStore(),
			Tags:          memorystore.NewTagStore(),
			Clients:       memorystore.NewClientStore(),
			BlogPosts:     memorystore.NewBlogPostStore(),
			CaseStudies:   memorystore.NewCaseStudyStore(),
			Comments:      memorystore.NewCommentStore(),
			Contact:       memorystore.NewContactStore(),
		}, func() {}, nil
	}
}

func configureHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       time.Minute,
		WriteTimeout:      time.Minute,
		IdleTimeout:       5 * time.Minute,
		MaxHeaderBytes:    8 * 1024, // 8KiB
	}
}
