package resources

import (
	"context"
	"fmt"
	"io/fs"
	"net"
	"net/url"

	"github.com/exaring/otelpgx"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"taskboard/pkg/config"
)

// DatabaseURL assembles the postgres connection string from the DB_* settings.
func DatabaseURL() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(viper.GetString(config.DbUser), viper.GetString(config.DbPassword)),
		Host:   net.JoinHostPort(viper.GetString(config.DbHost), viper.GetString(config.DbPort)),
		Path:   "/" + viper.GetString(config.DbName),
	}

	sslMode := viper.GetString(config.DbSslMode)
	if sslMode != "" {
		u.RawQuery = url.Values{"sslmode": {sslMode}}.Encode()
	}

	return u.String()
}

func CreateDatabaseConnectionPool(ctx context.Context) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(DatabaseURL())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database connection string: %w", err)
	}

	cfg.ConnConfig.Tracer = otelpgx.NewTracer()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	err = pool.Ping(ctx)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping to database: %w", err)
	}

	log.Ctx(ctx).Info().Str("stage", "startup").Str("component", "database").
		Str("host", cfg.ConnConfig.Host).Str("database", cfg.ConnConfig.Database).Msg("database connected")

	return pool, nil
}

// RunMigrations applies every pending goose migration found at the root of fsys.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool, fsys fs.FS) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	goose.SetBaseFS(fsys)
	goose.SetLogger(NewGooseLogger(ctx))

	err := goose.SetDialect("postgres")
	if err != nil {
		return fmt.Errorf("failed to set migrations dialect: %w", err)
	}

	err = goose.UpContext(ctx, db, ".")
	if err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	return nil
}
