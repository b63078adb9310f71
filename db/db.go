package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
)

//go:embed migrations/*.sql
var migrations embed.FS

// ExtensionDB stores the history of keepalive extensions.
type ExtensionDB struct {
	DB  *sql.DB
	Log *zerolog.Logger
}

// NewExtensionDB opens and pings the database behind the given connection
// string.
func NewExtensionDB(driver, source string, log *zerolog.Logger) (*ExtensionDB, error) {
	if source == "" {
		log.Error().Msg("database source is not set")
		return nil, fmt.Errorf("database source is not set")
	}

	// Open the database connection
	db, err := sql.Open(driver, source)
	if err != nil {
		log.Error().Err(err).Msg("Failed to open database connection")
		return nil, err
	}

	// Check we are actually connected
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = db.PingContext(ctx)
	if err != nil {
		db.Close()
		log.Error().Err(err).Msg("Database connection failed during ping")
		return nil, err
	}

	return &ExtensionDB{
		DB:  db,
		Log: log,
	}, nil
}

func (e *ExtensionDB) Close() error {
	if err := e.DB.Close(); err != nil {
		return err
	}
	e.Log.Info().Msg("database connection closed")
	return nil
}

// Migrate applies every pending migration.
func (e *ExtensionDB) Migrate() error {
	goose.SetBaseFS(migrations)
	goose.SetLogger(gooseLogger{e.Log})

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}

	if err := goose.Up(e.DB, "migrations"); err != nil {
		e.Log.Error().Err(err).Msg("Failed to run migrations")
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	e.Log.Info().Msg("Migrations applied successfully")
	return nil
}

// gooseLogger routes migration output through zerolog.
type gooseLogger struct {
	log *zerolog.Logger
}

func (l gooseLogger) Printf(format string, v ...interface{}) {
	l.log.Info().Msgf(format, v...)
}

func (l gooseLogger) Fatalf(format string, v ...interface{}) {
	l.log.Fatal().Msgf(format, v...)
}
