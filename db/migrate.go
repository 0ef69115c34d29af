package db

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "github.com/golang-migrate/migrate/v4/source/file" // File source driver
)

// MigrateUp applies all pending up migrations. ErrNoChange is not an error.
//
// The migrator takes ownership of the database connection and closes it on
// completion; do not use the connection afterwards. Prefer
// RunMigrationsFromPath, which manages its own connection.
func MigrateUp(database *sql.DB, migrationsPath string) error {
	m, err := newMigrator(database, migrationsPath)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			return nil
		}
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	return nil
}

// RunMigrationsFromPath applies all pending migrations using a database
// path, managing its own connection lifecycle.
func RunMigrationsFromPath(dbPath, migrationsPath string) error {
	database, err := NewSQLiteConnectionWithDefaults(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	// MigrateUp closes the connection via migrator.Close().
	return MigrateUp(database, migrationsPath)
}

// MigrationVersion returns the current migration version and dirty state.
// Returns 0, false when no migrations have been applied. Takes ownership of
// the connection.
func MigrationVersion(database *sql.DB, migrationsPath string) (uint, bool, error) {
	m, err := newMigrator(database, migrationsPath)
	if err != nil {
		return 0, false, fmt.Errorf("failed to create migrator: %w", err)
	}
	defer m.Close()

	version, dirty, err := m.Version()
	if err != nil {
		if errors.Is(err, migrate.ErrNilVersion) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to get migration version: %w", err)
	}

	return version, dirty, nil
}

func newMigrator(database *sql.DB, migrationsPath string) (*migrate.Migrate, error) {
	if database == nil {
		return nil, errors.New("database connection is required")
	}
	if migrationsPath == "" {
		return nil, errors.New("migrations path is required")
	}

	driver, err := sqlite.WithInstance(database, &sqlite.Config{
		DatabaseName: "main",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create sqlite driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(migrationsPath, "sqlite", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}

	return m, nil
}
