package database

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// ErrDirtySchema means a previous migration failed halfway and the schema
// needs manual repair before migrating again.
var ErrDirtySchema = errors.New("schema is dirty")

// SchemaVersion is the migration state of a database. Version is 0 when no
// migration has been applied.
type SchemaVersion struct {
	Version uint
	Dirty   bool
	Changed bool
}

func (v SchemaVersion) String() string {
	switch {
	case v.Version == 0:
		return "no migrations applied"
	case v.Dirty:
		return fmt.Sprintf("version %d (dirty)", v.Version)
	default:
		return fmt.Sprintf("version %d", v.Version)
	}
}

// Migrator applies the SQL files of a golang-migrate source to a database.
type Migrator struct {
	db *sql.DB
	m  *migrate.Migrate
}

// MigrationsSource turns a directory into a file:// source URL. The path is
// made absolute so the URL does not depend on how the directory was spelled.
func MigrationsSource(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve migrations dir: %w", err)
	}
	return "file://" + filepath.ToSlash(abs), nil
}

// NewMigrator opens databaseURL through the pgx database/sql driver, which
// golang-migrate requires, and loads migrations from source.
func NewMigrator(databaseURL, source string) (*Migrator, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database for migrations: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(source, "postgres", driver)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}

	return &Migrator{db: db, m: m}, nil
}

// Close releases the migration connection.
func (mg *Migrator) Close() error {
	return mg.db.Close()
}

// Up applies every pending migration.
func (mg *Migrator) Up() (SchemaVersion, error) {
	err := mg.m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return SchemaVersion{}, fmt.Errorf("failed to apply migrations: %w", err)
	}

	v, err2 := mg.Version()
	v.Changed = err == nil
	if err2 != nil {
		return v, err2
	}
	if v.Dirty {
		return v, fmt.Errorf("migration %d: %w", v.Version, ErrDirtySchema)
	}
	return v, nil
}

// Down rolls back the most recent migration.
func (mg *Migrator) Down() (SchemaVersion, error) {
	if err := mg.m.Steps(-1); err != nil {
		return SchemaVersion{}, fmt.Errorf("failed to roll back migration: %w", err)
	}
	v, err := mg.Version()
	v.Changed = true
	return v, err
}

// Version reports the current schema version.
func (mg *Migrator) Version() (SchemaVersion, error) {
	version, dirty, err := mg.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return SchemaVersion{}, nil
	}
	if err != nil {
		return SchemaVersion{}, fmt.Errorf("failed to get migration version: %w", err)
	}
	return SchemaVersion{Version: version, Dirty: dirty}, nil
}
