package goosemigrate

import (
	"database/sql"
	"fmt"
	"io/fs"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

type Migrator struct {
	postgresURL string
	migrations  fs.FS
	dir         string
	schemaName  string
}

// NewMigrator runs the *.sql files found in dir of migrations. The goose
// version table lives inside schemaName.
func NewMigrator(postgresURL string, migrations fs.FS, dir, schemaName string) *Migrator {
	return &Migrator{
		postgresURL: postgresURL,
		migrations:  migrations,
		dir:         dir,
		schemaName:  schemaName,
	}
}

func (m *Migrator) Up() error {
	db, err := m.open()
	if err != nil {
		return err
	}
	defer db.Close()

	_, err = db.Exec(fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", m.schemaName))
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	if err := goose.Up(db, m.dir); err != nil {
		return fmt.Errorf("failed to up migrations: %w", err)
	}

	return nil
}

func (m *Migrator) Down() error {
	db, err := m.open()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := goose.Reset(db, m.dir); err != nil {
		return fmt.Errorf("failed to down migrations: %w", err)
	}

	_, err = db.Exec(fmt.Sprintf("DROP SCHEMA IF EXISTS %s CASCADE", m.schemaName))
	if err != nil {
		return fmt.Errorf("failed to delete schema: %w", err)
	}

	return nil
}

func (m *Migrator) open() (*sql.DB, error) {
	goose.SetBaseFS(m.migrations)
	goose.SetTableName(m.schemaName + "." + "migrations")

	if err := goose.SetDialect("postgres"); err != nil {
		return nil, fmt.Errorf("failed to set goose dialect: %w", err)
	}

	db, err := goose.OpenDBWithDriver("pgx", m.postgresURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open DB for migration: %w", err)
	}

	return db, nil
}
