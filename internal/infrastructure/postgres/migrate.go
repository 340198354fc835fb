package postgres

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	pgxmigrate "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/jhoicas/almacen-api/pkg/logger"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migrator aplica las migraciones embebidas en el binario usando golang-migrate.
type Migrator struct {
	migrate *migrate.Migrate
	log     *logger.Logger
}

// NewMigrator construye el migrador sobre una conexión database/sql abierta desde el pool.
func NewMigrator(pool *pgxpool.Pool, log *logger.Logger) (*Migrator, error) {
	src, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return nil, fmt.Errorf("abrir migraciones: %w", err)
	}
	db := stdlib.OpenDBFromPool(pool)
	driver, err := pgxmigrate.WithInstance(db, &pgxmigrate.Config{})
	if err != nil {
		return nil, fmt.Errorf("driver de migraciones: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "pgx5", driver)
	if err != nil {
		return nil, fmt.Errorf("crear migrador: %w", err)
	}
	return &Migrator{migrate: m, log: log.Component("migrate")}, nil
}

// Up aplica las migraciones pendientes.
func (m *Migrator) Up() error {
	err := m.migrate.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		m.log.Info().Msg("sin migraciones pendientes")
		return nil
	}
	if err != nil {
		return fmt.Errorf("migración up: %w", err)
	}
	return m.logVersion("migraciones aplicadas")
}

// Down revierte todas las migraciones.
func (m *Migrator) Down() error {
	err := m.migrate.Down()
	if errors.Is(err, migrate.ErrNoChange) {
		m.log.Info().Msg("sin migraciones para revertir")
		return nil
	}
	if err != nil {
		return fmt.Errorf("migración down: %w", err)
	}
	m.log.Warn().Msg("migraciones revertidas")
	return nil
}

// Steps aplica n migraciones (positivo sube, negativo baja).
func (m *Migrator) Steps(n int) error {
	err := m.migrate.Steps(n)
	if errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("migración steps %d: %w", n, err)
	}
	return m.logVersion("migración por pasos completada")
}

// Force fija la versión sin ejecutar migraciones (para salir de un estado dirty).
func (m *Migrator) Force(version int) error {
	m.log.Warn().Int("version", version).Msg("forzando versión de migración")
	if err := m.migrate.Force(version); err != nil {
		return fmt.Errorf("forzar versión %d: %w", version, err)
	}
	return nil
}

// Version versión actual; 0 si nunca se migró.
func (m *Migrator) Version() (uint, bool, error) {
	version, dirty, err := m.migrate.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("versión de migración: %w", err)
	}
	return version, dirty, nil
}

// Close libera la fuente y la conexión del migrador.
func (m *Migrator) Close() error {
	sourceErr, dbErr := m.migrate.Close()
	return errors.Join(sourceErr, dbErr)
}

func (m *Migrator) logVersion(msg string) error {
	version, dirty, err := m.Version()
	if err != nil {
		return err
	}
	m.log.Info().Uint("version", version).Bool("dirty", dirty).Msg(msg)
	return nil
}
