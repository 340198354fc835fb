// migrate aplica o revierte las migraciones embebidas sobre la base configurada.
//
// Uso:
//
//	go run ./cmd/migrate up
//	go run ./cmd/migrate down
//	go run ./cmd/migrate steps -1
//	go run ./cmd/migrate force 1
//	go run ./cmd/migrate version
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/jhoicas/almacen-api/internal/infrastructure/postgres"
	"github.com/jhoicas/almacen-api/pkg/config"
	"github.com/jhoicas/almacen-api/pkg/logger"
)

func main() {
	if len(os.Args) < 2 {
		usage()
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	pool, err := postgres.NewPool(context.Background(), cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	m, err := postgres.NewMigrator(pool, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar migrador")
	}
	defer func() { _ = m.Close() }()

	switch os.Args[1] {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down()
	case "steps":
		err = m.Steps(intArg())
	case "force":
		err = m.Force(intArg())
	case "version":
		var (
			version uint
			dirty   bool
		)
		version, dirty, err = m.Version()
		if err == nil {
			fmt.Printf("versión %d (dirty=%t)\n", version, dirty)
		}
	default:
		usage()
	}
	if err != nil {
		log.Fatal().Err(err).Str("command", os.Args[1]).Msg("migración fallida")
	}
}

func intArg() int {
	if len(os.Args) < 3 {
		usage()
	}
	n, err := strconv.Atoi(os.Args[2])
	if err != nil {
		fmt.Fprintf(os.Stderr, "número inválido %q\n", os.Args[2])
		os.Exit(2)
	}
	return n
}

func usage() {
	fmt.Fprintln(os.Stderr, "uso: migrate up | down | steps N | force V | version")
	os.Exit(2)
}
