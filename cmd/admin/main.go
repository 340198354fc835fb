// admin tareas de mantenimiento de usuarios sobre la base configurada.
//
// Uso:
//
//	go run ./cmd/admin seed [-admin-password P] [-employee-password P]
//	go run ./cmd/admin set-password -username U -password P
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/jhoicas/almacen-api/internal/application/usecase"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
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

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	users := usecase.NewUserUseCase(postgres.NewUserRepository(pool), postgres.NewTxRunner(pool), log)

	switch os.Args[1] {
	case "seed":
		fs := flag.NewFlagSet("seed", flag.ExitOnError)
		adminPassword := fs.String("admin-password", "admin123", "contraseña del usuario admin")
		employeePassword := fs.String("employee-password", "empleado123", "contraseña del usuario empleado")
		_ = fs.Parse(os.Args[2:])

		seeds := []struct {
			username, email, password string
			role                      entity.Role
		}{
			{"admin", "admin@example.com", *adminPassword, entity.RoleAdmin},
			{"empleado", "empleado@example.com", *employeePassword, entity.RoleEmployee},
		}
		for _, s := range seeds {
			created, err := users.EnsureUser(ctx, s.username, s.email, s.password, s.role)
			if err != nil {
				log.Fatal().Err(err).Str("username", s.username).Msg("sembrar usuario")
			}
			log.Info().Str("username", s.username).Bool("created", created).Msg("usuario sembrado")
		}
	case "set-password":
		fs := flag.NewFlagSet("set-password", flag.ExitOnError)
		username := fs.String("username", "admin", "usuario a modificar")
		password := fs.String("password", "", "nueva contraseña")
		_ = fs.Parse(os.Args[2:])
		if *password == "" {
			fmt.Fprintln(os.Stderr, "-password es obligatorio")
			os.Exit(2)
		}
		if err := users.SetPassword(ctx, *username, *password); err != nil {
			log.Fatal().Err(err).Str("username", *username).Msg("cambiar contraseña")
		}
	default:
		usage()
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "uso: admin seed [-admin-password P] [-employee-password P] | set-password -username U -password P")
	os.Exit(2)
}
