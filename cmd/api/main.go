package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/almacen-api/internal/application/auth"
	"github.com/jhoicas/almacen-api/internal/application/inventory"
	"github.com/jhoicas/almacen-api/internal/application/usecase"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
	"github.com/jhoicas/almacen-api/internal/infrastructure/excel"
	"github.com/jhoicas/almacen-api/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/almacen-api/internal/infrastructure/pdf"
	"github.com/jhoicas/almacen-api/internal/infrastructure/postgres"
	infraredis "github.com/jhoicas/almacen-api/internal/infrastructure/redis"
	"github.com/jhoicas/almacen-api/internal/infrastructure/storage"
	httpRouter "github.com/jhoicas/almacen-api/internal/interfaces/http"
	"github.com/jhoicas/almacen-api/pkg/config"
	"github.com/jhoicas/almacen-api/pkg/logger"
)

// txRunner transacciones de stock y de usuarios; lo cumplen postgres.TxRunner y memory.Store.
type txRunner interface {
	inventory.TxRunner
	auth.UserTxRunner
}

// backend repositorios del driver elegido.
type backend struct {
	products  repository.ProductRepository
	ingresses repository.IngressRepository
	egresses  repository.EgressRepository
	users     repository.UserRepository
	analytics repository.AnalyticsRepository
	tx        txRunner
	close     func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Store.Driver).
		Str("storage", cfg.Storage.Driver).
		Msg("iniciando aplicación")

	if cfg.JWT.Secret == "" {
		// Solo llega aquí en development: los tokens se invalidan al reiniciar.
		cfg.JWT.Secret = uuid.NewString()
		log.Warn().Msg("JWT_SECRET vacío, se usa un secreto aleatorio")
	}

	ctx := context.Background()
	db, err := openBackend(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar persistencia")
	}
	defer db.close()

	revoker, closeRevoker := tokenRevoker(ctx, cfg, log)
	defer closeRevoker()

	attachments, staticRoot, err := attachmentStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar almacenamiento de adjuntos")
	}

	invCfg := inventory.Config{
		DefaultMinStock:    decimal.NewFromFloat(cfg.Inventory.DefaultMinStock),
		AttachmentLocation: entity.SubWarehouse(cfg.Inventory.AttachmentLocation),
	}
	authUC := auth.NewAuthUseCase(db.users, db.tx, revoker, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	}, log)
	stockUC := inventory.NewStockUseCase(db.tx, attachments, invCfg, log)
	importUC := inventory.NewImportUseCase(db.tx, excel.NewProductReader(), invCfg, log)
	ledgerUC := inventory.NewLedgerUseCase(db.ingresses, db.egresses, db.products, db.users,
		inventory.NewDisplay(cfg.Inventory.DisplayOffsetHours))
	reportUC := usecase.NewReportUseCase(db.products, db.egresses, db.analytics, ledgerUC,
		map[string]usecase.ReportRenderer{
			usecase.FormatPDF:  infrapdf.NewReportRenderer(cfg.App.Name),
			usecase.FormatXLSX: excel.NewReportRenderer(cfg.App.Name),
		}, cfg.Inventory.TopN)

	app := httpRouter.NewApp(httpRouter.AppConfig{
		Name:        cfg.App.Name,
		Env:         cfg.App.Env,
		BodyLimitMB: cfg.HTTP.BodyLimitMB,
		SwaggerFile: cfg.HTTP.SwaggerFile,
		StaticRoot:  staticRoot,
	}, log)
	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:         authUC,
		ProductUC:      usecase.NewProductUseCase(db.products, db.egresses),
		StockUC:        stockUC,
		ImportUC:       importUC,
		ReportUC:       reportUC,
		SubWarehouseUC: usecase.NewSubWarehouseUseCase(invCfg.AttachmentLocation),
		UserUC:         usecase.NewUserUseCase(db.users, db.tx, log),
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

func openBackend(ctx context.Context, cfg *config.Config, log *logger.Logger) (*backend, error) {
	if cfg.Store.Driver == config.StoreDriverMemory {
		log.Warn().Msg("STORE_DRIVER=memory: los datos se pierden al reiniciar")
		store := memory.New()
		return &backend{
			products:  store.Products(),
			ingresses: store.Ingresses(),
			egresses:  store.Egresses(),
			users:     store.Users(),
			analytics: store.Analytics(),
			tx:        store,
			close:     func() {},
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	if cfg.DB.AutoMigrate {
		m, err := postgres.NewMigrator(pool, log)
		if err != nil {
			pool.Close()
			return nil, err
		}
		err = m.Up()
		_ = m.Close()
		if err != nil {
			pool.Close()
			return nil, err
		}
	}
	return &backend{
		products:  postgres.NewProductRepository(pool),
		ingresses: postgres.NewIngressRepository(pool),
		egresses:  postgres.NewEgressRepository(pool),
		users:     postgres.NewUserRepository(pool),
		analytics: postgres.NewAnalyticsRepository(pool),
		tx:        postgres.NewTxRunner(pool),
		close:     pool.Close,
	}, nil
}

// tokenRevoker usa Redis si REDIS_ADDR está definido; si no, la lista en memoria del proceso.
func tokenRevoker(ctx context.Context, cfg *config.Config, log *logger.Logger) (auth.TokenRevoker, func()) {
	if cfg.Redis.Addr == "" {
		return memory.NewTokenDenylist(), func() {}
	}
	client, err := infraredis.NewClient(ctx, cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a Redis")
	}
	return infraredis.NewTokenDenylist(client), func() { _ = client.Close() }
}

// attachmentStore devuelve el destino de las imágenes y la carpeta a servir en /static
// (vacía con S3).
func attachmentStore(ctx context.Context, cfg *config.Config) (inventory.AttachmentStore, string, error) {
	if cfg.Storage.Driver == config.StorageDriverS3 {
		s3, err := storage.NewS3Store(ctx, cfg.Storage)
		if err != nil {
			return nil, "", err
		}
		return s3, "", nil
	}
	local, err := storage.NewLocalStore(cfg.Storage.LocalRoot)
	if err != nil {
		return nil, "", err
	}
	return local, cfg.Storage.LocalRoot, nil
}
