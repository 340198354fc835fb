package http

import (
	"os"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/jhoicas/almacen-api/internal/application/auth"
	"github.com/jhoicas/almacen-api/internal/application/inventory"
	"github.com/jhoicas/almacen-api/internal/application/usecase"
	"github.com/jhoicas/almacen-api/pkg/logger"
)

// AppConfig parámetros del servidor Fiber.
type AppConfig struct {
	Name        string
	Env         string
	BodyLimitMB int
	SwaggerFile string // vacío o inexistente: sin /docs
	StaticRoot  string // carpeta de adjuntos servida en /static; vacío: no se sirve
}

// NewApp crea la aplicación Fiber con el manejador de errores y los middlewares comunes.
func NewApp(cfg AppConfig, log *logger.Logger) *fiber.App {
	bodyLimit := cfg.BodyLimitMB
	if bodyLimit <= 0 {
		bodyLimit = 16
	}
	app := fiber.New(fiber.Config{
		AppName:      cfg.Name,
		ErrorHandler: NewErrorHandler(log),
		BodyLimit:    bodyLimit * 1024 * 1024,
		ReadTimeout:  time.Second * 30,
		WriteTimeout: time.Second * 60,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(helmet.New(helmet.Config{CrossOriginResourcePolicy: "cross-origin"}))
	if cfg.Env == "development" {
		app.Use(fiberlogger.New(fiberlogger.Config{
			Format: "${time} ${locals:requestid} ${status} ${method} ${path} ${latency}\n",
		}))
	}

	if cfg.SwaggerFile != "" {
		if _, err := os.Stat(cfg.SwaggerFile); err == nil {
			// Swagger UI: http://localhost:<port>/docs
			app.Use(swagger.New(swagger.Config{
				BasePath: "/",
				FilePath: cfg.SwaggerFile,
				Path:     "docs",
				Title:    "Almacén SCPE API",
			}))
		} else {
			log.Warn().Str("file", cfg.SwaggerFile).Msg("swagger no disponible")
		}
	}
	if cfg.StaticRoot != "" {
		app.Static("/static", cfg.StaticRoot, fiber.Static{Browse: false})
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.Name})
	})
	return app
}

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC         *auth.AuthUseCase
	ProductUC      *usecase.ProductUseCase
	StockUC        *inventory.StockUseCase
	ImportUC       *inventory.ImportUseCase
	ReportUC       *usecase.ReportUseCase
	SubWarehouseUC *usecase.SubWarehouseUseCase
	UserUC         *usecase.UserUseCase
	LoginLimit     int // intentos de login por minuto e IP; 0 usa 20
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	validate := NewValidator()
	api := app.Group("/api")

	loginLimit := deps.LoginLimit
	if loginLimit <= 0 {
		loginLimit = 20
	}

	// Auth (público; register reconoce al admin si trae token)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC, validate)
	authGroup.Post("/register", OptionalAuth(deps.AuthUC), authHandler.Register)
	authGroup.Post("/login", limiter.New(limiter.Config{Max: loginLimit, Expiration: time.Minute}), authHandler.Login)
	authGroup.Post("/logout", AuthMiddleware(deps.AuthUC), authHandler.Logout)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("", AuthMiddleware(deps.AuthUC))
	admin := RequireAdmin()

	// Products
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC, deps.StockUC, deps.ImportUC, validate)
	products.Get("/", productHandler.List)
	products.Post("/import", admin, productHandler.Import)
	products.Get("/:id", productHandler.GetByID)
	products.Post("/", admin, productHandler.Create)
	products.Put("/:id", admin, productHandler.Update)
	products.Delete("/:id", admin, productHandler.Delete)

	// Egresses
	egresses := protected.Group("/egresses")
	egressHandler := NewEgressHandler(deps.ProductUC, deps.StockUC, validate)
	egresses.Post("/", egressHandler.Register)
	egresses.Get("/:id", egressHandler.GetByID)
	egresses.Put("/:id", admin, egressHandler.Update)
	egresses.Delete("/:id", admin, egressHandler.Delete)

	// Ledger y reportes
	reportHandler := NewReportHandler(deps.ReportUC)
	protected.Get("/ledger", reportHandler.Ledger)
	protected.Get("/ledger/export", admin, reportHandler.LedgerExport)

	reports := protected.Group("/reports", admin)
	reports.Get("/low-stock", reportHandler.LowStock)
	reports.Get("/ingresses", reportHandler.Ingresses)
	reports.Get("/egresses-by-requester", reportHandler.EgressesByRequester)
	reports.Get("/egresses-by-product", reportHandler.EgressesByProduct)
	reports.Get("/top-stocked", reportHandler.TopStocked)
	reports.Get("/top-consumed", reportHandler.TopConsumed)
	reports.Get("/valuation", reportHandler.Valuation)
	reports.Get("/:name/export", reportHandler.Export)

	// Sub-warehouses
	subHandler := NewSubWarehouseHandler(deps.SubWarehouseUC)
	protected.Get("/sub-warehouses", subHandler.List)

	// Users (admin)
	users := protected.Group("/users", admin)
	userHandler := NewUserHandler(deps.UserUC, validate)
	users.Get("/", userHandler.List)
	users.Post("/", userHandler.Create)
	users.Put("/:id", userHandler.Update)
	users.Delete("/:id", userHandler.Delete)
}
