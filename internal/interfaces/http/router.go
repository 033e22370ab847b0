package http

import (
	"os"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/inventario-sync/internal/application/usecase"
	"github.com/jhoicas/inventario-sync/pkg/jwt"
	"github.com/rs/zerolog"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Syncer      shopSyncer
	Runs        runLister
	Metrics     metricsRecomputer
	ProductUC   *usecase.ProductUseCase
	WarehouseUC *usecase.WarehouseUseCase
	JWTSecret   string
	SwaggerFile string
	Logger      zerolog.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	// Swagger UI: http://localhost:<port>/docs
	if deps.SwaggerFile != "" {
		if _, err := os.Stat(deps.SwaggerFile); err == nil {
			app.Use(swagger.New(swagger.Config{
				BasePath: "/",
				FilePath: deps.SwaggerFile,
				Path:     "docs",
				Title:    "Inventario Sync API",
			}))
		} else {
			deps.Logger.Info().Str("file", deps.SwaggerFile).Msg("swagger.json no generado; /docs deshabilitado")
		}
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))
	adminOnly := RequireRole(jwt.RoleAdmin)
	anyRole := RequireRole(jwt.RoleAdmin, jwt.RoleViewer)

	syncHandler := NewSyncHandler(deps.Syncer, deps.Runs, deps.Metrics, deps.Logger)
	api.Post("/sync", adminOnly, syncHandler.Sync)
	api.Get("/sync/runs", anyRole, syncHandler.ListRuns)
	api.Post("/metrics/recompute", adminOnly, syncHandler.RecomputeMetrics)

	if deps.ProductUC != nil {
		productHandler := NewProductHandler(deps.ProductUC)
		api.Get("/products", anyRole, productHandler.List)
		api.Get("/products/:id", anyRole, productHandler.GetByID)
	}

	if deps.WarehouseUC != nil {
		warehouseHandler := NewWarehouseHandler(deps.WarehouseUC)
		api.Get("/warehouses", anyRole, warehouseHandler.List)
	}
}
