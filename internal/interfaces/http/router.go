package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/erp-stock/internal/application/inventory"
	"github.com/jhoicas/erp-stock/internal/application/orders"
	"github.com/jhoicas/erp-stock/internal/application/usecase"
	"github.com/jhoicas/erp-stock/pkg/logger"
)

// Roles emitidos por el servicio de autenticación.
const (
	RoleAdmin   = "admin"
	RoleStock   = "stock"
	RoleCashier = "cashier"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Movements    *inventory.MovementEngine
	Deductions   *inventory.DeductionEngine
	Critical     *inventory.CriticalStockReport
	SectorUC     *usecase.SectorUseCase
	IngredientUC *usecase.IngredientUseCase
	SellableUC   *usecase.SellableUseCase
	OrderUC      *orders.OrderUseCase
	JWTSecret    string
	Log          *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}

	app.Use(AccessLog(log))

	// Rutas protegidas (requieren Bearer Token)
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))
	manage := RequireRole(RoleAdmin, RoleStock)

	// Stock
	stock := api.Group("/stock")
	stockHandler := NewStockHandler(deps.Movements, deps.OrderUC, deps.Critical, log)
	stock.Post("/transfer", manage, stockHandler.Transfer)
	stock.Post("/entry", manage, stockHandler.Entry)
	stock.Post("/adjustment", manage, stockHandler.Adjustment)
	stock.Post("/validate", stockHandler.Validate)
	stock.Get("/critical", stockHandler.Critical)
	stock.Get("/critical.pdf", stockHandler.CriticalPDF)
	stock.Get("/movements", stockHandler.Movements)

	// Sectores
	sectors := api.Group("/sectors")
	sectorHandler := NewSectorHandler(deps.SectorUC, log)
	sectors.Get("/", sectorHandler.List)
	sectors.Get("/:id", sectorHandler.GetByID)
	sectors.Post("/", manage, sectorHandler.Create)
	sectors.Put("/:id", manage, sectorHandler.Update)
	sectors.Delete("/:id", RequireRole(RoleAdmin), sectorHandler.Delete)

	// Insumos
	ingredients := api.Group("/ingredients")
	ingredientHandler := NewIngredientHandler(deps.IngredientUC, log)
	ingredients.Get("/", ingredientHandler.List)
	ingredients.Get("/units", ingredientHandler.Units)
	ingredients.Get("/:id/stock", ingredientHandler.Stock)
	ingredients.Post("/", manage, ingredientHandler.Create)
	ingredients.Delete("/:id", manage, ingredientHandler.Deactivate)

	// Productos y servicios
	sellableHandler := NewSellableHandler(deps.SellableUC, log)
	api.Post("/sellables", manage, sellableHandler.Create)

	// Pedidos y citas
	orderHandler := NewOrderHandler(deps.OrderUC, deps.Deductions, log)
	ordersGroup := api.Group("/orders")
	ordersGroup.Post("/", orderHandler.Create)
	ordersGroup.Get("/:id", orderHandler.Get)
	ordersGroup.Post("/:id/cancel", orderHandler.Cancel)
	ordersGroup.Put("/:id/status", orderHandler.UpdateStatus)
	ordersGroup.Post("/:id/deduct", manage, orderHandler.Deduct)
	ordersGroup.Post("/:id/restore", manage, orderHandler.Restore)
	api.Post("/appointments/complete", orderHandler.CompleteAppointment)
}
