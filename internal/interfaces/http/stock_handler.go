package http

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/erp-stock/internal/application/dto"
	"github.com/jhoicas/erp-stock/internal/application/inventory"
	"github.com/jhoicas/erp-stock/internal/application/orders"
	"github.com/jhoicas/erp-stock/internal/domain/entity"
	"github.com/jhoicas/erp-stock/internal/domain/repository"
	"github.com/jhoicas/erp-stock/pkg/logger"
)

// StockHandler movimientos, validación y reportes de stock (protegido).
type StockHandler struct {
	movements *inventory.MovementEngine
	orders    *orders.OrderUseCase
	critical  *inventory.CriticalStockReport
	log       *logger.Logger
}

// NewStockHandler construye el handler.
func NewStockHandler(movements *inventory.MovementEngine, orderUC *orders.OrderUseCase, critical *inventory.CriticalStockReport, log *logger.Logger) *StockHandler {
	return &StockHandler{movements: movements, orders: orderUC, critical: critical, log: log}
}

// Transfer godoc
// @Summary      Transferir stock entre sectores
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.TransferRequest  true  "ingredient_id, from_sector_id, to_sector_id, quantity"
// @Success      201   {object}  dto.MovementResult
// @Failure      400   {object}  dto.MovementResult
// @Failure      404   {object}  dto.MovementResult
// @Router       /api/stock/transfer [post]
func (h *StockHandler) Transfer(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return unauthorized(c)
	}
	var in dto.TransferRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	in.UserID = GetUserID(c)
	return h.result(c, h.movements.Transfer(c.UserContext(), tenantID, in))
}

// Entry godoc
// @Summary      Registrar entrada de compra
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.EntryRequest  true  "ingredient_id, sector_id, quantity, unit_cost opcional"
// @Success      201   {object}  dto.MovementResult
// @Failure      400   {object}  dto.MovementResult
// @Router       /api/stock/entry [post]
func (h *StockHandler) Entry(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return unauthorized(c)
	}
	var in dto.EntryRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	in.UserID = GetUserID(c)
	return h.result(c, h.movements.RegisterEntry(c.UserContext(), tenantID, in))
}

// Adjustment godoc
// @Summary      Ajuste por conteo físico
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AdjustmentRequest  true  "ingredient_id, sector_id, new_quantity"
// @Success      201   {object}  dto.MovementResult
// @Success      200   {object}  dto.MovementResult  "sin diferencia: no se registra movimiento"
// @Router       /api/stock/adjustment [post]
func (h *StockHandler) Adjustment(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return unauthorized(c)
	}
	var in dto.AdjustmentRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	in.UserID = GetUserID(c)
	return h.result(c, h.movements.RegisterAdjustment(c.UserContext(), tenantID, in))
}

func (h *StockHandler) result(c *fiber.Ctx, res dto.MovementResult) error {
	if !res.Success {
		status, _ := statusFor(res.Err)
		if status == fiber.StatusInternalServerError {
			h.log.Error().Err(res.Err).Str("path", c.Path()).Msg("movimiento de stock fallido")
		}
		return c.Status(status).JSON(res)
	}
	if res.Movement == nil {
		return c.JSON(res)
	}
	return c.Status(fiber.StatusCreated).JSON(res)
}

// Validate godoc
// @Summary      Validar disponibilidad de stock para una lista de ítems
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ValidateStockRequest  true  "items"
// @Success      200   {object}  dto.ValidateStockResponse
// @Router       /api/stock/validate [post]
func (h *StockHandler) Validate(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return unauthorized(c)
	}
	var in dto.ValidateStockRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	msgs, err := h.orders.Validate(c.UserContext(), tenantID, in.Items)
	if err != nil {
		return writeError(c, h.log, err)
	}
	if msgs == nil {
		msgs = []string{}
	}
	return c.JSON(dto.ValidateStockResponse{Valid: len(msgs) == 0, Errors: msgs})
}

// Critical godoc
// @Summary      Insumos por debajo del stock mínimo
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.CriticalStockItem
// @Router       /api/stock/critical [get]
func (h *StockHandler) Critical(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return unauthorized(c)
	}
	items, err := h.critical.Items(c.UserContext(), tenantID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	if items == nil {
		items = []dto.CriticalStockItem{}
	}
	return c.JSON(fiber.Map{"total": len(items), "items": items})
}

// CriticalPDF godoc
// @Summary      Reporte PDF de stock crítico
// @Tags         stock
// @Security     Bearer
// @Produce      application/pdf
// @Success      200  {file}  binary
// @Router       /api/stock/critical.pdf [get]
func (h *StockHandler) CriticalPDF(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return unauthorized(c)
	}
	out, err := h.critical.PDF(c.UserContext(), tenantID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="critical-stock.pdf"`)
	return c.Send(out)
}

// Movements godoc
// @Summary      Historial de movimientos
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        ingredient_id  query  string  false  "Filtrar por insumo"
// @Param        type           query  string  false  "ENTRY | EXIT | TRANSFER | ADJUSTMENT"
// @Param        from           query  string  false  "RFC3339"
// @Param        to             query  string  false  "RFC3339"
// @Param        limit          query  int     false  "Límite"  default(50)
// @Success      200  {object}  dto.MovementListResponse
// @Router       /api/stock/movements [get]
func (h *StockHandler) Movements(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return unauthorized(c)
	}
	filter := repository.MovementFilter{
		IngredientID: c.Query("ingredient_id"),
		Type:         entity.MovementType(strings.ToUpper(c.Query("type"))),
		Limit:        c.QueryInt("limit", 0),
	}
	for key, dst := range map[string]**time.Time{"from": &filter.From, "to": &filter.To} {
		raw := c.Query(key)
		if raw == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "'" + key + "' must be RFC3339"})
		}
		*dst = &t
	}
	items, err := h.movements.ListMovements(c.UserContext(), tenantID, filter)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.MovementListResponse{Items: items})
}
