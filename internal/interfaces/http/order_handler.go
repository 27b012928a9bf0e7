package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/erp-stock/internal/application/dto"
	"github.com/jhoicas/erp-stock/internal/application/inventory"
	"github.com/jhoicas/erp-stock/internal/application/orders"
	"github.com/jhoicas/erp-stock/pkg/logger"
)

// OrderHandler pedidos (POS), citas (salón) y operaciones manuales de descuento (protegido).
type OrderHandler struct {
	uc     *orders.OrderUseCase
	engine *inventory.DeductionEngine
	log    *logger.Logger
}

// NewOrderHandler construye el handler.
func NewOrderHandler(uc *orders.OrderUseCase, engine *inventory.DeductionEngine, log *logger.Logger) *OrderHandler {
	return &OrderHandler{uc: uc, engine: engine, log: log}
}

// Create godoc
// @Summary      Crear pedido y descontar stock
// @Description  Valida disponibilidad, crea el pedido y descuenta. Si el descuento falla el pedido queda CANCELLED.
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateOrderRequest  true  "source, items"
// @Success      201   {object}  dto.OrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/orders [post]
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return unauthorized(c)
	}
	var in dto.CreateOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.CreateOrder(c.UserContext(), tenantID, in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Get godoc
// @Summary      Obtener pedido
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del pedido"
// @Success      200  {object}  dto.OrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id} [get]
func (h *OrderHandler) Get(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return unauthorized(c)
	}
	out, err := h.uc.Get(c.UserContext(), tenantID, c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Cancel godoc
// @Summary      Cancelar pedido y revertir stock
// @Tags         orders
// @Security     Bearer
// @Param        id   path  string  true  "ID del pedido"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/cancel [post]
func (h *OrderHandler) Cancel(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return unauthorized(c)
	}
	if err := h.uc.CancelOrder(c.UserContext(), tenantID, c.Params("id")); err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"message": "order cancelled"})
}

// UpdateStatus godoc
// @Summary      Cambiar estado del pedido
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Param        id    path  string                        true  "ID del pedido"
// @Param        body  body  dto.UpdateOrderStatusRequest  true  "OPEN | PAID | COMPLETED | CANCELLED"
// @Success      200   {object}  map[string]string
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/status [put]
func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return unauthorized(c)
	}
	var in dto.UpdateOrderStatusRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if err := h.uc.UpdateStatus(c.UserContext(), tenantID, c.Params("id"), in.Status); err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"message": "status updated"})
}

// Deduct godoc
// @Summary      Descontar stock de un pedido existente
// @Description  Idempotente: un segundo intento responde 400 (ALREADY_PROCESSED) sin tocar saldos.
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del pedido"
// @Success      200  {object}  dto.DeductionResult
// @Failure      400  {object}  dto.DeductionResult
// @Router       /api/orders/{id}/deduct [post]
func (h *OrderHandler) Deduct(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return unauthorized(c)
	}
	res := h.engine.DeductByOrder(c.UserContext(), tenantID, c.Params("id"))
	if !res.Success {
		status, _ := statusFor(res.Err)
		return c.Status(status).JSON(res)
	}
	return c.JSON(res)
}

// Restore godoc
// @Summary      Revertir el stock descontado de un pedido
// @Tags         orders
// @Security     Bearer
// @Param        id   path  string  true  "ID del pedido"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/restore [post]
func (h *OrderHandler) Restore(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return unauthorized(c)
	}
	if err := h.engine.RestoreStockByOrder(c.UserContext(), tenantID, c.Params("id")); err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"message": "stock restored"})
}

// CompleteAppointment godoc
// @Summary      Registrar cita realizada
// @Description  Crea un pedido SALON del servicio, descuenta sus requisitos y lo deja COMPLETED.
// @Tags         appointments
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CompleteAppointmentRequest  true  "service_id"
// @Success      201   {object}  dto.OrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/appointments/complete [post]
func (h *OrderHandler) CompleteAppointment(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return unauthorized(c)
	}
	var in dto.CompleteAppointmentRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.CompleteAppointment(c.UserContext(), tenantID, in.ServiceID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}
