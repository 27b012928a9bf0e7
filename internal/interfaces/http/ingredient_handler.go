package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/erp-stock/internal/application/dto"
	"github.com/jhoicas/erp-stock/internal/application/usecase"
	"github.com/jhoicas/erp-stock/pkg/logger"
)

// IngredientHandler insumos y catálogo de unidades (protegido).
type IngredientHandler struct {
	uc  *usecase.IngredientUseCase
	log *logger.Logger
}

// NewIngredientHandler construye el handler.
func NewIngredientHandler(uc *usecase.IngredientUseCase, log *logger.Logger) *IngredientHandler {
	return &IngredientHandler{uc: uc, log: log}
}

// Create godoc
// @Summary      Crear insumo
// @Tags         ingredients
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateIngredientRequest  true  "name, unit (kg|g|L|ml|un), cost_price, min_stock"
// @Success      201   {object}  dto.IngredientResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/ingredients [post]
func (h *IngredientHandler) Create(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return unauthorized(c)
	}
	var in dto.CreateIngredientRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Create(c.UserContext(), tenantID, in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar insumos activos
// @Tags         ingredients
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.IngredientResponse
// @Router       /api/ingredients [get]
func (h *IngredientHandler) List(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return unauthorized(c)
	}
	out, err := h.uc.List(c.UserContext(), tenantID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Stock godoc
// @Summary      Saldos de un insumo por sector
// @Tags         ingredients
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del insumo"
// @Success      200  {object}  dto.IngredientStockResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/ingredients/{id}/stock [get]
func (h *IngredientHandler) Stock(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return unauthorized(c)
	}
	out, err := h.uc.Stock(c.UserContext(), tenantID, c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Deactivate godoc
// @Summary      Desactivar insumo
// @Tags         ingredients
// @Security     Bearer
// @Param        id   path  string  true  "ID del insumo"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/ingredients/{id} [delete]
func (h *IngredientHandler) Deactivate(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return unauthorized(c)
	}
	if err := h.uc.Deactivate(c.UserContext(), tenantID, c.Params("id")); err != nil {
		return writeError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Units catálogo de unidades (público dentro de la API protegida, sin tenant).
func (h *IngredientHandler) Units(c *fiber.Ctx) error {
	return c.JSON(h.uc.Units())
}
