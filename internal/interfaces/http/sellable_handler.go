package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/erp-stock/internal/application/dto"
	"github.com/jhoicas/erp-stock/internal/application/usecase"
	"github.com/jhoicas/erp-stock/pkg/logger"
)

// SellableHandler alta de productos y servicios con receta (protegido).
type SellableHandler struct {
	uc  *usecase.SellableUseCase
	log *logger.Logger
}

// NewSellableHandler construye el handler.
func NewSellableHandler(uc *usecase.SellableUseCase, log *logger.Logger) *SellableHandler {
	return &SellableHandler{uc: uc, log: log}
}

// Create godoc
// @Summary      Crear producto o servicio con receta
// @Tags         sellables
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateSellableRequest  true  "kind (PRODUCT|SERVICE), name, sector_id, requirements"
// @Success      201   {object}  dto.SellableResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/sellables [post]
func (h *SellableHandler) Create(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return unauthorized(c)
	}
	var in dto.CreateSellableRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Create(c.UserContext(), tenantID, in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}
