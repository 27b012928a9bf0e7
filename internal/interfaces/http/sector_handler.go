package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/erp-stock/internal/application/dto"
	"github.com/jhoicas/erp-stock/internal/application/usecase"
	"github.com/jhoicas/erp-stock/pkg/logger"
)

// SectorHandler maneja las peticiones HTTP de sectores de almacenamiento (protegido).
type SectorHandler struct {
	uc  *usecase.SectorUseCase
	log *logger.Logger
}

// NewSectorHandler construye el handler.
func NewSectorHandler(uc *usecase.SectorUseCase, log *logger.Logger) *SectorHandler {
	return &SectorHandler{uc: uc, log: log}
}

// Create godoc
// @Summary      Crear sector
// @Tags         sectors
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateSectorRequest  true  "Datos del sector"
// @Success      201   {object}  dto.SectorResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/sectors [post]
func (h *SectorHandler) Create(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return unauthorized(c)
	}
	var in dto.CreateSectorRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Create(c.UserContext(), tenantID, in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener sector con sus saldos
// @Tags         sectors
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del sector"
// @Success      200  {object}  dto.SectorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sectors/{id} [get]
func (h *SectorHandler) GetByID(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return unauthorized(c)
	}
	out, err := h.uc.GetByID(c.UserContext(), tenantID, c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	if out == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "sector not found"})
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar sectores (central primero)
// @Tags         sectors
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.SectorResponse
// @Router       /api/sectors [get]
func (h *SectorHandler) List(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return unauthorized(c)
	}
	out, err := h.uc.List(c.UserContext(), tenantID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	if out == nil {
		out = []dto.SectorResponse{}
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Renombrar o describir un sector
// @Tags         sectors
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                   true  "ID del sector"
// @Param        body  body  dto.UpdateSectorRequest  true  "name y/o description"
// @Success      200   {object}  dto.SectorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/sectors/{id} [put]
func (h *SectorHandler) Update(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return unauthorized(c)
	}
	var in dto.UpdateSectorRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Update(c.UserContext(), tenantID, c.Params("id"), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	if out == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "sector not found"})
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar sector
// @Description  Mueve sus saldos y productos al almacén central. El central no se puede eliminar.
// @Tags         sectors
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del sector"
// @Success      200  {object}  dto.DeleteSectorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/sectors/{id} [delete]
func (h *SectorHandler) Delete(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return unauthorized(c)
	}
	out, err := h.uc.Delete(c.UserContext(), tenantID, c.Params("id"), GetUserID(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}
