// Package orders orquesta pedidos de restaurante y citas de salón contra el motor de stock:
// validar → crear pedido → descontar → si falla, cancelar; y cancelar → revertir.
package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/erp-stock/internal/application/dto"
	"github.com/jhoicas/erp-stock/internal/application/inventory"
	"github.com/jhoicas/erp-stock/internal/domain"
	"github.com/jhoicas/erp-stock/internal/domain/entity"
	"github.com/jhoicas/erp-stock/pkg/logger"
)

// StockEngine lo que la orquestación necesita del motor de descuento.
type StockEngine interface {
	CheckAvailability(ctx context.Context, tenantID string, items []entity.OrderItem) ([]string, error)
	DeductByOrder(ctx context.Context, tenantID, orderID string) dto.DeductionResult
	RestoreStockByOrder(ctx context.Context, tenantID, orderID string) error
}

// StockError errores de stock que impidieron crear o completar un pedido.
type StockError struct {
	Errors []string
	Err    error
}

func (e *StockError) Error() string { return strings.Join(e.Errors, "; ") }
func (e *StockError) Unwrap() error { return e.Err }

// OrderUseCase casos de uso de pedidos y citas.
type OrderUseCase struct {
	txRunner inventory.TxRunner
	reader   inventory.Repos
	stock    StockEngine
	log      *logger.Logger
}

// NewOrderUseCase construye el caso de uso.
func NewOrderUseCase(txRunner inventory.TxRunner, reader inventory.Repos, stock StockEngine, log *logger.Logger) *OrderUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &OrderUseCase{txRunner: txRunner, reader: reader, stock: stock, log: log}
}

// Validate comprueba disponibilidad para una lista de ítems sin crear nada.
func (uc *OrderUseCase) Validate(ctx context.Context, tenantID string, in []dto.OrderItemRequest) ([]string, error) {
	items, err := uc.loadItems(ctx, tenantID, in)
	if err != nil {
		return nil, err
	}
	return uc.stock.CheckAvailability(ctx, tenantID, items)
}

// CreateOrder valida stock, crea el pedido (OPEN) y descuenta de inmediato.
// Si el descuento falla el pedido queda CANCELLED y se devuelve *StockError.
func (uc *OrderUseCase) CreateOrder(ctx context.Context, tenantID string, in dto.CreateOrderRequest) (*dto.OrderResponse, error) {
	source := strings.ToUpper(strings.TrimSpace(in.Source))
	if source == "" {
		source = entity.OrderSourcePOS
	}
	if source != entity.OrderSourcePOS && source != entity.OrderSourceSalon {
		return nil, fmt.Errorf("%w: unknown order source %q", domain.ErrInvalidInput, in.Source)
	}

	items, err := uc.loadItems(ctx, tenantID, in.Items)
	if err != nil {
		return nil, err
	}
	msgs, err := uc.stock.CheckAvailability(ctx, tenantID, items)
	if err != nil {
		return nil, &StockError{Errors: []string{inventory.Message(err)}, Err: domain.ErrTransactionFailure}
	}
	if len(msgs) > 0 {
		return nil, &StockError{Errors: msgs, Err: domain.ErrInsufficientStock}
	}

	now := time.Now()
	order := &entity.Order{
		ID:        uuid.New().String(),
		TenantID:  tenantID,
		Source:    source,
		Status:    entity.OrderStatusOpen,
		Items:     items,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.txRunner.Run(ctx, func(r inventory.Repos) error {
		return r.Orders.Create(ctx, order)
	}); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	res := uc.stock.DeductByOrder(ctx, tenantID, order.ID)
	if !res.Success {
		// Compensación: el pedido no puede quedar abierto sin stock descontado.
		if err := uc.reader.Orders.UpdateStatus(ctx, tenantID, order.ID, entity.OrderStatusCancelled); err != nil {
			uc.log.Error().Err(err).Str("order_id", order.ID).Msg("no se pudo cancelar el pedido tras fallar el descuento")
		}
		uc.log.Warn().
			Str("tenant_id", tenantID).
			Str("order_id", order.ID).
			Int64("order_number", order.Number).
			Strs("errors", res.Errors).
			Msg("pedido cancelado: descuento de stock fallido")
		return nil, &StockError{Errors: res.Errors, Err: res.Err}
	}

	resp := toOrderResponse(order)
	resp.Deductions = res.Deductions
	return resp, nil
}

// CompleteAppointment registra una cita realizada: crea un pedido SALON de un servicio,
// descuenta sus requisitos y lo deja COMPLETED.
func (uc *OrderUseCase) CompleteAppointment(ctx context.Context, tenantID, serviceID string) (*dto.OrderResponse, error) {
	sellables, err := uc.reader.Orders.GetSellables(ctx, tenantID, []string{serviceID})
	if err != nil {
		return nil, err
	}
	svc, ok := sellables[serviceID]
	if !ok {
		return nil, fmt.Errorf("%w: service %s not found", domain.ErrNotFound, serviceID)
	}
	if svc.Kind != entity.SellableKindService {
		return nil, fmt.Errorf("%w: %s is not a service", domain.ErrInvalidInput, svc.Name)
	}

	resp, err := uc.CreateOrder(ctx, tenantID, dto.CreateOrderRequest{
		Source: entity.OrderSourceSalon,
		Items:  []dto.OrderItemRequest{{SellableID: serviceID, Quantity: one}},
	})
	if err != nil {
		return nil, err
	}
	if err := uc.reader.Orders.UpdateStatus(ctx, tenantID, resp.ID, entity.OrderStatusCompleted); err != nil {
		return nil, err
	}
	resp.Status = entity.OrderStatusCompleted
	return resp, nil
}

// UpdateStatus cambia el estado del pedido. Pasar a CANCELLED revierte el stock descontado antes
// de cambiar el estado; un pedido cancelado no vuelve a otro estado.
func (uc *OrderUseCase) UpdateStatus(ctx context.Context, tenantID, orderID, status string) error {
	status = strings.ToUpper(strings.TrimSpace(status))
	switch status {
	case entity.OrderStatusOpen, entity.OrderStatusPaid, entity.OrderStatusCompleted, entity.OrderStatusCancelled:
	default:
		return fmt.Errorf("%w: unknown status %q", domain.ErrInvalidInput, status)
	}

	order, err := uc.reader.Orders.GetWithRequirements(ctx, tenantID, orderID)
	if err != nil {
		return err
	}
	if order == nil {
		return fmt.Errorf("%w: order not found", domain.ErrNotFound)
	}
	if order.Status == status {
		return nil
	}
	if order.Status == entity.OrderStatusCancelled {
		return fmt.Errorf("%w: order #%d is cancelled", domain.ErrConflict, order.Number)
	}

	if status == entity.OrderStatusCancelled {
		if err := uc.stock.RestoreStockByOrder(ctx, tenantID, orderID); err != nil {
			return err
		}
	}
	return uc.reader.Orders.UpdateStatus(ctx, tenantID, orderID, status)
}

// CancelOrder atajo de UpdateStatus(CANCELLED).
func (uc *OrderUseCase) CancelOrder(ctx context.Context, tenantID, orderID string) error {
	return uc.UpdateStatus(ctx, tenantID, orderID, entity.OrderStatusCancelled)
}

// Get devuelve el pedido o domain.ErrNotFound.
func (uc *OrderUseCase) Get(ctx context.Context, tenantID, orderID string) (*dto.OrderResponse, error) {
	order, err := uc.reader.Orders.GetWithRequirements(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, fmt.Errorf("%w: order not found", domain.ErrNotFound)
	}
	return toOrderResponse(order), nil
}

// loadItems valida las líneas y carga los ítems vendibles activos con sus recetas.
func (uc *OrderUseCase) loadItems(ctx context.Context, tenantID string, in []dto.OrderItemRequest) ([]entity.OrderItem, error) {
	if len(in) == 0 {
		return nil, fmt.Errorf("%w: at least one item is required", domain.ErrInvalidInput)
	}
	ids := make([]string, 0, len(in))
	seen := map[string]bool{}
	for _, it := range in {
		if it.SellableID == "" {
			return nil, fmt.Errorf("%w: sellable_id is required", domain.ErrInvalidInput)
		}
		if !it.Quantity.IsPositive() {
			return nil, fmt.Errorf("%w: quantity must be greater than zero", domain.ErrInvalidInput)
		}
		if !seen[it.SellableID] {
			seen[it.SellableID] = true
			ids = append(ids, it.SellableID)
		}
	}

	sellables, err := uc.reader.Orders.GetSellables(ctx, tenantID, ids)
	if err != nil {
		return nil, err
	}
	items := make([]entity.OrderItem, 0, len(in))
	var missing []string
	for _, it := range in {
		s, ok := sellables[it.SellableID]
		if !ok {
			missing = append(missing, it.SellableID)
			continue
		}
		items = append(items, entity.OrderItem{SellableID: it.SellableID, Sellable: s, Quantity: it.Quantity})
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: products not found: %s", domain.ErrNotFound, strings.Join(missing, ", "))
	}
	return items, nil
}

// IsStockError indica si err corresponde a un rechazo por stock (400 para el cliente).
func IsStockError(err error) (*StockError, bool) {
	var se *StockError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

func toOrderResponse(o *entity.Order) *dto.OrderResponse {
	resp := &dto.OrderResponse{
		ID:        o.ID,
		Number:    o.Number,
		Source:    o.Source,
		Status:    o.Status,
		Items:     make([]dto.OrderItemRequest, 0, len(o.Items)),
		CreatedAt: o.CreatedAt,
	}
	for _, it := range o.Items {
		resp.Items = append(resp.Items, dto.OrderItemRequest{SellableID: it.SellableID, Quantity: it.Quantity})
	}
	return resp
}

var one = decimal.NewFromInt(1)
