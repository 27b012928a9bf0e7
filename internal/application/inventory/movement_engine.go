package inventory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/erp-stock/internal/application/dto"
	"github.com/jhoicas/erp-stock/internal/domain"
	"github.com/jhoicas/erp-stock/internal/domain/entity"
	"github.com/jhoicas/erp-stock/internal/domain/inventory"
	"github.com/jhoicas/erp-stock/internal/domain/repository"
	"github.com/jhoicas/erp-stock/pkg/logger"
)

const (
	defaultMovementLimit = 50
	maxMovementLimit     = 200
)

// MovementEngine operaciones manuales sobre el libro de stock: transferencia, entrada y ajuste.
// Cada operación corre en una única transacción con bloqueo de fila (SELECT FOR UPDATE).
// Los fallos esperados no se devuelven como error sino como MovementResult{Success: false}.
type MovementEngine struct {
	txRunner  TxRunner
	reader    Repos
	publisher MovementPublisher
	log       *logger.Logger
	now       func() time.Time
}

// NewMovementEngine construye el motor. reader se usa para lecturas fuera de transacción;
// publisher puede ser nil.
func NewMovementEngine(txRunner TxRunner, reader Repos, publisher MovementPublisher, log *logger.Logger) *MovementEngine {
	if log == nil {
		log = logger.Nop()
	}
	return &MovementEngine{
		txRunner:  txRunner,
		reader:    reader,
		publisher: publisher,
		log:       log,
		now:       time.Now,
	}
}

// Transfer mueve cantidad de un insumo entre dos sectores del tenant.
func (e *MovementEngine) Transfer(ctx context.Context, tenantID string, in dto.TransferRequest) dto.MovementResult {
	if in.IngredientID == "" || in.FromSectorID == "" || in.ToSectorID == "" {
		return e.failure(fail(domain.ErrInvalidInput, "ingredient_id, from_sector_id and to_sector_id are required"))
	}
	if !in.Quantity.IsPositive() {
		return e.failure(fail(domain.ErrInvalidInput, "quantity must be greater than zero"))
	}
	if in.FromSectorID == in.ToSectorID {
		return e.failure(fail(domain.ErrInvalidInput, "source and destination sectors must be different"))
	}

	var (
		mov      *entity.StockMovement
		ing      *entity.Ingredient
		from, to *entity.Sector
	)
	err := e.txRunner.Run(ctx, func(r Repos) error {
		var err error
		if ing, err = mustIngredient(ctx, r, tenantID, in.IngredientID); err != nil {
			return err
		}
		if from, err = mustSector(ctx, r, tenantID, in.FromSectorID, "source sector"); err != nil {
			return err
		}
		if to, err = mustSector(ctx, r, tenantID, in.ToSectorID, "destination sector"); err != nil {
			return err
		}

		// Bloquear ambas filas en orden de sector para no cruzarse con una transferencia inversa.
		locked := map[string]*entity.StockBalance{}
		ids := []string{from.ID, to.ID}
		sort.Strings(ids)
		for _, id := range ids {
			b, err := r.Balances.GetForUpdate(ctx, tenantID, ing.ID, id)
			if err != nil {
				return fmt.Errorf("lock balance: %w", err)
			}
			locked[id] = b
		}

		available := locked[from.ID].Quantity
		if available.LessThan(in.Quantity) {
			return fail(domain.ErrInsufficientStock, "insufficient stock in %s: available %s %s, requested %s",
				from.Name, available.StringFixed(3), ing.Unit, in.Quantity.StringFixed(3))
		}

		if err := r.Balances.AddQuantity(ctx, tenantID, ing.ID, from.ID, in.Quantity.Neg()); err != nil {
			return err
		}
		if err := r.Balances.AddQuantity(ctx, tenantID, ing.ID, to.ID, in.Quantity); err != nil {
			return err
		}

		reason := in.Reason
		if reason == "" {
			reason = fmt.Sprintf("Transfer: %s → %s", from.Name, to.Name)
		}
		mov = e.newMovement(tenantID, ing.ID, entity.MovementTypeTransfer, in.Quantity, reason, in.UserID)
		mov.FromSectorID = from.ID
		mov.ToSectorID = to.ID
		return r.Movements.Create(ctx, mov)
	})
	if err != nil {
		return e.failure(err)
	}

	e.publish(ctx, mov)
	return dto.MovementResult{
		Success:  true,
		Message:  fmt.Sprintf("Transferred %s %s of %s from %s to %s", in.Quantity.StringFixed(3), ing.Unit, ing.Name, from.Name, to.Name),
		Movement: ToMovementDTO(mov),
	}
}

// RegisterEntry suma stock en un sector (compra o carga inicial). No valida suficiencia.
// Si UnitCost viene informado, actualiza el costo promedio ponderado del insumo.
func (e *MovementEngine) RegisterEntry(ctx context.Context, tenantID string, in dto.EntryRequest) dto.MovementResult {
	if in.IngredientID == "" || in.SectorID == "" {
		return e.failure(fail(domain.ErrInvalidInput, "ingredient_id and sector_id are required"))
	}
	if !in.Quantity.IsPositive() {
		return e.failure(fail(domain.ErrInvalidInput, "quantity must be greater than zero"))
	}
	if in.UnitCost != nil && in.UnitCost.IsNegative() {
		return e.failure(fail(domain.ErrInvalidInput, "unit_cost cannot be negative"))
	}

	var (
		mov    *entity.StockMovement
		ing    *entity.Ingredient
		sector *entity.Sector
	)
	err := e.txRunner.Run(ctx, func(r Repos) error {
		var err error
		if ing, err = mustIngredient(ctx, r, tenantID, in.IngredientID); err != nil {
			return err
		}
		if sector, err = mustSector(ctx, r, tenantID, in.SectorID, "sector"); err != nil {
			return err
		}

		if in.UnitCost != nil {
			// Promedio ponderado sobre el stock total bloqueado del insumo.
			balances, err := r.Balances.ListByIngredientForUpdate(ctx, tenantID, ing.ID)
			if err != nil {
				return fmt.Errorf("lock balances: %w", err)
			}
			total := decimal.Zero
			for _, b := range balances {
				total = total.Add(b.Quantity)
			}
			newCost := inventory.CostCalculator(total, ing.CostPrice, in.Quantity, *in.UnitCost)
			if err := r.Ingredients.UpdateCost(ctx, tenantID, ing.ID, newCost); err != nil {
				return err
			}
		}

		if err := r.Balances.AddQuantity(ctx, tenantID, ing.ID, sector.ID, in.Quantity); err != nil {
			return err
		}

		reason := in.Reason
		if reason == "" {
			reason = "Purchase entry"
		}
		mov = e.newMovement(tenantID, ing.ID, entity.MovementTypeEntry, in.Quantity, reason, in.UserID)
		mov.ToSectorID = sector.ID
		return r.Movements.Create(ctx, mov)
	})
	if err != nil {
		return e.failure(err)
	}

	e.publish(ctx, mov)
	return dto.MovementResult{
		Success:  true,
		Message:  fmt.Sprintf("Entry of %s %s of %s registered in %s", in.Quantity.StringFixed(3), ing.Unit, ing.Name, sector.Name),
		Movement: ToMovementDTO(mov),
	}
}

// RegisterAdjustment fija el saldo de un sector a NewQuantity (conteo físico).
// Si no hay diferencia no se registra movimiento.
func (e *MovementEngine) RegisterAdjustment(ctx context.Context, tenantID string, in dto.AdjustmentRequest) dto.MovementResult {
	if in.IngredientID == "" || in.SectorID == "" {
		return e.failure(fail(domain.ErrInvalidInput, "ingredient_id and sector_id are required"))
	}
	if in.NewQuantity.IsNegative() {
		return e.failure(fail(domain.ErrInvalidInput, "new_quantity cannot be negative"))
	}

	var (
		mov     *entity.StockMovement
		ing     *entity.Ingredient
		sector  *entity.Sector
		current decimal.Decimal
	)
	err := e.txRunner.Run(ctx, func(r Repos) error {
		var err error
		if ing, err = mustIngredient(ctx, r, tenantID, in.IngredientID); err != nil {
			return err
		}
		if sector, err = mustSector(ctx, r, tenantID, in.SectorID, "sector"); err != nil {
			return err
		}

		b, err := r.Balances.GetForUpdate(ctx, tenantID, ing.ID, sector.ID)
		if err != nil {
			return fmt.Errorf("lock balance: %w", err)
		}
		current = b.Quantity
		diff := in.NewQuantity.Sub(current)
		if diff.IsZero() {
			return nil
		}

		if err := r.Balances.SetQuantity(ctx, tenantID, ing.ID, sector.ID, in.NewQuantity); err != nil {
			return err
		}

		reason := in.Reason
		if reason == "" {
			reason = "Inventory adjustment"
		}
		mov = e.newMovement(tenantID, ing.ID, entity.MovementTypeAdjustment, diff.Abs(), reason, in.UserID)
		if diff.IsNegative() {
			mov.FromSectorID = sector.ID
		} else {
			mov.ToSectorID = sector.ID
		}
		return r.Movements.Create(ctx, mov)
	})
	if err != nil {
		return e.failure(err)
	}

	if mov == nil {
		return dto.MovementResult{
			Success: true,
			Message: fmt.Sprintf("nothing to adjust: %s already holds %s %s of %s", sector.Name, current.StringFixed(3), ing.Unit, ing.Name),
		}
	}
	e.publish(ctx, mov)
	return dto.MovementResult{
		Success:  true,
		Message:  fmt.Sprintf("Adjusted %s in %s from %s to %s %s", ing.Name, sector.Name, current.StringFixed(3), in.NewQuantity.StringFixed(3), ing.Unit),
		Movement: ToMovementDTO(mov),
	}
}

// ListMovements historial del tenant, más recientes primero.
func (e *MovementEngine) ListMovements(ctx context.Context, tenantID string, filter repository.MovementFilter) ([]dto.MovementDTO, error) {
	if filter.Type != "" && !filter.Type.Valid() {
		return nil, fail(domain.ErrInvalidInput, "unknown movement type %q", filter.Type)
	}
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return nil, fail(domain.ErrInvalidInput, "'to' must not be before 'from'")
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultMovementLimit
	}
	if filter.Limit > maxMovementLimit {
		filter.Limit = maxMovementLimit
	}
	list, err := e.reader.Movements.List(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	out := make([]dto.MovementDTO, 0, len(list))
	for _, m := range list {
		out = append(out, *ToMovementDTO(m))
	}
	return out, nil
}

func (e *MovementEngine) newMovement(tenantID, ingredientID string, t entity.MovementType, qty decimal.Decimal, reason, userID string) *entity.StockMovement {
	return &entity.StockMovement{
		ID:           uuid.New().String(),
		TenantID:     tenantID,
		IngredientID: ingredientID,
		Quantity:     qty,
		Type:         t,
		Reason:       reason,
		CreatedAt:    e.now(),
		CreatedBy:    userID,
	}
}

func (e *MovementEngine) failure(err error) dto.MovementResult {
	kind, msgs := classify(err)
	if kind == domain.ErrTransactionFailure {
		e.log.Error().Err(err).Msg("movimiento de stock fallido")
	}
	return dto.MovementResult{Success: false, Message: msgs[0], Err: kind}
}

func (e *MovementEngine) publish(ctx context.Context, movs ...*entity.StockMovement) {
	publish(ctx, e.publisher, e.log, movs)
}

// publish notifica después del commit; un fallo del bus no revierte nada.
func publish(ctx context.Context, p MovementPublisher, log *logger.Logger, movs []*entity.StockMovement) {
	if p == nil || len(movs) == 0 {
		return
	}
	if err := p.Publish(ctx, movs); err != nil {
		log.Error().Err(err).Int("movements", len(movs)).Msg("no se pudieron publicar movimientos de stock")
	}
}

func mustIngredient(ctx context.Context, r Repos, tenantID, id string) (*entity.Ingredient, error) {
	ing, err := r.Ingredients.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if ing == nil {
		return nil, fail(domain.ErrNotFound, "ingredient not found")
	}
	return ing, nil
}

func mustSector(ctx context.Context, r Repos, tenantID, id, label string) (*entity.Sector, error) {
	s, err := r.Sectors.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, fail(domain.ErrNotFound, "%s not found", label)
	}
	return s, nil
}

// ToMovementDTO convierte un movimiento a su representación de salida.
func ToMovementDTO(m *entity.StockMovement) *dto.MovementDTO {
	if m == nil {
		return nil
	}
	return &dto.MovementDTO{
		ID:           m.ID,
		IngredientID: m.IngredientID,
		FromSectorID: m.FromSectorID,
		ToSectorID:   m.ToSectorID,
		Quantity:     m.Quantity,
		Type:         string(m.Type),
		Reason:       m.Reason,
		OrderID:      m.OrderID,
		CreatedBy:    m.CreatedBy,
		CreatedAt:    m.CreatedAt,
	}
}
