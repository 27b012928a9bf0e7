package inventory

import (
	"context"
	"fmt"
	"sort"
	"strings"
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

// Policy política ante faltantes descubiertos dentro de la transacción de descuento.
type Policy string

const (
	// PolicyStrict revalida bajo bloqueo de fila y rechaza el descuento si falta stock.
	PolicyStrict Policy = "strict"
	// PolicyLenient nunca bloquea una venta ya creada: el faltante se fuerza como saldo negativo.
	PolicyLenient Policy = "lenient"
)

// ParsePolicy interpreta el valor de configuración.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case PolicyStrict, "":
		return PolicyStrict, nil
	case PolicyLenient:
		return PolicyLenient, nil
	}
	return "", fmt.Errorf("política de sobregiro desconocida %q", s)
}

// DeductionEngine valida disponibilidad, descuenta el stock de un pedido según sus recetas
// y revierte el descuento al cancelar.
type DeductionEngine struct {
	txRunner  TxRunner
	reader    Repos
	publisher MovementPublisher
	policy    Policy
	log       *logger.Logger
	now       func() time.Time
}

// NewDeductionEngine construye el motor de descuento.
func NewDeductionEngine(txRunner TxRunner, reader Repos, publisher MovementPublisher, policy Policy, log *logger.Logger) *DeductionEngine {
	if log == nil {
		log = logger.Nop()
	}
	if policy == "" {
		policy = PolicyStrict
	}
	return &DeductionEngine{
		txRunner:  txRunner,
		reader:    reader,
		publisher: publisher,
		policy:    policy,
		log:       log,
		now:       time.Now,
	}
}

// need cantidad total requerida de un insumo, en su unidad canónica.
type need struct {
	ingredientID string
	name         string
	unit         string
	quantity     decimal.Decimal
}

// aggregateNeeds suma por insumo (en orden de primera aparición) cantidad de receta × cantidad vendida.
func aggregateNeeds(items []entity.OrderItem) []*need {
	var out []*need
	idx := map[string]*need{}
	for _, item := range items {
		if item.Sellable == nil {
			continue
		}
		for _, req := range item.Sellable.Requirements {
			qty := req.QuantityInStockUnit().Mul(item.Quantity)
			n, ok := idx[req.IngredientID]
			if !ok {
				n = &need{ingredientID: req.IngredientID, name: req.IngredientName(), quantity: decimal.Zero}
				if req.Ingredient != nil {
					n.unit = string(req.Ingredient.Unit)
				}
				idx[req.IngredientID] = n
				out = append(out, n)
			}
			n.quantity = n.quantity.Add(qty)
		}
	}
	return out
}

func shortageMessage(n *need, available decimal.Decimal) string {
	return fmt.Sprintf("insufficient stock of %s: required %s, available %s",
		n.name, n.quantity.StringFixed(3), available.StringFixed(3))
}

// ValidateAvailability compara lo requerido por los ítems contra el total disponible en todos
// los sectores. Solo lectura; devuelve un mensaje por insumo faltante (vacío = hay stock).
// Es una foto del momento, no una reserva. Nunca falla: un error de lectura se reporta como mensaje.
func (e *DeductionEngine) ValidateAvailability(ctx context.Context, tenantID string, items []entity.OrderItem) []string {
	errs, err := e.CheckAvailability(ctx, tenantID, items)
	if err != nil {
		return []string{genericFailure}
	}
	return errs
}

// CheckAvailability igual que ValidateAvailability pero separa faltantes de fallos de lectura:
// estos vuelven como error envuelto en ErrTransactionFailure.
func (e *DeductionEngine) CheckAvailability(ctx context.Context, tenantID string, items []entity.OrderItem) ([]string, error) {
	errs := []string{}
	for _, n := range aggregateNeeds(items) {
		if !n.quantity.IsPositive() {
			continue
		}
		available, err := e.reader.Balances.TotalAvailable(ctx, tenantID, n.ingredientID)
		if err != nil {
			e.log.Error().Err(err).Str("ingredient_id", n.ingredientID).Msg("no se pudo leer el stock disponible")
			return nil, fmt.Errorf("%w: read available stock of %s: %v", domain.ErrTransactionFailure, n.name, err)
		}
		if n.quantity.GreaterThan(available) {
			errs = append(errs, shortageMessage(n, available))
		}
	}
	return errs, nil
}

// DeductByOrder descuenta el stock del pedido en una transacción: por cada requisito recorre los
// sectores por prioridad (sector del ítem, central, resto por cantidad) registrando un EXIT por
// cada descuento parcial. Es idempotente por pedido (marca en order_stock_deductions).
func (e *DeductionEngine) DeductByOrder(ctx context.Context, tenantID, orderID string) dto.DeductionResult {
	res := dto.DeductionResult{OrderID: orderID, Deductions: []dto.DeductionLine{}}

	order, err := e.reader.Orders.GetWithRequirements(ctx, tenantID, orderID)
	if err != nil {
		return e.failure(res, err)
	}
	if order == nil {
		return e.failure(res, fail(domain.ErrNotFound, "order not found"))
	}
	if order.Status == entity.OrderStatusCancelled {
		return e.failure(res, fail(domain.ErrInvalidInput, "order #%d is cancelled", order.Number))
	}
	for _, item := range order.Items {
		if item.Sellable == nil {
			return e.failure(res, fail(domain.ErrNotFound, "product %s of order #%d not found", item.SellableID, order.Number))
		}
	}

	mark, err := e.reader.Deductions.Get(ctx, tenantID, orderID)
	if err != nil {
		return e.failure(res, err)
	}
	if mark != nil {
		return e.failure(res, domain.ErrAlreadyProcessed)
	}

	msgs, err := e.CheckAvailability(ctx, tenantID, order.Items)
	if err != nil {
		return e.failure(res, err)
	}
	if len(msgs) > 0 {
		return e.failure(res, &shortageError{messages: msgs})
	}

	needs := aggregateNeeds(order.Items)
	var (
		lines []dto.DeductionLine
		movs  []*entity.StockMovement
	)
	err = e.txRunner.Run(ctx, func(r Repos) error {
		lines, movs = nil, nil

		created, err := r.Deductions.Create(ctx, &entity.OrderDeduction{
			TenantID:    tenantID,
			OrderID:     order.ID,
			OrderNumber: order.Number,
			DeductedAt:  e.now(),
		})
		if err != nil {
			return err
		}
		if !created {
			return domain.ErrAlreadyProcessed
		}

		// Bloqueo de todas las filas de los insumos involucrados, en orden de ID.
		ids := make([]string, 0, len(needs))
		for _, n := range needs {
			ids = append(ids, n.ingredientID)
		}
		sort.Strings(ids)
		balances := make(map[string][]*entity.StockBalance, len(ids))
		for _, id := range ids {
			list, err := r.Balances.ListByIngredientForUpdate(ctx, tenantID, id)
			if err != nil {
				return fmt.Errorf("lock balances: %w", err)
			}
			balances[id] = list
		}

		if e.policy == PolicyStrict {
			var msgs []string
			for _, n := range needs {
				available := decimal.Zero
				for _, b := range balances[n.ingredientID] {
					available = available.Add(b.Quantity)
				}
				if n.quantity.GreaterThan(available) {
					msgs = append(msgs, shortageMessage(n, available))
				}
			}
			if len(msgs) > 0 {
				return &shortageError{messages: msgs}
			}
		}

		central, err := r.Sectors.GetCentral(ctx, tenantID)
		if err != nil {
			return err
		}

		for _, item := range order.Items {
			sellable := item.Sellable
			for _, req := range sellable.Requirements {
				qty := req.QuantityInStockUnit().Mul(item.Quantity)
				if !qty.IsPositive() {
					continue
				}
				reasonPrefix := fmt.Sprintf("Order #%d - %s", order.Number, sellable.Name)

				remaining := qty
				for _, b := range inventory.SortForDeduction(balances[req.IngredientID], sellable.SectorID) {
					if inventory.Exhausted(remaining) {
						break
					}
					take := decimal.Min(b.Quantity, remaining)
					if err := r.Balances.AddQuantity(ctx, tenantID, req.IngredientID, b.SectorID, take.Neg()); err != nil {
						return err
					}
					b.Quantity = b.Quantity.Sub(take)

					mov := e.exitMovement(order, req.IngredientID, b.SectorID, take, fmt.Sprintf("%s (%s)", reasonPrefix, b.SectorName))
					if err := r.Movements.Create(ctx, mov); err != nil {
						return err
					}
					movs = append(movs, mov)
					lines = append(lines, dto.DeductionLine{
						IngredientID:   req.IngredientID,
						IngredientName: req.IngredientName(),
						SectorID:       b.SectorID,
						SectorName:     b.SectorName,
						Quantity:       take,
					})
					remaining = remaining.Sub(take)
				}

				if inventory.Exhausted(remaining) {
					continue
				}

				// Desborde: la foto de validación quedó vieja. Se fuerza saldo negativo en el
				// central o, si no existe, en el sector del ítem vendido.
				targetID, targetName := "", ""
				switch {
				case central != nil:
					targetID, targetName = central.ID, central.Name
				case sellable.SectorID != "":
					s, err := r.Sectors.GetByID(ctx, tenantID, sellable.SectorID)
					if err != nil {
						return err
					}
					if s != nil {
						targetID, targetName = s.ID, s.Name
					}
				}
				if targetID == "" {
					return fail(domain.ErrInsufficientStock, "insufficient stock of %s and no sector can hold a negative balance", req.IngredientName())
				}

				if err := r.Balances.AddQuantity(ctx, tenantID, req.IngredientID, targetID, remaining.Neg()); err != nil {
					return err
				}
				balances[req.IngredientID] = applyDelta(balances[req.IngredientID], tenantID, req.IngredientID, targetID, targetName, remaining.Neg())

				mov := e.exitMovement(order, req.IngredientID, targetID, remaining, fmt.Sprintf("%s (%s - negative balance)", reasonPrefix, targetName))
				if err := r.Movements.Create(ctx, mov); err != nil {
					return err
				}
				movs = append(movs, mov)
				lines = append(lines, dto.DeductionLine{
					IngredientID:   req.IngredientID,
					IngredientName: req.IngredientName(),
					SectorID:       targetID,
					SectorName:     targetName,
					Quantity:       remaining,
					Overdraft:      true,
				})
				e.log.Warn().
					Str("tenant_id", tenantID).
					Str("order_id", order.ID).
					Str("ingredient_id", req.IngredientID).
					Str("sector_id", targetID).
					Str("quantity", remaining.String()).
					Msg("stock insuficiente al descontar: saldo negativo forzado")
			}
		}
		return nil
	})
	if err != nil {
		return e.failure(res, err)
	}

	publish(ctx, e.publisher, e.log, movs)
	e.log.Info().
		Str("tenant_id", tenantID).
		Str("order_id", order.ID).
		Int64("order_number", order.Number).
		Int("deductions", len(lines)).
		Msg("stock descontado")

	res.Success = true
	if lines != nil {
		res.Deductions = lines
	}
	return res
}

// applyDelta actualiza la copia en memoria de los saldos bloqueados tras un descuento forzado.
func applyDelta(list []*entity.StockBalance, tenantID, ingredientID, sectorID, sectorName string, delta decimal.Decimal) []*entity.StockBalance {
	for _, b := range list {
		if b.SectorID == sectorID {
			b.Quantity = b.Quantity.Add(delta)
			return list
		}
	}
	return append(list, &entity.StockBalance{
		TenantID:     tenantID,
		IngredientID: ingredientID,
		SectorID:     sectorID,
		SectorName:   sectorName,
		Quantity:     delta,
	})
}

type restoreKey struct {
	ingredientID string
	sectorID     string
}

// RestoreStockByOrder devuelve el stock descontado por el pedido a los mismos sectores de donde
// salió (reproduce sus EXIT como ENTRY). Si el pedido no fue descontado o ya se restauró, no hace nada.
// Si un sector de origen ya no existe, la cantidad vuelve al almacén central.
func (e *DeductionEngine) RestoreStockByOrder(ctx context.Context, tenantID, orderID string) error {
	order, err := e.reader.Orders.GetWithRequirements(ctx, tenantID, orderID)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrTransactionFailure, err)
	}
	if order == nil {
		return fail(domain.ErrNotFound, "order not found")
	}

	var (
		movs    []*entity.StockMovement
		skipped bool
	)
	err = e.txRunner.Run(ctx, func(r Repos) error {
		movs, skipped = nil, false

		restored, err := r.Deductions.MarkRestored(ctx, tenantID, orderID)
		if err != nil {
			return err
		}
		if !restored {
			skipped = true
			return nil
		}

		exits, err := r.Movements.ListByOrder(ctx, tenantID, orderID, entity.MovementTypeExit)
		if err != nil {
			return err
		}
		var keys []restoreKey
		totals := map[restoreKey]decimal.Decimal{}
		for _, m := range exits {
			k := restoreKey{ingredientID: m.IngredientID, sectorID: m.FromSectorID}
			if _, ok := totals[k]; !ok {
				keys = append(keys, k)
				totals[k] = decimal.Zero
			}
			totals[k] = totals[k].Add(m.Quantity)
		}

		var central *entity.Sector
		reason := fmt.Sprintf("Reversal of order #%d", order.Number)
		for _, k := range keys {
			targetID := k.sectorID
			s, err := r.Sectors.GetByID(ctx, tenantID, targetID)
			if err != nil {
				return err
			}
			if s == nil {
				if central == nil {
					if central, err = r.Sectors.GetCentral(ctx, tenantID); err != nil {
						return err
					}
				}
				if central == nil {
					return fail(domain.ErrNotFound, "sector %s no longer exists and there is no central warehouse", k.sectorID)
				}
				targetID = central.ID
			}
			if err := r.Balances.AddQuantity(ctx, tenantID, k.ingredientID, targetID, totals[k]); err != nil {
				return err
			}
			mov := &entity.StockMovement{
				ID:           uuid.New().String(),
				TenantID:     tenantID,
				IngredientID: k.ingredientID,
				ToSectorID:   targetID,
				Quantity:     totals[k],
				Type:         entity.MovementTypeEntry,
				Reason:       reason,
				OrderID:      order.ID,
				CreatedAt:    e.now(),
			}
			if err := r.Movements.Create(ctx, mov); err != nil {
				return err
			}
			movs = append(movs, mov)
		}
		return nil
	})
	if err != nil {
		kind, msgs := classify(err)
		if kind == domain.ErrTransactionFailure {
			e.log.Error().Err(err).Str("order_id", orderID).Msg("reversión de stock fallida")
			return fmt.Errorf("%w: %v", domain.ErrTransactionFailure, err)
		}
		return &opError{kind: kind, msg: strings.Join(msgs, "; ")}
	}
	if skipped {
		e.log.Warn().Str("tenant_id", tenantID).Str("order_id", orderID).Msg("pedido sin descuento pendiente de revertir")
		return nil
	}

	publish(ctx, e.publisher, e.log, movs)
	e.log.Info().Str("tenant_id", tenantID).Str("order_id", orderID).Int("movements", len(movs)).Msg("stock revertido")
	return nil
}

// GetCriticalStock saldos de insumos activos por debajo de su mínimo, mayor déficit primero.
func (e *DeductionEngine) GetCriticalStock(ctx context.Context, tenantID string) ([]dto.CriticalStockItem, error) {
	rows, err := e.reader.Balances.ListBelowMinimum(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return toCriticalItems(rows), nil
}

func toCriticalItems(rows []repository.CriticalStockRow) []dto.CriticalStockItem {
	items := make([]dto.CriticalStockItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, dto.CriticalStockItem{
			IngredientID:   row.Ingredient.ID,
			IngredientName: row.Ingredient.Name,
			Unit:           string(row.Ingredient.Unit),
			SectorID:       row.SectorID,
			SectorName:     row.SectorName,
			CurrentStock:   row.CurrentStock,
			MinStock:       row.Ingredient.MinStock,
			Deficit:        row.Ingredient.MinStock.Sub(row.CurrentStock),
		})
	}
	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].Deficit.Equal(items[j].Deficit) {
			return items[i].Deficit.GreaterThan(items[j].Deficit)
		}
		if items[i].IngredientName != items[j].IngredientName {
			return items[i].IngredientName < items[j].IngredientName
		}
		return items[i].SectorName < items[j].SectorName
	})
	return items
}

func (e *DeductionEngine) exitMovement(order *entity.Order, ingredientID, sectorID string, qty decimal.Decimal, reason string) *entity.StockMovement {
	return &entity.StockMovement{
		ID:           uuid.New().String(),
		TenantID:     order.TenantID,
		IngredientID: ingredientID,
		FromSectorID: sectorID,
		Quantity:     qty,
		Type:         entity.MovementTypeExit,
		Reason:       reason,
		OrderID:      order.ID,
		CreatedAt:    e.now(),
	}
}

func (e *DeductionEngine) failure(res dto.DeductionResult, err error) dto.DeductionResult {
	kind, msgs := classify(err)
	if kind == domain.ErrTransactionFailure {
		e.log.Error().Err(err).Str("order_id", res.OrderID).Msg("descuento de stock fallido")
	}
	res.Success = false
	res.Deductions = []dto.DeductionLine{}
	res.Errors = msgs
	res.Err = kind
	return res
}
