package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/jhoicas/erp-stock/internal/application/inventory"
	"github.com/jhoicas/erp-stock/internal/domain/entity"
	"github.com/jhoicas/erp-stock/pkg/config"
)

var _ inventory.MovementPublisher = (*KafkaPublisher)(nil)

// MessageWriter lo implementa *kafka.Writer.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// MovementEvent payload JSON publicado por cada movimiento confirmado.
type MovementEvent struct {
	ID           string    `json:"id"`
	TenantID     string    `json:"tenant_id"`
	IngredientID string    `json:"ingredient_id"`
	FromSectorID string    `json:"from_sector_id,omitempty"`
	ToSectorID   string    `json:"to_sector_id,omitempty"`
	Quantity     string    `json:"quantity"`
	Type         string    `json:"type"`
	Reason       string    `json:"reason"`
	OrderID      string    `json:"order_id,omitempty"`
	CreatedBy    string    `json:"created_by,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// KafkaPublisher publica movimientos en un tópico. La clave es el insumo: los movimientos
// de un mismo insumo caen en la misma partición y conservan su orden.
type KafkaPublisher struct {
	writer MessageWriter
}

// NewKafkaPublisher crea el writer con batching corto para baja latencia.
func NewKafkaPublisher(cfg config.KafkaConfig) *KafkaPublisher {
	return NewKafkaPublisherWithWriter(&kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.StockTopic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		BatchSize:    100,
		RequiredAcks: kafka.RequireOne,
	})
}

// NewKafkaPublisherWithWriter permite inyectar el writer (tests).
func NewKafkaPublisherWithWriter(w MessageWriter) *KafkaPublisher {
	return &KafkaPublisher{writer: w}
}

func (p *KafkaPublisher) Publish(ctx context.Context, movements []*entity.StockMovement) error {
	if len(movements) == 0 {
		return nil
	}
	msgs := make([]kafka.Message, 0, len(movements))
	for _, m := range movements {
		value, err := json.Marshal(toEvent(m))
		if err != nil {
			return fmt.Errorf("marshal movement %s: %w", m.ID, err)
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(m.IngredientID),
			Value: value,
			Headers: []kafka.Header{
				{Key: "tenant_id", Value: []byte(m.TenantID)},
				{Key: "movement_type", Value: []byte(m.Type)},
			},
			Time: m.CreatedAt,
		})
	}
	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write kafka messages: %w", err)
	}
	return nil
}

// Close vacía los lotes pendientes y cierra las conexiones.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func toEvent(m *entity.StockMovement) MovementEvent {
	return MovementEvent{
		ID:           m.ID,
		TenantID:     m.TenantID,
		IngredientID: m.IngredientID,
		FromSectorID: m.FromSectorID,
		ToSectorID:   m.ToSectorID,
		Quantity:     m.Quantity.String(),
		Type:         string(m.Type),
		Reason:       m.Reason,
		OrderID:      m.OrderID,
		CreatedBy:    m.CreatedBy,
		CreatedAt:    m.CreatedAt,
	}
}
