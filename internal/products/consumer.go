package products

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/ariefcatur/go-tcp-fabric/internal/events"
	kafkax "github.com/ariefcatur/go-tcp-fabric/internal/kafka"
)

// HandleOrderCreated takes the ordered quantity out of tracked stock.
// It is installed as the handler of the order.created consumer.
func (s *Service) HandleOrderCreated(ctx context.Context, m kafkago.Message) error {
	var env events.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		// Poison message: log and let the offset move on.
		s.logger().Warn("undecodable event", zap.Int64("offset", m.Offset), zap.Error(err))
		return nil
	}
	if env.EventType != events.EventOrderCreated {
		return nil
	}

	if s.Dedup != nil {
		first, err := s.Dedup.FirstSeen(ctx, env.EventID)
		if err != nil {
			return err
		}
		if !first {
			return nil
		}
	}

	p, err := kafkax.UnwrapPayload[events.OrderCreatedPayload](env.Payload)
	if err != nil {
		s.logger().Warn("bad order.created payload", zap.String("event_id", env.EventID), zap.Error(err))
		return nil
	}
	if p.Qty <= 0 {
		return nil
	}

	prod, err := s.Products.AdjustStock(ctx, p.ProductID, -p.Qty)
	if errors.Is(err, ErrProductNotFound) {
		s.logger().Warn("order for unknown product", zap.String("order_id", p.OrderID), zap.String("product_id", p.ProductID))
		return nil
	}
	if err != nil {
		if s.Dedup != nil {
			if ferr := s.Dedup.Forget(ctx, env.EventID); ferr != nil {
				s.logger().Error("release dedup mark", zap.String("event_id", env.EventID), zap.Error(ferr))
			}
		}
		return fmt.Errorf("adjust stock: %w", err)
	}
	if prod.Stock != nil {
		s.logger().Info("stock reserved",
			zap.String("order_id", p.OrderID),
			zap.String("product_id", p.ProductID),
			zap.Int("qty", p.Qty),
			zap.Int("remaining", *prod.Stock),
		)
	}
	return nil
}
