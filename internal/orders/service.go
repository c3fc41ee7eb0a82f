// Package orders records orders. Creating one chains three synchronous
// calls: auth verifies the token, then product is asked for the product
// and for its stock, and product verifies the token again on each call.
package orders

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/ariefcatur/go-tcp-fabric/internal/apperr"
	"github.com/ariefcatur/go-tcp-fabric/internal/events"
	"github.com/ariefcatur/go-tcp-fabric/internal/idseq"
	kafkax "github.com/ariefcatur/go-tcp-fabric/internal/kafka"
	"github.com/ariefcatur/go-tcp-fabric/internal/model"
	"github.com/ariefcatur/go-tcp-fabric/internal/tcpx"
	"github.com/ariefcatur/go-tcp-fabric/internal/wire"
)

const (
	ActionCreateOrder = "create_order"
	ActionGetOrders   = "get_orders"
)

const (
	msgTokenRequired      = "token required"
	msgUnauthorized       = "unauthorized"
	msgProductQtyRequired = "product_id and qty required"
	msgProductUnavailable = "product not found or unauthorized"
	msgInsufficientStock  = "insufficient stock"
)

type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (model.Identity, error)
}

// ProductLookup is the product capability. The caller's token is forwarded.
type ProductLookup interface {
	View(ctx context.Context, id, token string) (model.Product, error)
	CheckStock(ctx context.Context, id string, qty int, token string) (model.StockCheck, error)
}

type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

type CreateInput struct {
	ProductID wire.ID `json:"product_id"`
	Qty       *int    `json:"qty"`
	Token     string  `json:"token,omitempty"`
}

type ListInput struct {
	Token string `json:"token,omitempty"`
}

type Service struct {
	Orders   Repo
	IDs      idseq.Sequence
	Auth     TokenVerifier
	Products ProductLookup
	Log      *zap.Logger

	// Events is optional; when set every stored order is announced.
	Events      Publisher
	ServiceName string

	now func() time.Time
}

func (s *Service) authorize(ctx context.Context, token string) (model.Identity, error) {
	if token == "" {
		return model.Identity{}, apperr.Auth(msgTokenRequired)
	}
	id, err := s.Auth.VerifyToken(ctx, token)
	if err != nil {
		s.logger().Info("token verification failed", zap.Error(err))
		return model.Identity{}, apperr.Auth(msgUnauthorized)
	}
	return id, nil
}

func (s *Service) CreateOrder(ctx context.Context, in CreateInput) (model.Order, error) {
	user, err := s.authorize(ctx, in.Token)
	if err != nil {
		return model.Order{}, err
	}
	if in.ProductID == "" || in.Qty == nil || *in.Qty <= 0 {
		return model.Order{}, apperr.Validation(msgProductQtyRequired)
	}
	qty := *in.Qty

	// Whether the product is missing or product rejected the token is
	// deliberately not told apart.
	product, err := s.Products.View(ctx, in.ProductID.String(), in.Token)
	if err != nil {
		s.logger().Info("product lookup failed", zap.String("product_id", in.ProductID.String()), zap.Error(err))
		return model.Order{}, apperr.NotFound(msgProductUnavailable)
	}
	stock, err := s.Products.CheckStock(ctx, product.ID, qty, in.Token)
	if err != nil {
		s.logger().Info("stock check failed", zap.String("product_id", product.ID), zap.Error(err))
		return model.Order{}, apperr.NotFound(msgProductUnavailable)
	}
	if !stock.InStock {
		return model.Order{}, apperr.Validation(msgInsufficientStock)
	}

	id, err := s.IDs.Next(ctx)
	if err != nil {
		return model.Order{}, fmt.Errorf("next order id: %w", err)
	}
	o := model.Order{
		ID:        id,
		Product:   product.Snapshot(),
		Qty:       qty,
		User:      user,
		CreatedAt: s.clock().UTC(),
	}
	if err := s.Orders.Append(ctx, o); err != nil {
		return model.Order{}, fmt.Errorf("append order: %w", err)
	}
	s.publishCreated(o)
	return o, nil
}

// GetOrders returns every order to any authenticated caller; results are
// not filtered by owner.
func (s *Service) GetOrders(ctx context.Context, in ListInput) ([]model.Order, error) {
	if _, err := s.authorize(ctx, in.Token); err != nil {
		return nil, err
	}
	return s.Orders.List(ctx)
}

func (s *Service) publishCreated(o model.Order) {
	if s.Events == nil {
		return
	}
	ev := events.Envelope{
		EventID:       uuid.NewString(),
		EventType:     events.EventOrderCreated,
		EventVersion:  1,
		OccurredAt:    o.CreatedAt,
		Producer:      s.ServiceName,
		CorrelationID: o.ID,
		Payload: kafkax.MustMarshal(events.OrderCreatedPayload{
			OrderID:   o.ID,
			UserID:    o.User.ID,
			ProductID: o.Product.ID,
			Qty:       o.Qty,
			Price:     o.Product.Price,
		}),
	}
	s.Events.Publish(events.PartitionKey(o.ID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(events.EventOrderCreated)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

func (s *Service) Handlers() map[string]tcpx.HandlerFunc {
	return map[string]tcpx.HandlerFunc{
		ActionCreateOrder: func(ctx context.Context, payload json.RawMessage) (any, error) {
			in, err := wire.Decode[CreateInput](payload)
			if err != nil {
				return nil, err
			}
			return s.CreateOrder(ctx, in)
		},
		ActionGetOrders: func(ctx context.Context, payload json.RawMessage) (any, error) {
			in, err := wire.Decode[ListInput](payload)
			if err != nil {
				return nil, err
			}
			return s.GetOrders(ctx, in)
		},
	}
}

func (s *Service) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}

func (s *Service) logger() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}
