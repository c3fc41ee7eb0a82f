// Package products serves the product catalog. Every action re-verifies
// the caller's token with the auth service before touching the store.
package products

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ariefcatur/go-tcp-fabric/internal/apperr"
	"github.com/ariefcatur/go-tcp-fabric/internal/idseq"
	"github.com/ariefcatur/go-tcp-fabric/internal/model"
	"github.com/ariefcatur/go-tcp-fabric/internal/tcpx"
	"github.com/ariefcatur/go-tcp-fabric/internal/wire"
)

const (
	ActionCreate     = "create"
	ActionView       = "view"
	ActionViewAll    = "view_all"
	ActionCheckStock = "check_stock"
)

const (
	msgTokenRequired = "token required"
	msgUnauthorized  = "unauthorized"
	msgNamePrice     = "name and price required"
	msgInvalidStock  = "stock must not be negative"
	msgIDRequired    = "id required"
	msgNotFound      = "product not found"
	msgIDQty         = "id and qty required"
)

// TokenVerifier is the auth capability the product service needs.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (model.Identity, error)
}

// Dedup marks consumed event ids. Forget undoes a mark whose event could
// not be applied.
type Dedup interface {
	FirstSeen(ctx context.Context, id string) (bool, error)
	Forget(ctx context.Context, id string) error
}

type CreateInput struct {
	Name  string   `json:"name"`
	Price *float64 `json:"price"`
	Stock *int     `json:"stock,omitempty"`
	Token string   `json:"token,omitempty"`
}

type ViewInput struct {
	ID    wire.ID `json:"id"`
	Token string  `json:"token,omitempty"`
}

type ListInput struct {
	Token string `json:"token,omitempty"`
}

type StockInput struct {
	ID    wire.ID `json:"id"`
	Qty   *int    `json:"qty,omitempty"`
	Token string  `json:"token,omitempty"`
}

type Service struct {
	Products Repo
	IDs      idseq.Sequence
	Auth     TokenVerifier
	Log      *zap.Logger

	// Dedup is optional; without it redelivered events are applied again.
	Dedup Dedup
}

// authorize runs before anything else in every action. A bad token and an
// unreachable auth service look the same to the caller.
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

func (s *Service) Create(ctx context.Context, in CreateInput) (model.Product, error) {
	if _, err := s.authorize(ctx, in.Token); err != nil {
		return model.Product{}, err
	}
	if in.Name == "" || in.Price == nil {
		return model.Product{}, apperr.Validation(msgNamePrice)
	}
	if in.Stock != nil && *in.Stock < 0 {
		return model.Product{}, apperr.Validation(msgInvalidStock)
	}
	id, err := s.IDs.Next(ctx)
	if err != nil {
		return model.Product{}, fmt.Errorf("next product id: %w", err)
	}
	p := model.Product{ID: id, Name: in.Name, Price: *in.Price, Stock: in.Stock}
	if err := s.Products.Create(ctx, p); err != nil {
		return model.Product{}, fmt.Errorf("create product: %w", err)
	}
	return p, nil
}

func (s *Service) View(ctx context.Context, in ViewInput) (model.Product, error) {
	if _, err := s.authorize(ctx, in.Token); err != nil {
		return model.Product{}, err
	}
	if in.ID == "" {
		return model.Product{}, apperr.Validation(msgIDRequired)
	}
	p, err := s.Products.Get(ctx, in.ID.String())
	if errors.Is(err, ErrProductNotFound) {
		return model.Product{}, apperr.NotFound(msgNotFound)
	}
	return p, err
}

// ViewAll returns the whole catalog; there is no paging.
func (s *Service) ViewAll(ctx context.Context, in ListInput) ([]model.Product, error) {
	if _, err := s.authorize(ctx, in.Token); err != nil {
		return nil, err
	}
	return s.Products.List(ctx)
}

// CheckStock reports whether qty units are available. Untracked products
// are always in stock.
func (s *Service) CheckStock(ctx context.Context, in StockInput) (model.StockCheck, error) {
	if _, err := s.authorize(ctx, in.Token); err != nil {
		return model.StockCheck{}, err
	}
	qty := 1
	if in.Qty != nil {
		qty = *in.Qty
	}
	if in.ID == "" || qty <= 0 {
		return model.StockCheck{}, apperr.Validation(msgIDQty)
	}
	p, err := s.Products.Get(ctx, in.ID.String())
	if errors.Is(err, ErrProductNotFound) {
		return model.StockCheck{}, apperr.NotFound(msgNotFound)
	}
	if err != nil {
		return model.StockCheck{}, err
	}
	return model.StockCheck{
		ID:      p.ID,
		Qty:     qty,
		InStock: p.Stock == nil || *p.Stock >= qty,
		Stock:   p.Stock,
	}, nil
}

func (s *Service) Handlers() map[string]tcpx.HandlerFunc {
	return map[string]tcpx.HandlerFunc{
		ActionCreate:     handle(s.Create),
		ActionView:       handle(s.View),
		ActionViewAll:    handle(s.ViewAll),
		ActionCheckStock: handle(s.CheckStock),
	}
}

// handle adapts a typed action to the listener's raw payload signature.
func handle[In, Out any](fn func(context.Context, In) (Out, error)) tcpx.HandlerFunc {
	return func(ctx context.Context, payload json.RawMessage) (any, error) {
		in, err := wire.Decode[In](payload)
		if err != nil {
			return nil, err
		}
		return fn(ctx, in)
	}
}

func (s *Service) logger() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}
