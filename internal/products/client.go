package products

import (
	"context"

	"github.com/ariefcatur/go-tcp-fabric/internal/apperr"
	"github.com/ariefcatur/go-tcp-fabric/internal/model"
	"github.com/ariefcatur/go-tcp-fabric/internal/tcpx"
	"github.com/ariefcatur/go-tcp-fabric/internal/wire"
)

// Client calls the product service over the fabric. The token is passed
// through so product can verify it again.
type Client struct {
	Caller tcpx.Caller
	Addr   string
}

func (c *Client) View(ctx context.Context, id, token string) (model.Product, error) {
	var p model.Product
	err := c.call(ctx, ActionView, ViewInput{ID: wire.ID(id), Token: token}, &p)
	return p, err
}

func (c *Client) CheckStock(ctx context.Context, id string, qty int, token string) (model.StockCheck, error) {
	var sc model.StockCheck
	err := c.call(ctx, ActionCheckStock, StockInput{ID: wire.ID(id), Qty: &qty, Token: token}, &sc)
	return sc, err
}

func (c *Client) call(ctx context.Context, action string, payload, out any) error {
	req, err := wire.NewRequest(action, payload)
	if err != nil {
		return err
	}
	resp, err := c.Caller.Call(ctx, c.Addr, req)
	if err != nil {
		return err
	}
	if resp.Status != wire.StatusOK {
		return apperr.NotFound(resp.Message)
	}
	if err := resp.Into(out); err != nil {
		return apperr.Transport("Invalid JSON from server", err)
	}
	return nil
}
