package auth

import (
	"context"

	"github.com/ariefcatur/go-tcp-fabric/internal/apperr"
	"github.com/ariefcatur/go-tcp-fabric/internal/model"
	"github.com/ariefcatur/go-tcp-fabric/internal/tcpx"
	"github.com/ariefcatur/go-tcp-fabric/internal/wire"
)

// Client calls the auth service over the fabric.
type Client struct {
	Caller tcpx.Caller
	Addr   string
}

// VerifyToken asks auth to check token. A rejected token comes back as an
// auth-kind error carrying auth's message; network failures come back as
// transport errors.
func (c *Client) VerifyToken(ctx context.Context, token string) (model.Identity, error) {
	req, err := wire.NewRequest(ActionVerifyToken, TokenRequest{Token: token})
	if err != nil {
		return model.Identity{}, err
	}
	resp, err := c.Caller.Call(ctx, c.Addr, req)
	if err != nil {
		return model.Identity{}, err
	}
	if resp.Status != wire.StatusOK {
		return model.Identity{}, apperr.Auth(resp.Message)
	}
	var id model.Identity
	if err := resp.Into(&id); err != nil {
		return model.Identity{}, apperr.Transport("Invalid JSON from server", err)
	}
	return id, nil
}
