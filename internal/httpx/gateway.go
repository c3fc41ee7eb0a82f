package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ariefcatur/go-tcp-fabric/internal/auth"
	"github.com/ariefcatur/go-tcp-fabric/internal/orders"
	"github.com/ariefcatur/go-tcp-fabric/internal/products"
	"github.com/ariefcatur/go-tcp-fabric/internal/tcpx"
	"github.com/ariefcatur/go-tcp-fabric/internal/wire"
)

// Gateway turns each REST call into one envelope exchange with a backend
// service. It never retries and does not interpret the data it relays.
type Gateway struct {
	Caller      tcpx.Caller
	AuthAddr    string
	ProductAddr string
	OrderAddr   string
	Log         *zap.Logger
}

func (g *Gateway) Register(r chi.Router) {
	r.Post("/auth/register", g.forwardBody(g.AuthAddr, auth.ActionRegister))
	r.Post("/auth/login", g.forwardBody(g.AuthAddr, auth.ActionLogin))

	r.Post("/products/create", g.forwardBody(g.ProductAddr, products.ActionCreate))
	r.Get("/products/view/{id}", g.viewProduct)
	r.Get("/products/view_all", g.forwardToken(g.ProductAddr, products.ActionViewAll))
	r.Get("/products/check_stock/{id}", g.checkStock)

	r.Post("/orders/create", g.forwardBody(g.OrderAddr, orders.ActionCreateOrder))
	r.Get("/orders", g.forwardToken(g.OrderAddr, orders.ActionGetOrders))
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// bearerToken returns the token from "Authorization: Bearer <token>".
func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(h) < len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(h[len(prefix):])
}

// forwardBody relays the JSON body as the payload. A bearer token, when
// present, is added as payload.token.
func (g *Gateway) forwardBody(addr, action string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := map[string]any{}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil && !errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}
		if payload == nil {
			payload = map[string]any{}
		}
		if tok := bearerToken(r); tok != "" {
			payload["token"] = tok
		}
		g.relay(w, r, addr, action, payload, http.StatusBadRequest)
	}
}

func (g *Gateway) forwardToken(addr, action string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		g.relay(w, r, addr, action, tokenPayload(r), http.StatusBadRequest)
	}
}

func (g *Gateway) viewProduct(w http.ResponseWriter, r *http.Request) {
	payload := tokenPayload(r)
	payload["id"] = chi.URLParam(r, "id")
	g.relay(w, r, g.ProductAddr, products.ActionView, payload, http.StatusNotFound)
}

func (g *Gateway) checkStock(w http.ResponseWriter, r *http.Request) {
	payload := tokenPayload(r)
	payload["id"] = chi.URLParam(r, "id")
	if q := r.URL.Query().Get("qty"); q != "" {
		qty, err := strconv.Atoi(q)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid qty")
			return
		}
		payload["qty"] = qty
	}
	g.relay(w, r, g.ProductAddr, products.ActionCheckStock, payload, http.StatusBadRequest)
}

func tokenPayload(r *http.Request) map[string]any {
	payload := map[string]any{}
	if tok := bearerToken(r); tok != "" {
		payload["token"] = tok
	}
	return payload
}

// relay makes the call and maps the envelope: ok is 200 with data as the
// body, error is errStatus with {error: message}, and a failed call is 500.
func (g *Gateway) relay(w http.ResponseWriter, r *http.Request, addr, action string, payload any, errStatus int) {
	req, err := wire.NewRequest(action, payload)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	resp, err := g.Caller.Call(r.Context(), addr, req)
	if err != nil {
		g.logger().Warn("backend call failed",
			zap.String("addr", addr), zap.String("action", action), zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if resp.Status != wire.StatusOK {
		writeError(w, errStatus, resp.Message)
		return
	}
	data := resp.Data
	if len(data) == 0 {
		data = json.RawMessage("null")
	}
	writeJSON(w, http.StatusOK, data)
}

func (g *Gateway) logger() *zap.Logger {
	if g.Log == nil {
		return zap.NewNop()
	}
	return g.Log
}
