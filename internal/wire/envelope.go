// Package wire defines the envelopes exchanged over a service connection
// and the codec that frames them.
package wire

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/ariefcatur/go-tcp-fabric/internal/apperr"
)

type Status string

const (
	StatusOK    Status = "ok"
	StatusError Status = "error"
)

// Request selects a handler by Action; Payload is handler specific.
type Request struct {
	Action  string          `json:"action,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response carries Data when Status is ok and Message when it is error.
type Response struct {
	Status  Status          `json:"status"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
}

func OK(v any) (Response, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return Response{}, fmt.Errorf("encode data: %w", err)
	}
	return Response{Status: StatusOK, Data: b}, nil
}

func Fail(msg string) Response {
	return Response{Status: StatusError, Message: msg}
}

// NewRequest marshals payload into a request for action.
func NewRequest(action string, payload any) (Request, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return Request{}, fmt.Errorf("encode payload: %w", err)
	}
	return Request{Action: action, Payload: b}, nil
}

// Decode unmarshals a payload into T. An absent or null payload decodes
// as an empty object.
func Decode[T any](payload json.RawMessage) (T, error) {
	var t T
	p := bytes.TrimSpace(payload)
	if len(p) == 0 || bytes.Equal(p, []byte("null")) {
		p = []byte("{}")
	}
	if err := json.Unmarshal(p, &t); err != nil {
		return t, apperr.Validation("invalid payload")
	}
	return t, nil
}

// Into unmarshals the data of an ok response.
func (r Response) Into(v any) error {
	if err := json.Unmarshal(r.Data, v); err != nil {
		return fmt.Errorf("decode data: %w", err)
	}
	return nil
}

// ID is an identifier that may arrive as a JSON string or number.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	if i, err := n.Int64(); err == nil {
		*id = ID(strconv.FormatInt(i, 10))
		return nil
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string { return string(id) }
