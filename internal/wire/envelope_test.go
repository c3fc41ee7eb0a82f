package wire

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/ariefcatur/go-tcp-fabric/internal/apperr"
)

func TestIDUnmarshal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		in      string
		want    ID
		wantErr bool
	}{
		{name: "string", in: `{"id":"7"}`, want: "7"},
		{name: "number", in: `{"id":7}`, want: "7"},
		{name: "float_number", in: `{"id":7.5}`, want: "7.5"},
		{name: "null", in: `{"id":null}`, want: ""},
		{name: "missing", in: `{}`, want: ""},
		{name: "object", in: `{"id":{}}`, wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var out struct {
				ID ID `json:"id"`
			}
			err := json.Unmarshal([]byte(tt.in), &out)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if out.ID != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, out.ID)
			}
		})
	}
}

func TestDecodeDefaultsToEmptyObject(t *testing.T) {
	t.Parallel()

	type p struct {
		Email string `json:"email"`
	}
	for _, raw := range []json.RawMessage{nil, json.RawMessage("null"), json.RawMessage("  ")} {
		got, err := Decode[p](raw)
		if err != nil {
			t.Fatalf("decode %q: %v", raw, err)
		}
		if got.Email != "" {
			t.Fatalf("expected zero value, got %+v", got)
		}
	}
}

func TestDecodeInvalidPayloadIsValidation(t *testing.T) {
	t.Parallel()

	type p struct {
		Price *float64 `json:"price"`
	}
	_, err := Decode[p](json.RawMessage(`{"price":"ten"}`))
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestResponseShape(t *testing.T) {
	t.Parallel()

	ok, err := OK(map[string]string{"token": "t"})
	if err != nil {
		t.Fatalf("ok: %v", err)
	}
	b, _ := json.Marshal(ok)
	if string(b) != `{"status":"ok","data":{"token":"t"}}` {
		t.Fatalf("unexpected ok shape %s", b)
	}

	b, _ = json.Marshal(Fail("unknown action nope"))
	if string(b) != `{"status":"error","message":"unknown action nope"}` {
		t.Fatalf("unexpected error shape %s", b)
	}
}

func TestReadWithoutTerminator(t *testing.T) {
	t.Parallel()

	// A bare document followed by more bytes: only the first value is taken.
	r := strings.NewReader(`{"action":"view_all","payload":{}}{"action":"x"}`)
	var req Request
	if err := Read(r, &req); err != nil {
		t.Fatalf("read: %v", err)
	}
	if req.Action != "view_all" {
		t.Fatalf("expected view_all, got %q", req.Action)
	}
}

func TestReadTruncated(t *testing.T) {
	t.Parallel()

	var req Request
	err := Read(strings.NewReader(`{"action":"vi`), &req)
	if err != io.ErrUnexpectedEOF {
		t.Fatalf("expected unexpected EOF, got %v", err)
	}
}

func TestWriteTerminatesWithNewline(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	req, err := NewRequest("login", map[string]string{"email": "a@x.com"})
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if err := Write(&buf, req); err != nil {
		t.Fatalf("write: %v", err)
	}
	if got := buf.String(); got != "{\"action\":\"login\",\"payload\":{\"email\":\"a@x.com\"}}\n" {
		t.Fatalf("unexpected frame %q", got)
	}
}
