package kafka

import (
	"encoding/json"
	"testing"

	"github.com/ariefcatur/go-tcp-fabric/internal/events"
)

func TestUnwrapPayload(t *testing.T) {
	t.Parallel()

	raw := MustMarshal(events.OrderCreatedPayload{OrderID: "1", ProductID: "3", Qty: 2})
	p, err := UnwrapPayload[events.OrderCreatedPayload](raw)
	if err != nil {
		t.Fatalf("unwrap: %v", err)
	}
	if p.OrderID != "1" || p.ProductID != "3" || p.Qty != 2 {
		t.Fatalf("unexpected payload %+v", p)
	}

	if _, err := UnwrapPayload[events.OrderCreatedPayload](json.RawMessage(`[1,2]`)); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestMustMarshalPanics(t *testing.T) {
	t.Parallel()

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic for unmarshalable value")
		}
	}()
	MustMarshal(make(chan int))
}
