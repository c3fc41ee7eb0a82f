package apperr

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("register: %w", Conflict("user already exists"))

	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{name: "nil", err: nil, want: ""},
		{name: "validation", err: Validation("x"), want: KindValidation},
		{name: "auth", err: Auth("x"), want: KindAuth},
		{name: "not_found", err: NotFound("x"), want: KindNotFound},
		{name: "conflict_wrapped", err: wrapped, want: KindConflict},
		{name: "transport", err: Transport("timeout", context.DeadlineExceeded), want: KindTransport},
		{name: "deadline", err: context.DeadlineExceeded, want: KindTransport},
		{name: "unknown", err: errors.New("boom"), want: KindHandler},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := KindOf(tt.err); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestTransportKeepsCause(t *testing.T) {
	t.Parallel()

	err := Transport("timeout", context.DeadlineExceeded)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatal("expected cause to be reachable with errors.Is")
	}
	e, ok := As(err)
	if !ok || e.Msg != "timeout" {
		t.Fatalf("expected msg timeout, got %+v", e)
	}
}
