package auth

import (
	"context"
	"net"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/ariefcatur/go-tcp-fabric/internal/apperr"
	"github.com/ariefcatur/go-tcp-fabric/internal/idseq"
	"github.com/ariefcatur/go-tcp-fabric/internal/model"
	"github.com/ariefcatur/go-tcp-fabric/internal/tcpx"
	"github.com/ariefcatur/go-tcp-fabric/internal/wire"
)

func newService(policy PasswordPolicy) (*Service, *MemoryUsers) {
	users := NewMemoryUsers()
	return &Service{
		Users:     users,
		IDs:       &idseq.Memory{},
		Passwords: policy,
		Tokens:    NewTokens("test-secret", time.Hour),
		Log:       zap.NewNop(),
	}, users
}

func wantMsg(t *testing.T, err error, kind apperr.Kind, msg string) {
	t.Helper()
	e, ok := apperr.As(err)
	if !ok || e.Kind != kind || e.Msg != msg {
		t.Fatalf("expected %s %q, got %v", kind, msg, err)
	}
}

func TestRegisterLoginVerify(t *testing.T) {
	t.Parallel()

	for _, policy := range []PasswordPolicy{Plain{}, Bcrypt{Cost: 4}} {
		policy := policy
		t.Run(policyName(policy), func(t *testing.T) {
			t.Parallel()

			s, _ := newService(policy)
			ctx := context.Background()

			u, err := s.Register(ctx, Credentials{Email: "a@x.com", Password: "pw"})
			if err != nil {
				t.Fatalf("register: %v", err)
			}
			if u.ID != "1" || u.Email != "a@x.com" {
				t.Fatalf("unexpected user %+v", u)
			}

			res, err := s.Login(ctx, Credentials{Email: "a@x.com", Password: "pw"})
			if err != nil {
				t.Fatalf("login: %v", err)
			}
			if res.Token == "" {
				t.Fatal("expected a token")
			}

			id, err := s.VerifyToken(ctx, TokenRequest{Token: res.Token})
			if err != nil {
				t.Fatalf("verify: %v", err)
			}
			if id != (model.Identity{ID: "1", Email: "a@x.com"}) {
				t.Fatalf("unexpected identity %+v", id)
			}
		})
	}
}

func policyName(p PasswordPolicy) string {
	if _, ok := p.(Plain); ok {
		return "plain"
	}
	return "bcrypt"
}

func TestBcryptDoesNotStorePlaintext(t *testing.T) {
	t.Parallel()

	s, users := newService(Bcrypt{Cost: 4})
	if _, err := s.Register(context.Background(), Credentials{Email: "a@x.com", Password: "pw"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	u, _ := users.GetByEmail(context.Background(), "a@x.com")
	if u.Password == "pw" {
		t.Fatal("expected hashed password")
	}
}

func TestRegisterValidation(t *testing.T) {
	t.Parallel()

	s, _ := newService(Plain{})
	for _, in := range []Credentials{{}, {Email: "a@x.com"}, {Password: "pw"}} {
		_, err := s.Register(context.Background(), in)
		wantMsg(t, err, apperr.KindValidation, "email and password required")
	}
}

func TestDuplicateRegistration(t *testing.T) {
	t.Parallel()

	s, users := newService(Plain{})
	ctx := context.Background()

	if _, err := s.Register(ctx, Credentials{Email: "a@x.com", Password: "pw"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	_, err := s.Register(ctx, Credentials{Email: "a@x.com", Password: "other"})
	wantMsg(t, err, apperr.KindConflict, "user already exists")

	if users.Len() != 1 {
		t.Fatalf("expected exactly one user, got %d", users.Len())
	}
	// Email match is exact, so a different case is a different user.
	if _, err := s.Register(ctx, Credentials{Email: "A@x.com", Password: "pw"}); err != nil {
		t.Fatalf("register different case: %v", err)
	}
}

func TestLoginFailures(t *testing.T) {
	t.Parallel()

	s, _ := newService(Plain{})
	ctx := context.Background()
	_, _ = s.Register(ctx, Credentials{Email: "a@x.com", Password: "pw"})

	tests := []struct {
		name string
		in   Credentials
		kind apperr.Kind
		msg  string
	}{
		{name: "missing", in: Credentials{Email: "a@x.com"}, kind: apperr.KindValidation, msg: "email and password required"},
		{name: "unknown_user", in: Credentials{Email: "b@x.com", Password: "pw"}, kind: apperr.KindAuth, msg: "invalid credentials"},
		{name: "wrong_password", in: Credentials{Email: "a@x.com", Password: "nope"}, kind: apperr.KindAuth, msg: "invalid credentials"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Login(ctx, tt.in)
			wantMsg(t, err, tt.kind, tt.msg)
		})
	}
}

func TestVerifyTokenRejects(t *testing.T) {
	t.Parallel()

	s, _ := newService(Plain{})
	ctx := context.Background()

	_, err := s.VerifyToken(ctx, TokenRequest{})
	wantMsg(t, err, apperr.KindAuth, "token required")

	_, err = s.VerifyToken(ctx, TokenRequest{Token: "garbage"})
	wantMsg(t, err, apperr.KindAuth, "invalid token")

	foreign, _ := NewTokens("other-secret", time.Hour).Issue(model.Identity{ID: "1", Email: "a@x.com"})
	_, err = s.VerifyToken(ctx, TokenRequest{Token: foreign})
	wantMsg(t, err, apperr.KindAuth, "invalid token")
}

func TestExpiredToken(t *testing.T) {
	t.Parallel()

	tokens := NewTokens("test-secret", time.Hour)
	issued := time.Now().Add(-2 * time.Hour)
	tokens.now = func() time.Time { return issued }
	tok, err := tokens.Issue(model.Identity{ID: "1", Email: "a@x.com"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	s, _ := newService(Plain{})
	_, err = s.VerifyToken(context.Background(), TokenRequest{Token: tok})
	wantMsg(t, err, apperr.KindAuth, "invalid token")
}

func TestPolicyFor(t *testing.T) {
	t.Parallel()

	if p, err := PolicyFor(""); err != nil || p != (Plain{}) {
		t.Fatalf("expected plain default, got %v %v", p, err)
	}
	if _, err := PolicyFor("bcrypt"); err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	if _, err := PolicyFor("md5"); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}

// TestOverTheWire runs the handler set behind a real listener and talks to
// it with the fabric client.
func TestOverTheWire(t *testing.T) {
	t.Parallel()

	s, _ := newService(Plain{})
	srv := tcpx.NewServer("auth", zap.NewNop())
	srv.Register(s.Handlers())

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = srv.Serve(ctx, ln) }()
	a := srv.Addr()
	if a == nil {
		t.Fatal("auth listener did not start")
	}
	addr := a.String()

	caller := tcpx.NewClient(time.Second)
	call := func(action string, payload any) wire.Response {
		t.Helper()
		req, err := wire.NewRequest(action, payload)
		if err != nil {
			t.Fatalf("request: %v", err)
		}
		resp, err := caller.Call(context.Background(), addr, req)
		if err != nil {
			t.Fatalf("call %s: %v", action, err)
		}
		return resp
	}

	if resp := call(ActionRegister, Credentials{Email: "a@x.com", Password: "pw"}); resp.Status != wire.StatusOK {
		t.Fatalf("register: %+v", resp)
	}
	if resp := call(ActionRegister, Credentials{Email: "a@x.com", Password: "pw"}); resp.Message != "user already exists" {
		t.Fatalf("expected conflict, got %+v", resp)
	}

	var login LoginResult
	if err := call(ActionLogin, Credentials{Email: "a@x.com", Password: "pw"}).Into(&login); err != nil {
		t.Fatalf("login: %v", err)
	}

	client := &Client{Caller: caller, Addr: addr}
	id, err := client.VerifyToken(context.Background(), login.Token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if id.Email != "a@x.com" || id.ID == "" {
		t.Fatalf("unexpected identity %+v", id)
	}

	if resp := call(ActionVerifyToken, TokenRequest{Token: "garbage"}); resp.Status != wire.StatusError {
		t.Fatalf("expected error for garbage token, got %+v", resp)
	}
	_, err = client.VerifyToken(context.Background(), "garbage")
	wantMsg(t, err, apperr.KindAuth, "invalid token")
}
