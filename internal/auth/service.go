// Package auth is the authorization oracle of the fabric: it registers
// users, issues session tokens and verifies them for every other service.
package auth

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
	ActionRegister    = "register"
	ActionLogin       = "login"
	ActionVerifyToken = "verify_token"
)

const (
	msgCredentialsRequired = "email and password required"
	msgUserExists          = "user already exists"
	msgInvalidCredentials  = "invalid credentials"
	msgTokenRequired       = "token required"
	msgInvalidToken        = "invalid token"
)

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type TokenRequest struct {
	Token string `json:"token,omitempty"`
}

type LoginResult struct {
	Token string `json:"token"`
}

type Service struct {
	Users     UserRepo
	IDs       idseq.Sequence
	Passwords PasswordPolicy
	Tokens    *Tokens
	Log       *zap.Logger
}

func (s *Service) Register(ctx context.Context, in Credentials) (model.Identity, error) {
	if in.Email == "" || in.Password == "" {
		return model.Identity{}, apperr.Validation(msgCredentialsRequired)
	}
	if _, err := s.Users.GetByEmail(ctx, in.Email); err == nil {
		return model.Identity{}, apperr.Conflict(msgUserExists)
	} else if !errors.Is(err, ErrUserNotFound) {
		return model.Identity{}, fmt.Errorf("lookup user: %w", err)
	}

	id, err := s.IDs.Next(ctx)
	if err != nil {
		return model.Identity{}, fmt.Errorf("next user id: %w", err)
	}
	stored, err := s.Passwords.Hash(in.Password)
	if err != nil {
		return model.Identity{}, err
	}
	u := model.User{ID: id, Email: in.Email, Password: stored}
	if err := s.Users.Create(ctx, u); err != nil {
		if errors.Is(err, ErrUserExists) {
			return model.Identity{}, apperr.Conflict(msgUserExists)
		}
		return model.Identity{}, fmt.Errorf("create user: %w", err)
	}
	s.logger().Info("user registered", zap.String("user_id", id))
	return u.Identity(), nil
}

func (s *Service) Login(ctx context.Context, in Credentials) (LoginResult, error) {
	if in.Email == "" || in.Password == "" {
		return LoginResult{}, apperr.Validation(msgCredentialsRequired)
	}
	u, err := s.Users.GetByEmail(ctx, in.Email)
	if errors.Is(err, ErrUserNotFound) {
		return LoginResult{}, apperr.Auth(msgInvalidCredentials)
	}
	if err != nil {
		return LoginResult{}, fmt.Errorf("lookup user: %w", err)
	}
	if !s.Passwords.Matches(u.Password, in.Password) {
		return LoginResult{}, apperr.Auth(msgInvalidCredentials)
	}
	token, err := s.Tokens.Issue(u.Identity())
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{Token: token}, nil
}

func (s *Service) VerifyToken(_ context.Context, in TokenRequest) (model.Identity, error) {
	if in.Token == "" {
		return model.Identity{}, apperr.Auth(msgTokenRequired)
	}
	id, err := s.Tokens.Parse(in.Token)
	if err != nil {
		s.logger().Debug("token rejected", zap.Error(err))
		return model.Identity{}, apperr.Auth(msgInvalidToken)
	}
	return id, nil
}

// Handlers is the action table served on the auth listener.
func (s *Service) Handlers() map[string]tcpx.HandlerFunc {
	return map[string]tcpx.HandlerFunc{
		ActionRegister: func(ctx context.Context, payload json.RawMessage) (any, error) {
			in, err := wire.Decode[Credentials](payload)
			if err != nil {
				return nil, err
			}
			return s.Register(ctx, in)
		},
		ActionLogin: func(ctx context.Context, payload json.RawMessage) (any, error) {
			in, err := wire.Decode[Credentials](payload)
			if err != nil {
				return nil, err
			}
			return s.Login(ctx, in)
		},
		ActionVerifyToken: func(ctx context.Context, payload json.RawMessage) (any, error) {
			in, err := wire.Decode[TokenRequest](payload)
			if err != nil {
				return nil, err
			}
			return s.VerifyToken(ctx, in)
		},
	}
}

func (s *Service) logger() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}
