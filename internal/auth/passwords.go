package auth

import (
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PasswordPolicy decides how passwords are stored and compared.
type PasswordPolicy interface {
	Hash(password string) (string, error)
	Matches(stored, password string) bool
}

// Plain stores passwords as given. It is insecure and exists so that
// fixtures written against the plaintext deployment keep logging in.
type Plain struct{}

func (Plain) Hash(password string) (string, error) { return password, nil }

func (Plain) Matches(stored, password string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(password)) == 1
}

type Bcrypt struct {
	Cost int
}

func (b Bcrypt) Hash(password string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt: %w", err)
	}
	return string(h), nil
}

func (Bcrypt) Matches(stored, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
}

// PolicyFor maps AUTH_PASSWORD_MODE to a policy.
func PolicyFor(mode string) (PasswordPolicy, error) {
	switch mode {
	case "", "plain":
		return Plain{}, nil
	case "bcrypt":
		return Bcrypt{}, nil
	default:
		return nil, fmt.Errorf("unknown password mode %q", mode)
	}
}
