package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ariefcatur/go-tcp-fabric/internal/model"
)

const pgUniqueViolation = "23505"

type PostgresUsers struct{ DB *pgxpool.Pool }

func (r *PostgresUsers) Create(ctx context.Context, u model.User) error {
	_, err := r.DB.Exec(ctx, `INSERT INTO users(id, email, password) VALUES ($1, $2, $3)`, u.ID, u.Email, u.Password)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return ErrUserExists
	}
	return err
}

func (r *PostgresUsers) GetByEmail(ctx context.Context, email string) (model.User, error) {
	var u model.User
	err := r.DB.QueryRow(ctx, `SELECT id, email, password FROM users WHERE email=$1`, email).
		Scan(&u.ID, &u.Email, &u.Password)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.User{}, ErrUserNotFound
	}
	return u, err
}
