package postgres

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Sequence draws ids from a Postgres sequence named {name}_id_seq.
type Sequence struct {
	DB   *pgxpool.Pool
	Name string
}

func (s *Sequence) Next(ctx context.Context) (string, error) {
	var n int64
	if err := s.DB.QueryRow(ctx, `SELECT nextval($1::regclass)`, s.Name+"_id_seq").Scan(&n); err != nil {
		return "", fmt.Errorf("nextval %s: %w", s.Name, err)
	}
	return strconv.FormatInt(n, 10), nil
}
