package orders

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ariefcatur/go-tcp-fabric/internal/model"
)

type PostgresOrders struct{ DB *pgxpool.Pool }

func (r *PostgresOrders) Append(ctx context.Context, o model.Order) error {
	product, err := json.Marshal(o.Product)
	if err != nil {
		return fmt.Errorf("encode product snapshot: %w", err)
	}
	user, err := json.Marshal(o.User)
	if err != nil {
		return fmt.Errorf("encode user snapshot: %w", err)
	}
	_, err = r.DB.Exec(ctx, `
		INSERT INTO orders(id, product, qty, "user", created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		o.ID, product, o.Qty, user, o.CreatedAt,
	)
	return err
}

// List returns orders in insertion order.
func (r *PostgresOrders) List(ctx context.Context) ([]model.Order, error) {
	rows, err := r.DB.Query(ctx, `SELECT id, product, qty, "user", created_at FROM orders ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Order{}
	for rows.Next() {
		var (
			o             model.Order
			product, user []byte
		)
		if err := rows.Scan(&o.ID, &product, &o.Qty, &user, &o.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(product, &o.Product); err != nil {
			return nil, fmt.Errorf("decode product snapshot: %w", err)
		}
		if err := json.Unmarshal(user, &o.User); err != nil {
			return nil, fmt.Errorf("decode user snapshot: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
