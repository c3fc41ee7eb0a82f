package products

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ariefcatur/go-tcp-fabric/internal/model"
)

type PostgresProducts struct{ DB *pgxpool.Pool }

func (r *PostgresProducts) Create(ctx context.Context, p model.Product) error {
	_, err := r.DB.Exec(ctx, `INSERT INTO products(id, name, price, stock) VALUES ($1, $2, $3, $4)`,
		p.ID, p.Name, p.Price, p.Stock)
	return err
}

func (r *PostgresProducts) Get(ctx context.Context, id string) (model.Product, error) {
	var p model.Product
	err := r.DB.QueryRow(ctx, `SELECT id, name, price, stock FROM products WHERE id=$1`, id).
		Scan(&p.ID, &p.Name, &p.Price, &p.Stock)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Product{}, ErrProductNotFound
	}
	return p, err
}

func (r *PostgresProducts) List(ctx context.Context) ([]model.Product, error) {
	rows, err := r.DB.Query(ctx, `SELECT id, name, price, stock FROM products ORDER BY length(id), id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Product{}
	for rows.Next() {
		var p model.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Stock); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PostgresProducts) AdjustStock(ctx context.Context, id string, delta int) (model.Product, error) {
	var p model.Product
	err := r.DB.QueryRow(ctx, `
		UPDATE products
		SET stock = CASE WHEN stock IS NULL THEN NULL ELSE GREATEST(stock + $2, 0) END
		WHERE id=$1
		RETURNING id, name, price, stock`, id, delta).
		Scan(&p.ID, &p.Name, &p.Price, &p.Stock)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Product{}, ErrProductNotFound
	}
	return p, err
}
