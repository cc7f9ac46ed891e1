package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

var ErrProductNotFound = errors.New("product not found")

type Repository interface {
	GetByID(ctx context.Context, productID string) (*Product, error)
	IncrementPurchases(ctx context.Context, productID string) error
}

type repo struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repo{db: db}
}

func (r *repo) GetByID(ctx context.Context, productID string) (*Product, error) {
	var p Product
	err := r.db.QueryRowContext(ctx,
		`SELECT id, seller_id, title, price, currency, status, purchases, created_at
         FROM products WHERE id = $1`,
		productID,
	).Scan(&p.ID, &p.SellerID, &p.Title, &p.Price, &p.Currency, &p.Status, &p.Purchases, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("select product: %w", err)
	}
	return &p, nil
}

func (r *repo) IncrementPurchases(ctx context.Context, productID string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE products SET purchases = purchases + 1, updated_at = NOW() WHERE id = $1`,
		productID,
	)
	if err != nil {
		return fmt.Errorf("increment purchases: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrProductNotFound
	}
	return nil
}
