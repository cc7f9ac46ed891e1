package library

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/wrightlabs/marketplace/internal/catalog"
	"github.com/wrightlabs/marketplace/internal/order"
)

// Service answers entitlement queries. Ownership is derived from PAID orders;
// there is no separate entitlement write on fulfillment.
type Service struct {
	db *sql.DB
}

func NewService(db *sql.DB) *Service {
	return &Service{db: db}
}

// Products returns the distinct products across all of the buyer's paid
// orders.
func (s *Service) Products(ctx context.Context, buyerID string) ([]catalog.Product, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT p.id, p.seller_id, p.title, p.price, p.currency, p.status, p.purchases, p.created_at
         FROM order_items oi
         JOIN orders o ON o.id = oi.order_id
         JOIN products p ON p.id = oi.product_id
         WHERE o.buyer_id = $1 AND o.status = $2`,
		buyerID, order.StatusPaid,
	)
	if err != nil {
		return nil, fmt.Errorf("select library: %w", err)
	}
	defer rows.Close()

	var products []catalog.Product
	for rows.Next() {
		var p catalog.Product
		if err := rows.Scan(&p.ID, &p.SellerID, &p.Title, &p.Price, &p.Currency,
			&p.Status, &p.Purchases, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan library product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return products, nil
}

// Owns reports whether the buyer has a paid order containing the product.
func (s *Service) Owns(ctx context.Context, buyerID, productID string) (bool, error) {
	var owns bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (
             SELECT 1 FROM order_items oi
             JOIN orders o ON o.id = oi.order_id
             WHERE o.buyer_id = $1 AND o.status = $2 AND oi.product_id = $3
         )`,
		buyerID, order.StatusPaid, productID,
	).Scan(&owns)
	if err != nil {
		return false, fmt.Errorf("select ownership: %w", err)
	}
	return owns, nil
}
