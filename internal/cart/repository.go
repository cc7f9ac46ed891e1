package cart

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

var (
	ErrCartNotFound  = errors.New("cart not found")
	ErrItemNotFound  = errors.New("cart item not found")
	ErrDuplicateItem = errors.New("product already in cart")
)

type Repository interface {
	GetByOwner(ctx context.Context, owner Identity) (*Cart, error)
	Create(ctx context.Context, c *Cart) error
	AddItem(ctx context.Context, cartID, productID string) (*Item, error)
	RemoveItem(ctx context.Context, itemID string) error
	Lines(ctx context.Context, cartID string) ([]Line, error)
	Clear(ctx context.Context, cartID string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type repo struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repo{db: db}
}

func (r *repo) GetByOwner(ctx context.Context, owner Identity) (*Cart, error) {
	query := `SELECT id, user_id, session_id, created_at, expires_at FROM carts WHERE session_id = $1`
	arg := owner.SessionID
	if !owner.Anonymous() {
		query = `SELECT id, user_id, session_id, created_at, expires_at FROM carts WHERE user_id = $1`
		arg = owner.UserID
	}

	var (
		c         Cart
		userID    sql.NullString
		sessionID sql.NullString
	)
	err := r.db.QueryRowContext(ctx, query, arg).
		Scan(&c.ID, &userID, &sessionID, &c.CreatedAt, &c.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select cart: %w", err)
	}
	c.UserID = userID.String
	c.SessionID = sessionID.String

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, cart_id, product_id, quantity, created_at FROM cart_items WHERE cart_id = $1`, c.ID)
	if err != nil {
		return nil, fmt.Errorf("select cart_items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.CartID, &it.ProductID, &it.Quantity, &it.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan cart_item: %w", err)
		}
		c.Items = append(c.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	return &c, nil
}

func (r *repo) Create(ctx context.Context, c *Cart) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}

	userID := sql.NullString{String: c.UserID, Valid: c.UserID != ""}
	sessionID := sql.NullString{String: c.SessionID, Valid: c.SessionID != ""}

	err := r.db.QueryRowContext(ctx,
		`INSERT INTO carts (id, user_id, session_id, created_at, expires_at)
         VALUES ($1, $2, $3, NOW(), $4)
         RETURNING created_at`,
		c.ID, userID, sessionID, c.ExpiresAt,
	).Scan(&c.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert cart: %w", err)
	}
	return nil
}

func (r *repo) AddItem(ctx context.Context, cartID, productID string) (*Item, error) {
	it := &Item{
		ID:        uuid.NewString(),
		CartID:    cartID,
		ProductID: productID,
		Quantity:  1, // digital goods are non-divisible
	}

	err := r.db.QueryRowContext(ctx,
		`INSERT INTO cart_items (id, cart_id, product_id, quantity, created_at)
         VALUES ($1, $2, $3, $4, NOW())
         RETURNING created_at`,
		it.ID, it.CartID, it.ProductID, it.Quantity,
	).Scan(&it.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return nil, ErrDuplicateItem
		}
		return nil, fmt.Errorf("insert cart_item: %w", err)
	}
	return it, nil
}

func (r *repo) RemoveItem(ctx context.Context, itemID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE id = $1`, itemID)
	if err != nil {
		return fmt.Errorf("delete cart_item: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (r *repo) Lines(ctx context.Context, cartID string) ([]Line, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT ci.id, p.id, p.seller_id, p.title, p.price
         FROM cart_items ci
         JOIN products p ON p.id = ci.product_id
         WHERE ci.cart_id = $1
         ORDER BY ci.created_at`,
		cartID,
	)
	if err != nil {
		return nil, fmt.Errorf("select cart lines: %w", err)
	}
	defer rows.Close()

	var lines []Line
	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.ItemID, &l.ProductID, &l.SellerID, &l.Title, &l.Price); err != nil {
			return nil, fmt.Errorf("scan cart line: %w", err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return lines, nil
}

func (r *repo) Clear(ctx context.Context, cartID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

func (r *repo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM carts WHERE expires_at < $1`, now)
	if err != nil {
		return 0, fmt.Errorf("delete expired carts: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
