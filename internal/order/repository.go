package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrOrderNotFound         = errors.New("order not found")
	ErrConflictingTransition = errors.New("conflicting order status transition")
)

// TransitionResult reports the outcome of a conditional status update.
type TransitionResult int

const (
	// TransitionApplied means this caller won the conditional update and must
	// run the transition's side effects.
	TransitionApplied TransitionResult = iota
	// TransitionAlreadyApplied means the order was already in the target
	// status: an idempotent replay, side effects must not re-run.
	TransitionAlreadyApplied
	// TransitionConflict means the order sits in a different terminal status.
	TransitionConflict
)

type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByNumber(ctx context.Context, orderNumber string) (*Order, error)
	ListByBuyer(ctx context.Context, buyerID string) ([]Order, error)
	MarkPaid(ctx context.Context, orderNumber, providerRef string) (TransitionResult, error)
	MarkFailed(ctx context.Context, orderNumber string) (TransitionResult, error)
	MarkRefunded(ctx context.Context, orderNumber string) (TransitionResult, error)
}

type repo struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repo{db: db}
}

func (r *repo) Create(ctx context.Context, o *Order) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	cartID := sql.NullString{String: o.CartID, Valid: o.CartID != ""}
	buyerID := sql.NullString{String: o.BuyerID, Valid: o.BuyerID != ""}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO orders (id, order_number, cart_id, buyer_id, buyer_email, buyer_name,
                             total_amount, currency, status, payment_provider, created_at)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		o.ID, o.OrderNumber, cartID, buyerID, o.BuyerEmail, o.BuyerName,
		o.TotalAmount, o.Currency, o.Status, o.PaymentProvider, o.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for i := range o.Items {
		it := &o.Items[i]
		if it.ID == "" {
			it.ID = uuid.NewString()
		}
		it.OrderID = o.ID
		_, err = tx.ExecContext(ctx,
			`INSERT INTO order_items (id, order_id, product_id, seller_id, product_title,
                                      price, platform_fee, seller_amount, quantity)
             VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			it.ID, it.OrderID, it.ProductID, it.SellerID, it.ProductTitle,
			it.Price, it.PlatformFee, it.SellerAmount, it.Quantity,
		)
		if err != nil {
			return fmt.Errorf("insert order_item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (r *repo) GetByNumber(ctx context.Context, orderNumber string) (*Order, error) {
	var (
		o          Order
		cartID     sql.NullString
		buyerID    sql.NullString
		providerRef sql.NullString
		paidAt     sql.NullTime
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, order_number, cart_id, buyer_id, buyer_email, buyer_name, total_amount,
                currency, status, payment_provider, payment_provider_ref, created_at, paid_at
         FROM orders WHERE order_number = $1`,
		orderNumber,
	).Scan(&o.ID, &o.OrderNumber, &cartID, &buyerID, &o.BuyerEmail, &o.BuyerName,
		&o.TotalAmount, &o.Currency, &o.Status, &o.PaymentProvider, &providerRef,
		&o.CreatedAt, &paidAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("select order: %w", err)
	}
	o.CartID = cartID.String
	o.BuyerID = buyerID.String
	o.PaymentProviderRef = providerRef.String
	if paidAt.Valid {
		t := paidAt.Time
		o.PaidAt = &t
	}

	items, err := r.itemsFor(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.Items = items

	return &o, nil
}

func (r *repo) itemsFor(ctx context.Context, orderID string) ([]Item, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, order_id, product_id, seller_id, product_title, price, platform_fee, seller_amount, quantity
         FROM order_items WHERE order_id = $1`,
		orderID,
	)
	if err != nil {
		return nil, fmt.Errorf("select order_items: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var (
			it        Item
			productID sql.NullString
			sellerID  sql.NullString
		)
		if err := rows.Scan(&it.ID, &it.OrderID, &productID, &sellerID, &it.ProductTitle,
			&it.Price, &it.PlatformFee, &it.SellerAmount, &it.Quantity); err != nil {
			return nil, fmt.Errorf("scan order_item: %w", err)
		}
		it.ProductID = productID.String
		it.SellerID = sellerID.String
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return items, nil
}

func (r *repo) ListByBuyer(ctx context.Context, buyerID string) ([]Order, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, order_number, buyer_email, total_amount, currency, status, created_at
         FROM orders WHERE buyer_id = $1 ORDER BY created_at DESC`,
		buyerID,
	)
	if err != nil {
		return nil, fmt.Errorf("select orders: %w", err)
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.OrderNumber, &o.BuyerEmail, &o.TotalAmount,
			&o.Currency, &o.Status, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		o.BuyerID = buyerID
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return orders, nil
}

// MarkPaid applies PENDING -> PAID as a single conditional update, so that of
// any number of concurrent webhook deliveries exactly one observes
// TransitionApplied and runs fulfillment.
func (r *repo) MarkPaid(ctx context.Context, orderNumber, providerRef string) (TransitionResult, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE orders
         SET status = $2, paid_at = NOW(), payment_provider_ref = $3
         WHERE order_number = $1 AND status = $4`,
		orderNumber, StatusPaid, providerRef, StatusPending,
	)
	if err != nil {
		return 0, fmt.Errorf("mark paid: %w", err)
	}
	return r.classify(ctx, res, orderNumber, StatusPaid)
}

// MarkFailed applies PENDING -> FAILED. A failed payment is retried by
// creating a new order, never by resurrecting this one.
func (r *repo) MarkFailed(ctx context.Context, orderNumber string) (TransitionResult, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE orders SET status = $2 WHERE order_number = $1 AND status = $3`,
		orderNumber, StatusFailed, StatusPending,
	)
	if err != nil {
		return 0, fmt.Errorf("mark failed: %w", err)
	}
	return r.classify(ctx, res, orderNumber, StatusFailed)
}

// MarkRefunded applies PAID -> REFUNDED (administrative action).
func (r *repo) MarkRefunded(ctx context.Context, orderNumber string) (TransitionResult, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE orders SET status = $2 WHERE order_number = $1 AND status = $3`,
		orderNumber, StatusRefunded, StatusPaid,
	)
	if err != nil {
		return 0, fmt.Errorf("mark refunded: %w", err)
	}
	return r.classify(ctx, res, orderNumber, StatusRefunded)
}

// classify distinguishes a lost conditional update: replay of the same target
// status is idempotent, any other terminal status is a conflict.
func (r *repo) classify(ctx context.Context, res sql.Result, orderNumber string, target Status) (TransitionResult, error) {
	if n, err := res.RowsAffected(); err == nil && n == 1 {
		return TransitionApplied, nil
	}

	var current Status
	err := r.db.QueryRowContext(ctx,
		`SELECT status FROM orders WHERE order_number = $1`, orderNumber,
	).Scan(&current)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrOrderNotFound
		}
		return 0, fmt.Errorf("select status: %w", err)
	}

	if current == target {
		return TransitionAlreadyApplied, nil
	}
	return TransitionConflict, nil
}
