package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wrightlabs/marketplace/internal/cart"
	"github.com/wrightlabs/marketplace/internal/catalog"
)

type cartRepoFake struct {
	getByOwnerFunc func(ctx context.Context, owner cart.Identity) (*cart.Cart, error)
	addItemFunc    func(ctx context.Context, cartID, productID string) (*cart.Item, error)
	removeItemFunc func(ctx context.Context, itemID string) error
	linesFunc      func(ctx context.Context, cartID string) ([]cart.Line, error)
}

func (f *cartRepoFake) GetByOwner(ctx context.Context, owner cart.Identity) (*cart.Cart, error) {
	if f.getByOwnerFunc != nil {
		return f.getByOwnerFunc(ctx, owner)
	}
	return nil, nil
}
func (f *cartRepoFake) Create(ctx context.Context, c *cart.Cart) error {
	c.ID = "cart-1"
	return nil
}
func (f *cartRepoFake) AddItem(ctx context.Context, cartID, productID string) (*cart.Item, error) {
	if f.addItemFunc != nil {
		return f.addItemFunc(ctx, cartID, productID)
	}
	return &cart.Item{ID: "item-1", CartID: cartID, ProductID: productID, Quantity: 1}, nil
}
func (f *cartRepoFake) RemoveItem(ctx context.Context, itemID string) error {
	if f.removeItemFunc != nil {
		return f.removeItemFunc(ctx, itemID)
	}
	return nil
}
func (f *cartRepoFake) Lines(ctx context.Context, cartID string) ([]cart.Line, error) {
	if f.linesFunc != nil {
		return f.linesFunc(ctx, cartID)
	}
	return nil, nil
}
func (f *cartRepoFake) Clear(ctx context.Context, cartID string) error { return nil }
func (f *cartRepoFake) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return 0, nil
}

type productRepoFake struct {
	getFunc func(ctx context.Context, productID string) (*catalog.Product, error)
}

func (f *productRepoFake) GetByID(ctx context.Context, productID string) (*catalog.Product, error) {
	if f.getFunc != nil {
		return f.getFunc(ctx, productID)
	}
	return nil, catalog.ErrProductNotFound
}
func (f *productRepoFake) IncrementPurchases(ctx context.Context, productID string) error {
	return nil
}

func newCartHandler(repo cart.Repository, products catalog.Repository) *CartHandler {
	svc := cart.NewService(repo, products, log.New(io.Discard, "", 0))
	return NewCartHandler(svc)
}

func liveProduct(id string) *catalog.Product {
	return &catalog.Product{
		ID:     id,
		Title:  "Algebra pack",
		Price:  decimal.RequireFromString("100.00"),
		Status: catalog.StatusPublished,
	}
}

func TestGetCart_MintsSessionForAnonymous(t *testing.T) {
	h := newCartHandler(&cartRepoFake{}, &productRepoFake{})

	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	rec := httptest.NewRecorder()
	WithIdentity(http.HandlerFunc(h.GetCart)).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(HeaderSessionID))

	var resp struct {
		Cart struct {
			CartID string `json:"cartId"`
		} `json:"cart"`
		Total decimal.Decimal `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "cart-1", resp.Cart.CartID)
	assert.True(t, resp.Total.IsZero())
}

func TestGetCart_TotalsLines(t *testing.T) {
	repo := &cartRepoFake{
		getByOwnerFunc: func(ctx context.Context, owner cart.Identity) (*cart.Cart, error) {
			return &cart.Cart{ID: "cart-1", UserID: owner.UserID}, nil
		},
		linesFunc: func(ctx context.Context, cartID string) ([]cart.Line, error) {
			return []cart.Line{
				{ItemID: "i1", ProductID: "p1", Title: "Algebra pack", Price: decimal.RequireFromString("100.00")},
				{ItemID: "i2", ProductID: "p2", Title: "Geometry pack", Price: decimal.RequireFromString("250.00")},
			}, nil
		},
	}
	h := newCartHandler(repo, &productRepoFake{})

	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	req.Header.Set(HeaderUserID, "u1")
	rec := httptest.NewRecorder()
	WithIdentity(http.HandlerFunc(h.GetCart)).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Lines []cart.Line `json:"lines"`
		Total decimal.Decimal `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Lines, 2)
	assert.True(t, resp.Total.Equal(decimal.RequireFromString("350")), "total: %s", resp.Total)
}

func TestAddItem_HappyPath(t *testing.T) {
	products := &productRepoFake{
		getFunc: func(ctx context.Context, productID string) (*catalog.Product, error) {
			return liveProduct(productID), nil
		},
	}
	h := newCartHandler(&cartRepoFake{}, products)

	req := httptest.NewRequest(http.MethodPost, "/api/cart/items", strings.NewReader(`{"productId":"p1"}`))
	req.Header.Set(HeaderSessionID, "sess-1")
	rec := httptest.NewRecorder()
	WithIdentity(http.HandlerFunc(h.AddItem)).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Cart cart.Cart `json:"cart"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Cart.Items, 1)
	assert.Equal(t, "p1", resp.Cart.Items[0].ProductID)
}

func TestAddItem_MissingProductID(t *testing.T) {
	h := newCartHandler(&cartRepoFake{}, &productRepoFake{})

	req := httptest.NewRequest(http.MethodPost, "/api/cart/items", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	WithIdentity(http.HandlerFunc(h.AddItem)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAddItem_UnknownProduct(t *testing.T) {
	h := newCartHandler(&cartRepoFake{}, &productRepoFake{})

	req := httptest.NewRequest(http.MethodPost, "/api/cart/items", strings.NewReader(`{"productId":"missing"}`))
	rec := httptest.NewRecorder()
	WithIdentity(http.HandlerFunc(h.AddItem)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAddItem_Duplicate(t *testing.T) {
	repo := &cartRepoFake{
		addItemFunc: func(ctx context.Context, cartID, productID string) (*cart.Item, error) {
			return nil, cart.ErrDuplicateItem
		},
	}
	products := &productRepoFake{
		getFunc: func(ctx context.Context, productID string) (*catalog.Product, error) {
			return liveProduct(productID), nil
		},
	}
	h := newCartHandler(repo, products)

	req := httptest.NewRequest(http.MethodPost, "/api/cart/items", strings.NewReader(`{"productId":"p1"}`))
	rec := httptest.NewRecorder()
	WithIdentity(http.HandlerFunc(h.AddItem)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRemoveItem_NotFound(t *testing.T) {
	repo := &cartRepoFake{
		removeItemFunc: func(ctx context.Context, itemID string) error {
			return cart.ErrItemNotFound
		},
	}
	h := newCartHandler(repo, &productRepoFake{})

	r := chi.NewRouter()
	r.Delete("/api/cart/items/{itemId}", h.RemoveItem)

	req := httptest.NewRequest(http.MethodDelete, "/api/cart/items/missing", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRemoveItem_Success(t *testing.T) {
	h := newCartHandler(&cartRepoFake{}, &productRepoFake{})

	r := chi.NewRouter()
	r.Delete("/api/cart/items/{itemId}", h.RemoveItem)

	req := httptest.NewRequest(http.MethodDelete, "/api/cart/items/item-1", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"removed"}`, rec.Body.String())
}
