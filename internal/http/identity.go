package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/wrightlabs/marketplace/internal/cart"
)

// Identity headers set by the auth gateway. Authentication itself happens
// upstream; this service only consumes the result.
const (
	HeaderUserID    = "X-User-Id"
	HeaderUserEmail = "X-User-Email"
	HeaderUserName  = "X-User-Name"
	HeaderSessionID = "X-Session-Id"
)

type ctxKey string

const ctxIdentity ctxKey = "identity"

type RequestIdentity struct {
	UserID    string
	Email     string
	Name      string
	SessionID string
}

func (id RequestIdentity) CartOwner() cart.Identity {
	return cart.Identity{UserID: id.UserID, SessionID: id.SessionID}
}

// WithIdentity stores the caller's identity headers in the request context.
func WithIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := RequestIdentity{
			UserID:    strings.TrimSpace(r.Header.Get(HeaderUserID)),
			Email:     strings.TrimSpace(r.Header.Get(HeaderUserEmail)),
			Name:      strings.TrimSpace(r.Header.Get(HeaderUserName)),
			SessionID: strings.TrimSpace(r.Header.Get(HeaderSessionID)),
		}
		ctx := context.WithValue(r.Context(), ctxIdentity, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func GetIdentity(ctx context.Context) RequestIdentity {
	if v := ctx.Value(ctxIdentity); v != nil {
		if id, ok := v.(RequestIdentity); ok {
			return id
		}
	}
	return RequestIdentity{}
}
