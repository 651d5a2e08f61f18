package http

import (
	"context"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/veriwork/backend/httpjson"
)

type contextKey string

const claimsKey contextKey = "jwt_claims"

func withClaims(ctx context.Context, claims jwt.MapClaims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

func claimsFromContext(ctx context.Context) (jwt.MapClaims, bool) {
	claims, ok := ctx.Value(claimsKey).(jwt.MapClaims)
	return claims, ok
}

// requireAuth rejects requests that carried no valid bearer token.
func requireAuth(w http.ResponseWriter, r *http.Request) bool {
	if _, ok := claimsFromContext(r.Context()); !ok {
		httpjson.WriteErrorJson(w,
			http.StatusText(http.StatusUnauthorized),
			http.StatusUnauthorized,
			"unauthorized")
		return false
	}
	return true
}
