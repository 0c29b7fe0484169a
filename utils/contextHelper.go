package utils

import (
	"context"

	"github.com/TanakaTsuyoshi-10/kpidash-backend/appctx"
	"github.com/google/uuid"
)

// CorrelationId returns the request's correlation id, minting one when the
// middleware chain has not set it (background jobs, tests).
func CorrelationId(ctx context.Context) string {
	if v, ok := appctx.GetString(ctx, appctx.ContextKeyCorrelationId); ok && v != "" {
		return v
	}
	return uuid.NewString()
}

// UserId returns the authenticated user id, empty for anonymous contexts.
func UserId(ctx context.Context) string {
	v, _ := appctx.GetString(ctx, appctx.ContextKeyUserId)
	return v
}

// IsAdmin reports whether the request carries the admin role.
func IsAdmin(ctx context.Context) bool {
	v, _ := appctx.GetBool(ctx, appctx.ContextKeyIsAdmin)
	return v
}
