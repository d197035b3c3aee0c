package httpapi

import (
	"context"
	"fmt"

	"github.com/riskibarqy/roster-engine/internal/domain/user"
	"github.com/riskibarqy/roster-engine/internal/usecase"
)

type contextKey string

const principalContextKey contextKey = "auth_principal"

func withPrincipal(ctx context.Context, p user.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, p)
}

func principalFromContext(ctx context.Context) (user.Principal, bool) {
	p, ok := ctx.Value(principalContextKey).(user.Principal)
	return p, ok
}

// actorID returns the authenticated user id or an unauthorized error.
func actorID(ctx context.Context) (string, error) {
	p, ok := principalFromContext(ctx)
	if !ok || p.UserID == "" {
		return "", fmt.Errorf("%w: missing principal", usecase.ErrUnauthorized)
	}
	return p.UserID, nil
}
