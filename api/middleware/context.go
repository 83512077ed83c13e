package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/angelmondragon/ovenly-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/ovenly-backend/pkg/errors"
)

type contextKey string

const (
	ctxUserID contextKey = "user_id"
	ctxRole   contextKey = "actor_role"
)

func UserIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxUserID).(string); ok {
		return v
	}
	return ""
}

func RoleFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxRole).(string); ok {
		return v
	}
	return ""
}

// WithUserID injects the user identifier into the context.
func WithUserID(ctx context.Context, userID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxUserID, userID)
}

// WithRole injects the actor role into the context.
func WithRole(ctx context.Context, role string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxRole, role)
}

// ActorFromContext returns the authenticated user and role, or an
// Unauthorized error when the request carries no valid identity.
func ActorFromContext(ctx context.Context) (uuid.UUID, enums.Role, error) {
	userID, err := uuid.Parse(UserIDFromContext(ctx))
	if err != nil || userID == uuid.Nil {
		return uuid.Nil, "", errAuthRequired()
	}
	role, err := enums.ParseRole(RoleFromContext(ctx))
	if err != nil {
		return uuid.Nil, "", errAuthRequired()
	}
	return userID, role, nil
}

func errAuthRequired() *pkgerrors.Error {
	return pkgerrors.Unauthorized("Authentication required.", "المصادقة مطلوبة.")
}
