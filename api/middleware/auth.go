package middleware

import (
	"context"
	"net/http"

	"github.com/angelmondragon/ovenly-backend/api/responses"
	"github.com/angelmondragon/ovenly-backend/api/validators"
	pkgAuth "github.com/angelmondragon/ovenly-backend/pkg/auth"
	"github.com/angelmondragon/ovenly-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/ovenly-backend/pkg/errors"
	"github.com/angelmondragon/ovenly-backend/pkg/logger"
)

// Auth validates a bearer token and seeds the request context with the claims.
func Auth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := validators.BearerToken(r.Header.Get("Authorization"))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, errAuthRequired())
				return
			}

			claims, err := pkgAuth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token").
						WithLocalized("Invalid or expired token.", "الرمز غير صالح أو منتهي الصلاحية."))
				return
			}

			ctx := context.WithValue(r.Context(), ctxUserID, claims.UserID.String())
			ctx = context.WithValue(ctx, ctxRole, string(claims.Role))

			if logg != nil {
				ctx = logg.WithUserID(ctx, claims.UserID.String())
				ctx = logg.WithActorRole(ctx, string(claims.Role))
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
