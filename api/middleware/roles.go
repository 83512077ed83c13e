package middleware

import (
	"net/http"
	"slices"

	"github.com/angelmondragon/ovenly-backend/api/responses"
	"github.com/angelmondragon/ovenly-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/ovenly-backend/pkg/errors"
	"github.com/angelmondragon/ovenly-backend/pkg/logger"
)

// RequireRole admits only actors whose role is listed.
func RequireRole(logg *logger.Logger, allowed ...enums.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, role, err := ActorFromContext(r.Context())
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			if !slices.Contains(allowed, role) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Forbidden(
					"You do not have permission to perform this action.",
					"ليس لديك صلاحية لتنفيذ هذا الإجراء.",
				))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
