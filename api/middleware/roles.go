package middleware

import (
	"net/http"

	"github.com/agrilink/agrilink-backend/api/responses"
	"github.com/agrilink/agrilink-backend/pkg/enums"
	pkgerrors "github.com/agrilink/agrilink-backend/pkg/errors"
	"github.com/agrilink/agrilink-backend/pkg/logger"
)

func RequireRole(role string, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if RoleFromContext(r.Context()) != role {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "role required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireReviewer admits any role allowed to act on incoming requests.
func RequireReviewer(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, err := enums.ParseRole(RoleFromContext(r.Context()))
			if err != nil || !role.IsReviewer() {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "reviewer role required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
