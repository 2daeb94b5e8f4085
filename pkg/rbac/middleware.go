package rbac

import (
	"errors"
	"net/http"
)

// RequirePermission guards a route subtree with a permission check against
// the role in the request context. Missing role maps to 401, insufficient
// permissions to 403.
func RequirePermission(authz *Authorizer, permission string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			err := authz.CanFromContext(r.Context(), permission)
			switch {
			case err == nil:
				next.ServeHTTP(w, r)
			case errors.Is(err, ErrNoRoleInContext):
				http.Error(w, "authentication required", http.StatusUnauthorized)
			default:
				http.Error(w, "permission denied", http.StatusForbidden)
			}
		})
	}
}
