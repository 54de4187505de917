package middleware

import (
	"net/http"

	"veggiemarket/internal/domain"

	"go.uber.org/zap"
)

// RequireRole ensures the authenticated user holds one of the given
// dashboard roles.
func RequireRole(allowedRoles []domain.Role, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := GetUserRole(r.Context())
			if !ok {
				logger.Warn("Role not found in context")
				RespondWithError(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			for _, allowed := range allowedRoles {
				if domain.Role(role) == allowed {
					next.ServeHTTP(w, r)
					return
				}
			}

			logger.Warn("User role not authorized",
				zap.String("role", role),
				zap.String("path", r.URL.Path),
			)
			RespondWithError(w, http.StatusForbidden, "insufficient permissions")
		})
	}
}

// RequireSeller gates the product mutation endpoints.
func RequireSeller(logger *zap.Logger) func(http.Handler) http.Handler {
	return RequireRole([]domain.Role{domain.RoleSeller, domain.RoleAdmin}, logger)
}

// RequireBuyer gates the cart and checkout endpoints.
func RequireBuyer(logger *zap.Logger) func(http.Handler) http.Handler {
	return RequireRole([]domain.Role{domain.RoleBuyer, domain.RoleAdmin}, logger)
}

// RequireAdmin gates the platform management view.
func RequireAdmin(logger *zap.Logger) func(http.Handler) http.Handler {
	return RequireRole([]domain.Role{domain.RoleAdmin}, logger)
}
