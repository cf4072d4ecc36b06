// Package rbac gates routes by the caller's role.
package rbac

import (
	"net/http"

	"github.com/shashiranjanraj/marketplace/pkg/middleware"
	"github.com/shashiranjanraj/marketplace/pkg/response"
)

// SellerRole is the role whose accounts must be approved before passing
// any role gate.
const SellerRole = "seller"

// HasRole allows only callers whose role is listed. Sellers additionally
// need an approved account. Authenticate must run first.
func HasRole(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := middleware.PrincipalFromCtx(r.Context())
			if !ok {
				response.Unauthorized(w, "Not authorized")
				return
			}
			if !allowed[p.Role] {
				response.Forbidden(w, "Access denied. Insufficient permissions")
				return
			}
			if p.Role == SellerRole && !p.Approved {
				response.Forbidden(w, "Your seller account is pending approval")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
