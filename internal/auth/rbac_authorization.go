package auth

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/smartsupply/internal"
	"github.com/frahmantamala/smartsupply/internal/transport"
)

// RBACAuthorization guards routes with a capability from the role-permission table.
// A missing user is 401, a denied capability is 403.
type RBACAuthorization struct {
	*transport.BaseHandler
	logger  *slog.Logger
	metrics *Metrics
}

func NewRBACAuthorization(logger *slog.Logger, metrics *Metrics) *RBACAuthorization {
	base := transport.NewBaseHandler(logger)
	return &RBACAuthorization{
		BaseHandler: base,
		logger:      base.Logger,
		metrics:     metrics,
	}
}

func (ra *RBACAuthorization) Check(next http.HandlerFunc, capability Capability) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := UserFromContext(r.Context())
		if !ok {
			ra.logger.WarnContext(r.Context(), "authorization check failed: user not found in context")
			ra.WriteAppError(w, internal.ErrMissingToken)
			return
		}

		if !PermissionsFor(RoleOf(u.Role)).Allows(capability) {
			ra.logger.WarnContext(r.Context(), "access denied: insufficient permissions",
				"user_id", u.ID,
				"role", u.Role,
				"required_capability", capability)
			ra.metrics.denied(capability)
			ra.WriteAppError(w, internal.ErrInsufficientPermissions)
			return
		}

		next.ServeHTTP(w, r)
	}
}

// Require returns middleware enforcing capability.
func (ra *RBACAuthorization) Require(capability Capability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return ra.Check(next.ServeHTTP, capability)
	}
}

func (ra *RBACAuthorization) RequireViewWarehouses() func(http.Handler) http.Handler {
	return ra.Require(CanViewWarehouses)
}

func (ra *RBACAuthorization) RequireManageWarehouses() func(http.Handler) http.Handler {
	return ra.Require(CanManageWarehouses)
}
