package user

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/smartsupply/internal"
	"github.com/frahmantamala/smartsupply/internal/transport"
	"github.com/frahmantamala/smartsupply/pkg/logger"
)

type Handler struct {
	*transport.BaseHandler
}

func NewHandler() *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
	}
}

// GetCurrentUser handles GET /auth/profile. The auth middleware has already re-read the
// user for this request, so the context copy is current.
func (h *Handler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	current, ok := FromContext(r.Context())
	if !ok {
		h.WriteAppError(w, internal.ErrMissingToken)
		return
	}

	h.WriteJSON(w, http.StatusOK, current)
}
