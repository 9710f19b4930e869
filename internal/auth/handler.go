package auth

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/smartsupply/internal"
	"github.com/frahmantamala/smartsupply/internal/transport"
	"github.com/frahmantamala/smartsupply/internal/user"
	"github.com/frahmantamala/smartsupply/pkg/logger"
)

type ServiceAPI interface {
	Register(ctx context.Context, dto RegisterDTO) (*user.User, error)
	Authenticate(ctx context.Context, dto LoginDTO) (*LoginResponse, error)
	ResolveToken(ctx context.Context, token string) (*user.User, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(svc ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
	}
}

// Register handles POST /auth/register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var dto RegisterDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteAppError(w, err)
		return
	}

	created, err := h.Service.Register(r.Context(), dto)
	if err != nil {
		logAuthFailure(logger.From(r.Context()), "registration failed", err)
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, created)
}

// Login handles POST /auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteAppError(w, err)
		return
	}

	resp, err := h.Service.Authenticate(r.Context(), dto)
	if err != nil {
		logAuthFailure(logger.From(r.Context()), "authentication failed", err)
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, resp)
}

// Permissions handles GET /auth/permissions
func (h *Handler) Permissions(w http.ResponseWriter, r *http.Request) {
	u, ok := UserFromContext(r.Context())
	if !ok {
		h.WriteAppError(w, internal.ErrMissingToken)
		return
	}
	h.WriteJSON(w, http.StatusOK, PermissionsFor(RoleOf(u.Role)))
}

// AuthMiddleware resolves the bearer token to a freshly loaded user and stores it in the
// request context. Every failure is a 401.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := h.ExtractTokenFromHeader(r)
		if token == "" {
			h.WriteAppError(w, internal.ErrMissingToken)
			return
		}

		u, err := h.Service.ResolveToken(r.Context(), token)
		if err != nil {
			logAuthFailure(logger.From(r.Context()), "auth middleware: token rejected", err)
			if appErr, ok := internal.IsAppError(err); ok && appErr.Type == internal.ErrorTypeInternal {
				h.WriteAppError(w, err)
				return
			}
			h.WriteAppError(w, unauthorized(err))
			return
		}

		ctx := logger.With(ContextWithUser(r.Context(), u), "user_id", u.ID.String())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func logAuthFailure(lg *slog.Logger, msg string, err error) {
	if appErr, ok := internal.IsAppError(err); ok && appErr.Type != internal.ErrorTypeInternal {
		lg.Warn(msg, "code", appErr.Code)
		return
	}
	lg.Error(msg, "error", err)
}

// unauthorized keeps 401 responses to the known token codes.
func unauthorized(err error) error {
	if appErr, ok := internal.IsAppError(err); ok && appErr.Type == internal.ErrorTypeUnauthorized {
		return appErr
	}
	return internal.ErrInvalidToken.WithCause(err)
}
