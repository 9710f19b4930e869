package warehouse

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/google/uuid"

	"github.com/frahmantamala/smartsupply/internal/transport"
)

type ServiceAPI interface {
	List(ctx context.Context, q ListQuery) (*ListResult, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Warehouse, error)
	Create(ctx context.Context, dto CreateWarehouseDTO) (*Warehouse, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

// ListWarehouses handles GET /warehouses. The total count is returned in X-Total-Count.
func (h *Handler) ListWarehouses(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page, _ := strconv.Atoi(query.Get("page"))
	limit, _ := strconv.Atoi(query.Get("limit"))

	result, err := h.Service.List(r.Context(), ListQuery{
		Page:   page,
		Limit:  limit,
		Search: query.Get("search"),
	})
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	w.Header().Set("X-Total-Count", strconv.Itoa(result.Total))
	h.WriteJSON(w, http.StatusOK, result.Warehouses)
}

// GetWarehouse handles GET /warehouses/{id}
func (h *Handler) GetWarehouse(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.WriteAppError(w, transport.PathError("id", err))
		return
	}

	wh, err := h.Service.GetByID(r.Context(), id)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, wh)
}

// CreateWarehouse handles POST /warehouses
func (h *Handler) CreateWarehouse(w http.ResponseWriter, r *http.Request) {
	var dto CreateWarehouseDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteAppError(w, err)
		return
	}

	created, err := h.Service.Create(r.Context(), dto)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, created)
}
