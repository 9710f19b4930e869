package warehouse

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	warehouseDatamodel "github.com/frahmantamala/smartsupply/internal/core/datamodel/warehouse"
)

type Type string

const (
	TypePhysical Type = "PHYSICAL"
	TypeVirtual  Type = "VIRTUAL"
)

const DefaultCapacity = 10000

func TypeNames() []string {
	return []string{string(TypePhysical), string(TypeVirtual)}
}

type Warehouse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Location  string    `json:"location"`
	Type      Type      `json:"type"`
	Capacity  int       `json:"capacity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ListFilter narrows List. Search matches name or location, case-insensitively.
type ListFilter struct {
	Search string
	Limit  int
	Offset int
}

type RepositoryAPI interface {
	List(ctx context.Context, filter ListFilter) ([]*warehouseDatamodel.Warehouse, int, error)
	GetByID(ctx context.Context, id uuid.UUID) (*warehouseDatamodel.Warehouse, error)
	Create(ctx context.Context, w *warehouseDatamodel.Warehouse) error
}

// ErrNameTaken is returned by RepositoryAPI.Create when the name is already in use.
var ErrNameTaken = errors.New("warehouse name already in use")

func ToDataModel(w *Warehouse) *warehouseDatamodel.Warehouse {
	return &warehouseDatamodel.Warehouse{
		ID:        w.ID,
		Name:      w.Name,
		Location:  w.Location,
		Type:      string(w.Type),
		Capacity:  w.Capacity,
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}
}

func FromDataModel(w *warehouseDatamodel.Warehouse) *Warehouse {
	return &Warehouse{
		ID:        w.ID,
		Name:      w.Name,
		Location:  w.Location,
		Type:      Type(w.Type),
		Capacity:  w.Capacity,
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}
}
