package warehouse

import (
	"github.com/frahmantamala/smartsupply/internal"
	"github.com/frahmantamala/smartsupply/internal/core/common/validation"
)

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
	// MaxPage keeps (page-1)*limit far below any integer or OFFSET bound.
	MaxPage = 1_000_000
)

type CreateWarehouseDTO struct {
	Name     string `json:"name"`
	Location string `json:"location"`
	Type     string `json:"type"`
	Capacity *int   `json:"capacity"`
}

func (d CreateWarehouseDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("name", d.Name).Required().MaxLength(255)
	v.Field("location", d.Location).MaxLength(255)
	v.Field("type", d.Type).OneOf(TypeNames(), internal.ErrCodeInvalidWarehouseType)
	if d.Capacity != nil {
		v.Field("capacity", *d.Capacity).MinInt(0, internal.ErrCodeInvalidWarehouseCapacity)
	}
	return v.Validate()
}

type ListQuery struct {
	Page   int
	Limit  int
	Search string
}

// Normalize applies the paging defaults and bounds.
func (q ListQuery) Normalize() ListQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Page > MaxPage {
		q.Page = MaxPage
	}
	if q.Limit < 1 {
		q.Limit = DefaultPageLimit
	}
	if q.Limit > MaxPageLimit {
		q.Limit = MaxPageLimit
	}
	return q
}

type ListResult struct {
	Warehouses []*Warehouse
	Total      int
	Page       int
	Limit      int
}
