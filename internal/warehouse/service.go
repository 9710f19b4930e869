package warehouse

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/frahmantamala/smartsupply/internal"
)

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) List(ctx context.Context, q ListQuery) (*ListResult, error) {
	q = q.Normalize()
	rows, total, err := s.repo.List(ctx, ListFilter{
		Search: strings.TrimSpace(q.Search),
		Limit:  q.Limit,
		Offset: (q.Page - 1) * q.Limit,
	})
	if err != nil {
		s.logger.Error("failed to list warehouses", "error", err)
		return nil, internal.NewInternalError("failed to list warehouses", err)
	}

	warehouses := make([]*Warehouse, 0, len(rows))
	for _, row := range rows {
		warehouses = append(warehouses, FromDataModel(row))
	}

	return &ListResult{Warehouses: warehouses, Total: total, Page: q.Page, Limit: q.Limit}, nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*Warehouse, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to get warehouse", "id", id, "error", err)
		return nil, internal.NewInternalError("failed to get warehouse", err)
	}
	if row == nil {
		return nil, internal.ErrWarehouseNotFound
	}
	return FromDataModel(row), nil
}

// Create defaults the type to PHYSICAL and the capacity to DefaultCapacity.
func (s *Service) Create(ctx context.Context, dto CreateWarehouseDTO) (*Warehouse, error) {
	dto.Name = strings.TrimSpace(dto.Name)
	dto.Location = strings.TrimSpace(dto.Location)
	dto.Type = strings.ToUpper(strings.TrimSpace(dto.Type))
	if appErr := dto.Validate(); appErr != nil {
		return nil, appErr
	}

	w := &Warehouse{
		ID:       uuid.New(),
		Name:     dto.Name,
		Location: dto.Location,
		Type:     TypePhysical,
		Capacity: DefaultCapacity,
	}
	if dto.Type != "" {
		w.Type = Type(dto.Type)
	}
	if dto.Capacity != nil {
		w.Capacity = *dto.Capacity
	}

	row := ToDataModel(w)
	if err := s.repo.Create(ctx, row); err != nil {
		if errors.Is(err, ErrNameTaken) {
			return nil, internal.ErrWarehouseNameTaken.WithCause(err)
		}
		s.logger.Error("failed to create warehouse", "name", w.Name, "error", err)
		return nil, internal.NewInternalError("failed to create warehouse", err)
	}

	s.logger.Info("warehouse created", "id", row.ID, "name", row.Name)
	return FromDataModel(row), nil
}
