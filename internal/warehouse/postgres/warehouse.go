package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	warehouseDatamodel "github.com/frahmantamala/smartsupply/internal/core/datamodel/warehouse"
	"github.com/frahmantamala/smartsupply/internal/warehouse"
)

const (
	uniqueViolation = "23505"

	selectColumns = `id, name, location, type, capacity, created_at, updated_at`
	searchClause  = `($1 = '' OR name ILIKE $2 ESCAPE '\' OR location ILIKE $2 ESCAPE '\')`
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern matches search literally anywhere in the column.
func containsPattern(search string) string {
	return "%" + likeEscaper.Replace(search) + "%"
}

type WarehouseRepository struct {
	db *sqlx.DB
}

func NewWarehouseRepository(db *sqlx.DB) warehouse.RepositoryAPI {
	return &WarehouseRepository{db: db}
}

func (r *WarehouseRepository) List(ctx context.Context, filter warehouse.ListFilter) ([]*warehouseDatamodel.Warehouse, int, error) {
	pattern := containsPattern(filter.Search)

	var total int
	countQuery := `SELECT COUNT(*) FROM warehouses WHERE ` + searchClause
	if err := r.db.GetContext(ctx, &total, countQuery, filter.Search, pattern); err != nil {
		return nil, 0, fmt.Errorf("count warehouses: %w", err)
	}

	rows := []*warehouseDatamodel.Warehouse{}
	listQuery := `SELECT ` + selectColumns + ` FROM warehouses WHERE ` + searchClause + ` ORDER BY name ASC LIMIT $3 OFFSET $4`
	if err := r.db.SelectContext(ctx, &rows, listQuery, filter.Search, pattern, filter.Limit, filter.Offset); err != nil {
		return nil, 0, fmt.Errorf("list warehouses: %w", err)
	}

	return rows, total, nil
}

func (r *WarehouseRepository) GetByID(ctx context.Context, id uuid.UUID) (*warehouseDatamodel.Warehouse, error) {
	var w warehouseDatamodel.Warehouse
	query := `SELECT ` + selectColumns + ` FROM warehouses WHERE id = $1`
	if err := r.db.GetContext(ctx, &w, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get warehouse: %w", err)
	}
	return &w, nil
}

// Create inserts w and fills in the timestamps assigned by the database.
func (r *WarehouseRepository) Create(ctx context.Context, w *warehouseDatamodel.Warehouse) error {
	query := `INSERT INTO warehouses (id, name, location, type, capacity)
VALUES ($1, $2, $3, $4, $5)
RETURNING created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query, w.ID, w.Name, w.Location, w.Type, w.Capacity).
		Scan(&w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return warehouse.ErrNameTaken
		}
		return fmt.Errorf("insert warehouse: %w", err)
	}
	return nil
}
