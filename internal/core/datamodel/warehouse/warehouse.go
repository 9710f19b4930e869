package warehouse

import (
	"time"

	"github.com/google/uuid"
)

// Warehouse is the row shape of the warehouses table as scanned by sqlx.
type Warehouse struct {
	ID        uuid.UUID `db:"id"`
	Name      string    `db:"name"`
	Location  string    `db:"location"`
	Type      string    `db:"type"`
	Capacity  int       `db:"capacity"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
