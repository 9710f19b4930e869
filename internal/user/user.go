package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	userDatamodel "github.com/frahmantamala/smartsupply/internal/core/datamodel/user"
)

// User is the account record. PasswordHash never leaves the process.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// WithoutHash returns a copy with PasswordHash cleared. Anything handed beyond the
// credential check gets this copy.
func (u *User) WithoutHash() *User {
	cp := *u
	cp.PasswordHash = ""
	return &cp
}

// PublicUser is the projection returned alongside an access token.
type PublicUser struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Role      string    `json:"role"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role,
	}
}

// NewUser carries the fields needed to create an account. PasswordHash must already be hashed.
type NewUser struct {
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Role         string
}

// Directory is the persistence contract for accounts. Lookups return nil, nil when nothing matches.
type Directory interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	Create(ctx context.Context, u NewUser) (*User, error)
}

// ErrEmailTaken is returned by Directory.Create when the email is already registered.
var ErrEmailTaken = errors.New("email already registered")

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func ToDataModel(u NewUser) *userDatamodel.User {
	return &userDatamodel.User{
		Email:        NormalizeEmail(u.Email),
		PasswordHash: u.PasswordHash,
		FirstName:    strings.TrimSpace(u.FirstName),
		LastName:     strings.TrimSpace(u.LastName),
		Role:         u.Role,
	}
}

func FromDataModel(u *userDatamodel.User) *User {
	return &User{
		ID:           u.ID,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Role:         u.Role,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}
