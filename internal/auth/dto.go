package auth

import (
	"github.com/frahmantamala/smartsupply/internal"
	"github.com/frahmantamala/smartsupply/internal/core/common/validation"
)

const MinPasswordLength = 8

// LoginDTO is the transport shape used by the HTTP handler to accept login requests.
type LoginDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterDTO struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
}

// Validate only checks presence. Format problems must not tell a caller more than
// "invalid credentials" would.
func (d LoginDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("email", d.Email).Required()
	v.Field("password", d.Password).Required()
	return v.Validate()
}

func (d RegisterDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("email", d.Email).Required().Email().MaxLength(254)
	v.Field("password", d.Password).Required().MinLength(MinPasswordLength, internal.ErrCodePasswordTooShort)
	v.Field("first_name", d.FirstName).Required().MaxLength(100)
	v.Field("last_name", d.LastName).Required().MaxLength(100)
	v.Field("role", d.Role).Required().OneOf(RoleNames(), internal.ErrCodeInvalidRole)
	return v.Validate()
}
