package auth

import (
	"fmt"
	"strings"
)

// Role is the closed set of account roles. Values outside the set can still reach
// PermissionsFor from stored data and are handled there.
type Role string

const (
	RoleAdmin       Role = "ADMIN"
	RoleManager     Role = "MANAGER"
	RoleWarehouseOp Role = "WAREHOUSE_OP"
	RoleProcurement Role = "PROCUREMENT"
)

func Roles() []Role {
	return []Role{RoleAdmin, RoleManager, RoleWarehouseOp, RoleProcurement}
}

func RoleNames() []string {
	roles := Roles()
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	return names
}

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleWarehouseOp, RoleProcurement:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

// ParseRole is strict: the value must match one of the roles exactly.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q (want one of %s)", s, strings.Join(RoleNames(), ", "))
	}
	return r, nil
}

// RoleOf converts a stored role string. An empty string yields nil.
func RoleOf(s string) *Role {
	if s == "" {
		return nil
	}
	r := Role(s)
	return &r
}
