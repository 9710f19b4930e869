package auth

type PermissionSet struct {
	CanViewProducts     bool `json:"canViewProducts"`
	CanCreateProducts   bool `json:"canCreateProducts"`
	CanEditProducts     bool `json:"canEditProducts"`
	CanDeleteProducts   bool `json:"canDeleteProducts"`
	CanViewSuppliers    bool `json:"canViewSuppliers"`
	CanManageSuppliers  bool `json:"canManageSuppliers"`
	CanViewOrders       bool `json:"canViewOrders"`
	CanManageOrders     bool `json:"canManageOrders"`
	CanViewInventory    bool `json:"canViewInventory"`
	CanAdjustStock      bool `json:"canAdjustStock"`
	CanViewWarehouses   bool `json:"canViewWarehouses"`
	CanManageWarehouses bool `json:"canManageWarehouses"`
}

// Capability names a single flag of PermissionSet, using its JSON name.
type Capability string

const (
	CanViewProducts     Capability = "canViewProducts"
	CanCreateProducts   Capability = "canCreateProducts"
	CanEditProducts     Capability = "canEditProducts"
	CanDeleteProducts   Capability = "canDeleteProducts"
	CanViewSuppliers    Capability = "canViewSuppliers"
	CanManageSuppliers  Capability = "canManageSuppliers"
	CanViewOrders       Capability = "canViewOrders"
	CanManageOrders     Capability = "canManageOrders"
	CanViewInventory    Capability = "canViewInventory"
	CanAdjustStock      Capability = "canAdjustStock"
	CanViewWarehouses   Capability = "canViewWarehouses"
	CanManageWarehouses Capability = "canManageWarehouses"
)

var (
	fullAccess = PermissionSet{
		CanViewProducts:     true,
		CanCreateProducts:   true,
		CanEditProducts:     true,
		CanDeleteProducts:   true,
		CanViewSuppliers:    true,
		CanManageSuppliers:  true,
		CanViewOrders:       true,
		CanManageOrders:     true,
		CanViewInventory:    true,
		CanAdjustStock:      true,
		CanViewWarehouses:   true,
		CanManageWarehouses: true,
	}

	procurementAccess = PermissionSet{
		CanViewProducts:    true,
		CanViewSuppliers:   true,
		CanManageSuppliers: true,
		CanViewOrders:      true,
		CanManageOrders:    true,
		CanViewInventory:   true,
		CanViewWarehouses:  true,
	}

	warehouseOpAccess = PermissionSet{
		CanViewProducts:   true,
		CanViewSuppliers:  true,
		CanViewOrders:     true,
		CanViewInventory:  true,
		CanAdjustStock:    true,
		CanViewWarehouses: true,
	}
)

// PermissionsFor is total: nil or empty yields no permissions, and a role outside
// the known set gets the WAREHOUSE_OP permissions.
func PermissionsFor(role *Role) PermissionSet {
	if role == nil || *role == "" {
		return PermissionSet{}
	}
	switch *role {
	case RoleAdmin, RoleManager:
		return fullAccess
	case RoleProcurement:
		return procurementAccess
	case RoleWarehouseOp:
		return warehouseOpAccess
	default:
		return warehouseOpAccess
	}
}

// Allows reports whether the set grants c. Unknown capabilities are denied.
func (p PermissionSet) Allows(c Capability) bool {
	switch c {
	case CanViewProducts:
		return p.CanViewProducts
	case CanCreateProducts:
		return p.CanCreateProducts
	case CanEditProducts:
		return p.CanEditProducts
	case CanDeleteProducts:
		return p.CanDeleteProducts
	case CanViewSuppliers:
		return p.CanViewSuppliers
	case CanManageSuppliers:
		return p.CanManageSuppliers
	case CanViewOrders:
		return p.CanViewOrders
	case CanManageOrders:
		return p.CanManageOrders
	case CanViewInventory:
		return p.CanViewInventory
	case CanAdjustStock:
		return p.CanAdjustStock
	case CanViewWarehouses:
		return p.CanViewWarehouses
	case CanManageWarehouses:
		return p.CanManageWarehouses
	default:
		return false
	}
}
