package engine

import "fmt"

// Role is a semantic column category the views depend on. Each role carries
// a fixed candidate-name list; resolution picks the first candidate that is
// an exact, case-sensitive member of the dataset's headers. Real-world
// header variants that differ only in case will not resolve; the views
// degrade to a notice instead.
type Role string

const (
	RoleRevenue         Role = "revenue"
	RolePrice           Role = "price"
	RoleQuantity        Role = "quantity"
	RoleProduct         Role = "product"
	RoleSupplier        Role = "supplier"
	RoleLeadTime        Role = "lead_time"
	RoleDefectRate      Role = "defect_rate"
	RoleCarrier         Role = "carrier"
	RoleShippingCost    Role = "shipping_cost"
	RoleCustomerSegment Role = "customer_segment"
	RoleRegion          Role = "region"
)

// Roles lists every role in a stable order.
var Roles = []Role{
	RoleRevenue, RolePrice, RoleQuantity, RoleProduct, RoleSupplier,
	RoleLeadTime, RoleDefectRate, RoleCarrier, RoleShippingCost,
	RoleCustomerSegment, RoleRegion,
}

// roleCandidates: priority order matters, first match wins.
var roleCandidates = map[Role][]string{
	RoleRevenue:         {"Revenue", "Revenue generated", "Benefit per order", "Benefit", "Profit"},
	RolePrice:           {"Price", "Unit price", "Price per unit"},
	RoleQuantity:        {"Quantity", "Order Item Quantity", "Number of products sold"},
	RoleProduct:         {"Product Name", "SKU", "Product", "Product type", "Product Category"},
	RoleSupplier:        {"Supplier Name", "Supplier name"},
	RoleLeadTime:        {"Lead time", "Shipment Days", "Shipping Time", "Shipping days"},
	RoleDefectRate:      {"Defect rates", "Defects"},
	RoleCarrier:         {"Shipping carriers", "Shipping Mode", "Carrier"},
	RoleShippingCost:    {"Shipping costs", "Freight Cost"},
	RoleCustomerSegment: {"Customer Segment", "Customer demographics", "Segment"},
	RoleRegion:          {"Region", "Customer Country", "Market"},
}

// roleLabels name roles in user-facing notices.
var roleLabels = map[Role]string{
	RoleRevenue:         "Revenue",
	RolePrice:           "Price",
	RoleQuantity:        "Quantity",
	RoleProduct:         "Product",
	RoleSupplier:        "Supplier",
	RoleLeadTime:        "Lead time",
	RoleDefectRate:      "Defect rate",
	RoleCarrier:         "Carrier",
	RoleShippingCost:    "Shipping cost",
	RoleCustomerSegment: "Customer segment",
	RoleRegion:          "Region",
}

// RoleMap maps resolved roles to actual column names. Unresolved roles are
// simply absent.
type RoleMap map[Role]string

// ResolveRoles computes the role mapping from the dataset headers alone.
// Runs once per load.
func ResolveRoles(columns []string) RoleMap {
	set := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		set[c] = struct{}{}
	}
	m := make(RoleMap)
	for _, role := range Roles {
		for _, cand := range roleCandidates[role] {
			if _, ok := set[cand]; ok {
				m[role] = cand
				break
			}
		}
	}
	return m
}

// Column returns the resolved column name for a role.
func (m RoleMap) Column(r Role) (string, bool) {
	c, ok := m[r]
	return c, ok
}

// UnresolvedRoleError signals that a query needed a role no dataset column
// matched. Views convert it into a "column not found" notice.
type UnresolvedRoleError struct {
	Role Role
}

func (e *UnresolvedRoleError) Error() string {
	return fmt.Sprintf("no column resolved for role %s", e.Role)
}

// Notice is the user-facing message for the missing role.
func (e *UnresolvedRoleError) Notice() string {
	return roleLabels[e.Role] + " column not found."
}
