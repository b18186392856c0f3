package match

import (
	"strings"

	"github.com/invoicevault/template-engine/constants"
)

// Role is a field's inferred semantic purpose. Vendor documents rarely label
// their fields consistently, so the role is guessed from the field name and
// declared data type rather than an explicit enum on the template.
type Role int

const (
	RoleNone Role = iota
	RoleDate
	RoleCurrency
	RoleMerchant
	RoleOrderNumber
)

func (r Role) String() string {
	switch r {
	case RoleDate:
		return "date"
	case RoleCurrency:
		return "currency"
	case RoleMerchant:
		return "merchant"
	case RoleOrderNumber:
		return "order_number"
	default:
		return "none"
	}
}

// ClassifyField maps (field_name, data_type) to a role. Checks run in a fixed
// order so names that hit several rules resolve deterministically: "order_date"
// is a date field, "invoice_total" a currency field.
func ClassifyField(fieldName string, dataType constants.DataType) Role {
	name := strings.ToLower(fieldName)

	if dataType == constants.TypeDate || strings.Contains(name, "date") {
		return RoleDate
	}
	if dataType == constants.TypeCurrency ||
		strings.Contains(name, "total") ||
		strings.Contains(name, "amount") ||
		strings.Contains(name, "balance") ||
		strings.Contains(name, "price") {
		return RoleCurrency
	}
	if strings.Contains(name, "merchant") ||
		strings.Contains(name, "vendor") ||
		strings.Contains(name, "seller") ||
		strings.Contains(name, "store") {
		return RoleMerchant
	}
	if strings.Contains(name, "order") ||
		strings.Contains(name, "invoice") ||
		strings.Contains(name, "confirmation") {
		return RoleOrderNumber
	}
	return RoleNone
}
