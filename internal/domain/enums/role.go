package enums

import "strings"

type Role string

const (
	RoleUser     Role = "USER"
	RoleOperator Role = "OPERATOR"
	RoleOwner    Role = "OWNER"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleOperator, RoleOwner:
		return true
	default:
		return false
	}
}

// ParseRole accepts any casing and surrounding whitespace.
func ParseRole(raw string) (Role, bool) {
	role := Role(strings.ToUpper(strings.TrimSpace(raw)))
	return role, role.Valid()
}
