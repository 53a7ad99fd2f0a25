package common

const (
	RoleStudent = "student"
	RoleNGO     = "ngo"
)

// ValidRole reports whether role is one the platform assigns.
func ValidRole(role string) bool {
	return role == RoleStudent || role == RoleNGO
}
