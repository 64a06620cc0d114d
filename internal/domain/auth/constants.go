package auth

const (
	RoleEmployee = "employee"
	RoleManager  = "manager"
)

var Roles = []string{RoleEmployee, RoleManager}

func ValidRole(role string) bool {
	return role == RoleEmployee || role == RoleManager
}
