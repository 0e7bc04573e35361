package constants

import "fmt"

// Session namespaces. Each role has its own signing secret and TTL.
const (
	RoleAdmin      = "ADMIN"
	RoleController = "CONTROLLER"
	RoleUser       = "USER"
)

// role error templates
const (
	ErrOnlyAdminsCanAccess      = "only admins may access %s"
	ErrOnlyControllersCanAccess = "only approved controllers may access %s"
)

func RoleErrorAdmin(feature string) string {
	return fmt.Sprintf(ErrOnlyAdminsCanAccess, feature)
}

func RoleErrorController(feature string) string {
	return fmt.Sprintf(ErrOnlyControllersCanAccess, feature)
}
