package rbac

import "errors"

var (
	// ErrUnknownRole is returned when a role name has no definition.
	ErrUnknownRole = errors.New("rbac: unknown role")

	// ErrPermissionDenied is returned when the role lacks the required
	// permission.
	ErrPermissionDenied = errors.New("rbac: permission denied")

	// ErrNoRoleInContext is returned when authorization is attempted on a
	// request whose context carries no role.
	ErrNoRoleInContext = errors.New("rbac: no role in context")

	// ErrCircularInheritance is returned at construction time when role
	// definitions inherit from each other in a cycle.
	ErrCircularInheritance = errors.New("rbac: circular role inheritance")
)
