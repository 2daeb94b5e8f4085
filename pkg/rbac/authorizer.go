package rbac

import (
	"context"
	"fmt"
)

// maxInheritanceDepth bounds role nesting; deeper chains are treated as a
// definition error.
const maxInheritanceDepth = 10

// Authorizer answers permission checks against a flattened role map. It is
// immutable after construction and safe for concurrent use.
type Authorizer struct {
	grants map[string][]string
}

// NewAuthorizer loads role definitions, rejects inheritance cycles, and
// flattens inherited permissions into per-role grant lists.
func NewAuthorizer(ctx context.Context, source RoleSource) (*Authorizer, error) {
	roles, err := source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load roles: %w", err)
	}

	grants := make(map[string][]string, len(roles))
	for name := range roles {
		perms, err := flatten(name, roles, nil)
		if err != nil {
			return nil, err
		}
		grants[name] = normalize(perms)
	}

	return &Authorizer{grants: grants}, nil
}

// Can returns nil when the role holds the permission, directly or through
// inheritance. Unknown roles fail with ErrUnknownRole.
func (a *Authorizer) Can(role, permission string) error {
	granted, ok := a.grants[role]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownRole, role)
	}
	if !covers(granted, permission) {
		return fmt.Errorf("%w: %s lacks %s", ErrPermissionDenied, role, permission)
	}
	return nil
}

// CanAny returns nil when the role holds at least one of the permissions.
func (a *Authorizer) CanAny(role string, permissions ...string) error {
	granted, ok := a.grants[role]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownRole, role)
	}
	for _, p := range permissions {
		if covers(granted, p) {
			return nil
		}
	}
	if len(permissions) == 0 {
		return nil
	}
	return ErrPermissionDenied
}

// CanFromContext checks the role carried by the request context.
func (a *Authorizer) CanFromContext(ctx context.Context, permission string) error {
	role, ok := RoleFromContext(ctx)
	if !ok {
		return ErrNoRoleInContext
	}
	return a.Can(role, permission)
}

// KnownRole reports whether a role name has a definition. Used by the
// identity module to validate role assignments.
func (a *Authorizer) KnownRole(role string) bool {
	_, ok := a.grants[role]
	return ok
}

// flatten collects a role's permissions including inherited ones, failing
// on cycles and runaway depth.
func flatten(name string, roles map[string]Role, path []string) ([]string, error) {
	if len(path) > maxInheritanceDepth {
		return nil, fmt.Errorf("%w: depth exceeds %d at %q", ErrCircularInheritance, maxInheritanceDepth, name)
	}
	for _, seen := range path {
		if seen == name {
			return nil, fmt.Errorf("%w: %q inherits itself", ErrCircularInheritance, name)
		}
	}

	role, ok := roles[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q inherited but not defined", ErrUnknownRole, name)
	}

	perms := append([]string(nil), role.Permissions...)
	for _, parent := range role.Inherits {
		inherited, err := flatten(parent, roles, append(path, name))
		if err != nil {
			return nil, err
		}
		perms = append(perms, inherited...)
	}
	return perms, nil
}
