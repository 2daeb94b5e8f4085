package rbac

import "context"

// Role is a named permission set, optionally inheriting other roles.
type Role struct {
	Permissions []string
	Inherits    []string
}

// RoleSource supplies role definitions to the authorizer.
type RoleSource interface {
	Load(ctx context.Context) (map[string]Role, error)
}

// StaticSource serves a fixed role map. Role definitions are deployment
// configuration, not tenant data, so a static source is the common case.
type StaticSource map[string]Role

func (s StaticSource) Load(context.Context) (map[string]Role, error) {
	return s, nil
}

// Built-in role names referenced by the identity module seeders.
const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
	RoleViewer = "viewer"
)

// DefaultRoles is the stock three-tier role set: viewers read, editors
// write business data, admins additionally manage users and audit trails.
func DefaultRoles() StaticSource {
	return StaticSource{
		RoleViewer: {
			Permissions: []string{
				"quizzes.read",
				"dimensions.read",
				"entitycodes.read",
				"todos.read",
			},
		},
		RoleEditor: {
			Inherits: []string{RoleViewer},
			Permissions: []string{
				"quizzes.write",
				"dimensions.write",
				"entitycodes.write",
				"todos.write",
			},
		},
		RoleAdmin: {
			Permissions: []string{Wildcard},
		},
	}
}
