// Package rbac maps role names to permission sets and answers authorization
// questions for the request pipeline.
//
// Permissions are dotted strings ("quizzes.read") with wildcard support
// ("quizzes.*", "*"). Roles may inherit from other roles; the authorizer
// flattens inheritance once at construction so runtime checks are cheap map
// lookups. Role definitions are static per deployment and shared across
// tenants; which role a user holds is tenant-local data owned by the
// identity module.
package rbac
