// Package tenant implements tenant resolution and lifecycle management.
//
// An inbound request carries a tenant identifier in a JWT claim, a header,
// or a query parameter; resolvers extract it in that priority order. The
// identifier is then exchanged for tenant metadata through a Redis-backed
// read-through cache in front of the authoritative tenant store, validated
// (active flag, subscription expiry), and placed into the request context
// where the scoped persistence layer picks it up.
//
// The tenant store is the control plane: it is deliberately not scoped by
// the query filters that guard business data, because it is the component
// that defines tenants in the first place.
package tenant
