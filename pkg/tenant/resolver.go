package tenant

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// MaxIdentifierLength bounds tenant ids; ids double as cache-key parts
	// and discriminator values, so they stay short and DNS-safe.
	MaxIdentifierLength = 63

	// DefaultClaimName is the JWT claim carrying the tenant id.
	DefaultClaimName = "tenant"
	// DefaultHeaderName is the well-known tenant header.
	DefaultHeaderName = "X-Tenant-ID"
	// DefaultQueryParam is the query-string fallback parameter.
	DefaultQueryParam = "tenant"
)

// identifierPattern requires alphanumeric start and allows hyphens.
var identifierPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9-]*$`)

// Resolver extracts a tenant identifier from an HTTP request.
// Returns empty string if no identifier is present, error if extraction
// failed (malformed input as opposed to absent input).
type Resolver func(r *http.Request) (string, error)

func validIdentifier(id string) bool {
	return id != "" && len(id) <= MaxIdentifierLength && identifierPattern.MatchString(id)
}

// NewClaimResolver extracts the tenant id from a claim of the bearer token
// on the Authorization header. The token is decoded without signature
// verification: authenticating the caller is the auth middleware's job,
// upstream of tenant resolution; this resolver only reads the claim the
// verified token carried.
func NewClaimResolver(claimName string) Resolver {
	if claimName == "" {
		claimName = DefaultClaimName
	}
	parser := jwt.NewParser()

	return func(r *http.Request) (string, error) {
		auth := r.Header.Get("Authorization")
		const prefix = "Bearer "
		if !strings.HasPrefix(auth, prefix) {
			return "", nil
		}

		claims := jwt.MapClaims{}
		if _, _, err := parser.ParseUnverified(strings.TrimPrefix(auth, prefix), claims); err != nil {
			return "", fmt.Errorf("%w: malformed bearer token", ErrInvalidIdentifier)
		}

		value, _ := claims[claimName].(string)
		if value == "" {
			return "", nil
		}

		value = strings.TrimSpace(value)
		if !validIdentifier(value) {
			return "", fmt.Errorf("%w: claim %q", ErrInvalidIdentifier, value)
		}
		return value, nil
	}
}

// NewHeaderResolver extracts the tenant id from an HTTP header.
// Defaults to "X-Tenant-ID" if name is empty.
func NewHeaderResolver(name string) Resolver {
	if name == "" {
		name = DefaultHeaderName
	}

	return func(r *http.Request) (string, error) {
		value := strings.TrimSpace(r.Header.Get(name))
		if value == "" {
			return "", nil
		}
		if !validIdentifier(value) {
			return "", fmt.Errorf("%w: header %q", ErrInvalidIdentifier, value)
		}
		return value, nil
	}
}

// NewQueryResolver extracts the tenant id from a query-string parameter.
// Defaults to "tenant" if param is empty.
func NewQueryResolver(param string) Resolver {
	if param == "" {
		param = DefaultQueryParam
	}

	return func(r *http.Request) (string, error) {
		value := strings.TrimSpace(r.URL.Query().Get(param))
		if value == "" {
			return "", nil
		}
		if !validIdentifier(value) {
			return "", fmt.Errorf("%w: query %q", ErrInvalidIdentifier, value)
		}
		return value, nil
	}
}

// NewCompositeResolver tries resolvers in order and returns the first
// non-empty identifier. Errors are aggregated rather than short-circuiting
// so a malformed signal in one channel does not mask a valid one in the
// next.
func NewCompositeResolver(resolvers ...Resolver) Resolver {
	return func(r *http.Request) (string, error) {
		var errs []error

		for _, resolve := range resolvers {
			id, err := resolve(r)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			if id != "" {
				return id, nil
			}
		}

		if len(errs) > 0 {
			return "", fmt.Errorf("composite resolver: %w", errors.Join(errs...))
		}
		return "", nil
	}
}

// DefaultResolver is the documented priority chain: authenticated claim,
// then header, then query parameter.
func DefaultResolver() Resolver {
	return NewCompositeResolver(
		NewClaimResolver(DefaultClaimName),
		NewHeaderResolver(DefaultHeaderName),
		NewQueryResolver(DefaultQueryParam),
	)
}
