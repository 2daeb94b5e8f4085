package rbac

import (
	"slices"
	"strings"
)

const (
	// Wildcard grants every permission when held, and every permission in
	// a namespace when used as a suffix ("quizzes.*").
	Wildcard = "*"

	delimiter = "."
)

// Matches reports whether a granted permission pattern covers the requested
// permission. "quizzes.read" covers itself, "quizzes.*" covers everything
// under the quizzes namespace, "*" covers everything.
func Matches(granted, requested string) bool {
	if granted == requested || granted == Wildcard {
		return true
	}
	if suffix, ok := strings.CutSuffix(granted, delimiter+Wildcard); ok {
		return strings.HasPrefix(requested, suffix+delimiter)
	}
	return false
}

func covers(granted []string, requested string) bool {
	for _, g := range granted {
		if Matches(g, requested) {
			return true
		}
	}
	return false
}

// normalize deduplicates and sorts a permission list.
func normalize(perms []string) []string {
	out := make([]string, 0, len(perms))
	for _, p := range perms {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}
