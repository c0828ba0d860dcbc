// Package rbac decides whether a resolved session may access a route based
// on role membership.
package rbac

import "strings"

// Authorize reports whether a caller holding the granted roles may access a
// resource that declares the required roles. An empty requirement grants
// unconditionally. Otherwise the caller needs at least one of the required
// roles; holding all of them is never necessary. Pure function, no I/O.
func Authorize(granted, required []string) bool {
	requiredSet := normalizeRoles(required)
	if len(requiredSet) == 0 {
		return true
	}
	if len(granted) == 0 {
		return false
	}
	for _, role := range granted {
		role = strings.TrimSpace(strings.ToLower(role))
		if _, ok := requiredSet[role]; ok {
			return true
		}
	}
	return false
}

func normalizeRoles(roles []string) map[string]struct{} {
	set := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		role = strings.TrimSpace(strings.ToLower(role))
		if role == "" {
			continue
		}
		set[role] = struct{}{}
	}
	return set
}
