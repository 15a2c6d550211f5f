package models

import "strings"

var roleNamespaces = map[UserRole]string{
	RoleFieldCollector: "/field_collector",
	RoleLabTech:        "/lab_tech",
	RoleAdmin:          "/admin",
	RoleExtExpert:      "/ext_expert",
	RolePatient:        "/patient",
}

// Namespace returns the route prefix owned by role, or "" for unknown roles.
func Namespace(role UserRole) string {
	return roleNamespaces[role]
}

// NamespaceRole maps a route path back to the role owning its namespace.
func NamespaceRole(path string) (UserRole, bool) {
	for role, ns := range roleNamespaces {
		if underNamespace(path, ns) {
			return role, true
		}
	}
	return "", false
}

// CanAccess reports whether role may enter path. Paths outside every role
// namespace are open to any role; a namespaced path admits only its owner.
func CanAccess(role UserRole, path string) bool {
	owner, namespaced := NamespaceRole(path)
	if !namespaced {
		return role.Valid()
	}
	return owner == role
}

func underNamespace(path, ns string) bool {
	return path == ns || strings.HasPrefix(path, ns+"/")
}

// JoinName renders name parts separated by single spaces, skipping blanks.
func JoinName(first string, middle *string, last string, suffix *string) string {
	parts := make([]string, 0, 4)
	for _, p := range []string{first, deref(middle), last, deref(suffix)} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
