package obs

import "strings"

// CanonicalPath collapses resource identifiers so metric label cardinality
// stays bounded. Unknown shapes pass through untouched.
func CanonicalPath(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		return "/"
	}
	parts := strings.Split(strings.Trim(path, "/"), "/")
	switch parts[0] {
	case "workspaces":
		switch len(parts) {
		case 2:
			return "/workspaces/:id"
		case 3:
			if parts[2] == "members" {
				return "/workspaces/:id/members"
			}
		case 4:
			if parts[2] == "members" {
				return "/workspaces/:id/members/:memberId"
			}
		}
	case "transactions", "budgets", "goals":
		switch len(parts) {
		case 2:
			return "/" + parts[0] + "/:id"
		case 3:
			if parts[0] == "goals" && parts[2] == "contribute" {
				return "/goals/:id/contribute"
			}
		}
	}
	return path
}
