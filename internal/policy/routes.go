package policy

import (
	"net/url"
	"strings"

	"github.com/noah-isme/internship-portal/internal/models"
)

// LoginPath is where anonymous visitors are sent.
const LoginPath = "/auth/login"

// Route is one entry of the navigation table. Roles empty with Public false
// means any authenticated user.
type Route struct {
	Pattern string
	Public  bool
	Roles   []models.UserRole
}

var (
	adminOnly        = []models.UserRole{models.RoleAdmin}
	teacherOnly      = []models.UserRole{models.RoleTeacher}
	studentOnly      = []models.UserRole{models.RoleStudent}
	adminOrStudent   = []models.UserRole{models.RoleAdmin, models.RoleStudent}
	adminOrTeacher   = []models.UserRole{models.RoleAdmin, models.RoleTeacher}
	anyAuthenticated []models.UserRole
)

// routes is matched top to bottom; literal segments come before :params.
var routes = []Route{
	{Pattern: "/auth/login", Public: true},
	{Pattern: "/auth/register", Public: true},
	{Pattern: "/metadata/*", Public: true},
	{Pattern: "/auth/logout", Roles: anyAuthenticated},

	{Pattern: "/dashboard/admin", Roles: adminOnly},
	{Pattern: "/dashboard/teacher", Roles: teacherOnly},
	{Pattern: "/dashboard/student", Roles: studentOnly},
	{Pattern: "/dashboard", Roles: anyAuthenticated},

	{Pattern: "/internships", Roles: anyAuthenticated},
	{Pattern: "/internships/create", Roles: adminOrStudent},
	{Pattern: "/internships/export", Roles: adminOnly},
	{Pattern: "/internships/:id", Roles: anyAuthenticated},
	{Pattern: "/internships/:id/edit", Roles: adminOrStudent},
	{Pattern: "/internships/:id/delete", Roles: adminOrStudent},
	{Pattern: "/internships/:id/status", Roles: teacherOnly},

	{Pattern: "/students", Roles: adminOrTeacher},
	{Pattern: "/students/create", Roles: adminOnly},
	{Pattern: "/students/:id", Roles: adminOrTeacher},
	{Pattern: "/students/:id/edit", Roles: adminOnly},
	{Pattern: "/students/:id/delete", Roles: adminOnly},

	{Pattern: "/teachers", Roles: adminOnly},
	{Pattern: "/teachers/*", Roles: adminOnly},

	{Pattern: "/reports", Roles: anyAuthenticated},
	{Pattern: "/reports/create", Roles: studentOnly},
	{Pattern: "/reports/:id", Roles: anyAuthenticated},
	{Pattern: "/reports/:id/download", Roles: anyAuthenticated},
	{Pattern: "/reports/:id/grade", Roles: teacherOnly},
}

// Routes returns a copy of the navigation table.
func Routes() []Route {
	out := make([]Route, len(routes))
	copy(out, routes)
	return out
}

// MatchRoute finds the table entry for a request path.
func MatchRoute(path string) (Route, bool) {
	segments := splitPath(path)
	for _, route := range routes {
		if matchSegments(splitPath(route.Pattern), segments) {
			return route, true
		}
	}
	return Route{}, false
}

// Allows reports whether role may open the route.
func (r Route) Allows(role models.UserRole) bool {
	if r.Public {
		return true
	}
	if !role.Valid() {
		return false
	}
	if len(r.Roles) == 0 {
		return true
	}
	for _, allowed := range r.Roles {
		if allowed == role {
			return true
		}
	}
	return false
}

// CanAccess reports whether role may open path. Unknown paths are denied.
func CanAccess(role models.UserRole, path string) bool {
	route, ok := MatchRoute(path)
	if !ok {
		return false
	}
	return route.Allows(role)
}

// DashboardRouteFor maps a role to its landing page.
func DashboardRouteFor(role models.UserRole) string {
	switch role {
	case models.RoleAdmin:
		return "/dashboard/admin"
	case models.RoleTeacher:
		return "/dashboard/teacher"
	case models.RoleStudent:
		return "/dashboard/student"
	default:
		return LoginPath
	}
}

// LoginRedirect builds the login URL remembering where the visitor wanted to go.
func LoginRedirect(returnURL string) string {
	if returnURL == "" || returnURL == LoginPath {
		return LoginPath
	}
	return LoginPath + "?" + url.Values{"returnUrl": {returnURL}}.Encode()
}

// SafeReturnURL accepts only local absolute paths so login cannot be used
// as an open redirect.
func SafeReturnURL(raw string) string {
	if raw == "" || !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") || strings.HasPrefix(raw, "/\\") {
		return ""
	}
	parsed, err := url.Parse(raw)
	if err != nil || parsed.IsAbs() || parsed.Host != "" {
		return ""
	}
	return raw
}

func splitPath(path string) []string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

func matchSegments(pattern, segments []string) bool {
	for i, part := range pattern {
		if part == "*" {
			return len(segments) > i
		}
		if i >= len(segments) {
			return false
		}
		if strings.HasPrefix(part, ":") {
			if segments[i] == "" {
				return false
			}
			continue
		}
		if part != segments[i] {
			return false
		}
	}
	return len(pattern) == len(segments)
}
