package policy

import "github.com/noah-isme/internship-portal/internal/models"

// Outcome is the result of a navigation attempt.
type Outcome int

const (
	Proceed Outcome = iota
	RedirectLogin
	RedirectDashboard
)

// Decision carries the outcome and, for redirects, the target location.
type Decision struct {
	Outcome  Outcome
	Location string
}

// Guard runs the navigation state machine for the decoded request path.
//  1. not authenticated: login, remembering returnURL when it is set
//  2. authenticated without the route's role: the role's own dashboard
//  3. otherwise proceed
//
// returnURL is only remembered for page navigations; callers pass "" for
// form posts, whose paths have no page behind them.
func Guard(authenticated bool, role models.UserRole, path, returnURL string) Decision {
	route, known := MatchRoute(path)
	if known && route.Public {
		return Decision{Outcome: Proceed}
	}
	if !authenticated {
		return Decision{Outcome: RedirectLogin, Location: LoginRedirect(returnURL)}
	}
	if known && route.Allows(role) {
		return Decision{Outcome: Proceed}
	}
	return Decision{Outcome: RedirectDashboard, Location: DashboardRouteFor(role)}
}
