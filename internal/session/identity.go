package session

import (
	"context"
	"time"

	"github.com/noah-isme/internship-portal/internal/gateway"
	"github.com/noah-isme/internship-portal/internal/models"
	"github.com/noah-isme/internship-portal/internal/policy"
)

// Identity is the authenticated caller of one request. It is loaded from the
// store by middleware and handed to handlers explicitly; nothing else holds it.
type Identity struct {
	SessionID string      `json:"sessionId"`
	Token     string      `json:"token"`
	User      models.User `json:"user"`
	StudentID int64       `json:"studentId,omitempty"`
	TeacherID int64       `json:"teacherId,omitempty"`
	SectorIDs []int64     `json:"sectorIds,omitempty"`
	ExpiresAt time.Time   `json:"expiresAt"`
}

// IsAuthenticated reports whether the identity carries a live token and a known role.
func (i *Identity) IsAuthenticated() bool {
	if i == nil || i.Token == "" || !i.User.Role.Valid() {
		return false
	}
	return i.ExpiresAt.IsZero() || time.Now().Before(i.ExpiresAt)
}

// CurrentUser returns the signed-in user.
func (i *Identity) CurrentUser() (models.User, bool) {
	if !i.IsAuthenticated() {
		return models.User{}, false
	}
	return i.User, true
}

// Role returns the caller's role, empty for anonymous callers.
func (i *Identity) Role() models.UserRole {
	if !i.IsAuthenticated() {
		return ""
	}
	return i.User.Role
}

func (i *Identity) HasRole(role models.UserRole) bool {
	return i.IsAuthenticated() && i.User.Role == role
}

func (i *Identity) HasAnyRole(roles ...models.UserRole) bool {
	for _, role := range roles {
		if i.HasRole(role) {
			return true
		}
	}
	return false
}

// DashboardRoute is the landing page for the caller's role.
func (i *Identity) DashboardRoute() string {
	return policy.DashboardRouteFor(i.Role())
}

// Subject projects the identity onto the policy's view of a caller.
func (i *Identity) Subject() policy.Subject {
	if !i.IsAuthenticated() {
		return policy.Subject{}
	}
	return policy.Subject{
		Role:      i.User.Role,
		UserID:    i.User.ID,
		StudentID: i.StudentID,
		TeacherID: i.TeacherID,
		SectorIDs: append([]int64(nil), i.SectorIDs...),
	}
}

// Context returns ctx carrying the backend token for gateway calls.
func (i *Identity) Context(ctx context.Context) context.Context {
	if i == nil || i.Token == "" {
		return ctx
	}
	return gateway.WithToken(ctx, i.Token)
}
