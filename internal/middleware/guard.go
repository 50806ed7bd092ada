package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/internship-portal/internal/policy"
	"github.com/noah-isme/internship-portal/pkg/response"
)

// Guard applies the navigation rules of the route table: anonymous visitors
// go to login with their target remembered, authenticated users lacking the
// role go to their own dashboard.
func Guard() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := IdentityFrom(c)
		decision := policy.Guard(identity.IsAuthenticated(), identity.Role(), c.Request.URL.Path, navigationTarget(c))
		if decision.Outcome == policy.Proceed {
			c.Next()
			return
		}
		response.Redirect(c, decision.Location)
		c.Abort()
	}
}

// navigationTarget is the returnUrl remembered for anonymous visitors. Only
// GET navigations have a page to come back to.
func navigationTarget(c *gin.Context) string {
	if c.Request.Method != http.MethodGet {
		return ""
	}
	return c.Request.URL.RequestURI()
}
