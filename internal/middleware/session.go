package middleware

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/internship-portal/internal/policy"
	"github.com/noah-isme/internship-portal/internal/session"
	appErrors "github.com/noah-isme/internship-portal/pkg/errors"
	"github.com/noah-isme/internship-portal/pkg/response"
)

// ContextIdentityKey is the gin context key storing the caller identity.
const ContextIdentityKey = "identity"

// SessionLoader resolves and closes sessions.
type SessionLoader interface {
	Load(ctx context.Context, sessionID string) (*session.Identity, error)
	Logout(ctx context.Context, sessionID string) error
}

// Cookie describes the session cookie.
type Cookie struct {
	Name   string
	Secure bool
}

// Set writes the session cookie. It is HttpOnly and SameSite=Lax.
func (ck Cookie) Set(c *gin.Context, sessionID string, ttl time.Duration) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(ck.Name, sessionID, int(ttl.Seconds()), "/", "", ck.Secure, true)
}

// Clear expires the session cookie.
func (ck Cookie) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(ck.Name, "", -1, "/", "", ck.Secure, true)
}

// SessionID reads the session id from the request cookie.
func (ck Cookie) SessionID(c *gin.Context) string {
	value, err := c.Cookie(ck.Name)
	if err != nil {
		return ""
	}
	return value
}

// Session loads the identity of the session cookie and stores it on the
// context. Unknown or expired sessions leave the request anonymous and drop
// the cookie. After the handler ran, an AUTH_ERROR recorded by
// response.Error closes the session and sends the visitor to login.
func Session(loader SessionLoader, cookie Cookie, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		sid := cookie.SessionID(c)
		if sid != "" {
			identity, err := loader.Load(c.Request.Context(), sid)
			switch {
			case err != nil:
				logger.Warn("session load failed", zap.Error(err))
			case identity == nil:
				cookie.Clear(c)
			default:
				c.Set(ContextIdentityKey, identity)
			}
		}

		c.Next()

		if !hasAuthError(c) || c.Writer.Written() {
			return
		}
		if identity := IdentityFrom(c); identity != nil {
			if err := loader.Logout(c.Request.Context(), identity.SessionID); err != nil {
				logger.Warn("session close failed", zap.Error(err))
			}
		}
		cookie.Clear(c)
		response.Redirect(c, policy.LoginRedirect(returnTarget(c)))
	}
}

// IdentityFrom returns the caller identity, nil for anonymous requests.
func IdentityFrom(c *gin.Context) *session.Identity {
	value, exists := c.Get(ContextIdentityKey)
	if !exists {
		return nil
	}
	identity, ok := value.(*session.Identity)
	if !ok {
		return nil
	}
	return identity
}

func hasAuthError(c *gin.Context) bool {
	for _, err := range c.Errors {
		if appErrors.IsAuth(err.Err) {
			return true
		}
	}
	return false
}

// returnTarget is the page to come back to after logging in again. Form
// posts return to the page that submitted them, read from the absolute
// HX-Current-URL or Referer of this host.
func returnTarget(c *gin.Context) string {
	if c.Request.Method == http.MethodGet {
		return c.Request.URL.RequestURI()
	}
	for _, header := range []string{"HX-Current-URL", "Referer"} {
		if target := sameHostTarget(c, c.GetHeader(header)); target != "" {
			return target
		}
	}
	return ""
}

func sameHostTarget(c *gin.Context, raw string) string {
	if raw == "" {
		return ""
	}
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host != c.Request.Host {
		return ""
	}
	return policy.SafeReturnURL(parsed.RequestURI())
}
