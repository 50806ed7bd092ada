package middleware

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/csrf"
	"go.uber.org/zap"

	"github.com/noah-isme/internship-portal/pkg/response"
)

// CSRF token transport names. Forms post the field, htmx sends the header.
const (
	CSRFCookieName = "portal_csrf"
	CSRFFieldName  = "csrf_token"
	CSRFHeaderName = "X-CSRF-Token"
)

// CSRFConfig configures the form token check.
type CSRFConfig struct {
	Key    []byte
	Secure bool
	Logger *zap.Logger
}

// CSRFKey derives the 32-byte signing key from a configured secret. An empty
// secret yields a random key; tokens issued with it die with the process.
func CSRFKey(secret string) ([]byte, error) {
	if secret == "" {
		key := make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, err
		}
		return key, nil
	}
	sum := sha256.Sum256([]byte(secret))
	return sum[:], nil
}

type csrfOutcomeKey struct{}

type csrfOutcome struct {
	reason error
	token  string
}

// CSRF rejects POST and other unsafe requests whose token does not match the
// CSRF cookie. Every request gets a fresh masked token on the context for
// response.Page to hand to the templates.
func CSRF(cfg CSRFConfig) gin.HandlerFunc {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	protect := csrf.Protect(cfg.Key,
		csrf.CookieName(CSRFCookieName),
		csrf.Path("/"),
		csrf.Secure(cfg.Secure),
		csrf.HttpOnly(true),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.FieldName(CSRFFieldName),
		csrf.RequestHeader(CSRFHeaderName),
		csrf.ErrorHandler(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			if outcome, ok := r.Context().Value(csrfOutcomeKey{}).(*csrfOutcome); ok {
				outcome.reason = csrf.FailureReason(r)
				outcome.token = csrf.Token(r)
			}
		})),
	)

	return func(c *gin.Context) {
		outcome := &csrfOutcome{}
		req := c.Request.WithContext(context.WithValue(c.Request.Context(), csrfOutcomeKey{}, outcome))
		if !cfg.Secure && req.TLS == nil {
			req = csrf.PlaintextHTTPRequest(req)
		}

		passed := false
		protect(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			passed = true
			c.Request = r
			c.Set(response.ContextCSRFKey, csrf.Token(r))
		})).ServeHTTP(c.Writer, req)

		if passed {
			c.Next()
			return
		}

		logger.Warn("csrf check failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Error(outcome.reason),
		)
		response.Page(c, http.StatusForbidden, "error", response.View{
			Title:     "Request rejected",
			Identity:  IdentityFrom(c),
			Error:     "this form has expired, please reload the page and try again",
			CSRFToken: outcome.token,
		})
		c.Abort()
	}
}
