package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/internship-portal/internal/session"
	appErrors "github.com/noah-isme/internship-portal/pkg/errors"
)

// HTMX request and response headers.
const (
	HeaderHXRequest  = "HX-Request"
	HeaderHXRedirect = "HX-Redirect"
)

// ContextCSRFKey is the gin context key holding the request's CSRF token.
const ContextCSRFKey = "csrf_token"

// View is the common envelope every page template receives.
type View struct {
	Title     string
	Identity  *session.Identity
	Notice    string
	Error     string
	Fields    map[string]string
	Form      interface{}
	Data      interface{}
	Status    int
	CSRFToken string
}

// Field returns the inline message of one form field.
func (v View) Field(name string) string {
	return v.Fields[name]
}

// WithError copies err into the view as an inline message.
func (v View) WithError(err error) View {
	if err == nil {
		return v
	}
	appErr := appErrors.FromError(err)
	v.Error = appErrors.UserMessage(err)
	v.Fields = appErr.Fields
	v.Status = appErr.Status
	return v
}

// IsHTMX reports whether the request was issued by htmx.
func IsHTMX(c *gin.Context) bool {
	return c.GetHeader(HeaderHXRequest) == "true"
}

// Page renders a full page, or only its content fragment for htmx requests.
func Page(c *gin.Context, status int, name string, view View) {
	noStore(c)
	if view.Status == 0 {
		view.Status = status
	}
	if view.CSRFToken == "" {
		view.CSRFToken = c.GetString(ContextCSRFKey)
	}
	if IsHTMX(c) {
		c.HTML(status, Fragment(name), view)
		return
	}
	c.HTML(status, name, view)
}

// Partial renders a named fragment regardless of the request kind.
func Partial(c *gin.Context, status int, name string, data interface{}) {
	noStore(c)
	c.HTML(status, name, data)
}

// Redirect sends the browser to location. htmx follows HX-Redirect instead of
// a 3xx so the swap target is not filled with the next page.
func Redirect(c *gin.Context, location string) {
	if IsHTMX(c) {
		c.Header(HeaderHXRedirect, location)
		c.Status(http.StatusNoContent)
		return
	}
	c.Redirect(http.StatusSeeOther, location)
}

// Error renders the error page for err. Session expiry is not rendered here:
// it is recorded on the context and handled by the session middleware.
func Error(c *gin.Context, err error, view View) {
	if appErrors.IsAuth(err) {
		_ = c.Error(err)
		c.Abort()
		return
	}
	view = view.WithError(err)
	if view.Title == "" {
		view.Title = "Something went wrong"
	}
	status := view.Status
	if status < http.StatusBadRequest {
		status = http.StatusInternalServerError
	}
	Page(c, status, "error", view)
}

// JSON sends a small JSON document with caching disabled.
func JSON(c *gin.Context, status int, data interface{}) {
	noStore(c)
	c.JSON(status, data)
}

func noStore(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
}
