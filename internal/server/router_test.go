package server

import (
	"context"
	"errors"
	"html"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/internship-portal/internal/handler"
	"github.com/noah-isme/internship-portal/internal/middleware"
	"github.com/noah-isme/internship-portal/internal/models"
	"github.com/noah-isme/internship-portal/internal/service"
	"github.com/noah-isme/internship-portal/internal/session"
	"github.com/noah-isme/internship-portal/pkg/response"
	"github.com/noah-isme/internship-portal/web"
)

type sessionsStub struct {
	identities map[string]*session.Identity
}

func (s *sessionsStub) Load(_ context.Context, sid string) (*session.Identity, error) {
	return s.identities[sid], nil
}

func (s *sessionsStub) Logout(_ context.Context, sid string) error {
	delete(s.identities, sid)
	return nil
}

type levelsStub struct {
	err error
}

func (l levelsStub) Levels(context.Context) ([]models.Level, error) {
	if l.err != nil {
		return nil, l.err
	}
	return []models.Level{{ID: 1, Name: "B1"}}, nil
}

type authStub struct {
	loggedOut []string
}

func (a *authStub) Login(context.Context, models.LoginRequest) (*session.Identity, error) {
	return nil, errors.New("not used")
}

func (a *authStub) Register(context.Context, models.RegisterRequest) (*models.User, error) {
	return nil, errors.New("not used")
}

func (a *authStub) Logout(_ context.Context, sid string) error {
	a.loggedOut = append(a.loggedOut, sid)
	return nil
}

func (a *authStub) TTL() time.Duration { return time.Hour }

var (
	cookie      = middleware.Cookie{Name: "portal_session"}
	testCSRFKey = []byte("0123456789abcdef0123456789abcdef")
)

func newTestRouter(t *testing.T, levels levelsStub, metricsEnabled bool) *gin.Engine {
	return newRouterWithAuth(t, levels, metricsEnabled, &authStub{})
}

func newRouterWithAuth(t *testing.T, levels levelsStub, metricsEnabled bool, auth *authStub) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	templates, err := response.LoadTemplates(web.Templates(), handler.TemplateFuncs())
	require.NoError(t, err)

	metrics := service.NewMetricsService()
	sessions := &sessionsStub{identities: map[string]*session.Identity{
		"sid-student": {
			SessionID: "sid-student",
			Token:     "token",
			User:      models.User{ID: 7, Role: models.RoleStudent},
			ExpiresAt: time.Now().Add(time.Hour),
		},
	}}

	return NewRouter(Handlers{
		Auth:        handler.NewAuthHandler(auth, levels, cookie, nil),
		Dashboard:   handler.NewDashboardHandler(nil),
		Internships: handler.NewInternshipHandler(handler.InternshipHandlerParams{}),
		Students:    handler.NewStudentHandler(nil, nil),
		Teachers:    handler.NewTeacherHandler(nil, nil, nil),
		Reports:     handler.NewReportHandler(nil),
		Metadata:    handler.NewMetadataHandler(nil, nil),
		Health:      handler.NewHealthHandler(levels, metrics),
	}, Options{
		Sessions:       sessions,
		Cookie:         cookie,
		Templates:      templates,
		Static:         http.FS(web.Static()),
		Metrics:        metrics,
		MetricsEnabled: metricsEnabled,
		CSRFKey:        testCSRFKey,
	})
}

func do(r http.Handler, path, sid string, htmx bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if sid != "" {
		req.AddCookie(&http.Cookie{Name: cookie.Name, Value: sid})
	}
	if htmx {
		req.Header.Set(response.HeaderHXRequest, "true")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func post(r http.Handler, path string, form url.Values, cookies []*http.Cookie, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Origin", "http://example.com")
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

var tokenField = regexp.MustCompile(`name="csrf_token" value="([^"]+)"`)

// csrfFromLoginPage loads the sign-in page and returns its form token and
// the CSRF cookie it was issued with.
func csrfFromLoginPage(t *testing.T, r http.Handler) (string, *http.Cookie) {
	t.Helper()
	w := do(r, "/auth/login", "", false)
	require.Equal(t, http.StatusOK, w.Code)

	match := tokenField.FindStringSubmatch(w.Body.String())
	require.Len(t, match, 2, "login form carries a csrf field")
	token := html.UnescapeString(match[1])
	assert.Contains(t, w.Body.String(), `hx-headers=`)

	for _, ck := range w.Result().Cookies() {
		if ck.Name == middleware.CSRFCookieName {
			return token, ck
		}
	}
	t.Fatal("csrf cookie not set")
	return "", nil
}

func TestHealthAndReadiness(t *testing.T) {
	r := newTestRouter(t, levelsStub{}, false)

	w := do(r, "/health", "", false)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)

	w = do(r, "/ready", "", false)
	assert.Equal(t, http.StatusOK, w.Code)

	down := newTestRouter(t, levelsStub{err: errors.New("connection refused")}, false)
	w = do(down, "/ready", "", false)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestLoginPageRendersFullPageAndFragment(t *testing.T) {
	r := newTestRouter(t, levelsStub{}, false)

	w := do(r, "/auth/login?returnUrl=%2Finternships", "", false)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "<!doctype html>")
	assert.Contains(t, body, `id="main"`)
	assert.Contains(t, body, `name="returnUrl" value="/internships"`)
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))

	w = do(r, "/auth/login", "", true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "<!doctype html>")
	assert.Contains(t, w.Body.String(), `action="/auth/login"`)
}

func TestRootRedirectsByRole(t *testing.T) {
	r := newTestRouter(t, levelsStub{}, false)

	w := do(r, "/", "", false)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/auth/login", w.Header().Get("Location"))

	w = do(r, "/", "sid-student", false)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/dashboard/student", w.Header().Get("Location"))
}

func TestGuardedRoutesRedirectBeforeHandlers(t *testing.T) {
	r := newTestRouter(t, levelsStub{}, false)

	// Handlers are built without services; reaching one would panic.
	w := do(r, "/students", "sid-student", false)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/dashboard/student", w.Header().Get("Location"))

	w = do(r, "/reports", "", true)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "/auth/login?returnUrl=%2Freports", w.Header().Get(response.HeaderHXRedirect))

	w = do(r, "/auth/login", "sid-student", false)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/dashboard/student", w.Header().Get("Location"))
}

func TestStaticAssetsAndMetrics(t *testing.T) {
	r := newTestRouter(t, levelsStub{}, true)

	w := do(r, "/static/app.css", "", false)
	assert.Equal(t, http.StatusOK, w.Code)

	do(r, "/health", "", false)
	w = do(r, "/metrics", "", false)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "http_requests_total"))
}

func TestGuardDecidesOnDecodedPath(t *testing.T) {
	r := newTestRouter(t, levelsStub{}, false)

	// Teacher-only routes hidden behind an encoded slash still redirect.
	for _, path := range []string{"/internships/5%2Fstatus", "/reports/5%2Fgrade"} {
		w := do(r, path, "sid-student", false)
		require.Equal(t, http.StatusSeeOther, w.Code, path)
		assert.Equal(t, "/dashboard/student", w.Header().Get("Location"), path)
	}
}

func TestPostWithoutCSRFTokenIsRejected(t *testing.T) {
	auth := &authStub{}
	r := newRouterWithAuth(t, levelsStub{}, false, auth)
	sid := &http.Cookie{Name: cookie.Name, Value: "sid-student"}
	token, csrfCookie := csrfFromLoginPage(t, r)

	w := post(r, "/auth/logout", url.Values{}, []*http.Cookie{sid}, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "this form has expired")

	w = post(r, "/auth/logout", url.Values{}, []*http.Cookie{sid, csrfCookie}, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = post(r, "/auth/logout", url.Values{"csrf_token": {"forged"}}, []*http.Cookie{sid, csrfCookie}, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, auth.loggedOut)

	w = post(r, "/auth/logout", url.Values{"csrf_token": {token}}, []*http.Cookie{sid, csrfCookie}, nil)
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/auth/login", w.Header().Get("Location"))
	assert.Equal(t, []string{"sid-student"}, auth.loggedOut)
}

func TestHtmxPostSendsCSRFHeader(t *testing.T) {
	auth := &authStub{}
	r := newRouterWithAuth(t, levelsStub{}, false, auth)
	sid := &http.Cookie{Name: cookie.Name, Value: "sid-student"}
	token, csrfCookie := csrfFromLoginPage(t, r)

	w := post(r, "/auth/logout", url.Values{}, []*http.Cookie{sid, csrfCookie}, map[string]string{
		response.HeaderHXRequest:  "true",
		middleware.CSRFHeaderName: token,
	})
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "/auth/login", w.Header().Get(response.HeaderHXRedirect))
	assert.Equal(t, []string{"sid-student"}, auth.loggedOut)
}
