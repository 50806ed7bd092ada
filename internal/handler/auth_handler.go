package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/internship-portal/internal/middleware"
	"github.com/noah-isme/internship-portal/internal/models"
	"github.com/noah-isme/internship-portal/internal/policy"
	"github.com/noah-isme/internship-portal/internal/session"
	"github.com/noah-isme/internship-portal/pkg/response"
)

type sessionService interface {
	Login(ctx context.Context, req models.LoginRequest) (*session.Identity, error)
	Register(ctx context.Context, req models.RegisterRequest) (*models.User, error)
	Logout(ctx context.Context, sessionID string) error
	TTL() time.Duration
}

type levelSource interface {
	Levels(ctx context.Context) ([]models.Level, error)
}

// LoginForm is echoed back into the login page.
type LoginForm struct {
	Email     string
	ReturnURL string
}

// RegisterForm is echoed back into the registration page. Passwords never are.
type RegisterForm struct {
	FirstName    string
	LastName     string
	Email        string
	LevelID      *int64
	SectorID     *int64
	AcademicYear string
	Levels       []models.Level
	LevelsErr    string
}

// AuthHandler serves login, self registration and logout.
type AuthHandler struct {
	sessions sessionService
	levels   levelSource
	cookie   middleware.Cookie
	logger   *zap.Logger
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(sessions sessionService, levels levelSource, cookie middleware.Cookie, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{sessions: sessions, levels: levels, cookie: cookie, logger: logger}
}

// LoginPage renders the login form. Signed-in users go to their dashboard.
func (h *AuthHandler) LoginPage(c *gin.Context) {
	if identity := identityFromContext(c); identity.IsAuthenticated() {
		response.Redirect(c, identity.DashboardRoute())
		return
	}
	view := newView(c, "Sign in")
	view.Form = LoginForm{ReturnURL: policy.SafeReturnURL(c.Query("returnUrl"))}
	if c.Query("registered") == "1" {
		view.Notice = "Your account was created, please sign in."
	}
	response.Page(c, http.StatusOK, "auth/login", view)
}

// Login opens a session and sends the user back where they were heading.
func (h *AuthHandler) Login(c *gin.Context) {
	form := LoginForm{
		Email:     formString(c, "email"),
		ReturnURL: policy.SafeReturnURL(c.PostForm("returnUrl")),
	}
	identity, err := h.sessions.Login(c.Request.Context(), models.LoginRequest{
		Email:    form.Email,
		Password: c.PostForm("password"),
	})
	if err != nil {
		view := newView(c, "Sign in")
		view.Form = form
		failForm(c, "auth/login", view, err)
		return
	}
	h.openSession(c, identity)

	target := identity.DashboardRoute()
	if form.ReturnURL != "" && policy.CanAccess(identity.Role(), form.ReturnURL) {
		target = form.ReturnURL
	}
	response.Redirect(c, target)
}

// RegisterPage renders the student registration form.
func (h *AuthHandler) RegisterPage(c *gin.Context) {
	if identity := identityFromContext(c); identity.IsAuthenticated() {
		response.Redirect(c, identity.DashboardRoute())
		return
	}
	view := newView(c, "Create your account")
	view.Form = h.registerForm(c, RegisterForm{})
	response.Page(c, http.StatusOK, "auth/register", view)
}

// Register creates the account and signs the new student in with the same
// credentials. When that sign-in fails the login page is shown instead.
func (h *AuthHandler) Register(c *gin.Context) {
	form := RegisterForm{
		FirstName:    formString(c, "firstName"),
		LastName:     formString(c, "lastName"),
		Email:        formString(c, "email"),
		LevelID:      formInt64Ptr(c, "levelId"),
		SectorID:     formInt64Ptr(c, "sectorId"),
		AcademicYear: formString(c, "academicYear"),
	}
	password := c.PostForm("password")
	_, err := h.sessions.Register(c.Request.Context(), models.RegisterRequest{
		FirstName:       form.FirstName,
		LastName:        form.LastName,
		Email:           form.Email,
		Password:        password,
		ConfirmPassword: c.PostForm("confirmPassword"),
		LevelID:         form.LevelID,
		SectorID:        form.SectorID,
		AcademicYear:    form.AcademicYear,
	})
	if err != nil {
		view := newView(c, "Create your account")
		view.Form = h.registerForm(c, form)
		failForm(c, "auth/register", view, err)
		return
	}

	identity, err := h.sessions.Login(c.Request.Context(), models.LoginRequest{Email: form.Email, Password: password})
	if err != nil {
		h.logger.Warn("sign-in after registration failed", zap.Error(err))
		response.Redirect(c, policy.LoginPath+"?registered=1")
		return
	}
	h.openSession(c, identity)
	response.Redirect(c, identity.DashboardRoute())
}

// Logout closes the session and clears the cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	if identity := identityFromContext(c); identity != nil {
		if err := h.sessions.Logout(c.Request.Context(), identity.SessionID); err != nil {
			h.logger.Warn("logout failed", zap.Error(err))
		}
	}
	h.cookie.Clear(c)
	response.Redirect(c, policy.LoginPath)
}

func (h *AuthHandler) openSession(c *gin.Context, identity *session.Identity) {
	ttl := h.sessions.TTL()
	if !identity.ExpiresAt.IsZero() {
		if remaining := time.Until(identity.ExpiresAt); remaining < ttl {
			ttl = remaining
		}
	}
	h.cookie.Set(c, identity.SessionID, ttl)
}

func (h *AuthHandler) registerForm(c *gin.Context, form RegisterForm) RegisterForm {
	levels, err := h.levels.Levels(c.Request.Context())
	if err != nil {
		h.logger.Warn("levels unavailable", zap.Error(err))
		form.LevelsErr = "levels could not be loaded, please try again"
		return form
	}
	form.Levels = levels
	return form
}
