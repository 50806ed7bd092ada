package session

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/internship-portal/internal/models"
	"github.com/noah-isme/internship-portal/internal/policy"
	appErrors "github.com/noah-isme/internship-portal/pkg/errors"
	"github.com/noah-isme/internship-portal/pkg/validation"
)

type authBackend interface {
	Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error)
	Register(ctx context.Context, req models.RegisterRequest) (*models.User, error)
}

type studentProfiles interface {
	GetByUserID(ctx context.Context, userID int64) (*models.Student, error)
}

type teacherProfiles interface {
	GetByUserID(ctx context.Context, userID int64) (*models.Teacher, error)
}

type levelCatalog interface {
	Levels(ctx context.Context) ([]models.Level, error)
}

// Observer counts session lifecycle events.
type Observer interface {
	RecordSessionEvent(event string)
}

// Config tunes the manager.
type Config struct {
	TTL time.Duration
}

// Manager owns login, registration and logout. It is the only writer of the store.
type Manager struct {
	store     Store
	auth      authBackend
	students  studentProfiles
	teachers  teacherProfiles
	levels    levelCatalog
	validator *validator.Validate
	logger    *zap.Logger
	metrics   Observer
	ttl       time.Duration
	now       func() time.Time
}

// NewManager constructs a Manager.
func NewManager(store Store, auth authBackend, students studentProfiles, teachers teacherProfiles, levels levelCatalog, validate *validator.Validate, logger *zap.Logger, metrics Observer, cfg Config) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validation.New()
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 8 * time.Hour
	}
	return &Manager{
		store:     store,
		auth:      auth,
		students:  students,
		teachers:  teachers,
		levels:    levels,
		validator: validate,
		logger:    logger,
		metrics:   metrics,
		ttl:       ttl,
		now:       time.Now,
	}
}

// Login authenticates against the backend and opens a session.
func (m *Manager) Login(ctx context.Context, req models.LoginRequest) (*Identity, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := validation.Struct(m.validator, req); err != nil {
		return nil, err
	}

	resp, err := m.auth.Login(ctx, req)
	if err != nil {
		m.record("login_failed")
		if isClientError(err) {
			return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "")
		}
		return nil, err
	}
	if resp.Token == "" || !resp.User.Role.Valid() {
		m.record("login_failed")
		return nil, appErrors.Clone(appErrors.ErrServer, "unexpected login response")
	}

	identity := Identity{
		SessionID: uuid.NewString(),
		Token:     resp.Token,
		User:      resp.User,
	}
	ttl := m.ttl
	if exp, ok := tokenExpiry(resp.Token); ok {
		identity.ExpiresAt = exp
		if remaining := exp.Sub(m.now()); remaining < ttl {
			ttl = remaining
		}
	}
	if ttl <= 0 {
		m.record("login_failed")
		return nil, appErrors.Clone(appErrors.ErrAuth, "the issued token has already expired")
	}

	m.resolveProfile(identity.Context(ctx), &identity)

	if err := m.store.Save(ctx, identity.SessionID, identity, ttl); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrServer.Code, appErrors.ErrServer.Status, "failed to open session")
	}
	m.record("login")
	m.logger.Info("session opened",
		zap.Int64("user_id", identity.User.ID),
		zap.String("role", string(identity.User.Role)))
	return &identity, nil
}

// resolveProfile attaches the student or teacher profile ids. A failed lookup
// leaves them empty; actions needing them report it later.
func (m *Manager) resolveProfile(ctx context.Context, identity *Identity) {
	switch identity.User.Role {
	case models.RoleStudent:
		if m.students == nil {
			return
		}
		student, err := m.students.GetByUserID(ctx, identity.User.ID)
		if err != nil {
			m.logger.Warn("student profile lookup failed", zap.Int64("user_id", identity.User.ID), zap.Error(err))
			return
		}
		identity.StudentID = student.ID
		if id := student.SectorID(); id != nil {
			identity.SectorIDs = []int64{*id}
		}
	case models.RoleTeacher:
		if m.teachers == nil {
			return
		}
		teacher, err := m.teachers.GetByUserID(ctx, identity.User.ID)
		if err != nil {
			m.logger.Warn("teacher profile lookup failed", zap.Int64("user_id", identity.User.ID), zap.Error(err))
			return
		}
		identity.TeacherID = teacher.ID
		identity.SectorIDs = teacher.SectorIDs()
	}
}

// Register creates a student account. The sector is sent only for levels
// that require a manual selection.
func (m *Manager) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	req.Email = strings.TrimSpace(req.Email)
	req.Role = models.RoleStudent
	if err := validation.Struct(m.validator, req); err != nil {
		return nil, err
	}
	if req.LevelID == nil {
		return nil, appErrors.Validation("please select your level", map[string]string{"levelId": "level is required"})
	}
	if strings.TrimSpace(req.AcademicYear) == "" {
		return nil, appErrors.Validation("please enter the academic year", map[string]string{"academicYear": "academic year is required"})
	}

	levels, err := m.levels.Levels(ctx)
	if err != nil {
		return nil, err
	}
	level, ok := models.FindLevel(levels, *req.LevelID)
	if !ok {
		return nil, appErrors.Validation("please select your level", map[string]string{"levelId": "unknown level"})
	}
	if policy.RequiresSector(level.Name) {
		if req.SectorID == nil {
			return nil, appErrors.Validation("please select your sector", map[string]string{"sectorId": "sector is required"})
		}
	} else {
		req.SectorID = nil
	}

	user, err := m.auth.Register(ctx, req)
	if err != nil {
		return nil, err
	}
	m.record("register")
	return user, nil
}

// Load returns the identity of a session id or nil when unknown or expired.
func (m *Manager) Load(ctx context.Context, sessionID string) (*Identity, error) {
	if sessionID == "" {
		return nil, nil
	}
	identity, err := m.store.Load(ctx, sessionID)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	identity.SessionID = sessionID
	if !identity.IsAuthenticated() {
		_ = m.store.Delete(ctx, sessionID)
		return nil, nil
	}
	return identity, nil
}

// Logout drops the session. Requests still carrying its cookie are anonymous from now on.
func (m *Manager) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := m.store.Delete(ctx, sessionID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrServer.Code, appErrors.ErrServer.Status, "failed to close session")
	}
	m.record("logout")
	return nil
}

// TTL is the configured upper bound of a session lifetime.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

func (m *Manager) record(event string) {
	if m.metrics != nil {
		m.metrics.RecordSessionEvent(event)
	}
}

// tokenExpiry reads the exp claim of the backend token. The portal does not
// hold the signing key, so the signature is not checked here.
func tokenExpiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

func isClientError(err error) bool {
	appErr := appErrors.FromError(err)
	return appErr.Status >= http.StatusBadRequest && appErr.Status < http.StatusInternalServerError
}
