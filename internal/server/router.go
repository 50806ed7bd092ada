package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/internship-portal/internal/handler"
	"github.com/noah-isme/internship-portal/internal/middleware"
	"github.com/noah-isme/internship-portal/internal/service"
	appErrors "github.com/noah-isme/internship-portal/pkg/errors"
	"github.com/noah-isme/internship-portal/pkg/logger"
	reqidmiddleware "github.com/noah-isme/internship-portal/pkg/middleware/requestid"
	"github.com/noah-isme/internship-portal/pkg/response"
)

// Handlers groups the page handlers mounted by the router.
type Handlers struct {
	Auth        *handler.AuthHandler
	Dashboard   *handler.DashboardHandler
	Internships *handler.InternshipHandler
	Students    *handler.StudentHandler
	Teachers    *handler.TeacherHandler
	Reports     *handler.ReportHandler
	Metadata    *handler.MetadataHandler
	Health      *handler.HealthHandler
}

// Options configures the router.
type Options struct {
	Sessions       middleware.SessionLoader
	Cookie         middleware.Cookie
	Templates      *response.Templates
	Static         http.FileSystem
	Metrics        *service.MetricsService
	MetricsEnabled bool
	CSRFKey        []byte
	Logger         *zap.Logger
}

// NewRouter builds the gin engine. Health, metrics and static assets sit
// outside the navigation guard; every page route goes through the session,
// the CSRF check and the guard, in that order.
func NewRouter(h Handlers, opts Options) *gin.Engine {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(log))
	r.Use(middleware.Metrics(opts.Metrics))
	if opts.Templates != nil {
		r.HTMLRender = opts.Templates
	}

	r.GET("/health", h.Health.Health)
	r.GET("/ready", h.Health.Ready)
	if opts.MetricsEnabled {
		r.GET("/metrics", h.Health.Prometheus)
	}
	if opts.Static != nil {
		r.StaticFS("/static", opts.Static)
	}

	csrfKey := opts.CSRFKey
	if len(csrfKey) == 0 {
		log.Warn("no csrf key configured, tokens will not survive a restart")
		csrfKey, _ = middleware.CSRFKey("")
	}

	session := middleware.Session(opts.Sessions, opts.Cookie, log)
	csrf := middleware.CSRF(middleware.CSRFConfig{Key: csrfKey, Secure: opts.Cookie.Secure, Logger: log})
	guard := middleware.Guard()

	r.GET("/", session, h.Dashboard.Home)

	portal := r.Group("/", session, csrf, guard)

	auth := portal.Group("/auth")
	auth.GET("/login", h.Auth.LoginPage)
	auth.POST("/login", h.Auth.Login)
	auth.GET("/register", h.Auth.RegisterPage)
	auth.POST("/register", h.Auth.Register)
	auth.POST("/logout", h.Auth.Logout)

	portal.GET("/metadata/sectors", h.Metadata.Sectors)

	dashboard := portal.Group("/dashboard")
	dashboard.GET("", h.Dashboard.Home)
	dashboard.GET("/admin", h.Dashboard.Admin)
	dashboard.GET("/teacher", h.Dashboard.Teacher)
	dashboard.GET("/student", h.Dashboard.Student)

	internships := portal.Group("/internships")
	internships.GET("", h.Internships.List)
	internships.GET("/create", h.Internships.NewForm)
	internships.POST("/create", h.Internships.Create)
	internships.GET("/export", h.Internships.Export)
	internships.GET("/:id", h.Internships.Show)
	internships.GET("/:id/edit", h.Internships.EditForm)
	internships.POST("/:id/edit", h.Internships.Update)
	internships.GET("/:id/status", h.Internships.StatusForm)
	internships.POST("/:id/status", h.Internships.UpdateStatus)
	internships.POST("/:id/delete", h.Internships.Delete)

	students := portal.Group("/students")
	students.GET("", h.Students.List)
	students.GET("/create", h.Students.NewForm)
	students.POST("/create", h.Students.Create)
	students.GET("/:id", h.Students.Show)
	students.GET("/:id/edit", h.Students.EditForm)
	students.POST("/:id/edit", h.Students.Update)
	students.POST("/:id/delete", h.Students.Delete)

	teachers := portal.Group("/teachers")
	teachers.GET("", h.Teachers.List)
	teachers.GET("/create", h.Teachers.NewForm)
	teachers.POST("/create", h.Teachers.Create)
	teachers.GET("/:id", h.Teachers.Show)
	teachers.GET("/:id/edit", h.Teachers.EditForm)
	teachers.POST("/:id/edit", h.Teachers.Update)
	teachers.POST("/:id/delete", h.Teachers.Delete)

	reports := portal.Group("/reports")
	reports.GET("", h.Reports.List)
	reports.GET("/create", h.Reports.SubmitForm)
	reports.POST("/create", h.Reports.Submit)
	reports.GET("/:id", h.Reports.Show)
	reports.GET("/:id/download", h.Reports.Download)
	reports.GET("/:id/grade", h.Reports.GradeForm)
	reports.POST("/:id/grade", h.Reports.Grade)

	r.NoRoute(session, csrf, guard, func(c *gin.Context) {
		response.Page(c, http.StatusNotFound, "error", response.View{
			Title:    "Page not found",
			Identity: middleware.IdentityFrom(c),
			Error:    appErrors.ErrNotFound.Message,
		})
	})

	return r
}
