package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/internship-portal/internal/service"
	"github.com/noah-isme/internship-portal/internal/session"
	"github.com/noah-isme/internship-portal/pkg/response"
)

type dashboardService interface {
	Admin(ctx context.Context, id *session.Identity) *service.AdminDashboard
	Teacher(ctx context.Context, id *session.Identity) *service.TeacherDashboard
	Student(ctx context.Context, id *session.Identity) *service.StudentDashboard
}

// DashboardHandler renders the role dashboards. Every section renders on its
// own, failed ones as an inline error.
type DashboardHandler struct {
	service dashboardService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(service dashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// Home sends the caller to the dashboard of their role.
func (h *DashboardHandler) Home(c *gin.Context) {
	response.Redirect(c, identityFromContext(c).DashboardRoute())
}

func (h *DashboardHandler) Admin(c *gin.Context) {
	view := newView(c, "Administration")
	view.Data = h.service.Admin(c.Request.Context(), view.Identity)
	response.Page(c, http.StatusOK, "dashboard/admin", view)
}

func (h *DashboardHandler) Teacher(c *gin.Context) {
	view := newView(c, "My supervision")
	view.Data = h.service.Teacher(c.Request.Context(), view.Identity)
	response.Page(c, http.StatusOK, "dashboard/teacher", view)
}

func (h *DashboardHandler) Student(c *gin.Context) {
	view := newView(c, "My internships")
	view.Data = h.service.Student(c.Request.Context(), view.Identity)
	response.Page(c, http.StatusOK, "dashboard/student", view)
}
