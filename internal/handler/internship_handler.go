package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/internship-portal/internal/models"
	"github.com/noah-isme/internship-portal/internal/service"
	"github.com/noah-isme/internship-portal/internal/session"
	appErrors "github.com/noah-isme/internship-portal/pkg/errors"
	"github.com/noah-isme/internship-portal/pkg/response"
)

type internshipService interface {
	List(ctx context.Context, id *session.Identity, opts service.InternshipListOptions) (*service.InternshipList, error)
	Get(ctx context.Context, id *session.Identity, internshipID int64) (*service.InternshipDetail, error)
	Create(ctx context.Context, id *session.Identity, req models.InternshipRequest) (*models.Internship, error)
	Update(ctx context.Context, id *session.Identity, internshipID int64, req models.InternshipRequest) (*models.Internship, error)
	UpdateStatus(ctx context.Context, id *session.Identity, internshipID int64, req models.InternshipStatusRequest) (*models.Internship, error)
	Delete(ctx context.Context, id *session.Identity, internshipID int64) error
}

type exportService interface {
	Internships(ctx context.Context, id *session.Identity, format string, search models.InternshipSearch) (*service.ExportResult, error)
}

type studentDirectory interface {
	List(ctx context.Context, id *session.Identity, levelID *int64) (*service.StudentList, error)
}

type teacherDirectory interface {
	List(ctx context.Context, id *session.Identity, sectorID *int64) ([]models.Teacher, error)
}

// InternshipListPage is the list page model with the active filters.
type InternshipListPage struct {
	*service.InternshipList
	Search    models.InternshipSearch
	Statuses  []models.InternshipStatus
	ExportCSV string
	ExportPDF string
}

// InternshipForm feeds the create/edit form. Option lists are loaded for
// admins only; students never pick an owner, level, sector or supervisor.
type InternshipForm struct {
	ID         int64
	Request    models.InternshipRequest
	IsAdmin    bool
	Statuses   []models.InternshipStatus
	Students   []models.Student
	Teachers   []models.Teacher
	Levels     []models.Level
	Sectors    []models.Sector
	OptionsErr string
}

// StatusForm feeds the teacher status form.
type StatusForm struct {
	Internship models.Internship
	Request    models.InternshipStatusRequest
	Statuses   []models.InternshipStatus
}

// InternshipHandler serves the internship pages.
type InternshipHandler struct {
	internships internshipService
	export      exportService
	students    studentDirectory
	teachers    teacherDirectory
	metadata    metadataSource
	logger      *zap.Logger
}

// InternshipHandlerParams groups the collaborators of InternshipHandler.
type InternshipHandlerParams struct {
	Internships internshipService
	Export      exportService
	Students    studentDirectory
	Teachers    teacherDirectory
	Metadata    metadataSource
	Logger      *zap.Logger
}

// NewInternshipHandler constructs the handler.
func NewInternshipHandler(params InternshipHandlerParams) *InternshipHandler {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InternshipHandler{
		internships: params.Internships,
		export:      params.Export,
		students:    params.Students,
		teachers:    params.Teachers,
		metadata:    params.Metadata,
		logger:      logger,
	}
}

// List renders the role-scoped internship list. Students may switch between
// their own and all internships with ?scope=all; admins may filter.
func (h *InternshipHandler) List(c *gin.Context) {
	view := newView(c, "Internships")
	search := models.InternshipSearch{}
	if view.Identity.HasRole(models.RoleAdmin) {
		search = searchFromQuery(c)
	}
	list, err := h.internships.List(c.Request.Context(), view.Identity, service.InternshipListOptions{
		Scope:  c.Query("scope"),
		Search: search,
	})
	if err != nil {
		response.Error(c, err, view)
		return
	}
	view.Data = InternshipListPage{
		InternshipList: list,
		Search:         search,
		Statuses:       models.InternshipStatuses,
		ExportCSV:      exportURL(c, service.FormatCSV),
		ExportPDF:      exportURL(c, service.FormatPDF),
	}
	response.Page(c, http.StatusOK, "internships/list", view)
}

func (h *InternshipHandler) Show(c *gin.Context) {
	view := newView(c, "Internship")
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err, view)
		return
	}
	detail, err := h.internships.Get(c.Request.Context(), view.Identity, id)
	if err != nil {
		response.Error(c, err, view)
		return
	}
	view.Title = detail.Internship.Subject
	view.Data = detail
	response.Page(c, http.StatusOK, "internships/detail", view)
}

func (h *InternshipHandler) NewForm(c *gin.Context) {
	view := newView(c, "New internship")
	view.Form = h.form(c, 0, models.InternshipRequest{Status: models.StatusPending})
	response.Page(c, http.StatusOK, "internships/form", view)
}

func (h *InternshipHandler) Create(c *gin.Context) {
	view := newView(c, "New internship")
	req := internshipRequestFromForm(c)
	created, err := h.internships.Create(c.Request.Context(), view.Identity, req)
	if err != nil {
		view.Form = h.form(c, 0, req)
		failForm(c, "internships/form", view, err)
		return
	}
	response.Redirect(c, fmt.Sprintf("/internships/%d", created.ID))
}

// EditForm renders the full edit form, prefilled from the stored record.
func (h *InternshipHandler) EditForm(c *gin.Context) {
	view := newView(c, "Edit internship")
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err, view)
		return
	}
	detail, err := h.internships.Get(c.Request.Context(), view.Identity, id)
	if err != nil {
		response.Error(c, err, view)
		return
	}
	if !detail.Actions.CanEdit {
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "this internship can no longer be changed"), view)
		return
	}
	view.Form = h.form(c, id, detail.Internship.Request())
	response.Page(c, http.StatusOK, "internships/form", view)
}

func (h *InternshipHandler) Update(c *gin.Context) {
	view := newView(c, "Edit internship")
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err, view)
		return
	}
	req := internshipRequestFromForm(c)
	if _, err := h.internships.Update(c.Request.Context(), view.Identity, id, req); err != nil {
		view.Form = h.form(c, id, req)
		failForm(c, "internships/form", view, err)
		return
	}
	response.Redirect(c, fmt.Sprintf("/internships/%d", id))
}

// StatusForm renders the teacher status-only form.
func (h *InternshipHandler) StatusForm(c *gin.Context) {
	view := newView(c, "Review internship")
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err, view)
		return
	}
	detail, err := h.internships.Get(c.Request.Context(), view.Identity, id)
	if err != nil {
		response.Error(c, err, view)
		return
	}
	if !detail.Actions.CanUpdateStatus {
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, ""), view)
		return
	}
	view.Form = StatusForm{
		Internship: detail.Internship,
		Request:    models.InternshipStatusRequest{Status: detail.Internship.Status, TeacherComment: detail.Internship.TeacherComment},
		Statuses:   models.InternshipStatuses,
	}
	response.Page(c, http.StatusOK, "internships/status", view)
}

func (h *InternshipHandler) UpdateStatus(c *gin.Context) {
	view := newView(c, "Review internship")
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err, view)
		return
	}
	req := models.InternshipStatusRequest{
		Status:         models.InternshipStatus(strings.ToUpper(formString(c, "status"))),
		TeacherComment: formString(c, "teacherComment"),
	}
	if _, err := h.internships.UpdateStatus(c.Request.Context(), view.Identity, id, req); err != nil {
		view.Form = StatusForm{Internship: models.Internship{ID: id}, Request: req, Statuses: models.InternshipStatuses}
		failForm(c, "internships/status", view, err)
		return
	}
	response.Redirect(c, fmt.Sprintf("/internships/%d", id))
}

func (h *InternshipHandler) Delete(c *gin.Context) {
	view := newView(c, "Delete internship")
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err, view)
		return
	}
	if err := h.internships.Delete(c.Request.Context(), view.Identity, id); err != nil {
		response.Error(c, err, view)
		return
	}
	response.Redirect(c, "/internships")
}

// Export streams the admin's filtered list as ?format=csv or pdf.
func (h *InternshipHandler) Export(c *gin.Context) {
	view := newView(c, "Export")
	result, err := h.export.Internships(c.Request.Context(), view.Identity, c.Query("format"), searchFromQuery(c))
	if err != nil {
		response.Error(c, err, view)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.FileName))
	c.Data(http.StatusOK, result.ContentType, result.Data)
}

func (h *InternshipHandler) form(c *gin.Context, id int64, req models.InternshipRequest) InternshipForm {
	identity := identityFromContext(c)
	form := InternshipForm{ID: id, Request: req}
	if !identity.HasRole(models.RoleAdmin) {
		form.Statuses = []models.InternshipStatus{models.StatusDraft, models.StatusPending}
		return form
	}
	form.IsAdmin = true
	form.Statuses = models.InternshipStatuses

	ctx := c.Request.Context()
	var failed []string
	if students, err := h.students.List(ctx, identity, nil); err != nil {
		failed = append(failed, "students")
	} else {
		form.Students = students.Students
	}
	var err error
	if form.Teachers, err = h.teachers.List(ctx, identity, nil); err != nil {
		failed = append(failed, "teachers")
	}
	if form.Levels, err = h.metadata.Levels(ctx); err != nil {
		failed = append(failed, "levels")
	}
	if form.Sectors, err = h.metadata.Sectors(ctx); err != nil {
		failed = append(failed, "sectors")
	}
	if len(failed) > 0 {
		h.logger.Warn("internship form options unavailable", zap.Strings("options", failed))
		form.OptionsErr = "some choices could not be loaded: " + strings.Join(failed, ", ")
	}
	return form
}

// exportURL keeps the active filters of the list page.
func exportURL(c *gin.Context, format string) string {
	query := c.Request.URL.Query()
	query.Del("scope")
	query.Set("format", format)
	return "/internships/export?" + query.Encode()
}

func internshipRequestFromForm(c *gin.Context) models.InternshipRequest {
	return models.InternshipRequest{
		Subject:        formString(c, "subject"),
		Company:        formString(c, "company"),
		City:           formString(c, "city"),
		Description:    formString(c, "description"),
		StartDate:      formString(c, "startDate"),
		EndDate:        formString(c, "endDate"),
		Status:         models.InternshipStatus(strings.ToUpper(formString(c, "status"))),
		StudentID:      formInt64(c, "studentId"),
		TeacherID:      formInt64Ptr(c, "teacherId"),
		LevelID:        formInt64Ptr(c, "levelId"),
		SectorID:       formInt64Ptr(c, "sectorId"),
		TeacherComment: formString(c, "teacherComment"),
	}
}
