package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/internship-portal/internal/models"
	"github.com/noah-isme/internship-portal/internal/service"
	"github.com/noah-isme/internship-portal/internal/session"
	appErrors "github.com/noah-isme/internship-portal/pkg/errors"
	"github.com/noah-isme/internship-portal/pkg/response"
)

type reportService interface {
	List(ctx context.Context, id *session.Identity) (*service.ReportList, error)
	Get(ctx context.Context, id *session.Identity, reportID int64) (*service.ReportRow, error)
	Grade(ctx context.Context, id *session.Identity, reportID int64, req models.GradeRequest) (*models.Report, error)
	Download(ctx context.Context, id *session.Identity, reportID int64) (*models.ReportFile, error)
	Submit(ctx context.Context, id *session.Identity, req models.ReportRequest) (*models.Report, error)
	Submittable(ctx context.Context, id *session.Identity) ([]models.Internship, error)
}

// GradeForm feeds the teacher grading form.
type GradeForm struct {
	Report   models.Report
	Grade    string
	Feedback string
}

// SubmitForm feeds the student report submission form.
type SubmitForm struct {
	Request     models.ReportRequest
	Internships []models.Internship
}

// ReportHandler exposes the report pages.
type ReportHandler struct {
	reports reportService
}

// NewReportHandler constructs handler.
func NewReportHandler(reports reportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// List renders the reports visible to the caller.
func (h *ReportHandler) List(c *gin.Context) {
	view := newView(c, "Reports")
	list, err := h.reports.List(c.Request.Context(), view.Identity)
	if err != nil {
		response.Error(c, err, view)
		return
	}
	if list.Err != nil {
		view.Error = "some reports could not be loaded: " + appErrors.UserMessage(list.Err)
	}
	view.Data = list
	response.Page(c, http.StatusOK, "reports/list", view)
}

func (h *ReportHandler) Show(c *gin.Context) {
	view := newView(c, "Report")
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err, view)
		return
	}
	row, err := h.reports.Get(c.Request.Context(), view.Identity, id)
	if err != nil {
		response.Error(c, err, view)
		return
	}
	view.Data = row
	response.Page(c, http.StatusOK, "reports/detail", view)
}

// GradeForm renders the grading form with the current grade.
func (h *ReportHandler) GradeForm(c *gin.Context) {
	view := newView(c, "Grade report")
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err, view)
		return
	}
	row, err := h.reports.Get(c.Request.Context(), view.Identity, id)
	if err != nil {
		response.Error(c, err, view)
		return
	}
	if !row.CanGrade {
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "only teachers can grade reports"), view)
		return
	}
	form := GradeForm{Report: row.Report, Feedback: row.Report.Feedback}
	if row.Report.Grade != nil {
		form.Grade = formatGrade(*row.Report.Grade)
	}
	view.Form = form
	response.Page(c, http.StatusOK, "reports/grade", view)
}

// Grade records the grade. Missing or non-numeric grades fail like out of
// range ones, before any backend call.
func (h *ReportHandler) Grade(c *gin.Context) {
	view := newView(c, "Grade report")
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err, view)
		return
	}
	form := GradeForm{Report: models.Report{ID: id}, Grade: formString(c, "grade"), Feedback: formString(c, "feedback")}
	grade, ok := formFloat(c, "grade")
	if !ok {
		view.Form = form
		failForm(c, "reports/grade", view, appErrors.Validation("grade must be between 0 and 20", map[string]string{"grade": "grade must be between 0 and 20"}))
		return
	}
	if _, err := h.reports.Grade(c.Request.Context(), view.Identity, id, models.GradeRequest{Grade: grade, Feedback: form.Feedback}); err != nil {
		view.Form = form
		failForm(c, "reports/grade", view, err)
		return
	}
	response.Redirect(c, fmt.Sprintf("/reports/%d", id))
}

// Download streams the report file as an attachment.
func (h *ReportHandler) Download(c *gin.Context) {
	view := newView(c, "Download report")
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err, view)
		return
	}
	file, err := h.reports.Download(c.Request.Context(), view.Identity, id)
	if err != nil {
		response.Error(c, err, view)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.FileName))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}

// SubmitForm lists the caller's internships a report can be attached to.
func (h *ReportHandler) SubmitForm(c *gin.Context) {
	view := newView(c, "Submit a report")
	form := SubmitForm{Request: models.ReportRequest{InternshipID: int64Value(queryInt64Ptr(c, "internshipId"))}}
	internships, err := h.reports.Submittable(c.Request.Context(), view.Identity)
	if err != nil {
		view = view.WithError(err)
	}
	form.Internships = internships
	view.Form = form
	response.Page(c, http.StatusOK, "reports/submit", view)
}

func (h *ReportHandler) Submit(c *gin.Context) {
	view := newView(c, "Submit a report")
	req := models.ReportRequest{InternshipID: formInt64(c, "internshipId"), FilePath: formString(c, "filePath")}
	created, err := h.reports.Submit(c.Request.Context(), view.Identity, req)
	if err != nil {
		internships, _ := h.reports.Submittable(c.Request.Context(), view.Identity)
		view.Form = SubmitForm{Request: req, Internships: internships}
		failForm(c, "reports/submit", view, err)
		return
	}
	response.Redirect(c, fmt.Sprintf("/reports/%d", created.ID))
}

func int64Value(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}
