package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/internship-portal/internal/models"
	"github.com/noah-isme/internship-portal/internal/service"
	"github.com/noah-isme/internship-portal/internal/session"
	"github.com/noah-isme/internship-portal/pkg/response"
)

type studentService interface {
	studentDirectory
	Get(ctx context.Context, id *session.Identity, studentID int64) (*service.StudentDetail, error)
	Create(ctx context.Context, id *session.Identity, req models.StudentRequest) (*models.Student, error)
	Update(ctx context.Context, id *session.Identity, studentID int64, req models.StudentRequest) (*models.Student, error)
	Delete(ctx context.Context, id *session.Identity, studentID int64) error
}

// StudentListPage is the student list with its level filter.
type StudentListPage struct {
	*service.StudentList
	Levels    []models.Level
	LevelsErr string
	LevelID   *int64
}

// StudentForm feeds the admin student form. The sector selector is the
// metadata partial, prefilled for the chosen level.
type StudentForm struct {
	ID        int64
	Request   models.StudentRequest
	Levels    []models.Level
	LevelsErr string
	Sector    SectorSelect
}

// StudentHandler serves the student pages.
type StudentHandler struct {
	service  studentService
	metadata *MetadataHandler
}

// NewStudentHandler constructs the handler. Sector selectors are rendered by
// the metadata handler.
func NewStudentHandler(students studentService, metadata *MetadataHandler) *StudentHandler {
	return &StudentHandler{service: students, metadata: metadata}
}

// List renders all students or those of ?levelId=.
func (h *StudentHandler) List(c *gin.Context) {
	view := newView(c, "Students")
	levelID := queryInt64Ptr(c, "levelId")
	list, err := h.service.List(c.Request.Context(), view.Identity, levelID)
	if err != nil {
		response.Error(c, err, view)
		return
	}
	page := StudentListPage{StudentList: list, LevelID: levelID}
	page.Levels, page.LevelsErr = h.metadata.levels(c.Request.Context())
	view.Data = page
	response.Page(c, http.StatusOK, "students/list", view)
}

func (h *StudentHandler) Show(c *gin.Context) {
	view := newView(c, "Student")
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err, view)
		return
	}
	detail, err := h.service.Get(c.Request.Context(), view.Identity, id)
	if err != nil {
		response.Error(c, err, view)
		return
	}
	view.Title = detail.Student.User.FullName()
	view.Data = detail
	response.Page(c, http.StatusOK, "students/detail", view)
}

func (h *StudentHandler) NewForm(c *gin.Context) {
	view := newView(c, "New student")
	view.Form = h.form(c, 0, models.StudentRequest{})
	response.Page(c, http.StatusOK, "students/form", view)
}

func (h *StudentHandler) Create(c *gin.Context) {
	view := newView(c, "New student")
	req := studentRequestFromForm(c)
	created, err := h.service.Create(c.Request.Context(), view.Identity, req)
	if err != nil {
		req.Password = ""
		view.Form = h.form(c, 0, req)
		failForm(c, "students/form", view, err)
		return
	}
	response.Redirect(c, fmt.Sprintf("/students/%d", created.ID))
}

func (h *StudentHandler) EditForm(c *gin.Context) {
	view := newView(c, "Edit student")
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err, view)
		return
	}
	detail, err := h.service.Get(c.Request.Context(), view.Identity, id)
	if err != nil {
		response.Error(c, err, view)
		return
	}
	if !detail.CanEdit {
		response.Redirect(c, fmt.Sprintf("/students/%d", id))
		return
	}
	s := detail.Student
	view.Form = h.form(c, id, models.StudentRequest{
		FirstName:    s.User.FirstName,
		LastName:     s.User.LastName,
		Email:        s.User.Email,
		LevelID:      s.LevelID(),
		SectorID:     s.SectorID(),
		AcademicYear: s.AcademicYear,
	})
	response.Page(c, http.StatusOK, "students/form", view)
}

func (h *StudentHandler) Update(c *gin.Context) {
	view := newView(c, "Edit student")
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err, view)
		return
	}
	req := studentRequestFromForm(c)
	if _, err := h.service.Update(c.Request.Context(), view.Identity, id, req); err != nil {
		req.Password = ""
		view.Form = h.form(c, id, req)
		failForm(c, "students/form", view, err)
		return
	}
	response.Redirect(c, fmt.Sprintf("/students/%d", id))
}

func (h *StudentHandler) Delete(c *gin.Context) {
	view := newView(c, "Delete student")
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err, view)
		return
	}
	if err := h.service.Delete(c.Request.Context(), view.Identity, id); err != nil {
		response.Error(c, err, view)
		return
	}
	response.Redirect(c, "/students")
}

func (h *StudentHandler) form(c *gin.Context, id int64, req models.StudentRequest) StudentForm {
	ctx := c.Request.Context()
	form := StudentForm{ID: id, Request: req}
	form.Levels, form.LevelsErr = h.metadata.levels(ctx)
	form.Sector = h.metadata.sectorSelect(ctx, req.LevelID, req.SectorID)
	return form
}

func studentRequestFromForm(c *gin.Context) models.StudentRequest {
	return models.StudentRequest{
		FirstName:    formString(c, "firstName"),
		LastName:     formString(c, "lastName"),
		Email:        formString(c, "email"),
		Password:     c.PostForm("password"),
		LevelID:      formInt64Ptr(c, "levelId"),
		SectorID:     formInt64Ptr(c, "sectorId"),
		AcademicYear: formString(c, "academicYear"),
	}
}
