package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/internship-portal/internal/models"
	"github.com/noah-isme/internship-portal/internal/service"
	"github.com/noah-isme/internship-portal/internal/session"
	"github.com/noah-isme/internship-portal/pkg/response"
)

type teacherService interface {
	teacherDirectory
	Get(ctx context.Context, id *session.Identity, teacherID int64) (*service.TeacherDetail, error)
	Create(ctx context.Context, id *session.Identity, req models.TeacherRequest) (*models.Teacher, error)
	Update(ctx context.Context, id *session.Identity, teacherID int64, req models.TeacherRequest) (*models.Teacher, error)
	Delete(ctx context.Context, id *session.Identity, teacherID int64) error
}

type sectorSource interface {
	Sectors(ctx context.Context) ([]models.Sector, error)
}

// TeacherListPage is the teacher list with its sector filter.
type TeacherListPage struct {
	Teachers []models.Teacher
	Sectors  []models.Sector
	SectorID *int64
}

// TeacherForm feeds the teacher form.
type TeacherForm struct {
	ID         int64
	Request    models.TeacherRequest
	Sectors    []models.Sector
	SectorsErr string
}

// Selected reports whether the sector is ticked in the form.
func (f TeacherForm) Selected(sectorID int64) bool {
	for _, id := range f.Request.SectorIDs {
		if id == sectorID {
			return true
		}
	}
	return false
}

// TeacherHandler serves the admin teacher pages.
type TeacherHandler struct {
	service teacherService
	sectors sectorSource
	logger  *zap.Logger
}

// NewTeacherHandler constructs the handler.
func NewTeacherHandler(teachers teacherService, sectors sectorSource, logger *zap.Logger) *TeacherHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TeacherHandler{service: teachers, sectors: sectors, logger: logger}
}

// List renders all teachers or those attached to ?sectorId=.
func (h *TeacherHandler) List(c *gin.Context) {
	view := newView(c, "Teachers")
	sectorID := queryInt64Ptr(c, "sectorId")
	teachers, err := h.service.List(c.Request.Context(), view.Identity, sectorID)
	if err != nil {
		response.Error(c, err, view)
		return
	}
	page := TeacherListPage{Teachers: teachers, SectorID: sectorID}
	if page.Sectors, err = h.sectors.Sectors(c.Request.Context()); err != nil {
		h.logger.Warn("sector filter unavailable", zap.Error(err))
	}
	view.Data = page
	response.Page(c, http.StatusOK, "teachers/list", view)
}

func (h *TeacherHandler) Show(c *gin.Context) {
	view := newView(c, "Teacher")
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
	view.Title = detail.Teacher.User.FullName()
	view.Data = detail
	response.Page(c, http.StatusOK, "teachers/detail", view)
}

func (h *TeacherHandler) NewForm(c *gin.Context) {
	view := newView(c, "New teacher")
	view.Form = h.form(c, 0, models.TeacherRequest{})
	response.Page(c, http.StatusOK, "teachers/form", view)
}

func (h *TeacherHandler) Create(c *gin.Context) {
	view := newView(c, "New teacher")
	req := teacherRequestFromForm(c)
	created, err := h.service.Create(c.Request.Context(), view.Identity, req)
	if err != nil {
		req.Password = ""
		view.Form = h.form(c, 0, req)
		failForm(c, "teachers/form", view, err)
		return
	}
	response.Redirect(c, fmt.Sprintf("/teachers/%d", created.ID))
}

func (h *TeacherHandler) EditForm(c *gin.Context) {
	view := newView(c, "Edit teacher")
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
	t := detail.Teacher
	view.Form = h.form(c, id, models.TeacherRequest{
		FirstName: t.User.FirstName,
		LastName:  t.User.LastName,
		Email:     t.User.Email,
		SectorIDs: t.SectorIDs(),
	})
	response.Page(c, http.StatusOK, "teachers/form", view)
}

func (h *TeacherHandler) Update(c *gin.Context) {
	view := newView(c, "Edit teacher")
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err, view)
		return
	}
	req := teacherRequestFromForm(c)
	if _, err := h.service.Update(c.Request.Context(), view.Identity, id, req); err != nil {
		req.Password = ""
		view.Form = h.form(c, id, req)
		failForm(c, "teachers/form", view, err)
		return
	}
	response.Redirect(c, fmt.Sprintf("/teachers/%d", id))
}

func (h *TeacherHandler) Delete(c *gin.Context) {
	view := newView(c, "Delete teacher")
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err, view)
		return
	}
	if err := h.service.Delete(c.Request.Context(), view.Identity, id); err != nil {
		response.Error(c, err, view)
		return
	}
	response.Redirect(c, "/teachers")
}

func (h *TeacherHandler) form(c *gin.Context, id int64, req models.TeacherRequest) TeacherForm {
	form := TeacherForm{ID: id, Request: req}
	sectors, err := h.sectors.Sectors(c.Request.Context())
	if err != nil {
		h.logger.Warn("sectors unavailable", zap.Error(err))
		form.SectorsErr = "sectors could not be loaded, please try again"
		return form
	}
	form.Sectors = sectors
	return form
}

func teacherRequestFromForm(c *gin.Context) models.TeacherRequest {
	return models.TeacherRequest{
		FirstName: formString(c, "firstName"),
		LastName:  formString(c, "lastName"),
		Email:     formString(c, "email"),
		Password:  c.PostForm("password"),
		SectorIDs: formInt64s(c, "sectorIds"),
	}
}
