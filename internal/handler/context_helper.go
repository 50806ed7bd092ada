package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/internship-portal/internal/middleware"
	"github.com/noah-isme/internship-portal/internal/models"
	"github.com/noah-isme/internship-portal/internal/session"
	appErrors "github.com/noah-isme/internship-portal/pkg/errors"
	"github.com/noah-isme/internship-portal/pkg/response"
)

func identityFromContext(c *gin.Context) *session.Identity {
	return middleware.IdentityFrom(c)
}

// newView starts the envelope of a page with the caller attached.
func newView(c *gin.Context, title string) response.View {
	return response.View{Title: title, Identity: identityFromContext(c)}
}

// pathID parses the :id route parameter. Malformed ids behave like missing records.
func pathID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, appErrors.Clone(appErrors.ErrNotFound, "")
	}
	return id, nil
}

func formString(c *gin.Context, key string) string {
	return strings.TrimSpace(c.PostForm(key))
}

// formInt64Ptr reads an optional numeric field; empty or malformed values are nil.
func formInt64Ptr(c *gin.Context, key string) *int64 {
	return parseInt64Ptr(c.PostForm(key))
}

func formInt64(c *gin.Context, key string) int64 {
	if v := formInt64Ptr(c, key); v != nil {
		return *v
	}
	return 0
}

func formInt64s(c *gin.Context, key string) []int64 {
	var out []int64
	for _, raw := range c.PostFormArray(key) {
		if v := parseInt64Ptr(raw); v != nil {
			out = append(out, *v)
		}
	}
	return out
}

// formFloat reads a decimal field, accepting a comma as separator.
func formFloat(c *gin.Context, key string) (float64, bool) {
	raw := strings.ReplaceAll(strings.TrimSpace(c.PostForm(key)), ",", ".")
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func queryInt64Ptr(c *gin.Context, key string) *int64 {
	return parseInt64Ptr(c.Query(key))
}

func queryStringPtr(c *gin.Context, key string) *string {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return nil
	}
	return &value
}

func parseInt64Ptr(raw string) *int64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		return nil
	}
	return &v
}

// searchFromQuery reads the admin internship filters. Absent values stay nil.
func searchFromQuery(c *gin.Context) models.InternshipSearch {
	search := models.InternshipSearch{
		StudentID:   queryInt64Ptr(c, "studentId"),
		TeacherID:   queryInt64Ptr(c, "teacherId"),
		LevelID:     queryInt64Ptr(c, "levelId"),
		SectorID:    queryInt64Ptr(c, "sectorId"),
		CompanyName: queryStringPtr(c, "companyName"),
	}
	if raw := strings.ToUpper(strings.TrimSpace(c.Query("status"))); raw != "" {
		status := models.InternshipStatus(raw)
		if status.Valid() {
			search.Status = &status
		}
	}
	return search
}

// formStatus maps a failed submission to the status of the re-rendered form.
func formStatus(err error) int {
	appErr := appErrors.FromError(err)
	if appErr.Status == http.StatusBadRequest {
		return http.StatusUnprocessableEntity
	}
	if appErr.Status < http.StatusBadRequest {
		return http.StatusInternalServerError
	}
	return appErr.Status
}

// failForm re-renders a form page with the error inline. Session expiry is
// left to the session middleware.
func failForm(c *gin.Context, page string, view response.View, err error) {
	if appErrors.IsAuth(err) {
		response.Error(c, err, view)
		return
	}
	status := formStatus(err)
	if response.IsHTMX(c) {
		// htmx does not swap error responses
		status = http.StatusOK
	}
	response.Page(c, status, page, view.WithError(err))
}
