package handler

import (
	"html/template"
	"strconv"
	"strings"

	"github.com/noah-isme/internship-portal/internal/models"
	"github.com/noah-isme/internship-portal/internal/policy"
	"github.com/noah-isme/internship-portal/internal/session"
)

// TemplateFuncs are the helpers available to every page.
func TemplateFuncs() template.FuncMap {
	return template.FuncMap{
		"canAccess": canAccess,
		"date":      formatDate,
		"grade":     gradeLabel,
		"selected":  selectedID,
		"idValue":   int64Value,
		"level":     levelName,
		"sector":    sectorName,
		"lower":     strings.ToLower,
		"status":    statusValue,
		"text":      textValue,
	}
}

// canAccess drives navigation links from the route table.
func canAccess(identity *session.Identity, path string) bool {
	return identity.IsAuthenticated() && policy.CanAccess(identity.Role(), path)
}

func formatDate(ts *models.Timestamp) string {
	if date := ts.Date(); date != "" {
		return date
	}
	return "-"
}

func formatGrade(grade float64) string {
	return strconv.FormatFloat(grade, 'f', -1, 64)
}

func gradeLabel(grade *float64) string {
	if grade == nil {
		return "not graded"
	}
	return formatGrade(*grade) + " / 20"
}

func selectedID(current *int64, id int64) bool {
	return current != nil && *current == id
}

func levelName(level *models.Level) string {
	if level == nil {
		return "-"
	}
	return level.Name
}

func sectorName(sector *models.Sector) string {
	if sector == nil {
		return "-"
	}
	return sector.Name
}

func statusValue(status *models.InternshipStatus) models.InternshipStatus {
	if status == nil {
		return ""
	}
	return *status
}

func textValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
