package policy

import (
	"strings"

	"github.com/noah-isme/internship-portal/internal/models"
)

// autoSectorLevels get their sector assigned by the backend. Kept as an
// explicit allow-list; every other level name demands a manual selection.
var autoSectorLevels = map[string]struct{}{
	models.LevelB1: {},
	models.LevelB2: {},
}

// RequiresSector reports whether a sector must be chosen for the level.
func RequiresSector(levelName string) bool {
	_, auto := autoSectorLevels[strings.ToUpper(strings.TrimSpace(levelName))]
	return !auto
}

// studentEditableStatuses are the states in which a student may still rework
// or withdraw an internship.
var studentEditableStatuses = map[models.InternshipStatus]struct{}{
	models.StatusDraft:   {},
	models.StatusPending: {},
}

// StudentEditable reports whether an internship in status can be changed by its student.
func StudentEditable(status models.InternshipStatus) bool {
	_, ok := studentEditableStatuses[status]
	return ok
}

// ValidGrade reports whether grade lies within the 0–20 scale.
func ValidGrade(grade float64) bool {
	return grade >= models.MinGrade && grade <= models.MaxGrade
}
