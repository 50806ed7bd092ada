package models

import "strings"

// InternshipStatus is the lifecycle state of an internship.
type InternshipStatus string

const (
	StatusDraft      InternshipStatus = "DRAFT"
	StatusPending    InternshipStatus = "PENDING"
	StatusApproved   InternshipStatus = "APPROVED"
	StatusRejected   InternshipStatus = "REJECTED"
	StatusInProgress InternshipStatus = "IN_PROGRESS"
	StatusCompleted  InternshipStatus = "COMPLETED"
)

// InternshipStatuses is the dropdown order of the status enum.
var InternshipStatuses = []InternshipStatus{
	StatusDraft,
	StatusPending,
	StatusApproved,
	StatusInProgress,
	StatusCompleted,
	StatusRejected,
}

// Valid reports whether s belongs to the enum.
func (s InternshipStatus) Valid() bool {
	for _, status := range InternshipStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// Label renders the status for humans, e.g. IN_PROGRESS -> In progress.
func (s InternshipStatus) Label() string {
	if s == "" {
		return ""
	}
	lower := strings.ToLower(strings.ReplaceAll(string(s), "_", " "))
	return strings.ToUpper(lower[:1]) + lower[1:]
}

// Internship is a placement registered by a student.
type Internship struct {
	ID             int64            `json:"id"`
	Subject        string           `json:"subject"`
	Company        string           `json:"company"`
	City           string           `json:"city"`
	Description    string           `json:"description"`
	StartDate      string           `json:"startDate"`
	EndDate        string           `json:"endDate"`
	Status         InternshipStatus `json:"status"`
	Student        *Student         `json:"student,omitempty"`
	Teacher        *Teacher         `json:"teacher,omitempty"`
	Level          *Level           `json:"level,omitempty"`
	Sector         *Sector          `json:"sector,omitempty"`
	TeacherComment string           `json:"teacherComment,omitempty"`
	CreatedAt      *Timestamp       `json:"createdAt,omitempty"`
	UpdatedAt      *Timestamp       `json:"updatedAt,omitempty"`
}

// StudentID returns the owning student's id, 0 when unknown.
func (i Internship) StudentID() int64 {
	if i.Student == nil {
		return 0
	}
	return i.Student.ID
}

// SectorID returns the internship sector id, 0 when unknown.
func (i Internship) SectorID() int64 {
	if i.Sector == nil {
		return 0
	}
	return i.Sector.ID
}

// StudentName is the owner's display name.
func (i Internship) StudentName() string {
	if i.Student == nil {
		return ""
	}
	return i.Student.User.FullName()
}

// TeacherName is the supervisor's display name.
func (i Internship) TeacherName() string {
	if i.Teacher == nil {
		return ""
	}
	return i.Teacher.User.FullName()
}

// Request converts a fetched internship back into the payload that would
// reproduce it unchanged.
func (i Internship) Request() InternshipRequest {
	req := InternshipRequest{
		Subject:        i.Subject,
		Company:        i.Company,
		City:           i.City,
		Description:    i.Description,
		StartDate:      i.StartDate,
		EndDate:        i.EndDate,
		Status:         i.Status,
		StudentID:      i.StudentID(),
		TeacherComment: i.TeacherComment,
	}
	if i.Teacher != nil {
		id := i.Teacher.ID
		req.TeacherID = &id
	}
	if i.Level != nil {
		id := i.Level.ID
		req.LevelID = &id
	}
	if i.Sector != nil {
		id := i.Sector.ID
		req.SectorID = &id
	}
	return req
}

// InternshipRequest is the create/full-update payload.
type InternshipRequest struct {
	Subject        string           `json:"subject" validate:"required,max=200"`
	Company        string           `json:"company" validate:"required,max=200"`
	City           string           `json:"city" validate:"max=100"`
	Description    string           `json:"description"`
	StartDate      string           `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate        string           `json:"endDate" validate:"required,datetime=2006-01-02"`
	Status         InternshipStatus `json:"status,omitempty" validate:"omitempty,oneof=DRAFT PENDING APPROVED REJECTED IN_PROGRESS COMPLETED"`
	StudentID      int64            `json:"studentId" validate:"required"`
	TeacherID      *int64           `json:"teacherId,omitempty"`
	LevelID        *int64           `json:"levelId,omitempty"`
	SectorID       *int64           `json:"sectorId,omitempty"`
	TeacherComment string           `json:"teacherComment,omitempty"`
}

// InternshipStatusRequest is the teacher status-only update.
type InternshipStatusRequest struct {
	Status         InternshipStatus `json:"status" validate:"required,oneof=DRAFT PENDING APPROVED REJECTED IN_PROGRESS COMPLETED"`
	TeacherComment string           `json:"teacherComment,omitempty" validate:"max=1000"`
}

// InternshipSearch holds optional filters; nil fields are never sent.
type InternshipSearch struct {
	Status      *InternshipStatus
	StudentID   *int64
	TeacherID   *int64
	LevelID     *int64
	SectorID    *int64
	CompanyName *string
}

// Empty reports whether no filter is set.
func (s InternshipSearch) Empty() bool {
	return s.Status == nil && s.StudentID == nil && s.TeacherID == nil &&
		s.LevelID == nil && s.SectorID == nil && s.CompanyName == nil
}
