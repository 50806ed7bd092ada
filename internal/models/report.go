package models

// Grade bounds.
const (
	MinGrade = 0
	MaxGrade = 20
)

// Report is an uploaded internship report.
type Report struct {
	ID         int64       `json:"id"`
	Internship *Internship `json:"internship,omitempty"`
	FilePath   string      `json:"filePath"`
	UploadedAt *Timestamp  `json:"uploadedAt,omitempty"`
	Grade      *float64    `json:"grade,omitempty"`
	Feedback   string      `json:"feedback,omitempty"`
}

// Graded reports whether a grade was recorded.
func (r Report) Graded() bool {
	return r.Grade != nil
}

// OwnerStudentID returns the student owning the report's internship, 0 when unknown.
func (r Report) OwnerStudentID() int64 {
	if r.Internship == nil {
		return 0
	}
	return r.Internship.StudentID()
}

// ReportRequest submits a report for an internship.
type ReportRequest struct {
	InternshipID int64  `json:"internshipId" validate:"required"`
	FilePath     string `json:"filePath" validate:"required,max=500"`
}

// GradeRequest is the teacher grading payload.
type GradeRequest struct {
	Grade    float64 `json:"grade" validate:"gte=0,lte=20"`
	Feedback string  `json:"feedback" validate:"max=2000"`
}

// ReportFile is a downloaded report artifact.
type ReportFile struct {
	FileName    string
	ContentType string
	Data        []byte
}
