package models

// Student is the profile attached to a STUDENT user.
type Student struct {
	ID           int64      `json:"id"`
	User         User       `json:"user"`
	Level        *Level     `json:"level,omitempty"`
	Sector       *Sector    `json:"sector,omitempty"`
	AcademicYear string     `json:"academicYear"`
	CreatedAt    *Timestamp `json:"createdAt,omitempty"`
	UpdatedAt    *Timestamp `json:"updatedAt,omitempty"`
}

// LevelID returns the student's level id or nil.
func (s Student) LevelID() *int64 {
	if s.Level == nil {
		return nil
	}
	id := s.Level.ID
	return &id
}

// SectorID returns the student's sector id or nil.
func (s Student) SectorID() *int64 {
	if s.Sector == nil {
		return nil
	}
	id := s.Sector.ID
	return &id
}

// StudentRequest is the admin create/update payload for a student.
type StudentRequest struct {
	FirstName    string `json:"firstName" validate:"required,max=100"`
	LastName     string `json:"lastName" validate:"required,max=100"`
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password,omitempty" validate:"omitempty,min=6"`
	LevelID      *int64 `json:"levelId" validate:"required"`
	SectorID     *int64 `json:"sectorId,omitempty"`
	AcademicYear string `json:"academicYear" validate:"required"`
}
