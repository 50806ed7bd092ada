package models

// Teacher is the profile attached to a TEACHER user.
type Teacher struct {
	ID        int64      `json:"id"`
	User      User       `json:"user"`
	Sectors   []Sector   `json:"sectors"`
	CreatedAt *Timestamp `json:"createdAt,omitempty"`
	UpdatedAt *Timestamp `json:"updatedAt,omitempty"`
}

// SectorIDs returns the ids of the supervised sectors.
func (t Teacher) SectorIDs() []int64 {
	ids := make([]int64, 0, len(t.Sectors))
	for _, sector := range t.Sectors {
		ids = append(ids, sector.ID)
	}
	return ids
}

// TeacherRequest is the admin create/update payload for a teacher.
type TeacherRequest struct {
	FirstName string  `json:"firstName" validate:"required,max=100"`
	LastName  string  `json:"lastName" validate:"required,max=100"`
	Email     string  `json:"email" validate:"required,email"`
	Password  string  `json:"password,omitempty" validate:"omitempty,min=6"`
	SectorIDs []int64 `json:"sectorIds" validate:"required,min=1"`
}
