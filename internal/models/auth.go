package models

// LoginRequest holds the credentials posted by the login form.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is returned by the backend on successful authentication.
type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// RegisterRequest is the self-registration payload. SectorID is omitted from
// the JSON for levels whose sector is assigned by the backend.
type RegisterRequest struct {
	FirstName       string   `json:"firstName" validate:"required,max=100"`
	LastName        string   `json:"lastName" validate:"required,max=100"`
	Email           string   `json:"email" validate:"required,email"`
	Password        string   `json:"password" validate:"required,min=6"`
	ConfirmPassword string   `json:"-" validate:"required,eqfield=Password"`
	Role            UserRole `json:"role"`
	LevelID         *int64   `json:"levelId,omitempty"`
	SectorID        *int64   `json:"sectorId,omitempty"`
	AcademicYear    string   `json:"academicYear,omitempty"`
}
