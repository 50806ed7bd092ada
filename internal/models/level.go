package models

// Level names of the canonical schema.
const (
	LevelB1 = "B1"
	LevelB2 = "B2"
	LevelB3 = "B3"
	LevelM1 = "M1"
	LevelM2 = "M2"
)

// Level is an academic year of study.
type Level struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	CreatedAt *Timestamp `json:"createdAt,omitempty"`
	UpdatedAt *Timestamp `json:"updatedAt,omitempty"`
}

// Sector is a field of study; global sectors are bound to a single level.
type Sector struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Level       *Level     `json:"level,omitempty"`
	CreatedAt   *Timestamp `json:"createdAt,omitempty"`
	UpdatedAt   *Timestamp `json:"updatedAt,omitempty"`
}

// FindLevel returns the level with the given id from a list.
func FindLevel(levels []Level, id int64) (Level, bool) {
	for _, level := range levels {
		if level.ID == id {
			return level, true
		}
	}
	return Level{}, false
}
