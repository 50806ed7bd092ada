package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimestampAcceptsBackendLayouts(t *testing.T) {
	var payload struct {
		Zoned    *Timestamp `json:"zoned"`
		Local    *Timestamp `json:"local"`
		Fraction *Timestamp `json:"fraction"`
		Day      *Timestamp `json:"day"`
		Missing  *Timestamp `json:"missing"`
	}
	raw := `{"zoned":"2025-03-01T08:30:00Z","local":"2025-03-01T08:30:00","fraction":"2025-03-01T08:30:00.123456","day":"2025-03-01","missing":null}`
	require.NoError(t, json.Unmarshal([]byte(raw), &payload))

	assert.Equal(t, "2025-03-01", payload.Zoned.Date())
	assert.Equal(t, "2025-03-01", payload.Local.Date())
	assert.Equal(t, "2025-03-01", payload.Fraction.Date())
	assert.Equal(t, "2025-03-01", payload.Day.Date())
	assert.Equal(t, "", payload.Missing.Date())
}

func TestTimestampRejectsGarbage(t *testing.T) {
	var ts Timestamp
	require.Error(t, json.Unmarshal([]byte(`"yesterday"`), &ts))
}

func TestInternshipStatusLabel(t *testing.T) {
	assert.Equal(t, "In progress", StatusInProgress.Label())
	assert.Equal(t, "Draft", StatusDraft.Label())
	assert.True(t, StatusRejected.Valid())
	assert.False(t, InternshipStatus("ARCHIVED").Valid())
}

func TestInternshipRequestReproducesRecord(t *testing.T) {
	teacherID, levelID, sectorID := int64(3), int64(4), int64(5)
	internship := Internship{
		ID:        10,
		Subject:   "Data pipeline",
		Company:   "Acme",
		City:      "Lyon",
		StartDate: "2025-02-01",
		EndDate:   "2025-06-30",
		Status:    StatusPending,
		Student:   &Student{ID: 7},
		Teacher:   &Teacher{ID: teacherID},
		Level:     &Level{ID: levelID, Name: LevelB3},
		Sector:    &Sector{ID: sectorID},
	}

	req := internship.Request()
	assert.Equal(t, int64(7), req.StudentID)
	assert.Equal(t, &teacherID, req.TeacherID)
	assert.Equal(t, &levelID, req.LevelID)
	assert.Equal(t, &sectorID, req.SectorID)
	assert.Equal(t, StatusPending, req.Status)
}

func TestRegisterRequestOmitsSector(t *testing.T) {
	levelID := int64(1)
	body, err := json.Marshal(RegisterRequest{FirstName: "Ana", LevelID: &levelID, Role: RoleStudent, ConfirmPassword: "secret1"})
	require.NoError(t, err)
	assert.NotContains(t, string(body), "sectorId")
	assert.NotContains(t, string(body), "secret1")
	assert.Contains(t, string(body), `"levelId":1`)
}
