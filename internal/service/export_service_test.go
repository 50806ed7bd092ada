package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/internship-portal/internal/models"
	appErrors "github.com/noah-isme/internship-portal/pkg/errors"
)

func newExportFixture() (*ExportService, *fakeBackend) {
	f := newFakeBackend()
	seed(f)
	internships := NewInternshipService(fakeInternships{f}, fakeStudents{f}, fakeReports{f}, nil, nil, nil)
	svc := NewExportService(internships, ExportConfig{Title: "Placements"}, nil, nil, nil)
	svc.now = func() time.Time { return time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC) }
	return svc, f
}

func TestExportCSV(t *testing.T) {
	svc, _ := newExportFixture()

	result, err := svc.Internships(context.Background(), adminIdentity(), "", models.InternshipSearch{})
	require.NoError(t, err)
	assert.Equal(t, "internships-20250301-093000.csv", result.FileName)
	assert.Contains(t, result.ContentType, "text/csv")

	records, err := csv.NewReader(bytes.NewReader(result.Data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 5)
	assert.Equal(t, "Subject", records[0][1])
	assert.Equal(t, []string{"1", "ETL", "Acme", "", "Ana Diaz", "Lea Martin", "Software", "Pending", "2025-02-01", "2025-06-30"}, records[1])
}

func TestExportPDFWithFilters(t *testing.T) {
	svc, f := newExportFixture()
	status := models.StatusApproved

	result, err := svc.Internships(context.Background(), adminIdentity(), "PDF", models.InternshipSearch{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.True(t, bytes.HasPrefix(result.Data, []byte("%PDF")))
	assert.Equal(t, 1, f.called("internships.Search"))
}

func TestExportRestrictions(t *testing.T) {
	svc, f := newExportFixture()

	_, err := svc.Internships(context.Background(), teacherIdentity(), "csv", models.InternshipSearch{})
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
	_, err = svc.Internships(context.Background(), adminIdentity(), "xlsx", models.InternshipSearch{})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Empty(t, f.calls)
}
