package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/internship-portal/internal/models"
	appErrors "github.com/noah-isme/internship-portal/pkg/errors"
)

func newStudentFixture() (*StudentService, *fakeBackend) {
	f := newFakeBackend()
	seed(f)
	return NewStudentService(fakeStudents{f}, fakeInternships{f}, fakeLevels{f}, NewInflightGuard(nil), nil, nil), f
}

func studentRequest(levelID int64, sectorID *int64) models.StudentRequest {
	return models.StudentRequest{
		FirstName:    "Chloe",
		LastName:     "Nguyen",
		Email:        "chloe@school.test",
		Password:     "secret1",
		LevelID:      &levelID,
		SectorID:     sectorID,
		AcademicYear: "2025-2026",
	}
}

func TestStudentListAccess(t *testing.T) {
	svc, f := newStudentFixture()

	list, err := svc.List(context.Background(), adminIdentity(), nil)
	require.NoError(t, err)
	assert.Len(t, list.Students, 2)
	assert.True(t, list.CanCreate)

	list, err = svc.List(context.Background(), teacherIdentity(), ptr(int64(1)))
	require.NoError(t, err)
	require.Len(t, list.Students, 1)
	assert.Equal(t, int64(9), list.Students[0].ID)
	assert.False(t, list.CanCreate)
	assert.False(t, list.CanDelete)

	_, err = svc.List(context.Background(), studentIdentity(7), nil)
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
	assert.Equal(t, 1, f.called("students.GetAll"))
}

func TestStudentDetailWithInternships(t *testing.T) {
	svc, f := newStudentFixture()

	detail, err := svc.Get(context.Background(), teacherIdentity(), 7)
	require.NoError(t, err)
	assert.Len(t, detail.Internships, 2)
	assert.False(t, detail.CanEdit)

	f.failures["internships.GetByStudent"] = serverError()
	detail, err = svc.Get(context.Background(), adminIdentity(), 7)
	require.NoError(t, err)
	assert.Error(t, detail.InternshipsErr)
	assert.True(t, detail.CanEdit)
}

func TestStudentCreateAppliesSectorRule(t *testing.T) {
	svc, f := newStudentFixture()

	_, err := svc.Create(context.Background(), adminIdentity(), studentRequest(2, ptr(int64(3))))
	require.NoError(t, err)
	require.Len(t, f.studentWrites, 1)
	assert.Nil(t, f.studentWrites[0].SectorID, "B2 sectors are assigned by the backend")

	_, err = svc.Create(context.Background(), adminIdentity(), studentRequest(5, nil))
	require.Error(t, err)
	assert.Equal(t, "sector is required", appErrors.FromError(err).Fields["sectorId"])

	_, err = svc.Create(context.Background(), adminIdentity(), studentRequest(5, ptr(int64(3))))
	require.NoError(t, err)
	assert.Equal(t, ptr(int64(3)), f.studentWrites[1].SectorID)
}

func TestStudentCreateRequiresPasswordButUpdateDoesNot(t *testing.T) {
	svc, f := newStudentFixture()
	req := studentRequest(1, nil)
	req.Password = ""

	_, err := svc.Create(context.Background(), adminIdentity(), req)
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.Update(context.Background(), adminIdentity(), 9, req)
	require.NoError(t, err)
	assert.Equal(t, 1, f.called("students.Update"))
}

func TestStudentWritesAreAdminOnly(t *testing.T) {
	svc, f := newStudentFixture()

	_, err := svc.Create(context.Background(), teacherIdentity(), studentRequest(1, nil))
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
	_, err = svc.Update(context.Background(), studentIdentity(7), 7, studentRequest(1, nil))
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
	assert.ErrorIs(t, svc.Delete(context.Background(), teacherIdentity(), 7), appErrors.ErrForbidden)
	assert.Empty(t, f.calls)

	require.NoError(t, svc.Delete(context.Background(), adminIdentity(), 7))
	assert.Equal(t, 1, f.called("students.Delete"))
}
