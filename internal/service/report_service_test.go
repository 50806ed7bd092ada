package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/internship-portal/internal/models"
	appErrors "github.com/noah-isme/internship-portal/pkg/errors"
)

func newReportFixture() (*ReportService, *fakeBackend) {
	f := newFakeBackend()
	seed(f)
	return NewReportService(fakeReports{f}, fakeInternships{f}, NewInflightGuard(nil), nil, nil), f
}

func TestGradeOutOfRangeNeverReachesBackend(t *testing.T) {
	svc, f := newReportFixture()

	_, err := svc.Grade(context.Background(), teacherIdentity(), 11, models.GradeRequest{Grade: 21, Feedback: "too generous"})
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Equal(t, "grade must be between 0 and 20", appErrors.UserMessage(err))

	_, err = svc.Grade(context.Background(), teacherIdentity(), 11, models.GradeRequest{Grade: -0.5})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Empty(t, f.calls)
}

func TestGradeTwentyIsSent(t *testing.T) {
	svc, f := newReportFixture()

	report, err := svc.Grade(context.Background(), teacherIdentity(), 11, models.GradeRequest{Grade: 20, Feedback: " excellent "})
	require.NoError(t, err)
	require.NotNil(t, report.Grade)
	assert.Equal(t, 20.0, *report.Grade)
	require.Len(t, f.grades, 1)
	assert.Equal(t, models.GradeRequest{Grade: 20, Feedback: "excellent"}, f.grades[0])
}

func TestOnlyTeachersGrade(t *testing.T) {
	svc, f := newReportFixture()
	_, err := svc.Grade(context.Background(), adminIdentity(), 11, models.GradeRequest{Grade: 10})
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
	_, err = svc.Grade(context.Background(), studentIdentity(7), 11, models.GradeRequest{Grade: 10})
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
	assert.Empty(t, f.calls)
}

func TestStudentListsOnlyOwnReports(t *testing.T) {
	svc, f := newReportFixture()

	list, err := svc.List(context.Background(), studentIdentity(7))
	require.NoError(t, err)
	require.Len(t, list.Rows, 2)
	assert.Equal(t, int64(31), list.Rows[0].Report.ID)
	assert.Equal(t, int64(11), list.Rows[1].Report.ID)
	assert.True(t, list.CanSubmit)
	assert.False(t, list.Rows[0].CanGrade)
	assert.True(t, list.Rows[0].CanDownload)
	assert.Zero(t, f.called("reports.GetAll"))

	other, err := svc.List(context.Background(), studentIdentity(9))
	require.NoError(t, err)
	assert.Empty(t, other.Rows)
}

func TestTeacherListCanGrade(t *testing.T) {
	svc, _ := newReportFixture()

	list, err := svc.List(context.Background(), teacherIdentity())
	require.NoError(t, err)
	require.Len(t, list.Rows, 1, "report 31 belongs to sector 3 and teacher 5")
	assert.Equal(t, int64(11), list.Rows[0].Report.ID)
	assert.True(t, list.Rows[0].CanGrade)
	assert.True(t, list.Rows[0].CanDownload)
	assert.False(t, list.CanSubmit)
}

func TestTeacherReportsOutsideScopeAreForbidden(t *testing.T) {
	svc, f := newReportFixture()

	_, err := svc.Get(context.Background(), teacherIdentity(), 31)
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	_, err = svc.Grade(context.Background(), teacherIdentity(), 31, models.GradeRequest{Grade: 12})
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
	assert.Zero(t, f.called("reports.Grade"))
	assert.Empty(t, f.grades)

	row, err := svc.Get(context.Background(), teacherIdentity(), 11)
	require.NoError(t, err)
	assert.True(t, row.CanGrade)
}

func TestStudentDownloadChecksOwnership(t *testing.T) {
	svc, f := newReportFixture()

	file, err := svc.Download(context.Background(), studentIdentity(7), 11)
	require.NoError(t, err)
	assert.Equal(t, "report.pdf", file.FileName)

	_, err = svc.Download(context.Background(), studentIdentity(9), 11)
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
	assert.Equal(t, 1, f.called("reports.Download"))

	_, err = svc.Download(context.Background(), adminIdentity(), 31)
	require.NoError(t, err)
	assert.Equal(t, 2, f.called("reports.GetByID"), "staff downloads skip the ownership read")
}

func TestSubmitReportForOwnInternship(t *testing.T) {
	svc, f := newReportFixture()

	report, err := svc.Submit(context.Background(), studentIdentity(7), models.ReportRequest{InternshipID: 3, FilePath: " /uploads/final.pdf "})
	require.NoError(t, err)
	assert.Equal(t, "/uploads/final.pdf", report.FilePath)

	_, err = svc.Submit(context.Background(), studentIdentity(7), models.ReportRequest{InternshipID: 2, FilePath: "/uploads/x.pdf"})
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	_, err = svc.Submit(context.Background(), studentIdentity(7), models.ReportRequest{InternshipID: 3})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.Submit(context.Background(), teacherIdentity(), models.ReportRequest{InternshipID: 3, FilePath: "/x"})
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
	assert.Len(t, f.reportRequests, 1)
}

func TestReportsForCollectsPartialResults(t *testing.T) {
	f := newFakeBackend()
	seed(f)
	internships := []models.Internship{f.internships[1], f.internships[3]}

	reports, err := reportsFor(context.Background(), fakeReports{f}, internships)
	require.NoError(t, err)
	assert.Len(t, reports, 2)

	f.failures["reports.GetByInternship"] = serverError()
	reports, err = reportsFor(context.Background(), fakeReports{f}, internships)
	assert.Error(t, err)
	assert.Empty(t, reports)
}
