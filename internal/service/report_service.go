package service

import (
	"context"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sourcegraph/conc"
	"go.uber.org/zap"

	"github.com/noah-isme/internship-portal/internal/models"
	"github.com/noah-isme/internship-portal/internal/policy"
	"github.com/noah-isme/internship-portal/internal/session"
	appErrors "github.com/noah-isme/internship-portal/pkg/errors"
	"github.com/noah-isme/internship-portal/pkg/validation"
)

type reportGateway interface {
	GetAll(ctx context.Context) ([]models.Report, error)
	GetByID(ctx context.Context, id int64) (*models.Report, error)
	GetByInternship(ctx context.Context, internshipID int64) ([]models.Report, error)
	Create(ctx context.Context, req models.ReportRequest) (*models.Report, error)
	Grade(ctx context.Context, id int64, req models.GradeRequest) (*models.Report, error)
	Download(ctx context.Context, id int64) (*models.ReportFile, error)
}

type internshipReader interface {
	GetByID(ctx context.Context, id int64) (*models.Internship, error)
	GetByStudent(ctx context.Context, studentID int64) ([]models.Internship, error)
}

// ReportRow pairs a report with its allowed actions.
type ReportRow struct {
	Report      models.Report
	CanGrade    bool
	CanDownload bool
}

// ReportList is the report list page model. Err is set when only part of the
// reports could be loaded.
type ReportList struct {
	Rows      []ReportRow
	CanSubmit bool
	Err       error
}

// ReportService handles report browsing, grading, downloads and submission.
type ReportService struct {
	reports     reportGateway
	internships internshipReader
	guard       *InflightGuard
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewReportService constructs a ReportService.
func NewReportService(reports reportGateway, internships internshipReader, guard *InflightGuard, validate *validator.Validate, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validation.New()
	}
	return &ReportService{reports: reports, internships: internships, guard: guard, validator: validate, logger: logger}
}

// List returns every report for admins, the reports within their supervision
// or sectors for teachers and the caller's own reports for students.
func (s *ReportService) List(ctx context.Context, id *session.Identity) (*ReportList, error) {
	subject := id.Subject()
	ctx = id.Context(ctx)
	out := &ReportList{CanSubmit: subject.Role == models.RoleStudent}

	var reports []models.Report
	switch subject.Role {
	case models.RoleAdmin, models.RoleTeacher:
		all, err := s.reports.GetAll(ctx)
		if err != nil {
			return nil, err
		}
		reports = all
	case models.RoleStudent:
		if subject.StudentID == 0 {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "your student profile could not be loaded")
		}
		internships, err := s.internships.GetByStudent(ctx, subject.StudentID)
		if err != nil {
			return nil, err
		}
		reports, out.Err = reportsFor(ctx, s.reports, internships)
	default:
		return nil, appErrors.Clone(appErrors.ErrForbidden, "")
	}

	out.Rows = make([]ReportRow, 0, len(reports))
	for _, report := range reports {
		resource := policy.ForReport(report)
		if !policy.Can(subject, policy.ReportView, resource) {
			continue
		}
		out.Rows = append(out.Rows, ReportRow{
			Report:      report,
			CanGrade:    policy.Can(subject, policy.ReportGrade, resource),
			CanDownload: policy.Can(subject, policy.ReportDownload, resource),
		})
	}
	return out, nil
}

func (s *ReportService) Get(ctx context.Context, id *session.Identity, reportID int64) (*ReportRow, error) {
	subject := id.Subject()
	report, err := s.reports.GetByID(id.Context(ctx), reportID)
	if err != nil {
		return nil, err
	}
	resource := policy.ForReport(*report)
	if !policy.Can(subject, policy.ReportView, resource) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "you can only view your own reports")
	}
	return &ReportRow{
		Report:      *report,
		CanGrade:    policy.Can(subject, policy.ReportGrade, resource),
		CanDownload: policy.Can(subject, policy.ReportDownload, resource),
	}, nil
}

// Grade records a grade on the 0-20 scale. Out-of-range values never reach the backend.
func (s *ReportService) Grade(ctx context.Context, id *session.Identity, reportID int64, req models.GradeRequest) (*models.Report, error) {
	subject := id.Subject()
	if subject.Role != models.RoleTeacher {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only teachers can grade reports")
	}
	if !policy.ValidGrade(req.Grade) {
		return nil, appErrors.Validation("grade must be between 0 and 20", map[string]string{"grade": "grade must be between 0 and 20"})
	}
	req.Feedback = strings.TrimSpace(req.Feedback)
	if err := validation.Struct(s.validator, req); err != nil {
		return nil, err
	}
	ctx = id.Context(ctx)

	report, err := s.reports.GetByID(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if !policy.Can(subject, policy.ReportGrade, policy.ForReport(*report)) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "you can only grade reports of internships you supervise or in your sectors")
	}
	return guarded(s.guard, id.SessionID, "report:grade", reportID, func() (*models.Report, error) {
		return s.reports.Grade(ctx, reportID, req)
	})
}

// Download fetches a report file. Students are checked against ownership first.
func (s *ReportService) Download(ctx context.Context, id *session.Identity, reportID int64) (*models.ReportFile, error) {
	subject := id.Subject()
	ctx = id.Context(ctx)

	resource := policy.Resource{}
	if subject.Role == models.RoleStudent {
		report, err := s.reports.GetByID(ctx, reportID)
		if err != nil {
			return nil, err
		}
		resource = policy.ForReport(*report)
	}
	if !policy.Can(subject, policy.ReportDownload, resource) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "you can only download your own reports")
	}
	return s.reports.Download(ctx, reportID)
}

// Submit attaches a report to one of the caller's internships.
func (s *ReportService) Submit(ctx context.Context, id *session.Identity, req models.ReportRequest) (*models.Report, error) {
	subject := id.Subject()
	if subject.Role != models.RoleStudent {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only students can submit reports")
	}
	req.FilePath = strings.TrimSpace(req.FilePath)
	if err := validation.Struct(s.validator, req); err != nil {
		return nil, err
	}
	ctx = id.Context(ctx)

	internship, err := s.internships.GetByID(ctx, req.InternshipID)
	if err != nil {
		return nil, err
	}
	if !policy.Can(subject, policy.ReportSubmit, policy.ForInternship(*internship)) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "you can only submit reports for your own internships")
	}
	return guarded(s.guard, id.SessionID, "report:submit", req.InternshipID, func() (*models.Report, error) {
		return s.reports.Create(ctx, req)
	})
}

// Submittable lists the caller's internships a report can be attached to.
func (s *ReportService) Submittable(ctx context.Context, id *session.Identity) ([]models.Internship, error) {
	subject := id.Subject()
	if subject.Role != models.RoleStudent || subject.StudentID == 0 {
		return nil, nil
	}
	return s.internships.GetByStudent(id.Context(ctx), subject.StudentID)
}

// reportsFor loads the reports of every internship concurrently. Failed
// lookups are skipped and the first error is returned next to what loaded.
func reportsFor(ctx context.Context, reports reportsByInternship, internships []models.Internship) ([]models.Report, error) {
	results := make([][]models.Report, len(internships))
	errs := make([]error, len(internships))

	var wg conc.WaitGroup
	for i := range internships {
		i := i
		wg.Go(func() {
			results[i], errs[i] = reports.GetByInternship(ctx, internships[i].ID)
		})
	}
	wg.Wait()

	var (
		out      []models.Report
		firstErr error
	)
	for i := range internships {
		if errs[i] != nil {
			if firstErr == nil {
				firstErr = errs[i]
			}
			continue
		}
		for _, report := range results[i] {
			if report.Internship == nil {
				internship := internships[i]
				report.Internship = &internship
			}
			out = append(out, report)
		}
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].ID > out[b].ID })
	return out, firstErr
}
