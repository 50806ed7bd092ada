package service

import (
	"context"
	"sort"

	"github.com/sourcegraph/conc"
	"go.uber.org/zap"

	"github.com/noah-isme/internship-portal/internal/models"
	"github.com/noah-isme/internship-portal/internal/session"
	appErrors "github.com/noah-isme/internship-portal/pkg/errors"
)

type internshipLister interface {
	GetAll(ctx context.Context) ([]models.Internship, error)
	GetByStudent(ctx context.Context, studentID int64) ([]models.Internship, error)
	GetBySupervisor(ctx context.Context, supervisorID int64) ([]models.Internship, error)
}

type studentLister interface {
	GetAll(ctx context.Context) ([]models.Student, error)
	GetByUserID(ctx context.Context, userID int64) (*models.Student, error)
}

type teacherLister interface {
	GetAll(ctx context.Context) ([]models.Teacher, error)
	GetByUserID(ctx context.Context, userID int64) (*models.Teacher, error)
}

type reportLister interface {
	GetAll(ctx context.Context) ([]models.Report, error)
	GetByInternship(ctx context.Context, internshipID int64) ([]models.Report, error)
}

type sectionObserver interface {
	RecordSectionFailure(dashboard, section string)
}

// recentLimit bounds the "recent internships" panel.
const recentLimit = 5

// Section is one independently loaded part of a dashboard.
type Section[T any] struct {
	Data T
	Err  error
}

// OK reports whether the section loaded.
func (s Section[T]) OK() bool { return s.Err == nil }

// Message is the inline error text of a failed section.
func (s Section[T]) Message() string { return appErrors.UserMessage(s.Err) }

// AdminDashboard holds the admin counters and panels.
type AdminDashboard struct {
	Internships Section[int]
	Students    Section[int]
	Teachers    Section[int]
	Reports     Section[int]
	Recent      Section[[]models.Internship]
	Pending     Section[[]models.Internship]
}

// TeacherDashboard holds the supervising teacher overview.
type TeacherDashboard struct {
	Profile        Section[*models.Teacher]
	Supervised     Section[[]models.Internship]
	PendingReviews int
	Ungraded       Section[[]models.Report]
}

// StudentDashboard holds the student overview.
type StudentDashboard struct {
	Profile     Section[*models.Student]
	Internships Section[[]models.Internship]
	Active      *models.Internship
	Reports     Section[[]models.Report]
}

// DashboardService fans out the dashboard reads. Every fetch settles on its
// own; one failing section never hides the others.
type DashboardService struct {
	internships internshipLister
	students    studentLister
	teachers    teacherLister
	reports     reportLister
	metrics     sectionObserver
	logger      *zap.Logger
}

// DashboardServiceParams groups constructor dependencies.
type DashboardServiceParams struct {
	Internships internshipLister
	Students    studentLister
	Teachers    teacherLister
	Reports     reportLister
	Metrics     sectionObserver
	Logger      *zap.Logger
}

// NewDashboardService constructs a DashboardService.
func NewDashboardService(params DashboardServiceParams) *DashboardService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		internships: params.Internships,
		students:    params.Students,
		teachers:    params.Teachers,
		reports:     params.Reports,
		metrics:     params.Metrics,
		logger:      logger,
	}
}

// Admin loads the four collections concurrently and derives the panels from
// the internship list.
func (s *DashboardService) Admin(ctx context.Context, id *session.Identity) *AdminDashboard {
	ctx = id.Context(ctx)

	var (
		internships []models.Internship
		internErr   error
		out         AdminDashboard
	)

	var wg conc.WaitGroup
	wg.Go(func() {
		internships, internErr = s.internships.GetAll(ctx)
	})
	wg.Go(func() {
		students, err := s.students.GetAll(ctx)
		out.Students = Section[int]{Data: len(students), Err: err}
	})
	wg.Go(func() {
		teachers, err := s.teachers.GetAll(ctx)
		out.Teachers = Section[int]{Data: len(teachers), Err: err}
	})
	wg.Go(func() {
		reports, err := s.reports.GetAll(ctx)
		out.Reports = Section[int]{Data: len(reports), Err: err}
	})
	wg.Wait()

	out.Internships = Section[int]{Data: len(internships), Err: internErr}
	out.Recent = Section[[]models.Internship]{Data: mostRecent(internships, recentLimit), Err: internErr}
	out.Pending = Section[[]models.Internship]{Data: withStatus(internships, models.StatusPending), Err: internErr}

	s.recordFailures("admin", map[string]error{
		"internships": internErr,
		"students":    out.Students.Err,
		"teachers":    out.Teachers.Err,
		"reports":     out.Reports.Err,
	})
	return &out
}

// Teacher resolves the profile, then the supervised internships and their reports.
func (s *DashboardService) Teacher(ctx context.Context, id *session.Identity) *TeacherDashboard {
	ctx = id.Context(ctx)
	out := &TeacherDashboard{}

	teacher, err := s.teachers.GetByUserID(ctx, id.User.ID)
	out.Profile = Section[*models.Teacher]{Data: teacher, Err: err}
	if err != nil {
		out.Supervised.Err = err
		out.Ungraded.Err = err
		s.recordFailures("teacher", map[string]error{"profile": err})
		return out
	}

	supervised, err := s.internships.GetBySupervisor(ctx, teacher.ID)
	out.Supervised = Section[[]models.Internship]{Data: supervised, Err: err}
	if err != nil {
		out.Ungraded.Err = err
		s.recordFailures("teacher", map[string]error{"supervised": err})
		return out
	}
	out.PendingReviews = len(withStatus(supervised, models.StatusPending))

	reports, err := reportsFor(ctx, s.reports, supervised)
	ungraded := make([]models.Report, 0, len(reports))
	for _, report := range reports {
		if !report.Graded() {
			ungraded = append(ungraded, report)
		}
	}
	out.Ungraded = Section[[]models.Report]{Data: ungraded, Err: err}
	s.recordFailures("teacher", map[string]error{"reports": err})
	return out
}

// Student resolves the profile, then internships and their reports.
func (s *DashboardService) Student(ctx context.Context, id *session.Identity) *StudentDashboard {
	ctx = id.Context(ctx)
	out := &StudentDashboard{}

	student, err := s.students.GetByUserID(ctx, id.User.ID)
	out.Profile = Section[*models.Student]{Data: student, Err: err}
	if err != nil {
		out.Internships.Err = err
		out.Reports.Err = err
		s.recordFailures("student", map[string]error{"profile": err})
		return out
	}

	internships, err := s.internships.GetByStudent(ctx, student.ID)
	out.Internships = Section[[]models.Internship]{Data: internships, Err: err}
	if err != nil {
		out.Reports.Err = err
		s.recordFailures("student", map[string]error{"internships": err})
		return out
	}
	for i := range internships {
		if internships[i].Status == models.StatusInProgress {
			active := internships[i]
			out.Active = &active
			break
		}
	}

	reports, err := reportsFor(ctx, s.reports, internships)
	out.Reports = Section[[]models.Report]{Data: reports, Err: err}
	s.recordFailures("student", map[string]error{"reports": err})
	return out
}

func (s *DashboardService) recordFailures(dashboard string, sections map[string]error) {
	for section, err := range sections {
		if err == nil {
			continue
		}
		s.logger.Warn("dashboard section failed",
			zap.String("dashboard", dashboard),
			zap.String("section", section),
			zap.Error(err))
		if s.metrics != nil {
			s.metrics.RecordSectionFailure(dashboard, section)
		}
	}
}

// mostRecent returns up to limit internships, newest first by creation time
// and then by id.
func mostRecent(items []models.Internship, limit int) []models.Internship {
	sorted := append([]models.Internship(nil), items...)
	sort.SliceStable(sorted, func(a, b int) bool {
		ta, tb := sorted[a].CreatedAt, sorted[b].CreatedAt
		if ta != nil && tb != nil && !ta.Time.Equal(tb.Time) {
			return ta.Time.After(tb.Time)
		}
		return sorted[a].ID > sorted[b].ID
	})
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}

func withStatus(items []models.Internship, status models.InternshipStatus) []models.Internship {
	return filterInternships(items, func(i models.Internship) bool { return i.Status == status })
}
