package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/internship-portal/internal/models"
	"github.com/noah-isme/internship-portal/internal/policy"
	"github.com/noah-isme/internship-portal/internal/session"
	appErrors "github.com/noah-isme/internship-portal/pkg/errors"
	"github.com/noah-isme/internship-portal/pkg/validation"
)

type internshipGateway interface {
	GetAll(ctx context.Context) ([]models.Internship, error)
	GetByID(ctx context.Context, id int64) (*models.Internship, error)
	Search(ctx context.Context, criteria models.InternshipSearch) ([]models.Internship, error)
	GetByStudent(ctx context.Context, studentID int64) ([]models.Internship, error)
	GetBySupervisor(ctx context.Context, supervisorID int64) ([]models.Internship, error)
	Create(ctx context.Context, req models.InternshipRequest) (*models.Internship, error)
	Update(ctx context.Context, id int64, req models.InternshipRequest) (*models.Internship, error)
	UpdateStatus(ctx context.Context, id int64, req models.InternshipStatusRequest) (*models.Internship, error)
	Delete(ctx context.Context, id int64) error
}

type studentLookup interface {
	GetByID(ctx context.Context, id int64) (*models.Student, error)
	GetByUserID(ctx context.Context, userID int64) (*models.Student, error)
}

type reportsByInternship interface {
	GetByInternship(ctx context.Context, internshipID int64) ([]models.Report, error)
}

// Internship list scopes for students.
const (
	ScopeMine = "mine"
	ScopeAll  = "all"
)

// InternshipListOptions selects what a list page shows.
type InternshipListOptions struct {
	Scope  string
	Search models.InternshipSearch
}

// InternshipActions are the buttons a view may render for one internship.
type InternshipActions struct {
	CanEdit         bool
	CanDelete       bool
	CanUpdateStatus bool
	CanSubmitReport bool
}

// InternshipRow pairs an internship with its allowed actions.
type InternshipRow struct {
	Internship models.Internship
	Actions    InternshipActions
}

// InternshipList is the list page model.
type InternshipList struct {
	Rows      []InternshipRow
	Scope     string
	CanCreate bool
	CanSearch bool
	CanExport bool
}

// InternshipDetail is the detail page model. Reports fail independently.
type InternshipDetail struct {
	Internship models.Internship
	Actions    InternshipActions
	Reports    []models.Report
	ReportsErr error
}

// InternshipService turns internship page actions into policy-checked backend calls.
type InternshipService struct {
	internships internshipGateway
	students    studentLookup
	reports     reportsByInternship
	guard       *InflightGuard
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewInternshipService constructs an InternshipService.
func NewInternshipService(internships internshipGateway, students studentLookup, reports reportsByInternship, guard *InflightGuard, validate *validator.Validate, logger *zap.Logger) *InternshipService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validation.New()
	}
	return &InternshipService{
		internships: internships,
		students:    students,
		reports:     reports,
		guard:       guard,
		validator:   validate,
		logger:      logger,
	}
}

// ActionsFor evaluates the capability table for one internship.
func ActionsFor(subject policy.Subject, internship models.Internship) InternshipActions {
	resource := policy.ForInternship(internship)
	return InternshipActions{
		CanEdit:         policy.Can(subject, policy.InternshipEdit, resource),
		CanDelete:       policy.Can(subject, policy.InternshipDelete, resource),
		CanUpdateStatus: policy.Can(subject, policy.InternshipUpdateStatus, resource),
		CanSubmitReport: policy.Can(subject, policy.ReportSubmit, resource),
	}
}

// List returns the internships visible to the caller.
//   - admins see everything, optionally narrowed by search filters
//   - teachers see internships within their sectors or under their supervision
//   - students see their own list unless they ask for scope=all
func (s *InternshipService) List(ctx context.Context, id *session.Identity, opts InternshipListOptions) (*InternshipList, error) {
	subject := id.Subject()
	ctx = id.Context(ctx)
	out := &InternshipList{
		CanCreate: policy.Can(subject, policy.InternshipCreate, policy.Resource{}),
		CanExport: policy.Can(subject, policy.InternshipExport, policy.Resource{}),
		CanSearch: subject.Role == models.RoleAdmin,
	}

	var (
		items []models.Internship
		err   error
	)
	switch subject.Role {
	case models.RoleAdmin:
		if opts.Search.Empty() {
			items, err = s.internships.GetAll(ctx)
		} else {
			items, err = s.internships.Search(ctx, opts.Search)
		}
	case models.RoleTeacher:
		items, err = s.internships.GetAll(ctx)
		items = filterInternships(items, func(i models.Internship) bool {
			return policy.Can(subject, policy.InternshipView, policy.ForInternship(i))
		})
	case models.RoleStudent:
		out.Scope = ScopeMine
		if strings.EqualFold(opts.Scope, ScopeAll) {
			out.Scope = ScopeAll
			items, err = s.internships.GetAll(ctx)
			break
		}
		studentID, lookupErr := s.studentID(ctx, id)
		if lookupErr != nil {
			return nil, lookupErr
		}
		items, err = s.internships.GetByStudent(ctx, studentID)
	default:
		return nil, appErrors.Clone(appErrors.ErrForbidden, "")
	}
	if err != nil {
		return nil, err
	}

	out.Rows = make([]InternshipRow, 0, len(items))
	for _, item := range items {
		out.Rows = append(out.Rows, InternshipRow{Internship: item, Actions: ActionsFor(subject, item)})
	}
	return out, nil
}

// Get loads one internship with its reports.
func (s *InternshipService) Get(ctx context.Context, id *session.Identity, internshipID int64) (*InternshipDetail, error) {
	subject := id.Subject()
	ctx = id.Context(ctx)

	internship, err := s.internships.GetByID(ctx, internshipID)
	if err != nil {
		return nil, err
	}
	if !policy.Can(subject, policy.InternshipView, policy.ForInternship(*internship)) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "this internship is outside your sectors")
	}

	detail := &InternshipDetail{Internship: *internship, Actions: ActionsFor(subject, *internship)}
	if policy.Can(subject, policy.ReportView, policy.ForInternship(*internship)) {
		detail.Reports, detail.ReportsErr = s.reports.GetByInternship(ctx, internshipID)
		if detail.ReportsErr != nil {
			s.logger.Warn("internship reports unavailable", zap.Int64("internship_id", internshipID), zap.Error(detail.ReportsErr))
		}
	}
	return detail, nil
}

// Create registers an internship. For students the owner, level and sector
// always come from their own profile, whatever the form carried.
func (s *InternshipService) Create(ctx context.Context, id *session.Identity, req models.InternshipRequest) (*models.Internship, error) {
	subject := id.Subject()
	if !policy.Can(subject, policy.InternshipCreate, policy.Resource{}) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "")
	}
	ctx = id.Context(ctx)

	if subject.Role == models.RoleStudent {
		if err := s.applyStudentProfile(ctx, id, &req); err != nil {
			return nil, err
		}
		req.TeacherID = nil
		req.TeacherComment = ""
		if err := studentStatus(&req); err != nil {
			return nil, err
		}
	} else if req.Status == "" {
		req.Status = models.StatusPending
	}
	if err := validation.Struct(s.validator, req); err != nil {
		return nil, err
	}
	if err := checkDates(req); err != nil {
		return nil, err
	}

	return guarded(s.guard, id.SessionID, "internship:create", 0, func() (*models.Internship, error) {
		return s.internships.Create(ctx, req)
	})
}

// Update applies a full edit. Students keep the supervisor and the teacher
// comment of the stored record and can only touch their own drafts or
// pending internships.
func (s *InternshipService) Update(ctx context.Context, id *session.Identity, internshipID int64, req models.InternshipRequest) (*models.Internship, error) {
	subject := id.Subject()
	if subject.Role != models.RoleAdmin && subject.Role != models.RoleStudent {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "")
	}
	ctx = id.Context(ctx)

	current, err := s.internships.GetByID(ctx, internshipID)
	if err != nil {
		return nil, err
	}
	if !policy.Can(subject, policy.InternshipEdit, policy.ForInternship(*current)) {
		return nil, editDenied(subject, *current)
	}

	if subject.Role == models.RoleStudent {
		stored := current.Request()
		if err := s.applyStudentProfile(ctx, id, &req); err != nil {
			return nil, err
		}
		req.TeacherID = stored.TeacherID
		req.TeacherComment = stored.TeacherComment
		if err := studentStatus(&req); err != nil {
			return nil, err
		}
	} else if req.Status == "" {
		req.Status = current.Status
	}
	if err := validation.Struct(s.validator, req); err != nil {
		return nil, err
	}
	if err := checkDates(req); err != nil {
		return nil, err
	}

	return guarded(s.guard, id.SessionID, "internship:update", internshipID, func() (*models.Internship, error) {
		return s.internships.Update(ctx, internshipID, req)
	})
}

// UpdateStatus is the teacher's status-only edit.
func (s *InternshipService) UpdateStatus(ctx context.Context, id *session.Identity, internshipID int64, req models.InternshipStatusRequest) (*models.Internship, error) {
	subject := id.Subject()
	if subject.Role != models.RoleTeacher {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only teachers can change the status")
	}
	req.Status = models.InternshipStatus(strings.ToUpper(strings.TrimSpace(string(req.Status))))
	req.TeacherComment = strings.TrimSpace(req.TeacherComment)
	if err := validation.Struct(s.validator, req); err != nil {
		return nil, err
	}
	ctx = id.Context(ctx)

	current, err := s.internships.GetByID(ctx, internshipID)
	if err != nil {
		return nil, err
	}
	if !policy.Can(subject, policy.InternshipUpdateStatus, policy.ForInternship(*current)) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "this internship is outside your sectors")
	}

	return guarded(s.guard, id.SessionID, "internship:status", internshipID, func() (*models.Internship, error) {
		return s.internships.UpdateStatus(ctx, internshipID, req)
	})
}

// Delete removes an internship after the ownership check.
func (s *InternshipService) Delete(ctx context.Context, id *session.Identity, internshipID int64) error {
	subject := id.Subject()
	if subject.Role != models.RoleAdmin && subject.Role != models.RoleStudent {
		return appErrors.Clone(appErrors.ErrForbidden, "")
	}
	ctx = id.Context(ctx)

	current, err := s.internships.GetByID(ctx, internshipID)
	if err != nil {
		return err
	}
	if !policy.Can(subject, policy.InternshipDelete, policy.ForInternship(*current)) {
		return editDenied(subject, *current)
	}

	_, err = guarded(s.guard, id.SessionID, "internship:delete", internshipID, func() (struct{}, error) {
		return struct{}{}, s.internships.Delete(ctx, internshipID)
	})
	return err
}

// Supervised lists the internships a teacher supervises.
func (s *InternshipService) Supervised(ctx context.Context, id *session.Identity, teacherID int64) ([]models.Internship, error) {
	return s.internships.GetBySupervisor(id.Context(ctx), teacherID)
}

// ForStudent lists a student's internships.
func (s *InternshipService) ForStudent(ctx context.Context, id *session.Identity, studentID int64) ([]models.Internship, error) {
	return s.internships.GetByStudent(id.Context(ctx), studentID)
}

func (s *InternshipService) studentID(ctx context.Context, id *session.Identity) (int64, error) {
	if id.StudentID != 0 {
		return id.StudentID, nil
	}
	student, err := s.students.GetByUserID(ctx, id.User.ID)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "your student profile could not be loaded")
	}
	return student.ID, nil
}

// applyStudentProfile overwrites the owner fields with the caller's profile,
// re-fetched so stale session data cannot leak into the payload.
func (s *InternshipService) applyStudentProfile(ctx context.Context, id *session.Identity, req *models.InternshipRequest) error {
	var (
		student *models.Student
		err     error
	)
	if id.StudentID != 0 {
		student, err = s.students.GetByID(ctx, id.StudentID)
	} else {
		student, err = s.students.GetByUserID(ctx, id.User.ID)
	}
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "your student profile could not be loaded")
	}
	if student.User.ID != 0 && student.User.ID != id.User.ID {
		return appErrors.Clone(appErrors.ErrForbidden, "student profile does not belong to you")
	}
	req.StudentID = student.ID
	req.LevelID = student.LevelID()
	req.SectorID = student.SectorID()
	return nil
}

// studentStatus restricts students to saving a draft or submitting for review.
func studentStatus(req *models.InternshipRequest) error {
	if req.Status == "" {
		req.Status = models.StatusPending
	}
	if !policy.StudentEditable(req.Status) {
		return appErrors.Validation("you can only save a draft or submit for review", map[string]string{"status": "choose draft or pending"})
	}
	return nil
}

func checkDates(req models.InternshipRequest) error {
	if req.EndDate < req.StartDate {
		return appErrors.Validation("the end date must not be before the start date", map[string]string{"endDate": "end date must not be before start date"})
	}
	return nil
}

func editDenied(subject policy.Subject, internship models.Internship) error {
	if subject.Role == models.RoleStudent && internship.StudentID() == subject.StudentID && !policy.StudentEditable(internship.Status) {
		return appErrors.Clone(appErrors.ErrForbidden, "this internship can no longer be changed")
	}
	return appErrors.Clone(appErrors.ErrForbidden, "you can only change your own internships")
}

func filterInternships(items []models.Internship, keep func(models.Internship) bool) []models.Internship {
	out := make([]models.Internship, 0, len(items))
	for _, item := range items {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}
