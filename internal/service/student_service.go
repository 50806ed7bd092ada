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

type studentGateway interface {
	GetAll(ctx context.Context) ([]models.Student, error)
	GetByID(ctx context.Context, id int64) (*models.Student, error)
	GetByLevel(ctx context.Context, levelID int64) ([]models.Student, error)
	Create(ctx context.Context, req models.StudentRequest) (*models.Student, error)
	Update(ctx context.Context, id int64, req models.StudentRequest) (*models.Student, error)
	Delete(ctx context.Context, id int64) error
}

type internshipsByStudent interface {
	GetByStudent(ctx context.Context, studentID int64) ([]models.Internship, error)
}

type levelLister interface {
	Levels(ctx context.Context) ([]models.Level, error)
}

// StudentList is the student list page model.
type StudentList struct {
	Students  []models.Student
	CanCreate bool
	CanEdit   bool
	CanDelete bool
}

// StudentDetail is a student with their internships; the latter fail independently.
type StudentDetail struct {
	Student        models.Student
	Internships    []models.Internship
	InternshipsErr error
	CanEdit        bool
	CanDelete      bool
}

// StudentService manages student records for admins and lets teachers browse them.
type StudentService struct {
	students    studentGateway
	internships internshipsByStudent
	levels      levelLister
	guard       *InflightGuard
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewStudentService constructs a StudentService.
func NewStudentService(students studentGateway, internships internshipsByStudent, levels levelLister, guard *InflightGuard, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validation.New()
	}
	return &StudentService{students: students, internships: internships, levels: levels, guard: guard, validator: validate, logger: logger}
}

// List returns all students or those of one level.
func (s *StudentService) List(ctx context.Context, id *session.Identity, levelID *int64) (*StudentList, error) {
	subject := id.Subject()
	if !policy.Can(subject, policy.StudentView, policy.Resource{}) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "")
	}
	ctx = id.Context(ctx)

	var (
		students []models.Student
		err      error
	)
	if levelID != nil {
		students, err = s.students.GetByLevel(ctx, *levelID)
	} else {
		students, err = s.students.GetAll(ctx)
	}
	if err != nil {
		return nil, err
	}
	return &StudentList{
		Students:  students,
		CanCreate: policy.Can(subject, policy.StudentCreate, policy.Resource{}),
		CanEdit:   policy.Can(subject, policy.StudentEdit, policy.Resource{}),
		CanDelete: policy.Can(subject, policy.StudentDelete, policy.Resource{}),
	}, nil
}

func (s *StudentService) Get(ctx context.Context, id *session.Identity, studentID int64) (*StudentDetail, error) {
	subject := id.Subject()
	if !policy.Can(subject, policy.StudentView, policy.Resource{}) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "")
	}
	ctx = id.Context(ctx)

	student, err := s.students.GetByID(ctx, studentID)
	if err != nil {
		return nil, err
	}
	detail := &StudentDetail{
		Student:   *student,
		CanEdit:   policy.Can(subject, policy.StudentEdit, policy.Resource{}),
		CanDelete: policy.Can(subject, policy.StudentDelete, policy.Resource{}),
	}
	detail.Internships, detail.InternshipsErr = s.internships.GetByStudent(ctx, studentID)
	if detail.InternshipsErr != nil {
		s.logger.Warn("student internships unavailable", zap.Int64("student_id", studentID), zap.Error(detail.InternshipsErr))
	}
	return detail, nil
}

// Create adds a student. The sector rule is the one of self registration.
func (s *StudentService) Create(ctx context.Context, id *session.Identity, req models.StudentRequest) (*models.Student, error) {
	if !policy.Can(id.Subject(), policy.StudentCreate, policy.Resource{}) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "")
	}
	if strings.TrimSpace(req.Password) == "" {
		return nil, appErrors.Validation("password is required", map[string]string{"password": "password is required"})
	}
	ctx = id.Context(ctx)
	if err := s.prepare(ctx, &req); err != nil {
		return nil, err
	}
	return guarded(s.guard, id.SessionID, "student:create", 0, func() (*models.Student, error) {
		return s.students.Create(ctx, req)
	})
}

// Update edits a student; an empty password keeps the current one.
func (s *StudentService) Update(ctx context.Context, id *session.Identity, studentID int64, req models.StudentRequest) (*models.Student, error) {
	if !policy.Can(id.Subject(), policy.StudentEdit, policy.Resource{}) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "")
	}
	ctx = id.Context(ctx)
	if err := s.prepare(ctx, &req); err != nil {
		return nil, err
	}
	return guarded(s.guard, id.SessionID, "student:update", studentID, func() (*models.Student, error) {
		return s.students.Update(ctx, studentID, req)
	})
}

func (s *StudentService) Delete(ctx context.Context, id *session.Identity, studentID int64) error {
	if !policy.Can(id.Subject(), policy.StudentDelete, policy.Resource{}) {
		return appErrors.Clone(appErrors.ErrForbidden, "")
	}
	ctx = id.Context(ctx)
	_, err := guarded(s.guard, id.SessionID, "student:delete", studentID, func() (struct{}, error) {
		return struct{}{}, s.students.Delete(ctx, studentID)
	})
	return err
}

func (s *StudentService) prepare(ctx context.Context, req *models.StudentRequest) error {
	req.Email = strings.TrimSpace(req.Email)
	req.Password = strings.TrimSpace(req.Password)
	if err := validation.Struct(s.validator, *req); err != nil {
		return err
	}
	sectorID, err := resolveSector(ctx, s.levels, *req.LevelID, req.SectorID)
	if err != nil {
		return err
	}
	req.SectorID = sectorID
	return nil
}

// resolveSector applies the level/sector dependency: auto-assigned levels
// never send a sector, the others must carry one.
func resolveSector(ctx context.Context, levels levelLister, levelID int64, sectorID *int64) (*int64, error) {
	all, err := levels.Levels(ctx)
	if err != nil {
		return nil, err
	}
	level, ok := models.FindLevel(all, levelID)
	if !ok {
		return nil, appErrors.Validation("please select a level", map[string]string{"levelId": "unknown level"})
	}
	if !policy.RequiresSector(level.Name) {
		return nil, nil
	}
	if sectorID == nil {
		return nil, appErrors.Validation("please select a sector", map[string]string{"sectorId": "sector is required"})
	}
	return sectorID, nil
}
