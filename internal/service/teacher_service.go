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

type teacherGateway interface {
	GetAll(ctx context.Context) ([]models.Teacher, error)
	GetByID(ctx context.Context, id int64) (*models.Teacher, error)
	GetBySector(ctx context.Context, sectorID int64) ([]models.Teacher, error)
	Create(ctx context.Context, req models.TeacherRequest) (*models.Teacher, error)
	Update(ctx context.Context, id int64, req models.TeacherRequest) (*models.Teacher, error)
	Delete(ctx context.Context, id int64) error
}

type internshipsBySupervisor interface {
	GetBySupervisor(ctx context.Context, supervisorID int64) ([]models.Internship, error)
}

// TeacherDetail is a teacher with the internships they supervise.
type TeacherDetail struct {
	Teacher        models.Teacher
	Internships    []models.Internship
	InternshipsErr error
}

// TeacherService manages teacher records; every operation is admin only.
type TeacherService struct {
	teachers    teacherGateway
	internships internshipsBySupervisor
	guard       *InflightGuard
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewTeacherService constructs a TeacherService.
func NewTeacherService(teachers teacherGateway, internships internshipsBySupervisor, guard *InflightGuard, validate *validator.Validate, logger *zap.Logger) *TeacherService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validation.New()
	}
	return &TeacherService{teachers: teachers, internships: internships, guard: guard, validator: validate, logger: logger}
}

// List returns all teachers or those attached to one sector.
func (s *TeacherService) List(ctx context.Context, id *session.Identity, sectorID *int64) ([]models.Teacher, error) {
	if !policy.Can(id.Subject(), policy.TeacherView, policy.Resource{}) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "")
	}
	ctx = id.Context(ctx)
	if sectorID != nil {
		return s.teachers.GetBySector(ctx, *sectorID)
	}
	return s.teachers.GetAll(ctx)
}

func (s *TeacherService) Get(ctx context.Context, id *session.Identity, teacherID int64) (*TeacherDetail, error) {
	if !policy.Can(id.Subject(), policy.TeacherView, policy.Resource{}) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "")
	}
	ctx = id.Context(ctx)

	teacher, err := s.teachers.GetByID(ctx, teacherID)
	if err != nil {
		return nil, err
	}
	detail := &TeacherDetail{Teacher: *teacher}
	detail.Internships, detail.InternshipsErr = s.internships.GetBySupervisor(ctx, teacherID)
	if detail.InternshipsErr != nil {
		s.logger.Warn("supervised internships unavailable", zap.Int64("teacher_id", teacherID), zap.Error(detail.InternshipsErr))
	}
	return detail, nil
}

func (s *TeacherService) Create(ctx context.Context, id *session.Identity, req models.TeacherRequest) (*models.Teacher, error) {
	if !policy.Can(id.Subject(), policy.TeacherCreate, policy.Resource{}) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "")
	}
	if strings.TrimSpace(req.Password) == "" {
		return nil, appErrors.Validation("password is required", map[string]string{"password": "password is required"})
	}
	if err := s.prepare(&req); err != nil {
		return nil, err
	}
	ctx = id.Context(ctx)
	return guarded(s.guard, id.SessionID, "teacher:create", 0, func() (*models.Teacher, error) {
		return s.teachers.Create(ctx, req)
	})
}

func (s *TeacherService) Update(ctx context.Context, id *session.Identity, teacherID int64, req models.TeacherRequest) (*models.Teacher, error) {
	if !policy.Can(id.Subject(), policy.TeacherEdit, policy.Resource{}) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "")
	}
	if err := s.prepare(&req); err != nil {
		return nil, err
	}
	ctx = id.Context(ctx)
	return guarded(s.guard, id.SessionID, "teacher:update", teacherID, func() (*models.Teacher, error) {
		return s.teachers.Update(ctx, teacherID, req)
	})
}

func (s *TeacherService) Delete(ctx context.Context, id *session.Identity, teacherID int64) error {
	if !policy.Can(id.Subject(), policy.TeacherDelete, policy.Resource{}) {
		return appErrors.Clone(appErrors.ErrForbidden, "")
	}
	ctx = id.Context(ctx)
	_, err := guarded(s.guard, id.SessionID, "teacher:delete", teacherID, func() (struct{}, error) {
		return struct{}{}, s.teachers.Delete(ctx, teacherID)
	})
	return err
}

func (s *TeacherService) prepare(req *models.TeacherRequest) error {
	req.Email = strings.TrimSpace(req.Email)
	req.Password = strings.TrimSpace(req.Password)
	req.SectorIDs = uniqueIDs(req.SectorIDs)
	return validation.Struct(s.validator, *req)
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok || id == 0 {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
