package service

import (
	"context"
	"net/http"
	"sync"

	"github.com/noah-isme/internship-portal/internal/models"
	"github.com/noah-isme/internship-portal/internal/session"
	appErrors "github.com/noah-isme/internship-portal/pkg/errors"
)

// fakeBackend implements every gateway interface the services consume and
// records the calls it receives.
type fakeBackend struct {
	mu    sync.Mutex
	calls []string

	internships    map[int64]models.Internship
	students       map[int64]models.Student
	teachers       []models.Teacher
	reports        map[int64][]models.Report
	levels         []models.Level
	failures       map[string]error
	created        []models.InternshipRequest
	updated        []models.InternshipRequest
	statusUpdates  []models.InternshipStatusRequest
	grades         []models.GradeRequest
	studentWrites  []models.StudentRequest
	teacherWrites  []models.TeacherRequest
	reportRequests []models.ReportRequest
	release        chan struct{}
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		internships: map[int64]models.Internship{},
		students:    map[int64]models.Student{},
		reports:     map[int64][]models.Report{},
		failures:    map[string]error{},
		levels: []models.Level{
			{ID: 1, Name: models.LevelB1},
			{ID: 2, Name: models.LevelB2},
			{ID: 3, Name: models.LevelB3},
			{ID: 4, Name: models.LevelM1},
			{ID: 5, Name: models.LevelM2},
		},
	}
}

func (f *fakeBackend) record(call string) error {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	err := f.failures[call]
	f.mu.Unlock()
	return err
}

func (f *fakeBackend) called(call string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == call {
			n++
		}
	}
	return n
}

func serverError() error { return appErrors.FromStatus(http.StatusInternalServerError, "") }

// internships

type fakeInternships struct{ *fakeBackend }

func (f *fakeBackend) allInternships() []models.Internship {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Internship, 0, len(f.internships))
	for id := int64(1); id <= 100; id++ {
		if i, ok := f.internships[id]; ok {
			out = append(out, i)
		}
	}
	return out
}

func (f *fakeBackend) allStudents() []models.Student {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Student, 0, len(f.students))
	for id := int64(1); id <= 100; id++ {
		if s, ok := f.students[id]; ok {
			out = append(out, s)
		}
	}
	return out
}

func (f fakeInternships) GetAll(context.Context) ([]models.Internship, error) {
	if err := f.record("internships.GetAll"); err != nil {
		return nil, err
	}
	return f.allInternships(), nil
}

func (f fakeInternships) GetByID(_ context.Context, id int64) (*models.Internship, error) {
	if err := f.record("internships.GetByID"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i, ok := f.internships[id]
	if !ok {
		return nil, appErrors.FromStatus(http.StatusNotFound, "")
	}
	return &i, nil
}

func (f fakeInternships) Search(_ context.Context, criteria models.InternshipSearch) ([]models.Internship, error) {
	if err := f.record("internships.Search"); err != nil {
		return nil, err
	}
	return filterInternships(f.allInternships(), func(i models.Internship) bool {
		return criteria.Status == nil || i.Status == *criteria.Status
	}), nil
}

func (f fakeInternships) GetByStudent(_ context.Context, studentID int64) ([]models.Internship, error) {
	if err := f.record("internships.GetByStudent"); err != nil {
		return nil, err
	}
	return filterInternships(f.allInternships(), func(i models.Internship) bool { return i.StudentID() == studentID }), nil
}

func (f fakeInternships) GetBySupervisor(_ context.Context, supervisorID int64) ([]models.Internship, error) {
	if err := f.record("internships.GetBySupervisor"); err != nil {
		return nil, err
	}
	return filterInternships(f.allInternships(), func(i models.Internship) bool { return i.Teacher != nil && i.Teacher.ID == supervisorID }), nil
}

func (f fakeInternships) Create(_ context.Context, req models.InternshipRequest) (*models.Internship, error) {
	if err := f.record("internships.Create"); err != nil {
		return nil, err
	}
	if f.release != nil {
		<-f.release
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, req)
	created := models.Internship{ID: 50, Subject: req.Subject, Status: req.Status, Student: &models.Student{ID: req.StudentID}}
	return &created, nil
}

func (f fakeInternships) Update(_ context.Context, id int64, req models.InternshipRequest) (*models.Internship, error) {
	if err := f.record("internships.Update"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updated = append(f.updated, req)
	current := f.internships[id]
	current.Subject = req.Subject
	current.Company = req.Company
	current.City = req.City
	current.Description = req.Description
	current.StartDate = req.StartDate
	current.EndDate = req.EndDate
	current.Status = req.Status
	current.TeacherComment = req.TeacherComment
	f.internships[id] = current
	return &current, nil
}

func (f fakeInternships) UpdateStatus(_ context.Context, id int64, req models.InternshipStatusRequest) (*models.Internship, error) {
	if err := f.record("internships.UpdateStatus"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statusUpdates = append(f.statusUpdates, req)
	current := f.internships[id]
	current.Status = req.Status
	current.TeacherComment = req.TeacherComment
	f.internships[id] = current
	return &current, nil
}

func (f fakeInternships) Delete(_ context.Context, id int64) error {
	if err := f.record("internships.Delete"); err != nil {
		return err
	}
	f.mu.Lock()
	delete(f.internships, id)
	f.mu.Unlock()
	return nil
}

// students

type fakeStudents struct{ *fakeBackend }

func (f fakeStudents) GetAll(context.Context) ([]models.Student, error) {
	if err := f.record("students.GetAll"); err != nil {
		return nil, err
	}
	return f.allStudents(), nil
}

func (f fakeStudents) GetByID(_ context.Context, id int64) (*models.Student, error) {
	if err := f.record("students.GetByID"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.students[id]
	if !ok {
		return nil, appErrors.FromStatus(http.StatusNotFound, "")
	}
	return &s, nil
}

func (f fakeStudents) GetByUserID(_ context.Context, userID int64) (*models.Student, error) {
	if err := f.record("students.GetByUserID"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.students {
		if s.User.ID == userID {
			s := s
			return &s, nil
		}
	}
	return nil, appErrors.FromStatus(http.StatusNotFound, "")
}

func (f fakeStudents) GetByLevel(_ context.Context, levelID int64) ([]models.Student, error) {
	if err := f.record("students.GetByLevel"); err != nil {
		return nil, err
	}
	var out []models.Student
	for _, s := range f.allStudents() {
		if s.Level != nil && s.Level.ID == levelID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f fakeStudents) Create(_ context.Context, req models.StudentRequest) (*models.Student, error) {
	if err := f.record("students.Create"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.studentWrites = append(f.studentWrites, req)
	f.mu.Unlock()
	return &models.Student{ID: 30, User: models.User{Email: req.Email}}, nil
}

func (f fakeStudents) Update(_ context.Context, id int64, req models.StudentRequest) (*models.Student, error) {
	if err := f.record("students.Update"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.studentWrites = append(f.studentWrites, req)
	f.mu.Unlock()
	return &models.Student{ID: id, User: models.User{Email: req.Email}}, nil
}

func (f fakeStudents) Delete(context.Context, int64) error {
	return f.record("students.Delete")
}

// teachers

type fakeTeachers struct{ *fakeBackend }

func (f fakeTeachers) GetAll(context.Context) ([]models.Teacher, error) {
	if err := f.record("teachers.GetAll"); err != nil {
		return nil, err
	}
	return f.teachers, nil
}

func (f fakeTeachers) GetByID(_ context.Context, id int64) (*models.Teacher, error) {
	if err := f.record("teachers.GetByID"); err != nil {
		return nil, err
	}
	for _, t := range f.teachers {
		if t.ID == id {
			t := t
			return &t, nil
		}
	}
	return nil, appErrors.FromStatus(http.StatusNotFound, "")
}

func (f fakeTeachers) GetByUserID(_ context.Context, userID int64) (*models.Teacher, error) {
	if err := f.record("teachers.GetByUserID"); err != nil {
		return nil, err
	}
	for _, t := range f.teachers {
		if t.User.ID == userID {
			t := t
			return &t, nil
		}
	}
	return nil, appErrors.FromStatus(http.StatusNotFound, "")
}

func (f fakeTeachers) GetBySector(_ context.Context, sectorID int64) ([]models.Teacher, error) {
	if err := f.record("teachers.GetBySector"); err != nil {
		return nil, err
	}
	var out []models.Teacher
	for _, t := range f.teachers {
		for _, id := range t.SectorIDs() {
			if id == sectorID {
				out = append(out, t)
				break
			}
		}
	}
	return out, nil
}

func (f fakeTeachers) Create(_ context.Context, req models.TeacherRequest) (*models.Teacher, error) {
	if err := f.record("teachers.Create"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.teacherWrites = append(f.teacherWrites, req)
	f.mu.Unlock()
	return &models.Teacher{ID: 12}, nil
}

func (f fakeTeachers) Update(_ context.Context, id int64, req models.TeacherRequest) (*models.Teacher, error) {
	if err := f.record("teachers.Update"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.teacherWrites = append(f.teacherWrites, req)
	f.mu.Unlock()
	return &models.Teacher{ID: id}, nil
}

func (f fakeTeachers) Delete(context.Context, int64) error {
	return f.record("teachers.Delete")
}

// reports

type fakeReports struct{ *fakeBackend }

func (f fakeReports) GetAll(context.Context) ([]models.Report, error) {
	if err := f.record("reports.GetAll"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Report
	for id := int64(1); id <= 100; id++ {
		out = append(out, f.reports[id]...)
	}
	return out, nil
}

func (f fakeReports) GetByID(_ context.Context, id int64) (*models.Report, error) {
	if err := f.record("reports.GetByID"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, list := range f.reports {
		for _, r := range list {
			if r.ID == id {
				r := r
				return &r, nil
			}
		}
	}
	return nil, appErrors.FromStatus(http.StatusNotFound, "")
}

func (f fakeReports) GetByInternship(_ context.Context, internshipID int64) ([]models.Report, error) {
	if err := f.record("reports.GetByInternship"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Report(nil), f.reports[internshipID]...), nil
}

func (f fakeReports) Create(_ context.Context, req models.ReportRequest) (*models.Report, error) {
	if err := f.record("reports.Create"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.reportRequests = append(f.reportRequests, req)
	f.mu.Unlock()
	return &models.Report{ID: 77, FilePath: req.FilePath}, nil
}

func (f fakeReports) Grade(_ context.Context, id int64, req models.GradeRequest) (*models.Report, error) {
	if err := f.record("reports.Grade"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.grades = append(f.grades, req)
	f.mu.Unlock()
	grade := req.Grade
	return &models.Report{ID: id, Grade: &grade, Feedback: req.Feedback}, nil
}

func (f fakeReports) Download(_ context.Context, id int64) (*models.ReportFile, error) {
	if err := f.record("reports.Download"); err != nil {
		return nil, err
	}
	return &models.ReportFile{FileName: "report.pdf", ContentType: "application/pdf", Data: []byte("%PDF")}, nil
}

// metadata

type fakeLevels struct{ *fakeBackend }

func (f fakeLevels) Levels(context.Context) ([]models.Level, error) {
	if err := f.record("levels"); err != nil {
		return nil, err
	}
	return f.levels, nil
}

// identities

func adminIdentity() *session.Identity {
	return &session.Identity{SessionID: "sess-admin", Token: "t", User: models.User{ID: 1, Role: models.RoleAdmin}}
}

func teacherIdentity() *session.Identity {
	return &session.Identity{SessionID: "sess-teacher", Token: "t", User: models.User{ID: 42, Role: models.RoleTeacher}, TeacherID: 4, SectorIDs: []int64{2}}
}

func studentIdentity(studentID int64) *session.Identity {
	return &session.Identity{SessionID: "sess-student", Token: "t", User: models.User{ID: studentID * 10, Role: models.RoleStudent}, StudentID: studentID}
}

func ptr[T any](v T) *T { return &v }

// seed fills the backend with a small, realistic data set:
//   - student 7 (user 70, level B3, sector 2) and student 9 (user 90, level B1)
//   - teacher 4 (user 42) on sector 2, teacher 5 (user 52) on sector 3
//   - internships 1..4 with varied owners, sectors and statuses
func seed(f *fakeBackend) {
	b3 := &models.Level{ID: 3, Name: models.LevelB3}
	b1 := &models.Level{ID: 1, Name: models.LevelB1}
	sector2 := &models.Sector{ID: 2, Name: "Software"}
	sector3 := &models.Sector{ID: 3, Name: "Networks"}

	f.students[7] = models.Student{ID: 7, User: models.User{ID: 70, FirstName: "Ana", LastName: "Diaz", Role: models.RoleStudent}, Level: b3, Sector: sector2}
	f.students[9] = models.Student{ID: 9, User: models.User{ID: 90, FirstName: "Ben", LastName: "Okafor", Role: models.RoleStudent}, Level: b1}
	f.teachers = []models.Teacher{
		{ID: 4, User: models.User{ID: 42, FirstName: "Lea", LastName: "Martin"}, Sectors: []models.Sector{*sector2}},
		{ID: 5, User: models.User{ID: 52, FirstName: "Omar", LastName: "Haddad"}, Sectors: []models.Sector{*sector3}},
	}

	s7 := f.students[7]
	s9 := f.students[9]
	t4 := f.teachers[0]
	t5 := f.teachers[1]
	f.internships[1] = models.Internship{ID: 1, Subject: "ETL", Company: "Acme", StartDate: "2025-02-01", EndDate: "2025-06-30", Status: models.StatusPending, Student: &s7, Teacher: &t4, Level: b3, Sector: sector2}
	f.internships[2] = models.Internship{ID: 2, Subject: "Routing", Company: "NetCo", StartDate: "2025-02-01", EndDate: "2025-06-30", Status: models.StatusApproved, Student: &s9, Teacher: &t5, Level: b1, Sector: sector3}
	f.internships[3] = models.Internship{ID: 3, Subject: "API", Company: "Acme", StartDate: "2025-01-10", EndDate: "2025-05-30", Status: models.StatusInProgress, Student: &s7, Teacher: &t5, Level: b3, Sector: sector3}
	f.internships[4] = models.Internship{ID: 4, Subject: "Mobile", Company: "AppWorks", StartDate: "2025-03-01", EndDate: "2025-07-31", Status: models.StatusDraft, Student: &s9, Level: b1, Sector: sector2}

	i1 := f.internships[1]
	i3 := f.internships[3]
	f.reports[1] = []models.Report{{ID: 11, Internship: &i1, FilePath: "/r/11.pdf"}}
	f.reports[3] = []models.Report{{ID: 31, Internship: &i3, FilePath: "/r/31.pdf", Grade: ptr(15.5)}}
}
