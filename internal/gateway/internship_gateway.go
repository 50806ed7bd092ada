package gateway

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/noah-isme/internship-portal/internal/models"
)

// InternshipGateway maps the /internships endpoints.
type InternshipGateway struct {
	client *Client
}

// NewInternshipGateway constructs InternshipGateway.
func NewInternshipGateway(client *Client) *InternshipGateway {
	return &InternshipGateway{client: client}
}

func (g *InternshipGateway) GetAll(ctx context.Context) ([]models.Internship, error) {
	return g.list(ctx, call{Method: http.MethodGet, Endpoint: "/internships", Path: "/internships"})
}

func (g *InternshipGateway) GetByID(ctx context.Context, id int64) (*models.Internship, error) {
	var out models.Internship
	if err := g.client.doJSON(ctx, call{Method: http.MethodGet, Endpoint: "/internships/{id}", Path: idPath("/internships", id)}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Search sends only the filters that are set; absent fields never appear as null.
func (g *InternshipGateway) Search(ctx context.Context, criteria models.InternshipSearch) ([]models.Internship, error) {
	return g.list(ctx, call{
		Method:   http.MethodGet,
		Endpoint: "/internships/search",
		Path:     "/internships/search",
		Query:    SearchValues(criteria),
	})
}

func (g *InternshipGateway) GetByStudent(ctx context.Context, studentID int64) ([]models.Internship, error) {
	return g.list(ctx, call{Method: http.MethodGet, Endpoint: "/internships/student/{id}", Path: idPath("/internships/student", studentID)})
}

func (g *InternshipGateway) GetByTeacher(ctx context.Context, teacherID int64) ([]models.Internship, error) {
	return g.list(ctx, call{Method: http.MethodGet, Endpoint: "/internships/teacher/{id}", Path: idPath("/internships/teacher", teacherID)})
}

func (g *InternshipGateway) GetBySupervisor(ctx context.Context, supervisorID int64) ([]models.Internship, error) {
	return g.list(ctx, call{Method: http.MethodGet, Endpoint: "/internships/supervisor/{id}", Path: idPath("/internships/supervisor", supervisorID)})
}

func (g *InternshipGateway) Create(ctx context.Context, req models.InternshipRequest) (*models.Internship, error) {
	var out models.Internship
	if err := g.client.doJSON(ctx, call{Method: http.MethodPost, Endpoint: "/internships", Path: "/internships", Body: req}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (g *InternshipGateway) Update(ctx context.Context, id int64, req models.InternshipRequest) (*models.Internship, error) {
	var out models.Internship
	if err := g.client.doJSON(ctx, call{Method: http.MethodPut, Endpoint: "/internships/{id}", Path: idPath("/internships", id), Body: req}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (g *InternshipGateway) UpdateStatus(ctx context.Context, id int64, req models.InternshipStatusRequest) (*models.Internship, error) {
	var out models.Internship
	if err := g.client.doJSON(ctx, call{Method: http.MethodPatch, Endpoint: "/internships/{id}/status", Path: idPath("/internships", id, "status"), Body: req}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (g *InternshipGateway) Delete(ctx context.Context, id int64) error {
	return g.client.doJSON(ctx, call{Method: http.MethodDelete, Endpoint: "/internships/{id}", Path: idPath("/internships", id)}, nil)
}

func (g *InternshipGateway) list(ctx context.Context, req call) ([]models.Internship, error) {
	var out []models.Internship
	if err := g.client.doJSON(ctx, req, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SearchValues encodes the set filters as query parameters.
func SearchValues(criteria models.InternshipSearch) url.Values {
	values := url.Values{}
	if criteria.Status != nil {
		values.Set("status", string(*criteria.Status))
	}
	setID := func(key string, id *int64) {
		if id != nil {
			values.Set(key, strconv.FormatInt(*id, 10))
		}
	}
	setID("studentId", criteria.StudentID)
	setID("teacherId", criteria.TeacherID)
	setID("levelId", criteria.LevelID)
	setID("sectorId", criteria.SectorID)
	if criteria.CompanyName != nil {
		values.Set("companyName", *criteria.CompanyName)
	}
	return values
}
