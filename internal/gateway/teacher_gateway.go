package gateway

import (
	"context"
	"net/http"

	"github.com/noah-isme/internship-portal/internal/models"
)

// TeacherGateway maps the /teachers endpoints.
type TeacherGateway struct {
	client *Client
}

// NewTeacherGateway constructs TeacherGateway.
func NewTeacherGateway(client *Client) *TeacherGateway {
	return &TeacherGateway{client: client}
}

func (g *TeacherGateway) GetAll(ctx context.Context) ([]models.Teacher, error) {
	var out []models.Teacher
	err := g.client.doJSON(ctx, call{Method: http.MethodGet, Endpoint: "/teachers", Path: "/teachers"}, &out)
	return out, err
}

func (g *TeacherGateway) GetByID(ctx context.Context, id int64) (*models.Teacher, error) {
	return g.one(ctx, call{Method: http.MethodGet, Endpoint: "/teachers/{id}", Path: idPath("/teachers", id)})
}

func (g *TeacherGateway) GetBySector(ctx context.Context, sectorID int64) ([]models.Teacher, error) {
	var out []models.Teacher
	err := g.client.doJSON(ctx, call{Method: http.MethodGet, Endpoint: "/teachers/sector/{id}", Path: idPath("/teachers/sector", sectorID)}, &out)
	return out, err
}

func (g *TeacherGateway) GetByUserID(ctx context.Context, userID int64) (*models.Teacher, error) {
	return g.one(ctx, call{Method: http.MethodGet, Endpoint: "/teachers/user/{id}", Path: idPath("/teachers/user", userID)})
}

func (g *TeacherGateway) Create(ctx context.Context, req models.TeacherRequest) (*models.Teacher, error) {
	return g.one(ctx, call{Method: http.MethodPost, Endpoint: "/teachers", Path: "/teachers", Body: req})
}

func (g *TeacherGateway) Update(ctx context.Context, id int64, req models.TeacherRequest) (*models.Teacher, error) {
	return g.one(ctx, call{Method: http.MethodPut, Endpoint: "/teachers/{id}", Path: idPath("/teachers", id), Body: req})
}

func (g *TeacherGateway) Delete(ctx context.Context, id int64) error {
	return g.client.doJSON(ctx, call{Method: http.MethodDelete, Endpoint: "/teachers/{id}", Path: idPath("/teachers", id)}, nil)
}

func (g *TeacherGateway) one(ctx context.Context, req call) (*models.Teacher, error) {
	var out models.Teacher
	if err := g.client.doJSON(ctx, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
