package gateway

import (
	"context"
	"net/http"

	"github.com/noah-isme/internship-portal/internal/models"
)

// StudentGateway maps the /students endpoints.
type StudentGateway struct {
	client *Client
}

// NewStudentGateway constructs StudentGateway.
func NewStudentGateway(client *Client) *StudentGateway {
	return &StudentGateway{client: client}
}

func (g *StudentGateway) GetAll(ctx context.Context) ([]models.Student, error) {
	var out []models.Student
	err := g.client.doJSON(ctx, call{Method: http.MethodGet, Endpoint: "/students", Path: "/students"}, &out)
	return out, err
}

func (g *StudentGateway) GetByID(ctx context.Context, id int64) (*models.Student, error) {
	return g.one(ctx, call{Method: http.MethodGet, Endpoint: "/students/{id}", Path: idPath("/students", id)})
}

func (g *StudentGateway) GetByLevel(ctx context.Context, levelID int64) ([]models.Student, error) {
	var out []models.Student
	err := g.client.doJSON(ctx, call{Method: http.MethodGet, Endpoint: "/students/level/{id}", Path: idPath("/students/level", levelID)}, &out)
	return out, err
}

func (g *StudentGateway) GetByUserID(ctx context.Context, userID int64) (*models.Student, error) {
	return g.one(ctx, call{Method: http.MethodGet, Endpoint: "/students/user/{id}", Path: idPath("/students/user", userID)})
}

func (g *StudentGateway) Create(ctx context.Context, req models.StudentRequest) (*models.Student, error) {
	return g.one(ctx, call{Method: http.MethodPost, Endpoint: "/students", Path: "/students", Body: req})
}

func (g *StudentGateway) Update(ctx context.Context, id int64, req models.StudentRequest) (*models.Student, error) {
	return g.one(ctx, call{Method: http.MethodPut, Endpoint: "/students/{id}", Path: idPath("/students", id), Body: req})
}

func (g *StudentGateway) Delete(ctx context.Context, id int64) error {
	return g.client.doJSON(ctx, call{Method: http.MethodDelete, Endpoint: "/students/{id}", Path: idPath("/students", id)}, nil)
}

func (g *StudentGateway) one(ctx context.Context, req call) (*models.Student, error) {
	var out models.Student
	if err := g.client.doJSON(ctx, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
