package gateway

import (
	"context"
	"fmt"
	"net/http"

	"github.com/noah-isme/internship-portal/internal/models"
)

// ReportGateway maps the /reports endpoints.
type ReportGateway struct {
	client *Client
}

// NewReportGateway constructs ReportGateway.
func NewReportGateway(client *Client) *ReportGateway {
	return &ReportGateway{client: client}
}

func (g *ReportGateway) GetAll(ctx context.Context) ([]models.Report, error) {
	var out []models.Report
	err := g.client.doJSON(ctx, call{Method: http.MethodGet, Endpoint: "/reports", Path: "/reports"}, &out)
	return out, err
}

func (g *ReportGateway) GetByID(ctx context.Context, id int64) (*models.Report, error) {
	return g.one(ctx, call{Method: http.MethodGet, Endpoint: "/reports/{id}", Path: idPath("/reports", id)})
}

func (g *ReportGateway) GetByInternship(ctx context.Context, internshipID int64) ([]models.Report, error) {
	var out []models.Report
	err := g.client.doJSON(ctx, call{Method: http.MethodGet, Endpoint: "/reports/internship/{id}", Path: idPath("/reports/internship", internshipID)}, &out)
	return out, err
}

func (g *ReportGateway) Create(ctx context.Context, req models.ReportRequest) (*models.Report, error) {
	return g.one(ctx, call{Method: http.MethodPost, Endpoint: "/reports", Path: "/reports", Body: req})
}

func (g *ReportGateway) Update(ctx context.Context, id int64, req models.ReportRequest) (*models.Report, error) {
	return g.one(ctx, call{Method: http.MethodPut, Endpoint: "/reports/{id}", Path: idPath("/reports", id), Body: req})
}

// Grade records a grade and feedback; the body is always {grade, feedback}.
func (g *ReportGateway) Grade(ctx context.Context, id int64, req models.GradeRequest) (*models.Report, error) {
	return g.one(ctx, call{Method: http.MethodPatch, Endpoint: "/reports/{id}/grade", Path: idPath("/reports", id, "grade"), Body: req})
}

// Download fetches the stored report artifact.
func (g *ReportGateway) Download(ctx context.Context, id int64) (*models.ReportFile, error) {
	raw, err := g.client.doRaw(ctx, call{Method: http.MethodGet, Endpoint: "/reports/{id}/download", Path: idPath("/reports", id, "download")})
	if err != nil {
		return nil, err
	}
	name := raw.FileName
	if name == "" {
		name = fmt.Sprintf("report-%d", id)
	}
	return &models.ReportFile{FileName: name, ContentType: raw.ContentType, Data: raw.Data}, nil
}

func (g *ReportGateway) Delete(ctx context.Context, id int64) error {
	return g.client.doJSON(ctx, call{Method: http.MethodDelete, Endpoint: "/reports/{id}", Path: idPath("/reports", id)}, nil)
}

func (g *ReportGateway) one(ctx context.Context, req call) (*models.Report, error) {
	var out models.Report
	if err := g.client.doJSON(ctx, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
