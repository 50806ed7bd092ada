package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/internship-portal/internal/models"
	"github.com/noah-isme/internship-portal/internal/policy"
	"github.com/noah-isme/internship-portal/internal/session"
	appErrors "github.com/noah-isme/internship-portal/pkg/errors"
	"github.com/noah-isme/internship-portal/pkg/export"
)

// Export formats.
const (
	FormatCSV = "csv"
	FormatPDF = "pdf"
)

type tableRenderer interface {
	ContentType() string
	Extension() string
	Render(table export.Table) ([]byte, error)
}

type internshipSource interface {
	List(ctx context.Context, id *session.Identity, opts InternshipListOptions) (*InternshipList, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	Title string
}

// ExportResult is a rendered document ready to be streamed.
type ExportResult struct {
	FileName    string
	ContentType string
	Data        []byte
}

// ExportService renders the admin's internship list as CSV or PDF.
type ExportService struct {
	internships internshipSource
	renderers   map[string]tableRenderer
	logger      *zap.Logger
	cfg         ExportConfig
	now         func() time.Time
}

// NewExportService constructs an ExportService.
func NewExportService(internships internshipSource, cfg ExportConfig, logger *zap.Logger, csv, pdf tableRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Title == "" {
		cfg.Title = "Internships"
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		internships: internships,
		renderers:   map[string]tableRenderer{FormatCSV: csv, FormatPDF: pdf},
		logger:      logger,
		cfg:         cfg,
		now:         time.Now,
	}
}

// Internships exports the list the admin currently sees, filters included.
func (s *ExportService) Internships(ctx context.Context, id *session.Identity, format string, search models.InternshipSearch) (*ExportResult, error) {
	if !policy.Can(id.Subject(), policy.InternshipExport, policy.Resource{}) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "")
	}
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = FormatCSV
	}
	renderer, ok := s.renderers[format]
	if !ok {
		return nil, appErrors.Validation("unsupported export format", map[string]string{"format": "choose csv or pdf"})
	}

	list, err := s.internships.List(ctx, id, InternshipListOptions{Search: search})
	if err != nil {
		return nil, err
	}

	table := InternshipTable(s.cfg.Title, list.Rows)
	data, err := renderer.Render(table)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrServer.Code, appErrors.ErrServer.Status, "failed to render export")
	}
	s.logger.Info("internships exported", zap.String("format", format), zap.Int("rows", len(table.Rows)))

	return &ExportResult{
		FileName:    fmt.Sprintf("internships-%s.%s", s.now().Format("20060102-150405"), renderer.Extension()),
		ContentType: renderer.ContentType(),
		Data:        data,
	}, nil
}

// InternshipTable flattens internship rows into an export table.
func InternshipTable(title string, rows []InternshipRow) export.Table {
	table := export.Table{
		Title:   title,
		Columns: []string{"ID", "Subject", "Company", "City", "Student", "Supervisor", "Sector", "Status", "Start", "End"},
		Rows:    make([][]string, 0, len(rows)),
	}
	for _, row := range rows {
		i := row.Internship
		sector := ""
		if i.Sector != nil {
			sector = i.Sector.Name
		}
		table.Rows = append(table.Rows, []string{
			strconv.FormatInt(i.ID, 10),
			i.Subject,
			i.Company,
			i.City,
			i.StudentName(),
			i.TeacherName(),
			sector,
			i.Status.Label(),
			i.StartDate,
			i.EndDate,
		})
	}
	return table
}
