package gateway

import (
	"context"
	"net/http"

	"github.com/noah-isme/internship-portal/internal/models"
)

// MetadataGateway reads the public level and sector catalogues.
type MetadataGateway struct {
	client *Client
}

// NewMetadataGateway constructs MetadataGateway.
func NewMetadataGateway(client *Client) *MetadataGateway {
	return &MetadataGateway{client: client}
}

func (g *MetadataGateway) Levels(ctx context.Context) ([]models.Level, error) {
	var out []models.Level
	err := g.client.doJSON(ctx, call{Method: http.MethodGet, Endpoint: "/levels", Path: "/levels", Public: true}, &out)
	return out, err
}

func (g *MetadataGateway) Sectors(ctx context.Context) ([]models.Sector, error) {
	var out []models.Sector
	err := g.client.doJSON(ctx, call{Method: http.MethodGet, Endpoint: "/sectors", Path: "/sectors", Public: true}, &out)
	return out, err
}

func (g *MetadataGateway) SectorsByLevel(ctx context.Context, levelID int64) ([]models.Sector, error) {
	var out []models.Sector
	err := g.client.doJSON(ctx, call{
		Method:   http.MethodGet,
		Endpoint: "/sectors/level/{id}",
		Path:     idPath("/sectors/level", levelID),
		Public:   true,
	}, &out)
	return out, err
}
