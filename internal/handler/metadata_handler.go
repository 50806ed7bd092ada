package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/internship-portal/internal/models"
	"github.com/noah-isme/internship-portal/internal/policy"
	appErrors "github.com/noah-isme/internship-portal/pkg/errors"
	"github.com/noah-isme/internship-portal/pkg/response"
)

type metadataSource interface {
	Levels(ctx context.Context) ([]models.Level, error)
	Sectors(ctx context.Context) ([]models.Sector, error)
	SectorsByLevel(ctx context.Context, levelID int64) ([]models.Sector, error)
}

// SectorSelect feeds the sector selector partial.
type SectorSelect struct {
	LevelChosen bool
	Automatic   bool
	Sectors     []models.Sector
	Selected    *int64
	Error       string
}

// MetadataHandler serves the level and sector fragments used by forms.
type MetadataHandler struct {
	metadata metadataSource
	logger   *zap.Logger
}

// NewMetadataHandler constructs the handler.
func NewMetadataHandler(metadata metadataSource, logger *zap.Logger) *MetadataHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MetadataHandler{metadata: metadata, logger: logger}
}

// Sectors renders the sector selector for ?levelId=. Levels whose sector is
// assigned by the backend render a note instead of a selector.
func (h *MetadataHandler) Sectors(c *gin.Context) {
	data := h.sectorSelect(c.Request.Context(), queryInt64Ptr(c, "levelId"), queryInt64Ptr(c, "sectorId"))
	response.Partial(c, http.StatusOK, "partials/sector-select", data)
}

// levels loads the level catalogue for a selector. A failure is logged and
// returned as the message shown next to the empty selector.
func (h *MetadataHandler) levels(ctx context.Context) ([]models.Level, string) {
	levels, err := h.metadata.Levels(ctx)
	if err != nil {
		h.logger.Warn("levels unavailable", zap.Error(err))
		return nil, "levels could not be loaded, please try again"
	}
	return levels, ""
}

func (h *MetadataHandler) sectorSelect(ctx context.Context, levelID, selected *int64) SectorSelect {
	data := SectorSelect{Selected: selected}
	if levelID == nil {
		return data
	}
	data.LevelChosen = true

	levels, err := h.metadata.Levels(ctx)
	if err != nil {
		return h.sectorError(data, err)
	}
	level, ok := models.FindLevel(levels, *levelID)
	if !ok {
		data.Error = "unknown level"
		return data
	}
	if !policy.RequiresSector(level.Name) {
		data.Automatic = true
		return data
	}
	data.Sectors, err = h.metadata.SectorsByLevel(ctx, *levelID)
	if err != nil {
		return h.sectorError(data, err)
	}
	return data
}

func (h *MetadataHandler) sectorError(data SectorSelect, err error) SectorSelect {
	h.logger.Warn("sector metadata unavailable", zap.Error(err))
	data.Error = appErrors.UserMessage(err)
	return data
}
