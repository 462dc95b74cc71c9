package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/cdirx/decision-tool/internal/decision"
	"github.com/cdirx/decision-tool/internal/domain"
	"github.com/cdirx/decision-tool/internal/ingest"
	"github.com/cdirx/decision-tool/internal/service"
)

// Uploads larger than this are rejected outright; the tool handles
// human-entered spreadsheets, not bulk data drops.
const maxUploadBytes = 10 << 20

type UploadHandler struct {
	uploadService *service.UploadService
}

func NewUploadHandler(uploadService *service.UploadService) *UploadHandler {
	return &UploadHandler{uploadService: uploadService}
}

// UploadFile ingests a multipart CSV/XLSX upload and returns the dataset
// handle, headers and suggested mapping.
func (h *UploadHandler) UploadFile(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file field is required"})
		return
	}
	if fileHeader.Size > maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read upload"})
		return
	}
	defer f.Close()

	raw, err := io.ReadAll(io.LimitReader(f, maxUploadBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read upload"})
		return
	}

	result, err := h.uploadService.IngestFile(c.Request.Context(), fileHeader.Filename, raw)
	if err != nil {
		respondIngestError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ImportSharedSheet ingests a publicly shared spreadsheet URL.
func (h *UploadHandler) ImportSharedSheet(c *gin.Context) {
	var req struct {
		URL string `json:"url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.URL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url is required"})
		return
	}

	result, err := h.uploadService.IngestSharedSheet(c.Request.Context(), req.URL)
	if err != nil {
		respondIngestError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetValues lists the distinct values for a mapped column of an uploaded
// dataset, used to populate the payer and drug pickers.
func (h *UploadHandler) GetValues(c *gin.Context) {
	header := c.Query("header")
	if header == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "header parameter is required"})
		return
	}

	values, err := h.uploadService.Values(
		c.Param("id"),
		header,
		c.Query("third_party_header"),
		c.Query("third_party"),
	)
	if err != nil {
		if errors.Is(err, service.ErrDatasetNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "dataset not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list values"})
		return
	}

	c.JSON(http.StatusOK, values)
}

// Decide computes a decision over an uploaded dataset with a confirmed
// header mapping.
func (h *UploadHandler) Decide(c *gin.Context) {
	var req struct {
		Mapping   domain.HeaderMapping `json:"mapping"`
		Selection domain.Selection     `json:"selection"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result, err := h.uploadService.Decide(c.Param("id"), req.Mapping, req.Selection)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDatasetNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "dataset not found"})
		case errors.Is(err, decision.ErrIncompleteMapping):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "all three header roles must be mapped"})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

func respondIngestError(c *gin.Context, err error) {
	var (
		parseErr *ingest.ParseError
		fetchErr *ingest.FetchError
	)
	switch {
	case errors.Is(err, ingest.ErrUnsupportedFormat):
		c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": "upload a CSV or Excel file (.csv, .xlsx, .xls)"})
	case errors.Is(err, ingest.ErrInvalidSheetURL):
		c.JSON(http.StatusBadRequest, gin.H{"error": "no spreadsheet id found in url"})
	case errors.As(err, &parseErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "could not parse file", "details": parseErr.Error()})
	case errors.As(err, &fetchErr):
		log.Warn().Err(err).Msg("remote sheet fetch failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "could not fetch sheet; make sure it is publicly accessible"})
	default:
		log.Error().Err(err).Msg("ingestion failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "ingestion failed"})
	}
}
