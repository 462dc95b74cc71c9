package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/cdirx/decision-tool/internal/domain"
	"github.com/cdirx/decision-tool/internal/service"
)

type LogsHandler struct {
	logService *service.LogService
}

func NewLogsHandler(logService *service.LogService) *LogsHandler {
	return &LogsHandler{logService: logService}
}

// List returns a filtered, sorted page of decision logs.
func (h *LogsHandler) List(c *gin.Context) {
	filter := logFilterFromQuery(c)

	page, err := h.logService.List(c.Request.Context(), filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to list decision logs")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list decision logs"})
		return
	}

	c.JSON(http.StatusOK, page)
}

// Analytics returns the aggregate summary over the filtered logs.
func (h *LogsHandler) Analytics(c *gin.Context) {
	filter := logFilterFromQuery(c)

	summary, err := h.logService.Summary(c.Request.Context(), filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to build analytics summary")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build analytics summary"})
		return
	}

	c.JSON(http.StatusOK, summary)
}

func logFilterFromQuery(c *gin.Context) domain.LogFilter {
	return domain.LogFilter{
		GuestName:     c.Query("guest_name"),
		Decision:      c.Query("decision"),
		DateFrom:      c.Query("date_from"),
		DateTo:        c.Query("date_to"),
		Page:          parsePositiveInt(c.Query("page"), 1),
		PageSize:      parsePositiveInt(c.Query("page_size"), 20),
		SortField:     c.Query("sort"),
		SortDirection: c.Query("order"),
	}
}

func parsePositiveInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
