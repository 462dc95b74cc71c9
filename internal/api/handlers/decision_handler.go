package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/cdirx/decision-tool/internal/service"
)

type DecisionHandler struct {
	decisionService *service.DecisionService
}

func NewDecisionHandler(decisionService *service.DecisionService) *DecisionHandler {
	return &DecisionHandler{decisionService: decisionService}
}

// GetInsurances returns the distinct payers in the profit table.
func (h *DecisionHandler) GetInsurances(c *gin.Context) {
	insurances, err := h.decisionService.Insurances(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to fetch insurances")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch insurances"})
		return
	}
	c.JSON(http.StatusOK, insurances)
}

// GetDrugs returns the drugs covered by one payer.
func (h *DecisionHandler) GetDrugs(c *gin.Context) {
	insurance := c.Query("insurance")
	if insurance == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "insurance parameter is required"})
		return
	}

	drugs, err := h.decisionService.Drugs(c.Request.Context(), insurance)
	if err != nil {
		log.Error().Err(err).Str("insurance", insurance).Msg("failed to fetch drugs")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch drugs"})
		return
	}
	c.JSON(http.StatusOK, drugs)
}

// Submit computes the routing decision for a guest submission and records
// the decision log.
func (h *DecisionHandler) Submit(c *gin.Context) {
	var req service.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	resp, err := h.decisionService.Submit(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}
