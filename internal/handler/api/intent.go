package api

import (
	"net/http"

	"affiliate-notify/internal/domain/intent"
	reqdto "affiliate-notify/internal/handler/dto/request"
	resdto "affiliate-notify/internal/handler/dto/response"
	"affiliate-notify/internal/handler/httperr"
	"affiliate-notify/internal/infra/metrics"

	"github.com/gin-gonic/gin"
)

type IntentHandler struct{}

func NewIntentHandler() *IntentHandler {
	return &IntentHandler{}
}

// @Summary Parse shopping intent
// @Description Preview the structured intent extracted from free text. Nothing is stored.
// @Tags intents
// @Accept json
// @Produce json
// @Param request body reqdto.ParseIntentRequest true "Text to parse"
// @Success 200 {object} resdto.ParseIntentResponse
// @Failure 400 {object} httperr.Response
// @Router /intents/parse [post]
func (h *IntentHandler) Parse(c *gin.Context) {
	var req reqdto.ParseIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}

	parsed := intent.Parse(req.Query)
	categorized := "false"
	if parsed.Category != nil {
		categorized = "true"
	}
	metrics.IntentsParsedTotal.WithLabelValues("preview", categorized).Inc()

	c.JSON(http.StatusOK, resdto.ParseIntentResponse{Query: req.Query, Intent: parsed})
}
