package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/songwish/assistant-be/middleware"
	"github.com/songwish/assistant-be/service"
	"github.com/songwish/assistant-be/types"
	"github.com/songwish/assistant-be/utils"
)

type AIHandler struct {
	assistant *service.AssistantService
}

func NewAIHandler(assistant *service.AssistantService) *AIHandler {
	return &AIHandler{
		assistant: assistant,
	}
}

// HandleQuery answers one customer question grounded in the content corpus
// and, for authenticated callers, their account data.
func (h *AIHandler) HandleQuery(c *gin.Context) {
	var req types.QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "Invalid request format"})
		return
	}
	if err := utils.ValidateQueryInput(req.Query); err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: err.Error()})
		return
	}
	req.Query = utils.SanitizeString(req.Query, utils.MaxQueryLength)

	response, err := h.assistant.Answer(c.Request.Context(), req, middleware.UserEmail(c))
	if err != nil {
		c.JSON(queryErrorStatus(err), types.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, response)
}

func queryErrorStatus(err error) int {
	switch {
	case errors.Is(err, types.ErrInvalidQuery):
		return http.StatusBadRequest
	case errors.Is(err, types.ErrProvisionFailed):
		return http.StatusServiceUnavailable
	case errors.Is(err, types.ErrNoIndex), errors.Is(err, types.ErrNoContent):
		return http.StatusInternalServerError
	case types.IsUpstreamError(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
