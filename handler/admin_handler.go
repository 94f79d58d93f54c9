package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/songwish/assistant-be/repository"
	"github.com/songwish/assistant-be/types"
)

type AdminHandler struct {
	queryLog *repository.QueryLogRepo
}

func NewAdminHandler(queryLog *repository.QueryLogRepo) *AdminHandler {
	return &AdminHandler{
		queryLog: queryLog,
	}
}

// HandleRecentQueries returns the latest logged queries, newest first.
func (h *AdminHandler) HandleRecentQueries(c *gin.Context) {
	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "50"), 10, 64)
	entries, err := h.queryLog.Recent(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, types.DataResponse{
		Status: "success",
		Data:   entries,
	})
}
