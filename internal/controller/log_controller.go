package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"record-ingest-backend/internal/service"
)

type LogController struct {
	outcomes service.OutcomeService
}

func NewLogController(outcomes service.OutcomeService) *LogController {
	return &LogController{
		outcomes: outcomes,
	}
}

func RegisterLogRoutes(router *gin.Engine, controller *LogController) {
	router.GET("/logs", controller.GetLogs)
}

// GetLogs godoc
// @Summary      List operation outcomes
// @Description  Returns every outcome entry recorded since process start, in completion order. When type is given only entries of that type are returned; an unknown type yields an empty list.
// @Tags         logs
// @Produce      json
// @Param        type  query     string  false  "Entry type filter (success or error)"
// @Success      200   {array}   model.LogEntry
// @Router       /logs [get]
func (c *LogController) GetLogs(ctx *gin.Context) {
	entryType := ctx.Query("type")
	ctx.JSON(http.StatusOK, c.outcomes.List(entryType))
}
