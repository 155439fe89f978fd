package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"record-ingest-backend/internal/service"
)

type HealthController struct {
	records service.RecordService
}

func NewHealthController(records service.RecordService) *HealthController {
	return &HealthController{
		records: records,
	}
}

func RegisterHealthRoutes(router *gin.Engine, controller *HealthController) {
	router.GET("/health", controller.GetHealth)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

type healthResponse struct {
	Status    string `json:"status"`
	Store     string `json:"store"`
	Connected bool   `json:"connected"`
}

// GetHealth godoc
// @Summary      Health check
// @Tags         health
// @Produce      json
// @Success      200  {object}  controller.healthResponse
// @Router       /health [get]
func (c *HealthController) GetHealth(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, healthResponse{
		Status:    "ok",
		Store:     c.records.StoreName(),
		Connected: c.records.StoreConnected(),
	})
}
