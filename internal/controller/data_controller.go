package controller

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"record-ingest-backend/internal/model"
	"record-ingest-backend/internal/parser"
	"record-ingest-backend/internal/service"
)

type DataController struct {
	records service.RecordService
	parser  parser.RecordParser
}

func NewDataController(records service.RecordService, parser parser.RecordParser) *DataController {
	return &DataController{
		records: records,
		parser:  parser,
	}
}

func RegisterDataRoutes(router *gin.Engine, controller *DataController) {
	router.POST("/data", controller.PostData)
}

// PostData godoc
// @Summary      Insert one record
// @Description  Stores the JSON object body as-is, without schema validation, as a single-record batch. An empty body stores an empty object.
// @Tags         data
// @Accept       json
// @Produce      json
// @Param        record  body      object  true  "Arbitrary JSON object"
// @Success      200     {object}  model.Response "Data inserted successfully"
// @Failure      400     {object}  model.Response "Body is not a JSON object"
// @Failure      500     {object}  model.ErrorResponse "Store failure"
// @Router       /data [post]
func (c *DataController) PostData(ctx *gin.Context) {
	body, err := ctx.GetRawData()
	if err != nil {
		log.Warn().Err(err).Msg("Failed to read data request body")
		ctx.JSON(http.StatusBadRequest, model.NewResponse("Invalid JSON body: "+err.Error(), nil))
		return
	}

	record := model.Record{}
	if len(bytes.TrimSpace(body)) > 0 {
		record, err = c.parser.Parse(body)
		if err != nil {
			log.Warn().Err(err).Msg("Invalid data request body")
			ctx.JSON(http.StatusBadRequest, model.NewResponse("Invalid JSON body: "+err.Error(), nil))
			return
		}
	}

	if err := c.records.InsertMany(ctx.Request.Context(), []model.Record{record}); err != nil {
		log.Error().Err(err).Msg("Error inserting data")
		ctx.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Message: "Error inserting data",
			Error:   err.Error(),
		})
		return
	}
	ctx.JSON(http.StatusOK, model.NewResponse("Data inserted successfully", nil))
}
