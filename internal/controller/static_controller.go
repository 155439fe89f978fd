package controller

import (
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"record-ingest-backend/internal/model"
)

type StaticController struct {
	dir        string
	fileServer http.Handler
}

func NewStaticController(dir string) *StaticController {
	return &StaticController{
		dir:        dir,
		fileServer: http.FileServer(gin.Dir(dir, false)),
	}
}

// RegisterStaticRoutes serves index.html on "/" and every other unmatched GET
// or HEAD path from the static directory.
func RegisterStaticRoutes(router *gin.Engine, controller *StaticController) {
	router.GET("/", controller.ServeIndex)
	router.NoRoute(controller.ServeAsset)
}

func (c *StaticController) ServeIndex(ctx *gin.Context) {
	ctx.File(filepath.Join(c.dir, "index.html"))
}

func (c *StaticController) ServeAsset(ctx *gin.Context) {
	if ctx.Request.Method != http.MethodGet && ctx.Request.Method != http.MethodHead {
		ctx.JSON(http.StatusNotFound, model.NewResponse("Not found", nil))
		return
	}
	c.fileServer.ServeHTTP(ctx.Writer, ctx.Request)
}
