package handler

import (
	"github.com/gin-gonic/gin"
)

type RouterDeps struct {
	Reports *ReportHandler
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	api.GET("/report/view", deps.Reports.View)
	api.GET("/report/summary", deps.Reports.Summary)
	api.GET("/report/tags", deps.Reports.Tags)
	api.GET("/report/files/:name", deps.Reports.Download)
}
