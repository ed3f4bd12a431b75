package restapi

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRouter configures and returns the Gin router.
func SetupRouter(handler *PortfolioHandler) *gin.Engine {
	router := gin.Default()
	router.Use(cors.Default())

	v1 := router.Group("/api/v1")
	{
		v1.GET("/portfolio", handler.GetTrackedPortfoliosHandler)
		v1.POST("/portfolio", handler.GetPortfoliosHandler)
		v1.POST("/nfts", handler.GetNFTsHandler)
		v1.POST("/summary", handler.GetSummaryHandler)
		v1.POST("/burn", handler.BuildBurnTransactionHandler)
	}

	router.GET("/health", HealthHandler)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}
