package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "taxdocs/docs"
	"taxdocs/internal/handler"
	"taxdocs/internal/metrics"
	"taxdocs/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
// m may be nil, in which case /metrics is not served.
func Setup(
	log *zap.Logger,
	m *metrics.Metrics,
	allowedOrigins []string,
	documentH *handler.DocumentHandler,
	requirementH *handler.RequirementHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(log))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(log))
	r.Use(middleware.CORS(allowedOrigins))
	if m != nil {
		r.Use(m.GinMiddleware())
		r.GET("/metrics", gin.WrapH(m.Handler()))
	}

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	// API docs
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")

	requirements := v1.Group("/requirements")
	requirements.POST("/:form_type", requirementH.Resolve)
	requirements.GET("/:form_type/issues", requirementH.Issues)

	documents := v1.Group("/documents")
	documents.POST("", documentH.Create)
	documents.GET("", documentH.List)
	documents.GET("/:id", documentH.GetByID)
	documents.POST("/:id/validate", documentH.Validate)
	documents.POST("/:id/transitions", documentH.Transition)
	documents.GET("/:id/checklist", documentH.Checklist)

	return r
}
