package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cutquote-backend/internal/shared/server/respond"
	"cutquote-backend/internal/shared/storage/db"
)

// registerHealthRoutes attaches the /health endpoint.
func registerHealthRoutes(rg *gin.RouterGroup, deps RouterDeps) {
	rg.GET("/health", func(c *gin.Context) {
		healthHandler(c, deps)
	})
}

func healthHandler(c *gin.Context, deps RouterDeps) {
	response := gin.H{
		"status":       "running",
		"model_loaded": deps.Pricing.ModelLoaded(),
		"company":      deps.Config.CompanyName,
	}
	if info, ok := deps.Pricing.ModelInfo(); ok {
		response["model"] = info
	}
	if deps.DB != nil {
		version, err := db.SchemaVersion(c.Request.Context(), deps.DB)
		if err != nil {
			respond.Error(c, http.StatusServiceUnavailable, "database_unavailable", "database check failed", nil)
			return
		}
		response["schema_version"] = version
	}

	respond.JSON(c, http.StatusOK, response)
}
