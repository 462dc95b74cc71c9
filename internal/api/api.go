package api

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/cdirx/decision-tool/internal/api/handlers"
	"github.com/cdirx/decision-tool/internal/api/middleware"
	"github.com/cdirx/decision-tool/internal/service"
)

type Services struct {
	Decision *service.DecisionService
	Upload   *service.UploadService
	Logs     *service.LogService
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	router.Use(
		middleware.Logger(),
		middleware.Recovery(),
	)

	corsConfig := cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://127.0.0.1:3000"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalized, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalized) > 0 {
			corsConfig.AllowOrigins = normalized
		}
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	apiGroup := router.Group("/api/v1")

	if services != nil {
		if services.Decision != nil {
			decisionHandler := handlers.NewDecisionHandler(services.Decision)
			profitGroup := apiGroup.Group("/profit")
			{
				profitGroup.GET("/insurances", decisionHandler.GetInsurances)
				profitGroup.GET("/drugs", decisionHandler.GetDrugs)
			}
			apiGroup.POST("/decisions", decisionHandler.Submit)
		}

		if services.Upload != nil {
			uploadHandler := handlers.NewUploadHandler(services.Upload)
			uploadGroup := apiGroup.Group("/uploads")
			{
				uploadGroup.POST("", uploadHandler.UploadFile)
				uploadGroup.POST("/sheet", uploadHandler.ImportSharedSheet)
				uploadGroup.GET("/:id/values", uploadHandler.GetValues)
				uploadGroup.POST("/:id/decision", uploadHandler.Decide)
			}
		}

		if services.Logs != nil {
			logsHandler := handlers.NewLogsHandler(services.Logs)
			logsGroup := apiGroup.Group("/logs")
			{
				logsGroup.GET("", logsHandler.List)
				logsGroup.GET("/analytics", logsHandler.Analytics)
			}
		}
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		for _, part := range strings.Split(origin, ",") {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
