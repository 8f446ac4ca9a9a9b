package router

import (
	"github.com/gin-gonic/gin"
	"github.com/mitbhavsaar/smart-crm-solutions/config"
	"github.com/mitbhavsaar/smart-crm-solutions/internal/app/controller"
	"github.com/mitbhavsaar/smart-crm-solutions/internal/middleware"
)

type Router struct {
	authController         *controller.AuthController
	catalogController      *controller.CatalogController
	leadController         *controller.LeadController
	configuratorController *controller.ConfiguratorController
	uploadController       *controller.UploadController
	authMiddleware         *middleware.AuthMiddleware
	config                 *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	catalogController *controller.CatalogController,
	leadController *controller.LeadController,
	configuratorController *controller.ConfiguratorController,
	uploadController *controller.UploadController,
	authMiddleware *middleware.AuthMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:         authController,
		catalogController:      catalogController,
		leadController:         leadController,
		configuratorController: configuratorController,
		uploadController:       uploadController,
		authMiddleware:         authMiddleware,
		config:                 cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"message": "Smart CRM Solutions API is running",
		})
	})

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", r.authController.Register)
			auth.POST("/login", r.authController.Login)
			auth.POST("/logout", r.authMiddleware.Authenticate(), r.authController.Logout)
			auth.GET("/me", r.authMiddleware.Authenticate(), r.authController.GetMe)
			auth.PUT("/me", r.authMiddleware.Authenticate(), r.authController.UpdateProfile)
		}

		catalog := v1.Group("/catalog")
		catalog.Use(r.authMiddleware.Authenticate())
		{
			catalog.GET("/templates", r.catalogController.ListTemplates)
			catalog.GET("/templates/:id", r.catalogController.GetTemplate)
		}

		leads := v1.Group("/leads")
		leads.Use(r.authMiddleware.Authenticate())
		{
			leads.GET("", r.leadController.ListLeads)
			leads.POST("", r.leadController.CreateLead)
			leads.GET("/:id", r.leadController.GetLead)
			leads.PUT("/:id", r.leadController.UpdateLead)
			leads.DELETE("/:id", r.leadController.DeleteLead)
			leads.GET("/:id/lines", r.leadController.ListMaterialLines)
			leads.DELETE("/:id/lines/:lineId", r.leadController.RemoveMaterialLine)
			leads.GET("/:id/export", r.leadController.ExportMaterialLines)
		}

		configurator := v1.Group("/configurator/sessions")
		configurator.Use(r.authMiddleware.Authenticate())
		{
			configurator.POST("", r.configuratorController.OpenSession)
			configurator.GET("/:id", r.configuratorController.GetSession)
			configurator.POST("/:id/select", r.configuratorController.SelectValue)
			configurator.POST("/:id/custom-value", r.configuratorController.SetCustomValue)
			configurator.POST("/:id/quantity", r.configuratorController.SetQuantity)
			configurator.POST("/:id/products", r.configuratorController.AttachProduct)
			configurator.DELETE("/:id/products/:templateId", r.configuratorController.DetachProduct)
			configurator.POST("/:id/file", r.configuratorController.SetFile)
			configurator.POST("/:id/reference", r.configuratorController.SetReference)
			configurator.GET("/:id/validate", r.configuratorController.Validate)
			configurator.POST("/:id/submit", r.configuratorController.Submit)
			configurator.DELETE("/:id", r.configuratorController.Discard)
			configurator.GET("/:id/ws", r.configuratorController.Watch)
		}

		uploads := v1.Group("/uploads")
		uploads.Use(r.authMiddleware.Authenticate())
		{
			uploads.POST("/presigned-url", r.uploadController.GeneratePresignedURL)
		}
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
