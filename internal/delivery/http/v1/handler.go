package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-tasks-admin/internal/admin"
	"github.com/adanyl0v/go-tasks-admin/internal/services"
)

type Handler interface {
	HandleHealth(c *gin.Context)

	HandleLogin(c *gin.Context)
	HandleLogout(c *gin.Context)
	HandleAuthMiddleware(c *gin.Context)

	HandleIndex(c *gin.Context)
	HandleResourceMiddleware(c *gin.Context)
	HandleListRecords(c *gin.Context)
	HandleCreateRecord(c *gin.Context)
	HandleGetRecord(c *gin.Context)
	HandleUpdateRecord(c *gin.Context)
	HandleDeleteRecord(c *gin.Context)
}

type handlerImpl struct {
	logger   zerolog.Logger
	auth     services.AuthService
	registry *admin.Registry
}

func New(
	logger zerolog.Logger,
	authService services.AuthService,
	registry *admin.Registry,
) Handler {
	return &handlerImpl{
		logger:   logger,
		auth:     authService,
		registry: registry,
	}
}

// RegisterRoutes mounts the admin interface on router.
func RegisterRoutes(router gin.IRouter, h Handler) {
	router.GET("/healthz", h.HandleHealth)

	adminRouter := router.Group("/admin")

	authRouter := adminRouter.Group("/auth")
	authRouter.POST("/login", h.HandleLogin)
	authRouter.POST("/logout", h.HandleAuthMiddleware, h.HandleLogout)

	resourcesRouter := adminRouter.Group("/resources", h.HandleAuthMiddleware)
	resourcesRouter.GET("", h.HandleIndex)

	recordsRouter := resourcesRouter.Group("/:model", h.HandleResourceMiddleware)
	recordsRouter.GET("", h.HandleListRecords)
	recordsRouter.POST("", h.HandleCreateRecord)
	recordsRouter.GET("/:id", h.HandleGetRecord)
	recordsRouter.PATCH("/:id", h.HandleUpdateRecord)
	recordsRouter.PUT("/:id", h.HandleUpdateRecord)
	recordsRouter.DELETE("/:id", h.HandleDeleteRecord)
}
