package handlers

import (
	"net/http"

	"timecircuits/internal/logger"
	"timecircuits/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
	metrics  http.Handler
}

// NewHandler constructs a new HTTP handler with dependencies. A nil log
// discards output; a nil metrics handler leaves /metrics unregistered.
func NewHandler(services *service.Service, log *logger.Logger, metrics http.Handler) *Handler {
	if log == nil {
		log = logger.Nop()
	}
	return &Handler{services: services, log: log, metrics: metrics}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/health", h.health)
	if h.metrics != nil {
		router.GET("/metrics", gin.WrapH(h.metrics))
	}

	h.registerAuthRoutes(router)
	h.registerAPIRoutes(router)

	// Snapshot stream on the same port.
	router.GET("/ws", h.wsConnect)

	return router
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/sign-up", h.signUp)
		auth.POST("/sign-in", h.signIn)
	}
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1", h.operatorIdMiddleware)
	{
		h.registerPanelRoutes(api)
		h.registerLogRoutes(api)
	}
}

func (h *Handler) registerPanelRoutes(api *gin.RouterGroup) {
	api.GET("/clock/state", h.getState)

	keypad := api.Group("/keypad")
	{
		// Body example: {"kind":"key_pressed","key":"7"}
		keypad.POST("/event", h.keypadEvent)
		// Body example: {"digits":"102619850121","enter":true}
		keypad.POST("/sequence", h.keypadSequence)
	}

	travel := api.Group("/travel")
	{
		travel.POST("", h.travel)
		travel.POST("/return", h.returnToPresent)
	}

	api.POST("/power", h.setPower)
	// Body example: {"hour":7,"minute":30,"weekday":"workdays"}
	api.PUT("/alarm", h.setAlarm)
}

func (h *Handler) registerLogRoutes(api *gin.RouterGroup) {
	logs := api.Group("/logs")
	{
		logs.GET("/", h.getLogs)
	}
}
