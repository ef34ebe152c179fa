package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"medexa/internal/domain"
	"medexa/internal/service"
)

// SessionStore is the subset of the session store the HTTP layer drives.
type SessionStore interface {
	Register(ctx context.Context, email, password, name string) (domain.Session, error)
	Authenticate(ctx context.Context, email, password string) (domain.Session, error)
	ClearSession(ctx context.Context) error
	Current(ctx context.Context) (domain.Session, bool, error)
	Lookup(ctx context.Context, uid string) (domain.Session, error)
}

// TokenIssuer signs and verifies bearer tokens.
type TokenIssuer interface {
	Issue(session domain.Session) (string, error)
	Verify(token string) (string, error)
}

// Handler wires HTTP routes to the session store and record services.
type Handler struct {
	sessions     SessionStore
	tokens       TokenIssuer
	medicines    service.MedicineService
	healthLogs   service.HealthLogService
	appointments service.AppointmentService
	logger       *logrus.Logger
}

func NewHandler(
	sessions SessionStore,
	tokens TokenIssuer,
	medicines service.MedicineService,
	healthLogs service.HealthLogService,
	appointments service.AppointmentService,
	logger *logrus.Logger,
) *Handler {
	if logger == nil {
		logger = logrus.New()
	}
	return &Handler{
		sessions:     sessions,
		tokens:       tokens,
		medicines:    medicines,
		healthLogs:   healthLogs,
		appointments: appointments,
		logger:       logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware())

	api := router.Group("/api")
	{
		api.GET("/health", func(ctx *gin.Context) {
			ctx.JSON(http.StatusOK, gin.H{"ok": "ok"})
		})

		authGroup := api.Group("/auth")
		authGroup.POST("/signup", h.signUp)
		authGroup.POST("/login", h.signIn)
		authGroup.POST("/logout", h.signOut)
		authGroup.GET("/session", h.currentSession)

		protected := api.Group("", h.requireAuth())
		protected.GET("/medicines", h.listMedicines)
		protected.POST("/medicines", h.createMedicine)
		protected.GET("/medicines/:id", h.getMedicine)
		protected.DELETE("/medicines/:id", h.deleteMedicine)
		protected.PUT("/medicines/:id/times", h.replaceMedicineTimes)

		protected.GET("/health-logs", h.listHealthLogs)
		protected.POST("/health-logs", h.createHealthLog)
		protected.DELETE("/health-logs/:id", h.deleteHealthLog)

		protected.GET("/appointments", h.listAppointments)
		protected.POST("/appointments", h.createAppointment)
		protected.PATCH("/appointments/:id", h.updateAppointment)
		protected.DELETE("/appointments/:id", h.deleteAppointment)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// writeError maps service errors onto status codes.
func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		h.logger.WithError(err).Errorf("%s %s", c.Request.Method, c.FullPath())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}
