// Package handler is the HTTP adapter of the dashboard: it turns browser
// requests into controller calls and controller state into JSON.
package handler

import (
	"net/http"
	"time"

	"complaintdesk/dashboard/internal/alerthub"
	"complaintdesk/dashboard/internal/complaint"
	"complaintdesk/dashboard/internal/config"
	"complaintdesk/dashboard/internal/models"
	"complaintdesk/dashboard/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const sessionKey = "session"

// Handler holds the shared services behind every route.
type Handler struct {
	Cfg      *config.Config
	Issuer   *session.Issuer
	Sessions *session.Registry
	Hub      *alerthub.Manager
	Notifier *complaint.Notifier
	Location *time.Location
	Log      *logrus.Entry
}

func NewHandler(cfg *config.Config, issuer *session.Issuer, sessions *session.Registry, hub *alerthub.Manager, notifier *complaint.Notifier, log *logrus.Entry) *Handler {
	loc, err := cfg.Location()
	if err != nil {
		loc = time.Local
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Handler{
		Cfg:      cfg,
		Issuer:   issuer,
		Sessions: sessions,
		Hub:      hub,
		Notifier: notifier,
		Location: loc,
		Log:      log.WithField("component", "http"),
	}
}

// Register mounts every route on r.
func (h *Handler) Register(r gin.IRouter) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	s := r.Group("/session")
	s.POST("/login", h.Login)
	s.POST("/logout", h.Logout)
	s.GET("/me", h.requireSession, h.Me)

	r.GET("/dashboard", h.Dashboard)

	student := r.Group("/api/student", h.requireSession, h.requireRole(models.RoleStudent))
	student.GET("/complaints", h.StudentComplaints)
	student.POST("/complaints", h.SubmitComplaint)

	admin := r.Group("/api/admin", h.requireSession, h.requireRole(models.RoleAdmin))
	admin.GET("/dashboard", h.AdminDashboard)
	admin.GET("/charts", h.AdminCharts)
	admin.GET("/complaints/:id", h.AdminComplaint)
	admin.POST("/push/:id", h.AdminPush)
	admin.GET("/export.xlsx", h.AdminExport)

	r.GET("/ws/alerts", h.requireSession, h.requireRole(models.RoleAdmin), h.ServeWebSocket)
}

// Router builds a gin engine with the default middleware and every route.
func (h *Handler) Router() *gin.Engine {
	r := gin.Default()
	h.Register(r)
	return r
}

func (h *Handler) unauthenticated(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error":    config.AuthErrorPattern,
		"redirect": h.Cfg.LoginURL,
	})
}
