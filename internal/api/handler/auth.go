package handler

import (
	"errors"
	"net/http"

	"complaintdesk/dashboard/internal/apiclient"
	"complaintdesk/dashboard/internal/config"
	"complaintdesk/dashboard/internal/dashboard"
	"complaintdesk/dashboard/internal/models"
	"complaintdesk/dashboard/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role"`
}

// Login signs in upstream and opens a dashboard session.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Email and password are required"})
		return
	}
	role := models.ParseRole(req.Role)
	if role == "" {
		role = models.RoleStudent
	}

	profile := h.profile(c)
	log := h.Log.WithField("profile", profile)

	client, err := apiclient.NewClient(h.Cfg.UpstreamURL, h.Cfg.UpstreamTimeout, log)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to create session"})
		return
	}
	user, err := client.Login(c.Request.Context(), req.Email, req.Password, role)
	if err != nil {
		status := http.StatusUnauthorized
		var apiErr *apiclient.APIError
		if !errors.As(err, &apiErr) {
			status = http.StatusBadGateway
		}
		c.JSON(status, gin.H{"success": false, "error": apiclient.Message(err)})
		return
	}

	ctrl := dashboard.NewController(client, h.Notifier, dashboard.Options{
		Profile:       profile,
		DepartmentURL: h.Cfg.DepartmentURL,
		LoginURL:      h.Cfg.LoginURL,
		Location:      h.Location,
		Log:           log,
	})
	route := ctrl.Resolve(c.Request.Context())
	if route.Kind == dashboard.RouteLogin {
		h.unauthenticated(c)
		return
	}
	if st := ctrl.State(); st.User != nil {
		user = st.User
	}

	token, claims, err := h.Issuer.Issue(profile, *user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to create token"})
		return
	}
	h.Sessions.Put(claims.SessionID, &session.Entry{
		Profile:    profile,
		User:       *user,
		Client:     client,
		Controller: ctrl,
		ExpiresAt:  claims.ExpiresAt.Time,
	})
	h.setCookie(c, config.SessionCookie, token, int(h.Issuer.TTL().Seconds()))

	log.WithFields(logrus.Fields{"email": user.Email, "role": user.Role}).Info("dashboard session opened")
	c.JSON(http.StatusOK, gin.H{"success": true, "user": user, "redirect": redirectFor(route)})
}

// Logout ends the upstream session and forgets the dashboard one. The
// profile cookie stays so the SeenSet survives.
func (h *Handler) Logout(c *gin.Context) {
	if entry, id, ok := h.lookup(c); ok {
		if err := entry.Client.Logout(c.Request.Context()); err != nil {
			h.Log.WithError(err).Debug("upstream logout failed")
		}
		h.Sessions.Delete(id)
	}
	h.setCookie(c, config.SessionCookie, "", -1)
	c.JSON(http.StatusOK, gin.H{"success": true, "redirect": h.Cfg.LoginURL})
}

// Me returns the signed-in user as the complaints server sees it.
func (h *Handler) Me(c *gin.Context) {
	entry := c.MustGet(sessionKey).(*session.Entry)
	user, err := entry.Client.Me(c.Request.Context())
	if err != nil {
		if apiclient.IsUnauthenticated(err) {
			h.forget(c)
			h.unauthenticated(c)
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": apiclient.Message(err)})
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) requireSession(c *gin.Context) {
	entry, _, ok := h.lookup(c)
	if !ok {
		h.unauthenticated(c)
		return
	}
	c.Set(sessionKey, entry)
	c.Next()
}

func (h *Handler) requireRole(role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		entry := c.MustGet(sessionKey).(*session.Entry)
		if entry.User.Role != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
			return
		}
		c.Next()
	}
}

func (h *Handler) lookup(c *gin.Context) (*session.Entry, string, bool) {
	token, err := c.Cookie(config.SessionCookie)
	if err != nil || token == "" {
		return nil, "", false
	}
	claims, err := h.Issuer.Parse(token)
	if err != nil {
		return nil, "", false
	}
	entry, ok := h.Sessions.Get(claims.SessionID)
	if !ok {
		return nil, "", false
	}
	return entry, claims.SessionID, true
}

// forget drops the caller's session after the server rejected it.
func (h *Handler) forget(c *gin.Context) {
	if _, id, ok := h.lookup(c); ok {
		h.Sessions.Delete(id)
	}
	h.setCookie(c, config.SessionCookie, "", -1)
}

// profile returns the browser profile ID, issuing one on first visit.
func (h *Handler) profile(c *gin.Context) string {
	if p, err := c.Cookie(config.ProfileCookie); err == nil && session.ValidProfile(p) {
		return p
	}
	p := session.NewID()
	h.setCookie(c, config.ProfileCookie, p, int(config.ProfileCookieTTL.Seconds()))
	return p
}

func (h *Handler) setCookie(c *gin.Context, name, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, maxAge, "/", "", c.Request.TLS != nil, true)
}

func redirectFor(r dashboard.Route) string {
	if r.URL != "" {
		return r.URL
	}
	return "/dashboard"
}
