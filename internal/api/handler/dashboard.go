package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"complaintdesk/dashboard/internal/analysis"
	"complaintdesk/dashboard/internal/dashboard"
	"complaintdesk/dashboard/internal/models"
	"complaintdesk/dashboard/internal/session"

	"github.com/gin-gonic/gin"
)

// Dashboard is the role gate: login, the student view, the admin view or a
// redirect to the department page.
func (h *Handler) Dashboard(c *gin.Context) {
	entry, _, ok := h.lookup(c)
	if !ok {
		c.Redirect(http.StatusFound, h.Cfg.LoginURL)
		return
	}
	ctx := c.Request.Context()
	route := entry.Controller.Resolve(ctx)

	switch route.Kind {
	case dashboard.RouteDepartment:
		c.Redirect(http.StatusFound, route.URL)
	case dashboard.RouteStudent:
		st, err := entry.Controller.LoadStudent(ctx)
		h.respondState(c, st, err)
	case dashboard.RouteAdmin:
		st, err := entry.Controller.LoadAdmin(ctx)
		h.respondState(c, st, err)
	default:
		h.forget(c)
		c.Redirect(http.StatusFound, h.Cfg.LoginURL)
	}
}

func (h *Handler) StudentComplaints(c *gin.Context) {
	entry := c.MustGet(sessionKey).(*session.Entry)
	st, err := entry.Controller.LoadStudent(c.Request.Context())
	h.respondState(c, st, err)
}

func (h *Handler) SubmitComplaint(c *gin.Context) {
	entry := c.MustGet(sessionKey).(*session.Entry)
	var in models.NewComplaint
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid complaint payload"})
		return
	}
	st, err := entry.Controller.Submit(c.Request.Context(), in)
	h.respondState(c, st, err)
}

func (h *Handler) AdminDashboard(c *gin.Context) {
	entry := c.MustGet(sessionKey).(*session.Entry)
	st, err := entry.Controller.LoadAdmin(c.Request.Context())
	h.respondState(c, st, err)
}

// AdminCharts applies the chart controls present in the query and returns
// the rebuilt charts. No upstream call is made.
func (h *Handler) AdminCharts(c *gin.Context) {
	entry := c.MustGet(sessionKey).(*session.Entry)
	ctrl := entry.Controller

	st := ctrl.State()
	if v, ok := c.GetQuery("type"); ok {
		st = ctrl.Apply(dashboard.Event{Kind: dashboard.EventChartType, Value: v})
	}
	if v, ok := c.GetQuery("category"); ok {
		st = ctrl.Apply(dashboard.Event{Kind: dashboard.EventCategory, Value: v})
	}
	if v, ok := c.GetQuery("days"); ok {
		st = ctrl.Apply(dashboard.Event{Kind: dashboard.EventPeriod, Value: v})
	}
	if st.Charts == nil {
		st = ctrl.Apply(dashboard.Event{})
	}
	c.JSON(http.StatusOK, gin.H{
		"filter":          st.Filter,
		"categoryOptions": st.CategoryOptions,
		"trendPeriods":    st.TrendPeriods,
		"charts":          st.Charts,
	})
}

func (h *Handler) AdminComplaint(c *gin.Context) {
	entry := c.MustGet(sessionKey).(*session.Entry)
	d, ok := entry.Controller.Complaint(models.ID(c.Param("id")))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Complaint not found"})
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *Handler) AdminPush(c *gin.Context) {
	entry := c.MustGet(sessionKey).(*session.Entry)
	st, err := entry.Controller.Push(c.Request.Context(), models.ID(c.Param("id")))
	h.respondState(c, st, err)
}

// AdminExport downloads the currently loaded snapshot as a workbook.
func (h *Handler) AdminExport(c *gin.Context) {
	entry := c.MustGet(sessionKey).(*session.Entry)
	st := entry.Controller.State()
	if st.Route.Kind != dashboard.RouteAdmin {
		c.JSON(http.StatusConflict, gin.H{"error": "Load the dashboard first"})
		return
	}
	now := time.Now().In(h.Location)
	name := fmt.Sprintf("complaints-%s.xlsx", now.Format("2006-01-02"))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Status(http.StatusOK)
	if err := analysis.WriteWorkbook(c.Writer, st.Complaints, now); err != nil {
		h.Log.WithError(err).Error("export failed")
	}
}

// respondState maps controller results onto HTTP. Authentication failures
// answer 401 with the login URL; other upstream failures are already folded
// into the state's alert.
func (h *Handler) respondState(c *gin.Context, st dashboard.State, err error) {
	var vErr *dashboard.ValidationError
	switch {
	case err == nil:
		c.JSON(http.StatusOK, st)
	case errors.Is(err, dashboard.ErrUnauthenticated):
		h.forget(c)
		h.unauthenticated(c)
	case errors.As(err, &vErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": vErr.Message, "field": vErr.Field})
	default:
		h.Log.WithError(err).Error("dashboard request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
	}
}
