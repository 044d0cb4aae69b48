package config

import "time"

const (
	// SeenSetKey is the storage key under which the unattended SeenSet is kept.
	SeenSetKey = "admin_unattended_seen"

	// Charts
	DefaultTrendDays = 30
	MaxTrendDays     = 365
	AllCategories    = "All"
	DefaultChartType = "bar"

	// Upstream
	AuthErrorPattern       = "Not authenticated"
	GenericFailureMessage  = "Request failed"
	DefaultUpstreamTimeout = 15 * time.Second
	DefaultDepartmentPath  = "/dept/dashboard"
	DefaultLoginPath       = "/auth/login"

	// Session
	SessionCookie     = "dcs_session"
	ProfileCookie     = "dcs_profile"
	DefaultSessionTTL = 12 * time.Hour
	ProfileCookieTTL  = 5 * 365 * 24 * time.Hour

	// Alerts
	AlertChannel = "dashboard:alerts"
)

// TrendPeriods are the resolution-trend windows offered by the dashboard.
var TrendPeriods = []int{7, 30, 90}

// ChartTypes are the renderings accepted for the category chart.
var ChartTypes = []string{"bar", "line", "pie", "doughnut"}
