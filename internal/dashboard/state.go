// Package dashboard holds the application state of a signed-in dashboard and
// the pure functions that render complaint snapshots into it.
package dashboard

import (
	"strconv"
	"strings"
	"time"

	"complaintdesk/dashboard/internal/analysis"
	"complaintdesk/dashboard/internal/apiclient"
	"complaintdesk/dashboard/internal/config"
	"complaintdesk/dashboard/internal/models"
)

type RouteKind string

const (
	RouteLogin      RouteKind = "login"
	RouteStudent    RouteKind = "student"
	RouteAdmin      RouteKind = "admin"
	RouteDepartment RouteKind = "department"
)

// Route is where a session belongs. URL is set for server-rendered pages.
type Route struct {
	Kind RouteKind `json:"kind"`
	URL  string    `json:"url,omitempty"`
}

// RouteFor maps a session lookup to a route. Department users always leave
// for the server-rendered page.
func RouteFor(user *models.User, err error, departmentURL, loginURL string) Route {
	if err != nil || user == nil {
		return Route{Kind: RouteLogin, URL: loginURL}
	}
	switch user.Role {
	case models.RoleStudent:
		return Route{Kind: RouteStudent}
	case models.RoleAdmin:
		return Route{Kind: RouteAdmin}
	case models.RoleDepartment:
		return Route{Kind: RouteDepartment, URL: departmentURL}
	default:
		return Route{Kind: RouteLogin, URL: loginURL}
	}
}

// Filter is the state of the analytics controls.
type Filter struct {
	ChartType string `json:"chartType"`
	Category  string `json:"category"`
	Days      int    `json:"days"`
}

func DefaultFilter() Filter {
	return Filter{ChartType: config.DefaultChartType, Category: config.AllCategories, Days: config.DefaultTrendDays}
}

// Row is one line of a complaint table.
type Row struct {
	models.Complaint
	StatusText    string `json:"statusText"`
	CategoryLabel string `json:"categoryLabel"`
	Unattended    bool   `json:"unattended"`
}

// Charts are rebuilt from scratch on every render.
type Charts struct {
	Category analysis.Chart `json:"category"`
	Status   analysis.Chart `json:"status"`
	Trend    analysis.Chart `json:"trend"`
}

// State is everything a dashboard view shows.
type State struct {
	Route           Route              `json:"route"`
	User            *models.User       `json:"user,omitempty"`
	Username        string             `json:"username,omitempty"`
	Complaints      []models.Complaint `json:"-"`
	Rows            []Row              `json:"rows"`
	Empty           bool               `json:"empty"`
	Stats           *analysis.Stats    `json:"stats,omitempty"`
	Filter          Filter             `json:"filter"`
	CategoryOptions []string           `json:"categoryOptions,omitempty"`
	TrendPeriods    []int              `json:"trendPeriods,omitempty"`
	Charts          *Charts            `json:"charts,omitempty"`
	Popup           []models.Complaint `json:"popup,omitempty"`
	Alert           string             `json:"alert,omitempty"`
}

// Detail is the read-only complaint modal.
type Detail struct {
	Complaint         models.Complaint `json:"complaint"`
	StatusText        string           `json:"statusText"`
	CategoryLabel     string           `json:"categoryLabel"`
	DepartmentStatus  string           `json:"departmentStatus"`
	DepartmentRemarks string           `json:"departmentRemarks"`
	Unattended        bool             `json:"unattended"`
	CanPush           bool             `json:"canPush"`
}

func rowsFor(complaints []models.Complaint) []Row {
	rows := make([]Row, len(complaints))
	for i, c := range complaints {
		rows[i] = Row{
			Complaint:     c,
			StatusText:    analysis.StatusText(c.Status),
			CategoryLabel: analysis.FormatCategoryLabel(c.Category),
			Unattended:    c.IsUnattended(),
		}
	}
	return rows
}

// RenderStudent shows a student's own complaints.
func RenderStudent(s State, user *models.User, complaints []models.Complaint) State {
	if complaints == nil {
		complaints = []models.Complaint{}
	}
	s.Route = Route{Kind: RouteStudent}
	s.setUser(user)
	s.Complaints = complaints
	s.Rows = rowsFor(complaints)
	s.Empty = len(complaints) == 0
	s.Stats, s.Charts, s.CategoryOptions, s.TrendPeriods, s.Popup = nil, nil, nil, nil, nil
	return s
}

// RenderAdmin shows the global list with stats and charts. The popup is
// left to the caller.
func RenderAdmin(s State, user *models.User, complaints []models.Complaint, now time.Time, loc *time.Location) State {
	if complaints == nil {
		complaints = []models.Complaint{}
	}
	s.Route = Route{Kind: RouteAdmin}
	s.setUser(user)
	s.Complaints = complaints
	s.Rows = rowsFor(complaints)
	s.Empty = len(complaints) == 0
	st := analysis.ComputeStats(complaints)
	s.Stats = &st
	s.TrendPeriods = config.TrendPeriods
	if s.Filter == (Filter{}) {
		s.Filter = DefaultFilter()
	}
	return RenderCharts(s, now, loc)
}

// RenderCharts rebuilds the category options and every chart from the held
// snapshot. A selected category that is gone falls back to "All".
func RenderCharts(s State, now time.Time, loc *time.Location) State {
	s.Filter.ChartType = analysis.NormalizeChartType(s.Filter.ChartType)
	s.Filter.Days = analysis.TrendDays(s.Filter.Days)
	s.CategoryOptions = analysis.CategoryOptions(s.Complaints)
	if !analysis.HasCategory(s.CategoryOptions, s.Filter.Category) {
		s.Filter.Category = config.AllCategories
	}
	s.Charts = &Charts{
		Category: analysis.CategoryChart(s.Complaints, s.Filter.ChartType, s.Filter.Category),
		Status:   analysis.StatusChart(s.Complaints),
		Trend:    analysis.TrendChart(s.Complaints, s.Filter.Days, now, loc),
	}
	return s
}

// Reset empties the list after a failed load and shows the failure.
func Reset(s State, err error) State {
	s.Complaints = []models.Complaint{}
	s.Rows = []Row{}
	s.Empty = true
	s.Popup = nil
	if s.Stats != nil {
		s.Stats = &analysis.Stats{}
	}
	s.Alert = apiclient.Message(err)
	if strings.TrimSpace(s.Alert) == "" {
		s.Alert = config.GenericFailureMessage
	}
	return s
}

type EventKind string

const (
	EventChartType EventKind = "chartType"
	EventCategory  EventKind = "category"
	EventPeriod    EventKind = "period"
)

// Event is a change of one analytics control.
type Event struct {
	Kind  EventKind
	Value string
}

// Update applies an event and re-renders the charts without any network call.
func Update(s State, ev Event, now time.Time, loc *time.Location) State {
	switch ev.Kind {
	case EventChartType:
		s.Filter.ChartType = ev.Value
	case EventCategory:
		s.Filter.Category = ev.Value
		if s.Filter.Category == "" {
			s.Filter.Category = config.AllCategories
		}
	case EventPeriod:
		days, err := strconv.Atoi(strings.TrimSpace(ev.Value))
		if err != nil {
			days = config.DefaultTrendDays
		}
		s.Filter.Days = days
	}
	return RenderCharts(s, now, loc)
}

// DetailOf finds a complaint in the snapshot.
func DetailOf(s State, id models.ID) (Detail, bool) {
	for _, c := range s.Complaints {
		if c.ID != id {
			continue
		}
		return Detail{
			Complaint:         c,
			StatusText:        analysis.StatusText(c.Status),
			CategoryLabel:     analysis.FormatCategoryLabel(c.Category),
			DepartmentStatus:  c.DeptStatus(),
			DepartmentRemarks: c.DepartmentRemarks,
			Unattended:        c.IsUnattended(),
			CanPush:           s.Route.Kind == RouteAdmin && c.IsUnattended(),
		}, true
	}
	return Detail{}, false
}

func (s *State) setUser(user *models.User) {
	if user == nil {
		return
	}
	u := *user
	s.User = &u
	s.Username = u.DisplayName()
}
