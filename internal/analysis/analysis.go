// Package analysis turns a complaint snapshot into dashboard figures: the
// stats cards, the category and status distributions and the resolution
// trend. Every function is pure and recomputes from its input.
package analysis

import (
	"sort"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"complaintdesk/dashboard/internal/config"
	"complaintdesk/dashboard/internal/models"
)

// Stats are the counters shown above the admin list.
type Stats struct {
	Total      int `json:"total"`
	Pending    int `json:"pending"`
	InProgress int `json:"inProgress"`
	Resolved   int `json:"resolved"`
}

// Bucket collapses a status into pending, in-progress or resolved.
func Bucket(s models.Status) models.Status {
	switch s {
	case models.StatusInProgress, models.StatusSentToDept, models.StatusDeptConfirmed:
		return models.StatusInProgress
	case models.StatusResolved:
		return models.StatusResolved
	default:
		return models.StatusPending
	}
}

// Buckets is the order of the tri-state status charts.
var Buckets = []models.Status{models.StatusPending, models.StatusInProgress, models.StatusResolved}

func ComputeStats(complaints []models.Complaint) Stats {
	st := Stats{Total: len(complaints)}
	for _, c := range complaints {
		switch Bucket(c.Status) {
		case models.StatusPending:
			st.Pending++
		case models.StatusInProgress:
			st.InProgress++
		case models.StatusResolved:
			st.Resolved++
		}
	}
	return st
}

// CategoryCount is one slice of the category distribution.
type CategoryCount struct {
	Category models.Category `json:"category"`
	Count    int             `json:"count"`
}

// CategoryDistribution counts complaints per category in order of first
// appearance. Empty categories count as "other".
func CategoryDistribution(complaints []models.Complaint) []CategoryCount {
	out := make([]CategoryCount, 0)
	index := make(map[models.Category]int)
	for _, c := range complaints {
		cat := c.Category.OrOther()
		i, ok := index[cat]
		if !ok {
			i = len(out)
			index[cat] = i
			out = append(out, CategoryCount{Category: cat})
		}
		out[i].Count++
	}
	return out
}

// StatusCount is one bucket of a tri-state status distribution.
type StatusCount struct {
	Status models.Status `json:"status"`
	Count  int           `json:"count"`
}

// StatusDistribution counts the complaints of one category into the three
// buckets. An empty category or "All" means every complaint.
func StatusDistribution(complaints []models.Complaint, category models.Category) []StatusCount {
	counts := make(map[models.Status]int, len(Buckets))
	all := category == "" || string(category) == config.AllCategories
	for _, c := range complaints {
		if !all && c.Category.OrOther() != category {
			continue
		}
		counts[Bucket(c.Status)]++
	}
	out := make([]StatusCount, len(Buckets))
	for i, b := range Buckets {
		out[i] = StatusCount{Status: b, Count: counts[b]}
	}
	return out
}

// CategoryOptions lists "All" followed by the sorted categories present in
// the snapshot.
func CategoryOptions(complaints []models.Complaint) []string {
	seen := make(map[string]struct{})
	var cats []string
	for _, c := range complaints {
		cat := string(c.Category.OrOther())
		if _, ok := seen[cat]; ok {
			continue
		}
		seen[cat] = struct{}{}
		cats = append(cats, cat)
	}
	sort.Strings(cats)
	return append([]string{config.AllCategories}, cats...)
}

// HasCategory reports whether the option list offers category.
func HasCategory(options []string, category string) bool {
	for _, o := range options {
		if o == category {
			return true
		}
	}
	return false
}

// TrendPoint is one day of the resolution trend.
type TrendPoint struct {
	Day   time.Time `json:"day"`
	Label string    `json:"label"`
	Count int       `json:"count"`
}

// ResolutionTrend counts resolutions per local day over the days ending
// today, inclusive. Every day is present, zero when nothing was resolved.
// days below 1 use the default window and the window never exceeds a year.
func ResolutionTrend(complaints []models.Complaint, days int, now time.Time, loc *time.Location) []TrendPoint {
	days = TrendDays(days)
	if loc == nil {
		loc = time.Local
	}
	n := now.In(loc)
	end := time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, loc)
	start := end.AddDate(0, 0, -(days - 1))

	points := make([]TrendPoint, days)
	index := make(map[string]int, days)
	for i := range points {
		d := start.AddDate(0, 0, i)
		points[i] = TrendPoint{Day: d, Label: d.Format("Jan 2")}
		index[d.Format("2006-01-02")] = i
	}

	for _, c := range complaints {
		day, ok := c.ResolvedAt.Day(loc)
		if !ok || day.Before(start) || day.After(end) {
			continue
		}
		if i, ok := index[day.Format("2006-01-02")]; ok {
			points[i].Count++
		}
	}
	return points
}

// TrendDays bounds a requested trend window.
func TrendDays(days int) int {
	switch {
	case days < 1:
		return config.DefaultTrendDays
	case days > config.MaxTrendDays:
		return config.MaxTrendDays
	}
	return days
}

// StatusText is the display text of a status.
func StatusText(s models.Status) string {
	switch s {
	case models.StatusPending:
		return "Pending"
	case models.StatusInProgress:
		return "In Progress"
	case models.StatusSentToDept:
		return "Sent to Dept"
	case models.StatusDeptConfirmed:
		return "Department Confirmed"
	case models.StatusResolved:
		return "Resolved"
	default:
		return "Unknown"
	}
}

// FormatCategoryLabel turns "food-services" into "Food Services".
func FormatCategoryLabel(c models.Category) string {
	s := strings.Replace(string(c.OrOther()), "-", " ", 1)
	words := strings.Fields(s)
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}
