package analysis

import (
	"time"

	"complaintdesk/dashboard/internal/config"
	"complaintdesk/dashboard/internal/models"
)

// Palette is the fallback chart palette.
var Palette = []string{"#7C3AED", "#22D3EE", "#10B981", "#F59E0B", "#EF4444"}

// Colors cycles the palette to n entries, at least one.
func Colors(n int) []string {
	if n < 1 {
		n = 1
	}
	out := make([]string, n)
	for i := range out {
		out[i] = Palette[i%len(Palette)]
	}
	return out
}

// Chart is a complete chart description, rebuilt on every render.
type Chart struct {
	Type             string   `json:"type"`
	Title            string   `json:"title"`
	Labels           []string `json:"labels"`
	Data             []int    `json:"data"`
	BackgroundColors []string `json:"backgroundColors"`
	BorderColors     []string `json:"borderColors"`
	ShowLegend       bool     `json:"showLegend"`
	Fill             bool     `json:"fill,omitempty"`
}

// NormalizeChartType returns t when it is a supported chart type, bar otherwise.
func NormalizeChartType(t string) string {
	for _, ct := range config.ChartTypes {
		if ct == t {
			return t
		}
	}
	return config.DefaultChartType
}

// CategoryChart shows the category distribution for "All" and the
// tri-state status distribution of a single category otherwise.
func CategoryChart(complaints []models.Complaint, chartType, category string) Chart {
	chartType = NormalizeChartType(chartType)
	ch := Chart{Type: chartType, ShowLegend: chartType != "bar"}

	if category == "" || category == config.AllCategories {
		ch.Title = "Complaints by Category"
		for _, cc := range CategoryDistribution(complaints) {
			ch.Labels = append(ch.Labels, FormatCategoryLabel(cc.Category))
			ch.Data = append(ch.Data, cc.Count)
		}
	} else {
		cat := models.Category(category)
		ch.Title = "Status in " + FormatCategoryLabel(cat)
		for _, sc := range StatusDistribution(complaints, cat) {
			ch.Labels = append(ch.Labels, StatusText(sc.Status))
			ch.Data = append(ch.Data, sc.Count)
		}
	}
	if ch.Labels == nil {
		ch.Labels, ch.Data = []string{}, []int{}
	}

	colors := Colors(len(ch.Data))
	ch.BorderColors = colors
	if chartType == "bar" {
		ch.BackgroundColors = withAlpha(colors, "CC")
	} else {
		ch.BackgroundColors = colors
	}
	return ch
}

// StatusChart is the overall tri-state distribution pie.
func StatusChart(complaints []models.Complaint) Chart {
	ch := Chart{Type: "pie", Title: "Complaint Status Distribution", ShowLegend: true}
	for _, sc := range StatusDistribution(complaints, "") {
		ch.Labels = append(ch.Labels, StatusText(sc.Status))
		ch.Data = append(ch.Data, sc.Count)
	}
	colors := Colors(len(ch.Data))
	ch.BackgroundColors, ch.BorderColors = colors, colors
	return ch
}

// TrendChart is the "Resolved per Day" line chart.
func TrendChart(complaints []models.Complaint, days int, now time.Time, loc *time.Location) Chart {
	points := ResolutionTrend(complaints, days, now, loc)
	ch := Chart{
		Type:       "line",
		Title:      "Resolved per Day",
		Labels:     make([]string, len(points)),
		Data:       make([]int, len(points)),
		ShowLegend: true,
		Fill:       true,
	}
	for i, p := range points {
		ch.Labels[i] = p.Label
		ch.Data[i] = p.Count
	}
	c := Colors(1)[0]
	ch.BackgroundColors = []string{c + "33"}
	ch.BorderColors = []string{c}
	return ch
}

func withAlpha(colors []string, alpha string) []string {
	out := make([]string, len(colors))
	for i, c := range colors {
		out[i] = c + alpha
	}
	return out
}
