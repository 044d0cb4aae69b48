// Package terminal renders dashboard views for the command-line client.
package terminal

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"complaintdesk/dashboard/internal/analysis"
	"complaintdesk/dashboard/internal/dashboard"
	"complaintdesk/dashboard/internal/localization"
	"complaintdesk/dashboard/internal/models"

	"github.com/fatih/color"
)

const barWidth = 30

type Renderer struct {
	Out  io.Writer
	L    *localization.Localizer
	Lang string
}

func NewRenderer(out io.Writer, l *localization.Localizer, lang string) *Renderer {
	return &Renderer{Out: out, L: l, Lang: lang}
}

func (r *Renderer) t(key string, args ...any) string {
	if len(args) == 0 {
		return r.L.GetString(r.Lang, key)
	}
	return r.L.Format(r.Lang, key, args...)
}

// StatusBadge colors a status the way the web badges do.
func StatusBadge(s models.Status) string {
	text := analysis.StatusText(s)
	switch s {
	case models.StatusResolved:
		return color.GreenString(text)
	case models.StatusInProgress, models.StatusSentToDept, models.StatusDeptConfirmed:
		return color.CyanString(text)
	default:
		return color.YellowString(text)
	}
}

// Alert prints a user-facing alert, if any.
func (r *Renderer) Alert(msg string) {
	if msg == "" {
		return
	}
	color.New(color.FgHiYellow, color.Bold).Fprintln(r.Out, "! "+msg)
}

// Error prints a failure.
func (r *Renderer) Error(err error) {
	color.New(color.FgRed).Fprintln(r.Out, "error: "+err.Error())
}

func (r *Renderer) header(s dashboard.State) {
	if s.Username != "" {
		color.New(color.FgCyan, color.Bold).Fprintln(r.Out, r.t("welcome", s.Username))
	}
}

// Student prints the student's own complaints with the server responses.
func (r *Renderer) Student(s dashboard.State) {
	r.header(s)
	r.Alert(s.Alert)
	if s.Empty {
		fmt.Fprintln(r.Out, r.t("list_empty"))
		return
	}
	tw := tabwriter.NewWriter(r.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tCATEGORY\tSTATUS\tSUBMITTED")
	for _, row := range s.Rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", row.ID, row.Title, row.CategoryLabel, StatusBadge(row.Status), row.SubmittedAt)
	}
	tw.Flush()
	for _, row := range s.Rows {
		if strings.TrimSpace(row.Response) != "" {
			fmt.Fprintf(r.Out, "  #%s %s: %s\n", row.ID, r.t("detail_response"), row.Response)
		}
	}
}

// Admin prints stats and the global list, marking unattended rows.
func (r *Renderer) Admin(s dashboard.State) {
	r.header(s)
	r.Alert(s.Alert)
	if s.Stats != nil {
		fmt.Fprintf(r.Out, "%s: %d  %s: %s  %s: %s  %s: %s\n",
			r.t("stats_total"), s.Stats.Total,
			r.t("stats_pending"), color.YellowString("%d", s.Stats.Pending),
			r.t("stats_in_progress"), color.CyanString("%d", s.Stats.InProgress),
			r.t("stats_resolved"), color.GreenString("%d", s.Stats.Resolved),
		)
	}
	if s.Empty {
		fmt.Fprintln(r.Out, r.t("list_empty"))
		return
	}
	badge := color.RedString(r.t("unattended_badge"))
	tw := tabwriter.NewWriter(r.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tCATEGORY\tSTATUS\tSTUDENT\tDEPT\t")
	for _, row := range s.Rows {
		flag := ""
		if row.Unattended {
			flag = badge
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			row.ID, row.Title, row.CategoryLabel, StatusBadge(row.Status), row.StudentEmail, row.DeptStatus(), flag)
	}
	tw.Flush()
}

// Charts draws the category and trend charts as horizontal bars.
func (r *Renderer) Charts(s dashboard.State) {
	if s.Charts == nil {
		return
	}
	r.chart(s.Charts.Category)
	r.chart(s.Charts.Status)
	r.chart(s.Charts.Trend)
}

func (r *Renderer) chart(ch analysis.Chart) {
	color.New(color.Bold).Fprintln(r.Out, ch.Title)
	peak, width := 0, 0
	for i, v := range ch.Data {
		if v > peak {
			peak = v
		}
		if len(ch.Labels[i]) > width {
			width = len(ch.Labels[i])
		}
	}
	bar := color.New(color.FgMagenta)
	for i, v := range ch.Data {
		n := 0
		if peak > 0 {
			n = v * barWidth / peak
		}
		fmt.Fprintf(r.Out, "  %-*s ", width, ch.Labels[i])
		bar.Fprint(r.Out, strings.Repeat("█", n))
		fmt.Fprintf(r.Out, " %d\n", v)
	}
}

// Detail prints the read-only complaint view.
func (r *Renderer) Detail(d dashboard.Detail) {
	c := d.Complaint
	color.New(color.Bold).Fprintf(r.Out, "#%s %s\n", c.ID, c.Title)
	fmt.Fprintf(r.Out, "%s\n\n", c.Description)
	fmt.Fprintf(r.Out, "%s: %s\n", r.t("detail_status"), StatusBadge(c.Status))
	fmt.Fprintf(r.Out, "%s: %s\n", r.t("detail_department_status"), d.DepartmentStatus)
	if d.DepartmentRemarks != "" {
		fmt.Fprintf(r.Out, "%s: %s\n", r.t("detail_department_remarks"), d.DepartmentRemarks)
	}
	if c.Response != "" {
		fmt.Fprintf(r.Out, "%s: %s\n", r.t("detail_response"), c.Response)
	}
	if d.Unattended {
		fmt.Fprintln(r.Out, color.RedString(r.t("unattended_badge")))
	}
}

// Present prints the unattended popup. It satisfies complaint.Presenter.
func (r *Renderer) Present(_ context.Context, _ string, complaints []models.Complaint) error {
	if len(complaints) == 0 {
		return nil
	}
	red := color.New(color.FgRed, color.Bold)
	red.Fprintln(r.Out, "== "+r.t("popup_title")+" ==")
	fmt.Fprintln(r.Out, r.t("popup_intro", len(complaints)))
	for _, c := range complaints {
		fmt.Fprintln(r.Out, "  "+r.t("popup_line", c.ID.String(), c.Title, analysis.FormatCategoryLabel(c.Category), c.SubmittedAt.String()))
	}
	fmt.Fprintln(r.Out, r.t("popup_footer"))
	return nil
}
