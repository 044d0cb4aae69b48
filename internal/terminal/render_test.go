package terminal

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"complaintdesk/dashboard/internal/dashboard"
	"complaintdesk/dashboard/internal/localization"
	"complaintdesk/dashboard/internal/models"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRenderer(t *testing.T) (*Renderer, *bytes.Buffer) {
	t.Helper()
	color.NoColor = true
	l, err := localization.Default()
	require.NoError(t, err)
	var buf bytes.Buffer
	return NewRenderer(&buf, l, "en"), &buf
}

func TestRenderer_AdminMarksUnattended(t *testing.T) {
	r, buf := newTestRenderer(t)
	list := []models.Complaint{
		{ID: "1", Title: "Broken chair", Category: models.CategoryFacilities, Status: models.StatusPending},
		{ID: "2", Title: "Exam clash", Category: models.CategoryAcademic, Status: models.StatusResolved},
	}
	st := dashboard.RenderAdmin(dashboard.State{}, &models.User{Email: "boss@uni.edu", Role: models.RoleAdmin}, list, nowForTest, nil)
	r.Admin(st)
	r.Charts(st)

	out := buf.String()
	assert.Contains(t, out, "Welcome, boss")
	assert.Contains(t, out, "Total: 2")
	assert.Contains(t, out, "Unattended")
	assert.Contains(t, out, "Complaints by Category")
	assert.Contains(t, out, "Resolved per Day")
}

func TestRenderer_StudentEmpty(t *testing.T) {
	r, buf := newTestRenderer(t)
	r.Student(dashboard.RenderStudent(dashboard.State{Alert: "Request failed"}, nil, nil))
	assert.Contains(t, buf.String(), "No complaints yet.")
	assert.Contains(t, buf.String(), "! Request failed")
}

func TestRenderer_StudentShowsResponse(t *testing.T) {
	r, buf := newTestRenderer(t)
	r.Student(dashboard.RenderStudent(dashboard.State{}, nil, []models.Complaint{
		{ID: "4", Title: "Bus late", Response: "Schedule updated"},
	}))
	assert.Contains(t, buf.String(), "#4 Response: Schedule updated")
}

func TestRenderer_Present(t *testing.T) {
	r, buf := newTestRenderer(t)
	require.NoError(t, r.Present(context.Background(), "p", []models.Complaint{
		{ID: "9", Title: "No heating", Category: models.CategoryFacilities, SubmittedAt: models.MustDate("2024-01-03")},
	}))
	out := buf.String()
	assert.Contains(t, out, "== Unattended complaints ==")
	assert.Contains(t, out, "#9 No heating (Facilities), submitted 2024-01-03")

	buf.Reset()
	require.NoError(t, r.Present(context.Background(), "p", nil))
	assert.Empty(t, buf.String())
}

func TestRenderer_Detail(t *testing.T) {
	r, buf := newTestRenderer(t)
	r.Detail(dashboard.Detail{
		Complaint:         models.Complaint{ID: "3", Title: "Wifi", Description: "Down", Status: models.StatusSentToDept},
		DepartmentStatus:  "Received",
		DepartmentRemarks: "Router ordered",
	})
	out := buf.String()
	assert.Contains(t, out, "Status: Sent to Dept")
	assert.Contains(t, out, "Department Remarks: Router ordered")
}

func TestRenderer_Error(t *testing.T) {
	r, buf := newTestRenderer(t)
	r.Error(errors.New("boom"))
	assert.Equal(t, "error: boom\n", buf.String())
}

var nowForTest = time.Date(2024, 4, 2, 9, 0, 0, 0, time.UTC)
