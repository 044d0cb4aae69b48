package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Status is the normalised complaint status token used by the complaints API.
type Status string

const (
	StatusPending       Status = "pending"
	StatusInProgress    Status = "in-progress"
	StatusSentToDept    Status = "sent-to-dept"
	StatusDeptConfirmed Status = "dept-confirmed"
	StatusResolved      Status = "resolved"
)

// Statuses lists every status in workflow order.
var Statuses = []Status{StatusPending, StatusInProgress, StatusSentToDept, StatusDeptConfirmed, StatusResolved}

// ParseStatus accepts API tokens as well as the title-case spellings stored by the
// server. Anything unrecognised, including the empty string, is treated as pending.
func ParseStatus(raw string) Status {
	switch strings.TrimSpace(raw) {
	case "pending", "Pending":
		return StatusPending
	case "in-progress", "In Progress":
		return StatusInProgress
	case "sent-to-dept", "Sent to Department":
		return StatusSentToDept
	case "dept-confirmed", "Department Confirmed":
		return StatusDeptConfirmed
	case "resolved", "Resolved":
		return StatusResolved
	default:
		return StatusPending
	}
}

func (s *Status) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		// null or a non-string value
		*s = StatusPending
		return nil
	}
	*s = ParseStatus(raw)
	return nil
}

// Category is the complaint category slug. Unknown slugs are kept as-is.
type Category string

const (
	CategoryFacilities     Category = "facilities"
	CategoryFoodServices   Category = "food-services"
	CategoryAcademic       Category = "academic"
	CategoryTechnology     Category = "technology"
	CategoryTransportation Category = "transportation"
	CategoryOther          Category = "other"
)

// Categories lists the categories a student can pick when submitting.
var Categories = []Category{
	CategoryFacilities,
	CategoryFoodServices,
	CategoryAcademic,
	CategoryTechnology,
	CategoryTransportation,
	CategoryOther,
}

// OrOther maps an empty category to "other".
func (c Category) OrOther() Category {
	if strings.TrimSpace(string(c)) == "" {
		return CategoryOther
	}
	return c
}

// DepartmentStatusPending is the department status of a complaint that was never pushed.
const DepartmentStatusPending = "Pending"

// Complaint is the read-only snapshot of a complaint as served by the complaints API.
type Complaint struct {
	ID                ID       `json:"id"`
	Title             string   `json:"title"`
	Category          Category `json:"category"`
	Description       string   `json:"description"`
	Status            Status   `json:"status"`
	DepartmentStatus  string   `json:"departmentStatus,omitempty"`
	DepartmentRemarks string   `json:"departmentRemarks,omitempty"`
	DepartmentEmail   string   `json:"departmentEmail,omitempty"`
	StudentEmail      string   `json:"studentEmail,omitempty"`
	SubmittedAt       Date     `json:"submittedAt"`
	LastUpdated       Date     `json:"lastUpdated"`
	ResolvedAt        Date     `json:"resolvedAt"`
	Response          string   `json:"response,omitempty"`
}

// DeptStatus returns the department status, defaulting to "Pending".
func (c Complaint) DeptStatus() string {
	if c.DepartmentStatus == "" {
		return DepartmentStatusPending
	}
	return c.DepartmentStatus
}

// IsUnattended reports whether the complaint is still pending and was never
// forwarded to its department.
func (c Complaint) IsUnattended() bool {
	return c.Status == StatusPending && c.DeptStatus() == DepartmentStatusPending
}

// NewComplaint is the payload a student submits.
type NewComplaint struct {
	Title       string   `json:"title"`
	Category    Category `json:"category"`
	Description string   `json:"description"`
}

// ID is a complaint identifier. The server sends numbers, the SeenSet stores
// strings, so both JSON forms are accepted.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

// MarshalJSON emits canonical integers as numbers and anything else, such as
// "007" or "+5", as a string.
func (id ID) MarshalJSON() ([]byte, error) {
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil && strconv.FormatInt(n, 10) == string(id) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

func (id ID) String() string { return string(id) }

// Date is a calendar date or timestamp sent by the server. The server usually
// sends "YYYY-MM-DD" and an empty string when the value is missing.
type Date struct {
	Time     time.Time
	Valid    bool
	DateOnly bool
}

const dateLayout = "2006-01-02"

// ParseDate parses "YYYY-MM-DD" or an RFC 3339 timestamp. Empty or malformed
// input yields an invalid Date.
func ParseDate(raw string) Date {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Date{}
	}
	if t, err := time.Parse(dateLayout, raw); err == nil {
		return Date{Time: t, Valid: true, DateOnly: true}
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return Date{Time: t, Valid: true}
	}
	if t, err := time.Parse("2006-01-02T15:04:05", raw); err == nil {
		return Date{Time: t, Valid: true}
	}
	return Date{}
}

// MustDate is ParseDate for literals in tests and fixtures.
func MustDate(raw string) Date {
	d := ParseDate(raw)
	if !d.Valid {
		panic("models: invalid date " + strconv.Quote(raw))
	}
	return d
}

// Day returns local midnight of the date in loc. Date-only values are treated
// as calendar dates in loc, timestamps are converted to loc first.
func (d Date) Day(loc *time.Location) (time.Time, bool) {
	if !d.Valid {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}
	t := d.Time
	if !d.DateOnly {
		t = t.In(loc)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc), true
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		*d = Date{}
		return nil
	}
	*d = ParseDate(raw)
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	if !d.Valid {
		return []byte(`""`), nil
	}
	if d.DateOnly {
		return json.Marshal(d.Time.Format(dateLayout))
	}
	return json.Marshal(d.Time.Format(time.RFC3339))
}

// String formats the date for display, empty when missing.
func (d Date) String() string {
	if !d.Valid {
		return ""
	}
	return d.Time.Format(dateLayout)
}
