package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"complaintdesk/dashboard/internal/apiclient"
	"complaintdesk/dashboard/internal/complaint"
	"complaintdesk/dashboard/internal/config"
	"complaintdesk/dashboard/internal/models"

	"github.com/sirupsen/logrus"
)

// ErrUnauthenticated means the complaints server rejected the session; the
// caller should send the user to the login page.
var ErrUnauthenticated = errors.New("dashboard: not authenticated")

// ValidationError rejects input before it reaches the server.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

const (
	AlertSubmitted = "Complaint submitted successfully!"
	AlertPushed    = "Complaint pushed to department successfully"
)

// API is the part of the complaints server the dashboard needs.
type API interface {
	Me(ctx context.Context) (*models.User, error)
	StudentComplaints(ctx context.Context) ([]models.Complaint, error)
	SubmitComplaint(ctx context.Context, in models.NewComplaint) (*models.Complaint, error)
	AdminComplaints(ctx context.Context) ([]models.Complaint, error)
	Push(ctx context.Context, id models.ID) error
}

type Options struct {
	Profile       string
	DepartmentURL string
	LoginURL      string
	Location      *time.Location
	Now           func() time.Time
	Log           *logrus.Entry
}

// Controller drives one signed-in dashboard. Operations are serialized, so a
// second load waits for the first instead of interleaving renders.
type Controller struct {
	mu       sync.Mutex
	api      API
	notifier *complaint.Notifier
	opts     Options
	log      *logrus.Entry
	state    State
}

func NewController(api API, notifier *complaint.Notifier, opts Options) *Controller {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.DepartmentURL == "" {
		opts.DepartmentURL = config.DefaultDepartmentPath
	}
	if opts.LoginURL == "" {
		opts.LoginURL = config.DefaultLoginPath
	}
	log := opts.Log
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Controller{
		api:      api,
		notifier: notifier,
		opts:     opts,
		log:      log.WithFields(logrus.Fields{"component": "dashboard", "profile": opts.Profile}),
		state:    State{Filter: DefaultFilter()},
	}
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Profile is the browser profile the SeenSet belongs to.
func (c *Controller) Profile() string { return c.opts.Profile }

// Resolve looks the session up and picks the route for it.
func (c *Controller) Resolve(ctx context.Context) Route {
	c.mu.Lock()
	defer c.mu.Unlock()

	user, err := c.api.Me(ctx)
	if err != nil && !apiclient.IsUnauthenticated(err) {
		c.log.WithError(err).Warn("session lookup failed")
	}
	route := RouteFor(user, err, c.opts.DepartmentURL, c.opts.LoginURL)
	if route.Kind != RouteLogin {
		c.state.setUser(user)
	}
	c.state.Route = route
	return route
}

// LoadStudent fetches the student's own complaints. Only an authentication
// failure is returned as an error; other failures end up in State.Alert.
func (c *Controller) LoadStudent(ctx context.Context) (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	err := c.loadStudent(ctx)
	return c.state, err
}

func (c *Controller) loadStudent(ctx context.Context) error {
	list, err := c.api.StudentComplaints(ctx)
	if err != nil {
		return c.fail(err, "load student complaints")
	}
	c.state.Alert = ""
	c.state = RenderStudent(c.state, c.state.User, list)
	return nil
}

// Submit validates and files a complaint, then reloads the student view.
func (c *Controller) Submit(ctx context.Context, in models.NewComplaint) (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Category = models.Category(strings.TrimSpace(string(in.Category))).OrOther()
	if err := validate(in); err != nil {
		c.state.Alert = err.Error()
		return c.state, err
	}

	created, err := c.api.SubmitComplaint(ctx, in)
	if err != nil {
		if apiclient.IsUnauthenticated(err) {
			c.toLogin()
			return c.state, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
		}
		c.log.WithError(err).Warn("submit failed")
		c.state.Alert = "Failed to submit complaint: " + apiclient.Message(err)
		return c.state, nil
	}
	c.log.WithField("complaint_id", created.ID).Info("complaint submitted")

	if err := c.loadStudent(ctx); err != nil {
		return c.state, err
	}
	if c.state.Alert == "" {
		c.state.Alert = AlertSubmitted
	}
	return c.state, nil
}

func validate(in models.NewComplaint) error {
	switch {
	case in.Title == "":
		return &ValidationError{Field: "title", Message: "Title is required"}
	case in.Description == "":
		return &ValidationError{Field: "description", Message: "Description is required"}
	}
	return nil
}

// LoadAdmin fetches every complaint, runs the unattended notifier and
// rebuilds stats and charts.
func (c *Controller) LoadAdmin(ctx context.Context) (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	err := c.loadAdmin(ctx)
	return c.state, err
}

func (c *Controller) loadAdmin(ctx context.Context) error {
	list, err := c.api.AdminComplaints(ctx)
	if err != nil {
		return c.fail(err, "load admin complaints")
	}
	c.state.Alert = ""
	c.state.Popup = nil
	c.state = RenderAdmin(c.state, c.state.User, list, c.opts.Now(), c.opts.Location)

	if c.notifier != nil {
		shown, err := c.notifier.Check(ctx, c.opts.Profile, list)
		if err != nil {
			c.log.WithError(err).Warn("unattended check failed")
		}
		if len(shown) > 0 {
			c.state.Popup = shown
		}
	}
	return nil
}

// Apply changes one analytics control and recomputes the charts from the
// held snapshot.
func (c *Controller) Apply(ev Event) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = Update(c.state, ev, c.opts.Now(), c.opts.Location)
	return c.state
}

// Push forwards a complaint to its department, records it as seen and
// reloads the admin view.
func (c *Controller) Push(ctx context.Context, id models.ID) (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.api.Push(ctx, id); err != nil {
		if apiclient.IsUnauthenticated(err) {
			c.toLogin()
			return c.state, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
		}
		c.log.WithError(err).WithField("complaint_id", id).Warn("push failed")
		c.state.Alert = "Failed to push complaint: " + apiclient.Message(err)
		return c.state, nil
	}
	c.log.WithField("complaint_id", id).Info("complaint pushed")

	if c.notifier != nil {
		if err := c.notifier.MarkSeen(ctx, c.opts.Profile, id); err != nil {
			c.log.WithError(err).Warn("failed to record pushed complaint as seen")
		}
	}

	c.state.Popup = nil
	if err := c.loadAdmin(ctx); err != nil {
		return c.state, err
	}
	if c.state.Alert == "" {
		c.state.Alert = AlertPushed
	}
	return c.state, nil
}

// Complaint returns the detail view of a complaint in the current snapshot.
func (c *Controller) Complaint(id models.ID) (Detail, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return DetailOf(c.state, id)
}

// fail applies the error taxonomy: authentication failures route to login,
// anything else empties the list and raises an alert.
func (c *Controller) fail(err error, op string) error {
	if apiclient.IsUnauthenticated(err) {
		c.toLogin()
		return fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	c.log.WithError(err).Warn(op + " failed")
	c.state = Reset(c.state, err)
	if c.state.Charts != nil {
		c.state = RenderCharts(c.state, c.opts.Now(), c.opts.Location)
	}
	return nil
}

func (c *Controller) toLogin() {
	c.state = State{Route: Route{Kind: RouteLogin, URL: c.opts.LoginURL}, Filter: c.state.Filter}
}
