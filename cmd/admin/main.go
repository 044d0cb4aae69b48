package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"complaintdesk/dashboard/internal/analysis"
	"complaintdesk/dashboard/internal/apiclient"
	"complaintdesk/dashboard/internal/complaint"
	"complaintdesk/dashboard/internal/config"
	"complaintdesk/dashboard/internal/dashboard"
	"complaintdesk/dashboard/internal/localization"
	"complaintdesk/dashboard/internal/models"
	"complaintdesk/dashboard/internal/storage"
	"complaintdesk/dashboard/internal/terminal"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const usage = `Usage: admin <command> [args]

Commands:
  whoami                                   show the signed-in account
  dashboard                                stats, complaint list and unattended popup
  charts [category] [days]                 analytics charts
  show <id>                                complaint detail
  push <id>                                push a complaint to its department
  export <file.xlsx>                       write the complaint list to a workbook
  complaints                               the student's own complaints
  submit <category> <title> <description>  file a complaint as a student`

type app struct {
	cfg  *config.Config
	ctrl *dashboard.Controller
	view *terminal.Renderer
	loc  *time.Location
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("config: %v", err)
	}
	if lvl, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logrus.SetLevel(lvl)
	}
	if cfg.Email == "" || cfg.Password == "" {
		fmt.Println("DCS_EMAIL and DCS_PASSWORD must be set")
		os.Exit(1)
	}

	a, err := newApp(cfg)
	if err != nil {
		logrus.Fatalf("%v", err)
	}

	ctx := context.Background()
	if err := a.run(ctx, os.Args[1], os.Args[2:]); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Println(usage)
		} else {
			a.view.Error(err)
		}
		os.Exit(1)
	}
}

var errUsage = errors.New("usage")

func newApp(cfg *config.Config) (*app, error) {
	log := logrus.WithField("component", "cli")
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	l, err := localization.Default()
	if err != nil {
		return nil, fmt.Errorf("load locales: %w", err)
	}
	view := terminal.NewRenderer(os.Stdout, l, cfg.Lang)

	client, err := apiclient.NewClient(cfg.UpstreamURL, cfg.UpstreamTimeout, log)
	if err != nil {
		return nil, err
	}
	notifier := complaint.NewNotifier(storage.NewFileStore(cfg.SeenDir), view, log)
	ctrl := dashboard.NewController(client, notifier, dashboard.Options{
		Profile:       cliProfile(cfg.Email),
		DepartmentURL: cfg.DepartmentURL,
		LoginURL:      cfg.LoginURL,
		Location:      loc,
		Log:           log,
	})

	if _, err := client.Login(context.Background(), cfg.Email, cfg.Password, models.ParseRole(cfg.Role)); err != nil {
		return nil, fmt.Errorf("login: %s", apiclient.Message(err))
	}
	return &app{cfg: cfg, ctrl: ctrl, view: view, loc: loc}, nil
}

// cliProfile derives a stable profile per account so the SeenSet survives
// between runs.
func cliProfile(email string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("cli:"+strings.ToLower(email))).String()
}

func (a *app) run(ctx context.Context, cmd string, args []string) error {
	route := a.ctrl.Resolve(ctx)
	switch route.Kind {
	case dashboard.RouteLogin:
		return errors.New(a.view.L.GetString(a.cfg.Lang, "login_required"))
	case dashboard.RouteDepartment:
		fmt.Println(a.view.L.Format(a.cfg.Lang, "department_redirect", route.URL))
		return nil
	}

	switch cmd {
	case "whoami":
		st := a.ctrl.State()
		fmt.Printf("%s (%s)\n", st.User.Email, st.User.Role)
		return nil
	case "complaints":
		if err := a.require(route, dashboard.RouteStudent); err != nil {
			return err
		}
		st, err := a.ctrl.LoadStudent(ctx)
		if err != nil {
			return err
		}
		a.view.Student(st)
		return nil
	case "submit":
		if err := a.require(route, dashboard.RouteStudent); err != nil {
			return err
		}
		if len(args) != 3 {
			return errUsage
		}
		st, err := a.ctrl.Submit(ctx, models.NewComplaint{
			Category:    models.Category(args[0]),
			Title:       args[1],
			Description: args[2],
		})
		if err != nil {
			return err
		}
		a.view.Student(st)
		return nil
	}

	if err := a.require(route, dashboard.RouteAdmin); err != nil {
		return err
	}
	st, err := a.ctrl.LoadAdmin(ctx)
	if err != nil {
		return err
	}

	switch cmd {
	case "dashboard":
		a.view.Admin(st)
	case "charts":
		if len(args) > 0 {
			st = a.ctrl.Apply(dashboard.Event{Kind: dashboard.EventCategory, Value: args[0]})
		}
		if len(args) > 1 {
			st = a.ctrl.Apply(dashboard.Event{Kind: dashboard.EventPeriod, Value: args[1]})
		}
		a.view.Charts(st)
	case "show":
		if len(args) != 1 {
			return errUsage
		}
		d, ok := a.ctrl.Complaint(models.ID(args[0]))
		if !ok {
			return fmt.Errorf("complaint %s not found", args[0])
		}
		a.view.Detail(d)
	case "push":
		if len(args) != 1 {
			return errUsage
		}
		st, err = a.ctrl.Push(ctx, models.ID(args[0]))
		if err != nil {
			return err
		}
		a.view.Alert(st.Alert)
	case "export":
		if len(args) != 1 {
			return errUsage
		}
		return a.export(args[0], st.Complaints)
	default:
		return errUsage
	}
	return nil
}

func (a *app) require(route dashboard.Route, want dashboard.RouteKind) error {
	if route.Kind != want {
		return fmt.Errorf("this command needs a %s account", want)
	}
	return nil
}

func (a *app) export(path string, complaints []models.Complaint) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := analysis.WriteWorkbook(f, complaints, time.Now().In(a.loc)); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Println(a.view.L.Format(a.cfg.Lang, "exported", len(complaints), path))
	return nil
}
