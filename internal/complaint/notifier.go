// Package complaint decides which unattended complaints an admin still has to
// be told about, and remembers what was already shown.
package complaint

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"complaintdesk/dashboard/internal/models"
	"complaintdesk/dashboard/internal/storage"

	"github.com/sirupsen/logrus"
)

var ErrEmptyProfile = errors.New("complaint: empty profile")

// Presenter shows one popup listing every newly unattended complaint.
type Presenter interface {
	Present(ctx context.Context, profile string, complaints []models.Complaint) error
}

// PresenterFunc adapts a function to Presenter.
type PresenterFunc func(ctx context.Context, profile string, complaints []models.Complaint) error

func (f PresenterFunc) Present(ctx context.Context, profile string, complaints []models.Complaint) error {
	return f(ctx, profile, complaints)
}

// Unattended keeps the complaints that are pending and never pushed, in
// their original order.
func Unattended(complaints []models.Complaint) []models.Complaint {
	out := make([]models.Complaint, 0)
	for _, c := range complaints {
		if c.IsUnattended() {
			out = append(out, c)
		}
	}
	return out
}

// Unseen drops the complaints whose ID is already in seen.
func Unseen(unattended []models.Complaint, seen *SeenSet) []models.Complaint {
	out := make([]models.Complaint, 0, len(unattended))
	for _, c := range unattended {
		if seen == nil || !seen.Has(c.ID) {
			out = append(out, c)
		}
	}
	return out
}

// Notifier runs the popup-once check for a profile. Presenter is the
// dashboard popup and decides whether IDs are recorded. Mirrors get a copy
// of every shown popup; their failures are only logged.
type Notifier struct {
	Store     storage.Storage
	Presenter Presenter
	Mirrors   []Presenter
	Log       *logrus.Entry

	locks sync.Map // profile -> *sync.Mutex
}

func NewNotifier(store storage.Storage, presenter Presenter, log *logrus.Entry, mirrors ...Presenter) *Notifier {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Notifier{Store: store, Presenter: presenter, Mirrors: mirrors, Log: log.WithField("component", "notifier")}
}

// lock serializes checks of one profile within this process.
func (n *Notifier) lock(profile string) func() {
	mu, _ := n.locks.LoadOrStore(profile, &sync.Mutex{})
	mu.(*sync.Mutex).Lock()
	return mu.(*sync.Mutex).Unlock
}

// Check presents the unseen unattended complaints in one popup, then records
// them as seen. It returns what was presented, empty when nothing was new.
// IDs are only recorded after the popup was shown.
func (n *Notifier) Check(ctx context.Context, profile string, complaints []models.Complaint) ([]models.Complaint, error) {
	profile = strings.TrimSpace(profile)
	if profile == "" {
		return nil, ErrEmptyProfile
	}
	defer n.lock(profile)()

	seen, err := n.load(ctx, profile)
	if err != nil {
		return nil, err
	}

	fresh := Unseen(Unattended(complaints), seen)
	if len(fresh) == 0 {
		return fresh, nil
	}

	if n.Presenter != nil {
		if err := n.Presenter.Present(ctx, profile, fresh); err != nil {
			return nil, fmt.Errorf("present unattended popup: %w", err)
		}
	}
	n.mirror(ctx, profile, fresh)

	ids := make([]string, len(fresh))
	for i, c := range fresh {
		ids[i] = c.ID.String()
	}
	if err := n.Store.AddSeen(ctx, profile, ids); err != nil {
		return fresh, fmt.Errorf("persist seen set: %w", err)
	}

	n.Log.WithFields(logrus.Fields{"profile": profile, "count": len(fresh)}).Info("unattended complaints surfaced")
	return fresh, nil
}

func (n *Notifier) mirror(ctx context.Context, profile string, fresh []models.Complaint) {
	for _, m := range n.Mirrors {
		if m == nil {
			continue
		}
		if err := m.Present(ctx, profile, fresh); err != nil {
			n.Log.WithError(err).WithField("profile", profile).Warn("popup mirror failed")
		}
	}
}

// MarkSeen records a single ID, used after an admin pushes a complaint.
func (n *Notifier) MarkSeen(ctx context.Context, profile string, id models.ID) error {
	profile = strings.TrimSpace(profile)
	if profile == "" {
		return ErrEmptyProfile
	}
	if id == "" {
		return nil
	}
	defer n.lock(profile)()

	if err := n.Store.AddSeen(ctx, profile, []string{id.String()}); err != nil {
		return fmt.Errorf("persist seen set: %w", err)
	}
	return nil
}

// Seen loads the profile's current set.
func (n *Notifier) Seen(ctx context.Context, profile string) (*SeenSet, error) {
	return n.load(ctx, profile)
}

func (n *Notifier) load(ctx context.Context, profile string) (*SeenSet, error) {
	ids, err := n.Store.LoadSeen(ctx, profile)
	if err != nil {
		return nil, fmt.Errorf("load seen set: %w", err)
	}
	return NewSeenSet(ids), nil
}
