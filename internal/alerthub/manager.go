// Package alerthub delivers unattended-complaint popups to every open admin
// dashboard of the same browser profile, across server instances.
package alerthub

import (
	"context"
	"sync"

	"complaintdesk/dashboard/internal/models"

	"github.com/sirupsen/logrus"
)

// Broker fans alerts out to every server instance.
type Broker interface {
	PublishAlert(ctx context.Context, msg models.AlertMessage) error
}

type Manager struct {
	mu      sync.RWMutex
	Clients map[string]Client

	RegisterCh   chan Client
	UnregisterCh chan Client
	broadcastCh  chan models.AlertMessage

	Broker Broker
	log    *logrus.Entry
	done   chan struct{}
}

// NewManager creates a hub. With a nil broker alerts stay on this instance.
func NewManager(broker Broker, log *logrus.Entry) *Manager {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Manager{
		Clients:      make(map[string]Client),
		RegisterCh:   make(chan Client),
		UnregisterCh: make(chan Client),
		broadcastCh:  make(chan models.AlertMessage, 16),
		Broker:       broker,
		log:          log.WithField("component", "alerthub"),
		done:         make(chan struct{}),
	}
}

// Run owns client registration and delivery until ctx ends.
func (m *Manager) Run(ctx context.Context) {
	defer close(m.done)
	for {
		select {
		case <-ctx.Done():
			m.mu.Lock()
			for id, c := range m.Clients {
				c.Close()
				delete(m.Clients, id)
			}
			m.mu.Unlock()
			return

		case c := <-m.RegisterCh:
			m.mu.Lock()
			m.Clients[c.GetClientID()] = c
			m.mu.Unlock()
			m.log.WithFields(logrus.Fields{"client": c.GetClientID(), "profile": c.GetProfile()}).Debug("dashboard connected")

		case c := <-m.UnregisterCh:
			m.remove(c.GetClientID())

		case msg := <-m.broadcastCh:
			m.deliver(msg)
		}
	}
}

func (m *Manager) deliver(msg models.AlertMessage) {
	m.mu.RLock()
	var slow []string
	delivered := 0
	for id, c := range m.Clients {
		if c.GetProfile() != msg.Profile {
			continue
		}
		select {
		case c.GetSendChannel() <- msg:
			delivered++
		default:
			slow = append(slow, id)
		}
	}
	m.mu.RUnlock()

	for _, id := range slow {
		m.log.WithField("client", id).Warn("dropping slow dashboard connection")
		m.remove(id)
	}
	m.log.WithFields(logrus.Fields{"profile": msg.Profile, "delivered": delivered}).Debug("alert delivered")
}

func (m *Manager) remove(id string) {
	m.mu.Lock()
	c, ok := m.Clients[id]
	delete(m.Clients, id)
	m.mu.Unlock()
	if ok {
		c.Close()
	}
}

// Broadcast queues msg for local delivery.
func (m *Manager) Broadcast(ctx context.Context, msg models.AlertMessage) error {
	select {
	case m.broadcastCh <- msg:
		return nil
	case <-m.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Present sends a popup to the profile's open dashboards. With a broker the
// alert goes through Redis so other instances deliver it too; if publishing
// fails it is still delivered locally.
func (m *Manager) Present(ctx context.Context, profile string, complaints []models.Complaint) error {
	msg := models.AlertMessage{Type: models.AlertTypeUnattended, Profile: profile, Complaints: complaints}
	if m.Broker != nil {
		err := m.Broker.PublishAlert(ctx, msg)
		if err == nil {
			return nil
		}
		m.log.WithError(err).Warn("publish failed, delivering locally")
	}
	return m.Broadcast(ctx, msg)
}

// ClientCount returns the number of connected dashboards.
func (m *Manager) ClientCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.Clients)
}
