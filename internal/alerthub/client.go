package alerthub

import "complaintdesk/dashboard/internal/models"

// Client is one open admin dashboard waiting for popups.
type Client interface {
	// GetClientID is unique per connection.
	GetClientID() string
	// GetProfile is the browser profile whose popups the client receives.
	GetProfile() string
	GetSendChannel() chan<- models.AlertMessage
	Run()
	Close()
}
