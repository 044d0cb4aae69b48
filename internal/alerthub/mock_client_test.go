package alerthub_test

import (
	"context"
	"sync"

	"complaintdesk/dashboard/internal/models"

	"github.com/stretchr/testify/mock"
)

type MockClient struct {
	id          string
	profile     string
	RecvChannel chan models.AlertMessage

	mu     sync.Mutex
	closed bool
}

func newMockClient(id, profile string, buffer int) *MockClient {
	return &MockClient{id: id, profile: profile, RecvChannel: make(chan models.AlertMessage, buffer)}
}

func (c *MockClient) GetClientID() string                        { return c.id }
func (c *MockClient) GetProfile() string                         { return c.profile }
func (c *MockClient) GetSendChannel() chan<- models.AlertMessage { return c.RecvChannel }
func (c *MockClient) Run()                                       {}

func (c *MockClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func (c *MockClient) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

type MockBroker struct {
	mock.Mock
}

func (m *MockBroker) PublishAlert(ctx context.Context, msg models.AlertMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}
