package dashboard_test

import (
	"context"
	"sync"

	"complaintdesk/dashboard/internal/models"
	"complaintdesk/dashboard/internal/storage"

	"github.com/stretchr/testify/mock"
)

type MockAPI struct {
	mock.Mock
}

func (m *MockAPI) Me(ctx context.Context) (*models.User, error) {
	args := m.Called(ctx)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *MockAPI) StudentComplaints(ctx context.Context) ([]models.Complaint, error) {
	args := m.Called(ctx)
	list, _ := args.Get(0).([]models.Complaint)
	return list, args.Error(1)
}

func (m *MockAPI) SubmitComplaint(ctx context.Context, in models.NewComplaint) (*models.Complaint, error) {
	args := m.Called(ctx, in)
	c, _ := args.Get(0).(*models.Complaint)
	return c, args.Error(1)
}

func (m *MockAPI) AdminComplaints(ctx context.Context) ([]models.Complaint, error) {
	args := m.Called(ctx)
	list, _ := args.Get(0).([]models.Complaint)
	return list, args.Error(1)
}

func (m *MockAPI) Push(ctx context.Context, id models.ID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type memStore struct {
	mu   sync.Mutex
	sets map[string][]string
}

func newMemStore() *memStore { return &memStore{sets: map[string][]string{}} }

func (s *memStore) LoadSeen(_ context.Context, profile string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string{}, s.sets[profile]...), nil
}

func (s *memStore) AddSeen(_ context.Context, profile string, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sets[profile] = storage.MergeSeen(s.sets[profile], ids)
	return nil
}
