package complaint_test

import (
	"context"
	"sync"

	"complaintdesk/dashboard/internal/models"
	"complaintdesk/dashboard/internal/storage"

	"github.com/stretchr/testify/mock"
)

// MockStorage is a testify mock of storage.Storage.
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) LoadSeen(ctx context.Context, profile string) ([]string, error) {
	args := m.Called(ctx, profile)
	ids, _ := args.Get(0).([]string)
	return ids, args.Error(1)
}

func (m *MockStorage) AddSeen(ctx context.Context, profile string, ids []string) error {
	args := m.Called(ctx, profile, ids)
	return args.Error(0)
}

// memStore keeps SeenSets in memory, standing in for browser storage.
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

// recordingPresenter remembers every popup it was asked to show.
type recordingPresenter struct {
	popups [][]models.ID
	err    error
}

func (p *recordingPresenter) Present(_ context.Context, _ string, complaints []models.Complaint) error {
	if p.err != nil {
		return p.err
	}
	ids := make([]models.ID, 0, len(complaints))
	for _, c := range complaints {
		ids = append(ids, c.ID)
	}
	p.popups = append(p.popups, ids)
	return nil
}
