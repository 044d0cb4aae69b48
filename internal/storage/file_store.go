package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"complaintdesk/dashboard/internal/config"
)

var unsafeProfileChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// FileStore keeps each profile's SeenSet as a JSON array in its own file.
// The terminal client uses it in place of the browser's local storage.
type FileStore struct {
	Dir string

	mu sync.Mutex
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{Dir: dir}
}

func (f *FileStore) path(profile string) string {
	name := unsafeProfileChars.ReplaceAllString(profile, "_")
	if name == "" {
		name = "default"
	}
	return filepath.Join(f.Dir, config.SeenSetKey+"."+name+".json")
}

// LoadSeen returns an empty list for a missing or unreadable file.
func (f *FileStore) LoadSeen(_ context.Context, profile string) ([]string, error) {
	blob, err := os.ReadFile(f.path(profile))
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read seen set: %w", err)
	}
	var ids []string
	if err := json.Unmarshal(blob, &ids); err != nil || ids == nil {
		return []string{}, nil
	}
	return ids, nil
}

// AddSeen merges ids into the profile's file. Merges are serialized and the
// file is replaced through a rename so readers never see a partial array.
func (f *FileStore) AddSeen(ctx context.Context, profile string, ids []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	current, err := f.LoadSeen(ctx, profile)
	if err != nil {
		return err
	}
	blob, err := json.Marshal(MergeSeen(current, ids))
	if err != nil {
		return err
	}
	if err := os.MkdirAll(f.Dir, 0o700); err != nil {
		return fmt.Errorf("create seen dir: %w", err)
	}
	tmp, err := os.CreateTemp(f.Dir, ".seen-*")
	if err != nil {
		return fmt.Errorf("write seen set: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(blob); err != nil {
		tmp.Close()
		return fmt.Errorf("write seen set: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write seen set: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path(profile)); err != nil {
		return fmt.Errorf("write seen set: %w", err)
	}
	return nil
}
