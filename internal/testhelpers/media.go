package testhelpers

import (
	"context"
	"errors"
	"os"
	"slices"
	"sync"

	"github.com/localnerve/videohost/internal/media"
)

// ErrInjected is returned by fakes configured to fail
var ErrInjected = errors.New("injected failure")

// FakeStore records media operations in memory. FailRemove and FailPut make
// the matching call fail once RemovesBefore or PutsBefore calls succeeded.
type FakeStore struct {
	mu            sync.Mutex
	Stored        []string
	Removed       []string
	FailRemove    bool
	RemovesBefore int
	FailPut       bool
	PutsBefore    int
}

var _ media.Store = (*FakeStore)(nil)

func (s *FakeStore) Put(_ context.Context, key, localPath, _ string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailPut && len(s.Stored) >= s.PutsBefore {
		return "", ErrInjected
	}
	if _, err := os.Stat(localPath); err != nil {
		return "", err
	}
	p := media.LocalURLPrefix + "/" + key
	s.Stored = append(s.Stored, p)
	return p, nil
}

func (s *FakeStore) Remove(_ context.Context, storedPath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailRemove && len(s.Removed) >= s.RemovesBefore {
		return ErrInjected
	}
	s.Removed = append(s.Removed, storedPath)
	return nil
}

// RemovedPaths returns a sorted copy of every removed path
func (s *FakeStore) RemovedPaths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := slices.Clone(s.Removed)
	slices.Sort(out)
	return out
}

// FakeThumbnailer reports a fixed duration and writes a placeholder image
type FakeThumbnailer struct {
	Duration    float64
	ProbeErr    error
	SnapshotErr error
	SnapshotAt  float64
}

var _ media.Thumbnailer = (*FakeThumbnailer)(nil)

func (f *FakeThumbnailer) Probe(context.Context, string) (*media.Probe, error) {
	if f.ProbeErr != nil {
		return nil, f.ProbeErr
	}
	return &media.Probe{
		DurationSeconds: f.Duration,
		Raw:             []byte(`{"format":{"format_name":"mov,mp4,m4a,3gp,3g2,mj2"}}`),
	}, nil
}

func (f *FakeThumbnailer) Snapshot(_ context.Context, _, out string, at float64) error {
	if f.SnapshotErr != nil {
		return f.SnapshotErr
	}
	f.SnapshotAt = at
	return os.WriteFile(out, []byte("jpeg"), 0o600)
}
