package sequences

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/lettucedream/roster/internal/common"
	"github.com/lettucedream/roster/internal/filex"
	"gopkg.in/yaml.v3"
)

const lockRetryDelay = 10 * time.Millisecond

// fileState is the on-disk layout of a FileStore.
type fileState struct {
	Counters map[string]uint64 `yaml:"counters"`
}

// FileStore keeps counters in a YAML file. A mutex serializes goroutines and
// an flock on "<path>.lock" serializes processes sharing the file. Writes go
// through a temp file and rename, so a crash never leaves a torn counter.
type FileStore struct {
	mu    sync.Mutex
	flock *flock.Flock
	path  string
}

// NewFileStore creates the parent directory of path if needed.
func NewFileStore(path string) (*FileStore, error) {
	if _, err := filex.EnsureParentDir(path); err != nil {
		return nil, fmt.Errorf("failed to create sequence directory: %w", err)
	}
	return &FileStore{path: path, flock: flock.New(path + ".lock")}, nil
}

func (s *FileStore) Reserve(ctx context.Context, name string, incrementBy uint64) (uint64, error) {
	if err := checkIncrement(name, incrementBy); err != nil {
		return 0, err
	}

	var first uint64
	err := s.locked(ctx, func() error {
		state, err := s.load()
		if err != nil {
			return unavailable("reserve", name, err)
		}
		prev := state.Counters[name]
		if prev > maxCounter-incrementBy {
			return exhausted(name)
		}
		state.Counters[name] = prev + incrementBy
		if err := s.save(state); err != nil {
			return unavailable("reserve", name, err)
		}
		first = prev + 1
		return nil
	})
	return first, err
}

func (s *FileStore) Current(ctx context.Context, name string) (uint64, error) {
	var cur uint64
	err := s.locked(ctx, func() error {
		state, err := s.load()
		if err != nil {
			return unavailable("read", name, err)
		}
		cur = state.Counters[name]
		return nil
	})
	return cur, err
}

func (s *FileStore) locked(ctx context.Context, fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ok, err := s.flock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("%w: failed to acquire lock on %s: %w", common.ErrStoreUnavailable, s.path, err)
	}
	if !ok {
		return fmt.Errorf("%w: lock on %s not acquired", common.ErrStoreUnavailable, s.path)
	}
	defer func() {
		_ = s.flock.Unlock()
	}()

	return fn()
}

// load reads the state file (must be called with the lock held).
func (s *FileStore) load() (*fileState, error) {
	state := &fileState{Counters: map[string]uint64{}}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return state, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, state); err != nil {
		return nil, fmt.Errorf("corrupt sequence file %s: %w", s.path, err)
	}
	if state.Counters == nil {
		state.Counters = map[string]uint64{}
	}
	return state, nil
}

// save persists the state (must be called with the lock held).
func (s *FileStore) save(state *fileState) error {
	data, err := yaml.Marshal(state)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}
