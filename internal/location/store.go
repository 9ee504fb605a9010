package location

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Logger defines the logging interface used by the Store.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Store is the single authoritative holder of facilities. Facilities are
// loaded lazily from the repository and written back after every
// successful Update.
//
// All public methods are thread-safe. Facility pointers handed to callbacks
// must not be retained after the callback returns.
type Store struct {
	repo    Repository
	network string

	mu         sync.RWMutex
	facilities map[string]*Facility
	logger     Logger
}

// NewStore creates a store backed by repo. A nil repo keeps facilities in
// memory only. network is given to facilities the store creates.
func NewStore(repo Repository, network string) *Store {
	return &Store{
		repo:       repo,
		network:    network,
		facilities: make(map[string]*Facility),
		logger:     noopLogger{},
	}
}

// SetLogger sets the logger for the store.
func (s *Store) SetLogger(logger Logger) {
	s.logger = logger
}

// Update runs fn with exclusive access to the facility, creating it when it
// does not exist yet, and persists it if fn succeeds.
//
// When fn fails with a repository, the cached copy is dropped so the next
// access reloads the persisted state. A memory-only store has nothing to
// reload: a facility created by the failed call is forgotten, but changes fn
// made to an existing facility before failing remain.
func (s *Store) Update(ctx context.Context, facilityID string, fn func(*Facility) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.get(ctx, facilityID)
	created := false
	if errors.Is(err, ErrFacilityNotFound) {
		f = NewFacility(facilityID, s.network)
		created = true
	} else if err != nil {
		return err
	}

	if err := fn(f); err != nil {
		if s.repo != nil || created {
			delete(s.facilities, facilityID)
		}
		return err
	}
	if created {
		s.logger.Info("facility created", "facility", facilityID)
	}
	s.facilities[facilityID] = f

	if s.repo == nil {
		return nil
	}
	if err := s.repo.SaveFacility(ctx, f); err != nil {
		delete(s.facilities, facilityID)
		return fmt.Errorf("saving facility %s: %w", facilityID, err)
	}
	s.logger.Debug("facility saved", "facility", facilityID)
	return nil
}

// View runs fn with shared access to an existing facility.
func (s *Store) View(ctx context.Context, facilityID string, fn func(*Facility) error) error {
	s.mu.RLock()
	f, ok := s.facilities[facilityID]
	s.mu.RUnlock()

	if !ok {
		// Loading mutates the cache, so it needs the write lock.
		s.mu.Lock()
		var err error
		f, err = s.get(ctx, facilityID)
		if err == nil {
			s.facilities[facilityID] = f
		}
		s.mu.Unlock()
		if err != nil {
			return err
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(f)
}

// Facilities returns the domain IDs of every known facility, cached or stored.
func (s *Store) Facilities(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{}, len(s.facilities))
	for id := range s.facilities {
		seen[id] = struct{}{}
	}
	if s.repo != nil {
		stored, err := s.repo.ListFacilities(ctx)
		if err != nil {
			return nil, err
		}
		for _, id := range stored {
			seen[id] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}

// get returns the cached facility or loads it. Callers hold s.mu.
func (s *Store) get(ctx context.Context, facilityID string) (*Facility, error) {
	if f, ok := s.facilities[facilityID]; ok {
		return f, nil
	}
	if s.repo == nil {
		return nil, fmt.Errorf("%w: %s", ErrFacilityNotFound, facilityID)
	}
	f, err := s.repo.LoadFacility(ctx, facilityID)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("facility loaded", "facility", facilityID)
	return f, nil
}
