package catalog

import (
	"context"
	"fmt"
	"sync"

	"github.com/Rounit002/maasaraswatilibrary/internal/shared/apperrors"
	"github.com/Rounit002/maasaraswatilibrary/internal/shared/constants"
	"github.com/Rounit002/maasaraswatilibrary/pkg/cache"
	"github.com/Rounit002/maasaraswatilibrary/pkg/logger"

	"github.com/google/uuid"
)

type Service interface {
	// Load fetches shifts and branches and replaces the cache wholesale,
	// going through redis when a cache layer is injected. On failure the
	// cache is left empty; no partial or stale catalog is kept.
	Load(ctx context.Context) (*Snapshot, error)

	// Reload drops the redis copy first so the catalog is refetched from
	// the database.
	Reload(ctx context.Context) (*Snapshot, error)

	// Accessors over the in-memory snapshot. No database round trips.
	Snapshot() *Snapshot
	Branches() []Branch
	Shifts() []ShiftDefinition
	ShiftByID(id uuid.UUID) (*ShiftDefinition, bool)
	BranchByID(id uuid.UUID) (*Branch, bool)
	Loaded() bool

	// SetCacheService injects the optional redis cache layer.
	SetCacheService(cacheService cache.Service)
}

type service struct {
	repo         Repository
	cacheService cache.Service

	mu       sync.RWMutex
	snapshot *Snapshot
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) SetCacheService(cacheService cache.Service) {
	s.cacheService = cacheService
}

func (s *service) Load(ctx context.Context) (*Snapshot, error) {
	var snap *Snapshot

	if s.cacheService != nil {
		snap = &Snapshot{}
		err := s.cacheService.GetOrSet(ctx, constants.CACHE_KEY_CATALOG, constants.TTL_CATALOG, func() (interface{}, error) {
			return s.fetch(ctx)
		}, snap)
		if err != nil {
			s.clear()
			return nil, err
		}
	} else {
		fetched, err := s.fetch(ctx)
		if err != nil {
			s.clear()
			return nil, err
		}
		snap = fetched
	}

	s.mu.Lock()
	s.snapshot = snap
	s.mu.Unlock()

	logger.GetDefault().Info("catalog loaded",
		"shifts", len(snap.Shifts),
		"branches", len(snap.Branches),
	)

	return snap, nil
}

func (s *service) Reload(ctx context.Context) (*Snapshot, error) {
	if s.cacheService != nil {
		if err := s.cacheService.Delete(ctx, constants.CACHE_KEY_CATALOG); err != nil {
			logger.GetDefault().Debug("failed to drop cached catalog", "error", err)
		}
	}
	return s.Load(ctx)
}

// fetch reads both lists from the database; a Snapshot is only formed
// once both succeed.
func (s *service) fetch(ctx context.Context) (*Snapshot, error) {
	shifts, err := s.repo.ListShifts(ctx)
	if err != nil {
		return nil, apperrors.NewFetchError("catalog", fmt.Errorf("failed to list shifts: %w", err))
	}

	branches, err := s.repo.ListBranches(ctx)
	if err != nil {
		return nil, apperrors.NewFetchError("catalog", fmt.Errorf("failed to list branches: %w", err))
	}

	return &Snapshot{Shifts: shifts, Branches: branches}, nil
}

// clear drops the cache so a failed load never leaves a partial catalog.
func (s *service) clear() {
	s.mu.Lock()
	s.snapshot = nil
	s.mu.Unlock()
}

func (s *service) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

func (s *service) Branches() []Branch {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snapshot == nil {
		return nil
	}
	return s.snapshot.Branches
}

func (s *service) Shifts() []ShiftDefinition {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snapshot == nil {
		return nil
	}
	return s.snapshot.Shifts
}

func (s *service) ShiftByID(id uuid.UUID) (*ShiftDefinition, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snapshot == nil {
		return nil, false
	}
	for i := range s.snapshot.Shifts {
		if s.snapshot.Shifts[i].ID == id {
			return &s.snapshot.Shifts[i], true
		}
	}
	return nil, false
}

func (s *service) BranchByID(id uuid.UUID) (*Branch, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snapshot == nil {
		return nil, false
	}
	for i := range s.snapshot.Branches {
		if s.snapshot.Branches[i].ID == id {
			return &s.snapshot.Branches[i], true
		}
	}
	return nil, false
}

func (s *service) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot != nil
}
