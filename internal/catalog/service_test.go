package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Rounit002/maasaraswatilibrary/internal/shared/apperrors"
	"github.com/Rounit002/maasaraswatilibrary/internal/shared/constants"
	"github.com/Rounit002/maasaraswatilibrary/pkg/cache"
)

type fakeRepo struct {
	branches    []Branch
	shifts      []ShiftDefinition
	branchesErr error
	shiftsErr   error

	shiftCalls int
}

func (r *fakeRepo) ListBranches(ctx context.Context) ([]Branch, error) {
	return r.branches, r.branchesErr
}

func (r *fakeRepo) ListShifts(ctx context.Context) ([]ShiftDefinition, error) {
	r.shiftCalls++
	return r.shifts, r.shiftsErr
}

// fakeCache is an in-process stand-in for the redis cache layer.
type fakeCache struct {
	entries map[string][]byte
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string][]byte{}}
}

func (c *fakeCache) Get(ctx context.Context, key string, dest interface{}) error {
	data, ok := c.entries[key]
	if !ok {
		return cache.ErrCacheMiss
	}
	return json.Unmarshal(data, dest)
}

func (c *fakeCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.entries[key] = data
	return nil
}

func (c *fakeCache) Delete(ctx context.Context, key string) error {
	delete(c.entries, key)
	return nil
}

func (c *fakeCache) DeletePattern(ctx context.Context, pattern string) error {
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
	return nil
}

func (c *fakeCache) Exists(ctx context.Context, key string) bool {
	_, ok := c.entries[key]
	return ok
}

func (c *fakeCache) GetOrSet(ctx context.Context, key string, ttl time.Duration, fetcher func() (interface{}, error), dest interface{}) error {
	if err := c.Get(ctx, key, dest); err == nil {
		return nil
	}
	data, err := fetcher()
	if err != nil {
		return err
	}
	if err := c.Set(ctx, key, data, ttl); err != nil {
		return err
	}
	return c.Get(ctx, key, dest)
}

func (c *fakeCache) Ping(ctx context.Context) error { return nil }

func TestLoadPopulatesSnapshot(t *testing.T) {
	branch := Branch{ID: uuid.New(), Name: "Main Branch"}
	shift := ShiftDefinition{ID: uuid.New(), Title: "Morning", Fee: 300}
	svc := NewService(&fakeRepo{
		branches: []Branch{branch},
		shifts:   []ShiftDefinition{shift},
	})

	snap, err := svc.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(snap.Branches) != 1 || len(snap.Shifts) != 1 {
		t.Fatalf("snapshot = %d branches / %d shifts, want 1/1", len(snap.Branches), len(snap.Shifts))
	}
	if !svc.Loaded() {
		t.Error("Loaded() = false after successful load")
	}

	got, ok := svc.ShiftByID(shift.ID)
	if !ok || got.Fee != 300 {
		t.Errorf("ShiftByID() = %v, %t", got, ok)
	}
	if _, ok := svc.BranchByID(uuid.New()); ok {
		t.Error("BranchByID() found unknown id")
	}
}

func TestLoadFailureLeavesNoPartialCatalog(t *testing.T) {
	branch := Branch{ID: uuid.New(), Name: "Main Branch"}
	repo := &fakeRepo{branches: []Branch{branch}, shifts: []ShiftDefinition{{ID: uuid.New(), Title: "Morning", Fee: 300}}}
	svc := NewService(repo)

	if _, err := svc.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// Either list failing drops the whole catalog; no branch list from
	// one load paired with shifts from another.
	repo.shiftsErr = errors.New("connection refused")
	_, err := svc.Load(context.Background())
	if !apperrors.IsFetchError(err) {
		t.Fatalf("Load() error = %v, want FetchError", err)
	}

	if svc.Loaded() {
		t.Error("Loaded() = true after failed reload")
	}
	if branches := svc.Branches(); len(branches) != 0 {
		t.Errorf("Branches() = %v, want empty after failed reload", branches)
	}
}

func TestLoadServesCachedCatalog(t *testing.T) {
	branch := Branch{ID: uuid.New(), Name: "Main Branch"}
	repo := &fakeRepo{
		branches: []Branch{branch},
		shifts:   []ShiftDefinition{{ID: uuid.New(), Title: "Morning", Fee: 300}},
	}
	redis := newFakeCache()

	svc := NewService(repo)
	svc.SetCacheService(redis)
	if _, err := svc.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if repo.shiftCalls != 1 {
		t.Fatalf("shiftCalls = %d, want 1", repo.shiftCalls)
	}
	if !redis.Exists(context.Background(), constants.CACHE_KEY_CATALOG) {
		t.Fatal("catalog not cached under the catalog key")
	}

	// A second process sharing redis loads without a database trip.
	fresh := NewService(repo)
	fresh.SetCacheService(redis)
	if _, err := fresh.Load(context.Background()); err != nil {
		t.Fatalf("Load() from cache error = %v", err)
	}
	if repo.shiftCalls != 1 {
		t.Errorf("shiftCalls = %d, want 1: catalog refetched despite cached copy", repo.shiftCalls)
	}
	if _, ok := fresh.BranchByID(branch.ID); !ok {
		t.Error("branch missing from cached snapshot")
	}
}

func TestReloadRefetchesPastCachedCatalog(t *testing.T) {
	repo := &fakeRepo{
		branches: []Branch{{ID: uuid.New(), Name: "Main Branch"}},
		shifts:   []ShiftDefinition{{ID: uuid.New(), Title: "Morning", Fee: 300}},
	}
	redis := newFakeCache()
	svc := NewService(repo)
	svc.SetCacheService(redis)

	if _, err := svc.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	added := Branch{ID: uuid.New(), Name: "Station Road Branch"}
	repo.branches = append(repo.branches, added)

	snap, err := svc.Reload(context.Background())
	if err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	if len(snap.Branches) != 2 {
		t.Errorf("len(Branches) = %d, want 2: reload served the stale cached copy", len(snap.Branches))
	}
	if _, ok := svc.BranchByID(added.ID); !ok {
		t.Error("new branch missing after reload")
	}
}
