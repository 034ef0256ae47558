package availability

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/Rounit002/maasaraswatilibrary/internal/catalog"
	"github.com/Rounit002/maasaraswatilibrary/internal/shared/apperrors"
	"github.com/Rounit002/maasaraswatilibrary/internal/shared/constants"
	"github.com/Rounit002/maasaraswatilibrary/pkg/cache"
	"github.com/Rounit002/maasaraswatilibrary/pkg/logger"
)

type Service interface {
	// ResolveAvailability returns the offerable seats and lockers for a
	// branch, each list headed by a synthetic "none" option. A zero
	// branchID means no branch is selected: both lists contain only the
	// none option and no database call is made. Seats and lockers are
	// fetched together and committed as one Result.
	ResolveAvailability(ctx context.Context, branchID uuid.UUID, studentID uuid.UUID) (*Result, error)

	// ResolveShiftEligibility annotates every shift in allShifts with its
	// eligibility for the given seat. A zero seatID removes the seat
	// constraint: every shift is eligible, no database call. Shifts the
	// student already holds (assignmentShiftIDs) are always eligible so a
	// renewal can never lock a student out of their own slot.
	ResolveShiftEligibility(ctx context.Context, seatID uuid.UUID, assignmentShiftIDs []uuid.UUID, allShifts []catalog.ShiftDefinition) ([]ShiftOption, error)

	// InvalidateBranch drops cached availability for a branch after a
	// renewal commits.
	InvalidateBranch(ctx context.Context, branchID uuid.UUID)

	// SetCacheService injects the optional redis cache layer.
	SetCacheService(cacheService cache.Service)
}

type service struct {
	repo         Repository
	cacheService cache.Service
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) SetCacheService(cacheService cache.Service) {
	s.cacheService = cacheService
}

func (s *service) ResolveAvailability(ctx context.Context, branchID uuid.UUID, studentID uuid.UUID) (*Result, error) {
	// No branch selected: synthetic none options only, no remote call.
	if branchID == uuid.Nil {
		return &Result{
			Seats:   []SeatOption{NoneSeatOption()},
			Lockers: []LockerOption{NoneLockerOption()},
		}, nil
	}

	cacheKey := constants.BuildBranchAvailabilityKey(branchID.String(), studentID.String())
	if s.cacheService != nil {
		var cached Result
		if err := s.cacheService.Get(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	// Seats and lockers are fetched together; the Result is committed
	// only once both succeed, so a consumer never observes seats from
	// one branch alongside lockers from another.
	var (
		seats   []Seat
		lockers []Locker
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		seats, err = s.repo.ListSeatsByBranch(gctx, branchID)
		if err != nil {
			return apperrors.NewFetchError("seats", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		lockers, err = s.repo.ListLockersByBranch(gctx, branchID)
		if err != nil {
			return apperrors.NewFetchError("lockers", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &Result{
		Seats:   []SeatOption{NoneSeatOption()},
		Lockers: []LockerOption{NoneLockerOption()},
	}

	for i := range seats {
		if !seats[i].IsOfferableTo(studentID) {
			continue
		}
		id := seats[i].ID
		result.Seats = append(result.Seats, SeatOption{ID: &id, SeatNumber: seats[i].SeatNumber})
	}

	for i := range lockers {
		if !lockers[i].IsOfferableTo(studentID) {
			continue
		}
		id := lockers[i].ID
		result.Lockers = append(result.Lockers, LockerOption{ID: &id, LockerNumber: lockers[i].LockerNumber})
	}

	if s.cacheService != nil {
		if err := s.cacheService.Set(ctx, cacheKey, result, constants.TTL_AVAILABILITY); err != nil {
			logger.GetDefault().Debug("failed to cache branch availability", "error", err)
		}
	}

	return result, nil
}

func (s *service) ResolveShiftEligibility(ctx context.Context, seatID uuid.UUID, assignmentShiftIDs []uuid.UUID, allShifts []catalog.ShiftDefinition) ([]ShiftOption, error) {
	// No seat selected: the seat constraint disappears entirely.
	if seatID == uuid.Nil {
		options := make([]ShiftOption, 0, len(allShifts))
		for _, shift := range allShifts {
			options = append(options, ShiftOption{
				ShiftDefinition: shift,
				Eligible:        true,
				Status:          ShiftStatusAvailable,
			})
		}
		return options, nil
	}

	cacheKey := constants.BuildSeatShiftsKey(seatID.String())

	var freeIDs []uuid.UUID
	cached := false
	if s.cacheService != nil {
		if err := s.cacheService.Get(ctx, cacheKey, &freeIDs); err == nil {
			cached = true
		}
	}
	if !cached {
		var err error
		freeIDs, err = s.repo.FreeShiftIDsForSeat(ctx, seatID)
		if err != nil {
			return nil, apperrors.NewFetchError("shifts", err)
		}
		if s.cacheService != nil {
			if err := s.cacheService.Set(ctx, cacheKey, freeIDs, constants.TTL_AVAILABILITY); err != nil {
				logger.GetDefault().Debug("failed to cache seat shifts", "error", err)
			}
		}
	}

	// Union the free set with the student's current assignments: a shift
	// the student already holds stays eligible even if the seat never
	// reported it free.
	eligible := make(map[uuid.UUID]bool, len(freeIDs)+len(assignmentShiftIDs))
	for _, id := range freeIDs {
		eligible[id] = true
	}
	for _, id := range assignmentShiftIDs {
		eligible[id] = true
	}

	options := make([]ShiftOption, 0, len(allShifts))
	for _, shift := range allShifts {
		status := ShiftStatusTaken
		if eligible[shift.ID] {
			status = ShiftStatusAvailable
		}
		options = append(options, ShiftOption{
			ShiftDefinition: shift,
			Eligible:        eligible[shift.ID],
			Status:          status,
		})
	}

	return options, nil
}

func (s *service) InvalidateBranch(ctx context.Context, branchID uuid.UUID) {
	if s.cacheService == nil {
		return
	}
	pattern := constants.CACHE_KEY_AVAILABILITY + branchID.String() + ":*"
	if err := s.cacheService.DeletePattern(ctx, pattern); err != nil {
		logger.GetDefault().Debug("failed to invalidate branch availability", "error", err)
	}

	// Occupancy rows carry no branch id, so cached seat shift sets are
	// dropped wholesale.
	if err := s.cacheService.DeletePattern(ctx, constants.CACHE_KEY_SHIFTS_FREE+"*"); err != nil {
		logger.GetDefault().Debug("failed to invalidate seat shifts", "error", err)
	}
}
