package students

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Rounit002/maasaraswatilibrary/internal/shared/apperrors"
	"github.com/Rounit002/maasaraswatilibrary/internal/shared/constants"
	"github.com/Rounit002/maasaraswatilibrary/pkg/cache"
	"github.com/Rounit002/maasaraswatilibrary/pkg/logger"
)

type Service interface {
	GetStudent(ctx context.Context, id uuid.UUID) (*Student, error)
	ListExpiredMemberships(ctx context.Context, branchID *uuid.UUID) ([]ExpiredStudentResponse, error)

	// Renew applies the validated selection snapshot. The payload is
	// assumed validated by the renewal session; database rejections
	// surface as SubmitError with the server message kept verbatim.
	Renew(ctx context.Context, id uuid.UUID, payload RenewPayload) error
	Delete(ctx context.Context, id uuid.UUID) error

	// AssignmentShiftIDs returns the shift ids of the student's current
	// assignments (self-exemption input for shift eligibility).
	AssignmentShiftIDs(ctx context.Context, studentID uuid.UUID) ([]uuid.UUID, error)

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

func (s *service) GetStudent(ctx context.Context, id uuid.UUID) (*Student, error) {
	student, err := s.repo.GetStudent(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get student: %w", err)
	}
	return student, nil
}

func (s *service) ListExpiredMemberships(ctx context.Context, branchID *uuid.UUID) ([]ExpiredStudentResponse, error) {
	branchKey := ""
	if branchID != nil {
		branchKey = branchID.String()
	}

	cacheKey := constants.BuildExpiredListKey(branchKey)
	if s.cacheService != nil {
		var cached []ExpiredStudentResponse
		if err := s.cacheService.Get(ctx, cacheKey, &cached); err == nil {
			return cached, nil
		}
	}

	expired, err := s.repo.ListExpired(ctx, branchID, time.Now())
	if err != nil {
		return nil, apperrors.NewFetchError("expired memberships", err)
	}

	rows := make([]ExpiredStudentResponse, 0, len(expired))
	for i := range expired {
		student := &expired[i]
		row := ExpiredStudentResponse{
			ID:            student.ID,
			Name:          student.Name,
			Phone:         student.Phone,
			BranchID:      student.BranchID,
			MembershipEnd: student.MembershipEnd,
			TotalFee:      student.TotalFee,
		}
		for _, a := range student.Assignments {
			row.SeatNumbers = append(row.SeatNumbers, a.SeatNumber)
			row.ShiftTitles = append(row.ShiftTitles, a.ShiftTitle)
		}
		rows = append(rows, row)
	}

	if s.cacheService != nil {
		if err := s.cacheService.Set(ctx, cacheKey, rows, constants.TTL_EXPIRED_LIST); err != nil {
			logger.GetDefault().Debug("failed to cache expired list", "error", err)
		}
	}

	return rows, nil
}

func (s *service) Renew(ctx context.Context, id uuid.UUID, payload RenewPayload) error {
	if err := s.repo.Renew(ctx, id, payload); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrNotFound
		}
		// The database message goes back to the admin verbatim so the
		// rejected field can be corrected without re-entering data.
		return apperrors.NewSubmitError(err.Error(), err)
	}

	s.invalidateListings(ctx)
	return nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("failed to delete student: %w", err)
	}

	s.invalidateListings(ctx)
	return nil
}

func (s *service) AssignmentShiftIDs(ctx context.Context, studentID uuid.UUID) ([]uuid.UUID, error) {
	student, err := s.GetStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(student.Assignments))
	for _, a := range student.Assignments {
		ids = append(ids, a.ShiftID)
	}
	return ids, nil
}

func (s *service) invalidateListings(ctx context.Context) {
	if s.cacheService == nil {
		return
	}
	if err := s.cacheService.DeletePattern(ctx, constants.CACHE_KEY_EXPIRED_LIST+"*"); err != nil {
		logger.GetDefault().Debug("failed to invalidate expired listings", "error", err)
	}
}
