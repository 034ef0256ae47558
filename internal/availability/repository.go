package availability

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	ListSeatsByBranch(ctx context.Context, branchID uuid.UUID) ([]Seat, error)
	ListLockersByBranch(ctx context.Context, branchID uuid.UUID) ([]Locker, error)

	// FreeShiftIDsForSeat returns the shift ids with no occupancy row for
	// the given seat. The subject student's own occupancies are NOT
	// exempted here; the self-exemption union is the service's job.
	FreeShiftIDsForSeat(ctx context.Context, seatID uuid.UUID) ([]uuid.UUID, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) ListSeatsByBranch(ctx context.Context, branchID uuid.UUID) ([]Seat, error) {
	var seats []Seat
	err := r.db.WithContext(ctx).
		Where("branch_id = ?", branchID).
		Order("seat_number ASC").
		Find(&seats).Error
	return seats, err
}

func (r *repository) ListLockersByBranch(ctx context.Context, branchID uuid.UUID) ([]Locker, error) {
	var lockers []Locker
	err := r.db.WithContext(ctx).
		Where("branch_id = ?", branchID).
		Order("locker_number ASC").
		Find(&lockers).Error
	return lockers, err
}

func (r *repository) FreeShiftIDsForSeat(ctx context.Context, seatID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Table("shift_definitions").
		Where("id NOT IN (?)", r.db.
			Table("seat_shift_occupancies").
			Select("shift_id").
			Where("seat_id = ?", seatID)).
		Pluck("id", &ids).Error
	return ids, err
}
