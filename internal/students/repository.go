package students

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Rounit002/maasaraswatilibrary/internal/availability"
	"github.com/Rounit002/maasaraswatilibrary/internal/catalog"
)

type Repository interface {
	GetStudent(ctx context.Context, id uuid.UUID) (*Student, error)
	ListExpired(ctx context.Context, branchID *uuid.UUID, now time.Time) ([]Student, error)
	Renew(ctx context.Context, id uuid.UUID, payload RenewPayload) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetStudent(ctx context.Context, id uuid.UUID) (*Student, error) {
	var student Student
	err := r.db.WithContext(ctx).
		Preload("Assignments").
		First(&student, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *repository) ListExpired(ctx context.Context, branchID *uuid.UUID, now time.Time) ([]Student, error) {
	var expired []Student
	query := r.db.WithContext(ctx).
		Preload("Assignments").
		Where("membership_end < ?", now)
	if branchID != nil {
		query = query.Where("branch_id = ?", *branchID)
	}
	err := query.Order("membership_end ASC").Find(&expired).Error
	return expired, err
}

// Renew applies the complete selection snapshot in one transaction:
// student fields, seat and locker occupancy, shift occupancies and the
// assignment rows are all replaced together or not at all.
func (r *repository) Renew(ctx context.Context, id uuid.UUID, payload RenewPayload) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var student Student
		if err := tx.Preload("Assignments").First(&student, "id = ?", id).Error; err != nil {
			return err
		}

		// Release the seats and locker the student held before.
		if err := releaseCurrentHoldings(tx, &student); err != nil {
			return err
		}

		// Update the student record with the renewed membership.
		updates := map[string]interface{}{
			"name":                payload.Name,
			"registration_number": payload.RegistrationNumber,
			"father_name":         payload.FatherName,
			"aadhar_number":       payload.AadharNumber,
			"address":             payload.Address,
			"email":               payload.Email,
			"phone":               payload.Phone,
			"branch_id":           payload.BranchID,
			"locker_id":           payload.LockerID,
			"membership_start":    payload.MembershipStart,
			"membership_end":      payload.MembershipEnd,
			"total_fee":           payload.TotalFee,
			"locker_fee":          payload.LockerFee,
			"cash":                payload.Cash,
			"online":              payload.Online,
			"security_money":      payload.SecurityMoney,
			"discount":            payload.Discount,
			"remark":              payload.Remark,
		}
		if err := tx.Model(&Student{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return err
		}

		// Replace assignments and shift occupancies for the new seat.
		if err := tx.Delete(&Assignment{}, "student_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&availability.SeatShiftOccupancy{}, "student_id = ?", id).Error; err != nil {
			return err
		}

		if payload.SeatID != nil {
			var seat availability.Seat
			if err := tx.First(&seat, "id = ?", *payload.SeatID).Error; err != nil {
				return err
			}

			for _, shiftID := range payload.ShiftIDs {
				var shift catalog.ShiftDefinition
				if err := tx.First(&shift, "id = ?", shiftID).Error; err != nil {
					return err
				}

				occupancy := availability.SeatShiftOccupancy{
					SeatID:    *payload.SeatID,
					ShiftID:   shiftID,
					StudentID: id,
				}
				if err := tx.Create(&occupancy).Error; err != nil {
					return err
				}

				assignment := Assignment{
					StudentID:  id,
					SeatID:     *payload.SeatID,
					ShiftID:    shiftID,
					SeatNumber: seat.SeatNumber,
					ShiftTitle: shift.Title,
				}
				if err := tx.Create(&assignment).Error; err != nil {
					return err
				}
			}

			if err := tx.Model(&availability.Seat{}).
				Where("id = ?", *payload.SeatID).
				Update("occupant_student_id", id).Error; err != nil {
				return err
			}
		}

		if payload.LockerID != nil {
			if err := tx.Model(&availability.Locker{}).
				Where("id = ?", *payload.LockerID).
				Updates(map[string]interface{}{
					"is_assigned":         true,
					"occupant_student_id": id,
				}).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var student Student
		if err := tx.Preload("Assignments").First(&student, "id = ?", id).Error; err != nil {
			return err
		}

		if err := releaseCurrentHoldings(tx, &student); err != nil {
			return err
		}

		if err := tx.Delete(&Assignment{}, "student_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&availability.SeatShiftOccupancy{}, "student_id = ?", id).Error; err != nil {
			return err
		}

		return tx.Delete(&Student{}, "id = ?", id).Error
	})
}

// releaseCurrentHoldings clears the student's seat and locker occupancy
// so the resources become offerable again.
func releaseCurrentHoldings(tx *gorm.DB, student *Student) error {
	if err := tx.Model(&availability.Seat{}).
		Where("occupant_student_id = ?", student.ID).
		Update("occupant_student_id", nil).Error; err != nil {
		return err
	}

	if student.LockerID != nil {
		if err := tx.Model(&availability.Locker{}).
			Where("id = ? AND occupant_student_id = ?", *student.LockerID, student.ID).
			Updates(map[string]interface{}{
				"is_assigned":         false,
				"occupant_student_id": nil,
			}).Error; err != nil {
			return err
		}
	}

	return nil
}
