package availability

import (
	"time"

	"github.com/google/uuid"

	"github.com/Rounit002/maasaraswatilibrary/internal/catalog"
)

// Seat defines a numbered seat within a branch. Occupancy is mutated by
// renewals elsewhere; resolvers read a snapshot.
type Seat struct {
	ID                uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	BranchID          uuid.UUID  `gorm:"type:uuid;index;not null;uniqueIndex:idx_branch_seat" json:"branch_id"`
	SeatNumber        string     `gorm:"not null;uniqueIndex:idx_branch_seat" json:"seat_number"`
	OccupantStudentID *uuid.UUID `gorm:"type:uuid;index" json:"occupant_student_id,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// Locker defines a lockable storage unit within a branch.
type Locker struct {
	ID                uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	BranchID          uuid.UUID  `gorm:"type:uuid;index;not null;uniqueIndex:idx_branch_locker" json:"branch_id"`
	LockerNumber      string     `gorm:"not null;uniqueIndex:idx_branch_locker" json:"locker_number"`
	IsAssigned        bool       `gorm:"not null;default:false" json:"is_assigned"`
	OccupantStudentID *uuid.UUID `gorm:"type:uuid;index" json:"occupant_student_id,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// SeatShiftOccupancy records that a student holds one shift on one seat.
type SeatShiftOccupancy struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	SeatID    uuid.UUID `gorm:"type:uuid;index;not null;uniqueIndex:idx_seat_shift" json:"seat_id"`
	ShiftID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_seat_shift" json:"shift_id"`
	StudentID uuid.UUID `gorm:"type:uuid;index;not null" json:"student_id"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName sets the table name for Seat
func (Seat) TableName() string {
	return "seats"
}

// TableName sets the table name for Locker
func (Locker) TableName() string {
	return "lockers"
}

// TableName sets the table name for SeatShiftOccupancy
func (SeatShiftOccupancy) TableName() string {
	return "seat_shift_occupancies"
}

// IsOfferableTo reports whether the seat can be offered to the student
// being renewed: unoccupied, or already held by that student.
func (s *Seat) IsOfferableTo(studentID uuid.UUID) bool {
	return s.OccupantStudentID == nil || *s.OccupantStudentID == studentID
}

// IsOfferableTo reports whether the locker can be offered to the student
// being renewed.
func (l *Locker) IsOfferableTo(studentID uuid.UUID) bool {
	if !l.IsAssigned {
		return true
	}
	return l.OccupantStudentID != nil && *l.OccupantStudentID == studentID
}

// SeatOption is one entry in the offerable-seats list. A nil ID is the
// synthetic "no seat" option that always heads the list.
type SeatOption struct {
	ID         *uuid.UUID `json:"id"`
	SeatNumber string     `json:"seat_number"`
}

// LockerOption is one entry in the offerable-lockers list. A nil ID is
// the synthetic "no locker" option.
type LockerOption struct {
	ID           *uuid.UUID `json:"id"`
	LockerNumber string     `json:"locker_number"`
}

// NoneSeatOption returns the synthetic head entry of the seat list.
func NoneSeatOption() SeatOption {
	return SeatOption{ID: nil, SeatNumber: "No Seat"}
}

// NoneLockerOption returns the synthetic head entry of the locker list.
func NoneLockerOption() LockerOption {
	return LockerOption{ID: nil, LockerNumber: "No Locker"}
}

// Result is the atomically committed outcome of one availability
// resolution for a branch. Seats and lockers always change together;
// a consumer never sees one list from a newer branch than the other.
type Result struct {
	Seats   []SeatOption   `json:"seats"`
	Lockers []LockerOption `json:"lockers"`
}

// Shift eligibility statuses
const (
	ShiftStatusAvailable = "AVAILABLE"
	ShiftStatusTaken     = "TAKEN"
)

// ShiftOption annotates a shift definition with its eligibility for the
// currently selected seat.
type ShiftOption struct {
	catalog.ShiftDefinition
	Eligible bool   `json:"eligible"`
	Status   string `json:"status"` // AVAILABLE or TAKEN
}
