package renewal

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Rounit002/maasaraswatilibrary/internal/availability"
	"github.com/Rounit002/maasaraswatilibrary/internal/catalog"
)

// Selection is the mutable state of one renewal dialog: the chosen
// branch, seat, shifts and locker plus the fee figures derived from them.
type Selection struct {
	Branch *catalog.Branch            `json:"branch"`
	Seat   *availability.SeatOption   `json:"seat"`
	Shifts []catalog.ShiftDefinition  `json:"shifts"`
	Locker *availability.LockerOption `json:"locker"`

	// TotalFee is the single source of truth for the renewal fee. It is
	// system-owned (FeeLocked) while exactly one shift is selected and
	// user-editable otherwise.
	TotalFee  float64 `json:"total_fee"`
	FeeLocked bool    `json:"fee_locked"`

	LockerFee     float64 `json:"locker_fee"`
	Cash          float64 `json:"cash"`
	Online        float64 `json:"online"`
	SecurityMoney float64 `json:"security_money"`
	Discount      float64 `json:"discount"`

	// Derived, never directly editable.
	Paid float64 `json:"paid"`
	Due  float64 `json:"due"`
}

// Session is one open renewal dialog. It lives in memory for the dialog's
// lifetime only and is destroyed on submit or cancel.
//
// Each resolver slot carries a monotonically increasing sequence number.
// Every fetch is tagged with the sequence current at its start; the
// result is applied only if the tag is still the latest for that slot
// when it lands, so a response for an abandoned selection can never
// overwrite a newer one.
type Session struct {
	ID        uuid.UUID
	StudentID uuid.UUID
	CreatedAt time.Time
	ExpiresAt time.Time

	mu sync.Mutex

	selection Selection

	seatOptions   []availability.SeatOption
	lockerOptions []availability.LockerOption
	shiftOptions  []availability.ShiftOption

	// Current assignments captured when the dialog opened; input to the
	// self-exemption merge, never mutated here.
	assignmentShiftIDs []uuid.UUID

	availabilitySeq uint64 // branch -> {seats, lockers} slot
	shiftSeq        uint64 // seat -> shift eligibility slot
}

// Snapshot is the wire representation of a session returned after every
// state change.
type Snapshot struct {
	ID            uuid.UUID                   `json:"id"`
	StudentID     uuid.UUID                   `json:"student_id"`
	Selection     Selection                   `json:"selection"`
	SeatOptions   []availability.SeatOption   `json:"seat_options"`
	LockerOptions []availability.LockerOption `json:"locker_options"`
	ShiftOptions  []availability.ShiftOption  `json:"shift_options"`
	ExpiresAt     time.Time                   `json:"expires_at"`
}

// snapshotLocked builds a Snapshot; the caller must hold s.mu.
func (s *Session) snapshotLocked() *Snapshot {
	snap := &Snapshot{
		ID:        s.ID,
		StudentID: s.StudentID,
		Selection: s.selection,
		ExpiresAt: s.ExpiresAt,
	}
	snap.SeatOptions = append(snap.SeatOptions, s.seatOptions...)
	snap.LockerOptions = append(snap.LockerOptions, s.lockerOptions...)
	snap.ShiftOptions = append(snap.ShiftOptions, s.shiftOptions...)
	return snap
}

// Request DTOs

type OpenSessionRequest struct {
	StudentID string `json:"student_id" binding:"required,uuid"`
}

type SetBranchRequest struct {
	// Empty clears the branch selection.
	BranchID string `json:"branch_id" binding:"omitempty,uuid"`
}

type SetSeatRequest struct {
	// Empty selects the synthetic "no seat" option.
	SeatID string `json:"seat_id" binding:"omitempty,uuid"`
}

type SetShiftsRequest struct {
	ShiftIDs []string `json:"shift_ids" binding:"required,dive,uuid"`
}

type SetLockerRequest struct {
	// Empty selects the synthetic "no locker" option.
	LockerID string `json:"locker_id" binding:"omitempty,uuid"`
}

// UpdateFeesRequest carries raw form input. Values arrive as strings
// because the admin screen sends free-typed text; anything unparseable
// counts as 0, never an error. Nil fields are left unchanged.
type UpdateFeesRequest struct {
	TotalFee      *string `json:"total_fee"`
	LockerFee     *string `json:"locker_fee"`
	Cash          *string `json:"cash"`
	Online        *string `json:"online"`
	SecurityMoney *string `json:"security_money"`
	Discount      *string `json:"discount"`
}

// SubmitRequest carries the personal and membership fields of the
// renewal payload; the selection and fee fields come from the session.
type SubmitRequest struct {
	Name               string    `json:"name"`
	RegistrationNumber string    `json:"registration_number"`
	FatherName         string    `json:"father_name"`
	AadharNumber       string    `json:"aadhar_number"`
	Address            string    `json:"address"`
	MembershipStart    time.Time `json:"membership_start"`
	MembershipEnd      time.Time `json:"membership_end"`
	Email              string    `json:"email" validate:"omitempty,email"`
	Phone              string    `json:"phone"`
	Remark             string    `json:"remark"`
}
