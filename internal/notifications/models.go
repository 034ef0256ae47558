package notifications

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventTypeRenewalCompleted EventType = "RENEWAL_COMPLETED"
)

type EventStatus string

const (
	EventStatusQueued EventStatus = "QUEUED"
	EventStatusFailed EventStatus = "FAILED"
)

// RenewalEvent is the message published after a membership renewal is
// persisted. Downstream workers use it for receipts and reminders.
type RenewalEvent struct {
	ID   uuid.UUID `json:"id"`
	Type EventType `json:"type"`

	StudentID   uuid.UUID `json:"student_id"`
	StudentName string    `json:"student_name"`
	Email       string    `json:"email,omitempty"`
	Phone       string    `json:"phone"`

	BranchID uuid.UUID   `json:"branch_id"`
	SeatID   *uuid.UUID  `json:"seat_id,omitempty"`
	LockerID *uuid.UUID  `json:"locker_id,omitempty"`
	ShiftIDs []uuid.UUID `json:"shift_ids"`

	MembershipStart time.Time `json:"membership_start"`
	MembershipEnd   time.Time `json:"membership_end"`

	TotalFee float64 `json:"total_fee"`
	Paid     float64 `json:"paid"`
	Due      float64 `json:"due"`

	Status    EventStatus `json:"status"`
	LastError *string     `json:"last_error,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

func NewRenewalEvent(studentID uuid.UUID) *RenewalEvent {
	return &RenewalEvent{
		ID:        uuid.New(),
		Type:      EventTypeRenewalCompleted,
		StudentID: studentID,
		CreatedAt: time.Now(),
	}
}

func (e *RenewalEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func (e *RenewalEvent) FromJSON(data []byte) error {
	return json.Unmarshal(data, e)
}

// GetPartitionKey routes all events for one student to the same
// partition so their ordering is preserved.
func (e *RenewalEvent) GetPartitionKey() string {
	return e.StudentID.String()
}
