package students

import (
	"time"

	"github.com/google/uuid"
)

// Student is the subject of a renewal. Fee fields hold the figures of the
// most recent renewal.
type Student struct {
	ID                 uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name               string     `gorm:"not null" json:"name"`
	RegistrationNumber string     `gorm:"index" json:"registration_number"`
	FatherName         string     `json:"father_name"`
	AadharNumber       string     `json:"aadhar_number"`
	Address            string     `gorm:"not null" json:"address"`
	Email              string     `json:"email"`
	Phone              string     `gorm:"not null;index" json:"phone"`
	BranchID           uuid.UUID  `gorm:"type:uuid;index;not null" json:"branch_id"`
	LockerID           *uuid.UUID `gorm:"type:uuid" json:"locker_id,omitempty"`
	MembershipStart    time.Time  `gorm:"not null" json:"membership_start"`
	MembershipEnd      time.Time  `gorm:"not null;index" json:"membership_end"`
	TotalFee           float64    `json:"total_fee"`
	LockerFee          float64    `json:"locker_fee"`
	Cash               float64    `json:"cash"`
	Online             float64    `json:"online"`
	SecurityMoney      float64    `json:"security_money"`
	Discount           float64    `json:"discount"`
	Remark             string     `json:"remark"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`

	// Relationships
	Assignments []Assignment `json:"assignments,omitempty" gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE;"`
}

// Assignment denotes the student's current occupancy of one seat across
// one shift. A student may hold several assignments at once (same seat,
// different shifts). Read-only input to renewal.
type Assignment struct {
	ID         uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	StudentID  uuid.UUID `gorm:"type:uuid;index;not null" json:"student_id"`
	SeatID     uuid.UUID `gorm:"type:uuid;index;not null" json:"seat_id"`
	ShiftID    uuid.UUID `gorm:"type:uuid;not null" json:"shift_id"`
	SeatNumber string    `json:"seat_number"`
	ShiftTitle string    `json:"shift_title"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName sets the table name for Student
func (Student) TableName() string {
	return "students"
}

// TableName sets the table name for Assignment
func (Assignment) TableName() string {
	return "assignments"
}

// IsExpired reports whether the membership has lapsed.
func (s *Student) IsExpired(now time.Time) bool {
	return s.MembershipEnd.Before(now)
}

// RenewPayload is the complete selection snapshot submitted for a
// renewal. Validated before any database call.
type RenewPayload struct {
	Name               string      `json:"name" validate:"required"`
	RegistrationNumber string      `json:"registration_number"`
	FatherName         string      `json:"father_name"`
	AadharNumber       string      `json:"aadhar_number"`
	Address            string      `json:"address" validate:"required"`
	MembershipStart    time.Time   `json:"membership_start" validate:"required"`
	MembershipEnd      time.Time   `json:"membership_end" validate:"required"`
	Email              string      `json:"email" validate:"omitempty,email"`
	Phone              string      `json:"phone" validate:"required"`
	BranchID           uuid.UUID   `json:"branch_id" validate:"required"`
	ShiftIDs           []uuid.UUID `json:"shift_ids" validate:"required,min=1"`
	SeatID             *uuid.UUID  `json:"seat_id,omitempty"`
	LockerID           *uuid.UUID  `json:"locker_id,omitempty"`
	LockerFee          float64     `json:"locker_fee"`
	Discount           float64     `json:"discount"`
	TotalFee           float64     `json:"total_fee"`
	Cash               float64     `json:"cash"`
	Online             float64     `json:"online"`
	SecurityMoney      float64     `json:"security_money"`
	Remark             string      `json:"remark"`
}

// ExpiredStudentResponse is one row of the expired-members table.
type ExpiredStudentResponse struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Phone         string    `json:"phone"`
	BranchID      uuid.UUID `json:"branch_id"`
	MembershipEnd time.Time `json:"membership_end"`
	SeatNumbers   []string  `json:"seat_numbers"`
	ShiftTitles   []string  `json:"shift_titles"`
	TotalFee      float64   `json:"total_fee"`
}
