package catalog

import (
	"time"

	"github.com/google/uuid"
)

// Branch defines a facility location. Reference data, fetched once.
type Branch struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name      string    `gorm:"not null;unique" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ShiftDefinition defines a bookable time shift with its nominal fee.
type ShiftDefinition struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Title     string    `gorm:"not null" json:"title"`
	Fee       float64   `gorm:"not null" json:"fee"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName sets the table name for Branch
func (Branch) TableName() string {
	return "branches"
}

// TableName sets the table name for ShiftDefinition
func (ShiftDefinition) TableName() string {
	return "shift_definitions"
}

// Snapshot is the immutable result of one catalog load. Reused across
// renewal sessions; per-selection subsets are derived from it without
// re-fetching.
type Snapshot struct {
	Shifts   []ShiftDefinition `json:"shifts"`
	Branches []Branch          `json:"branches"`
}
