package database

import (
	"gorm.io/gorm"
)

// constraintStatements run on every boot, so each one must be safe to
// re-run against an already-migrated schema. PostgreSQL has no
// ADD CONSTRAINT IF NOT EXISTS, so the constraint swallows its own
// duplicate_object error instead.
var constraintStatements = []string{
	// A seat can host each shift at most once; renewals replace the row
	// rather than stacking occupancies.
	`
	DO $$
	BEGIN
		ALTER TABLE seat_shift_occupancies
		ADD CONSTRAINT unique_seat_shift
		UNIQUE (seat_id, shift_id);
	EXCEPTION
		WHEN duplicate_object THEN NULL;
	END $$;
	`,

	// Index for the free-shifts-for-seat lookup on every seat selection
	`
	CREATE INDEX IF NOT EXISTS idx_occupancies_seat_shift
	ON seat_shift_occupancies (seat_id, shift_id);
	`,

	// Indexes for branch-scoped seat and locker listings
	`
	CREATE INDEX IF NOT EXISTS idx_seats_branch_id
	ON seats (branch_id);
	`,
	`
	CREATE INDEX IF NOT EXISTS idx_lockers_branch_id
	ON lockers (branch_id);
	`,
}

// MigrateConstraints adds critical database constraints for concurrency control
func MigrateConstraints(db *gorm.DB) error {
	for _, stmt := range constraintStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}
