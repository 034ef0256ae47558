package database

import (
	"github.com/Rounit002/maasaraswatilibrary/internal/availability"
	"github.com/Rounit002/maasaraswatilibrary/internal/catalog"
	"github.com/Rounit002/maasaraswatilibrary/internal/students"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&catalog.Branch{},
		&catalog.ShiftDefinition{},
		&availability.Seat{},
		&availability.Locker{},
		&availability.SeatShiftOccupancy{},
		&students.Student{},
		&students.Assignment{},
	)
}
