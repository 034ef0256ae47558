package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/Rounit002/maasaraswatilibrary/internal/availability"
	"github.com/Rounit002/maasaraswatilibrary/internal/catalog"
	"github.com/Rounit002/maasaraswatilibrary/internal/shared/config"
	"github.com/Rounit002/maasaraswatilibrary/internal/shared/database"
	"github.com/Rounit002/maasaraswatilibrary/internal/students"
)

type Seeder struct {
	db *database.DB
}

func main() {
	fmt.Println("Starting Library Database Seeder...")

	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	seeder := &Seeder{db: db}

	fmt.Println("\nCleaning database...")
	if err := seeder.CleanDatabase(); err != nil {
		log.Fatalf("Failed to clean database: %v", err)
	}
	fmt.Println("Database cleaned successfully")

	fmt.Println("\nSeeding database...")
	if err := seeder.SeedAll(); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}
	fmt.Println("Database seeded successfully")

	fmt.Println("\nSeeding completed! Database is ready for testing.")
}

// CleanDatabase truncates all tables in the correct order (respecting foreign key constraints)
func (s *Seeder) CleanDatabase() error {
	// Delete in reverse dependency order
	tables := []string{
		"assignments",
		"seat_shift_occupancies",
		"students",
		"lockers",
		"seats",
		"shift_definitions",
		"branches",
	}

	tx := s.db.PostgreSQL.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Exec("SET CONSTRAINTS ALL DEFERRED").Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to defer constraints: %w", err)
	}

	for _, table := range tables {
		fmt.Printf("  Truncating table: %s\n", table)
		if err := tx.Exec(fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table)).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	if err := tx.Exec("SET CONSTRAINTS ALL IMMEDIATE").Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to restore constraints: %w", err)
	}

	return tx.Commit().Error
}

// SeedAll seeds all required data
func (s *Seeder) SeedAll() error {
	ctx := context.Background()

	branchIDs, err := s.SeedBranches()
	if err != nil {
		return fmt.Errorf("failed to seed branches: %w", err)
	}

	shiftIDs, err := s.SeedShifts()
	if err != nil {
		return fmt.Errorf("failed to seed shifts: %w", err)
	}

	seatIDs, err := s.SeedSeats(branchIDs)
	if err != nil {
		return fmt.Errorf("failed to seed seats: %w", err)
	}

	lockerIDs, err := s.SeedLockers(branchIDs)
	if err != nil {
		return fmt.Errorf("failed to seed lockers: %w", err)
	}

	if err := s.SeedStudents(branchIDs, shiftIDs, seatIDs, lockerIDs); err != nil {
		return fmt.Errorf("failed to seed students: %w", err)
	}

	// Clear Redis cache to ensure fresh state
	if s.db.Redis != nil {
		if err := s.db.Redis.FlushDB(ctx).Err(); err != nil {
			log.Printf("Warning: Failed to clear Redis cache: %v", err)
		}
	}

	return nil
}

// SeedBranches creates the two library branches
func (s *Seeder) SeedBranches() (map[string]uuid.UUID, error) {
	fmt.Println("  Seeding branches...")

	branchIDs := make(map[string]uuid.UUID)

	for _, name := range []string{"Main Branch", "Station Road Branch"} {
		branch := catalog.Branch{
			ID:   uuid.New(),
			Name: name,
		}
		if err := s.db.PostgreSQL.Create(&branch).Error; err != nil {
			return nil, fmt.Errorf("failed to create branch %s: %w", name, err)
		}
		branchIDs[name] = branch.ID
		fmt.Printf("    Created branch: %s\n", name)
	}

	return branchIDs, nil
}

// SeedShifts creates the four daily shifts with their nominal fees
func (s *Seeder) SeedShifts() (map[string]uuid.UUID, error) {
	fmt.Println("  Seeding shifts...")

	shiftIDs := make(map[string]uuid.UUID)

	shiftsData := []struct {
		title string
		fee   float64
	}{
		{"Morning (06:00 - 11:00)", 300},
		{"Afternoon (11:00 - 16:00)", 300},
		{"Evening (16:00 - 21:00)", 350},
		{"Full Day (06:00 - 21:00)", 800},
	}

	for _, shiftData := range shiftsData {
		shift := catalog.ShiftDefinition{
			ID:    uuid.New(),
			Title: shiftData.title,
			Fee:   shiftData.fee,
		}
		if err := s.db.PostgreSQL.Create(&shift).Error; err != nil {
			return nil, fmt.Errorf("failed to create shift %s: %w", shiftData.title, err)
		}
		shiftIDs[shiftData.title] = shift.ID
		fmt.Printf("    Created shift: %s (fee %.0f)\n", shiftData.title, shiftData.fee)
	}

	return shiftIDs, nil
}

// SeedSeats creates 20 seats per branch
func (s *Seeder) SeedSeats(branchIDs map[string]uuid.UUID) (map[string][]uuid.UUID, error) {
	fmt.Println("  Seeding seats...")

	seatIDs := make(map[string][]uuid.UUID)

	for branchName, branchID := range branchIDs {
		for i := 1; i <= 20; i++ {
			seat := availability.Seat{
				ID:         uuid.New(),
				BranchID:   branchID,
				SeatNumber: fmt.Sprintf("S-%02d", i),
			}
			if err := s.db.PostgreSQL.Create(&seat).Error; err != nil {
				return nil, fmt.Errorf("failed to create seat %s: %w", seat.SeatNumber, err)
			}
			seatIDs[branchName] = append(seatIDs[branchName], seat.ID)
		}
		fmt.Printf("    Created 20 seats for %s\n", branchName)
	}

	return seatIDs, nil
}

// SeedLockers creates 10 lockers per branch
func (s *Seeder) SeedLockers(branchIDs map[string]uuid.UUID) (map[string][]uuid.UUID, error) {
	fmt.Println("  Seeding lockers...")

	lockerIDs := make(map[string][]uuid.UUID)

	for branchName, branchID := range branchIDs {
		for i := 1; i <= 10; i++ {
			locker := availability.Locker{
				ID:           uuid.New(),
				BranchID:     branchID,
				LockerNumber: fmt.Sprintf("L-%02d", i),
			}
			if err := s.db.PostgreSQL.Create(&locker).Error; err != nil {
				return nil, fmt.Errorf("failed to create locker %s: %w", locker.LockerNumber, err)
			}
			lockerIDs[branchName] = append(lockerIDs[branchName], locker.ID)
		}
		fmt.Printf("    Created 10 lockers for %s\n", branchName)
	}

	return lockerIDs, nil
}

// SeedStudents creates a mix of expired and active members with seat and
// shift holdings
func (s *Seeder) SeedStudents(branchIDs map[string]uuid.UUID, shiftIDs map[string]uuid.UUID, seatIDs map[string][]uuid.UUID, lockerIDs map[string][]uuid.UUID) error {
	fmt.Println("  Seeding students...")

	now := time.Now()

	studentsData := []struct {
		name       string
		phone      string
		branch     string
		seatIndex  int
		shifts     []string
		withLocker bool
		expired    bool
	}{
		{"Rahul Kumar", "9800000001", "Main Branch", 0, []string{"Morning (06:00 - 11:00)"}, true, true},
		{"Priya Singh", "9800000002", "Main Branch", 1, []string{"Morning (06:00 - 11:00)", "Evening (16:00 - 21:00)"}, false, true},
		{"Amit Verma", "9800000003", "Main Branch", 2, []string{"Full Day (06:00 - 21:00)"}, false, false},
		{"Sneha Gupta", "9800000004", "Station Road Branch", 0, []string{"Afternoon (11:00 - 16:00)"}, true, true},
		{"Vikash Yadav", "9800000005", "Station Road Branch", 1, []string{"Evening (16:00 - 21:00)"}, false, false},
	}

	for i, studentData := range studentsData {
		branchID := branchIDs[studentData.branch]
		seatID := seatIDs[studentData.branch][studentData.seatIndex]

		membershipEnd := now.AddDate(0, 1, 0)
		if studentData.expired {
			membershipEnd = now.AddDate(0, 0, -10)
		}

		student := students.Student{
			ID:                 uuid.New(),
			Name:               studentData.name,
			RegistrationNumber: fmt.Sprintf("REG-%04d", i+1),
			Address:            "Ward 12, Gaya",
			Phone:              studentData.phone,
			BranchID:           branchID,
			MembershipStart:    membershipEnd.AddDate(0, -1, 0),
			MembershipEnd:      membershipEnd,
			TotalFee:           300,
			Cash:               300,
		}

		if studentData.withLocker {
			lockerID := lockerIDs[studentData.branch][studentData.seatIndex]
			student.LockerID = &lockerID
			student.LockerFee = 50
		}

		if err := s.db.PostgreSQL.Create(&student).Error; err != nil {
			return fmt.Errorf("failed to create student %s: %w", studentData.name, err)
		}

		// Seat occupancy and per-shift holdings
		if err := s.db.PostgreSQL.Model(&availability.Seat{}).
			Where("id = ?", seatID).
			Update("occupant_student_id", student.ID).Error; err != nil {
			return fmt.Errorf("failed to occupy seat for %s: %w", studentData.name, err)
		}

		if studentData.withLocker {
			if err := s.db.PostgreSQL.Model(&availability.Locker{}).
				Where("id = ?", *student.LockerID).
				Updates(map[string]interface{}{
					"is_assigned":         true,
					"occupant_student_id": student.ID,
				}).Error; err != nil {
				return fmt.Errorf("failed to assign locker for %s: %w", studentData.name, err)
			}
		}

		for _, shiftTitle := range studentData.shifts {
			shiftID := shiftIDs[shiftTitle]

			occupancy := availability.SeatShiftOccupancy{
				ID:        uuid.New(),
				SeatID:    seatID,
				ShiftID:   shiftID,
				StudentID: student.ID,
			}
			if err := s.db.PostgreSQL.Create(&occupancy).Error; err != nil {
				return fmt.Errorf("failed to create occupancy for %s: %w", studentData.name, err)
			}

			assignment := students.Assignment{
				ID:         uuid.New(),
				StudentID:  student.ID,
				SeatID:     seatID,
				ShiftID:    shiftID,
				SeatNumber: fmt.Sprintf("S-%02d", studentData.seatIndex+1),
				ShiftTitle: shiftTitle,
			}
			if err := s.db.PostgreSQL.Create(&assignment).Error; err != nil {
				return fmt.Errorf("failed to create assignment for %s: %w", studentData.name, err)
			}
		}

		fmt.Printf("    Created student: %s (expired=%t)\n", studentData.name, studentData.expired)
	}

	return nil
}
