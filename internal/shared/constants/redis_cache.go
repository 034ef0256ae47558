package constants

import (
	"fmt"
	"time"
)

// Redis cache keys and TTL values for the library backend.
// Pattern: library:{module}:{operation}:{identifier}

// ================== CACHE TTL DURATIONS ==================

const (
	// Catalog data (branches, shift definitions) changes rarely.
	TTL_CATALOG = 12 * time.Hour

	// Seat/locker availability is live data; keep it short so a renewal
	// on another admin's screen shows up quickly.
	TTL_AVAILABILITY = 30 * time.Second

	// Expired-membership listings refresh often enough for admin tables.
	TTL_EXPIRED_LIST = 2 * time.Minute
)

// ================== REDIS KEY PREFIXES ==================

const (
	CACHE_PREFIX = "library"

	CACHE_KEY_CATALOG      = CACHE_PREFIX + ":catalog:snapshot"
	CACHE_KEY_AVAILABILITY = CACHE_PREFIX + ":availability:branch:" // + branch-id:student:student-id
	CACHE_KEY_SHIFTS_FREE  = CACHE_PREFIX + ":availability:seat:"   // + seat-id
	CACHE_KEY_EXPIRED_LIST = CACHE_PREFIX + ":students:expired:"    // + branch-id|all
	RATE_LIMIT_PREFIX      = CACHE_PREFIX + ":ratelimit:"
)

// BuildBranchAvailabilityKey builds the cache key for a branch's offerable
// seats and lockers, scoped to the student being renewed (the offerable
// filter depends on who the subject is).
func BuildBranchAvailabilityKey(branchID, studentID string) string {
	return fmt.Sprintf("%s%s:student:%s", CACHE_KEY_AVAILABILITY, branchID, studentID)
}

// BuildSeatShiftsKey builds the cache key for a seat's free shift ids.
func BuildSeatShiftsKey(seatID string) string {
	return CACHE_KEY_SHIFTS_FREE + seatID
}

// BuildExpiredListKey builds the cache key for the expired-members table.
func BuildExpiredListKey(branchID string) string {
	if branchID == "" {
		branchID = "all"
	}
	return CACHE_KEY_EXPIRED_LIST + branchID
}
