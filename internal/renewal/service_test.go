package renewal

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Rounit002/maasaraswatilibrary/internal/availability"
	"github.com/Rounit002/maasaraswatilibrary/internal/catalog"
	"github.com/Rounit002/maasaraswatilibrary/internal/notifications"
	"github.com/Rounit002/maasaraswatilibrary/internal/shared/apperrors"
	"github.com/Rounit002/maasaraswatilibrary/internal/students"
	"github.com/Rounit002/maasaraswatilibrary/pkg/cache"
)

// fakeCatalogRepo serves a fixed branch/shift catalog.
type fakeCatalogRepo struct {
	branches []catalog.Branch
	shifts   []catalog.ShiftDefinition
}

func (r *fakeCatalogRepo) ListBranches(ctx context.Context) ([]catalog.Branch, error) {
	return r.branches, nil
}

func (r *fakeCatalogRepo) ListShifts(ctx context.Context) ([]catalog.ShiftDefinition, error) {
	return r.shifts, nil
}

// fakeAvailRepo serves seats, lockers and free-shift sets per branch and
// seat. onListSeats and onFreeShifts run once inside the next matching
// call, before it returns; tests use them to interleave a competing
// selection.
type fakeAvailRepo struct {
	seats      map[uuid.UUID][]availability.Seat
	lockers    map[uuid.UUID][]availability.Locker
	freeShifts map[uuid.UUID][]uuid.UUID

	seatsErr  error
	shiftsErr error

	onListSeats  func()
	onFreeShifts func()
}

func (r *fakeAvailRepo) ListSeatsByBranch(ctx context.Context, branchID uuid.UUID) ([]availability.Seat, error) {
	if hook := r.onListSeats; hook != nil {
		r.onListSeats = nil
		hook()
	}
	if r.seatsErr != nil {
		return nil, r.seatsErr
	}
	return r.seats[branchID], nil
}

func (r *fakeAvailRepo) ListLockersByBranch(ctx context.Context, branchID uuid.UUID) ([]availability.Locker, error) {
	return r.lockers[branchID], nil
}

func (r *fakeAvailRepo) FreeShiftIDsForSeat(ctx context.Context, seatID uuid.UUID) ([]uuid.UUID, error) {
	if hook := r.onFreeShifts; hook != nil {
		r.onFreeShifts = nil
		hook()
	}
	if r.shiftsErr != nil {
		return nil, r.shiftsErr
	}
	return r.freeShifts[seatID], nil
}

// fakeStudents satisfies students.Service without a database.
type fakeStudents struct {
	student     *students.Student
	assignments []uuid.UUID

	renewCalls  int
	renewErr    error
	lastPayload students.RenewPayload
}

func (f *fakeStudents) GetStudent(ctx context.Context, id uuid.UUID) (*students.Student, error) {
	if f.student == nil || f.student.ID != id {
		return nil, apperrors.ErrNotFound
	}
	return f.student, nil
}

func (f *fakeStudents) ListExpiredMemberships(ctx context.Context, branchID *uuid.UUID) ([]students.ExpiredStudentResponse, error) {
	return nil, nil
}

func (f *fakeStudents) Renew(ctx context.Context, id uuid.UUID, payload students.RenewPayload) error {
	f.renewCalls++
	f.lastPayload = payload
	return f.renewErr
}

func (f *fakeStudents) Delete(ctx context.Context, id uuid.UUID) error { return nil }

func (f *fakeStudents) AssignmentShiftIDs(ctx context.Context, studentID uuid.UUID) ([]uuid.UUID, error) {
	return f.assignments, nil
}

func (f *fakeStudents) SetCacheService(cacheService cache.Service) {}

// fakeProducer records published renewal events.
type fakeProducer struct {
	events []*notifications.RenewalEvent
}

func (f *fakeProducer) PublishRenewalCompleted(ctx context.Context, event *notifications.RenewalEvent) error {
	f.events = append(f.events, event)
	return nil
}

func (f *fakeProducer) Close() error { return nil }

func (f *fakeProducer) HealthCheck(ctx context.Context) error { return nil }

// fixture wires a renewal service around one branch with three seats:
// seatFree (all shifts open), seatLimited (only evening open) and
// seatOwn (held by the subject, morning occupied by them), plus one
// locker and a second empty branch.
type fixture struct {
	svc      Service
	store    *Store
	students *fakeStudents
	avail    *fakeAvailRepo
	producer *fakeProducer

	branch      catalog.Branch
	otherBranch catalog.Branch
	morning     catalog.ShiftDefinition
	evening     catalog.ShiftDefinition
	seatFree    availability.Seat
	seatLimited availability.Seat
	seatOwn     availability.Seat
	locker      availability.Locker
	studentID   uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		branch:      catalog.Branch{ID: uuid.New(), Name: "Main Branch"},
		otherBranch: catalog.Branch{ID: uuid.New(), Name: "Station Road Branch"},
		morning:     catalog.ShiftDefinition{ID: uuid.New(), Title: "Morning", Fee: 300},
		evening:     catalog.ShiftDefinition{ID: uuid.New(), Title: "Evening", Fee: 350},
		studentID:   uuid.New(),
	}

	otherStudent := uuid.New()
	f.seatFree = availability.Seat{ID: uuid.New(), BranchID: f.branch.ID, SeatNumber: "S-01"}
	f.seatLimited = availability.Seat{ID: uuid.New(), BranchID: f.branch.ID, SeatNumber: "S-02"}
	f.seatOwn = availability.Seat{ID: uuid.New(), BranchID: f.branch.ID, SeatNumber: "S-03", OccupantStudentID: &f.studentID}
	seatTaken := availability.Seat{ID: uuid.New(), BranchID: f.branch.ID, SeatNumber: "S-04", OccupantStudentID: &otherStudent}
	f.locker = availability.Locker{ID: uuid.New(), BranchID: f.branch.ID, LockerNumber: "L-01"}

	f.avail = &fakeAvailRepo{
		seats: map[uuid.UUID][]availability.Seat{
			f.branch.ID: {f.seatFree, f.seatLimited, f.seatOwn, seatTaken},
		},
		lockers: map[uuid.UUID][]availability.Locker{
			f.branch.ID: {f.locker},
		},
		freeShifts: map[uuid.UUID][]uuid.UUID{
			f.seatFree.ID:    {f.morning.ID, f.evening.ID},
			f.seatLimited.ID: {f.evening.ID},
			f.seatOwn.ID:     {f.evening.ID}, // morning occupied by the subject
		},
	}

	f.students = &fakeStudents{
		student: &students.Student{
			ID:       f.studentID,
			Name:     "Rahul Kumar",
			Phone:    "9800000001",
			Address:  "Ward 12, Gaya",
			BranchID: f.branch.ID,
		},
	}

	f.producer = &fakeProducer{}
	f.store = NewStore(time.Minute)

	catalogSvc := catalog.NewService(&fakeCatalogRepo{
		branches: []catalog.Branch{f.branch, f.otherBranch},
		shifts:   []catalog.ShiftDefinition{f.morning, f.evening},
	})
	availSvc := availability.NewService(f.avail)

	f.svc = NewService(f.store, catalogSvc, availSvc, f.students, f.producer)
	return f
}

func (f *fixture) open(t *testing.T) *Snapshot {
	t.Helper()
	snap, err := f.svc.Open(context.Background(), f.studentID)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	return snap
}

func seatIDs(options []availability.SeatOption) []*uuid.UUID {
	ids := make([]*uuid.UUID, len(options))
	for i := range options {
		ids[i] = options[i].ID
	}
	return ids
}

func TestOpenInitializesEmptySelection(t *testing.T) {
	f := newFixture(t)
	snap := f.open(t)

	if snap.Selection.Branch != nil {
		t.Error("expected no branch on open")
	}
	if len(snap.SeatOptions) != 1 || snap.SeatOptions[0].ID != nil {
		t.Errorf("SeatOptions = %v, want only the none option", seatIDs(snap.SeatOptions))
	}
	if len(snap.LockerOptions) != 1 || snap.LockerOptions[0].ID != nil {
		t.Error("want only the none locker option")
	}
	for _, option := range snap.ShiftOptions {
		if !option.Eligible {
			t.Errorf("shift %s should be eligible with no seat selected", option.Title)
		}
	}
	if snap.Selection.FeeLocked || snap.Selection.TotalFee != 0 {
		t.Error("expected unlocked zero total fee on open")
	}
}

func TestOpenUnknownStudent(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Open(context.Background(), uuid.New())
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("Open() error = %v, want ErrNotFound", err)
	}
}

func TestSetBranchListsOfferableOptions(t *testing.T) {
	f := newFixture(t)
	snap := f.open(t)

	snap, err := f.svc.SetBranch(context.Background(), snap.ID, f.branch.ID)
	if err != nil {
		t.Fatalf("SetBranch() error = %v", err)
	}

	// none + seatFree + seatLimited + seatOwn; the seat held by another
	// student is filtered out.
	if len(snap.SeatOptions) != 4 {
		t.Fatalf("len(SeatOptions) = %d, want 4", len(snap.SeatOptions))
	}
	if snap.SeatOptions[0].ID != nil {
		t.Error("first seat option must be the synthetic none entry")
	}
	for _, option := range snap.SeatOptions[1:] {
		if option.ID != nil && *option.ID == f.seatOwn.ID {
			return
		}
	}
	t.Error("own occupied seat missing from offerable options")
}

func TestSetBranchResetsSeatAndLocker(t *testing.T) {
	f := newFixture(t)
	snap := f.open(t)
	ctx := context.Background()

	if _, err := f.svc.SetBranch(ctx, snap.ID, f.branch.ID); err != nil {
		t.Fatalf("SetBranch() error = %v", err)
	}
	if _, err := f.svc.SetSeat(ctx, snap.ID, f.seatFree.ID); err != nil {
		t.Fatalf("SetSeat() error = %v", err)
	}
	if _, err := f.svc.SetLocker(ctx, snap.ID, f.locker.ID); err != nil {
		t.Fatalf("SetLocker() error = %v", err)
	}
	if _, err := f.svc.UpdateFees(ctx, snap.ID, UpdateFeesRequest{LockerFee: strPtr("50")}); err != nil {
		t.Fatalf("UpdateFees() error = %v", err)
	}

	got, err := f.svc.SetBranch(ctx, snap.ID, f.otherBranch.ID)
	if err != nil {
		t.Fatalf("SetBranch() to other branch error = %v", err)
	}

	if got.Selection.Seat != nil {
		t.Error("seat selection must reset on branch change")
	}
	if got.Selection.Locker != nil {
		t.Error("locker selection must reset on branch change")
	}
	if got.Selection.LockerFee != 0 {
		t.Errorf("LockerFee = %v, want 0 after branch change", got.Selection.LockerFee)
	}
}

func TestSetSeatDropsIneligibleChosenShifts(t *testing.T) {
	f := newFixture(t)
	snap := f.open(t)
	ctx := context.Background()

	if _, err := f.svc.SetBranch(ctx, snap.ID, f.branch.ID); err != nil {
		t.Fatalf("SetBranch() error = %v", err)
	}
	if _, err := f.svc.SetSeat(ctx, snap.ID, f.seatFree.ID); err != nil {
		t.Fatalf("SetSeat() error = %v", err)
	}
	if _, err := f.svc.SetShifts(ctx, snap.ID, []uuid.UUID{f.morning.ID}); err != nil {
		t.Fatalf("SetShifts() error = %v", err)
	}

	// Morning is not offered on the limited seat, so the chosen shift
	// silently drops and the fee resets with it.
	got, err := f.svc.SetSeat(ctx, snap.ID, f.seatLimited.ID)
	if err != nil {
		t.Fatalf("SetSeat() to limited seat error = %v", err)
	}

	if len(got.Selection.Shifts) != 0 {
		t.Errorf("Shifts = %v, want empty after losing eligibility", got.Selection.Shifts)
	}
	if got.Selection.FeeLocked || got.Selection.TotalFee != 0 {
		t.Errorf("TotalFee = %v locked=%t, want unlocked 0", got.Selection.TotalFee, got.Selection.FeeLocked)
	}
}

func TestSetSeatSelfExemption(t *testing.T) {
	f := newFixture(t)
	f.students.assignments = []uuid.UUID{f.morning.ID}
	snap := f.open(t)
	ctx := context.Background()

	if _, err := f.svc.SetBranch(ctx, snap.ID, f.branch.ID); err != nil {
		t.Fatalf("SetBranch() error = %v", err)
	}

	// The subject already holds morning on their own seat: the seat does
	// not report it free, but it must stay eligible for them.
	got, err := f.svc.SetSeat(ctx, snap.ID, f.seatOwn.ID)
	if err != nil {
		t.Fatalf("SetSeat() error = %v", err)
	}

	for _, option := range got.ShiftOptions {
		if option.ID == f.morning.ID && !option.Eligible {
			t.Error("own held shift must remain eligible")
		}
	}

	if _, err := f.svc.SetShifts(ctx, snap.ID, []uuid.UUID{f.morning.ID}); err != nil {
		t.Errorf("SetShifts() on own held shift error = %v", err)
	}
}

func TestSetShiftsRejectsIneligible(t *testing.T) {
	f := newFixture(t)
	snap := f.open(t)
	ctx := context.Background()

	if _, err := f.svc.SetBranch(ctx, snap.ID, f.branch.ID); err != nil {
		t.Fatalf("SetBranch() error = %v", err)
	}
	if _, err := f.svc.SetSeat(ctx, snap.ID, f.seatLimited.ID); err != nil {
		t.Fatalf("SetSeat() error = %v", err)
	}

	_, err := f.svc.SetShifts(ctx, snap.ID, []uuid.UUID{f.morning.ID})
	if !apperrors.IsValidationError(err) {
		t.Errorf("SetShifts() error = %v, want ValidationError", err)
	}
}

func TestSingleShiftLocksFee(t *testing.T) {
	f := newFixture(t)
	snap := f.open(t)
	ctx := context.Background()

	if _, err := f.svc.SetBranch(ctx, snap.ID, f.branch.ID); err != nil {
		t.Fatalf("SetBranch() error = %v", err)
	}
	got, err := f.svc.SetShifts(ctx, snap.ID, []uuid.UUID{f.morning.ID})
	if err != nil {
		t.Fatalf("SetShifts() error = %v", err)
	}

	if !got.Selection.FeeLocked || got.Selection.TotalFee != 300 {
		t.Fatalf("TotalFee = %v locked=%t, want locked 300", got.Selection.TotalFee, got.Selection.FeeLocked)
	}

	// Manual total fee edits are ignored while locked; payments apply.
	got, err = f.svc.UpdateFees(ctx, snap.ID, UpdateFeesRequest{
		TotalFee: strPtr("999"),
		Cash:     strPtr("100"),
		Online:   strPtr("50"),
	})
	if err != nil {
		t.Fatalf("UpdateFees() error = %v", err)
	}

	if got.Selection.TotalFee != 300 {
		t.Errorf("TotalFee = %v, want locked 300 despite manual edit", got.Selection.TotalFee)
	}
	if got.Selection.Paid != 150 {
		t.Errorf("Paid = %v, want 150", got.Selection.Paid)
	}
	if got.Selection.Due != 150 {
		t.Errorf("Due = %v, want 150", got.Selection.Due)
	}
}

func TestUpdateFeesUnparseableCountsAsZero(t *testing.T) {
	f := newFixture(t)
	snap := f.open(t)
	ctx := context.Background()

	got, err := f.svc.UpdateFees(ctx, snap.ID, UpdateFeesRequest{
		TotalFee: strPtr("500"),
		Cash:     strPtr("abc"),
	})
	if err != nil {
		t.Fatalf("UpdateFees() error = %v", err)
	}

	if got.Selection.TotalFee != 500 {
		t.Errorf("TotalFee = %v, want manual 500 while unlocked", got.Selection.TotalFee)
	}
	if got.Selection.Cash != 0 {
		t.Errorf("Cash = %v, want 0 for unparseable input", got.Selection.Cash)
	}
}

func TestSubmitMissingFieldsBeforeAnyCall(t *testing.T) {
	f := newFixture(t)
	snap := f.open(t)

	err := f.svc.Submit(context.Background(), snap.ID, SubmitRequest{})
	if !apperrors.IsValidationError(err) {
		t.Fatalf("Submit() error = %v, want ValidationError", err)
	}
	if f.students.renewCalls != 0 {
		t.Error("validation failure must not reach the database")
	}

	// Session survives for correction.
	if _, err := f.svc.Get(context.Background(), snap.ID); err != nil {
		t.Errorf("session gone after failed validation: %v", err)
	}
}

func TestSubmitEmptyShiftsRejected(t *testing.T) {
	f := newFixture(t)
	snap := f.open(t)
	ctx := context.Background()

	if _, err := f.svc.SetBranch(ctx, snap.ID, f.branch.ID); err != nil {
		t.Fatalf("SetBranch() error = %v", err)
	}

	err := f.svc.Submit(ctx, snap.ID, SubmitRequest{
		Name:    "Rahul Kumar",
		Phone:   "9800000001",
		Address: "Ward 12, Gaya",
	})

	var verr *apperrors.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Submit() error = %v, want ValidationError", err)
	}
	found := false
	for _, field := range verr.Fields {
		if field == "shifts" {
			found = true
		}
	}
	if !found {
		t.Errorf("ValidationError fields = %v, want shifts listed", verr.Fields)
	}
	if f.students.renewCalls != 0 {
		t.Error("validation failure must not reach the database")
	}
}

func TestSubmitPersistsAndClosesSession(t *testing.T) {
	f := newFixture(t)
	snap := f.open(t)
	ctx := context.Background()

	if _, err := f.svc.SetBranch(ctx, snap.ID, f.branch.ID); err != nil {
		t.Fatalf("SetBranch() error = %v", err)
	}
	if _, err := f.svc.SetSeat(ctx, snap.ID, f.seatFree.ID); err != nil {
		t.Fatalf("SetSeat() error = %v", err)
	}
	if _, err := f.svc.SetShifts(ctx, snap.ID, []uuid.UUID{f.morning.ID}); err != nil {
		t.Fatalf("SetShifts() error = %v", err)
	}
	if _, err := f.svc.SetLocker(ctx, snap.ID, f.locker.ID); err != nil {
		t.Fatalf("SetLocker() error = %v", err)
	}
	if _, err := f.svc.UpdateFees(ctx, snap.ID, UpdateFeesRequest{Cash: strPtr("300")}); err != nil {
		t.Fatalf("UpdateFees() error = %v", err)
	}

	err := f.svc.Submit(ctx, snap.ID, SubmitRequest{
		Name:            "Rahul Kumar",
		Phone:           "9800000001",
		Address:         "Ward 12, Gaya",
		MembershipStart: time.Now(),
		MembershipEnd:   time.Now().AddDate(0, 1, 0),
	})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	if f.students.renewCalls != 1 {
		t.Fatalf("renewCalls = %d, want 1", f.students.renewCalls)
	}
	payload := f.students.lastPayload
	if payload.BranchID != f.branch.ID {
		t.Errorf("payload.BranchID = %v, want %v", payload.BranchID, f.branch.ID)
	}
	if payload.SeatID == nil || *payload.SeatID != f.seatFree.ID {
		t.Errorf("payload.SeatID = %v, want %v", payload.SeatID, f.seatFree.ID)
	}
	if payload.LockerID == nil || *payload.LockerID != f.locker.ID {
		t.Errorf("payload.LockerID = %v, want %v", payload.LockerID, f.locker.ID)
	}
	if len(payload.ShiftIDs) != 1 || payload.ShiftIDs[0] != f.morning.ID {
		t.Errorf("payload.ShiftIDs = %v, want [%v]", payload.ShiftIDs, f.morning.ID)
	}
	if payload.TotalFee != 300 || payload.Cash != 300 {
		t.Errorf("payload fees = total %v cash %v, want 300/300", payload.TotalFee, payload.Cash)
	}

	if len(f.producer.events) != 1 {
		t.Errorf("published events = %d, want 1", len(f.producer.events))
	}

	if _, err := f.svc.Get(ctx, snap.ID); !errors.Is(err, apperrors.ErrSessionNotFound) {
		t.Errorf("session still alive after submit: %v", err)
	}
}

func TestSubmitErrorKeepsSession(t *testing.T) {
	f := newFixture(t)
	f.students.renewErr = apperrors.NewSubmitError("seat already reassigned", nil)
	snap := f.open(t)
	ctx := context.Background()

	if _, err := f.svc.SetBranch(ctx, snap.ID, f.branch.ID); err != nil {
		t.Fatalf("SetBranch() error = %v", err)
	}
	if _, err := f.svc.SetShifts(ctx, snap.ID, []uuid.UUID{f.morning.ID}); err != nil {
		t.Fatalf("SetShifts() error = %v", err)
	}

	err := f.svc.Submit(ctx, snap.ID, SubmitRequest{
		Name:    "Rahul Kumar",
		Phone:   "9800000001",
		Address: "Ward 12, Gaya",
	})
	if !apperrors.IsSubmitError(err) {
		t.Fatalf("Submit() error = %v, want SubmitError", err)
	}

	if _, err := f.svc.Get(ctx, snap.ID); err != nil {
		t.Errorf("session gone after failed submit: %v", err)
	}
	if len(f.producer.events) != 0 {
		t.Error("no event must publish on failed submit")
	}
}

func TestSetBranchFetchFailureKeepsPriorOptions(t *testing.T) {
	f := newFixture(t)
	snap := f.open(t)
	ctx := context.Background()

	if _, err := f.svc.SetBranch(ctx, snap.ID, f.branch.ID); err != nil {
		t.Fatalf("SetBranch() error = %v", err)
	}

	f.avail.seatsErr = errors.New("connection refused")
	_, err := f.svc.SetBranch(ctx, snap.ID, f.otherBranch.ID)
	if !apperrors.IsFetchError(err) {
		t.Fatalf("SetBranch() error = %v, want FetchError", err)
	}

	// The failed fetch is reported but the previous option lists stay
	// visible rather than collapsing to empty.
	got, err := f.svc.Get(ctx, snap.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(got.SeatOptions) != 4 {
		t.Errorf("len(SeatOptions) = %d, want prior 4 kept", len(got.SeatOptions))
	}
}

func TestStaleAvailabilityResultDropped(t *testing.T) {
	f := newFixture(t)
	snap := f.open(t)
	ctx := context.Background()

	// While the first branch's seats are being fetched, the admin picks
	// the other branch. The late first result must not overwrite it.
	f.avail.onListSeats = func() {
		if _, err := f.svc.SetBranch(ctx, snap.ID, f.otherBranch.ID); err != nil {
			t.Errorf("inner SetBranch() error = %v", err)
		}
	}

	if _, err := f.svc.SetBranch(ctx, snap.ID, f.branch.ID); err != nil {
		t.Fatalf("outer SetBranch() error = %v", err)
	}

	got, err := f.svc.Get(ctx, snap.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Selection.Branch == nil || got.Selection.Branch.ID != f.otherBranch.ID {
		t.Fatal("selection must reflect the later branch choice")
	}
	// The other branch has no seats, so only the none option survives.
	if len(got.SeatOptions) != 1 {
		t.Errorf("len(SeatOptions) = %d, want 1: stale first-branch list applied", len(got.SeatOptions))
	}
}

func TestSetSeatFetchFailureKeepsEligibilityAndShifts(t *testing.T) {
	f := newFixture(t)
	snap := f.open(t)
	ctx := context.Background()

	if _, err := f.svc.SetBranch(ctx, snap.ID, f.branch.ID); err != nil {
		t.Fatalf("SetBranch() error = %v", err)
	}
	if _, err := f.svc.SetSeat(ctx, snap.ID, f.seatFree.ID); err != nil {
		t.Fatalf("SetSeat() error = %v", err)
	}
	if _, err := f.svc.SetShifts(ctx, snap.ID, []uuid.UUID{f.morning.ID}); err != nil {
		t.Fatalf("SetShifts() error = %v", err)
	}

	f.avail.shiftsErr = errors.New("connection refused")
	_, err := f.svc.SetSeat(ctx, snap.ID, f.seatLimited.ID)
	if !apperrors.IsFetchError(err) {
		t.Fatalf("SetSeat() error = %v, want FetchError", err)
	}

	// A failed eligibility refresh must not shrink the chosen shifts or
	// blank the eligibility list; the failure is reported instead.
	got, err := f.svc.Get(ctx, snap.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(got.Selection.Shifts) != 1 || got.Selection.Shifts[0].ID != f.morning.ID {
		t.Errorf("Shifts = %v, want morning kept", got.Selection.Shifts)
	}
	for _, option := range got.ShiftOptions {
		if option.ID == f.morning.ID && !option.Eligible {
			t.Error("prior eligibility snapshot must survive the failed fetch")
		}
	}
	if !got.Selection.FeeLocked || got.Selection.TotalFee != 300 {
		t.Errorf("TotalFee = %v locked=%t, want locked 300 kept", got.Selection.TotalFee, got.Selection.FeeLocked)
	}
}

func TestStaleShiftEligibilityDropped(t *testing.T) {
	f := newFixture(t)
	snap := f.open(t)
	ctx := context.Background()

	if _, err := f.svc.SetBranch(ctx, snap.ID, f.branch.ID); err != nil {
		t.Fatalf("SetBranch() error = %v", err)
	}

	// While the free seat's shifts are being fetched, the admin switches
	// to the limited seat. The late first result must not overwrite the
	// limited seat's eligibility list.
	f.avail.onFreeShifts = func() {
		if _, err := f.svc.SetSeat(ctx, snap.ID, f.seatLimited.ID); err != nil {
			t.Errorf("inner SetSeat() error = %v", err)
		}
	}

	if _, err := f.svc.SetSeat(ctx, snap.ID, f.seatFree.ID); err != nil {
		t.Fatalf("outer SetSeat() error = %v", err)
	}

	got, err := f.svc.Get(ctx, snap.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Selection.Seat == nil || got.Selection.Seat.ID == nil || *got.Selection.Seat.ID != f.seatLimited.ID {
		t.Fatal("selection must reflect the later seat choice")
	}
	// The limited seat offers only evening; a stale free-seat list would
	// leave morning eligible.
	for _, option := range got.ShiftOptions {
		if option.ID == f.morning.ID && option.Eligible {
			t.Error("morning eligible: stale free-seat eligibility applied")
		}
	}
}

func TestCancelDestroysSession(t *testing.T) {
	f := newFixture(t)
	snap := f.open(t)
	ctx := context.Background()

	if err := f.svc.Cancel(ctx, snap.ID); err != nil {
		t.Fatalf("Cancel() error = %v", err)
	}
	if _, err := f.svc.Get(ctx, snap.ID); !errors.Is(err, apperrors.ErrSessionNotFound) {
		t.Errorf("session still alive after cancel: %v", err)
	}
	if err := f.svc.Cancel(ctx, snap.ID); !errors.Is(err, apperrors.ErrSessionNotFound) {
		t.Errorf("second Cancel() error = %v, want ErrSessionNotFound", err)
	}
}

func strPtr(s string) *string { return &s }
