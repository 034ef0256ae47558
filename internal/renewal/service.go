package renewal

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/Rounit002/maasaraswatilibrary/internal/availability"
	"github.com/Rounit002/maasaraswatilibrary/internal/catalog"
	"github.com/Rounit002/maasaraswatilibrary/internal/notifications"
	"github.com/Rounit002/maasaraswatilibrary/internal/shared/apperrors"
	"github.com/Rounit002/maasaraswatilibrary/internal/students"
	"github.com/Rounit002/maasaraswatilibrary/pkg/logger"
)

type Service interface {
	// Open starts a renewal dialog for an expired student: catalog is
	// loaded if needed, current assignments are captured for the
	// self-exemption merge, and an empty selection is initialized.
	Open(ctx context.Context, studentID uuid.UUID) (*Snapshot, error)
	Get(ctx context.Context, sessionID uuid.UUID) (*Snapshot, error)

	// SetBranch changes (or clears, with uuid.Nil) the branch. The seat
	// and locker selections reset to none and availability is
	// re-resolved for the new branch.
	SetBranch(ctx context.Context, sessionID uuid.UUID, branchID uuid.UUID) (*Snapshot, error)

	// SetSeat changes (or clears) the seat and re-resolves shift
	// eligibility; chosen shifts that fall ineligible are dropped.
	SetSeat(ctx context.Context, sessionID uuid.UUID, seatID uuid.UUID) (*Snapshot, error)

	SetShifts(ctx context.Context, sessionID uuid.UUID, shiftIDs []uuid.UUID) (*Snapshot, error)
	SetLocker(ctx context.Context, sessionID uuid.UUID, lockerID uuid.UUID) (*Snapshot, error)
	UpdateFees(ctx context.Context, sessionID uuid.UUID, req UpdateFeesRequest) (*Snapshot, error)

	// Submit validates the session, persists the renewal and destroys
	// the session. On any error the session survives for correction.
	Submit(ctx context.Context, sessionID uuid.UUID, req SubmitRequest) error
	Cancel(ctx context.Context, sessionID uuid.UUID) error
}

type service struct {
	store        *Store
	catalogs     catalog.Service
	availability availability.Service
	students     students.Service
	producer     notifications.EventProducer
	validate     *validator.Validate
}

func NewService(store *Store, catalogs catalog.Service, availabilitySvc availability.Service, studentsSvc students.Service, producer notifications.EventProducer) Service {
	return &service{
		store:        store,
		catalogs:     catalogs,
		availability: availabilitySvc,
		students:     studentsSvc,
		producer:     producer,
		validate:     validator.New(),
	}
}

func (s *service) Open(ctx context.Context, studentID uuid.UUID) (*Snapshot, error) {
	if !s.catalogs.Loaded() {
		if _, err := s.catalogs.Load(ctx); err != nil {
			return nil, err
		}
	}

	student, err := s.students.GetStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	assignmentShiftIDs, err := s.students.AssignmentShiftIDs(ctx, student.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to capture current assignments: %w", err)
	}

	now := time.Now()
	sess := &Session{
		ID:                 uuid.New(),
		StudentID:          student.ID,
		CreatedAt:          now,
		ExpiresAt:          now.Add(s.store.TTL()),
		assignmentShiftIDs: assignmentShiftIDs,
	}

	// No branch yet: both option lists hold only the synthetic none
	// entry and every shift is eligible. Neither resolve touches the
	// database for zero ids.
	result, _ := s.availability.ResolveAvailability(ctx, uuid.Nil, student.ID)
	sess.seatOptions = result.Seats
	sess.lockerOptions = result.Lockers

	shiftOptions, _ := s.availability.ResolveShiftEligibility(ctx, uuid.Nil, assignmentShiftIDs, s.catalogs.Shifts())
	sess.shiftOptions = shiftOptions

	reconcileFees(&sess.selection)

	s.store.Put(sess)
	logger.GetDefault().LogSessionOpened(ctx, sess.ID.String(), student.ID.String())

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.snapshotLocked(), nil
}

func (s *service) Get(ctx context.Context, sessionID uuid.UUID) (*Snapshot, error) {
	sess, err := s.store.Get(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.snapshotLocked(), nil
}

func (s *service) SetBranch(ctx context.Context, sessionID uuid.UUID, branchID uuid.UUID) (*Snapshot, error) {
	sess, err := s.store.Get(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()

	var branch *catalog.Branch
	if branchID != uuid.Nil {
		b, ok := s.catalogs.BranchByID(branchID)
		if !ok {
			sess.mu.Unlock()
			return nil, apperrors.ErrNotFound
		}
		branch = b
	}

	// Changing the branch invalidates any seat or locker chosen under
	// the previous one. The shift selection itself survives: with no
	// seat there is no seat constraint to violate.
	sess.selection.Branch = branch
	sess.selection.Seat = nil
	sess.selection.Locker = nil
	sess.selection.LockerFee = 0

	sess.availabilitySeq++
	seq := sess.availabilitySeq

	// Seat reset also rewinds eligibility to the unconstrained state;
	// a zero seat id resolves without I/O so it is applied inline.
	shiftOptions, _ := s.availability.ResolveShiftEligibility(ctx, uuid.Nil, sess.assignmentShiftIDs, s.catalogs.Shifts())
	sess.shiftOptions = shiftOptions
	sess.shiftSeq++

	reconcileFees(&sess.selection)
	sess.mu.Unlock()

	result, err := s.availability.ResolveAvailability(ctx, branchID, sess.StudentID)

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if seq != sess.availabilitySeq {
		logger.GetDefault().LogStaleResultDropped(ctx, sess.ID.String(), "availability", seq, sess.availabilitySeq)
		return sess.snapshotLocked(), nil
	}
	if err != nil {
		// Prior option lists stay visible; the failure is reported, not
		// rendered as an empty branch.
		return nil, err
	}

	sess.seatOptions = result.Seats
	sess.lockerOptions = result.Lockers
	return sess.snapshotLocked(), nil
}

func (s *service) SetSeat(ctx context.Context, sessionID uuid.UUID, seatID uuid.UUID) (*Snapshot, error) {
	sess, err := s.store.Get(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()

	var seat *availability.SeatOption
	if seatID != uuid.Nil {
		option := findSeatOption(sess.seatOptions, seatID)
		if option == nil {
			sess.mu.Unlock()
			return nil, apperrors.NewValidationMessage("seat is not offerable for this renewal")
		}
		seat = option
	}

	sess.selection.Seat = seat

	sess.shiftSeq++
	seq := sess.shiftSeq
	sess.mu.Unlock()

	shiftOptions, err := s.availability.ResolveShiftEligibility(ctx, seatID, sess.assignmentShiftIDs, s.catalogs.Shifts())

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if seq != sess.shiftSeq {
		logger.GetDefault().LogStaleResultDropped(ctx, sess.ID.String(), "shifts", seq, sess.shiftSeq)
		return sess.snapshotLocked(), nil
	}
	if err != nil {
		// Keep the previous eligibility snapshot and the chosen shifts;
		// a failed refresh must not silently shrink the selection.
		return nil, err
	}

	sess.shiftOptions = shiftOptions

	// Shifts that fell ineligible under the new seat are dropped
	// without protest; the admin sees the shrunken selection.
	eligible := make(map[uuid.UUID]bool, len(shiftOptions))
	for _, option := range shiftOptions {
		if option.Eligible {
			eligible[option.ID] = true
		}
	}
	kept := sess.selection.Shifts[:0]
	for _, shift := range sess.selection.Shifts {
		if eligible[shift.ID] {
			kept = append(kept, shift)
		}
	}
	sess.selection.Shifts = kept

	reconcileFees(&sess.selection)
	return sess.snapshotLocked(), nil
}

func (s *service) SetShifts(ctx context.Context, sessionID uuid.UUID, shiftIDs []uuid.UUID) (*Snapshot, error) {
	sess, err := s.store.Get(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	eligible := make(map[uuid.UUID]catalog.ShiftDefinition, len(sess.shiftOptions))
	for _, option := range sess.shiftOptions {
		if option.Eligible {
			eligible[option.ID] = option.ShiftDefinition
		}
	}

	shifts := make([]catalog.ShiftDefinition, 0, len(shiftIDs))
	seen := make(map[uuid.UUID]bool, len(shiftIDs))
	for _, id := range shiftIDs {
		if seen[id] {
			continue
		}
		seen[id] = true

		shift, ok := eligible[id]
		if !ok {
			return nil, apperrors.NewValidationMessage(fmt.Sprintf("shift %s is not eligible for the selected seat", id))
		}
		shifts = append(shifts, shift)
	}

	sess.selection.Shifts = shifts
	reconcileFees(&sess.selection)
	return sess.snapshotLocked(), nil
}

func (s *service) SetLocker(ctx context.Context, sessionID uuid.UUID, lockerID uuid.UUID) (*Snapshot, error) {
	sess, err := s.store.Get(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if lockerID == uuid.Nil {
		sess.selection.Locker = nil
		sess.selection.LockerFee = 0
	} else {
		option := findLockerOption(sess.lockerOptions, lockerID)
		if option == nil {
			return nil, apperrors.NewValidationMessage("locker is not offerable for this renewal")
		}
		sess.selection.Locker = option
	}

	reconcileFees(&sess.selection)
	return sess.snapshotLocked(), nil
}

func (s *service) UpdateFees(ctx context.Context, sessionID uuid.UUID, req UpdateFeesRequest) (*Snapshot, error) {
	sess, err := s.store.Get(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	sel := &sess.selection

	// Total fee edits are ignored while the field is system-owned.
	if req.TotalFee != nil && !sel.FeeLocked {
		sel.TotalFee = parseAmount(*req.TotalFee)
	}
	if req.LockerFee != nil {
		sel.LockerFee = parseAmount(*req.LockerFee)
	}
	if req.Cash != nil {
		sel.Cash = parseAmount(*req.Cash)
	}
	if req.Online != nil {
		sel.Online = parseAmount(*req.Online)
	}
	if req.SecurityMoney != nil {
		sel.SecurityMoney = parseAmount(*req.SecurityMoney)
	}
	if req.Discount != nil {
		sel.Discount = parseAmount(*req.Discount)
	}

	reconcileFees(sel)
	return sess.snapshotLocked(), nil
}

func (s *service) Submit(ctx context.Context, sessionID uuid.UUID, req SubmitRequest) error {
	sess, err := s.store.Get(sessionID)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	// All required-field checks happen before any database call.
	missing := make([]string, 0, 6)
	if req.Name == "" {
		missing = append(missing, "name")
	}
	if req.Phone == "" {
		missing = append(missing, "phone")
	}
	if req.Address == "" {
		missing = append(missing, "address")
	}
	if sess.selection.Branch == nil {
		missing = append(missing, "branch")
	}
	if len(sess.selection.Shifts) == 0 {
		missing = append(missing, "shifts")
	}
	if sess.selection.TotalFee <= 0 {
		missing = append(missing, "total fee")
	}
	if len(missing) > 0 {
		return apperrors.NewValidationError(missing...)
	}

	if err := s.validate.Struct(&req); err != nil {
		return apperrors.NewValidationMessage(fmt.Sprintf("invalid submission: %v", err))
	}

	payload := students.RenewPayload{
		Name:               req.Name,
		RegistrationNumber: req.RegistrationNumber,
		FatherName:         req.FatherName,
		AadharNumber:       req.AadharNumber,
		Address:            req.Address,
		MembershipStart:    req.MembershipStart,
		MembershipEnd:      req.MembershipEnd,
		Email:              req.Email,
		Phone:              req.Phone,
		Remark:             req.Remark,
		BranchID:           sess.selection.Branch.ID,
		LockerFee:          sess.selection.LockerFee,
		Discount:           sess.selection.Discount,
		TotalFee:           sess.selection.TotalFee,
		Cash:               sess.selection.Cash,
		Online:             sess.selection.Online,
		SecurityMoney:      sess.selection.SecurityMoney,
	}
	if sess.selection.Seat != nil && sess.selection.Seat.ID != nil {
		payload.SeatID = sess.selection.Seat.ID
	}
	if sess.selection.Locker != nil && sess.selection.Locker.ID != nil {
		payload.LockerID = sess.selection.Locker.ID
	}
	for _, shift := range sess.selection.Shifts {
		payload.ShiftIDs = append(payload.ShiftIDs, shift.ID)
	}

	if err := s.students.Renew(ctx, sess.StudentID, payload); err != nil {
		// The session stays alive so the admin can correct and retry.
		return err
	}

	s.availability.InvalidateBranch(ctx, payload.BranchID)
	s.publishCompleted(ctx, sess, &req, &payload)

	s.store.Delete(sess.ID)
	logger.GetDefault().LogRenewalSubmitted(ctx, sess.ID.String(), sess.StudentID.String(), payload.TotalFee)
	return nil
}

func (s *service) Cancel(ctx context.Context, sessionID uuid.UUID) error {
	if _, err := s.store.Get(sessionID); err != nil {
		return err
	}
	s.store.Delete(sessionID)
	return nil
}

// publishCompleted emits the renewal event; delivery failures are logged
// and never fail the submission.
func (s *service) publishCompleted(ctx context.Context, sess *Session, req *SubmitRequest, payload *students.RenewPayload) {
	if s.producer == nil {
		return
	}

	event := notifications.NewRenewalEvent(sess.StudentID)
	event.StudentName = req.Name
	event.Email = req.Email
	event.Phone = req.Phone
	event.BranchID = payload.BranchID
	event.SeatID = payload.SeatID
	event.LockerID = payload.LockerID
	event.ShiftIDs = payload.ShiftIDs
	event.MembershipStart = payload.MembershipStart
	event.MembershipEnd = payload.MembershipEnd
	event.TotalFee = sess.selection.TotalFee
	event.Paid = sess.selection.Paid
	event.Due = sess.selection.Due

	if err := s.producer.PublishRenewalCompleted(ctx, event); err != nil {
		logger.GetDefault().Error("failed to publish renewal event",
			"student_id", sess.StudentID.String(),
			"error", err.Error(),
		)
	}
}

func findSeatOption(options []availability.SeatOption, id uuid.UUID) *availability.SeatOption {
	for i := range options {
		if options[i].ID != nil && *options[i].ID == id {
			option := options[i]
			return &option
		}
	}
	return nil
}

func findLockerOption(options []availability.LockerOption, id uuid.UUID) *availability.LockerOption {
	for i := range options {
		if options[i].ID != nil && *options[i].ID == id {
			option := options[i]
			return &option
		}
	}
	return nil
}
