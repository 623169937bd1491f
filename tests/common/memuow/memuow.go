//go:build unit

// Package memuow is an in-memory shared.UnitOfWork. Transactions are fully
// serialized and rolled back by restoring a snapshot, which gives the same
// isolation the row locks give in PostgreSQL.
package memuow

import (
	"context"
	"sort"
	"sync"
	"time"

	"cinema-booking/internal/domain/booking"
	"cinema-booking/internal/domain/event"
	"cinema-booking/internal/infra"
	sqlc "cinema-booking/internal/infra/sqlc/generated"
	"cinema-booking/internal/usecase/shared"

	"github.com/google/uuid"
)

type keyID struct {
	key    uuid.UUID
	userID uuid.UUID
}

type state struct {
	events        map[uuid.UUID]*event.Event
	bookings      map[uuid.UUID]*booking.Booking
	keys          map[keyID]shared.IdempotencyRecord
	jobs          []shared.NotificationJob
	jobStatus     map[uuid.UUID]string
	jobErrors     map[uuid.UUID]*string
	confirmations map[string]shared.PaymentConfirmationRecord
	checkIns      []shared.CheckInAttempt
	holders       map[uuid.UUID]shared.HolderSnapshot
	lastLogins    map[uuid.UUID]int
}

func newState() state {
	return state{
		events:        map[uuid.UUID]*event.Event{},
		bookings:      map[uuid.UUID]*booking.Booking{},
		keys:          map[keyID]shared.IdempotencyRecord{},
		jobStatus:     map[uuid.UUID]string{},
		jobErrors:     map[uuid.UUID]*string{},
		confirmations: map[string]shared.PaymentConfirmationRecord{},
		holders:       map[uuid.UUID]shared.HolderSnapshot{},
		lastLogins:    map[uuid.UUID]int{},
	}
}

func (s state) clone() state {
	c := newState()
	for k, v := range s.events {
		c.events[k] = v
	}
	for k, v := range s.bookings {
		c.bookings[k] = v
	}
	for k, v := range s.keys {
		c.keys[k] = v
	}
	c.jobs = append(c.jobs, s.jobs...)
	for k, v := range s.jobStatus {
		c.jobStatus[k] = v
	}
	for k, v := range s.jobErrors {
		c.jobErrors[k] = v
	}
	for k, v := range s.confirmations {
		c.confirmations[k] = v
	}
	c.checkIns = append(c.checkIns, s.checkIns...)
	for k, v := range s.holders {
		c.holders[k] = v
	}
	for k, v := range s.lastLogins {
		c.lastLogins[k] = v
	}
	return c
}

// Store is the shared database behind every transaction. Stored aggregates
// are never handed out; reads return copies.
type Store struct {
	mu sync.Mutex
	st state

	// FailCommit makes the next Within call fail after running fn.
	FailCommit error
	// FailCommitAfter lets that many commits through before FailCommit applies.
	FailCommitAfter int
}

func New() *Store {
	return &Store{st: newState()}
}

func (s *Store) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.st.clone()
	err := fn(ctx, &memTx{s: s})
	if err == nil && s.FailCommit != nil {
		if s.FailCommitAfter > 0 {
			s.FailCommitAfter--
		} else {
			err = s.FailCommit
			s.FailCommit = nil
		}
	}
	if err != nil {
		s.st = snapshot
		return err
	}
	return nil
}

func (s *Store) WithinReadOnly(ctx context.Context, fn func(ctx context.Context, db sqlc.DBTX) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(ctx, nil)
}

func (s *Store) WithDB(ctx context.Context, fn func(ctx context.Context, db sqlc.DBTX) error) error {
	return fn(ctx, nil)
}

func (s *Store) CommandReads() shared.CommandReads {
	return &lockedReads{s: s}
}

// Seeding and inspection helpers.

func (s *Store) PutEvent(e *event.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.events[e.ID()] = copyEvent(e)
}

func (s *Store) PutBooking(b *booking.Booking) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.bookings[b.ID()] = copyBooking(b, b.Version())
}

func (s *Store) PutHolder(h shared.HolderSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.holders[h.ID] = h
}

func (s *Store) PutIdempotencyKey(r shared.IdempotencyRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.keys[keyID{r.Key, r.UserID}] = r
}

func (s *Store) Event(id uuid.UUID) *event.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.st.events[id]; ok {
		return copyEvent(e)
	}
	return nil
}

func (s *Store) Booking(id uuid.UUID) *booking.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.st.bookings[id]; ok {
		return copyBooking(b, b.Version())
	}
	return nil
}

func (s *Store) Bookings() []*booking.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*booking.Booking, 0, len(s.st.bookings))
	for _, b := range s.st.bookings {
		out = append(out, copyBooking(b, b.Version()))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt().Before(out[j].CreatedAt()) })
	return out
}

func (s *Store) IdempotencyKey(key, userID uuid.UUID) (shared.IdempotencyRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.st.keys[keyID{key, userID}]
	return r, ok
}

func (s *Store) Confirmation(externalID string) (shared.PaymentConfirmationRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.st.confirmations[externalID]
	return r, ok
}

func (s *Store) CheckIns() []shared.CheckInAttempt {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]shared.CheckInAttempt(nil), s.st.checkIns...)
}

// Jobs returns outbox jobs with the given status.
func (s *Store) Jobs(status string) []shared.NotificationJob {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []shared.NotificationJob
	for _, j := range s.st.jobs {
		if s.st.jobStatus[j.ID] == status {
			out = append(out, j)
		}
	}
	return out
}

func (s *Store) LastLogins(userID uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.lastLogins[userID]
}

func copyEvent(e *event.Event) *event.Event {
	v := *e
	return &v
}

func copyBooking(b *booking.Booking, version int) *booking.Booking {
	return booking.Reconstruct(booking.ReconstructParams{
		ID:                b.ID(),
		EventID:           b.EventID(),
		HolderID:          b.HolderID(),
		Seats:             b.Seats(),
		Status:            b.Status(),
		PaymentRef:        b.PaymentRef(),
		CheckoutSessionID: b.CheckoutSessionID(),
		CheckoutURL:       b.CheckoutURL(),
		RedemptionToken:   b.RedemptionToken(),
		RedeemedAt:        b.RedeemedAt(),
		RedeemedBy:        b.RedeemedBy(),
		ExpiresAt:         b.ExpiresAt(),
		Version:           version,
		CreatedAt:         b.CreatedAt(),
		UpdatedAt:         b.UpdatedAt(),
	})
}

func notFound(msg string) error {
	return infra.WrapRepoErr(msg, nil, infra.KindNotFound)
}

type memTx struct {
	s *Store
}

func (t *memTx) Events() shared.EventRepository               { return &eventRepo{st: &t.s.st} }
func (t *memTx) Bookings() shared.BookingRepository           { return &bookingRepo{st: &t.s.st} }
func (t *memTx) Idempotency() shared.IdempotencyRepository    { return &keyRepo{st: &t.s.st} }
func (t *memTx) Notifications() shared.NotificationRepository { return &jobRepo{st: &t.s.st} }
func (t *memTx) CheckIns() shared.CheckInRepository           { return &checkInRepo{st: &t.s.st} }
func (t *memTx) Users() shared.UserRepository                 { return &userRepo{st: &t.s.st} }
func (t *memTx) Reads() shared.CommandReads                   { return &reads{st: &t.s.st} }
func (t *memTx) DB() sqlc.DBTX                                { return nil }
func (t *memTx) PaymentConfirmations() shared.PaymentConfirmationRepository {
	return &confirmationRepo{st: &t.s.st}
}

type eventRepo struct{ st *state }

func (r *eventRepo) Create(_ context.Context, _ sqlc.DBTX, e *event.Event) error {
	if _, ok := r.st.events[e.ID()]; ok {
		return infra.WrapRepoErr("event exists", nil, infra.KindDuplicateKey)
	}
	r.st.events[e.ID()] = copyEvent(e)
	return nil
}

func (r *eventRepo) FindByID(_ context.Context, _ sqlc.DBTX, id uuid.UUID) (*event.Event, error) {
	e, ok := r.st.events[id]
	if !ok {
		return nil, notFound("event not found")
	}
	return copyEvent(e), nil
}

func (r *eventRepo) LockByID(ctx context.Context, db sqlc.DBTX, id uuid.UUID) (*event.Event, error) {
	return r.FindByID(ctx, db, id)
}

func (r *eventRepo) SaveSeats(_ context.Context, _ sqlc.DBTX, e *event.Event) error {
	if _, ok := r.st.events[e.ID()]; !ok {
		return notFound("event not found")
	}
	r.st.events[e.ID()] = copyEvent(e)
	return nil
}

func (r *eventRepo) CompletePast(_ context.Context, _ sqlc.DBTX, cutoff time.Time) (int64, error) {
	var n int64
	for id, e := range r.st.events {
		if !e.ScheduledAt().Before(cutoff) {
			continue
		}
		if e.Status() != event.StatusUpcoming && e.Status() != event.StatusSoldOut {
			continue
		}
		r.st.events[id] = event.Reconstruct(e.ID(), e.Title(), e.Venue(), e.Capacity(), e.CommittedSeats(),
			e.Price(), e.ScheduledAt(), event.StatusCompleted, e.CreatedAt(), cutoff)
		n++
	}
	return n, nil
}

type bookingRepo struct{ st *state }

func (r *bookingRepo) Create(_ context.Context, _ sqlc.DBTX, b *booking.Booking) error {
	for _, existing := range r.st.bookings {
		if existing.HolderID() == b.HolderID() && existing.EventID() == b.EventID() {
			return infra.WrapRepoErr("duplicate booking", nil, infra.KindDuplicateKey)
		}
	}
	r.st.bookings[b.ID()] = copyBooking(b, b.Version())
	return nil
}

func (r *bookingRepo) LockByID(_ context.Context, _ sqlc.DBTX, id uuid.UUID) (*booking.Booking, error) {
	b, ok := r.st.bookings[id]
	if !ok {
		return nil, notFound("booking not found")
	}
	return copyBooking(b, b.Version()), nil
}

func (r *bookingRepo) LockByHolderEvent(_ context.Context, _ sqlc.DBTX, holderID, eventID uuid.UUID) (*booking.Booking, error) {
	for _, b := range r.st.bookings {
		if b.HolderID() == holderID && b.EventID() == eventID {
			return copyBooking(b, b.Version()), nil
		}
	}
	return nil, notFound("no booking for holder and event")
}

func (r *bookingRepo) LockByToken(_ context.Context, _ sqlc.DBTX, token string) (*booking.Booking, error) {
	for _, b := range r.st.bookings {
		if b.RedemptionToken() != nil && *b.RedemptionToken() == token {
			return copyBooking(b, b.Version()), nil
		}
	}
	return nil, notFound("no booking for token")
}

func (r *bookingRepo) Update(_ context.Context, _ sqlc.DBTX, b *booking.Booking) error {
	stored, ok := r.st.bookings[b.ID()]
	if !ok || stored.Version() != b.Version() {
		return infra.WrapRepoErr("booking version changed", nil, infra.KindConflict)
	}
	if ref := b.PaymentRef(); ref != nil {
		for id, other := range r.st.bookings {
			if id != b.ID() && other.PaymentRef() != nil && *other.PaymentRef() == *ref {
				return infra.WrapRepoErr("payment reference in use", nil, infra.KindDuplicateKey)
			}
		}
	}
	r.st.bookings[b.ID()] = copyBooking(b, b.Version()+1)
	return nil
}

func (r *bookingRepo) ListExpiredPending(_ context.Context, _ sqlc.DBTX, now time.Time, limit int32) ([]shared.ExpiredHold, error) {
	var holds []shared.ExpiredHold
	for _, b := range r.st.bookings {
		if b.IsOverdue(now) {
			holds = append(holds, shared.ExpiredHold{BookingID: b.ID(), EventID: b.EventID()})
		}
		if int32(len(holds)) >= limit {
			break
		}
	}
	return holds, nil
}

type keyRepo struct{ st *state }

func (r *keyRepo) TryInsert(_ context.Context, _ sqlc.DBTX, key, userID uuid.UUID, _ string, requestHash string, expiresAt time.Time) (bool, error) {
	id := keyID{key, userID}
	if _, ok := r.st.keys[id]; ok {
		return false, nil
	}
	r.st.keys[id] = shared.IdempotencyRecord{
		Key:         key,
		UserID:      userID,
		Status:      shared.IdempotencyStatusProcessing,
		RequestHash: requestHash,
		ExpiresAt:   expiresAt,
	}
	return true, nil
}

func (r *keyRepo) UpdateStatusCompleted(_ context.Context, _ sqlc.DBTX, key, userID uuid.UUID, _ string, bookingID uuid.UUID) error {
	id := keyID{key, userID}
	rec, ok := r.st.keys[id]
	if !ok {
		return notFound("idempotency key not found")
	}
	rec.Status = shared.IdempotencyStatusCompleted
	rec.ResultBookingID = &bookingID
	r.st.keys[id] = rec
	return nil
}

func (r *keyRepo) ClaimExpired(_ context.Context, _ sqlc.DBTX, key, userID uuid.UUID, requestHash string, expiresAt time.Time) (bool, error) {
	id := keyID{key, userID}
	rec, ok := r.st.keys[id]
	if !ok || !rec.ExpiresAt.Before(expiresAt) {
		return false, nil
	}
	r.st.keys[id] = shared.IdempotencyRecord{
		Key:         key,
		UserID:      userID,
		Status:      shared.IdempotencyStatusProcessing,
		RequestHash: requestHash,
		ExpiresAt:   expiresAt,
	}
	return true, nil
}

func (r *keyRepo) Delete(_ context.Context, _ sqlc.DBTX, key, userID uuid.UUID) error {
	delete(r.st.keys, keyID{key, userID})
	return nil
}

func (r *keyRepo) DeleteExpired(_ context.Context, _ sqlc.DBTX) (int64, error) {
	now := time.Now()
	var n int64
	for id, rec := range r.st.keys {
		if rec.IsExpired(now) {
			delete(r.st.keys, id)
			n++
		}
	}
	return n, nil
}

type jobRepo struct{ st *state }

func (r *jobRepo) CreateJob(_ context.Context, _ sqlc.DBTX, kind, topic string, payload []byte, runAt time.Time) error {
	job := shared.NotificationJob{ID: uuid.New(), Kind: kind, Topic: topic, Payload: payload, RunAt: runAt}
	r.st.jobs = append(r.st.jobs, job)
	r.st.jobStatus[job.ID] = shared.JobStatusQueued
	return nil
}

func (r *jobRepo) ClaimDue(_ context.Context, _ sqlc.DBTX, now, leaseUntil time.Time, limit int32) ([]shared.NotificationJob, error) {
	var due []shared.NotificationJob
	for i, j := range r.st.jobs {
		if int32(len(due)) >= limit {
			break
		}
		status := r.st.jobStatus[j.ID]
		if status != shared.JobStatusQueued && status != shared.JobStatusSending {
			continue
		}
		if j.RunAt.After(now) {
			continue
		}
		j.RunAt = leaseUntil
		r.st.jobs[i] = j
		r.st.jobStatus[j.ID] = shared.JobStatusSending
		due = append(due, j)
	}
	return due, nil
}

func (r *jobRepo) UpdateJobStatus(_ context.Context, _ sqlc.DBTX, u shared.NotificationJobUpdate) error {
	for i, j := range r.st.jobs {
		if j.ID == u.ID {
			j.Attempts = u.Attempts
			j.RunAt = u.RunAt
			r.st.jobs[i] = j
			r.st.jobStatus[j.ID] = u.Status
			r.st.jobErrors[j.ID] = u.LastError
			return nil
		}
	}
	return notFound("notification job not found")
}

type confirmationRepo struct{ st *state }

func (r *confirmationRepo) Record(_ context.Context, _ sqlc.DBTX, c shared.PaymentConfirmation, _ time.Time) (*shared.PaymentConfirmationRecord, error) {
	rec, ok := r.st.confirmations[c.ExternalID]
	if !ok {
		rec = shared.PaymentConfirmationRecord{PaymentConfirmation: c}
	}
	rec.Deliveries++
	r.st.confirmations[c.ExternalID] = rec
	return &rec, nil
}

func (r *confirmationRepo) UpdateOutcome(_ context.Context, _ sqlc.DBTX, externalID string, outcome booking.ReconcileOutcome, bookingID *uuid.UUID) error {
	rec, ok := r.st.confirmations[externalID]
	if !ok {
		return notFound("payment confirmation not found")
	}
	rec.Outcome = outcome.String()
	rec.NeedsReview = outcome.NeedsReview()
	rec.BookingID = bookingID
	r.st.confirmations[externalID] = rec
	return nil
}

func (r *confirmationRepo) FlagForReview(_ context.Context, _ sqlc.DBTX, externalID string, outcome booking.ReconcileOutcome) error {
	rec, ok := r.st.confirmations[externalID]
	if !ok {
		return notFound("payment confirmation not found")
	}
	rec.Outcome = outcome.String()
	rec.NeedsReview = true
	r.st.confirmations[externalID] = rec
	return nil
}

func (r *confirmationRepo) Find(_ context.Context, _ sqlc.DBTX, externalID string) (*shared.PaymentConfirmationRecord, error) {
	rec, ok := r.st.confirmations[externalID]
	if !ok {
		return nil, notFound("payment confirmation not found")
	}
	return &rec, nil
}

type checkInRepo struct{ st *state }

func (r *checkInRepo) Append(_ context.Context, _ sqlc.DBTX, a shared.CheckInAttempt) error {
	r.st.checkIns = append(r.st.checkIns, a)
	return nil
}

type userRepo struct{ st *state }

func (r *userRepo) UpdateLastLogin(_ context.Context, _ sqlc.DBTX, userID uuid.UUID) error {
	r.st.lastLogins[userID]++
	return nil
}

type reads struct{ st *state }

func (r *reads) IdempotencyByKey(_ context.Context, key, userID uuid.UUID) (*shared.IdempotencyRecord, error) {
	rec, ok := r.st.keys[keyID{key, userID}]
	if !ok {
		return nil, notFound("idempotency key not found")
	}
	return &rec, nil
}

func (r *reads) HolderByID(_ context.Context, id uuid.UUID) (*shared.HolderSnapshot, error) {
	h, ok := r.st.holders[id]
	if !ok {
		return nil, notFound("holder not found")
	}
	return &h, nil
}

func (r *reads) BookingByID(_ context.Context, id uuid.UUID) (*shared.BookingSnapshot, error) {
	b, ok := r.st.bookings[id]
	if !ok {
		return nil, notFound("booking not found")
	}
	return &shared.BookingSnapshot{ID: b.ID(), EventID: b.EventID(), HolderID: b.HolderID(), Status: b.Status().String()}, nil
}

// lockedReads serves CommandReads outside a transaction.
type lockedReads struct{ s *Store }

func (r *lockedReads) IdempotencyByKey(ctx context.Context, key, userID uuid.UUID) (*shared.IdempotencyRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return (&reads{st: &r.s.st}).IdempotencyByKey(ctx, key, userID)
}

func (r *lockedReads) HolderByID(ctx context.Context, id uuid.UUID) (*shared.HolderSnapshot, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return (&reads{st: &r.s.st}).HolderByID(ctx, id)
}

func (r *lockedReads) BookingByID(ctx context.Context, id uuid.UUID) (*shared.BookingSnapshot, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return (&reads{st: &r.s.st}).BookingByID(ctx, id)
}
