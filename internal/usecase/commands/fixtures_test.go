//go:build unit

package commands

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"cinema-booking/internal/domain/booking"
	"cinema-booking/internal/domain/event"
	"cinema-booking/internal/domain/ticket"
	"cinema-booking/internal/pkg/clock"
	"cinema-booking/internal/pkg/config"
	"cinema-booking/internal/pkg/errs"
	"cinema-booking/internal/pkg/jwt"
	"cinema-booking/internal/usecase/queries"
	"cinema-booking/internal/usecase/shared"
	"cinema-booking/tests/common/builder"
	"cinema-booking/tests/common/memuow"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixtureNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

type fakeGateway struct {
	mu       sync.Mutex
	requests []SessionRequest
	err      error
}

func (g *fakeGateway) CreateSession(_ context.Context, req SessionRequest) (*CheckoutSession, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.requests = append(g.requests, req)
	if g.err != nil {
		return nil, g.err
	}
	return &CheckoutSession{
		ID:          "cs_" + req.BookingID.String(),
		RedirectURL: "https://pay.example.com/" + req.BookingID.String(),
	}, nil
}

func (g *fakeGateway) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.requests)
}

type scheduled struct {
	item OrphanRetry
	at   time.Time
}

type fakeQueue struct {
	mu    sync.Mutex
	items []scheduled
	err   error
}

func (q *fakeQueue) Schedule(_ context.Context, item OrphanRetry, at time.Time) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.items = append(q.items, scheduled{item: item, at: at})
	return nil
}

func (q *fakeQueue) ClaimDue(_ context.Context, now time.Time, limit int64) ([]OrphanRetry, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return nil, q.err
	}
	sort.SliceStable(q.items, func(i, j int) bool { return q.items[i].at.Before(q.items[j].at) })

	var due []OrphanRetry
	rest := q.items[:0]
	for _, s := range q.items {
		if !s.at.After(now) && int64(len(due)) < limit {
			due = append(due, s.item)
			continue
		}
		rest = append(rest, s)
	}
	q.items = rest
	return due, nil
}

func (q *fakeQueue) pending() []scheduled {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]scheduled(nil), q.items...)
}

type fakeMailer struct {
	mu     sync.Mutex
	sent   [][]byte
	failN  int
	failed int
}

func (m *fakeMailer) Send(_ context.Context, _ string, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failed < m.failN {
		m.failed++
		return errors.New("smtp unavailable")
	}
	m.sent = append(m.sent, payload)
	return nil
}

type countingRecorder struct {
	mu        sync.Mutex
	checkouts map[string]int
	reconcile map[booking.ReconcileOutcome]int
	redeem    map[booking.RedeemOutcome]int
	swept     map[string]int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{
		checkouts: map[string]int{},
		reconcile: map[booking.ReconcileOutcome]int{},
		redeem:    map[booking.RedeemOutcome]int{},
		swept:     map[string]int{},
	}
}

func (r *countingRecorder) Checkout(outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checkouts[outcome]++
}

func (r *countingRecorder) Reconcile(outcome booking.ReconcileOutcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reconcile[outcome]++
}

func (r *countingRecorder) Redeem(outcome booking.RedeemOutcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.redeem[outcome]++
}

func (r *countingRecorder) Swept(kind string, n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.swept[kind] += n
}

type world struct {
	store    *memuow.Store
	clock    *clock.MockClock
	gateway  *fakeGateway
	queue    *fakeQueue
	mailer   *fakeMailer
	issuer   *ticket.Issuer
	metrics  *countingRecorder
	bookings queries.BookingQueries
	events   queries.EventQueries
	cfg      config.BookingConfig
	workers  config.WorkerConfig
	holder   shared.HolderSnapshot
}

func newWorld(t *testing.T) *world {
	t.Helper()
	store := memuow.New()
	clk := clock.NewMockClock(fixtureNow)
	holder := shared.HolderSnapshot{ID: uuid.New(), Email: "holder@example.com", Role: "customer", IsActive: true}
	store.PutHolder(holder)

	return &world{
		store:    store,
		clock:    clk,
		gateway:  &fakeGateway{},
		queue:    &fakeQueue{},
		mailer:   &fakeMailer{},
		issuer:   ticket.NewIssuer(ticket.NewRandomTokenSource(), jwt.NewTicketSigner("ticket-secret", "cinema-booking-test")),
		metrics:  newCountingRecorder(),
		bookings: queries.NewBookingQueries(store.BookingReads()),
		events:   queries.NewEventQueries(store.EventReads(), clk),
		cfg: config.BookingConfig{
			HoldTTL:        15 * time.Minute,
			IdempotencyTTL: 24 * time.Hour,
			VenueTimeZone:  "Asia/Tokyo",
			MaxSeats:       10,
		},
		workers: config.WorkerConfig{
			BatchSize:           100,
			OrphanMaxAttempts:   3,
			OrphanBaseDelay:     2 * time.Second,
			OrphanMaxDelay:      time.Minute,
			NotificationRetries: 3,
		},
		holder: holder,
	}
}

func (w *world) checkoutUseCase() CheckoutCommands {
	return NewCheckoutUseCase(w.store, w.gateway, w.bookings, w.clock, w.cfg, w.metrics)
}

func (w *world) paymentUseCase() PaymentCommands {
	return NewPaymentUseCase(w.store, w.issuer, w.queue, w.clock, w.workers, w.metrics)
}

func (w *world) checkInUseCase() CheckInCommands {
	return NewCheckInUseCase(w.store, w.issuer, w.clock, w.cfg, w.metrics)
}

func (w *world) seedEvent(mutate func(*builder.EventBuilder)) *event.Event {
	b := builder.NewEventBuilder()
	if mutate != nil {
		b.With(mutate)
	}
	ev := b.BuildDomain()
	w.store.PutEvent(ev)
	return ev
}

func (w *world) seedBooking(mutate func(*builder.BookingBuilder)) *booking.Booking {
	b := builder.NewBookingBuilder()
	if mutate != nil {
		b.With(mutate)
	}
	bk := b.BuildDomain()
	w.store.PutBooking(bk)
	return bk
}

func (w *world) mint(t *testing.T) string {
	t.Helper()
	token, err := w.issuer.Mint()
	require.NoError(t, err)
	return token
}

func assertMarked(t *testing.T, err error, target error) {
	t.Helper()
	require.Error(t, err)
	assert.Truef(t, errs.Is(err, target), "expected %v, got %v", target, err)
}
