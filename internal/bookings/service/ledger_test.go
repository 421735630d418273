package service

import (
	"context"
	"fmt"
	billserrors "suitespot/internal/bills/errors"
	billsservice "suitespot/internal/bills/service"
	bookingserrors "suitespot/internal/bookings/errors"
	"suitespot/internal/bookings/validator"
	"suitespot/pkg/config"
	"suitespot/pkg/daterange"
	mongotx "suitespot/pkg/db/mongo"
	"suitespot/pkg/logger"
	"suitespot/pkg/model"
	"sort"
	"sync"
	"testing"
	"time"
)

// ────────────────────────────────────────────────
// In-memory ledger shared by the booking and bill fakes
// ────────────────────────────────────────────────

type journalKey struct{}

// journal records what a transaction created so a failed one can be undone.
type journal struct {
	bookings []string
	bills    []string
}

type memLedger struct {
	mu       sync.Mutex
	seq      int
	bookings map[string]*model.Booking
	bills    map[string]*model.Bill

	billCreateErr error
}

func newLedger() *memLedger {
	return &memLedger{
		bookings: make(map[string]*model.Booking),
		bills:    make(map[string]*model.Bill),
	}
}

func (l *memLedger) nextID() string {
	l.seq++
	return fmt.Sprintf("%024x", l.seq)
}

func (l *memLedger) record(ctx context.Context, fn func(j *journal)) {
	if j, ok := ctx.Value(journalKey{}).(*journal); ok {
		fn(j)
	}
}

// seed stores a committed booking outside any transaction.
func (l *memLedger) seed(b *model.Booking) *model.Booking {
	l.mu.Lock()
	defer l.mu.Unlock()
	if b.ID == "" {
		b.ID = l.nextID()
	}
	stored := *b
	l.bookings[b.ID] = &stored
	return b
}

func (l *memLedger) bookingCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.bookings)
}

func (l *memLedger) billCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.bills)
}

type memBookingRepo struct {
	*memLedger
}

func (r *memBookingRepo) Create(ctx context.Context, booking *model.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	booking.ID = r.nextID()
	stored := *booking
	r.bookings[booking.ID] = &stored
	r.record(ctx, func(j *journal) { j.bookings = append(j.bookings, booking.ID) })
	return nil
}

func (r *memBookingRepo) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, err := mongotx.ObjectID(id); err != nil {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}
	b, ok := r.bookings[id]
	if !ok {
		return nil, bookingserrors.ErrNotFound
	}
	found := *b
	return &found, nil
}

func (r *memBookingRepo) filter(match func(b *model.Booking) bool) []*model.Booking {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := []*model.Booking{}
	for _, b := range r.bookings {
		if match(b) {
			found := *b
			result = append(result, &found)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

func (r *memBookingRepo) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, error) {
	all := r.filter(func(*model.Booking) bool { return true })
	if offset >= int64(len(all)) {
		return []*model.Booking{}, nil
	}
	all = all[offset:]
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (r *memBookingRepo) FindByGuest(ctx context.Context, guestID string) ([]*model.Booking, error) {
	return r.filter(func(b *model.Booking) bool { return b.GuestID == guestID }), nil
}

func (r *memBookingRepo) FindByListing(ctx context.Context, listingID string) ([]*model.Booking, error) {
	return r.filter(func(b *model.Booking) bool { return b.ListingID == listingID }), nil
}

func (r *memBookingRepo) FindByListings(ctx context.Context, listingIDs []string) ([]*model.Booking, error) {
	ids := make(map[string]bool, len(listingIDs))
	for _, id := range listingIDs {
		ids[id] = true
	}
	return r.filter(func(b *model.Booking) bool { return ids[b.ListingID] }), nil
}

func (r *memBookingRepo) FindOverlapping(ctx context.Context, listingID string, dr daterange.DateRange, excludeStatuses ...string) (*model.Booking, error) {
	found := r.filter(func(b *model.Booking) bool {
		for _, status := range excludeStatuses {
			if b.Status == status {
				return false
			}
		}
		return b.ListingID == listingID && b.Range().Overlaps(dr)
	})
	if len(found) == 0 {
		return nil, nil
	}
	return found[0], nil
}

func (r *memBookingRepo) FindGuestOverlapping(ctx context.Context, guestID string, dr daterange.DateRange) (*model.Booking, error) {
	found := r.filter(func(b *model.Booking) bool {
		return b.GuestID == guestID && b.Range().Overlaps(dr)
	})
	if len(found) == 0 {
		return nil, nil
	}
	return found[0], nil
}

func (r *memBookingRepo) UpdateStatus(ctx context.Context, id string, from, to string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return bookingserrors.ErrNotFound
	}
	if b.Status != from {
		return fmt.Errorf("%w: %s", bookingserrors.ErrStatusChanged, id)
	}
	b.Status = to
	return nil
}

func (r *memBookingRepo) Count(ctx context.Context) (int64, error) {
	return int64(r.bookingCount()), nil
}

// ExecuteTransaction undoes every write fn made when fn fails.
func (r *memBookingRepo) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	j := &journal{}
	if err := fn(context.WithValue(ctx, journalKey{}, j)); err != nil {
		r.mu.Lock()
		for _, id := range j.bookings {
			delete(r.bookings, id)
		}
		for _, id := range j.bills {
			delete(r.bills, id)
		}
		r.mu.Unlock()
		return err
	}
	return nil
}

type memBillRepo struct {
	*memLedger
}

func (r *memBillRepo) Create(ctx context.Context, bill *model.Bill) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.billCreateErr != nil {
		return r.billCreateErr
	}
	for _, existing := range r.bills {
		if existing.BookingID == bill.BookingID {
			return billserrors.ErrDuplicateBill
		}
	}
	bill.ID = r.nextID()
	stored := *bill
	r.bills[bill.ID] = &stored
	r.record(ctx, func(j *journal) { j.bills = append(j.bills, bill.ID) })
	return nil
}

func (r *memBillRepo) FindByID(ctx context.Context, id string) (*model.Bill, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bills[id]
	if !ok {
		return nil, billserrors.ErrNotFound
	}
	found := *b
	return &found, nil
}

func (r *memBillRepo) FindByBooking(ctx context.Context, bookingID string) (*model.Bill, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bills {
		if b.BookingID == bookingID {
			found := *b
			return &found, nil
		}
	}
	return nil, nil
}

func (r *memBillRepo) FindByBookings(ctx context.Context, bookingIDs []string) ([]*model.Bill, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make(map[string]bool, len(bookingIDs))
	for _, id := range bookingIDs {
		ids[id] = true
	}
	result := []*model.Bill{}
	for _, b := range r.bills {
		if ids[b.BookingID] {
			found := *b
			result = append(result, &found)
		}
	}
	return result, nil
}

func (r *memBillRepo) FindByUser(ctx context.Context, userID string) ([]*model.Bill, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := []*model.Bill{}
	for _, b := range r.bills {
		if b.UserID == userID {
			found := *b
			result = append(result, &found)
		}
	}
	return result, nil
}

// ────────────────────────────────────────────────
// Locks, listings and events
// ────────────────────────────────────────────────

type memLocks struct {
	mu       sync.Mutex
	locks    map[string]model.BookingLock
	acquired int
}

func newLocks() *memLocks {
	return &memLocks{locks: make(map[string]model.BookingLock)}
}

func (m *memLocks) Create(ctx context.Context, lock *model.BookingLock) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, held := m.locks[lock.ID]; held {
		return bookingserrors.ErrLockHeld
	}
	m.locks[lock.ID] = *lock
	m.acquired++
	return nil
}

func (m *memLocks) Delete(ctx context.Context, lockID, owner string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if lock, ok := m.locks[lockID]; ok && lock.Owner == owner {
		delete(m.locks, lockID)
	}
	return nil
}

func (m *memLocks) DeleteExpired(ctx context.Context, lockID string, now time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if lock, ok := m.locks[lockID]; ok && lock.ExpiresAt.Before(now) {
		delete(m.locks, lockID)
		return true, nil
	}
	return false, nil
}

func (m *memLocks) held() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.locks)
}

type memListings struct {
	listings map[string]*model.Listing
	err      error
}

func (m *memListings) Get(ctx context.Context, id string) (*model.Listing, error) {
	if m.err != nil {
		return nil, m.err
	}
	l, ok := m.listings[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrListingNotFound, id)
	}
	found := *l
	return &found, nil
}

func (m *memListings) Fetch(ctx context.Context, id string) (*model.Listing, error) {
	return m.Get(ctx, id)
}

func (m *memListings) ListByOwner(ctx context.Context, ownerID string) ([]*model.Listing, error) {
	result := []*model.Listing{}
	for _, l := range m.listings {
		if l.OwnerID == ownerID {
			found := *l
			result = append(result, &found)
		}
	}
	return result, nil
}

type recordedEvent struct {
	eventType      string
	bookingID      string
	previousStatus string
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []recordedEvent
	err    error
}

func (p *recordingPublisher) BookingAdmitted(ctx context.Context, admission *model.Admission) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{eventType: "admitted", bookingID: admission.Booking.ID})
	return p.err
}

func (p *recordingPublisher) BookingStatusChanged(ctx context.Context, booking *model.Booking, previousStatus string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{
		eventType:      "status_changed",
		bookingID:      booking.ID,
		previousStatus: previousStatus,
	})
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

// ────────────────────────────────────────────────
// Fixture
// ────────────────────────────────────────────────

const (
	listingA = "507f1f77bcf86cd799439011"
	listingB = "507f1f77bcf86cd799439012"
	ownerA   = "owner-a"
	ownerB   = "owner-b"
)

var fixedNow = time.Date(2024, time.May, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	svc       *bookingService
	ledger    *memLedger
	bookings  *memBookingRepo
	locks     *memLocks
	listings  *memListings
	publisher *recordingPublisher
}

func testConfig() *config.Config {
	return &config.Config{
		Log: logger.New(logger.Config{
			Level:   "error",
			Format:  logger.JSON,
			Service: "test",
		}),
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      5 * time.Second,
		LockTTL:           30 * time.Second,
		LockRetryInterval: time.Millisecond,
		LockWaitTimeout:   5 * time.Second,
	}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := testConfig()
	ledger := newLedger()
	f := &fixture{
		ledger:   ledger,
		bookings: &memBookingRepo{ledger},
		locks:    newLocks(),
		listings: &memListings{listings: map[string]*model.Listing{
			listingA: {ID: listingA, OwnerID: ownerA, Price: 1000, Status: model.ListingApproved},
			listingB: {ID: listingB, OwnerID: ownerB, Price: 250, Status: model.ListingApproved},
		}},
		publisher: &recordingPublisher{},
	}

	bills := billsservice.NewBillService(&memBillRepo{ledger}, cfg)
	f.svc = NewBookingService(
		f.bookings,
		f.locks,
		bills,
		f.listings,
		f.publisher,
		validator.NewBookingValidator(cfg.Log),
		cfg,
	).(*bookingService)
	f.svc.now = func() time.Time { return fixedNow }
	return f
}

func date(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

func admission(listingID, guestID, start, end string) *model.AdmissionRequest {
	return &model.AdmissionRequest{
		ListingID: listingID,
		GuestID:   guestID,
		StartDate: date(start),
		EndDate:   date(end),
	}
}
