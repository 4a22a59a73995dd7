package payments

import (
	"context"
	"huletfish/src/models"
	"huletfish/src/types"
	"maps"
	"net/http"
	"sort"
	"sync"
	"time"
)

type memStore struct {
	txMu      sync.Mutex
	mu        sync.Mutex
	clock     func() time.Time
	nextID    uint
	bookings  map[uint]models.Booking
	payments  map[string]models.Payment
	events    map[string]models.WebhookEvent
	// onCreate runs once before the next insert, simulating a racing writer
	onCreate func()
	// createErr fails the next insert
	createErr error
}

func newMemStore(clock func() time.Time) *memStore {
	return &memStore{
		clock:    clock,
		bookings: map[uint]models.Booking{},
		payments: map[string]models.Payment{},
		events:   map[string]models.WebhookEvent{},
	}
}

func (m *memStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()
	m.mu.Lock()
	bookings, payments, events := maps.Clone(m.bookings), maps.Clone(m.payments), maps.Clone(m.events)
	m.mu.Unlock()
	if err := fn(m); err != nil {
		m.mu.Lock()
		m.bookings, m.payments, m.events = bookings, payments, events
		m.mu.Unlock()
		return err
	}
	return nil
}

func (m *memStore) putBooking(b models.Booking) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bookings[b.ID] = b
}

func (m *memStore) booking(id uint) models.Booking {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bookings[id]
}

func (m *memStore) payment(paymentID string) models.Payment {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.payments[paymentID]
}

func (m *memStore) paymentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.payments)
}

func (m *memStore) FindBooking(ctx context.Context, id uint) (*models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &b, nil
}

func (m *memStore) UpdateBookingStatus(ctx context.Context, id uint, status types.BookingStatus, paymentStatus types.BookingPaymentStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return ErrNotFound
	}
	b.Status = status
	b.PaymentStatus = paymentStatus
	m.bookings[id] = b
	return nil
}

func (m *memStore) FindPayment(ctx context.Context, paymentID string) (*models.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.payments[paymentID]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (m *memStore) FindActivePayment(ctx context.Context, bookingID uint) (*models.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.payments {
		if p.BookingID == bookingID && p.Status.Active() {
			return &p, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memStore) FindPaymentByGatewayRef(ctx context.Context, gateway types.PaymentMethod, ref string) (*models.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.payments {
		if p.PaymentGateway == gateway && p.GatewayRef != nil && *p.GatewayRef == ref {
			return &p, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memStore) CreatePayment(ctx context.Context, p *models.Payment) error {
	if hook := m.onCreate; hook != nil {
		m.onCreate = nil
		hook()
	}
	if err := m.createErr; err != nil {
		m.createErr = nil
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.payments {
		if existing.BookingID == p.BookingID && existing.Status.Active() {
			return ErrPaymentConflict
		}
	}
	m.nextID++
	p.ID = m.nextID
	if p.CreatedAt.IsZero() {
		p.CreatedAt = m.clock()
	}
	m.payments[p.PaymentID] = *p
	return nil
}

func (m *memStore) SavePayment(ctx context.Context, p *models.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payments[p.PaymentID] = *p
	return nil
}

func (m *memStore) ListPayments(ctx context.Context, userID uint, status string, page, limit int) ([]models.Payment, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	matched := make([]models.Payment, 0)
	for _, p := range m.payments {
		if p.UserID == userID && (status == "" || string(p.Status) == status) {
			matched = append(matched, p)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	total := int64(len(matched))
	start := (page - 1) * limit
	if start >= len(matched) {
		return []models.Payment{}, total, nil
	}
	end := min(start+limit, len(matched))
	return matched[start:end], total, nil
}

func (m *memStore) ListStalePayments(ctx context.Context, createdBefore time.Time, limit int) ([]models.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stale := make([]models.Payment, 0)
	for _, p := range m.payments {
		if (p.Status == types.PAYMENT_PENDING || p.Status == types.PAYMENT_PROCESSING) && p.CreatedAt.Before(createdBefore) {
			stale = append(stale, p)
		}
	}
	sort.Slice(stale, func(i, j int) bool { return stale[i].CreatedAt.Before(stale[j].CreatedAt) })
	if len(stale) > limit {
		stale = stale[:limit]
	}
	return stale, nil
}

func (m *memStore) RecordWebhookEvent(ctx context.Context, e *models.WebhookEvent) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := string(e.Gateway) + ":" + e.EventID
	if _, ok := m.events[key]; ok {
		return false, nil
	}
	m.events[key] = *e
	return true, nil
}

func (m *memStore) SaveWebhookEvent(ctx context.Context, e *models.WebhookEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events[string(e.Gateway)+":"+e.EventID] = *e
	return nil
}

type fakeGateway struct {
	name        types.PaymentMethod
	session     *CheckoutSession
	checkoutErr error
	status      *GatewayStatus
	verifyErr   error
	requests    []CheckoutRequest
}

func (g *fakeGateway) Name() types.PaymentMethod { return g.name }

func (g *fakeGateway) CreateCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	g.requests = append(g.requests, req)
	if g.checkoutErr != nil {
		return nil, g.checkoutErr
	}
	return g.session, nil
}

func (g *fakeGateway) Verify(ctx context.Context, reference string) (*GatewayStatus, error) {
	if g.verifyErr != nil {
		return nil, g.verifyErr
	}
	st := *g.status
	st.Reference = reference
	return &st, nil
}

func (g *fakeGateway) ParseWebhook(payload []byte, header http.Header) (*WebhookNotification, error) {
	return nil, ErrSignatureInvalid
}

// stripeCheckout uses the real webhook verification with a canned checkout.
type stripeCheckout struct {
	*StripeGateway
	session *CheckoutSession
}

func (g *stripeCheckout) CreateCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	return g.session, nil
}

type fakeLocker struct {
	mu   sync.Mutex
	held map[string]bool
	err  error
}

func (l *fakeLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), bool, error) {
	if l.err != nil {
		return nil, false, l.err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held == nil {
		l.held = map[string]bool{}
	}
	if l.held[key] {
		return nil, false, nil
	}
	l.held[key] = true
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.held, key)
	}, true, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []Event
}

func (p *recordingPublisher) Publish(ctx context.Context, e Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) eventTypes() []EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]EventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}
