package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"venuehub/internal/auth"
	apperrors "venuehub/internal/errors"
	"venuehub/internal/external"
	"venuehub/internal/models"
)

var testNow = time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

// memBookings mimics the SQL compare-and-swap semantics of the booking repository.
type memBookings struct {
	mu   sync.Mutex
	byID map[string]*models.Booking
	seq  int
}

func newMemBookings() *memBookings {
	return &memBookings{byID: map[string]*models.Booking{}}
}

func (m *memBookings) settledLocked(clientID, venueID, exceptID string) bool {
	for _, b := range m.byID {
		if b.ID != exceptID && b.ClientID == clientID && b.VenueID == venueID && b.Settled() {
			return true
		}
	}
	return false
}

func (m *memBookings) Create(_ context.Context, booking *models.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.settledLocked(booking.ClientID, booking.VenueID, "") {
		return apperrors.Conflict("already booked")
	}

	m.seq++
	booking.ID = fmt.Sprintf("booking-%d", m.seq)
	booking.Version = 1
	booking.CreatedAt = testNow.Add(time.Duration(m.seq) * time.Second)
	booking.UpdatedAt = booking.CreatedAt

	stored := *booking
	m.byID[booking.ID] = &stored
	return nil
}

// put stores a booking as-is, for arranging test state.
func (m *memBookings) put(b models.Booking) *models.Booking {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[b.ID] = &b
	c := b
	return &c
}

func (m *memBookings) GetByID(_ context.Context, id string) (*models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.byID[id]
	if !ok {
		return nil, nil
	}
	c := *b
	return &c, nil
}

func (m *memBookings) GetByReference(_ context.Context, reference string) (*models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, b := range m.byID {
		if b.HasReference(reference) {
			c := *b
			return &c, nil
		}
	}
	return nil, nil
}

func (m *memBookings) list(match func(b *models.Booking) bool) []models.Booking {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := []models.Booking{}
	for _, b := range m.byID {
		if match(b) {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (m *memBookings) ListByClient(_ context.Context, clientID string, statuses []models.BookingStatus) ([]models.Booking, error) {
	return m.list(func(b *models.Booking) bool {
		if b.ClientID != clientID {
			return false
		}
		for _, s := range statuses {
			if b.Status == s {
				return true
			}
		}
		return false
	}), nil
}

func (m *memBookings) ListByOwner(_ context.Context, ownerID string) ([]models.Booking, error) {
	return m.list(func(b *models.Booking) bool { return b.OwnerID == ownerID }), nil
}

func (m *memBookings) update(id string, cond func(b *models.Booking) bool, apply func(b *models.Booking) error) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.byID[id]
	if !ok || !cond(b) {
		return false, nil
	}
	if err := apply(b); err != nil {
		return false, err
	}
	b.Version++
	return true, nil
}

func (m *memBookings) TransitionStatus(_ context.Context, id string, from, to models.BookingStatus) (bool, error) {
	return m.update(id,
		func(b *models.Booking) bool { return b.Status == from },
		func(b *models.Booking) error { b.Status = to; return nil })
}

func (m *memBookings) AttachPaymentReference(_ context.Context, id, reference string) (bool, error) {
	return m.update(id,
		func(b *models.Booking) bool {
			return b.Status == models.BookingStatusAccepted && b.PaymentStatus != models.PaymentStatusPaid
		},
		func(b *models.Booking) error {
			b.PaymentReference = &reference
			b.PaymentStatus = models.PaymentStatusPending
			return nil
		})
}

func (m *memBookings) MarkPaid(_ context.Context, id, reference string) (bool, error) {
	return m.update(id,
		func(b *models.Booking) bool {
			return b.Status == models.BookingStatusAccepted && b.PaymentStatus != models.PaymentStatusPaid
		},
		func(b *models.Booking) error {
			if m.settledLocked(b.ClientID, b.VenueID, b.ID) {
				return apperrors.Conflict("already booked")
			}
			paidAt := testNow
			b.PaymentStatus = models.PaymentStatusPaid
			b.PaymentReference = &reference
			b.PaidAt = &paidAt
			return nil
		})
}

func (m *memBookings) MarkPaymentFailed(_ context.Context, id, reference string) (bool, error) {
	return m.update(id,
		func(b *models.Booking) bool {
			return b.Status == models.BookingStatusAccepted && b.PaymentStatus == models.PaymentStatusPending &&
				(b.PaymentReference == nil || *b.PaymentReference == reference)
		},
		func(b *models.Booking) error {
			b.PaymentStatus = models.PaymentStatusFailed
			b.PaymentReference = &reference
			return nil
		})
}

func (m *memBookings) RefundCautionFee(_ context.Context, id string) (bool, error) {
	return m.update(id,
		func(b *models.Booking) bool { return b.Settled() && b.CautionFeeStatus == models.CautionFeePending },
		func(b *models.Booking) error { b.CautionFeeStatus = models.CautionFeeRefunded; return nil })
}

// memVenues is an in-memory venue store.
type memVenues struct {
	mu        sync.Mutex
	byID      map[string]*models.Venue
	seq       int
	searchErr error
}

func newMemVenues(venues ...models.Venue) *memVenues {
	m := &memVenues{byID: map[string]*models.Venue{}}
	for i := range venues {
		v := venues[i]
		m.byID[v.ID] = &v
	}
	return m
}

func (m *memVenues) Create(_ context.Context, venue *models.Venue) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	venue.ID = fmt.Sprintf("venue-new-%d", m.seq)
	venue.CreatedAt = testNow
	v := *venue
	m.byID[venue.ID] = &v
	return nil
}

func (m *memVenues) GetByID(_ context.Context, id string) (*models.Venue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.byID[id]
	if !ok {
		return nil, nil
	}
	c := *v
	return &c, nil
}

func (m *memVenues) Update(_ context.Context, venue *models.Venue) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v := *venue
	m.byID[venue.ID] = &v
	return nil
}

func (m *memVenues) SoftDelete(_ context.Context, id, ownerID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.byID[id]
	if !ok || v.OwnerID != ownerID {
		return false, nil
	}
	delete(m.byID, id)
	return true, nil
}

func (m *memVenues) UpdateStatus(_ context.Context, id string, status models.VenueStatus) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.byID[id]
	if !ok {
		return false, nil
	}
	v.Status = status
	return true, nil
}

func (m *memVenues) SetFeatured(_ context.Context, id string, until time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.byID[id]
	if !ok {
		return false, nil
	}
	v.Featured = true
	v.FeaturedUntil = &until
	return true, nil
}

func (m *memVenues) ListByOwner(_ context.Context, ownerID string) ([]models.Venue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Venue{}
	for _, v := range m.byID {
		if v.OwnerID == ownerID {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (m *memVenues) Search(_ context.Context, filter models.VenueFilter) ([]models.Venue, int64, error) {
	if m.searchErr != nil {
		return nil, 0, m.searchErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Venue{}
	for _, v := range m.byID {
		if v.Status != models.VenueStatusVerified {
			continue
		}
		if filter.Query != "" && !strings.Contains(strings.ToLower(v.Name), strings.ToLower(filter.Query)) {
			continue
		}
		out = append(out, *v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

// memIdentities is an in-memory identity store.
type memIdentities struct {
	mu      sync.Mutex
	byID    map[string]*models.Identity
	seq     int
	touched []string
}

func newMemIdentities(identities ...models.Identity) *memIdentities {
	m := &memIdentities{byID: map[string]*models.Identity{}}
	for i := range identities {
		id := identities[i]
		m.byID[id.ID] = &id
	}
	return m
}

func (m *memIdentities) Create(_ context.Context, identity *models.Identity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.byID {
		if existing.Email == identity.Email {
			return apperrors.Conflict("email taken")
		}
	}
	m.seq++
	identity.ID = fmt.Sprintf("identity-%d", m.seq)
	c := *identity
	m.byID[identity.ID] = &c
	return nil
}

func (m *memIdentities) GetByID(_ context.Context, id string) (*models.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	identity, ok := m.byID[id]
	if !ok {
		return nil, nil
	}
	c := *identity
	return &c, nil
}

func (m *memIdentities) GetByEmail(_ context.Context, email string) (*models.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, identity := range m.byID {
		if identity.Email == email {
			c := *identity
			return &c, nil
		}
	}
	return nil, nil
}

func (m *memIdentities) MarkVerified(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if identity, ok := m.byID[id]; ok {
		identity.IsVerified = true
	}
	return nil
}

func (m *memIdentities) TouchLogin(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.touched = append(m.touched, id)
	return nil
}

type publishedEvent struct {
	Subject string
	Event   interface{}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *recordingPublisher) Publish(_ context.Context, subject string, event interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{Subject: subject, Event: event})
	return nil
}

func (p *recordingPublisher) subjects() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Subject
	}
	return out
}

func (p *recordingPublisher) count(subject string) int {
	n := 0
	for _, s := range p.subjects() {
		if s == subject {
			n++
		}
	}
	return n
}

type fakeRecomputer struct {
	mu    sync.Mutex
	calls map[string]int
	err   error
}

func (f *fakeRecomputer) Recompute(_ context.Context, ownerID string) (*models.DashboardSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[ownerID]++
	if f.err != nil {
		return nil, f.err
	}
	return &models.DashboardSummary{OwnerID: ownerID}, nil
}

func (f *fakeRecomputer) count(ownerID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[ownerID]
}

type fakeGateway struct {
	InitializeChargeFunc  func(ctx context.Context, req external.ChargeRequest) (*external.ChargeResponse, error)
	VerifyTransactionFunc func(ctx context.Context, reference string) (*external.Transaction, error)
}

func (g *fakeGateway) InitializeCharge(ctx context.Context, req external.ChargeRequest) (*external.ChargeResponse, error) {
	if g.InitializeChargeFunc == nil {
		return &external.ChargeResponse{CheckoutURL: "https://checkout.test/" + req.Reference, Reference: req.Reference}, nil
	}
	return g.InitializeChargeFunc(ctx, req)
}

func (g *fakeGateway) VerifyTransaction(ctx context.Context, reference string) (*external.Transaction, error) {
	return g.VerifyTransactionFunc(ctx, reference)
}

type fakeIndex struct {
	SearchFunc func(ctx context.Context, filter models.VenueFilter) ([]models.Venue, int64, error)
	indexed    []string
	deleted    []string
}

func (f *fakeIndex) IndexVenue(_ context.Context, venue *models.Venue) error {
	f.indexed = append(f.indexed, venue.ID)
	return nil
}

func (f *fakeIndex) DeleteVenue(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeIndex) Search(ctx context.Context, filter models.VenueFilter) ([]models.Venue, int64, error) {
	return f.SearchFunc(ctx, filter)
}

type memDashboards struct {
	mu        sync.Mutex
	stats     map[string]*models.DashboardStats
	summaries map[string]*models.DashboardSummary
	statsErr  map[string]error
	months    []time.Time
}

func newMemDashboards() *memDashboards {
	return &memDashboards{
		stats:     map[string]*models.DashboardStats{},
		summaries: map[string]*models.DashboardSummary{},
		statsErr:  map[string]error{},
	}
}

func (m *memDashboards) Stats(_ context.Context, ownerID string, monthStart time.Time) (*models.DashboardStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.months = append(m.months, monthStart)
	if err := m.statsErr[ownerID]; err != nil {
		return nil, err
	}
	if st, ok := m.stats[ownerID]; ok {
		c := *st
		return &c, nil
	}
	return &models.DashboardStats{}, nil
}

func (m *memDashboards) Provision(_ context.Context, ownerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.summaries[ownerID]; !ok {
		m.summaries[ownerID] = &models.DashboardSummary{OwnerID: ownerID}
	}
	return nil
}

func (m *memDashboards) Upsert(_ context.Context, summary *models.DashboardSummary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	summary.UpdatedAt = testNow
	c := *summary
	m.summaries[summary.OwnerID] = &c
	return nil
}

func (m *memDashboards) Get(_ context.Context, ownerID string) (*models.DashboardSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.summaries[ownerID]
	if !ok {
		return nil, nil
	}
	c := *s
	return &c, nil
}

func (m *memDashboards) ListOwnerIDs(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := []string{}
	for id := range m.stats {
		ids = append(ids, id)
	}
	for id := range m.statsErr {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

type memOTPs struct {
	codes map[string]string
}

func (m *memOTPs) StoreOTP(_ context.Context, email, code string, _ time.Duration) error {
	if m.codes == nil {
		m.codes = map[string]string{}
	}
	m.codes[email] = code
	return nil
}

func (m *memOTPs) ConsumeOTP(_ context.Context, email, code string) (bool, error) {
	if m.codes[email] != code || code == "" {
		return false, nil
	}
	delete(m.codes, email)
	return true, nil
}

type fakeRevoker struct {
	revoked map[string]time.Duration
}

func (f *fakeRevoker) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	if f.revoked == nil {
		f.revoked = map[string]time.Duration{}
	}
	f.revoked[tokenID] = ttl
	return nil
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []external.Email
	err  error
}

func (m *recordingMailer) Send(_ context.Context, msg external.Email) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

var _ TokenIssuer = (*auth.TokenManager)(nil)
