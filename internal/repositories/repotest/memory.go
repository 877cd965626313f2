// Package repotest provides in-memory repositories for unit tests. They
// mirror the Postgres repositories closely enough for service and controller
// tests: joins are materialised on read and stored rows are copied so callers
// cannot mutate them behind the store's back.
package repotest

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/samedayramps/app.samedayramps.com/internal/models"
	"github.com/samedayramps/app.samedayramps.com/internal/repositories"
	"github.com/samedayramps/app.samedayramps.com/internal/utils"
)

// Store holds every table. The repository views below share it.
type Store struct {
	mu sync.Mutex

	Customers  map[uuid.UUID]models.Customer
	Addresses  map[uuid.UUID]models.Address
	Quotes     map[uuid.UUID]models.Quote
	Agreements map[uuid.UUID]models.Agreement
	Rentals    map[uuid.UUID]models.Rental
	Payments   map[uuid.UUID]models.Payment
	Settings   map[string]json.RawMessage
	Events     []models.Event

	// Err, when set, is returned by every call.
	Err error
	// FailSettingKey makes a settings batch containing that key fail as a
	// whole, the way a rolled-back transaction would.
	FailSettingKey string
}

func NewStore() *Store {
	return &Store{
		Customers:  map[uuid.UUID]models.Customer{},
		Addresses:  map[uuid.UUID]models.Address{},
		Quotes:     map[uuid.UUID]models.Quote{},
		Agreements: map[uuid.UUID]models.Agreement{},
		Rentals:    map[uuid.UUID]models.Rental{},
		Payments:   map[uuid.UUID]models.Payment{},
		Settings:   map[string]json.RawMessage{},
	}
}

func (s *Store) CustomerRepo() repositories.CustomerRepository   { return customerRepo{s} }
func (s *Store) AddressRepo() repositories.AddressRepository     { return addressRepo{s} }
func (s *Store) QuoteRepo() repositories.QuoteRepository         { return quoteRepo{s} }
func (s *Store) AgreementRepo() repositories.AgreementRepository { return agreementRepo{s} }
func (s *Store) RentalRepo() repositories.RentalRepository       { return rentalRepo{s} }
func (s *Store) PaymentRepo() repositories.PaymentRepository     { return paymentRepo{s} }
func (s *Store) SettingsRepo() repositories.SettingsRepository   { return settingsRepo{s} }
func (s *Store) EventRepo() repositories.EventRepository         { return eventRepo{s} }

// EventsOfType returns recorded audit events of one type, oldest first.
func (s *Store) EventsOfType(t models.EventType) []models.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Event
	for _, e := range s.Events {
		if e.EventType == t {
			out = append(out, e)
		}
	}
	return out
}

func (s *Store) emailTaken(email string, except uuid.UUID) bool {
	for id, c := range s.Customers {
		if id != except && strings.EqualFold(c.Email, email) {
			return true
		}
	}
	return false
}

func copyFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func copyQuote(q models.Quote) *models.Quote {
	q.RampHeight = copyFloat(q.RampHeight)
	q.MonthlyRate = copyFloat(q.MonthlyRate)
	q.InstallationFee = copyFloat(q.InstallationFee)
	q.Customer, q.ServiceAddress, q.Agreement = nil, nil, nil
	return &q
}

func (s *Store) joinQuote(q models.Quote) *models.Quote {
	out := copyQuote(q)
	if c, ok := s.Customers[q.CustomerID]; ok {
		c.Addresses, c.Rentals = nil, nil
		out.Customer = &c
	}
	if a, ok := s.Addresses[q.ServiceAddressID]; ok {
		out.ServiceAddress = &a
	}
	return out
}

/* ---------- customers ---------- */

type customerRepo struct{ s *Store }

func (r customerRepo) Create(ctx context.Context, c *models.Customer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	if r.s.emailTaken(c.Email, c.ID) {
		return utils.ErrEmailExists
	}
	r.s.Customers[c.ID] = *c
	return nil
}

func (r customerRepo) CreateWithAddress(ctx context.Context, c *models.Customer, a *models.Address) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	if r.s.emailTaken(c.Email, c.ID) {
		return utils.ErrEmailExists
	}
	a.CustomerID = c.ID
	r.s.Customers[c.ID] = *c
	r.s.Addresses[a.ID] = *a
	return nil
}

func (r customerRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	c, ok := r.s.Customers[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r customerRepo) GetByEmail(ctx context.Context, email string) (*models.Customer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	for _, c := range r.s.Customers {
		if c.Email == email {
			c := c
			return &c, nil
		}
	}
	return nil, nil
}

func (r customerRepo) List(ctx context.Context, f repositories.CustomerFilter) ([]*models.Customer, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, 0, r.s.Err
	}
	term := strings.ToLower(strings.TrimSpace(f.Search))
	var out []*models.Customer
	for _, c := range r.s.Customers {
		if term != "" && !r.customerMatches(c, term) {
			continue
		}
		c := c
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, f.Limit, f.Offset), int64(len(out)), nil
}

func (r customerRepo) customerMatches(c models.Customer, term string) bool {
	for _, v := range []string{c.Name, c.Email, c.Phone} {
		if strings.Contains(strings.ToLower(v), term) {
			return true
		}
	}
	for _, a := range r.s.Addresses {
		if a.CustomerID == c.ID && strings.Contains(strings.ToLower(a.Street), term) {
			return true
		}
	}
	return false
}

func (r customerRepo) Update(ctx context.Context, c *models.Customer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	existing, ok := r.s.Customers[c.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	if r.s.emailTaken(c.Email, c.ID) {
		return utils.ErrEmailExists
	}
	existing.Name, existing.Email, existing.Phone, existing.Notes = c.Name, c.Email, c.Phone, c.Notes
	existing.UpdatedAt = time.Now()
	r.s.Customers[c.ID] = existing
	c.UpdatedAt = existing.UpdatedAt
	return nil
}

/* ---------- addresses ---------- */

type addressRepo struct{ s *Store }

func (r addressRepo) Create(ctx context.Context, a *models.Address) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	r.s.Addresses[a.ID] = *a
	return nil
}

func (r addressRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Address, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	a, ok := r.s.Addresses[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (r addressRepo) ListByCustomerIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID][]*models.Address, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	want := idSet(ids)
	out := map[uuid.UUID][]*models.Address{}
	for _, a := range r.s.Addresses {
		if want[a.CustomerID] {
			a := a
			out[a.CustomerID] = append(out[a.CustomerID], &a)
		}
	}
	for _, list := range out {
		sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.Before(list[j].CreatedAt) })
	}
	return out, nil
}

/* ---------- quotes ---------- */

type quoteRepo struct{ s *Store }

func (r quoteRepo) CreateIntakeAtomic(ctx context.Context, in *repositories.QuoteIntake) (*repositories.IntakeResult, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	if !in.Quote.PricingConsistent() {
		return nil, utils.ErrPricingIncomplete
	}

	var (
		customer *models.Customer
		created  bool
	)
	for _, c := range r.s.Customers {
		if strings.EqualFold(c.Email, in.Customer.Email) {
			c := c
			customer = &c
			break
		}
		if customer == nil && c.Phone == in.Customer.Phone {
			c := c
			customer = &c
		}
	}
	if customer == nil {
		c := *in.Customer
		r.s.Customers[c.ID] = c
		customer = &c
		created = true
	}

	in.Address.CustomerID = customer.ID
	r.s.Addresses[in.Address.ID] = *in.Address

	q := in.Quote
	q.CustomerID = customer.ID
	q.ServiceAddressID = in.Address.ID
	if q.RowVersion == 0 {
		q.RowVersion = 1
	}
	r.s.Quotes[q.ID] = *copyQuote(*q)
	q.Customer = customer
	q.ServiceAddress = in.Address
	return &repositories.IntakeResult{Quote: q, CustomerCreated: created}, nil
}

func (r quoteRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Quote, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	q, ok := r.s.Quotes[id]
	if !ok {
		return nil, nil
	}
	return r.s.joinQuote(q), nil
}

func (r quoteRepo) List(ctx context.Context, f repositories.QuoteFilter) ([]*models.Quote, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, 0, r.s.Err
	}
	term := strings.ToLower(strings.TrimSpace(f.Search))
	var out []*models.Quote
	for _, stored := range r.s.Quotes {
		q := r.s.joinQuote(stored)
		if f.Status != "" && q.Status != f.Status {
			continue
		}
		if f.Timeline != "" && q.TimelineNeeded != f.Timeline {
			continue
		}
		if f.CustomerID != nil && q.CustomerID != *f.CustomerID {
			continue
		}
		if f.Email != "" && (q.Customer == nil || !strings.EqualFold(q.Customer.Email, f.Email)) {
			continue
		}
		if term != "" && !quoteMatches(q, term) {
			continue
		}
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, f.Limit, f.Offset), int64(len(out)), nil
}

func quoteMatches(q *models.Quote, term string) bool {
	fields := []string{q.ID.String()}
	if q.Customer != nil {
		fields = append(fields, q.Customer.Name, q.Customer.Email)
	}
	if q.ServiceAddress != nil {
		fields = append(fields, q.ServiceAddress.Street)
	}
	for _, v := range fields {
		if strings.Contains(strings.ToLower(v), term) {
			return true
		}
	}
	return false
}

func (r quoteRepo) Stats(ctx context.Context) (*repositories.QuoteStats, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	var st repositories.QuoteStats
	for _, q := range r.s.Quotes {
		st.Total++
		switch q.Status {
		case models.QuoteStatusNeedsAssessment:
			st.NeedsAssessment++
		case models.QuoteStatusPending:
			st.Pending++
		case models.QuoteStatusSent:
			st.Sent++
		case models.QuoteStatusAccepted:
			st.Accepted++
		case models.QuoteStatusDeclined:
			st.Declined++
		case models.QuoteStatusExpired:
			st.Expired++
		}
		if q.MonthlyRate != nil {
			st.TotalValue += *q.MonthlyRate
			st.PricedCount++
		}
	}
	return &st, nil
}

func (r quoteRepo) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate repositories.QuoteMutation) (*repositories.QuoteUpdateResult, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	stored, ok := r.s.Quotes[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}

	working := copyQuote(stored)
	agreement, err := mutate(working)
	if err != nil {
		return nil, err
	}
	if !working.PricingConsistent() {
		return nil, utils.ErrPricingIncomplete
	}
	working.RowVersion = stored.RowVersion + 1
	r.s.Quotes[id] = *copyQuote(*working)

	res := &repositories.QuoteUpdateResult{}
	if agreement != nil && !r.s.hasAgreement(id) {
		r.s.Agreements[agreement.ID] = *agreement
		res.AgreementCreated = agreement
	}
	res.Quote = r.s.joinQuote(r.s.Quotes[id])
	return res, nil
}

func (s *Store) hasAgreement(quoteID uuid.UUID) bool {
	for _, a := range s.Agreements {
		if a.QuoteID == quoteID {
			return true
		}
	}
	return false
}

func (r quoteRepo) DeleteIfNoAgreement(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	if _, ok := r.s.Quotes[id]; !ok {
		return pgx.ErrNoRows
	}
	if r.s.hasAgreement(id) {
		return utils.ErrQuoteHasAgreement
	}
	delete(r.s.Quotes, id)
	return nil
}

func (r quoteRepo) ExpireOverdue(ctx context.Context, now time.Time) ([]uuid.UUID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	var ids []uuid.UUID
	for id, q := range r.s.Quotes {
		if (q.Status == models.QuoteStatusPending || q.Status == models.QuoteStatusSent) && q.ExpiresAt.Before(now) {
			q.Status = models.QuoteStatusExpired
			q.UpdatedAt = now
			q.RowVersion++
			r.s.Quotes[id] = q
			ids = append(ids, id)
		}
	}
	return ids, nil
}

/* ---------- agreements, rentals, payments ---------- */

type agreementRepo struct{ s *Store }

func (r agreementRepo) GetByQuoteID(ctx context.Context, quoteID uuid.UUID) (*models.Agreement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	for _, a := range r.s.Agreements {
		if a.QuoteID == quoteID {
			a := a
			return &a, nil
		}
	}
	return nil, nil
}

func (r agreementRepo) MarkSigned(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	a, ok := r.s.Agreements[id]
	if !ok {
		return pgx.ErrNoRows
	}
	now := time.Now()
	a.Status = models.AgreementStatusSigned
	a.SignedAt = &now
	a.UpdatedAt = now
	r.s.Agreements[id] = a
	return nil
}

type rentalRepo struct{ s *Store }

func (r rentalRepo) Create(ctx context.Context, rt *models.Rental) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	r.s.Rentals[rt.ID] = *rt
	return nil
}

func (r rentalRepo) GetByAgreementID(ctx context.Context, agreementID uuid.UUID) (*models.Rental, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	for _, rt := range r.s.Rentals {
		if rt.AgreementID == agreementID {
			rt := rt
			return &rt, nil
		}
	}
	return nil, nil
}

func (r rentalRepo) ListByCustomerIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID][]*models.Rental, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	want := idSet(ids)
	out := map[uuid.UUID][]*models.Rental{}
	for _, rt := range r.s.Rentals {
		if want[rt.CustomerID] {
			rt := rt
			out[rt.CustomerID] = append(out[rt.CustomerID], &rt)
		}
	}
	return out, nil
}

type paymentRepo struct{ s *Store }

func (r paymentRepo) Create(ctx context.Context, p *models.Payment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	r.s.Payments[p.ID] = *p
	return nil
}

func (r paymentRepo) ListByRentalIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID][]*models.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	want := idSet(ids)
	out := map[uuid.UUID][]*models.Payment{}
	for _, p := range r.s.Payments {
		if want[p.RentalID] {
			p := p
			out[p.RentalID] = append(out[p.RentalID], &p)
		}
	}
	for _, list := range out {
		sort.Slice(list, func(i, j int) bool { return list[i].DueDate.Before(list[j].DueDate) })
	}
	return out, nil
}

/* ---------- settings, events ---------- */

type settingsRepo struct{ s *Store }

func (r settingsRepo) GetAll(ctx context.Context) (map[string]json.RawMessage, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	out := make(map[string]json.RawMessage, len(r.s.Settings))
	for k, v := range r.s.Settings {
		out[k] = append(json.RawMessage(nil), v...)
	}
	return out, nil
}

func (r settingsRepo) UpsertMany(ctx context.Context, values map[string]json.RawMessage) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	if _, ok := values[r.s.FailSettingKey]; ok && r.s.FailSettingKey != "" {
		return fmt.Errorf("upsert setting %s: injected failure", r.s.FailSettingKey)
	}
	for key, value := range values {
		r.s.Settings[key] = append(json.RawMessage(nil), value...)
	}
	return nil
}

func (r settingsRepo) InsertIfMissing(ctx context.Context, key string, value json.RawMessage) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	if _, ok := r.s.Settings[key]; !ok {
		r.s.Settings[key] = append(json.RawMessage(nil), value...)
	}
	return nil
}

type eventRepo struct{ s *Store }

func (r eventRepo) Create(ctx context.Context, e *models.Event) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	r.s.Events = append(r.s.Events, *e)
	return nil
}

/* ---------- helpers ---------- */

func idSet(ids []uuid.UUID) map[uuid.UUID]bool {
	out := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
