// Package catalog is the in-memory marketplace data plane the gateway
// dispatches into: walkers, the service catalog, bookings, and reviews. The
// admission pipeline treats it as an opaque set of resource handlers.
package catalog

import (
	"sort"
	"strings"
	"sync"

	"github.com/Hamidon94/ultra.dogwalking-sub000/internal/clock"
	"github.com/Hamidon94/ultra.dogwalking-sub000/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Store holds the marketplace data set. Walkers and services are read-only
// after seeding; bookings and reviews are created through the public API.
type Store struct {
	mu       sync.RWMutex
	walkers  []models.Walker
	services []models.WalkService
	bookings map[uuid.UUID]models.Booking
	reviews  []models.Review
	clock    clock.Clock
}

// NewStore creates a catalog store around the given data set.
func NewStore(clk clock.Clock, walkers []models.Walker, services []models.WalkService, reviews []models.Review) *Store {
	return &Store{
		walkers:  walkers,
		services: services,
		bookings: make(map[uuid.UUID]models.Booking),
		reviews:  reviews,
		clock:    clk,
	}
}

// NewSeededStore creates a store loaded with the sample data set.
func NewSeededStore(clk clock.Clock) *Store {
	return NewStore(clk, seedWalkers(), seedServices(), seedReviews())
}

// WalkerFilter narrows a walker listing.
type WalkerFilter struct {
	City      string
	MinRating float64
	MaxPrice  *decimal.Decimal
	Service   string
}

// ListWalkers returns the filtered page and the total count of the filtered
// set. The total is computed before paging so it stays stable across pages.
func (s *Store) ListWalkers(filter WalkerFilter, limit, offset int) ([]models.Walker, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []models.Walker
	for _, w := range s.walkers {
		if filter.City != "" && !strings.EqualFold(w.City, filter.City) {
			continue
		}
		if filter.MinRating > 0 && w.Rating < filter.MinRating {
			continue
		}
		if filter.MaxPrice != nil && w.PricePerWalk.GreaterThan(*filter.MaxPrice) {
			continue
		}
		if filter.Service != "" && !containsFold(w.Services, filter.Service) {
			continue
		}
		matched = append(matched, w)
	}

	return page(matched, limit, offset), len(matched)
}

// GetWalker returns a walker by id.
func (s *Store) GetWalker(id string) (models.Walker, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, w := range s.walkers {
		if w.ID == id {
			return w, true
		}
	}
	return models.Walker{}, false
}

// WalkerAvailability returns the walker's open slots for a date. Slots
// already taken by a non-cancelled booking are excluded.
func (s *Store) WalkerAvailability(id, date string) ([]string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var walker *models.Walker
	for i := range s.walkers {
		if s.walkers[i].ID == id {
			walker = &s.walkers[i]
			break
		}
	}
	if walker == nil {
		return nil, false
	}

	taken := make(map[string]bool)
	for _, b := range s.bookings {
		if b.WalkerID == id && b.Date == date && b.Status != models.BookingStatusCancelled {
			taken[b.TimeSlot] = true
		}
	}

	var open []string
	for _, slot := range walker.Availability {
		if !taken[slot] {
			open = append(open, slot)
		}
	}
	return open, true
}

// ServiceFilter narrows a service listing.
type ServiceFilter struct {
	Category string
}

// ListServices returns the filtered page and the total of the filtered set.
func (s *Store) ListServices(filter ServiceFilter, limit, offset int) ([]models.WalkService, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []models.WalkService
	for _, svc := range s.services {
		if filter.Category != "" && !strings.EqualFold(svc.Category, filter.Category) {
			continue
		}
		matched = append(matched, svc)
	}

	return page(matched, limit, offset), len(matched)
}

// GetService returns a catalog service by id.
func (s *Store) GetService(id string) (models.WalkService, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, svc := range s.services {
		if svc.ID == id {
			return svc, true
		}
	}
	return models.WalkService{}, false
}

// BookingRequest carries the fields of a booking to be placed.
type BookingRequest struct {
	WalkerID     string
	ServiceID    string
	Date         string
	TimeSlot     string
	Notes        string
	ContactName  string
	ContactEmail string
}

// Booking creation errors, mapped to domain 404 codes by the handlers.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return e.Resource + " " + e.ID + " not found"
}

// CreateBooking places a booking after checking the walker and service exist.
func (s *Store) CreateBooking(req BookingRequest) (models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.walkerExistsLocked(req.WalkerID) {
		return models.Booking{}, &NotFoundError{Resource: "walker", ID: req.WalkerID}
	}
	if !s.serviceExistsLocked(req.ServiceID) {
		return models.Booking{}, &NotFoundError{Resource: "service", ID: req.ServiceID}
	}

	booking := models.Booking{
		ID:           uuid.New(),
		WalkerID:     req.WalkerID,
		ServiceID:    req.ServiceID,
		Date:         req.Date,
		TimeSlot:     req.TimeSlot,
		Status:       models.BookingStatusPending,
		Notes:        req.Notes,
		ContactName:  req.ContactName,
		ContactEmail: req.ContactEmail,
		CreatedAt:    s.clock.Now(),
	}
	s.bookings[booking.ID] = booking
	return booking, nil
}

// GetBooking returns a booking by id.
func (s *Store) GetBooking(id uuid.UUID) (models.Booking, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.bookings[id]
	return b, ok
}

// CancelBooking flips a booking to cancelled. Idempotent.
func (s *Store) CancelBooking(id uuid.UUID) (models.Booking, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[id]
	if !ok {
		return models.Booking{}, false
	}
	b.Status = models.BookingStatusCancelled
	s.bookings[id] = b
	return b, true
}

// ReviewFilter narrows a review listing.
type ReviewFilter struct {
	WalkerID  string
	MinRating int
}

// ListReviews returns the filtered page, newest first, and the filtered total.
func (s *Store) ListReviews(filter ReviewFilter, limit, offset int) ([]models.Review, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []models.Review
	for _, r := range s.reviews {
		if filter.WalkerID != "" && r.WalkerID != filter.WalkerID {
			continue
		}
		if filter.MinRating > 0 && r.Rating < filter.MinRating {
			continue
		}
		matched = append(matched, r)
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	return page(matched, limit, offset), len(matched)
}

// CreateReview publishes a review for an existing walker.
func (s *Store) CreateReview(walkerID string, rating int, comment, author string) (models.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.walkerExistsLocked(walkerID) {
		return models.Review{}, &NotFoundError{Resource: "walker", ID: walkerID}
	}

	review := models.Review{
		ID:        uuid.New(),
		WalkerID:  walkerID,
		Rating:    rating,
		Comment:   comment,
		Author:    author,
		CreatedAt: s.clock.Now(),
	}
	s.reviews = append(s.reviews, review)
	return review, nil
}

func (s *Store) walkerExistsLocked(id string) bool {
	for _, w := range s.walkers {
		if w.ID == id {
			return true
		}
	}
	return false
}

func (s *Store) serviceExistsLocked(id string) bool {
	for _, svc := range s.services {
		if svc.ID == id {
			return true
		}
	}
	return false
}

func containsFold(list []string, want string) bool {
	for _, s := range list {
		if strings.EqualFold(s, want) {
			return true
		}
	}
	return false
}

// page applies limit/offset to an already filtered slice.
func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
