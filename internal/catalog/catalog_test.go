package catalog

import (
	"testing"
	"time"

	"github.com/Hamidon94/ultra.dogwalking-sub000/internal/clock"
	"github.com/Hamidon94/ultra.dogwalking-sub000/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func seededStore(t *testing.T) *Store {
	t.Helper()
	clk := clock.NewFake(time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC))
	return NewSeededStore(clk)
}

func TestListWalkersByCity(t *testing.T) {
	s := seededStore(t)

	walkers, total := s.ListWalkers(WalkerFilter{City: "Paris"}, 20, 0)
	require.Equal(t, 1, total)
	require.Len(t, walkers, 1)
	assert.Equal(t, "Amélie Rousseau", walkers[0].Name)

	// City matching is case-insensitive.
	walkers, total = s.ListWalkers(WalkerFilter{City: "paris"}, 20, 0)
	assert.Equal(t, 1, total)
	require.Len(t, walkers, 1)
}

func TestListWalkersByRatingAndPrice(t *testing.T) {
	s := seededStore(t)

	_, total := s.ListWalkers(WalkerFilter{MinRating: 4.8}, 20, 0)
	assert.Equal(t, 2, total, "Amélie 4.9 and Sofía 4.8")

	maxPrice := decimal.NewFromFloat(13.00)
	walkers, total := s.ListWalkers(WalkerFilter{MaxPrice: &maxPrice}, 20, 0)
	assert.Equal(t, 2, total, "Marco 12.50 and Inês 13.00")
	for _, w := range walkers {
		assert.True(t, w.PricePerWalk.LessThanOrEqual(maxPrice))
	}
}

func TestListWalkersByService(t *testing.T) {
	s := seededStore(t)

	walkers, total := s.ListWalkers(WalkerFilter{Service: "group-walk"}, 20, 0)
	assert.Equal(t, 2, total)
	for _, w := range walkers {
		assert.Contains(t, w.Services, "group-walk")
	}
}

func TestListWalkersTotalIsPrePaging(t *testing.T) {
	s := seededStore(t)

	pageOne, total := s.ListWalkers(WalkerFilter{}, 2, 0)
	assert.Equal(t, 5, total)
	assert.Len(t, pageOne, 2)

	pageThree, total := s.ListWalkers(WalkerFilter{}, 2, 4)
	assert.Equal(t, 5, total, "total must not change with the page")
	assert.Len(t, pageThree, 1)

	past, total := s.ListWalkers(WalkerFilter{}, 2, 10)
	assert.Equal(t, 5, total)
	assert.Empty(t, past, "offset past the end yields an empty page, not an error")
}

func TestWalkerAvailabilityExcludesBookedSlots(t *testing.T) {
	s := seededStore(t)

	open, ok := s.WalkerAvailability("wlk_amelie", "2025-06-05")
	require.True(t, ok)
	assert.Equal(t, []string{"morning", "afternoon"}, open)

	booking, err := s.CreateBooking(BookingRequest{
		WalkerID:  "wlk_amelie",
		ServiceID: "svc_solo_30",
		Date:      "2025-06-05",
		TimeSlot:  "morning",
	})
	require.NoError(t, err)

	open, ok = s.WalkerAvailability("wlk_amelie", "2025-06-05")
	require.True(t, ok)
	assert.Equal(t, []string{"afternoon"}, open)

	// Other dates are untouched.
	open, _ = s.WalkerAvailability("wlk_amelie", "2025-06-06")
	assert.Equal(t, []string{"morning", "afternoon"}, open)

	// Cancelling frees the slot again.
	_, ok = s.CancelBooking(booking.ID)
	require.True(t, ok)
	open, _ = s.WalkerAvailability("wlk_amelie", "2025-06-05")
	assert.Equal(t, []string{"morning", "afternoon"}, open)
}

func TestWalkerAvailabilityUnknownWalker(t *testing.T) {
	s := seededStore(t)

	_, ok := s.WalkerAvailability("wlk_ghost", "2025-06-05")
	assert.False(t, ok)
}

func TestListServicesByCategory(t *testing.T) {
	s := seededStore(t)

	services, total := s.ListServices(ServiceFilter{Category: "walk"}, 20, 0)
	assert.Equal(t, 3, total)
	for _, svc := range services {
		assert.Equal(t, "walk", svc.Category)
	}

	_, total = s.ListServices(ServiceFilter{}, 20, 0)
	assert.Equal(t, 5, total)
}

func TestBookingLifecycle(t *testing.T) {
	s := seededStore(t)

	booking, err := s.CreateBooking(BookingRequest{
		WalkerID:     "wlk_jonas",
		ServiceID:    "svc_solo_60",
		Date:         "2025-06-10",
		TimeSlot:     "evening",
		ContactName:  "Annika",
		ContactEmail: "annika@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusPending, booking.Status)
	assert.Equal(t, time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC), booking.CreatedAt)

	got, ok := s.GetBooking(booking.ID)
	require.True(t, ok)
	assert.Equal(t, booking.ID, got.ID)

	cancelled, ok := s.CancelBooking(booking.ID)
	require.True(t, ok)
	assert.Equal(t, models.BookingStatusCancelled, cancelled.Status)

	// Cancelling again is a no-op, not an error.
	again, ok := s.CancelBooking(booking.ID)
	require.True(t, ok)
	assert.Equal(t, models.BookingStatusCancelled, again.Status)
}

func TestCreateBookingUnknownReferences(t *testing.T) {
	s := seededStore(t)

	_, err := s.CreateBooking(BookingRequest{WalkerID: "wlk_ghost", ServiceID: "svc_solo_30"})
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "walker", nf.Resource)

	_, err = s.CreateBooking(BookingRequest{WalkerID: "wlk_amelie", ServiceID: "svc_ghost"})
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "service", nf.Resource)
}

func TestListReviewsNewestFirst(t *testing.T) {
	s := seededStore(t)

	reviews, total := s.ListReviews(ReviewFilter{}, 20, 0)
	require.Equal(t, 4, total)
	for i := 1; i < len(reviews); i++ {
		assert.False(t, reviews[i].CreatedAt.After(reviews[i-1].CreatedAt), "reviews must be newest first")
	}

	reviews, total = s.ListReviews(ReviewFilter{WalkerID: "wlk_amelie"}, 20, 0)
	assert.Equal(t, 2, total)
	for _, r := range reviews {
		assert.Equal(t, "wlk_amelie", r.WalkerID)
	}

	_, total = s.ListReviews(ReviewFilter{MinRating: 5}, 20, 0)
	assert.Equal(t, 2, total)
}

func TestCreateReview(t *testing.T) {
	s := seededStore(t)

	review, err := s.CreateReview("wlk_marco", 5, "Great group walk.", "paolo_v")
	require.NoError(t, err)
	assert.Equal(t, "wlk_marco", review.WalkerID)

	reviews, total := s.ListReviews(ReviewFilter{WalkerID: "wlk_marco"}, 20, 0)
	assert.Equal(t, 1, total)
	require.Len(t, reviews, 1)
	assert.Equal(t, review.ID, reviews[0].ID)

	_, err = s.CreateReview("wlk_ghost", 3, "", "nobody")
	var nf *NotFoundError
	assert.ErrorAs(t, err, &nf)
}

// Property: for any limit/offset, a page is a contiguous slice of the
// filtered set, the total never varies with paging, and walking the pages
// reconstructs the whole set exactly once.
func TestPaginationProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := NewSeededStore(clock.NewFake(time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)))
		limit := rapid.IntRange(1, 7).Draw(t, "limit")

		_, total := s.ListWalkers(WalkerFilter{}, limit, 0)

		var seen []string
		for offset := 0; offset < total; offset += limit {
			pageItems, pageTotal := s.ListWalkers(WalkerFilter{}, limit, offset)
			if pageTotal != total {
				t.Fatalf("PROPERTY VIOLATION: total changed from %d to %d at offset %d", total, pageTotal, offset)
			}
			if len(pageItems) > limit {
				t.Fatalf("PROPERTY VIOLATION: page of %d items exceeds limit %d", len(pageItems), limit)
			}
			for _, w := range pageItems {
				seen = append(seen, w.ID)
			}
		}

		if len(seen) != total {
			t.Fatalf("PROPERTY VIOLATION: walked %d items, total says %d", len(seen), total)
		}
		unique := make(map[string]bool, len(seen))
		for _, id := range seen {
			if unique[id] {
				t.Fatalf("PROPERTY VIOLATION: walker %s appeared on two pages", id)
			}
			unique[id] = true
		}
	})
}
