package catalog

import (
	"github.com/Hamidon94/ultra.dogwalking-sub000/internal/models"
	"github.com/Hamidon94/ultra.dogwalking-sub000/internal/registry"
)

func f(v float64) *float64 { return &v }

var pagingParams = []models.Parameter{
	{Name: "limit", Type: models.ParamNumber, Min: f(1), Max: f(float64(maxLimit)),
		Description: "Page size, at most 100."},
	{Name: "offset", Type: models.ParamNumber, Min: f(0),
		Description: "Items to skip before the page starts."},
}

const datePattern = `^\d{4}-\d{2}-\d{2}$`

// RegisterRoutes adds every public data-plane endpoint to the registry.
// Called once at startup; duplicate routes are a bug and panic here.
func RegisterRoutes(r *registry.Registry, s *Store) {
	r.MustRegister(&registry.Endpoint{
		Path:     "/walkers",
		Method:   "GET",
		Category: "walkers",
		Summary:  "Search walkers by city, rating, price, and offered service.",
		Parameters: append([]models.Parameter{
			{Name: "city", Type: models.ParamString, Description: "Filter by city, case-insensitive."},
			{Name: "minRating", Type: models.ParamNumber, Min: f(0), Max: f(5)},
			{Name: "maxPrice", Type: models.ParamNumber, Min: f(0)},
			{Name: "service", Type: models.ParamString},
		}, pagingParams...),
		Responses: []models.ResponseDoc{
			{Status: 200, Description: "Paginated walker list."},
		},
		AuthRequired: true,
		RateCeiling:  1000,
		Handler:      s.handleListWalkers,
	})

	r.MustRegister(&registry.Endpoint{
		Path:     "/walkers/{id}",
		Method:   "GET",
		Category: "walkers",
		Summary:  "Fetch one walker profile.",
		Responses: []models.ResponseDoc{
			{Status: 200, Description: "Walker profile."},
			{Status: 404, Description: "WALKER_NOT_FOUND"},
		},
		AuthRequired: true,
		RateCeiling:  1000,
		Handler:      s.handleGetWalker,
	})

	r.MustRegister(&registry.Endpoint{
		Path:     "/walkers/{id}/availability",
		Method:   "GET",
		Category: "walkers",
		Summary:  "Open time slots for a walker on a given date.",
		Parameters: []models.Parameter{
			{Name: "date", Type: models.ParamString, Required: true, Pattern: datePattern,
				Description: "Date in YYYY-MM-DD form."},
		},
		Responses: []models.ResponseDoc{
			{Status: 200, Description: "Open slots."},
			{Status: 404, Description: "WALKER_NOT_FOUND"},
		},
		AuthRequired: true,
		RateCeiling:  1000,
		Handler:      s.handleWalkerAvailability,
	})

	r.MustRegister(&registry.Endpoint{
		Path:     "/services",
		Method:   "GET",
		Category: "services",
		Summary:  "Browse the service catalog.",
		Parameters: append([]models.Parameter{
			{Name: "category", Type: models.ParamString,
				Enum: []string{"walk", "visit", "sitting"}},
		}, pagingParams...),
		Responses: []models.ResponseDoc{
			{Status: 200, Description: "Paginated service list."},
		},
		AuthRequired: true,
		RateCeiling:  2000,
		Handler:      s.handleListServices,
	})

	r.MustRegister(&registry.Endpoint{
		Path:     "/services/{id}",
		Method:   "GET",
		Category: "services",
		Summary:  "Fetch one catalog service.",
		Responses: []models.ResponseDoc{
			{Status: 200, Description: "Service."},
			{Status: 404, Description: "SERVICE_NOT_FOUND"},
		},
		AuthRequired: true,
		RateCeiling:  2000,
		Handler:      s.handleGetService,
	})

	r.MustRegister(&registry.Endpoint{
		Path:     "/bookings",
		Method:   "POST",
		Category: "bookings",
		Summary:  "Place a booking for a walker and service.",
		Parameters: []models.Parameter{
			{Name: "walkerId", Type: models.ParamString, Required: true},
			{Name: "serviceId", Type: models.ParamString, Required: true},
			{Name: "date", Type: models.ParamString, Required: true, Pattern: datePattern},
			{Name: "timeSlot", Type: models.ParamString, Required: true,
				Enum: []string{"morning", "afternoon", "evening"}},
			{Name: "notes", Type: models.ParamString, Max: f(500)},
			{Name: "contactName", Type: models.ParamString, Max: f(120)},
			{Name: "contactEmail", Type: models.ParamString,
				Pattern: `^[^@\s]+@[^@\s]+\.[^@\s]+$`},
		},
		Responses: []models.ResponseDoc{
			{Status: 200, Description: "Created booking."},
			{Status: 400, Description: "VALIDATION_ERROR with one detail per violation."},
			{Status: 404, Description: "WALKER_NOT_FOUND or SERVICE_NOT_FOUND"},
		},
		AuthRequired: true,
		RateCeiling:  200,
		Handler:      s.handleCreateBooking,
	})

	r.MustRegister(&registry.Endpoint{
		Path:     "/bookings/{id}",
		Method:   "GET",
		Category: "bookings",
		Summary:  "Fetch one booking.",
		Responses: []models.ResponseDoc{
			{Status: 200, Description: "Booking."},
			{Status: 404, Description: "BOOKING_NOT_FOUND"},
		},
		AuthRequired: true,
		RateCeiling:  1000,
		Handler:      s.handleGetBooking,
	})

	r.MustRegister(&registry.Endpoint{
		Path:     "/bookings/{id}",
		Method:   "DELETE",
		Category: "bookings",
		Summary:  "Cancel a booking.",
		Responses: []models.ResponseDoc{
			{Status: 200, Description: "Cancelled booking."},
			{Status: 404, Description: "BOOKING_NOT_FOUND"},
		},
		AuthRequired: true,
		RateCeiling:  200,
		Handler:      s.handleCancelBooking,
	})

	r.MustRegister(&registry.Endpoint{
		Path:     "/reviews",
		Method:   "GET",
		Category: "reviews",
		Summary:  "List walker reviews, newest first.",
		Parameters: append([]models.Parameter{
			{Name: "walkerId", Type: models.ParamString},
			{Name: "minRating", Type: models.ParamNumber, Min: f(1), Max: f(5)},
		}, pagingParams...),
		Responses: []models.ResponseDoc{
			{Status: 200, Description: "Paginated review list."},
		},
		AuthRequired: true,
		RateCeiling:  1000,
		Handler:      s.handleListReviews,
	})

	r.MustRegister(&registry.Endpoint{
		Path:     "/reviews",
		Method:   "POST",
		Category: "reviews",
		Summary:  "Publish a walker review.",
		Parameters: []models.Parameter{
			{Name: "walkerId", Type: models.ParamString, Required: true},
			{Name: "rating", Type: models.ParamNumber, Required: true, Min: f(1), Max: f(5)},
			{Name: "comment", Type: models.ParamString, Max: f(1000)},
			{Name: "author", Type: models.ParamString, Max: f(120)},
		},
		Responses: []models.ResponseDoc{
			{Status: 200, Description: "Created review."},
			{Status: 404, Description: "WALKER_NOT_FOUND"},
		},
		AuthRequired: true,
		RateCeiling:  200,
		Handler:      s.handleCreateReview,
	})
}
