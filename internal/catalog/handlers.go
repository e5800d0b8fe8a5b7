package catalog

import (
	"context"
	"fmt"

	apierrors "github.com/Hamidon94/ultra.dogwalking-sub000/internal/errors"
	"github.com/Hamidon94/ultra.dogwalking-sub000/internal/models"
	"github.com/Hamidon94/ultra.dogwalking-sub000/internal/registry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

func (s *Store) handleListWalkers(ctx context.Context, req registry.Request) (*models.Envelope, *apierrors.APIError) {
	filter := WalkerFilter{
		City:      paramString(req.Params, "city"),
		MinRating: paramNumber(req.Params, "minRating"),
		Service:   paramString(req.Params, "service"),
	}
	if max := paramNumber(req.Params, "maxPrice"); max > 0 {
		d := decimal.NewFromFloat(max)
		filter.MaxPrice = &d
	}
	limit, offset := paging(req.Params)

	walkers, total := s.ListWalkers(filter, limit, offset)
	return &models.Envelope{
		Data:       walkers,
		Pagination: &models.Pagination{Total: total, Limit: limit, Offset: offset},
	}, nil
}

func (s *Store) handleGetWalker(ctx context.Context, req registry.Request) (*models.Envelope, *apierrors.APIError) {
	id := paramString(req.Params, "id")
	walker, ok := s.GetWalker(id)
	if !ok {
		return nil, walkerNotFound(id)
	}
	return &models.Envelope{Data: walker}, nil
}

func (s *Store) handleWalkerAvailability(ctx context.Context, req registry.Request) (*models.Envelope, *apierrors.APIError) {
	id := paramString(req.Params, "id")
	date := paramString(req.Params, "date")

	slots, ok := s.WalkerAvailability(id, date)
	if !ok {
		return nil, walkerNotFound(id)
	}
	return &models.Envelope{Data: map[string]any{
		"walker_id": id,
		"date":      date,
		"slots":     slots,
	}}, nil
}

func (s *Store) handleListServices(ctx context.Context, req registry.Request) (*models.Envelope, *apierrors.APIError) {
	filter := ServiceFilter{Category: paramString(req.Params, "category")}
	limit, offset := paging(req.Params)

	services, total := s.ListServices(filter, limit, offset)
	return &models.Envelope{
		Data:       services,
		Pagination: &models.Pagination{Total: total, Limit: limit, Offset: offset},
	}, nil
}

func (s *Store) handleGetService(ctx context.Context, req registry.Request) (*models.Envelope, *apierrors.APIError) {
	id := paramString(req.Params, "id")
	svc, ok := s.GetService(id)
	if !ok {
		return nil, serviceNotFound(id)
	}
	return &models.Envelope{Data: svc}, nil
}

func (s *Store) handleCreateBooking(ctx context.Context, req registry.Request) (*models.Envelope, *apierrors.APIError) {
	booking, err := s.CreateBooking(BookingRequest{
		WalkerID:     paramString(req.Params, "walkerId"),
		ServiceID:    paramString(req.Params, "serviceId"),
		Date:         paramString(req.Params, "date"),
		TimeSlot:     paramString(req.Params, "timeSlot"),
		Notes:        paramString(req.Params, "notes"),
		ContactName:  paramString(req.Params, "contactName"),
		ContactEmail: paramString(req.Params, "contactEmail"),
	})
	if err != nil {
		return nil, mapStoreError(err)
	}
	return &models.Envelope{Data: booking}, nil
}

func (s *Store) handleGetBooking(ctx context.Context, req registry.Request) (*models.Envelope, *apierrors.APIError) {
	raw := paramString(req.Params, "id")
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, bookingNotFound(raw)
	}
	booking, ok := s.GetBooking(id)
	if !ok {
		return nil, bookingNotFound(raw)
	}
	return &models.Envelope{Data: booking}, nil
}

func (s *Store) handleCancelBooking(ctx context.Context, req registry.Request) (*models.Envelope, *apierrors.APIError) {
	raw := paramString(req.Params, "id")
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, bookingNotFound(raw)
	}
	booking, ok := s.CancelBooking(id)
	if !ok {
		return nil, bookingNotFound(raw)
	}
	return &models.Envelope{Data: booking}, nil
}

func (s *Store) handleListReviews(ctx context.Context, req registry.Request) (*models.Envelope, *apierrors.APIError) {
	filter := ReviewFilter{
		WalkerID:  paramString(req.Params, "walkerId"),
		MinRating: int(paramNumber(req.Params, "minRating")),
	}
	limit, offset := paging(req.Params)

	reviews, total := s.ListReviews(filter, limit, offset)
	return &models.Envelope{
		Data:       reviews,
		Pagination: &models.Pagination{Total: total, Limit: limit, Offset: offset},
	}, nil
}

func (s *Store) handleCreateReview(ctx context.Context, req registry.Request) (*models.Envelope, *apierrors.APIError) {
	review, err := s.CreateReview(
		paramString(req.Params, "walkerId"),
		int(paramNumber(req.Params, "rating")),
		paramString(req.Params, "comment"),
		paramString(req.Params, "author"),
	)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return &models.Envelope{Data: review}, nil
}

func walkerNotFound(id string) *apierrors.APIError {
	return apierrors.NewNotFound(apierrors.CodeWalkerNotFound, fmt.Sprintf("Walker %q not found", id))
}

func serviceNotFound(id string) *apierrors.APIError {
	return apierrors.NewNotFound(apierrors.CodeServiceNotFound, fmt.Sprintf("Service %q not found", id))
}

func bookingNotFound(id string) *apierrors.APIError {
	return apierrors.NewNotFound(apierrors.CodeBookingNotFound, fmt.Sprintf("Booking %q not found", id))
}

// mapStoreError converts store errors to the public taxonomy.
func mapStoreError(err error) *apierrors.APIError {
	if nf, ok := err.(*NotFoundError); ok {
		switch nf.Resource {
		case "walker":
			return walkerNotFound(nf.ID)
		case "service":
			return serviceNotFound(nf.ID)
		case "booking":
			return bookingNotFound(nf.ID)
		}
	}
	return apierrors.NewInternal()
}

// paramString reads a validated string parameter; missing values are "".
func paramString(params map[string]any, name string) string {
	if v, ok := params[name].(string); ok {
		return v
	}
	return ""
}

// paramNumber reads a validated number parameter; missing values are 0.
func paramNumber(params map[string]any, name string) float64 {
	if v, ok := params[name].(float64); ok {
		return v
	}
	return 0
}

// paging reads limit/offset with the catalog defaults applied.
func paging(params map[string]any) (limit, offset int) {
	limit = defaultLimit
	if v := paramNumber(params, "limit"); v > 0 {
		limit = int(v)
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	offset = int(paramNumber(params, "offset"))
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
