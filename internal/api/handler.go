package api

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"

	"github.com/artin59/3311-Project-sub001/internal/booking"
	"github.com/artin59/3311-Project-sub001/internal/model"
	"github.com/artin59/3311-Project-sub001/internal/store"
)

// Bookings is the booking engine as seen by the HTTP layer.
type Bookings interface {
	CreateBooking(ctx context.Context, req booking.CreateRequest) (*booking.Outcome, error)
	CancelBooking(ctx context.Context, bookingID string) (*booking.Outcome, error)
	EditBooking(ctx context.Context, req booking.EditRequest) (*booking.Outcome, error)
	ExtendBooking(ctx context.Context, bookingID string, extraHours int) (*booking.Outcome, error)
	CheckIn(ctx context.Context, bookingID string) (*booking.Outcome, error)
	CheckOut(ctx context.Context, bookingID string) (*booking.Outcome, error)
	UndoFor(ctx context.Context, userID string) (*booking.Outcome, error)

	GetBooking(ctx context.Context, id string) (*model.Booking, error)
	BookingsForUser(ctx context.Context, userID string) ([]model.Booking, error)

	Rooms(ctx context.Context) ([]model.Room, error)
	Room(ctx context.Context, number string) (*model.Room, error)
	AddRoom(ctx context.Context, nr booking.NewRoom) (*model.Room, error)
	SetRoomStatus(ctx context.Context, number string, status model.AdminStatus) (*model.Room, error)
	SetMaintenance(ctx context.Context, number string) (*booking.Outcome, error)
	ClearMaintenance(ctx context.Context, number string) (*booking.Outcome, error)
}

// Handler holds shared dependencies for API handlers.
type Handler struct {
	bookings Bookings
	subs     store.SubscriptionStore
	webpush  *webpush.Options
}

// NewHandler creates a new API handler.
func NewHandler(b Bookings, subs store.SubscriptionStore, webpushOptions *webpush.Options) *Handler {
	return &Handler{
		bookings: b,
		subs:     subs,
		webpush:  webpushOptions,
	}
}

// statusFor maps a booking failure kind to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, booking.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, booking.ErrInvalidState), errors.Is(err, booking.ErrTimeConflict):
		return http.StatusConflict
	case errors.Is(err, booking.ErrPaymentFailure):
		return http.StatusPaymentRequired
	case errors.Is(err, booking.ErrInvalidRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func abortWithError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Printf("%s %s: %v", c.Request.Method, c.FullPath(), err)
		c.AbortWithStatusJSON(status, gin.H{"error": "internal error"})
		return
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}
