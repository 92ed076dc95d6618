package booking

import (
	"context"
	"time"

	"github.com/artin59/3311-Project-sub001/internal/model"
)

// Repository persists bookings and rooms. Finders return nil, nil when
// the record does not exist.
type Repository interface {
	BookingFinder

	SaveBooking(ctx context.Context, b *model.Booking) error
	UpdateBooking(ctx context.Context, b *model.Booking) error
	DeleteBooking(ctx context.Context, id string) (bool, error)
	FindBookingByID(ctx context.Context, id string) (*model.Booking, error)
	FindBookingsByUser(ctx context.Context, userID string) ([]model.Booking, error)
	FindBookingsByRoom(ctx context.Context, roomNumber string) ([]model.Booking, error)
	FindBookingsByStatus(ctx context.Context, status model.BookingStatus) ([]model.Booking, error)

	SaveRoom(ctx context.Context, r *model.Room) error
	UpdateRoom(ctx context.Context, r *model.Room) error
	FindRoomByID(ctx context.Context, id string) (*model.Room, error)
	FindRoomByNumber(ctx context.Context, number string) (*model.Room, error)
	FindAllRooms(ctx context.Context) ([]model.Room, error)

	// Apply writes every part of the change or none of it.
	Apply(ctx context.Context, ch Change) error
}

// Change is the set of writes one operation commits together.
type Change struct {
	Save   []*model.Booking
	Update []*model.Booking
	Delete []string
	Rooms  []*model.Room
}

// Empty reports whether the change writes nothing.
func (c Change) Empty() bool {
	return len(c.Save) == 0 && len(c.Update) == 0 && len(c.Delete) == 0 && len(c.Rooms) == 0
}

// AccountDirectory resolves the account a booking is priced for.
type AccountDirectory interface {
	FindAccount(ctx context.Context, userID string) (*model.Account, error)
}

// PaymentGateway moves money for a booking reference. Amounts that are
// zero or negative succeed without doing anything.
type PaymentGateway interface {
	Charge(ctx context.Context, reference string, amount int64) error
	Refund(ctx context.Context, reference string, amount int64) error
}

// BalanceReader is implemented by gateways that know how much they hold
// for a reference. Refunds are capped at that amount.
type BalanceReader interface {
	Balance(ctx context.Context, reference string) (int64, error)
}

// Clock supplies the current instant.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reads the wall clock.
var SystemClock Clock = ClockFunc(time.Now)

// Locker serializes engine operations. The returned unlock is safe to
// call more than once.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}
