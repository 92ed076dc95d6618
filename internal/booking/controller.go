package booking

import (
	"context"
	"fmt"
	"log"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/artin59/3311-Project-sub001/internal/model"
)

const (
	DefaultNoShowGrace  = 30 * time.Minute
	DefaultHistoryLimit = 50

	engineLockKey = "booking-engine"
)

// Deps are the collaborators of a Controller. Repository and Payments are
// required; everything else has a default.
type Deps struct {
	Repository   Repository
	Accounts     AccountDirectory
	Payments     PaymentGateway
	Pricing      *PricingPolicyFactory
	Clock        Clock
	Location     *time.Location
	Locker       Locker
	Observers    *ObserverBus
	Logger       *log.Logger
	NoShowGrace  time.Duration
	HistoryLimit int
	NewID        func() string
}

// Controller is the single entry point for booking operations. Every
// operation runs under the engine lock and observers are notified once
// the lock is released.
type Controller struct {
	eng     *engine
	locker  Locker
	bus     *ObserverBus
	grace   time.Duration
	limit   int
	history []Command
}

func NewController(d Deps) *Controller {
	if d.Logger == nil {
		d.Logger = log.Default()
	}
	if d.Pricing == nil {
		d.Pricing = NewPricingPolicyFactory(nil, 0)
	}
	if d.Clock == nil {
		d.Clock = SystemClock
	}
	if d.Location == nil {
		d.Location = time.Local
	}
	if d.Locker == nil {
		d.Locker = NewLocalLocker()
	}
	if d.Observers == nil {
		d.Observers = NewObserverBus(d.Logger)
	}
	if d.NoShowGrace <= 0 {
		d.NoShowGrace = DefaultNoShowGrace
	}
	if d.HistoryLimit <= 0 {
		d.HistoryLimit = DefaultHistoryLimit
	}
	if d.NewID == nil {
		d.NewID = uuid.NewString
	}
	return &Controller{
		eng: &engine{
			repo:     d.Repository,
			accounts: d.Accounts,
			payments: d.Payments,
			pricing:  d.Pricing,
			detector: NewConflictDetector(d.Repository),
			clock:    d.Clock,
			loc:      d.Location,
			logger:   d.Logger,
			newID:    d.NewID,
		},
		locker: d.Locker,
		bus:    d.Observers,
		grace:  d.NoShowGrace,
		limit:  d.HistoryLimit,
	}
}

// Observers is the registry notified after every committed change.
func (c *Controller) Observers() *ObserverBus {
	return c.bus
}

func (c *Controller) CreateBooking(ctx context.Context, req CreateRequest) (*Outcome, error) {
	return c.dispatch(ctx, &createCommand{eng: c.eng, req: req})
}

func (c *Controller) CancelBooking(ctx context.Context, bookingID string) (*Outcome, error) {
	return c.dispatch(ctx, &cancelCommand{eng: c.eng, bookingID: bookingID})
}

func (c *Controller) EditBooking(ctx context.Context, req EditRequest) (*Outcome, error) {
	return c.dispatch(ctx, &editCommand{eng: c.eng, req: req})
}

func (c *Controller) ExtendBooking(ctx context.Context, bookingID string, extraHours int) (*Outcome, error) {
	return c.dispatch(ctx, &extendCommand{eng: c.eng, bookingID: bookingID, extra: extraHours})
}

// Undo reverts the most recent command that has not been undone yet.
func (c *Controller) Undo(ctx context.Context) (*Outcome, error) {
	return c.undo(ctx, "")
}

// UndoFor reverts the most recent command only if it changed a booking of
// userID; a newer change by someone else blocks it.
func (c *Controller) UndoFor(ctx context.Context, userID string) (*Outcome, error) {
	if userID == "" {
		return nil, fail(ErrInvalidRequest, "undo", "user id is required")
	}
	return c.undo(ctx, userID)
}

func (c *Controller) undo(ctx context.Context, userID string) (*Outcome, error) {
	return c.run(ctx, "undo", func(ctx context.Context) (*Outcome, error) {
		if len(c.history) == 0 {
			return nil, fail(ErrInvalidState, "undo", "nothing to undo")
		}
		last := c.history[len(c.history)-1]
		if userID != "" && last.User() != userID {
			return nil, fail(ErrInvalidState, "undo", "the latest change was not made for %s", userID)
		}
		out, err := last.Undo(ctx)
		if err != nil {
			return nil, err
		}
		c.history = c.history[:len(c.history)-1]
		return out, nil
	})
}

// HistoryLen is the number of commands Undo can still revert.
func (c *Controller) HistoryLen(ctx context.Context) (int, error) {
	unlock, err := c.locker.Lock(ctx, engineLockKey)
	if err != nil {
		return 0, fmt.Errorf("failed to acquire engine lock: %w", err)
	}
	defer unlock()
	return len(c.history), nil
}

func (c *Controller) dispatch(ctx context.Context, cmd Command) (*Outcome, error) {
	return c.run(ctx, cmd.Name(), func(ctx context.Context) (*Outcome, error) {
		if err := cmd.Validate(ctx); err != nil {
			return nil, err
		}
		out, err := cmd.Execute(ctx)
		if err != nil {
			return nil, err
		}
		c.remember(cmd)
		return out, nil
	})
}

// run executes fn under the engine lock and publishes its notices after
// the lock is released.
func (c *Controller) run(ctx context.Context, op string, fn func(context.Context) (*Outcome, error)) (*Outcome, error) {
	out, err := c.locked(ctx, fn)
	if err != nil {
		c.eng.logger.Printf("%s failed: %v", op, err)
		return nil, err
	}
	c.bus.publish(out.notices...)
	return out, nil
}

func (c *Controller) locked(ctx context.Context, fn func(context.Context) (*Outcome, error)) (*Outcome, error) {
	unlock, err := c.locker.Lock(ctx, engineLockKey)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire engine lock: %w", err)
	}
	defer unlock()
	return fn(ctx)
}

func (c *Controller) remember(cmd Command) {
	c.history = append(c.history, cmd)
	if over := len(c.history) - c.limit; over > 0 {
		c.history = slices.Delete(c.history, 0, over)
	}
}

// forgetRoom drops history entries that touched room so that undo never
// writes over a later lifecycle change.
func (c *Controller) forgetRoom(room string) {
	c.history = slices.DeleteFunc(c.history, func(cmd Command) bool {
		return slices.Contains(cmd.Rooms(), room)
	})
}

// GetBooking returns one booking.
func (c *Controller) GetBooking(ctx context.Context, id string) (*model.Booking, error) {
	return c.eng.booking(ctx, "get booking", id)
}

// BookingsForUser lists every stored booking of a user.
func (c *Controller) BookingsForUser(ctx context.Context, userID string) ([]model.Booking, error) {
	bookings, err := c.eng.repo.FindBookingsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings for %s: %w", userID, err)
	}
	return bookings, nil
}

// Rooms lists every room.
func (c *Controller) Rooms(ctx context.Context) ([]model.Room, error) {
	rooms, err := c.eng.repo.FindAllRooms(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	return rooms, nil
}

// Room returns one room by number.
func (c *Controller) Room(ctx context.Context, number string) (*model.Room, error) {
	return c.eng.room(ctx, "get room", number)
}
