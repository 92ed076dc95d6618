package booking

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/artin59/3311-Project-sub001/internal/model"
	"github.com/artin59/3311-Project-sub001/internal/parse"
)

// Command is one undoable booking operation.
type Command interface {
	Name() string
	// Rooms lists the room numbers the command touched.
	Rooms() []string
	// User is the owner of the booking the command changed.
	User() string
	Validate(ctx context.Context) error
	Execute(ctx context.Context) (*Outcome, error)
	Undo(ctx context.Context) (*Outcome, error)
}

// Outcome is what a successful operation did.
type Outcome struct {
	Booking  model.Booking `json:"booking"`
	Room     *model.Room   `json:"room,omitempty"`
	Charged  int64         `json:"charged"`
	Refunded int64         `json:"refunded"`
	Warnings []string      `json:"warnings,omitempty"`

	notices []notice
}

func (o *Outcome) warn(format string, args ...any) {
	o.Warnings = append(o.Warnings, fmt.Sprintf(format, args...))
}

func (o *Outcome) created(b model.Booking) {
	o.notices = append(o.notices, notice{kind: noticeCreated, booking: b})
}

func (o *Outcome) updated(b model.Booking) {
	o.notices = append(o.notices, notice{kind: noticeUpdated, booking: b})
}

func (o *Outcome) cancelled(id string) {
	o.notices = append(o.notices, notice{kind: noticeCancelled, id: id})
}

// engine holds the collaborators shared by every command.
type engine struct {
	repo     Repository
	accounts AccountDirectory
	payments PaymentGateway
	pricing  *PricingPolicyFactory
	detector *ConflictDetector
	clock    Clock
	loc      *time.Location
	logger   *log.Logger
	newID    func() string
}

func (e *engine) now() time.Time {
	return e.clock.Now().In(e.loc)
}

func (e *engine) at(date string, t TimeOfDay) (time.Time, error) {
	return instant(date, t, e.loc)
}

// canonicalDate parses and re-formats a date so stored dates compare as strings.
func (e *engine) canonicalDate(raw string) (string, error) {
	d, err := parse.Date(raw, e.loc)
	if err != nil {
		return "", err
	}
	return d.Format(parse.DateLayout), nil
}

func (e *engine) booking(ctx context.Context, op, id string) (*model.Booking, error) {
	b, err := e.repo.FindBookingByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to load booking %s: %w", op, id, err)
	}
	if b == nil {
		return nil, fail(ErrNotFound, op, "booking %s", id)
	}
	return b, nil
}

func (e *engine) room(ctx context.Context, op, number string) (*model.Room, error) {
	r, err := e.repo.FindRoomByNumber(ctx, number)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to load room %s: %w", op, number, err)
	}
	if r == nil {
		return nil, fail(ErrNotFound, op, "room %s", number)
	}
	return r, nil
}

// acceptsBookings rejects rooms that are switched off or under maintenance.
func acceptsBookings(op string, r *model.Room) error {
	if r.AdminStatus != model.AdminEnabled {
		return fail(ErrInvalidState, op, "room %s is disabled", r.Number)
	}
	if r.State == model.RoomMaintenance {
		return fail(ErrInvalidState, op, "room %s is under maintenance", r.Number)
	}
	return nil
}

func (e *engine) rate(ctx context.Context, userID string) (int64, error) {
	var acct *model.Account
	if e.accounts != nil {
		a, err := e.accounts.FindAccount(ctx, userID)
		if err != nil {
			return 0, fmt.Errorf("failed to look up account %s: %w", userID, err)
		}
		acct = a
	}
	return e.pricing.PolicyFor(acct).HourlyRate(acct), nil
}

func (e *engine) charge(ctx context.Context, op, ref string, amount int64) error {
	if amount <= 0 {
		return nil
	}
	if err := e.payments.Charge(ctx, ref, amount); err != nil {
		return failWith(ErrPaymentFailure, op, err)
	}
	return nil
}

// refund never fails the operation; a gateway error becomes a warning.
func (e *engine) refund(ctx context.Context, op, ref string, amount int64, out *Outcome) int64 {
	if amount <= 0 {
		return 0
	}
	if br, ok := e.payments.(BalanceReader); ok {
		held, err := br.Balance(ctx, ref)
		if err != nil {
			e.logger.Printf("Warning: %s: reading balance of %s failed: %v", op, ref, err)
		} else if held < amount {
			e.logger.Printf("Warning: %s: refund of %d for %s capped at the %d held", op, amount, ref, held)
			out.warn("refund of %d capped at the %d held", amount, held)
			amount = held
			if amount <= 0 {
				return 0
			}
		}
	}
	if err := e.payments.Refund(ctx, ref, amount); err != nil {
		e.logger.Printf("Warning: %s: refund of %d for %s failed: %v", op, amount, ref, err)
		out.warn("refund of %d failed: %v", amount, err)
		return 0
	}
	out.Refunded += amount
	return amount
}

// commit applies ch; when that fails after a charge the charge is refunded.
func (e *engine) commit(ctx context.Context, op string, ch Change, ref string, charged int64) error {
	if ch.Empty() {
		return nil
	}
	if err := e.repo.Apply(ctx, ch); err != nil {
		if charged > 0 {
			if rerr := e.payments.Refund(ctx, ref, charged); rerr != nil {
				e.logger.Printf("Error: %s: compensating refund of %d for %s failed: %v", op, charged, ref, rerr)
			}
		}
		return fmt.Errorf("%s: failed to persist: %w", op, err)
	}
	return nil
}

// pending lists the reserved bookings of a room as they will look once the
// staged writes land. A nil entry in staged means the booking is going away.
func (e *engine) pending(ctx context.Context, roomNumber string, staged map[string]*model.Booking) ([]model.Booking, error) {
	stored, err := e.repo.FindBookingsByRoom(ctx, roomNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to load bookings for room %s: %w", roomNumber, err)
	}
	seen := make(map[string]bool, len(stored))
	var out []model.Booking
	keep := func(b *model.Booking) {
		if b != nil && b.RoomNumber == roomNumber && b.Status == model.BookingReserved {
			out = append(out, *b)
		}
	}
	for i := range stored {
		b := &stored[i]
		seen[b.ID] = true
		if s, ok := staged[b.ID]; ok {
			keep(s)
			continue
		}
		keep(b)
	}
	for id, s := range staged {
		if !seen[id] {
			keep(s)
		}
	}
	return out, nil
}

// restage releases the room from bookingID if it holds it and then points
// the room at its earliest pending booking.
func (e *engine) restage(ctx context.Context, room *model.Room, bookingID string, staged map[string]*model.Booking) error {
	if room.Active.BookingID == bookingID && room.State == model.RoomReserved {
		if _, err := applyEvent(room, EventCancel, model.ActiveBooking{}); err != nil {
			return err
		}
	}
	pending, err := e.pending(ctx, room.Number, staged)
	if err != nil {
		return err
	}
	return settleHolder(room, pending)
}

// settleHolder keeps an Available or Reserved room pointed at its earliest
// pending booking. Rooms in use, in maintenance or awaiting no-show
// handling are left alone.
func settleHolder(room *model.Room, pending []model.Booking) error {
	if room.State != model.RoomAvailable && room.State != model.RoomReserved {
		return nil
	}
	next := earliest(pending)
	switch {
	case next == nil && room.State == model.RoomReserved:
		_, err := applyEvent(room, EventCancel, model.ActiveBooking{})
		return err
	case next == nil:
		return nil
	case room.State == model.RoomAvailable:
		_, err := applyEvent(room, EventBook, next.Reference())
		return err
	default:
		room.Active = next.Reference()
		return nil
	}
}

func earliest(bs []model.Booking) *model.Booking {
	if len(bs) == 0 {
		return nil
	}
	sorted := make([]model.Booking, len(bs))
	copy(sorted, bs)
	sort.Slice(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		if a.StartTime != b.StartTime {
			return a.StartTime < b.StartTime
		}
		return a.ID < b.ID
	})
	return &sorted[0]
}

func roomChanges(pairs ...[2]*model.Room) []*model.Room {
	var out []*model.Room
	for _, p := range pairs {
		before, after := p[0], p[1]
		if after != nil && (before == nil || *before != *after) {
			out = append(out, after)
		}
	}
	return out
}

func coalesce(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
