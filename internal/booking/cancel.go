package booking

import (
	"context"

	"github.com/artin59/3311-Project-sub001/internal/model"
)

type cancelCommand struct {
	eng       *engine
	bookingID string

	before     model.Booking
	roomBefore model.Room

	refunded int64
	done     bool
}

func (c *cancelCommand) Name() string { return "cancel booking" }

func (c *cancelCommand) Rooms() []string { return []string{c.before.RoomNumber} }

func (c *cancelCommand) User() string { return c.before.UserID }

func (c *cancelCommand) Validate(ctx context.Context) error {
	op := c.Name()
	b, err := c.eng.booking(ctx, op, c.bookingID)
	if err != nil {
		return err
	}
	switch b.Status {
	case model.BookingInUse, model.BookingCompleted, model.BookingCancelled, model.BookingNoShow:
		return fail(ErrInvalidState, op, "booking %s is %s", b.ID, b.Status)
	}
	room, err := c.eng.room(ctx, op, b.RoomNumber)
	if err != nil {
		return err
	}
	c.before, c.roomBefore = *b, *room
	return nil
}

func (c *cancelCommand) Execute(ctx context.Context) (*Outcome, error) {
	op := c.Name()
	id := c.before.ID
	room := c.roomBefore
	if err := c.eng.restage(ctx, &room, id, map[string]*model.Booking{id: nil}); err != nil {
		return nil, err
	}
	ch := Change{Delete: []string{id}, Rooms: roomChanges([2]*model.Room{&c.roomBefore, &room})}
	if err := c.eng.commit(ctx, op, ch, "", 0); err != nil {
		return nil, err
	}

	out := &Outcome{Booking: c.before}
	out.Booking.Status = model.BookingCancelled
	c.refunded = c.eng.refund(ctx, op, id, c.before.TotalCost, out)
	c.done = true
	out.cancelled(id)
	return out, nil
}

func (c *cancelCommand) Undo(ctx context.Context) (*Outcome, error) {
	op := "undo " + c.Name()
	if !c.done {
		return nil, fail(ErrInvalidState, op, "nothing to undo")
	}
	existing, err := c.eng.repo.FindBookingByID(ctx, c.before.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fail(ErrInvalidState, op, "booking %s already exists", c.before.ID)
	}
	slot, err := recordRange(c.before)
	if err != nil {
		return nil, failWith(ErrInvalidState, op, err)
	}
	clash, err := c.eng.detector.FindConflict(ctx, c.before.RoomNumber, c.before.Date, slot, c.before.ID)
	if err != nil {
		return nil, err
	}
	if clash != nil {
		return nil, fail(ErrTimeConflict, op, "slot was taken by booking %s", clash.ID)
	}

	if err := c.eng.charge(ctx, op, c.before.ID, c.refunded); err != nil {
		return nil, err
	}
	restored := c.before
	restored.Status = model.BookingReserved
	room := c.roomBefore
	ch := Change{Save: []*model.Booking{&restored}, Rooms: []*model.Room{&room}}
	if err := c.eng.commit(ctx, op, ch, c.before.ID, c.refunded); err != nil {
		return nil, err
	}

	out := &Outcome{Booking: restored, Charged: c.refunded}
	out.created(restored)
	c.done = false
	return out, nil
}
