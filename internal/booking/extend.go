package booking

import (
	"context"

	"github.com/artin59/3311-Project-sub001/internal/model"
)

type extendCommand struct {
	eng       *engine
	bookingID string
	extra     int

	before     model.Booking
	roomBefore model.Room
	newEnd     TimeOfDay

	charged int64
	done    bool
}

func (c *extendCommand) Name() string { return "extend booking" }

func (c *extendCommand) Rooms() []string { return []string{c.before.RoomNumber} }

func (c *extendCommand) User() string { return c.before.UserID }

func (c *extendCommand) Validate(ctx context.Context) error {
	op := c.Name()
	if c.extra < 1 {
		return fail(ErrInvalidRequest, op, "extra hours must be at least 1, got %d", c.extra)
	}
	b, err := c.eng.booking(ctx, op, c.bookingID)
	if err != nil {
		return err
	}
	if !b.Status.Active() {
		return fail(ErrInvalidState, op, "booking %s is %s", b.ID, b.Status)
	}
	current, err := recordRange(*b)
	if err != nil {
		return failWith(ErrInvalidState, op, err)
	}
	endAt, err := c.eng.at(b.Date, current.End)
	if err != nil {
		return failWith(ErrInvalidState, op, err)
	}
	if !endAt.After(c.eng.now()) {
		return fail(ErrInvalidState, op, "booking %s has already ended", b.ID)
	}
	if c.extra > int(EndOfDay-current.End)/60 {
		return fail(ErrInvalidState, op, "extension crosses midnight, unsupported")
	}
	newEnd := current.End + TimeOfDay(c.extra*60)

	delta := TimeRange{Start: current.End, End: newEnd}
	clash, err := c.eng.detector.FindConflict(ctx, b.RoomNumber, b.Date, delta, b.ID)
	if err != nil {
		return err
	}
	if clash != nil {
		return fail(ErrTimeConflict, op, "room %s is booked %s-%s on %s", b.RoomNumber, clash.StartTime, clash.EndTime, b.Date)
	}
	room, err := c.eng.room(ctx, op, b.RoomNumber)
	if err != nil {
		return err
	}
	c.before, c.roomBefore, c.newEnd = *b, *room, newEnd
	return nil
}

func (c *extendCommand) Execute(ctx context.Context) (*Outcome, error) {
	op := c.Name()
	rate, err := c.eng.rate(ctx, c.before.UserID)
	if err != nil {
		return nil, err
	}
	updated := c.before
	updated.EndTime = c.newEnd.String()
	updated.Hours = c.before.Hours + c.extra
	updated.HourlyRate = rate
	updated.TotalCost = int64(updated.Hours) * rate
	extraCharge := int64(c.extra) * rate

	room := c.roomBefore
	if room.Active.BookingID == updated.ID {
		room.Active = updated.Reference()
	}

	if err := c.eng.charge(ctx, op, updated.ID, extraCharge); err != nil {
		return nil, err
	}
	ch := Change{Update: []*model.Booking{&updated}, Rooms: roomChanges([2]*model.Room{&c.roomBefore, &room})}
	if err := c.eng.commit(ctx, op, ch, updated.ID, extraCharge); err != nil {
		return nil, err
	}

	c.charged = extraCharge
	c.done = true
	out := &Outcome{Booking: updated, Charged: extraCharge}
	out.updated(updated)
	return out, nil
}

func (c *extendCommand) Undo(ctx context.Context) (*Outcome, error) {
	op := "undo " + c.Name()
	if !c.done {
		return nil, fail(ErrInvalidState, op, "nothing to undo")
	}
	current, err := c.eng.booking(ctx, op, c.before.ID)
	if err != nil {
		return nil, err
	}
	if current.Status != c.before.Status {
		return nil, fail(ErrInvalidState, op, "booking %s is now %s", current.ID, current.Status)
	}

	restored := c.before
	room := c.roomBefore
	ch := Change{Update: []*model.Booking{&restored}, Rooms: []*model.Room{&room}}
	if err := c.eng.commit(ctx, op, ch, "", 0); err != nil {
		return nil, err
	}
	out := &Outcome{Booking: restored}
	c.eng.refund(ctx, op, c.before.ID, c.charged, out)
	out.updated(restored)
	c.done = false
	return out, nil
}
