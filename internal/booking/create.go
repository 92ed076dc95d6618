package booking

import (
	"context"
	"strings"

	"github.com/artin59/3311-Project-sub001/internal/model"
)

// CreateRequest asks for a new booking.
type CreateRequest struct {
	UserID     string `json:"userId"`
	RoomNumber string `json:"roomNumber"`
	Date       string `json:"date"`
	StartTime  string `json:"startTime"`
	EndTime    string `json:"endTime"`
	// Slot is an alternative to StartTime and EndTime, e.g. "16:00-17:00".
	Slot string `json:"slot,omitempty"`
}

type createCommand struct {
	eng *engine
	req CreateRequest

	room *model.Room
	date string
	slot TimeRange

	created    *model.Booking
	roomBefore model.Room
	charged    int64
}

func (c *createCommand) Name() string { return "create booking" }

func (c *createCommand) Rooms() []string { return []string{c.req.RoomNumber} }

func (c *createCommand) User() string { return c.req.UserID }

func (c *createCommand) Validate(ctx context.Context) error {
	op := c.Name()
	if strings.TrimSpace(c.req.UserID) == "" {
		return fail(ErrInvalidRequest, op, "user id is required")
	}
	if strings.TrimSpace(c.req.RoomNumber) == "" {
		return fail(ErrInvalidRequest, op, "room number is required")
	}
	date, err := c.eng.canonicalDate(c.req.Date)
	if err != nil {
		return failWith(ErrInvalidRequest, op, err)
	}
	var slot TimeRange
	if c.req.StartTime == "" && c.req.EndTime == "" && c.req.Slot != "" {
		slot, err = ParseSlot(c.req.Slot)
	} else {
		slot, err = ParseTimeRange(c.req.StartTime, c.req.EndTime)
	}
	if err != nil {
		return failWith(ErrInvalidRequest, op, err)
	}
	startAt, err := c.eng.at(date, slot.Start)
	if err != nil {
		return failWith(ErrInvalidRequest, op, err)
	}
	if !startAt.After(c.eng.now()) {
		return fail(ErrInvalidState, op, "slot %s on %s has already started", slot, date)
	}

	room, err := c.eng.room(ctx, op, c.req.RoomNumber)
	if err != nil {
		return err
	}
	if err := acceptsBookings(op, room); err != nil {
		return err
	}
	clash, err := c.eng.detector.FindConflict(ctx, room.Number, date, slot, "")
	if err != nil {
		return err
	}
	if clash != nil {
		return fail(ErrTimeConflict, op, "room %s is booked %s-%s on %s", room.Number, clash.StartTime, clash.EndTime, date)
	}
	c.room, c.date, c.slot = room, date, slot
	return nil
}

func (c *createCommand) Execute(ctx context.Context) (*Outcome, error) {
	op := c.Name()
	rate, err := c.eng.rate(ctx, c.req.UserID)
	if err != nil {
		return nil, err
	}
	hours := c.slot.Hours()
	b := &model.Booking{
		ID:         c.eng.newID(),
		UserID:     strings.TrimSpace(c.req.UserID),
		RoomNumber: c.room.Number,
		Date:       c.date,
		StartTime:  c.slot.Start.String(),
		EndTime:    c.slot.End.String(),
		Hours:      hours,
		HourlyRate: rate,
		TotalCost:  int64(hours) * rate,
		Status:     model.BookingReserved,
		CreatedAt:  c.eng.now(),
	}

	before := *c.room
	room := *c.room
	if err := c.eng.restage(ctx, &room, b.ID, map[string]*model.Booking{b.ID: b}); err != nil {
		return nil, err
	}

	if err := c.eng.charge(ctx, op, b.ID, b.TotalCost); err != nil {
		return nil, err
	}
	ch := Change{Save: []*model.Booking{b}, Rooms: roomChanges([2]*model.Room{&before, &room})}
	if err := c.eng.commit(ctx, op, ch, b.ID, b.TotalCost); err != nil {
		return nil, err
	}

	c.created, c.roomBefore, c.charged = b, before, b.TotalCost
	out := &Outcome{Booking: *b, Charged: b.TotalCost}
	out.created(*b)
	return out, nil
}

func (c *createCommand) Undo(ctx context.Context) (*Outcome, error) {
	op := "undo " + c.Name()
	if c.created == nil {
		return nil, fail(ErrInvalidState, op, "nothing to undo")
	}
	current, err := c.eng.booking(ctx, op, c.created.ID)
	if err != nil {
		return nil, err
	}
	if current.Status != model.BookingReserved {
		return nil, fail(ErrInvalidState, op, "booking %s is %s", current.ID, current.Status)
	}

	room := c.roomBefore
	ch := Change{Delete: []string{c.created.ID}, Rooms: []*model.Room{&room}}
	if err := c.eng.commit(ctx, op, ch, "", 0); err != nil {
		return nil, err
	}
	out := &Outcome{Booking: *current}
	out.Booking.Status = model.BookingCancelled
	c.eng.refund(ctx, op, c.created.ID, c.charged, out)
	out.cancelled(c.created.ID)
	c.created = nil
	return out, nil
}
