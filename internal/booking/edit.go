package booking

import (
	"context"
	"strings"

	"github.com/artin59/3311-Project-sub001/internal/model"
)

// EditRequest changes a reserved booking. Empty fields keep their value.
type EditRequest struct {
	BookingID  string `json:"-"`
	RoomNumber string `json:"roomNumber,omitempty"`
	Date       string `json:"date,omitempty"`
	StartTime  string `json:"startTime,omitempty"`
	EndTime    string `json:"endTime,omitempty"`
}

type editCommand struct {
	eng *engine
	req EditRequest

	before  model.Booking
	oldRoom model.Room
	newRoom model.Room
	moved   bool
	date    string
	slot    TimeRange

	charged  int64
	refunded int64
	done     bool
}

func (c *editCommand) Name() string { return "edit booking" }

func (c *editCommand) User() string { return c.before.UserID }

func (c *editCommand) Rooms() []string {
	if c.moved {
		return []string{c.oldRoom.Number, c.newRoom.Number}
	}
	return []string{c.before.RoomNumber}
}

func (c *editCommand) Validate(ctx context.Context) error {
	op := c.Name()
	b, err := c.eng.booking(ctx, op, c.req.BookingID)
	if err != nil {
		return err
	}
	if b.Status != model.BookingReserved {
		return fail(ErrInvalidState, op, "booking %s is %s, only reserved bookings can be edited", b.ID, b.Status)
	}
	current, err := recordRange(*b)
	if err != nil {
		return failWith(ErrInvalidState, op, err)
	}
	now := c.eng.now()
	startAt, err := c.eng.at(b.Date, current.Start)
	if err != nil {
		return failWith(ErrInvalidState, op, err)
	}
	if !startAt.After(now) {
		return fail(ErrInvalidState, op, "booking %s has already started", b.ID)
	}

	date := b.Date
	if strings.TrimSpace(c.req.Date) != "" {
		if date, err = c.eng.canonicalDate(c.req.Date); err != nil {
			return failWith(ErrInvalidRequest, op, err)
		}
	}
	slot := current
	if c.req.StartTime != "" || c.req.EndTime != "" {
		start := coalesce(c.req.StartTime, current.Start.String())
		end := c.req.EndTime
		if end == "" {
			// keep the booked length when only the start moves
			s, err := ParseTimeOfDay(start)
			if err != nil {
				return failWith(ErrInvalidRequest, op, err)
			}
			e := s + TimeOfDay(current.Minutes())
			if e > EndOfDay {
				return fail(ErrInvalidRequest, op, "moved slot would run past midnight")
			}
			end = e.String()
		}
		if slot, err = ParseTimeRange(start, end); err != nil {
			return failWith(ErrInvalidRequest, op, err)
		}
	}
	newStart, err := c.eng.at(date, slot.Start)
	if err != nil {
		return failWith(ErrInvalidRequest, op, err)
	}
	if !newStart.After(now) {
		return fail(ErrInvalidState, op, "new slot %s on %s is in the past", slot, date)
	}

	oldRoom, err := c.eng.room(ctx, op, b.RoomNumber)
	if err != nil {
		return err
	}
	newRoom := oldRoom
	number := coalesce(strings.TrimSpace(c.req.RoomNumber), b.RoomNumber)
	if number != b.RoomNumber {
		if newRoom, err = c.eng.room(ctx, op, number); err != nil {
			return err
		}
	}
	if err := acceptsBookings(op, newRoom); err != nil {
		return err
	}

	if newRoom.Number != b.RoomNumber || date != b.Date || slot != current {
		clash, err := c.eng.detector.FindConflict(ctx, newRoom.Number, date, slot, b.ID)
		if err != nil {
			return err
		}
		if clash != nil {
			return fail(ErrTimeConflict, op, "room %s is booked %s-%s on %s", newRoom.Number, clash.StartTime, clash.EndTime, date)
		}
	}

	c.before, c.oldRoom, c.newRoom = *b, *oldRoom, *newRoom
	c.moved = newRoom.Number != oldRoom.Number
	c.date, c.slot = date, slot
	return nil
}

func (c *editCommand) Execute(ctx context.Context) (*Outcome, error) {
	op := c.Name()
	rate, err := c.eng.rate(ctx, c.before.UserID)
	if err != nil {
		return nil, err
	}
	hours := c.slot.Hours()
	oldCost := int64(c.before.Hours) * rate
	newCost := int64(hours) * rate
	diff := newCost - oldCost

	updated := c.before
	updated.RoomNumber = c.newRoom.Number
	updated.Date = c.date
	updated.StartTime = c.slot.Start.String()
	updated.EndTime = c.slot.End.String()
	updated.Hours = hours
	updated.HourlyRate = rate
	updated.TotalCost = newCost

	staged := map[string]*model.Booking{updated.ID: &updated}
	oldRoom := c.oldRoom
	if err := c.eng.restage(ctx, &oldRoom, updated.ID, staged); err != nil {
		return nil, err
	}
	newRoom := oldRoom
	if c.moved {
		newRoom = c.newRoom
		if err := c.eng.restage(ctx, &newRoom, updated.ID, staged); err != nil {
			return nil, err
		}
	}

	var charged int64
	if diff > 0 {
		if err := c.eng.charge(ctx, op, updated.ID, diff); err != nil {
			return nil, err
		}
		charged = diff
	}
	rooms := [][2]*model.Room{{&c.oldRoom, &oldRoom}}
	if c.moved {
		rooms = append(rooms, [2]*model.Room{&c.newRoom, &newRoom})
	}
	ch := Change{Update: []*model.Booking{&updated}, Rooms: roomChanges(rooms...)}
	if err := c.eng.commit(ctx, op, ch, updated.ID, charged); err != nil {
		return nil, err
	}

	out := &Outcome{Booking: updated, Charged: charged}
	if diff < 0 {
		c.refunded = c.eng.refund(ctx, op, updated.ID, -diff, out)
	}
	c.charged = charged
	c.done = true
	out.updated(updated)
	return out, nil
}

func (c *editCommand) Undo(ctx context.Context) (*Outcome, error) {
	op := "undo " + c.Name()
	if !c.done {
		return nil, fail(ErrInvalidState, op, "nothing to undo")
	}
	current, err := c.eng.booking(ctx, op, c.before.ID)
	if err != nil {
		return nil, err
	}
	if current.Status != model.BookingReserved {
		return nil, fail(ErrInvalidState, op, "booking %s is %s", current.ID, current.Status)
	}

	if err := c.eng.charge(ctx, op, c.before.ID, c.refunded); err != nil {
		return nil, err
	}
	restored := c.before
	oldRoom := c.oldRoom
	rooms := []*model.Room{&oldRoom}
	if c.moved {
		newRoom := c.newRoom
		rooms = append(rooms, &newRoom)
	}
	ch := Change{Update: []*model.Booking{&restored}, Rooms: rooms}
	if err := c.eng.commit(ctx, op, ch, c.before.ID, c.refunded); err != nil {
		return nil, err
	}

	out := &Outcome{Booking: restored, Charged: c.refunded}
	c.eng.refund(ctx, op, c.before.ID, c.charged, out)
	out.updated(restored)
	c.done = false
	return out, nil
}
