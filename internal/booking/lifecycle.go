package booking

import (
	"context"
	"strings"

	"github.com/artin59/3311-Project-sub001/internal/model"
)

// NewRoom describes a room to register.
type NewRoom struct {
	Number   string `json:"roomNumber"`
	Building string `json:"building"`
	Capacity int    `json:"capacity"`
}

// CheckIn moves a reserved booking and its room into use.
func (c *Controller) CheckIn(ctx context.Context, bookingID string) (*Outcome, error) {
	const op = "check in"
	return c.run(ctx, op, func(ctx context.Context) (*Outcome, error) {
		b, room, err := c.heldBooking(ctx, op, bookingID, model.BookingReserved)
		if err != nil {
			return nil, err
		}
		if _, err := applyEvent(room, EventCheckIn, model.ActiveBooking{}); err != nil {
			return nil, err
		}
		b.Status = model.BookingInUse
		if err := c.eng.commit(ctx, op, Change{Update: []*model.Booking{b}, Rooms: []*model.Room{room}}, "", 0); err != nil {
			return nil, err
		}
		c.forgetRoom(room.Number)
		out := &Outcome{Booking: *b, Room: room}
		out.updated(*b)
		return out, nil
	})
}

// CheckOut completes a booking in use and hands the room to the next
// pending booking.
func (c *Controller) CheckOut(ctx context.Context, bookingID string) (*Outcome, error) {
	const op = "check out"
	return c.run(ctx, op, func(ctx context.Context) (*Outcome, error) {
		b, room, err := c.heldBooking(ctx, op, bookingID, model.BookingInUse)
		if err != nil {
			return nil, err
		}
		if _, err := applyEvent(room, EventCheckOut, model.ActiveBooking{}); err != nil {
			return nil, err
		}
		b.Status = model.BookingCompleted
		if err := c.eng.restage(ctx, room, b.ID, map[string]*model.Booking{b.ID: b}); err != nil {
			return nil, err
		}
		if err := c.eng.commit(ctx, op, Change{Update: []*model.Booking{b}, Rooms: []*model.Room{room}}, "", 0); err != nil {
			return nil, err
		}
		c.forgetRoom(room.Number)
		out := &Outcome{Booking: *b, Room: room}
		out.updated(*b)
		return out, nil
	})
}

func (c *Controller) heldBooking(ctx context.Context, op, bookingID string, want model.BookingStatus) (*model.Booking, *model.Room, error) {
	b, err := c.eng.booking(ctx, op, bookingID)
	if err != nil {
		return nil, nil, err
	}
	if b.Status != want {
		return nil, nil, fail(ErrInvalidState, op, "booking %s is %s", b.ID, b.Status)
	}
	room, err := c.eng.room(ctx, op, b.RoomNumber)
	if err != nil {
		return nil, nil, err
	}
	if room.Active.BookingID != b.ID {
		return nil, nil, fail(ErrInvalidState, op, "room %s is held by another booking", room.Number)
	}
	return b, room, nil
}

// SweepNoShows marks reserved bookings whose grace period has run out as
// no-shows and releases their rooms. The deposit is not refunded. It
// returns how many bookings were marked.
func (c *Controller) SweepNoShows(ctx context.Context) (int, error) {
	const op = "no-show sweep"
	out, err := c.run(ctx, op, func(ctx context.Context) (*Outcome, error) {
		out := &Outcome{}
		rooms, err := c.eng.repo.FindAllRooms(ctx)
		if err != nil {
			return nil, err
		}
		for i := range rooms {
			if rooms[i].State == model.RoomNoShow {
				if err := c.releaseNoShow(ctx, op, &rooms[i]); err != nil {
					return nil, err
				}
			}
		}

		reserved, err := c.eng.repo.FindBookingsByStatus(ctx, model.BookingReserved)
		if err != nil {
			return nil, err
		}
		now := c.eng.now()
		for i := range reserved {
			b := reserved[i]
			slot, err := recordRange(b)
			if err != nil {
				c.eng.logger.Printf("Warning: %s: skipping unreadable booking: %v", op, err)
				continue
			}
			startAt, err := c.eng.at(b.Date, slot.Start)
			if err != nil {
				c.eng.logger.Printf("Warning: %s: skipping booking %s: %v", op, b.ID, err)
				continue
			}
			if now.Before(startAt.Add(c.grace)) {
				continue
			}
			if err := c.markNoShow(ctx, op, &b); err != nil {
				return nil, err
			}
			out.updated(b)
		}
		return out, nil
	})
	if err != nil {
		return 0, err
	}
	return len(out.notices), nil
}

func (c *Controller) markNoShow(ctx context.Context, op string, b *model.Booking) error {
	b.Status = model.BookingNoShow
	room, err := c.eng.repo.FindRoomByNumber(ctx, b.RoomNumber)
	if err != nil {
		return err
	}
	c.forgetRoom(b.RoomNumber)
	if room == nil || room.Active.BookingID != b.ID || room.State != model.RoomReserved {
		return c.eng.commit(ctx, op, Change{Update: []*model.Booking{b}}, "", 0)
	}
	if _, err := applyEvent(room, EventNoShowTimeout, model.ActiveBooking{}); err != nil {
		return err
	}
	if err := c.eng.commit(ctx, op, Change{Update: []*model.Booking{b}, Rooms: []*model.Room{room}}, "", 0); err != nil {
		return err
	}
	c.eng.logger.Printf("Booking %s in room %s marked as no-show", b.ID, room.Number)
	return c.releaseNoShow(ctx, op, room)
}

func (c *Controller) releaseNoShow(ctx context.Context, op string, room *model.Room) error {
	if _, err := applyEvent(room, EventHandle, model.ActiveBooking{}); err != nil {
		return err
	}
	pending, err := c.eng.pending(ctx, room.Number, nil)
	if err != nil {
		return err
	}
	if err := settleHolder(room, pending); err != nil {
		return err
	}
	c.forgetRoom(room.Number)
	return c.eng.commit(ctx, op, Change{Rooms: []*model.Room{room}}, "", 0)
}

// SetMaintenance takes a room out of service and force-cancels the
// booking it held, refunding it.
func (c *Controller) SetMaintenance(ctx context.Context, number string) (*Outcome, error) {
	const op = "set maintenance"
	return c.run(ctx, op, func(ctx context.Context) (*Outcome, error) {
		room, err := c.eng.room(ctx, op, number)
		if err != nil {
			return nil, err
		}
		held := room.Active
		eff, err := applyEvent(room, EventSetMaintenance, model.ActiveBooking{})
		if err != nil {
			return nil, err
		}
		ch := Change{Rooms: []*model.Room{room}}
		var victim *model.Booking
		if eff.ForceCancel && !held.Empty() {
			if victim, err = c.eng.repo.FindBookingByID(ctx, held.BookingID); err != nil {
				return nil, err
			}
			if victim != nil {
				ch.Delete = []string{victim.ID}
			}
		}
		if err := c.eng.commit(ctx, op, ch, "", 0); err != nil {
			return nil, err
		}
		c.forgetRoom(room.Number)

		out := &Outcome{Room: room}
		if victim != nil {
			out.Booking = *victim
			out.Booking.Status = model.BookingCancelled
			c.eng.refund(ctx, op, victim.ID, victim.TotalCost, out)
			out.cancelled(victim.ID)
		}
		return out, nil
	})
}

// ClearMaintenance returns a room to service.
func (c *Controller) ClearMaintenance(ctx context.Context, number string) (*Outcome, error) {
	const op = "clear maintenance"
	return c.run(ctx, op, func(ctx context.Context) (*Outcome, error) {
		room, err := c.eng.room(ctx, op, number)
		if err != nil {
			return nil, err
		}
		if _, err := applyEvent(room, EventClearMaintenance, model.ActiveBooking{}); err != nil {
			return nil, err
		}
		pending, err := c.eng.pending(ctx, room.Number, nil)
		if err != nil {
			return nil, err
		}
		if err := settleHolder(room, pending); err != nil {
			return nil, err
		}
		if err := c.eng.commit(ctx, op, Change{Rooms: []*model.Room{room}}, "", 0); err != nil {
			return nil, err
		}
		c.forgetRoom(room.Number)
		return &Outcome{Room: room}, nil
	})
}

// SetRoomStatus enables or disables a room for new bookings.
func (c *Controller) SetRoomStatus(ctx context.Context, number string, status model.AdminStatus) (*model.Room, error) {
	const op = "set room status"
	out, err := c.run(ctx, op, func(ctx context.Context) (*Outcome, error) {
		if status != model.AdminEnabled && status != model.AdminDisabled {
			return nil, fail(ErrInvalidRequest, op, "unknown status %q", status)
		}
		room, err := c.eng.room(ctx, op, number)
		if err != nil {
			return nil, err
		}
		room.AdminStatus = status
		if err := c.eng.commit(ctx, op, Change{Rooms: []*model.Room{room}}, "", 0); err != nil {
			return nil, err
		}
		c.forgetRoom(room.Number)
		return &Outcome{Room: room}, nil
	})
	if err != nil {
		return nil, err
	}
	return out.Room, nil
}

// AddRoom registers a new, enabled and available room.
func (c *Controller) AddRoom(ctx context.Context, nr NewRoom) (*model.Room, error) {
	const op = "add room"
	out, err := c.run(ctx, op, func(ctx context.Context) (*Outcome, error) {
		number := strings.TrimSpace(nr.Number)
		if number == "" {
			return nil, fail(ErrInvalidRequest, op, "room number is required")
		}
		if nr.Capacity < 1 {
			return nil, fail(ErrInvalidRequest, op, "capacity must be positive, got %d", nr.Capacity)
		}
		existing, err := c.eng.repo.FindRoomByNumber(ctx, number)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, fail(ErrInvalidState, op, "room %s already exists", number)
		}
		room := &model.Room{
			ID:          c.eng.newID(),
			Number:      number,
			Building:    strings.TrimSpace(nr.Building),
			Capacity:    nr.Capacity,
			AdminStatus: model.AdminEnabled,
			State:       model.RoomAvailable,
		}
		if err := c.eng.repo.SaveRoom(ctx, room); err != nil {
			return nil, err
		}
		return &Outcome{Room: room}, nil
	})
	if err != nil {
		return nil, err
	}
	return out.Room, nil
}
