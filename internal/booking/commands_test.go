package booking

import (
	"context"
	"errors"
	"maps"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artin59/3311-Project-sub001/internal/model"
)

func TestCreateBooking(t *testing.T) {
	f := newFixture(t, "101")
	out, err := f.ctrl.CreateBooking(context.Background(), CreateRequest{
		UserID: "alice", RoomNumber: "101", Date: testDate, StartTime: "10:00", EndTime: "12:00",
	})
	require.NoError(t, err)

	b := out.Booking
	assert.Equal(t, model.BookingReserved, b.Status)
	assert.Equal(t, 2, b.Hours)
	assert.Equal(t, int64(20), b.HourlyRate)
	assert.Equal(t, int64(40), b.TotalCost)
	assert.Equal(t, int64(40), out.Charged)
	assert.Equal(t, []int64{40}, f.gateway.charges)

	room := f.repo.room(t, "101")
	assert.Equal(t, model.RoomReserved, room.State)
	assert.Equal(t, b.Reference(), room.Active)
	assert.Equal(t, b, f.repo.booking(t, b.ID))
	assert.Equal(t, []string{"created:" + b.ID}, f.rec.list())
}

func TestCreateBooking_SlotString(t *testing.T) {
	f := newFixture(t, "101")
	out, err := f.ctrl.CreateBooking(context.Background(), CreateRequest{
		UserID: "alice", RoomNumber: "101", Date: testDate, Slot: "9:00 to 10:30",
	})
	require.NoError(t, err)
	assert.Equal(t, "09:00", out.Booking.StartTime)
	assert.Equal(t, "10:30", out.Booking.EndTime)
	assert.Equal(t, 2, out.Booking.Hours)
}

func TestCreateBooking_Rejected(t *testing.T) {
	testCases := []struct {
		name    string
		prepare func(f *fixture)
		req     CreateRequest
		kind    error
	}{
		{
			name: "overlapping slot",
			prepare: func(f *fixture) {
				f.repo.bookings["x"] = model.Booking{ID: "x", RoomNumber: "101", Date: testDate, StartTime: "16:00", EndTime: "17:00", Status: model.BookingReserved}
			},
			req:  CreateRequest{UserID: "alice", RoomNumber: "101", Date: testDate, StartTime: "16:30", EndTime: "17:30"},
			kind: ErrTimeConflict,
		},
		{
			name: "slot already started",
			req:  CreateRequest{UserID: "alice", RoomNumber: "101", Date: "2025-03-10", StartTime: "07:00", EndTime: "09:00"},
			kind: ErrInvalidState,
		},
		{
			name: "unknown room",
			req:  CreateRequest{UserID: "alice", RoomNumber: "999", Date: testDate, StartTime: "10:00", EndTime: "11:00"},
			kind: ErrNotFound,
		},
		{
			name: "room under maintenance",
			prepare: func(f *fixture) {
				r := f.repo.rooms["101"]
				r.State = model.RoomMaintenance
				f.repo.rooms["101"] = r
			},
			req:  CreateRequest{UserID: "alice", RoomNumber: "101", Date: testDate, StartTime: "10:00", EndTime: "11:00"},
			kind: ErrInvalidState,
		},
		{
			name: "room disabled",
			prepare: func(f *fixture) {
				r := f.repo.rooms["101"]
				r.AdminStatus = model.AdminDisabled
				f.repo.rooms["101"] = r
			},
			req:  CreateRequest{UserID: "alice", RoomNumber: "101", Date: testDate, StartTime: "10:00", EndTime: "11:00"},
			kind: ErrInvalidState,
		},
		{
			name: "end before start",
			req:  CreateRequest{UserID: "alice", RoomNumber: "101", Date: testDate, StartTime: "11:00", EndTime: "10:00"},
			kind: ErrInvalidRequest,
		},
		{
			name: "bad date",
			req:  CreateRequest{UserID: "alice", RoomNumber: "101", Date: "11/03/2025", StartTime: "10:00", EndTime: "11:00"},
			kind: ErrInvalidRequest,
		},
		{
			name: "missing user",
			req:  CreateRequest{RoomNumber: "101", Date: testDate, StartTime: "10:00", EndTime: "11:00"},
			kind: ErrInvalidRequest,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, "101")
			if tc.prepare != nil {
				tc.prepare(f)
			}
			before := maps.Clone(f.repo.bookings)

			_, err := f.ctrl.CreateBooking(context.Background(), tc.req)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.kind), "got %v", err)

			var bErr *Error
			require.True(t, errors.As(err, &bErr))
			assert.Equal(t, "create booking", bErr.Op)

			assert.Equal(t, before, f.repo.bookings)
			assert.Empty(t, f.gateway.charges)
			assert.Empty(t, f.rec.list())
		})
	}
}

func TestCreateBooking_PaymentFailure(t *testing.T) {
	f := newFixture(t, "101")
	f.gateway.failCharge = true

	_, err := f.ctrl.CreateBooking(context.Background(), CreateRequest{
		UserID: "alice", RoomNumber: "101", Date: testDate, StartTime: "10:00", EndTime: "11:00",
	})
	require.ErrorIs(t, err, ErrPaymentFailure)
	assert.Empty(t, f.repo.bookings)
	assert.Equal(t, model.RoomAvailable, f.repo.room(t, "101").State)
	assert.Empty(t, f.rec.list())
}

func TestCreateBooking_PersistFailureRefundsCharge(t *testing.T) {
	f := newFixture(t, "101")
	f.repo.applyErr = errors.New("disk full")

	_, err := f.ctrl.CreateBooking(context.Background(), CreateRequest{
		UserID: "bob", RoomNumber: "101", Date: testDate, StartTime: "10:00", EndTime: "11:00",
	})
	require.Error(t, err)
	assert.Equal(t, []int64{30}, f.gateway.charges)
	assert.Equal(t, []int64{30}, f.gateway.refunds)
	assert.Zero(t, f.gateway.net())
}

func TestCreateBooking_EarliestBookingHoldsRoom(t *testing.T) {
	f := newFixture(t, "101")
	late := f.create(t, "alice", "101", "14:00", "15:00")
	assert.Equal(t, late.ID, f.repo.room(t, "101").Active.BookingID)

	early := f.create(t, "bob", "101", "10:00", "11:00")
	room := f.repo.room(t, "101")
	assert.Equal(t, model.RoomReserved, room.State)
	assert.Equal(t, early.ID, room.Active.BookingID)

	_, err := f.ctrl.CancelBooking(context.Background(), early.ID)
	require.NoError(t, err)
	room = f.repo.room(t, "101")
	assert.Equal(t, model.RoomReserved, room.State)
	assert.Equal(t, late.Reference(), room.Active)
}

func TestCancelBooking(t *testing.T) {
	f := newFixture(t, "R")
	b := f.create(t, "carol", "R", "16:00", "18:00")
	require.Equal(t, int64(100), b.TotalCost)

	out, err := f.ctrl.CancelBooking(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BookingCancelled, out.Booking.Status)
	assert.Equal(t, b.TotalCost, out.Refunded)
	assert.Equal(t, []int64{100}, f.gateway.refunds)
	assert.Empty(t, out.Warnings)

	room := f.repo.room(t, "R")
	assert.Equal(t, model.RoomAvailable, room.State)
	assert.True(t, room.Active.Empty())
	assert.NotContains(t, f.repo.bookings, b.ID)
	assert.Equal(t, []string{"created:" + b.ID, "cancelled:" + b.ID}, f.rec.list())
}

func TestCancelBooking_IllegalStatus(t *testing.T) {
	for _, status := range []model.BookingStatus{model.BookingInUse, model.BookingCompleted, model.BookingCancelled, model.BookingNoShow} {
		t.Run(string(status), func(t *testing.T) {
			f := newFixture(t, "R")
			b := f.create(t, "alice", "R", "10:00", "11:00")
			stored := f.repo.bookings[b.ID]
			stored.Status = status
			f.repo.bookings[b.ID] = stored

			_, err := f.ctrl.CancelBooking(context.Background(), b.ID)
			assert.ErrorIs(t, err, ErrInvalidState)
			assert.Empty(t, f.gateway.refunds)
		})
	}
}

func TestCancelBooking_NotFound(t *testing.T) {
	f := newFixture(t, "R")
	_, err := f.ctrl.CancelBooking(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCancelBooking_RefundFailureIsWarning(t *testing.T) {
	f := newFixture(t, "R")
	b := f.create(t, "alice", "R", "10:00", "11:00")
	f.gateway.failRefund = true

	out, err := f.ctrl.CancelBooking(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Zero(t, out.Refunded)
	assert.Len(t, out.Warnings, 1)
	assert.NotContains(t, f.repo.bookings, b.ID)
}

func TestEditBooking_Reprices(t *testing.T) {
	f := newFixture(t, "R")
	b := f.create(t, "alice", "R", "10:00", "11:00")

	out, err := f.ctrl.EditBooking(context.Background(), EditRequest{BookingID: b.ID, EndTime: "13:00"})
	require.NoError(t, err)
	assert.Equal(t, 3, out.Booking.Hours)
	assert.Equal(t, int64(60), out.Booking.TotalCost)
	assert.Equal(t, int64(40), out.Charged)

	out, err = f.ctrl.EditBooking(context.Background(), EditRequest{BookingID: b.ID, StartTime: "12:00", EndTime: "13:00"})
	require.NoError(t, err)
	assert.Equal(t, int64(20), out.Booking.TotalCost)
	assert.Equal(t, int64(40), out.Refunded)

	// the policy rate at edit time applies to the old hours as well
	f.accounts["alice"].Category = model.CategoryFaculty
	out, err = f.ctrl.EditBooking(context.Background(), EditRequest{BookingID: b.ID, StartTime: "12:00", EndTime: "14:00"})
	require.NoError(t, err)
	assert.Equal(t, int64(30), out.Booking.HourlyRate)
	assert.Equal(t, int64(60), out.Booking.TotalCost)
	assert.Equal(t, int64(30), out.Charged)

	stored := f.repo.booking(t, b.ID)
	assert.Equal(t, int64(stored.Hours)*stored.HourlyRate, stored.TotalCost)
	assert.Equal(t, f.repo.room(t, "R").Active, stored.Reference())
}

func TestEditBooking_StartOnlyKeepsLength(t *testing.T) {
	f := newFixture(t, "R")
	b := f.create(t, "alice", "R", "10:00", "11:30")

	out, err := f.ctrl.EditBooking(context.Background(), EditRequest{BookingID: b.ID, StartTime: "14:00"})
	require.NoError(t, err)
	assert.Equal(t, "14:00", out.Booking.StartTime)
	assert.Equal(t, "15:30", out.Booking.EndTime)
}

func TestEditBooking_MoveRoom(t *testing.T) {
	f := newFixture(t, "101", "102")
	moving := f.create(t, "alice", "101", "10:00", "11:00")
	staying := f.create(t, "bob", "101", "15:00", "16:00")

	out, err := f.ctrl.EditBooking(context.Background(), EditRequest{BookingID: moving.ID, RoomNumber: "102"})
	require.NoError(t, err)
	assert.Equal(t, "102", out.Booking.RoomNumber)

	old := f.repo.room(t, "101")
	assert.Equal(t, model.RoomReserved, old.State)
	assert.Equal(t, staying.ID, old.Active.BookingID)

	moved := f.repo.room(t, "102")
	assert.Equal(t, model.RoomReserved, moved.State)
	assert.Equal(t, moving.ID, moved.Active.BookingID)
	assert.ElementsMatch(t, []string{"101", "102"}, f.ctrl.history[len(f.ctrl.history)-1].Rooms())
}

func TestEditBooking_Rejected(t *testing.T) {
	testCases := []struct {
		name    string
		prepare func(t *testing.T, f *fixture, id string)
		req     func(id string) EditRequest
		kind    error
	}{
		{
			name: "overlaps another booking",
			prepare: func(t *testing.T, f *fixture, _ string) {
				f.create(t, "bob", "R", "12:00", "13:00")
			},
			req:  func(id string) EditRequest { return EditRequest{BookingID: id, EndTime: "12:30"} },
			kind: ErrTimeConflict,
		},
		{
			name: "not reserved",
			prepare: func(_ *testing.T, f *fixture, id string) {
				b := f.repo.bookings[id]
				b.Status = model.BookingInUse
				f.repo.bookings[id] = b
			},
			req:  func(id string) EditRequest { return EditRequest{BookingID: id, EndTime: "12:00"} },
			kind: ErrInvalidState,
		},
		{
			name:    "already started",
			prepare: func(_ *testing.T, f *fixture, _ string) { f.clock.advance(26 * time.Hour) },
			req:     func(id string) EditRequest { return EditRequest{BookingID: id, EndTime: "12:00"} },
			kind:    ErrInvalidState,
		},
		{
			name: "new slot in the past",
			req: func(id string) EditRequest {
				return EditRequest{BookingID: id, Date: "2025-03-09"}
			},
			kind: ErrInvalidState,
		},
		{
			name: "target room under maintenance",
			prepare: func(_ *testing.T, f *fixture, _ string) {
				f.repo.rooms["S"] = model.Room{ID: "id-S", Number: "S", AdminStatus: model.AdminEnabled, State: model.RoomMaintenance}
			},
			req:  func(id string) EditRequest { return EditRequest{BookingID: id, RoomNumber: "S"} },
			kind: ErrInvalidState,
		},
		{
			name: "malformed time",
			req:  func(id string) EditRequest { return EditRequest{BookingID: id, EndTime: "25:00"} },
			kind: ErrInvalidRequest,
		},
		{
			name: "unknown booking",
			req:  func(string) EditRequest { return EditRequest{BookingID: "nope", EndTime: "12:00"} },
			kind: ErrNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, "R")
			b := f.create(t, "alice", "R", "10:00", "11:00")
			if tc.prepare != nil {
				tc.prepare(t, f, b.ID)
			}
			stored := f.repo.bookings[b.ID]
			charges := len(f.gateway.charges)

			_, err := f.ctrl.EditBooking(context.Background(), tc.req(b.ID))
			assert.ErrorIs(t, err, tc.kind)
			assert.Equal(t, stored, f.repo.bookings[b.ID])
			assert.Len(t, f.gateway.charges, charges)
		})
	}
}

func TestEditBooking_OverlapWithItselfAllowed(t *testing.T) {
	f := newFixture(t, "R")
	b := f.create(t, "alice", "R", "10:00", "11:00")

	out, err := f.ctrl.EditBooking(context.Background(), EditRequest{BookingID: b.ID, StartTime: "10:30", EndTime: "11:30"})
	require.NoError(t, err)
	assert.Equal(t, "10:30", out.Booking.StartTime)
}

func TestExtendBooking_ChecksOnlyTheAddedWindow(t *testing.T) {
	testCases := []struct {
		name    string
		extra   int
		wantErr error
		end     string
	}{
		{"one hour fits before the next booking", 1, nil, "11:00"},
		{"two hours reach the next booking", 2, ErrTimeConflict, "10:00"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, "R")
			b := f.create(t, "alice", "R", "09:00", "10:00")
			f.create(t, "bob", "R", "11:00", "12:00")

			out, err := f.ctrl.ExtendBooking(context.Background(), b.ID, tc.extra)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, 2, out.Booking.Hours)
				assert.Equal(t, int64(40), out.Booking.TotalCost)
				assert.Equal(t, int64(20), out.Charged)
				assert.Equal(t, out.Booking.Reference(), f.repo.room(t, "R").Active)
			}
			assert.Equal(t, tc.end, f.repo.booking(t, b.ID).EndTime)
		})
	}
}

func TestExtendBooking_Rejected(t *testing.T) {
	testCases := []struct {
		name  string
		start string
		end   string
		extra int
		kind  error
	}{
		{"crosses midnight", "22:00", "23:00", 2, ErrInvalidState},
		{"zero hours", "10:00", "11:00", 0, ErrInvalidRequest},
		{"negative hours", "10:00", "11:00", -1, ErrInvalidRequest},
		{"hours that overflow", "10:00", "11:00", 1 + (1 << 62), ErrInvalidState},
		{"one hour too many", "10:00", "11:00", 14, ErrInvalidState},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, "R")
			b := f.create(t, "alice", "R", tc.start, tc.end)
			room := f.repo.room(t, "R")
			_, err := f.ctrl.ExtendBooking(context.Background(), b.ID, tc.extra)
			assert.ErrorIs(t, err, tc.kind)
			assert.Equal(t, b, f.repo.booking(t, b.ID))
			assert.Equal(t, room, f.repo.room(t, "R"))
			assert.Equal(t, []int64{20}, f.gateway.charges)
		})
	}
}

func TestExtendAndEdit_ChargeFailureLeavesNoTrace(t *testing.T) {
	testCases := []struct {
		name string
		run  func(ctx context.Context, f *fixture, id string) error
	}{
		{
			name: "extend",
			run: func(ctx context.Context, f *fixture, id string) error {
				_, err := f.ctrl.ExtendBooking(ctx, id, 1)
				return err
			},
		},
		{
			name: "edit to a longer slot",
			run: func(ctx context.Context, f *fixture, id string) error {
				_, err := f.ctrl.EditBooking(ctx, EditRequest{BookingID: id, EndTime: "12:00"})
				return err
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			f := newFixture(t, "R")
			b := f.create(t, "alice", "R", "10:00", "11:00")
			room := f.repo.room(t, "R")
			events := f.rec.list()
			history, err := f.ctrl.HistoryLen(ctx)
			require.NoError(t, err)

			f.gateway.failCharge = true
			err = tc.run(ctx, f, b.ID)
			assert.ErrorIs(t, err, ErrPaymentFailure)

			assert.Equal(t, b, f.repo.booking(t, b.ID))
			assert.Equal(t, room, f.repo.room(t, "R"))
			assert.Equal(t, events, f.rec.list())
			assert.Equal(t, int64(20), f.gateway.net())
			n, err := f.ctrl.HistoryLen(ctx)
			require.NoError(t, err)
			assert.Equal(t, history, n)
		})
	}
}

// heldGateway tracks what is held per reference, like the payment ledger.
type heldGateway struct {
	*fakeGateway
	held map[string]int64
}

func (g *heldGateway) Charge(ctx context.Context, ref string, amount int64) error {
	if err := g.fakeGateway.Charge(ctx, ref, amount); err != nil {
		return err
	}
	if amount > 0 {
		g.held[ref] += amount
	}
	return nil
}

func (g *heldGateway) Refund(ctx context.Context, ref string, amount int64) error {
	if amount > g.held[ref] {
		return errors.New("refund exceeds the amount held")
	}
	if err := g.fakeGateway.Refund(ctx, ref, amount); err != nil {
		return err
	}
	if amount > 0 {
		g.held[ref] -= amount
	}
	return nil
}

func (g *heldGateway) Balance(_ context.Context, ref string) (int64, error) {
	return g.held[ref], nil
}

func TestCancel_RefundCappedAtAmountHeld(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "R")
	gw := &heldGateway{fakeGateway: f.gateway, held: map[string]int64{}}
	f.ctrl.eng.payments = gw

	b := f.create(t, "alice", "R", "10:00", "11:00")
	// the account moves to a dearer category after booking
	f.accounts["alice"].Category = model.CategoryPartner
	ext, err := f.ctrl.ExtendBooking(ctx, b.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(50), ext.Charged)
	assert.Equal(t, int64(100), ext.Booking.TotalCost)

	out, err := f.ctrl.CancelBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(70), out.Refunded)
	require.Len(t, out.Warnings, 1)
	assert.Contains(t, out.Warnings[0], "capped at the 70 held")
	assert.Zero(t, gw.held[b.ID])
	assert.Zero(t, f.gateway.net())
}

func TestUndoFor_OnlyOwnLatestChange(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "R")
	mine := f.create(t, "alice", "R", "09:00", "10:00")
	theirs := f.create(t, "bob", "R", "10:00", "11:00")

	_, err := f.ctrl.UndoFor(ctx, "alice")
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.Equal(t, theirs, f.repo.booking(t, theirs.ID))

	_, err = f.ctrl.UndoFor(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidRequest)

	out, err := f.ctrl.UndoFor(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, theirs.ID, out.Booking.ID)

	out, err = f.ctrl.UndoFor(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, mine.ID, out.Booking.ID)
}

func TestExtendBooking_UntilMidnight(t *testing.T) {
	f := newFixture(t, "R")
	b := f.create(t, "alice", "R", "22:00", "23:00")
	out, err := f.ctrl.ExtendBooking(context.Background(), b.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, "24:00", out.Booking.EndTime)

	_, err = f.ctrl.ExtendBooking(context.Background(), b.ID, 1)
	require.ErrorIs(t, err, ErrInvalidState)
	assert.Contains(t, err.Error(), "crosses midnight")
}

func TestUndo_RestoresPreState(t *testing.T) {
	testCases := []struct {
		name string
		run  func(f *fixture, id string) error
	}{
		{"create", func(f *fixture, _ string) error {
			_, err := f.ctrl.CreateBooking(context.Background(), CreateRequest{UserID: "bob", RoomNumber: "R", Date: testDate, StartTime: "08:00", EndTime: "09:00"})
			return err
		}},
		{"cancel", func(f *fixture, id string) error {
			_, err := f.ctrl.CancelBooking(context.Background(), id)
			return err
		}},
		{"edit longer", func(f *fixture, id string) error {
			_, err := f.ctrl.EditBooking(context.Background(), EditRequest{BookingID: id, EndTime: "13:00"})
			return err
		}},
		{"edit shorter", func(f *fixture, id string) error {
			_, err := f.ctrl.EditBooking(context.Background(), EditRequest{BookingID: id, StartTime: "10:30", EndTime: "11:00"})
			return err
		}},
		{"edit into another room", func(f *fixture, id string) error {
			_, err := f.ctrl.EditBooking(context.Background(), EditRequest{BookingID: id, RoomNumber: "S", Date: "2025-03-12"})
			return err
		}},
		{"extend", func(f *fixture, id string) error {
			_, err := f.ctrl.ExtendBooking(context.Background(), id, 2)
			return err
		}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, "R", "S")
			b := f.create(t, "alice", "R", "10:00", "12:00")
			f.create(t, "carol", "S", "15:00", "16:00")

			bookings := maps.Clone(f.repo.bookings)
			rooms := maps.Clone(f.repo.rooms)
			net := f.gateway.net()

			require.NoError(t, tc.run(f, b.ID))
			_, err := f.ctrl.Undo(context.Background())
			require.NoError(t, err)

			assert.Equal(t, bookings, f.repo.bookings)
			assert.Equal(t, rooms, f.repo.rooms)
			assert.Equal(t, net, f.gateway.net())
		})
	}
}

func TestUndo_IsLIFOAndOnce(t *testing.T) {
	f := newFixture(t, "R")
	first := f.create(t, "alice", "R", "10:00", "11:00")
	second := f.create(t, "alice", "R", "12:00", "13:00")

	out, err := f.ctrl.Undo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, second.ID, out.Booking.ID)
	assert.Contains(t, f.repo.bookings, first.ID)
	assert.NotContains(t, f.repo.bookings, second.ID)

	_, err = f.ctrl.Undo(context.Background())
	require.NoError(t, err)
	assert.Empty(t, f.repo.bookings)
	assert.Equal(t, model.RoomAvailable, f.repo.room(t, "R").State)

	_, err = f.ctrl.Undo(context.Background())
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.Zero(t, f.gateway.net())
}

func TestUndo_CancelNotifiesCreated(t *testing.T) {
	f := newFixture(t, "R")
	b := f.create(t, "alice", "R", "10:00", "11:00")
	_, err := f.ctrl.CancelBooking(context.Background(), b.ID)
	require.NoError(t, err)
	_, err = f.ctrl.Undo(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"created:" + b.ID, "cancelled:" + b.ID, "created:" + b.ID}, f.rec.list())
}

func TestUndo_CancelRechargeFailureKeepsBookingCancelled(t *testing.T) {
	f := newFixture(t, "R")
	b := f.create(t, "alice", "R", "10:00", "11:00")
	_, err := f.ctrl.CancelBooking(context.Background(), b.ID)
	require.NoError(t, err)

	f.gateway.failCharge = true
	_, err = f.ctrl.Undo(context.Background())
	assert.ErrorIs(t, err, ErrPaymentFailure)
	assert.NotContains(t, f.repo.bookings, b.ID)

	f.gateway.failCharge = false
	_, err = f.ctrl.Undo(context.Background())
	require.NoError(t, err)
	assert.Contains(t, f.repo.bookings, b.ID)
}
