package booking

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/artin59/3311-Project-sub001/internal/model"
)

// memRepo is an in-memory Repository.
type memRepo struct {
	mu       sync.Mutex
	bookings map[string]model.Booking
	rooms    map[string]model.Room
	applyErr error
	applies  int
}

func newMemRepo() *memRepo {
	return &memRepo{bookings: map[string]model.Booking{}, rooms: map[string]model.Room{}}
}

func (r *memRepo) SaveBooking(_ context.Context, b *model.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bookings[b.ID] = *b
	return nil
}

func (r *memRepo) UpdateBooking(ctx context.Context, b *model.Booking) error {
	return r.SaveBooking(ctx, b)
}

func (r *memRepo) DeleteBooking(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.bookings[id]
	delete(r.bookings, id)
	return ok, nil
}

func (r *memRepo) FindBookingByID(_ context.Context, id string) (*model.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (r *memRepo) filter(keep func(model.Booking) bool) []model.Booking {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Booking
	for _, b := range r.bookings {
		if keep(b) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].StartTime < out[j].StartTime
	})
	return out
}

func (r *memRepo) FindBookingsByUser(_ context.Context, userID string) ([]model.Booking, error) {
	return r.filter(func(b model.Booking) bool { return b.UserID == userID }), nil
}

func (r *memRepo) FindBookingsByRoom(_ context.Context, room string) ([]model.Booking, error) {
	return r.filter(func(b model.Booking) bool { return b.RoomNumber == room }), nil
}

func (r *memRepo) FindBookingsByRoomDate(_ context.Context, room, date string) ([]model.Booking, error) {
	return r.filter(func(b model.Booking) bool { return b.RoomNumber == room && b.Date == date }), nil
}

func (r *memRepo) FindBookingsByStatus(_ context.Context, status model.BookingStatus) ([]model.Booking, error) {
	return r.filter(func(b model.Booking) bool { return b.Status == status }), nil
}

func (r *memRepo) SaveRoom(_ context.Context, room *model.Room) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rooms[room.Number] = *room
	return nil
}

func (r *memRepo) UpdateRoom(ctx context.Context, room *model.Room) error {
	return r.SaveRoom(ctx, room)
}

func (r *memRepo) FindRoomByID(_ context.Context, id string) (*model.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, room := range r.rooms {
		if room.ID == id {
			return &room, nil
		}
	}
	return nil, nil
}

func (r *memRepo) FindRoomByNumber(_ context.Context, number string) (*model.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[number]
	if !ok {
		return nil, nil
	}
	return &room, nil
}

func (r *memRepo) FindAllRooms(_ context.Context) ([]model.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Room
	for _, room := range r.rooms {
		out = append(out, room)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (r *memRepo) Apply(_ context.Context, ch Change) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.applyErr != nil {
		return r.applyErr
	}
	r.applies++
	for _, id := range ch.Delete {
		delete(r.bookings, id)
	}
	for _, b := range ch.Save {
		r.bookings[b.ID] = *b
	}
	for _, b := range ch.Update {
		r.bookings[b.ID] = *b
	}
	for _, room := range ch.Rooms {
		r.rooms[room.Number] = *room
	}
	return nil
}

func (r *memRepo) room(t *testing.T, number string) model.Room {
	t.Helper()
	room, ok := r.rooms[number]
	require.True(t, ok, "room %s missing", number)
	return room
}

func (r *memRepo) booking(t *testing.T, id string) model.Booking {
	t.Helper()
	b, ok := r.bookings[id]
	require.True(t, ok, "booking %s missing", id)
	return b
}

// fakeGateway records every payment and can be told to decline.
type fakeGateway struct {
	mu         sync.Mutex
	charges    []int64
	refunds    []int64
	failCharge bool
	failRefund bool
}

func (g *fakeGateway) Charge(_ context.Context, _ string, amount int64) error {
	if amount <= 0 {
		return nil
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failCharge {
		return errors.New("card declined")
	}
	g.charges = append(g.charges, amount)
	return nil
}

func (g *fakeGateway) Refund(_ context.Context, _ string, amount int64) error {
	if amount <= 0 {
		return nil
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failRefund {
		return errors.New("gateway unavailable")
	}
	g.refunds = append(g.refunds, amount)
	return nil
}

// net is what the gateway holds for the customer.
func (g *fakeGateway) net() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	var total int64
	for _, c := range g.charges {
		total += c
	}
	for _, r := range g.refunds {
		total -= r
	}
	return total
}

type fakeAccounts map[string]*model.Account

func (f fakeAccounts) FindAccount(_ context.Context, id string) (*model.Account, error) {
	return f[id], nil
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// recorder is an Observer that keeps every event it sees.
type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) add(e string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) OnBookingCreated(b model.Booking) { r.add("created:" + b.ID) }
func (r *recorder) OnBookingUpdated(b model.Booking) { r.add(fmt.Sprintf("updated:%s:%s", b.ID, b.Status)) }
func (r *recorder) OnBookingCancelled(id string) { r.add("cancelled:" + id) }

func (r *recorder) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

// The fixture clock reads 2025-03-10 08:00 UTC; bookings are made for 2025-03-11.
const testDate = "2025-03-11"

type fixture struct {
	repo     *memRepo
	gateway  *fakeGateway
	clock    *testClock
	rec      *recorder
	ctrl     *Controller
	accounts fakeAccounts
}

func newFixture(t *testing.T, rooms ...string) *fixture {
	t.Helper()
	f := &fixture{
		repo:    newMemRepo(),
		gateway: &fakeGateway{},
		clock:   &testClock{now: time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)},
		rec:     &recorder{},
		accounts: fakeAccounts{
			"alice": {ID: "alice", Category: model.CategoryStudent},
			"bob":   {ID: "bob", Category: "Faculty"},
			"carol": {ID: "carol", Category: "External Partner"},
		},
	}
	for _, n := range rooms {
		f.repo.rooms[n] = model.Room{ID: "id-" + n, Number: n, Building: "Main", Capacity: 4, AdminStatus: model.AdminEnabled, State: model.RoomAvailable}
	}
	seq := 0
	f.ctrl = NewController(Deps{
		Repository: f.repo,
		Accounts:   f.accounts,
		Payments:   f.gateway,
		Clock:      f.clock,
		Location:   time.UTC,
		Logger:     log.New(io.Discard, "", 0),
		NewID: func() string {
			seq++
			return fmt.Sprintf("b%d", seq)
		},
	})
	f.ctrl.Observers().Subscribe(f.rec)
	return f
}

func (f *fixture) create(t *testing.T, user, room, start, end string) model.Booking {
	t.Helper()
	out, err := f.ctrl.CreateBooking(context.Background(), CreateRequest{
		UserID: user, RoomNumber: room, Date: testDate, StartTime: start, EndTime: end,
	})
	require.NoError(t, err)
	return out.Booking
}
