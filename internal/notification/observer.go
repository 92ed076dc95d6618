package notification

import (
	"fmt"
	"log"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/artin59/3311-Project-sub001/internal/model"
)

// Dispatcher queues a notification job.
type Dispatcher interface {
	Dispatch(job Job) bool
}

// PushObserver turns booking events into push notifications for the
// booking's owner. Cancellation events only carry the booking id, so the
// owner of every booking seen is remembered for a while.
type PushObserver struct {
	jobs   Dispatcher
	owners *cache.Cache
}

func NewPushObserver(jobs Dispatcher, ownerTTL time.Duration) *PushObserver {
	return &PushObserver{
		jobs:   jobs,
		owners: cache.New(ownerTTL, 2*ownerTTL),
	}
}

func (o *PushObserver) OnBookingCreated(b model.Booking) {
	o.owners.Set(b.ID, b.UserID, cache.DefaultExpiration)
	o.jobs.Dispatch(Job{
		UserID:  b.UserID,
		Message: fmt.Sprintf("room %s is booked for %s %s-%s", b.RoomNumber, b.Date, b.StartTime, b.EndTime),
	})
}

func (o *PushObserver) OnBookingUpdated(b model.Booking) {
	o.owners.Set(b.ID, b.UserID, cache.DefaultExpiration)
	var msg string
	switch b.Status {
	case model.BookingInUse:
		msg = fmt.Sprintf("you are checked in to room %s until %s", b.RoomNumber, b.EndTime)
	case model.BookingCompleted:
		msg = fmt.Sprintf("you are checked out of room %s", b.RoomNumber)
	case model.BookingNoShow:
		msg = fmt.Sprintf("your booking of room %s at %s was released as a no-show", b.RoomNumber, b.StartTime)
	default:
		msg = fmt.Sprintf("your booking is now room %s on %s %s-%s", b.RoomNumber, b.Date, b.StartTime, b.EndTime)
	}
	o.jobs.Dispatch(Job{UserID: b.UserID, Message: msg})
}

func (o *PushObserver) OnBookingCancelled(id string) {
	owner, ok := o.owners.Get(id)
	if !ok {
		log.Printf("No owner cached for cancelled booking %s; skipping notification", id)
		return
	}
	o.owners.Delete(id)
	o.jobs.Dispatch(Job{UserID: owner.(string), Message: "your booking was cancelled and refunded"})
}

// Remember records the owner of a booking created before this process started.
func (o *PushObserver) Remember(b model.Booking) {
	o.owners.Set(b.ID, b.UserID, cache.DefaultExpiration)
}
