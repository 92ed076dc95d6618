package booking

import (
	"context"
	"fmt"
	"log"

	"github.com/artin59/3311-Project-sub001/internal/model"
)

// BookingFinder is the slice of the Repository the conflict detector reads.
type BookingFinder interface {
	FindBookingsByRoomDate(ctx context.Context, roomNumber, date string) ([]model.Booking, error)
}

// ConflictDetector decides whether a candidate slot overlaps any other
// active booking of the same room on the same date.
type ConflictDetector struct {
	bookings BookingFinder
}

// NewConflictDetector creates a detector reading from bookings.
func NewConflictDetector(bookings BookingFinder) *ConflictDetector {
	return &ConflictDetector{bookings: bookings}
}

// FindConflict returns the first active booking whose slot overlaps slot,
// skipping excludeID. A stored booking whose times cannot be read is
// reported as a conflict.
func (d *ConflictDetector) FindConflict(ctx context.Context, roomNumber, date string, slot TimeRange, excludeID string) (*model.Booking, error) {
	existing, err := d.bookings.FindBookingsByRoomDate(ctx, roomNumber, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load bookings for room %s on %s: %w", roomNumber, date, err)
	}
	for i := range existing {
		b := existing[i]
		if b.ID == excludeID || !b.Status.Active() {
			continue
		}
		other, err := recordRange(b)
		if err != nil {
			log.Printf("Warning: treating unreadable booking as conflicting: %v", err)
			return &b, nil
		}
		if slot.Overlaps(other) {
			return &b, nil
		}
	}
	return nil, nil
}

// HasConflict reports whether FindConflict finds anything.
func (d *ConflictDetector) HasConflict(ctx context.Context, roomNumber, date string, slot TimeRange, excludeID string) (bool, error) {
	b, err := d.FindConflict(ctx, roomNumber, date, slot, excludeID)
	if err != nil {
		return true, err
	}
	return b != nil, nil
}
