package model

import "time"

// BookingStatus is the lifecycle status of a booking.
type BookingStatus string

const (
	BookingReserved  BookingStatus = "reserved"
	BookingInUse     BookingStatus = "in_use"
	BookingCancelled BookingStatus = "cancelled"
	BookingCompleted BookingStatus = "completed"
	BookingNoShow    BookingStatus = "no_show"
)

// Active reports whether a booking in this status still occupies its slot.
func (s BookingStatus) Active() bool {
	return s == BookingReserved || s == BookingInUse
}

// Booking is a reservation of one room for one time slot on one date.
// Date is YYYY-MM-DD, StartTime and EndTime are HH:MM in the service timezone.
type Booking struct {
	ID         string        `gorm:"primaryKey;size:36" json:"id"`
	UserID     string        `gorm:"index;size:64;not null" json:"userId"`
	RoomNumber string        `gorm:"index:idx_booking_room_date;size:32;not null" json:"roomNumber"`
	Date       string        `gorm:"index:idx_booking_room_date;size:10;not null" json:"date"`
	StartTime  string        `gorm:"size:5;not null" json:"startTime"`
	EndTime    string        `gorm:"size:5" json:"endTime"`
	Hours      int           `gorm:"not null" json:"hours"`
	HourlyRate int64         `gorm:"not null" json:"hourlyRate"`
	TotalCost  int64         `gorm:"not null" json:"totalCost"`
	Status     BookingStatus `gorm:"index;size:16;not null" json:"status"`
	CreatedAt  time.Time     `gorm:"not null" json:"createdAt"`
}

// Reference builds the room-side pointer for this booking.
func (b Booking) Reference() ActiveBooking {
	return ActiveBooking{
		BookingID: b.ID,
		UserID:    b.UserID,
		Date:      b.Date,
		StartTime: b.StartTime,
		EndTime:   b.EndTime,
	}
}
