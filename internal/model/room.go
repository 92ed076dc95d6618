package model

// RoomState is the lifecycle state of a room.
type RoomState string

const (
	RoomAvailable   RoomState = "available"
	RoomReserved    RoomState = "reserved"
	RoomInUse       RoomState = "in_use"
	RoomMaintenance RoomState = "maintenance"
	RoomNoShow      RoomState = "no_show"
)

// AdminStatus is the administrative switch that takes a room out of circulation.
type AdminStatus string

const (
	AdminEnabled  AdminStatus = "enabled"
	AdminDisabled AdminStatus = "disabled"
)

// ActiveBooking is the room-side pointer back to the booking occupying it.
// The zero value means the room holds no booking.
type ActiveBooking struct {
	BookingID string `gorm:"size:36" json:"bookingId"`
	UserID    string `gorm:"size:64" json:"userId"`
	Date      string `gorm:"size:10" json:"date"`
	StartTime string `gorm:"size:5" json:"startTime"`
	EndTime   string `gorm:"size:5" json:"endTime"`
}

// Empty reports whether the reference points at nothing.
func (a ActiveBooking) Empty() bool {
	return a.BookingID == ""
}

// Room is a bookable physical room.
type Room struct {
	ID          string      `gorm:"primaryKey;size:36" json:"id"`
	Number      string      `gorm:"uniqueIndex;size:32;not null" json:"roomNumber"`
	Building    string      `gorm:"size:128;not null" json:"building"`
	Capacity    int         `gorm:"not null" json:"capacity"`
	AdminStatus AdminStatus `gorm:"size:16;not null" json:"adminStatus"`
	State       RoomState   `gorm:"size:16;not null" json:"state"`

	Active ActiveBooking `gorm:"embedded;embeddedPrefix:active_" json:"activeBooking"`
}

// Bookable reports whether new bookings may be attached to the room right now.
func (r Room) Bookable() bool {
	return r.AdminStatus == AdminEnabled && r.State == RoomAvailable
}
