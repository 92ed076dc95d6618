package booking

import (
	"github.com/artin59/3311-Project-sub001/internal/model"
)

// Event drives a room from one lifecycle state to the next.
type Event string

const (
	EventBook             Event = "book"
	EventCheckIn          Event = "check_in"
	EventCancel           Event = "cancel"
	EventNoShowTimeout    Event = "no_show_timeout"
	EventCheckOut         Event = "check_out"
	EventHandle           Event = "handle"
	EventSetMaintenance   Event = "set_maintenance"
	EventClearMaintenance Event = "clear_maintenance"
)

// Effects are the side effects a transition asks its caller to perform.
type Effects struct {
	Attach      bool // point the room at the booking
	Clear       bool // drop the room's booking reference
	ForceCancel bool // cancel whatever booking the room held
	Forfeit     bool // the deposit of the held booking is kept
}

type transitionKey struct {
	from  model.RoomState
	event Event
}

type transition struct {
	to      model.RoomState
	effects Effects
}

var roomTransitions = map[transitionKey]transition{
	{model.RoomAvailable, EventBook}:               {model.RoomReserved, Effects{Attach: true}},
	{model.RoomReserved, EventCheckIn}:             {model.RoomInUse, Effects{}},
	{model.RoomReserved, EventCancel}:              {model.RoomAvailable, Effects{Clear: true}},
	{model.RoomReserved, EventNoShowTimeout}:       {model.RoomNoShow, Effects{}},
	{model.RoomInUse, EventCheckOut}:               {model.RoomAvailable, Effects{Clear: true}},
	{model.RoomNoShow, EventHandle}:                {model.RoomAvailable, Effects{Clear: true, Forfeit: true}},
	{model.RoomMaintenance, EventClearMaintenance}: {model.RoomAvailable, Effects{}},
}

var knownRoomStates = map[model.RoomState]bool{
	model.RoomAvailable:   true,
	model.RoomReserved:    true,
	model.RoomInUse:       true,
	model.RoomMaintenance: true,
	model.RoomNoShow:      true,
}

// Transition is the room state machine. It is pure: an unsupported
// (state, event) pair returns the unchanged state and an ErrInvalidState.
func Transition(state model.RoomState, ev Event) (model.RoomState, Effects, error) {
	if ev == EventSetMaintenance && knownRoomStates[state] {
		return model.RoomMaintenance, Effects{Clear: true, ForceCancel: true}, nil
	}
	t, ok := roomTransitions[transitionKey{from: state, event: ev}]
	if !ok {
		return state, Effects{}, fail(ErrInvalidState, "room transition", "event %q not allowed in room state %q", ev, state)
	}
	return t.to, t.effects, nil
}

// CanTransition reports whether ev is accepted in state.
func CanTransition(state model.RoomState, ev Event) bool {
	_, _, err := Transition(state, ev)
	return err == nil
}

// applyEvent runs the transition on room and performs the reference side
// effects. The room is left untouched when the transition is rejected.
func applyEvent(room *model.Room, ev Event, ref model.ActiveBooking) (Effects, error) {
	next, eff, err := Transition(room.State, ev)
	if err != nil {
		return eff, err
	}
	room.State = next
	if eff.Attach {
		room.Active = ref
	}
	if eff.Clear {
		room.Active = model.ActiveBooking{}
	}
	return eff, nil
}
