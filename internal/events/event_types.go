package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/lukepickard18/botz/internal/domain"
	"github.com/lukepickard18/botz/internal/platform"
)

// EventType enumerates supported event identifiers.
type EventType string

// Gateway events.
const (
	EventReady          EventType = "ready"
	EventMemberJoined   EventType = "member_joined"
	EventButtonPressed  EventType = "button_pressed"
	EventModalSubmitted EventType = "modal_submitted"
)

// Ticket lifecycle events.
const (
	EventTicketCreated EventType = "ticket_created"
	EventTicketClosed  EventType = "ticket_closed"
)

// Event is one routed occurrence. Exactly one of the pointer fields is set, matching Type.
type Event struct {
	ID          string
	Type        EventType
	Timestamp   time.Time
	Self        *platform.User
	Member      *platform.Member
	Interaction *platform.Interaction
	Ticket      *domain.Ticket
	Closure     *domain.TicketClosure
}

func newEvent(t EventType) Event {
	return Event{ID: uuid.NewString(), Type: t, Timestamp: time.Now().UTC()}
}

// ReadyEvent is published once the gateway session is established.
func ReadyEvent(self platform.User) Event {
	e := newEvent(EventReady)
	e.Self = &self
	return e
}

// MemberJoinedEvent is published when a member joins the guild.
func MemberJoinedEvent(m platform.Member) Event {
	e := newEvent(EventMemberJoined)
	e.Member = &m
	return e
}

// InteractionEvent maps an interaction to a button or modal event.
func InteractionEvent(in *platform.Interaction) (Event, bool) {
	var e Event
	switch in.Kind {
	case platform.InteractionButton:
		e = newEvent(EventButtonPressed)
	case platform.InteractionModalSubmit:
		e = newEvent(EventModalSubmitted)
	default:
		return Event{}, false
	}
	e.Interaction = in
	return e, true
}

// TicketCreatedEvent reports a provisioned ticket.
func TicketCreatedEvent(t domain.Ticket) Event {
	e := newEvent(EventTicketCreated)
	e.Ticket = &t
	return e
}

// TicketClosedEvent reports a completed close transition.
func TicketClosedEvent(c domain.TicketClosure) Event {
	e := newEvent(EventTicketClosed)
	e.Closure = &c
	return e
}
