// Package events publishes ticket lifecycle notifications to listeners elsewhere in the bot.
package events

import (
	"time"

	"github.com/google/uuid"
)

// Kind enumerates the ticket lifecycle events.
type Kind string

const (
	// KindCreate is published once a ticket has been created and stored.
	KindCreate Kind = "create"

	// KindReady is published once the setup of a ticket channel has finished.
	KindReady Kind = "ready"

	// KindBeforeClose is published when a ticket is about to be closed.
	KindBeforeClose Kind = "beforeClose"

	// KindClose is published once a ticket has been closed.
	KindClose Kind = "close"
)

// Event is a ticket lifecycle event.
type Event struct {
	// ID is the unique ID of the event.
	ID string `json:"id"`

	// Kind is the kind of event.
	Kind Kind `json:"kind"`

	// TicketID is the ID of the ticket the event is about.
	TicketID string `json:"ticket_id"`

	// CreatorID is the ID of the ticket creator. Only set for KindCreate.
	CreatorID string `json:"creator_id,omitempty"`

	// Timestamp is when the event was published.
	Timestamp time.Time `json:"timestamp"`
}

// New creates an event of the given kind.
func New(kind Kind, ticketID string) Event {
	return Event{
		ID:        uuid.NewString(),
		Kind:      kind,
		TicketID:  ticketID,
		Timestamp: time.Now().UTC(),
	}
}
