package entities

import (
	"github.com/Jacobbrewer1/tickets/pkg/custom"
)

// Ticket is a ticket. There is one ticket per ticket channel.
type Ticket struct {
	// ID is the ID of the ticket channel.
	ID string `json:"id" bson:"id"`

	// Number is the number of the ticket within the guild. It is assigned once and never reused.
	Number int `json:"number" bson:"number"`

	// GuildID is the ID of the guild that the ticket is in.
	GuildID string `json:"guild" bson:"guild"`

	// CategoryID is the ID of the category the ticket was opened in.
	CategoryID string `json:"category" bson:"category"`

	// CreatorID is the ID of the user that created the ticket.
	CreatorID string `json:"creator" bson:"creator"`

	// Topic is the encrypted topic of the ticket. Empty if no topic was given.
	Topic string `json:"-" bson:"topic,omitempty"`

	// Open is whether the ticket is open. Once closed a ticket is never reopened.
	Open bool `json:"open" bson:"open"`

	// OpeningMessageID is the ID of the pinned opening message. It is set shortly after the ticket is created.
	OpeningMessageID string `json:"opening_message,omitempty" bson:"opening_message,omitempty"`

	// ClosedBy is the ID of the member that closed the ticket. Empty for system closes.
	ClosedBy string `json:"closed_by,omitempty" bson:"closed_by,omitempty"`

	// ClosedReason is the encrypted reason the ticket was closed for.
	ClosedReason string `json:"-" bson:"closed_reason,omitempty"`

	// PinnedMessages are the IDs of the messages that were pinned when the ticket was closed.
	PinnedMessages []string `json:"pinned_messages,omitempty" bson:"pinned_messages,omitempty"`

	// CreatedAt is the time that the ticket was created.
	CreatedAt custom.Datetime `json:"created_at" bson:"created_at"`

	// ClosedAt is the time that the ticket was closed.
	ClosedAt custom.Datetime `json:"closed_at,omitempty" bson:"closed_at,omitempty"`
}

// TicketUpdate holds changes to a ticket. Nil fields are left untouched; a pointer to an empty string clears
// the field.
type TicketUpdate struct {
	Topic            *string
	OpeningMessageID *string
	Open             *bool
	ClosedBy         *string
	ClosedReason     *string
	PinnedMessages   *[]string
	ClosedAt         *custom.Datetime
}

// Apply applies the update to t.
func (u *TicketUpdate) Apply(t *Ticket) {
	if u.Topic != nil {
		t.Topic = *u.Topic
	}
	if u.OpeningMessageID != nil {
		t.OpeningMessageID = *u.OpeningMessageID
	}
	if u.Open != nil {
		t.Open = *u.Open
	}
	if u.ClosedBy != nil {
		t.ClosedBy = *u.ClosedBy
	}
	if u.ClosedReason != nil {
		t.ClosedReason = *u.ClosedReason
	}
	if u.PinnedMessages != nil {
		t.PinnedMessages = append([]string(nil), (*u.PinnedMessages)...)
	}
	if u.ClosedAt != nil {
		t.ClosedAt = *u.ClosedAt
	}
}
