package entities

// MaxCategoryChildren is the number of channels Discord allows in a category.
const MaxCategoryChildren = 50

const (
	// PingEveryone is the ping list entry for @everyone.
	PingEveryone = "everyone"

	// PingHere is the ping list entry for @here.
	PingHere = "here"
)

// Category is the ticket configuration of a Discord category. Tickets opened in the category are created as
// channels inside it.
type Category struct {
	// ID is the ID of the category channel.
	ID string `json:"id" bson:"id"`

	// GuildID is the ID of the guild the category is in.
	GuildID string `json:"guild" bson:"guild"`

	// Name is the display name of the category.
	Name string `json:"name" bson:"name"`

	// NameFormat is the template for ticket channel names, e.g. "ticket-{number}".
	NameFormat string `json:"name_format" bson:"name_format"`

	// OpeningMessage is the template for the description of the opening message.
	OpeningMessage string `json:"opening_message" bson:"opening_message"`

	// Ping are the roles to mention when a ticket is opened. "everyone" and "here" are the broadcast mentions.
	Ping []string `json:"ping,omitempty" bson:"ping,omitempty"`

	// Image is an image URL sent when a ticket is opened.
	Image string `json:"image,omitempty" bson:"image,omitempty"`

	// Claiming is whether staff claim tickets by reacting to the opening message.
	Claiming bool `json:"claiming" bson:"claiming"`

	// RequireTopic is whether the creator must give a topic.
	RequireTopic bool `json:"require_topic" bson:"require_topic"`

	// OpeningQuestions are asked in the ticket after it is opened.
	OpeningQuestions []string `json:"opening_questions,omitempty" bson:"opening_questions,omitempty"`
}
