package entities

const (
	// DefaultLocale is the locale used when a guild has not chosen one.
	DefaultLocale = "en-GB"

	// DefaultColour is the embed colour used when a guild has not chosen one.
	DefaultColour = 0x009999

	// DefaultSuccessColour is the success embed colour used when a guild has not chosen one.
	DefaultSuccessColour = 0x4caf50

	// DefaultFooter is the embed footer used when a guild has not chosen one.
	DefaultFooter = "Tickets"
)

// Guild is the configuration for a guild.
type Guild struct {
	// ID is the ID of the guild.
	ID string `json:"id" bson:"id"`

	// Locale is the BCP 47 tag of the guild's language.
	Locale string `json:"locale" bson:"locale"`

	// Colour is the colour of ticket embeds.
	Colour int `json:"colour" bson:"colour"`

	// SuccessColour is the colour of close notices.
	SuccessColour int `json:"success_colour" bson:"success_colour"`

	// Footer is the footer text of ticket embeds.
	Footer string `json:"footer" bson:"footer"`
}

// DefaultGuild returns the settings used for a guild with no stored configuration.
func DefaultGuild(id string) *Guild {
	return &Guild{
		ID:            id,
		Locale:        DefaultLocale,
		Colour:        DefaultColour,
		SuccessColour: DefaultSuccessColour,
		Footer:        DefaultFooter,
	}
}
