package platform

import "time"

// InteractionKind distinguishes button presses from modal submissions.
type InteractionKind int

const (
	InteractionButton InteractionKind = iota + 1
	InteractionModalSubmit
)

// Interaction is a user action that must be acknowledged.
type Interaction struct {
	ID        string
	Kind      InteractionKind
	CustomID  string
	GuildID   string
	ChannelID string
	Member    *Member
	Fields    map[string]string

	raw any
}

// User returns the acting user.
func (i *Interaction) User() User {
	if i.Member == nil {
		return User{}
	}
	return i.Member.User
}

// Field returns a submitted modal value.
func (i *Interaction) Field(customID string) string {
	return i.Fields[customID]
}

// ButtonStyle selects a button's color.
type ButtonStyle int

const (
	ButtonPrimary ButtonStyle = iota + 1
	ButtonSecondary
	ButtonSuccess
	ButtonDanger
)

// Button is a clickable component.
type Button struct {
	CustomID string
	Label    string
	Style    ButtonStyle
}

// EmbedField is one name/value pair of an embed.
type EmbedField struct {
	Name   string
	Value  string
	Inline bool
}

// Embed is a rich message card.
type Embed struct {
	Title       string
	Description string
	Color       int
	Fields      []EmbedField
	Footer      string
	Timestamp   time.Time
}

// Message is an outgoing channel message. Buttons render as a single row.
type Message struct {
	Content string
	Embeds  []Embed
	Buttons []Button
}

// Reply is an immediate interaction response.
type Reply struct {
	Content   string
	Ephemeral bool
}

// TextInputStyle selects single or multi line input.
type TextInputStyle int

const (
	TextInputShort TextInputStyle = iota + 1
	TextInputParagraph
)

// TextInput is one modal field.
type TextInput struct {
	CustomID string
	Label    string
	Style    TextInputStyle
	Value    string
	Required bool
}

// Modal is a form shown in response to an interaction.
type Modal struct {
	CustomID string
	Title    string
	Inputs   []TextInput
}
