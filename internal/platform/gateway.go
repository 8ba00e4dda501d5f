// Package platform is the boundary to the chat platform. Controllers depend on the
// Gateway interface; the discordgo-backed implementation lives in discord.go.
package platform

import (
	"context"
	"errors"

	"github.com/lukepickard18/botz/internal/domain"
)

// ErrNotFound is returned when a channel, member or guild does not exist.
var ErrNotFound = errors.New("platform: resource not found")

// Gateway is the set of platform operations the bot performs.
type Gateway interface {
	FetchChannel(ctx context.Context, channelID string) (*Channel, error)
	CreateChannel(ctx context.Context, req CreateChannelRequest) (*Channel, error)
	MoveChannel(ctx context.Context, channelID, parentID string) error
	EditOverwrite(ctx context.Context, channelID string, ow domain.Overwrite) error
	RecentMessageIDs(ctx context.Context, channelID string, limit int) ([]string, error)
	DeleteMessages(ctx context.Context, channelID string, messageIDs []string) error
	SendMessage(ctx context.Context, channelID string, msg Message) (string, error)

	GuildOwnerID(ctx context.Context, guildID string) (string, error)
	AddMemberRole(ctx context.Context, guildID, userID, roleID string) error

	Reply(ctx context.Context, in *Interaction, reply Reply) error
	DeferReply(ctx context.Context, in *Interaction, ephemeral bool) error
	EditReply(ctx context.Context, in *Interaction, content string) error
	ShowModal(ctx context.Context, in *Interaction, modal Modal) error
}

// Channel is a guild channel.
type Channel struct {
	ID         string
	GuildID    string
	Name       string
	ParentID   string
	Topic      string
	Overwrites []domain.Overwrite
}

// Mention renders the channel as a clickable reference.
func (c *Channel) Mention() string {
	return ChannelMention(c.ID)
}

// ChannelMention renders a channel reference from its id.
func ChannelMention(channelID string) string {
	return "<#" + channelID + ">"
}

// CreateChannelRequest describes a text channel to create.
type CreateChannelRequest struct {
	GuildID    string
	Name       string
	ParentID   string
	Topic      string
	Overwrites []domain.Overwrite
}

// User is a platform account.
type User struct {
	ID       string
	Username string
	Tag      string
}

// Mention renders the user as a ping.
func (u User) Mention() string {
	return "<@" + u.ID + ">"
}

// Member is a user within a guild.
type Member struct {
	GuildID string
	User    User
	RoleIDs []string
}

// RoleMention renders a role ping.
func RoleMention(roleID string) string {
	return "<@&" + roleID + ">"
}
