package platform

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/lukepickard18/botz/internal/domain"
)

// Intents requested by the bot: guild structure, guild messages and member joins.
const Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages | discordgo.IntentsGuildMembers

// Handlers receives translated gateway events.
type Handlers struct {
	OnReady        func(ctx context.Context, self User)
	OnMemberJoined func(ctx context.Context, member Member)
	OnInteraction  func(ctx context.Context, in *Interaction)
}

// DiscordGateway implements Gateway on top of a discordgo session.
type DiscordGateway struct {
	session   *discordgo.Session
	logger    *zap.Logger
	readyOnce sync.Once
}

var _ Gateway = (*DiscordGateway)(nil)

// NewDiscordSession creates an unopened bot session with the bot's intents.
func NewDiscordSession(token string) (*discordgo.Session, error) {
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	s.Identify.Intents = Intents
	return s, nil
}

// NewDiscordGateway wraps session.
func NewDiscordGateway(session *discordgo.Session, logger *zap.Logger) *DiscordGateway {
	return &DiscordGateway{session: session, logger: logger}
}

// Register installs event handlers. Each event runs on its own goroutine inside discordgo.
// OnReady fires once per process even if the session reconnects.
func (g *DiscordGateway) Register(ctx context.Context, h Handlers) {
	g.session.AddHandler(func(_ *discordgo.Session, r *discordgo.Ready) {
		if h.OnReady == nil {
			return
		}
		g.readyOnce.Do(func() {
			h.OnReady(ctx, fromDiscordUser(r.User))
		})
	})
	g.session.AddHandler(func(_ *discordgo.Session, m *discordgo.GuildMemberAdd) {
		if h.OnMemberJoined == nil || m.Member == nil {
			return
		}
		h.OnMemberJoined(ctx, fromDiscordMember(m.GuildID, m.Member))
	})
	g.session.AddHandler(func(_ *discordgo.Session, i *discordgo.InteractionCreate) {
		if h.OnInteraction == nil {
			return
		}
		in, ok := fromDiscordInteraction(i.Interaction)
		if !ok {
			return
		}
		h.OnInteraction(ctx, in)
	})
}

// Open connects the gateway websocket.
func (g *DiscordGateway) Open() error {
	return g.session.Open()
}

// Close disconnects the gateway websocket.
func (g *DiscordGateway) Close() error {
	return g.session.Close()
}

// Connected reports whether the session has received its ready payload.
func (g *DiscordGateway) Connected() bool {
	return g.session.DataReady
}

func (g *DiscordGateway) FetchChannel(ctx context.Context, channelID string) (*Channel, error) {
	ch, err := g.session.Channel(channelID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, mapError(err)
	}
	return fromDiscordChannel(ch), nil
}

func (g *DiscordGateway) CreateChannel(ctx context.Context, req CreateChannelRequest) (*Channel, error) {
	ch, err := g.session.GuildChannelCreateComplex(req.GuildID, discordgo.GuildChannelCreateData{
		Name:                 req.Name,
		Type:                 discordgo.ChannelTypeGuildText,
		Topic:                req.Topic,
		ParentID:             req.ParentID,
		PermissionOverwrites: toDiscordOverwrites(req.Overwrites),
	}, discordgo.WithContext(ctx))
	if err != nil {
		return nil, mapError(err)
	}
	return fromDiscordChannel(ch), nil
}

func (g *DiscordGateway) MoveChannel(ctx context.Context, channelID, parentID string) error {
	_, err := g.session.ChannelEdit(channelID, &discordgo.ChannelEdit{ParentID: parentID}, discordgo.WithContext(ctx))
	return mapError(err)
}

func (g *DiscordGateway) EditOverwrite(ctx context.Context, channelID string, ow domain.Overwrite) error {
	err := g.session.ChannelPermissionSet(channelID, ow.PrincipalID, toDiscordOverwriteType(ow.Type),
		int64(ow.Allow), int64(ow.Deny), discordgo.WithContext(ctx))
	return mapError(err)
}

func (g *DiscordGateway) RecentMessageIDs(ctx context.Context, channelID string, limit int) ([]string, error) {
	msgs, err := g.session.ChannelMessages(channelID, limit, "", "", "", discordgo.WithContext(ctx))
	if err != nil {
		return nil, mapError(err)
	}
	ids := make([]string, 0, len(msgs))
	for _, m := range msgs {
		ids = append(ids, m.ID)
	}
	return ids, nil
}

// DeleteMessages removes messageIDs. Bulk delete needs at least two ids and rejects
// messages older than two weeks.
func (g *DiscordGateway) DeleteMessages(ctx context.Context, channelID string, messageIDs []string) error {
	switch len(messageIDs) {
	case 0:
		return nil
	case 1:
		return mapError(g.session.ChannelMessageDelete(channelID, messageIDs[0], discordgo.WithContext(ctx)))
	}
	return mapError(g.session.ChannelMessagesBulkDelete(channelID, messageIDs, discordgo.WithContext(ctx)))
}

func (g *DiscordGateway) SendMessage(ctx context.Context, channelID string, msg Message) (string, error) {
	sent, err := g.session.ChannelMessageSendComplex(channelID, toDiscordMessage(msg), discordgo.WithContext(ctx))
	if err != nil {
		return "", mapError(err)
	}
	return sent.ID, nil
}

func (g *DiscordGateway) GuildOwnerID(ctx context.Context, guildID string) (string, error) {
	if guild, err := g.session.State.Guild(guildID); err == nil && guild.OwnerID != "" {
		return guild.OwnerID, nil
	}
	guild, err := g.session.Guild(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return "", mapError(err)
	}
	return guild.OwnerID, nil
}

func (g *DiscordGateway) AddMemberRole(ctx context.Context, guildID, userID, roleID string) error {
	return mapError(g.session.GuildMemberRoleAdd(guildID, userID, roleID, discordgo.WithContext(ctx)))
}

func (g *DiscordGateway) Reply(ctx context.Context, in *Interaction, reply Reply) error {
	raw, err := rawInteraction(in)
	if err != nil {
		return err
	}
	data := &discordgo.InteractionResponseData{Content: reply.Content}
	if reply.Ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	return mapError(g.session.InteractionRespond(raw, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	}, discordgo.WithContext(ctx)))
}

func (g *DiscordGateway) DeferReply(ctx context.Context, in *Interaction, ephemeral bool) error {
	raw, err := rawInteraction(in)
	if err != nil {
		return err
	}
	resp := &discordgo.InteractionResponse{Type: discordgo.InteractionResponseDeferredChannelMessageWithSource}
	if ephemeral {
		resp.Data = &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral}
	}
	return mapError(g.session.InteractionRespond(raw, resp, discordgo.WithContext(ctx)))
}

func (g *DiscordGateway) EditReply(ctx context.Context, in *Interaction, content string) error {
	raw, err := rawInteraction(in)
	if err != nil {
		return err
	}
	_, err = g.session.InteractionResponseEdit(raw, &discordgo.WebhookEdit{Content: &content}, discordgo.WithContext(ctx))
	return mapError(err)
}

func (g *DiscordGateway) ShowModal(ctx context.Context, in *Interaction, modal Modal) error {
	raw, err := rawInteraction(in)
	if err != nil {
		return err
	}
	return mapError(g.session.InteractionRespond(raw, toDiscordModal(modal), discordgo.WithContext(ctx)))
}

func rawInteraction(in *Interaction) (*discordgo.Interaction, error) {
	raw, ok := in.raw.(*discordgo.Interaction)
	if !ok || raw == nil {
		return nil, errors.New("platform: interaction was not received from discord")
	}
	return raw, nil
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Response != nil && restErr.Response.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return err
}
