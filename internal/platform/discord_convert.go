package platform

import (
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/lukepickard18/botz/internal/domain"
)

func toDiscordOverwriteType(t domain.PrincipalType) discordgo.PermissionOverwriteType {
	if t == domain.PrincipalMember {
		return discordgo.PermissionOverwriteTypeMember
	}
	return discordgo.PermissionOverwriteTypeRole
}

func toDiscordOverwrites(set []domain.Overwrite) []*discordgo.PermissionOverwrite {
	out := make([]*discordgo.PermissionOverwrite, 0, len(set))
	for _, ow := range set {
		out = append(out, &discordgo.PermissionOverwrite{
			ID:    ow.PrincipalID,
			Type:  toDiscordOverwriteType(ow.Type),
			Allow: int64(ow.Allow),
			Deny:  int64(ow.Deny),
		})
	}
	return out
}

func fromDiscordOverwrites(set []*discordgo.PermissionOverwrite) []domain.Overwrite {
	out := make([]domain.Overwrite, 0, len(set))
	for _, ow := range set {
		if ow == nil {
			continue
		}
		t := domain.PrincipalRole
		if ow.Type == discordgo.PermissionOverwriteTypeMember {
			t = domain.PrincipalMember
		}
		out = append(out, domain.Overwrite{
			PrincipalID: ow.ID,
			Type:        t,
			Allow:       domain.Permission(ow.Allow),
			Deny:        domain.Permission(ow.Deny),
		})
	}
	return out
}

func fromDiscordChannel(ch *discordgo.Channel) *Channel {
	return &Channel{
		ID:         ch.ID,
		GuildID:    ch.GuildID,
		Name:       ch.Name,
		ParentID:   ch.ParentID,
		Topic:      ch.Topic,
		Overwrites: fromDiscordOverwrites(ch.PermissionOverwrites),
	}
}

func fromDiscordUser(u *discordgo.User) User {
	if u == nil {
		return User{}
	}
	return User{ID: u.ID, Username: u.Username, Tag: u.String()}
}

func fromDiscordMember(guildID string, m *discordgo.Member) Member {
	gid := m.GuildID
	if gid == "" {
		gid = guildID
	}
	return Member{
		GuildID: gid,
		User:    fromDiscordUser(m.User),
		RoleIDs: append([]string(nil), m.Roles...),
	}
}

// fromDiscordInteraction keeps only guild button presses and modal submissions.
func fromDiscordInteraction(i *discordgo.Interaction) (*Interaction, bool) {
	if i == nil || i.Member == nil {
		return nil, false
	}
	member := fromDiscordMember(i.GuildID, i.Member)
	in := &Interaction{
		ID:        i.ID,
		GuildID:   i.GuildID,
		ChannelID: i.ChannelID,
		Member:    &member,
		raw:       i,
	}

	switch i.Type {
	case discordgo.InteractionMessageComponent:
		data := i.MessageComponentData()
		if data.ComponentType != discordgo.ButtonComponent {
			return nil, false
		}
		in.Kind = InteractionButton
		in.CustomID = data.CustomID
	case discordgo.InteractionModalSubmit:
		data := i.ModalSubmitData()
		in.Kind = InteractionModalSubmit
		in.CustomID = data.CustomID
		in.Fields = modalFields(data.Components)
	default:
		return nil, false
	}
	return in, true
}

func modalFields(components []discordgo.MessageComponent) map[string]string {
	fields := make(map[string]string)
	var walk func([]discordgo.MessageComponent)
	walk = func(cs []discordgo.MessageComponent) {
		for _, c := range cs {
			switch v := c.(type) {
			case *discordgo.ActionsRow:
				walk(v.Components)
			case discordgo.ActionsRow:
				walk(v.Components)
			case *discordgo.TextInput:
				fields[v.CustomID] = v.Value
			case discordgo.TextInput:
				fields[v.CustomID] = v.Value
			}
		}
	}
	walk(components)
	return fields
}

func toDiscordButtonStyle(s ButtonStyle) discordgo.ButtonStyle {
	switch s {
	case ButtonSecondary:
		return discordgo.SecondaryButton
	case ButtonSuccess:
		return discordgo.SuccessButton
	case ButtonDanger:
		return discordgo.DangerButton
	default:
		return discordgo.PrimaryButton
	}
}

func toDiscordEmbed(e Embed) *discordgo.MessageEmbed {
	out := &discordgo.MessageEmbed{
		Title:       e.Title,
		Description: e.Description,
		Color:       e.Color,
	}
	for _, f := range e.Fields {
		out.Fields = append(out.Fields, &discordgo.MessageEmbedField{Name: f.Name, Value: f.Value, Inline: f.Inline})
	}
	if e.Footer != "" {
		out.Footer = &discordgo.MessageEmbedFooter{Text: e.Footer}
	}
	if !e.Timestamp.IsZero() {
		out.Timestamp = e.Timestamp.UTC().Format(time.RFC3339)
	}
	return out
}

func toDiscordMessage(msg Message) *discordgo.MessageSend {
	out := &discordgo.MessageSend{Content: msg.Content}
	for _, e := range msg.Embeds {
		out.Embeds = append(out.Embeds, toDiscordEmbed(e))
	}
	if len(msg.Buttons) > 0 {
		row := discordgo.ActionsRow{}
		for _, b := range msg.Buttons {
			row.Components = append(row.Components, discordgo.Button{
				CustomID: b.CustomID,
				Label:    b.Label,
				Style:    toDiscordButtonStyle(b.Style),
			})
		}
		out.Components = []discordgo.MessageComponent{row}
	}
	return out
}

func toDiscordModal(m Modal) *discordgo.InteractionResponse {
	rows := make([]discordgo.MessageComponent, 0, len(m.Inputs))
	for _, input := range m.Inputs {
		style := discordgo.TextInputShort
		if input.Style == TextInputParagraph {
			style = discordgo.TextInputParagraph
		}
		rows = append(rows, discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.TextInput{
				CustomID: input.CustomID,
				Label:    input.Label,
				Style:    style,
				Value:    input.Value,
				Required: input.Required,
			},
		}})
	}
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID:   m.CustomID,
			Title:      m.Title,
			Components: rows,
		},
	}
}
