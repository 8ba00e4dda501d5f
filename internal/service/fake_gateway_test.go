package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/lukepickard18/botz/internal/config"
	"github.com/lukepickard18/botz/internal/domain"
	"github.com/lukepickard18/botz/internal/platform"
)

type sentMessage struct {
	ChannelID string
	Message   platform.Message
}

type movedChannel struct {
	ChannelID string
	ParentID  string
}

type editedOverwrite struct {
	ChannelID string
	Overwrite domain.Overwrite
}

type replyCall struct {
	InteractionID string
	Kind          string
	Content       string
	Ephemeral     bool
}

// fakeGateway records every call and serves channels from memory.
type fakeGateway struct {
	mu sync.Mutex

	channels map[string]*platform.Channel
	ownerID  string
	messages map[string][]string
	nextID   int

	createErr  error
	sendErr    error
	moveErr    error
	editErr    error
	deleteErr  error
	addRoleErr error
	ownerErr   error

	created  []platform.CreateChannelRequest
	sent     []sentMessage
	moved    []movedChannel
	edited   []editedOverwrite
	deleted  [][]string
	rolesAdd []string
	replies  []replyCall
	modals   []platform.Modal
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		channels: make(map[string]*platform.Channel),
		messages: make(map[string][]string),
	}
}

func (f *fakeGateway) addChannel(ch *platform.Channel) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.channels[ch.ID] = ch
}

func (f *fakeGateway) mutationCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.created) + len(f.sent) + len(f.moved) + len(f.edited) + len(f.deleted)
}

func (f *fakeGateway) FetchChannel(_ context.Context, channelID string) (*platform.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch, ok := f.channels[channelID]
	if !ok {
		return nil, fmt.Errorf("%w: channel %s", platform.ErrNotFound, channelID)
	}
	cp := *ch
	cp.Overwrites = append([]domain.Overwrite(nil), ch.Overwrites...)
	return &cp, nil
}

func (f *fakeGateway) CreateChannel(_ context.Context, req platform.CreateChannelRequest) (*platform.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, req)
	f.nextID++
	ch := &platform.Channel{
		ID:         fmt.Sprintf("chan-%d", f.nextID),
		GuildID:    req.GuildID,
		Name:       req.Name,
		ParentID:   req.ParentID,
		Topic:      req.Topic,
		Overwrites: append([]domain.Overwrite(nil), req.Overwrites...),
	}
	f.channels[ch.ID] = ch
	return ch, nil
}

func (f *fakeGateway) MoveChannel(_ context.Context, channelID, parentID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.moveErr != nil {
		return f.moveErr
	}
	f.moved = append(f.moved, movedChannel{ChannelID: channelID, ParentID: parentID})
	if ch, ok := f.channels[channelID]; ok {
		ch.ParentID = parentID
	}
	return nil
}

func (f *fakeGateway) EditOverwrite(_ context.Context, channelID string, ow domain.Overwrite) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.editErr != nil {
		return f.editErr
	}
	f.edited = append(f.edited, editedOverwrite{ChannelID: channelID, Overwrite: ow})
	if ch, ok := f.channels[channelID]; ok {
		for i := range ch.Overwrites {
			if ch.Overwrites[i].PrincipalID == ow.PrincipalID {
				ch.Overwrites[i] = ow
				return nil
			}
		}
		ch.Overwrites = append(ch.Overwrites, ow)
	}
	return nil
}

func (f *fakeGateway) RecentMessageIDs(_ context.Context, channelID string, limit int) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := f.messages[channelID]
	if len(ids) > limit {
		ids = ids[len(ids)-limit:]
	}
	return append([]string(nil), ids...), nil
}

func (f *fakeGateway) DeleteMessages(_ context.Context, channelID string, messageIDs []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, append([]string(nil), messageIDs...))
	drop := make(map[string]bool, len(messageIDs))
	for _, id := range messageIDs {
		drop[id] = true
	}
	kept := f.messages[channelID][:0]
	for _, id := range f.messages[channelID] {
		if !drop[id] {
			kept = append(kept, id)
		}
	}
	f.messages[channelID] = kept
	return nil
}

func (f *fakeGateway) SendMessage(_ context.Context, channelID string, msg platform.Message) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return "", f.sendErr
	}
	f.sent = append(f.sent, sentMessage{ChannelID: channelID, Message: msg})
	f.nextID++
	id := fmt.Sprintf("msg-%d", f.nextID)
	f.messages[channelID] = append(f.messages[channelID], id)
	return id, nil
}

func (f *fakeGateway) GuildOwnerID(context.Context, string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ownerID, f.ownerErr
}

func (f *fakeGateway) AddMemberRole(_ context.Context, _, userID, roleID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.addRoleErr != nil {
		return f.addRoleErr
	}
	f.rolesAdd = append(f.rolesAdd, userID+":"+roleID)
	return nil
}

func (f *fakeGateway) Reply(_ context.Context, in *platform.Interaction, reply platform.Reply) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies = append(f.replies, replyCall{InteractionID: in.ID, Kind: "reply", Content: reply.Content, Ephemeral: reply.Ephemeral})
	return nil
}

func (f *fakeGateway) DeferReply(_ context.Context, in *platform.Interaction, ephemeral bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies = append(f.replies, replyCall{InteractionID: in.ID, Kind: "defer", Ephemeral: ephemeral})
	return nil
}

func (f *fakeGateway) EditReply(_ context.Context, in *platform.Interaction, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies = append(f.replies, replyCall{InteractionID: in.ID, Kind: "edit", Content: content})
	return nil
}

func (f *fakeGateway) ShowModal(_ context.Context, _ *platform.Interaction, modal platform.Modal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.modals = append(f.modals, modal)
	return nil
}

var _ platform.Gateway = (*fakeGateway)(nil)

func testTicketConfig() config.TicketConfig {
	return config.TicketConfig{
		GuildID:          "guild-1",
		SupportChannelID: "support-chan",
		OpenCategoryID:   "open-cat",
		ClosedCategoryID: "closed-cat",
		SupportRoleID:    "role-support",
	}
}

func memberInteraction(kind platform.InteractionKind, customID string, user platform.User, roleIDs ...string) *platform.Interaction {
	return &platform.Interaction{
		ID:        "ix-" + customID,
		Kind:      kind,
		CustomID:  customID,
		GuildID:   "guild-1",
		ChannelID: "support-chan",
		Member:    &platform.Member{GuildID: "guild-1", User: user, RoleIDs: roleIDs},
	}
}
