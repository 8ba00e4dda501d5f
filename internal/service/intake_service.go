package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/lukepickard18/botz/internal/auth"
	"github.com/lukepickard18/botz/internal/config"
	"github.com/lukepickard18/botz/internal/domain"
	"github.com/lukepickard18/botz/internal/events"
	"github.com/lukepickard18/botz/internal/observability"
	"github.com/lukepickard18/botz/internal/platform"
	"github.com/lukepickard18/botz/pkg/util/errorutil"
)

// Component ids shared by the intake and close flows.
const (
	TicketModalPrefix   = "ticket_modal_"
	FieldTicketCategory = "ticket_category"
	FieldTicketIssue    = "ticket_issue"
	FieldTicketUsername = "ticket_username"
	CloseTicketButtonID = "close_ticket"
)

const (
	summaryColor       = 0x2b2d31
	externalFieldLabel = "Promote.fun Username"
	emptyFieldValue    = "-"
)

// IntakeService turns category button presses into provisioned ticket channels.
type IntakeService struct {
	gateway    platform.Gateway
	counter    *CounterService
	cfg        config.TicketConfig
	dispatcher events.Dispatcher
	logger     *zap.Logger
	metrics    *observability.Metrics
	now        func() time.Time
}

// IntakeDependencies bundles collaborators for the intake service.
type IntakeDependencies struct {
	Gateway    platform.Gateway
	Counter    *CounterService
	Config     config.TicketConfig
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Metrics    *observability.Metrics
	Now        func() time.Time
}

// TicketCreateInput describes a submitted intake modal.
type TicketCreateInput struct {
	CategoryID       string
	CategoryText     string
	Requester        platform.User
	Issue            string
	ExternalUsername string
}

// NewIntakeService constructs the service.
func NewIntakeService(deps IntakeDependencies) *IntakeService {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IntakeService{
		gateway:    deps.Gateway,
		counter:    deps.Counter,
		cfg:        deps.Config,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		metrics:    deps.Metrics,
		now:        now,
	}
}

// HandleButton presents the intake modal for category buttons and ignores everything else.
func (s *IntakeService) HandleButton(ctx context.Context, event events.Event) error {
	in := event.Interaction
	category, ok := domain.ResolveCategory(in.CustomID)
	if !ok {
		return nil
	}
	if err := s.gateway.ShowModal(ctx, in, TicketModal(category)); err != nil {
		return fmt.Errorf("show ticket modal: %w", err)
	}
	return nil
}

// HandleModal provisions a ticket from a submitted intake modal and acknowledges the requester.
func (s *IntakeService) HandleModal(ctx context.Context, event events.Event) error {
	in := event.Interaction
	if !strings.HasPrefix(in.CustomID, TicketModalPrefix) {
		return nil
	}

	ticket, err := s.CreateTicket(ctx, TicketCreateInput{
		CategoryID:       strings.TrimPrefix(in.CustomID, TicketModalPrefix),
		CategoryText:     in.Field(FieldTicketCategory),
		Requester:        in.User(),
		Issue:            in.Field(FieldTicketIssue),
		ExternalUsername: in.Field(FieldTicketUsername),
	})
	if err != nil {
		s.metrics.RecordError("intake", errorutil.ToDomainError(err).Code)
		s.replyPrivately(ctx, in, errorutil.UserNotice(err))
		return err
	}

	s.replyPrivately(ctx, in, "✅ Your ticket has been created: "+platform.ChannelMention(ticket.ChannelID))
	publish(ctx, s.dispatcher, s.logger, events.TicketCreatedEvent(*ticket))
	return nil
}

// CreateTicket allocates a number, creates the private channel and posts the summary.
// The number is not returned to the counter when a later step fails.
func (s *IntakeService) CreateTicket(ctx context.Context, input TicketCreateInput) (*domain.Ticket, error) {
	category, ok := domain.ResolveCategory(input.CategoryID)
	if !ok {
		category = domain.Category{ID: domain.CategoryID(input.CategoryID), Label: strings.TrimSpace(input.CategoryText)}
	}

	number := s.counter.IncrementAndSave(ctx)
	ticket := &domain.Ticket{
		Number:           number,
		Category:         category,
		RequesterID:      input.Requester.ID,
		RequesterTag:     input.Requester.Tag,
		RequesterName:    input.Requester.Username,
		Issue:            strings.TrimSpace(input.Issue),
		ExternalUsername: strings.TrimSpace(input.ExternalUsername),
		ChannelName:      domain.TicketChannelName(input.Requester.Username, number),
		CreatedAt:        s.now().UTC(),
	}

	ch, err := s.gateway.CreateChannel(ctx, platform.CreateChannelRequest{
		GuildID:    s.cfg.GuildID,
		Name:       ticket.ChannelName,
		ParentID:   s.cfg.OpenCategoryID,
		Topic:      domain.TicketTopic(ticket),
		Overwrites: auth.OverwritesFor(domain.PhaseOpen, ticket.RequesterID, s.cfg.SupportRoleID, s.cfg.EveryoneRoleID()),
	})
	if err != nil {
		s.metrics.Inc(observability.MetricProvisioningFailed)
		s.logger.Error("failed to create ticket channel",
			zap.Int64("ticket", number),
			zap.String("requester_id", ticket.RequesterID),
			zap.Error(err))
		return nil, errorutil.NewProvisioningError("create ticket channel",
			"⚠️ Failed to create your ticket. Please try again later.", err)
	}
	ticket.ChannelID = ch.ID

	if _, err := s.gateway.SendMessage(ctx, ch.ID, SummaryMessage(ticket, s.cfg.SupportRoleID)); err != nil {
		s.metrics.Inc(observability.MetricProvisioningFailed)
		s.logger.Error("failed to post ticket summary",
			zap.Int64("ticket", number),
			zap.String("channel_id", ch.ID),
			zap.Error(err))
		return nil, errorutil.NewProvisioningError("post ticket summary",
			"⚠️ Your ticket channel was created but its details could not be posted: "+platform.ChannelMention(ch.ID), err)
	}

	s.metrics.Inc(observability.MetricTicketsCreated)
	s.logger.Info("ticket created",
		zap.Int64("ticket", number),
		zap.String("category", string(category.ID)),
		zap.String("channel_id", ch.ID),
		zap.String("requester_id", ticket.RequesterID))
	return ticket, nil
}

func (s *IntakeService) replyPrivately(ctx context.Context, in *platform.Interaction, content string) {
	if err := s.gateway.Reply(ctx, in, platform.Reply{Content: content, Ephemeral: true}); err != nil {
		s.logger.Warn("failed to reply to interaction", zap.String("interaction_id", in.ID), zap.Error(err))
	}
}

// TicketModal is the intake form for category.
func TicketModal(category domain.Category) platform.Modal {
	return platform.Modal{
		CustomID: TicketModalPrefix + string(category.ID),
		Title:    "Open a Support Ticket",
		Inputs: []platform.TextInput{
			{CustomID: FieldTicketCategory, Label: "Ticket Category", Style: platform.TextInputShort, Value: category.Label, Required: true},
			{CustomID: FieldTicketIssue, Label: "What do you need help with?", Style: platform.TextInputParagraph, Required: true},
			{CustomID: FieldTicketUsername, Label: externalFieldLabel, Style: platform.TextInputShort, Required: true},
		},
	}
}

// SummaryMessage is the first message posted into a ticket channel.
func SummaryMessage(t *domain.Ticket, supportRoleID string) platform.Message {
	return platform.Message{
		Content: platform.RoleMention(supportRoleID),
		Embeds: []platform.Embed{{
			Title: "🎟️ New Support Ticket",
			Color: summaryColor,
			Fields: []platform.EmbedField{
				{Name: "Category", Value: orDash(t.Category.Label), Inline: true},
				{Name: externalFieldLabel, Value: orDash(t.ExternalUsername), Inline: true},
				{Name: "Issue", Value: orDash(t.Issue)},
				{Name: "Requester", Value: platform.User{ID: t.RequesterID}.Mention(), Inline: true},
			},
			Footer:    "Submitted by " + t.RequesterTag,
			Timestamp: t.CreatedAt,
		}},
		Buttons: []platform.Button{
			{CustomID: CloseTicketButtonID, Label: "🔒 Close Ticket", Style: platform.ButtonDanger},
		},
	}
}

func orDash(v string) string {
	if strings.TrimSpace(v) == "" {
		return emptyFieldValue
	}
	return v
}
