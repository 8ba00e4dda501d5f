package service

import (
	"context"
	"fmt"
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

const (
	noticeCannotClose   = "❌ You cannot close tickets."
	noticeClosed        = "✅ Ticket has been closed and moved to Closed Tickets."
	noticeAlreadyClosed = "ℹ️ This ticket is already closed."
	noticeCloseFailed   = "⚠️ The ticket could not be fully closed. Please check the channel and try again."
)

// CloseService handles the close_ticket button inside ticket channels.
type CloseService struct {
	gateway    platform.Gateway
	cfg        config.TicketConfig
	dispatcher events.Dispatcher
	logger     *zap.Logger
	metrics    *observability.Metrics
	now        func() time.Time
}

// CloseDependencies bundles collaborators for the close service.
type CloseDependencies struct {
	Gateway    platform.Gateway
	Config     config.TicketConfig
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Metrics    *observability.Metrics
	Now        func() time.Time
}

// NewCloseService constructs the service.
func NewCloseService(deps CloseDependencies) *CloseService {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CloseService{
		gateway:    deps.Gateway,
		cfg:        deps.Config,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		metrics:    deps.Metrics,
		now:        now,
	}
}

// HandleButton reacts to close_ticket presses.
func (s *CloseService) HandleButton(ctx context.Context, event events.Event) error {
	in := event.Interaction
	if in.CustomID != CloseTicketButtonID {
		return nil
	}
	closure, err := s.CloseTicket(ctx, in)
	if err != nil {
		s.metrics.RecordError("close", errorutil.ToDomainError(err).Code)
		return err
	}
	if closure != nil {
		publish(ctx, s.dispatcher, s.logger, events.TicketClosedEvent(*closure))
	}
	return nil
}

// CloseTicket authorizes the actor, then moves the channel to the closed grouping,
// locks the requester out of replying, posts an audit line and confirms.
// Unauthorized actors get a private notice and nothing is changed. The steps after
// authorization are not rolled back when one of them fails.
func (s *CloseService) CloseTicket(ctx context.Context, in *platform.Interaction) (*domain.TicketClosure, error) {
	actor := in.User()

	allowed, err := s.authorize(ctx, in)
	if err != nil {
		s.replyPrivately(ctx, in, errorutil.UserNotice(err))
		return nil, err
	}
	if !allowed {
		s.metrics.Inc(observability.MetricCloseDenied)
		s.replyPrivately(ctx, in, noticeCannotClose)
		return nil, errorutil.NewForbidden("actor may not close tickets", noticeCannotClose)
	}

	if err := s.gateway.DeferReply(ctx, in, true); err != nil {
		return nil, fmt.Errorf("defer close reply: %w", err)
	}

	ch, err := s.gateway.FetchChannel(ctx, in.ChannelID)
	if err != nil {
		err = notFoundOr(err, "Ticket channel")
		s.editReply(ctx, in, errorutil.UserNotice(err))
		return nil, err
	}
	if ch.ParentID == s.cfg.ClosedCategoryID {
		s.editReply(ctx, in, noticeAlreadyClosed)
		return nil, nil
	}
	topicRequester, _ := domain.RequesterFromTopic(ch.Topic)
	requesterID, ok := auth.ResolveRequester(topicRequester, ch.Overwrites)
	if !ok {
		err := errorutil.NewNotFound("Ticket requester", map[string]any{"channel_id": ch.ID})
		s.editReply(ctx, in, errorutil.UserNotice(err))
		return nil, err
	}

	steps := []struct {
		name string
		run  func() error
	}{
		{"move to closed category", func() error {
			return s.gateway.MoveChannel(ctx, ch.ID, s.cfg.ClosedCategoryID)
		}},
		{"lock requester", func() error {
			return s.gateway.EditOverwrite(ctx, ch.ID, auth.RequesterOverwrite(domain.PhaseClosed, requesterID))
		}},
		{"post audit message", func() error {
			_, err := s.gateway.SendMessage(ctx, ch.ID, platform.Message{Content: "🔒 Ticket closed by " + actor.Tag})
			return err
		}},
	}
	for _, step := range steps {
		if err := step.run(); err != nil {
			s.logger.Error("ticket close step failed",
				zap.String("step", step.name),
				zap.String("channel_id", ch.ID),
				zap.Error(err))
			s.editReply(ctx, in, noticeCloseFailed)
			return nil, errorutil.NewProvisioningError(step.name, noticeCloseFailed, err)
		}
	}
	s.editReply(ctx, in, noticeClosed)

	s.metrics.Inc(observability.MetricTicketsClosed)
	s.logger.Info("ticket closed",
		zap.String("channel_id", ch.ID),
		zap.String("requester_id", requesterID),
		zap.String("closed_by", actor.ID))

	return &domain.TicketClosure{
		ChannelID:   ch.ID,
		RequesterID: requesterID,
		ClosedByID:  actor.ID,
		ClosedByTag: actor.Tag,
		ClosedAt:    s.now().UTC(),
	}, nil
}

// authorize checks the support role first and only asks the platform for the guild
// owner when the role is missing.
func (s *CloseService) authorize(ctx context.Context, in *platform.Interaction) (bool, error) {
	actor := auth.Actor{UserID: in.User().ID}
	if in.Member != nil {
		actor.RoleIDs = in.Member.RoleIDs
	}
	if actor.HasRole(s.cfg.SupportRoleID) {
		return true, nil
	}
	ownerID, err := s.gateway.GuildOwnerID(ctx, in.GuildID)
	if err != nil {
		return false, notFoundOr(err, "Server")
	}
	return auth.CanCloseTicket(actor, s.cfg.SupportRoleID, ownerID), nil
}

func (s *CloseService) replyPrivately(ctx context.Context, in *platform.Interaction, content string) {
	if err := s.gateway.Reply(ctx, in, platform.Reply{Content: content, Ephemeral: true}); err != nil {
		s.logger.Warn("failed to reply to interaction", zap.String("interaction_id", in.ID), zap.Error(err))
	}
}

func (s *CloseService) editReply(ctx context.Context, in *platform.Interaction, content string) {
	if err := s.gateway.EditReply(ctx, in, content); err != nil {
		s.logger.Warn("failed to edit interaction reply", zap.String("interaction_id", in.ID), zap.Error(err))
	}
}
