package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/lukepickard18/botz/internal/auth"
	"github.com/lukepickard18/botz/internal/config"
	"github.com/lukepickard18/botz/internal/events"
	"github.com/lukepickard18/botz/internal/observability"
	"github.com/lukepickard18/botz/internal/platform"
	"github.com/lukepickard18/botz/pkg/util/errorutil"
)

// VerifyButtonID is the custom id of the welcome message button.
const VerifyButtonID = "verify_me"

const (
	welcomeColor          = 0x2b2d31
	noticeVerified        = "✅ You’ve been verified! Welcome!"
	noticeAlreadyVerified = "✅ You’re already verified."
	noticeRoleMissing     = "❌ Member role not found."
	noticeVerifyFailed    = "⚠️ Failed to assign role."
)

var welcomeDescription = strings.Join([]string{
	"Promote.fun is a platform where creators post branded content and get paid based on how many views they receive.",
	"",
	"You don't need any followers to get views — all you need to do is start posting.",
	"",
	"To get full access to the server, just click on the ✅ **Verify Me** button below.",
	"",
	"Once you're verified, you'll be able to:",
	"• Start earning for views",
	"• View active campaigns",
	"• Talk with the community",
	"• Access our full resource guide",
}, "\n")

// VerificationService greets new members and grants the member role on request.
type VerificationService struct {
	gateway platform.Gateway
	cfg     config.VerifyConfig
	logger  *zap.Logger
	metrics *observability.Metrics
}

// NewVerificationService constructs the service.
func NewVerificationService(gateway platform.Gateway, cfg config.VerifyConfig, logger *zap.Logger, metrics *observability.Metrics) *VerificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VerificationService{gateway: gateway, cfg: cfg, logger: logger, metrics: metrics}
}

// HandleMemberJoined posts the welcome panel mentioning the new member.
func (s *VerificationService) HandleMemberJoined(ctx context.Context, event events.Event) error {
	member := event.Member
	if member == nil || member.User.ID == "" {
		return nil
	}
	if _, err := s.gateway.SendMessage(ctx, s.cfg.ChannelID, WelcomeMessage(member.User)); err != nil {
		err = notFoundOr(err, "Verify channel")
		s.logger.Error("failed to send verification message",
			zap.String("member_id", member.User.ID),
			zap.Error(err))
		return err
	}
	return nil
}

// HandleButton grants the member role for verify_me presses.
func (s *VerificationService) HandleButton(ctx context.Context, event events.Event) error {
	in := event.Interaction
	if in.CustomID != VerifyButtonID {
		return nil
	}

	if in.Member != nil && (auth.Actor{RoleIDs: in.Member.RoleIDs}).HasRole(s.cfg.RoleID) {
		s.reply(ctx, in, noticeAlreadyVerified)
		return nil
	}

	user := in.User()
	if err := s.gateway.AddMemberRole(ctx, in.GuildID, user.ID, s.cfg.RoleID); err != nil {
		notice := noticeVerifyFailed
		if errors.Is(err, platform.ErrNotFound) {
			notice = noticeRoleMissing
		}
		s.metrics.RecordError("verify", errorutil.CodeRoleAssignFailed)
		s.logger.Error("failed to assign member role", zap.String("member_id", user.ID), zap.Error(err))
		s.reply(ctx, in, notice)
		return fmt.Errorf("assign member role: %w", err)
	}

	s.metrics.Inc(observability.MetricMembersVerified)
	s.logger.Info("member verified", zap.String("member_id", user.ID))
	s.reply(ctx, in, noticeVerified)
	return nil
}

func (s *VerificationService) reply(ctx context.Context, in *platform.Interaction, content string) {
	if err := s.gateway.Reply(ctx, in, platform.Reply{Content: content, Ephemeral: true}); err != nil {
		s.logger.Warn("failed to reply to interaction", zap.String("interaction_id", in.ID), zap.Error(err))
	}
}

// WelcomeMessage is the join-time verification prompt.
func WelcomeMessage(u platform.User) platform.Message {
	return platform.Message{
		Content: u.Mention(),
		Embeds: []platform.Embed{{
			Title:       "👋 **Welcome to Promote.Fun!**",
			Description: welcomeDescription,
			Color:       welcomeColor,
			Footer:      "Verification System",
		}},
		Buttons: []platform.Button{
			{CustomID: VerifyButtonID, Label: "✅ Verify Me", Style: platform.ButtonSuccess},
		},
	}
}
