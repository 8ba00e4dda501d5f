package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/lukepickard18/botz/internal/config"
	"github.com/lukepickard18/botz/internal/domain"
	"github.com/lukepickard18/botz/internal/events"
	"github.com/lukepickard18/botz/internal/observability"
	"github.com/lukepickard18/botz/internal/platform"
)

const (
	panelClearLimit = 10
	panelColor      = 0x5865f2
)

var categoryButtonStyles = map[domain.CategoryID]platform.ButtonStyle{
	domain.CategoryGeneralSupport:    platform.ButtonPrimary,
	domain.CategoryTechnicalSupport:  platform.ButtonSecondary,
	domain.CategoryPaymentIssues:     platform.ButtonSuccess,
	domain.CategoryBusinessInquiries: platform.ButtonPrimary,
}

// BestEffortResult reports what a best-effort cleanup managed to do. Callers may ignore it.
type BestEffortResult struct {
	Found   int
	Deleted int
	Err     error
}

// PanelService keeps a single category panel at the bottom of the support channel.
type PanelService struct {
	gateway platform.Gateway
	cfg     config.TicketConfig
	logger  *zap.Logger
	metrics *observability.Metrics
}

// NewPanelService constructs the service.
func NewPanelService(gateway platform.Gateway, cfg config.TicketConfig, logger *zap.Logger, metrics *observability.Metrics) *PanelService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PanelService{gateway: gateway, cfg: cfg, logger: logger, metrics: metrics}
}

// HandleReady publishes the panel once the gateway session is up.
func (s *PanelService) HandleReady(ctx context.Context, _ events.Event) error {
	return s.Publish(ctx)
}

// Publish clears recent messages from the support channel and posts a fresh panel.
// Panels older than the cleared window are left in place.
func (s *PanelService) Publish(ctx context.Context) error {
	ch, err := s.gateway.FetchChannel(ctx, s.cfg.SupportChannelID)
	if err != nil {
		err = notFoundOr(err, "Support channel")
		s.logger.Error("cannot publish ticket panel", zap.String("channel_id", s.cfg.SupportChannelID), zap.Error(err))
		return err
	}

	res := s.ClearRecentMessages(ctx, ch.ID)
	if res.Err != nil {
		s.logger.Debug("support channel cleanup incomplete",
			zap.Int("found", res.Found),
			zap.Error(res.Err))
	}

	if _, err := s.gateway.SendMessage(ctx, ch.ID, PanelMessage()); err != nil {
		s.logger.Error("failed to post ticket panel", zap.String("channel_id", ch.ID), zap.Error(err))
		return fmt.Errorf("post ticket panel: %w", err)
	}
	s.metrics.Inc(observability.MetricPanelsPublished)
	s.logger.Info("ticket panel published", zap.String("channel_id", ch.ID), zap.Int("cleared", res.Deleted))
	return nil
}

// ClearRecentMessages deletes up to ten of the newest messages in channelID.
// Failures are reported in the result, never returned.
func (s *PanelService) ClearRecentMessages(ctx context.Context, channelID string) BestEffortResult {
	ids, err := s.gateway.RecentMessageIDs(ctx, channelID, panelClearLimit)
	if err != nil {
		return BestEffortResult{Err: err}
	}
	res := BestEffortResult{Found: len(ids)}
	if len(ids) == 0 {
		return res
	}
	if err := s.gateway.DeleteMessages(ctx, channelID, ids); err != nil {
		res.Err = err
		return res
	}
	res.Deleted = len(ids)
	return res
}

// PanelMessage is the support channel embed with one button per category.
func PanelMessage() platform.Message {
	cats := domain.Categories()
	buttons := make([]platform.Button, 0, len(cats))
	for _, c := range cats {
		buttons = append(buttons, platform.Button{
			CustomID: string(c.ID),
			Label:    c.Emoji + " " + c.Label,
			Style:    categoryButtonStyles[c.ID],
		})
	}
	return platform.Message{
		Embeds: []platform.Embed{{
			Title:       "🎫 Need Assistance?",
			Description: "Select a support category below to open a ticket.\n\nA staff member will review your request and respond as soon as possible.",
			Color:       panelColor,
			Footer:      "Promote.fun Support",
		}},
		Buttons: buttons,
	}
}
