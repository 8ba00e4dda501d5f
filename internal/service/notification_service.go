package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/lukepickard18/botz/internal/config"
	"github.com/lukepickard18/botz/internal/events"
)

// NotificationService handles emitting notifications for ticket lifecycle events.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketCreated, n.handleTicketCreated)
	n.dispatcher.Subscribe(events.EventTicketClosed, n.handleTicketClosed)
}

// webhookPayload is the JSON body posted to NOTIFY_WEBHOOK_URL.
type webhookPayload struct {
	EventID     string    `json:"event_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	TicketNo    int64     `json:"ticket_number,omitempty"`
	Category    string    `json:"category,omitempty"`
	ChannelID   string    `json:"channel_id"`
	RequesterID string    `json:"requester_id"`
	ClosedByID  string    `json:"closed_by_id,omitempty"`
}

func (n *NotificationService) handleTicketCreated(ctx context.Context, event events.Event) error {
	t := event.Ticket
	if t == nil {
		return nil
	}
	n.logger.Info("TicketCreated",
		zap.String("event_id", event.ID),
		zap.Int64("ticket", t.Number),
		zap.String("channel_id", t.ChannelID))
	return n.sendWebhook(ctx, webhookPayload{
		EventID:     event.ID,
		EventType:   string(event.Type),
		Timestamp:   event.Timestamp,
		TicketNo:    t.Number,
		Category:    string(t.Category.ID),
		ChannelID:   t.ChannelID,
		RequesterID: t.RequesterID,
	})
}

func (n *NotificationService) handleTicketClosed(ctx context.Context, event events.Event) error {
	c := event.Closure
	if c == nil {
		return nil
	}
	n.logger.Info("TicketClosed",
		zap.String("event_id", event.ID),
		zap.String("channel_id", c.ChannelID),
		zap.String("closed_by", c.ClosedByID))
	return n.sendWebhook(ctx, webhookPayload{
		EventID:     event.ID,
		EventType:   string(event.Type),
		Timestamp:   event.Timestamp,
		ChannelID:   c.ChannelID,
		RequesterID: c.RequesterID,
		ClosedByID:  c.ClosedByID,
	})
}

// sendWebhook posts payload to the configured URL. The fiber client cannot be
// cancelled once started, so the request timeout is capped by ctx's deadline and a
// context that is already done skips the post.
func (n *NotificationService) sendWebhook(ctx context.Context, payload webhookPayload) error {
	url := strings.TrimSpace(n.cfg.WebhookURL)
	if url == "" {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("webhook post: %w", err)
	}

	agent := fiber.Post(url)
	if timeout := n.webhookTimeout(ctx); timeout > 0 {
		agent.Timeout(timeout)
	}
	agent.JSON(payload)
	if err := agent.Parse(); err != nil {
		return fmt.Errorf("webhook request: %w", err)
	}

	status, _, errs := agent.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("webhook post: %w", errs[0])
	}
	if status >= fiber.StatusBadRequest {
		return fmt.Errorf("webhook post: unexpected status %d", status)
	}
	n.logger.Debug("webhook delivered", zap.String("event_type", payload.EventType), zap.Int("status", status))
	return nil
}

func (n *NotificationService) webhookTimeout(ctx context.Context) time.Duration {
	timeout := time.Duration(n.cfg.WebhookTimeoutSeconds) * time.Second
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); timeout <= 0 || remaining < timeout {
			timeout = remaining
		}
	}
	return timeout
}
