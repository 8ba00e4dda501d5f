package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/lukepickard18/botz/internal/events"
	"github.com/lukepickard18/botz/internal/platform"
	"github.com/lukepickard18/botz/pkg/util/errorutil"
)

// EventRouter turns gateway callbacks into dispatcher events and subscribes the
// controllers that react to them.
type EventRouter struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// RouterControllers are the event consumers. Verification and Notification are optional.
type RouterControllers struct {
	Panel        *PanelService
	Intake       *IntakeService
	Close        *CloseService
	Verification *VerificationService
	Notification *NotificationService
}

// NewEventRouter subscribes controllers to dispatcher.
func NewEventRouter(dispatcher events.Dispatcher, logger *zap.Logger, c RouterControllers) *EventRouter {
	if logger == nil {
		logger = zap.NewNop()
	}
	if c.Panel != nil {
		dispatcher.Subscribe(events.EventReady, c.Panel.HandleReady)
	}
	if c.Intake != nil {
		dispatcher.Subscribe(events.EventButtonPressed, c.Intake.HandleButton)
		dispatcher.Subscribe(events.EventModalSubmitted, c.Intake.HandleModal)
	}
	if c.Close != nil {
		dispatcher.Subscribe(events.EventButtonPressed, c.Close.HandleButton)
	}
	if c.Verification != nil {
		dispatcher.Subscribe(events.EventMemberJoined, c.Verification.HandleMemberJoined)
		dispatcher.Subscribe(events.EventButtonPressed, c.Verification.HandleButton)
	}
	if c.Notification != nil {
		c.Notification.RegisterHandlers()
	}
	return &EventRouter{dispatcher: dispatcher, logger: logger}
}

// Handlers returns the gateway callbacks that feed the dispatcher.
func (r *EventRouter) Handlers() platform.Handlers {
	return platform.Handlers{
		OnReady: func(ctx context.Context, self platform.User) {
			r.logger.Info("logged in", zap.String("user", self.Tag), zap.String("user_id", self.ID))
			publish(ctx, r.dispatcher, r.logger, events.ReadyEvent(self))
		},
		OnMemberJoined: func(ctx context.Context, member platform.Member) {
			publish(ctx, r.dispatcher, r.logger, events.MemberJoinedEvent(member))
		},
		OnInteraction: func(ctx context.Context, in *platform.Interaction) {
			event, ok := events.InteractionEvent(in)
			if !ok {
				return
			}
			publish(ctx, r.dispatcher, r.logger, event)
		},
	}
}

// notFoundOr converts platform not-found errors into NOT_FOUND domain errors.
func notFoundOr(err error, resource string) error {
	if errors.Is(err, platform.ErrNotFound) {
		de := errorutil.NewNotFound(resource, nil).(*errorutil.DomainError)
		de.Err = err
		return de
	}
	return err
}

func publish(ctx context.Context, d events.Dispatcher, logger *zap.Logger, event events.Event) {
	if d == nil {
		return
	}
	if err := d.Publish(ctx, event); err != nil {
		logger.Warn("event listeners failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}
