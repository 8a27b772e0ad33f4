package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/staffsync/staffsync-api/internal/config"
	"github.com/staffsync/staffsync-api/internal/events"
)

// NotificationService turns domain events into member notifications.
type NotificationService struct {
	logger *zap.Logger
	cfg    config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{logger: logger, cfg: cfg}
}

// EventTypes lists the events that produce notifications.
func (n *NotificationService) EventTypes() []events.EventType {
	return []events.EventType{
		events.EventProfileChangeSubmitted,
		events.EventProfileChangeRecommended,
		events.EventProfileChangeFinalized,
		events.EventProfileUpdated,
		events.EventTierChanged,
		events.EventPasswordResetRequested,
		events.EventPasswordResetCompleted,
	}
}

// Handle delivers notifications for one event.
func (n *NotificationService) Handle(ctx context.Context, event events.Event) error {
	switch event.Type {
	case events.EventProfileChangeSubmitted:
		n.logger.Info("ProfileChangeSubmitted", zap.String("member_id", event.MemberID), zap.Any("payload", event.Payload))
		n.sendWebhookNotificationStub(ctx, event)
	case events.EventProfileChangeRecommended:
		n.logger.Info("ProfileChangeRecommended", zap.String("member_id", event.MemberID), zap.Any("payload", event.Payload))
		n.sendWebhookNotificationStub(ctx, event)
	case events.EventProfileChangeFinalized:
		n.logger.Info("ProfileChangeFinalized", zap.String("member_id", event.MemberID), zap.Any("payload", event.Payload))
		n.sendEmailNotificationStub(ctx, event)
		n.sendWebhookNotificationStub(ctx, event)
	case events.EventPasswordResetRequested:
		n.sendResetCodeStub(ctx, event)
	case events.EventProfileUpdated, events.EventTierChanged, events.EventPasswordResetCompleted:
		n.logger.Info("MemberRecordChanged", zap.String("type", string(event.Type)), zap.String("member_id", event.MemberID))
		n.sendEmailNotificationStub(ctx, event)
	default:
		n.logger.Debug("notification skipped", zap.String("type", string(event.Type)))
	}
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("member_id", event.MemberID),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("member_id", event.MemberID),
		zap.String("event_type", string(event.Type)))
}

// sendResetCodeStub stands in for the mail or SMS gateway. The code itself is
// never logged.
func (n *NotificationService) sendResetCodeStub(_ context.Context, event events.Event) {
	payload, ok := event.Payload.(events.PasswordResetRequestedPayload)
	if !ok {
		n.logger.Warn("password reset event without payload", zap.String("member_id", event.MemberID))
		return
	}
	n.logger.Info("sendResetCodeStub",
		zap.String("member_id", event.MemberID),
		zap.String("channel", string(payload.Channel)),
		zap.String("destination", maskDestination(payload.Destination)))
}
