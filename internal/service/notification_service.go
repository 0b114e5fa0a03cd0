package service

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/box-office/internal/config"
	"github.com/spec-kit/box-office/internal/events"
	"github.com/spec-kit/box-office/internal/persistence"
)

// Notifier delivers one fire-and-forget message to an org member. Transport
// (WhatsApp, email, push) lives behind this seam; the core never blocks on
// it.
type Notifier interface {
	Notify(ctx context.Context, userID, title, body string) error
}

// NotificationService consumes post-commit domain events and routes
// notifications up the seller's org chain.
type NotificationService struct {
	dispatcher events.Dispatcher
	notifier   Notifier
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, notifier Notifier, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		notifier:   notifier,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketSold, n.handleTicketSold)
	n.dispatcher.Subscribe(events.EventTicketValidated, n.handleTicketValidated)
	n.dispatcher.Subscribe(events.EventTicketCancelled, n.handleStatusChanged)
	n.dispatcher.Subscribe(events.EventTicketDisabled, n.handleStatusChanged)
	n.dispatcher.Subscribe(events.EventTicketEnabled, n.handleStatusChanged)
}

func (n *NotificationService) handleTicketSold(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketSoldPayload)
	if !ok {
		return nil
	}
	n.logger.Info("TicketSold", zap.String("ticket_id", event.TicketID), zap.String("seller_id", payload.SellerID))
	title := "Ticket sold"
	body := fmt.Sprintf("code %s, quantity %d, total %s", payload.Code, payload.Quantity, payload.TotalPrice.StringFixed(2))
	for _, userID := range payload.OrgChainIDs {
		n.send(ctx, userID, title, body)
	}
	return nil
}

func (n *NotificationService) handleTicketValidated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketValidatedPayload)
	if !ok {
		return nil
	}
	n.logger.Info("TicketValidated", zap.String("ticket_id", event.TicketID), zap.String("validator_id", payload.ValidatorID))
	n.send(ctx, payload.SellerID, "Ticket validated", fmt.Sprintf("code %s scanned at the gate", payload.Code))
	return nil
}

func (n *NotificationService) handleStatusChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketStatusChangedPayload)
	if !ok {
		return nil
	}
	n.logger.Info("TicketStatusChanged",
		zap.String("ticket_id", event.TicketID),
		zap.String("old_status", string(payload.OldStatus)),
		zap.String("new_status", string(payload.NewStatus)))
	n.send(ctx, payload.SellerID, "Ticket "+string(payload.NewStatus), fmt.Sprintf("code %s is now %s", payload.Code, payload.NewStatus))
	return nil
}

func (n *NotificationService) send(ctx context.Context, userID, title, body string) {
	if n.notifier == nil {
		return
	}
	if err := n.notifier.Notify(ctx, userID, title, body); err != nil {
		n.logger.Warn("notification delivery failed",
			zap.String("user_id", userID),
			zap.Error(err))
	}
}

// RedisNotifier publishes notification envelopes on a Redis channel for the
// external delivery workers to pick up.
type RedisNotifier struct {
	redis   *persistence.Redis
	channel string
	logger  *zap.Logger
}

// NewRedisNotifier creates the notifier.
func NewRedisNotifier(redis *persistence.Redis, channel string, logger *zap.Logger) *RedisNotifier {
	return &RedisNotifier{redis: redis, channel: channel, logger: logger}
}

type notificationEnvelope struct {
	UserID string `json:"user_id"`
	Title  string `json:"title"`
	Body   string `json:"body"`
}

// Notify serializes the message onto the channel. A missing Redis client
// degrades to log-only delivery.
func (r *RedisNotifier) Notify(ctx context.Context, userID, title, body string) error {
	payload, err := json.Marshal(notificationEnvelope{UserID: userID, Title: title, Body: body})
	if err != nil {
		return err
	}
	if r.redis == nil || r.redis.Client == nil {
		r.logger.Debug("notification (no redis)", zap.String("user_id", userID), zap.String("title", title))
		return nil
	}
	return r.redis.Client.Publish(ctx, r.channel, payload).Err()
}
