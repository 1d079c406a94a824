package worker

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/30Sativa/AWS-Blood-Donation-Support-sub002/internal/model"
	"github.com/30Sativa/AWS-Blood-Donation-Support-sub002/internal/service/escalation"
	"github.com/30Sativa/AWS-Blood-Donation-Support-sub002/pkg/logger"
	"github.com/30Sativa/AWS-Blood-Donation-Support-sub002/pkg/messaging"
)

// EscalationConsumer subscribes to the events channel and feeds match
// lifecycle events to the escalation service. Payloads that are not
// match events are ignored.
type EscalationConsumer struct {
	broker  messaging.Broker
	service *escalation.Service
	logger  *logger.Logger
}

func NewEscalationConsumer(broker messaging.Broker, service *escalation.Service, logger *logger.Logger) *EscalationConsumer {
	return &EscalationConsumer{
		broker:  broker,
		service: service,
		logger:  logger,
	}
}

func (c *EscalationConsumer) Start(ctx context.Context) error {
	messages, err := c.broker.Subscribe(ctx, messaging.ChannelEvents)
	if err != nil {
		return err
	}

	c.logger.Info("Starting escalation consumer", "channel", messaging.ChannelEvents)

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("Shutting down escalation consumer")
			return nil
		case msg, ok := <-messages:
			if !ok {
				c.logger.Warn("Event channel closed")
				return nil
			}
			c.handle(ctx, msg)
		}
	}
}

func (c *EscalationConsumer) handle(ctx context.Context, raw []byte) {
	var evt model.MatchEvent
	if err := json.Unmarshal(raw, &evt); err != nil {
		c.logger.Warn("Dropping undecodable event payload", "error", err.Error())
		return
	}
	if evt.MatchID == uuid.Nil || evt.Event == "" {
		// Not a match event; other event types share the channel.
		return
	}

	if err := c.service.HandleMatchEvent(ctx, evt); err != nil {
		c.logger.Error(err, "Failed to handle match event",
			"match_id", evt.MatchID.String(),
			"event", evt.Event)
	}
}
