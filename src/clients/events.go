package clients

import (
	"encoding/json"
	"fmt"
	"time"

	"timetrack-session-svc/src/internal/config"
	"timetrack-session-svc/src/internal/models"

	"github.com/sirupsen/logrus"
	"github.com/streadway/amqp"
)

// EventsPublisher publishes session lifecycle and cleanup-report messages
// to the time-tracking backend's event exchange.
type EventsPublisher struct {
	channel *amqp.Channel
	cfg     *config.RabbitMQConfig
}

func NewEventsPublisher(cfg *config.Configuration, channel *amqp.Channel) *EventsPublisher {
	return &EventsPublisher{
		channel: channel,
		cfg:     &cfg.Queue.RabbitMQ,
	}
}

// PublishSessionEvent publishes one lifecycle transition for a session.
func (p *EventsPublisher) PublishSessionEvent(userID, sessionID, serviceName, action, ipAddress, userAgent string) error {
	message := models.SessionEventMessage{
		UserID:      userID,
		SessionID:   sessionID,
		ServiceName: serviceName,
		Action:      action,
		IPAddress:   ipAddress,
		UserAgent:   userAgent,
		Timestamp:   time.Now(),
	}

	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal session event: %w", err)
	}

	if err := p.publish(body); err != nil {
		logrus.WithError(err).Error("Failed to publish session event")
		return fmt.Errorf("failed to publish session event: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"user_id":     userID,
		"session_id":  sessionID,
		"service":     serviceName,
		"action":      action,
		"exchange":    p.cfg.Exchange,
		"routing_key": p.cfg.RoutingKey,
	}).Debug("Session event published")

	return nil
}

// PublishCleanupReport publishes the counters of a finished cleanup run.
func (p *EventsPublisher) PublishCleanupReport(report *models.CleanupReport) error {
	message := models.CleanupReportMessage{
		ServiceName: models.ServiceSessionCleanup,
		Report:      *report,
		Timestamp:   time.Now(),
	}

	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal cleanup report: %w", err)
	}

	if err := p.publish(body); err != nil {
		logrus.WithError(err).Error("Failed to publish cleanup report")
		return fmt.Errorf("failed to publish cleanup report: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"deleted":     report.DeletedSessions,
		"exchange":    p.cfg.Exchange,
		"routing_key": p.cfg.RoutingKey,
	}).Debug("Cleanup report published")

	return nil
}

func (p *EventsPublisher) publish(body []byte) error {
	return p.channel.Publish(
		p.cfg.Exchange,
		p.cfg.RoutingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
			Timestamp:   time.Now(),
		},
	)
}
