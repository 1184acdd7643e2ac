package consumers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"venuehub/internal/config"
	"venuehub/internal/database"
	"venuehub/internal/external"
	"venuehub/internal/messaging"
	"venuehub/internal/models"
	"venuehub/internal/notify"
	"venuehub/internal/repository"

	"github.com/nats-io/stan.go"
)

// queueGroup shares each subject across consumer replicas.
const queueGroup = "notifications"

// ConsumerService feeds domain events from NATS into the notification dispatcher
type ConsumerService struct {
	db       *database.DB
	nats     *messaging.NATSClient
	handlers *Handlers
	subs     []stan.Subscription

	closeNotifications func(context.Context) error
}

func NewConsumerService(ctx context.Context, cfg *config.Config) (cs *ConsumerService, err error) {
	cs = &ConsumerService{}
	defer func() {
		if err != nil {
			_ = cs.Shutdown(context.Background())
			cs = nil
		}
	}()

	cs.db, err = database.Connect(cfg.Database)
	if err != nil {
		return cs, fmt.Errorf("failed to connect to database: %w", err)
	}

	cs.nats, err = messaging.NewNATSClient(cfg.NATS)
	if err != nil {
		return cs, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	repos := repository.NewRepositories(cs.db)
	notifications, closeNotifications, err := repository.OpenNotificationStore(ctx, cs.db,
		cfg.Notifications.Store, cfg.Notifications.MongoURI, cfg.Notifications.MongoDatabase)
	if err != nil {
		return cs, err
	}
	cs.closeNotifications = closeNotifications

	dispatcher := notify.NewDispatcher(repos.Identities, notifications, external.NewMailer(cfg.Mail), cfg.AppBaseURL)
	cs.handlers = NewHandlers(dispatcher)

	return cs, nil
}

// Start subscribes to every domain event subject
func (cs *ConsumerService) Start() error {
	slog.Info("Starting NATS consumers...")

	for _, subject := range models.EventSubjects {
		sub, err := cs.nats.SubscribeQueue(subject, queueGroup, cs.handlers.For(subject))
		if err != nil {
			return err
		}
		cs.subs = append(cs.subs, sub)
	}

	slog.Info("All consumers started successfully", "subjects", len(cs.subs))
	return nil
}

// Shutdown closes subscriptions, keeping their durable position, and then
// the connections.
func (cs *ConsumerService) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down consumer service...")

	var errs []error
	for _, sub := range cs.subs {
		if err := sub.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	cs.subs = nil

	if cs.nats != nil {
		if err := cs.nats.Close(); err != nil {
			slog.Error("Error closing NATS connection", "error", err)
			errs = append(errs, err)
		}
	}

	if cs.closeNotifications != nil {
		if err := cs.closeNotifications(ctx); err != nil {
			slog.Error("Error closing notification store", "error", err)
			errs = append(errs, err)
		}
	}

	if cs.db != nil {
		if err := cs.db.Close(); err != nil {
			slog.Error("Error closing database connection", "error", err)
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
