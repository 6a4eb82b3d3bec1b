// Package notify delivers deployment events, such as CDN purge requests
// after a publish, to external endpoints.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Channel represents a notification channel type.
type Channel string

const (
	ChannelWebhook Channel = "webhook"
	ChannelLog     Channel = "log"
)

// Message represents a deployment event.
type Message struct {
	Event string   `json:"event"`
	Title string   `json:"title"`
	Body  string   `json:"body,omitempty"`
	URL   string   `json:"url,omitempty"`
	Paths []string `json:"paths,omitempty"`
}

// Notifier defines the interface for sending notifications.
type Notifier interface {
	Send(ctx context.Context, msg Message) error
	Channel() Channel
}

// Dispatcher fans a message out to every registered notifier.
type Dispatcher struct {
	notifiers []Notifier
	logger    *slog.Logger
}

// NewDispatcher creates a new notification dispatcher.
func NewDispatcher(notifiers ...Notifier) *Dispatcher {
	return &Dispatcher{notifiers: notifiers, logger: slog.Default()}
}

// Register adds a notifier to the dispatcher.
func (d *Dispatcher) Register(n Notifier) {
	d.notifiers = append(d.notifiers, n)
}

// Len returns the number of registered notifiers.
func (d *Dispatcher) Len() int { return len(d.notifiers) }

// SendAll sends a message to all registered notifiers and joins the errors.
func (d *Dispatcher) SendAll(ctx context.Context, msg Message) error {
	var errs []error
	for _, n := range d.notifiers {
		if err := n.Send(ctx, msg); err != nil {
			d.logger.Error("notification failed", "channel", n.Channel(), "event", msg.Event, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", n.Channel(), err))
			continue
		}
		d.logger.Info("notification sent", "channel", n.Channel(), "event", msg.Event)
	}
	return errors.Join(errs...)
}

// LogNotifier writes messages to the logger. It stands in for real channels
// during dry runs.
type LogNotifier struct {
	Logger *slog.Logger
}

func (l LogNotifier) Channel() Channel { return ChannelLog }

func (l LogNotifier) Send(_ context.Context, msg Message) error {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info(msg.Title, "event", msg.Event, "url", msg.URL, "paths", len(msg.Paths))
	return nil
}
