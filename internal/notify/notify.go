// Package notify delivers high-intent lead alerts over the user's enabled
// channels.
package notify

import (
	"context"

	"github.com/intentiq/intentiq/internal/domain"
	"github.com/intentiq/intentiq/internal/logger"
)

// Channel identifies a delivery mechanism.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSlack Channel = "slack"
)

// Notifier delivers one alert over one channel.
type Notifier interface {
	Channel() Channel
	Notify(ctx context.Context, alert Alert) error
}

// Alert is the payload handed to every channel. The recipient address and
// webhook come from the user's settings, so notifiers stay stateless.
type Alert struct {
	UserID          string
	Email           string
	SlackWebhookURL string
	Summary         domain.SearchSummary
	Leads           []domain.ScoredPost
	DashboardURL    string
}

// Delivery records one channel attempt.
type Delivery struct {
	Channel Channel
	Err     error
}

// Result collects the per-channel outcomes of one dispatch.
type Result struct {
	Deliveries []Delivery
}

// Attempted reports whether any channel was tried.
func (r Result) Attempted() bool { return len(r.Deliveries) > 0 }

// Failed returns the channels that errored.
func (r Result) Failed() []Channel {
	var failed []Channel
	for _, d := range r.Deliveries {
		if d.Err != nil {
			failed = append(failed, d.Channel)
		}
	}
	return failed
}

// Dispatcher fans an alert out to the channels the user's settings enable.
type Dispatcher struct {
	notifiers    map[Channel]Notifier
	dashboardURL string
	log          logger.Logger
}

func NewDispatcher(notifiers []Notifier, dashboardURL string, log logger.Logger) *Dispatcher {
	byChannel := make(map[Channel]Notifier, len(notifiers))
	for _, n := range notifiers {
		byChannel[n.Channel()] = n
	}
	return &Dispatcher{notifiers: byChannel, dashboardURL: dashboardURL, log: log}
}

// Dispatch sends an alert when the search produced at least one high-intent
// lead and the user enabled a channel. Channels are attempted independently;
// one failing never blocks another.
func (d *Dispatcher) Dispatch(ctx context.Context, settings domain.UserSettings, summary domain.SearchSummary, leads []domain.ScoredPost) Result {
	var result Result

	if summary.High == 0 {
		return result
	}

	alert := Alert{
		UserID:          settings.UserID,
		Email:           settings.NotifyEmail,
		SlackWebhookURL: settings.SlackWebhookURL,
		Summary:         summary,
		Leads:           highIntent(leads),
		DashboardURL:    d.dashboardURL,
	}

	for _, channel := range d.enabledChannels(settings) {
		notifier, ok := d.notifiers[channel]
		if !ok {
			d.log.Warn("Notification channel enabled but notifier missing",
				logger.String("user_id", settings.UserID),
				logger.String("channel", string(channel)),
			)
			continue
		}

		err := notifier.Notify(ctx, alert)
		if err != nil {
			d.log.Warn("Notification delivery failed",
				logger.String("user_id", settings.UserID),
				logger.String("channel", string(channel)),
				logger.Error(err),
			)
		}
		result.Deliveries = append(result.Deliveries, Delivery{Channel: channel, Err: err})
	}

	return result
}

func (d *Dispatcher) enabledChannels(settings domain.UserSettings) []Channel {
	var channels []Channel
	if settings.EmailNotifications && settings.NotifyEmail != "" {
		channels = append(channels, ChannelEmail)
	}
	if settings.SlackWebhookURL != "" {
		channels = append(channels, ChannelSlack)
	}
	return channels
}

func highIntent(leads []domain.ScoredPost) []domain.ScoredPost {
	var out []domain.ScoredPost
	for _, lead := range leads {
		if lead.Assessment.Label == domain.IntentHigh {
			out = append(out, lead)
		}
	}
	return out
}
