package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/smtp"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intentiq/intentiq/internal/domain"
	"github.com/intentiq/intentiq/internal/logger"
)

type stubNotifier struct {
	channel Channel
	err     error
	alerts  []Alert
}

func (s *stubNotifier) Channel() Channel { return s.channel }

func (s *stubNotifier) Notify(_ context.Context, alert Alert) error {
	s.alerts = append(s.alerts, alert)
	return s.err
}

func alertSettings() domain.UserSettings {
	return domain.UserSettings{
		UserID:             "user-1",
		EmailNotifications: true,
		NotifyEmail:        "owner@example.com",
		SlackWebhookURL:    "https://hooks.slack.com/services/T00/B00/XXX",
	}
}

func highSummary() domain.SearchSummary {
	return domain.SearchSummary{Total: 5, High: 2, Medium: 2, Low: 1}
}

func TestDispatchSkipsWithoutHighIntent(t *testing.T) {
	email := &stubNotifier{channel: ChannelEmail}
	d := NewDispatcher([]Notifier{email}, "", logger.NewNop())

	result := d.Dispatch(context.Background(), alertSettings(), domain.SearchSummary{Total: 3, Medium: 3}, nil)

	assert.False(t, result.Attempted())
	assert.Empty(t, email.alerts)
}

func TestDispatchAttemptsChannelsIndependently(t *testing.T) {
	email := &stubNotifier{channel: ChannelEmail, err: errors.New("smtp down")}
	slack := &stubNotifier{channel: ChannelSlack}
	d := NewDispatcher([]Notifier{email, slack}, "https://app.example.com", logger.NewNop())

	result := d.Dispatch(context.Background(), alertSettings(), highSummary(), nil)

	require.Len(t, result.Deliveries, 2)
	assert.Equal(t, []Channel{ChannelEmail}, result.Failed())
	assert.Len(t, slack.alerts, 1)
	assert.Equal(t, "https://app.example.com", slack.alerts[0].DashboardURL)
}

func TestDispatchHonorsPreferences(t *testing.T) {
	email := &stubNotifier{channel: ChannelEmail}
	slack := &stubNotifier{channel: ChannelSlack}
	d := NewDispatcher([]Notifier{email, slack}, "", logger.NewNop())

	settings := alertSettings()
	settings.EmailNotifications = false
	settings.SlackWebhookURL = ""

	result := d.Dispatch(context.Background(), settings, highSummary(), nil)

	assert.False(t, result.Attempted())
	assert.Empty(t, email.alerts)
	assert.Empty(t, slack.alerts)
}

func TestDispatchPassesOnlyHighIntentLeads(t *testing.T) {
	slack := &stubNotifier{channel: ChannelSlack}
	d := NewDispatcher([]Notifier{slack}, "", logger.NewNop())

	leads := []domain.ScoredPost{
		{Post: domain.Post{ExternalID: "1"}, Assessment: domain.Assessment{Label: domain.IntentHigh}},
		{Post: domain.Post{ExternalID: "2"}, Assessment: domain.Assessment{Label: domain.IntentMedium}},
		{Post: domain.Post{ExternalID: "3"}, Assessment: domain.Assessment{Label: domain.IntentHigh}},
	}

	settings := alertSettings()
	settings.EmailNotifications = false

	d.Dispatch(context.Background(), settings, highSummary(), leads)

	require.Len(t, slack.alerts, 1)
	require.Len(t, slack.alerts[0].Leads, 2)
	assert.Equal(t, "1", slack.alerts[0].Leads[0].Post.ExternalID)
	assert.Equal(t, "3", slack.alerts[0].Leads[1].Post.ExternalID)
}

func TestEmailNotifierBuildsMessage(t *testing.T) {
	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte

	e := NewEmailNotifier(SMTPConfig{
		Host: "mail.example.com", Port: "587",
		From: "alerts@intentiq.io", FromName: "IntentIQ",
	})
	e.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		return nil
	}

	alert := Alert{
		Email:   "owner@example.com",
		Summary: highSummary(),
		Leads: []domain.ScoredPost{
			{
				Post:       domain.Post{Platform: domain.PlatformReddit, URL: "https://reddit.com/x", Content: "need a crm"},
				Assessment: domain.Assessment{Label: domain.IntentHigh, Confidence: 90},
			},
		},
	}

	require.NoError(t, e.Notify(context.Background(), alert))
	assert.Equal(t, "mail.example.com:587", gotAddr)
	assert.Equal(t, "alerts@intentiq.io", gotFrom)
	assert.Equal(t, []string{"owner@example.com"}, gotTo)

	msg := string(gotMsg)
	assert.Contains(t, msg, "Subject: 2 new high-intent leads found")
	assert.Contains(t, msg, "From: IntentIQ <alerts@intentiq.io>")
	assert.Contains(t, msg, "Content-Type: text/html")
	assert.Contains(t, msg, "need a crm")
}

func TestTruncateKeepsRunesIntact(t *testing.T) {
	short := "hello"
	assert.Equal(t, short, truncate(short, 10))

	// Cutting mid-character would leave invalid UTF-8 in the rendered body.
	long := strings.Repeat("héllo wörld ", 30)
	got := truncate(long, contentPreviewLen)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, contentPreviewLen, utf8.RuneCountInString(strings.TrimSuffix(got, "...")))
}

func TestEmailNotifierSanitizesHeaders(t *testing.T) {
	e := NewEmailNotifier(SMTPConfig{Host: "mail.example.com", Port: "587", From: "alerts@intentiq.io"})

	var gotMsg []byte
	e.send = func(_ string, _ smtp.Auth, _ string, _ []string, msg []byte) error {
		gotMsg = msg
		return nil
	}

	require.NoError(t, e.Notify(context.Background(), Alert{
		Email:   "owner@example.com\r\nBcc: attacker@example.com",
		Summary: highSummary(),
	}))
	// The injected line break must not survive as its own header line.
	assert.NotContains(t, string(gotMsg), "\r\nBcc:")
}

func TestSlackNotifierPostsBlocks(t *testing.T) {
	var got slackMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := NewSlackNotifier()
	alert := Alert{
		SlackWebhookURL: srv.URL,
		Summary:         highSummary(),
		Leads: []domain.ScoredPost{
			{
				Post:       domain.Post{Platform: domain.PlatformTwitter, URL: "https://twitter.com/i/status/1", Content: "buying a crm"},
				Assessment: domain.Assessment{Label: domain.IntentHigh, Confidence: 85},
			},
		},
		DashboardURL: "https://app.example.com",
	}

	require.NoError(t, s.Notify(context.Background(), alert))

	require.NotEmpty(t, got.Blocks)
	assert.Equal(t, "header", got.Blocks[0].Type)
	assert.Contains(t, got.Blocks[0].Text.Text, "2 new high-intent leads")
	last := got.Blocks[len(got.Blocks)-1]
	assert.Contains(t, last.Text.Text, "dashboard")
}

func TestSlackNotifierRejectsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	s := NewSlackNotifier()
	err := s.Notify(context.Background(), Alert{SlackWebhookURL: srv.URL, Summary: highSummary()})
	assert.Error(t, err)
}
