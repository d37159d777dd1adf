package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const slackHTTPTimeout = 10 * time.Second

// SlackNotifier posts a Block Kit message to the user's incoming webhook.
type SlackNotifier struct {
	client *http.Client
}

func NewSlackNotifier() *SlackNotifier {
	return &SlackNotifier{client: &http.Client{Timeout: slackHTTPTimeout}}
}

func (s *SlackNotifier) Channel() Channel { return ChannelSlack }

type slackMessage struct {
	Blocks []slackBlock `json:"blocks"`
}

type slackBlock struct {
	Type string     `json:"type"`
	Text *slackText `json:"text,omitempty"`
}

type slackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func (s *SlackNotifier) Notify(ctx context.Context, alert Alert) error {
	if alert.SlackWebhookURL == "" {
		return fmt.Errorf("no webhook URL")
	}

	body, err := json.Marshal(buildMessage(alert))
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, alert.SlackWebhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}
	return nil
}

func buildMessage(alert Alert) slackMessage {
	msg := slackMessage{
		Blocks: []slackBlock{
			{
				Type: "header",
				Text: &slackText{Type: "plain_text", Text: fmt.Sprintf("🎯 %d new high-intent leads", alert.Summary.High)},
			},
			{
				Type: "section",
				Text: &slackText{
					Type: "mrkdwn",
					Text: fmt.Sprintf("*%d* posts matched: *%d* high, *%d* medium, *%d* low intent.",
						alert.Summary.Total, alert.Summary.High, alert.Summary.Medium, alert.Summary.Low),
				},
			},
		},
	}

	for i, lead := range alert.Leads {
		if i == slackLeadLimit {
			break
		}
		msg.Blocks = append(msg.Blocks, slackBlock{
			Type: "section",
			Text: &slackText{
				Type: "mrkdwn",
				Text: fmt.Sprintf("<%s|%s> (%d%%): %s",
					lead.Post.URL, lead.Post.Platform, lead.Assessment.Confidence,
					truncate(lead.Post.Content, contentPreviewLen)),
			},
		})
	}

	if alert.DashboardURL != "" {
		msg.Blocks = append(msg.Blocks, slackBlock{
			Type: "section",
			Text: &slackText{Type: "mrkdwn", Text: fmt.Sprintf("<%s|Open your dashboard>", alert.DashboardURL)},
		})
	}
	return msg
}

const slackLeadLimit = 3
