package intent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/intentiq/intentiq/internal/domain"
)

const (
	modelHTTPTimeout = 30 * time.Second

	systemPrompt = `You score social media posts for buyer intent on behalf of a ` +
		`lead generation tool. Respond with a single JSON object and nothing else: ` +
		`{"label": "HIGH"|"MEDIUM"|"LOW", "confidence": 0-100, "signals": ["..."]}. ` +
		`HIGH means the author is actively looking to buy a product or service, ` +
		`MEDIUM means they are researching or comparing options, LOW means neither.`
)

// ModelClassifier scores content with an OpenAI-compatible chat completions
// endpoint. A shared rate limiter keeps batch classification under the
// provider's request budget.
type ModelClassifier struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
	limiter *rate.Limiter
}

// NewModelClassifier constructs a classifier. rps bounds outbound requests
// per second; values below 1 fall back to 1.
func NewModelClassifier(baseURL, apiKey, model string, rps int) *ModelClassifier {
	if rps <= 0 {
		rps = 1
	}
	return &ModelClassifier{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		client:  &http.Client{Timeout: modelHTTPTimeout},
		limiter: rate.NewLimiter(rate.Limit(rps), rps),
	}
}

func (m *ModelClassifier) Strategy() string { return StrategyModel }

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type modelVerdict struct {
	Label      string   `json:"label"`
	Confidence int      `json:"confidence"`
	Signals    []string `json:"signals"`
}

func (m *ModelClassifier) Classify(ctx context.Context, content string, queryKeywords []string) (domain.Assessment, error) {
	if err := m.limiter.Wait(ctx); err != nil {
		return domain.Assessment{}, err
	}

	body, err := json.Marshal(chatRequest{
		Model: m.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: content},
		},
		Temperature: 0,
		MaxTokens:   256,
	})
	if err != nil {
		return domain.Assessment{}, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		m.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return domain.Assessment{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.apiKey)

	resp, err := m.client.Do(req)
	if err != nil {
		return domain.Assessment{}, fmt.Errorf("do request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return domain.Assessment{}, fmt.Errorf("unexpected status %s", resp.Status)
	}

	var chat chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chat); err != nil {
		return domain.Assessment{}, fmt.Errorf("decode response: %w", err)
	}
	if len(chat.Choices) == 0 {
		return domain.Assessment{}, fmt.Errorf("empty completion")
	}

	verdict, err := parseVerdict(chat.Choices[0].Message.Content)
	if err != nil {
		return domain.Assessment{}, err
	}

	return domain.Assessment{
		Label:           domain.IntentLabel(verdict.Label),
		Confidence:      verdict.Confidence,
		MatchedKeywords: matchQueryKeywords(strings.ToLower(content), queryKeywords),
		Signals:         verdict.Signals,
		Strategy:        StrategyModel,
	}, nil
}

// parseVerdict extracts the JSON object from the completion text. Models
// sometimes wrap the object in markdown fences or prose.
func parseVerdict(text string) (modelVerdict, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return modelVerdict{}, fmt.Errorf("no JSON object in completion")
	}

	var v modelVerdict
	if err := json.Unmarshal([]byte(text[start:end+1]), &v); err != nil {
		return modelVerdict{}, fmt.Errorf("parse verdict: %w", err)
	}

	v.Label = strings.ToUpper(strings.TrimSpace(v.Label))
	if !domain.IntentLabel(v.Label).Valid() {
		return modelVerdict{}, fmt.Errorf("invalid label %q", v.Label)
	}
	if v.Confidence < 0 {
		v.Confidence = 0
	}
	if v.Confidence > 100 {
		v.Confidence = 100
	}
	return v, nil
}
