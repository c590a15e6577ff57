package naming

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/engleong-lee/stash/internal/models"
)

const (
	claudeTimeout    = 10 * time.Second
	claudeAPIVersion = "2023-06-01"
	claudeMaxTokens  = 50
)

// Claude generates names with the Anthropic Messages API. The API key is read
// from settings on every call.
type Claude struct {
	client   *resty.Client
	url      string
	model    string
	settings SettingsSource
	timeout  time.Duration
}

var _ Provider = (*Claude)(nil)

func NewClaude(apiURL, model string, settings SettingsSource) *Claude {
	client := resty.New().SetHeader("Content-Type", "application/json")
	return &Claude{
		client:   client,
		url:      apiURL,
		model:    model,
		settings: settings,
		timeout:  claudeTimeout,
	}
}

func (c *Claude) Name() string { return string(models.ProviderClaude) }

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens"`
	Messages  []claudeMessage `json:"messages"`
}

type claudeResponse struct {
	ID      string `json:"id"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Model      string `json:"model"`
	StopReason string `json:"stop_reason"`
}

func (c *Claude) apiKey(ctx context.Context) string {
	s, err := c.settings.Get(ctx)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(s.ClaudeAPIKey)
}

// CheckAvailable reports whether an API key is configured. No request is made.
func (c *Claude) CheckAvailable(ctx context.Context) bool {
	return c.apiKey(ctx) != ""
}

func (c *Claude) GenerateName(ctx context.Context, titles []string) (string, error) {
	key := c.apiKey(ctx)
	if key == "" {
		return "", ErrMissingAPIKey
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var out claudeResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("x-api-key", key).
		SetHeader("anthropic-version", claudeAPIVersion).
		ForceContentType("application/json").
		SetBody(claudeRequest{
			Model:     c.model,
			MaxTokens: claudeMaxTokens,
			Messages:  []claudeMessage{{Role: "user", Content: BuildPrompt(titles)}},
		}).
		SetResult(&out).
		Post(c.url)
	if err != nil {
		return "", requestError(ctx, c.Name(), err)
	}
	if !resp.IsSuccess() {
		return "", &APIError{Provider: c.Name(), StatusCode: resp.StatusCode(), Body: resp.String()}
	}

	if len(out.Content) == 0 || out.Content[0].Type != "text" {
		return "", fmt.Errorf("claude: %w", ErrEmptyResponse)
	}
	return CleanResponse(out.Content[0].Text), nil
}
