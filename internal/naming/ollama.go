package naming

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-resty/resty/v2"

	"github.com/engleong-lee/stash/internal/models"
)

const (
	ollamaProbeTimeout    = 2 * time.Second
	ollamaListTimeout     = 3 * time.Second
	ollamaGenerateTimeout = 15 * time.Second
)

// Ollama generates names with a local Ollama server.
type Ollama struct {
	client   *resty.Client
	settings SettingsSource

	probeTimeout    time.Duration
	listTimeout     time.Duration
	generateTimeout time.Duration
}

var _ Provider = (*Ollama)(nil)

// NewOllama creates an Ollama provider for the server at baseURL. The model
// is read from settings on every call.
func NewOllama(baseURL string, settings SettingsSource) *Ollama {
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("Content-Type", "application/json")

	return &Ollama{
		client:          client,
		settings:        settings,
		probeTimeout:    ollamaProbeTimeout,
		listTimeout:     ollamaListTimeout,
		generateTimeout: ollamaGenerateTimeout,
	}
}

func (o *Ollama) Name() string { return string(models.ProviderOllama) }

type ollamaTagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// ollamaGenerateRequest is the request body for /api/generate.
type ollamaGenerateRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	Stream  bool          `json:"stream"`
	Options ollamaOptions `json:"options"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict"`
}

// ollamaGenerateResponse is the response body from /api/generate.
type ollamaGenerateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// CheckAvailable reports whether the server answers /api/tags within two seconds.
func (o *Ollama) CheckAvailable(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, o.probeTimeout)
	defer cancel()

	resp, err := o.client.R().SetContext(ctx).Get("/api/tags")
	if err != nil {
		return false
	}
	return resp.IsSuccess()
}

// Models lists the installed model names.
func (o *Ollama) Models(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, o.listTimeout)
	defer cancel()

	var tags ollamaTagsResponse
	resp, err := o.client.R().
		SetContext(ctx).
		ForceContentType("application/json").
		SetResult(&tags).
		Get("/api/tags")
	if err != nil {
		return nil, requestError(ctx, o.Name(), err)
	}
	if !resp.IsSuccess() {
		return nil, &APIError{Provider: o.Name(), StatusCode: resp.StatusCode(), Body: resp.String()}
	}

	names := make([]string, 0, len(tags.Models))
	for _, m := range tags.Models {
		names = append(names, m.Name)
	}
	return names, nil
}

// GenerateName uses the configured model, or the first installed model when
// the configured one is missing.
func (o *Ollama) GenerateName(ctx context.Context, titles []string) (string, error) {
	model := models.DefaultSettings().OllamaModel
	if s, err := o.settings.Get(ctx); err == nil && s.OllamaModel != "" {
		model = s.OllamaModel
	}

	available, err := o.Models(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoModels, err)
	}
	if len(available) == 0 {
		return "", ErrNoModels
	}
	if !slices.Contains(available, model) {
		model = available[0]
	}

	ctx, cancel := context.WithTimeout(ctx, o.generateTimeout)
	defer cancel()

	var out ollamaGenerateResponse
	resp, err := o.client.R().
		SetContext(ctx).
		ForceContentType("application/json").
		SetBody(ollamaGenerateRequest{
			Model:   model,
			Prompt:  BuildPrompt(titles),
			Stream:  false,
			Options: ollamaOptions{Temperature: 0.7, NumPredict: 20},
		}).
		SetResult(&out).
		Post("/api/generate")
	if err != nil {
		return "", requestError(ctx, o.Name(), err)
	}

	if resp.StatusCode() == http.StatusForbidden {
		return "", ErrOllamaForbidden
	}
	if !resp.IsSuccess() {
		return "", &APIError{Provider: o.Name(), StatusCode: resp.StatusCode(), Body: resp.String()}
	}

	cleaned := CleanResponse(out.Response)
	if utf8.RuneCountInString(cleaned) < 2 {
		return "", fmt.Errorf("ollama: %w", ErrEmptyResponse)
	}
	return cleaned, nil
}
