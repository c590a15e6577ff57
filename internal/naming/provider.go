// Package naming suggests short session names from tab titles using a local
// (Ollama) or remote (Claude) language model, falling back to a dated default.
package naming

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/engleong-lee/stash/internal/models"
)

// Provider is a name suggestion service.
type Provider interface {
	// Name is the provider's stable identifier, used in logs and metrics.
	Name() string
	// CheckAvailable is a best-effort probe. It never fails, it only says no.
	CheckAvailable(ctx context.Context) bool
	// GenerateName asks the service for a name for the given tab titles.
	GenerateName(ctx context.Context, titles []string) (string, error)
}

// SettingsSource supplies the current user settings.
type SettingsSource interface {
	Get(ctx context.Context) (models.Settings, error)
}

var (
	// ErrTimeout is returned when a provider call exceeds its deadline.
	ErrTimeout = fmt.Errorf("request timed out: %w", context.DeadlineExceeded)
	// ErrNoModels is returned when Ollama reports no installed models.
	ErrNoModels = errors.New("no ollama models available")
	// ErrEmptyResponse is returned when a provider answers without a usable name.
	ErrEmptyResponse = errors.New("empty response")
	// ErrMissingAPIKey is returned when Claude is called without an API key.
	ErrMissingAPIKey = errors.New("claude api key not configured")
	// ErrOllamaForbidden is returned for a 403, which Ollama sends when the
	// caller's origin is not allowed.
	ErrOllamaForbidden = errors.New(`ollama rejected the request origin; restart it with OLLAMA_ORIGINS="*" ollama serve`)
)

// APIError is a non-2xx answer from a provider.
type APIError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s api error: %d - %s", e.Provider, e.StatusCode, e.Body)
}

// requestError maps a transport failure to ErrTimeout when ctx's deadline
// was hit, so a cancelled call is distinguishable from an HTTP error.
func requestError(ctx context.Context, provider string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", provider, ErrTimeout)
	}
	return fmt.Errorf("%s request: %w", provider, err)
}

// maxPromptTitles caps how many tab titles go into a prompt.
const maxPromptTitles = 10

const promptTemplate = `You are a helpful assistant that creates short, descriptive names for browser tab sessions.

Given a list of tab titles, generate a concise 2-4 word name that captures the main theme or purpose of these tabs.

Rules:
- Keep it short: 2-4 words maximum
- Be descriptive but concise
- Use title case (e.g., "React Documentation Review")
- No punctuation or special characters
- Focus on the primary topic or activity

Tab titles:
%s

Respond with ONLY the session name, nothing else.`

// BuildPrompt renders the naming prompt for the first ten titles.
func BuildPrompt(titles []string) string {
	if len(titles) > maxPromptTitles {
		titles = titles[:maxPromptTitles]
	}
	return fmt.Sprintf(promptTemplate, "- "+strings.Join(titles, "\n- "))
}

// maxNameWords caps the number of words kept from a model answer.
const maxNameWords = 5

// CleanResponse turns a raw model answer into a candidate name: quotes are
// dropped, only the text before the first period is kept, and at most five
// words survive. Other punctuation stays.
func CleanResponse(raw string) string {
	cleaned := strings.NewReplacer(`"`, "", "'", "", "\r\n", " ", "\n", " ").Replace(raw)
	cleaned = strings.TrimSpace(cleaned)

	if i := strings.IndexByte(cleaned, '.'); i >= 0 {
		cleaned = strings.TrimSpace(cleaned[:i])
	}

	words := strings.Fields(cleaned)
	if len(words) > maxNameWords {
		words = words[:maxNameWords]
	}
	return strings.Join(words, " ")
}
