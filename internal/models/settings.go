package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Provider selects which name suggestion service is tried first.
type Provider string

const (
	// ProviderOllama is the local provider.
	ProviderOllama Provider = "ollama"
	// ProviderClaude is the remote provider.
	ProviderClaude Provider = "claude"
)

// ParseProvider accepts the stored names plus the "local"/"remote" aliases.
func ParseProvider(s string) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ollama", "local":
		return ProviderOllama, nil
	case "claude", "remote":
		return ProviderClaude, nil
	}
	return "", fmt.Errorf("unknown ai provider %q", s)
}

// Other returns the provider used as fallback for p.
func (p Provider) Other() Provider {
	if p == ProviderOllama {
		return ProviderClaude
	}
	return ProviderOllama
}

// UnmarshalJSON accepts any ParseProvider spelling. A null or blank value
// leaves p unchanged so a damaged record keeps the default provider.
func (p *Provider) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parsed, err := ParseProvider(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Settings is the single user configuration record.
type Settings struct {
	RestoreInNewWindow bool     `json:"restoreInNewWindow"`
	CloseTabsAfterSave bool     `json:"closeTabsAfterSave"`
	AINamingEnabled    bool     `json:"aiNamingEnabled"`
	AIProvider         Provider `json:"aiProvider"`
	OllamaModel        string   `json:"ollamaModel"`
	ClaudeAPIKey       string   `json:"claudeApiKey"`
	SyncEnabled        bool     `json:"syncEnabled"`
}

// DefaultSettings is the record every stored partial is overlaid on.
func DefaultSettings() Settings {
	return Settings{
		RestoreInNewWindow: true,
		CloseTabsAfterSave: false,
		AINamingEnabled:    true,
		AIProvider:         ProviderOllama,
		OllamaModel:        "llama3.2:3b",
		ClaudeAPIKey:       "",
		SyncEnabled:        false,
	}
}

// SettingsPatch is a partial settings update. Nil fields are left unchanged.
type SettingsPatch struct {
	RestoreInNewWindow *bool     `json:"restoreInNewWindow,omitempty"`
	CloseTabsAfterSave *bool     `json:"closeTabsAfterSave,omitempty"`
	AINamingEnabled    *bool     `json:"aiNamingEnabled,omitempty"`
	AIProvider         *Provider `json:"aiProvider,omitempty"`
	OllamaModel        *string   `json:"ollamaModel,omitempty"`
	ClaudeAPIKey       *string   `json:"claudeApiKey,omitempty"`
	SyncEnabled        *bool     `json:"syncEnabled,omitempty"`
}

// Apply returns s with every non-nil field of p written over it.
func (p SettingsPatch) Apply(s Settings) Settings {
	if p.RestoreInNewWindow != nil {
		s.RestoreInNewWindow = *p.RestoreInNewWindow
	}
	if p.CloseTabsAfterSave != nil {
		s.CloseTabsAfterSave = *p.CloseTabsAfterSave
	}
	if p.AINamingEnabled != nil {
		s.AINamingEnabled = *p.AINamingEnabled
	}
	if p.AIProvider != nil {
		s.AIProvider = *p.AIProvider
	}
	if p.OllamaModel != nil {
		s.OllamaModel = *p.OllamaModel
	}
	if p.ClaudeAPIKey != nil {
		s.ClaudeAPIKey = *p.ClaudeAPIKey
	}
	if p.SyncEnabled != nil {
		s.SyncEnabled = *p.SyncEnabled
	}
	return s
}
