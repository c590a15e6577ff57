package sessions

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/engleong-lee/stash/internal/models"
)

// ExportVersion is the version stamped on export documents.
const ExportVersion = 1

// Format is an export document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ErrNoSessions is returned when a document has no sessions array.
var ErrNoSessions = errors.New("document has no sessions array")

// ParseFormat accepts "json", "yaml" or "yml" (case-insensitive). Blank means JSON.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown export format %q", s)
}

// FormatFromPath picks the format from a file extension, defaulting to JSON.
func FormatFromPath(path string) Format {
	lower := strings.ToLower(path)
	if strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml") {
		return FormatYAML
	}
	return FormatJSON
}

// Export wraps sessions in a versioned document stamped with now.
func Export(sessions []models.Session, now time.Time) models.ExportDocument {
	if sessions == nil {
		sessions = []models.Session{}
	}
	return models.ExportDocument{
		Version:    ExportVersion,
		ExportedAt: now.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		Sessions:   sessions,
	}
}

// Encode renders doc in the given format.
func Encode(doc models.ExportDocument, format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}
		return buf.Bytes(), nil
	default:
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode json: %w", err)
		}
		return data, nil
	}
}

// Decode parses an export document. Only the sessions array is required.
func Decode(data []byte, format Format) (models.ExportDocument, error) {
	// The probe tells a missing sessions key apart from an empty array.
	var probe struct {
		Sessions any `json:"sessions" yaml:"sessions"`
	}
	var doc models.ExportDocument

	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &probe); err != nil {
			return doc, fmt.Errorf("decode yaml: %w", err)
		}
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return doc, fmt.Errorf("decode yaml: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &probe); err != nil {
			return doc, fmt.Errorf("decode json: %w", err)
		}
		if err := json.Unmarshal(data, &doc); err != nil {
			return doc, fmt.Errorf("decode json: %w", err)
		}
	}

	if _, ok := probe.Sessions.([]any); !ok {
		return doc, ErrNoSessions
	}
	return doc, nil
}
