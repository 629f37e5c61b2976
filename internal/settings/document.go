package settings

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"rewecart/internal/matching"
)

// DocumentVersion is written into every exported document.
const DocumentVersion = "1.0.0"

// ErrInvalidDocument is returned when an import lacks version or settings.
var ErrInvalidDocument = errors.New("invalid import file format")

// Document is the export/import format for settings and mappings.
type Document struct {
	Version   string                        `json:"version"`
	Timestamp time.Time                     `json:"timestamp"`
	Settings  Settings                      `json:"settings"`
	Mappings  map[string]matching.Candidate `json:"mappings,omitempty"`
}

// NewDocument builds an export document. The API token is never exported.
func NewDocument(s Settings, mappings map[string]matching.Candidate, now time.Time) Document {
	s.APIToken = ""
	return Document{
		Version:   DocumentVersion,
		Timestamp: now.UTC(),
		Settings:  s,
		Mappings:  mappings,
	}
}

// Encode renders the document as indented JSON.
func (d Document) Encode() ([]byte, error) {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return append(data, '\n'), nil
}

// ParseDocument decodes an import document. It requires version and
// settings; settings keys missing from the document take their defaults.
// Out-of-range settings reject the whole document.
func ParseDocument(data []byte) (Document, error) {
	var raw struct {
		Version   string                        `json:"version"`
		Timestamp time.Time                     `json:"timestamp"`
		Settings  json.RawMessage               `json:"settings"`
		Mappings  map[string]matching.Candidate `json:"mappings"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	settingsJSON := bytes.TrimSpace(raw.Settings)
	if raw.Version == "" || len(settingsJSON) == 0 || bytes.Equal(settingsJSON, []byte("null")) {
		return Document{}, ErrInvalidDocument
	}

	s, err := Decode(settingsJSON)
	if err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if err := s.Validate(); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	return Document{
		Version:   raw.Version,
		Timestamp: raw.Timestamp,
		Settings:  s,
		Mappings:  raw.Mappings,
	}, nil
}
