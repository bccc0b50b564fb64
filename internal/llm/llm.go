// Package llm wraps the generative-AI backends. Rewriting, scoring, OCR and web
// search are all performed by the remote model; this package only builds the
// requests and reads the answers.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/RichardoC/humaniza/internal/models"
	"github.com/RichardoC/humaniza/internal/prompts"
)

var (
	// ErrEmptyInput is returned before any call is made when there is nothing to send.
	ErrEmptyInput = errors.New("empty input")
	// ErrEmptyResponse is returned when the model answered with no text.
	ErrEmptyResponse = errors.New("model returned an empty response")
)

// Provider names accepted by New.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Sampling used for rewrites.
const (
	humanizeTemperature = 0.9
	humanizeTopP        = 0.95
)

// Generator is the contract every backend fulfils.
type Generator interface {
	Humanize(ctx context.Context, text string, mode models.Mode) (*models.Generation, error)
	Search(ctx context.Context, query string) (*models.Generation, error)
	Detect(ctx context.Context, text string) (*models.Detection, error)
	ExtractText(ctx context.Context, image []byte, mimeType string) (string, error)
}

// Options selects and configures a backend.
type Options struct {
	Provider string
	APIKey   string
	Model    string
	// BaseURL is required for the openai provider and optional for gemini.
	BaseURL string
}

// New builds the Generator named by opts.Provider.
func New(ctx context.Context, opts Options, catalog *prompts.Catalog) (Generator, error) {
	if catalog == nil {
		catalog = prompts.Default()
	}
	switch strings.ToLower(opts.Provider) {
	case "", ProviderGemini:
		return NewGemini(ctx, GeminiConfig{APIKey: opts.APIKey, Model: opts.Model, BaseURL: opts.BaseURL}, catalog)
	case ProviderOpenAI:
		return NewOpenAI(opts.BaseURL, opts.APIKey, opts.Model, catalog)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", opts.Provider)
	}
}

func checkInput(s string) error {
	if strings.TrimSpace(s) == "" {
		return ErrEmptyInput
	}
	return nil
}

func finish(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// parseDetection reads the detection JSON, tolerating code fences and chatter
// around the object.
func parseDetection(raw string) (*models.Detection, error) {
	js := stripCodeFences(raw)
	if js == "" {
		return nil, ErrEmptyResponse
	}

	var d models.Detection
	if err := json.Unmarshal([]byte(js), &d); err != nil {
		obj := findFirstJSON(js)
		if obj == "" {
			return nil, fmt.Errorf("failed to parse detection response - no JSON found: %w", err)
		}
		if err2 := json.Unmarshal([]byte(obj), &d); err2 != nil {
			return nil, fmt.Errorf("failed to parse detection response as JSON: %w (original error: %v)", err2, err)
		}
	}
	d.Normalize()
	return &d, nil
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if i := strings.Index(s, "\n"); i != -1 {
			s = s[i+1:]
		} else {
			s = strings.TrimPrefix(s, "```")
		}
	}
	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, "```") {
		s = strings.TrimSpace(strings.TrimSuffix(s, "```"))
	}
	return s
}

// findFirstJSON returns the first balanced {...} span in s, or "".
func findFirstJSON(s string) string {
	start, depth := -1, 0
	inString, escaped := false, false
	for i, r := range s {
		if inString {
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"':
				inString = false
			}
			continue
		}
		switch r {
		case '"':
			if start != -1 {
				inString = true
			}
		case '{':
			if start == -1 {
				start = i
			}
			depth++
		case '}':
			if start != -1 {
				depth--
				if depth == 0 {
					return s[start : i+1]
				}
			}
		}
	}
	return ""
}
