// Package extract turns condensed website text into a normalized company
// profile via a single low-temperature Claude completion.
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/company-profiler/internal/apperr"
	"github.com/sells-group/company-profiler/internal/profile"
	"github.com/sells-group/company-profiler/pkg/anthropic"
)

const systemPrompt = "You extract structured company intelligence from website content. " +
	"Always reply with strict JSON using the required keys. " +
	"Return null for unknown strings and an empty array for lists when data is unavailable."

const userPromptTemplate = `Given the company website below, infer and return:
{
  "company_name": string | null,
  "company_description": string | null,
  "service_lines": string[],
  "tier1_keywords": string[],
  "tier2_keywords": string[],
  "emails": string[],
  "poc": string | null
}
Use simple language and keep description under 70 words. Extract company emails and representative names when explicitly available.

Website URL: %s

Website Content:
"""%s"""`

// Config tunes the extraction call. A nil Temperature means the default
// (0.2); an explicit 0 is passed through.
type Config struct {
	Model       string   `yaml:"model" mapstructure:"model"`
	MaxTokens   int64    `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature *float64 `yaml:"temperature" mapstructure:"temperature"`
}

// Extractor performs profile extraction through an anthropic.Client.
type Extractor struct {
	client      anthropic.Client
	model       string
	maxTokens   int64
	temperature float64
}

// New creates an Extractor, applying defaults for zero config values.
func New(client anthropic.Client, cfg Config) *Extractor {
	model := cfg.Model
	if model == "" {
		model = "claude-haiku-4-5-20251001"
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	temperature := 0.2
	if cfg.Temperature != nil {
		temperature = *cfg.Temperature
	}
	return &Extractor{
		client:      client,
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
	}
}

// Extract asks the model for the seven canonical fields and normalizes the
// reply. Empty, malformed, and wrong-shape responses surface as distinct
// 500-level failures.
func (e *Extractor) Extract(ctx context.Context, url, websiteContent string) (profile.CompanyProfile, error) {
	temp := e.temperature
	resp, err := e.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:       e.model,
		MaxTokens:   e.maxTokens,
		System:      anthropic.CachedSystemBlock(systemPrompt, "5m"),
		Temperature: &temp,
		Messages: []anthropic.Message{
			{Role: "user", Content: fmt.Sprintf(userPromptTemplate, url, websiteContent)},
		},
	})
	if err != nil {
		zap.L().Error("extract: AI request failed", zap.String("url", url), zap.Error(err))
		return profile.CompanyProfile{}, apperr.AIFailure("The AI service request failed.")
	}

	resp.Usage.LogCost(e.model, "extract")

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return profile.CompanyProfile{}, apperr.AIFailure("The AI service returned an empty response.")
	}

	var raw any
	if err := json.Unmarshal([]byte(cleanJSON(text)), &raw); err != nil {
		zap.L().Warn("extract: unparseable AI response",
			zap.String("url", url),
			zap.Error(err),
		)
		return profile.CompanyProfile{}, apperr.AIFailure("Failed to parse the AI response as JSON.")
	}

	p, ok := profile.Normalize(raw)
	if !ok {
		return profile.CompanyProfile{}, apperr.AIFailure("Failed to parse the AI response into the expected structure.")
	}

	return p, nil
}

// cleanJSON strips markdown fences and surrounding prose so the payload can
// be unmarshaled even when the model decorates its reply.
func cleanJSON(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}

	// Find first { and last }.
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		text = text[start : end+1]
	}

	return strings.TrimSpace(text)
}
