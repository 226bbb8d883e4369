// Package gemini implements lexicon.Completer using Google Gemini.
package gemini

import (
	"context"

	"github.com/fwojciec/lexicon"
	"google.golang.org/genai"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

// DefaultTemperature keeps structured replies stable.
const DefaultTemperature = float32(0.3)

// Ensure Completer implements lexicon.Completer at compile time.
var _ lexicon.Completer = (*Completer)(nil)

// Completer implements lexicon.Completer using Google Gemini.
type Completer struct {
	client *genai.Client

	Model       string
	Temperature float32
}

// NewCompleter creates a new Completer.
func NewCompleter(client *genai.Client) *Completer {
	return &Completer{
		client:      client,
		Model:       DefaultModel,
		Temperature: DefaultTemperature,
	}
}

// Complete sends prompt with the given system instruction and returns the
// model's text reply.
func (c *Completer) Complete(ctx context.Context, system, prompt string) (string, error) {
	if prompt == "" {
		return "", lexicon.Errorf(lexicon.EINVALID, "prompt required")
	}
	if c.client == nil {
		return "", lexicon.Errorf(lexicon.EUNAVAILABLE, "gemini client not configured")
	}

	result, err := c.client.Models.GenerateContent(ctx, c.Model,
		[]*genai.Content{{
			Parts: []*genai.Part{{Text: prompt}},
		}},
		BuildConfig(system, c.Temperature),
	)
	if err != nil {
		return "", lexicon.Errorf(lexicon.EUNAVAILABLE, "gemini: %v", err)
	}
	if result == nil {
		return "", lexicon.Errorf(lexicon.EINTERNAL, "gemini returned nil result")
	}

	return result.Text(), nil
}

// BuildConfig returns the GenerateContentConfig for Gemini API calls.
// An empty system instruction is omitted.
func BuildConfig(system string, temperature float32) *genai.GenerateContentConfig {
	temp := temperature
	config := &genai.GenerateContentConfig{
		Temperature: &temp,
	}
	if system != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: system}},
		}
	}
	return config
}
