// Package llm provides LLM client interfaces and implementations.
package llm

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrUnsupported is returned when a provider lacks a capability.
	ErrUnsupported = errors.New("operation not supported by provider")
	// ErrNoContent is returned when a response carries nothing usable.
	ErrNoContent = errors.New("no content in response")
	// ErrNoImage is returned when an image response carries no inline image.
	ErrNoImage = errors.New("no image part in response")
)

// Roles as understood by the model.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// InlineData is a base64 payload with its MIME type.
type InlineData struct {
	MIMEType string
	// Data is standard base64, without any data URL prefix.
	Data string
}

// ChatMessage represents a chat message for LLM.
type ChatMessage struct {
	Role        string       `json:"role"`
	Content     string       `json:"content"`
	Attachments []InlineData `json:"-"`
}

// CompletionRequest represents a completion request.
type CompletionRequest struct {
	Model       string
	System      string
	Messages    []ChatMessage
	MaxTokens   int
	Temperature *float64
}

// CompletionResponse represents a completion response.
type CompletionResponse struct {
	Content    string
	Model      string
	TokensIn   int
	TokensOut  int
	StopReason string
	LatencyMs  int64
}

// ImageRequest represents an image generation request.
type ImageRequest struct {
	Model  string
	Prompt string
}

// Part is one piece of a multimodal response.
type Part struct {
	Text       string
	InlineData *InlineData
}

// ImageResponse represents an image generation response.
type ImageResponse struct {
	Parts     []Part
	Model     string
	LatencyMs int64
}

// SpeechRequest represents a text-to-speech request.
type SpeechRequest struct {
	Model string
	Text  string
	Voice string
}

// SpeechResponse represents a text-to-speech response.
type SpeechResponse struct {
	Audio     InlineData
	Model     string
	LatencyMs int64
}

// Client is the interface for LLM providers.
type Client interface {
	// Complete sends a text or multimodal completion request.
	Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error)

	// GenerateImage requests an image artifact.
	GenerateImage(ctx context.Context, req *ImageRequest) (*ImageResponse, error)

	// Synthesize requests an audio rendition of text.
	Synthesize(ctx context.Context, req *SpeechRequest) (*SpeechResponse, error)

	// Name returns the provider name.
	Name() string

	// Models returns available models.
	Models() []string
}

// Provider is the type of LLM provider.
type Provider string

const (
	ProviderGemini    Provider = "gemini"
	ProviderAnthropic Provider = "anthropic"
	ProviderOpenAI    Provider = "openai"
)

// NewClient creates a new LLM client based on provider.
func NewClient(ctx context.Context, provider Provider, apiKey string) (Client, error) {
	var (
		client Client
		err    error
	)
	switch provider {
	case ProviderGemini:
		var c *GeminiClient
		c, err = NewGeminiClient(ctx, apiKey)
		client = c
	case ProviderAnthropic:
		var c *AnthropicClient
		c, err = NewAnthropicClient(apiKey)
		client = c
	case ProviderOpenAI:
		var c *OpenAIClient
		c, err = NewOpenAIClient(apiKey)
		client = c
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", provider)
	}
	// Avoid handing back a typed nil inside a non-nil interface.
	if err != nil {
		return nil, err
	}
	return client, nil
}
