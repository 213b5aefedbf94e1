package llm

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"
)

const (
	geminiTextModel   = "gemini-3-flash-preview"
	geminiImageModel  = "gemini-2.5-flash-image"
	geminiSpeechModel = "gemini-2.5-flash-preview-tts"
	geminiVoice       = "Kore"
)

// GeminiClient is the Gemini LLM client.
type GeminiClient struct {
	client *genai.Client
}

// NewGeminiClient creates a new Gemini client.
func NewGeminiClient(ctx context.Context, apiKey string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, errors.New("Gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{client: client}, nil
}

// Name returns the provider name.
func (c *GeminiClient) Name() string {
	return "gemini"
}

// Models returns available models.
func (c *GeminiClient) Models() []string {
	return []string{
		geminiTextModel,
		geminiImageModel,
		geminiSpeechModel,
	}
}

// Complete sends a completion request.
func (c *GeminiClient) Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error) {
	start := time.Now()

	model := req.Model
	if model == "" {
		model = geminiTextModel
	}

	contents, err := geminiContents(req.Messages)
	if err != nil {
		return nil, err
	}

	config := &genai.GenerateContentConfig{}
	if req.System != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.System}},
		}
	}
	if req.Temperature != nil {
		config.Temperature = genai.Ptr(float32(*req.Temperature))
	}

	resp, err := c.client.Models.GenerateContent(ctx, model, contents, config)
	if err != nil {
		return nil, err
	}

	var stopReason string
	if len(resp.Candidates) > 0 && resp.Candidates[0] != nil {
		stopReason = string(resp.Candidates[0].FinishReason)
	}

	return &CompletionResponse{
		Content:    geminiText(resp),
		Model:      model,
		StopReason: stopReason,
		LatencyMs:  time.Since(start).Milliseconds(),
	}, nil
}

// GenerateImage sends an image generation request.
func (c *GeminiClient) GenerateImage(ctx context.Context, req *ImageRequest) (*ImageResponse, error) {
	start := time.Now()

	model := req.Model
	if model == "" {
		model = geminiImageModel
	}

	contents := []*genai.Content{{
		Role:  RoleUser,
		Parts: []*genai.Part{{Text: req.Prompt}},
	}}

	resp, err := c.client.Models.GenerateContent(ctx, model, contents, nil)
	if err != nil {
		return nil, err
	}

	return &ImageResponse{
		Parts:     geminiParts(resp),
		Model:     model,
		LatencyMs: time.Since(start).Milliseconds(),
	}, nil
}

// Synthesize sends a text-to-speech request.
func (c *GeminiClient) Synthesize(ctx context.Context, req *SpeechRequest) (*SpeechResponse, error) {
	start := time.Now()

	model := req.Model
	if model == "" {
		model = geminiSpeechModel
	}
	voice := req.Voice
	if voice == "" {
		voice = geminiVoice
	}

	contents := []*genai.Content{{
		Role:  RoleUser,
		Parts: []*genai.Part{{Text: req.Text}},
	}}

	resp, err := c.client.Models.GenerateContent(ctx, model, contents, &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: voice},
			},
		},
	})
	if err != nil {
		return nil, err
	}

	for _, part := range geminiParts(resp) {
		if part.InlineData != nil {
			return &SpeechResponse{
				Audio:     *part.InlineData,
				Model:     model,
				LatencyMs: time.Since(start).Milliseconds(),
			}, nil
		}
	}

	return nil, ErrNoContent
}

// geminiContents converts chat messages into Gemini contents. Attachment
// payloads are decoded here and re-encoded by the SDK on the wire.
func geminiContents(messages []ChatMessage) ([]*genai.Content, error) {
	contents := make([]*genai.Content, 0, len(messages))
	for _, msg := range messages {
		parts := make([]*genai.Part, 0, len(msg.Attachments)+1)
		// A part with no data field set is rejected by the API.
		if strings.TrimSpace(msg.Content) != "" {
			parts = append(parts, &genai.Part{Text: msg.Content})
		}
		for _, att := range msg.Attachments {
			data, err := base64.StdEncoding.Strict().DecodeString(att.Data)
			if err != nil {
				return nil, fmt.Errorf("failed to decode attachment: %w", err)
			}
			parts = append(parts, &genai.Part{
				InlineData: &genai.Blob{MIMEType: att.MIMEType, Data: data},
			})
		}
		if len(parts) == 0 {
			continue
		}

		role := RoleUser
		if msg.Role != RoleUser {
			role = RoleModel
		}
		contents = append(contents, &genai.Content{Role: role, Parts: parts})
	}
	return contents, nil
}

// geminiParts flattens the first candidate into provider-neutral parts.
func geminiParts(resp *genai.GenerateContentResponse) []Part {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil
	}
	cand := resp.Candidates[0]
	if cand == nil || cand.Content == nil {
		return nil
	}

	parts := make([]Part, 0, len(cand.Content.Parts))
	for _, p := range cand.Content.Parts {
		if p == nil {
			continue
		}
		part := Part{Text: p.Text}
		if p.InlineData != nil && len(p.InlineData.Data) > 0 {
			part.InlineData = &InlineData{
				MIMEType: p.InlineData.MIMEType,
				Data:     base64.StdEncoding.EncodeToString(p.InlineData.Data),
			}
		}
		parts = append(parts, part)
	}
	return parts
}

func geminiText(resp *genai.GenerateContentResponse) string {
	var b strings.Builder
	for _, p := range geminiParts(resp) {
		b.WriteString(p.Text)
	}
	return b.String()
}
