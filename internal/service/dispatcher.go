package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/gct-et/assistant/internal/llm"
	"github.com/gct-et/assistant/internal/model"
	"github.com/gct-et/assistant/pkg/logger"
	"github.com/gct-et/assistant/pkg/metrics"
	"github.com/gct-et/assistant/pkg/tracing"
)

const (
	// FallbackMessage is the only failure a caller of Dispatch ever sees.
	FallbackMessage = "<p>Neural signal corrupted. Terminal failure.</p>"

	// ImageSuccessMessage accompanies a generated schematic.
	ImageSuccessMessage = "<b>Schematic Analysis Complete</b><p>The requested diagram has been generated based on current electrical standards.</p>"

	// ImageDataPrefix prefixes generated image payloads.
	ImageDataPrefix = "data:image/png;base64,"

	imagePromptTemplate = "Create a professional, clear, high-contrast engineering diagram or schematic for: %s. " +
		"Use standard electrical symbols and labels. Black or dark background."

	translatePromptTemplate = "Translate precisely for Electrical Engineers into %s. Maintain HTML tags (<b>, <i>, <p>): %s"

	systemInstruction = `You are GCT.ET, a specialized high-performance AI in Electrical Technology.
STRICT RULES:
1. NO Markdown (*, #, _, -).
2. Use <b>Tags</b> for Bold headings.
3. Use <i>Tags</i> for primary technical definitions.
4. Use <p>Tags</p> for all explanations.
5. Tone: Technical, Precise, Professional.
6. Use numbered lists (1., 2.) if needed.`
)

var errNoClient = errors.New("no LLM client configured")

// DispatcherConfig holds model selection and sampling settings.
type DispatcherConfig struct {
	TextModel   string
	ImageModel  string
	SpeechModel string
	Voice       string
	Temperature float64
	// MaxContext caps the prior turns forwarded to the model.
	MaxContext int
}

// Dispatcher routes a user turn to image generation or text completion and
// normalizes the outcome. It holds no per-conversation state.
type Dispatcher struct {
	client     llm.Client
	classifier Classifier
	cfg        DispatcherConfig
	logger     *logger.Logger
	tracer     trace.Tracer
}

// NewDispatcher creates a new dispatcher. A nil client makes every remote
// call fail, so dispatches settle on the fallback message.
func NewDispatcher(client llm.Client, classifier Classifier, cfg DispatcherConfig, log *logger.Logger) *Dispatcher {
	if cfg.MaxContext <= 0 {
		cfg.MaxContext = 10
	}
	return &Dispatcher{
		client:     client,
		classifier: classifier,
		cfg:        cfg,
		logger:     log.Named("dispatcher"),
		tracer:     tracing.Tracer("github.com/gct-et/assistant/internal/service"),
	}
}

// Dispatch produces the assistant's answer for one user turn. It never
// fails: a failed image attempt falls through to text, and a failed text
// attempt yields FallbackMessage.
func (d *Dispatcher) Dispatch(ctx context.Context, prompt string, history []model.ContextEntry, attachments []model.Attachment) *model.DispatchResult {
	ctx, span := d.tracer.Start(ctx, "dispatch")
	defer span.End()

	if d.classifier.IsImageRequest(prompt) {
		span.SetAttributes(attribute.Bool("dispatch.image_intent", true))

		start := time.Now()
		result, err := d.generateImage(ctx, prompt)
		if err == nil {
			metrics.RecordDispatch("image", "success", time.Since(start).Seconds())
			return result
		}

		metrics.RecordDispatch("image", "fallthrough", time.Since(start).Seconds())
		d.logger.Warn("image generation failed, falling back to text", zap.Error(err))
	}

	return d.complete(ctx, prompt, history, attachments)
}

// Translate asks for a literal translation that keeps <b>, <i> and <p>
// markup. It reports false on any failure.
func (d *Dispatcher) Translate(ctx context.Context, text, language string) (string, bool) {
	ctx, span := d.tracer.Start(ctx, "translate", trace.WithAttributes(attribute.String("translate.language", language)))
	defer span.End()

	resp, err := d.callComplete(ctx, "translate", &llm.CompletionRequest{
		Model: d.cfg.TextModel,
		Messages: []llm.ChatMessage{{
			Role:    llm.RoleUser,
			Content: fmt.Sprintf(translatePromptTemplate, language, text),
		}},
	})
	if err != nil {
		d.logger.Warn("translation failed", zap.String("language", language), zap.Error(err))
		return "", false
	}
	if resp.Content == "" {
		return "", false
	}
	return resp.Content, true
}

// Speak renders text as audio with the configured voice after removing HTML
// tags. It reports false on any failure.
func (d *Dispatcher) Speak(ctx context.Context, text string) (*model.Speech, bool) {
	ctx, span := d.tracer.Start(ctx, "speak")
	defer span.End()

	if d.client == nil {
		return nil, false
	}

	start := time.Now()
	resp, err := d.client.Synthesize(ctx, &llm.SpeechRequest{
		Model: d.cfg.SpeechModel,
		Text:  StripHTML(text),
		Voice: d.cfg.Voice,
	})
	d.recordCall("synthesize", start, err)
	if err != nil {
		recordSpanError(span, err)
		d.logger.Warn("speech synthesis failed", zap.Error(err))
		return nil, false
	}
	if resp == nil || resp.Audio.Data == "" {
		return nil, false
	}

	return &model.Speech{Data: resp.Audio.Data, MIMEType: resp.Audio.MIMEType}, true
}

func (d *Dispatcher) generateImage(ctx context.Context, prompt string) (*model.DispatchResult, error) {
	if d.client == nil {
		return nil, errNoClient
	}

	ctx, span := d.tracer.Start(ctx, "llm.generate_image")
	defer span.End()

	start := time.Now()
	resp, err := d.client.GenerateImage(ctx, &llm.ImageRequest{
		Model:  d.cfg.ImageModel,
		Prompt: fmt.Sprintf(imagePromptTemplate, prompt),
	})
	d.recordCall("generate_image", start, err)
	if err != nil {
		recordSpanError(span, err)
		return nil, fmt.Errorf("image request failed: %w", err)
	}

	if resp == nil {
		return nil, llm.ErrNoImage
	}
	for _, part := range resp.Parts {
		if part.InlineData != nil && part.InlineData.Data != "" {
			return &model.DispatchResult{
				Content:   ImageSuccessMessage,
				ImageData: ImageDataPrefix + part.InlineData.Data,
				IsImage:   true,
			}, nil
		}
	}

	return nil, llm.ErrNoImage
}

func (d *Dispatcher) complete(ctx context.Context, prompt string, history []model.ContextEntry, attachments []model.Attachment) *model.DispatchResult {
	start := time.Now()

	resp, err := d.callComplete(ctx, "complete", d.textRequest(prompt, history, attachments))
	if err != nil {
		metrics.RecordDispatch("text", "fallback", time.Since(start).Seconds())
		d.logger.Error("text completion failed", zap.Error(err))
		return &model.DispatchResult{Content: FallbackMessage}
	}

	metrics.RecordDispatch("text", "success", time.Since(start).Seconds())
	metrics.RecordTokens(resp.Model, resp.TokensIn, resp.TokensOut)

	return &model.DispatchResult{Content: StripMarkdown(resp.Content)}
}

// textRequest assembles prior context followed by the current turn.
func (d *Dispatcher) textRequest(prompt string, history []model.ContextEntry, attachments []model.Attachment) *llm.CompletionRequest {
	if len(history) > d.cfg.MaxContext {
		history = history[len(history)-d.cfg.MaxContext:]
	}

	messages := make([]llm.ChatMessage, 0, len(history)+1)
	for _, h := range history {
		messages = append(messages, llm.ChatMessage{
			Role:    modelRole(h.Role),
			Content: h.Content,
		})
	}

	current := llm.ChatMessage{Role: llm.RoleUser, Content: prompt}
	for _, att := range attachments {
		current.Attachments = append(current.Attachments, llm.InlineData{
			MIMEType: att.MIMEType,
			Data:     AttachmentPayload(att.Data),
		})
	}
	messages = append(messages, current)

	temperature := d.cfg.Temperature
	return &llm.CompletionRequest{
		Model:       d.cfg.TextModel,
		System:      systemInstruction,
		Messages:    messages,
		Temperature: &temperature,
	}
}

func (d *Dispatcher) callComplete(ctx context.Context, op string, req *llm.CompletionRequest) (*llm.CompletionResponse, error) {
	if d.client == nil {
		return nil, errNoClient
	}

	ctx, span := d.tracer.Start(ctx, "llm."+op)
	defer span.End()

	start := time.Now()
	resp, err := d.client.Complete(ctx, req)
	d.recordCall(op, start, err)
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}
	if resp == nil {
		return nil, llm.ErrNoContent
	}
	return resp, nil
}

func (d *Dispatcher) recordCall(op string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.RecordLLMCall(d.client.Name(), op, status, time.Since(start).Seconds())
}

func recordSpanError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
