package llm

import (
	"context"
	"encoding/base64"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_RequiresAPIKey(t *testing.T) {
	for _, p := range []Provider{ProviderGemini, ProviderAnthropic, ProviderOpenAI} {
		t.Run(string(p), func(t *testing.T) {
			_, err := NewClient(context.Background(), p, "")
			assert.Error(t, err)
		})
	}
}

func TestNewClient_UnknownProvider(t *testing.T) {
	_, err := NewClient(context.Background(), Provider("mystery"), "key")
	assert.ErrorContains(t, err, "unknown LLM provider")
}

func TestAnthropicClient_ImageAndSpeechUnsupported(t *testing.T) {
	c, err := NewAnthropicClient("key")
	require.NoError(t, err)

	_, err = c.GenerateImage(context.Background(), &ImageRequest{Prompt: "draw"})
	assert.ErrorIs(t, err, ErrUnsupported)

	_, err = c.Synthesize(context.Background(), &SpeechRequest{Text: "hi"})
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestAnthropicMessages_SkipsEmptyTurns(t *testing.T) {
	msgs := anthropicMessages([]ChatMessage{
		{Role: RoleUser, Content: "hello"},
		{Role: RoleModel, Content: "   "},
		{Role: RoleModel, Content: "hi"},
	})
	assert.Len(t, msgs, 2)
}

func TestOpenAIMessages(t *testing.T) {
	temp := 0.1
	msgs := openAIMessages(&CompletionRequest{
		System:      "be precise",
		Temperature: &temp,
		Messages: []ChatMessage{
			{Role: RoleUser, Content: "what is ohm's law"},
			{Role: RoleModel, Content: "<p>V equals IR</p>"},
			{
				Role:        RoleUser,
				Content:     "and this?",
				Attachments: []InlineData{{MIMEType: "image/jpeg", Data: "QUJD"}},
			},
		},
	})

	require.Len(t, msgs, 4)
	assert.Equal(t, openai.ChatMessageRoleSystem, msgs[0].Role)
	assert.Equal(t, "be precise", msgs[0].Content)
	assert.Equal(t, openai.ChatMessageRoleUser, msgs[1].Role)
	assert.Equal(t, openai.ChatMessageRoleAssistant, msgs[2].Role)

	last := msgs[3]
	assert.Empty(t, last.Content)
	require.Len(t, last.MultiContent, 2)
	assert.Equal(t, "and this?", last.MultiContent[0].Text)
	require.NotNil(t, last.MultiContent[1].ImageURL)
	assert.Equal(t, "data:image/jpeg;base64,QUJD", last.MultiContent[1].ImageURL.URL)
}

func TestOpenAIVoice(t *testing.T) {
	assert.Equal(t, openai.VoiceNova, openAIVoice("nova"))
	assert.Equal(t, openai.VoiceAlloy, openAIVoice("Kore"))
	assert.Equal(t, openai.VoiceAlloy, openAIVoice(""))
}

func TestGeminiContents(t *testing.T) {
	raw := []byte{0x89, 'P', 'N', 'G', 0x00, 0xff}
	payload := base64.StdEncoding.EncodeToString(raw)

	contents, err := geminiContents([]ChatMessage{
		{Role: RoleUser, Content: "q1"},
		{Role: RoleModel, Content: "a1"},
		{Role: RoleUser, Content: "q2", Attachments: []InlineData{{MIMEType: "image/png", Data: payload}}},
	})
	require.NoError(t, err)
	require.Len(t, contents, 3)

	assert.Equal(t, RoleUser, contents[0].Role)
	assert.Equal(t, RoleModel, contents[1].Role)

	last := contents[2]
	require.Len(t, last.Parts, 2)
	assert.Equal(t, "q2", last.Parts[0].Text)
	require.NotNil(t, last.Parts[1].InlineData)
	assert.Equal(t, "image/png", last.Parts[1].InlineData.MIMEType)
	assert.Equal(t, raw, last.Parts[1].InlineData.Data)
	assert.Equal(t, payload, base64.StdEncoding.EncodeToString(last.Parts[1].InlineData.Data))
}

func TestGeminiContents_BadPayload(t *testing.T) {
	_, err := geminiContents([]ChatMessage{
		{Role: RoleUser, Content: "q", Attachments: []InlineData{{MIMEType: "image/png", Data: "not base64!"}}},
	})
	assert.ErrorContains(t, err, "failed to decode attachment")
}

func TestGeminiContents_EmptyTextTurn(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString([]byte{0x89, 'P', 'N', 'G'})

	contents, err := geminiContents([]ChatMessage{
		{Role: RoleUser, Content: "", Attachments: []InlineData{{MIMEType: "image/png", Data: payload}}},
		{Role: RoleModel, Content: "   "},
		{Role: RoleUser, Content: "explain ohm"},
	})
	require.NoError(t, err)
	require.Len(t, contents, 2, "turns with nothing to send are skipped")

	require.Len(t, contents[0].Parts, 1)
	assert.Empty(t, contents[0].Parts[0].Text)
	require.NotNil(t, contents[0].Parts[0].InlineData)

	require.Len(t, contents[1].Parts, 1)
	assert.Equal(t, "explain ohm", contents[1].Parts[0].Text)
	for _, c := range contents {
		for _, p := range c.Parts {
			assert.True(t, p.Text != "" || p.InlineData != nil, "every part carries data")
		}
	}
}

func TestGeminiContents_NonCanonicalPayload(t *testing.T) {
	_, err := geminiContents([]ChatMessage{
		{Role: RoleUser, Content: "q", Attachments: []InlineData{{MIMEType: "image/png", Data: "QR=="}}},
	})
	assert.ErrorContains(t, err, "failed to decode attachment")
}

func TestGeminiParts_NilResponse(t *testing.T) {
	assert.Nil(t, geminiParts(nil))
	assert.Empty(t, geminiText(nil))
}
