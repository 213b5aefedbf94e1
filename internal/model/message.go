package model

import (
	"time"
)

// Role represents the author of a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Attachment is a locally supplied payload bound to exactly one turn.
type Attachment struct {
	// Data is a data URL: data:<mime>;base64,<payload>.
	Data     string `json:"data"`
	MIMEType string `json:"mime_type"`
}

// Turn is one user message or one assistant reply. Turns are never
// mutated once appended to a conversation.
type Turn struct {
	ID             string       `json:"id"`
	ConversationID string       `json:"conversation_id"`
	Role           Role         `json:"role"`
	Content        string       `json:"content"`
	Timestamp      time.Time    `json:"timestamp"`
	Attachments    []Attachment `json:"attachments,omitempty"`
	IsImage        bool         `json:"is_image"`
}

// ContextEntry is a prior turn as forwarded to the model.
type ContextEntry struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// DispatchResult is the normalized outcome of one dispatch.
type DispatchResult struct {
	Content   string `json:"content"`
	IsImage   bool   `json:"is_image"`
	ImageData string `json:"image_data,omitempty"`
}

// Speech is an encoded audio rendition of a reply.
type Speech struct {
	Data     string `json:"data"`
	MIMEType string `json:"mime_type"`
}

// SubmitTurnRequest is the request to submit a user turn.
type SubmitTurnRequest struct {
	Prompt      string       `json:"prompt"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// SubmitTurnResponse is the response after a turn settles.
type SubmitTurnResponse struct {
	Ignored       bool   `json:"ignored"`
	Status        Status `json:"status"`
	UserTurn      *Turn  `json:"user_turn,omitempty"`
	AssistantTurn *Turn  `json:"assistant_turn,omitempty"`
}

// ListTurnsResponse is the response for listing turns.
type ListTurnsResponse struct {
	Turns  []Turn `json:"turns"`
	Status Status `json:"status"`
}

// TranslateRequest is the request to translate a reply.
type TranslateRequest struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

// TranslateResponse carries the translated text.
type TranslateResponse struct {
	Translation string `json:"translation"`
	Language    string `json:"language"`
}

// SpeechRequest is the request to synthesize a reply.
type SpeechRequest struct {
	Text string `json:"text"`
}
