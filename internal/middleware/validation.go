package middleware

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/gct-et/assistant/internal/model"
)

const (
	// MaxPromptBytes bounds prompts and texts sent for translation or speech.
	MaxPromptBytes = 100000
	// MaxAttachments bounds the attachments on one turn.
	MaxAttachments = 8
	// MaxAttachmentBytes bounds one decoded attachment.
	MaxAttachmentBytes = 10 << 20
)

// ValidatePrompt validates a turn prompt. Empty prompts are allowed; the
// service decides whether the submission is ignored.
func ValidatePrompt(prompt string) error {
	if len(prompt) > MaxPromptBytes {
		return errors.New("prompt exceeds maximum length")
	}
	if !utf8.ValidString(prompt) {
		return errors.New("prompt must be valid UTF-8")
	}
	return nil
}

// ValidateText validates text submitted for translation or speech.
func ValidateText(text string) error {
	if strings.TrimSpace(text) == "" {
		return errors.New("text cannot be empty")
	}
	if len(text) > MaxPromptBytes {
		return errors.New("text exceeds maximum length")
	}
	if !utf8.ValidString(text) {
		return errors.New("text must be valid UTF-8")
	}
	return nil
}

// ValidateAttachments validates the attachments of one turn.
func ValidateAttachments(attachments []model.Attachment) error {
	if len(attachments) > MaxAttachments {
		return fmt.Errorf("at most %d attachments are allowed", MaxAttachments)
	}
	for i, att := range attachments {
		mimeType, _, err := ParseDataURL(att.Data)
		if err != nil {
			return fmt.Errorf("attachment %d: %w", i, err)
		}
		if !strings.EqualFold(mimeType, att.MIMEType) {
			return fmt.Errorf("attachment %d: declared type %q does not match %q", i, att.MIMEType, mimeType)
		}
	}
	return nil
}

// ParseDataURL splits a base64 data URL into its MIME type and payload,
// checking that the payload decodes.
func ParseDataURL(s string) (mimeType, payload string, err error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return "", "", errors.New("data URL must start with data:")
	}
	header, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", "", errors.New("data URL has no payload")
	}
	mimeType, ok = strings.CutSuffix(header, ";base64")
	if !ok {
		return "", "", errors.New("data URL must be base64 encoded")
	}
	if mimeType == "" {
		return "", "", errors.New("data URL has no media type")
	}
	if base64.StdEncoding.DecodedLen(len(payload)) > MaxAttachmentBytes {
		return "", "", errors.New("data URL payload too large")
	}
	if _, err := base64.StdEncoding.Strict().DecodeString(payload); err != nil {
		return "", "", errors.New("data URL payload is not valid base64")
	}
	return mimeType, payload, nil
}

// ValidateLanguage checks that a translation target is supported.
func ValidateLanguage(code string) error {
	if _, ok := model.LookupLanguage(code); !ok {
		return fmt.Errorf("unsupported language %q", code)
	}
	return nil
}

// ValidateProfile validates an engineer profile.
func ValidateProfile(p *model.Profile) error {
	if strings.TrimSpace(p.Name) == "" {
		return errors.New("name is required")
	}
	for field, v := range map[string]string{
		"name":        p.Name,
		"city":        p.City,
		"address":     p.Address,
		"institution": p.Institution,
	} {
		if len(v) > 256 {
			return fmt.Errorf("%s exceeds maximum length", field)
		}
		if !utf8.ValidString(v) {
			return fmt.Errorf("%s must be valid UTF-8", field)
		}
	}
	if p.Email != "" {
		if _, err := mail.ParseAddress(p.Email); err != nil {
			return errors.New("invalid email address")
		}
	}
	if p.ProfilePic != "" {
		mimeType, _, err := ParseDataURL(p.ProfilePic)
		if err != nil {
			return fmt.Errorf("profile picture: %w", err)
		}
		if !strings.HasPrefix(mimeType, "image/") {
			return errors.New("profile picture must be an image")
		}
	}
	return nil
}

// ValidateConversationID validates a conversation ID.
func ValidateConversationID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return errors.New("invalid conversation ID format")
	}
	return nil
}

// ValidateTitle validates a conversation title.
func ValidateTitle(title string) error {
	if len(title) > 256 {
		return errors.New("title exceeds maximum length")
	}
	if !utf8.ValidString(title) {
		return errors.New("title must be valid UTF-8")
	}
	return nil
}
