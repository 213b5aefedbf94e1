package service

import (
	"regexp"
	"strings"

	"github.com/gct-et/assistant/internal/llm"
	"github.com/gct-et/assistant/internal/model"
)

var htmlTagPattern = regexp.MustCompile(`</?[^>]+(>|$)`)

// StripMarkdown removes residual markdown punctuation from model output.
func StripMarkdown(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '#', '*', '_', '$', '-':
			return -1
		}
		return r
	}, s)
}

// StripHTML removes HTML tags, including a trailing unterminated one.
func StripHTML(s string) string {
	return htmlTagPattern.ReplaceAllString(s, "")
}

// AttachmentPayload returns the encoded payload of a data URL, i.e.
// everything after the first comma. Input without a comma is returned as is.
func AttachmentPayload(data string) string {
	if i := strings.IndexByte(data, ','); i >= 0 {
		return data[i+1:]
	}
	return data
}

// ContextWindow returns the last n turns as context entries in original order.
func ContextWindow(turns []model.Turn, n int) []model.ContextEntry {
	if n <= 0 {
		return nil
	}
	if len(turns) > n {
		turns = turns[len(turns)-n:]
	}

	entries := make([]model.ContextEntry, len(turns))
	for i, t := range turns {
		entries[i] = model.ContextEntry{Role: t.Role, Content: t.Content}
	}
	return entries
}

// modelRole maps a turn role onto the model's role vocabulary.
func modelRole(r model.Role) string {
	if r == model.RoleUser {
		return llm.RoleUser
	}
	return llm.RoleModel
}
