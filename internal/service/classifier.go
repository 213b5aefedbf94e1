package service

import (
	"strings"
)

// Classifier decides whether a prompt asks for an image artifact.
type Classifier interface {
	IsImageRequest(prompt string) bool
}

// KeywordClassifier flags a prompt as an image request when its lowercase
// text contains any configured keyword. Matching is a plain substring test,
// so "picturesque" matches "picture".
type KeywordClassifier struct {
	keywords []string
}

// NewKeywordClassifier creates a classifier over keywords. Keywords are
// lowercased and blanks are dropped.
func NewKeywordClassifier(keywords []string) *KeywordClassifier {
	kw := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			kw = append(kw, k)
		}
	}
	return &KeywordClassifier{keywords: kw}
}

// IsImageRequest implements Classifier.
func (c *KeywordClassifier) IsImageRequest(prompt string) bool {
	p := strings.ToLower(prompt)
	for _, k := range c.keywords {
		if strings.Contains(p, k) {
			return true
		}
	}
	return false
}

// Keywords returns a copy of the active keyword set.
func (c *KeywordClassifier) Keywords() []string {
	return append([]string(nil), c.keywords...)
}
