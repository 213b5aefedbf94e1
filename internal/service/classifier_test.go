package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gct-et/assistant/internal/config"
)

func TestKeywordClassifier_IsImageRequest(t *testing.T) {
	c := NewKeywordClassifier(config.DefaultImageKeywords)

	tests := []struct {
		prompt string
		want   bool
	}{
		{"Draw a star-delta starter", true},
		{"SHOW ME A SCHEMATIC of an inverter", true},
		{"generate a diagram of a simple series circuit", true},
		{"Can you Visualize three phase power?", true},
		{"a picturesque substation", true},
		{"What is power factor?", false},
		{"Explain earthing", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.prompt, func(t *testing.T) {
			assert.Equal(t, tt.want, c.IsImageRequest(tt.prompt))
		})
	}
}

func TestNewKeywordClassifier_NormalizesKeywords(t *testing.T) {
	c := NewKeywordClassifier([]string{"  Sketch ", "", "   ", "PLOT"})

	assert.Equal(t, []string{"sketch", "plot"}, c.Keywords())
	assert.True(t, c.IsImageRequest("please sketch a relay"))
	assert.True(t, c.IsImageRequest("Plot the waveform"))
	assert.False(t, c.IsImageRequest("draw a relay"))
}

func TestKeywordClassifier_EmptyKeywordsNeverMatch(t *testing.T) {
	c := NewKeywordClassifier(nil)
	assert.False(t, c.IsImageRequest("draw a diagram"))
}

func TestKeywordClassifier_KeywordsReturnsCopy(t *testing.T) {
	c := NewKeywordClassifier([]string{"draw"})
	kw := c.Keywords()
	kw[0] = "mutated"

	assert.Equal(t, []string{"draw"}, c.Keywords())
}
