package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus_CanTransition(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{StatusIdle, StatusThinking, true},
		{StatusThinking, StatusIdle, true},
		{StatusIdle, StatusIdle, false},
		{StatusThinking, StatusThinking, false},
		{Status("speaking"), StatusIdle, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransition(tt.to))
		})
	}
}

func TestStatus_Busy(t *testing.T) {
	assert.False(t, StatusIdle.Busy())
	assert.True(t, StatusThinking.Busy())
}

func TestLookupLanguage(t *testing.T) {
	lang, ok := LookupLanguage("Urdu")
	assert.True(t, ok)
	assert.Equal(t, "اردو", lang.Name)

	_, ok = LookupLanguage("Klingon")
	assert.False(t, ok)
}
