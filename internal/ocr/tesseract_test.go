package ocr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseVersion(t *testing.T) {
	for text, want := range map[string]string{
		"v2.1":      "2.1",
		"V3":        "3",
		"v 2.0.4":   "2.0.4",
		"..v2.1.0.": "2.1.0",
	} {
		got, ok := ParseVersion(text)
		assert.True(t, ok, text)
		assert.Equal(t, want, got, text)
	}

	_, ok := ParseVersion("v.")
	assert.False(t, ok)
}
