package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := map[string]string{
		"en":    "en",
		"ZH":    "zh",
		"ja-JP": "ja",
		"ko_KR": "ko",
		"de":    "en",
		"":      "en",
	}
	for in, want := range tests {
		assert.Equal(t, want, Normalize(in), in)
	}
}

func TestLocalizedPath(t *testing.T) {
	assert.Equal(t, "/blog", LocalizedPath("en", "/blog"))
	assert.Equal(t, "/zh/blog", LocalizedPath("zh", "/blog"))
	assert.Equal(t, "/ja", LocalizedPath("ja", "/"))
	assert.Equal(t, "/ru/docs", LocalizedPath("ru", "docs"))
}

func TestFromAcceptLanguage(t *testing.T) {
	assert.Equal(t, "ja", FromAcceptLanguage("ja-JP,ja;q=0.9,en;q=0.8"))
	assert.Equal(t, "en", FromAcceptLanguage("en-US,en;q=0.9"))
	assert.Equal(t, "zh", FromAcceptLanguage("de-DE, zh-CN;q=0.8"))
	assert.Equal(t, "en", FromAcceptLanguage(""))
}

func TestTagLabel(t *testing.T) {
	assert.Equal(t, "语音与音频", TagLabel("Voice & Audio", "zh"))
	assert.Equal(t, "Voice & Audio", TagLabel("Voice & Audio", "en"))
	assert.Equal(t, "Unknown", TagLabel("Unknown", "ja"))
	assert.Equal(t, "Все", AllTagsLabel("ru"))
	assert.Equal(t, "All", AllTagsLabel("de"))
}
