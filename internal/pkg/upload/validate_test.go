package upload

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHead = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestValidateImage(t *testing.T) {
	mime, err := ValidateImage("cover.PNG", pngHead)
	require.NoError(t, err)
	assert.Equal(t, "image/png", mime)

	_, err = ValidateImage("cover.svg", []byte("<svg></svg>"))
	assert.ErrorIs(t, err, ErrExtension)

	_, err = ValidateImage("cover.png", []byte("<!DOCTYPE html><html><script>alert(1)</script>"))
	assert.ErrorIs(t, err, ErrMarkup)

	_, err = ValidateImage("cover.jpg", []byte("plain text, not an image"))
	assert.ErrorIs(t, err, ErrContentType)

	mime, err = ValidateImage("scan.tiff", []byte{0x49, 0x49, 0x2a, 0x00, 0x08})
	require.NoError(t, err)
	assert.Equal(t, "image/tiff", mime)
}
