// Package upload screens user supplied files before they are processed.
package upload

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"
)

// SniffLen is how many leading bytes ValidateImage inspects.
const SniffLen = 512

var (
	ErrExtension   = errors.New("only JPG, PNG, GIF, WEBP, BMP and TIFF images are supported")
	ErrMarkup      = errors.New("HTML, XML and SVG content is not allowed")
	ErrContentType = errors.New("the file content is not a supported image")
)

// Formats the featured image pipeline can decode.
var allowedExt = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
}

var allowedMime = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
	"image/bmp":  true,
	"image/tiff": true,
}

// ValidateImage checks the extension of filename and the sniffed type of
// head. It returns the detected MIME type.
func ValidateImage(filename string, head []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExt[ext] {
		return "", ErrExtension
	}

	detected := http.DetectContentType(head)
	switch {
	case strings.HasPrefix(detected, "text/html"),
		strings.HasPrefix(detected, "text/xml"),
		strings.HasPrefix(detected, "application/xml"),
		strings.HasPrefix(detected, "image/svg"):
		return "", ErrMarkup
	case allowedMime[detected]:
		return detected, nil
	case detected == "application/octet-stream" && (ext == ".tif" || ext == ".tiff"):
		// DetectContentType has no TIFF signature.
		return "image/tiff", nil
	}
	return "", ErrContentType
}
