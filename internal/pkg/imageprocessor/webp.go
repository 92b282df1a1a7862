// Package imageprocessor turns uploaded images into web ready WebP files.
package imageprocessor

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"

	"github.com/disintegration/imaging"
	"github.com/kolesa-team/go-webp/decoder"
	"github.com/kolesa-team/go-webp/encoder"
	"github.com/kolesa-team/go-webp/webp"
)

const (
	// MaxFeaturedWidth is the widest a featured image is stored.
	MaxFeaturedWidth = 1600
	WebPQuality      = 85
	// MaxUploadBytes bounds the accepted source file.
	MaxUploadBytes = 10 << 20
)

var ErrUnsupportedImage = errors.New("unsupported image format")

// Decode reads JPEG, PNG, GIF, BMP, TIFF or WebP data, honoring EXIF orientation.
func Decode(data []byte) (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err == nil {
		return img, nil
	}
	if wimg, werr := webp.Decode(bytes.NewReader(data), &decoder.Options{}); werr == nil {
		return wimg, nil
	}
	return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
}

// FitWidth scales img down to maxWidth keeping the aspect ratio. Narrower
// images are returned unchanged.
func FitWidth(img image.Image, maxWidth int) image.Image {
	if maxWidth <= 0 || img.Bounds().Dx() <= maxWidth {
		return img
	}
	return imaging.Resize(img, maxWidth, 0, imaging.Lanczos)
}

// EncodeWebP writes img as lossy WebP.
func EncodeWebP(w io.Writer, img image.Image, quality float32) error {
	options, err := encoder.NewLossyEncoderOptions(encoder.PresetDefault, quality)
	if err != nil {
		return fmt.Errorf("error creating encoder options: %w", err)
	}
	if err := webp.Encode(w, img, options); err != nil {
		return fmt.Errorf("error encoding WebP image: %w", err)
	}
	return nil
}

// ToWebP decodes an uploaded image, fits it to maxWidth and re-encodes it.
func ToWebP(r io.Reader, maxWidth int) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxUploadBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > MaxUploadBytes {
		return nil, fmt.Errorf("image exceeds %d bytes", MaxUploadBytes)
	}

	img, err := Decode(data)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := EncodeWebP(&buf, FitWidth(img, maxWidth), WebPQuality); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
