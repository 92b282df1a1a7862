package cms

import (
	"bytes"
	"context"
	"io"

	"github.com/gofiber/fiber/v2/log"

	"github.com/clawsite/clawsite/internal/pkg/action"
	"github.com/clawsite/clawsite/internal/pkg/imageprocessor"
	"github.com/clawsite/clawsite/internal/pkg/storage"
)

// ObjectUploader stores an object and returns its public URL.
type ObjectUploader interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
}

// UploadFeaturedImage converts an uploaded image to WebP and stores it under
// the post type's image path. It returns the public URL.
func UploadFeaturedImage(ctx context.Context, store ObjectUploader, postType, fileName string, r io.Reader) action.Result[string] {
	cfg, ok := ConfigFor(postType)
	if !ok {
		return action.BadRequest[string]("Unknown post type.")
	}
	if store == nil {
		return action.Error[string]("Object storage is not configured.")
	}

	data, err := imageprocessor.ToWebP(r, imageprocessor.MaxFeaturedWidth)
	if err != nil {
		log.Warnf("[CMS] featured image %q rejected: %v", fileName, err)
		return action.BadRequest[string]("The uploaded file is not a supported image.")
	}

	key := storage.GenerateKey(fileName+".webp", cfg.ImagePath, "")
	url, err := store.Upload(ctx, key, bytes.NewReader(data), "image/webp")
	if err != nil {
		log.Errorf("[CMS] featured image upload failed: %v", err)
		return action.Error[string]("Failed to upload image.")
	}
	return action.OK(url)
}
