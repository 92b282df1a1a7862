package cms

import (
	"context"
	"errors"
)

// ErrNotFound is returned by a ContentSource that has no post for a slug.
var ErrNotFound = errors.New("post not found")

// ContentSource is one place posts can come from.
type ContentSource interface {
	Name() string
	// GetBySlug returns a non-draft post or ErrNotFound. No visibility gating is applied.
	GetBySlug(ctx context.Context, slug, locale string) (*PostBase, error)
	// ListAll returns every listable post of the locale, content included.
	ListAll(ctx context.Context, locale string) ([]PostBase, error)
}

// Chain asks its sources in order; the first hit wins.
type Chain []ContentSource

func (c Chain) Name() string {
	return "chain"
}

func (c Chain) GetBySlug(ctx context.Context, slug, locale string) (*PostBase, error) {
	for _, src := range c {
		post, err := src.GetBySlug(ctx, slug, locale)
		if err == nil {
			return post, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}
	return nil, ErrNotFound
}

// ListAll concatenates the listings of every source, first source first.
func (c Chain) ListAll(ctx context.Context, locale string) ([]PostBase, error) {
	var all []PostBase
	for _, src := range c {
		posts, err := src.ListAll(ctx, locale)
		if err != nil {
			return nil, err
		}
		all = append(all, posts...)
	}
	return all, nil
}
