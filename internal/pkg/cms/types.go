package cms

import (
	"time"

	"github.com/clawsite/clawsite/app/models"
)

// PostBase is the normalized shape of a post from any content source.
type PostBase struct {
	Locale           string                 `json:"locale"`
	ID               string                 `json:"id,omitempty"`
	Title            string                 `json:"title"`
	Description      string                 `json:"description"`
	FeaturedImageURL string                 `json:"featuredImageUrl"`
	Slug             string                 `json:"slug"`
	Tags             string                 `json:"tags"`
	PublishedAt      time.Time              `json:"publishedAt"`
	Status           string                 `json:"status"`
	Visibility       string                 `json:"visibility"`
	IsPinned         bool                   `json:"isPinned"`
	Content          string                 `json:"content"`
	Metadata         map[string]interface{} `json:"metadata,omitempty"`
}

// PublicPost is the listing projection of a post; it never carries content.
type PublicPost struct {
	ID               string    `json:"id"`
	Locale           string    `json:"locale"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	FeaturedImageURL string    `json:"featuredImageUrl"`
	Slug             string    `json:"slug"`
	Tags             string    `json:"tags"`
	PublishedAt      time.Time `json:"publishedAt"`
	Status           string    `json:"status"`
	Visibility       string    `json:"visibility"`
	IsPinned         bool      `json:"isPinned"`
}

// PostMetadata is the lightweight view used for Open Graph images.
type PostMetadata struct {
	Title            string `json:"title"`
	Description      string `json:"description"`
	FeaturedImageURL string `json:"featuredImageUrl"`
	Visibility       string `json:"visibility"`
}

// Viewer is the session state visibility gating depends on.
type Viewer struct {
	IsLoggedIn   bool
	IsSubscriber bool
}

var Anonymous = Viewer{}

// ListParams selects one page of published posts.
type ListParams struct {
	PostType   string
	Locale     string
	PageIndex  int
	PageSize   int
	TagID      string
	Visibility string
}

type ListResult struct {
	Posts []PublicPost `json:"posts"`
	Count int64        `json:"count"`
}

// StaticParam is one (locale, slug) pair a static page is generated for.
type StaticParam struct {
	Locale string `json:"locale"`
	Slug   string `json:"slug"`
}

// GetBySlugResult carries a post or the reason it could not be shown.
// A gated post comes back with its content blanked and ErrorCode set.
type GetBySlugResult struct {
	Post      *PostBase `json:"post"`
	Error     string    `json:"error,omitempty"`
	ErrorCode string    `json:"errorCode,omitempty"`
}

func (p *PostBase) Public() PublicPost {
	return PublicPost{
		ID:               p.ID,
		Locale:           p.Locale,
		Title:            p.Title,
		Description:      p.Description,
		FeaturedImageURL: p.FeaturedImageURL,
		Slug:             p.Slug,
		Tags:             p.Tags,
		PublishedAt:      p.PublishedAt,
		Status:           p.Status,
		Visibility:       p.Visibility,
		IsPinned:         p.IsPinned,
	}
}

func (p *PostBase) Meta() *PostMetadata {
	return &PostMetadata{
		Title:            p.Title,
		Description:      p.Description,
		FeaturedImageURL: p.FeaturedImageURL,
		Visibility:       p.Visibility,
	}
}

func fromModel(p *models.Post, tags string) *PostBase {
	published := p.CreatedAt
	if p.PublishedAt != nil {
		published = *p.PublishedAt
	}
	status := p.Status
	if status == "" {
		status = models.PostStatusPublished
	}
	visibility := p.Visibility
	if visibility == "" {
		visibility = models.VisibilityPublic
	}
	return &PostBase{
		Locale:           p.Language,
		ID:               p.ID,
		Title:            p.Title,
		Description:      p.Description,
		FeaturedImageURL: p.FeaturedImageURL,
		Slug:             p.Slug,
		Tags:             tags,
		PublishedAt:      published,
		Status:           status,
		Visibility:       visibility,
		IsPinned:         p.IsPinned,
		Content:          p.Content,
	}
}
