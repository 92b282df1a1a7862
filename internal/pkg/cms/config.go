package cms

import "github.com/clawsite/clawsite/app/models"

const (
	ViewModeAll    = "all"
	ViewModeUnique = "unique"
)

// DefaultPageSize is used when a listing request does not name a page size.
const DefaultPageSize = 60

// MaxPageSize bounds one listing page. The sitemap reads pages of this size.
const MaxPageSize = 1000

func pageSize(n int) int {
	switch {
	case n <= 0:
		return DefaultPageSize
	case n > MaxPageSize:
		return MaxPageSize
	}
	return n
}

type ViewCountConfig struct {
	Enabled bool
	// Mode is ViewModeAll (every load) or ViewModeUnique (once per IP per hour).
	Mode     string
	ShowInUI bool
}

type Routes struct {
	List   string
	Create string
	Edit   string // contains :id
}

// PostConfig is the static per post type configuration.
type PostConfig struct {
	PostType   string
	ImagePath  string
	EnableTags bool
	// LocalDirectory is relative to the content root. Empty means database only.
	LocalDirectory  string
	FallbackLocale  string
	ViewCount       ViewCountConfig
	ShowCoverInList bool
	Routes          Routes
}

func (c PostConfig) HasLocal() bool {
	return c.LocalDirectory != ""
}

var Configs = map[string]PostConfig{
	models.PostTypeBlog: {
		PostType:        models.PostTypeBlog,
		ImagePath:       "images/blogs",
		EnableTags:      true,
		LocalDirectory:  "blogs",
		ViewCount:       ViewCountConfig{Enabled: false, Mode: ViewModeAll, ShowInUI: true},
		ShowCoverInList: true,
		Routes: Routes{
			List:   "/dashboard/blogs",
			Create: "/dashboard/blogs/new",
			Edit:   "/dashboard/blogs/:id",
		},
	},
	models.PostTypeGlossary: {
		PostType:        models.PostTypeGlossary,
		ImagePath:       "images/glossary",
		EnableTags:      true,
		ViewCount:       ViewCountConfig{Enabled: false, Mode: ViewModeAll, ShowInUI: true},
		ShowCoverInList: false,
		Routes: Routes{
			List:   "/dashboard/glossary",
			Create: "/dashboard/glossary/new",
			Edit:   "/dashboard/glossary/:id",
		},
	},
	models.PostTypeDoc: {
		PostType:        models.PostTypeDoc,
		ImagePath:       "images/docs",
		EnableTags:      false,
		LocalDirectory:  "docs",
		FallbackLocale:  "en",
		ViewCount:       ViewCountConfig{Enabled: false, Mode: ViewModeAll, ShowInUI: false},
		ShowCoverInList: false,
		Routes: Routes{
			List:   "/dashboard/docs",
			Create: "/dashboard/docs/new",
			Edit:   "/dashboard/docs/:id",
		},
	},
}

// ConfigFor returns the configuration of a post type.
func ConfigFor(postType string) (PostConfig, bool) {
	c, ok := Configs[postType]
	return c, ok
}
