package cms

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/clawsite/clawsite/app/models"
	"github.com/clawsite/clawsite/app/repository"
	"github.com/clawsite/clawsite/internal/pkg/action"
	"github.com/clawsite/clawsite/internal/pkg/i18n"
)

// LocalTagPrefix marks tags that only exist in local Markdown files.
const LocalTagPrefix = "local-"

// TagService manages tags for the dashboard and the public tag filter.
type TagService struct {
	tags     repository.TagRepository
	registry *Registry
	cache    *TagCache
	tagIDs   TagIDCache
}

func NewTagService(tags repository.TagRepository, registry *Registry, cache *TagCache, tagIDs TagIDCache) *TagService {
	if cache == nil {
		cache = NewTagCache()
	}
	if tagIDs == nil {
		tagIDs = NopTagIDCache{}
	}
	return &TagService{tags: tags, registry: registry, cache: cache, tagIDs: tagIDs}
}

func (s *TagService) checkType(postType string) (PostConfig, string) {
	cfg, ok := ConfigFor(postType)
	if !ok {
		return cfg, "Unknown post type."
	}
	if !cfg.EnableTags {
		return cfg, "Tags are disabled for this post type."
	}
	return cfg, ""
}

// ListTags returns database tags merged with tags that only appear in local
// posts. Unfiltered lists are served from the TagCache.
func (s *TagService) ListTags(ctx context.Context, postType, query string) action.Result[[]models.Tag] {
	if _, msg := s.checkType(postType); msg != "" {
		return action.BadRequest[[]models.Tag](msg)
	}
	query = strings.TrimSpace(query)

	if query == "" {
		if tags, ok := s.cache.Get(postType); ok {
			return action.OK(tags)
		}
	}

	tags, err := s.tags.List(ctx, postType, query)
	if err != nil {
		log.Errorf("[CMS] list tags for %s failed: %v", postType, err)
		return action.Internal[[]models.Tag]()
	}
	tags = s.mergeLocal(ctx, postType, query, tags)

	if query == "" {
		s.cache.Set(postType, tags)
	}
	return action.OK(tags)
}

func (s *TagService) mergeLocal(ctx context.Context, postType, query string, tags []models.Tag) []models.Tag {
	if s.registry == nil {
		return tags
	}
	m, err := s.registry.Get(postType)
	if err != nil || m.Local() == nil {
		return tags
	}

	known := map[string]bool{}
	for _, t := range tags {
		known[strings.ToLower(t.Name)] = true
	}
	posts, err := m.Local().ListAll(ctx, i18n.DefaultLocale)
	if err != nil {
		return tags
	}
	lq := strings.ToLower(query)
	for _, p := range posts {
		for _, name := range strings.Split(p.Tags, ",") {
			name = strings.TrimSpace(name)
			key := strings.ToLower(name)
			if name == "" || known[key] || (lq != "" && !strings.Contains(key, lq)) {
				continue
			}
			known[key] = true
			tags = append(tags, models.Tag{ID: LocalTagPrefix + Slugify(name), Name: name, PostType: postType})
		}
	}
	sort.SliceStable(tags, func(i, j int) bool { return tags[i].Name < tags[j].Name })
	return tags
}

func (s *TagService) CreateTag(ctx context.Context, postType, name string) action.Result[*models.Tag] {
	if _, msg := s.checkType(postType); msg != "" {
		return action.BadRequest[*models.Tag](msg)
	}
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 100 {
		return action.BadRequest[*models.Tag]("Tag name must be between 1 and 100 characters.")
	}

	exists, err := s.tags.NameExists(ctx, postType, name, "")
	if err != nil {
		log.Errorf("[CMS] create tag failed: %v", err)
		return action.Internal[*models.Tag]()
	}
	if exists {
		return action.Conflict[*models.Tag]("Tag already exists.")
	}

	tag := &models.Tag{Name: name, PostType: postType}
	if err := s.tags.Create(ctx, tag); err != nil {
		log.Errorf("[CMS] create tag failed: %v", err)
		return action.Internal[*models.Tag]()
	}
	s.cache.Invalidate(postType)
	return action.OK(tag)
}

func (s *TagService) UpdateTag(ctx context.Context, id, name string) action.Result[*models.Tag] {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 100 {
		return action.BadRequest[*models.Tag]("Tag name must be between 1 and 100 characters.")
	}
	tag, err := s.tags.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return action.NotFound[*models.Tag]("Tag not found.")
		}
		log.Errorf("[CMS] update tag failed: %v", err)
		return action.Internal[*models.Tag]()
	}

	exists, err := s.tags.NameExists(ctx, tag.PostType, name, tag.ID)
	if err != nil {
		log.Errorf("[CMS] update tag failed: %v", err)
		return action.Internal[*models.Tag]()
	}
	if exists {
		return action.Conflict[*models.Tag]("Tag already exists.")
	}

	tag.Name = name
	if err := s.tags.Update(ctx, tag); err != nil {
		log.Errorf("[CMS] update tag %s failed: %v", id, err)
		return action.Internal[*models.Tag]()
	}
	s.cache.Invalidate(tag.PostType)
	return action.OK(tag)
}

// DeleteTag removes the tag with its assignments and drops the cached id lists.
func (s *TagService) DeleteTag(ctx context.Context, id string) action.Result[string] {
	if strings.HasPrefix(id, LocalTagPrefix) {
		return action.BadRequest[string]("Local tags are defined in content files.")
	}
	tag, err := s.tags.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return action.NotFound[string]("Tag not found.")
		}
		log.Errorf("[CMS] delete tag failed: %v", err)
		return action.Internal[string]()
	}
	if err := s.tags.Delete(ctx, id); err != nil {
		log.Errorf("[CMS] delete tag %s failed: %v", id, err)
		return action.Internal[string]()
	}
	s.cache.Invalidate(tag.PostType)
	for _, locale := range i18n.Locales {
		s.tagIDs.Invalidate(ctx, tag.PostType, locale, id)
	}
	return action.OK(id)
}
