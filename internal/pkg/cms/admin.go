package cms

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2/log"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/clawsite/clawsite/app/models"
	"github.com/clawsite/clawsite/app/repository"
	"github.com/clawsite/clawsite/internal/pkg/action"
)

// PostInput is the dashboard editor payload.
type PostInput struct {
	ID               string   `json:"id"`
	PostType         string   `json:"postType"`
	Language         string   `json:"language"`
	Title            string   `json:"title"`
	Slug             string   `json:"slug"`
	Content          string   `json:"content"`
	Description      string   `json:"description"`
	FeaturedImageURL string   `json:"featuredImageUrl"`
	Status           string   `json:"status"`
	Visibility       string   `json:"visibility"`
	IsPinned         bool     `json:"isPinned"`
	TagIDs           []string `json:"tagIds"`
}

// AdminPost is a post with its tags, as the editor loads it.
type AdminPost struct {
	models.Post
	Tags []models.Tag `json:"tags"`
}

type AdminList struct {
	Posts []AdminPost `json:"posts"`
	Count int64       `json:"count"`
}

// PostAdmin implements the dashboard post operations.
type PostAdmin struct {
	posts  repository.PostRepository
	tags   repository.TagRepository
	tagIDs TagIDCache
	now    func() time.Time
}

func NewPostAdmin(posts repository.PostRepository, tags repository.TagRepository, tagIDs TagIDCache) *PostAdmin {
	if tagIDs == nil {
		tagIDs = NopTagIDCache{}
	}
	return &PostAdmin{posts: posts, tags: tags, tagIDs: tagIDs, now: time.Now}
}

var fieldMessages = map[string]string{
	"Title":            "Title must be at least 3 characters.",
	"Slug":             "Slug must be at least 3 characters.",
	"Language":         "Language is not supported.",
	"PostType":         "Post type is not supported.",
	"FeaturedImageURL": "Featured image must be a valid URL if provided.",
	"Status":           "Status must be draft, published or archived.",
	"Visibility":       "Visibility must be public, logged_in or subscribers.",
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		if msg, ok := fieldMessages[verrs[0].Field()]; ok {
			return msg
		}
		return fmt.Sprintf("Invalid %s.", verrs[0].Field())
	}
	return "Invalid input."
}

func (in PostInput) apply(p *models.Post) {
	p.PostType = in.PostType
	p.Language = in.Language
	p.Title = strings.TrimSpace(in.Title)
	p.Slug = normalizeSlug(in.Slug)
	p.Content = in.Content
	p.Description = in.Description
	p.FeaturedImageURL = strings.TrimSpace(in.FeaturedImageURL)
	p.Status = in.Status
	p.Visibility = in.Visibility
	p.IsPinned = in.IsPinned
}

// Create stores a new post and its tags in one transaction. authorID may be empty.
func (a *PostAdmin) Create(ctx context.Context, in PostInput, authorID string) action.Result[*AdminPost] {
	post := &models.Post{}
	in.apply(post)
	if authorID != "" {
		post.AuthorID = &authorID
	}
	if err := post.Validate(); err != nil {
		return action.BadRequest[*AdminPost](validationMessage(err))
	}

	exists, err := a.posts.SlugExistsExceptID(ctx, post.PostType, post.Language, post.Slug, "")
	if err != nil {
		log.Errorf("[CMS] slug check failed: %v", err)
		return action.Internal[*AdminPost]()
	}
	if exists {
		return action.Conflict[*AdminPost](fmt.Sprintf("Slug %q already exists for this language.", post.Slug))
	}
	tagIDs, r := a.resolveTags(ctx, post.PostType, in.TagIDs)
	if !r.OK() {
		return r
	}

	post.MarkPublished(a.now())
	if err := a.posts.CreateWithTags(ctx, post, tagIDs); err != nil {
		log.Errorf("[CMS] create post failed: %v", err)
		return action.Internal[*AdminPost]()
	}
	a.tagIDs.Invalidate(ctx, post.PostType, post.Language, tagIDs...)
	return a.withTags(ctx, post)
}

// Update overwrites an existing post and its tag assignments in one transaction.
func (a *PostAdmin) Update(ctx context.Context, in PostInput) action.Result[*AdminPost] {
	if in.ID == "" {
		return action.BadRequest[*AdminPost]("Post id is required.")
	}
	post, err := a.posts.GetByID(ctx, in.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return action.NotFound[*AdminPost]("Post not found.")
		}
		log.Errorf("[CMS] loading post %s failed: %v", in.ID, err)
		return action.Internal[*AdminPost]()
	}
	before := *post

	in.apply(post)
	if err := post.Validate(); err != nil {
		return action.BadRequest[*AdminPost](validationMessage(err))
	}
	exists, err := a.posts.SlugExistsExceptID(ctx, post.PostType, post.Language, post.Slug, post.ID)
	if err != nil {
		log.Errorf("[CMS] slug check failed: %v", err)
		return action.Internal[*AdminPost]()
	}
	if exists {
		return action.Conflict[*AdminPost](fmt.Sprintf("Slug %q already exists for this language.", post.Slug))
	}
	tagIDs, r := a.resolveTags(ctx, post.PostType, in.TagIDs)
	if !r.OK() {
		return r
	}
	old, err := a.tags.TagsByPost(ctx, []string{post.ID})
	if err != nil {
		log.Errorf("[CMS] loading tags of %s failed: %v", post.ID, err)
		return action.Internal[*AdminPost]()
	}

	post.MarkPublished(a.now())
	if err := a.posts.UpdateWithTags(ctx, post, tagIDs); err != nil {
		log.Errorf("[CMS] update post %s failed: %v", post.ID, err)
		return action.Internal[*AdminPost]()
	}

	affected := append([]string{}, tagIDs...)
	for _, t := range old[post.ID] {
		affected = append(affected, t.ID)
	}
	a.tagIDs.Invalidate(ctx, post.PostType, post.Language, affected...)
	if before.Language != post.Language || before.PostType != post.PostType {
		a.tagIDs.Invalidate(ctx, before.PostType, before.Language, affected...)
	}
	return a.withTags(ctx, post)
}

// resolveTags drops local tag ids and every id of a post type without tags.
// Ids that name no tag of postType are a BadRequest.
func (a *PostAdmin) resolveTags(ctx context.Context, postType string, ids []string) ([]string, action.Result[*AdminPost]) {
	if cfg, _ := ConfigFor(postType); !cfg.EnableTags {
		return nil, action.OK[*AdminPost](nil)
	}
	var keep []string
	for _, id := range ids {
		if id != "" && !strings.HasPrefix(id, LocalTagPrefix) {
			keep = append(keep, id)
		}
	}
	missing, err := a.tags.MissingIDs(ctx, postType, keep)
	if err != nil {
		log.Errorf("[CMS] tag lookup failed: %v", err)
		return nil, action.Internal[*AdminPost]()
	}
	if len(missing) > 0 {
		return nil, action.BadRequest[*AdminPost](fmt.Sprintf("Unknown tag %q.", missing[0]))
	}
	return keep, action.OK[*AdminPost](nil)
}

func (a *PostAdmin) withTags(ctx context.Context, post *models.Post) action.Result[*AdminPost] {
	current, err := a.tags.TagsByPost(ctx, []string{post.ID})
	if err != nil {
		log.Errorf("[CMS] loading tags of %s failed: %v", post.ID, err)
		return action.Internal[*AdminPost]()
	}
	tags := current[post.ID]
	if tags == nil {
		tags = []models.Tag{}
	}
	return action.OK(&AdminPost{Post: *post, Tags: tags})
}

func (a *PostAdmin) Get(ctx context.Context, id string) action.Result[*AdminPost] {
	post, err := a.posts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return action.NotFound[*AdminPost]("Post not found.")
		}
		log.Errorf("[CMS] loading post %s failed: %v", id, err)
		return action.Internal[*AdminPost]()
	}
	return a.withTags(ctx, post)
}

func (a *PostAdmin) Delete(ctx context.Context, id string) action.Result[string] {
	post, err := a.posts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return action.NotFound[string]("Post not found.")
		}
		log.Errorf("[CMS] loading post %s failed: %v", id, err)
		return action.Internal[string]()
	}
	tags, err := a.tags.TagsByPost(ctx, []string{id})
	if err != nil {
		log.Errorf("[CMS] loading tags of %s failed: %v", id, err)
		return action.Internal[string]()
	}
	if err := a.posts.Delete(ctx, id); err != nil {
		log.Errorf("[CMS] delete post %s failed: %v", id, err)
		return action.Internal[string]()
	}

	ids := make([]string, 0, len(tags[id]))
	for _, t := range tags[id] {
		ids = append(ids, t.ID)
	}
	a.tagIDs.Invalidate(ctx, post.PostType, post.Language, ids...)
	return action.OK(id)
}

// List pages through posts of every status.
func (a *PostAdmin) List(ctx context.Context, filter repository.AdminPostFilter, pageIndex, pageSize int) action.Result[AdminList] {
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	if pageIndex < 0 {
		pageIndex = 0
	}

	var (
		count int64
		rows  []models.Post
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		count, err = a.posts.CountAll(gctx, filter)
		return err
	})
	g.Go(func() error {
		var err error
		rows, err = a.posts.ListAll(gctx, filter, pageIndex*pageSize, pageSize)
		return err
	})
	if err := g.Wait(); err != nil {
		log.Errorf("[CMS] admin list failed: %v", err)
		return action.Internal[AdminList]()
	}

	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	tags, err := a.tags.TagsByPost(ctx, ids)
	if err != nil {
		log.Errorf("[CMS] loading tags for the admin list failed: %v", err)
		return action.Internal[AdminList]()
	}

	out := make([]AdminPost, 0, len(rows))
	for _, r := range rows {
		t := tags[r.ID]
		if t == nil {
			t = []models.Tag{}
		}
		out = append(out, AdminPost{Post: r, Tags: t})
	}
	return action.OK(AdminList{Posts: out, Count: count})
}
