package cms

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clawsite/clawsite/app/models"
	"github.com/clawsite/clawsite/app/repository"
	"github.com/clawsite/clawsite/internal/pkg/action"
)

// limitRecorder remembers the limit of the last page query.
type limitRecorder struct {
	repository.PostRepository
	limit int
}

func (r *limitRecorder) ListPublished(ctx context.Context, f repository.PostFilter, offset, limit int) ([]models.Post, error) {
	r.limit = limit
	return r.PostRepository.ListPublished(ctx, f, offset, limit)
}

func TestRemoteListBoundsPageSize(t *testing.T) {
	env := newTestEnv(t)
	env.seedPost(t, models.Post{Slug: "only"}, 1)
	posts := &limitRecorder{PostRepository: env.repos.Post}
	src := NewRemoteSource(models.PostTypeBlog, posts, env.repos.Tag, nil)

	for _, tc := range []struct{ asked, used int }{
		{0, DefaultPageSize},
		{25, 25},
		{MaxPageSize, MaxPageSize},
		{100000000, MaxPageSize},
	} {
		r := src.ListPublished(env.ctx, ListParams{Locale: "en", PageSize: tc.asked})
		require.True(t, r.OK())
		assert.Equal(t, tc.used, posts.limit, "pageSize %d", tc.asked)
	}
}

func TestRemotePaginationIsConsistent(t *testing.T) {
	env := newTestEnv(t)
	for i := 0; i < 7; i++ {
		// Pairs share a publish date so the id tiebreak is exercised.
		env.seedPost(t, models.Post{Slug: fmt.Sprintf("post-%d", i), IsPinned: i == 3}, i/2)
	}
	env.seedPost(t, models.Post{Slug: "draft-one", Status: models.PostStatusDraft}, 0)
	env.seedPost(t, models.Post{Slug: "in-japanese", Language: "ja"}, 0)
	env.seedPost(t, models.Post{Slug: "a-doc", PostType: models.PostTypeDoc}, 0)

	src := NewRemoteSource(models.PostTypeBlog, env.repos.Post, env.repos.Tag, nil)

	seen := map[string]bool{}
	var ordered []PublicPost
	for page := 0; page < 4; page++ {
		r := src.ListPublished(env.ctx, ListParams{Locale: "en", PageIndex: page, PageSize: 2})
		require.True(t, r.OK())
		assert.EqualValues(t, 7, r.Data.Count)
		for _, p := range r.Data.Posts {
			assert.False(t, seen[p.ID], "duplicate %s", p.Slug)
			seen[p.ID] = true
			ordered = append(ordered, p)
		}
	}
	require.Len(t, ordered, 7)
	assert.Equal(t, "post-3", ordered[0].Slug)
	for i := 2; i < len(ordered); i++ {
		assert.False(t, ordered[i].PublishedAt.After(ordered[i-1].PublishedAt))
	}
}

func TestRemoteListDefaultsAndVisibility(t *testing.T) {
	env := newTestEnv(t)
	env.seedPost(t, models.Post{Slug: "open"}, 1)
	env.seedPost(t, models.Post{Slug: "members", Visibility: models.VisibilityLoggedIn}, 2)

	src := NewRemoteSource(models.PostTypeBlog, env.repos.Post, env.repos.Tag, nil)
	r := src.ListPublished(env.ctx, ListParams{Locale: "en", PageIndex: -3})
	require.True(t, r.OK())
	assert.EqualValues(t, 2, r.Data.Count)

	r = src.ListPublished(env.ctx, ListParams{Locale: "en", Visibility: models.VisibilityPublic})
	require.True(t, r.OK())
	require.Len(t, r.Data.Posts, 1)
	assert.Equal(t, "open", r.Data.Posts[0].Slug)
}

func TestRemoteTagFilterUsesCache(t *testing.T) {
	env := newTestEnv(t)
	a := env.seedPost(t, models.Post{Slug: "tagged-a"}, 1)
	b := env.seedPost(t, models.Post{Slug: "tagged-b"}, 2)
	env.seedPost(t, models.Post{Slug: "untagged"}, 3)
	tag := env.seedTag(t, "Go", models.PostTypeBlog, a.ID, b.ID)
	empty := env.seedTag(t, "Empty", models.PostTypeBlog)

	ids := newMemTagIDCache()
	src := NewRemoteSource(models.PostTypeBlog, env.repos.Post, env.repos.Tag, ids)

	r := src.ListPublished(env.ctx, ListParams{Locale: "en", TagID: tag.ID})
	require.True(t, r.OK())
	assert.EqualValues(t, 2, r.Data.Count)
	assert.Equal(t, "tagged-b", r.Data.Posts[0].Slug)
	assert.Equal(t, "Go", r.Data.Posts[0].Tags)
	assert.Equal(t, 1, ids.sets)

	r = src.ListPublished(env.ctx, ListParams{Locale: "en", TagID: tag.ID})
	require.True(t, r.OK())
	assert.Equal(t, 1, ids.sets, "second lookup should be served from cache")

	r = src.ListPublished(env.ctx, ListParams{Locale: "en", TagID: empty.ID})
	require.True(t, r.OK())
	assert.EqualValues(t, 0, r.Data.Count)
	assert.Empty(t, r.Data.Posts)
}

func TestRemoteListOmitsContent(t *testing.T) {
	env := newTestEnv(t)
	env.seedPost(t, models.Post{Slug: "with-body", Content: "secret body"}, 1)

	src := NewRemoteSource(models.PostTypeBlog, env.repos.Post, env.repos.Tag, nil)
	all, err := src.ListAll(env.ctx, "en")
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Empty(t, all[0].Content)
}

func TestRemoteGetPublishedBySlugGating(t *testing.T) {
	env := newTestEnv(t)
	env.seedPost(t, models.Post{Slug: "open", Content: "body"}, 1)
	env.seedPost(t, models.Post{Slug: "members", Content: "body", Visibility: models.VisibilityLoggedIn}, 1)
	env.seedPost(t, models.Post{Slug: "premium", Content: "body", Visibility: models.VisibilitySubscribers}, 1)
	env.seedPost(t, models.Post{Slug: "unfinished", Status: models.PostStatusDraft}, 1)

	src := NewRemoteSource(models.PostTypeBlog, env.repos.Post, env.repos.Tag, nil)
	member := Viewer{IsLoggedIn: true}
	subscriber := Viewer{IsLoggedIn: true, IsSubscriber: true}

	r := src.GetPublishedBySlug(env.ctx, "/open/", "en", Anonymous)
	require.True(t, r.OK())
	assert.Equal(t, "body", r.Data.Content)

	r = src.GetPublishedBySlug(env.ctx, "members", "en", Anonymous)
	assert.Equal(t, action.KindUnauthorized, r.Kind)
	assert.Equal(t, action.CodeUnauthorized, r.CustomCode)
	require.NotNil(t, r.Data)
	assert.Empty(t, r.Data.Content)
	assert.Equal(t, "members", r.Data.Slug)

	r = src.GetPublishedBySlug(env.ctx, "members", "en", member)
	require.True(t, r.OK())
	assert.Equal(t, "body", r.Data.Content)

	r = src.GetPublishedBySlug(env.ctx, "premium", "en", Anonymous)
	assert.Equal(t, action.CodeUnauthorized, r.CustomCode)

	r = src.GetPublishedBySlug(env.ctx, "premium", "en", member)
	assert.Equal(t, action.KindForbidden, r.Kind)
	assert.Equal(t, action.CodeNotSubscriber, r.CustomCode)
	assert.Empty(t, r.Data.Content)

	r = src.GetPublishedBySlug(env.ctx, "premium", "en", subscriber)
	require.True(t, r.OK())
	assert.Equal(t, "body", r.Data.Content)

	r = src.GetPublishedBySlug(env.ctx, "unfinished", "en", subscriber)
	assert.Equal(t, action.KindNotFound, r.Kind)

	r = src.GetPublishedBySlug(env.ctx, " ", "en", subscriber)
	assert.Equal(t, action.KindBadRequest, r.Kind)
}

func TestRemoteGetPublishedBySlugForISR(t *testing.T) {
	env := newTestEnv(t)
	env.seedPost(t, models.Post{Slug: "open", Content: "body"}, 1)
	env.seedPost(t, models.Post{Slug: "members", Content: "body", Visibility: models.VisibilityLoggedIn}, 1)
	env.seedPost(t, models.Post{Slug: "premium", Content: "body", Visibility: models.VisibilitySubscribers}, 1)

	src := NewRemoteSource(models.PostTypeBlog, env.repos.Post, env.repos.Tag, nil)

	r := src.GetPublishedBySlugForISR(env.ctx, "open", "en")
	require.True(t, r.OK())
	assert.Equal(t, "body", r.Data.Content)
	assert.Empty(t, r.CustomCode)

	r = src.GetPublishedBySlugForISR(env.ctx, "members", "en")
	require.True(t, r.OK())
	assert.Empty(t, r.Data.Content)
	assert.Equal(t, action.CodeUnauthorized, r.CustomCode)

	r = src.GetPublishedBySlugForISR(env.ctx, "premium", "en")
	require.True(t, r.OK())
	assert.Empty(t, r.Data.Content)
	assert.Equal(t, action.CodeNotSubscriber, r.CustomCode)
}

func TestRemoteGetMetadata(t *testing.T) {
	env := newTestEnv(t)
	env.seedPost(t, models.Post{Slug: "og", Title: "OG Title", Description: "desc", Visibility: models.VisibilitySubscribers}, 1)

	src := NewRemoteSource(models.PostTypeBlog, env.repos.Post, env.repos.Tag, nil)
	r := src.GetMetadata(env.ctx, "og", "en")
	require.True(t, r.OK())
	assert.Equal(t, &PostMetadata{Title: "OG Title", Description: "desc", Visibility: models.VisibilitySubscribers}, r.Data)

	assert.Equal(t, action.KindNotFound, src.GetMetadata(env.ctx, "nope", "en").Kind)
}

func TestRemoteGetRelated(t *testing.T) {
	env := newTestEnv(t)
	main := env.seedPost(t, models.Post{Slug: "main"}, 1)
	sib1 := env.seedPost(t, models.Post{Slug: "sibling-1"}, 2)
	sib2 := env.seedPost(t, models.Post{Slug: "sibling-2"}, 3)
	other := env.seedPost(t, models.Post{Slug: "other"}, 4)
	env.seedTag(t, "Alpha", models.PostTypeBlog, main.ID, sib1.ID, sib2.ID)
	env.seedTag(t, "Beta", models.PostTypeBlog, main.ID, other.ID)

	src := NewRemoteSource(models.PostTypeBlog, env.repos.Post, env.repos.Tag, nil)
	r := src.GetRelated(env.ctx, main.ID, "en", 0)
	require.True(t, r.OK())
	require.Len(t, r.Data, 2)
	assert.Equal(t, "sibling-2", r.Data[0].Slug)
	assert.Equal(t, "sibling-1", r.Data[1].Slug)

	r = src.GetRelated(env.ctx, main.ID, "en", 1)
	require.True(t, r.OK())
	assert.Len(t, r.Data, 1)

	r = src.GetRelated(env.ctx, sib1.ID+"-missing", "en", 0)
	require.True(t, r.OK())
	assert.Empty(t, r.Data)
}
