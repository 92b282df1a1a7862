package controllers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/clawsite/clawsite/internal/pkg/action"
	"github.com/clawsite/clawsite/internal/pkg/cms"
	"github.com/clawsite/clawsite/internal/pkg/i18n"
	"github.com/clawsite/clawsite/internal/pkg/metrics/counter"
	"github.com/clawsite/clawsite/internal/pkg/usercontext"
)

// ContentController serves the public CMS endpoints of every post type.
type ContentController struct {
	registry *cms.Registry
	views    *counter.Counter
}

func NewContentController(registry *cms.Registry, views *counter.Counter) *ContentController {
	return &ContentController{registry: registry, views: views}
}

func (cc *ContentController) module(c *fiber.Ctx) (*cms.Module, error) {
	m, err := cc.registry.Get(c.Params("postType"))
	if err != nil {
		return nil, action.Respond(c, action.NotFound[any]("Unknown post type."))
	}
	return m, nil
}

// HandleList returns one page of published posts.
func (cc *ContentController) HandleList(c *fiber.Ctx) error {
	m, err := cc.module(c)
	if m == nil {
		return err
	}
	r := m.ListPublished(c.UserContext(), localeParam(c), cms.ListOptions{
		PageIndex:  queryInt(c, "page", 0),
		PageSize:   queryInt(c, "pageSize", cms.DefaultPageSize),
		TagID:      c.Query("tagId"),
		Visibility: c.Query("visibility"),
	})
	return action.Respond(c, r)
}

// HandleLocalList returns the published local posts of a locale.
func (cc *ContentController) HandleLocalList(c *fiber.Ctx) error {
	m, err := cc.module(c)
	if m == nil {
		return err
	}
	posts, err := m.GetLocalList(c.UserContext(), localeParam(c))
	if err != nil {
		log.Errorf("[Content] local list failed: %v", err)
		return action.Respond(c, action.Internal[any]())
	}
	return action.Respond(c, action.OK(fiber.Map{"posts": posts}))
}

type postResponse struct {
	*cms.PostBase
	AvailableLocales []string `json:"availableLocales,omitempty"`
}

// HandleGet resolves a post for the current session. Restricted posts come
// back without content, with 401 or 403 and the matching customCode.
func (cc *ContentController) HandleGet(c *fiber.Ctx) error {
	m, err := cc.module(c)
	if m == nil {
		return err
	}
	slug := slugParam(c)
	locale := localeParam(c)

	if c.Query("mode") == "isr" {
		return action.Respond(c, m.Remote().GetPublishedBySlugForISR(c.UserContext(), slug, locale))
	}

	res := m.GetBySlug(c.UserContext(), slug, locale, usercontext.GetUserContext(c).Viewer())
	if res.Post == nil {
		return action.Respond(c, action.NotFound[any](res.Error))
	}

	body := postResponse{PostBase: res.Post}
	if m.Local() != nil {
		body.AvailableLocales = m.Local().AvailableLocales(c.UserContext(), slug, i18n.Locales)
	}
	switch res.ErrorCode {
	case "":
		return action.Respond(c, action.OK(body))
	case action.CodeNotSubscriber:
		return action.Respond(c, action.Forbidden[postResponse](res.Error).WithCode(res.ErrorCode).WithData(body))
	default:
		return action.Respond(c, action.Unauthorized[postResponse](res.Error).WithData(body))
	}
}

// HandleMetadata returns the Open Graph fields of a post.
func (cc *ContentController) HandleMetadata(c *fiber.Ctx) error {
	m, err := cc.module(c)
	if m == nil {
		return err
	}
	meta := m.GetPostMetadata(c.UserContext(), slugParam(c), localeParam(c))
	if meta == nil {
		return action.Respond(c, action.NotFound[any]("Post not found."))
	}
	return action.Respond(c, action.OK(meta))
}

// HandleRelated returns posts sharing the first tag of the given post.
func (cc *ContentController) HandleRelated(c *fiber.Ctx) error {
	m, err := cc.module(c)
	if m == nil {
		return err
	}
	locale := localeParam(c)
	post, err := m.Remote().GetBySlug(c.UserContext(), slugParam(c), locale)
	if err != nil {
		if errors.Is(err, cms.ErrNotFound) {
			return action.Respond(c, action.OK([]cms.PublicPost{}))
		}
		log.Errorf("[Content] related failed: %v", err)
		return action.Respond(c, action.Internal[any]())
	}
	return action.Respond(c, m.GetRelated(c.UserContext(), post.ID, locale, queryInt(c, "limit", 10)))
}

// HandleStaticParams lists (locale, slug) pairs for static generation.
// ?locales=en,zh narrows the locales.
func (cc *ContentController) HandleStaticParams(c *fiber.Ctx) error {
	m, err := cc.module(c)
	if m == nil {
		return err
	}
	locales := i18n.Locales
	if raw := c.Query("locales"); raw != "" {
		locales = nil
		for _, l := range strings.Split(raw, ",") {
			if l = strings.TrimSpace(l); i18n.IsSupported(l) {
				locales = append(locales, l)
			}
		}
	}
	params, err := m.StaticParams(c.UserContext(), locales)
	if err != nil {
		log.Errorf("[Content] static params failed: %v", err)
		return action.Respond(c, action.Internal[any]())
	}
	return action.Respond(c, action.OK(params))
}

// HandleSidebar returns the docs navigation for a locale.
func (cc *ContentController) HandleSidebar(c *fiber.Ctx) error {
	m, err := cc.module(c)
	if m == nil {
		return err
	}
	sections, err := m.Sidebar(c.UserContext(), localeParam(c))
	if err != nil {
		log.Errorf("[Content] sidebar failed: %v", err)
		return action.Respond(c, action.Internal[any]())
	}
	return action.Respond(c, action.OK(sections))
}

// HandleRecordView counts a page view. It always answers 204.
func (cc *ContentController) HandleRecordView(c *fiber.Ctx) error {
	if cc.views != nil {
		cc.views.Record(c.UserContext(), c.Params("postType"), slugParam(c), localeParam(c), GetClientIP(c))
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleGetViews returns the view count of a post.
func (cc *ContentController) HandleGetViews(c *fiber.Ctx) error {
	postType := c.Params("postType")
	var n int64
	if cc.views != nil {
		n = cc.views.Get(c.UserContext(), postType, slugParam(c), localeParam(c))
	}
	return action.Respond(c, action.OK(fiber.Map{
		"count":     n,
		"formatted": counter.FormatCount(n),
		"showInUI":  cc.views != nil && cc.views.ShowInUI(postType),
	}))
}
