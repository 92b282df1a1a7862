package controllers

import (
	"bytes"
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/clawsite/clawsite/app/repository"
	"github.com/clawsite/clawsite/internal/pkg/action"
	"github.com/clawsite/clawsite/internal/pkg/cms"
	"github.com/clawsite/clawsite/internal/pkg/imageprocessor"
	"github.com/clawsite/clawsite/internal/pkg/upload"
	"github.com/clawsite/clawsite/internal/pkg/usercontext"
)

// ============================================================================
// ADMIN POST CONTROLLER
// ============================================================================

// AdminPostController handles the dashboard post, tag and image endpoints
type AdminPostController struct {
	posts *cms.PostAdmin
	tags  *cms.TagService
	store cms.ObjectUploader
}

// NewAdminPostController creates the controller. store may be nil when
// object storage is not configured; image uploads then fail with 500.
func NewAdminPostController(posts *cms.PostAdmin, tags *cms.TagService, store cms.ObjectUploader) *AdminPostController {
	return &AdminPostController{posts: posts, tags: tags, store: store}
}

// HandleList pages through posts of every status
func (apc *AdminPostController) HandleList(c *fiber.Ctx) error {
	filter := repository.AdminPostFilter{
		PostType: c.Query("postType"),
		Locale:   c.Query("locale"),
		Status:   c.Query("status"),
		Query:    c.Query("q"),
	}
	r := apc.posts.List(c.UserContext(), filter, queryInt(c, "page", 0), queryInt(c, "pageSize", cms.DefaultPageSize))
	return action.Respond(c, r)
}

func (apc *AdminPostController) HandleGet(c *fiber.Ctx) error {
	return action.Respond(c, apc.posts.Get(c.UserContext(), c.Params("id")))
}

// HandleCreate stores a new post authored by the current admin
func (apc *AdminPostController) HandleCreate(c *fiber.Ctx) error {
	var in cms.PostInput
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	in.ID = ""
	return action.Respond(c, apc.posts.Create(c.UserContext(), in, usercontext.GetUserID(c)))
}

func (apc *AdminPostController) HandleUpdate(c *fiber.Ctx) error {
	var in cms.PostInput
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	in.ID = c.Params("id")
	return action.Respond(c, apc.posts.Update(c.UserContext(), in))
}

func (apc *AdminPostController) HandleDelete(c *fiber.Ctx) error {
	return action.Respond(c, apc.posts.Delete(c.UserContext(), c.Params("id")))
}

// HandleListTags lists the tags of ?postType=, optionally filtered by ?q=
func (apc *AdminPostController) HandleListTags(c *fiber.Ctx) error {
	return action.Respond(c, apc.tags.ListTags(c.UserContext(), c.Query("postType"), c.Query("q")))
}

func (apc *AdminPostController) HandleCreateTag(c *fiber.Ctx) error {
	var body struct {
		PostType string `json:"postType"`
		Name     string `json:"name"`
	}
	if err := c.BodyParser(&body); err != nil {
		return badBody(c)
	}
	return action.Respond(c, apc.tags.CreateTag(c.UserContext(), body.PostType, body.Name))
}

func (apc *AdminPostController) HandleUpdateTag(c *fiber.Ctx) error {
	var body struct {
		Name string `json:"name"`
	}
	if err := c.BodyParser(&body); err != nil {
		return badBody(c)
	}
	return action.Respond(c, apc.tags.UpdateTag(c.UserContext(), c.Params("id"), body.Name))
}

func (apc *AdminPostController) HandleDeleteTag(c *fiber.Ctx) error {
	return action.Respond(c, apc.tags.DeleteTag(c.UserContext(), c.Params("id")))
}

// HandleUploadImage takes a multipart "file" and returns the public WebP URL
func (apc *AdminPostController) HandleUploadImage(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return action.Respond(c, action.BadRequest[any]("No file uploaded."))
	}
	if fh.Size > imageprocessor.MaxUploadBytes {
		return action.Respond(c, action.BadRequest[any]("The image is larger than 10 MB."))
	}
	f, err := fh.Open()
	if err != nil {
		log.Errorf("[AdminPost] open upload failed: %v", err)
		return action.Respond(c, action.Error[any]("Could not read the uploaded file."))
	}
	defer f.Close()

	head := make([]byte, upload.SniffLen)
	n, _ := io.ReadFull(f, head)
	if _, err := upload.ValidateImage(fh.Filename, head[:n]); err != nil {
		return action.Respond(c, action.BadRequest[any](err.Error()))
	}

	postType := c.FormValue("postType", c.Query("postType"))
	body := io.MultiReader(bytes.NewReader(head[:n]), f)
	r := cms.UploadFeaturedImage(c.UserContext(), apc.store, postType, fh.Filename, body)
	if !r.OK() {
		return action.Respond(c, r)
	}
	return action.Respond(c, action.OK(fiber.Map{"url": r.Data}))
}
