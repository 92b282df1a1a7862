package controllers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/clawsite/clawsite/internal/pkg/action"
	"github.com/clawsite/clawsite/internal/pkg/storage"
)

// ============================================================================
// ADMIN STORAGE CONTROLLER - R2 bucket browser
// ============================================================================

// ObjectStore is the part of the R2 client the storage browser needs
type ObjectStore interface {
	List(ctx context.Context, in storage.ListInput) (*storage.ListResult, error)
	Delete(ctx context.Context, key string) error
}

// AdminStorageController lists and deletes objects of the bucket
type AdminStorageController struct {
	store ObjectStore
}

// NewAdminStorageController creates the controller. A nil store answers
// every request with 500.
func NewAdminStorageController(store ObjectStore) *AdminStorageController {
	return &AdminStorageController{store: store}
}

func (asc *AdminStorageController) unavailable(c *fiber.Ctx) error {
	return action.Respond(c, action.Error[any]("Object storage is not configured."))
}

// HandleList returns one page of objects. Query: categoryPrefix,
// filterPrefix, continuationToken, pageSize (1-100).
func (asc *AdminStorageController) HandleList(c *fiber.Ctx) error {
	if asc.store == nil {
		return asc.unavailable(c)
	}
	var in storage.ListInput
	if err := c.QueryParser(&in); err != nil {
		return action.Respond(c, action.BadRequest[any]("Invalid query parameters."))
	}

	res, err := asc.store.List(c.UserContext(), in)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidPageSize) {
			return action.Respond(c, action.BadRequest[any](err.Error()))
		}
		log.Errorf("[AdminStorage] list failed: %v", err)
		return action.Respond(c, action.Error[any]("Failed to list files."))
	}
	return action.Respond(c, action.OK(res))
}

// HandleDelete removes the object named by ?key= or the JSON body
func (asc *AdminStorageController) HandleDelete(c *fiber.Ctx) error {
	if asc.store == nil {
		return asc.unavailable(c)
	}
	key := c.Query("key")
	if key == "" {
		var body struct {
			Key string `json:"key"`
		}
		_ = c.BodyParser(&body)
		key = body.Key
	}
	if key == "" {
		return action.Respond(c, action.BadRequest[any]("File key is required."))
	}

	if err := asc.store.Delete(c.UserContext(), key); err != nil {
		log.Errorf("[AdminStorage] delete %q failed: %v", key, err)
		return action.Respond(c, action.Error[any]("Failed to delete file."))
	}
	log.Infof("[AdminStorage] deleted %s", key)
	return action.Respond(c, action.OK(fiber.Map{"key": key}))
}
