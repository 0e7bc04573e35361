package controller

import (
	"arcevents_backend/internals/features/gallery/service"
	helper "arcevents_backend/internals/helpers"
	helperOSS "arcevents_backend/internals/helpers/oss"

	"github.com/gofiber/fiber/v2"
)

type GalleryController struct {
	Svc    *service.GalleryService
	Limits helperOSS.UploadLimits
}

func NewGalleryController(svc *service.GalleryService, limits helperOSS.UploadLimits) *GalleryController {
	return &GalleryController{Svc: svc, Limits: limits}
}

/* ===================== PUBLIC ===================== */

// GET /api/events/:slug/memories
func (ctrl *GalleryController) Memories(c *fiber.Ctx) error {
	list, err := ctrl.Svc.ListMemoriesBySlug(c.UserContext(), c.Params("slug"))
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonList(c, "event memories", list, len(list))
}

// GET /api/public/home-images?category=
func (ctrl *GalleryController) HomeImages(c *fiber.Ctx) error {
	list, err := ctrl.Svc.ListGlobalImages(c.UserContext(), c.Query("category"))
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonList(c, "home images", list, len(list))
}

/* ===================== ADMIN: EVENT PHOTOS ===================== */

// GET /api/admin/events/:id/photos
func (ctrl *GalleryController) ListEventPhotos(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	list, err := ctrl.Svc.ListEventGallery(c.UserContext(), id)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonList(c, "event photos", list, len(list))
}

// POST /api/admin/events/:id/photos (multipart "image")
func (ctrl *GalleryController) AddEventPhoto(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	up, err := ctrl.Limits.ReadRequired(c, "image", "photo", "file")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	img, err := ctrl.Svc.AppendEventImage(c.UserContext(), id, up)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonCreated(c, "photo added", img)
}

// DELETE /api/admin/events/:id/photos/:photoId
// A photo id from another event's gallery is answered with removed=false, never an error.
func (ctrl *GalleryController) RemoveEventPhoto(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	photoID, err := helper.ParseUUIDParam(c, "photoId")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	removed, err := ctrl.Svc.RemoveEventImage(c.UserContext(), id, photoID)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonDeleted(c, "photo removed", fiber.Map{"photo_id": photoID, "removed": removed})
}

/* ===================== ADMIN: HOME IMAGES ===================== */

// GET /api/admin/images?category=
func (ctrl *GalleryController) AdminListImages(c *fiber.Ctx) error {
	return ctrl.HomeImages(c)
}

// POST /api/admin/images/upload (multipart "image" + "category")
func (ctrl *GalleryController) UploadImage(c *fiber.Ctx) error {
	up, err := ctrl.Limits.ReadRequired(c, "image", "file")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	img, err := ctrl.Svc.UploadGlobalImage(c.UserContext(), c.FormValue("category"), up)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonCreated(c, "image uploaded", img)
}

// DELETE /api/admin/images/:id
func (ctrl *GalleryController) DeleteImage(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	if err := ctrl.Svc.DeleteGlobalImage(c.UserContext(), id); err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonDeleted(c, "image deleted", fiber.Map{"image_id": id})
}
