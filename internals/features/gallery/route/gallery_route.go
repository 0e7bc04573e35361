package route

import (
	"arcevents_backend/internals/features/gallery/controller"

	"github.com/gofiber/fiber/v2"
)

func GalleryPublicRoutes(events, public fiber.Router, ctrl *controller.GalleryController) {
	events.Get("/:slug/memories", ctrl.Memories)
	public.Get("/home-images", ctrl.HomeImages)
}

func GalleryAdminRoutes(admin fiber.Router, ctrl *controller.GalleryController) {
	photos := admin.Group("/events/:id/photos")
	photos.Get("/", ctrl.ListEventPhotos)
	photos.Post("/", ctrl.AddEventPhoto)
	photos.Delete("/:photoId", ctrl.RemoveEventPhoto)

	images := admin.Group("/images")
	images.Get("/", ctrl.AdminListImages)
	images.Post("/upload", ctrl.UploadImage)
	images.Delete("/:id", ctrl.DeleteImage)
}
