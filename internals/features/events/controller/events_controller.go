package controller

import (
	"arcevents_backend/internals/features/events/dto"
	"arcevents_backend/internals/features/events/service"
	helper "arcevents_backend/internals/helpers"
	helperOSS "arcevents_backend/internals/helpers/oss"
	authMw "arcevents_backend/internals/middlewares/auth"

	"github.com/gofiber/fiber/v2"
)

type EventController struct {
	Svc    *service.EventService
	Limits helperOSS.UploadLimits
}

func NewEventController(svc *service.EventService, limits helperOSS.UploadLimits) *EventController {
	return &EventController{Svc: svc, Limits: limits}
}

/* ===================== PUBLIC ===================== */

// GET /api/events/ongoing
func (ctrl *EventController) ListOngoing(c *fiber.Ctx) error {
	list, err := ctrl.Svc.ListPublicEvents(c.UserContext())
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonList(c, "ongoing events", dto.ToPublicSummaries(list), len(list))
}

// GET /api/events/:slug
func (ctrl *EventController) GetBySlug(c *fiber.Ctx) error {
	ev, err := ctrl.Svc.GetBySlug(c.UserContext(), c.Params("slug"))
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonOK(c, "event detail", dto.ToPublicDetail(ev))
}

// GET /api/events/:slug/flow
func (ctrl *EventController) GetFlow(c *fiber.Ctx) error {
	flow, err := ctrl.Svc.GetFlowBySlug(c.UserContext(), c.Params("slug"))
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonList(c, "event flow", flow, len(flow))
}

/* ===================== ADMIN ===================== */

// GET /api/admin/events
func (ctrl *EventController) AdminList(c *fiber.Ctx) error {
	list, err := ctrl.Svc.ListEventsForAdmin(c.UserContext())
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonList(c, "events", list, len(list))
}

// POST /api/admin/events
func (ctrl *EventController) Create(c *fiber.Ctx) error {
	admin, err := authMw.AdminFrom(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	var req dto.CreateEventRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	ev, err := ctrl.Svc.CreateEvent(c.UserContext(), admin.AdminID, req)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonCreated(c, "event created", ev)
}

// PATCH /api/admin/events/:id
func (ctrl *EventController) Update(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	var req dto.UpdateEventRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	ev, err := ctrl.Svc.UpdateEvent(c.UserContext(), id, req)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonUpdated(c, "event updated", ev)
}

// POST /api/admin/events/:id/archive
func (ctrl *EventController) Archive(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	if err := ctrl.Svc.Archive(c.UserContext(), id); err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonDeleted(c, "event archived", fiber.Map{"event_id": id})
}

// DELETE /api/admin/events/:id
func (ctrl *EventController) Purge(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	res, err := ctrl.Svc.Purge(c.UserContext(), id)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonDeleted(c, "event deleted", dto.PurgeResponse{
		EventID:               id,
		OrphanedRegistrations: res.OrphanedRegistrations,
		RemovedImages:         len(res.ImageKeys),
	})
}

// POST /api/admin/events/:id/poster (multipart "image")
func (ctrl *EventController) UploadPoster(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	up, err := ctrl.Limits.ReadRequired(c, "image", "poster", "file")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	ev, err := ctrl.Svc.AttachPoster(c.UserContext(), id, up)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonUpdated(c, "poster uploaded", fiber.Map{"event_id": ev.EventID, "poster_url": ev.EventPosterURL})
}

// POST /api/admin/events/:id/qr (multipart "image")
func (ctrl *EventController) UploadQR(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	up, err := ctrl.Limits.ReadRequired(c, "image", "qr", "file")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	ev, err := ctrl.Svc.AttachQR(c.UserContext(), id, up)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonUpdated(c, "payment qr uploaded", fiber.Map{"event_id": ev.EventID, "payment_qr_url": ev.EventPaymentQRURL})
}
