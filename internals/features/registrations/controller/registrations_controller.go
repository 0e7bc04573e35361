package controller

import (
	"strconv"
	"strings"

	"arcevents_backend/internals/features/auth/session"
	"arcevents_backend/internals/features/registrations/dto"
	"arcevents_backend/internals/features/registrations/model"
	"arcevents_backend/internals/features/registrations/service"
	helper "arcevents_backend/internals/helpers"
	"arcevents_backend/internals/helpers/apperror"
	helperOSS "arcevents_backend/internals/helpers/oss"
	authMw "arcevents_backend/internals/middlewares/auth"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
)

type RegistrationController struct {
	Svc    *service.RegistrationService
	Limits helperOSS.UploadLimits
}

func NewRegistrationController(svc *service.RegistrationService, limits helperOSS.UploadLimits) *RegistrationController {
	return &RegistrationController{Svc: svc, Limits: limits}
}

// parseRegisterRequest accepts multipart (family_members as a JSON string) or a JSON body.
func parseRegisterRequest(c *fiber.Ctx) (dto.RegisterRequest, error) {
	var req dto.RegisterRequest
	if !helperOSS.IsMultipart(c) {
		if err := c.BodyParser(&req); err != nil {
			return req, apperror.Validation("invalid request body", nil).WithErr(err)
		}
		return req, nil
	}

	req.Name = c.FormValue("name")
	req.Batch = c.FormValue("batch")
	req.Contact = c.FormValue("contact")
	if raw := strings.TrimSpace(c.FormValue("family_members")); raw != "" {
		if err := sonic.UnmarshalString(raw, &req.FamilyMembers); err != nil {
			return req, apperror.ValidationField("family_members", "family_members must be a JSON array of {name, relation}")
		}
	}
	if raw := strings.TrimSpace(c.FormValue("amount")); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return req, apperror.ValidationField("amount", "amount must be a whole number")
		}
		req.Amount = &n
	}
	return req, nil
}

/* ===================== USER ===================== */

// POST /api/events/:slug/register (multipart, optional "receipt" file)
func (ctrl *RegistrationController) Register(c *fiber.Ctx) error {
	user, err := authMw.UserFrom(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	req, err := parseRegisterRequest(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	receipt, err := ctrl.Limits.ReadOptional(c, "receipt", "image", "file")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	reg, err := ctrl.Svc.Register(c.UserContext(), user, c.Params("slug"), req, receipt)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonCreated(c, "registration submitted", reg)
}

// GET /api/events/:slug/me
func (ctrl *RegistrationController) Mine(c *fiber.Ctx) error {
	user, err := authMw.UserFrom(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	reg, err := ctrl.Svc.GetMine(c.UserContext(), user, c.Params("slug"))
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonOK(c, "your registration", reg)
}

// GET /api/events/registrations/mine
func (ctrl *RegistrationController) ListMine(c *fiber.Ctx) error {
	user, err := authMw.UserFrom(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	list, err := ctrl.Svc.ListMine(c.UserContext(), user)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonList(c, "your registrations", list, len(list))
}

/* ===================== ADMIN ===================== */

// GET /api/admin/events/:id/registrations
func (ctrl *RegistrationController) AdminList(c *fiber.Ctx) error {
	return ctrl.listForEvent(c, "id")
}

// GET /api/admin/events/:id/stats
func (ctrl *RegistrationController) AdminStats(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	stats, err := ctrl.Svc.AdminStats(c.UserContext(), id)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonOK(c, "event stats", stats)
}

// PUT /api/admin/events/:id/registrations/:regId/status
func (ctrl *RegistrationController) SetStatus(c *fiber.Ctx) error {
	admin, err := authMw.AdminFrom(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	eventID, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	regID, err := helper.ParseUUIDParam(c, "regId")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	var req dto.SetStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	req.Status = strings.ToUpper(strings.TrimSpace(req.Status))
	if err := helper.ValidateStruct(req); err != nil {
		return helper.JsonFromError(c, err)
	}
	target, _ := model.ParseStatus(req.Status)

	reg, err := ctrl.Svc.SetStatus(c.UserContext(), admin, eventID, regID, target)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonUpdated(c, "registration status updated", reg)
}

// DELETE /api/admin/registrations/:regId/receipt
func (ctrl *RegistrationController) ReleaseReceipt(c *fiber.Ctx) error {
	regID, err := helper.ParseUUIDParam(c, "regId")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	reg, err := ctrl.Svc.ReleaseReceipt(c.UserContext(), regID)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonUpdated(c, "receipt released", reg)
}

/* ===================== CONTROLLER ===================== */

// GET /api/controller/dashboard/events
func (ctrl *RegistrationController) DashboardEvents(c *fiber.Ctx) error {
	cs, err := authMw.ControllerFrom(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	list, err := ctrl.Svc.ControllerDashboard(c.UserContext(), cs)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonList(c, "approved events", list, len(list))
}

// GET /api/controller/dashboard/registrations/:eventId
func (ctrl *RegistrationController) DashboardRegistrations(c *fiber.Ctx) error {
	return ctrl.listForEvent(c, "eventId")
}

func (ctrl *RegistrationController) listForEvent(c *fiber.Ctx, param string) error {
	s, ok := authMw.SessionFrom(c)
	if !ok {
		return helper.JsonFromError(c, apperror.ErrUnauthenticated)
	}
	id, err := helper.ParseUUIDParam(c, param)
	if err != nil {
		// a controller only ever holds uuids in scope, so a malformed id is out of scope
		if _, isController := s.(session.ControllerSession); isController {
			return helper.JsonFromError(c, apperror.Forbidden(service.MsgOutOfScope))
		}
		return helper.JsonFromError(c, err)
	}
	list, err := ctrl.Svc.ListForEvent(c.UserContext(), s, id)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonList(c, "registrations", list, len(list))
}
