package controller

import (
	"context"
	"strings"

	"arcevents_backend/internals/features/accounts/dto"
	"arcevents_backend/internals/features/accounts/model"
	eventModel "arcevents_backend/internals/features/events/model"
	helper "arcevents_backend/internals/helpers"
	"arcevents_backend/internals/helpers/apperror"
	authMw "arcevents_backend/internals/middlewares/auth"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ControllerManager interface {
	ApproveController(ctx context.Context, adminID, controllerID uuid.UUID, events []uuid.UUID, mode model.ApprovalMode) (*model.ControllerModel, error)
	RevokeController(ctx context.Context, adminID, controllerID uuid.UUID) (*model.ControllerModel, error)
	ListActiveControllers(ctx context.Context) ([]model.ControllerModel, error)
	ListPendingControllers(ctx context.Context) ([]model.ControllerModel, error)
}

type EventSlugResolver interface {
	FindActiveBySlug(ctx context.Context, slug string) (*eventModel.EventModel, error)
}

type ControllersAdminController struct {
	Accounts ControllerManager
	Events   EventSlugResolver
}

func NewControllersAdminController(accounts ControllerManager, events EventSlugResolver) *ControllersAdminController {
	return &ControllersAdminController{Accounts: accounts, Events: events}
}

// GET /api/admin/controllers
func (ctrl *ControllersAdminController) ListActive(c *fiber.Ctx) error {
	list, err := ctrl.Accounts.ListActiveControllers(c.UserContext())
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonList(c, "active controllers", dto.FromControllers(list), len(list))
}

// GET /api/admin/controllers/pending
func (ctrl *ControllersAdminController) ListPending(c *fiber.Ctx) error {
	list, err := ctrl.Accounts.ListPendingControllers(c.UserContext())
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonList(c, "pending controllers", dto.FromControllers(list), len(list))
}

// POST /api/admin/controllers/:id/approve
func (ctrl *ControllersAdminController) Approve(c *fiber.Ctx) error {
	admin, err := authMw.AdminFrom(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	var req dto.ApproveControllerRequest
	if err := helper.ParseBody(c, &req); err != nil {
		return helper.JsonFromError(c, err)
	}
	mode, ok := req.ResolveMode()
	if !ok {
		return helper.JsonFromError(c, apperror.ValidationField("mode", "mode must be MERGE or REPLACE"))
	}
	events, err := ctrl.resolveEvents(c.UserContext(), req.Events)
	if err != nil {
		return helper.JsonFromError(c, err)
	}

	updated, err := ctrl.Accounts.ApproveController(c.UserContext(), admin.AdminID, id, events, mode)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonUpdated(c, "controller approved", dto.FromController(updated))
}

// POST /api/admin/controllers/:id/revoke
func (ctrl *ControllersAdminController) Revoke(c *fiber.Ctx) error {
	admin, err := authMw.AdminFrom(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	updated, err := ctrl.Accounts.RevokeController(c.UserContext(), admin.AdminID, id)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonUpdated(c, "controller revoked", dto.FromController(updated))
}

// resolveEvents accepts ids as-is and looks slugs up among non-archived events.
func (ctrl *ControllersAdminController) resolveEvents(ctx context.Context, raw []string) ([]uuid.UUID, error) {
	out := make([]uuid.UUID, 0, len(raw))
	for _, v := range raw {
		v = strings.TrimSpace(v)
		if id, err := uuid.Parse(v); err == nil {
			out = append(out, id)
			continue
		}
		ev, err := ctrl.Events.FindActiveBySlug(ctx, v)
		if err != nil {
			if apperror.KindOf(err) == apperror.KindNotFound {
				return nil, apperror.ValidationField("events", "unknown event "+v)
			}
			return nil, err
		}
		out = append(out, ev.EventID)
	}
	return out, nil
}
