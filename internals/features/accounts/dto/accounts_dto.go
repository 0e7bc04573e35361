package dto

import (
	"time"

	"arcevents_backend/internals/features/accounts/model"

	"github.com/google/uuid"
)

/* ===================== REQUESTS ===================== */

type LoginRequest struct {
	Username string `json:"username" validate:"required,max=255"`
	Password string `json:"password" validate:"required,max=72"`
}

type AdminCreateRequest struct {
	Username string `json:"username" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type ControllerSignupRequest struct {
	Username         string `json:"username"           validate:"required,min=3,max=64"`
	Password         string `json:"password"           validate:"required,min=8,max=72"`
	RequestedEventID string `json:"requested_event_id" validate:"omitempty,uuid"`
}

// ApproveControllerRequest: events are ids or slugs. Mode MERGE (default) or REPLACE;
// Replace is the legacy boolean form.
type ApproveControllerRequest struct {
	Events  []string `json:"events"  validate:"max=200,dive,required,max=160"`
	Mode    string   `json:"mode"    validate:"omitempty,oneof=MERGE REPLACE merge replace"`
	Replace *bool    `json:"replace"`
}

/* ===================== RESPONSES ===================== */

type AdminResponse struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
}

func FromAdmin(a *model.AdminModel) AdminResponse {
	return AdminResponse{ID: a.AdminID, Username: a.AdminUsername}
}

type ControllerResponse struct {
	ID              uuid.UUID  `json:"id"`
	Username        string     `json:"username"`
	IsActive        bool       `json:"is_active"`
	ApprovedEvents  []string   `json:"approved_events"`
	RequestedEvents []string   `json:"requested_events"`
	ApprovedByAdmin *uuid.UUID `json:"approved_by_admin,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

func FromController(c *model.ControllerModel) ControllerResponse {
	approved := []string(c.ControllerApprovedEvents)
	if approved == nil {
		approved = []string{}
	}
	requested := []string(c.ControllerRequestedEvents)
	if requested == nil {
		requested = []string{}
	}
	return ControllerResponse{
		ID:              c.ControllerID,
		Username:        c.ControllerUsername,
		IsActive:        c.ControllerIsActive,
		ApprovedEvents:  approved,
		RequestedEvents: requested,
		ApprovedByAdmin: c.ControllerApprovedByAdmin,
		CreatedAt:       c.ControllerCreatedAt,
	}
}

func FromControllers(list []model.ControllerModel) []ControllerResponse {
	out := make([]ControllerResponse, 0, len(list))
	for i := range list {
		out = append(out, FromController(&list[i]))
	}
	return out
}

// ResolveMode folds the legacy replace flag into the explicit mode.
func (r ApproveControllerRequest) ResolveMode() (model.ApprovalMode, bool) {
	if r.Mode == "" && r.Replace != nil && *r.Replace {
		return model.ApprovalReplace, true
	}
	return model.ParseApprovalMode(r.Mode)
}

type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Role      string    `json:"role"`
	Username  string    `json:"username,omitempty"`
	Admin     any       `json:"admin,omitempty"`
}
