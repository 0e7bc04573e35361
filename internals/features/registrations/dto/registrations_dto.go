package dto

import (
	"time"

	"arcevents_backend/internals/features/registrations/model"

	"github.com/google/uuid"
)

/* ===================== REQUESTS ===================== */

// RegisterRequest comes from a multipart form; family_members arrives as a JSON string field.
type RegisterRequest struct {
	Name          string               `json:"name"           form:"name"    validate:"required,min=2,max=200"`
	Batch         string               `json:"batch"          form:"batch"   validate:"required,max=60"`
	Contact       string               `json:"contact"        form:"contact" validate:"required,min=5,max=60"`
	FamilyMembers []model.FamilyMember `json:"family_members" form:"-"       validate:"omitempty,max=20,dive"`
	// Amount is display-only on the client and never stored.
	Amount *int64 `json:"amount" form:"amount"`
}

type SetStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=PENDING APPROVED REJECTED"`
}

/* ===================== RESPONSES ===================== */

type MyRegistration struct {
	model.RegistrationModel
	EventName      string `json:"event_name"`
	EventSlug      string `json:"event_slug"`
	EventIsDeleted bool   `json:"event_is_deleted"`
}

type Counts struct {
	Total    int64 `json:"total"`
	Approved int64 `json:"approved"`
	Pending  int64 `json:"pending"`
	Rejected int64 `json:"rejected"`
}

type AdminStats struct {
	EventID uuid.UUID `json:"event_id"`
	Counts
	Controllers int64 `json:"controllers"`
}

type DashboardEvent struct {
	EventID   uuid.UUID  `json:"event_id"`
	Name      string     `json:"name"`
	Slug      string     `json:"slug"`
	Status    string     `json:"status"`
	Date      *time.Time `json:"date,omitempty"`
	IsDeleted bool       `json:"is_deleted"`
	Counts    Counts     `json:"counts"`
}
