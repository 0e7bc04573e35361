package dto

import (
	"time"

	"arcevents_backend/internals/features/events/model"

	"github.com/google/uuid"
)

type FlowStepInput struct {
	Time        string `json:"time"        validate:"max=60"`
	Title       string `json:"title"       validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
}

func ToFlow(in []FlowStepInput) []model.FlowStep {
	out := make([]model.FlowStep, 0, len(in))
	for _, s := range in {
		out = append(out, model.FlowStep{Time: s.Time, Title: s.Title, Description: s.Description})
	}
	return out
}

/* ===================== REQUESTS ===================== */

type CreateEventRequest struct {
	Name                string          `json:"name"                   validate:"required,min=2,max=200"`
	Slug                string          `json:"slug"                   validate:"omitempty,max=160"`
	Description         string          `json:"description"            validate:"max=10000"`
	Date                *time.Time      `json:"date"`
	Flow                []FlowStepInput `json:"flow"                   validate:"omitempty,dive"`
	Status              string          `json:"status"                 validate:"omitempty,oneof=DRAFT LIVE PAUSED CLOSED"`
	IsHidden            bool            `json:"is_hidden"`
	IsPaid              bool            `json:"is_paid"`
	BasePrice           int64           `json:"base_price"             validate:"min=0"`
	AddonPricePerMember int64           `json:"addon_price_per_member" validate:"min=0"`
	FamilyAllowed       bool            `json:"family_allowed"`
}

// UpdateEventRequest: nil fields are left unchanged.
type UpdateEventRequest struct {
	Name                *string          `json:"name"                   validate:"omitempty,min=2,max=200"`
	Slug                *string          `json:"slug"                   validate:"omitempty,min=1,max=160"`
	Description         *string          `json:"description"            validate:"omitempty,max=10000"`
	Date                *time.Time       `json:"date"`
	ClearDate           bool             `json:"clear_date"`
	Flow                *[]FlowStepInput `json:"flow"                   validate:"omitempty,dive"`
	Status              *string          `json:"status"                 validate:"omitempty,oneof=DRAFT LIVE PAUSED CLOSED"`
	IsHidden            *bool            `json:"is_hidden"`
	IsPaid              *bool            `json:"is_paid"`
	BasePrice           *int64           `json:"base_price"             validate:"omitempty,min=0"`
	AddonPricePerMember *int64           `json:"addon_price_per_member" validate:"omitempty,min=0"`
	FamilyAllowed       *bool            `json:"family_allowed"`
}

/* ===================== RESPONSES ===================== */

// PublicEventSummary is the listing projection.
type PublicEventSummary struct {
	Name        string            `json:"name"`
	Slug        string            `json:"slug"`
	PosterURL   string            `json:"poster_url"`
	Status      model.EventStatus `json:"status"`
	Paid        bool              `json:"paid"`
	Description string            `json:"description"`
}

func ToPublicSummary(e *model.EventModel) PublicEventSummary {
	return PublicEventSummary{
		Name:        e.EventName,
		Slug:        e.EventSlug,
		PosterURL:   e.EventPosterURL,
		Status:      e.EventStatus,
		Paid:        e.EventIsPaid,
		Description: e.EventDescription,
	}
}

func ToPublicSummaries(list []model.EventModel) []PublicEventSummary {
	out := make([]PublicEventSummary, 0, len(list))
	for i := range list {
		out = append(out, ToPublicSummary(&list[i]))
	}
	return out
}

// PublicEventDetail adds what a registrant needs to pay. Never the gallery.
type PublicEventDetail struct {
	ID uuid.UUID `json:"id"`
	PublicEventSummary
	Date                *time.Time `json:"date,omitempty"`
	BasePrice           int64      `json:"base_price"`
	AddonPricePerMember int64      `json:"addon_price_per_member"`
	FamilyAllowed       bool       `json:"family_allowed"`
	PaymentQRURL        string     `json:"payment_qr_url,omitempty"`
}

func ToPublicDetail(e *model.EventModel) PublicEventDetail {
	return PublicEventDetail{
		ID:                  e.EventID,
		PublicEventSummary:  ToPublicSummary(e),
		Date:                e.EventDate,
		BasePrice:           e.EventBasePrice,
		AddonPricePerMember: e.EventAddonPricePerMember,
		FamilyAllowed:       e.EventFamilyAllowed,
		PaymentQRURL:        e.EventPaymentQRURL,
	}
}

type PurgeResponse struct {
	EventID               uuid.UUID `json:"event_id"`
	OrphanedRegistrations int64     `json:"orphaned_registrations"`
	RemovedImages         int       `json:"removed_images"`
}
