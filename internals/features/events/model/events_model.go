package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type EventStatus string

const (
	EventStatusDraft  EventStatus = "DRAFT"
	EventStatusLive   EventStatus = "LIVE"
	EventStatusPaused EventStatus = "PAUSED"
	EventStatusClosed EventStatus = "CLOSED"
)

func (s EventStatus) Valid() bool {
	switch s {
	case EventStatusDraft, EventStatusLive, EventStatusPaused, EventStatusClosed:
		return true
	}
	return false
}

func ParseEventStatus(s string) (EventStatus, bool) {
	st := EventStatus(strings.ToUpper(strings.TrimSpace(s)))
	return st, st.Valid()
}

// FlowStep is one entry of the event timeline.
type FlowStep struct {
	Time        string `json:"time"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

type EventModel struct {
	EventID          uuid.UUID                     `gorm:"column:event_id;type:uuid;default:gen_random_uuid();primaryKey" json:"event_id"`
	EventName        string                        `gorm:"column:event_name;type:varchar(200);not null"                  json:"event_name"`
	EventSlug        string                        `gorm:"column:event_slug;type:varchar(160);not null"                  json:"event_slug"`
	EventDescription string                        `gorm:"column:event_description;type:text"                             json:"event_description"`
	EventDate        *time.Time                    `gorm:"column:event_date;type:timestamptz"                             json:"event_date,omitempty"`
	EventFlow        datatypes.JSONSlice[FlowStep] `gorm:"column:event_flow;type:jsonb"                                   json:"event_flow"`
	EventStatus      EventStatus                   `gorm:"column:event_status;type:varchar(16);not null;default:'DRAFT'" json:"event_status"`
	EventIsHidden    bool                          `gorm:"column:event_is_hidden;not null;default:false"                 json:"event_is_hidden"`

	// Archive sets both; purge removes the row
	EventIsDeleted bool       `gorm:"column:event_is_deleted;not null;default:false" json:"event_is_deleted"`
	EventDeletedAt *time.Time `gorm:"column:event_deleted_at;type:timestamptz"       json:"event_deleted_at,omitempty"`

	// Pricing in whole currency units
	EventIsPaid              bool  `gorm:"column:event_is_paid;not null;default:false"             json:"event_is_paid"`
	EventBasePrice           int64 `gorm:"column:event_base_price;not null;default:0"              json:"event_base_price"`
	EventAddonPricePerMember int64 `gorm:"column:event_addon_price_per_member;not null;default:0" json:"event_addon_price_per_member"`
	EventFamilyAllowed       bool  `gorm:"column:event_family_allowed;not null;default:false"      json:"event_family_allowed"`

	EventPosterURL    string `gorm:"column:event_poster_url;type:text"     json:"event_poster_url"`
	EventPosterKey    string `gorm:"column:event_poster_key;type:text"     json:"-"`
	EventPaymentQRURL string `gorm:"column:event_payment_qr_url;type:text" json:"event_payment_qr_url"`
	EventPaymentQRKey string `gorm:"column:event_payment_qr_key;type:text" json:"-"`

	EventCreatedBy *uuid.UUID `gorm:"column:event_created_by;type:uuid"                         json:"event_created_by,omitempty"`
	EventCreatedAt time.Time  `gorm:"column:event_created_at;type:timestamptz;autoCreateTime" json:"event_created_at"`
	EventUpdatedAt time.Time  `gorm:"column:event_updated_at;type:timestamptz;autoUpdateTime" json:"event_updated_at"`

	// NOTE: slug uniqueness among live rows is a partial index created in databases.Migrate:
	//   CREATE UNIQUE INDEX ux_events_slug_active ON events (LOWER(event_slug)) WHERE event_is_deleted = false;
}

func (EventModel) TableName() string {
	return "events"
}

// IsPubliclyVisible: LIVE, not hidden, not archived.
func (e *EventModel) IsPubliclyVisible() bool {
	return e != nil && e.EventStatus == EventStatusLive && !e.EventIsHidden && !e.EventIsDeleted
}

// ComputeAmount is what a registration with familyCount extra members owes.
func (e *EventModel) ComputeAmount(familyCount int) int64 {
	if e == nil || !e.EventIsPaid {
		return 0
	}
	if familyCount < 0 {
		familyCount = 0
	}
	return e.EventBasePrice + e.EventAddonPricePerMember*int64(familyCount)
}

// BlobKeys lists every stored object the event row references.
func (e *EventModel) BlobKeys() []string {
	var keys []string
	for _, k := range []string{e.EventPosterKey, e.EventPaymentQRKey} {
		if strings.TrimSpace(k) != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

// PurgeResult is what a hard delete removed, so blobs can be released after commit.
type PurgeResult struct {
	Event                 EventModel
	ImageKeys             []string
	OrphanedRegistrations int64
}
