package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

func ParseStatus(s string) (Status, bool) {
	st := Status(strings.ToUpper(strings.TrimSpace(s)))
	switch st {
	case StatusPending, StatusApproved, StatusRejected:
		return st, true
	}
	return st, false
}

type FamilyMember struct {
	Name     string `json:"name"     validate:"required,max=120"`
	Relation string `json:"relation" validate:"required,max=60"`
}

type RegistrationModel struct {
	RegistrationID uuid.UUID `gorm:"column:registration_id;type:uuid;default:gen_random_uuid();primaryKey" json:"registration_id"`

	// NULL only after the event was purged; slug/name snapshots survive.
	// registration_orphaned_at is stamped by both archive and purge.
	RegistrationEventID   *uuid.UUID `gorm:"column:registration_event_id;type:uuid;uniqueIndex:ux_registrations_event_subject,priority:1" json:"registration_event_id"`
	RegistrationEventSlug string     `gorm:"column:registration_event_slug;type:varchar(160);not null"                                     json:"registration_event_slug"`
	RegistrationEventName string     `gorm:"column:registration_event_name;type:varchar(200);not null"                                     json:"registration_event_name"`

	RegistrationSubjectID    string `gorm:"column:registration_subject_id;type:varchar(255);not null;uniqueIndex:ux_registrations_event_subject,priority:2" json:"registration_subject_id"`
	RegistrationSubjectEmail string `gorm:"column:registration_subject_email;type:varchar(255);index:idx_registrations_subject_email"                       json:"registration_subject_email"`

	RegistrationName          string                            `gorm:"column:registration_name;type:varchar(200);not null"    json:"registration_name"`
	RegistrationBatch         string                            `gorm:"column:registration_batch;type:varchar(60);not null"    json:"registration_batch"`
	RegistrationContact       string                            `gorm:"column:registration_contact;type:varchar(60);not null"  json:"registration_contact"`
	RegistrationFamilyMembers datatypes.JSONSlice[FamilyMember] `gorm:"column:registration_family_members;type:jsonb"          json:"registration_family_members"`
	RegistrationAmount        int64                             `gorm:"column:registration_amount;not null;default:0"          json:"registration_amount"`
	RegistrationReceiptURL    string                            `gorm:"column:registration_receipt_url;type:text"              json:"registration_receipt_url,omitempty"`
	RegistrationReceiptKey    string                            `gorm:"column:registration_receipt_key;type:text"              json:"-"`

	RegistrationStatus     Status     `gorm:"column:registration_status;type:varchar(16);not null;default:'PENDING'" json:"registration_status"`
	RegistrationApprovedBy *uuid.UUID `gorm:"column:registration_approved_by;type:uuid"                                json:"registration_approved_by,omitempty"`
	RegistrationApprovedAt *time.Time `gorm:"column:registration_approved_at;type:timestamptz"                         json:"registration_approved_at,omitempty"`
	RegistrationOrphanedAt *time.Time `gorm:"column:registration_orphaned_at;type:timestamptz"                         json:"registration_orphaned_at,omitempty"`

	RegistrationCreatedAt time.Time `gorm:"column:registration_created_at;type:timestamptz;autoCreateTime" json:"registration_created_at"`
	RegistrationUpdatedAt time.Time `gorm:"column:registration_updated_at;type:timestamptz;autoUpdateTime" json:"registration_updated_at"`
}

func (RegistrationModel) TableName() string {
	return "registrations"
}

func (r *RegistrationModel) IsOrphaned() bool {
	return r.RegistrationEventID == nil
}

// EventGone reports whether the event was archived or purged.
func (r *RegistrationModel) EventGone() bool {
	return r.RegistrationEventID == nil || r.RegistrationOrphanedAt != nil
}

// IdentityMatcher selects rows by subject id OR email. Empty fields never match.
type IdentityMatcher struct {
	SubjectID string
	Email     string
}

func (m IdentityMatcher) NormalizedEmail() string {
	return strings.ToLower(strings.TrimSpace(m.Email))
}

func (m IdentityMatcher) Matches(r *RegistrationModel) bool {
	if m.SubjectID != "" && r.RegistrationSubjectID == m.SubjectID {
		return true
	}
	email := m.NormalizedEmail()
	return email != "" && strings.ToLower(r.RegistrationSubjectEmail) == email
}

func (m IdentityMatcher) IsEmpty() bool {
	return m.SubjectID == "" && m.NormalizedEmail() == ""
}
