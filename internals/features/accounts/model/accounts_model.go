package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type AdminModel struct {
	AdminID           uuid.UUID `gorm:"column:admin_id;type:uuid;default:gen_random_uuid();primaryKey" json:"admin_id"`
	AdminUsername     string    `gorm:"column:admin_username;type:varchar(255);not null;uniqueIndex:ux_admins_username" json:"admin_username"`
	AdminPasswordHash string    `gorm:"column:admin_password_hash;type:text;not null" json:"-"`
	AdminCreatedAt    time.Time `gorm:"column:admin_created_at;type:timestamptz;autoCreateTime" json:"admin_created_at"`
	AdminUpdatedAt    time.Time `gorm:"column:admin_updated_at;type:timestamptz;autoUpdateTime" json:"admin_updated_at"`
}

func (AdminModel) TableName() string {
	return "admins"
}

type ControllerModel struct {
	ControllerID           uuid.UUID `gorm:"column:controller_id;type:uuid;default:gen_random_uuid();primaryKey" json:"controller_id"`
	ControllerUsername     string    `gorm:"column:controller_username;type:varchar(255);not null;uniqueIndex:ux_controllers_username" json:"controller_username"`
	ControllerPasswordHash string    `gorm:"column:controller_password_hash;type:text;not null" json:"-"`
	ControllerIsActive     bool      `gorm:"column:controller_is_active;not null;default:false" json:"controller_is_active"`

	// visibility scope, never ownership
	ControllerApprovedEvents  pq.StringArray `gorm:"column:controller_approved_events;type:uuid[];not null;default:'{}'"  json:"controller_approved_events"`
	ControllerRequestedEvents pq.StringArray `gorm:"column:controller_requested_events;type:uuid[];not null;default:'{}'" json:"controller_requested_events"`
	ControllerApprovedByAdmin *uuid.UUID     `gorm:"column:controller_approved_by_admin;type:uuid"                         json:"controller_approved_by_admin,omitempty"`

	ControllerCreatedAt time.Time `gorm:"column:controller_created_at;type:timestamptz;autoCreateTime" json:"controller_created_at"`
	ControllerUpdatedAt time.Time `gorm:"column:controller_updated_at;type:timestamptz;autoUpdateTime" json:"controller_updated_at"`
}

func (ControllerModel) TableName() string {
	return "controllers"
}

// ApprovedEventIDs parses the stored ids, skipping anything malformed.
func (c *ControllerModel) ApprovedEventIDs() []uuid.UUID {
	return parseIDs(c.ControllerApprovedEvents)
}

func (c *ControllerModel) CanSee(eventID uuid.UUID) bool {
	if c == nil || !c.ControllerIsActive {
		return false
	}
	for _, id := range c.ApprovedEventIDs() {
		if id == eventID {
			return true
		}
	}
	return false
}

func parseIDs(raw []string) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		if id, err := uuid.Parse(strings.TrimSpace(s)); err == nil {
			out = append(out, id)
		}
	}
	return out
}

// ApprovalMode decides how an approval combines with the existing scope.
type ApprovalMode string

const (
	ApprovalMerge   ApprovalMode = "MERGE"
	ApprovalReplace ApprovalMode = "REPLACE"
)

func ParseApprovalMode(s string) (ApprovalMode, bool) {
	switch ApprovalMode(strings.ToUpper(strings.TrimSpace(s))) {
	case "", ApprovalMerge:
		return ApprovalMerge, true
	case ApprovalReplace:
		return ApprovalReplace, true
	}
	return "", false
}

// MergeApprovedEvents returns the new scope, de-duplicated, in first-seen order.
func MergeApprovedEvents(current []string, incoming []uuid.UUID, mode ApprovalMode) pq.StringArray {
	var base []uuid.UUID
	if mode == ApprovalMerge {
		base = parseIDs(current)
	}
	seen := make(map[uuid.UUID]struct{}, len(base)+len(incoming))
	out := make(pq.StringArray, 0, len(base)+len(incoming))
	for _, id := range append(base, incoming...) {
		if id == uuid.Nil {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id.String())
	}
	return out
}
