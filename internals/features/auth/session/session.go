// Package session issues and verifies the signed tokens for the three roles.
package session

import (
	"arcevents_backend/internals/constants"

	"github.com/google/uuid"
)

// Session is a closed union: AdminSession, ControllerSession or UserSession.
type Session interface {
	Role() string
	Subject() string
	sealed()
}

type AdminSession struct {
	AdminID  uuid.UUID
	Username string
}

type ControllerSession struct {
	ControllerID   uuid.UUID
	Username       string
	ApprovedEvents []uuid.UUID
}

type UserSession struct {
	SubjectID string
	Email     string
	Name      string
	Picture   string
}

func (AdminSession) Role() string      { return constants.RoleAdmin }
func (ControllerSession) Role() string { return constants.RoleController }
func (UserSession) Role() string       { return constants.RoleUser }

func (s AdminSession) Subject() string      { return s.AdminID.String() }
func (s ControllerSession) Subject() string { return s.ControllerID.String() }
func (s UserSession) Subject() string       { return s.SubjectID }

func (AdminSession) sealed()      {}
func (ControllerSession) sealed() {}
func (UserSession) sealed()       {}

// CanSee reports whether eventID is inside the controller's approved scope.
func (s ControllerSession) CanSee(eventID uuid.UUID) bool {
	for _, id := range s.ApprovedEvents {
		if id == eventID {
			return true
		}
	}
	return false
}
