package model

import (
	"fmt"
	"time"

	"arcevents_backend/internals/helpers/apperror"

	"github.com/google/uuid"
)

type Action string

const (
	ActionApprove    Action = "approve"
	ActionReject     Action = "reject"
	ActionDisapprove Action = "disapprove"
	ActionReset      Action = "reset"
)

var Actions = []Action{ActionApprove, ActionReject, ActionDisapprove, ActionReset}

var transitions = map[Status]map[Action]Status{
	StatusPending: {
		ActionApprove:    StatusApproved,
		ActionReject:     StatusRejected,
		ActionDisapprove: StatusPending,
		ActionReset:      StatusPending,
	},
	StatusApproved: {
		ActionApprove:    StatusApproved,
		ActionReject:     StatusRejected,
		ActionDisapprove: StatusPending,
		ActionReset:      StatusPending,
	},
	StatusRejected: {
		ActionApprove:    StatusApproved,
		ActionReject:     StatusRejected,
		ActionDisapprove: StatusPending,
		ActionReset:      StatusPending,
	},
}

// Next returns the status reached from "from" by a. Every known status/action pair is defined;
// false means the status or the action itself is unknown.
func Next(from Status, a Action) (Status, bool) {
	to, ok := transitions[from][a]
	return to, ok
}

// ActionFor maps a requested target status onto the action that reaches it from current.
func ActionFor(current, target Status) (Action, error) {
	switch target {
	case StatusApproved:
		return ActionApprove, nil
	case StatusRejected:
		return ActionReject, nil
	case StatusPending:
		if current == StatusApproved {
			return ActionDisapprove, nil
		}
		return ActionReset, nil
	}
	return "", apperror.ValidationField("status", fmt.Sprintf("unknown status %q", target))
}

// Transition applies a to r and stamps the reviewer. r is untouched on error.
func Transition(r *RegistrationModel, a Action, actor uuid.UUID, now time.Time) error {
	to, ok := Next(r.RegistrationStatus, a)
	if !ok {
		return apperror.ValidationField("status",
			fmt.Sprintf("unknown transition %q from %s", a, r.RegistrationStatus))
	}

	r.RegistrationStatus = to
	switch to {
	case StatusApproved, StatusRejected:
		by, at := actor, now
		r.RegistrationApprovedBy = &by
		r.RegistrationApprovedAt = &at
	case StatusPending:
		r.RegistrationApprovedBy = nil
		r.RegistrationApprovedAt = nil
	}
	return nil
}
