package model

import (
	"testing"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestMergeApprovedEvents(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	current := []string{a.String(), "garbage", b.String()}

	merged := MergeApprovedEvents(current, []uuid.UUID{b, c, c, uuid.Nil}, ApprovalMerge)
	assert.Equal(t, pq.StringArray{a.String(), b.String(), c.String()}, merged)

	replaced := MergeApprovedEvents(current, []uuid.UUID{c}, ApprovalReplace)
	assert.Equal(t, pq.StringArray{c.String()}, replaced)

	assert.Empty(t, MergeApprovedEvents(current, nil, ApprovalReplace))
}

func TestParseApprovalMode(t *testing.T) {
	m, ok := ParseApprovalMode("")
	assert.True(t, ok)
	assert.Equal(t, ApprovalMerge, m)

	m, ok = ParseApprovalMode("replace")
	assert.True(t, ok)
	assert.Equal(t, ApprovalReplace, m)

	_, ok = ParseApprovalMode("append")
	assert.False(t, ok)
}

func TestControllerCanSee(t *testing.T) {
	ev := uuid.New()
	c := &ControllerModel{ControllerIsActive: true, ControllerApprovedEvents: pq.StringArray{ev.String()}}
	assert.True(t, c.CanSee(ev))
	assert.False(t, c.CanSee(uuid.New()))

	c.ControllerIsActive = false
	assert.False(t, c.CanSee(ev))
}
