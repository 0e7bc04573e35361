// Package testkit holds an in-memory implementation of every repository used by the services.
// Unique constraints are checked under one mutex so concurrent inserts behave like the
// database indexes do.
package testkit

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	accountModel "arcevents_backend/internals/features/accounts/model"
	eventModel "arcevents_backend/internals/features/events/model"
	galleryModel "arcevents_backend/internals/features/gallery/model"
	regModel "arcevents_backend/internals/features/registrations/model"
	"arcevents_backend/internals/helpers/apperror"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Memory struct {
	mu   sync.Mutex
	seq  int64
	base time.Time

	admins        map[uuid.UUID]accountModel.AdminModel
	controllers   map[uuid.UUID]accountModel.ControllerModel
	events        map[uuid.UUID]eventModel.EventModel
	registrations map[uuid.UUID]regModel.RegistrationModel
	images        map[uuid.UUID]galleryModel.ImageModel
}

func NewMemory() *Memory {
	return &Memory{
		base:          time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		admins:        map[uuid.UUID]accountModel.AdminModel{},
		controllers:   map[uuid.UUID]accountModel.ControllerModel{},
		events:        map[uuid.UUID]eventModel.EventModel{},
		registrations: map[uuid.UUID]regModel.RegistrationModel{},
		images:        map[uuid.UUID]galleryModel.ImageModel{},
	}
}

// tick returns strictly increasing timestamps so "newest first" ordering is deterministic.
func (m *Memory) tick() time.Time {
	m.seq++
	return m.base.Add(time.Duration(m.seq) * time.Second)
}

func cloneStrings(in pq.StringArray) pq.StringArray {
	if in == nil {
		return pq.StringArray{}
	}
	return append(pq.StringArray{}, in...)
}

/* ===================== ACCOUNTS ===================== */

func (m *Memory) CreateAdmin(_ context.Context, a *accountModel.AdminModel) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.admins {
		if x.AdminUsername == a.AdminUsername {
			return apperror.ErrDuplicateUsername
		}
	}
	if a.AdminID == uuid.Nil {
		a.AdminID = uuid.New()
	}
	now := m.tick()
	a.AdminCreatedAt, a.AdminUpdatedAt = now, now
	m.admins[a.AdminID] = *a
	return nil
}

func (m *Memory) FindAdminByUsername(_ context.Context, username string) (*accountModel.AdminModel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.admins {
		if x.AdminUsername == username {
			cp := x
			return &cp, nil
		}
	}
	return nil, apperror.NotFound("admin")
}

func (m *Memory) FindAdminByID(_ context.Context, id uuid.UUID) (*accountModel.AdminModel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	x, ok := m.admins[id]
	if !ok {
		return nil, apperror.NotFound("admin")
	}
	return &x, nil
}

func (m *Memory) CreateController(_ context.Context, c *accountModel.ControllerModel) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.controllers {
		if x.ControllerUsername == c.ControllerUsername {
			return apperror.ErrDuplicateUsername
		}
	}
	if c.ControllerID == uuid.Nil {
		c.ControllerID = uuid.New()
	}
	now := m.tick()
	c.ControllerCreatedAt, c.ControllerUpdatedAt = now, now
	c.ControllerApprovedEvents = cloneStrings(c.ControllerApprovedEvents)
	c.ControllerRequestedEvents = cloneStrings(c.ControllerRequestedEvents)
	m.controllers[c.ControllerID] = *c
	return nil
}

func (m *Memory) FindControllerByUsername(_ context.Context, username string) (*accountModel.ControllerModel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.controllers {
		if x.ControllerUsername == username {
			cp := x
			cp.ControllerApprovedEvents = cloneStrings(x.ControllerApprovedEvents)
			cp.ControllerRequestedEvents = cloneStrings(x.ControllerRequestedEvents)
			return &cp, nil
		}
	}
	return nil, apperror.NotFound("controller")
}

func (m *Memory) FindControllerByID(_ context.Context, id uuid.UUID) (*accountModel.ControllerModel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	x, ok := m.controllers[id]
	if !ok {
		return nil, apperror.NotFound("controller")
	}
	x.ControllerApprovedEvents = cloneStrings(x.ControllerApprovedEvents)
	x.ControllerRequestedEvents = cloneStrings(x.ControllerRequestedEvents)
	return &x, nil
}

func (m *Memory) ListControllers(_ context.Context, active bool) ([]accountModel.ControllerModel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []accountModel.ControllerModel
	for _, x := range m.controllers {
		if x.ControllerIsActive == active {
			out = append(out, x)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ControllerCreatedAt.After(out[j].ControllerCreatedAt) })
	return out, nil
}

func (m *Memory) SaveController(_ context.Context, c *accountModel.ControllerModel) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	x, ok := m.controllers[c.ControllerID]
	if !ok {
		return apperror.NotFound("controller")
	}
	x.ControllerIsActive = c.ControllerIsActive
	x.ControllerApprovedEvents = cloneStrings(c.ControllerApprovedEvents)
	x.ControllerRequestedEvents = cloneStrings(c.ControllerRequestedEvents)
	x.ControllerApprovedByAdmin = c.ControllerApprovedByAdmin
	x.ControllerUpdatedAt = m.tick()
	m.controllers[c.ControllerID] = x
	return nil
}

func (m *Memory) CountControllersForEvent(_ context.Context, eventID uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, x := range m.controllers {
		if x.CanSee(eventID) {
			n++
		}
	}
	return n, nil
}

/* ===================== EVENTS ===================== */

func (m *Memory) slugTaken(slug string, except uuid.UUID) bool {
	for _, e := range m.events {
		if e.EventID != except && !e.EventIsDeleted && strings.EqualFold(e.EventSlug, slug) {
			return true
		}
	}
	return false
}

func (m *Memory) CreateEvent(_ context.Context, e *eventModel.EventModel) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.slugTaken(e.EventSlug, uuid.Nil) {
		return apperror.ErrDuplicateSlug
	}
	if e.EventID == uuid.Nil {
		e.EventID = uuid.New()
	}
	now := m.tick()
	e.EventCreatedAt, e.EventUpdatedAt = now, now
	m.events[e.EventID] = *e
	return nil
}

func (m *Memory) sortedEvents(keep func(*eventModel.EventModel) bool) []eventModel.EventModel {
	var out []eventModel.EventModel
	for _, e := range m.events {
		e := e
		if keep(&e) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EventCreatedAt.After(out[j].EventCreatedAt) })
	return out
}

func (m *Memory) ListEvents(_ context.Context) ([]eventModel.EventModel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sortedEvents(func(*eventModel.EventModel) bool { return true }), nil
}

func (m *Memory) ListPublicEvents(_ context.Context) ([]eventModel.EventModel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sortedEvents(func(e *eventModel.EventModel) bool { return e.IsPubliclyVisible() }), nil
}

func (m *Memory) FindEventByID(_ context.Context, id uuid.UUID) (*eventModel.EventModel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.events[id]
	if !ok {
		return nil, apperror.NotFound("event")
	}
	return &e, nil
}

func (m *Memory) FindActiveEventByID(_ context.Context, id uuid.UUID) (*eventModel.EventModel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.events[id]
	if !ok || e.EventIsDeleted {
		return nil, apperror.NotFound("event")
	}
	return &e, nil
}

func (m *Memory) FindActiveEventBySlug(_ context.Context, slug string) (*eventModel.EventModel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.events {
		if !e.EventIsDeleted && strings.EqualFold(e.EventSlug, slug) {
			cp := e
			return &cp, nil
		}
	}
	return nil, apperror.NotFound("event")
}

func (m *Memory) FindEventsByIDs(_ context.Context, ids []uuid.UUID) ([]eventModel.EventModel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	want := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	return m.sortedEvents(func(e *eventModel.EventModel) bool { return want[e.EventID] }), nil
}

func (m *Memory) SaveEvent(_ context.Context, e *eventModel.EventModel) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.events[e.EventID]
	if !ok {
		return apperror.NotFound("event")
	}
	if !cur.EventIsDeleted && m.slugTaken(e.EventSlug, e.EventID) {
		return apperror.ErrDuplicateSlug
	}
	next := *e
	next.EventIsDeleted, next.EventDeletedAt = cur.EventIsDeleted, cur.EventDeletedAt
	next.EventCreatedAt = cur.EventCreatedAt
	next.EventUpdatedAt = m.tick()
	m.events[e.EventID] = next
	return nil
}

func (m *Memory) ArchiveEvent(_ context.Context, id uuid.UUID, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.events[id]
	if !ok || e.EventIsDeleted {
		return apperror.NotFound("event")
	}
	e.EventIsDeleted = true
	e.EventDeletedAt = &at
	e.EventUpdatedAt = at
	m.events[id] = e
	for rid, r := range m.registrations {
		if sameEvent(r.RegistrationEventID, &id) && r.RegistrationOrphanedAt == nil {
			when := at
			r.RegistrationOrphanedAt = &when
			r.RegistrationUpdatedAt = at
			m.registrations[rid] = r
		}
	}
	return nil
}

func (m *Memory) PurgeEvent(_ context.Context, id uuid.UUID, at time.Time) (*eventModel.PurgeResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.events[id]
	if !ok {
		return nil, apperror.NotFound("event")
	}
	res := &eventModel.PurgeResult{Event: e}
	for rid, r := range m.registrations {
		if r.RegistrationEventID != nil && *r.RegistrationEventID == id {
			when := at
			r.RegistrationEventID = nil
			r.RegistrationOrphanedAt = &when
			r.RegistrationUpdatedAt = at
			m.registrations[rid] = r
			res.OrphanedRegistrations++
		}
	}
	for iid, img := range m.images {
		if img.ImageEventID != nil && *img.ImageEventID == id {
			res.ImageKeys = append(res.ImageKeys, img.ImageObjectKey)
			delete(m.images, iid)
		}
	}
	delete(m.events, id)
	return res, nil
}

/* ===================== REGISTRATIONS ===================== */

func sameEvent(a, b *uuid.UUID) bool {
	return a != nil && b != nil && *a == *b
}

func (m *Memory) CreateRegistration(_ context.Context, r *regModel.RegistrationModel) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.registrations {
		if sameEvent(x.RegistrationEventID, r.RegistrationEventID) && x.RegistrationSubjectID == r.RegistrationSubjectID {
			return apperror.ErrAlreadyRegistered
		}
	}
	if r.RegistrationID == uuid.Nil {
		r.RegistrationID = uuid.New()
	}
	now := m.tick()
	r.RegistrationCreatedAt, r.RegistrationUpdatedAt = now, now
	m.registrations[r.RegistrationID] = *r
	return nil
}

func (m *Memory) FindRegistrationForSubject(_ context.Context, eventID uuid.UUID, subjectID string) (*regModel.RegistrationModel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.registrations {
		if sameEvent(x.RegistrationEventID, &eventID) && x.RegistrationSubjectID == subjectID {
			cp := x
			return &cp, nil
		}
	}
	return nil, apperror.NotFound("registration")
}

func (m *Memory) FindRegistrationInEvent(_ context.Context, eventID, registrationID uuid.UUID) (*regModel.RegistrationModel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	x, ok := m.registrations[registrationID]
	if !ok || !sameEvent(x.RegistrationEventID, &eventID) {
		return nil, apperror.NotFound("registration")
	}
	return &x, nil
}

func (m *Memory) FindRegistrationByID(_ context.Context, registrationID uuid.UUID) (*regModel.RegistrationModel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	x, ok := m.registrations[registrationID]
	if !ok {
		return nil, apperror.NotFound("registration")
	}
	return &x, nil
}

func (m *Memory) sortedRegistrations(keep func(*regModel.RegistrationModel) bool) []regModel.RegistrationModel {
	var out []regModel.RegistrationModel
	for _, r := range m.registrations {
		r := r
		if keep(&r) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RegistrationCreatedAt.After(out[j].RegistrationCreatedAt) })
	return out
}

func (m *Memory) ListRegistrationsByIdentity(_ context.Context, matcher regModel.IdentityMatcher) ([]regModel.RegistrationModel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if matcher.IsEmpty() {
		return nil, nil
	}
	return m.sortedRegistrations(matcher.Matches), nil
}

func (m *Memory) ListRegistrationsByEvent(_ context.Context, eventID uuid.UUID) ([]regModel.RegistrationModel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sortedRegistrations(func(r *regModel.RegistrationModel) bool {
		return sameEvent(r.RegistrationEventID, &eventID)
	}), nil
}

func (m *Memory) SaveRegistrationStatus(_ context.Context, r *regModel.RegistrationModel) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	x, ok := m.registrations[r.RegistrationID]
	if !ok || !sameEvent(x.RegistrationEventID, r.RegistrationEventID) {
		return apperror.NotFound("registration")
	}
	x.RegistrationStatus = r.RegistrationStatus
	x.RegistrationApprovedBy = r.RegistrationApprovedBy
	x.RegistrationApprovedAt = r.RegistrationApprovedAt
	x.RegistrationUpdatedAt = m.tick()
	m.registrations[r.RegistrationID] = x
	return nil
}

func (m *Memory) ClearRegistrationReceipt(_ context.Context, registrationID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	x, ok := m.registrations[registrationID]
	if !ok {
		return apperror.NotFound("registration")
	}
	x.RegistrationReceiptURL, x.RegistrationReceiptKey = "", ""
	x.RegistrationUpdatedAt = m.tick()
	m.registrations[registrationID] = x
	return nil
}

func (m *Memory) CountRegistrations(_ context.Context, eventID uuid.UUID, status *regModel.Status) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, r := range m.registrations {
		if !sameEvent(r.RegistrationEventID, &eventID) {
			continue
		}
		if status == nil || r.RegistrationStatus == *status {
			n++
		}
	}
	return n, nil
}

// Registration returns the stored row regardless of event, for assertions.
func (m *Memory) Registration(id uuid.UUID) (regModel.RegistrationModel, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.registrations[id]
	return r, ok
}

func (m *Memory) RegistrationCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.registrations)
}

/* ===================== IMAGES ===================== */

func (m *Memory) CreateImage(_ context.Context, img *galleryModel.ImageModel) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if img.ImageID == uuid.Nil {
		img.ImageID = uuid.New()
	}
	img.ImageCreatedAt = m.tick()
	m.images[img.ImageID] = *img
	return nil
}

func (m *Memory) ListGlobalImages(_ context.Context, category string) ([]galleryModel.ImageModel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []galleryModel.ImageModel
	for _, img := range m.images {
		if img.ImageEventID == nil && (category == "" || img.ImageCategory == category) {
			out = append(out, img)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ImageCreatedAt.After(out[j].ImageCreatedAt) })
	return out, nil
}

func (m *Memory) ListEventImages(_ context.Context, eventID uuid.UUID) ([]galleryModel.ImageModel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []galleryModel.ImageModel
	for _, img := range m.images {
		if sameEvent(img.ImageEventID, &eventID) {
			out = append(out, img)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ImagePosition != out[j].ImagePosition {
			return out[i].ImagePosition < out[j].ImagePosition
		}
		return out[i].ImageCreatedAt.Before(out[j].ImageCreatedAt)
	})
	return out, nil
}

func (m *Memory) NextEventImagePosition(_ context.Context, eventID uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	next := 0
	for _, img := range m.images {
		if sameEvent(img.ImageEventID, &eventID) && img.ImagePosition >= next {
			next = img.ImagePosition + 1
		}
	}
	return next, nil
}

func (m *Memory) DeleteEventImage(_ context.Context, eventID, imageID uuid.UUID) (*galleryModel.ImageModel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	img, ok := m.images[imageID]
	if !ok || !sameEvent(img.ImageEventID, &eventID) {
		return nil, nil
	}
	delete(m.images, imageID)
	return &img, nil
}

func (m *Memory) DeleteGlobalImage(_ context.Context, imageID uuid.UUID) (*galleryModel.ImageModel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	img, ok := m.images[imageID]
	if !ok || img.ImageEventID != nil {
		return nil, apperror.NotFound("image")
	}
	delete(m.images, imageID)
	return &img, nil
}
