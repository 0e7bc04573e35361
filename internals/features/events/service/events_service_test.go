package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"arcevents_backend/internals/features/events/dto"
	"arcevents_backend/internals/features/events/model"
	galleryModel "arcevents_backend/internals/features/gallery/model"
	regModel "arcevents_backend/internals/features/registrations/model"
	"arcevents_backend/internals/helpers/apperror"
	helperOSS "arcevents_backend/internals/helpers/oss"
	"arcevents_backend/internals/testkit"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() (*EventService, *testkit.Memory, *helperOSS.MemoryBlobStore) {
	mem := testkit.NewMemory()
	blobs := helperOSS.NewMemoryBlobStore()
	svc := NewEventService(mem, blobs, time.Second)
	svc.now = func() time.Time { return time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC) }
	return svc, mem, blobs
}

var png = helperOSS.Upload{Filename: "poster.png", ContentType: "image/png", Data: []byte("png")}

func ptr[T any](v T) *T { return &v }

func TestCreateEventDefaultsAndSlug(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	admin := uuid.New()

	e, err := svc.CreateEvent(ctx, admin, dto.CreateEventRequest{Name: "  Reunion Akbar 2025 "})
	require.NoError(t, err)
	assert.Equal(t, "reunion-akbar-2025", e.EventSlug)
	assert.Equal(t, model.EventStatusDraft, e.EventStatus)
	assert.Equal(t, "Reunion Akbar 2025", e.EventName)
	require.NotNil(t, e.EventCreatedBy)
	assert.Equal(t, admin, *e.EventCreatedBy)
	assert.NotNil(t, e.EventFlow)

	_, err = svc.CreateEvent(ctx, admin, dto.CreateEventRequest{Name: "Other", Slug: "Reunion-Akbar-2025"})
	assert.True(t, errors.Is(err, apperror.ErrDuplicateSlug))

	_, err = svc.CreateEvent(ctx, admin, dto.CreateEventRequest{Name: "Bad", Status: "open"})
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	_, err = svc.CreateEvent(ctx, admin, dto.CreateEventRequest{Name: "Neg", BasePrice: -1})
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	_, err = svc.CreateEvent(ctx, admin, dto.CreateEventRequest{Name: "!!", Slug: "***"})
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}

func TestPublicVisibilityBoundary(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	admin := uuid.New()

	mk := func(name, status string, hidden bool) *model.EventModel {
		e, err := svc.CreateEvent(ctx, admin, dto.CreateEventRequest{Name: name, Status: status, IsHidden: hidden})
		require.NoError(t, err)
		return e
	}
	live := mk("Live One", "LIVE", false)
	mk("Draft One", "DRAFT", false)
	mk("Hidden One", "LIVE", true)
	mk("Closed One", "closed", false)
	archived := mk("Archived One", "LIVE", false)
	require.NoError(t, svc.Archive(ctx, archived.EventID))

	list, err := svc.ListPublicEvents(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, live.EventID, list[0].EventID)

	all, err := svc.ListEventsForAdmin(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 5, "admins see archived rows too")

	_, err = svc.GetBySlug(ctx, "archived-one")
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
	got, err := svc.GetBySlug(ctx, "draft-one")
	require.NoError(t, err)
	assert.Equal(t, model.EventStatusDraft, got.EventStatus)
}

func TestArchiveThenPurge(t *testing.T) {
	svc, mem, blobs := newTestService()
	ctx := context.Background()

	e, err := svc.CreateEvent(ctx, uuid.New(), dto.CreateEventRequest{Name: "Gala", Status: "LIVE"})
	require.NoError(t, err)
	e, err = svc.AttachPoster(ctx, e.EventID, png)
	require.NoError(t, err)
	posterKey := e.EventPosterKey

	eventID := e.EventID
	reg := &regModel.RegistrationModel{
		RegistrationEventID:   &eventID,
		RegistrationEventSlug: e.EventSlug,
		RegistrationEventName: e.EventName,
		RegistrationSubjectID: "g-1",
		RegistrationStatus:    regModel.StatusPending,
	}
	require.NoError(t, mem.CreateRegistration(ctx, reg))
	img := &galleryModel.ImageModel{ImageEventID: &eventID, ImageURL: "u", ImageObjectKey: "arc_events/gala/memories/x.png"}
	require.NoError(t, mem.CreateImage(ctx, img))

	require.NoError(t, svc.Archive(ctx, eventID))
	archived, ok := mem.Registration(reg.RegistrationID)
	require.True(t, ok)
	assert.NotNil(t, archived.RegistrationOrphanedAt, "archive invalidates registrations too")
	assert.False(t, archived.IsOrphaned())

	err = svc.Archive(ctx, eventID)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err), "archiving twice")

	// slug is free again once archived
	_, err = svc.CreateEvent(ctx, uuid.New(), dto.CreateEventRequest{Name: "Gala"})
	require.NoError(t, err)

	res, err := svc.Purge(ctx, eventID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.OrphanedRegistrations)
	assert.Equal(t, []string{"arc_events/gala/memories/x.png"}, res.ImageKeys)
	assert.Contains(t, blobs.Deleted(), posterKey)
	assert.Contains(t, blobs.Deleted(), "arc_events/gala/memories/x.png")

	stored, ok := mem.Registration(reg.RegistrationID)
	require.True(t, ok)
	assert.True(t, stored.IsOrphaned())
	assert.NotNil(t, stored.RegistrationOrphanedAt)
	assert.Equal(t, "gala", stored.RegistrationEventSlug)

	_, err = svc.Purge(ctx, eventID)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err), "purging twice")
}

func TestUpdateEvent(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	a, err := svc.CreateEvent(ctx, uuid.New(), dto.CreateEventRequest{Name: "Alpha"})
	require.NoError(t, err)
	_, err = svc.CreateEvent(ctx, uuid.New(), dto.CreateEventRequest{Name: "Beta"})
	require.NoError(t, err)

	up, err := svc.UpdateEvent(ctx, a.EventID, dto.UpdateEventRequest{
		Status:      ptr("live"),
		IsPaid:      ptr(true),
		BasePrice:   ptr(int64(750)),
		Description: ptr("  Annual gathering "),
		Flow:        &[]dto.FlowStepInput{{Time: "09:00", Title: "Check-in"}},
	})
	require.NoError(t, err)
	assert.Equal(t, model.EventStatusLive, up.EventStatus)
	assert.True(t, up.EventIsPaid)
	assert.Equal(t, int64(750), up.EventBasePrice)
	assert.Equal(t, "Annual gathering", up.EventDescription)
	assert.Equal(t, "alpha", up.EventSlug, "untouched fields stay")

	flow, err := svc.GetFlowBySlug(ctx, "alpha")
	require.NoError(t, err)
	require.Len(t, flow, 1)
	assert.Equal(t, "Check-in", flow[0].Title)

	_, err = svc.UpdateEvent(ctx, a.EventID, dto.UpdateEventRequest{Slug: ptr("beta")})
	assert.True(t, errors.Is(err, apperror.ErrDuplicateSlug))

	_, err = svc.UpdateEvent(ctx, uuid.New(), dto.UpdateEventRequest{Name: ptr("Ghost")})
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestAttachPosterOverwritesAndReleasesPrevious(t *testing.T) {
	svc, _, blobs := newTestService()
	ctx := context.Background()
	e, err := svc.CreateEvent(ctx, uuid.New(), dto.CreateEventRequest{Name: "Gala"})
	require.NoError(t, err)

	first, err := svc.AttachPoster(ctx, e.EventID, png)
	require.NoError(t, err)
	firstKey := first.EventPosterKey
	assert.Contains(t, firstKey, "arc_events/gala/")

	second, err := svc.AttachPoster(ctx, e.EventID, png)
	require.NoError(t, err)
	assert.NotEqual(t, firstKey, second.EventPosterKey)
	assert.False(t, blobs.Has(firstKey))
	assert.True(t, blobs.Has(second.EventPosterKey))

	qr, err := svc.AttachQR(ctx, e.EventID, png)
	require.NoError(t, err)
	assert.Contains(t, qr.EventPaymentQRKey, "arc_events/gala/qr/")
	assert.Equal(t, second.EventPosterKey, qr.EventPosterKey)

	blobs.FailUploads(errors.New("down"))
	_, err = svc.AttachPoster(ctx, e.EventID, png)
	assert.Equal(t, apperror.KindUpstream, apperror.KindOf(err))
	assert.True(t, blobs.Has(second.EventPosterKey), "failed upload keeps the current poster")
}
