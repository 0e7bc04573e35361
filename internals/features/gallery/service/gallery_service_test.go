package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"arcevents_backend/internals/constants"
	eventModel "arcevents_backend/internals/features/events/model"
	galleryModel "arcevents_backend/internals/features/gallery/model"
	"arcevents_backend/internals/helpers/apperror"
	helperOSS "arcevents_backend/internals/helpers/oss"
	"arcevents_backend/internals/testkit"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var photo = helperOSS.Upload{Filename: "photo.jpg", ContentType: "image/jpeg", Data: []byte("jpg")}

func setup(t *testing.T) (*GalleryService, *testkit.Memory, *helperOSS.MemoryBlobStore) {
	t.Helper()
	mem := testkit.NewMemory()
	blobs := helperOSS.NewMemoryBlobStore()
	return NewGalleryService(mem, mem, blobs, time.Second), mem, blobs
}

func addEvent(t *testing.T, mem *testkit.Memory, slug string) *eventModel.EventModel {
	t.Helper()
	e := &eventModel.EventModel{EventName: slug, EventSlug: slug, EventStatus: eventModel.EventStatusLive}
	require.NoError(t, mem.CreateEvent(context.Background(), e))
	return e
}

func TestEventGalleryAppendOrder(t *testing.T) {
	svc, mem, _ := setup(t)
	ctx := context.Background()
	ev := addEvent(t, mem, "gala")

	for i := 0; i < 3; i++ {
		img, err := svc.AppendEventImage(ctx, ev.EventID, photo)
		require.NoError(t, err)
		assert.Equal(t, i, img.ImagePosition)
		assert.Equal(t, constants.ImageCategoryEventMemories, img.ImageCategory)
		assert.True(t, strings.HasPrefix(img.ImageObjectKey, "arc_events/gala/memories/"))
	}

	list, err := svc.ListEventGallery(ctx, ev.EventID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	for i, img := range list {
		assert.Equal(t, i, img.ImagePosition)
	}

	public, err := svc.ListMemoriesBySlug(ctx, "GALA")
	require.NoError(t, err)
	assert.Len(t, public, 3)

	_, err = svc.AppendEventImage(ctx, uuid.New(), photo)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestRemoveEventImageCrossEventIsNoop(t *testing.T) {
	svc, mem, blobs := setup(t)
	ctx := context.Background()
	a := addEvent(t, mem, "a")
	b := addEvent(t, mem, "b")

	img, err := svc.AppendEventImage(ctx, a.EventID, photo)
	require.NoError(t, err)

	removed, err := svc.RemoveEventImage(ctx, b.EventID, img.ImageID)
	require.NoError(t, err)
	assert.False(t, removed)
	assert.True(t, blobs.Has(img.ImageObjectKey))

	list, err := svc.ListEventGallery(ctx, a.EventID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	removed, err = svc.RemoveEventImage(ctx, a.EventID, img.ImageID)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.False(t, blobs.Has(img.ImageObjectKey))

	removed, err = svc.RemoveEventImage(ctx, a.EventID, img.ImageID)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestGlobalImages(t *testing.T) {
	svc, _, blobs := setup(t)
	ctx := context.Background()

	ann, err := svc.UploadGlobalImage(ctx, " Home_Announcement ", photo)
	require.NoError(t, err)
	assert.Equal(t, constants.ImageCategoryHomeAnnouncement, ann.ImageCategory)
	assert.Nil(t, ann.ImageEventID)
	assert.True(t, strings.HasPrefix(ann.ImageObjectKey, "arc_home/home_announcement/"))

	mem1, err := svc.UploadGlobalImage(ctx, constants.ImageCategoryHomeMemories, photo)
	require.NoError(t, err)

	_, err = svc.UploadGlobalImage(ctx, constants.ImageCategoryEventMemories, photo)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	all, err := svc.ListGlobalImages(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, mem1.ImageID, all[0].ImageID, "newest first")

	only, err := svc.ListGlobalImages(ctx, "home_announcement")
	require.NoError(t, err)
	require.Len(t, only, 1)
	assert.Equal(t, ann.ImageID, only[0].ImageID)

	_, err = svc.ListGlobalImages(ctx, "banner")
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	require.NoError(t, svc.DeleteGlobalImage(ctx, ann.ImageID))
	assert.False(t, blobs.Has(ann.ImageObjectKey))
	err = svc.DeleteGlobalImage(ctx, ann.ImageID)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestUploadFailureStoresNothing(t *testing.T) {
	svc, mem, blobs := setup(t)
	ctx := context.Background()
	ev := addEvent(t, mem, "gala")
	blobs.FailUploads(errors.New("down"))

	_, err := svc.AppendEventImage(ctx, ev.EventID, photo)
	assert.Equal(t, apperror.KindUpstream, apperror.KindOf(err))
	_, err = svc.UploadGlobalImage(ctx, constants.ImageCategoryHomeMemories, photo)
	assert.Equal(t, apperror.KindUpstream, apperror.KindOf(err))

	list, err := svc.ListEventGallery(ctx, ev.EventID)
	require.NoError(t, err)
	assert.Empty(t, list)
	all, err := svc.ListGlobalImages(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, all)
}

type failingImages struct {
	*testkit.Memory
}

func (failingImages) CreateImage(context.Context, *galleryModel.ImageModel) error {
	return errors.New("insert failed")
}

func TestInsertFailureReleasesUploadedBlob(t *testing.T) {
	mem := testkit.NewMemory()
	blobs := helperOSS.NewMemoryBlobStore()
	svc := NewGalleryService(failingImages{mem}, mem, blobs, time.Second)
	ctx := context.Background()
	ev := addEvent(t, mem, "gala")

	_, err := svc.AppendEventImage(ctx, ev.EventID, photo)
	require.Error(t, err)
	_, err = svc.UploadGlobalImage(ctx, constants.ImageCategoryHomeMemories, photo)
	require.Error(t, err)

	assert.Zero(t, blobs.Len())
	assert.Len(t, blobs.Deleted(), 2)
}
