package service

import (
	"context"
	"strings"
	"time"

	"arcevents_backend/internals/constants"
	eventModel "arcevents_backend/internals/features/events/model"
	"arcevents_backend/internals/features/gallery/model"
	"arcevents_backend/internals/helpers/apperror"
	helperOSS "arcevents_backend/internals/helpers/oss"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type Store interface {
	CreateImage(ctx context.Context, img *model.ImageModel) error
	ListGlobalImages(ctx context.Context, category string) ([]model.ImageModel, error)
	ListEventImages(ctx context.Context, eventID uuid.UUID) ([]model.ImageModel, error)
	NextEventImagePosition(ctx context.Context, eventID uuid.UUID) (int, error)
	DeleteEventImage(ctx context.Context, eventID, imageID uuid.UUID) (*model.ImageModel, error)
	DeleteGlobalImage(ctx context.Context, imageID uuid.UUID) (*model.ImageModel, error)
}

type EventFinder interface {
	FindEventByID(ctx context.Context, id uuid.UUID) (*eventModel.EventModel, error)
	FindActiveEventBySlug(ctx context.Context, slug string) (*eventModel.EventModel, error)
}

type GalleryService struct {
	store         Store
	events        EventFinder
	blobs         helperOSS.BlobStore
	uploadTimeout time.Duration
}

func NewGalleryService(store Store, events EventFinder, blobs helperOSS.BlobStore, uploadTimeout time.Duration) *GalleryService {
	if uploadTimeout <= 0 {
		uploadTimeout = 20 * time.Second
	}
	return &GalleryService{store: store, events: events, blobs: blobs, uploadTimeout: uploadTimeout}
}

/* ===================== EVENT GALLERY ===================== */

func (s *GalleryService) ListEventGallery(ctx context.Context, eventID uuid.UUID) ([]model.ImageModel, error) {
	if _, err := s.events.FindEventByID(ctx, eventID); err != nil {
		return nil, err
	}
	return s.store.ListEventImages(ctx, eventID)
}

// ListMemoriesBySlug is the public gallery of a non-archived event.
func (s *GalleryService) ListMemoriesBySlug(ctx context.Context, slug string) ([]model.ImageModel, error) {
	ev, err := s.events.FindActiveEventBySlug(ctx, strings.TrimSpace(slug))
	if err != nil {
		return nil, err
	}
	return s.store.ListEventImages(ctx, ev.EventID)
}

func (s *GalleryService) AppendEventImage(ctx context.Context, eventID uuid.UUID, up helperOSS.Upload) (*model.ImageModel, error) {
	ev, err := s.events.FindEventByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	pos, err := s.store.NextEventImagePosition(ctx, eventID)
	if err != nil {
		return nil, err
	}

	ref, err := s.upload(ctx, constants.FolderEventAssets+"/"+ev.EventSlug+"/memories", up)
	if err != nil {
		return nil, err
	}
	id := eventID
	img := &model.ImageModel{
		ImageID:        uuid.New(),
		ImageEventID:   &id,
		ImageURL:       ref.URL,
		ImageObjectKey: ref.Key,
		ImageCategory:  constants.ImageCategoryEventMemories,
		ImagePosition:  pos,
	}
	if err := s.store.CreateImage(ctx, img); err != nil {
		s.release(ref.Key)
		return nil, err
	}
	return img, nil
}

// RemoveEventImage is a no-op (false, nil) when imageID is not part of eventID's gallery.
func (s *GalleryService) RemoveEventImage(ctx context.Context, eventID, imageID uuid.UUID) (bool, error) {
	img, err := s.store.DeleteEventImage(ctx, eventID, imageID)
	if err != nil {
		return false, err
	}
	if img == nil {
		return false, nil
	}
	s.release(img.ImageObjectKey)
	return true, nil
}

/* ===================== HOME IMAGES ===================== */

func normalizeCategory(category string, allowEmpty bool) (string, error) {
	category = strings.ToLower(strings.TrimSpace(category))
	if category == "" && allowEmpty {
		return "", nil
	}
	if !constants.IsGlobalImageCategory(category) {
		return "", apperror.ValidationField("category",
			"category must be "+constants.ImageCategoryHomeAnnouncement+" or "+constants.ImageCategoryHomeMemories)
	}
	return category, nil
}

func (s *GalleryService) ListGlobalImages(ctx context.Context, category string) ([]model.ImageModel, error) {
	category, err := normalizeCategory(category, true)
	if err != nil {
		return nil, err
	}
	return s.store.ListGlobalImages(ctx, category)
}

func (s *GalleryService) UploadGlobalImage(ctx context.Context, category string, up helperOSS.Upload) (*model.ImageModel, error) {
	category, err := normalizeCategory(category, false)
	if err != nil {
		return nil, err
	}
	ref, err := s.upload(ctx, constants.FolderHomeImages+"/"+category, up)
	if err != nil {
		return nil, err
	}
	img := &model.ImageModel{
		ImageID:        uuid.New(),
		ImageURL:       ref.URL,
		ImageObjectKey: ref.Key,
		ImageCategory:  category,
	}
	if err := s.store.CreateImage(ctx, img); err != nil {
		s.release(ref.Key)
		return nil, err
	}
	return img, nil
}

func (s *GalleryService) DeleteGlobalImage(ctx context.Context, imageID uuid.UUID) error {
	img, err := s.store.DeleteGlobalImage(ctx, imageID)
	if err != nil {
		return err
	}
	s.release(img.ImageObjectKey)
	return nil
}

func (s *GalleryService) upload(ctx context.Context, folder string, up helperOSS.Upload) (helperOSS.BlobRef, error) {
	uctx, cancel := context.WithTimeout(ctx, s.uploadTimeout)
	defer cancel()
	ref, err := s.blobs.Upload(uctx, folder, up)
	if err != nil {
		if apperror.KindOf(err) == apperror.KindUpstream {
			return helperOSS.BlobRef{}, err
		}
		return helperOSS.BlobRef{}, apperror.Upstream("blob upload failed", err)
	}
	return ref, nil
}

func (s *GalleryService) release(key string) {
	if err := helperOSS.ReleaseQuietly(s.blobs, key, s.uploadTimeout); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("image blob release failed")
	}
}
