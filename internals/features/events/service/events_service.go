package service

import (
	"context"
	"strings"
	"time"

	"arcevents_backend/internals/constants"
	"arcevents_backend/internals/features/events/dto"
	"arcevents_backend/internals/features/events/model"
	helper "arcevents_backend/internals/helpers"
	"arcevents_backend/internals/helpers/apperror"
	helperOSS "arcevents_backend/internals/helpers/oss"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type Store interface {
	CreateEvent(ctx context.Context, e *model.EventModel) error
	ListEvents(ctx context.Context) ([]model.EventModel, error)
	ListPublicEvents(ctx context.Context) ([]model.EventModel, error)
	FindEventByID(ctx context.Context, id uuid.UUID) (*model.EventModel, error)
	FindActiveEventByID(ctx context.Context, id uuid.UUID) (*model.EventModel, error)
	FindActiveEventBySlug(ctx context.Context, slug string) (*model.EventModel, error)
	SaveEvent(ctx context.Context, e *model.EventModel) error
	ArchiveEvent(ctx context.Context, id uuid.UUID, at time.Time) error
	PurgeEvent(ctx context.Context, id uuid.UUID, at time.Time) (*model.PurgeResult, error)
}

type EventService struct {
	store         Store
	blobs         helperOSS.BlobStore
	uploadTimeout time.Duration
	now           func() time.Time
}

func NewEventService(store Store, blobs helperOSS.BlobStore, uploadTimeout time.Duration) *EventService {
	if uploadTimeout <= 0 {
		uploadTimeout = 20 * time.Second
	}
	return &EventService{store: store, blobs: blobs, uploadTimeout: uploadTimeout, now: time.Now}
}

func normalizeSlug(raw, fallback string) (string, error) {
	src := strings.TrimSpace(raw)
	if src == "" {
		src = fallback
	}
	slug := helper.GenerateSlug(src)
	if len(slug) > helper.DefaultSlugMaxLen {
		slug = strings.Trim(slug[:helper.DefaultSlugMaxLen], "-")
	}
	if slug == "" {
		return "", apperror.ValidationField("slug", "slug must contain letters or digits")
	}
	return slug, nil
}

/* ===================== CREATE / READ ===================== */

func (s *EventService) CreateEvent(ctx context.Context, adminID uuid.UUID, req dto.CreateEventRequest) (*model.EventModel, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Status = strings.ToUpper(strings.TrimSpace(req.Status))
	if err := helper.ValidateStruct(req); err != nil {
		return nil, err
	}
	slug, err := normalizeSlug(req.Slug, req.Name)
	if err != nil {
		return nil, err
	}
	status := model.EventStatusDraft
	if req.Status != "" {
		status = model.EventStatus(req.Status)
	}

	by := adminID
	e := &model.EventModel{
		EventID:                  uuid.New(),
		EventName:                req.Name,
		EventSlug:                slug,
		EventDescription:         strings.TrimSpace(req.Description),
		EventDate:                req.Date,
		EventFlow:                dto.ToFlow(req.Flow),
		EventStatus:              status,
		EventIsHidden:            req.IsHidden,
		EventIsPaid:              req.IsPaid,
		EventBasePrice:           req.BasePrice,
		EventAddonPricePerMember: req.AddonPricePerMember,
		EventFamilyAllowed:       req.FamilyAllowed,
		EventCreatedBy:           &by,
	}
	if err := s.store.CreateEvent(ctx, e); err != nil {
		return nil, err
	}
	log.Info().Str("admin_id", adminID.String()).Str("event_id", e.EventID.String()).Str("slug", slug).Msg("event created")
	return e, nil
}

func (s *EventService) ListEventsForAdmin(ctx context.Context) ([]model.EventModel, error) {
	return s.store.ListEvents(ctx)
}

// ListPublicEvents re-applies IsPubliclyVisible on top of the SQL filter.
func (s *EventService) ListPublicEvents(ctx context.Context) ([]model.EventModel, error) {
	rows, err := s.store.ListPublicEvents(ctx)
	if err != nil {
		return nil, err
	}
	out := rows[:0]
	for i := range rows {
		if rows[i].IsPubliclyVisible() {
			out = append(out, rows[i])
		}
	}
	return out, nil
}

func (s *EventService) GetBySlug(ctx context.Context, slug string) (*model.EventModel, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, apperror.NotFound("event")
	}
	return s.store.FindActiveEventBySlug(ctx, slug)
}

func (s *EventService) GetFlowBySlug(ctx context.Context, slug string) ([]model.FlowStep, error) {
	e, err := s.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if e.EventFlow == nil {
		return []model.FlowStep{}, nil
	}
	return e.EventFlow, nil
}

func (s *EventService) FindActiveByID(ctx context.Context, id uuid.UUID) (*model.EventModel, error) {
	return s.store.FindActiveEventByID(ctx, id)
}

func (s *EventService) FindActiveBySlug(ctx context.Context, slug string) (*model.EventModel, error) {
	return s.GetBySlug(ctx, slug)
}

/* ===================== UPDATE ===================== */

func (s *EventService) UpdateEvent(ctx context.Context, id uuid.UUID, req dto.UpdateEventRequest) (*model.EventModel, error) {
	if req.Status != nil {
		up := strings.ToUpper(strings.TrimSpace(*req.Status))
		req.Status = &up
	}
	if err := helper.ValidateStruct(req); err != nil {
		return nil, err
	}
	e, err := s.store.FindEventByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		e.EventName = strings.TrimSpace(*req.Name)
	}
	if req.Slug != nil {
		slug, err := normalizeSlug(*req.Slug, "")
		if err != nil {
			return nil, err
		}
		e.EventSlug = slug
	}
	if req.Description != nil {
		e.EventDescription = strings.TrimSpace(*req.Description)
	}
	if req.ClearDate {
		e.EventDate = nil
	} else if req.Date != nil {
		e.EventDate = req.Date
	}
	if req.Flow != nil {
		e.EventFlow = dto.ToFlow(*req.Flow)
	}
	if req.Status != nil {
		e.EventStatus = model.EventStatus(*req.Status)
	}
	if req.IsHidden != nil {
		e.EventIsHidden = *req.IsHidden
	}
	if req.IsPaid != nil {
		e.EventIsPaid = *req.IsPaid
	}
	if req.BasePrice != nil {
		e.EventBasePrice = *req.BasePrice
	}
	if req.AddonPricePerMember != nil {
		e.EventAddonPricePerMember = *req.AddonPricePerMember
	}
	if req.FamilyAllowed != nil {
		e.EventFamilyAllowed = *req.FamilyAllowed
	}

	if err := s.store.SaveEvent(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

/* ===================== LIFECYCLE ===================== */

func (s *EventService) Archive(ctx context.Context, id uuid.UUID) error {
	if err := s.store.ArchiveEvent(ctx, id, s.now()); err != nil {
		return err
	}
	log.Info().Str("event_id", id.String()).Msg("event archived")
	return nil
}

// Purge removes the event for good. Blobs are released after the transaction commits.
func (s *EventService) Purge(ctx context.Context, id uuid.UUID) (*model.PurgeResult, error) {
	res, err := s.store.PurgeEvent(ctx, id, s.now())
	if err != nil {
		return nil, err
	}
	keys := append(res.Event.BlobKeys(), res.ImageKeys...)
	for _, k := range keys {
		if err := helperOSS.ReleaseQuietly(s.blobs, k, s.uploadTimeout); err != nil {
			log.Warn().Err(err).Str("event_id", id.String()).Str("key", k).Msg("blob release after purge failed")
		}
	}
	log.Info().
		Str("event_id", id.String()).
		Int64("orphaned_registrations", res.OrphanedRegistrations).
		Int("released_blobs", len(keys)).
		Msg("event purged")
	return res, nil
}

/* ===================== MEDIA ===================== */

func (s *EventService) AttachPoster(ctx context.Context, id uuid.UUID, up helperOSS.Upload) (*model.EventModel, error) {
	return s.attach(ctx, id, up, "", func(e *model.EventModel, ref helperOSS.BlobRef) string {
		prev := e.EventPosterKey
		e.EventPosterURL, e.EventPosterKey = ref.URL, ref.Key
		return prev
	})
}

func (s *EventService) AttachQR(ctx context.Context, id uuid.UUID, up helperOSS.Upload) (*model.EventModel, error) {
	return s.attach(ctx, id, up, "qr", func(e *model.EventModel, ref helperOSS.BlobRef) string {
		prev := e.EventPaymentQRKey
		e.EventPaymentQRURL, e.EventPaymentQRKey = ref.URL, ref.Key
		return prev
	})
}

// attach uploads into the event folder and overwrites the stored reference (last write wins).
// set swaps the reference in and returns the previous key.
func (s *EventService) attach(ctx context.Context, id uuid.UUID, up helperOSS.Upload, sub string, set func(*model.EventModel, helperOSS.BlobRef) string) (*model.EventModel, error) {
	e, err := s.store.FindEventByID(ctx, id)
	if err != nil {
		return nil, err
	}
	folder := constants.FolderEventAssets + "/" + e.EventSlug
	if sub != "" {
		folder += "/" + sub
	}

	uctx, cancel := context.WithTimeout(ctx, s.uploadTimeout)
	defer cancel()
	ref, err := s.blobs.Upload(uctx, folder, up)
	if err != nil {
		return nil, asUpstream(err)
	}

	prevKey := set(e, ref)
	if err := s.store.SaveEvent(ctx, e); err != nil {
		_ = helperOSS.ReleaseQuietly(s.blobs, ref.Key, s.uploadTimeout)
		return nil, err
	}
	if prevKey != "" && prevKey != ref.Key {
		if err := helperOSS.ReleaseQuietly(s.blobs, prevKey, s.uploadTimeout); err != nil {
			log.Warn().Err(err).Str("event_id", id.String()).Str("key", prevKey).Msg("previous blob release failed")
		}
	}
	return e, nil
}

func asUpstream(err error) error {
	if apperror.KindOf(err) == apperror.KindUpstream {
		return err
	}
	return apperror.Upstream("blob upload failed", err)
}
