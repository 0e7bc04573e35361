package service

import (
	"context"
	"strings"
	"time"

	"arcevents_backend/internals/constants"
	"arcevents_backend/internals/features/auth/session"
	eventModel "arcevents_backend/internals/features/events/model"
	"arcevents_backend/internals/features/registrations/dto"
	"arcevents_backend/internals/features/registrations/model"
	helper "arcevents_backend/internals/helpers"
	"arcevents_backend/internals/helpers/apperror"
	helperOSS "arcevents_backend/internals/helpers/oss"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

type Store interface {
	CreateRegistration(ctx context.Context, reg *model.RegistrationModel) error
	FindRegistrationForSubject(ctx context.Context, eventID uuid.UUID, subjectID string) (*model.RegistrationModel, error)
	FindRegistrationInEvent(ctx context.Context, eventID, registrationID uuid.UUID) (*model.RegistrationModel, error)
	FindRegistrationByID(ctx context.Context, registrationID uuid.UUID) (*model.RegistrationModel, error)
	ListRegistrationsByIdentity(ctx context.Context, m model.IdentityMatcher) ([]model.RegistrationModel, error)
	ListRegistrationsByEvent(ctx context.Context, eventID uuid.UUID) ([]model.RegistrationModel, error)
	SaveRegistrationStatus(ctx context.Context, reg *model.RegistrationModel) error
	ClearRegistrationReceipt(ctx context.Context, registrationID uuid.UUID) error
	CountRegistrations(ctx context.Context, eventID uuid.UUID, status *model.Status) (int64, error)
}

type EventFinder interface {
	FindActiveEventBySlug(ctx context.Context, slug string) (*eventModel.EventModel, error)
	FindActiveEventByID(ctx context.Context, id uuid.UUID) (*eventModel.EventModel, error)
	FindEventsByIDs(ctx context.Context, ids []uuid.UUID) ([]eventModel.EventModel, error)
}

type ControllerCounter interface {
	CountControllersForEvent(ctx context.Context, eventID uuid.UUID) (int64, error)
}

const MsgOutOfScope = "event is not in your approved list"

type RegistrationService struct {
	store         Store
	events        EventFinder
	controllers   ControllerCounter
	blobs         helperOSS.BlobStore
	uploadTimeout time.Duration
	now           func() time.Time
}

func NewRegistrationService(store Store, events EventFinder, controllers ControllerCounter, blobs helperOSS.BlobStore, uploadTimeout time.Duration) *RegistrationService {
	if uploadTimeout <= 0 {
		uploadTimeout = 20 * time.Second
	}
	return &RegistrationService{
		store:         store,
		events:        events,
		controllers:   controllers,
		blobs:         blobs,
		uploadTimeout: uploadTimeout,
		now:           time.Now,
	}
}

// WithClock swaps the time source used for approval stamps.
func (s *RegistrationService) WithClock(now func() time.Time) *RegistrationService {
	s.now = now
	return s
}

/* ===================== REGISTER ===================== */

// Register creates a PENDING registration. Nothing is persisted when the receipt upload fails,
// and uniqueness of (event, subject) is left to the store's unique index.
func (s *RegistrationService) Register(ctx context.Context, user session.UserSession, slug string, req dto.RegisterRequest, receipt *helperOSS.Upload) (*model.RegistrationModel, error) {
	if strings.TrimSpace(user.SubjectID) == "" {
		return nil, apperror.ErrUnauthenticated
	}
	ev, err := s.events.FindActiveEventBySlug(ctx, strings.TrimSpace(slug))
	if err != nil {
		return nil, err
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Batch = strings.TrimSpace(req.Batch)
	req.Contact = strings.TrimSpace(req.Contact)
	for i := range req.FamilyMembers {
		req.FamilyMembers[i].Name = strings.TrimSpace(req.FamilyMembers[i].Name)
		req.FamilyMembers[i].Relation = strings.TrimSpace(req.FamilyMembers[i].Relation)
	}
	if err := helper.ValidateStruct(req); err != nil {
		return nil, err
	}
	if len(req.FamilyMembers) > 0 && !ev.EventFamilyAllowed {
		return nil, apperror.ValidationField("family_members", "this event does not accept family members")
	}
	if ev.EventIsPaid && receipt == nil {
		return nil, apperror.ValidationField("receipt", "payment receipt is required for paid events")
	}

	amount := ev.ComputeAmount(len(req.FamilyMembers))
	if req.Amount != nil && *req.Amount != amount {
		log.Warn().
			Str("event_id", ev.EventID.String()).
			Str("subject_id", user.SubjectID).
			Int64("client_amount", *req.Amount).
			Int64("amount", amount).
			Msg("client amount differs from computed amount")
	}

	var ref helperOSS.BlobRef
	if ev.EventIsPaid && receipt != nil {
		uctx, cancel := context.WithTimeout(ctx, s.uploadTimeout)
		ref, err = s.blobs.Upload(uctx, constants.FolderEventReceipts, *receipt)
		cancel()
		if err != nil {
			log.Error().Err(err).Str("event_id", ev.EventID.String()).Msg("receipt upload failed")
			if apperror.KindOf(err) == apperror.KindUpstream {
				return nil, err
			}
			return nil, apperror.Upstream("receipt upload failed", err)
		}
	}

	family := req.FamilyMembers
	if family == nil {
		family = []model.FamilyMember{}
	}
	eventID := ev.EventID
	reg := &model.RegistrationModel{
		RegistrationID:            uuid.New(),
		RegistrationEventID:       &eventID,
		RegistrationEventSlug:     ev.EventSlug,
		RegistrationEventName:     ev.EventName,
		RegistrationSubjectID:     user.SubjectID,
		RegistrationSubjectEmail:  strings.ToLower(strings.TrimSpace(user.Email)),
		RegistrationName:          req.Name,
		RegistrationBatch:         req.Batch,
		RegistrationContact:       req.Contact,
		RegistrationFamilyMembers: family,
		RegistrationAmount:        amount,
		RegistrationReceiptURL:    ref.URL,
		RegistrationReceiptKey:    ref.Key,
		RegistrationStatus:        model.StatusPending,
	}
	if err := s.store.CreateRegistration(ctx, reg); err != nil {
		if !ref.IsZero() {
			if rerr := helperOSS.ReleaseQuietly(s.blobs, ref.Key, s.uploadTimeout); rerr != nil {
				log.Warn().Err(rerr).Str("key", ref.Key).Msg("receipt release failed")
			}
		}
		if apperror.KindOf(err) == apperror.KindConflict {
			log.Info().Str("event_id", eventID.String()).Str("subject_id", user.SubjectID).Msg("duplicate registration rejected")
			return nil, err
		}
		log.Error().Err(err).Str("event_id", eventID.String()).Msg("registration insert failed")
		return nil, err
	}

	log.Info().
		Str("event_id", eventID.String()).
		Str("registration_id", reg.RegistrationID.String()).
		Int64("amount", amount).
		Msg("registration created")
	return reg, nil
}

/* ===================== USER READS ===================== */

func (s *RegistrationService) GetMine(ctx context.Context, user session.UserSession, slug string) (*model.RegistrationModel, error) {
	ev, err := s.events.FindActiveEventBySlug(ctx, strings.TrimSpace(slug))
	if err != nil {
		return nil, err
	}
	return s.store.FindRegistrationForSubject(ctx, ev.EventID, user.SubjectID)
}

// ListMine matches by subject or email and overlays the current event name/slug when the event
// still exists. Orphaned rows keep their snapshot. event_is_deleted marks archived or purged events.
func (s *RegistrationService) ListMine(ctx context.Context, user session.UserSession) ([]dto.MyRegistration, error) {
	m := model.IdentityMatcher{SubjectID: user.SubjectID, Email: user.Email}
	if m.IsEmpty() {
		return nil, apperror.ErrUnauthenticated
	}
	rows, err := s.store.ListRegistrationsByIdentity(ctx, m)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(rows))
	seen := make(map[uuid.UUID]struct{}, len(rows))
	for i := range rows {
		if id := rows[i].RegistrationEventID; id != nil {
			if _, ok := seen[*id]; !ok {
				seen[*id] = struct{}{}
				ids = append(ids, *id)
			}
		}
	}
	events, err := s.events.FindEventsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*eventModel.EventModel, len(events))
	for i := range events {
		byID[events[i].EventID] = &events[i]
	}

	out := make([]dto.MyRegistration, 0, len(rows))
	for i := range rows {
		item := dto.MyRegistration{
			RegistrationModel: rows[i],
			EventName:         rows[i].RegistrationEventName,
			EventSlug:         rows[i].RegistrationEventSlug,
			EventIsDeleted:    rows[i].EventGone(),
		}
		if id := rows[i].RegistrationEventID; id != nil {
			if ev, ok := byID[*id]; ok {
				item.EventName, item.EventSlug = ev.EventName, ev.EventSlug
				item.EventIsDeleted = item.EventIsDeleted || ev.EventIsDeleted
			} else {
				item.EventIsDeleted = true
			}
		}
		out = append(out, item)
	}
	return out, nil
}

/* ===================== REVIEW ===================== */

// SetStatus moves a registration of eventID to target. A registration id from another event is NotFound.
func (s *RegistrationService) SetStatus(ctx context.Context, admin session.AdminSession, eventID, registrationID uuid.UUID, target model.Status) (*model.RegistrationModel, error) {
	reg, err := s.store.FindRegistrationInEvent(ctx, eventID, registrationID)
	if err != nil {
		return nil, err
	}
	action, err := model.ActionFor(reg.RegistrationStatus, target)
	if err != nil {
		return nil, err
	}
	from := reg.RegistrationStatus
	if err := model.Transition(reg, action, admin.AdminID, s.now()); err != nil {
		return nil, err
	}
	if err := s.store.SaveRegistrationStatus(ctx, reg); err != nil {
		return nil, err
	}
	log.Info().
		Str("role", admin.Role()).
		Str("actor_id", admin.AdminID.String()).
		Str("registration_id", registrationID.String()).
		Str("from", string(from)).
		Str("to", string(reg.RegistrationStatus)).
		Msg("registration status changed")
	return reg, nil
}

// ReleaseReceipt deletes the receipt blob and clears the reference on the row. Orphaned rows
// are included. A registration without a receipt comes back unchanged.
func (s *RegistrationService) ReleaseReceipt(ctx context.Context, registrationID uuid.UUID) (*model.RegistrationModel, error) {
	reg, err := s.store.FindRegistrationByID(ctx, registrationID)
	if err != nil {
		return nil, err
	}
	if reg.RegistrationReceiptKey == "" && reg.RegistrationReceiptURL == "" {
		return reg, nil
	}
	if key := reg.RegistrationReceiptKey; key != "" {
		if err := helperOSS.ReleaseQuietly(s.blobs, key, s.uploadTimeout); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("receipt release failed")
		}
	}
	if err := s.store.ClearRegistrationReceipt(ctx, registrationID); err != nil {
		return nil, err
	}
	reg.RegistrationReceiptURL, reg.RegistrationReceiptKey = "", ""
	log.Info().Str("registration_id", registrationID.String()).Msg("receipt released")
	return reg, nil
}

// ListForEvent: admins see everything; controllers only inside their approved scope,
// checked before the event is even looked at.
func (s *RegistrationService) ListForEvent(ctx context.Context, actor session.Session, eventID uuid.UUID) ([]model.RegistrationModel, error) {
	switch a := actor.(type) {
	case session.AdminSession:
	case session.ControllerSession:
		if !a.CanSee(eventID) {
			log.Warn().
				Str("role", a.Role()).
				Str("actor_id", a.ControllerID.String()).
				Str("event_id", eventID.String()).
				Msg("controller outside approved scope")
			return nil, apperror.Forbidden(MsgOutOfScope)
		}
	case session.UserSession:
		return nil, apperror.Forbidden(constants.RoleErrorAdmin("event registrations"))
	default:
		return nil, apperror.ErrForbidden
	}
	rows, err := s.store.ListRegistrationsByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []model.RegistrationModel{}
	}
	return rows, nil
}

/* ===================== STATS ===================== */

// CountsForEvent issues independent COUNTs concurrently. Nothing is cached.
func (s *RegistrationService) CountsForEvent(ctx context.Context, eventID uuid.UUID) (dto.Counts, error) {
	var out dto.Counts
	approved, pending, rejected := model.StatusApproved, model.StatusPending, model.StatusRejected

	g, gctx := errgroup.WithContext(ctx)
	count := func(dst *int64, st *model.Status) {
		g.Go(func() error {
			n, err := s.store.CountRegistrations(gctx, eventID, st)
			if err != nil {
				return err
			}
			*dst = n
			return nil
		})
	}
	count(&out.Total, nil)
	count(&out.Approved, &approved)
	count(&out.Pending, &pending)
	count(&out.Rejected, &rejected)
	if err := g.Wait(); err != nil {
		return dto.Counts{}, err
	}
	return out, nil
}

func (s *RegistrationService) AdminStats(ctx context.Context, eventID uuid.UUID) (*dto.AdminStats, error) {
	if _, err := s.events.FindActiveEventByID(ctx, eventID); err != nil {
		return nil, err
	}
	var (
		counts      dto.Counts
		controllers int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		counts, err = s.CountsForEvent(gctx, eventID)
		return err
	})
	g.Go(func() error {
		var err error
		controllers, err = s.controllers.CountControllersForEvent(gctx, eventID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &dto.AdminStats{EventID: eventID, Counts: counts, Controllers: controllers}, nil
}

// ControllerDashboard lists the controller's approved events that still exist, with counts.
func (s *RegistrationService) ControllerDashboard(ctx context.Context, c session.ControllerSession) ([]dto.DashboardEvent, error) {
	events, err := s.events.FindEventsByIDs(ctx, c.ApprovedEvents)
	if err != nil {
		return nil, err
	}
	out := make([]dto.DashboardEvent, len(events))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i := range events {
		i := i
		ev := &events[i]
		out[i] = dto.DashboardEvent{
			EventID:   ev.EventID,
			Name:      ev.EventName,
			Slug:      ev.EventSlug,
			Status:    string(ev.EventStatus),
			Date:      ev.EventDate,
			IsDeleted: ev.EventIsDeleted,
		}
		g.Go(func() error {
			counts, err := s.CountsForEvent(gctx, out[i].EventID)
			if err != nil {
				return err
			}
			out[i].Counts = counts
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
