// internals/features/events/repository/events_repository.go
package repository

import (
	"context"
	"errors"
	"time"

	database "arcevents_backend/internals/databases"
	"arcevents_backend/internals/features/events/model"
	"arcevents_backend/internals/helpers/apperror"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) CreateEvent(ctx context.Context, e *model.EventModel) error {
	if err := r.db.WithContext(ctx).Create(e).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return apperror.ErrDuplicateSlug.WithErr(err)
		}
		return err
	}
	return nil
}

// ListEvents: admin view, archived rows included.
func (r *EventRepository) ListEvents(ctx context.Context) ([]model.EventModel, error) {
	var out []model.EventModel
	err := r.db.WithContext(ctx).Order("event_created_at DESC").Find(&out).Error
	return out, err
}

func (r *EventRepository) ListPublicEvents(ctx context.Context) ([]model.EventModel, error) {
	var out []model.EventModel
	err := r.db.WithContext(ctx).
		Where("event_status = ? AND event_is_hidden = false AND event_is_deleted = false", model.EventStatusLive).
		Order("event_created_at DESC").
		Find(&out).Error
	return out, err
}

func (r *EventRepository) FindEventByID(ctx context.Context, id uuid.UUID) (*model.EventModel, error) {
	var e model.EventModel
	err := r.db.WithContext(ctx).Where("event_id = ?", id).First(&e).Error
	return found(&e, err)
}

func (r *EventRepository) FindActiveEventByID(ctx context.Context, id uuid.UUID) (*model.EventModel, error) {
	var e model.EventModel
	err := r.db.WithContext(ctx).
		Where("event_id = ? AND event_is_deleted = false", id).
		First(&e).Error
	return found(&e, err)
}

func (r *EventRepository) FindActiveEventBySlug(ctx context.Context, slug string) (*model.EventModel, error) {
	var e model.EventModel
	err := r.db.WithContext(ctx).
		Where("LOWER(event_slug) = LOWER(?) AND event_is_deleted = false", slug).
		First(&e).Error
	return found(&e, err)
}

func (r *EventRepository) FindEventsByIDs(ctx context.Context, ids []uuid.UUID) ([]model.EventModel, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var out []model.EventModel
	err := r.db.WithContext(ctx).
		Where("event_id IN ?", ids).
		Order("event_created_at DESC").
		Find(&out).Error
	return out, err
}

// SaveEvent writes every editable column. Last write wins.
func (r *EventRepository) SaveEvent(ctx context.Context, e *model.EventModel) error {
	res := r.db.WithContext(ctx).
		Model(&model.EventModel{}).
		Where("event_id = ?", e.EventID).
		Updates(map[string]any{
			"event_name":                   e.EventName,
			"event_slug":                   e.EventSlug,
			"event_description":            e.EventDescription,
			"event_date":                   e.EventDate,
			"event_flow":                   e.EventFlow,
			"event_status":                 e.EventStatus,
			"event_is_hidden":              e.EventIsHidden,
			"event_is_paid":                e.EventIsPaid,
			"event_base_price":             e.EventBasePrice,
			"event_addon_price_per_member": e.EventAddonPricePerMember,
			"event_family_allowed":         e.EventFamilyAllowed,
			"event_poster_url":             e.EventPosterURL,
			"event_poster_key":             e.EventPosterKey,
			"event_payment_qr_url":         e.EventPaymentQRURL,
			"event_payment_qr_key":         e.EventPaymentQRKey,
			"event_updated_at":             time.Now(),
		})
	if res.Error != nil {
		if database.IsUniqueViolation(res.Error) {
			return apperror.ErrDuplicateSlug.WithErr(res.Error)
		}
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("event")
	}
	return nil
}

// ArchiveEvent soft-deletes and stamps registration_orphaned_at on the event's registrations
// in the same transaction. The event reference itself stays so admins can still review them.
// A second call finds nothing to archive and reports NotFound.
func (r *EventRepository) ArchiveEvent(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.EventModel{}).
			Where("event_id = ? AND event_is_deleted = false", id).
			Updates(map[string]any{
				"event_is_deleted": true,
				"event_deleted_at": at,
				"event_updated_at": at,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperror.NotFound("event")
		}
		return tx.Table("registrations").
			Where("registration_event_id = ? AND registration_orphaned_at IS NULL", id).
			Updates(map[string]any{
				"registration_orphaned_at": at,
				"registration_updated_at":  at,
			}).Error
	})
}

// PurgeEvent hard-deletes in one transaction: registrations are orphaned (snapshots kept),
// gallery rows removed, then the event row itself.
func (r *EventRepository) PurgeEvent(ctx context.Context, id uuid.UUID, at time.Time) (*model.PurgeResult, error) {
	var out model.PurgeResult
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ev model.EventModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("event_id = ?", id).
			First(&ev).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("event")
			}
			return err
		}

		var keys []string
		if err := tx.Table("images").
			Where("image_event_id = ?", id).
			Pluck("image_object_key", &keys).Error; err != nil {
			return err
		}

		res := tx.Table("registrations").
			Where("registration_event_id = ?", id).
			Updates(map[string]any{
				"registration_event_id":    nil,
				"registration_orphaned_at": at,
				"registration_updated_at":  at,
			})
		if res.Error != nil {
			return res.Error
		}

		if err := tx.Exec("DELETE FROM images WHERE image_event_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Where("event_id = ?", id).Delete(&model.EventModel{}).Error; err != nil {
			return err
		}

		out = model.PurgeResult{Event: ev, ImageKeys: keys, OrphanedRegistrations: res.RowsAffected}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func found(e *model.EventModel, err error) (*model.EventModel, error) {
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("event")
		}
		return nil, err
	}
	return e, nil
}
