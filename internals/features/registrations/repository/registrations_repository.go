package repository

import (
	"context"
	"errors"
	"time"

	database "arcevents_backend/internals/databases"
	"arcevents_backend/internals/features/registrations/model"
	"arcevents_backend/internals/helpers/apperror"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RegistrationRepository struct {
	db *gorm.DB
}

func NewRegistrationRepository(db *gorm.DB) *RegistrationRepository {
	return &RegistrationRepository{db: db}
}

// CreateRegistration is a plain INSERT; ux_registrations_event_subject decides who wins.
func (r *RegistrationRepository) CreateRegistration(ctx context.Context, reg *model.RegistrationModel) error {
	if err := r.db.WithContext(ctx).Create(reg).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return apperror.ErrAlreadyRegistered.WithErr(err)
		}
		return err
	}
	return nil
}

func (r *RegistrationRepository) FindRegistrationForSubject(ctx context.Context, eventID uuid.UUID, subjectID string) (*model.RegistrationModel, error) {
	var reg model.RegistrationModel
	err := r.db.WithContext(ctx).
		Where("registration_event_id = ? AND registration_subject_id = ?", eventID, subjectID).
		First(&reg).Error
	return found(&reg, err)
}

// FindRegistrationInEvent matches on both ids so a guessed id from another event is NotFound.
func (r *RegistrationRepository) FindRegistrationInEvent(ctx context.Context, eventID, registrationID uuid.UUID) (*model.RegistrationModel, error) {
	var reg model.RegistrationModel
	err := r.db.WithContext(ctx).
		Where("registration_id = ? AND registration_event_id = ?", registrationID, eventID).
		First(&reg).Error
	return found(&reg, err)
}

func (r *RegistrationRepository) FindRegistrationByID(ctx context.Context, registrationID uuid.UUID) (*model.RegistrationModel, error) {
	var reg model.RegistrationModel
	err := r.db.WithContext(ctx).
		Where("registration_id = ?", registrationID).
		First(&reg).Error
	return found(&reg, err)
}

func (r *RegistrationRepository) ListRegistrationsByIdentity(ctx context.Context, m model.IdentityMatcher) ([]model.RegistrationModel, error) {
	if m.IsEmpty() {
		return nil, nil
	}
	q := r.db.WithContext(ctx).Model(&model.RegistrationModel{})
	switch email := m.NormalizedEmail(); {
	case m.SubjectID != "" && email != "":
		q = q.Where("registration_subject_id = ? OR LOWER(registration_subject_email) = ?", m.SubjectID, email)
	case m.SubjectID != "":
		q = q.Where("registration_subject_id = ?", m.SubjectID)
	default:
		q = q.Where("LOWER(registration_subject_email) = ?", email)
	}
	var out []model.RegistrationModel
	err := q.Order("registration_created_at DESC").Find(&out).Error
	return out, err
}

func (r *RegistrationRepository) ListRegistrationsByEvent(ctx context.Context, eventID uuid.UUID) ([]model.RegistrationModel, error) {
	var out []model.RegistrationModel
	err := r.db.WithContext(ctx).
		Where("registration_event_id = ?", eventID).
		Order("registration_created_at DESC").
		Find(&out).Error
	return out, err
}

// SaveRegistrationStatus writes the status columns only. Concurrent writers: last one wins.
func (r *RegistrationRepository) SaveRegistrationStatus(ctx context.Context, reg *model.RegistrationModel) error {
	res := r.db.WithContext(ctx).
		Model(&model.RegistrationModel{}).
		Where("registration_id = ? AND registration_event_id = ?", reg.RegistrationID, reg.RegistrationEventID).
		Updates(map[string]any{
			"registration_status":      reg.RegistrationStatus,
			"registration_approved_by": reg.RegistrationApprovedBy,
			"registration_approved_at": reg.RegistrationApprovedAt,
			"registration_updated_at":  time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("registration")
	}
	return nil
}

func (r *RegistrationRepository) ClearRegistrationReceipt(ctx context.Context, registrationID uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Model(&model.RegistrationModel{}).
		Where("registration_id = ?", registrationID).
		Updates(map[string]any{
			"registration_receipt_url": "",
			"registration_receipt_key": "",
			"registration_updated_at":  time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("registration")
	}
	return nil
}

// CountRegistrations is a fresh aggregate; status nil counts every row of the event.
func (r *RegistrationRepository) CountRegistrations(ctx context.Context, eventID uuid.UUID, status *model.Status) (int64, error) {
	q := r.db.WithContext(ctx).
		Model(&model.RegistrationModel{}).
		Where("registration_event_id = ?", eventID)
	if status != nil {
		q = q.Where("registration_status = ?", *status)
	}
	var n int64
	err := q.Count(&n).Error
	return n, err
}

func found(reg *model.RegistrationModel, err error) (*model.RegistrationModel, error) {
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("registration")
		}
		return nil, err
	}
	return reg, nil
}
