package repository

import (
	"context"
	"errors"

	"arcevents_backend/internals/features/gallery/model"
	"arcevents_backend/internals/helpers/apperror"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ImageRepository struct {
	db *gorm.DB
}

func NewImageRepository(db *gorm.DB) *ImageRepository {
	return &ImageRepository{db: db}
}

func (r *ImageRepository) CreateImage(ctx context.Context, img *model.ImageModel) error {
	return r.db.WithContext(ctx).Create(img).Error
}

// ListGlobalImages returns home images (no event). Empty category means all of them.
func (r *ImageRepository) ListGlobalImages(ctx context.Context, category string) ([]model.ImageModel, error) {
	q := r.db.WithContext(ctx).Where("image_event_id IS NULL")
	if category != "" {
		q = q.Where("image_category = ?", category)
	}
	var out []model.ImageModel
	err := q.Order("image_created_at DESC").Find(&out).Error
	return out, err
}

func (r *ImageRepository) ListEventImages(ctx context.Context, eventID uuid.UUID) ([]model.ImageModel, error) {
	var out []model.ImageModel
	err := r.db.WithContext(ctx).
		Where("image_event_id = ?", eventID).
		Order("image_position ASC, image_created_at ASC").
		Find(&out).Error
	return out, err
}

func (r *ImageRepository) NextEventImagePosition(ctx context.Context, eventID uuid.UUID) (int, error) {
	var next int
	err := r.db.WithContext(ctx).
		Model(&model.ImageModel{}).
		Where("image_event_id = ?", eventID).
		Select("COALESCE(MAX(image_position) + 1, 0)").
		Scan(&next).Error
	return next, err
}

// DeleteEventImage removes the image only if it belongs to eventID; (nil, nil) otherwise.
func (r *ImageRepository) DeleteEventImage(ctx context.Context, eventID, imageID uuid.UUID) (*model.ImageModel, error) {
	var img model.ImageModel
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("image_id = ? AND image_event_id = ?", imageID, eventID).First(&img).Error; err != nil {
			return err
		}
		return tx.Where("image_id = ?", imageID).Delete(&model.ImageModel{}).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &img, nil
}

func (r *ImageRepository) DeleteGlobalImage(ctx context.Context, imageID uuid.UUID) (*model.ImageModel, error) {
	var img model.ImageModel
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("image_id = ? AND image_event_id IS NULL", imageID).First(&img).Error; err != nil {
			return err
		}
		return tx.Where("image_id = ?", imageID).Delete(&model.ImageModel{}).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("image")
	}
	if err != nil {
		return nil, err
	}
	return &img, nil
}
