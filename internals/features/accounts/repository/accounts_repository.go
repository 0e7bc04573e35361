// internals/features/accounts/repository/accounts_repository.go
package repository

import (
	"context"
	"errors"

	database "arcevents_backend/internals/databases"
	"arcevents_backend/internals/features/accounts/model"
	"arcevents_backend/internals/helpers/apperror"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AccountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

/* ====================== ADMIN ====================== */

func (r *AccountRepository) CreateAdmin(ctx context.Context, a *model.AdminModel) error {
	if err := r.db.WithContext(ctx).Create(a).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return apperror.ErrDuplicateUsername.WithErr(err)
		}
		return err
	}
	return nil
}

func (r *AccountRepository) FindAdminByUsername(ctx context.Context, username string) (*model.AdminModel, error) {
	var a model.AdminModel
	err := r.db.WithContext(ctx).Where("admin_username = ?", username).First(&a).Error
	return found(&a, err, "admin")
}

func (r *AccountRepository) FindAdminByID(ctx context.Context, id uuid.UUID) (*model.AdminModel, error) {
	var a model.AdminModel
	err := r.db.WithContext(ctx).Where("admin_id = ?", id).First(&a).Error
	return found(&a, err, "admin")
}

/* ====================== CONTROLLER ====================== */

func (r *AccountRepository) CreateController(ctx context.Context, c *model.ControllerModel) error {
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return apperror.ErrDuplicateUsername.WithErr(err)
		}
		return err
	}
	return nil
}

func (r *AccountRepository) FindControllerByUsername(ctx context.Context, username string) (*model.ControllerModel, error) {
	var c model.ControllerModel
	err := r.db.WithContext(ctx).Where("controller_username = ?", username).First(&c).Error
	return found(&c, err, "controller")
}

func (r *AccountRepository) FindControllerByID(ctx context.Context, id uuid.UUID) (*model.ControllerModel, error) {
	var c model.ControllerModel
	err := r.db.WithContext(ctx).Where("controller_id = ?", id).First(&c).Error
	return found(&c, err, "controller")
}

func (r *AccountRepository) ListControllers(ctx context.Context, active bool) ([]model.ControllerModel, error) {
	var out []model.ControllerModel
	err := r.db.WithContext(ctx).
		Where("controller_is_active = ?", active).
		Order("controller_created_at DESC").
		Find(&out).Error
	return out, err
}

// SaveController writes the mutable columns. Last write wins.
func (r *AccountRepository) SaveController(ctx context.Context, c *model.ControllerModel) error {
	res := r.db.WithContext(ctx).
		Model(&model.ControllerModel{}).
		Where("controller_id = ?", c.ControllerID).
		Updates(map[string]any{
			"controller_is_active":         c.ControllerIsActive,
			"controller_approved_events":   c.ControllerApprovedEvents,
			"controller_requested_events":  c.ControllerRequestedEvents,
			"controller_approved_by_admin": c.ControllerApprovedByAdmin,
			"controller_updated_at":        gorm.Expr("NOW()"),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("controller")
	}
	return nil
}

func (r *AccountRepository) CountControllersForEvent(ctx context.Context, eventID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.ControllerModel{}).
		Where("controller_is_active = true AND ?::uuid = ANY(controller_approved_events)", eventID).
		Count(&n).Error
	return n, err
}

func found[T any](v *T, err error, what string) (*T, error) {
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound(what)
		}
		return nil, err
	}
	return v, nil
}
