package database

import (
	accountModel "arcevents_backend/internals/features/accounts/model"
	eventModel "arcevents_backend/internals/features/events/model"
	galleryModel "arcevents_backend/internals/features/gallery/model"
	registrationModel "arcevents_backend/internals/features/registrations/model"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Indexes GORM tags cannot express.
var rawIndexes = []string{
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_events_slug_active
		ON events (LOWER(event_slug)) WHERE event_is_deleted = false`,
	`CREATE INDEX IF NOT EXISTS idx_events_public
		ON events (event_created_at DESC) WHERE event_status = 'LIVE' AND event_is_hidden = false AND event_is_deleted = false`,
	`CREATE INDEX IF NOT EXISTS idx_controllers_approved_events
		ON controllers USING GIN (controller_approved_events)`,
}

func Migrate(db *gorm.DB) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto`).Error; err != nil {
		log.Warn().Err(err).Msg("pgcrypto extension (gen_random_uuid) not created")
	}
	if err := db.AutoMigrate(
		&accountModel.AdminModel{},
		&accountModel.ControllerModel{},
		&eventModel.EventModel{},
		&registrationModel.RegistrationModel{},
		&galleryModel.ImageModel{},
	); err != nil {
		return err
	}
	for _, stmt := range rawIndexes {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	log.Info().Msg("✅ migrations applied")
	return nil
}
