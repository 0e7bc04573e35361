package model

import (
	"time"

	"github.com/google/uuid"
)

type ImageModel struct {
	ImageID        uuid.UUID  `gorm:"column:image_id;type:uuid;default:gen_random_uuid();primaryKey" json:"image_id"`
	ImageEventID   *uuid.UUID `gorm:"column:image_event_id;type:uuid;index:idx_images_event_position,priority:1" json:"image_event_id,omitempty"`
	ImageURL       string     `gorm:"column:image_url;type:text;not null"                                        json:"image_url"`
	ImageObjectKey string     `gorm:"column:image_object_key;type:text;not null"                                 json:"-"`
	ImageCategory  string     `gorm:"column:image_category;type:varchar(40);not null;index"                      json:"image_category"`
	ImagePosition  int        `gorm:"column:image_position;not null;default:0;index:idx_images_event_position,priority:2" json:"image_position"`
	ImageCreatedAt time.Time  `gorm:"column:image_created_at;type:timestamptz;autoCreateTime"                    json:"image_created_at"`
}

func (ImageModel) TableName() string {
	return "images"
}
