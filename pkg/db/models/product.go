package models

import (
	"time"

	"github.com/google/uuid"
)

// Product represents a single catalog listing. The image URL columns always
// point at live objects in the product-images bucket; the lifecycle service
// is the only writer of that association.
type Product struct {
	ID                uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Title             string    `gorm:"column:title;not null" json:"title"`
	YearLaunched      int       `gorm:"column:year_launched;not null" json:"year_launched"`
	PrimaryImageURL   string    `gorm:"column:primary_image_url;not null" json:"primary_image_url"`
	SecondaryImageURL *string   `gorm:"column:secondary_image_url" json:"secondary_image_url"`
	Category          *string   `gorm:"column:category" json:"category,omitempty"`
	DisplayOrder      int       `gorm:"column:display_order;not null;default:0" json:"display_order"`
	CreatedAt         time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
