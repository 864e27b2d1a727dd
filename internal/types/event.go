package types

import (
	"time"

	"github.com/google/uuid"
)

// Event is a directory entry for trade shows and popups that splits are
// commonly organized around. Source/SourceID dedupe imports from external
// calendars.
type Event struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string     `gorm:"column:name;not null" json:"name"`
	Description string     `gorm:"column:description" json:"description"`
	Date        time.Time  `gorm:"column:date;not null;index" json:"date"`
	EndDate     *time.Time `gorm:"column:end_date" json:"endDate,omitempty"`
	Location    string     `gorm:"column:location" json:"location"`
	City        string     `gorm:"column:city" json:"city"`
	Type        string     `gorm:"column:type;not null;default:trade_show" json:"type"`
	URL         string     `gorm:"column:url" json:"url,omitempty"`
	Source      string     `gorm:"column:source;not null;default:manual;index" json:"source"`
	SourceID    string     `gorm:"column:source_id;index" json:"sourceId,omitempty"`
	ImageURL    string     `gorm:"column:image_url" json:"imageUrl,omitempty"`
	CreatedAt   time.Time  `gorm:"not null" json:"createdAt"`
}

func (Event) TableName() string { return "event" }
