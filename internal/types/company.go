package types

import (
	"time"

	"github.com/google/uuid"
)

// Company is a directory profile referenced by splits. UserID is the external
// identity that owns the profile. StripeConnectID/StripeOnboarded track the
// payment-processor onboarding state used to gate payment initiation.
type Company struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name            string    `gorm:"column:name;not null" json:"name"`
	LogoURL         string    `gorm:"column:logo_url" json:"logoUrl,omitempty"`
	Category        string    `gorm:"column:category;not null;default:other" json:"category"`
	Description     string    `gorm:"column:description" json:"description"`
	Location        string    `gorm:"column:location" json:"location"`
	Website         string    `gorm:"column:website" json:"website"`
	UserID          uuid.UUID `gorm:"type:uuid;not null;index" json:"userId"`
	StripeConnectID string    `gorm:"column:stripe_connect_id" json:"stripeConnectId,omitempty"`
	StripeOnboarded bool      `gorm:"column:stripe_onboarded;not null;default:false" json:"stripeOnboarded"`
	CreatedAt       time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt       time.Time `gorm:"not null" json:"updatedAt"`
}

func (Company) TableName() string { return "company" }
