package types

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Split statuses. A split is created open, becomes full when the last slot
// fills, completes when every non-organizer participant has paid, and may be
// cancelled by the organizer while still open.
const (
	SplitStatusOpen      = "open"
	SplitStatusFull      = "full"
	SplitStatusCompleted = "completed"
	SplitStatusCancelled = "cancelled"
)

// Split categories.
const (
	SplitTypeContent = "content"
	SplitTypeHousing = "housing"
	SplitTypePopup   = "popup"
	SplitTypeOther   = "other"
)

var splitTypes = map[string]bool{
	SplitTypeContent: true,
	SplitTypeHousing: true,
	SplitTypePopup:   true,
	SplitTypeOther:   true,
}

func ValidSplitType(t string) bool { return splitTypes[t] }

// Participant is one company's slot in a split, stored inside the split's
// participants JSON column. PaymentReference is the processor's payment id
// once the participant has paid.
type Participant struct {
	CompanyID        uuid.UUID  `json:"companyId"`
	JoinedAt         time.Time  `json:"joinedAt"`
	Paid             bool       `json:"paid"`
	PaidAt           *time.Time `json:"paidAt,omitempty"`
	PaymentReference string     `json:"paymentReference,omitempty"`
}

type Split struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Title         string         `gorm:"column:title;not null" json:"title"`
	Type          string         `gorm:"column:type;not null;index" json:"type"`
	Description   string         `gorm:"column:description" json:"description"`
	Location      string         `gorm:"column:location" json:"location"`
	VendorName    string         `gorm:"column:vendor_name" json:"vendorName,omitempty"`
	VendorDetails string         `gorm:"column:vendor_details" json:"vendorDetails,omitempty"`
	EventDate     *time.Time     `gorm:"column:event_date" json:"eventDate,omitempty"`
	Deadline      *time.Time     `gorm:"column:deadline" json:"deadline,omitempty"`
	TotalCost     int64          `gorm:"column:total_cost;not null" json:"totalCost"`
	CostPerSlot   int64          `gorm:"column:cost_per_slot;not null" json:"costPerSlot"`
	Slots         int            `gorm:"column:slots;not null" json:"slots"`
	FilledSlots   int            `gorm:"column:filled_slots;not null;default:0" json:"filledSlots"`
	OrganizerID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"organizerId"`
	Participants  datatypes.JSON `gorm:"column:participants;type:jsonb" json:"participants"`
	Status        string         `gorm:"column:status;not null;index" json:"status"`
	Version       int            `gorm:"column:version;not null;default:0" json:"-"`
	CreatedAt     time.Time      `gorm:"not null" json:"createdAt"`
	UpdatedAt     time.Time      `gorm:"not null" json:"updatedAt"`
}

func (Split) TableName() string { return "split" }

// ParticipantList decodes the participants column. A nil column decodes to an
// empty list.
func (s *Split) ParticipantList() ([]Participant, error) {
	if len(s.Participants) == 0 {
		return []Participant{}, nil
	}
	var out []Participant
	if err := json.Unmarshal(s.Participants, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SetParticipants encodes the list back into the participants column.
func (s *Split) SetParticipants(ps []Participant) error {
	raw, err := json.Marshal(ps)
	if err != nil {
		return err
	}
	s.Participants = datatypes.JSON(raw)
	return nil
}

// FindParticipant returns the participant entry for a company, or nil.
func FindParticipant(ps []Participant, companyID uuid.UUID) *Participant {
	for i := range ps {
		if ps[i].CompanyID == companyID {
			return &ps[i]
		}
	}
	return nil
}
