package aggregates

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/splitcpg/splitcpg-backend/internal/types"
)

// SplitAggregateContract: all split mutations are single-row compare-and-set
// writes; listing/filtering stays on the split repo.
var SplitAggregateContract = Contract{
	Name:             "Split",
	WriteTxOwnership: WriteTxOwnedByAggregate,
	ReadPolicy:       ReadPolicyInvariantScoped,
	Notes:            "slot accounting is guarded by the version column; last-slot joins must lose the race, never oversubscribe",
}

type CreateSplitInput struct {
	OrganizerID   uuid.UUID
	Title         string
	Type          string
	Description   string
	Location      string
	VendorName    string
	VendorDetails string
	EventDate     *time.Time
	Deadline      *time.Time
	TotalCost     int64
	Slots         int
}

type ApplyPaymentInput struct {
	SplitID          uuid.UUID
	CompanyID        uuid.UUID
	PaymentReference string
}

// SplitAggregate owns a split's slot accounting and status lifecycle. Every
// method either returns the post-mutation state or a *Error whose Reason
// names the rejected condition.
type SplitAggregate interface {
	Aggregate

	// Create validates input, computes costPerSlot = ceil(totalCost/slots)
	// and seeds the organizer as the first (unpaid) participant.
	Create(ctx context.Context, in CreateSplitInput) (*types.Split, error)

	// Join appends a participant while the split is open; filling the last
	// slot flips status to full.
	Join(ctx context.Context, splitID, companyID uuid.UUID) (*types.Split, error)

	// Leave removes an unpaid, non-organizer participant and reopens the
	// split.
	Leave(ctx context.Context, splitID, companyID uuid.UUID) (*types.Split, error)

	// Cancel is organizer-only, open-only, and refused while any participant
	// has paid.
	Cancel(ctx context.Context, splitID, requesterID uuid.UUID) (*types.Split, error)

	// Delete destroys the split. Organizer-only in any state.
	Delete(ctx context.Context, splitID, requesterID uuid.UUID) error

	// ApplyPayment marks a non-organizer participant paid while the split is
	// full, completing the split once every non-organizer has paid.
	// Reapplying a participant's own payment reference is a no-op.
	ApplyPayment(ctx context.Context, in ApplyPaymentInput) (*types.Split, error)
}
