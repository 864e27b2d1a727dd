package aggregates

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/splitcpg/splitcpg-backend/internal/data/repos"
	domainagg "github.com/splitcpg/splitcpg-backend/internal/domain/aggregates"
	"github.com/splitcpg/splitcpg-backend/internal/pkg/dbctx"
	"github.com/splitcpg/splitcpg-backend/internal/types"
)

const splitTable = "split"

type SplitAggregateDeps struct {
	Base BaseDeps

	Splits repos.SplitRepo
}

type splitAggregate struct {
	deps SplitAggregateDeps
	now  func() time.Time
}

func NewSplitAggregate(deps SplitAggregateDeps) domainagg.SplitAggregate {
	deps.Base = deps.Base.withDefaults()
	return &splitAggregate{deps: deps, now: func() time.Time { return time.Now().UTC() }}
}

func (a *splitAggregate) Contract() domainagg.Contract {
	return domainagg.SplitAggregateContract
}

func (a *splitAggregate) Create(ctx context.Context, in domainagg.CreateSplitInput) (*types.Split, error) {
	const op = "Split.Create"
	if in.OrganizerID == uuid.Nil {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "missing organizer_id", nil)
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "title is required", nil)
	}
	if !types.ValidSplitType(in.Type) {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, fmt.Sprintf("invalid split type %q", in.Type), nil)
	}
	if in.TotalCost <= 0 {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "total_cost must be positive", nil)
	}
	if in.Slots < 2 {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "slots must be at least 2", nil)
	}
	if a.deps.Splits == nil {
		return nil, domainagg.NewError(domainagg.CodeInternal, op, "split aggregate repos not configured", nil)
	}

	now := a.now()
	split := &types.Split{
		ID:            uuid.New(),
		Title:         strings.TrimSpace(in.Title),
		Type:          in.Type,
		Description:   in.Description,
		Location:      in.Location,
		VendorName:    in.VendorName,
		VendorDetails: in.VendorDetails,
		EventDate:     in.EventDate,
		Deadline:      in.Deadline,
		TotalCost:     in.TotalCost,
		CostPerSlot:   ceilDiv(in.TotalCost, int64(in.Slots)),
		Slots:         in.Slots,
		FilledSlots:   1,
		OrganizerID:   in.OrganizerID,
		Status:        types.SplitStatusOpen,
		Version:       0,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := split.SetParticipants([]types.Participant{{
		CompanyID: in.OrganizerID,
		JoinedAt:  now,
		Paid:      false,
	}}); err != nil {
		return nil, domainagg.Wrap(domainagg.CodeInternal, op, err)
	}

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		_, err := a.deps.Splits.Create(dbc, split)
		return err
	})
	if err != nil {
		return nil, err
	}
	return split, nil
}

func (a *splitAggregate) Join(ctx context.Context, splitID, companyID uuid.UUID) (*types.Split, error) {
	const op = "Split.Join"
	if err := a.requireIDs(op, splitID, companyID); err != nil {
		return nil, err
	}

	var out *types.Split
	err := executeWriteRetry(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		split, participants, err := a.load(dbc, op, splitID)
		if err != nil {
			return err
		}
		if split.Status != types.SplitStatusOpen {
			return domainagg.NewReason(domainagg.CodeConflict, op, domainagg.ReasonNotOpen,
				"split is no longer accepting participants")
		}
		if types.FindParticipant(participants, companyID) != nil {
			return domainagg.NewReason(domainagg.CodeConflict, op, domainagg.ReasonAlreadyJoined,
				"company already joined this split")
		}
		if split.FilledSlots >= split.Slots {
			return domainagg.NewReason(domainagg.CodeConflict, op, domainagg.ReasonNoSlotsAvailable,
				"no slots available")
		}

		now := a.now()
		participants = append(participants, types.Participant{
			CompanyID: companyID,
			JoinedAt:  now,
			Paid:      false,
		})
		split.FilledSlots++
		if split.FilledSlots >= split.Slots {
			split.Status = types.SplitStatusFull
		}
		out = split
		return a.commit(dbc, op, split, participants, now)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (a *splitAggregate) Leave(ctx context.Context, splitID, companyID uuid.UUID) (*types.Split, error) {
	const op = "Split.Leave"
	if err := a.requireIDs(op, splitID, companyID); err != nil {
		return nil, err
	}

	var out *types.Split
	err := executeWriteRetry(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		split, participants, err := a.load(dbc, op, splitID)
		if err != nil {
			return err
		}
		if companyID == split.OrganizerID {
			return domainagg.NewReason(domainagg.CodePreconditionFailed, op, domainagg.ReasonOrganizerCannotLeave,
				"organizer cannot leave; cancel the split instead")
		}
		if split.Status == types.SplitStatusCancelled || split.Status == types.SplitStatusCompleted {
			return domainagg.NewReason(domainagg.CodeConflict, op, domainagg.ReasonNotOpen,
				"split is "+split.Status)
		}
		p := types.FindParticipant(participants, companyID)
		if p == nil {
			return domainagg.NewReason(domainagg.CodeConflict, op, domainagg.ReasonNotParticipant,
				"company is not a participant in this split")
		}
		if p.Paid {
			return domainagg.NewReason(domainagg.CodeConflict, op, domainagg.ReasonAlreadyPaid,
				"cannot leave after payment")
		}

		kept := make([]types.Participant, 0, len(participants)-1)
		for _, entry := range participants {
			if entry.CompanyID != companyID {
				kept = append(kept, entry)
			}
		}
		split.FilledSlots--
		// Leaving always reopens the split, even when it had been full.
		split.Status = types.SplitStatusOpen
		out = split
		return a.commit(dbc, op, split, kept, a.now())
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (a *splitAggregate) Cancel(ctx context.Context, splitID, requesterID uuid.UUID) (*types.Split, error) {
	const op = "Split.Cancel"
	if err := a.requireIDs(op, splitID, requesterID); err != nil {
		return nil, err
	}

	var out *types.Split
	err := executeWriteRetry(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		split, participants, err := a.load(dbc, op, splitID)
		if err != nil {
			return err
		}
		if requesterID != split.OrganizerID {
			return domainagg.NewReason(domainagg.CodePreconditionFailed, op, domainagg.ReasonNotOrganizer,
				"only the organizer can cancel")
		}
		if split.Status != types.SplitStatusOpen {
			return domainagg.NewReason(domainagg.CodeConflict, op, domainagg.ReasonNotOpen,
				"only open splits can be cancelled")
		}
		for _, p := range participants {
			if p.Paid {
				return domainagg.NewReason(domainagg.CodeConflict, op, domainagg.ReasonHasPaidParticipants,
					"cannot cancel while participants have paid")
			}
		}

		split.Status = types.SplitStatusCancelled
		out = split
		return a.commit(dbc, op, split, participants, a.now())
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (a *splitAggregate) Delete(ctx context.Context, splitID, requesterID uuid.UUID) error {
	const op = "Split.Delete"
	if err := a.requireIDs(op, splitID, requesterID); err != nil {
		return err
	}

	return executeWriteRetry(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		split, _, err := a.load(dbc, op, splitID)
		if err != nil {
			return err
		}
		if requesterID != split.OrganizerID {
			return domainagg.NewReason(domainagg.CodePreconditionFailed, op, domainagg.ReasonNotOrganizer,
				"only the organizer can delete")
		}
		ok, err := a.deps.Base.CASGuard.DeleteByVersion(dbc, splitTable, split.ID, split.Version)
		if err != nil {
			return err
		}
		return RequireCASSuccess(ok, "split changed while deleting")
	})
}

func (a *splitAggregate) ApplyPayment(ctx context.Context, in domainagg.ApplyPaymentInput) (*types.Split, error) {
	const op = "Split.ApplyPayment"
	if err := a.requireIDs(op, in.SplitID, in.CompanyID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.PaymentReference) == "" {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "missing payment reference", nil)
	}

	var out *types.Split
	err := executeWriteRetry(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		split, participants, err := a.load(dbc, op, in.SplitID)
		if err != nil {
			return err
		}
		p := types.FindParticipant(participants, in.CompanyID)
		if p == nil {
			return domainagg.NewReason(domainagg.CodeConflict, op, domainagg.ReasonNotParticipant,
				"company is not a participant in this split")
		}
		if in.CompanyID == split.OrganizerID {
			return domainagg.NewReason(domainagg.CodePreconditionFailed, op, domainagg.ReasonOrganizerNotPayable,
				"organizer does not pay into their own split")
		}
		if p.Paid {
			// Processors redeliver confirmations; the same reference lands as
			// a no-op regardless of how far the split has advanced since.
			if p.PaymentReference == in.PaymentReference {
				out = split
				return nil
			}
			return domainagg.NewReason(domainagg.CodeConflict, op, domainagg.ReasonAlreadyPaid,
				"participant already paid with a different reference")
		}
		if split.Status != types.SplitStatusFull {
			return domainagg.NewReason(domainagg.CodeConflict, op, domainagg.ReasonNotFull,
				"payments apply only while the split is full")
		}

		now := a.now()
		p.Paid = true
		p.PaidAt = &now
		p.PaymentReference = in.PaymentReference

		allPaid := true
		for _, entry := range participants {
			if entry.CompanyID == split.OrganizerID {
				continue
			}
			if !entry.Paid {
				allPaid = false
				break
			}
		}
		if allPaid {
			split.Status = types.SplitStatusCompleted
		}
		out = split
		return a.commit(dbc, op, split, participants, now)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (a *splitAggregate) requireIDs(op string, splitID, companyID uuid.UUID) error {
	if splitID == uuid.Nil {
		return domainagg.NewError(domainagg.CodeValidation, op, "missing split_id", nil)
	}
	if companyID == uuid.Nil {
		return domainagg.NewError(domainagg.CodeValidation, op, "missing company_id", nil)
	}
	if a.deps.Splits == nil {
		return domainagg.NewError(domainagg.CodeInternal, op, "split aggregate repos not configured", nil)
	}
	return nil
}

func (a *splitAggregate) load(dbc dbctx.Context, op string, splitID uuid.UUID) (*types.Split, []types.Participant, error) {
	split, err := a.deps.Splits.GetByID(dbc, splitID)
	if err != nil {
		return nil, nil, err
	}
	if split == nil || split.ID == uuid.Nil {
		return nil, nil, domainagg.NewReason(domainagg.CodeNotFound, op, domainagg.ReasonSplitNotFound,
			fmt.Sprintf("split not found: %s", splitID.String()))
	}
	participants, err := split.ParticipantList()
	if err != nil {
		return nil, nil, InvariantError("participants column is not valid JSON: " + err.Error())
	}
	return split, participants, nil
}

// commit writes the mutated state back under the version guard. filledSlots
// always tracks the participant count; a mismatch here is a bug upstream.
func (a *splitAggregate) commit(dbc dbctx.Context, op string, split *types.Split, participants []types.Participant, now time.Time) error {
	if split.FilledSlots != len(participants) {
		return InvariantError("filled_slots out of sync with participants")
	}
	if split.FilledSlots > split.Slots {
		return InvariantError("filled_slots exceeds slots")
	}
	if err := split.SetParticipants(participants); err != nil {
		return InvariantError("encode participants: " + err.Error())
	}

	updates := map[string]any{
		"participants": split.Participants,
		"filled_slots": split.FilledSlots,
		"status":       split.Status,
		"updated_at":   now,
		"version":      split.Version + 1,
	}
	ok, err := a.deps.Base.CASGuard.UpdateByVersion(dbc, splitTable, split.ID, split.Version, updates)
	if err != nil {
		return err
	}
	if err := RequireCASSuccess(ok, "split changed concurrently"); err != nil {
		return err
	}
	split.Version++
	split.UpdatedAt = now
	return nil
}

func ceilDiv(total, parts int64) int64 {
	if parts <= 0 {
		return total
	}
	return (total + parts - 1) / parts
}
