package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/splitcpg/splitcpg-backend/internal/data/repos"
	"github.com/splitcpg/splitcpg-backend/internal/domain/aggregates"
	"github.com/splitcpg/splitcpg-backend/internal/pkg/dbctx"
	"github.com/splitcpg/splitcpg-backend/internal/platform/logger"
	"github.com/splitcpg/splitcpg-backend/internal/types"
)

// SplitListFilter narrows marketplace listings. Type and Status hit the
// database; Location and CompanyID are applied in memory because location is a
// substring match and participants live inside a JSON column.
type SplitListFilter struct {
	Type      string
	Status    string
	Location  string
	CompanyID uuid.UUID
	Limit     int
}

// SplitDetail is a split hydrated with the company profiles the UI renders
// next to it.
type SplitDetail struct {
	Split                *types.Split     `json:"split"`
	Organizer            *types.Company   `json:"organizer,omitempty"`
	ParticipantCompanies []*types.Company `json:"participantCompanies"`
}

type SplitService interface {
	Create(ctx context.Context, in aggregates.CreateSplitInput) (*types.Split, error)
	Get(ctx context.Context, id uuid.UUID) (*SplitDetail, error)
	List(ctx context.Context, filter SplitListFilter) ([]*types.Split, error)
	Join(ctx context.Context, splitID, companyID uuid.UUID) (*types.Split, error)
	Leave(ctx context.Context, splitID, companyID uuid.UUID) (*types.Split, error)
	Cancel(ctx context.Context, splitID, requesterID uuid.UUID) (*types.Split, error)
	Delete(ctx context.Context, splitID, requesterID uuid.UUID) error
}

type splitService struct {
	log       *logger.Logger
	aggregate aggregates.SplitAggregate
	splits    repos.SplitRepo
	companies repos.CompanyRepo
}

func NewSplitService(
	baseLog *logger.Logger,
	aggregate aggregates.SplitAggregate,
	splits repos.SplitRepo,
	companies repos.CompanyRepo,
) SplitService {
	return &splitService{
		log:       baseLog.With("service", "SplitService"),
		aggregate: aggregate,
		splits:    splits,
		companies: companies,
	}
}

func (s *splitService) Create(ctx context.Context, in aggregates.CreateSplitInput) (*types.Split, error) {
	return s.aggregate.Create(ctx, in)
}

func (s *splitService) Get(ctx context.Context, id uuid.UUID) (*SplitDetail, error) {
	const op = "SplitService.Get"

	split, err := s.splits.GetByID(dbctx.Context{Ctx: ctx}, id)
	if err != nil {
		return nil, aggregates.Wrap(aggregates.CodeInternal, op, err)
	}
	if split == nil {
		return nil, aggregates.NewReason(aggregates.CodeNotFound, op, aggregates.ReasonSplitNotFound, "split not found")
	}

	participants, err := split.ParticipantList()
	if err != nil {
		return nil, aggregates.Wrap(aggregates.CodeInternal, op, err)
	}

	detail := &SplitDetail{Split: split, ParticipantCompanies: []*types.Company{}}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		organizer, err := s.companies.GetByID(dbctx.Context{Ctx: gctx}, split.OrganizerID)
		if err != nil {
			return err
		}
		detail.Organizer = organizer
		return nil
	})
	g.Go(func() error {
		ids := make([]uuid.UUID, 0, len(participants))
		for _, p := range participants {
			ids = append(ids, p.CompanyID)
		}
		companies, err := s.companies.GetByIDs(dbctx.Context{Ctx: gctx}, ids)
		if err != nil {
			return err
		}
		if companies != nil {
			detail.ParticipantCompanies = companies
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, aggregates.Wrap(aggregates.CodeInternal, op, err)
	}
	return detail, nil
}

func (s *splitService) List(ctx context.Context, filter SplitListFilter) ([]*types.Split, error) {
	const op = "SplitService.List"

	splits, err := s.splits.List(dbctx.Context{Ctx: ctx}, repos.SplitFilter{
		Type:   filter.Type,
		Status: filter.Status,
		Limit:  filter.Limit,
	})
	if err != nil {
		return nil, aggregates.Wrap(aggregates.CodeInternal, op, err)
	}

	location := strings.ToLower(strings.TrimSpace(filter.Location))
	if location == "" && filter.CompanyID == uuid.Nil {
		return splits, nil
	}

	out := make([]*types.Split, 0, len(splits))
	for _, split := range splits {
		if location != "" && !strings.Contains(strings.ToLower(split.Location), location) {
			continue
		}
		if filter.CompanyID != uuid.Nil {
			participants, err := split.ParticipantList()
			if err != nil {
				return nil, aggregates.Wrap(aggregates.CodeInternal, op, err)
			}
			if types.FindParticipant(participants, filter.CompanyID) == nil {
				continue
			}
		}
		out = append(out, split)
	}
	return out, nil
}

func (s *splitService) Join(ctx context.Context, splitID, companyID uuid.UUID) (*types.Split, error) {
	return s.aggregate.Join(ctx, splitID, companyID)
}

func (s *splitService) Leave(ctx context.Context, splitID, companyID uuid.UUID) (*types.Split, error) {
	return s.aggregate.Leave(ctx, splitID, companyID)
}

func (s *splitService) Cancel(ctx context.Context, splitID, requesterID uuid.UUID) (*types.Split, error) {
	return s.aggregate.Cancel(ctx, splitID, requesterID)
}

func (s *splitService) Delete(ctx context.Context, splitID, requesterID uuid.UUID) error {
	return s.aggregate.Delete(ctx, splitID, requesterID)
}
