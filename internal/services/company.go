package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/splitcpg/splitcpg-backend/internal/data/repos"
	"github.com/splitcpg/splitcpg-backend/internal/domain/aggregates"
	"github.com/splitcpg/splitcpg-backend/internal/pkg/dbctx"
	"github.com/splitcpg/splitcpg-backend/internal/platform/logger"
	"github.com/splitcpg/splitcpg-backend/internal/types"
)

type CreateCompanyInput struct {
	Name        string `json:"name"`
	LogoURL     string `json:"logoUrl"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Location    string `json:"location"`
	Website     string `json:"website"`
}

type UpdateCompanyInput struct {
	Name        *string `json:"name"`
	LogoURL     *string `json:"logoUrl"`
	Category    *string `json:"category"`
	Description *string `json:"description"`
	Location    *string `json:"location"`
	Website     *string `json:"website"`
}

type CompanyService interface {
	Create(ctx context.Context, userID uuid.UUID, in CreateCompanyInput) (*types.Company, error)
	Get(ctx context.Context, id uuid.UUID) (*types.Company, error)
	List(ctx context.Context, limit int) ([]*types.Company, error)
	Update(ctx context.Context, id, requesterUserID uuid.UUID, in UpdateCompanyInput) (*types.Company, error)
}

type companyService struct {
	log       *logger.Logger
	companies repos.CompanyRepo
}

func NewCompanyService(baseLog *logger.Logger, companies repos.CompanyRepo) CompanyService {
	return &companyService{
		log:       baseLog.With("service", "CompanyService"),
		companies: companies,
	}
}

func (s *companyService) Create(ctx context.Context, userID uuid.UUID, in CreateCompanyInput) (*types.Company, error) {
	const op = "CompanyService.Create"

	if strings.TrimSpace(in.Name) == "" {
		return nil, aggregates.NewError(aggregates.CodeValidation, op, "name is required", nil)
	}
	category := strings.TrimSpace(in.Category)
	if category == "" {
		category = "other"
	}
	now := time.Now().UTC()
	company := &types.Company{
		ID:          uuid.New(),
		Name:        strings.TrimSpace(in.Name),
		LogoURL:     in.LogoURL,
		Category:    category,
		Description: in.Description,
		Location:    in.Location,
		Website:     in.Website,
		UserID:      userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	created, err := s.companies.Create(dbctx.Context{Ctx: ctx}, company)
	if err != nil {
		return nil, aggregates.Wrap(aggregates.CodeInternal, op, err)
	}
	return created, nil
}

func (s *companyService) Get(ctx context.Context, id uuid.UUID) (*types.Company, error) {
	const op = "CompanyService.Get"

	company, err := s.companies.GetByID(dbctx.Context{Ctx: ctx}, id)
	if err != nil {
		return nil, aggregates.Wrap(aggregates.CodeInternal, op, err)
	}
	if company == nil {
		return nil, aggregates.NewError(aggregates.CodeNotFound, op, "company not found", nil)
	}
	return company, nil
}

func (s *companyService) List(ctx context.Context, limit int) ([]*types.Company, error) {
	const op = "CompanyService.List"

	companies, err := s.companies.List(dbctx.Context{Ctx: ctx}, limit)
	if err != nil {
		return nil, aggregates.Wrap(aggregates.CodeInternal, op, err)
	}
	return companies, nil
}

func (s *companyService) Update(ctx context.Context, id, requesterUserID uuid.UUID, in UpdateCompanyInput) (*types.Company, error) {
	const op = "CompanyService.Update"

	company, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if company.UserID != requesterUserID {
		return nil, aggregates.NewError(aggregates.CodePreconditionFailed, op, "only the owner can update a company", nil)
	}

	updates := map[string]any{}
	if in.Name != nil && strings.TrimSpace(*in.Name) != "" {
		updates["name"] = strings.TrimSpace(*in.Name)
	}
	if in.LogoURL != nil {
		updates["logo_url"] = *in.LogoURL
	}
	if in.Category != nil && strings.TrimSpace(*in.Category) != "" {
		updates["category"] = strings.TrimSpace(*in.Category)
	}
	if in.Description != nil {
		updates["description"] = *in.Description
	}
	if in.Location != nil {
		updates["location"] = *in.Location
	}
	if in.Website != nil {
		updates["website"] = *in.Website
	}
	if len(updates) == 0 {
		return company, nil
	}
	updates["updated_at"] = time.Now().UTC()

	if err := s.companies.Update(dbctx.Context{Ctx: ctx}, id, updates); err != nil {
		return nil, aggregates.Wrap(aggregates.CodeInternal, op, err)
	}
	return s.Get(ctx, id)
}
