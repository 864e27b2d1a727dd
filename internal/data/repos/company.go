package repos

import (
	"errors"

	"github.com/google/uuid"
	"github.com/splitcpg/splitcpg-backend/internal/pkg/dbctx"
	"github.com/splitcpg/splitcpg-backend/internal/platform/logger"
	"github.com/splitcpg/splitcpg-backend/internal/types"
	"gorm.io/gorm"
)

type CompanyRepo interface {
	Create(dbc dbctx.Context, company *types.Company) (*types.Company, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Company, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Company, error)
	List(dbc dbctx.Context, limit int) ([]*types.Company, error)
	Update(dbc dbctx.Context, id uuid.UUID, updates map[string]any) error
}

type companyRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCompanyRepo(db *gorm.DB, baseLog *logger.Logger) CompanyRepo {
	repoLog := baseLog.With("repo", "CompanyRepo")
	return &companyRepo{db: db, log: repoLog}
}

func (r *companyRepo) conn(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx.WithContext(dbc.Ctx)
	}
	return r.db.WithContext(dbc.Ctx)
}

func (r *companyRepo) Create(dbc dbctx.Context, company *types.Company) (*types.Company, error) {
	if company == nil {
		return nil, nil
	}
	if err := r.conn(dbc).Create(company).Error; err != nil {
		return nil, err
	}
	return company, nil
}

func (r *companyRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Company, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var out types.Company
	err := r.conn(dbc).Where("id = ?", id).First(&out).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &out, nil
}

func (r *companyRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Company, error) {
	var out []*types.Company
	if len(ids) == 0 {
		return out, nil
	}
	if err := r.conn(dbc).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *companyRepo) List(dbc dbctx.Context, limit int) ([]*types.Company, error) {
	if limit <= 0 {
		limit = 100
	}
	var out []*types.Company
	if err := r.conn(dbc).Model(&types.Company{}).Order("created_at DESC").Limit(limit).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *companyRepo) Update(dbc dbctx.Context, id uuid.UUID, updates map[string]any) error {
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	return r.conn(dbc).Model(&types.Company{}).Where("id = ?", id).Updates(updates).Error
}
