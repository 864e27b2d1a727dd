package repos

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/splitcpg/splitcpg-backend/internal/pkg/dbctx"
	"github.com/splitcpg/splitcpg-backend/internal/platform/logger"
	"github.com/splitcpg/splitcpg-backend/internal/types"
	"gorm.io/gorm"
)

// SplitFilter narrows List results. Empty/"all" values are ignored.
type SplitFilter struct {
	Type   string
	Status string
	Limit  int
}

type SplitRepo interface {
	Create(dbc dbctx.Context, split *types.Split) (*types.Split, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Split, error)
	List(dbc dbctx.Context, filter SplitFilter) ([]*types.Split, error)
	DeleteByID(dbc dbctx.Context, id uuid.UUID) error
}

type splitRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSplitRepo(db *gorm.DB, baseLog *logger.Logger) SplitRepo {
	repoLog := baseLog.With("repo", "SplitRepo")
	return &splitRepo{db: db, log: repoLog}
}

func (r *splitRepo) conn(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx.WithContext(dbc.Ctx)
	}
	return r.db.WithContext(dbc.Ctx)
}

func (r *splitRepo) Create(dbc dbctx.Context, split *types.Split) (*types.Split, error) {
	if split == nil {
		return nil, nil
	}
	if err := r.conn(dbc).Create(split).Error; err != nil {
		return nil, err
	}
	return split, nil
}

func (r *splitRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Split, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var out types.Split
	err := r.conn(dbc).Where("id = ?", id).First(&out).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &out, nil
}

func (r *splitRepo) List(dbc dbctx.Context, filter SplitFilter) ([]*types.Split, error) {
	q := r.conn(dbc).Model(&types.Split{}).Order("created_at DESC")
	if t := strings.TrimSpace(filter.Type); t != "" && t != "all" {
		q = q.Where("type = ?", t)
	}
	if s := strings.TrimSpace(filter.Status); s != "" && s != "all" {
		q = q.Where("status = ?", s)
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	var out []*types.Split
	if err := q.Limit(limit).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *splitRepo) DeleteByID(dbc dbctx.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return nil
	}
	return r.conn(dbc).Where("id = ?", id).Delete(&types.Split{}).Error
}
