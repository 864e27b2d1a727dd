package repos

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/splitcpg/splitcpg-backend/internal/pkg/dbctx"
	"github.com/splitcpg/splitcpg-backend/internal/platform/logger"
	"github.com/splitcpg/splitcpg-backend/internal/types"
	"gorm.io/gorm"
)

type EventFilter struct {
	Type         string
	City         string
	UpcomingFrom *time.Time
	Limit        int
}

type EventRepo interface {
	Create(dbc dbctx.Context, event *types.Event) (*types.Event, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Event, error)
	GetBySource(dbc dbctx.Context, source, sourceID string) (*types.Event, error)
	List(dbc dbctx.Context, filter EventFilter) ([]*types.Event, error)
}

type eventRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEventRepo(db *gorm.DB, baseLog *logger.Logger) EventRepo {
	repoLog := baseLog.With("repo", "EventRepo")
	return &eventRepo{db: db, log: repoLog}
}

func (r *eventRepo) conn(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx.WithContext(dbc.Ctx)
	}
	return r.db.WithContext(dbc.Ctx)
}

func (r *eventRepo) Create(dbc dbctx.Context, event *types.Event) (*types.Event, error) {
	if event == nil {
		return nil, nil
	}
	if err := r.conn(dbc).Create(event).Error; err != nil {
		return nil, err
	}
	return event, nil
}

func (r *eventRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Event, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var out types.Event
	err := r.conn(dbc).Where("id = ?", id).First(&out).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &out, nil
}

func (r *eventRepo) GetBySource(dbc dbctx.Context, source, sourceID string) (*types.Event, error) {
	source = strings.TrimSpace(source)
	sourceID = strings.TrimSpace(sourceID)
	if source == "" || sourceID == "" {
		return nil, nil
	}
	var out types.Event
	err := r.conn(dbc).Where("source = ? AND source_id = ?", source, sourceID).First(&out).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &out, nil
}

func (r *eventRepo) List(dbc dbctx.Context, filter EventFilter) ([]*types.Event, error) {
	q := r.conn(dbc).Model(&types.Event{}).Order("date ASC")
	if t := strings.TrimSpace(filter.Type); t != "" && t != "all" {
		q = q.Where("type = ?", t)
	}
	if c := strings.TrimSpace(filter.City); c != "" {
		q = q.Where("city = ?", c)
	}
	if filter.UpcomingFrom != nil {
		q = q.Where("date >= ?", *filter.UpcomingFrom)
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	var out []*types.Event
	if err := q.Limit(limit).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
