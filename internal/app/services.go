package app

import (
	"fmt"

	"gorm.io/gorm"

	dataagg "github.com/splitcpg/splitcpg-backend/internal/data/aggregates"
	"github.com/splitcpg/splitcpg-backend/internal/observability"
	"github.com/splitcpg/splitcpg-backend/internal/platform/logger"
	"github.com/splitcpg/splitcpg-backend/internal/services"
)

type Services struct {
	Auth       services.AuthService
	Split      services.SplitService
	Settlement services.SettlementService
	Company    services.CompanyService
	Event      services.EventService
}

func wireServices(db *gorm.DB, log *logger.Logger, reposet Repos, clients Clients) (Services, error) {
	auth, err := services.NewAuthService(log)
	if err != nil {
		return Services{}, fmt.Errorf("init auth service: %w", err)
	}

	var hooks dataagg.Hooks
	if m := observability.Current(); m != nil {
		hooks = dataagg.NewObservabilityHooks(m)
	}

	splitAggregate := dataagg.NewSplitAggregate(dataagg.SplitAggregateDeps{
		Base: dataagg.BaseDeps{
			DB:    db,
			Log:   log,
			Hooks: hooks,
		},
		Splits: reposet.Split,
	})

	return Services{
		Auth:       auth,
		Split:      services.NewSplitService(log, splitAggregate, reposet.Split, reposet.Company),
		Settlement: services.NewSettlementService(log, splitAggregate, reposet.Split, reposet.Company, clients.Processor, clients.Readiness),
		Company:    services.NewCompanyService(log, reposet.Company),
		Event:      services.NewEventService(log, reposet.Event),
	}, nil
}
