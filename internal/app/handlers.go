package app

import (
	"gorm.io/gorm"

	"github.com/splitcpg/splitcpg-backend/internal/http/handlers"
	"github.com/splitcpg/splitcpg-backend/internal/platform/logger"
)

type Handlers struct {
	Split   *handlers.SplitHandler
	Payment *handlers.PaymentHandler
	Company *handlers.CompanyHandler
	Event   *handlers.EventHandler
	Health  *handlers.HealthHandler
}

func wireHandlers(db *gorm.DB, log *logger.Logger, serviceset Services) Handlers {
	return Handlers{
		Split:   handlers.NewSplitHandler(log, serviceset.Split),
		Payment: handlers.NewPaymentHandler(log, serviceset.Settlement),
		Company: handlers.NewCompanyHandler(log, serviceset.Company),
		Event:   handlers.NewEventHandler(log, serviceset.Event),
		Health:  handlers.NewHealthHandler(log, db),
	}
}
