package app

import (
	"gorm.io/gorm"

	"github.com/splitcpg/splitcpg-backend/internal/data/repos"
	"github.com/splitcpg/splitcpg-backend/internal/platform/logger"
)

type Repos struct {
	Split   repos.SplitRepo
	Company repos.CompanyRepo
	Event   repos.EventRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	return Repos{
		Split:   repos.NewSplitRepo(db, log),
		Company: repos.NewCompanyRepo(db, log),
		Event:   repos.NewEventRepo(db, log),
	}
}
