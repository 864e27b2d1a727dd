package app

import (
	"fmt"
	"os"

	redisclient "github.com/splitcpg/splitcpg-backend/internal/clients/redis"
	stripeclient "github.com/splitcpg/splitcpg-backend/internal/clients/stripe"
	"github.com/splitcpg/splitcpg-backend/internal/platform/logger"
)

type Clients struct {
	Processor stripeclient.Client
	Readiness redisclient.ReadinessCache
}

func wireClients(log *logger.Logger) (Clients, error) {
	processor, err := stripeclient.NewClient(log)
	if err != nil {
		return Clients{}, fmt.Errorf("init stripe client: %w", err)
	}

	// the readiness cache is optional; without REDIS_ADDR every payment
	// initiation verifies the organizer account against the processor
	var readiness redisclient.ReadinessCache
	if os.Getenv("REDIS_ADDR") != "" {
		readiness, err = redisclient.NewReadinessCache(log)
		if err != nil {
			log.Warn("readiness cache unavailable, continuing without it", "error", err)
			readiness = nil
		}
	}

	return Clients{Processor: processor, Readiness: readiness}, nil
}
