// Package scheduler
package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/marlonhq/marlon-api/app/services"
	"github.com/marlonhq/marlon-api/models"
	"github.com/marlonhq/marlon-api/repository"
	"github.com/marlonhq/marlon-api/utils"
)

// RateRefresher periodically rebuilds the cached coefficient grid for every
// active leaser so pricing reads stay warm after back-office edits.
type RateRefresher struct {
	leaserRepo repository.LeaserRepository
	rateTables services.RateTableService
	logger     *log.Logger
	interval   time.Duration
}

func NewRateRefresher(
	leaserRepo repository.LeaserRepository,
	rateTables services.RateTableService,
	logger *log.Logger,
	interval time.Duration,
) *RateRefresher {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	if logger == nil {
		logger = log.Default()
	}

	return &RateRefresher{
		leaserRepo: leaserRepo,
		rateTables: rateTables,
		logger:     logger,
		interval:   interval,
	}
}

// Start launches the refresh loop. The returned function stops it.
func (s *RateRefresher) Start(parent context.Context) func() {
	ctx, cancel := context.WithCancel(parent)

	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		// Warm the cache on startup before the first tick
		s.refreshAll(ctx)

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.refreshAll(ctx)
			}
		}
	}()

	return cancel
}

func (s *RateRefresher) refreshAll(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	leasers, err := s.leaserRepo.ByFilter(runCtx, models.LeaserFilter{IsActive: utils.ToPtr(true)}, "", 0, 0)
	if err != nil {
		s.logger.Printf("Rate refresh: failed to list leasers: %v", err)
		return
	}

	for _, leaser := range leasers {
		if err := s.rateTables.Invalidate(runCtx, leaser.ID); err != nil {
			s.logger.Printf("Rate refresh: invalidate failed for leaser %d: %v", leaser.ID, err)
			continue
		}
		if _, err := s.rateTables.TableFor(runCtx, leaser.ID); err != nil {
			s.logger.Printf("Rate refresh: rebuild failed for leaser %d: %v", leaser.ID, err)
		}
	}
}
