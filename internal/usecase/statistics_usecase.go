package usecase

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/cantina/internal/domain"
)

// StatisticsUseCase summarizes customer balances.
type StatisticsUseCase struct {
	accountRepo AccountRepository
	cache       Cache
	ttl         time.Duration
	logger      zerolog.Logger
}

// NewStatisticsUseCase creates a new StatisticsUseCase. cache may be nil.
func NewStatisticsUseCase(accountRepo AccountRepository, cache Cache, ttl time.Duration, logger zerolog.Logger) *StatisticsUseCase {
	if ttl <= 0 {
		ttl = DefaultStatisticsTTL
	}

	return &StatisticsUseCase{
		accountRepo: accountRepo,
		cache:       cache,
		ttl:         ttl,
		logger:      logger,
	}
}

// GetStatistics returns totals over all accounts. Cache failures are
// logged and fall through to the repository.
func (uc *StatisticsUseCase) GetStatistics(ctx context.Context) (*domain.Statistics, error) {
	if uc.cache != nil {
		if data, err := uc.cache.Get(ctx, statisticsCacheKey); err == nil && data != nil {
			var stats domain.Statistics
			if err := json.Unmarshal(data, &stats); err == nil {
				return &stats, nil
			}
		} else if err != nil {
			uc.logger.Warn().Err(err).Msg("statistics cache read failed")
		}
	}

	stats, err := uc.accountRepo.Statistics(ctx)
	if err != nil {
		return nil, err
	}

	if uc.cache != nil {
		data, err := json.Marshal(stats)
		if err == nil {
			err = uc.cache.Set(ctx, statisticsCacheKey, data, uc.ttl)
		}
		if err != nil {
			uc.logger.Warn().Err(err).Msg("statistics cache write failed")
		}
	}

	return stats, nil
}

// Invalidate drops the cached statistics.
func (uc *StatisticsUseCase) Invalidate(ctx context.Context) error {
	if uc.cache == nil {
		return nil
	}
	return uc.cache.Delete(ctx, statisticsCacheKey)
}
