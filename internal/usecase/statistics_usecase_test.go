package usecase_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/iho/cantina/internal/domain"
	"github.com/iho/cantina/internal/usecase"
	"github.com/iho/cantina/internal/usecase/mocks"
)

func TestStatisticsUseCase_CacheMissThenHit(t *testing.T) {
	ctrl := gomock.NewController(t)

	accounts := mocks.NewMockAccountRepository(ctrl)
	cache := mocks.NewMockCache(ctrl)

	stats := &domain.Statistics{TotalAccounts: 3, PositiveAccounts: 1, NegativeAccounts: 1, ZeroAccounts: 1, TotalBalance: domain.Units(5)}
	encoded, err := json.Marshal(stats)
	require.NoError(t, err)

	gomock.InOrder(
		cache.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, nil),
		accounts.EXPECT().Statistics(gomock.Any()).Return(stats, nil),
		cache.EXPECT().Set(gomock.Any(), gomock.Any(), encoded, usecase.DefaultStatisticsTTL).Return(nil),
		cache.EXPECT().Get(gomock.Any(), gomock.Any()).Return(encoded, nil),
	)

	uc := usecase.NewStatisticsUseCase(accounts, cache, 0, zerolog.Nop())

	first, err := uc.GetStatistics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, stats, first)

	second, err := uc.GetStatistics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, *stats, *second)
}

func TestStatisticsUseCase_CacheErrorsFallThrough(t *testing.T) {
	ctrl := gomock.NewController(t)

	accounts := mocks.NewMockAccountRepository(ctrl)
	cache := mocks.NewMockCache(ctrl)

	cache.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, errors.New("redis down"))
	accounts.EXPECT().Statistics(gomock.Any()).Return(&domain.Statistics{TotalAccounts: 1}, nil)
	cache.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("redis down"))

	uc := usecase.NewStatisticsUseCase(accounts, cache, 0, zerolog.Nop())

	stats, err := uc.GetStatistics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalAccounts)
}

func TestStatisticsUseCase_NoCache(t *testing.T) {
	ctrl := gomock.NewController(t)

	accounts := mocks.NewMockAccountRepository(ctrl)
	accounts.EXPECT().Statistics(gomock.Any()).Return(nil, errors.New("db down"))

	uc := usecase.NewStatisticsUseCase(accounts, nil, 0, zerolog.Nop())

	_, err := uc.GetStatistics(context.Background())
	require.Error(t, err)
	require.NoError(t, uc.Invalidate(context.Background()))
}
