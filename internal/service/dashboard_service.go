package service

import (
	"context"
	"time"

	"github.com/adityatechndevoops/OliveStore/internal/models"
	"github.com/adityatechndevoops/OliveStore/internal/policy"
	"github.com/adityatechndevoops/OliveStore/internal/util"

	"go.uber.org/zap"
)

// DashboardService serves platform counters, cached in Redis
type DashboardService struct {
	stats  StatsRepository
	cache  StatsCache
	ttl    time.Duration
	logger *zap.Logger
}

// NewDashboardService creates a dashboard service. cache may be nil.
func NewDashboardService(stats StatsRepository, cache StatsCache, ttl time.Duration) *DashboardService {
	return &DashboardService{stats: stats, cache: cache, ttl: ttl, logger: util.GetLogger()}
}

func (s *DashboardService) Stats(ctx context.Context, p policy.Principal) (*models.DashboardStats, error) {
	ctx, span := util.StartSpan(ctx, "DashboardService.Stats")
	defer span.End()

	if err := policy.Require(p, policy.DashboardRead); err != nil {
		return nil, err
	}

	if s.cache != nil {
		cached, ok, err := s.cache.GetDashboardStats(ctx)
		if err != nil {
			s.logger.Warn("Dashboard cache read failed", zap.Error(err))
		} else if ok {
			util.DashboardCacheTotal.WithLabelValues("hit").Inc()
			return cached, nil
		}
	}
	util.DashboardCacheTotal.WithLabelValues("miss").Inc()

	stats, err := s.stats.DashboardStats(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil && s.ttl > 0 {
		if err := s.cache.SetDashboardStats(ctx, stats, s.ttl); err != nil {
			s.logger.Warn("Dashboard cache write failed", zap.Error(err))
		}
	}
	return stats, nil
}

// Invalidate drops the cached counters.
func (s *DashboardService) Invalidate(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.InvalidateDashboardStats(ctx)
}
