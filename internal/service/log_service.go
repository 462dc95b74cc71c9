package service

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/cdirx/decision-tool/internal/cache"
	"github.com/cdirx/decision-tool/internal/domain"
	"github.com/cdirx/decision-tool/internal/repository"
)

// LogService serves the admin dashboard: paged log listings and the
// analytics summary.
type LogService struct {
	logs    repository.LogRepository
	summary cache.SummaryCache
}

func NewLogService(logs repository.LogRepository, summaryCache cache.SummaryCache) *LogService {
	return &LogService{logs: logs, summary: summaryCache}
}

func (s *LogService) List(ctx context.Context, filter domain.LogFilter) (*domain.LogPage, error) {
	return s.logs.List(ctx, filter)
}

// Summary computes the analytics aggregate over the filtered logs,
// consulting the cache first. Pagination fields of the filter are ignored;
// the summary always covers the whole filtered set.
func (s *LogService) Summary(ctx context.Context, filter domain.LogFilter) (*domain.AnalyticsSummary, error) {
	filter.Page = 0
	filter.PageSize = 0
	filter.SortField = ""
	filter.SortDirection = ""

	if cached, hit, err := s.summary.GetSummary(ctx, filter); err != nil {
		log.Warn().Err(err).Msg("summary cache read failed")
	} else if hit {
		return cached, nil
	}

	summary, err := s.logs.Summary(ctx, filter)
	if err != nil {
		return nil, err
	}

	if err := s.summary.SetSummary(ctx, filter, summary); err != nil {
		log.Warn().Err(err).Msg("summary cache write failed")
	}
	return summary, nil
}
