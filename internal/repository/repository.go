// Package repository defines the persistence interfaces the services
// depend on. The postgres subpackage provides the production
// implementation.
package repository

import (
	"context"

	"github.com/cdirx/decision-tool/internal/domain"
)

// LogRepository persists and queries decision logs.
type LogRepository interface {
	Insert(ctx context.Context, entry *domain.DecisionLog) error
	List(ctx context.Context, filter domain.LogFilter) (*domain.LogPage, error)
	Summary(ctx context.Context, filter domain.LogFilter) (*domain.AnalyticsSummary, error)
}

// ProfitRepository stores the pre-normalized profit table the guest
// workflow decides against.
type ProfitRepository interface {
	ReplaceAll(ctx context.Context, rows []domain.ProfitRow) error
	All(ctx context.Context) ([]domain.ProfitRow, error)
	Insurances(ctx context.Context) ([]string, error)
	DrugsFor(ctx context.Context, insurance string) ([]string, error)
}
