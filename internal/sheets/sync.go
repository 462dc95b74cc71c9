// Package sheets keeps the database's pre-normalized profit table in step
// with the published profit workbook.
package sheets

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/cdirx/decision-tool/internal/cache"
	"github.com/cdirx/decision-tool/internal/domain"
	"github.com/cdirx/decision-tool/internal/ingest"
	"github.com/cdirx/decision-tool/internal/mapping"
	"github.com/cdirx/decision-tool/internal/repository"
)

// Source fetches the current profit workbook as a dataset.
type Source interface {
	Fetch(ctx context.Context) (*domain.Dataset, error)
}

// PublicSource reads a publicly shared workbook through its CSV export
// URL; no credentials needed.
type PublicSource struct {
	SheetURL string
	Client   *http.Client
}

func (s *PublicSource) Fetch(ctx context.Context) (*domain.Dataset, error) {
	return ingest.SharedSheet(ctx, s.Client, s.SheetURL)
}

// DriveSource reads the workbook through the authenticated Drive API.
type DriveSource struct {
	Drive *DriveService
	DocID string
}

func (s *DriveSource) Fetch(ctx context.Context) (*domain.Dataset, error) {
	var buf bytes.Buffer
	if err := s.Drive.ExportCSV(s.DocID, &buf); err != nil {
		return nil, err
	}
	return ingest.CSV(&buf)
}

// SyncResult reports one completed sync run.
type SyncResult struct {
	Rows     int       `json:"rows"`
	SyncedAt time.Time `json:"synced_at"`
}

// Syncer pulls the profit workbook, normalizes it and replaces the stored
// profit table.
type Syncer struct {
	source Source
	repo   repository.ProfitRepository
	cache  cache.ProfitCache
}

func NewSyncer(source Source, repo repository.ProfitRepository, profitCache cache.ProfitCache) *Syncer {
	return &Syncer{source: source, repo: repo, cache: profitCache}
}

// Sync runs one fetch-normalize-replace cycle. The workbook's headers are
// resolved by the same auto-detection the upload path uses, so column
// renames in the source sheet keep working as long as they still hint at
// the three roles.
func (s *Syncer) Sync(ctx context.Context) (*SyncResult, error) {
	ds, err := s.source.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch profit workbook: %w", err)
	}

	rows, err := Normalize(ds)
	if err != nil {
		return nil, err
	}

	if err := s.repo.ReplaceAll(ctx, rows); err != nil {
		return nil, fmt.Errorf("replace profit table: %w", err)
	}

	if err := s.cache.Invalidate(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to invalidate profit table cache")
	}

	log.Info().Int("rows", len(rows)).Msg("profit table synced")
	return &SyncResult{Rows: len(rows), SyncedAt: time.Now().UTC()}, nil
}

// Normalize maps a raw workbook dataset onto profit rows. It fails when
// the headers do not hint at all three roles; a half-mapped sync would
// silently zero every profit downstream.
func Normalize(ds *domain.Dataset) ([]domain.ProfitRow, error) {
	m := mapping.Suggest(ds.Headers)
	if !m.Complete() {
		return nil, fmt.Errorf("profit workbook headers %v do not map item/third-party/profit", ds.Headers)
	}

	rows := make([]domain.ProfitRow, 0, len(ds.Rows))
	for _, r := range ds.Rows {
		item := m.ItemOf(r)
		thirdParty := m.ThirdPartyOf(r)
		if item == "" && thirdParty == "" {
			continue
		}
		rows = append(rows, domain.ProfitRow{
			Item:        item,
			ThirdParty:  thirdParty,
			GrossProfit: m.GrossProfitOf(r),
		})
	}
	return rows, nil
}

// RunPeriodic syncs on a fixed interval until the context is canceled.
// One run happens immediately at startup.
func (s *Syncer) RunPeriodic(ctx context.Context, interval time.Duration) {
	if _, err := s.Sync(ctx); err != nil {
		log.Error().Err(err).Msg("initial profit sync failed")
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Sync(ctx); err != nil {
				log.Error().Err(err).Msg("profit sync failed")
			}
		}
	}
}
