package service

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/cdirx/decision-tool/internal/decision"
	"github.com/cdirx/decision-tool/internal/domain"
	"github.com/cdirx/decision-tool/internal/ingest"
	"github.com/cdirx/decision-tool/internal/mapping"
	"github.com/cdirx/decision-tool/internal/storage"
)

// ErrDatasetNotFound is returned when a decision references an upload
// handle that was never ingested or has already expired.
var ErrDatasetNotFound = fmt.Errorf("dataset not found")

// UploadResult is returned after ingesting an uploaded file or shared
// sheet: a handle for later decisions, the headers, and a suggested (not
// yet confirmed) header mapping.
type UploadResult struct {
	DatasetID        string               `json:"dataset_id"`
	Headers          []string             `json:"headers"`
	RowCount         int                  `json:"row_count"`
	SuggestedMapping domain.HeaderMapping `json:"suggested_mapping"`
}

// UploadService holds ingested datasets for the file-upload decision path.
// Datasets live in memory for the session; they are working copies of the
// user's spreadsheet, not durable state.
type UploadService struct {
	archive storage.ObjectStorage

	mu       sync.RWMutex
	datasets map[string]*domain.Dataset
}

func NewUploadService(archive storage.ObjectStorage) *UploadService {
	if archive == nil {
		archive = storage.Noop{}
	}
	return &UploadService{
		archive:  archive,
		datasets: make(map[string]*domain.Dataset),
	}
}

// IngestFile parses an uploaded file, stores the dataset under a fresh
// handle and archives the raw bytes in the background.
func (s *UploadService) IngestFile(ctx context.Context, filename string, raw []byte) (*UploadResult, error) {
	ds, err := ingest.File(filename, bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}

	result := s.store(ds)

	key := fmt.Sprintf("uploads/%s/%s", time.Now().UTC().Format("2006-01-02"), filename)
	go func() {
		// Archive failures only lose the audit copy, never the upload.
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.archive.UploadObject(ctx, key, raw, contentTypeFor(filename)); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("failed to archive upload")
		}
	}()

	return result, nil
}

// IngestSharedSheet fetches a shared-spreadsheet URL's CSV export and
// stores the dataset like a local upload.
func (s *UploadService) IngestSharedSheet(ctx context.Context, rawURL string) (*UploadResult, error) {
	ds, err := ingest.SharedSheet(ctx, nil, rawURL)
	if err != nil {
		return nil, err
	}
	return s.store(ds), nil
}

func (s *UploadService) store(ds *domain.Dataset) *UploadResult {
	id := uuid.NewString()

	s.mu.Lock()
	s.datasets[id] = ds
	s.mu.Unlock()

	return &UploadResult{
		DatasetID:        id,
		Headers:          ds.Headers,
		RowCount:         len(ds.Rows),
		SuggestedMapping: mapping.Suggest(ds.Headers),
	}
}

// Values returns the distinct values appearing under one mapped header,
// optionally restricted to rows matching a third-party filter. The guest
// picks a payer first; the drug list then only offers items that payer
// actually covers.
func (s *UploadService) Values(datasetID, header, thirdPartyHeader, thirdParty string) ([]string, error) {
	ds, err := s.dataset(datasetID)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	values := make([]string, 0)
	for _, row := range ds.Rows {
		if thirdPartyHeader != "" && thirdParty != "" && row[thirdPartyHeader] != thirdParty {
			continue
		}
		v := row[header]
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		values = append(values, v)
	}
	return values, nil
}

// Decide runs the decision engine over a stored dataset with a confirmed
// mapping. The mapping must be complete and name real headers.
func (s *UploadService) Decide(datasetID string, m domain.HeaderMapping, sel domain.Selection) (*domain.DecisionResult, error) {
	ds, err := s.dataset(datasetID)
	if err != nil {
		return nil, err
	}

	if !mapping.Validate(m, ds.Headers) {
		return nil, decision.ErrIncompleteMapping
	}
	if len(sel.Items) == 0 {
		return nil, fmt.Errorf("at least one drug must be selected")
	}

	result, err := decision.Compute(ds.Rows, m, sel)
	if err != nil {
		return nil, err
	}
	result.TransactionID = decision.NewTransactionID(time.Now())
	return result, nil
}

func (s *UploadService) dataset(id string) (*domain.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ds, ok := s.datasets[id]
	if !ok {
		return nil, ErrDatasetNotFound
	}
	return ds, nil
}

func contentTypeFor(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return "text/csv"
	case ".xlsx", ".xls":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/octet-stream"
	}
}
