// Package service orchestrates the decision workflows on top of the pure
// decision engine: loading the profit table, computing results, and
// recording decision logs.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/cdirx/decision-tool/internal/cache"
	"github.com/cdirx/decision-tool/internal/decision"
	"github.com/cdirx/decision-tool/internal/domain"
	"github.com/cdirx/decision-tool/internal/repository"
)

// SubmitRequest is one guest decision submission.
type SubmitRequest struct {
	GuestName    string           `json:"guest_name"`
	LastName     string           `json:"last_name"`
	DOB          string           `json:"dob"`
	FirstInitial string           `json:"first_initial"`
	MRN          string           `json:"mrn"`
	Selection    domain.Selection `json:"selection"`
}

// SubmitResponse carries the decision plus whether the log write
// succeeded. A failed log write does not void the decision; the caller
// surfaces it as a warning.
type SubmitResponse struct {
	Result *domain.DecisionResult `json:"result"`
	Logged bool                   `json:"logged"`
}

type DecisionService struct {
	profits repository.ProfitRepository
	logs    repository.LogRepository
	cache   cache.ProfitCache
	summary cache.SummaryCache
	now     func() time.Time
}

func NewDecisionService(
	profits repository.ProfitRepository,
	logs repository.LogRepository,
	profitCache cache.ProfitCache,
	summaryCache cache.SummaryCache,
) *DecisionService {
	return &DecisionService{
		profits: profits,
		logs:    logs,
		cache:   profitCache,
		summary: summaryCache,
		now:     time.Now,
	}
}

// Insurances lists the distinct payers in the profit table.
func (s *DecisionService) Insurances(ctx context.Context) ([]string, error) {
	return s.profits.Insurances(ctx)
}

// Drugs lists the distinct drugs available under one payer.
func (s *DecisionService) Drugs(ctx context.Context, insurance string) ([]string, error) {
	if insurance == "" {
		return nil, fmt.Errorf("insurance is required")
	}
	return s.profits.DrugsFor(ctx, insurance)
}

// Submit validates a guest submission, computes the routing decision over
// the pre-normalized profit table and records a decision log.
func (s *DecisionService) Submit(ctx context.Context, req SubmitRequest) (*SubmitResponse, error) {
	if err := validateSubmit(req); err != nil {
		return nil, err
	}

	table, err := s.profitTable(ctx)
	if err != nil {
		return nil, err
	}

	result := decision.ComputeFromTable(table, req.Selection)
	result.TransactionID = decision.NewTransactionID(s.now())

	entry := &domain.DecisionLog{
		GuestName:    req.GuestName,
		LastName:     req.LastName,
		DOB:          req.DOB,
		FirstInitial: req.FirstInitial,
		MRN:          req.MRN,
		Insurance:    req.Selection.ThirdParty,
		Drugs:        FormatDrugProfits(result.DrugProfits),
		TotalProfit:  result.TotalProfit,
		Decision:     result.Decision,
		TxnID:        result.TransactionID,
		CreatedAt:    s.now().UTC(),
	}

	logged := true
	if err := s.logs.Insert(ctx, entry); err != nil {
		// The decision stands even when the log write fails; the guest
		// gets the result plus a warning.
		log.Error().Err(err).Str("txn_id", entry.TxnID).Msg("failed to record decision log")
		logged = false
	} else if err := s.summary.InvalidateAll(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to invalidate summary cache")
	}

	return &SubmitResponse{Result: result, Logged: logged}, nil
}

func (s *DecisionService) profitTable(ctx context.Context) ([]domain.ProfitRow, error) {
	if rows, hit, err := s.cache.GetTable(ctx); err != nil {
		log.Warn().Err(err).Msg("profit table cache read failed")
	} else if hit {
		return rows, nil
	}

	rows, err := s.profits.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("load profit table: %w", err)
	}

	if err := s.cache.SetTable(ctx, rows); err != nil {
		log.Warn().Err(err).Msg("profit table cache write failed")
	}
	return rows, nil
}

func validateSubmit(req SubmitRequest) error {
	switch {
	case strings.TrimSpace(req.GuestName) == "":
		return fmt.Errorf("guest name is required")
	case strings.TrimSpace(req.LastName) == "":
		return fmt.Errorf("patient last name is required")
	case strings.TrimSpace(req.Selection.ThirdParty) == "":
		return fmt.Errorf("insurance is required")
	case len(req.Selection.Items) == 0:
		return fmt.Errorf("at least one drug must be selected")
	}
	seen := make(map[string]struct{}, len(req.Selection.Items))
	for _, item := range req.Selection.Items {
		key := strings.ToLower(item)
		if _, dup := seen[key]; dup {
			return fmt.Errorf("duplicate drug in selection: %s", item)
		}
		seen[key] = struct{}{}
	}
	return nil
}

// FormatDrugProfits renders the human-readable drug-and-price string
// stored with each log, e.g. "Lisinopril ($40.00), Metformin ($-5.00)".
func FormatDrugProfits(records []domain.ProfitRecord) string {
	parts := make([]string, 0, len(records))
	for _, rec := range records {
		parts = append(parts, fmt.Sprintf("%s ($%.2f)", rec.Drug, rec.Profit))
	}
	return strings.Join(parts, ", ")
}
