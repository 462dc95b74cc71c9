// Package decision implements the routing decision engine: given profit
// rows and a guest selection it computes per-drug profit and routes the
// patient to "Send to Apple" or "Send to Grand".
package decision

import (
	"errors"
	"strings"

	"github.com/cdirx/decision-tool/internal/domain"
)

// Business rules. Fixed, but kept as named constants so a rule change is a
// one-line edit.
const (
	// DoxyPrefix routes straight to Apple when any selected drug name
	// starts with it, regardless of profit.
	DoxyPrefix = "doxy"

	// PerDrugThreshold is the minimum average gross profit per selected
	// drug for the profit rule to route to Apple. The comparison is
	// inclusive.
	PerDrugThreshold = 36.50
)

// ErrIncompleteMapping is returned when a computation is attempted before
// all three header roles are assigned. The engine refuses to run rather
// than silently looking up empty column names.
var ErrIncompleteMapping = errors.New("decision: header mapping is incomplete")

type rowKey struct {
	item       string
	thirdParty string
}

func newRowKey(item, thirdParty string) rowKey {
	return rowKey{
		item:       strings.ToLower(strings.TrimSpace(item)),
		thirdParty: strings.ToLower(strings.TrimSpace(thirdParty)),
	}
}

// Index is a normalized (item, thirdParty) -> profit lookup built once per
// dataset. When several source rows share a key the first one in source
// order wins.
type Index struct {
	profits map[rowKey]float64
}

// NewIndex builds an Index from ingested rows under a header mapping.
func NewIndex(rows []domain.Row, m domain.HeaderMapping) (*Index, error) {
	if !m.Complete() {
		return nil, ErrIncompleteMapping
	}
	idx := &Index{profits: make(map[rowKey]float64, len(rows))}
	for _, r := range rows {
		key := newRowKey(m.ItemOf(r), m.ThirdPartyOf(r))
		if _, seen := idx.profits[key]; seen {
			continue
		}
		idx.profits[key] = ParseCurrency(m.GrossProfitOf(r))
	}
	return idx, nil
}

// NewTableIndex builds an Index from pre-normalized profit rows.
func NewTableIndex(table []domain.ProfitRow) *Index {
	idx := &Index{profits: make(map[rowKey]float64, len(table))}
	for _, r := range table {
		key := newRowKey(r.Item, r.ThirdParty)
		if _, seen := idx.profits[key]; seen {
			continue
		}
		idx.profits[key] = ParseCurrency(r.GrossProfit)
	}
	return idx
}

// Profit returns the profit for a (drug, thirdParty) pair, or 0 when no
// row matches. A missing match is a data-quality signal, not an error.
func (idx *Index) Profit(drug, thirdParty string) (float64, bool) {
	p, ok := idx.profits[newRowKey(drug, thirdParty)]
	return p, ok
}

// Compute runs the decision over ingested rows. It is a pure function of
// its inputs: identical arguments always produce an identical result.
func Compute(rows []domain.Row, m domain.HeaderMapping, sel domain.Selection) (*domain.DecisionResult, error) {
	idx, err := NewIndex(rows, m)
	if err != nil {
		return nil, err
	}
	return idx.Decide(sel), nil
}

// ComputeFromTable runs the decision over a pre-normalized profit table,
// as used by the guest workflow. The decision logic is identical to the
// file-upload path.
func ComputeFromTable(table []domain.ProfitRow, sel domain.Selection) *domain.DecisionResult {
	return NewTableIndex(table).Decide(sel)
}

// Decide computes the result for one selection. DrugProfits keeps the
// selection's insertion order; a selected drug with no matching row still
// appears, with profit 0. An empty selection totals 0 and routes to Grand.
func (idx *Index) Decide(sel domain.Selection) *domain.DecisionResult {
	drugProfits := make([]domain.ProfitRecord, 0, len(sel.Items))
	var totalProfit float64

	for _, drug := range sel.Items {
		profit, _ := idx.Profit(drug, sel.ThirdParty)
		drugProfits = append(drugProfits, domain.ProfitRecord{Drug: drug, Profit: profit})
		totalProfit += profit
	}

	decision := domain.DecisionGrand
	switch {
	case len(sel.Items) == 0:
		// Upstream validation rejects empty selections; if one slips
		// through it routes to Grand rather than vacuously passing the
		// threshold comparison.
	case hasDoxyItem(sel.Items):
		// The doxy override wins even when other drugs lose money.
		decision = domain.DecisionApple
	case totalProfit >= PerDrugThreshold*float64(len(sel.Items)):
		decision = domain.DecisionApple
	}

	return &domain.DecisionResult{
		Decision:    decision,
		TotalProfit: totalProfit,
		DrugProfits: drugProfits,
	}
}

func hasDoxyItem(items []string) bool {
	for _, item := range items {
		if strings.HasPrefix(strings.ToLower(item), DoxyPrefix) {
			return true
		}
	}
	return false
}
