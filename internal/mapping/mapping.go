// Package mapping suggests and validates the assignment of source column
// names to the three semantic roles the decision engine needs: item (drug
// name), third party (payer) and gross profit.
package mapping

import (
	"strings"

	"github.com/cdirx/decision-tool/internal/domain"
)

var (
	itemHints       = []string{"item", "drug", "product"}
	thirdPartyHints = []string{"third", "party", "insurance", "payer"}
	profitHints     = []string{"profit", "gross"}
)

// Suggest auto-detects a header mapping by case-insensitive substring
// hints. Headers are checked against the roles in order, so a header that
// hints at both item and payer is claimed by item. Later headers overwrite
// earlier suggestions for the same role: last match wins. Suggestions are
// a starting point only; the user can override any of them before the
// mapping is confirmed.
func Suggest(headers []string) domain.HeaderMapping {
	var m domain.HeaderMapping
	for _, header := range headers {
		lower := strings.ToLower(header)
		switch {
		case containsAny(lower, itemHints):
			m.Item = header
		case containsAny(lower, thirdPartyHints):
			m.ThirdParty = header
		case containsAny(lower, profitHints):
			m.GrossProfit = header
		}
	}
	return m
}

func containsAny(s string, hints []string) bool {
	for _, hint := range hints {
		if strings.Contains(s, hint) {
			return true
		}
	}
	return false
}

// Validate checks a user-confirmed mapping against the dataset's headers:
// all three roles assigned and every assigned name actually present.
func Validate(m domain.HeaderMapping, headers []string) bool {
	if !m.Complete() {
		return false
	}
	return hasHeader(headers, m.Item) && hasHeader(headers, m.ThirdParty) && hasHeader(headers, m.GrossProfit)
}

func hasHeader(headers []string, name string) bool {
	for _, h := range headers {
		if h == name {
			return true
		}
	}
	return false
}
