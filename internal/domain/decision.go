package domain

import "strings"

// Decision is the binary routing outcome of the decision engine.
type Decision string

const (
	DecisionApple Decision = "Send to Apple"
	DecisionGrand Decision = "Send to Grand"
)

var decisionLabels = map[string]Decision{
	"apple": DecisionApple,
	"grand": DecisionGrand,
}

// ParseDecision resolves a short label or full decision string
// (case-insensitive) to a Decision.
func ParseDecision(label string) (Decision, bool) {
	if d, ok := decisionLabels[strings.ToLower(strings.TrimSpace(label))]; ok {
		return d, true
	}
	switch Decision(strings.TrimSpace(label)) {
	case DecisionApple:
		return DecisionApple, true
	case DecisionGrand:
		return DecisionGrand, true
	}
	return "", false
}
