package domain

import "time"

// Row is a single tabular record keyed by source column name. Keys are
// whatever the spreadsheet provided; cell values are kept as strings until
// the decision engine parses the mapped profit column.
type Row map[string]string

// Dataset is the result of ingesting one tabular source.
type Dataset struct {
	Headers []string `json:"headers"`
	Rows    []Row    `json:"rows"`
}

// HeaderMapping assigns three semantic roles to source column names.
// A mapping is set once per dataset and treated as immutable afterwards.
type HeaderMapping struct {
	Item        string `json:"item"`
	ThirdParty  string `json:"thirdParty"`
	GrossProfit string `json:"grossProfit"`
}

// Complete reports whether all three roles have been assigned.
func (m HeaderMapping) Complete() bool {
	return m.Item != "" && m.ThirdParty != "" && m.GrossProfit != ""
}

// ItemOf returns the mapped item cell of a row.
func (m HeaderMapping) ItemOf(r Row) string { return r[m.Item] }

// ThirdPartyOf returns the mapped third-party cell of a row.
func (m HeaderMapping) ThirdPartyOf(r Row) string { return r[m.ThirdParty] }

// GrossProfitOf returns the mapped gross-profit cell of a row, unparsed.
func (m HeaderMapping) GrossProfitOf(r Row) string { return r[m.GrossProfit] }

// Selection is the guest's chosen payer and drug names. Items keeps the
// user's insertion order; it is display order only, the decision does not
// depend on it.
type Selection struct {
	ThirdParty string   `json:"thirdParty"`
	Items      []string `json:"items"`
}

// ProfitRecord is the per-drug profit line of a decision result.
type ProfitRecord struct {
	Drug   string  `json:"drug"`
	Profit float64 `json:"profit"`
}

// DecisionResult is the immutable outcome of one decision computation.
type DecisionResult struct {
	Decision      Decision       `json:"decision"`
	TotalProfit   float64        `json:"total_profit"`
	DrugProfits   []ProfitRecord `json:"drug_profits"`
	TransactionID string         `json:"transaction_id"`
}

// ProfitRow is one pre-normalized profit record, keyed by (item, payer).
// The sync service maintains these in the database for the guest workflow.
type ProfitRow struct {
	Item        string `json:"item" db:"item"`
	ThirdParty  string `json:"third_party" db:"third_party"`
	GrossProfit string `json:"gross_profit" db:"gross_profit"`
}

// DecisionLog is a persisted record of one submitted decision.
type DecisionLog struct {
	ID           string    `json:"id" db:"id"`
	GuestName    string    `json:"guest_name" db:"guest_name"`
	LastName     string    `json:"last_name" db:"last_name"`
	DOB          string    `json:"dob" db:"dob"`
	FirstInitial string    `json:"first_initial" db:"first_initial"`
	MRN          string    `json:"mrn" db:"mrn"`
	Insurance    string    `json:"insurance" db:"insurance"`
	Drugs        string    `json:"drugs" db:"drugs"`
	TotalProfit  float64   `json:"total_profit" db:"total_profit"`
	Decision     Decision  `json:"decision" db:"decision"`
	TxnID        string    `json:"transaction_id" db:"txn_id"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// LogFilter narrows and pages the admin log listing.
type LogFilter struct {
	GuestName     string `json:"guest_name"`
	Decision      string `json:"decision"`
	DateFrom      string `json:"date_from"`
	DateTo        string `json:"date_to"`
	Page          int    `json:"page"`
	PageSize      int    `json:"page_size"`
	SortField     string `json:"sort_field"`
	SortDirection string `json:"sort_direction"`
}

// LogPage is one page of decision logs plus the unpaged total.
type LogPage struct {
	Items    []DecisionLog `json:"items"`
	Total    int           `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
}

// UserActivity summarizes one guest's decision volume.
type UserActivity struct {
	GuestName   string  `json:"guest_name" db:"guest_name"`
	Decisions   int     `json:"decisions" db:"decisions"`
	TotalProfit float64 `json:"total_profit" db:"total_profit"`
}

// AnalyticsSummary is the admin dashboard aggregate over (filtered) logs.
type AnalyticsSummary struct {
	TotalDecisions  int            `json:"total_decisions"`
	AppleDecisions  int            `json:"apple_decisions"`
	GrandDecisions  int            `json:"grand_decisions"`
	ApplePercentage int            `json:"apple_percentage"`
	GrandPercentage int            `json:"grand_percentage"`
	TopUsers        []UserActivity `json:"top_users"`
}
