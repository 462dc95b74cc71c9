package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/cdirx/decision-tool/internal/domain"
)

const (
	defaultLogPageSize = 20
	maxLogPageSize     = 200
	topUsersLimit      = 5
)

type logRepository struct {
	db *DB
}

// NewLogRepository returns the Postgres-backed decision log store.
func NewLogRepository(db *DB) *logRepository {
	return &logRepository{db: db}
}

func (r *logRepository) Insert(ctx context.Context, entry *domain.DecisionLog) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}

	query := `
		INSERT INTO decision_logs
			(id, guest_name, last_name, dob, first_initial, mrn, insurance,
			 drugs, total_profit, decision, txn_id, created_at)
		VALUES
			(:id, :guest_name, :last_name, :dob, :first_initial, :mrn, :insurance,
			 :drugs, :total_profit, :decision, :txn_id, :created_at)`

	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("insert decision log: %w", err)
	}
	return nil
}

// buildLogFilterClause constructs the WHERE fragment shared by the list
// and summary queries. startIndex is the first positional placeholder.
func buildLogFilterClause(filter domain.LogFilter, startIndex int) (string, []interface{}) {
	var (
		clauses []string
		args    []interface{}
	)
	idx := startIndex

	if filter.GuestName != "" {
		clauses = append(clauses, fmt.Sprintf("guest_name ILIKE $%d", idx))
		args = append(args, "%"+filter.GuestName+"%")
		idx++
	}

	if filter.Decision != "" {
		if d, ok := domain.ParseDecision(filter.Decision); ok {
			clauses = append(clauses, fmt.Sprintf("decision = $%d", idx))
			args = append(args, string(d))
			idx++
		}
	}

	if filter.DateFrom != "" {
		clauses = append(clauses, fmt.Sprintf("created_at >= $%d::date", idx))
		args = append(args, filter.DateFrom)
		idx++
	}

	if filter.DateTo != "" {
		clauses = append(clauses, fmt.Sprintf("created_at < $%d::date + INTERVAL '1 day'", idx))
		args = append(args, filter.DateTo)
		idx++
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(clauses, " AND "), args
}

// Sortable columns are whitelisted; anything else falls back to recency.
var logSortFields = map[string]string{
	"created_at":   "created_at",
	"guest_name":   "guest_name",
	"total_profit": "total_profit",
	"decision":     "decision",
}

func logOrderClause(field, direction string) string {
	column, ok := logSortFields[strings.ToLower(field)]
	if !ok {
		column = "created_at"
	}
	dir := "DESC"
	if strings.EqualFold(direction, "asc") {
		dir = "ASC"
	}
	return fmt.Sprintf("ORDER BY %s %s, txn_id ASC", column, dir)
}

func (r *logRepository) List(ctx context.Context, filter domain.LogFilter) (*domain.LogPage, error) {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = defaultLogPageSize
	}
	if pageSize > maxLogPageSize {
		pageSize = maxLogPageSize
	}

	whereClause, args := buildLogFilterClause(filter, 1)

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM decision_logs %s", whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, fmt.Errorf("count decision logs: %w", err)
	}

	listQuery := fmt.Sprintf(`
		SELECT id, guest_name, last_name, dob, first_initial, mrn, insurance,
		       drugs, total_profit, decision, txn_id, created_at
		FROM decision_logs
		%s
		%s
		LIMIT $%d OFFSET $%d`,
		whereClause,
		logOrderClause(filter.SortField, filter.SortDirection),
		len(args)+1, len(args)+2,
	)
	listArgs := append(args, pageSize, (page-1)*pageSize)

	items := make([]domain.DecisionLog, 0, pageSize)
	if err := r.db.SelectContext(ctx, &items, listQuery, listArgs...); err != nil {
		return nil, fmt.Errorf("list decision logs: %w", err)
	}

	return &domain.LogPage{
		Items:    items,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

func (r *logRepository) Summary(ctx context.Context, filter domain.LogFilter) (*domain.AnalyticsSummary, error) {
	whereClause, args := buildLogFilterClause(filter, 1)

	countsQuery := fmt.Sprintf(`
		SELECT
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE decision = '%s') AS apple,
			COUNT(*) FILTER (WHERE decision = '%s') AS grand
		FROM decision_logs %s`,
		domain.DecisionApple, domain.DecisionGrand, whereClause)

	var counts struct {
		Total int `db:"total"`
		Apple int `db:"apple"`
		Grand int `db:"grand"`
	}
	if err := r.db.GetContext(ctx, &counts, countsQuery, args...); err != nil {
		return nil, fmt.Errorf("summarize decision logs: %w", err)
	}

	topQuery := fmt.Sprintf(`
		SELECT guest_name,
		       COUNT(*) AS decisions,
		       COALESCE(SUM(total_profit), 0) AS total_profit
		FROM decision_logs
		%s
		GROUP BY guest_name
		ORDER BY decisions DESC, guest_name ASC
		LIMIT %d`, whereClause, topUsersLimit)

	topUsers := make([]domain.UserActivity, 0, topUsersLimit)
	if err := r.db.SelectContext(ctx, &topUsers, topQuery, args...); err != nil {
		return nil, fmt.Errorf("top users: %w", err)
	}

	summary := &domain.AnalyticsSummary{
		TotalDecisions: counts.Total,
		AppleDecisions: counts.Apple,
		GrandDecisions: counts.Grand,
		TopUsers:       topUsers,
	}
	if counts.Total > 0 {
		summary.ApplePercentage = int(float64(counts.Apple)/float64(counts.Total)*100 + 0.5)
		summary.GrandPercentage = int(float64(counts.Grand)/float64(counts.Total)*100 + 0.5)
	}
	return summary, nil
}
