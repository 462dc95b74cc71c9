package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cdirx/decision-tool/internal/cache"
	"github.com/cdirx/decision-tool/internal/config"
	"github.com/cdirx/decision-tool/internal/domain"
)

type fakeProfitRepo struct {
	rows []domain.ProfitRow
}

func (f *fakeProfitRepo) ReplaceAll(ctx context.Context, rows []domain.ProfitRow) error {
	f.rows = rows
	return nil
}

func (f *fakeProfitRepo) All(ctx context.Context) ([]domain.ProfitRow, error) {
	return f.rows, nil
}

func (f *fakeProfitRepo) Insurances(ctx context.Context) ([]string, error) {
	seen := map[string]struct{}{}
	var out []string
	for _, r := range f.rows {
		if _, dup := seen[r.ThirdParty]; !dup {
			seen[r.ThirdParty] = struct{}{}
			out = append(out, r.ThirdParty)
		}
	}
	return out, nil
}

func (f *fakeProfitRepo) DrugsFor(ctx context.Context, insurance string) ([]string, error) {
	var out []string
	for _, r := range f.rows {
		if r.ThirdParty == insurance {
			out = append(out, r.Item)
		}
	}
	return out, nil
}

type fakeLogRepo struct {
	inserted  []*domain.DecisionLog
	insertErr error
}

func (f *fakeLogRepo) Insert(ctx context.Context, entry *domain.DecisionLog) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = append(f.inserted, entry)
	return nil
}

func (f *fakeLogRepo) List(ctx context.Context, filter domain.LogFilter) (*domain.LogPage, error) {
	return &domain.LogPage{}, nil
}

func (f *fakeLogRepo) Summary(ctx context.Context, filter domain.LogFilter) (*domain.AnalyticsSummary, error) {
	return &domain.AnalyticsSummary{}, nil
}

func newTestService(profits *fakeProfitRepo, logs *fakeLogRepo) *DecisionService {
	profitCache, summaryCache, _ := cache.New(config.CacheConfig{Enabled: false})
	svc := NewDecisionService(profits, logs, profitCache, summaryCache)
	svc.now = func() time.Time {
		return time.Date(2026, time.March, 7, 12, 0, 0, 0, time.UTC)
	}
	return svc
}

func acmeTable() []domain.ProfitRow {
	return []domain.ProfitRow{
		{Item: "Doxycycline", ThirdParty: "Acme", GrossProfit: "$-5.00"},
		{Item: "Lisinopril", ThirdParty: "Acme", GrossProfit: "$40.00"},
		{Item: "Metformin", ThirdParty: "Acme", GrossProfit: "$50.00"},
	}
}

func validRequest() SubmitRequest {
	return SubmitRequest{
		GuestName:    "jdoe",
		LastName:     "Smith",
		DOB:          "1990-04-01",
		FirstInitial: "A",
		MRN:          "MRN-1001",
		Selection: domain.Selection{
			ThirdParty: "Acme",
			Items:      []string{"Doxycycline", "Lisinopril"},
		},
	}
}

func TestSubmitRecordsLog(t *testing.T) {
	profits := &fakeProfitRepo{rows: acmeTable()}
	logs := &fakeLogRepo{}
	svc := newTestService(profits, logs)

	resp, err := svc.Submit(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if !resp.Logged {
		t.Error("Logged = false, want true")
	}
	if resp.Result.Decision != domain.DecisionApple {
		t.Errorf("Decision = %q, want %q", resp.Result.Decision, domain.DecisionApple)
	}
	if resp.Result.TransactionID == "" {
		t.Error("TransactionID is empty")
	}

	if len(logs.inserted) != 1 {
		t.Fatalf("inserted %d logs, want 1", len(logs.inserted))
	}
	entry := logs.inserted[0]
	if entry.Insurance != "Acme" {
		t.Errorf("Insurance = %q, want Acme", entry.Insurance)
	}
	if entry.Drugs != "Doxycycline ($-5.00), Lisinopril ($40.00)" {
		t.Errorf("Drugs = %q", entry.Drugs)
	}
	if entry.TotalProfit != 35.00 {
		t.Errorf("TotalProfit = %v, want 35.00", entry.TotalProfit)
	}
	if entry.TxnID != resp.Result.TransactionID {
		t.Errorf("TxnID = %q, want %q", entry.TxnID, resp.Result.TransactionID)
	}
}

func TestSubmitLogFailureKeepsDecision(t *testing.T) {
	profits := &fakeProfitRepo{rows: acmeTable()}
	logs := &fakeLogRepo{insertErr: errors.New("db down")}
	svc := newTestService(profits, logs)

	resp, err := svc.Submit(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if resp.Logged {
		t.Error("Logged = true, want false")
	}
	if resp.Result.Decision != domain.DecisionApple {
		t.Errorf("Decision = %q, want %q", resp.Result.Decision, domain.DecisionApple)
	}
}

func TestSubmitValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*SubmitRequest)
	}{
		{"missing guest name", func(r *SubmitRequest) { r.GuestName = " " }},
		{"missing last name", func(r *SubmitRequest) { r.LastName = "" }},
		{"missing insurance", func(r *SubmitRequest) { r.Selection.ThirdParty = "" }},
		{"empty selection", func(r *SubmitRequest) { r.Selection.Items = nil }},
		{"duplicate drugs", func(r *SubmitRequest) {
			r.Selection.Items = []string{"Metformin", "metformin"}
		}},
	}

	svc := newTestService(&fakeProfitRepo{rows: acmeTable()}, &fakeLogRepo{})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(&req)
			if _, err := svc.Submit(context.Background(), req); err == nil {
				t.Error("Submit() error = nil, want validation error")
			}
		})
	}
}

func TestFormatDrugProfits(t *testing.T) {
	got := FormatDrugProfits([]domain.ProfitRecord{
		{Drug: "Lisinopril", Profit: 40},
		{Drug: "Doxycycline", Profit: -5},
	})
	want := "Lisinopril ($40.00), Doxycycline ($-5.00)"
	if got != want {
		t.Errorf("FormatDrugProfits() = %q, want %q", got, want)
	}

	if got := FormatDrugProfits(nil); got != "" {
		t.Errorf("FormatDrugProfits(nil) = %q, want empty", got)
	}
}
