package service

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/cdirx/decision-tool/internal/decision"
	"github.com/cdirx/decision-tool/internal/domain"
)

const uploadCSV = "Drug Item,Payer/Third Party,Gross Profit $\n" +
	"Doxycycline,Acme,$-5.00\n" +
	"Lisinopril,Acme,$40.00\n" +
	"Lisinopril,Omega,$12.00\n"

func TestUploadRoundTrip(t *testing.T) {
	svc := NewUploadService(nil)

	up, err := svc.IngestFile(context.Background(), "profit.csv", []byte(uploadCSV))
	if err != nil {
		t.Fatalf("IngestFile() error = %v", err)
	}
	if up.RowCount != 3 {
		t.Errorf("RowCount = %d, want 3", up.RowCount)
	}

	wantMapping := domain.HeaderMapping{
		Item:        "Drug Item",
		ThirdParty:  "Payer/Third Party",
		GrossProfit: "Gross Profit $",
	}
	if up.SuggestedMapping != wantMapping {
		t.Errorf("SuggestedMapping = %+v, want %+v", up.SuggestedMapping, wantMapping)
	}

	drugs, err := svc.Values(up.DatasetID, "Drug Item", "Payer/Third Party", "Acme")
	if err != nil {
		t.Fatalf("Values() error = %v", err)
	}
	if !reflect.DeepEqual(drugs, []string{"Doxycycline", "Lisinopril"}) {
		t.Errorf("Values() = %v", drugs)
	}

	result, err := svc.Decide(up.DatasetID, wantMapping, domain.Selection{
		ThirdParty: "Acme",
		Items:      []string{"Doxycycline", "Lisinopril"},
	})
	if err != nil {
		t.Fatalf("Decide() error = %v", err)
	}
	if result.Decision != domain.DecisionApple {
		t.Errorf("Decision = %q, want %q", result.Decision, domain.DecisionApple)
	}
	if result.TotalProfit != 35.00 {
		t.Errorf("TotalProfit = %v, want 35.00", result.TotalProfit)
	}
	if result.TransactionID == "" {
		t.Error("TransactionID is empty")
	}
}

func TestDecideRejectsIncompleteMapping(t *testing.T) {
	svc := NewUploadService(nil)
	up, err := svc.IngestFile(context.Background(), "profit.csv", []byte(uploadCSV))
	if err != nil {
		t.Fatalf("IngestFile() error = %v", err)
	}

	incomplete := domain.HeaderMapping{Item: "Drug Item"}
	_, err = svc.Decide(up.DatasetID, incomplete, domain.Selection{ThirdParty: "Acme", Items: []string{"Lisinopril"}})
	if !errors.Is(err, decision.ErrIncompleteMapping) {
		t.Fatalf("Decide() error = %v, want ErrIncompleteMapping", err)
	}

	// A complete mapping naming a header the dataset does not have must
	// be rejected the same way, not silently looked up as empty cells.
	wrong := domain.HeaderMapping{Item: "Drug Item", ThirdParty: "Payer/Third Party", GrossProfit: "Margin"}
	_, err = svc.Decide(up.DatasetID, wrong, domain.Selection{ThirdParty: "Acme", Items: []string{"Lisinopril"}})
	if !errors.Is(err, decision.ErrIncompleteMapping) {
		t.Fatalf("Decide() error = %v, want ErrIncompleteMapping", err)
	}
}

func TestDecideUnknownDataset(t *testing.T) {
	svc := NewUploadService(nil)
	_, err := svc.Decide("nope", domain.HeaderMapping{}, domain.Selection{})
	if !errors.Is(err, ErrDatasetNotFound) {
		t.Fatalf("Decide() error = %v, want ErrDatasetNotFound", err)
	}
}

func TestIngestFileUnsupported(t *testing.T) {
	svc := NewUploadService(nil)
	if _, err := svc.IngestFile(context.Background(), "notes.pdf", []byte("x")); err == nil {
		t.Error("IngestFile() error = nil, want unsupported format error")
	}
}
