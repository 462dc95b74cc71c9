package ingest

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSheetID(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		want    string
		wantErr bool
	}{
		{
			name: "edit url",
			url:  "https://docs.google.com/spreadsheets/d/18OMVNlPpyHEmW5NYUXkPFGvVwUnE4llR/edit#gid=0",
			want: "18OMVNlPpyHEmW5NYUXkPFGvVwUnE4llR",
		},
		{
			name: "export url",
			url:  "https://docs.google.com/spreadsheets/d/abc-DEF_123/export?format=csv",
			want: "abc-DEF_123",
		},
		{
			name: "open?id= form",
			url:  "https://docs.google.com/open?id=xyz_789",
			want: "xyz_789",
		},
		{
			name:    "no id anywhere",
			url:     "https://example.com/some/table.csv",
			wantErr: true,
		},
		{
			name:    "empty",
			url:     "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SheetID(tt.url)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidSheetURL) {
					t.Fatalf("SheetID() error = %v, want ErrInvalidSheetURL", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("SheetID() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("SheetID() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExportURL(t *testing.T) {
	want := "https://docs.google.com/spreadsheets/d/doc123/export?format=csv"
	if got := ExportURL("doc123"); got != want {
		t.Errorf("ExportURL() = %q, want %q", got, want)
	}
}

func TestFetchCSV(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		w.Write([]byte("Item,Third Party,Gross Profit\nMetformin,Acme,$50.00\n"))
	}))
	defer srv.Close()

	ds, err := FetchCSV(context.Background(), srv.Client(), srv.URL)
	if err != nil {
		t.Fatalf("FetchCSV() error = %v", err)
	}
	if len(ds.Rows) != 1 || ds.Rows[0]["Item"] != "Metformin" {
		t.Errorf("Rows = %v, want single Metformin row", ds.Rows)
	}
}

func TestFetchCSVNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := FetchCSV(context.Background(), srv.Client(), srv.URL)

	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("FetchCSV() error = %v, want *FetchError", err)
	}
	if fetchErr.Status != http.StatusNotFound {
		t.Errorf("Status = %d, want 404", fetchErr.Status)
	}
}

func TestFetchCSVNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	_, err := FetchCSV(context.Background(), nil, srv.URL)

	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("FetchCSV() error = %v, want *FetchError", err)
	}
}

func TestSharedSheetRejectsBadURL(t *testing.T) {
	_, err := SharedSheet(context.Background(), nil, "https://example.com/no-sheet-here")
	if !errors.Is(err, ErrInvalidSheetURL) {
		t.Fatalf("SharedSheet() error = %v, want ErrInvalidSheetURL", err)
	}
}
