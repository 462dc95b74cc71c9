package ingest

import (
	"context"
	"fmt"
	"net/http"
	"regexp"

	"github.com/cdirx/decision-tool/internal/domain"
)

// Known shapes of shared-spreadsheet URLs. The document id is the first
// capture group.
var sheetURLPatterns = []*regexp.Regexp{
	regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9-_]+)`),
	regexp.MustCompile(`[?&]id=([a-zA-Z0-9-_]+)`),
}

// SheetID extracts the document identifier from a shared-spreadsheet URL.
func SheetID(rawURL string) (string, error) {
	for _, pattern := range sheetURLPatterns {
		if m := pattern.FindStringSubmatch(rawURL); m != nil {
			return m[1], nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrInvalidSheetURL, rawURL)
}

// ExportURL builds the CSV-export URL for a spreadsheet document id. The
// document must be shared publicly; the export endpoint is unauthenticated.
func ExportURL(docID string) string {
	return fmt.Sprintf("https://docs.google.com/spreadsheets/d/%s/export?format=csv", docID)
}

// FetchCSV downloads CSV text from an export URL and parses it. Network
// failures and non-2xx statuses come back as *FetchError.
func FetchCSV(ctx context.Context, client *http.Client, url string) (*domain.Dataset, error) {
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{URL: url, Status: resp.StatusCode}
	}

	return CSV(resp.Body)
}

// SharedSheet resolves a shared-spreadsheet URL to its CSV export and
// ingests it.
func SharedSheet(ctx context.Context, client *http.Client, rawURL string) (*domain.Dataset, error) {
	docID, err := SheetID(rawURL)
	if err != nil {
		return nil, err
	}
	return FetchCSV(ctx, client, ExportURL(docID))
}
