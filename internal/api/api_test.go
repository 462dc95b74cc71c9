package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/cdirx/decision-tool/internal/domain"
	"github.com/cdirx/decision-tool/internal/service"
)

const sampleCSV = `Drug Item,Payer/Third Party,Gross Profit $
Doxycycline,Aetna,-5.00
Lisinopril,Aetna,40.00
Metformin,Cigna,80.00
`

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	return NewRouter(&Services{Upload: service.NewUploadService(nil)}, nil)
}

func uploadCSV(t *testing.T, router *gin.Engine, filename, content string) service.UploadResult {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	if _, err := fw.Write([]byte(content)); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/uploads", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("upload status = %d, body %s", rec.Code, rec.Body.String())
	}

	var result service.UploadResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("unmarshal upload result: %v", err)
	}
	return result
}

func TestUploadDecideFlow(t *testing.T) {
	router := newTestRouter(t)

	result := uploadCSV(t, router, "profits.csv", sampleCSV)
	if result.RowCount != 3 {
		t.Fatalf("RowCount = %d, want 3", result.RowCount)
	}
	wantMapping := domain.HeaderMapping{
		Item:        "Drug Item",
		ThirdParty:  "Payer/Third Party",
		GrossProfit: "Gross Profit $",
	}
	if result.SuggestedMapping != wantMapping {
		t.Fatalf("SuggestedMapping = %+v, want %+v", result.SuggestedMapping, wantMapping)
	}

	// Distinct drugs covered by Aetna only.
	values := httptest.NewRecorder()
	router.ServeHTTP(values, httptest.NewRequest(http.MethodGet,
		"/api/v1/uploads/"+result.DatasetID+"/values?header=Drug+Item&third_party_header=Payer%2FThird+Party&third_party=Aetna", nil))
	if values.Code != http.StatusOK {
		t.Fatalf("values status = %d", values.Code)
	}
	var drugs []string
	if err := json.Unmarshal(values.Body.Bytes(), &drugs); err != nil {
		t.Fatalf("unmarshal values: %v", err)
	}
	if len(drugs) != 2 || drugs[0] != "Doxycycline" || drugs[1] != "Lisinopril" {
		t.Fatalf("values = %v", drugs)
	}

	payload := map[string]any{
		"mapping": wantMapping,
		"selection": domain.Selection{
			ThirdParty: "Aetna",
			Items:      []string{"Doxycycline", "Lisinopril"},
		},
	}
	raw, _ := json.Marshal(payload)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/uploads/"+result.DatasetID+"/decision", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("decision status = %d, body %s", rec.Code, rec.Body.String())
	}

	var decisionResult domain.DecisionResult
	if err := json.Unmarshal(rec.Body.Bytes(), &decisionResult); err != nil {
		t.Fatalf("unmarshal decision: %v", err)
	}
	// Doxycycline forces Apple despite 35.00 < 36.50 * 2.
	if decisionResult.Decision != domain.DecisionApple {
		t.Errorf("Decision = %q, want %q", decisionResult.Decision, domain.DecisionApple)
	}
	if decisionResult.TotalProfit != 35.00 {
		t.Errorf("TotalProfit = %v, want 35.00", decisionResult.TotalProfit)
	}
	if decisionResult.TransactionID == "" {
		t.Error("TransactionID is empty")
	}
}

func TestUploadRejectsUnsupportedFormat(t *testing.T) {
	router := newTestRouter(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, _ := mw.CreateFormFile("file", "notes.pdf")
	fw.Write([]byte("%PDF-1.4"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/uploads", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnsupportedMediaType)
	}
}

func TestDecideIncompleteMapping(t *testing.T) {
	router := newTestRouter(t)
	result := uploadCSV(t, router, "profits.csv", sampleCSV)

	payload := `{"mapping":{"item":"Drug Item"},"selection":{"thirdParty":"Aetna","items":["Doxycycline"]}}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/uploads/"+result.DatasetID+"/decision", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnprocessableEntity)
	}
}

func TestDecideUnknownDataset(t *testing.T) {
	router := newTestRouter(t)

	payload := `{"mapping":{"item":"a","thirdParty":"b","grossProfit":"c"},"selection":{"thirdParty":"x","items":["y"]}}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/uploads/nope/decision", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestImportSharedSheetInvalidURL(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/uploads/sheet",
		strings.NewReader(`{"url":"https://example.com/not-a-sheet"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestHealthCheck(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}
