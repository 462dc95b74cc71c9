package sheets

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/cdirx/decision-tool/internal/repository"
)

// Handler exposes the sync service over HTTP for operators: trigger a
// sync, inspect the stored table.
type Handler struct {
	syncer *Syncer
	repo   repository.ProfitRepository
}

func NewHandler(syncer *Syncer, repo repository.ProfitRepository) *Handler {
	return &Handler{syncer: syncer, repo: repo}
}

func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/sheets/sync", h.TriggerSync).Methods("POST")
	router.HandleFunc("/api/sheets/profit", h.GetProfitTable).Methods("GET")
}

func (h *Handler) TriggerSync(w http.ResponseWriter, r *http.Request) {
	result, err := h.syncer.Sync(r.Context())
	if err != nil {
		http.Error(w, fmt.Sprintf("sync failed: %v", err), http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

func (h *Handler) GetProfitTable(w http.ResponseWriter, r *http.Request) {
	rows, err := h.repo.All(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rows)
}

// HealthCheck reports liveness for the sync sidecar.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
