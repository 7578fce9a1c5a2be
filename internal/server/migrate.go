package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/wpx/internal/models"
	"github.com/desertthunder/wpx/internal/shared"
)

// MigrateRequest is the body of POST /migrate.
type MigrateRequest struct {
	MigrationTypes []string `json:"migration_types"`
	BatchSize      int      `json:"batch_size"`
	Offset         int      `json:"offset"`
}

// MigrateResponse reports one batch per requested category, keyed by category name.
type MigrateResponse struct {
	Results map[string]models.RunResult `json:"results"`
	Totals  models.RunResult            `json:"totals"`
}

// MigrationHandler runs migration batches on request.
//
// It holds the run lock for the duration of a request, so concurrent requests (or a CLI run) get 409.
type MigrationHandler struct {
	runner           Runner
	lockPath         string
	defaultBatchSize int
	logger           *log.Logger
}

// NewMigrationHandler creates a [MigrationHandler]. A zero batch_size in a request falls back to defaultBatchSize.
func NewMigrationHandler(runner Runner, lockPath string, defaultBatchSize int, logger *log.Logger) *MigrationHandler {
	return &MigrationHandler{
		runner:           runner,
		lockPath:         lockPath,
		defaultBatchSize: defaultBatchSize,
		logger:           logger,
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *MigrationHandler) Routes() []string {
	return []string{"/migrate"}
}

// ServeHTTP validates the request, takes the run lock and processes one batch of each category.
func (h *MigrationHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req MigrateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	categories, err := models.ParseCategories(req.MigrationTypes)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(categories) == 0 {
		writeError(w, http.StatusBadRequest, "no migration types selected")
		return
	}

	batchSize := req.BatchSize
	if batchSize == 0 {
		batchSize = h.defaultBatchSize
	}
	if err := shared.ValidateBatchSize(batchSize); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Offset < 0 {
		writeError(w, http.StatusBadRequest, "offset must not be negative")
		return
	}

	lock, err := shared.AcquireRunLock(h.lockPath)
	if errors.Is(err, shared.ErrRunInProgress) {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		h.logger.Error("failed to take run lock", "path", h.lockPath, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer lock.Unlock()

	results := h.runner.Run(r.Context(), categories, batchSize, req.Offset, nil)

	resp := MigrateResponse{Results: make(map[string]models.RunResult, len(results))}
	for _, res := range results {
		resp.Results[res.Category.String()] = res.Result
		resp.Totals = resp.Totals.Add(res.Result)
	}
	writeJSON(w, http.StatusOK, resp)
}
