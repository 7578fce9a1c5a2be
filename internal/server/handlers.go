package server

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/wpx/internal/legacy"
	"github.com/desertthunder/wpx/internal/models"
)

func connectionHandler(tester ConnectionTester) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		status := tester.TestConnection(r.Context())
		code := http.StatusOK
		if status.Status == legacy.StateError {
			code = http.StatusServiceUnavailable
		}
		writeJSON(w, code, status)
	})
}

// PreviewResponse is the body of GET /preview/{category}.
type PreviewResponse struct {
	Category string              `json:"category"`
	Rows     []legacy.PreviewRow `json:"rows"`
}

func previewHandler(p Previewer) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := models.ParseCategory(r.PathValue("category"))
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		rows := p.Preview(r.Context(), c)
		if rows == nil {
			rows = []legacy.PreviewRow{}
		}
		writeJSON(w, http.StatusOK, PreviewResponse{Category: c.String(), Rows: rows})
	})
}

func ledgerStatsHandler(ledger LedgerStats, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		stats, err := ledger.Stats()
		if err != nil {
			logger.Error("failed to read ledger stats", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to read ledger stats")
			return
		}
		if stats == nil {
			stats = []models.LedgerStat{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"stats": stats})
	})
}
