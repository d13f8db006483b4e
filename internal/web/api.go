package web

import (
	"encoding/json"
	"net/http"
	"time"

	"datefilter/internal/apperr"
	"datefilter/internal/view"
)

type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Code    string      `json:"code,omitempty"`
}

type rowsPayload struct {
	view.Snapshot
	CountLine string `json:"count_line"`
}

type validatePayload struct {
	FileName string   `json:"file_name"`
	Sheet    string   `json:"sheet,omitempty"`
	Columns  []string `json:"columns"`
	Rows     int      `json:"rows"`
}

func (a *App) handleAPIRows(w http.ResponseWriter, r *http.Request) {
	sess := a.session(w, r)
	snap := sess.snapshot(r)
	if !snap.Loaded() {
		writeJSON(w, http.StatusConflict, APIResponse{Error: "No data loaded", Code: apperr.CodeNotLoaded})
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    rowsPayload{Snapshot: snap, CountLine: snap.CountLine()},
	})
}

// handleValidate ingests an upload and reports its shape without installing it.
func (a *App) handleValidate(w http.ResponseWriter, r *http.Request) {
	ds, err := a.readUpload(w, r)
	if err != nil {
		writeJSON(w, statusFor(err), APIResponse{Error: apperr.UserMessage(err), Code: apperr.GetCode(err)})
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: validatePayload{
			FileName: ds.FileName,
			Sheet:    ds.Sheet,
			Columns:  ds.Columns,
			Rows:     ds.Len(),
		},
	})
}

func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   a.version,
		"sessions":  a.sessions.count(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
