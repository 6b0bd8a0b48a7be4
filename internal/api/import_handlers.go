package api

import (
	stderrors "errors"
	"io"
	"net/http"
	"time"

	"github.com/vytor/duelrank/internal/errors"
	"github.com/vytor/duelrank/internal/logger"
	"github.com/vytor/duelrank/internal/sheets"
	"github.com/vytor/duelrank/internal/worker"
)

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	filename := "duelrank-" + time.Now().UTC().Format("20060102-150405") + ".csv"
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)

	if err := s.ImportService.ExportCSV(r.Context(), w); err != nil {
		logger.FromContext(r.Context()).Error("export failed mid-stream: %v", err)
	}
}

// handleImportCSV replaces the whole session. It refuses to run without
// confirm=true.
func (s *Server) handleImportCSV(w http.ResponseWriter, r *http.Request) {
	if !confirmed(r) {
		handleError(w, r, errors.NewConfirmationError("importing a session"))
		return
	}

	body, name, err := uploadBody(w, r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	logger.FromContext(r.Context()).Info("importing session from %s", name)

	if err := s.ImportService.ImportCSV(r.Context(), body); err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{
		"players": len(s.SessionService.Players(r.Context())),
		"matches": len(s.SessionService.Matches(r.Context())),
	})
}

// handleImportDuels queues a duel sheet replay. The replay replaces the
// session, so it needs confirm=true too.
func (s *Server) handleImportDuels(w http.ResponseWriter, r *http.Request) {
	if !confirmed(r) {
		handleError(w, r, errors.NewConfirmationError("importing a duel sheet"))
		return
	}

	body, name, err := uploadBody(w, r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	data, err := io.ReadAll(body)
	if err != nil {
		handleError(w, r, errors.NewBadRequestError("could not read upload: "+err.Error()))
		return
	}

	if err := s.JobQueue.EnqueueDuelImport(name, data); err != nil {
		if stderrors.Is(err, worker.ErrQueueFull) || stderrors.Is(err, worker.ErrPoolStopped) {
			handleError(w, r, errors.NewUnavailableError(err.Error()))
			return
		}
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusAccepted, map[string]string{"status": "queued"})
}

type sheetImportRequest struct {
	URL string `json:"url"`
}

// handleImportSheet queues a download and replay of a published duel sheet.
func (s *Server) handleImportSheet(w http.ResponseWriter, r *http.Request) {
	if !confirmed(r) {
		handleError(w, r, errors.NewConfirmationError("importing a duel sheet"))
		return
	}

	var req sheetImportRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	if err := sheets.ValidateURL(req.URL); err != nil {
		handleError(w, r, errors.NewValidationError("url", err.Error()))
		return
	}

	if err := s.JobQueue.EnqueueSheetImport(req.URL); err != nil {
		if stderrors.Is(err, worker.ErrQueueFull) || stderrors.Is(err, worker.ErrPoolStopped) {
			handleError(w, r, errors.NewUnavailableError(err.Error()))
			return
		}
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusAccepted, map[string]string{"status": "queued"})
}
