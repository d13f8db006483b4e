package web

import (
	"bytes"
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"datefilter/internal/apperr"
	"datefilter/internal/sheet"
	"datefilter/internal/view"
)

const (
	multipartMemory   = 32 << 20
	multipartOverhead = 1 << 20
)

var allowedExtensions = map[string]bool{
	".xlsx": true,
	".xls":  true,
	".csv":  true,
}

type pageData struct {
	View  view.Snapshot
	Alert string
}

// session returns the caller's session, starting one when the cookie is
// missing or stale.
func (a *App) session(w http.ResponseWriter, r *http.Request) *session {
	if c, err := r.Cookie(a.cfg.Session.CookieName); err == nil {
		if sess := a.sessions.get(c.Value); sess != nil {
			return sess
		}
	}
	sess := a.sessions.create()
	http.SetCookie(w, &http.Cookie{
		Name:     a.cfg.Session.CookieName,
		Value:    sess.id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return sess
}

// snapshot optionally applies the request's q parameter and returns the render model.
func (sess *session) snapshot(r *http.Request) view.Snapshot {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if query := r.URL.Query(); query.Has("q") {
		sess.view.SetFilter(query.Get("q"))
	}
	return sess.view.Snapshot()
}

func (a *App) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-cache")
	sess := a.session(w, r)
	a.render(w, http.StatusOK, "page", pageData{View: sess.snapshot(r)})
}

func (a *App) handleUpload(w http.ResponseWriter, r *http.Request) {
	sess := a.session(w, r)

	ds, err := a.readUpload(w, r)
	if err == nil {
		sess.mu.Lock()
		err = sess.view.Load(ds)
		sess.mu.Unlock()
	}
	if err != nil {
		a.log.Warnf("upload rejected: %v", err)
		sess.mu.Lock()
		snap := sess.view.Snapshot()
		sess.mu.Unlock()
		a.render(w, statusFor(err), "page", pageData{View: snap, Alert: apperr.UserMessage(err)})
		return
	}

	a.log.Infof("session %s loaded %s (%d rows)", sess.id, ds.FileName, ds.Len())
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleRows renders the table fragment the page swaps in on each keystroke.
func (a *App) handleRows(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-cache")
	sess := a.session(w, r)
	snap := sess.snapshot(r)
	if !snap.Loaded() {
		http.Error(w, "No data loaded", http.StatusConflict)
		return
	}
	a.render(w, http.StatusOK, "results", snap)
}

// readUpload decodes the multipart "file" field without touching any session.
func (a *App) readUpload(w http.ResponseWriter, r *http.Request) (*sheet.Dataset, error) {
	r.Body = http.MaxBytesReader(w, r.Body, a.cfg.Upload.MaxFileSize+multipartOverhead)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, apperr.InvalidInput("File too large")
		}
		return nil, apperr.InvalidInput("Failed to read upload")
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, apperr.InvalidInput("Failed to read file")
	}
	defer file.Close()

	if header.Size > a.cfg.Upload.MaxFileSize {
		return nil, apperr.InvalidInput("File too large")
	}
	if !allowedExtensions[strings.ToLower(filepath.Ext(header.Filename))] {
		return nil, apperr.InvalidInput("Invalid file type")
	}

	return a.ingestor.Ingest(file, header.Filename, header.Size)
}

func statusFor(err error) int {
	switch apperr.GetCode(err) {
	case apperr.CodeInvalidInput, apperr.CodeEmptySheet, apperr.CodeDecodeError:
		return http.StatusBadRequest
	case apperr.CodeNotLoaded:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// render executes into a buffer first so a template failure still yields a clean 500.
func (a *App) render(w http.ResponseWriter, status int, name string, data interface{}) {
	var buf bytes.Buffer
	if err := a.templates.ExecuteTemplate(&buf, name, data); err != nil {
		a.log.Errorf("Template error: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}
