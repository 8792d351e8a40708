package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/a-h/templ"

	"github.com/fourohfour/monetizer/internal/analytics"
	"github.com/fourohfour/monetizer/internal/document"
	apperrors "github.com/fourohfour/monetizer/internal/errors"
	"github.com/fourohfour/monetizer/internal/export"
	"github.com/fourohfour/monetizer/internal/logging"
	"github.com/fourohfour/monetizer/internal/page"
	"github.com/fourohfour/monetizer/internal/store"
	"github.com/fourohfour/monetizer/internal/version"
)

// DiagnosticsHeader lists the fields a tolerant decode had to repair.
const DiagnosticsHeader = "X-Monetizer-Diagnostics"

type healthResponse struct {
	Status  string              `json:"status"`
	Version string              `json:"version"`
	Pages   int                 `json:"pages"`
	Clients int                 `json:"clients"`
	Cache   document.CacheStats `json:"cache"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	pages, err := s.store.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, healthResponse{
		Status:  "healthy",
		Version: version.Short(),
		Pages:   len(pages),
		Clients: s.hub.Clients(),
		Cache:   s.cache.Stats(),
	})
}

func (s *Server) handleListPages(w http.ResponseWriter, r *http.Request) {
	pages, err := s.store.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, pages)
}

func (s *Server) handleGetPage(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.store.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writePage(w, http.StatusOK, cfg)
}

func (s *Server) handleCreatePage(w http.ResponseWriter, r *http.Request) {
	cfg, diags, err := s.decodeBody(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	created, err := s.store.Create(r.Context(), cfg)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info(r.Context(), "Page created", "page_id", created.ID, "title", logging.SanitizeForLog(created.Title))
	setDiagnostics(w, diags)
	w.Header().Set("Location", "/api/pages/"+created.ID)
	s.writePage(w, http.StatusCreated, created)
}

func (s *Server) handlePutPage(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	cfg, diags, err := s.decodeBody(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if cfg.ID != "" && cfg.ID != id {
		s.writeError(w, r, apperrors.NewValidationError(apperrors.ErrCodeInvalidPage,
			fmt.Sprintf("body id %q does not match path id %q", cfg.ID, id)))
		return
	}
	cfg.ID = id
	if err := s.store.Save(r.Context(), cfg); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.hub.NotifyReload(id)
	setDiagnostics(w, diags)
	s.writePage(w, http.StatusOK, cfg)
}

func (s *Server) handleDeletePage(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.store.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info(r.Context(), "Page deleted", "page_id", id)
	s.hub.NotifyReload(id)
	w.WriteHeader(http.StatusNoContent)
}

// handleExport downloads the compiled document, or with ?host= the wiring
// file for that host.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	cfg, doc, ok := s.renderLive(w, r)
	if !ok {
		return
	}

	name := export.DocumentName
	body := doc
	if h := r.URL.Query().Get("host"); h != "" {
		host, err := export.ParseHost(h)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		snippet, err := export.Snippet(host, doc)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		name, body = host.Filename(), snippet
	}

	w.Header().Set("Content-Type", contentTypeFor(name))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	s.logger.Debug(r.Context(), "Page exported", "page_id", cfg.ID, "file", name)
	io.WriteString(w, body)
}

// handleView serves the document host integrations proxy their 404s to.
// handleView serves the live document, or the published config itself
// when the client asks for JSON (?format=json or an Accept header
// preferring application/json).
func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	if wantsJSON(r) {
		cfg, ok := s.loadLive(w, r)
		if !ok {
			return
		}
		w.Header().Set("Cache-Control", "no-cache")
		s.writePage(w, http.StatusOK, cfg)
		return
	}
	_, doc, ok := s.renderLive(w, r)
	if !ok {
		return
	}
	w.Header().Set("Cache-Control", "no-cache")
	writeHTML(w, http.StatusOK, doc)
}

func wantsJSON(r *http.Request) bool {
	if f := r.URL.Query().Get("format"); f != "" {
		return strings.EqualFold(f, "json")
	}
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "application/json") && !strings.Contains(accept, "text/html")
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.store.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts := s.preview
	opts.Now = s.now()
	doc, err := s.cache.Compile(cfg, opts)
	if err != nil {
		s.writeError(w, r, apperrors.WrapRender(err, cfg.ID))
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	writeHTML(w, http.StatusOK, doc)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	pages, err := s.store.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexPage(pages).Render(r.Context(), w); err != nil {
		s.logger.Warn(r.Context(), err, "Failed to render index")
	}
}

// loadLive loads the page named in the path unless it is archived.
func (s *Server) loadLive(w http.ResponseWriter, r *http.Request) (*page.Config, bool) {
	cfg, err := s.store.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return nil, false
	}
	if cfg.Status == page.StatusArchived {
		s.writeError(w, r, apperrors.ErrPageNotFound(cfg.ID))
		return nil, false
	}
	return cfg, true
}

// renderLive loads the page and compiles it for its owner's plan. Archived
// pages are not served.
func (s *Server) renderLive(w http.ResponseWriter, r *http.Request) (*page.Config, string, bool) {
	ctx := r.Context()
	cfg, ok := s.loadLive(w, r)
	if !ok {
		return nil, "", false
	}

	plan, err := s.planFor(ctx, cfg.UserID)
	if err != nil {
		s.writeError(w, r, err)
		return nil, "", false
	}
	opts := s.live
	opts.Plan = plan
	opts.Now = s.now()

	doc, err := s.cache.Compile(cfg, opts)
	if err != nil {
		s.writeError(w, r, apperrors.WrapRender(err, cfg.ID))
		return nil, "", false
	}
	return cfg, doc, true
}

func (s *Server) planFor(ctx context.Context, userID string) (analytics.Plan, error) {
	if userID == "" {
		return s.defaultPlan, nil
	}
	return s.store.PlanFor(ctx, userID)
}

func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request) (*page.Config, page.Diagnostics, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, nil, apperrors.NewValidationError(apperrors.ErrCodeInvalidPage, "page config too large")
		}
		return nil, nil, apperrors.NewIOError(apperrors.ErrCodeInvalidPage, "failed to read request body", err)
	}
	cfg, diags, err := page.Decode(data)
	if err != nil {
		return nil, nil, err
	}
	for _, d := range diags {
		s.logger.Warn(r.Context(), d.Err, "Page field reset to default", "field", logging.SanitizeForLog(d.Field))
	}
	return cfg, diags, nil
}

func setDiagnostics(w http.ResponseWriter, diags page.Diagnostics) {
	if len(diags) > 0 {
		w.Header().Set(DiagnosticsHeader, strings.Join(diags.Fields(), ","))
	}
}

func (s *Server) writePage(w http.ResponseWriter, status int, cfg *page.Config) {
	data, err := page.Encode(cfg)
	if err != nil {
		http.Error(w, "Failed to encode page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn(context.Background(), err, "Failed to encode response")
	}
}

type errorResponse struct {
	Error string              `json:"error"`
	Code  string              `json:"code,omitempty"`
	Type  apperrors.ErrorType `json:"type"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperrors.HTTPStatus(err)
	errType := apperrors.GetErrorType(err)
	resp := errorResponse{Error: err.Error(), Type: errType}

	var ae *apperrors.AppError
	if errors.As(err, &ae) {
		resp.Error = ae.Message
		resp.Code = ae.Code
	}
	if status >= http.StatusInternalServerError {
		if apperrors.IsRecoverable(err) {
			s.logger.Warn(r.Context(), err, "Request failed", "path", r.URL.Path, "type", errType)
		} else {
			s.logger.Error(r.Context(), err, "Request failed", "path", r.URL.Path, "type", errType)
		}
		resp.Error = "internal server error"
	}
	s.writeJSON(w, status, resp)
}

func writeHTML(w http.ResponseWriter, status int, doc string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	io.WriteString(w, doc)
}

func contentTypeFor(name string) string {
	switch {
	case strings.HasSuffix(name, ".html"):
		return "text/html; charset=utf-8"
	case strings.HasSuffix(name, ".json"):
		return "application/json"
	default:
		return "text/plain; charset=utf-8"
	}
}

func indexPage(pages []store.Summary) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<!DOCTYPE html><html lang="en"><head><meta charset="UTF-8"><title>404 Monetizer</title></head><body>`)
		b.WriteString(`<h1>Pages</h1>`)
		if len(pages) == 0 {
			b.WriteString(`<p>No pages yet.</p>`)
		} else {
			b.WriteString(`<ul>`)
			for _, p := range pages {
				id := templ.EscapeString(p.ID)
				fmt.Fprintf(&b, `<li><a href="/preview/%s">%s</a> <small>%s, %d features</small></li>`,
					id, templ.EscapeString(p.Title), templ.EscapeString(p.Status), p.Features)
			}
			b.WriteString(`</ul>`)
		}
		b.WriteString(`</body></html>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}
