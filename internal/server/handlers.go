package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dyluth/commviz/internal/filter"
	"github.com/dyluth/commviz/pkg/artifact"
	"go.uber.org/zap"
)

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status string          `json:"status"`
	Error  string          `json:"error,omitempty"`
	Views  map[string]bool `json:"views"`
}

// SelectionResponse describes the stored selection of one page.
type SelectionResponse struct {
	Page      artifact.PageName  `json:"page"`
	Selection artifact.Selection `json:"selection"`
	State     artifact.State     `json:"state"`
	Missing   []string           `json:"missing,omitempty"`
}

// Option is one entry of an option listing.
type Option struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// OptionsResponse is the body of GET /api/pages/{page}/options/{dimension}.
type OptionsResponse struct {
	Page      artifact.PageName `json:"page"`
	Dimension string            `json:"dimension"`
	Options   []Option          `json:"options"`
}

type setSelectionRequest struct {
	Value string `json:"value"`
}

// handleHealthz returns 200 when the session store answers and at least one view root exists.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	layout := s.store.Layout()
	views := map[string]bool{
		"platforms":    isDir(layout.Platforms),
		"polarization": isDir(layout.Polarization),
		"cohesion":     isDir(layout.Cohesion),
		"individual":   isDir(layout.Individual),
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	resp := HealthResponse{Status: "healthy", Views: views}
	status := http.StatusOK

	if err := s.sessions.Ping(ctx); err != nil {
		resp.Status, resp.Error = "unhealthy", fmt.Sprintf("session store: %v", err)
		status = http.StatusServiceUnavailable
	} else if !views["platforms"] && !views["polarization"] && !views["cohesion"] && !views["individual"] {
		resp.Status, resp.Error = "unhealthy", "no artifact view root exists"
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, resp)
}

func (s *Server) handlePages(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Pages())
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := s.store.Overview()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, overview)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	platform := r.PathValue("platform")
	summary, err := s.store.Summarize(platform)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, artifact.PlatformSummary{
		Platform: platform,
		Label:    artifact.DisplayLabel(platform),
		Summary:  summary,
	})
}

func (s *Server) handleGetSelection(w http.ResponseWriter, r *http.Request) {
	model, err := s.loadModel(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, selectionResponse(model))
}

func (s *Server) handleSetSelection(w http.ResponseWriter, r *http.Request) {
	value, err := readValue(r)
	if err != nil {
		writeStatus(w, http.StatusBadRequest, err.Error())
		return
	}

	model, err := s.loadModel(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := model.Set(r.PathValue("dimension"), value); err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.saveModel(r, model); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, selectionResponse(model))
}

func (s *Server) handleClearSelection(w http.ResponseWriter, r *http.Request) {
	model, err := s.loadModel(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := model.Clear(r.PathValue("dimension")); err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.saveModel(r, model); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, selectionResponse(model))
}

// handleOptions lists a dimension's options. Ancestor values come from the query string
// when any dimension of the page is given there, otherwise from the session.
// ?match=<glob> and ?q=<label substring> narrow the listing.
func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	page, sel, err := s.requestSelection(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	dim := r.PathValue("dimension")
	ids, err := page.Options(dim, sel)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	criteria := filter.Criteria{Glob: r.URL.Query().Get("match"), Label: r.URL.Query().Get("q")}
	if err := criteria.Validate(); err != nil {
		writeStatus(w, http.StatusBadRequest, err.Error())
		return
	}

	resp := OptionsResponse{Page: page.Name, Dimension: dim, Options: make([]Option, 0, len(ids))}
	for _, id := range criteria.Apply(ids) {
		resp.Options = append(resp.Options, Option{ID: id, Label: artifact.DisplayLabel(id)})
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleRecord resolves the current selection. ?load=true reads artifacts to report titles
// and load errors. An incomplete selection answers 409.
func (s *Server) handleRecord(w http.ResponseWriter, r *http.Request) {
	page, sel, err := s.requestSelection(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if page.State(sel) != artifact.FullySpecified {
		writeStatus(w, http.StatusConflict, fmt.Sprintf("selection is not fully specified (missing: %s)", strings.Join(page.Missing(sel), ", ")))
		return
	}

	load, _ := strconv.ParseBool(r.URL.Query().Get("load"))
	record, err := s.store.Resolve(page.Name, sel, artifact.ResolveOptions{LoadContent: load})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// handleArtifact streams the raw bytes of one artifact of the current selection.
func (s *Server) handleArtifact(w http.ResponseWriter, r *http.Request) {
	page, sel, err := s.requestSelection(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	kind := artifact.Kind(r.PathValue("kind"))
	if kind == artifact.KindClusterList {
		writeStatus(w, http.StatusBadRequest, "cluster-list is a directory; use the record endpoint")
		return
	}

	a, err := s.store.Load(page.Name, sel, kind)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if !a.Exists {
		writeStatus(w, http.StatusNotFound, fmt.Sprintf("%s artifact not available", kind))
		return
	}

	w.Header().Set("Content-Type", a.MediaType)
	w.Header().Set("Content-Length", strconv.Itoa(len(a.Content)))
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(a.Content)
}

// loadModel rebuilds the page model from the session's stored selection.
func (s *Server) loadModel(r *http.Request) (*artifact.Model, error) {
	page, err := s.page(r)
	if err != nil {
		return nil, err
	}

	stored, err := s.sessions.Get(r.Context(), page.Name, sessionID(r.Context()))
	if err != nil {
		return nil, err
	}
	return artifact.NewModel(page, stored), nil
}

func (s *Server) saveModel(r *http.Request, model *artifact.Model) error {
	err := s.sessions.Put(r.Context(), model.Page().Name, sessionID(r.Context()), model.Current())
	if err != nil {
		s.logger.Error("failed to save session", zap.String("session", sessionID(r.Context())), zap.Error(err))
	}
	return err
}

// requestSelection returns the selection a read endpoint works on: the query string
// when it names any dimension of the page, else the reconciled session selection.
// Query values must each be among the options their ancestors allow.
func (s *Server) requestSelection(r *http.Request) (*artifact.Page, artifact.Selection, error) {
	page, err := s.page(r)
	if err != nil {
		return nil, nil, err
	}

	query := r.URL.Query()
	fromQuery := artifact.Selection{}
	for _, d := range page.Dimensions {
		if v := query.Get(d.Name); v != "" {
			fromQuery[d.Name] = v
		}
	}
	if len(fromQuery) > 0 {
		model, err := s.store.Apply(page.Name, fromQuery)
		if err != nil {
			return nil, nil, err
		}
		return page, model.Current(), nil
	}

	model, err := s.loadModel(r)
	if err != nil {
		return nil, nil, err
	}
	return page, model.Current(), nil
}

func (s *Server) page(r *http.Request) (*artifact.Page, error) {
	name, err := artifact.ParsePageName(r.PathValue("page"))
	if err != nil {
		return nil, err
	}
	return s.store.Page(name)
}

func selectionResponse(model *artifact.Model) SelectionResponse {
	sel := model.Current()
	return SelectionResponse{
		Page:      model.Page().Name,
		Selection: sel,
		State:     model.State(),
		Missing:   model.Page().Missing(sel),
	}
}

// readValue accepts {"value": "..."} or ?value=...
func readValue(r *http.Request) (string, error) {
	if v := r.URL.Query().Get("value"); v != "" {
		return v, nil
	}

	var req setSelectionRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 64<<10)).Decode(&req); err != nil {
		return "", fmt.Errorf("request body must be JSON {\"value\": \"...\"}: %v", err)
	}
	if req.Value == "" {
		return "", fmt.Errorf("value is required")
	}
	return req.Value, nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
