package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/umlgen/internal/diagram"
	"github.com/ziadkadry99/umlgen/internal/generation"
	"github.com/ziadkadry99/umlgen/internal/plantuml"
	"github.com/ziadkadry99/umlgen/internal/render"
	"github.com/ziadkadry99/umlgen/internal/report"
)

// failureMessage is shown for any model failure; the cause is only logged.
const failureMessage = "Something went wrong/Out of credits"

const maxBodyBytes = 1 << 20

type generateRequest struct {
	Description string `json:"description"`
	DiagramType string `json:"diagram_type"`
}

type generateResponse struct {
	RequestID uint64 `json:"request_id"`
	Absent    bool   `json:"absent"`
	Stale     bool   `json:"stale,omitempty"`
	Markup    string `json:"markup,omitempty"`
	Token     string `json:"token,omitempty"`
	URL       string `json:"url,omitempty"`
}

type encodeRequest struct {
	Markup string `json:"markup"`
}

type panRequest struct {
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
}

type imageRequest struct {
	URL   string `json:"url"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

func (s *Server) handleTemplates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.session.Pipeline().Templates().All())
}

func (s *Server) handleTemplate(w http.ResponseWriter, r *http.Request) {
	t := diagram.ParseType(chi.URLParam(r, "type"))
	tmpl, ok := s.session.Pipeline().Templates().Get(t)
	if !ok {
		writeError(w, http.StatusNotFound, "no template for diagram type "+string(t))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"diagram_type": string(t), "template": tmpl})
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if !decode(w, r, &req) {
		return
	}
	t := diagram.ParseType(req.DiagramType)
	if !t.Known() {
		writeError(w, http.StatusBadRequest, "unknown diagram type "+req.DiagramType)
		return
	}

	out, err := s.session.Generate(r.Context(), req.Description, t)
	switch {
	case errors.Is(err, diagram.ErrEmptyDescription):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, generation.ErrGenerationFailed):
		writeError(w, http.StatusBadGateway, failureMessage)
		return
	case err != nil:
		s.log.Error(err, "generate")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := generateResponse{RequestID: out.RequestID, Absent: out.Absent(), Stale: out.Stale}
	if text, ok := out.Markup.Text(); ok {
		resp.Markup = text
		resp.Token = out.Encoded.Token
		resp.URL = out.Encoded.URL
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleEncode(w http.ResponseWriter, r *http.Request) {
	var req encodeRequest
	if !decode(w, r, &req) {
		return
	}
	s.session.Edit(req.Markup)
	writeJSON(w, http.StatusOK, s.session.Pipeline().ToResource(req.Markup))
}

func (s *Server) handleDecode(w http.ResponseWriter, r *http.Request) {
	markup, err := plantuml.Decode(chi.URLParam(r, "token"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"markup": markup})
}

func (s *Server) handleCurrent(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.session.Snapshot())
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	_, enc, ok := s.session.Current()
	if !ok {
		writeError(w, http.StatusNotFound, "No diagram available")
		return
	}

	img, err := s.fetcher.Fetch(r.Context(), enc.URL)
	if err != nil {
		s.log.Error(err, "export")
		var fe *render.FetchError
		if errors.As(err, &fe) {
			writeError(w, http.StatusBadGateway, fe.Error())
			return
		}
		writeError(w, http.StatusBadGateway, "could not fetch diagram image")
		return
	}

	contentType := img.ContentType
	if contentType == "" {
		contentType = "image/svg+xml"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+render.DefaultFileName+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(img.Data)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	snap := s.session.Snapshot()
	page, err := report.Page(report.Input{
		Description: snap.Description,
		Type:        snap.Type,
		Markup:      snap.Markup,
		Encoded:     snap.Encoded,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(page))
}

func (s *Server) handleViewerState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.session.Viewer().State())
}

func (s *Server) handleZoomIn(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.session.Viewer().ZoomIn())
}

func (s *Server) handleZoomOut(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.session.Viewer().ZoomOut())
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.session.Viewer().Reset())
}

func (s *Server) handlePan(w http.ResponseWriter, r *http.Request) {
	var req panRequest
	if !decode(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, s.session.Viewer().Pan(req.DX, req.DY))
}

func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	var req imageRequest
	if !decode(w, r, &req) {
		return
	}
	v := s.session.Viewer()
	if req.OK {
		writeJSON(w, http.StatusOK, v.ImageLoaded(req.URL))
		return
	}
	var cause error
	if msg := strings.TrimSpace(req.Error); msg != "" {
		cause = errors.New(msg)
	}
	writeJSON(w, http.StatusOK, v.ImageFailed(req.URL, cause))
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
