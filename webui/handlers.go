package webui

import (
	"encoding/base64"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"pano_backend/diffusion"
	"pano_backend/generator"
)

// previewMaxWidth bounds the inline preview so a full-size panorama does
// not bloat the page; the status text still reports the true resolution.
const previewMaxWidth = 768

// formView is the data the form template renders.
type formView struct {
	Prompt     string
	Mode       string
	CustomData string
	Steps      string
	Guidance   string
	Status     string
	ImageSrc   string
	Modes      []string
	Examples   []string
}

func newFormView() formView {
	return formView{
		Mode:     generator.ModeStandard,
		Modes:    []string{generator.ModeStandard, generator.ModeDetailed, generator.ModeCinematic},
		Examples: examplePrompts,
	}
}

func (s *Server) handleForm(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.render(w, "form", newFormView())
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form data", http.StatusBadRequest)
		return
	}

	view := newFormView()
	view.Prompt = r.PostFormValue("prompt")
	view.Mode = r.PostFormValue("mode")
	view.CustomData = r.PostFormValue("custom_data")
	view.Steps = strings.TrimSpace(r.PostFormValue("steps"))
	view.Guidance = strings.TrimSpace(r.PostFormValue("guidance"))

	req := generator.Request{
		Prompt:     view.Prompt,
		Mode:       view.Mode,
		CustomData: view.CustomData,
	}
	// Malformed numbers fall back to the configured defaults rather than
	// failing the request.
	if n, err := strconv.Atoi(view.Steps); err == nil {
		req.Steps = n
	}
	if g, err := strconv.ParseFloat(view.Guidance, 64); err == nil {
		req.Guidance = g
	}

	result := s.handler.HandleRequest(r.Context(), req)
	view.Status = result.Message
	if result.Succeeded() {
		view.ImageSrc = imageDataURI(result.Image)
	}

	s.render(w, "form", view)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// historyView is the data the history template renders.
type historyView struct {
	Records interface{}
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		http.Error(w, "history is not enabled", http.StatusNotFound)
		return
	}

	records, err := s.history.Recent(r.Context(), 20)
	if err != nil {
		s.logger.Error("failed to load history", zap.Error(err))
		http.Error(w, "failed to load history", http.StatusInternalServerError)
		return
	}
	s.render(w, "history", historyView{Records: records})
}

func (s *Server) render(w http.ResponseWriter, name string, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		s.logger.Error("template render failed", zap.String("template", name), zap.Error(err))
	}
}

// imageDataURI encodes the image as an inline data URI, scaled down to a
// preview size when the original is large.
func imageDataURI(img *diffusion.Image) string {
	data := img.Data
	if img.Width > previewMaxWidth {
		if thumb, err := diffusion.Thumbnail(img.Data, previewMaxWidth); err == nil {
			data = thumb
		}
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(data)
}
