package webui

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap/zapcore"

	"pano_backend/db"
	"pano_backend/diffusion"
	"pano_backend/generator"
	"pano_backend/logging"
	"pano_backend/webui/auth"
)

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

func testLogger() *logging.Logger {
	ws := zapcore.AddSync(discardWriter{})
	return logging.NewTestLogger(ws, ws)
}

type fakeHandler struct {
	result  generator.Result
	lastReq generator.Request
	calls   int
}

func (f *fakeHandler) HandleRequest(ctx context.Context, req generator.Request) generator.Result {
	f.calls++
	f.lastReq = req
	return f.result
}

type fakeHistory struct {
	records []db.GenerationRecord
	err     error
}

func (f *fakeHistory) Recent(ctx context.Context, limit int) ([]db.GenerationRecord, error) {
	return f.records, f.err
}

func newTestServer(t *testing.T, handler RequestHandler, history HistoryLister, hash []byte) *Server {
	t.Helper()
	cfg := DefaultServerConfig(0)
	cfg.PasswordHash = hash
	s, err := NewServer(cfg, handler, history, testLogger())
	if err != nil {
		t.Fatalf("NewServer() error: %v", err)
	}
	return s
}

func TestFormPage(t *testing.T) {
	handler := &fakeHandler{}
	s := newTestServer(t, handler, nil, nil)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{`name="prompt"`, `name="mode"`, `name="steps"`, `name="guidance"`, "a sunny beach with palm trees"} {
		if !strings.Contains(body, want) {
			t.Errorf("form page missing %q", want)
		}
	}
	if handler.calls != 0 {
		t.Errorf("handler calls = %d, want 0 on GET /", handler.calls)
	}
}

func TestGeneratePostSuccess(t *testing.T) {
	handler := &fakeHandler{result: generator.Result{
		Image:   &diffusion.Image{Data: []byte("png-bytes"), Width: 512, Height: 512},
		Message: "Success! Generated 360° panorama\nResolution: 512x512",
	}}
	s := newTestServer(t, handler, nil, nil)

	form := url.Values{
		"prompt":   {"a sunny beach with palm trees"},
		"mode":     {generator.ModeStandard},
		"steps":    {"50"},
		"guidance": {"7.5"},
	}
	req := httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "data:image/png;base64,") {
		t.Error("response missing inline image")
	}
	if !strings.Contains(body, "Resolution: 512x512") {
		t.Error("response missing status message")
	}

	if handler.lastReq.Prompt != "a sunny beach with palm trees" {
		t.Errorf("request prompt = %q", handler.lastReq.Prompt)
	}
	if handler.lastReq.Steps != 50 || handler.lastReq.Guidance != 7.5 {
		t.Errorf("request steps/guidance = %d/%g", handler.lastReq.Steps, handler.lastReq.Guidance)
	}
}

func TestGeneratePostFailureShowsStatus(t *testing.T) {
	handler := &fakeHandler{result: generator.Result{Message: "Error: prompt cannot be empty"}}
	s := newTestServer(t, handler, nil, nil)

	form := url.Values{"prompt": {"   "}}
	req := httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	body := rec.Body.String()
	if !strings.Contains(body, "prompt cannot be empty") {
		t.Error("response missing error status")
	}
	if strings.Contains(body, "data:image/png") {
		t.Error("response has image despite failure")
	}
}

func TestGenerateMalformedNumbersFallBack(t *testing.T) {
	handler := &fakeHandler{result: generator.Result{Message: "x"}}
	s := newTestServer(t, handler, nil, nil)

	form := url.Values{"prompt": {"a cave"}, "steps": {"lots"}, "guidance": {"strong"}}
	req := httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	s.Handler().ServeHTTP(httptest.NewRecorder(), req)

	if handler.lastReq.Steps != 0 || handler.lastReq.Guidance != 0 {
		t.Errorf("steps/guidance = %d/%g, want zero values for defaults",
			handler.lastReq.Steps, handler.lastReq.Guidance)
	}
}

func TestGenerateMethodNotAllowed(t *testing.T) {
	s := newTestServer(t, &fakeHandler{}, nil, nil)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/generate", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, &fakeHandler{}, nil, nil)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("health body = %q", rec.Body.String())
	}
}

func TestHistoryPage(t *testing.T) {
	history := &fakeHistory{records: []db.GenerationRecord{
		{ID: "a", Prompt: "a beach", Steps: 50, Guidance: 7.5, Status: "ok", Enriched: true, CreatedAt: time.Now()},
		{ID: "b", Prompt: "a cave", Steps: 30, Guidance: 9.0, Status: "error", CreatedAt: time.Now()},
	}}
	s := newTestServer(t, &fakeHandler{}, history, nil)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/history", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"a beach", "a cave", "error"} {
		if !strings.Contains(body, want) {
			t.Errorf("history page missing %q", want)
		}
	}
}

func TestHistoryDisabled(t *testing.T) {
	s := newTestServer(t, &fakeHandler{}, nil, nil)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/history", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 when history is disabled", rec.Code)
	}
}

func TestBasicAuth(t *testing.T) {
	hash, err := auth.HashPassword("letmein")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	s := newTestServer(t, &fakeHandler{}, nil, hash)

	// No credentials: rejected.
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status without auth = %d, want 401", rec.Code)
	}

	// Wrong password: rejected.
	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.SetBasicAuth("anyone", "wrong")
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status with wrong password = %d, want 401", rec.Code)
	}

	// Correct password: allowed.
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.SetBasicAuth("anyone", "letmein")
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("status with correct password = %d, want 200", rec.Code)
	}

	// Health check bypasses auth.
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("health status without auth = %d, want 200", rec.Code)
	}
}
