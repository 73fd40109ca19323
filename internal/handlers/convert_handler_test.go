package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nvquang/formatforge/internal/analytics"
	"github.com/nvquang/formatforge/internal/config"
	"github.com/nvquang/formatforge/internal/convert"
)

func newTestConvertRouter(t *testing.T) (*gin.Engine, *analytics.Recorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dispatcher := convert.NewDispatcher(convert.DispatcherOptions{
		FFmpegPath: "/nonexistent/ffmpeg",
		PandocPath: "/nonexistent/pandoc",
	}, zap.NewNop())
	recorder := analytics.NewRecorder(analytics.DefaultCapacity)
	cfg := &config.Config{}
	cfg.Upload.MaxFileSize = 10 << 20

	h := NewConvertHandler(dispatcher, recorder, nil, nil, zap.NewNop(), cfg)

	router := gin.New()
	router.POST("/convert", h.Convert)
	return router, recorder
}

func multipartBody(t *testing.T, fileName string, content []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if fileName != "" {
		part, err := writer.CreateFormFile("file", fileName)
		if err != nil {
			t.Fatalf("failed to create form file: %v", err)
		}
		if _, err := part.Write(content); err != nil {
			t.Fatalf("failed to write form file: %v", err)
		}
	}
	for k, v := range fields {
		writer.WriteField(k, v)
	}
	writer.Close()
	return body, writer.FormDataContentType()
}

func TestConvertTxtToHTML(t *testing.T) {
	router, recorder := newTestConvertRouter(t)

	body, contentType := multipartBody(t, "notes.txt", []byte("hello\nworld"), map[string]string{
		"targetFormat": "html",
	})
	req := httptest.NewRequest(http.MethodPost, "/convert", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "text/html") {
		t.Fatalf("Content-Type = %q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, `filename="notes.html"`) {
		t.Fatalf("Content-Disposition = %q", cd)
	}
	if !strings.Contains(w.Body.String(), "<p>hello</p>") {
		t.Fatalf("converted body wrong: %s", w.Body.String())
	}

	// Exactly one analytics event, recorded as a success.
	events := recorder.Export("all")
	if len(events) != 1 || !events[0].Success {
		t.Fatalf("analytics events = %+v", events)
	}
}

func TestConvertMissingFile(t *testing.T) {
	router, _ := newTestConvertRouter(t)

	body, contentType := multipartBody(t, "", nil, map[string]string{"targetFormat": "html"})
	req := httptest.NewRequest(http.MethodPost, "/convert", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if !strings.Contains(w.Body.String(), "No file provided") {
		t.Fatalf("body = %s", w.Body.String())
	}
}

func TestConvertMissingTargetFormat(t *testing.T) {
	router, _ := newTestConvertRouter(t)

	body, contentType := multipartBody(t, "notes.txt", []byte("x"), nil)
	req := httptest.NewRequest(http.MethodPost, "/convert", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if !strings.Contains(w.Body.String(), "No target format specified") {
		t.Fatalf("body = %s", w.Body.String())
	}
}

func TestConvertUnsupportedPairReturns400WithFileInfo(t *testing.T) {
	router, recorder := newTestConvertRouter(t)

	body, contentType := multipartBody(t, "clip.mp4", []byte("fake"), map[string]string{
		"targetFormat": "pdf",
	})
	req := httptest.NewRequest(http.MethodPost, "/convert", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400; body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		Error    string `json:"error"`
		Details  string `json:"details"`
		FileInfo *struct {
			SourceFormat string `json:"sourceFormat"`
			TargetFormat string `json:"targetFormat"`
		} `json:"fileInfo"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid error JSON: %v", err)
	}
	if resp.FileInfo == nil || resp.FileInfo.SourceFormat != "mp4" || resp.FileInfo.TargetFormat != "pdf" {
		t.Fatalf("fileInfo does not name the pair: %s", w.Body.String())
	}

	// The failed attempt still produces an analytics event.
	events := recorder.Export("all")
	if len(events) != 1 || events[0].Success {
		t.Fatalf("analytics events = %+v", events)
	}
}

// ICO->SVG on undecodable bytes serves the placeholder with HTTP 200,
// not an error status.
func TestConvertICOToSVGSoftFailureIs200(t *testing.T) {
	router, _ := newTestConvertRouter(t)

	body, contentType := multipartBody(t, "broken.ico", []byte("not an icon"), map[string]string{
		"targetFormat": "svg",
	})
	req := httptest.NewRequest(http.MethodPost, "/convert", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body = %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "Conversion Failed") {
		t.Fatalf("placeholder marker missing: %s", w.Body.String())
	}
}

func TestConvertOversizedFileRejected(t *testing.T) {
	gin.SetMode(gin.TestMode)
	dispatcher := convert.NewDispatcher(convert.DispatcherOptions{}, zap.NewNop())
	cfg := &config.Config{}
	cfg.Upload.MaxFileSize = 16

	h := NewConvertHandler(dispatcher, analytics.NewRecorder(10), nil, nil, zap.NewNop(), cfg)
	router := gin.New()
	router.POST("/convert", h.Convert)

	body, contentType := multipartBody(t, "big.txt", bytes.Repeat([]byte("a"), 64), map[string]string{
		"targetFormat": "html",
	})
	req := httptest.NewRequest(http.MethodPost, "/convert", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}
