package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image/color"
	"image/jpeg"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/klauspost/compress/zip"

	"github.com/ironsheep/collage-mcp/internal/session"
)

func multipartBody(t *testing.T, field string, files map[string][]byte) (io.Reader, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, data := range files {
		fw, err := mw.CreateFormFile(field, name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := fw.Write(data); err != nil {
			t.Fatal(err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, mw.FormDataContentType()
}

func doRequest(t *testing.T, h http.Handler, method, target string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// uploadSession posts a fixed image and n pool images.
func uploadSession(t *testing.T, h http.Handler, n int) {
	t.Helper()

	body, ct := multipartBody(t, "file", map[string][]byte{"front.png": pngData(t, 60, 40, color.RGBA{255, 0, 0, 255})})
	if rec := doRequest(t, h, http.MethodPost, "/api/images/fixed", body, ct); rec.Code != http.StatusOK {
		t.Fatalf("fixed upload: %d %s", rec.Code, rec.Body.String())
	}

	pool := make(map[string][]byte)
	for i := 0; i < n; i++ {
		pool[fmt.Sprintf("p%d.jpg", i)] = pngData(t, 30, 30, color.RGBA{0, 0, uint8(50 * i), 255})
	}
	body, ct = multipartBody(t, "files", pool)
	if rec := doRequest(t, h, http.MethodPost, "/api/images", body, ct); rec.Code != http.StatusOK {
		t.Fatalf("pool upload: %d %s", rec.Code, rec.Body.String())
	}
}

func TestHTTP_Healthcheck(t *testing.T) {
	h := newTestServer(t).Handler()
	rec := doRequest(t, h, http.MethodGet, "/healthcheck", nil, "")
	if rec.Code != http.StatusOK || rec.Body.String() != "OK" {
		t.Errorf("healthcheck: %d %q", rec.Code, rec.Body.String())
	}
}

func TestHTTP_Templates(t *testing.T) {
	h := newTestServer(t).Handler()

	rec := doRequest(t, h, http.MethodGet, "/api/templates", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	var list TemplateList
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(list.Templates) != 8 {
		t.Errorf("templates: got %d, want 8", len(list.Templates))
	}

	rec = doRequest(t, h, http.MethodGet, "/api/templates/grid-six/wireframe.png?width=120", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("wireframe status: got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("wireframe content type: got %s", ct)
	}

	rec = doRequest(t, h, http.MethodGet, "/api/templates/missing/wireframe.png", nil, "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown template: got %d, want 404", rec.Code)
	}
}

func TestHTTP_UploadAndRemove(t *testing.T) {
	s := newTestServer(t)
	h := s.Handler()
	uploadSession(t, h, 3)

	rec := doRequest(t, h, http.MethodGet, "/api/images", nil, "")
	var st session.Status
	if err := json.Unmarshal(rec.Body.Bytes(), &st); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if st.Total != 4 || st.Fixed == nil {
		t.Fatalf("status: %+v", st)
	}

	rec = doRequest(t, h, http.MethodDelete, "/api/images/"+st.Pool[0].ID, nil, "")
	if rec.Code != http.StatusOK {
		t.Errorf("delete: got %d", rec.Code)
	}
	rec = doRequest(t, h, http.MethodDelete, "/api/images/"+st.Pool[0].ID, nil, "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete: got %d, want 404", rec.Code)
	}

	rec = doRequest(t, h, http.MethodPost, "/api/reset", nil, "")
	if rec.Code != http.StatusOK || s.session.Total() != 0 {
		t.Errorf("reset: %d, %d images left", rec.Code, s.session.Total())
	}
}

func TestHTTP_UploadWithoutFiles(t *testing.T) {
	h := newTestServer(t).Handler()
	body, ct := multipartBody(t, "other", map[string][]byte{"x.png": pngData(t, 4, 4, color.White)})
	rec := doRequest(t, h, http.MethodPost, "/api/images", body, ct)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("got %d, want 400", rec.Code)
	}
}

func TestHTTP_GeneratePreviewAndDownloads(t *testing.T) {
	h := newTestServer(t).Handler()
	uploadSession(t, h, 4)

	rec := doRequest(t, h, http.MethodPost, "/api/generate",
		strings.NewReader(`{"template":"center-hero","aspect_ratio":"square","count":2}`), "application/json")
	if rec.Code != http.StatusOK {
		t.Fatalf("generate: %d %s", rec.Code, rec.Body.String())
	}
	var gen session.Generation
	if err := json.Unmarshal(rec.Body.Bytes(), &gen); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(gen.Jobs) != 2 {
		t.Fatalf("jobs: got %d, want 2", len(gen.Jobs))
	}
	jobID := gen.Jobs[0].ID

	rec = doRequest(t, h, http.MethodGet, "/api/jobs/"+jobID+"/preview.jpg", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("preview: %d %s", rec.Code, rec.Body.String())
	}
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(rec.Body.Bytes()))
	if err != nil {
		t.Fatalf("preview is not a JPEG: %v", err)
	}
	if cfg.Width != 400 || cfg.Height != 400 {
		t.Errorf("preview size: got %dx%d, want 400x400", cfg.Width, cfg.Height)
	}

	rec = doRequest(t, h, http.MethodGet, "/api/jobs/"+jobID+"/package.zip", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("package: %d %s", rec.Code, rec.Body.String())
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "package_"+jobID+".zip") {
		t.Errorf("content disposition: got %s", cd)
	}
	zr, err := zip.NewReader(bytes.NewReader(rec.Body.Bytes()), int64(rec.Body.Len()))
	if err != nil {
		t.Fatalf("invalid zip: %v", err)
	}
	if zr.File[0].Name != "composite_result.jpg" {
		t.Errorf("first entry: got %s", zr.File[0].Name)
	}

	rec = doRequest(t, h, http.MethodGet, "/api/export.zip", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("export: %d %s", rec.Code, rec.Body.String())
	}
	zr, err = zip.NewReader(bytes.NewReader(rec.Body.Bytes()), int64(rec.Body.Len()))
	if err != nil {
		t.Fatalf("invalid zip: %v", err)
	}
	if len(zr.File) != 3 {
		t.Errorf("export entries: got %d, want 3", len(zr.File))
	}

	rec = doRequest(t, h, http.MethodGet, "/api/jobs/nope/preview.jpg", nil, "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown job: got %d, want 404", rec.Code)
	}
}

func TestHTTP_GenerateBadInput(t *testing.T) {
	h := newTestServer(t).Handler()
	uploadSession(t, h, 3)

	tests := []struct {
		name string
		body string
		code int
	}{
		{"invalid json", `{`, http.StatusBadRequest},
		{"bad aspect", `{"aspect_ratio":"wide"}`, http.StatusBadRequest},
		{"unknown template", `{"template":"nope"}`, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, h, http.MethodPost, "/api/generate", strings.NewReader(tt.body), "application/json")
			if rec.Code != tt.code {
				t.Errorf("got %d, want %d", rec.Code, tt.code)
			}
		})
	}
}
