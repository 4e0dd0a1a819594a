package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ironsheep/collage-mcp/internal/export"
	"github.com/ironsheep/collage-mcp/internal/imaging"
	"github.com/ironsheep/collage-mcp/internal/session"
)

// Handler returns the HTTP API. It shares the session with the MCP tools.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			s.logger.Error("unable to write healthcheck", "err", err)
		}
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/templates", s.httpListTemplates)
		r.Get("/templates/{id}/wireframe.png", s.httpWireframe)

		r.Get("/images", s.httpStatus)
		r.Post("/images", s.httpAddImages)
		r.Post("/images/fixed", s.httpSetFixed)
		r.Delete("/images/{id}", s.httpRemoveImage)
		r.Post("/reset", s.httpReset)

		r.Post("/generate", s.httpGenerate)
		r.Get("/jobs/{id}/preview.jpg", s.httpPreview)
		r.Get("/jobs/{id}/package.zip", s.httpPackage)
		r.Get("/export.zip", s.httpExport)
	})

	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("http", "method", r.Method, "path", r.URL.Path,
			"status", ww.Status(), "bytes", ww.BytesWritten(), "request_id", middleware.GetReqID(r.Context()))
	})
}

// Response helpers

func (s *Server) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("unable to encode JSON response", "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := http.StatusBadRequest
	if isNotFound(err) {
		code = http.StatusNotFound
	}
	s.logger.Warn("request failed", "status", code, "err", err)
	http.Error(w, err.Error(), code)
}

func (s *Server) writeBytes(w http.ResponseWriter, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	if _, err := w.Write(data); err != nil {
		s.logger.Error("unable to write response", "err", err)
	}
}

// Handlers

func (s *Server) httpListTemplates(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.listTemplates())
}

func (s *Server) httpWireframe(w http.ResponseWriter, r *http.Request) {
	width, _ := strconv.Atoi(r.URL.Query().Get("width"))
	img, err := s.wireframe(chi.URLParam(r, "id"), width, r.URL.Query().Get("aspect"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	data, err := imaging.EncodeBytes(img, imaging.PNG, 90)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeBytes(w, imaging.PNG.MimeType(), data)
}

func (s *Server) httpStatus(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.session.Status())
}

func (s *Server) maxUpload() int64 {
	if s.cfg.HTTP.MaxUploadMB <= 0 {
		return 32 << 20
	}
	return s.cfg.HTTP.MaxUploadMB << 20
}

// formFiles reads every uploaded file of the named multipart field.
func (s *Server) formFiles(r *http.Request, field string) ([]session.File, error) {
	if err := r.ParseMultipartForm(s.maxUpload()); err != nil {
		return nil, fmt.Errorf("failed to parse upload: %w", err)
	}
	var files []session.File
	for _, fh := range r.MultipartForm.File[field] {
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", fh.Filename, err)
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", fh.Filename, err)
		}
		files = append(files, session.File{Name: fh.Filename, Data: data})
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no files in field %q", field)
	}
	return files, nil
}

func (s *Server) httpSetFixed(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload())
	files, err := s.formFiles(r, "file")
	if err != nil {
		s.writeError(w, err)
		return
	}
	img, err := s.session.SetFixed(r.Context(), files[0].Name, files[0].Data)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, img)
}

func (s *Server) httpAddImages(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload())
	files, err := s.formFiles(r, "files")
	if err != nil {
		s.writeError(w, err)
		return
	}
	res, err := s.session.AddPool(files)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, res)
}

func (s *Server) httpRemoveImage(w http.ResponseWriter, r *http.Request) {
	if err := s.session.Remove(chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, s.session.Status())
}

func (s *Server) httpReset(w http.ResponseWriter, r *http.Request) {
	s.session.Reset()
	s.writeJSON(w, s.session.Status())
}

func (s *Server) httpGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateArgs
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			s.writeError(w, fmt.Errorf("invalid JSON: %w", err))
			return
		}
	}
	gen, err := s.generate(req.Template, req.AspectRatio, req.Count)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, gen)
}

func (s *Server) httpPreview(w http.ResponseWriter, r *http.Request) {
	width, err := s.previewWidth(r.URL.Query().Get("size"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	surface, _, err := s.renderJob(chi.URLParam(r, "id"), width)
	if err != nil {
		s.writeError(w, err)
		return
	}
	data, err := imaging.EncodeBytes(surface, imaging.JPEG, s.cfg.JPEG.Preview)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeBytes(w, imaging.JPEG.MimeType(), data)
}

func (s *Server) httpPackage(w http.ResponseWriter, r *http.Request) {
	quality, err := s.qualityOrDefault(r.URL.Query().Get("quality"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	jobID := chi.URLParam(r, "id")
	data, err := exportToBuffer(func(w io.Writer) error {
		return s.writePackage(w, jobID, quality)
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.PackageName(jobID)))
	s.writeBytes(w, "application/zip", data)
}

func (s *Server) httpExport(w http.ResponseWriter, r *http.Request) {
	quality, err := s.qualityOrDefault(r.URL.Query().Get("quality"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	data, err := exportToBuffer(func(w io.Writer) error {
		_, err := s.writeExport(r.Context(), w, quality)
		return err
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="collages.zip"`)
	s.writeBytes(w, "application/zip", data)
}
