// Package session owns the images and results of one collage session: an
// optional fixed image, a bounded variable pool, their decoded pixels and
// the jobs of the last generation.
package session

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/ironsheep/collage-mcp/internal/analysis"
	"github.com/ironsheep/collage-mcp/internal/composition"
	"github.com/ironsheep/collage-mcp/internal/imaging"
	"github.com/ironsheep/collage-mcp/internal/layout"
)

var (
	// ErrNotEnoughImages is returned by Generate when the session holds
	// fewer images than the configured minimum.
	ErrNotEnoughImages = errors.New("not enough images")

	// ErrUnknownImage is returned for an image id the session does not hold.
	ErrUnknownImage = errors.New("unknown image")

	// ErrUnknownJob is returned for a job id not in the last generation.
	ErrUnknownJob = errors.New("unknown job")
)

const (
	DefaultPoolLimit = 20
	DefaultMinImages = 3
)

// File is an uploaded, still encoded image.
type File struct {
	Name string
	Data []byte
}

// Source is the original upload behind an image id, kept for export.
type Source struct {
	Name   string
	Data   []byte
	Format string
}

// MimeType returns the media type of the original upload.
func (s Source) MimeType() string {
	return "image/" + s.Format
}

// FileError reports one upload that was rejected.
type FileError struct {
	Name  string `json:"name"`
	Error string `json:"error"`
}

// AddResult summarizes an AddPool call.
type AddResult struct {
	Added  []composition.SourceImage `json:"added"`
	Failed []FileError               `json:"failed,omitempty"`

	// Dropped counts decoded images discarded because the pool was full.
	Dropped int `json:"dropped,omitempty"`

	// Notice is a human readable message when images were dropped.
	Notice string `json:"notice,omitempty"`
}

// Generation is the outcome of the last Generate call.
type Generation struct {
	TemplateID  string            `json:"template_id"`
	AspectRatio float64           `json:"aspect_ratio"`
	Jobs        []composition.Job `json:"jobs"`
}

// Status describes the session for display.
type Status struct {
	Fixed     *composition.SourceImage  `json:"fixed,omitempty"`
	Pool      []composition.SourceImage `json:"pool"`
	PoolLimit int                       `json:"pool_limit"`
	Total     int                       `json:"total"`
	Ready     bool                      `json:"ready"`
	Jobs      int                       `json:"jobs"`
}

// pendingImage is a decoded upload waiting to join the pool.
type pendingImage struct {
	src    composition.SourceImage
	img    image.Image
	source Source
}

// Session is safe for concurrent use.
type Session struct {
	mu sync.RWMutex

	analyzer  analysis.Analyzer
	generator *composition.Generator
	library   *imaging.Library
	logger    *log.Logger
	newID     func(prefix string) string

	poolLimit int
	minImages int

	fixed   *composition.SourceImage
	pool    []composition.SourceImage
	sources map[string]Source
	last    *Generation
}

// Option configures a Session.
type Option func(*Session)

// WithPoolLimit caps the variable pool.
func WithPoolLimit(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.poolLimit = n
		}
	}
}

// WithMinImages sets how many images Generate requires.
func WithMinImages(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.minImages = n
		}
	}
}

// WithGenerator sets the variation generator.
func WithGenerator(g *composition.Generator) Option {
	return func(s *Session) {
		if g != nil {
			s.generator = g
		}
	}
}

// WithLogger sets the session logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithIDFunc sets how image ids are minted. prefix is "fixed" or "var".
func WithIDFunc(fn func(prefix string) string) Option {
	return func(s *Session) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// New returns an empty session. The fixed image is analyzed with analyzer,
// which is wrapped so that analysis failures fall back to a centered focus.
// A nil analyzer skips analysis.
func New(analyzer analysis.Analyzer, opts ...Option) *Session {
	s := &Session{
		generator: composition.NewGenerator(),
		library:   imaging.NewLibrary(),
		logger:    log.NewWithOptions(io.Discard, log.Options{}),
		newID:     func(prefix string) string { return prefix + "-" + uuid.NewString() },
		poolLimit: DefaultPoolLimit,
		minImages: DefaultMinImages,
		sources:   make(map[string]Source),
	}
	for _, opt := range opts {
		opt(s)
	}
	if analyzer == nil {
		analyzer = analysis.None
	}
	s.analyzer = analysis.WithFallback(analyzer, s.logger)
	return s
}

// SetFixed decodes and analyzes an image and makes it the fixed image,
// replacing any previous one. A decode failure leaves the session unchanged.
func (s *Session) SetFixed(ctx context.Context, name string, data []byte) (composition.SourceImage, error) {
	img, info, err := imaging.DecodeBytes(data, name)
	if err != nil {
		return composition.SourceImage{}, err
	}

	res, err := s.analyzer.Analyze(ctx, data, "image/"+info.Format)
	if err != nil {
		// Unreachable with the fallback wrapper, kept for custom analyzers.
		res = analysis.Fallback(analysis.MarkerFailed)
	}

	src := composition.SourceImage{
		ID:          s.newID("fixed"),
		Width:       info.Width,
		Height:      info.Height,
		FocalPoint:  res.FocalPoint,
		Category:    res.Category,
		Description: res.Description,
	}
	if !src.Category.Valid() {
		src.Category = layout.CategoryOther
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fixed != nil {
		s.forget(s.fixed.ID)
	}
	s.fixed = &src
	s.library.Put(src.ID, img)
	s.sources[src.ID] = Source{Name: name, Data: data, Format: info.Format}

	s.logger.Info("fixed image set", "id", src.ID, "name", name,
		"size", fmt.Sprintf("%dx%d", src.Width, src.Height),
		"category", src.Category, "focus", fmt.Sprintf("%.2f,%.2f", src.FocalPoint.X, src.FocalPoint.Y))
	return src, nil
}

// ClearFixed removes the fixed image, if any.
func (s *Session) ClearFixed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fixed != nil {
		s.forget(s.fixed.ID)
		s.fixed = nil
	}
}

// AddPool decodes files into the variable pool. Files that fail to decode
// are reported in the result and skipped. When the pool would exceed its
// limit, the earliest images are kept and the rest dropped with a notice.
// Pool images are not analyzed: they get a centered focus.
func (s *Session) AddPool(files []File) (AddResult, error) {
	var res AddResult
	var added []pendingImage
	for _, f := range files {
		img, info, err := imaging.DecodeBytes(f.Data, f.Name)
		if err != nil {
			s.logger.Warn("skipping image", "name", f.Name, "err", err)
			res.Failed = append(res.Failed, FileError{Name: f.Name, Error: err.Error()})
			continue
		}
		src := composition.NewSourceImage(s.newID("var"), info.Width, info.Height)
		src.Description = analysis.MarkerGallery
		added = append(added, pendingImage{src: src, img: img, source: Source{Name: f.Name, Data: f.Data, Format: info.Format}})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	room := max(s.poolLimit-len(s.pool), 0)
	if len(added) > room {
		res.Dropped = len(added) - room
		res.Notice = fmt.Sprintf("Max %d variable images allowed. First %d kept.", s.poolLimit, s.poolLimit)
		added = added[:room]
		s.logger.Warn("pool full, images dropped", "dropped", res.Dropped, "limit", s.poolLimit)
	}

	for _, p := range added {
		s.pool = append(s.pool, p.src)
		s.library.Put(p.src.ID, p.img)
		s.sources[p.src.ID] = p.source
		res.Added = append(res.Added, p.src)
	}

	if len(files) > 0 && len(res.Added) == 0 && len(res.Failed) == len(files) {
		return res, fmt.Errorf("failed to decode any of %d images", len(files))
	}
	return res, nil
}

// Remove deletes an image from the pool, or clears the fixed image when id
// names it.
func (s *Session) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fixed != nil && s.fixed.ID == id {
		s.forget(id)
		s.fixed = nil
		return nil
	}
	for i, img := range s.pool {
		if img.ID == id {
			s.pool = append(s.pool[:i], s.pool[i+1:]...)
			s.forget(id)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrUnknownImage, id)
}

// ClearPool removes every variable image.
func (s *Session) ClearPool() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, img := range s.pool {
		s.forget(img.ID)
	}
	s.pool = nil
}

// Reset removes all images and generated jobs.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fixed = nil
	s.pool = nil
	s.sources = make(map[string]Source)
	s.library.Clear()
	s.last = nil
}

// forget drops the pixels and source of id. Callers hold the write lock.
func (s *Session) forget(id string) {
	s.library.Evict(id)
	delete(s.sources, id)
}

// Fixed returns the fixed image.
func (s *Session) Fixed() (composition.SourceImage, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.fixed == nil {
		return composition.SourceImage{}, false
	}
	return *s.fixed, true
}

// Pool returns a copy of the variable pool in upload order.
func (s *Session) Pool() []composition.SourceImage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]composition.SourceImage, len(s.pool))
	copy(out, s.pool)
	return out
}

// Image returns the metadata of any image in the session.
func (s *Session) Image(id string) (composition.SourceImage, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.fixed != nil && s.fixed.ID == id {
		return *s.fixed, true
	}
	for _, img := range s.pool {
		if img.ID == id {
			return img, true
		}
	}
	return composition.SourceImage{}, false
}

// Snapshot returns the decoded images for rendering.
func (s *Session) Snapshot() imaging.Table {
	return s.library.Snapshot()
}

// Source returns the original upload behind id.
func (s *Session) Source(id string) (Source, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	src, ok := s.sources[id]
	return src, ok
}

// Sources returns the original uploads of every image in the session.
func (s *Session) Sources() map[string]Source {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]Source, len(s.sources))
	for id, src := range s.sources {
		out[id] = src
	}
	return out
}

// Total returns the number of images, fixed included.
func (s *Session) Total() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.total()
}

func (s *Session) total() int {
	n := len(s.pool)
	if s.fixed != nil {
		n++
	}
	return n
}

// Ready returns nil when the session holds enough images to generate.
func (s *Session) Ready() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready()
}

func (s *Session) ready() error {
	if n := s.total(); n < s.minImages {
		return fmt.Errorf("%w: have %d, need at least %d", ErrNotEnoughImages, n, s.minImages)
	}
	return nil
}

// Status returns a summary of the session.
func (s *Session) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Status{
		Pool:      make([]composition.SourceImage, len(s.pool)),
		PoolLimit: s.poolLimit,
		Total:     s.total(),
		Ready:     s.ready() == nil,
	}
	copy(st.Pool, s.pool)
	if s.fixed != nil {
		f := *s.fixed
		st.Fixed = &f
	}
	if s.last != nil {
		st.Jobs = len(s.last.Jobs)
	}
	return st
}

// Generate produces count variations of tmpl from the current images and
// keeps them as the session's last generation, replacing the previous one.
func (s *Session) Generate(tmpl *layout.Template, aspectRatio float64, count int) (*Generation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ready(); err != nil {
		return nil, err
	}

	req := composition.Request{
		Pool:        append([]composition.SourceImage(nil), s.pool...),
		Template:    tmpl,
		AspectRatio: aspectRatio,
		Count:       count,
	}
	if s.fixed != nil {
		f := *s.fixed
		req.Fixed = &f
	}

	jobs, err := s.generator.Generate(req)
	if err != nil {
		return nil, err
	}

	for _, job := range jobs {
		if empty := job.Unfilled(tmpl); len(empty) > 0 {
			s.logger.Debug("job has empty slots", "job", job.ID, "slots", empty)
		}
	}

	s.last = &Generation{TemplateID: tmpl.ID, AspectRatio: aspectRatio, Jobs: jobs}
	s.logger.Info("generated variations", "template", tmpl.ID, "count", len(jobs), "images", s.total())
	return s.cloneLast(), nil
}

// StoreJobs replaces the last generation with jobs produced elsewhere.
func (s *Session) StoreJobs(gen Generation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g := gen
	g.Jobs = append([]composition.Job(nil), gen.Jobs...)
	s.last = &g
}

// Last returns the last generation.
func (s *Session) Last() (*Generation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.last == nil {
		return nil, false
	}
	return s.cloneLast(), true
}

// Job returns a job of the last generation with its index.
func (s *Session) Job(id string) (composition.Job, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.last != nil {
		for i, job := range s.last.Jobs {
			if job.ID == id {
				return job, i, nil
			}
		}
	}
	return composition.Job{}, -1, fmt.Errorf("%w: %s", ErrUnknownJob, id)
}

func (s *Session) cloneLast() *Generation {
	g := *s.last
	g.Jobs = append([]composition.Job(nil), s.last.Jobs...)
	return &g
}
