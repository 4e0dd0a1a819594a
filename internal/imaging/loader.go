package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

// Table maps image ids to decoded images. Renderers treat a Table as
// read-only; take a fresh Snapshot from a Library for every render batch.
type Table map[string]image.Image

// Library is a thread-safe store of decoded images keyed by image id.
//
// It plays the part of the asset table a composition job is resolved
// against: jobs only carry ids, the Library holds the pixels. Images stay in
// memory until removed with Evict or Clear.
//
// Library is safe for concurrent use by multiple goroutines.
type Library struct {
	mu     sync.RWMutex
	images map[string]image.Image
}

// NewLibrary creates an empty library.
func NewLibrary() *Library {
	return &Library{
		images: make(map[string]image.Image),
	}
}

// Put stores img under id, replacing any previous image with that id.
func (l *Library) Put(id string, img image.Image) {
	l.mu.Lock()
	l.images[id] = img
	l.mu.Unlock()
}

// Get returns the image stored under id.
func (l *Library) Get(id string) (image.Image, bool) {
	l.mu.RLock()
	img, ok := l.images[id]
	l.mu.RUnlock()
	return img, ok
}

// Evict removes the image stored under id. Unknown ids are ignored.
func (l *Library) Evict(id string) {
	l.mu.Lock()
	delete(l.images, id)
	l.mu.Unlock()
}

// Clear removes all images, freeing the associated memory.
func (l *Library) Clear() {
	l.mu.Lock()
	l.images = make(map[string]image.Image)
	l.mu.Unlock()
}

// Len returns the number of stored images.
func (l *Library) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.images)
}

// Snapshot returns a copy of the id to image mapping. Later changes to the
// library are not visible through the returned Table, so it can be handed
// to concurrent renders without further locking.
func (l *Library) Snapshot() Table {
	l.mu.RLock()
	defer l.mu.RUnlock()

	t := make(Table, len(l.images))
	for id, img := range l.images {
		t[id] = img
	}
	return t
}

// Info contains metadata about a decoded image.
type Info struct {
	// Width and Height are the dimensions after EXIF orientation was applied.
	Width  int `json:"width"`
	Height int `json:"height"`

	// Format is the detected encoding: "jpeg", "png", "gif", "webp", ...
	// Detection is based on file contents, not the name.
	Format string `json:"format"`

	// ColorDepth indicates the bit depth per channel: "8-bit" or "16-bit".
	ColorDepth string `json:"color_depth"`

	// HasAlpha indicates whether the decoded image has an alpha channel.
	HasAlpha bool `json:"has_alpha"`

	// SizeBytes is the size of the encoded input.
	SizeBytes int64 `json:"size_bytes"`
}

// DecodeError reports an image that could not be decoded. Callers exclude
// such an image and carry on with the rest.
type DecodeError struct {
	Name string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode image %s: %v", e.Name, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Decode reads an encoded image, applying the EXIF orientation so that the
// returned pixels are upright. name is only used for error reporting.
//
// Any failure, including a read error, is returned as a *DecodeError.
func Decode(r io.Reader, name string) (image.Image, Info, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, Info{}, &DecodeError{Name: name, Err: err}
	}
	return DecodeBytes(data, name)
}

// DecodeBytes is Decode for an in-memory buffer.
func DecodeBytes(data []byte, name string) (image.Image, Info, error) {
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, Info{}, &DecodeError{Name: name, Err: err}
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, Info{}, &DecodeError{Name: name, Err: err}
	}

	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return nil, Info{}, &DecodeError{Name: name, Err: fmt.Errorf("empty image %dx%d", bounds.Dx(), bounds.Dy())}
	}

	hasAlpha := false
	colorDepth := "8-bit"
	switch img.(type) {
	case *image.RGBA, *image.NRGBA, *image.Paletted:
		hasAlpha = true
	case *image.RGBA64, *image.NRGBA64:
		hasAlpha = true
		colorDepth = "16-bit"
	case *image.Gray16:
		colorDepth = "16-bit"
	}

	return img, Info{
		Width:      bounds.Dx(),
		Height:     bounds.Dy(),
		Format:     format,
		ColorDepth: colorDepth,
		HasAlpha:   hasAlpha,
		SizeBytes:  int64(len(data)),
	}, nil
}

// LoadFile decodes the image at path. The returned bytes are the file
// contents, kept so the original can be packaged on export.
func LoadFile(path string) (image.Image, Info, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, Info{}, nil, fmt.Errorf("failed to open image: %w", err)
	}
	img, info, err := DecodeBytes(data, filepath.Base(path))
	if err != nil {
		return nil, Info{}, nil, err
	}
	return img, info, data, nil
}
