package cli

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ironsheep/collage-mcp/internal/layout"
)

func TestPrintTemplates(t *testing.T) {
	reg := layout.MustBuiltin()

	var buf bytes.Buffer
	if err := printTemplates(&buf, reg); err != nil {
		t.Fatalf("printTemplates failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != reg.Len()+1 {
		t.Fatalf("got %d lines, want header plus %d templates", len(lines), reg.Len())
	}
	for _, id := range reg.IDs() {
		if !strings.Contains(buf.String(), id) {
			t.Errorf("listing should contain %s", id)
		}
	}
	if !strings.Contains(buf.String(), "living_room") {
		t.Error("listing should show preferred hero categories")
	}
}

func TestWriteWireframes(t *testing.T) {
	reg := layout.MustBuiltin()
	dir := filepath.Join(t.TempDir(), "thumbs")

	n, err := writeWireframes(dir, reg, 120, 4.0/3)
	if err != nil {
		t.Fatalf("writeWireframes failed: %v", err)
	}
	if n != reg.Len() {
		t.Errorf("wrote %d, want %d", n, reg.Len())
	}

	f, err := os.Open(filepath.Join(dir, layout.HeroLeft+".png"))
	if err != nil {
		t.Fatalf("missing wireframe: %v", err)
	}
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	if err != nil {
		t.Fatalf("wireframe is not a PNG: %v", err)
	}
	if cfg.Width != 120 || cfg.Height != 90 {
		t.Errorf("size = %dx%d, want 120x90", cfg.Width, cfg.Height)
	}
}

func TestWriteWireframes_InvalidWidth(t *testing.T) {
	if _, err := writeWireframes(t.TempDir(), layout.MustBuiltin(), 0, 1); err == nil {
		t.Error("writeWireframes should reject a zero width")
	}
}
