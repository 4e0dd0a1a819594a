package imaging

import (
	"bytes"
	"encoding/base64"
	"image"
	"testing"
)

func TestEncode_RoundTrip(t *testing.T) {
	src := createPatternImage(40, 30)

	for _, format := range []Format{JPEG, PNG} {
		t.Run(string(format), func(t *testing.T) {
			var buf bytes.Buffer
			if err := Encode(&buf, src, format, 90); err != nil {
				t.Fatalf("Encode failed: %v", err)
			}
			img, name, err := image.Decode(&buf)
			if err != nil {
				t.Fatalf("failed to decode output: %v", err)
			}
			if name != string(format) {
				t.Errorf("format: got %s, want %s", name, format)
			}
			if b := img.Bounds(); b.Dx() != 40 || b.Dy() != 30 {
				t.Errorf("size: got %dx%d, want 40x30", b.Dx(), b.Dy())
			}
		})
	}
}

func TestEncode_PNGIsLossless(t *testing.T) {
	src := createPatternImage(10, 10)
	data, err := EncodeBytes(src, PNG, 10)
	if err != nil {
		t.Fatalf("EncodeBytes failed: %v", err)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("failed to decode output: %v", err)
	}
	for _, p := range []image.Point{{2, 2}, {7, 2}, {2, 7}, {7, 7}} {
		if !near(img.At(p.X, p.Y), src.RGBAAt(p.X, p.Y), 0) {
			t.Errorf("pixel %v changed: got %v, want %v", p, img.At(p.X, p.Y), src.RGBAAt(p.X, p.Y))
		}
	}
}

func TestEncode_QualityAffectsSize(t *testing.T) {
	src := createPatternImage(64, 64)
	low, err := EncodeBytes(src, JPEG, 5)
	if err != nil {
		t.Fatalf("EncodeBytes failed: %v", err)
	}
	high, err := EncodeBytes(src, JPEG, 100)
	if err != nil {
		t.Fatalf("EncodeBytes failed: %v", err)
	}
	if len(low) >= len(high) {
		t.Errorf("quality 5 produced %d bytes, quality 100 produced %d", len(low), len(high))
	}
}

func TestEncode_UnsupportedFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, createPatternImage(2, 2), Format("tiff"), 90); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestEncodeBase64(t *testing.T) {
	result, err := EncodeBase64(createPatternImage(20, 10), JPEG, 85)
	if err != nil {
		t.Fatalf("EncodeBase64 failed: %v", err)
	}
	if result.Width != 20 || result.Height != 10 {
		t.Errorf("dimensions: got %dx%d, want 20x10", result.Width, result.Height)
	}
	if result.MimeType != "image/jpeg" {
		t.Errorf("MimeType: got %s, want image/jpeg", result.MimeType)
	}
	if _, err := base64.StdEncoding.DecodeString(result.ImageBase64); err != nil {
		t.Errorf("failed to decode base64: %v", err)
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"jpeg", JPEG, false},
		{"JPG", JPEG, false},
		{".jpg", JPEG, false},
		{"png", PNG, false},
		{" PNG ", PNG, false},
		{"gif", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}

	if PNG.Ext() != ".png" || JPEG.Ext() != ".jpg" {
		t.Errorf("Ext: got %s and %s", PNG.Ext(), JPEG.Ext())
	}
}
