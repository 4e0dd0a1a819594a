package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"io"
	"strings"

	"github.com/disintegration/imaging"
)

// Format is an output encoding.
type Format string

const (
	JPEG Format = "jpeg"
	PNG  Format = "png"
)

// ParseFormat accepts "jpeg", "jpg" or "png" in any case.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "jpeg", "jpg":
		return JPEG, nil
	case "png":
		return PNG, nil
	default:
		return "", fmt.Errorf("unsupported output format: %s", s)
	}
}

// MimeType returns the media type of the encoding.
func (f Format) MimeType() string {
	if f == PNG {
		return "image/png"
	}
	return "image/jpeg"
}

// Ext returns the file extension including the dot.
func (f Format) Ext() string {
	if f == PNG {
		return ".png"
	}
	return ".jpg"
}

// Encode writes img in the given format. quality (1-100) is the JPEG
// quality; for PNG, which is lossless, it only trades speed for size.
func Encode(w io.Writer, img image.Image, format Format, quality int) error {
	var err error
	switch format {
	case JPEG, "":
		quality = min(max(quality, 1), 100)
		err = imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(quality))
	case PNG:
		level := png.DefaultCompression
		if quality >= 90 {
			level = png.BestCompression
		} else if quality < 50 {
			level = png.BestSpeed
		}
		err = imaging.Encode(w, img, imaging.PNG, imaging.PNGCompressionLevel(level))
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
	if err != nil {
		return fmt.Errorf("failed to encode image: %w", err)
	}
	return nil
}

// EncodeBytes is Encode into a fresh buffer.
func EncodeBytes(img image.Image, format Format, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, img, format, quality); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodedImage is an encoded surface ready to embed in a JSON response.
type EncodedImage struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// EncodeBase64 encodes img and wraps it with its dimensions.
func EncodeBase64(img image.Image, format Format, quality int) (*EncodedImage, error) {
	data, err := EncodeBytes(img, format, quality)
	if err != nil {
		return nil, err
	}
	if format == "" {
		format = JPEG
	}
	return &EncodedImage{
		Width:       img.Bounds().Dx(),
		Height:      img.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(data),
		MimeType:    format.MimeType(),
	}, nil
}
