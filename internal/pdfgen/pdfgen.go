// Package pdfgen turns a single image into an A4 PDF document.
package pdfgen

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"time"

	"github.com/go-pdf/fpdf"
)

// Page layout in millimetres.
const (
	marginX    = 10.0
	marginY    = 10.0
	imageWidth = 190.0
)

// ErrUnsupportedImage is returned for data that is not a JPEG, PNG or GIF.
var ErrUnsupportedImage = errors.New("unsupported image format")

var imageTypes = map[string]string{
	"jpeg": "JPG",
	"png":  "PNG",
	"gif":  "GIF",
}

// FromImage writes a one-page A4 portrait PDF with the image placed at the top
// left margin, 190mm wide and scaled to keep its aspect ratio.
func FromImage(data []byte, w io.Writer) error {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	imageType, ok := imageTypes[format]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedImage, format)
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		return fmt.Errorf("%w: empty image", ErrUnsupportedImage)
	}

	doc := fpdf.New("P", "mm", "A4", "")
	doc.AddPage()

	opts := fpdf.ImageOptions{ImageType: imageType}
	doc.RegisterImageOptionsReader("upload", opts, bytes.NewReader(data))
	height := imageWidth * float64(cfg.Height) / float64(cfg.Width)
	doc.ImageOptions("upload", marginX, marginY, imageWidth, height, false, opts, 0, "")

	if err := doc.Error(); err != nil {
		return fmt.Errorf("failed to lay out pdf: %w", err)
	}
	if err := doc.Output(w); err != nil {
		return fmt.Errorf("failed to write pdf: %w", err)
	}
	return nil
}

// Filename is the download name offered for a PDF generated at now.
func Filename(now time.Time) string {
	return fmt.Sprintf("humaniza-documento-%d.pdf", now.UnixMilli())
}
