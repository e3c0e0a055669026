// Package export сохраняет скомпонованную карту (фон и рисунок) в PNG или PDF.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// Format формат экспорта
type Format string

// Supported formats
const (
	FormatPNG Format = "png"
	FormatPDF Format = "pdf"
)

// ErrUnknownFormat возвращается для неподдерживаемого формата
var ErrUnknownFormat = errors.New("unknown export format")

// ErrEmptyImage возвращается для пустого изображения
var ErrEmptyImage = errors.New("nothing to export: image is empty")

// pointsPerPixel переводит пиксели в пункты PDF (96 dpi)
const pointsPerPixel = 72.0 / 96.0

// Options параметры экспорта
type Options struct {
	CreatedAt time.Time
	Title     string
	Format    Format
}

// ParseFormat разбирает имя формата
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimPrefix(s, "."))); f {
	case FormatPNG, FormatPDF:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// FormatFor определяет формат по расширению файла
func FormatFor(path string) (Format, error) {
	return ParseFormat(filepath.Ext(path))
}

// Write пишет изображение в w в формате opts.Format
func Write(w io.Writer, img image.Image, opts Options) error {
	if img == nil || img.Bounds().Empty() {
		return ErrEmptyImage
	}

	switch opts.Format {
	case FormatPNG, "":
		return WritePNG(w, img)
	case FormatPDF:
		return WritePDF(w, img, opts)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, opts.Format)
	}
}

// WritePNG кодирует изображение в PNG
func WritePNG(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("failed to encode png: %w", err)
	}
	return nil
}

// WritePDF кладет изображение на одну страницу PDF размером с картинку
func WritePDF(w io.Writer, img image.Image, opts Options) error {
	b := img.Bounds()
	width := float64(b.Dx()) * pointsPerPixel
	height := float64(b.Dy()) * pointsPerPixel

	orientation := "P"
	if width > height {
		orientation = "L"
	}

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: orientation,
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: width, Ht: height},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	if opts.Title != "" {
		pdf.SetTitle(opts.Title, true)
	}
	pdf.SetCreator("mapboard", false)
	if !opts.CreatedAt.IsZero() {
		pdf.SetCreationDate(opts.CreatedAt)
	}

	var raw bytes.Buffer
	if err := png.Encode(&raw, img); err != nil {
		return fmt.Errorf("failed to encode png: %w", err)
	}

	const name = "map"
	imgOpts := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
	pdf.RegisterImageOptionsReader(name, imgOpts, &raw)
	pdf.AddPage()
	pdf.ImageOptions(name, 0, 0, width, height, false, imgOpts, 0, "")

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to write pdf: %w", err)
	}
	return nil
}

// File пишет изображение в файл; формат берется из расширения,
// если opts.Format не задан
func File(path string, img image.Image, opts Options) (err error) {
	if opts.Format == "" {
		if opts.Format, err = FormatFor(path); err != nil {
			return err
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, cerr)
		}
	}()

	if err := Write(f, img, opts); err != nil {
		_ = os.Remove(path)
		return err
	}
	return nil
}
