package export

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	for y := 0; y < h; y++ {
		img.Set(w/2, y, color.NRGBA{R: 0x00, G: 0xFF, B: 0xFF, A: 0xFF})
	}
	return img
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"png", FormatPNG, false},
		{".PDF", FormatPDF, false},
		{"jpg", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	f, err := FormatFor("/tmp/swanley.pdf")
	require.NoError(t, err)
	assert.Equal(t, FormatPDF, f)
}

func TestWritePNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, testImage(30, 20), Options{Format: FormatPNG}))

	decoded, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 30, 20), decoded.Bounds())

	r, g, b, a := decoded.At(15, 10).RGBA()
	assert.Equal(t, []uint32{0, 0xFFFF, 0xFFFF, 0xFFFF}, []uint32{r, g, b, a})
}

func TestWritePDF(t *testing.T) {
	var buf bytes.Buffer
	opts := Options{
		Format:    FormatPDF,
		Title:     "seal-map",
		CreatedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, Write(&buf, testImage(120, 80), opts))

	out := buf.Bytes()
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	assert.Contains(t, string(out), "%%EOF")
	assert.Contains(t, string(out), "mapboard")
}

func TestWrite_Errors(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, Write(&buf, image.NewRGBA(image.Rect(0, 0, 0, 0)), Options{}), ErrEmptyImage)
	assert.ErrorIs(t, Write(&buf, nil, Options{}), ErrEmptyImage)
	assert.ErrorIs(t, Write(&buf, testImage(2, 2), Options{Format: "gif"}), ErrUnknownFormat)
}

func TestFile(t *testing.T) {
	dir := t.TempDir()

	pngPath := filepath.Join(dir, "map.png")
	require.NoError(t, File(pngPath, testImage(10, 10), Options{}))
	data, err := os.ReadFile(pngPath)
	require.NoError(t, err)
	_, err = png.Decode(bytes.NewReader(data))
	assert.NoError(t, err)

	pdfPath := filepath.Join(dir, "map.out")
	require.NoError(t, File(pdfPath, testImage(10, 10), Options{Format: FormatPDF}))
	data, err = os.ReadFile(pdfPath)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))

	err = File(filepath.Join(dir, "map.txt"), testImage(10, 10), Options{})
	assert.ErrorIs(t, err, ErrUnknownFormat)

	emptyPath := filepath.Join(dir, "empty.png")
	assert.ErrorIs(t, File(emptyPath, image.NewRGBA(image.Rect(0, 0, 0, 0)), Options{}), ErrEmptyImage)
	_, err = os.Stat(emptyPath)
	assert.True(t, os.IsNotExist(err))
}
