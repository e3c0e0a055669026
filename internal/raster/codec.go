package raster

import (
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	"image/png"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// DataURLPrefix is the prefix of every encoded drawing buffer.
const DataURLPrefix = "data:image/png;base64,"

// ErrInvalidDataURL indicates a map_data value that is not a base64 image data URL.
var ErrInvalidDataURL = errors.New("invalid image data URL")

// Encoded is a serialised drawing buffer.
type Encoded struct {
	DataURL string
	Digest  string
}

// Encode serialises the buffer as a PNG data URL together with its digest.
func (b *Buffer) Encode() (*Encoded, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.img == nil {
		return nil, ErrNotReady
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, b.img); err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}

	return &Encoded{
		DataURL: DataURLPrefix + base64.StdEncoding.EncodeToString(buf.Bytes()),
		Digest:  Digest(buf.Bytes()),
	}, nil
}

// Digest returns the hex BLAKE2b-256 digest of raw image bytes.
func Digest(raw []byte) string {
	sum := blake2b.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

// ParseDataURL extracts the raw image bytes of a base64 image data URL.
func ParseDataURL(s string) ([]byte, error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return nil, ErrInvalidDataURL
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok || !strings.HasPrefix(meta, "image/") || !strings.HasSuffix(meta, ";base64") {
		return nil, ErrInvalidDataURL
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDataURL, err)
	}
	return raw, nil
}

// DecodeDataURL decodes a base64 image data URL into an image.
func DecodeDataURL(s string) (image.Image, error) {
	raw, err := ParseDataURL(s)
	if err != nil {
		return nil, err
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

// Info describes an encoded image without its pixels.
type Info struct {
	Format string
	Digest string
	Width  int
	Height int
}

// Inspect reads only the header of a data URL image. It is used to
// validate uploads without decoding every pixel.
func Inspect(s string) (*Info, error) {
	raw, err := ParseDataURL(s)
	if err != nil {
		return nil, err
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image header: %w", err)
	}

	return &Info{
		Format: format,
		Digest: Digest(raw),
		Width:  cfg.Width,
		Height: cfg.Height,
	}, nil
}
