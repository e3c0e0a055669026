package editor

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// ErrBackgroundLoad is returned when no candidate background could be loaded.
var ErrBackgroundLoad = errors.New("map image failed to load")

// maxBackgroundBytes bounds the size of a downloaded background image.
const maxBackgroundBytes = 64 << 20

//go:generate moq -out loader_mock.go . Loader

// Loader fetches and decodes a background image. Decoders for every format
// the raster package registers are available.
type Loader interface {
	Load(ctx context.Context, path string) (image.Image, error)
}

// FileLoader reads backgrounds from the filesystem. Relative paths are
// resolved against Root.
type FileLoader struct {
	Root string
}

// Load implements Loader.
func (l FileLoader) Load(ctx context.Context, path string) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !filepath.IsAbs(path) && l.Root != "" {
		path = filepath.Join(l.Root, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open background: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode background %s: %w", path, err)
	}
	return img, nil
}

// HTTPLoader downloads backgrounds. Relative paths are resolved against
// BaseURL.
type HTTPLoader struct {
	Client  *http.Client
	BaseURL string
}

// Load implements Loader.
func (l HTTPLoader) Load(ctx context.Context, path string) (image.Image, error) {
	target, err := l.resolve(path)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch background: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch background %s: status %d", target, resp.StatusCode)
	}

	img, _, err := image.Decode(io.LimitReader(resp.Body, maxBackgroundBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to decode background %s: %w", target, err)
	}
	return img, nil
}

func (l HTTPLoader) resolve(path string) (string, error) {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") || l.BaseURL == "" {
		return path, nil
	}
	base, err := url.Parse(l.BaseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base url: %w", err)
	}
	ref, err := url.Parse(path)
	if err != nil {
		return "", fmt.Errorf("invalid background path: %w", err)
	}
	return base.ResolveReference(ref).String(), nil
}

// LoaderFor picks an HTTPLoader for URLs and a FileLoader otherwise.
func LoaderFor(source string) Loader {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return HTTPLoader{}
	}
	return FileLoader{}
}

// loadFirst tries every path in order and returns the first image that
// decodes, together with the path it came from.
func loadFirst(ctx context.Context, loader Loader, paths []string) (image.Image, string, error) {
	if len(paths) == 0 {
		return nil, "", fmt.Errorf("%w: no background paths", ErrBackgroundLoad)
	}

	var errs []error
	for _, p := range paths {
		img, err := loader.Load(ctx, p)
		if err == nil {
			return img, p, nil
		}
		if ctx.Err() != nil {
			return nil, "", ctx.Err()
		}
		errs = append(errs, err)
	}
	return nil, "", fmt.Errorf("%w: %w", ErrBackgroundLoad, errors.Join(errs...))
}
