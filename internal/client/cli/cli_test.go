package cli

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpClient "github.com/iudanet/mapboard/internal/client/api"
	"github.com/iudanet/mapboard/internal/client/iocli"
	"github.com/iudanet/mapboard/internal/client/storage/boltdb"
	"github.com/iudanet/mapboard/internal/editor"
	"github.com/iudanet/mapboard/internal/raster"
	"github.com/iudanet/mapboard/pkg/api"
)

// setupTestLogger creates a logger for testing
func setupTestLogger() *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelError}
	handler := slog.NewTextHandler(os.Stdout, opts)
	return slog.New(handler)
}

// output собирает вывод команды, в том числе из горутины подписки
type output struct {
	b  strings.Builder
	mu sync.Mutex
}

func (o *output) add(s string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.b.WriteString(s)
}

func (o *output) String() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.b.String()
}

func newMockIO(out *output) *iocli.IOMock {
	return &iocli.IOMock{
		PrintlnFunc: func(a ...any) {
			out.add(fmt.Sprintln(a...))
		},
		PrintfFunc: func(format string, a ...any) {
			out.add(fmt.Sprintf(format, a...))
		},
		WriteFunc: func(p []byte) (int, error) {
			out.add(string(p))
			return len(p), nil
		},
	}
}

// newTestCli собирает Cli поверх мока API и настоящего bbolt кеша
func newTestCli(t *testing.T, client httpClient.ClientAPI) (*Cli, *boltdb.Storage, *output) {
	t.Helper()
	store, err := boltdb.New(context.Background(), filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	out := &output{}
	c := New(Deps{
		IO:       newMockIO(out),
		API:      client,
		Cache:    store,
		Metadata: store,
		Logger:   setupTestLogger(),
		Page:     "seal-map",
		NodeID:   "node-test",
	})
	c.retryDelay = 10 * time.Millisecond
	return c, store, out
}

// writeBackground сохраняет белую карту w x h в PNG
func writeBackground(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	path := filepath.Join(t.TempDir(), "map.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

// lineSnapshot возвращает серверный snapshot с вертикальной линией x=100, y=100..300
func lineSnapshot(t *testing.T, w, h int, ts int64) *api.Snapshot {
	t.Helper()
	buf, err := raster.New(w, h)
	require.NoError(t, err)
	_, err = buf.Stroke([]raster.Point{{X: 100, Y: 100}, {X: 100, Y: 300}},
		raster.Paint{Color: color.NRGBA{G: 0xFF, B: 0xFF, A: 0xFF}, Width: 10})
	require.NoError(t, err)
	enc, err := buf.Encode()
	require.NoError(t, err)
	return &api.Snapshot{
		Key:       "seal-map",
		MapData:   enc.DataURL,
		Digest:    enc.Digest,
		NodeID:    "node-remote",
		Timestamp: ts,
		UpdatedAt: time.UnixMilli(ts).UTC(),
	}
}

func notFound() error {
	return &httpClient.StatusError{StatusCode: 404, Message: "snapshot not found"}
}

func alphaAt(t *testing.T, dataURL string, x, y int) uint8 {
	t.Helper()
	img, err := raster.DecodeDataURL(dataURL)
	require.NoError(t, err)
	return color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA).A
}

func TestCli_pageKey(t *testing.T) {
	tests := []struct {
		page string
		want string
	}{
		{"seal-map", "seal-map"},
		{"otford-map", "otford-map"},
		{"/maps/kemsing.html", "kemsing-map"},
		{"/maps/unknown.html", "swanley-map"},
		{"", "swanley-map"},
		{"/maps/seal-village/", "seal-map"},
	}
	for _, tt := range tests {
		t.Run(tt.page, func(t *testing.T) {
			c := &Cli{page: tt.page}
			assert.Equal(t, tt.want, c.pageKey())
		})
	}
}

func TestParseStroke(t *testing.T) {
	pts, err := parseStroke("100,100 100,300")
	require.NoError(t, err)
	assert.Equal(t, []editor.Point{{X: 100, Y: 100}, {X: 100, Y: 300}}, pts)

	pts, err = parseStroke("1.5,2;3, 4")
	require.Error(t, err, "space inside a point splits it")
	assert.Nil(t, pts)

	pts, err = parseStroke("1.5,2;3,4")
	require.NoError(t, err)
	assert.Equal(t, []editor.Point{{X: 1.5, Y: 2}, {X: 3, Y: 4}}, pts)

	for _, bad := range []string{"", "   ", "1", "a,1", "1,b"} {
		_, err := parseStroke(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseSize(t *testing.T) {
	w, h, err := parseSize("1200x800")
	require.NoError(t, err)
	assert.Equal(t, 1200, w)
	assert.Equal(t, 800, h)

	w, h, err = parseSize("600X400")
	require.NoError(t, err)
	assert.Equal(t, []int{600, 400}, []int{w, h})

	for _, bad := range []string{"", "100", "0x10", "10x-1", "ax10"} {
		_, _, err := parseSize(bad)
		assert.Error(t, err, bad)
	}
}

func TestReadToken(t *testing.T) {
	out := &output{}

	t.Run("env has priority", func(t *testing.T) {
		t.Setenv(TokenEnv, "env-token")
		token, err := ReadToken(newMockIO(out), TokenSource{FromArgs: "flag-token"})
		require.NoError(t, err)
		assert.Equal(t, "env-token", token)
	})

	t.Run("file before flag", func(t *testing.T) {
		t.Setenv(TokenEnv, "")
		path := filepath.Join(t.TempDir(), "token")
		require.NoError(t, os.WriteFile(path, []byte("file-token\n"), 0o600))

		token, err := ReadToken(newMockIO(out), TokenSource{FromFile: path, FromArgs: "flag-token"})
		require.NoError(t, err)
		assert.Equal(t, "file-token", token)
	})

	t.Run("empty file", func(t *testing.T) {
		t.Setenv(TokenEnv, "")
		path := filepath.Join(t.TempDir(), "token")
		require.NoError(t, os.WriteFile(path, []byte("\n"), 0o600))

		_, err := ReadToken(newMockIO(out), TokenSource{FromFile: path})
		assert.Error(t, err)

		_, err = ReadToken(newMockIO(out), TokenSource{FromFile: filepath.Join(t.TempDir(), "missing")})
		assert.Error(t, err)
	})

	t.Run("flag", func(t *testing.T) {
		t.Setenv(TokenEnv, "")
		token, err := ReadToken(newMockIO(out), TokenSource{FromArgs: "flag-token", Prompt: true})
		require.NoError(t, err)
		assert.Equal(t, "flag-token", token)
	})

	t.Run("prompt", func(t *testing.T) {
		t.Setenv(TokenEnv, "")
		mockIO := newMockIO(out)
		mockIO.ReadPasswordFunc = func(prompt string) (string, error) {
			return "typed-token", nil
		}

		token, err := ReadToken(mockIO, TokenSource{Prompt: true})
		require.NoError(t, err)
		assert.Equal(t, "typed-token", token)
		require.Len(t, mockIO.ReadPasswordCalls(), 1)
		assert.Equal(t, "Editor token: ", mockIO.ReadPasswordCalls()[0].Prompt)
	})

	t.Run("none", func(t *testing.T) {
		t.Setenv(TokenEnv, "")
		token, err := ReadToken(newMockIO(out), TokenSource{})
		require.NoError(t, err)
		assert.Empty(t, token)
	})
}
