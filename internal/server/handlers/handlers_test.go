package handlers

import (
	"image/color"
	"log/slog"
	"net/http"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iudanet/mapboard/internal/crdt"
	"github.com/iudanet/mapboard/internal/raster"
	"github.com/iudanet/mapboard/internal/server/hub"
	"github.com/iudanet/mapboard/internal/server/storage/memory"
)

// setupTestLogger creates a logger for testing
func setupTestLogger() *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: slog.LevelError,
	}
	handler := slog.NewTextHandler(os.Stdout, opts)
	return slog.New(handler)
}

// testEnv собирает handlers поверх in-memory хранилища
type testEnv struct {
	storage *memory.Storage
	hub     *hub.Hub
	clock   *crdt.ServerClock
	maps    *MapsHandler
	watch   *WatchHandler
	mux     *http.ServeMux
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := setupTestLogger()

	env := &testEnv{
		storage: memory.New(),
		hub:     hub.New(logger),
		clock:   crdt.NewServerClock(),
		mux:     http.NewServeMux(),
	}
	env.maps = NewMapsHandler(logger, env.storage, env.clock, env.hub)
	env.watch = NewWatchHandler(logger, env.storage, env.hub)

	env.mux.HandleFunc("GET /api/v1/maps", env.maps.List)
	env.mux.HandleFunc("GET /api/v1/maps/{key}", env.maps.Get)
	env.mux.HandleFunc("PUT /api/v1/maps/{key}", env.maps.Put)
	env.mux.HandleFunc("GET /api/v1/maps/{key}/watch", env.watch.Watch)

	t.Cleanup(env.hub.Close)
	return env
}

// pngDataURL возвращает data URL прозрачного PNG с одной линией
func pngDataURL(t *testing.T, w, h int) string {
	t.Helper()
	buf, err := raster.New(w, h)
	require.NoError(t, err)
	_, err = buf.Stroke([]raster.Point{{X: 0, Y: 0}, {X: float64(w), Y: float64(h)}}, raster.Paint{Color: color.Black, Width: 2})
	require.NoError(t, err)
	enc, err := buf.Encode()
	require.NoError(t, err)
	return enc.DataURL
}

// fixedClock всегда возвращает одно и то же значение
type fixedClock int64

func (c fixedClock) Now() int64 { return int64(c) }
