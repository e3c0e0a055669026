package cli

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpClient "github.com/iudanet/mapboard/internal/client/api"
	"github.com/iudanet/mapboard/internal/discovery"
	"github.com/iudanet/mapboard/internal/models"
	"github.com/iudanet/mapboard/pkg/api"
)

func TestCli_runPull(t *testing.T) {
	remote := lineSnapshot(t, 400, 400, 1234)
	mockAPI := &httpClient.ClientAPIMock{
		GetMapFunc: func(ctx context.Context, key string) (*api.Snapshot, error) {
			return remote, nil
		},
	}
	c, store, out := newTestCli(t, mockAPI)
	ctx := context.Background()

	require.NoError(t, c.runPull(ctx))

	output := out.String()
	assert.Contains(t, output, "✓ Pulled seal-map")
	assert.Contains(t, output, "Timestamp: 1234")
	assert.Contains(t, output, "Published by: node-remote")

	cached, err := store.GetSnapshot(ctx, "seal-map")
	require.NoError(t, err)
	assert.Equal(t, remote.MapData, cached.MapData)
}

func TestCli_runPull_Empty(t *testing.T) {
	mockAPI := &httpClient.ClientAPIMock{
		GetMapFunc: func(ctx context.Context, key string) (*api.Snapshot, error) {
			return nil, notFound()
		},
	}
	c, _, out := newTestCli(t, mockAPI)

	require.NoError(t, c.runPull(context.Background()))
	assert.Contains(t, out.String(), "Page seal-map has no drawing yet.")

	mockAPI.GetMapFunc = func(ctx context.Context, key string) (*api.Snapshot, error) {
		return nil, errors.New("connection refused")
	}
	assert.Error(t, c.runPull(context.Background()))
}

func TestCli_runList(t *testing.T) {
	mockAPI := &httpClient.ClientAPIMock{
		ListMapsFunc: func(ctx context.Context) (*api.MapListResponse, error) {
			return &api.MapListResponse{Maps: []api.MapSummary{
				{Key: "otford-map", Timestamp: 100, UpdatedAt: time.UnixMilli(100).UTC()},
				{Key: "seal-map", Timestamp: 200, UpdatedAt: time.UnixMilli(200).UTC()},
			}}, nil
		},
	}
	c, _, out := newTestCli(t, mockAPI)

	require.NoError(t, c.runList(context.Background()))

	output := out.String()
	assert.Contains(t, output, "KEY")
	assert.Contains(t, output, "otford-map")
	assert.Contains(t, output, "seal-map")
	assert.Contains(t, output, "Total: 2 map(s)")
}

func TestCli_runList_Empty(t *testing.T) {
	mockAPI := &httpClient.ClientAPIMock{
		ListMapsFunc: func(ctx context.Context) (*api.MapListResponse, error) {
			return &api.MapListResponse{}, nil
		},
	}
	c, _, out := newTestCli(t, mockAPI)

	require.NoError(t, c.runList(context.Background()))
	assert.Contains(t, out.String(), "No maps saved on the server yet.")

	mockAPI.ListMapsFunc = func(ctx context.Context) (*api.MapListResponse, error) {
		return nil, errors.New("boom")
	}
	assert.Error(t, c.runList(context.Background()))
}

func TestCli_runPages(t *testing.T) {
	out := &output{}
	New(Deps{IO: newMockIO(out)}).runPages()

	assert.Contains(t, out.String(), "seal-map\n")
	assert.Contains(t, out.String(), "swanley-map\n")
}

type fakeBrowser struct {
	err   error
	found []discovery.Service
}

func (b fakeBrowser) Browse(context.Context) ([]discovery.Service, error) {
	return b.found, b.err
}

func TestCli_runDiscover(t *testing.T) {
	tests := []struct {
		name    string
		browser Browser
		want    []string
		wantErr bool
	}{
		{
			name: "found",
			browser: fakeBrowser{found: []discovery.Service{
				{Instance: "atlas", Host: "atlas.local", Version: "1.0.0", Addr: net.IPv4(192, 168, 1, 10), Port: 8080},
				{Instance: "globe", Host: "globe.local", Addr: net.IPv4(192, 168, 1, 11), Port: 9090},
			}},
			want: []string{
				"http://192.168.1.10:8080  atlas (host atlas.local, version 1.0.0)",
				"http://192.168.1.11:9090  globe (host globe.local, version unknown)",
			},
		},
		{
			name:    "nothing",
			browser: fakeBrowser{},
			want:    []string{"No servers found."},
		},
		{
			name:    "error",
			browser: fakeBrowser{err: errors.New("no multicast")},
			wantErr: true,
		},
		{
			name:    "unavailable",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := &output{}
			c := New(Deps{IO: newMockIO(out), Browser: tt.browser})

			err := c.runDiscover(context.Background())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			for _, line := range tt.want {
				assert.Contains(t, out.String(), line)
			}
		})
	}
}

func TestCli_runStatus(t *testing.T) {
	expires := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	mockAPI := &httpClient.ClientAPIMock{
		HealthFunc: func(ctx context.Context) (*api.HealthResponse, error) {
			return &api.HealthResponse{Status: "ok", Version: "1.2.0", Storage: "sqlite"}, nil
		},
		TokenInfoFunc: func(ctx context.Context) (*api.TokenInfo, error) {
			return &api.TokenInfo{ID: "tok-1", Pages: []string{"seal-map"}, ExpiresAt: &expires}, nil
		},
	}
	c, store, out := newTestCli(t, mockAPI)
	ctx := context.Background()

	_, err := store.SaveSnapshot(ctx, &models.Snapshot{Key: "seal-map", Timestamp: 777})
	require.NoError(t, err)
	require.NoError(t, store.SaveLastSyncTimestamp(ctx, "seal-map", 777))

	require.NoError(t, c.runStatus(ctx))

	output := out.String()
	assert.Contains(t, output, "Page: seal-map")
	assert.Contains(t, output, "Node ID: node-test")
	assert.Contains(t, output, "Server: ok (version 1.2.0, storage sqlite)")
	assert.Contains(t, output, "Editor token: tok-1, pages [seal-map]")
	assert.Contains(t, output, "Token expires: 2030-01-01T00:00:00Z")
	assert.Contains(t, output, "Local cache: timestamp 777")
	assert.Contains(t, output, "Last synced: 777")
	assert.Contains(t, output, "Cached pages: 1")
}

func TestCli_runStatus_Offline(t *testing.T) {
	tests := []struct {
		tokenErr error
		want     string
	}{
		{notFound(), "Editor token: not required by server"},
		{&httpClient.StatusError{StatusCode: 401}, "Editor token: missing or rejected"},
		{errors.New("dial tcp: refused"), "Editor token: unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			mockAPI := &httpClient.ClientAPIMock{
				HealthFunc: func(ctx context.Context) (*api.HealthResponse, error) {
					return nil, errors.New("dial tcp: refused")
				},
				TokenInfoFunc: func(ctx context.Context) (*api.TokenInfo, error) {
					return nil, tt.tokenErr
				},
			}
			c, _, out := newTestCli(t, mockAPI)

			require.NoError(t, c.runStatus(context.Background()))
			assert.Contains(t, out.String(), "Server: unavailable")
			assert.Contains(t, out.String(), tt.want)
			assert.Contains(t, out.String(), "Local cache: empty")
		})
	}
}

func TestCli_runExport(t *testing.T) {
	remote := lineSnapshot(t, 400, 400, 50)
	mockAPI := &httpClient.ClientAPIMock{
		GetMapFunc: func(ctx context.Context, key string) (*api.Snapshot, error) {
			return remote, nil
		},
	}
	c, _, out := newTestCli(t, mockAPI)
	bg := writeBackground(t, 400, 400)
	dir := t.TempDir()

	pngPath := filepath.Join(dir, "seal.png")
	require.NoError(t, c.runExport(context.Background(), exportOptions{Out: pngPath, Background: []string{bg}}))

	data, err := os.ReadFile(pngPath)
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)

	// линия поверх белого фона
	r, g, b, _ := img.At(100, 200).RGBA()
	assert.Equal(t, []uint32{0, 0xFFFF, 0xFFFF}, []uint32{r, g, b})
	r, g, b, _ = img.At(300, 200).RGBA()
	assert.Equal(t, []uint32{0xFFFF, 0xFFFF, 0xFFFF}, []uint32{r, g, b})
	assert.Contains(t, out.String(), "(400x400)")

	pdfPath := filepath.Join(dir, "seal.out")
	require.NoError(t, c.runExport(context.Background(), exportOptions{
		Out:        pdfPath,
		Format:     "pdf",
		Background: []string{bg},
		View:       viewOptions{Viewport: "200x200"},
		AsSeen:     true,
	}))
	data, err = os.ReadFile(pdfPath)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
	assert.Contains(t, out.String(), "(200x200)")

	assert.Error(t, c.runExport(context.Background(), exportOptions{Background: []string{bg}}))
	assert.Error(t, c.runExport(context.Background(), exportOptions{Out: pngPath, Format: "gif", Background: []string{bg}}))
}

func TestCli_runWatch(t *testing.T) {
	mockAPI := &httpClient.ClientAPIMock{
		WatchFunc: func(ctx context.Context, key string, handle func(api.WatchEvent) error) error {
			if err := handle(api.WatchEvent{Type: api.EventEmpty}); err != nil {
				return err
			}
			for _, ts := range []int64{10, 5, 20} {
				snap := &api.Snapshot{Key: key, Timestamp: ts, NodeID: "node-remote"}
				if err := handle(api.WatchEvent{Type: api.EventSnapshot, Snapshot: snap}); err != nil {
					return err
				}
			}
			<-ctx.Done()
			return ctx.Err()
		},
	}
	c, _, out := newTestCli(t, mockAPI)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.runWatch(ctx, watchOptions{}) }()

	require.Eventually(t, func() bool {
		return bytes.Contains([]byte(out.String()), []byte("timestamp=20"))
	}, 5*time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}

	output := out.String()
	assert.Contains(t, output, "Watching seal-map")
	assert.Contains(t, output, "timestamp=10 node=node-remote")
	assert.NotContains(t, output, "timestamp=5 ", "stale snapshot must be ignored")
}

func TestCli_runWatch_PermanentError(t *testing.T) {
	mockAPI := &httpClient.ClientAPIMock{
		WatchFunc: func(ctx context.Context, key string, handle func(api.WatchEvent) error) error {
			return &httpClient.StatusError{StatusCode: 400, Message: "invalid page key"}
		},
	}
	c, _, _ := newTestCli(t, mockAPI)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := c.runWatch(ctx, watchOptions{})
	assert.Error(t, err)
}
