package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpClient "github.com/iudanet/mapboard/internal/client/api"
	"github.com/iudanet/mapboard/internal/client/sync"
	"github.com/iudanet/mapboard/internal/editor"
	"github.com/iudanet/mapboard/internal/models"
	"github.com/iudanet/mapboard/internal/raster"
	"github.com/iudanet/mapboard/pkg/api"
)

// putRecorder возвращает PutMapFunc, который запоминает запрос и отвечает
// snapshot с меткой ts
func putRecorder(got *api.PutMapRequest, ts int64) func(context.Context, string, api.PutMapRequest) (*api.Snapshot, error) {
	return func(ctx context.Context, key string, req api.PutMapRequest) (*api.Snapshot, error) {
		*got = req
		return &api.Snapshot{
			Key:       key,
			MapData:   req.MapData,
			NodeID:    req.NodeID,
			Timestamp: ts,
			UpdatedAt: time.UnixMilli(ts).UTC(),
		}, nil
	}
}

func TestCli_runDraw_PublishesStroke(t *testing.T) {
	var published api.PutMapRequest
	mockAPI := &httpClient.ClientAPIMock{
		GetMapFunc: func(ctx context.Context, key string) (*api.Snapshot, error) {
			return nil, notFound()
		},
		PutMapFunc: putRecorder(&published, 1000),
	}
	c, store, out := newTestCli(t, mockAPI)
	ctx := context.Background()

	err := c.runDraw(ctx, drawOptions{
		Tool:       editor.ToolBrush,
		Background: []string{writeBackground(t, 400, 400)},
		Strokes:    []string{"100,100 100,300"},
	})
	require.NoError(t, err)

	require.Len(t, mockAPI.PutMapCalls(), 1)
	assert.Equal(t, "seal-map", mockAPI.PutMapCalls()[0].Key)
	assert.Equal(t, "node-test", published.NodeID)

	// линия закрашена, вокруг пусто
	assert.Equal(t, uint8(0xFF), alphaAt(t, published.MapData, 100, 200))
	assert.Equal(t, uint8(0xFF), alphaAt(t, published.MapData, 100, 100))
	assert.Equal(t, uint8(0), alphaAt(t, published.MapData, 300, 200))
	assert.Equal(t, uint8(0), alphaAt(t, published.MapData, 100, 350))

	output := out.String()
	assert.Contains(t, output, "=== brush on seal-map ===")
	assert.Contains(t, output, "✓ Published 1 stroke(s) to seal-map")
	assert.Contains(t, output, "Timestamp: 1000")

	cached, err := store.GetSnapshot(ctx, "seal-map")
	require.NoError(t, err)
	assert.Equal(t, int64(1000), cached.Timestamp)

	last, err := store.GetLastSyncTimestamp(ctx, "seal-map")
	require.NoError(t, err)
	assert.Equal(t, int64(1000), last)

	view, err := store.GetView(ctx, "seal-map")
	require.NoError(t, err)
	assert.Equal(t, 1.0, view.Scale)
}

func TestCli_runDraw_ZoomedView(t *testing.T) {
	var published api.PutMapRequest
	mockAPI := &httpClient.ClientAPIMock{
		GetMapFunc: func(ctx context.Context, key string) (*api.Snapshot, error) {
			return nil, notFound()
		},
		PutMapFunc: putRecorder(&published, 2000),
	}
	c, store, _ := newTestCli(t, mockAPI)

	// экран 200x200 показывает карту 400x400, zoom 2 от начала координат:
	// экранная точка (50,50) попадает в точку карты (50,50)
	err := c.runDraw(context.Background(), drawOptions{
		Tool:       editor.ToolBrush,
		Background: []string{writeBackground(t, 400, 400)},
		Strokes:    []string{"50,50 50,100"},
		View:       viewOptions{Viewport: "200x200", Zoom: 2},
	})
	require.NoError(t, err)

	assert.Equal(t, uint8(0xFF), alphaAt(t, published.MapData, 50, 75))
	assert.Equal(t, uint8(0), alphaAt(t, published.MapData, 100, 150))

	view, err := store.GetView(context.Background(), "seal-map")
	require.NoError(t, err)
	assert.Equal(t, 2.0, view.Scale)
}

func TestCli_runDraw_EraseOverRemote(t *testing.T) {
	var published api.PutMapRequest
	remote := lineSnapshot(t, 400, 400, 500)
	mockAPI := &httpClient.ClientAPIMock{
		GetMapFunc: func(ctx context.Context, key string) (*api.Snapshot, error) {
			return remote, nil
		},
		PutMapFunc: putRecorder(&published, 600),
	}
	c, _, out := newTestCli(t, mockAPI)

	// удаленный слой применен до рисования
	require.Equal(t, uint8(0xFF), alphaAt(t, remote.MapData, 100, 200))

	err := c.runDraw(context.Background(), drawOptions{
		Tool:       editor.ToolEraser,
		Size:       editor.DefaultEraserSize,
		Background: []string{writeBackground(t, 400, 400)},
		Strokes:    []string{"100,150 100,250"},
	})
	require.NoError(t, err)

	assert.Equal(t, uint8(0), alphaAt(t, published.MapData, 100, 200), "erased")
	assert.Equal(t, uint8(0xFF), alphaAt(t, published.MapData, 100, 110), "outside the eraser path")
	assert.Contains(t, out.String(), "=== eraser on seal-map ===")
	assert.Contains(t, out.String(), "Timestamp: 600")
}

func TestCli_runDraw_PublishFails(t *testing.T) {
	mockAPI := &httpClient.ClientAPIMock{
		GetMapFunc: func(ctx context.Context, key string) (*api.Snapshot, error) {
			return nil, errors.New("connection refused")
		},
		PutMapFunc: func(ctx context.Context, key string, req api.PutMapRequest) (*api.Snapshot, error) {
			return nil, errors.New("connection refused")
		},
	}
	c, store, out := newTestCli(t, mockAPI)
	ctx := context.Background()

	_, err := store.SaveSnapshot(ctx, &models.Snapshot{Key: "seal-map", Timestamp: 42})
	require.NoError(t, err)

	err = c.runDraw(ctx, drawOptions{
		Tool:       editor.ToolBrush,
		Background: []string{writeBackground(t, 300, 300)},
		Strokes:    []string{"10,10 50,50"},
	})
	require.Error(t, err)

	output := out.String()
	assert.Contains(t, output, "Warning: server unavailable, using cached drawing")
	assert.Contains(t, output, sync.SaveErrorNotice)

	// кеш не перезаписан неудачной публикацией
	cached, err := store.GetSnapshot(ctx, "seal-map")
	require.NoError(t, err)
	assert.Equal(t, int64(42), cached.Timestamp)
}

func TestCli_runDraw_BackgroundFallback(t *testing.T) {
	var published api.PutMapRequest
	mockAPI := &httpClient.ClientAPIMock{
		GetMapFunc: func(ctx context.Context, key string) (*api.Snapshot, error) {
			return nil, notFound()
		},
		PutMapFunc: putRecorder(&published, 10),
	}
	c, _, _ := newTestCli(t, mockAPI)

	missing := filepath.Join(t.TempDir(), "images", "seal.png")
	err := c.runDraw(context.Background(), drawOptions{
		Tool:       editor.ToolBrush,
		Background: []string{missing, writeBackground(t, 64, 32)},
		Strokes:    []string{"10,10"},
	})
	require.NoError(t, err)

	img, err := raster.DecodeDataURL(published.MapData)
	require.NoError(t, err)
	assert.Equal(t, 64, img.Bounds().Dx())
	assert.Equal(t, 32, img.Bounds().Dy())
}

func TestCli_runDraw_Errors(t *testing.T) {
	// мок без функций паникует, если до него дойдет вызов
	c, _, _ := newTestCli(t, &httpClient.ClientAPIMock{})
	ctx := context.Background()
	bg := writeBackground(t, 50, 50)

	err := c.runDraw(ctx, drawOptions{Tool: editor.ToolBrush, Background: []string{bg}})
	assert.Error(t, err, "no strokes")

	err = c.runDraw(ctx, drawOptions{Tool: editor.ToolBrush, Background: []string{bg}, Strokes: []string{"1;2"}})
	assert.Error(t, err, "bad stroke")

	mockAPI := &httpClient.ClientAPIMock{
		GetMapFunc: func(ctx context.Context, key string) (*api.Snapshot, error) {
			return nil, notFound()
		},
	}
	c.apiClient = mockAPI
	c.page = "seal-map"
	err = c.runDraw(ctx, drawOptions{
		Tool:       editor.ToolBrush,
		Background: []string{filepath.Join(t.TempDir(), "missing.png")},
		Strokes:    []string{"1,1 2,2"},
	})
	assert.ErrorIs(t, err, editor.ErrBackgroundLoad)
	assert.Empty(t, mockAPI.PutMapCalls())

	err = c.runDraw(ctx, drawOptions{
		Tool:       editor.ToolBrush,
		Color:      "cyan",
		Background: []string{bg},
		Strokes:    []string{"1,1 2,2"},
	})
	assert.Error(t, err, "bad colour")
}

func TestCli_runDraw_WritesExport(t *testing.T) {
	var published api.PutMapRequest
	mockAPI := &httpClient.ClientAPIMock{
		GetMapFunc: func(ctx context.Context, key string) (*api.Snapshot, error) {
			return nil, notFound()
		},
		PutMapFunc: putRecorder(&published, 10),
	}
	c, _, out := newTestCli(t, mockAPI)

	path := filepath.Join(t.TempDir(), "seal.pdf")
	err := c.runDraw(context.Background(), drawOptions{
		Tool:       editor.ToolBrush,
		Background: []string{writeBackground(t, 100, 80)},
		Strokes:    []string{"10,10 90,70"},
		Out:        path,
	})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
	assert.Contains(t, out.String(), "Saved "+path)
}

// без локального кеша команда работает только с сервером
func TestCli_runDraw_WithoutCache(t *testing.T) {
	var published api.PutMapRequest
	mockAPI := &httpClient.ClientAPIMock{
		GetMapFunc: func(ctx context.Context, key string) (*api.Snapshot, error) {
			return nil, notFound()
		},
		PutMapFunc: putRecorder(&published, 10),
	}
	out := &output{}
	c := New(Deps{IO: newMockIO(out), API: mockAPI, Logger: setupTestLogger(), Page: "seal-map"})

	err := c.runDraw(context.Background(), drawOptions{
		Tool:       editor.ToolBrush,
		Background: []string{writeBackground(t, 40, 40)},
		Strokes:    []string{"5,5 30,30"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, published.MapData)
}

// countingPut отвечает на каждый PUT новой меткой времени
func countingPut(start int64) func(context.Context, string, api.PutMapRequest) (*api.Snapshot, error) {
	ts := start
	return func(ctx context.Context, key string, req api.PutMapRequest) (*api.Snapshot, error) {
		ts++
		return &api.Snapshot{Key: key, MapData: req.MapData, NodeID: req.NodeID, Timestamp: ts}, nil
	}
}

func TestCli_runDraw_PublishesEachStroke(t *testing.T) {
	mockAPI := &httpClient.ClientAPIMock{
		GetMapFunc: func(ctx context.Context, key string) (*api.Snapshot, error) {
			return nil, notFound()
		},
		PutMapFunc: countingPut(100),
	}
	c, store, out := newTestCli(t, mockAPI)

	err := c.runDraw(context.Background(), drawOptions{
		Tool:       editor.ToolBrush,
		Background: []string{writeBackground(t, 400, 400)},
		Strokes:    []string{"10,10 50,10", "10,100 50,100", "10,200 50,200"},
	})
	require.NoError(t, err)

	calls := mockAPI.PutMapCalls()
	require.Len(t, calls, 3)
	// каждая публикация содержит штрихи, нарисованные к ее моменту
	assert.Equal(t, uint8(0xFF), alphaAt(t, calls[0].Req.MapData, 30, 10))
	assert.Equal(t, uint8(0), alphaAt(t, calls[0].Req.MapData, 30, 100))
	assert.Equal(t, uint8(0xFF), alphaAt(t, calls[1].Req.MapData, 30, 100))
	assert.Equal(t, uint8(0), alphaAt(t, calls[1].Req.MapData, 30, 200))
	assert.Equal(t, uint8(0xFF), alphaAt(t, calls[2].Req.MapData, 30, 200))

	assert.Contains(t, out.String(), "✓ Published 3 stroke(s) to seal-map")
	assert.Contains(t, out.String(), "Timestamp: 103")

	cached, err := store.GetSnapshot(context.Background(), "seal-map")
	require.NoError(t, err)
	assert.Equal(t, int64(103), cached.Timestamp)
}

func TestCli_runDraw_EraserOverEmptyPixels(t *testing.T) {
	remote := lineSnapshot(t, 400, 400, 500)
	mockAPI := &httpClient.ClientAPIMock{
		GetMapFunc: func(ctx context.Context, key string) (*api.Snapshot, error) {
			return remote, nil
		},
		PutMapFunc: countingPut(600),
	}
	c, _, out := newTestCli(t, mockAPI)
	bg := writeBackground(t, 400, 400)

	// вдали от линии стирать нечего
	err := c.runDraw(context.Background(), drawOptions{
		Tool:       editor.ToolEraser,
		Background: []string{bg},
		Strokes:    []string{"300,50 300,350"},
	})
	require.NoError(t, err)
	assert.Empty(t, mockAPI.PutMapCalls())
	assert.Contains(t, out.String(), "Nothing changed, nothing to publish.")

	// пустой проход и проход по линии: публикуется только второй
	err = c.runDraw(context.Background(), drawOptions{
		Tool:       editor.ToolEraser,
		Background: []string{bg},
		Strokes:    []string{"300,50 300,350", "100,150 100,250"},
	})
	require.NoError(t, err)
	require.Len(t, mockAPI.PutMapCalls(), 1)
	assert.Equal(t, uint8(0), alphaAt(t, mockAPI.PutMapCalls()[0].Req.MapData, 100, 200))
	assert.Contains(t, out.String(), "✓ Published 1 stroke(s) to seal-map")
}

func TestCli_runDraw_PartialPublishFailure(t *testing.T) {
	attempt := 0
	mockAPI := &httpClient.ClientAPIMock{
		GetMapFunc: func(ctx context.Context, key string) (*api.Snapshot, error) {
			return nil, notFound()
		},
		PutMapFunc: func(ctx context.Context, key string, req api.PutMapRequest) (*api.Snapshot, error) {
			attempt++
			if attempt == 1 {
				return nil, errors.New("connection reset by peer")
			}
			return &api.Snapshot{Key: key, MapData: req.MapData, Timestamp: 900}, nil
		},
	}
	c, _, out := newTestCli(t, mockAPI)

	err := c.runDraw(context.Background(), drawOptions{
		Tool:       editor.ToolBrush,
		Background: []string{writeBackground(t, 200, 200)},
		Strokes:    []string{"10,10 50,10", "10,100 50,100"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 stroke(s) not published")

	// вторая публикация несет оба штриха, слой сервера догнал локальный
	calls := mockAPI.PutMapCalls()
	require.Len(t, calls, 2)
	assert.Equal(t, uint8(0xFF), alphaAt(t, calls[1].Req.MapData, 30, 10))
	assert.Equal(t, uint8(0xFF), alphaAt(t, calls[1].Req.MapData, 30, 100))

	assert.Contains(t, out.String(), sync.SaveErrorNotice)
	assert.Contains(t, out.String(), "✓ Published 1 stroke(s) to seal-map")
}
