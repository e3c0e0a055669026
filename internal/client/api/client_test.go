package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/mapboard/pkg/api"
)

// TestNewClient проверяет создание нового клиента
func TestNewClient(t *testing.T) {
	client := NewClient("http://localhost:8080/")

	assert.Equal(t, "http://localhost:8080", client.BaseURL())
	assert.NotNil(t, client.httpClient)
	assert.Equal(t, 30*time.Second, client.httpClient.Timeout)
}

func TestClient_PutMap(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/v1/maps/seal-map", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer editor-token", r.Header.Get("Authorization"))

		var req api.PutMapRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "data:image/png;base64,AAAA", req.MapData)
		assert.Equal(t, "node-1", req.NodeID)

		_ = json.NewEncoder(w).Encode(api.Snapshot{
			Key:       "seal-map",
			MapData:   req.MapData,
			NodeID:    req.NodeID,
			Timestamp: 1700000000001,
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	client.SetToken("editor-token")

	resp, err := client.PutMap(context.Background(), "seal-map", api.PutMapRequest{
		MapData: "data:image/png;base64,AAAA",
		NodeID:  "node-1",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1700000000001), resp.Timestamp)
}

func TestClient_StatusErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantIs  error
		wantMsg string
	}{
		{"not found", http.StatusNotFound, `{"error":"snapshot not found"}`, ErrNotFound, "snapshot not found"},
		{"conflict", http.StatusConflict, `{"error":"stored snapshot is newer"}`, ErrConflict, "stored snapshot is newer"},
		{"unauthorized", http.StatusUnauthorized, `{"error":"unauthorized: invalid token"}`, ErrUnauthorized, "invalid token"},
		{"forbidden", http.StatusForbidden, `{"error":"forbidden: page not granted"}`, ErrUnauthorized, "page not granted"},
		{"rate limited", http.StatusTooManyRequests, `{"error":"rate limit exceeded"}`, ErrRateLimited, "rate limit"},
		{"detail message", http.StatusBadRequest, `{"error":"invalid map data","message":"unsupported image format"}`, nil, "invalid map data: unsupported image format"},
		{"plain text body", http.StatusBadGateway, "upstream down\n", nil, "upstream down"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := NewClient(server.URL).GetMap(context.Background(), "seal-map")
			require.Error(t, err)

			var statusErr *StatusError
			require.True(t, errors.As(err, &statusErr))
			assert.Equal(t, tt.status, statusErr.StatusCode)
			assert.Contains(t, err.Error(), tt.wantMsg)
			if tt.wantIs != nil {
				assert.ErrorIs(t, err, tt.wantIs)
			}
			assert.NotErrorIs(t, err, ErrStreamClosed)
		})
	}
}

func TestClient_ListMapsAndHealth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/maps":
			_ = json.NewEncoder(w).Encode(api.MapListResponse{Maps: []api.MapSummary{{Key: "seal-map", Timestamp: 5}}})
		case "/api/v1/health":
			_ = json.NewEncoder(w).Encode(api.HealthResponse{Status: "ok", Version: "1.0.0", Storage: "ok"})
		case "/api/v1/token":
			assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
			_ = json.NewEncoder(w).Encode(api.TokenInfo{ID: "abc", Pages: []string{"*"}})
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client := NewClient(server.URL)
	ctx := context.Background()

	list, err := client.ListMaps(ctx)
	require.NoError(t, err)
	require.Len(t, list.Maps, 1)
	assert.Equal(t, "seal-map", list.Maps[0].Key)

	health, err := client.Health(ctx)
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", health.Version)

	client.SetToken("tok")
	info, err := client.TokenInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"*"}, info.Pages)
}

func TestClient_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := NewClient(server.URL).GetMap(ctx, "seal-map")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClient_InvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("{broken"))
	}))
	defer server.Close()

	_, err := NewClient(server.URL).GetMap(context.Background(), "seal-map")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode response")
}

// watchServer отдает заданные события через websocket и затем ждет закрытия
func watchServer(t *testing.T, events []api.WatchEvent, closeCode int) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/maps/seal-map/watch", r.URL.Path)
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		for _, e := range events {
			if err := conn.WriteJSON(e); err != nil {
				return
			}
		}
		if closeCode != 0 {
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(closeCode, "bye"), time.Now().Add(time.Second))
			return
		}
		// Ждем, пока клиент закроет соединение
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
}

func TestClient_Watch(t *testing.T) {
	events := []api.WatchEvent{
		{Type: api.EventEmpty},
		{Type: api.EventSnapshot, Snapshot: &api.Snapshot{Key: "seal-map", Timestamp: 10}},
		{Type: api.EventSnapshot, Snapshot: &api.Snapshot{Key: "seal-map", Timestamp: 20}},
	}
	server := watchServer(t, events, 0)
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var got []api.WatchEvent
	err := NewClient(server.URL).Watch(ctx, "seal-map", func(e api.WatchEvent) error {
		got = append(got, e)
		if len(got) == len(events) {
			cancel()
		}
		return nil
	})

	assert.ErrorIs(t, err, context.Canceled)
	require.Len(t, got, 3)
	assert.Equal(t, api.EventEmpty, got[0].Type)
	assert.Equal(t, int64(20), got[2].Snapshot.Timestamp)
}

func TestClient_Watch_ServerGoingAway(t *testing.T) {
	server := watchServer(t, []api.WatchEvent{{Type: api.EventEmpty}}, websocket.CloseGoingAway)
	defer server.Close()

	err := NewClient(server.URL).Watch(context.Background(), "seal-map", func(api.WatchEvent) error { return nil })
	assert.ErrorIs(t, err, ErrStreamClosed)
}

func TestClient_Watch_HandlerError(t *testing.T) {
	server := watchServer(t, []api.WatchEvent{{Type: api.EventEmpty}}, 0)
	defer server.Close()

	stop := errors.New("stop")
	err := NewClient(server.URL).Watch(context.Background(), "seal-map", func(api.WatchEvent) error { return stop })
	assert.ErrorIs(t, err, stop)
}

func TestClient_Watch_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	err := NewClient(server.URL).Watch(context.Background(), "seal-map", func(api.WatchEvent) error { return nil })
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusBadRequest, statusErr.StatusCode)
}

func TestClient_WatchURL(t *testing.T) {
	tests := []struct {
		base    string
		want    string
		wantErr bool
	}{
		{"http://localhost:8080", "ws://localhost:8080/api/v1/maps/seal-map/watch", false},
		{"https://maps.example.com/board", "wss://maps.example.com/board/api/v1/maps/seal-map/watch", false},
		{"ftp://example.com", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.base, func(t *testing.T) {
			got, err := NewClient(tt.base).watchURL("seal-map")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.False(t, strings.HasSuffix(got, "//watch"))
		})
	}
}
