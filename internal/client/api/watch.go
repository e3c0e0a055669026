package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"

	"github.com/iudanet/mapboard/pkg/api"
)

// pongWait должен быть больше периода ping сервера
const pongWait = 90 * time.Second

// Watch открывает websocket поток страницы key и вызывает handle для
// каждого события. Блокируется до отмены ctx, ошибки handle или разрыва
// соединения. При отмене ctx возвращает ctx.Err().
func (c *Client) Watch(ctx context.Context, key string, handle func(api.WatchEvent) error) error {
	wsURL, err := c.watchURL(key)
	if err != nil {
		return err
	}

	header := http.Header{}
	if c.token != "" {
		header.Set("Authorization", "Bearer "+c.token)
	}

	dialer := websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: c.httpClient.Timeout,
	}
	conn, resp, err := dialer.DialContext(ctx, wsURL, header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		if resp != nil {
			return fmt.Errorf("watch request failed: %w", &StatusError{StatusCode: resp.StatusCode})
		}
		return fmt.Errorf("watch dial failed: %w", err)
	}
	defer conn.Close()

	// Закрываем соединение при отмене контекста, чтобы разблокировать чтение
	stop := context.AfterFunc(ctx, func() {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		_ = conn.Close()
	})
	defer stop()

	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	defaultPing := conn.PingHandler()
	conn.SetPingHandler(func(data string) error {
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		return defaultPing(data)
	})

	for {
		var event api.WatchEvent
		if err := conn.ReadJSON(&event); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseGoingAway) {
				return fmt.Errorf("%w: %v", ErrStreamClosed, err)
			}
			return fmt.Errorf("watch stream failed: %w", err)
		}
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))

		if err := handle(event); err != nil {
			return err
		}
	}
}

func (c *Client) watchURL(key string) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid server url: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported server url scheme %q", u.Scheme)
	}
	u.Path = u.Path + mapPath(key) + "/watch"
	return u.String(), nil
}
