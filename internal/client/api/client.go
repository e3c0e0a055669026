package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/iudanet/mapboard/pkg/api"
)

// Ошибки, которые можно проверить через errors.Is на *StatusError
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("stored snapshot is newer")
	ErrUnauthorized = errors.New("unauthorized")
	ErrRateLimited  = errors.New("rate limited")

	// ErrStreamClosed возвращается, когда сервер штатно закрыл поток
	ErrStreamClosed = errors.New("watch stream closed by server")
)

// StatusError описывает неуспешный HTTP ответ сервера
type StatusError struct {
	Message    string
	StatusCode int
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("server error (%d): %s", e.StatusCode, e.Message)
}

// Is сопоставляет статус ответа с сентинел-ошибками пакета
func (e *StatusError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrConflict:
		return e.StatusCode == http.StatusConflict
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
	case ErrRateLimited:
		return e.StatusCode == http.StatusTooManyRequests
	}
	return false
}

// Client представляет HTTP клиент для взаимодействия с сервером
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// NewClient создает новый API клиент
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("stopped after 10 redirects")
				}
				// Копируем заголовки Authorization при редиректе
				if len(via) > 0 && via[0].Header.Get("Authorization") != "" {
					req.Header.Set("Authorization", via[0].Header.Get("Authorization"))
				}
				return nil
			},
		},
	}
}

// SetToken задает токен редактора для запросов записи
func (c *Client) SetToken(token string) {
	c.token = token
}

// BaseURL returns the server URL the client talks to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// PutMap полностью заменяет слой рисования страницы key
func (c *Client) PutMap(ctx context.Context, key string, req api.PutMapRequest) (*api.Snapshot, error) {
	var resp api.Snapshot
	if err := c.doRequest(ctx, http.MethodPut, mapPath(key), req, &resp); err != nil {
		return nil, fmt.Errorf("put map request failed: %w", err)
	}
	return &resp, nil
}

// GetMap получает текущий snapshot страницы key
func (c *Client) GetMap(ctx context.Context, key string) (*api.Snapshot, error) {
	var resp api.Snapshot
	if err := c.doRequest(ctx, http.MethodGet, mapPath(key), nil, &resp); err != nil {
		return nil, fmt.Errorf("get map request failed: %w", err)
	}
	return &resp, nil
}

// ListMaps возвращает список сохраненных страниц
func (c *Client) ListMaps(ctx context.Context) (*api.MapListResponse, error) {
	var resp api.MapListResponse
	if err := c.doRequest(ctx, http.MethodGet, "/api/v1/maps", nil, &resp); err != nil {
		return nil, fmt.Errorf("list maps request failed: %w", err)
	}
	return &resp, nil
}

// Health проверяет доступность сервера
func (c *Client) Health(ctx context.Context) (*api.HealthResponse, error) {
	var resp api.HealthResponse
	if err := c.doRequest(ctx, http.MethodGet, "/api/v1/health", nil, &resp); err != nil {
		return nil, fmt.Errorf("health request failed: %w", err)
	}
	return &resp, nil
}

// TokenInfo возвращает сведения о текущем токене редактора
func (c *Client) TokenInfo(ctx context.Context) (*api.TokenInfo, error) {
	var resp api.TokenInfo
	if err := c.doRequest(ctx, http.MethodGet, "/api/v1/token", nil, &resp); err != nil {
		return nil, fmt.Errorf("token info request failed: %w", err)
	}
	return &resp, nil
}

func mapPath(key string) string {
	return "/api/v1/maps/" + url.PathEscape(key)
}

// doRequest выполняет HTTP запрос
func (c *Client) doRequest(ctx context.Context, method, path string, body, result any) error {
	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		statusErr := &StatusError{StatusCode: resp.StatusCode}
		var errResp api.ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error != "" {
			statusErr.Message = errResp.Error
			if errResp.Message != "" {
				statusErr.Message += ": " + errResp.Message
			}
		} else {
			statusErr.Message = strings.TrimSpace(string(respBody))
		}
		return statusErr
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}
