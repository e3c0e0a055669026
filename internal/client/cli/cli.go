// Package cli содержит команды клиента mapboard: рисование поверх карты,
// публикация слоя, наблюдение за страницей, экспорт и поиск сервера.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	httpClient "github.com/iudanet/mapboard/internal/client/api"
	"github.com/iudanet/mapboard/internal/client/iocli"
	"github.com/iudanet/mapboard/internal/client/storage"
	"github.com/iudanet/mapboard/internal/client/sync"
	"github.com/iudanet/mapboard/internal/discovery"
	"github.com/iudanet/mapboard/internal/pageid"
	"github.com/iudanet/mapboard/internal/validation"
)

// TokenEnv переменная окружения с токеном редактора
const TokenEnv = "MAPBOARD_TOKEN"

// Browser ищет серверы mapboard в локальной сети
type Browser interface {
	Browse(ctx context.Context) ([]discovery.Service, error)
}

// Deps зависимости команд
type Deps struct {
	IO       iocli.IO
	API      httpClient.ClientAPI
	Cache    storage.Cache
	Metadata storage.MetadataStorage
	Browser  Browser
	Logger   *slog.Logger
	Page     string
	NodeID   string
}

// Cli выполняет команды клиента
type Cli struct {
	io         iocli.IO
	apiClient  httpClient.ClientAPI
	cache      storage.Cache
	meta       storage.MetadataStorage
	browser    Browser
	logger     *slog.Logger
	page       string
	nodeID     string
	retryDelay time.Duration
}

// New creates a Cli
func New(d Deps) *Cli {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Cli{
		io:        d.IO,
		apiClient: d.API,
		cache:     d.Cache,
		meta:      d.Metadata,
		browser:   d.Browser,
		logger:    logger,
		page:      d.Page,
		nodeID:    d.NodeID,
	}
}

// pageKey возвращает ключ записи страницы. Допустимый ключ "*-map"
// используется как есть, иначе значение считается путем навигации.
func (c *Cli) pageKey() string {
	if strings.HasSuffix(c.page, "-map") && validation.ValidatePageKey(c.page) == nil {
		return c.page
	}
	return pageid.Resolve(c.page)
}

func (c *Cli) gateway(key string) (*sync.Gateway, error) {
	return sync.NewGateway(sync.Options{
		Client:   c.apiClient,
		Cache:    c.cache,
		Metadata: c.meta,
		Notifier: sync.NotifierFunc(func(message string) {
			c.io.Println("⚠️  " + message)
		}),
		Logger:     c.logger,
		Key:        key,
		NodeID:     c.nodeID,
		RetryDelay: c.retryDelay,
	})
}

// TokenSource описывает, откуда брать токен редактора
type TokenSource struct {
	FromFile string
	FromArgs string
	Prompt   bool
}

// ReadToken читает токен редактора из источников по приоритету:
// 1. Переменная окружения MAPBOARD_TOKEN
// 2. Файл FromFile
// 3. Флаг или файл конфигурации (FromArgs)
// 4. Интерактивный ввод, если Prompt
// Пустой токен допустим: сервер без секрета принимает запись без него.
func ReadToken(io iocli.IO, src TokenSource) (string, error) {
	// Priority 1: Environment variable
	if envToken := os.Getenv(TokenEnv); envToken != "" {
		return envToken, nil
	}

	// Priority 2: File
	if src.FromFile != "" {
		content, err := os.ReadFile(src.FromFile)
		if err != nil {
			return "", fmt.Errorf("failed to read token file: %w", err)
		}
		token := strings.TrimSpace(string(content))
		if token == "" {
			return "", fmt.Errorf("token file is empty")
		}
		return token, nil
	}

	// Priority 3: CLI parameter
	if src.FromArgs != "" {
		return src.FromArgs, nil
	}

	// Priority 4: Interactive prompt
	if !src.Prompt {
		return "", nil
	}
	token, err := io.ReadPassword("Editor token: ")
	if err != nil {
		return "", fmt.Errorf("failed to read token from stdin: %w", err)
	}
	return token, nil
}
