// Package sync поддерживает слой рисования страницы в согласованном
// состоянии с общей записью на сервере по правилу Last-Write-Wins.
package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	gosync "sync"
	"time"

	httpClient "github.com/iudanet/mapboard/internal/client/api"
	"github.com/iudanet/mapboard/internal/client/storage"
	"github.com/iudanet/mapboard/internal/crdt"
	"github.com/iudanet/mapboard/internal/models"
	"github.com/iudanet/mapboard/internal/raster"
	"github.com/iudanet/mapboard/internal/validation"
	"github.com/iudanet/mapboard/pkg/api"
)

const (
	// SaveErrorNotice показывается пользователю при неудачной публикации
	SaveErrorNotice = "Error saving changes..."
	// DefaultRetryDelay пауза перед переподключением потока
	DefaultRetryDelay = time.Second
)

// Encoder сериализует слой рисования (реализуется raster.Buffer)
type Encoder interface {
	Encode() (*raster.Encoded, error)
}

// Notifier показывает пользователю нефатальное уведомление
type Notifier interface {
	Notify(message string)
}

// NotifierFunc адаптирует функцию к Notifier
type NotifierFunc func(message string)

// Notify implements Notifier
func (f NotifierFunc) Notify(message string) { f(message) }

// UpdateFunc применяет полученный snapshot к локальному слою
type UpdateFunc func(snapshot *models.Snapshot) error

// Options содержит зависимости Gateway. Cache, Metadata и Notifier опциональны.
type Options struct {
	Client     httpClient.ClientAPI
	Cache      storage.Cache
	Metadata   storage.MetadataStorage
	Notifier   Notifier
	Logger     *slog.Logger
	Key        string
	NodeID     string
	RetryDelay time.Duration
}

// Gateway синхронизирует одну страницу с сервером
type Gateway struct {
	client     httpClient.ClientAPI
	cache      storage.Cache
	meta       storage.MetadataStorage
	notifier   Notifier
	logger     *slog.Logger
	register   *crdt.Register
	key        string
	nodeID     string
	lastDigest string
	retryDelay time.Duration
	mu         gosync.Mutex // lastDigest
	applyMu    gosync.Mutex // регистр и onUpdate применяются вместе
}

// NewGateway creates a sync gateway for the page opts.Key
func NewGateway(opts Options) (*Gateway, error) {
	if opts.Client == nil {
		return nil, fmt.Errorf("api client is required")
	}
	if err := validation.ValidatePageKey(opts.Key); err != nil {
		return nil, fmt.Errorf("invalid page key: %w", err)
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = DefaultRetryDelay
	}

	return &Gateway{
		client:     opts.Client,
		cache:      opts.Cache,
		meta:       opts.Metadata,
		notifier:   opts.Notifier,
		logger:     opts.Logger.With("key", opts.Key),
		register:   crdt.NewRegister(),
		key:        opts.Key,
		nodeID:     opts.NodeID,
		retryDelay: opts.RetryDelay,
	}, nil
}

// Key returns the page identity the gateway is bound to
func (g *Gateway) Key() string {
	return g.key
}

// LastTimestamp возвращает метку последнего примененного или опубликованного snapshot
func (g *Gateway) LastTimestamp() int64 {
	return g.register.Timestamp()
}

// Publish кодирует слой и полностью заменяет им запись страницы.
// Timestamp назначает сервер. При ошибке локальное состояние не меняется,
// пользователь получает уведомление SaveErrorNotice. Повторов нет.
// Если пока шел PUT в слой попал чужой snapshot, опубликованное изображение
// возвращается в слой через onUpdate: слой снова совпадает с записью сервера.
func (g *Gateway) Publish(ctx context.Context, enc Encoder, onUpdate UpdateFunc) (*models.Snapshot, error) {
	encoded, err := enc.Encode()
	if err != nil {
		return nil, fmt.Errorf("failed to encode drawing: %w", err)
	}

	// Запоминаем digest до отправки: эхо из потока может прийти раньше ответа
	g.mu.Lock()
	g.lastDigest = encoded.Digest
	g.mu.Unlock()
	before := g.register.Timestamp()

	resp, err := g.client.PutMap(ctx, g.key, api.PutMapRequest{
		MapData: encoded.DataURL,
		NodeID:  g.nodeID,
	})
	if err != nil {
		g.logger.Error("Failed to save map", "error", err)
		g.notify(SaveErrorNotice)
		return nil, fmt.Errorf("failed to publish %s: %w", g.key, err)
	}

	snapshot := fromAPI(resp)
	if snapshot.MapData == "" {
		snapshot.MapData = encoded.DataURL
	}

	g.applyMu.Lock()
	moved := g.register.Timestamp() != before
	advanced := g.register.Apply(snapshot)
	if moved && advanced && onUpdate != nil {
		if err := onUpdate(snapshot); err != nil {
			g.logger.Error("Failed to restore published drawing", "timestamp", snapshot.Timestamp, "error", err)
		} else {
			g.logger.Debug("Restored published drawing over concurrent snapshot", "timestamp", snapshot.Timestamp)
		}
	}
	g.applyMu.Unlock()

	g.persist(ctx, snapshot)

	g.logger.Info("Map saved", "timestamp", snapshot.Timestamp, "digest", snapshot.Digest)
	return snapshot, nil
}

// Pull однократно читает текущую запись и применяет ее по правилу LWW.
// Возвращает nil, nil, если запись еще не создана.
func (g *Gateway) Pull(ctx context.Context, onUpdate UpdateFunc) (*models.Snapshot, error) {
	resp, err := g.client.GetMap(ctx, g.key)
	if err != nil {
		if errors.Is(err, httpClient.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to pull %s: %w", g.key, err)
	}

	snapshot := fromAPI(resp)
	if _, err := g.apply(ctx, snapshot, onUpdate); err != nil {
		return nil, err
	}
	return snapshot, nil
}

// Prime применяет snapshot из локального кеша до прихода первого значения
// с сервера и возвращает сохраненное состояние вида (или nil).
func (g *Gateway) Prime(ctx context.Context, onUpdate UpdateFunc) (*models.ViewState, error) {
	if g.cache == nil {
		return nil, nil
	}

	cached, err := g.cache.GetSnapshot(ctx, g.key)
	switch {
	case errors.Is(err, storage.ErrSnapshotNotFound):
	case err != nil:
		return nil, fmt.Errorf("failed to read cached snapshot: %w", err)
	default:
		if g.register.Apply(cached) && onUpdate != nil {
			if err := onUpdate(cached); err != nil {
				g.logger.Warn("Failed to apply cached snapshot", "error", err)
			} else {
				g.logger.Debug("Primed from local cache", "timestamp", cached.Timestamp)
			}
		}
	}

	view, err := g.cache.GetView(ctx, g.key)
	if err != nil {
		if errors.Is(err, storage.ErrViewNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read cached view: %w", err)
	}
	return view, nil
}

// SaveView сохраняет трансформацию вида страницы в локальный кеш
func (g *Gateway) SaveView(ctx context.Context, view models.ViewState) error {
	if g.cache == nil {
		return nil
	}
	view.Key = g.key
	if err := g.cache.SaveView(ctx, &view); err != nil {
		return fmt.Errorf("failed to save view: %w", err)
	}
	return nil
}

// Subscribe открывает непрерывный поток записи страницы. onUpdate вызывается
// последовательно для каждого snapshot новее последнего примененного.
// При разрыве поток переподключается через RetryDelay, пока не вызван Close.
func (g *Gateway) Subscribe(ctx context.Context, onUpdate UpdateFunc) *Subscription {
	ctx, cancel := context.WithCancel(ctx)
	sub := &Subscription{
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go g.run(ctx, sub, onUpdate)

	return sub
}

func (g *Gateway) run(ctx context.Context, sub *Subscription, onUpdate UpdateFunc) {
	for {
		err := g.client.Watch(ctx, g.key, func(event api.WatchEvent) error {
			if event.Type != api.EventSnapshot || event.Snapshot == nil {
				g.logger.Debug("Page has no drawing yet")
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			_, err := g.apply(ctx, fromAPI(event.Snapshot), onUpdate)
			if err != nil {
				g.logger.Error("Failed to apply remote snapshot", "error", err)
			}
			return nil
		})

		if ctx.Err() != nil {
			sub.finish(nil)
			return
		}
		if permanent(err) {
			g.logger.Error("Watch rejected by server", "error", err)
			sub.finish(err)
			return
		}

		g.logger.Warn("Watch stream dropped, reconnecting", "error", err, "delay", g.retryDelay)

		timer := time.NewTimer(g.retryDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			sub.finish(nil)
			return
		case <-timer.C:
		}
	}
}

// apply продвигает регистр и вызывает onUpdate, если snapshot новее.
// Эхо собственной публикации (тот же digest) только продвигает регистр,
// пока после публикации в слой не попал чужой snapshot.
func (g *Gateway) apply(ctx context.Context, snapshot *models.Snapshot, onUpdate UpdateFunc) (bool, error) {
	g.applyMu.Lock()
	defer g.applyMu.Unlock()

	last := g.register.Timestamp()
	if !g.register.Apply(snapshot) {
		g.logger.Debug("Ignoring stale snapshot", "timestamp", snapshot.Timestamp, "last", last)
		return false, nil
	}

	g.mu.Lock()
	echo := snapshot.Digest != "" && snapshot.Digest == g.lastDigest
	if !echo {
		// слой больше не содержит опубликованное изображение
		g.lastDigest = ""
	}
	g.mu.Unlock()

	g.persist(ctx, snapshot)

	if echo {
		g.logger.Debug("Skipping echo of own publish", "timestamp", snapshot.Timestamp)
		return false, nil
	}
	if onUpdate == nil {
		return true, nil
	}
	if err := onUpdate(snapshot); err != nil {
		return false, fmt.Errorf("failed to apply snapshot %d: %w", snapshot.Timestamp, err)
	}

	g.logger.Debug("Applied remote snapshot", "timestamp", snapshot.Timestamp, "node_id", snapshot.NodeID)
	return true, nil
}

// persist зеркалирует snapshot в локальный кеш. Ошибки кеша не фатальны.
func (g *Gateway) persist(ctx context.Context, snapshot *models.Snapshot) {
	if g.cache != nil {
		if _, err := g.cache.SaveSnapshot(ctx, snapshot); err != nil {
			g.logger.Warn("Failed to cache snapshot", "error", err)
		}
	}
	if g.meta != nil {
		if err := g.meta.SaveLastSyncTimestamp(ctx, g.key, snapshot.Timestamp); err != nil {
			g.logger.Warn("Failed to save last sync timestamp", "error", err)
		}
	}
}

func (g *Gateway) notify(message string) {
	if g.notifier != nil {
		g.notifier.Notify(message)
	}
}

// permanent сообщает, что повторное подключение не поможет
func permanent(err error) bool {
	var statusErr *httpClient.StatusError
	if !errors.As(err, &statusErr) {
		return false
	}
	return statusErr.StatusCode >= 400 && statusErr.StatusCode < 500 &&
		statusErr.StatusCode != http.StatusTooManyRequests
}

func fromAPI(s *api.Snapshot) *models.Snapshot {
	return &models.Snapshot{
		Key:       s.Key,
		MapData:   s.MapData,
		NodeID:    s.NodeID,
		Digest:    s.Digest,
		Timestamp: s.Timestamp,
		UpdatedAt: s.UpdatedAt,
	}
}
