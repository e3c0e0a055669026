package api

import (
	"context"

	"github.com/iudanet/mapboard/pkg/api"
)

//go:generate moq -out client_mock.go . ClientAPI

var _ ClientAPI = (*Client)(nil)

// ClientAPI определяет операции клиента с сервером карт
type ClientAPI interface {
	PutMap(ctx context.Context, key string, req api.PutMapRequest) (*api.Snapshot, error)
	GetMap(ctx context.Context, key string) (*api.Snapshot, error)
	ListMaps(ctx context.Context) (*api.MapListResponse, error)
	Watch(ctx context.Context, key string, handle func(api.WatchEvent) error) error
	Health(ctx context.Context) (*api.HealthResponse, error)
	TokenInfo(ctx context.Context) (*api.TokenInfo, error)
}
