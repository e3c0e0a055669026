// Package discovery объявляет сервер mapboard в локальной сети через mDNS
// и находит объявленные серверы со стороны клиента.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/mdns"
)

// ServiceType тип сервиса в DNS-SD
const ServiceType = "_mapboard._tcp"

// DefaultTimeout время ожидания ответов при поиске
const DefaultTimeout = 2 * time.Second

// ErrNotFound возвращается, если ни один сервер не ответил
var ErrNotFound = errors.New("no mapboard server found")

// Service описывает найденный сервер
type Service struct {
	Instance string
	Host     string
	Version  string
	Addr     net.IP
	Port     int
}

// URL возвращает базовый адрес HTTP API сервера
func (s Service) URL() string {
	return "http://" + net.JoinHostPort(s.Addr.String(), strconv.Itoa(s.Port))
}

// Advertiser объявляет сервис, пока не будет вызван Shutdown
type Advertiser struct {
	server *mdns.Server
	logger *slog.Logger
}

// Advertise начинает объявление сервиса на порту port
func Advertise(port int, version string, logger *slog.Logger) (*Advertiser, error) {
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("invalid port %d", port)
	}

	host, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("could not get hostname: %w", err)
	}

	service, err := mdns.NewMDNSService(host, ServiceType, "", "", port, nil, txtRecords(version))
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS service: %w", err)
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return nil, fmt.Errorf("failed to start mDNS server: %w", err)
	}

	logger.Info("mDNS advertisement started", "service", ServiceType, "instance", host, "port", port)
	return &Advertiser{server: server, logger: logger}, nil
}

// Shutdown прекращает объявление
func (a *Advertiser) Shutdown() error {
	if a == nil || a.server == nil {
		return nil
	}
	if err := a.server.Shutdown(); err != nil {
		return fmt.Errorf("failed to stop mDNS server: %w", err)
	}
	a.logger.Info("mDNS advertisement stopped")
	return nil
}

// QueryFunc выполняет mDNS запрос; по умолчанию mdns.Query
type QueryFunc func(*mdns.QueryParam) error

// Browser ищет серверы mapboard в локальной сети
type Browser struct {
	Query   QueryFunc
	Timeout time.Duration
}

// Browse собирает ответы до истечения таймаута или отмены ctx.
// Дубликаты (один и тот же адрес и порт) отбрасываются.
func (b Browser) Browse(ctx context.Context) ([]Service, error) {
	query := b.Query
	if query == nil {
		query = mdns.Query
	}
	timeout := b.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < timeout {
			timeout = left
		}
	}
	if timeout <= 0 {
		return nil, ctx.Err()
	}

	entries := make(chan *mdns.ServiceEntry, 16)
	collected := make(chan []Service, 1)

	go func() {
		var found []Service
		seen := make(map[string]bool)
		for e := range entries {
			svc, ok := fromEntry(e)
			if !ok {
				continue
			}
			id := svc.URL()
			if seen[id] {
				continue
			}
			seen[id] = true
			found = append(found, svc)
		}
		collected <- found
	}()

	params := mdns.DefaultParams(ServiceType)
	params.Entries = entries
	params.Timeout = timeout
	params.DisableIPv6 = true

	err := query(params)
	close(entries)
	found := <-collected

	if err != nil {
		return found, fmt.Errorf("mDNS lookup failed: %w", err)
	}
	return found, nil
}

// First возвращает первый найденный сервер
func (b Browser) First(ctx context.Context) (Service, error) {
	found, err := b.Browse(ctx)
	if err != nil {
		return Service{}, err
	}
	if len(found) == 0 {
		return Service{}, ErrNotFound
	}
	return found[0], nil
}

func txtRecords(version string) []string {
	info := []string{"app=mapboard", "path=/api/v1"}
	if version != "" {
		info = append(info, "version="+version)
	}
	return info
}

func fromEntry(e *mdns.ServiceEntry) (Service, bool) {
	if e == nil || e.AddrV4 == nil || e.Port == 0 {
		return Service{}, false
	}
	if !strings.Contains(e.Name, ServiceType) {
		return Service{}, false
	}

	svc := Service{
		Instance: strings.TrimSuffix(e.Name, "."+ServiceType+".local."),
		Host:     strings.TrimSuffix(e.Host, "."),
		Addr:     e.AddrV4,
		Port:     e.Port,
	}
	for _, field := range e.InfoFields {
		if v, ok := strings.CutPrefix(field, "version="); ok {
			svc.Version = v
		}
	}
	return svc, true
}
