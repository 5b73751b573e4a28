package redis

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/gocrud/inject/logging"
	goredis "github.com/redis/go-redis/v9"
)

// ClientFactory 按名称创建并持有 Redis 客户端。客户端在首次 Get 时创建。
type ClientFactory struct {
	mu      sync.Mutex
	options map[string]ClientOptions
	clients map[string]*goredis.Client
	logger  logging.Logger
}

// NewClientFactory 创建客户端工厂
func NewClientFactory(logger logging.Logger, configs []ClientOptions) *ClientFactory {
	f := &ClientFactory{
		options: make(map[string]ClientOptions, len(configs)),
		clients: make(map[string]*goredis.Client),
		logger:  logger,
	}
	for _, opts := range configs {
		f.options[opts.Name] = opts
	}
	return f
}

// Names 返回已配置的客户端名称
func (f *ClientFactory) Names() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	names := make([]string, 0, len(f.options))
	for name := range f.options {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get 返回指定名称的客户端，必要时创建
func (f *ClientFactory) Get(ctx context.Context, name string) (*goredis.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if client, ok := f.clients[name]; ok {
		return client, nil
	}
	opts, ok := f.options[name]
	if !ok {
		return nil, fmt.Errorf("redis client '%s' not configured", name)
	}

	client := goredis.NewClient(opts.redisOptions())
	if opts.Ping {
		ctx, cancel := context.WithTimeout(ctx, opts.DialTimeout)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("connect redis '%s': %w", name, err)
		}
	}

	f.clients[name] = client
	f.logger.Info("redis client created",
		logging.F("name", name),
		logging.F("addr", opts.Addr),
		logging.F("db", opts.DB))
	return client, nil
}

// Close 关闭所有已创建的客户端
func (f *ClientFactory) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	var errs []error
	for name, client := range f.clients {
		if err := client.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis client '%s': %w", name, err))
		}
	}
	f.clients = make(map[string]*goredis.Client)
	return errors.Join(errs...)
}
