package etcd

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gocrud/inject/config"
	"github.com/gocrud/inject/logging"
	clientv3 "go.etcd.io/etcd/client/v3"
)

// EtcdClientFactory etcd 客户端工厂
type EtcdClientFactory struct {
	mu      sync.Mutex
	options map[string]EtcdClientOptions
	clients map[string]*clientv3.Client
	logger  logging.Logger
}

// NewEtcdClientFactory 创建客户端工厂
func NewEtcdClientFactory(logger logging.Logger, configs []EtcdClientOptions) *EtcdClientFactory {
	f := &EtcdClientFactory{
		options: make(map[string]EtcdClientOptions, len(configs)),
		clients: make(map[string]*clientv3.Client),
		logger:  logger,
	}
	for _, opts := range configs {
		f.options[opts.Name] = opts
	}
	return f
}

// Get 返回指定名称的客户端。clientv3.New 不阻塞等待连接。
func (f *EtcdClientFactory) Get(name string) (*clientv3.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if client, ok := f.clients[name]; ok {
		return client, nil
	}
	opts, ok := f.options[name]
	if !ok {
		return nil, fmt.Errorf("etcd client '%s' not configured", name)
	}

	client, err := clientv3.New(opts.clientConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create etcd client: %w", err)
	}

	f.clients[name] = client
	f.logger.Info("etcd client created",
		logging.F("name", name),
		logging.F("endpoints", fmt.Sprintf("%v", opts.Endpoints)))
	return client, nil
}

// Source 返回以指定客户端读取 prefix 下配置的配置源
func (f *EtcdClientFactory) Source(name, prefix string) (*config.EtcdSource, error) {
	client, err := f.Get(name)
	if err != nil {
		return nil, err
	}
	opts := f.options[name]
	return &config.EtcdSource{
		Options: config.EtcdOptions{
			Endpoints:   opts.Endpoints,
			Prefix:      prefix,
			Timeout:     opts.DialTimeout,
			DialTimeout: opts.DialTimeout,
		},
		Client: client,
	}, nil
}

// Close 关闭所有 etcd 客户端
func (f *EtcdClientFactory) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	var errs []error
	for name, client := range f.clients {
		if err := client.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close etcd client '%s': %w", name, err))
		}
	}
	f.clients = make(map[string]*clientv3.Client)
	return errors.Join(errs...)
}
