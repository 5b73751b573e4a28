package mongodb

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gocrud/inject/logging"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// MongoFactory MongoDB 客户端工厂，客户端在首次 Get 时连接
type MongoFactory struct {
	mu      sync.Mutex
	options map[string]MongoOptions
	clients map[string]*mongo.Client
	logger  logging.Logger
}

// NewMongoFactory 创建客户端工厂
func NewMongoFactory(logger logging.Logger, configs []MongoOptions) *MongoFactory {
	f := &MongoFactory{
		options: make(map[string]MongoOptions, len(configs)),
		clients: make(map[string]*mongo.Client),
		logger:  logger,
	}
	for _, opts := range configs {
		f.options[opts.Name] = opts
	}
	return f
}

// Get 返回指定名称的客户端
func (f *MongoFactory) Get(ctx context.Context, name string) (*mongo.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if client, ok := f.clients[name]; ok {
		return client, nil
	}
	opts, ok := f.options[name]
	if !ok {
		return nil, fmt.Errorf("mongo client '%s' not configured", name)
	}

	client, err := mongo.Connect(opts.clientOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to create mongo client '%s': %w", name, err)
	}
	if opts.Ping {
		ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
		if err := client.Ping(ctx, nil); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, fmt.Errorf("ping mongo '%s': %w", name, err)
		}
	}

	f.clients[name] = client
	f.logger.Info("Mongo client registered",
		logging.F("name", name),
		logging.F("uri", opts.Uri))
	return client, nil
}

// Database 返回客户端上配置的数据库
func (f *MongoFactory) Database(ctx context.Context, name string) (*mongo.Database, error) {
	client, err := f.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	db := f.options[name].Database
	f.mu.Unlock()
	if db == "" {
		return nil, fmt.Errorf("mongo client '%s' has no database configured", name)
	}
	return client.Database(db), nil
}

// Each 遍历已连接的客户端
func (f *MongoFactory) Each(fn func(name string, client *mongo.Client)) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for name, client := range f.clients {
		fn(name, client)
	}
}

// Close 关闭所有客户端
func (f *MongoFactory) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var errs []error
	for name, client := range f.clients {
		if err := client.Disconnect(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to close client '%s': %w", name, err))
		}
	}
	f.clients = make(map[string]*mongo.Client)
	return errors.Join(errs...)
}
