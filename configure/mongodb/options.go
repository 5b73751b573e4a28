package mongodb

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// MongoOptions MongoDB 客户端配置选项
type MongoOptions struct {
	Name        string
	Uri         string
	Username    string
	Password    string
	Database    string // 非空时额外声明一个 *mongo.Database 节点
	MaxPoolSize uint64
	MinPoolSize uint64
	Timeout     time.Duration
	Ping        bool // 创建客户端时是否 PING 一次
}

// NewDefaultOptions 创建默认配置
func NewDefaultOptions(name string, uri string) *MongoOptions {
	return &MongoOptions{
		Name:        name,
		Uri:         uri,
		MaxPoolSize: 100,
		MinPoolSize: 5,
		Timeout:     10 * time.Second,
	}
}

// Validate 验证配置
func (o *MongoOptions) Validate() error {
	if o.Name == "" {
		return fmt.Errorf("mongo client name is required")
	}
	if o.Uri == "" {
		return fmt.Errorf("mongo uri is required")
	}
	if o.MinPoolSize > o.MaxPoolSize && o.MaxPoolSize > 0 {
		return fmt.Errorf("mongo min pool size %d exceeds max pool size %d", o.MinPoolSize, o.MaxPoolSize)
	}
	return nil
}

func (o *MongoOptions) clientOptions() *options.ClientOptions {
	clientOpts := options.Client().ApplyURI(o.Uri)
	if o.Username != "" || o.Password != "" {
		clientOpts.SetAuth(options.Credential{
			Username: o.Username,
			Password: o.Password,
		})
	}
	if o.MaxPoolSize > 0 {
		clientOpts.SetMaxPoolSize(o.MaxPoolSize)
	}
	if o.MinPoolSize > 0 {
		clientOpts.SetMinPoolSize(o.MinPoolSize)
	}
	if o.Timeout > 0 {
		clientOpts.SetConnectTimeout(o.Timeout)
	}
	return clientOpts
}
