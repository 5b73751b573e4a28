package config

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	clientv3 "go.etcd.io/etcd/client/v3"
	"gopkg.in/yaml.v3"
)

// EtcdOptions etcd 配置源选项
type EtcdOptions struct {
	Endpoints   []string      // etcd 服务器地址列表
	Username    string        // 用户名（可选）
	Password    string        // 密码（可选）
	Prefix      string        // 键前缀（可选）
	Timeout     time.Duration // 读取超时（默认 5 秒）
	DialTimeout time.Duration // 拨号超时（默认 5 秒）
}

// AddEtcd 添加 etcd 配置源
func (b *ConfigurationBuilder) AddEtcd(opts EtcdOptions) *ConfigurationBuilder {
	if opts.Timeout == 0 {
		opts.Timeout = 5 * time.Second
	}
	if opts.DialTimeout == 0 {
		opts.DialTimeout = 5 * time.Second
	}
	return b.Add(&EtcdSource{Options: opts})
}

// EtcdSource etcd 配置源。键 /prefix/a/b 映射为 a:b；
// 值依次尝试按 JSON、YAML 解析，失败时作为字符串。
type EtcdSource struct {
	Options EtcdOptions

	// Client 非空时复用，不由 Load 关闭
	Client *clientv3.Client
}

func (s *EtcdSource) Name() string {
	return fmt.Sprintf("Etcd(%v)", s.Options.Endpoints)
}

func (s *EtcdSource) Load() (map[string]any, error) {
	cli := s.Client
	if cli == nil {
		var err error
		cli, err = clientv3.New(clientv3.Config{
			Endpoints:   s.Options.Endpoints,
			Username:    s.Options.Username,
			Password:    s.Options.Password,
			DialTimeout: s.Options.DialTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("create etcd client: %w", err)
		}
		defer cli.Close()
	}

	timeout := s.Options.Timeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	prefix := s.Options.Prefix
	if prefix == "" {
		prefix = "/"
	}

	resp, err := cli.Get(ctx, prefix, clientv3.WithPrefix())
	if err != nil {
		return nil, fmt.Errorf("get %q from etcd: %w", prefix, err)
	}

	result := make(map[string]any)
	for _, kv := range resp.Kvs {
		key := strings.Trim(strings.TrimPrefix(string(kv.Key), s.Options.Prefix), "/")
		if key == "" {
			continue
		}
		setNestedValue(result, strings.ReplaceAll(key, "/", ":"), decodeEtcdValue(kv.Value))
	}

	return result, nil
}

func decodeEtcdValue(raw []byte) any {
	var v any
	if err := json.Unmarshal(raw, &v); err == nil {
		return v
	}
	if err := yaml.Unmarshal(raw, &v); err == nil && v != nil {
		return v
	}
	return string(raw)
}
