package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
)

// ErrKeyNotFound 配置键不存在
var ErrKeyNotFound = errors.New("config: key not found")

// Configuration 只读的分层配置。键使用 ":" 或 "." 分隔层级。
type Configuration interface {
	// Get 获取配置值，不存在时返回空字符串
	Get(key string) string
	// GetWithDefault 获取配置值，如果不存在则返回默认值
	GetWithDefault(key, defaultValue string) string
	// GetInt 获取整数配置值
	GetInt(key string) (int, error)
	// GetBool 获取布尔配置值
	GetBool(key string) (bool, error)
	// GetSection 获取配置节
	GetSection(key string) Configuration
	// Bind 绑定配置到结构体
	Bind(key string, target any) error
	// GetAll 获取所有配置（副本）
	GetAll() map[string]any
}

// ConfigurationSource 配置源接口
type ConfigurationSource interface {
	Load() (map[string]any, error)
	Name() string
}

// ConfigurationBuilder 配置构建器，后添加的源覆盖先添加的源
type ConfigurationBuilder struct {
	sources []ConfigurationSource
	mu      sync.RWMutex
}

// NewConfigurationBuilder 创建配置构建器
func NewConfigurationBuilder() *ConfigurationBuilder {
	return &ConfigurationBuilder{}
}

// Add 添加配置源
func (b *ConfigurationBuilder) Add(source ConfigurationSource) *ConfigurationBuilder {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sources = append(b.sources, source)
	return b
}

// AddJsonFile 添加 JSON 文件配置源
func (b *ConfigurationBuilder) AddJsonFile(path string, optional ...bool) *ConfigurationBuilder {
	return b.Add(&FileSource{Path: path, Format: FormatJSON, Optional: len(optional) > 0 && optional[0]})
}

// AddYamlFile 添加 YAML 文件配置源
func (b *ConfigurationBuilder) AddYamlFile(path string, optional ...bool) *ConfigurationBuilder {
	return b.Add(&FileSource{Path: path, Format: FormatYAML, Optional: len(optional) > 0 && optional[0]})
}

// AddEnvironmentVariables 添加环境变量配置源
func (b *ConfigurationBuilder) AddEnvironmentVariables(prefix string) *ConfigurationBuilder {
	return b.Add(&EnvironmentVariableSource{Prefix: prefix})
}

// AddInMemory 添加内存配置源
func (b *ConfigurationBuilder) AddInMemory(data map[string]any) *ConfigurationBuilder {
	return b.Add(&InMemorySource{Data: data})
}

// Build 按添加顺序加载所有配置源并合并
func (b *ConfigurationBuilder) Build() (Configuration, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	data := make(map[string]any)
	for _, source := range b.sources {
		loaded, err := source.Load()
		if err != nil {
			return nil, fmt.Errorf("config: load source %s: %w", source.Name(), err)
		}
		mergeMaps(data, loaded)
	}

	return newConfiguration(data), nil
}

// configuration 读取走 ValueStore 快照，无需加锁
type configuration struct {
	store *ValueStore
}

func newConfiguration(data map[string]any) *configuration {
	c := &configuration{store: NewValueStore()}
	c.store.Store(data)
	return c
}

func (c *configuration) Get(key string) string {
	switch v := c.getByPath(key).(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func (c *configuration) GetWithDefault(key, defaultValue string) string {
	if value := c.Get(key); value != "" {
		return value
	}
	return defaultValue
}

func (c *configuration) GetInt(key string) (int, error) {
	switch v := c.getByPath(key).(type) {
	case nil:
		return 0, fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		return int(v), nil
	case string:
		return strconv.Atoi(v)
	default:
		return 0, fmt.Errorf("config: cannot convert %v to int", v)
	}
}

func (c *configuration) GetBool(key string) (bool, error) {
	switch v := c.getByPath(key).(type) {
	case nil:
		return false, fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	case bool:
		return v, nil
	case string:
		return strconv.ParseBool(v)
	default:
		return false, fmt.Errorf("config: cannot convert %v to bool", v)
	}
}

func (c *configuration) GetSection(key string) Configuration {
	if m, ok := c.getByPath(key).(map[string]any); ok {
		return newConfiguration(m)
	}
	return newConfiguration(make(map[string]any))
}

// Bind 经由 JSON 编解码把配置节绑定到 target，字段名遵循 json tag
func (c *configuration) Bind(key string, target any) error {
	data := c.getByPath(key)
	if data == nil {
		return fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("config: marshal %q: %w", key, err)
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("config: bind %q: %w", key, err)
	}
	return nil
}

func (c *configuration) GetAll() map[string]any {
	result := make(map[string]any)
	mergeMaps(result, c.store.Load())
	return result
}

// getByPath 通过路径获取值（支持 "a:b:c" 或 "a.b.c"）
func (c *configuration) getByPath(path string) any {
	data := c.store.Load()
	if path == "" {
		return data
	}

	current := any(data)
	for _, part := range globalPathCache.GetPathSegments(path) {
		m, ok := current.(map[string]any)
		if !ok {
			return nil
		}
		current = m[part]
	}
	return current
}

// mergeMaps 深度合并 src 到 dst；src 中的子表被复制，不与 dst 共享
func mergeMaps(dst, src map[string]any) {
	for k, v := range src {
		srcMap, srcIsMap := v.(map[string]any)
		if dstMap, ok := dst[k].(map[string]any); ok && srcIsMap {
			mergeMaps(dstMap, srcMap)
			continue
		}
		if srcIsMap {
			cp := make(map[string]any, len(srcMap))
			mergeMaps(cp, srcMap)
			dst[k] = cp
			continue
		}
		dst[k] = v
	}
}
