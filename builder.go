package inject

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gocrud/inject/config"
	"github.com/gocrud/inject/graph"
	"github.com/gocrud/inject/injector"
	"github.com/gocrud/inject/logging"
	"github.com/gocrud/inject/manifest"
)

// 内置节点名称
const (
	LoggerNode        = "Logger"
	ConfigurationNode = config.NodeName
)

// LoggingSection 未调用 ConfigureLogging 时读取日志选项的配置节
const LoggingSection = "logging"

// Context 声明阶段可用的上下文
type Context struct {
	Graph         *graph.Builder
	Configuration config.Configuration
	Logger        graph.Key[logging.Logger]
	Config        graph.Key[config.Configuration]
}

// Declarer 向图中声明节点
type Declarer func(ctx *Context) error

type manifestSource struct {
	path     string
	manifest *manifest.Manifest
	registry *manifest.Registry
}

// Builder 容器构建器
type Builder struct {
	mu             sync.Mutex
	configBuilder  *config.ConfigurationBuilder
	loggingBuilder *logging.LoggingBuilder
	manifests      []manifestSource
	declarers      []Declarer
	warmup         bool
}

// NewBuilder 创建容器构建器
func NewBuilder() *Builder {
	return &Builder{
		configBuilder: config.NewConfigurationBuilder(),
	}
}

// ConfigureConfiguration 配置配置系统
func (b *Builder) ConfigureConfiguration(configure func(*config.ConfigurationBuilder)) *Builder {
	b.mu.Lock()
	defer b.mu.Unlock()
	if configure != nil {
		configure(b.configBuilder)
	}
	return b
}

// ConfigureLogging 配置日志系统。未调用时按配置节 "logging" 创建。
func (b *Builder) ConfigureLogging(configure func(*logging.LoggingBuilder)) *Builder {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.loggingBuilder == nil {
		b.loggingBuilder = logging.NewLoggingBuilder()
	}
	if configure != nil {
		configure(b.loggingBuilder)
	}
	return b
}

// UseManifest 从文件加载声明式清单
func (b *Builder) UseManifest(path string, reg *manifest.Registry) *Builder {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.manifests = append(b.manifests, manifestSource{path: path, registry: reg})
	return b
}

// AddManifest 使用已解析的清单
func (b *Builder) AddManifest(m *manifest.Manifest, reg *manifest.Registry) *Builder {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.manifests = append(b.manifests, manifestSource{manifest: m, registry: reg})
	return b
}

// Declare 添加声明函数，按添加顺序执行
func (b *Builder) Declare(declarers ...Declarer) *Builder {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.declarers = append(b.declarers, declarers...)
	return b
}

// Warmup 构建后立即构造全部缓存节点
func (b *Builder) Warmup() *Builder {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.warmup = true
	return b
}

// Build 依次构建配置、日志、节点图与 Injector
func (b *Builder) Build() (*Container, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	cfg, err := b.configBuilder.Build()
	if err != nil {
		return nil, fmt.Errorf("inject: configuration: %w", err)
	}

	factory, err := b.buildLogging(cfg)
	if err != nil {
		return nil, fmt.Errorf("inject: logging: %w", err)
	}
	logger := factory.CreateLogger("app")

	g, err := b.buildGraph(cfg, logger)
	if err != nil {
		_ = factory.Close()
		return nil, err
	}

	inj := injector.New(g, injector.WithLogger(logger))
	c := &Container{
		injector:      inj,
		configuration: cfg,
		logger:        logger,
		factory:       factory,
	}
	logger.Info("container built", logging.F("nodes", g.Len()))

	if b.warmup {
		if err := inj.Warmup(); err != nil {
			_ = factory.Close()
			return nil, fmt.Errorf("inject: warmup: %w", err)
		}
	}
	return c, nil
}

func (b *Builder) buildLogging(cfg config.Configuration) (logging.LoggerFactory, error) {
	if b.loggingBuilder != nil {
		return b.loggingBuilder.Build()
	}

	opts, err := config.Load[logging.Options](cfg, LoggingSection)
	if err != nil && !errors.Is(err, config.ErrKeyNotFound) {
		return nil, err
	}
	return logging.NewFactory(opts)
}

func (b *Builder) buildGraph(cfg config.Configuration, logger logging.Logger) (*graph.Graph, error) {
	gb := graph.NewBuilder()
	ctx := &Context{
		Graph:         gb,
		Configuration: cfg,
		Logger:        graph.Const(gb, LoggerNode, logger),
		Config:        config.Provide(gb, cfg),
	}

	var errs []error
	for _, src := range b.manifests {
		m := src.manifest
		if m == nil {
			var err error
			if m, err = manifest.Load(src.path); err != nil {
				errs = append(errs, err)
				continue
			}
		}
		reg := src.registry
		if reg == nil {
			reg = manifest.NewRegistry()
		}
		if err := manifest.Apply(gb, m, reg); err != nil {
			errs = append(errs, err)
		}
	}
	for _, declare := range b.declarers {
		if err := declare(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("inject: declare: %w", errors.Join(errs...))
	}

	g, err := gb.Build()
	if err != nil {
		return nil, fmt.Errorf("inject: graph: %w", err)
	}
	return g, nil
}
