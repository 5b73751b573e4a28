package cron

import (
	"fmt"
	"reflect"

	"github.com/gocrud/inject/graph"
	"github.com/robfig/cron/v3"
)

// Builder Cron 配置构建器
type Builder struct {
	enableSeconds    bool
	enableCronLogger bool
	location         string
	jobs             []jobDefinition
	names            map[string]struct{}
	errors           []error
}

// jobDefinition 任务定义
type jobDefinition struct {
	spec    string
	name    string
	handler reflect.Value
	deps    []graph.Ref
}

func newBuilder() *Builder {
	return &Builder{
		location: "UTC",
		names:    make(map[string]struct{}),
	}
}

// WithSeconds 启用秒级精度
func (b *Builder) WithSeconds() *Builder {
	b.enableSeconds = true
	return b
}

// WithLocation 设置时区
func (b *Builder) WithLocation(location string) *Builder {
	b.location = location
	return b
}

// EnableCronLogger 启用 cron 库的内部调度日志
func (b *Builder) EnableCronLogger() *Builder {
	b.enableCronLogger = true
	return b
}

// AddJob 添加简单任务（无依赖）
func (b *Builder) AddJob(spec, name string, handler func()) *Builder {
	return b.AddJobWithDeps(spec, name, handler)
}

// AddJobWithDeps 添加带依赖的任务。handler 的参数与 deps 一一对应，
// 在调度器节点构造时解析一次；handler 可返回 error。
//
// 示例：
//
//	b.AddJobWithDeps("0 */5 * * * *", "sync-data", func(svc *DataService) error {
//	    return svc.Sync()
//	}, dataService)
func (b *Builder) AddJobWithDeps(spec, name string, handler any, deps ...graph.Ref) *Builder {
	if _, exists := b.names[name]; exists {
		b.errors = append(b.errors, fmt.Errorf("cron job '%s' already configured", name))
		return b
	}

	fn := reflect.ValueOf(handler)
	if err := checkHandler(fn, len(deps)); err != nil {
		b.errors = append(b.errors, fmt.Errorf("cron job '%s': %w", name, err))
		return b
	}

	b.names[name] = struct{}{}
	b.jobs = append(b.jobs, jobDefinition{
		spec:    spec,
		name:    name,
		handler: fn,
		deps:    deps,
	})
	return b
}

func checkHandler(fn reflect.Value, deps int) error {
	if !fn.IsValid() || fn.Kind() != reflect.Func || fn.IsNil() {
		return fmt.Errorf("handler must be a non-nil function")
	}
	t := fn.Type()
	if t.IsVariadic() {
		return fmt.Errorf("handler must not be variadic")
	}
	if t.NumIn() != deps {
		return fmt.Errorf("handler takes %d parameters but %d dependencies given", t.NumIn(), deps)
	}
	switch {
	case t.NumOut() == 0:
	case t.NumOut() == 1 && t.Out(0) == errorType:
	default:
		return fmt.Errorf("handler must return nothing or error")
	}
	return nil
}

func (b *Builder) parser() cron.Parser {
	if b.enableSeconds {
		return cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	}
	return cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
}

// validate 检查表达式与时区，返回全部错误
func (b *Builder) validate() []error {
	errs := append([]error(nil), b.errors...)
	p := b.parser()
	for _, job := range b.jobs {
		if _, err := p.Parse(job.spec); err != nil {
			errs = append(errs, fmt.Errorf("cron job '%s': invalid spec %q: %w", job.name, job.spec, err))
		}
	}
	if _, err := loadLocation(b.location); err != nil {
		errs = append(errs, err)
	}
	return errs
}
