// Package manifest 从声明式描述（YAML 或 HCL）生成依赖图节点。
//
// 描述中只出现名称：值类型与工厂函数通过 Registry 按名称绑定。
// 服务未指定 ctor 时使用名为 New<Type> 的工厂；ctor 为 "default" 时使用类型的默认构造。
package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/gocrud/inject/graph"
)

// DefaultCtor 选择类型默认构造的 ctor 值
const DefaultCtor = "default"

// Manifest 解析后的声明，保持文件中的声明顺序
type Manifest struct {
	Consts   []Const
	Services []Service
}

// Const 常量声明
type Const struct {
	Name string
	Type string

	// decode 把声明中的值解码到 target（指向值类型的指针）
	decode func(target any) error
}

// Service 服务声明
type Service struct {
	Name      string
	Type      string
	Ctor      string
	Args      []string
	Singleton *bool
}

// Load 按扩展名读取 .yaml/.yml 或 .hcl 文件
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(data)
	case ".hcl":
		return ParseHCL(data, path)
	default:
		return nil, fmt.Errorf("manifest: unsupported file type %q", filepath.Ext(path))
	}
}

// Apply 将声明逐个登记到 b。所有错误聚合后返回；图的校验仍由 b.Build 完成。
func Apply(b *graph.Builder, m *Manifest, reg *Registry) error {
	var errs []error

	for _, c := range m.Consts {
		if err := applyConst(b, c, reg); err != nil {
			errs = append(errs, fmt.Errorf("manifest: const %q: %w", c.Name, err))
		}
	}
	for _, s := range m.Services {
		if err := applyService(b, s, reg); err != nil {
			errs = append(errs, fmt.Errorf("manifest: service %q: %w", s.Name, err))
		}
	}

	return errors.Join(errs...)
}

func applyConst(b *graph.Builder, c Const, reg *Registry) error {
	typ, ok := reg.lookupType(c.Type)
	if !ok {
		return fmt.Errorf("unknown type %q", c.Type)
	}

	ptr := reflect.New(typ)
	if err := c.decode(ptr.Interface()); err != nil {
		return fmt.Errorf("decode value as %s: %w", c.Type, err)
	}
	value := ptr.Elem()

	// func() T，返回解码后的值
	fnType := reflect.FuncOf(nil, []reflect.Type{typ}, false)
	fn := reflect.MakeFunc(fnType, func([]reflect.Value) []reflect.Value {
		return []reflect.Value{value}
	})

	// 名称冲突等声明错误由 Builder 记录，在 Build 时报告
	b.Declare(graph.Spec{
		Name:      c.Name,
		Kind:      graph.KindConst,
		Type:      typ,
		Singleton: true,
		Ctor:      graph.Expr(fn.Interface()),
	})
	return nil
}

func applyService(b *graph.Builder, s Service, reg *Registry) error {
	typ, ok := reg.lookupType(s.Type)
	if !ok {
		return fmt.Errorf("unknown type %q", s.Type)
	}

	var ctor graph.Constructor
	switch s.Ctor {
	case DefaultCtor:
		ctor = graph.Default()
	default:
		name := s.Ctor
		if name == "" {
			name = DefaultFactoryName(s.Type)
		}
		fn, ok := reg.lookupFactory(name)
		if !ok {
			return fmt.Errorf("unknown factory %q", name)
		}
		ctor = graph.Factory(name, fn)
	}

	refs := make([]graph.Ref, len(s.Args))
	for i, arg := range s.Args {
		refs[i] = graph.Name(arg)
	}

	singleton := true
	if s.Singleton != nil {
		singleton = *s.Singleton
	}

	b.Declare(graph.Spec{
		Name:      s.Name,
		Kind:      graph.KindService,
		Type:      typ,
		Singleton: singleton,
		Ctor:      ctor,
		Args:      refs,
	})
	return nil
}

// DefaultFactoryName 返回类型的默认工厂名：去掉指针与包前缀后加 New，
// 例如 "*app.Counter" -> "NewCounter"。
func DefaultFactoryName(typeName string) string {
	name := strings.TrimLeft(typeName, "*")
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return "New" + name
}

func validate(m *Manifest) error {
	var errs []error
	for _, c := range m.Consts {
		if c.Type == "" {
			errs = append(errs, fmt.Errorf("manifest: const %q: type is required", c.Name))
		}
	}
	for _, s := range m.Services {
		if s.Type == "" {
			errs = append(errs, fmt.Errorf("manifest: service %q: type is required", s.Name))
		}
	}
	return errors.Join(errs...)
}
