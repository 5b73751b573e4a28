package manifest

import (
	"reflect"
	"sync"
	"time"

	"github.com/gocrud/inject/graph"
)

// Registry 类型名与工厂名到 Go 类型、函数的映射
type Registry struct {
	mu        sync.RWMutex
	types     map[string]reflect.Type
	factories map[string]any
}

// NewRegistry 创建注册表，预置 string、int、int64、float64、bool、duration 等基础类型
func NewRegistry() *Registry {
	r := &Registry{
		types:     make(map[string]reflect.Type),
		factories: make(map[string]any),
	}
	RegisterType[string](r, "string")
	RegisterType[int](r, "int")
	RegisterType[int64](r, "int64")
	RegisterType[uint](r, "uint")
	RegisterType[float64](r, "float64")
	RegisterType[bool](r, "bool")
	RegisterType[time.Duration](r, "duration")
	RegisterType[[]string](r, "[]string")
	RegisterType[map[string]string](r, "map[string]string")
	return r
}

// RegisterType 以 name 登记类型 T
func RegisterType[T any](r *Registry, name string) *Registry {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.types[name] = graph.TypeOf[T]()
	return r
}

// Factory 以 name 登记工厂函数，签名要求同 graph.Factory
func (r *Registry) Factory(name string, fn any) *Registry {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = fn
	return r
}

func (r *Registry) lookupType(name string) (reflect.Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.types[name]
	return t, ok
}

func (r *Registry) lookupFactory(name string) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.factories[name]
	return fn, ok
}
