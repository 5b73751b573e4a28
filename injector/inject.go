package injector

import (
	"fmt"

	"github.com/gocrud/inject/graph"
)

// Inject 解析 key 对应的节点并返回类型化的值。
//
//	app, err := injector.Inject(inj, appKey)
func Inject[T any](inj *Injector, key graph.Key[T]) (T, error) {
	var zero T
	if !key.In(inj.graph) {
		return zero, fmt.Errorf("%w: %s", ErrForeignKey, key.Name())
	}

	v, err := inj.resolve(newChain(), key.ID())
	if err != nil {
		return zero, err
	}
	if v == nil {
		return zero, nil
	}
	return v.(T), nil
}

// MustInject 与 Inject 相同，失败时 panic
func MustInject[T any](inj *Injector, key graph.Key[T]) T {
	v, err := Inject(inj, key)
	if err != nil {
		panic(err)
	}
	return v
}
