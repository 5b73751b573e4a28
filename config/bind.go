package config

import (
	"github.com/gocrud/inject/graph"
)

// NodeName Provide 声明的配置节点名称
const NodeName = "Configuration"

// Load 把指定节绑定到类型 T，section 为空时绑定整个配置
func Load[T any](cfg Configuration, section string) (T, error) {
	var t T
	err := cfg.Bind(section, &t)
	return t, err
}

// Const 声明一个常量节点，其值在首次注入时由配置节绑定得到，此后缓存。
//
//	opts := config.Const[redis.Options](b, "RedisOptions", cfg, "redis")
func Const[T any](b *graph.Builder, name string, cfg Configuration, section string) graph.Key[T] {
	return graph.ConstExpr(b, name, func() (T, error) {
		return Load[T](cfg, section)
	})
}

// Provide 将配置本身声明为名为 "Configuration" 的常量节点
func Provide(b *graph.Builder, cfg Configuration) graph.Key[Configuration] {
	return graph.Const(b, NodeName, cfg)
}
