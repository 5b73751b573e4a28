// Package inject 是依赖注入容器的入口。
//
// 依赖关系在启动时声明为一张不可变的节点图（package graph），
// 由 Injector（package injector）按需构造并缓存节点值。
// Builder 把配置、日志、声明式清单（package manifest）与
// configure/* 下的基础设施节点组装成一个可用的 Container：
//
//	c, err := inject.NewBuilder().
//		ConfigureConfiguration(func(cb *config.ConfigurationBuilder) {
//			cb.AddYamlFile("app.yaml", true)
//		}).
//		UseManifest("services.hcl", registry).
//		Declare(func(ctx *inject.Context) error {
//			_, err := redis.Declare(ctx.Graph, ctx.Logger, func(b *redis.Builder) {
//				b.AddClient("cache", nil)
//			})
//			return err
//		}).
//		Build()
//	app, err := inject.Get[*App](c, "App")
package inject
