package injector

import "github.com/gocrud/inject/logging"

// Option 配置 Injector
type Option func(*Injector)

// WithLogger 设置解析过程的日志记录器，类别固定为 "inject"。
// 未设置时不输出任何日志。
func WithLogger(logger logging.Logger) Option {
	return func(inj *Injector) {
		if logger != nil {
			inj.logger = logger.WithCategory("inject")
		}
	}
}
