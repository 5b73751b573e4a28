package web

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gocrud/inject/graph"
)

// Controller 控制器，在主机构造时注册路由
type Controller interface {
	RegisterRoutes(router gin.IRouter)
}

// Builder Web 主机构建器（基于 Gin）。路由与中间件在主机节点构造时应用到引擎。
type Builder struct {
	port        int
	mode        string
	setup       []func(*gin.Engine)
	controllers []graph.Ref
	errors      []error
}

func newBuilder() *Builder {
	return &Builder{
		port: 8080,
		mode: gin.ReleaseMode,
	}
}

// UsePort 设置端口，0 表示由系统分配
func (b *Builder) UsePort(port int) *Builder {
	if port < 0 || port > 65535 {
		b.errors = append(b.errors, fmt.Errorf("invalid web port %d", port))
		return b
	}
	b.port = port
	return b
}

// SetMode 设置 Gin 模式
func (b *Builder) SetMode(mode string) *Builder {
	switch mode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
		b.mode = mode
	default:
		b.errors = append(b.errors, fmt.Errorf("invalid gin mode %q", mode))
	}
	return b
}

// AddControllers 添加控制器节点，节点类型须实现 Controller
func (b *Builder) AddControllers(controllers ...graph.Ref) *Builder {
	b.controllers = append(b.controllers, controllers...)
	return b
}

// Configure 直接定制引擎
func (b *Builder) Configure(fn func(*gin.Engine)) *Builder {
	b.setup = append(b.setup, fn)
	return b
}

// Get 注册 GET 路由
func (b *Builder) Get(path string, handlers ...gin.HandlerFunc) *Builder {
	return b.Configure(func(e *gin.Engine) { e.GET(path, handlers...) })
}

// Post 注册 POST 路由
func (b *Builder) Post(path string, handlers ...gin.HandlerFunc) *Builder {
	return b.Configure(func(e *gin.Engine) { e.POST(path, handlers...) })
}

// Put 注册 PUT 路由
func (b *Builder) Put(path string, handlers ...gin.HandlerFunc) *Builder {
	return b.Configure(func(e *gin.Engine) { e.PUT(path, handlers...) })
}

// Delete 注册 DELETE 路由
func (b *Builder) Delete(path string, handlers ...gin.HandlerFunc) *Builder {
	return b.Configure(func(e *gin.Engine) { e.DELETE(path, handlers...) })
}

// Patch 注册 PATCH 路由
func (b *Builder) Patch(path string, handlers ...gin.HandlerFunc) *Builder {
	return b.Configure(func(e *gin.Engine) { e.PATCH(path, handlers...) })
}

// Any 注册任意方法路由
func (b *Builder) Any(path string, handlers ...gin.HandlerFunc) *Builder {
	return b.Configure(func(e *gin.Engine) { e.Any(path, handlers...) })
}

// Use 使用全局中间件
func (b *Builder) Use(middleware ...gin.HandlerFunc) *Builder {
	return b.Configure(func(e *gin.Engine) { e.Use(middleware...) })
}

// Static 服务静态文件
func (b *Builder) Static(relativePath, root string) *Builder {
	return b.Configure(func(e *gin.Engine) { e.Static(relativePath, root) })
}

// StaticFS 服务静态文件系统
func (b *Builder) StaticFS(relativePath string, fs http.FileSystem) *Builder {
	return b.Configure(func(e *gin.Engine) { e.StaticFS(relativePath, fs) })
}

// NoRoute 处理 404
func (b *Builder) NoRoute(handlers ...gin.HandlerFunc) *Builder {
	return b.Configure(func(e *gin.Engine) { e.NoRoute(handlers...) })
}
