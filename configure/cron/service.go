package cron

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"sync"
	"time"

	"github.com/gocrud/inject/logging"
	"github.com/robfig/cron/v3"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// Job 一个已解析依赖、可直接运行的任务
type Job struct {
	Spec string
	Name string
	Run  func() error
}

// Entry 已注册任务的调度信息
type Entry struct {
	Name string
	Spec string
	Next time.Time
	Prev time.Time
}

// options Cron 服务配置选项
type options struct {
	// Location 时区设置，默认 UTC
	Location string
	// EnableSeconds 是否启用秒级精度（默认分钟级）
	EnableSeconds bool
	// EnableCronLogger 是否启用 cron 库的内部调度日志（默认 false）
	EnableCronLogger bool
}

// Scheduler 包装 robfig/cron 的定时任务调度器
type Scheduler struct {
	cron    *cron.Cron
	logger  logging.Logger
	mu      sync.RWMutex
	jobs    map[string]cron.EntryID // 任务名称到任务ID的映射
	specs   map[string]string
	running bool
}

func loadLocation(name string) (*time.Location, error) {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("cron: invalid location %q: %w", name, err)
	}
	return loc, nil
}

// newScheduler 创建调度器并注册任务
func newScheduler(logger logging.Logger, opt options, jobs []Job) (*Scheduler, error) {
	loc, err := loadLocation(opt.Location)
	if err != nil {
		return nil, err
	}

	cronOpts := []cron.Option{cron.WithLocation(loc)}
	// 只在启用时添加 cron 库的日志记录器
	if opt.EnableCronLogger {
		cronOpts = append(cronOpts, cron.WithLogger(newCronLogger(logger)))
	}
	cronOpts = append(cronOpts, cron.WithChain(
		cron.Recover(newCronLogger(logger)),
	))
	if opt.EnableSeconds {
		cronOpts = append(cronOpts, cron.WithSeconds())
	}

	s := &Scheduler{
		cron:   cron.New(cronOpts...),
		logger: logger,
		jobs:   make(map[string]cron.EntryID),
		specs:  make(map[string]string),
	}

	var errs []error
	for _, job := range jobs {
		if err := s.addJob(job); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return s, nil
}

// addJob 添加定时任务
func (s *Scheduler) addJob(job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := job.Name
	entryID, err := s.cron.AddFunc(job.Spec, func() {
		s.logger.Debug("cron job started", logging.F("job", name))
		if err := job.Run(); err != nil {
			s.logger.Error("cron job failed", logging.F("job", name), logging.F("error", err))
			return
		}
		s.logger.Debug("cron job completed", logging.F("job", name))
	})
	if err != nil {
		return fmt.Errorf("failed to add cron job '%s': %w", name, err)
	}

	s.jobs[name] = entryID
	s.specs[name] = job.Spec
	s.logger.Info("cron job registered", logging.F("job", name), logging.F("spec", job.Spec))
	return nil
}

// Remove 移除定时任务
func (s *Scheduler) Remove(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	entryID, exists := s.jobs[name]
	if !exists {
		return false
	}
	s.cron.Remove(entryID)
	delete(s.jobs, name)
	delete(s.specs, name)
	s.logger.Info("cron job removed", logging.F("job", name))
	return true
}

// Run 立即同步执行一次指定任务，经过与调度相同的包装链
func (s *Scheduler) Run(name string) error {
	s.mu.RLock()
	entryID, exists := s.jobs[name]
	s.mu.RUnlock()
	if !exists {
		return fmt.Errorf("cron job '%s' not found", name)
	}
	s.cron.Entry(entryID).WrappedJob.Run()
	return nil
}

// Entries 返回按名称排序的任务调度信息
func (s *Scheduler) Entries() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]Entry, 0, len(s.jobs))
	for name, id := range s.jobs {
		e := s.cron.Entry(id)
		entries = append(entries, Entry{Name: name, Spec: s.specs[name], Next: e.Next, Prev: e.Prev})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries
}

// Start 在后台启动调度，重复调用无效果
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.logger.Info("cron scheduler starting", logging.F("jobs", len(s.jobs)))
	s.cron.Start()
}

// Stop 停止调度并等待正在运行的任务完成，ctx 到期时放弃等待
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.mu.Unlock()

	s.logger.Info("cron scheduler stopping")
	stopCtx := s.cron.Stop()

	select {
	case <-stopCtx.Done():
		s.logger.Info("cron scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("cron scheduler stop timeout, forcing shutdown")
		return ctx.Err()
	}
}

// cronLogger 适配器：将日志接口适配到 cron 的日志接口
type cronLogger struct {
	logger logging.Logger
}

func newCronLogger(logger logging.Logger) cron.Logger {
	return &cronLogger{logger: logger}
}

func (l *cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Info(msg, convertToFields(keysAndValues)...)
}

func (l *cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	fields := convertToFields(keysAndValues)
	fields = append(fields, logging.F("error", err))
	l.logger.Error(msg, fields...)
}

func convertToFields(keysAndValues []interface{}) []logging.Field {
	fields := make([]logging.Field, 0, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields = append(fields, logging.F(fmt.Sprintf("%v", keysAndValues[i]), keysAndValues[i+1]))
	}
	return fields
}
