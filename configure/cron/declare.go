// Package cron 把定时任务声明为依赖图节点。
//
// 每个任务一个节点 "cron.job.<name>"，其依赖为任务函数的参数；
// 调度器节点 "cron" 依赖日志与全部任务节点。
package cron

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/gocrud/inject/graph"
	"github.com/gocrud/inject/logging"
)

// SchedulerNode 调度器节点名称
const SchedulerNode = "cron"

var (
	jobType    = reflect.TypeOf(Job{})
	loggerType = reflect.TypeOf((*logging.Logger)(nil)).Elem()
	schedType  = reflect.TypeOf((*Scheduler)(nil))
)

// Nodes 声明得到的节点
type Nodes struct {
	Scheduler graph.Key[*Scheduler]
	jobs      map[string]graph.Key[Job]
}

// Job 返回任务节点
func (n *Nodes) Job(name string) (graph.Key[Job], bool) {
	k, ok := n.jobs[name]
	return k, ok
}

// Declare 声明任务节点与调度器节点。表达式、时区与任务函数签名在此校验，
// 依赖类型由 graph.Builder.Build 校验。
func Declare(b *graph.Builder, logger graph.Key[logging.Logger], configure func(*Builder)) (*Nodes, error) {
	cb := newBuilder()
	if configure != nil {
		configure(cb)
	}
	if errs := cb.validate(); len(errs) > 0 {
		return nil, fmt.Errorf("cron configuration errors: %w", errors.Join(errs...))
	}

	nodes := &Nodes{jobs: make(map[string]graph.Key[Job], len(cb.jobs))}
	schedArgs := []graph.Ref{logger}
	for _, def := range cb.jobs {
		key := graph.Service[Job](b, SchedulerNode+".job."+def.name,
			graph.Closure(jobConstructor(def).Interface()),
			graph.Args(def.deps...))
		nodes.jobs[def.name] = key
		schedArgs = append(schedArgs, key)
	}

	opt := options{
		Location:         cb.location,
		EnableSeconds:    cb.enableSeconds,
		EnableCronLogger: cb.enableCronLogger,
	}
	nodes.Scheduler = graph.Service[*Scheduler](b, SchedulerNode,
		graph.Factory("NewScheduler", schedulerConstructor(opt, len(cb.jobs)).Interface()),
		graph.Args(schedArgs...))
	return nodes, nil
}

// jobConstructor 生成 func(P1, ..., Pn) Job，把解析好的依赖绑定到任务函数
func jobConstructor(def jobDefinition) reflect.Value {
	handlerType := def.handler.Type()
	params := make([]reflect.Type, handlerType.NumIn())
	for i := range params {
		params[i] = handlerType.In(i)
	}
	fnType := reflect.FuncOf(params, []reflect.Type{jobType}, false)

	return reflect.MakeFunc(fnType, func(args []reflect.Value) []reflect.Value {
		bound := append([]reflect.Value(nil), args...)
		job := Job{
			Spec: def.spec,
			Name: def.name,
			Run: func() error {
				out := def.handler.Call(bound)
				if len(out) == 1 && !out[0].IsNil() {
					return out[0].Interface().(error)
				}
				return nil
			},
		}
		return []reflect.Value{reflect.ValueOf(job)}
	})
}

// schedulerConstructor 生成 func(logging.Logger, Job, ..., Job) (*Scheduler, error)
func schedulerConstructor(opt options, jobs int) reflect.Value {
	params := make([]reflect.Type, 0, jobs+1)
	params = append(params, loggerType)
	for i := 0; i < jobs; i++ {
		params = append(params, jobType)
	}
	fnType := reflect.FuncOf(params, []reflect.Type{schedType, errorType}, false)

	return reflect.MakeFunc(fnType, func(args []reflect.Value) []reflect.Value {
		var logger logging.Logger = logging.Nop()
		if l, ok := args[0].Interface().(logging.Logger); ok && l != nil {
			logger = l.WithCategory("cron")
		}
		list := make([]Job, 0, jobs)
		for _, a := range args[1:] {
			list = append(list, a.Interface().(Job))
		}

		s, err := newScheduler(logger, opt, list)
		errValue := reflect.Zero(errorType)
		if err != nil {
			errValue = reflect.ValueOf(&err).Elem()
		}
		return []reflect.Value{reflect.ValueOf(s), errValue}
	})
}
