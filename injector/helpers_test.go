package injector_test

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gocrud/inject/graph"
	"github.com/stretchr/testify/require"
)

// sharedCounter 在多个服务之间共享的计数器，从 1 开始
type sharedCounter struct {
	x atomic.Int64
}

func newSharedCounter() *sharedCounter {
	c := &sharedCounter{}
	c.x.Store(1)
	return c
}

func (c *sharedCounter) inc()       { c.x.Add(1) }
func (c *sharedCounter) get() int64 { return c.x.Load() }

// adder 先递增共享计数器再读取
type adder struct {
	counter *sharedCounter
	base    int64
}

func newAdder(c *sharedCounter, base int64) *adder {
	return &adder{counter: c, base: base}
}

func (a *adder) test() int64 {
	a.counter.inc()
	return a.base + a.counter.get()
}

type composite struct {
	counter *sharedCounter
	adder   *adder
}

func newComposite(c *sharedCounter, a *adder) composite {
	return composite{counter: c, adder: a}
}

func (c composite) test() int64 { return c.adder.test() }

type fixture struct {
	g         *graph.Graph
	base      graph.Key[int64]
	counter   graph.Key[*sharedCounter]
	adder     graph.Key[*adder]
	composite graph.Key[composite]
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	b := graph.NewBuilder()
	f := fixture{}
	f.base = graph.Const[int64](b, "TEST", 10)
	f.counter = graph.Service[*sharedCounter](b, "Test1", graph.Closure(newSharedCounter))
	f.adder = graph.Service[*adder](b, "Test2", graph.Closure(newAdder), graph.Args(f.counter, f.base))
	f.composite = graph.Service[composite](b, "TestX", graph.Factory("newComposite", newComposite), graph.Args(f.counter, f.adder))

	g, err := b.Build()
	require.NoError(t, err)
	f.g = g
	return f
}

// within 在超时内运行 fn，超时视为挂起
func within(t *testing.T, d time.Duration, fn func()) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		defer close(done)
		fn()
	}()
	select {
	case <-done:
	case <-time.After(d):
		t.Fatalf("operation did not finish within %v", d)
	}
}

// parallel 同时启动 n 个 goroutine 执行 fn
func parallel(n int, fn func(i int)) {
	var (
		wg    sync.WaitGroup
		start = make(chan struct{})
	)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			fn(i)
		}()
	}
	close(start)
	wg.Wait()
}
