package cron_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gocrud/inject/configure/cron"
	"github.com/gocrud/inject/graph"
	"github.com/gocrud/inject/injector"
	"github.com/gocrud/inject/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counter struct {
	n atomic.Int64
}

func setup(t *testing.T, configure func(*cron.Builder, graph.Key[*counter])) (*injector.Injector, *cron.Nodes, graph.Key[*counter], error) {
	t.Helper()
	b := graph.NewBuilder()
	logger := graph.Const(b, "Logger", logging.Nop())
	ctr := graph.Service[*counter](b, "Counter", graph.Default())

	nodes, err := cron.Declare(b, logger, func(cb *cron.Builder) { configure(cb, ctr) })
	if err != nil {
		return nil, nil, ctr, err
	}
	g, err := b.Build()
	if err != nil {
		return nil, nil, ctr, err
	}
	return injector.New(g), nodes, ctr, nil
}

func TestJobDependenciesAreInjected(t *testing.T) {
	inj, nodes, ctr, err := setup(t, func(cb *cron.Builder, ctr graph.Key[*counter]) {
		cb.AddJobWithDeps("@hourly", "count", func(c *counter) {
			c.n.Add(1)
		}, ctr)
		cb.AddJob("@daily", "noop", func() {})
	})
	require.NoError(t, err)

	sched := injector.MustInject(inj, nodes.Scheduler)
	require.NoError(t, sched.Run("count"))
	require.NoError(t, sched.Run("count"))
	assert.Equal(t, int64(2), injector.MustInject(inj, ctr).n.Load())

	entries := sched.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "count", entries[0].Name)
	assert.Equal(t, "@hourly", entries[0].Spec)
	assert.Equal(t, "noop", entries[1].Name)

	assert.Error(t, sched.Run("missing"))
	assert.True(t, sched.Remove("noop"))
	assert.False(t, sched.Remove("noop"))
	assert.Len(t, sched.Entries(), 1)
}

func TestSchedulerRunsJobs(t *testing.T) {
	inj, nodes, ctr, err := setup(t, func(cb *cron.Builder, ctr graph.Key[*counter]) {
		cb.WithSeconds().AddJobWithDeps("* * * * * *", "tick", func(c *counter) error {
			c.n.Add(1)
			return nil
		}, ctr)
	})
	require.NoError(t, err)

	sched := injector.MustInject(inj, nodes.Scheduler)
	sched.Start()
	sched.Start()
	assert.Eventually(t, func() bool {
		return injector.MustInject(inj, ctr).n.Load() > 0
	}, 3*time.Second, 50*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, sched.Stop(ctx))
	assert.NoError(t, sched.Stop(ctx))
}

func TestFailingAndPanickingJobsAreContained(t *testing.T) {
	inj, nodes, _, err := setup(t, func(cb *cron.Builder, _ graph.Key[*counter]) {
		cb.AddJobWithDeps("@hourly", "fails", func() error { return errors.New("boom") })
		cb.AddJob("@hourly", "panics", func() { panic("boom") })
	})
	require.NoError(t, err)

	sched := injector.MustInject(inj, nodes.Scheduler)
	assert.NoError(t, sched.Run("fails"))
	assert.NotPanics(t, func() { _ = sched.Run("panics") })
}

func TestDependencyTypeCheckedAtBuild(t *testing.T) {
	_, _, _, err := setup(t, func(cb *cron.Builder, ctr graph.Key[*counter]) {
		cb.AddJobWithDeps("@hourly", "wrong", func(s string) {}, ctr)
	})
	require.Error(t, err)
	var argErr *graph.ArgTypeError
	assert.ErrorAs(t, err, &argErr)
}

func TestDeclareValidation(t *testing.T) {
	_, _, _, err := setup(t, func(cb *cron.Builder, ctr graph.Key[*counter]) {
		cb.AddJob("not a spec", "bad-spec", func() {})
		cb.AddJob("@hourly", "dup", func() {})
		cb.AddJob("@hourly", "dup", func() {})
		cb.AddJobWithDeps("@hourly", "arity", func(c *counter) {})
		cb.AddJobWithDeps("@hourly", "result", func() int { return 0 })
		cb.WithLocation("Mars/Olympus")
	})
	require.Error(t, err)
	assert.ErrorContains(t, err, "invalid spec")
	assert.ErrorContains(t, err, "already configured")
	assert.ErrorContains(t, err, "1 parameters but 0 dependencies")
	assert.ErrorContains(t, err, "must return nothing or error")
	assert.ErrorContains(t, err, "invalid location")
}
