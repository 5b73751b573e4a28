package etcd_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/gocrud/inject/configure/etcd"
	"github.com/gocrud/inject/graph"
	"github.com/gocrud/inject/injector"
	"github.com/gocrud/inject/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	clientv3 "go.etcd.io/etcd/client/v3"
)

// registry 依赖 etcd 客户端的服务
type registry struct {
	client *clientv3.Client
}

func declare(t *testing.T, endpoints []string) (*injector.Injector, *etcd.Nodes, graph.Key[*registry]) {
	t.Helper()
	b := graph.NewBuilder()
	logger := graph.Const(b, "Logger", logging.Nop())
	nodes, err := etcd.Declare(b, logger, func(eb *etcd.Builder) {
		eb.AddClient("master", func(o *etcd.EtcdClientOptions) {
			o.Endpoints = endpoints
			o.DialTimeout = time.Second
		})
	})
	require.NoError(t, err)

	master, ok := nodes.Client("master")
	require.True(t, ok)
	reg := graph.Service[*registry](b, "Registry",
		graph.Closure(func(c *clientv3.Client) *registry { return &registry{client: c} }),
		graph.Args(master))

	g, err := b.Build()
	require.NoError(t, err)
	return injector.New(g), nodes, reg
}

func TestEtcdConfiguration(t *testing.T) {
	inj, nodes, reg := declare(t, []string{"localhost:2379"})

	r := injector.MustInject(inj, reg)
	require.NotNil(t, r.client)
	assert.Equal(t, []string{"localhost:2379"}, r.client.Endpoints())

	_, ok := nodes.Client("slave")
	assert.False(t, ok)

	factory := injector.MustInject(inj, nodes.Factory)
	client, err := factory.Get("master")
	require.NoError(t, err)
	assert.Same(t, r.client, client)

	src, err := factory.Source("master", "/app")
	require.NoError(t, err)
	assert.Same(t, client, src.Client)
	assert.Equal(t, "/app", src.Options.Prefix)

	assert.NoError(t, factory.Close())
}

func TestBuilderValidation(t *testing.T) {
	b := graph.NewBuilder()
	logger := graph.Const(b, "Logger", logging.Nop())
	_, err := etcd.Declare(b, logger, func(eb *etcd.Builder) {
		eb.AddClient("empty", func(o *etcd.EtcdClientOptions) { o.Endpoints = nil })
		eb.AddClient("timeout", func(o *etcd.EtcdClientOptions) { o.DialTimeout = 0 })
	})
	require.Error(t, err)
	assert.ErrorContains(t, err, "etcd endpoints are required")
	assert.ErrorContains(t, err, "dial timeout must be positive")
}

func TestSourceLoadsPrefix(t *testing.T) {
	endpoint := os.Getenv("ETCD_ENDPOINT")
	if endpoint == "" {
		t.Skip("ETCD_ENDPOINT not set")
	}
	inj, nodes, _ := declare(t, []string{endpoint})
	factory := injector.MustInject(inj, nodes.Factory)
	defer factory.Close()

	client, err := factory.Get("master")
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err = client.Put(ctx, "/inject-test/server/port", "8080")
	require.NoError(t, err)

	src, err := factory.Source("master", "/inject-test")
	require.NoError(t, err)
	data, err := src.Load()
	require.NoError(t, err)
	server, ok := data["server"].(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 8080, server["port"])
}
