package mongodb_test

import (
	"os"
	"testing"
	"time"

	"github.com/gocrud/inject/configure/mongodb"
	"github.com/gocrud/inject/graph"
	"github.com/gocrud/inject/injector"
	"github.com/gocrud/inject/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

func declare(t *testing.T, configure func(*mongodb.Builder)) (*injector.Injector, *mongodb.Nodes) {
	t.Helper()
	b := graph.NewBuilder()
	logger := graph.Const(b, "Logger", logging.Nop())
	nodes, err := mongodb.Declare(b, logger, configure)
	require.NoError(t, err)
	g, err := b.Build()
	require.NoError(t, err)
	return injector.New(g), nodes
}

func TestDeclareIsLazy(t *testing.T) {
	// Connect 不会主动建立连接，无需真实服务
	inj, nodes := declare(t, func(b *mongodb.Builder) {
		b.Add("main", "mongodb://127.0.0.1:27999", func(o *mongodb.MongoOptions) {
			o.Database = "app"
			o.Timeout = time.Second
		})
		b.Add("audit", "mongodb://127.0.0.1:27998", nil)
	})

	main, ok := nodes.Client("main")
	require.True(t, ok)
	db, ok := nodes.Database("main")
	require.True(t, ok)
	_, ok = nodes.Database("audit")
	assert.False(t, ok)

	assert.False(t, inj.Cached(nodes.Factory.ID()))

	database := injector.MustInject(inj, db)
	assert.Equal(t, "app", database.Name())
	client := injector.MustInject(inj, main)
	assert.Same(t, client, database.Client())

	factory := injector.MustInject(inj, nodes.Factory)
	count := 0
	factory.Each(func(string, *mongo.Client) { count++ })
	assert.Equal(t, 1, count)
	assert.NoError(t, factory.Close())
}

func TestBuilderValidation(t *testing.T) {
	b := graph.NewBuilder()
	logger := graph.Const(b, "Logger", logging.Nop())
	_, err := mongodb.Declare(b, logger, func(mb *mongodb.Builder) {
		mb.Add("empty", "", nil)
		mb.Add("pool", "mongodb://localhost", func(o *mongodb.MongoOptions) {
			o.MinPoolSize = 10
			o.MaxPoolSize = 5
		})
	})
	require.Error(t, err)
	assert.ErrorContains(t, err, "mongo uri is required")
	assert.ErrorContains(t, err, "exceeds max pool size")
}

func TestPing(t *testing.T) {
	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		t.Skip("MONGODB_URI not set")
	}
	inj, nodes := declare(t, func(b *mongodb.Builder) {
		b.Add("default", uri, func(o *mongodb.MongoOptions) {
			o.Ping = true
			o.Timeout = 2 * time.Second
		})
	})
	key, _ := nodes.Client("default")
	_, err := injector.Inject(inj, key)
	require.NoError(t, err)
}
