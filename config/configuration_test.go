package config

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/gocrud/inject/graph"
	"github.com/gocrud/inject/injector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type serverOptions struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

func TestBuilderMergesSourcesInOrder(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "app.yaml")
	jsonPath := filepath.Join(dir, "app.json")
	require.NoError(t, os.WriteFile(yamlPath, []byte("server:\n  host: localhost\n  port: 8080\nname: demo\n"), 0o644))
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"server": {"port": 9090}}`), 0o644))

	cfg, err := NewConfigurationBuilder().
		AddYamlFile(yamlPath).
		AddJsonFile(jsonPath).
		AddYamlFile(filepath.Join(dir, "missing.yaml"), true).
		Build()
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Get("server:host"))
	assert.Equal(t, "9090", cfg.Get("server.port"))
	assert.Equal(t, "demo", cfg.Get("name"))
	assert.Equal(t, "fallback", cfg.GetWithDefault("server:scheme", "fallback"))

	port, err := cfg.GetInt("server:port")
	require.NoError(t, err)
	assert.Equal(t, 9090, port)
}

func TestMissingRequiredFile(t *testing.T) {
	_, err := NewConfigurationBuilder().AddJsonFile(filepath.Join(t.TempDir(), "nope.json")).Build()
	assert.Error(t, err)
}

func TestEnvironmentVariables(t *testing.T) {
	t.Setenv("INJECTTEST_SERVER_PORT", "7000")
	t.Setenv("INJECTTEST_DEBUG", "true")

	cfg, err := NewConfigurationBuilder().
		AddInMemory(map[string]any{"server": map[string]any{"host": "example"}}).
		AddEnvironmentVariables("INJECTTEST_").
		Build()
	require.NoError(t, err)

	port, err := cfg.GetInt("server:port")
	require.NoError(t, err)
	assert.Equal(t, 7000, port)
	assert.Equal(t, "example", cfg.Get("server:host"))

	debug, err := cfg.GetBool("debug")
	require.NoError(t, err)
	assert.True(t, debug)
}

func TestBindAndSection(t *testing.T) {
	cfg, err := NewConfigurationBuilder().
		AddInMemory(map[string]any{"server": map[string]any{"host": "h", "port": 1}}).
		Build()
	require.NoError(t, err)

	opts, err := Load[serverOptions](cfg, "server")
	require.NoError(t, err)
	assert.Equal(t, serverOptions{Host: "h", Port: 1}, opts)

	section := cfg.GetSection("server")
	assert.Equal(t, "h", section.Get("host"))

	_, err = Load[serverOptions](cfg, "client")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	_, err = cfg.GetInt("client:port")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestInMemoryIsCopied(t *testing.T) {
	src := map[string]any{"server": map[string]any{"host": "a"}}
	cfg, err := NewConfigurationBuilder().AddInMemory(src).Build()
	require.NoError(t, err)

	src["server"].(map[string]any)["host"] = "b"
	assert.Equal(t, "a", cfg.Get("server:host"))

	all := cfg.GetAll()
	all["server"].(map[string]any)["host"] = "c"
	assert.Equal(t, "a", cfg.Get("server:host"))
}

func TestConstNodeBindsOnce(t *testing.T) {
	cfg, err := NewConfigurationBuilder().
		AddInMemory(map[string]any{"server": map[string]any{"host": "h", "port": 2}}).
		Build()
	require.NoError(t, err)

	b := graph.NewBuilder()
	cfgKey := Provide(b, cfg)
	optsKey := Const[serverOptions](b, "ServerOptions", cfg, "server")
	missing := Const[serverOptions](b, "ClientOptions", cfg, "client")
	g, err := b.Build()
	require.NoError(t, err)

	inj := injector.New(g)
	opts, err := injector.Inject(inj, optsKey)
	require.NoError(t, err)
	assert.Equal(t, 2, opts.Port)
	assert.True(t, inj.Cached(optsKey.ID()))

	got, err := injector.Inject(inj, cfgKey)
	require.NoError(t, err)
	assert.Equal(t, "h", got.Get("server:host"))

	_, err = injector.Inject(inj, missing)
	assert.True(t, injector.IsConstruction(err))
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestValueStore(t *testing.T) {
	store := NewValueStore()
	store.Store(map[string]any{"key": "value"})
	assert.Equal(t, "value", store.Load()["key"])

	var wg sync.WaitGroup
	for range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			store.Load()
		}()
	}
	wg.Wait()
}

func TestPathCache(t *testing.T) {
	cache := &PathCache{}
	assert.Equal(t, []string{"a", "b", "c"}, cache.GetPathSegments("a:b.c"))
	assert.Equal(t, []string{"a", "b", "c"}, cache.GetPathSegments("a:b.c"))
	assert.Empty(t, cache.GetPathSegments(""))
}

func BenchmarkConfigGet(b *testing.B) {
	cfg, _ := NewConfigurationBuilder().
		AddInMemory(map[string]any{
			"server": map[string]any{
				"host": "localhost",
				"port": 8080,
			},
		}).
		Build()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		cfg.Get("server:host")
	}
}
