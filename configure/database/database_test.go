package database_test

import (
	"testing"

	"github.com/gocrud/inject/config"
	"github.com/gocrud/inject/configure/database"
	"github.com/gocrud/inject/graph"
	"github.com/gocrud/inject/injector"
	"github.com/gocrud/inject/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Name string
}

type userRepo struct {
	db *gorm.DB
}

func (r *userRepo) Create(name string) error {
	return r.db.Create(&User{Name: name}).Error
}

func (r *userRepo) Count() (int64, error) {
	var n int64
	err := r.db.Model(&User{}).Count(&n).Error
	return n, err
}

// DBConfig 用户定义的配置结构
type DBConfig struct {
	DSN          string `json:"dsn"`
	MaxOpenConns int    `json:"max_open_conns"`
}

func TestDatabaseConfiguration(t *testing.T) {
	cfg, err := config.NewConfigurationBuilder().
		AddInMemory(map[string]any{
			"db": map[string]any{
				"master": map[string]any{
					"dsn":            "file::memory:?cache=shared",
					"max_open_conns": 5,
				},
			},
		}).
		Build()
	require.NoError(t, err)

	b := graph.NewBuilder()
	logger := graph.Const(b, "Logger", logging.Nop())

	nodes, err := database.Declare(b, logger, func(db *database.Builder) {
		dbConf, err := config.Load[DBConfig](cfg, "db:master")
		if err != nil {
			db.Fail(err)
			return
		}
		db.Add("master", sqlite.Open(dbConf.DSN), func(o *database.DatabaseOptions) {
			o.MaxOpenConns = dbConf.MaxOpenConns
			o.MaxIdleConns = 2
			o.AutoMigrate = []any{&User{}}
		})
	})
	require.NoError(t, err)

	master, ok := nodes.DB("master")
	require.True(t, ok)
	repo := graph.Service[*userRepo](b, "UserRepo",
		graph.Closure(func(db *gorm.DB) *userRepo { return &userRepo{db: db} }),
		graph.Args(master))

	g, err := b.Build()
	require.NoError(t, err)
	inj := injector.New(g)

	r := injector.MustInject(inj, repo)
	require.NoError(t, r.Create("alice"))
	n, err := r.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	sqlDB, err := injector.MustInject(inj, master).DB()
	require.NoError(t, err)
	assert.Equal(t, 5, sqlDB.Stats().MaxOpenConnections)

	assert.NoError(t, injector.MustInject(inj, nodes.Factory).Close())
}

func TestMissingSectionFailsDeclare(t *testing.T) {
	cfg, err := config.NewConfigurationBuilder().Build()
	require.NoError(t, err)

	b := graph.NewBuilder()
	logger := graph.Const(b, "Logger", logging.Nop())
	_, err = database.Declare(b, logger, func(db *database.Builder) {
		if _, err := config.Load[DBConfig](cfg, "db:master"); err != nil {
			db.Fail(err)
		}
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrKeyNotFound)
}

func TestBuilderValidation(t *testing.T) {
	b := graph.NewBuilder()
	logger := graph.Const(b, "Logger", logging.Nop())
	_, err := database.Declare(b, logger, func(db *database.Builder) {
		db.Add("nodialect", nil, nil)
		db.Add("pool", sqlite.Open("file::memory:"), func(o *database.DatabaseOptions) {
			o.MaxIdleConns = 20
			o.MaxOpenConns = 10
		})
	})
	require.Error(t, err)
	assert.ErrorContains(t, err, "dialector is required")
	assert.ErrorContains(t, err, "exceeds max open conns")
}
