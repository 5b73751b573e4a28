package database

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gocrud/inject/logging"
	"gorm.io/gorm"
)

// DatabaseFactory 数据库实例工厂。实例在首次 Get 时打开并迁移。
type DatabaseFactory struct {
	mu      sync.Mutex
	options map[string]DatabaseOptions
	dbs     map[string]*gorm.DB
	logger  logging.Logger
}

// NewDatabaseFactory 创建数据库工厂
func NewDatabaseFactory(logger logging.Logger, configs []DatabaseOptions) *DatabaseFactory {
	f := &DatabaseFactory{
		options: make(map[string]DatabaseOptions, len(configs)),
		dbs:     make(map[string]*gorm.DB),
		logger:  logger,
	}
	for _, opts := range configs {
		f.options[opts.Name] = opts
	}
	return f
}

// Get 返回指定名称的数据库实例
func (f *DatabaseFactory) Get(name string) (*gorm.DB, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if db, ok := f.dbs[name]; ok {
		return db, nil
	}
	opts, ok := f.options[name]
	if !ok {
		return nil, fmt.Errorf("database '%s' not configured", name)
	}

	db, err := open(opts)
	if err != nil {
		return nil, err
	}

	f.dbs[name] = db
	f.logger.Info("Database opened",
		logging.F("name", name),
		logging.F("dialect", opts.Dialector.Name()),
		logging.F("migrated", len(opts.AutoMigrate)))
	return db, nil
}

func open(opts DatabaseOptions) (*gorm.DB, error) {
	db, err := gorm.Open(opts.Dialector, opts.GormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to open database '%s': %w", opts.Name, err)
	}

	// 配置连接池
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB for '%s': %w", opts.Name, err)
	}
	sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
	sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(opts.MaxLifetime)

	if len(opts.AutoMigrate) > 0 {
		if err := db.AutoMigrate(opts.AutoMigrate...); err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("auto migrate failed for '%s': %w", opts.Name, err)
		}
	}
	return db, nil
}

// Each 遍历已打开的数据库实例
func (f *DatabaseFactory) Each(fn func(name string, db *gorm.DB)) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for name, db := range f.dbs {
		fn(name, db)
	}
}

// Close 关闭所有数据库连接
func (f *DatabaseFactory) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	var errs []error
	for name, db := range f.dbs {
		sqlDB, err := db.DB()
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to get sql.DB for '%s': %w", name, err))
			continue
		}
		if err := sqlDB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database '%s': %w", name, err))
		}
	}
	f.dbs = make(map[string]*gorm.DB)
	return errors.Join(errs...)
}
