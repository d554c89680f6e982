package data

import (
	"context"
	"time"

	"github.com/PhilatPlay/PinMyPlace/internal/biz"
	"github.com/PhilatPlay/PinMyPlace/internal/conf"
	"github.com/PhilatPlay/PinMyPlace/internal/data/gateway"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// ProviderSet is data providers.
var ProviderSet = wire.NewSet(
	NewData,
	NewDB,
	NewRedis,
	NewRedsync,
	NewOrderRepo,
	NewPinRepo,
	NewBulkCodeRepo,
	NewAgentRepo,
	gateway.NewGateways,
	wire.Bind(new(biz.Transaction), new(*Data)),
)

// Data .
type Data struct {
	db  *gorm.DB
	rdb *redis.Client
}

type contextTxKey struct{}

// Exec 执行事务
func (d *Data) Exec(ctx context.Context, fn func(ctx context.Context) error) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ctx = context.WithValue(ctx, contextTxKey{}, tx)
		return fn(ctx)
	})
}

// DB 返回当前上下文绑定的事务句柄, 无事务时回退到根连接
func (d *Data) DB(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(contextTxKey{}).(*gorm.DB); ok {
		return tx
	}
	return d.db.WithContext(ctx)
}

// NewData .
func NewData(c *conf.Bootstrap, logger log.Logger, db *gorm.DB, rdb *redis.Client) (*Data, func(), error) {
	cleanup := func() {
		log.NewHelper(logger).Info("closing the data resources")
	}
	return &Data{db: db, rdb: rdb}, cleanup, nil
}

// NewDB .
func NewDB(c *conf.Bootstrap) *gorm.DB {
	source := ""
	if c != nil && c.Data != nil {
		source = c.Data.Database.Source
	}
	if source == "" {
		panic("database source is required")
	}

	// TranslateError 让唯一索引冲突映射为 gorm.ErrDuplicatedKey,
	// 兑换码生成依赖这个错误做冲突仲裁
	db, err := gorm.Open(mysql.Open(source), &gorm.Config{TranslateError: true})
	if err != nil {
		panic(err)
	}

	// Configure connection pool
	sqlDB, err := db.DB()
	if err != nil {
		panic(err)
	}

	if c != nil && c.Data != nil {
		dbConf := c.Data.Database
		if dbConf.MaxIdleConns > 0 {
			sqlDB.SetMaxIdleConns(dbConf.MaxIdleConns)
		}
		if dbConf.MaxOpenConns > 0 {
			sqlDB.SetMaxOpenConns(dbConf.MaxOpenConns)
		}
		if dbConf.ConnMaxLifetime != "" {
			if d, err := time.ParseDuration(dbConf.ConnMaxLifetime); err == nil {
				sqlDB.SetConnMaxLifetime(d)
			}
		}
	}
	return db
}

// NewRedis .
func NewRedis(c *conf.Bootstrap) *redis.Client {
	var readTimeout, writeTimeout time.Duration
	var addr, password string
	var db int32

	if c != nil && c.Data != nil {
		redisConf := c.Data.Redis
		if d, err := time.ParseDuration(redisConf.ReadTimeout); err == nil {
			readTimeout = d
		}
		if d, err := time.ParseDuration(redisConf.WriteTimeout); err == nil {
			writeTimeout = d
		}
		addr = redisConf.Addr
		password = redisConf.Password
		db = redisConf.Db
	}

	if addr == "" {
		addr = "localhost:6379"
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           int(db),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	})
	return rdb
}

// NewRedsync 创建 redsync 实例
func NewRedsync(rdb *redis.Client) *redsync.Redsync {
	pool := goredis.NewPool(rdb)
	return redsync.New(pool)
}
