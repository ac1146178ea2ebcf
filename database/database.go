package database

import (
	"fmt"
	"time"

	"roleplay/config"
	"roleplay/models"

	_ "github.com/lib/pq" // postgres 使用 database/sql 的 lib/pq 驱动
	"github.com/rs/zerolog/log"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Init 初始化数据库连接、迁移表结构并补齐内置角色
func Init(cfg *config.Config) error {
	gdb, err := Open(cfg)
	if err != nil {
		return err
	}

	if err := Migrate(gdb); err != nil {
		return fmt.Errorf("迁移数据库失败: %w", err)
	}

	if err := SeedDefaultRoles(gdb); err != nil {
		return fmt.Errorf("初始化默认角色失败: %w", err)
	}

	DB = gdb
	log.Info().Str("driver", cfg.Database.Driver).Msg("数据库初始化成功")
	return nil
}

// Open 按配置的驱动建立连接并设置连接池
func Open(cfg *config.Config) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg.Database)
	if err != nil {
		return nil, err
	}

	level := logger.Warn
	if cfg.Server.Mode == "debug" {
		level = logger.Info
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(level),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}

	if cfg.Database.Driver == "sqlite" {
		// sqlite 单写者
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	return gdb, nil
}

func dialectorFor(cfg config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "mysql":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=%s&parseTime=True&loc=Local",
			cfg.Username,
			cfg.Password,
			cfg.Host,
			cfg.Port,
			cfg.DBName,
			cfg.Charset,
		)
		return mysql.Open(dsn), nil
	case "postgres", "":
		dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host,
			cfg.Port,
			cfg.Username,
			cfg.Password,
			cfg.DBName,
			cfg.SSLMode,
		)
		return postgres.New(postgres.Config{DriverName: "postgres", DSN: dsn}), nil
	case "sqlite":
		return sqlite.Open(cfg.Path), nil
	default:
		return nil, fmt.Errorf("不支持的数据库驱动: %s", cfg.Driver)
	}
}

// Migrate 自动迁移全部表结构
func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&models.User{},
		&models.Role{},
		&models.Chat{},
		&models.Message{},
	)
}

// SeedDefaultRoles 按名称补齐内置角色，已存在的同名角色不覆盖
func SeedDefaultRoles(gdb *gorm.DB) error {
	return gdb.Transaction(func(tx *gorm.DB) error {
		for _, role := range models.DefaultRoles() {
			var count int64
			if err := tx.Model(&models.Role{}).Where("name = ?", role.Name).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				continue
			}
			if err := tx.Create(&role).Error; err != nil {
				return err
			}
			log.Info().Str("role", role.Name).Msg("已创建默认角色")
		}
		return nil
	})
}

// GetDB 获取数据库连接
func GetDB() *gorm.DB {
	return DB
}
