package repo

import (
	"TeleVault/config"
	"TeleVault/model"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	gormMysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
)

var Db *gorm.DB

// autoMigrateAll migrates all database models.
func autoMigrateAll(db *gorm.DB) {
	db.AutoMigrate(&model.User{})
	db.AutoMigrate(&model.Category{})
	db.AutoMigrate(&model.Format{})
	db.AutoMigrate(&model.Tag{})
	db.AutoMigrate(&model.File{})
	db.AutoMigrate(&model.FileDownload{})
	db.AutoMigrate(&model.SubscriptionChannel{})
	db.AutoMigrate(&model.Setting{})
	db.AutoMigrate(&model.Backup{})
	db.AutoMigrate(&model.Notification{})
	db.AutoMigrate(&model.ApiLog{})
}

// InitDb initializes the metadata store. The default driver is the
// file-backed pure-Go sqlite build; MySQL is selectable for deployments
// that already run one, at the cost of file-copy backups.
func InitDb() {
	switch config.AppConfig.DBDriver {
	case "mysql":
		initMysql()
	default:
		initSqlite()
	}
}

func initSqlite() {
	path := config.AppConfig.DBPath
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Fatal("create database directory fail", err)
		}
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		log.Fatal("init sqlite fail", err)
	}
	// single writer; sqlite serializes writes anyway
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal("get sql db fail", err)
	}
	sqlDB.SetMaxOpenConns(1)

	autoMigrateAll(db)
	log.Println("init sqlite success")
	Db = db
}

func initMysql() {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		config.AppConfig.DBUser,
		config.AppConfig.DBPass,
		config.AppConfig.DBHost,
		config.AppConfig.DBPort,
		config.AppConfig.DBName,
	)
	db, err := gorm.Open(gormMysql.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("init mysql fail", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal("get sql db fail", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	autoMigrateAll(db)
	log.Println("init mysql success")
	Db = db
}

// InitTestDb sets up an isolated in-memory sqlite store for package tests.
func InitTestDb() {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		log.Fatal("init test sqlite fail", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal("get sql db fail", err)
	}
	sqlDB.SetMaxOpenConns(1)

	autoMigrateAll(db)
	Db = db
}
