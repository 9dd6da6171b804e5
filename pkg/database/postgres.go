package database

import (
	"fmt"
	"log"
	"strings"
	"time"

	"chat-rooms/config"
	"chat-rooms/internal/domain/chat"
	"chat-rooms/internal/domain/file"
	"chat-rooms/internal/domain/message"
	"chat-rooms/internal/domain/user"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var DB *gorm.DB

// Tables lists the managed tables, children first.
var Tables = []string{"files", "messages", "chat_participants", "chats", "users"}

func Connect(cfg *config.Config) {
	var err error
	DB, err = Open(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Database connection established")
}

// Open connects with the configured driver and registers the chat schema.
func Open(cfg *config.Config) (*gorm.DB, error) {
	level := gormlogger.Warn
	if cfg.AppMode == "debug" {
		level = gormlogger.Info
	}
	gcfg := &gorm.Config{
		Logger:  gormlogger.Default.LogMode(level),
		NowFunc: func() time.Time { return time.Now().UTC() },
	}

	switch cfg.DBDriver {
	case "sqlite":
		return OpenSQLite(cfg.SQLitePath, gcfg)
	case "postgres", "":
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
			cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort)
		db, err := gorm.Open(postgres.Open(dsn), gcfg)
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get generic database object: %w", err)
		}

		// Connection pool settings
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
		sqlDB.SetConnMaxLifetime(time.Hour)

		return db, Configure(db)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
}

// OpenSQLite opens an embedded database. A single connection is kept so that
// in-memory databases survive across statements.
func OpenSQLite(path string, gcfg *gorm.Config) (*gorm.DB, error) {
	if gcfg == nil {
		gcfg = &gorm.Config{
			Logger:  gormlogger.Default.LogMode(gormlogger.Silent),
			NowFunc: func() time.Time { return time.Now().UTC() },
		}
	}
	if path == "" {
		path = ":memory:"
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	db, err := gorm.Open(sqlite.Open(path+sep+"_pragma=foreign_keys(1)"), gcfg)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return db, Configure(db)
}

// Configure registers the custom participant join table. It must run before
// any query touches Chat.Participants.
func Configure(db *gorm.DB) error {
	if err := db.SetupJoinTable(&chat.Chat{}, "Participants", &chat.Participant{}); err != nil {
		return fmt.Errorf("failed to setup chat participants: %w", err)
	}
	return nil
}

// Migrate creates or updates every table.
func Migrate(db *gorm.DB) error {
	if err := Configure(db); err != nil {
		return err
	}
	if err := db.AutoMigrate(
		&user.User{},
		&chat.Chat{},
		&message.Message{},
		&file.File{},
	); err != nil {
		return fmt.Errorf("auto-migration failed: %w", err)
	}
	return nil
}

func Ping() error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// HealthCheck verifies the connection and that the schema is in place.
func HealthCheck() error {
	if err := Ping(); err != nil {
		return err
	}
	for _, table := range Tables {
		if !DB.Migrator().HasTable(table) {
			return fmt.Errorf("table %s is missing", table)
		}
	}
	return nil
}

func Close() {
	if DB == nil {
		return
	}
	if sqlDB, err := DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func TableExists(table string) (bool, error) {
	if DB == nil {
		return false, fmt.Errorf("database not initialized")
	}
	return DB.Migrator().HasTable(table), nil
}

func GetTableCount(table string) (int64, error) {
	var n int64
	err := DB.Table(table).Count(&n).Error
	return n, err
}

func TruncateAllTables() error {
	return Truncate(DB)
}

// Truncate empties every managed table.
func Truncate(db *gorm.DB) error {
	if db.Dialector.Name() == "postgres" {
		stmt := "TRUNCATE TABLE files, messages, chat_participants, chats, users CASCADE"
		return db.Exec(stmt).Error
	}
	return db.Transaction(func(tx *gorm.DB) error {
		for _, table := range Tables {
			if err := tx.Exec("DELETE FROM " + table).Error; err != nil {
				return fmt.Errorf("failed to truncate %s: %w", table, err)
			}
		}
		return nil
	})
}
