package journal

import (
	"embed"
	"errors"
	"fmt"
	"log"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// migrateUp 执行所有未执行的迁移，已是最新版本时返回 nil
func (j *Journal) migrateUp() error {
	m, err := j.newMigrate()
	if err != nil {
		return err
	}
	// 不调用 m.Close()，它会关闭底层数据库连接

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("日志数据库迁移失败: %w", err)
	}
	return nil
}

// Version 返回当前迁移版本；尚未迁移时返回 0
func (j *Journal) Version() (version uint, dirty bool, err error) {
	m, err := j.newMigrate()
	if err != nil {
		return 0, false, err
	}
	version, dirty, err = m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}

func (j *Journal) newMigrate() (*migrate.Migrate, error) {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("无法读取内置迁移: %w", err)
	}
	driver, err := sqlite.WithInstance(j.db, &sqlite.Config{})
	if err != nil {
		return nil, fmt.Errorf("无法创建 sqlite 迁移驱动: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return nil, fmt.Errorf("无法创建迁移实例: %w", err)
	}
	m.Log = &migrateLogger{}
	return m, nil
}

// migrateLogger 实现 migrate.Logger
type migrateLogger struct{}

func (l *migrateLogger) Printf(format string, v ...interface{}) {
	log.Printf("[migrate] "+format, v...)
}

func (l *migrateLogger) Verbose() bool {
	return false
}
