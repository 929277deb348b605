// Package config содержит также открытие пула соединений с PostgreSQL
// и запуск миграций.
//
// Пакет выполняет:
//   - открытие соединения с PostgreSQL (через драйвер pgx);
//   - настройку пула (*sql.DB) по секции db;
//   - проверку доступности базы (Ping);
//   - запуск миграций (golang-migrate).
//
// Глобального экземпляра нет: *sql.DB возвращается вызывающему и
// передаётся в репозитории явно.
package config

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"go.uber.org/zap"

	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v4/stdlib"
)

// OpenDB открывает пул соединений по DSN и проверяет его доступность.
func OpenDB(ctx context.Context, cfg DBConfig) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("error to connect db: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("error check db connection: %w", err)
	}
	return db, nil
}

// Направления миграций для команды migrate.
const (
	MigrateUp   = "up"
	MigrateDown = "down"
)

// Migrate применяет (up) или откатывает на один шаг (down) миграции
// из source (например file://migrations/postgres).
//
// Если миграции уже применены, migrate.ErrNoChange не считается ошибкой.
func Migrate(db *sql.DB, source, direction string, log *zap.SugaredLogger) error {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("error creating migration driver: %w", err)
	}

	// создаём миграции с выбранным драйвером
	m, err := migrate.NewWithDatabaseInstance(source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("error creating migrations: %w", err)
	}

	switch direction {
	case MigrateUp:
		err = m.Up()
	case MigrateDown:
		err = m.Steps(-1)
	default:
		return fmt.Errorf("unknown migration direction %q", direction)
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("error applying migrations: %w", err)
	}

	log.Infof("migrations %s applied successfully", direction)
	return nil
}
