package postgresql

import (
	"database/sql"
	"fmt"

	"parking_dashboard/internal/config"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

func NewDB(cfg *config.Config) (*sql.DB, error) {
	psqlInfo := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBSslMode)

	db, err := sql.Open("pgx", psqlInfo) // Sử dụng "pgx" vì import pgx/stdlib
	if err != nil {
		return nil, fmt.Errorf("lỗi mở kết nối database: %w", err)
	}

	err = db.Ping()
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("lỗi ping database: %w", err)
	}
	return db, nil
}

// RunMigrations áp dụng các migration goose trong thư mục cấu hình.
func RunMigrations(db *sql.DB, dir string) error {
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("lỗi đặt dialect cho goose: %w", err)
	}
	if err := goose.Up(db, dir); err != nil {
		return fmt.Errorf("lỗi chạy migration: %w", err)
	}
	return nil
}
