package bootstrap

import (
	"fmt"
	"strconv"

	"github.com/jmoiron/sqlx"

	"github.com/intentiq/intentiq/internal/config"
	"github.com/intentiq/intentiq/internal/database"
)

// SetupDatabase opens and pings the PostgreSQL pool.
func SetupDatabase(cfg *config.Config) (*sqlx.DB, error) {
	db, err := database.NewPostgresConnection(database.Config{
		Host:            cfg.Database.Host,
		Port:            strconv.Itoa(cfg.Database.Port),
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.Database,
		SSLMode:         cfg.Database.SSLMode,
		MaxOpenConns:    cfg.Database.MaxConnections,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("database connection: %w", err)
	}
	return db, nil
}
