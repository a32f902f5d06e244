// connection.go
//
// A video hosting service for users, videos, comments, tags and subscriptions
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of videohost.
// videohost is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// videohost is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with videohost.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package database

import (
	"fmt"
	"net"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/localnerve/videohost/internal/config"
	"github.com/localnerve/videohost/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/driver/sqlserver"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Dialector builds the GORM dialector for the configured DB_TYPE
func Dialector(cfg *config.Config) (gorm.Dialector, error) {
	switch cfg.DBType {
	case "mysql", "mariadb":
		mc := mysqldriver.NewConfig()
		mc.User = cfg.DBUser
		mc.Passwd = cfg.DBPassword
		mc.Net = "tcp"
		mc.Addr = net.JoinHostPort(cfg.DBHost, cfg.DBPort)
		mc.DBName = cfg.DBDatabase
		mc.ParseTime = true
		mc.Loc = time.UTC
		mc.Params = map[string]string{"charset": "utf8mb4"}
		return mysql.Open(mc.FormatDSN()), nil

	case "postgres", "postgresql":
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
			cfg.DBHost,
			cfg.DBUser,
			cfg.DBPassword,
			cfg.DBDatabase,
			cfg.DBPort,
		)
		return postgres.Open(dsn), nil

	case "sqlite":
		// DB_DATABASE is the file path. Cascades need foreign keys switched on.
		return sqlite.Open(cfg.DBDatabase + "?_foreign_keys=on"), nil

	case "sqlserver", "mssql":
		dsn := fmt.Sprintf("sqlserver://%s:%s@%s:%s?database=%s",
			cfg.DBUser,
			cfg.DBPassword,
			cfg.DBHost,
			cfg.DBPort,
			cfg.DBDatabase,
		)
		return sqlserver.Open(dsn), nil
	}

	return nil, fmt.Errorf("unsupported database type: %s", cfg.DBType)
}

// GormConfig is shared by the server, the CLI and the tests. TranslateError
// turns unique index violations into gorm.ErrDuplicatedKey.
func GormConfig(level logger.LogLevel) *gorm.Config {
	return &gorm.Config{
		Logger:         logger.Default.LogMode(level),
		TranslateError: true,
	}
}

// Connect establishes a database connection based on the configured DB_TYPE
func Connect(cfg *config.Config, log logrus.FieldLogger) (*gorm.DB, error) {
	dialector, err := Dialector(cfg)
	if err != nil {
		return nil, err
	}

	level := logger.Warn
	if cfg.LogLevel == "debug" {
		level = logger.Info
	}

	db, err := gorm.Open(dialector, GormConfig(level))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying SQL DB for connection pool configuration
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying SQL DB: %w", err)
	}

	limit := cfg.DBConnectionLimit
	if limit <= 0 {
		limit = 1
	}
	sqlDB.SetMaxOpenConns(limit)
	sqlDB.SetMaxIdleConns(max(limit/2, 1))

	log.WithFields(logrus.Fields{
		"dbType":   cfg.DBType,
		"database": cfg.DBDatabase,
	}).Info("Connected to database")

	return db, nil
}

// AutoMigrate runs automatic migrations for all models, parents first
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Tag{},
		&models.Video{},
		&models.VideoTag{},
		&models.Comment{},
		&models.Subscription{},
	)
}

// Close closes the database connection
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
