// postgres.go
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

package testhelpers

import (
	"context"
	"fmt"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/localnerve/videohost/internal/config"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	PostgresImage    = "postgres:16-alpine"
	PostgresDatabase = "videohost"
	PostgresUser     = "videohost"
	PostgresPassword = "videohost"
)

// PostgresContainer is a disposable database for integration tests and local
// development
type PostgresContainer struct {
	*postgres.PostgresContainer
	Host string
	Port string
}

// StartPostgres runs a Postgres container and waits until it accepts connections
func StartPostgres(ctx context.Context) (*PostgresContainer, error) {
	c, err := postgres.Run(ctx,
		PostgresImage,
		postgres.WithDatabase(PostgresDatabase),
		postgres.WithUsername(PostgresUser),
		postgres.WithPassword(PostgresPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start postgres: %w", err)
	}

	host, err := c.Host(ctx)
	if err != nil {
		_ = c.Terminate(ctx)
		return nil, fmt.Errorf("failed to get postgres host: %w", err)
	}
	port, err := c.MappedPort(ctx, nat.Port("5432/tcp"))
	if err != nil {
		_ = c.Terminate(ctx)
		return nil, fmt.Errorf("failed to get postgres port: %w", err)
	}

	return &PostgresContainer{PostgresContainer: c, Host: host, Port: port.Port()}, nil
}

// Config returns a configuration pointing at the container
func (p *PostgresContainer) Config() *config.Config {
	return &config.Config{
		DBType:            "postgres",
		DBHost:            p.Host,
		DBPort:            p.Port,
		DBDatabase:        PostgresDatabase,
		DBUser:            PostgresUser,
		DBPassword:        PostgresPassword,
		DBConnectionLimit: 5,
		LogLevel:          "warn",
	}
}
