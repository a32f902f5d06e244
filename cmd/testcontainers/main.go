// main.go
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

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/localnerve/videohost/internal/logger"
	th "github.com/localnerve/videohost/internal/testhelpers"
)

func main() {
	var showHelp bool
	flag.BoolVar(&showHelp, "h", false, "show help")
	var envFilename string
	flag.StringVar(&envFilename, "f", "", "path to the .env file")
	flag.Parse()

	usage := `
Run a disposable Postgres for local videohost development and print the
DB_* settings that point at it.

Usage:

testcontainers [-h] [-f ENV_FILE_PATH]

ENV_FILE_PATH: path to the .env file

example
  testcontainers -f /path/to/something/.env
`
	// if -h flag print usage and return
	if showHelp {
		fmt.Println(usage)
		return
	}

	log := logger.New(logger.Options{Level: "info", Format: "text", Output: os.Stderr})

	if envFilename != "" {
		log.WithField("file", envFilename).Info("Loading environment variables")
		if err := godotenv.Load(envFilename); err != nil {
			log.WithError(err).Fatal("Failed to load environment variables")
		}
	} else {
		log.Info("No environment file specified, using current environment variables")
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	ctx := context.Background()
	pg, err := th.StartPostgres(ctx)
	if err != nil {
		log.WithError(err).Fatal("Failed to create test container")
	}

	cfg := pg.Config()
	fmt.Printf("DB_TYPE=%s\nDB_HOST=%s\nDB_PORT=%s\nDB_DATABASE=%s\nDB_USER=%s\nDB_PASSWORD=%s\n",
		cfg.DBType, cfg.DBHost, cfg.DBPort, cfg.DBDatabase, cfg.DBUser, cfg.DBPassword)

	sig := <-sigs
	log.WithField("signal", sig.String()).Info("Terminating test container")
	if err := pg.Terminate(ctx); err != nil {
		log.WithError(err).Error("Failed to terminate test container")
	}
}
