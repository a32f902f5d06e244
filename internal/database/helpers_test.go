package database_test

import "github.com/localnerve/videohost/internal/config"

func configFor(dbType string) *config.Config {
	return &config.Config{
		DBType:     dbType,
		DBHost:     "localhost",
		DBPort:     "5432",
		DBDatabase: "videohost",
		DBUser:     "videohost",
		DBPassword: "secret",
	}
}
