package database_test

import (
	"testing"

	"github.com/localnerve/videohost/internal/database"
	"github.com/localnerve/videohost/internal/logger"
	"github.com/localnerve/videohost/internal/models"
	th "github.com/localnerve/videohost/internal/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestSeedIsIdempotent(t *testing.T) {
	db := th.NewTestDB(t)
	sd, err := database.LoadSeedData()
	require.NoError(t, err)
	require.Len(t, sd.Users, 3)
	assert.Equal(t, []string{"Music", "Gaming", "Vlog", "Tech", "History"}, sd.Tags)

	n, err := database.Seed(db, sd, logger.Discard())
	require.NoError(t, err)
	assert.EqualValues(t, 8, n)

	n, err = database.Seed(db, sd, logger.Discard())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.EqualValues(t, 3, th.Count(t, db, &models.User{}))
	assert.EqualValues(t, 5, th.Count(t, db, &models.Tag{}))

	var admin models.User
	require.NoError(t, db.Where("email = ?", "admin@example.com").First(&admin).Error)
	assert.True(t, admin.IsAdmin())
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte("Testing1!")))
}

func TestDialector(t *testing.T) {
	tests := []struct {
		dbType string
		name   string
	}{
		{"mysql", "mysql"},
		{"mariadb", "mysql"},
		{"postgres", "postgres"},
		{"sqlite", "sqlite"},
		{"sqlserver", "sqlserver"},
	}
	for _, tt := range tests {
		t.Run(tt.dbType, func(t *testing.T) {
			cfg := configFor(tt.dbType)
			d, err := database.Dialector(cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.name, d.Name())
		})
	}

	_, err := database.Dialector(configFor("oracle"))
	assert.Error(t, err)
}
