package database

import (
	"encoding/json"
	"fmt"

	"github.com/localnerve/videohost/data"
	"github.com/localnerve/videohost/internal/models"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SeedData is the starter content loaded by Seed
type SeedData struct {
	Users []SeedUser `json:"users"`
	Tags  []string   `json:"tags"`
}

type SeedUser struct {
	DisplayName string      `json:"displayName"`
	Email       string      `json:"email"`
	Password    string      `json:"password"`
	Role        models.Role `json:"role"`
}

// LoadSeedData parses the embedded seed file
func LoadSeedData() (*SeedData, error) {
	var sd SeedData
	if err := json.Unmarshal(data.SeedJSON, &sd); err != nil {
		return nil, fmt.Errorf("failed to parse seed data: %w", err)
	}
	return &sd, nil
}

// Seed inserts the starter accounts and tags. Rows that already exist, matched
// by email or tag name, are left untouched, so it is safe to run repeatedly.
// It returns how many rows were inserted.
func Seed(db *gorm.DB, sd *SeedData, log logrus.FieldLogger) (int64, error) {
	var inserted int64
	err := db.Transaction(func(tx *gorm.DB) error {
		for _, su := range sd.Users {
			if _, ok := models.ParseRole(string(su.Role)); !ok {
				return fmt.Errorf("seed user %s: invalid role %q", su.Email, su.Role)
			}
			hash, err := bcrypt.GenerateFromPassword([]byte(su.Password), bcrypt.DefaultCost)
			if err != nil {
				return fmt.Errorf("seed user %s: %w", su.Email, err)
			}
			user := models.User{
				DisplayName:  su.DisplayName,
				Email:        su.Email,
				PasswordHash: string(hash),
				Role:         su.Role,
			}
			res := tx.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "email"}}, DoNothing: true}).Create(&user)
			if res.Error != nil {
				return fmt.Errorf("seed user %s: %w", su.Email, res.Error)
			}
			inserted += res.RowsAffected
		}

		for _, name := range sd.Tags {
			tag := models.Tag{Name: name}
			res := tx.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).Create(&tag)
			if res.Error != nil {
				return fmt.Errorf("seed tag %s: %w", name, res.Error)
			}
			inserted += res.RowsAffected
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	log.WithField("inserted", inserted).Info("Seed data applied")
	return inserted, nil
}
