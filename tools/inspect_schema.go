// inspect_schema.go
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
	"fmt"
	"log"

	"github.com/localnerve/videohost/internal/database"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type foreignKey struct {
	Table    string `gorm:"column:table"`
	From     string `gorm:"column:from"`
	To       string `gorm:"column:to"`
	OnDelete string `gorm:"column:on_delete"`
}

func main() {
	db, err := gorm.Open(sqlite.Open(":memory:?_foreign_keys=on"), database.GormConfig(logger.Silent))
	if err != nil {
		log.Fatal(err)
	}

	// Auto-migrate to see what GORM creates
	if err := database.AutoMigrate(db); err != nil {
		log.Fatal(err)
	}

	// Get the schema
	var tables []string
	db.Raw("SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%' ORDER BY name").Scan(&tables)

	for _, table := range tables {
		fmt.Printf("\n=== Table: %s ===\n", table)
		var schema string
		db.Raw("SELECT sql FROM sqlite_master WHERE name = ?", table).Scan(&schema)
		fmt.Println(schema)

		var indexes []string
		db.Raw("SELECT sql FROM sqlite_master WHERE type='index' AND tbl_name = ? AND sql IS NOT NULL", table).Scan(&indexes)
		for _, idx := range indexes {
			fmt.Println(idx)
		}

		var fks []foreignKey
		db.Raw(fmt.Sprintf("PRAGMA foreign_key_list(%q)", table)).Scan(&fks)
		for _, fk := range fks {
			fmt.Printf("FK %s.%s -> %s.%s ON DELETE %s\n", table, fk.From, fk.Table, fk.To, fk.OnDelete)
		}
	}
}
