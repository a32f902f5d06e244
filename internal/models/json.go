package models

import (
	"database/sql/driver"
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// JSON holds raw media tool output on a video row. It wraps datatypes.JSON so the
// column type can follow the dialect.
type JSON struct {
	datatypes.JSON
}

// NewJSON wraps raw bytes. Invalid JSON is stored as null.
func NewJSON(raw []byte) JSON {
	if !json.Valid(raw) {
		return JSON{}
	}
	return JSON{JSON: datatypes.JSON(raw)}
}

func (j JSON) Value() (driver.Value, error) {
	return j.JSON.Value()
}

func (j *JSON) Scan(value interface{}) error {
	return j.JSON.Scan(value)
}

// GormDBDataType picks a JSON column type per driver; sqlserver has none.
func (JSON) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	switch db.Dialector.Name() {
	case "mysql":
		return "JSON"
	case "postgres":
		return "JSONB"
	case "sqlserver", "mssql":
		return "NVARCHAR(MAX)"
	case "sqlite":
		return "JSON"
	}
	return "TEXT"
}
