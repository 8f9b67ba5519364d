package database

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// Decision represents a record in the public.strategy_decisions table.
// One row per generated pool, so the effectiveness pipeline can join
// decisions against session outcomes when it rebuilds the distribution.
type Decision struct {
	ID          int          `gorm:"primaryKey;column:id"`
	SessionID   string       `gorm:"column:session_id;not null"`
	CreatedAt   time.Time    `gorm:"column:created_at;default:now()"`
	Engine      string       `gorm:"column:engine;not null"`
	Method      string       `gorm:"column:method;not null"`
	Temperature float64      `gorm:"column:temperature"`
	Strategies  StringValues `gorm:"column:strategies;type:jsonb"`
}

func (Decision) TableName() string {
	return "strategy_decisions"
}

// StringValues represents a jsonb array of strings
type StringValues []string

// Value implements the driver.Valuer interface for the StringValues type
func (s StringValues) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

// Scan implements the sql.Scanner interface for the StringValues type
func (s *StringValues) Scan(value any) error {
	if value == nil {
		*s = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}

	return json.Unmarshal(bytes, &s)
}
