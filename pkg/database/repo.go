package database

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// NewDecision creates a new Decision object with the provided parameters
func NewDecision(
	sessionID string,
	engine string,
	method string,
	temperature float64,
	strategies []string,
) *Decision {
	return &Decision{
		SessionID:   sessionID,
		CreatedAt:   time.Now(),
		Engine:      engine,
		Method:      method,
		Temperature: temperature,
		Strategies:  strategies,
	}
}

// inserts a single decision record into the database
func AddDecision(ctx context.Context, db *gorm.DB, decision *Decision) error {
	if decision == nil {
		return nil
	}
	return db.WithContext(ctx).Create(decision).Error
}
