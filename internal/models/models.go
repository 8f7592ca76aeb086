package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"      json:"id"`
	Username     string    `gorm:"size:50;uniqueIndex;not null"  json:"username"`
	Email        string    `gorm:"size:100;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null"             json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// RefreshToken is the durable record behind one long-lived credential.
// Rows are never deleted: revocation flips Revoked and the row stays.
// At most one row per user is non-revoked and unexpired at any time.
type RefreshToken struct {
	ID        uint      `gorm:"primaryKey"                    json:"id"`
	Token     string    `gorm:"size:255;uniqueIndex;not null" json:"token"`
	UserID    uint      `gorm:"index;not null"                json:"user_id"`
	Revoked   bool      `gorm:"not null;default:false"        json:"revoked"`
	ExpiresAt time.Time `gorm:"not null"                      json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

type WordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// WordCounts is stored as a JSON text column.
type WordCounts []WordCount

func (w WordCounts) Value() (driver.Value, error) {
	b, err := json.Marshal(w)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (w *WordCounts) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*w = nil
		return nil
	case []byte:
		return json.Unmarshal(v, w)
	case string:
		return json.Unmarshal([]byte(v), w)
	default:
		return fmt.Errorf("cannot scan %T into WordCounts", src)
	}
}

type URLAnalysis struct {
	ID         uint       `gorm:"primaryKey"         json:"id"`
	URL        string     `gorm:"type:text;not null" json:"url"`
	TopWords   WordCounts `gorm:"type:text;not null" json:"top_words"`
	UserID     uint       `gorm:"index;not null"     json:"user_id"`
	AnalyzedAt time.Time  `gorm:"autoCreateTime"     json:"analyzed_at"`
}
