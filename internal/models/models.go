package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// VideoStatus represents the processing state of an uploaded video.
type VideoStatus string

const (
	VideoStatusUploaded   VideoStatus = "UPLOADED"
	VideoStatusProcessing VideoStatus = "PROCESSING"
	VideoStatusDone       VideoStatus = "DONE"
	VideoStatusFailed     VideoStatus = "FAILED"
)

// Terminal reports whether no further automatic transition occurs.
func (s VideoStatus) Terminal() bool {
	return s == VideoStatusDone || s == VideoStatusFailed
}

// User represents a registered account.
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// Video represents one uploaded recording.
type Video struct {
	ID                uuid.UUID   `json:"id" db:"id"`
	UserID            uuid.UUID   `json:"user_id" db:"user_id"`
	Filename          string      `json:"filename" db:"filename"`
	StorageKey        string      `json:"-" db:"storage_key"`
	Status            VideoStatus `json:"status" db:"status"`
	ProcessingAttempt int         `json:"-" db:"processing_attempt"`
	CreatedAt         time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at" db:"updated_at"`
}

// InferenceResult represents the outcome of one processing attempt.
// At most one live result exists per video; a re-run overwrites it.
type InferenceResult struct {
	ID         uuid.UUID `json:"id" db:"id"`
	VideoID    uuid.UUID `json:"video_id" db:"video_id"`
	Reps       int       `json:"reps" db:"reps"`
	Confidence float64   `json:"confidence" db:"confidence"`
	Notes      string    `json:"notes" db:"notes"`
	Raw        JSONMap   `json:"raw" db:"raw"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// JSONMap stores an opaque JSON object in a jsonb column.
type JSONMap map[string]interface{}

// Value implements driver.Valuer.
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner.
func (m *JSONMap) Scan(src interface{}) error {
	if src == nil {
		*m = JSONMap{}
		return nil
	}

	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported jsonb source type %T", src)
	}

	if len(data) == 0 {
		*m = JSONMap{}
		return nil
	}
	return json.Unmarshal(data, m)
}
