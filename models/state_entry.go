package models

import "time"

// StateEntry is one persisted key of marketplace state
type StateEntry struct {
	Key       string    `json:"key" gorm:"primaryKey;type:varchar(100)"`
	Value     []byte    `json:"value" gorm:"type:bytea;not null"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for the StateEntry model
func (StateEntry) TableName() string {
	return "state_entries"
}
