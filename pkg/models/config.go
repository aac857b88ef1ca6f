package models

import "time"

// Config value types understood by the schema.
const (
	ConfigTypeString = "string"
	ConfigTypeInt    = "int"
	ConfigTypeBool   = "bool"
)

// ConfigEntry is one setting with its schema metadata and the current
// value (DefaultValue when no override has been written).
type ConfigEntry struct {
	Key          string     `json:"key"`
	Value        string     `json:"value"`
	Type         string     `json:"type"`
	DefaultValue string     `json:"default_value"`
	Description  string     `json:"description,omitempty"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
	UpdatedBy    string     `json:"updated_by,omitempty"`
}
